// Package config provides configuration management for the founder CLI.
// Configuration is loaded from (highest to lowest priority):
// 1. Command-line flags
// 2. Environment variables (FOUNDER_*)
// 3. Project config (.founder/config.yaml in cwd, or FOUNDER_CONFIG)
// 4. Home config (~/.founder/config.yaml)
// 5. Defaults
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrInvalidValue is returned when an environment variable cannot be parsed.
var ErrInvalidValue = errors.New("invalid configuration value")

// Config holds all founder CLI configuration.
type Config struct {
	// Pretty indents JSON output.
	Pretty bool `yaml:"pretty" json:"pretty"`

	// Verbose enables debug diagnostics on stderr.
	Verbose bool `yaml:"verbose" json:"verbose"`

	// RunsDir is where `init` creates run directories (default: .).
	RunsDir string `yaml:"runs_dir" json:"runs_dir"`

	// Compose settings
	Compose ComposeConfig `yaml:"compose" json:"compose"`

	// Serve settings
	Serve ServeConfig `yaml:"serve" json:"serve"`
}

// ComposeConfig holds report composition settings.
type ComposeConfig struct {
	// ReportFile is the file compose-all writes into each run directory.
	// Default: report.json
	ReportFile string `yaml:"report_file" json:"report_file"`

	// Strict fails the command when blocking warnings remain.
	Strict bool `yaml:"strict" json:"strict"`

	// StaleImportDays is the STALE_IMPORT age threshold.
	// Default: 7
	StaleImportDays int `yaml:"stale_import_days" json:"stale_import_days"`

	// WaitTimeout bounds `compose --wait`, as a Go duration.
	// Default: 10m
	WaitTimeout string `yaml:"wait_timeout" json:"wait_timeout"`

	// Concurrency bounds compose-all (0 = NumCPU).
	Concurrency int `yaml:"concurrency" json:"concurrency"`
}

// ServeConfig holds MCP server settings.
type ServeConfig struct {
	// Name is the server implementation name.
	// Default: founder
	Name string `yaml:"name" json:"name"`
}

// Default config values (used in resolution and validation).
const (
	defaultRunsDir         = "."
	defaultReportFile      = "report.json"
	defaultStaleImportDays = 7
	defaultWaitTimeout     = "10m"
	defaultServeName       = "founder"
)

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		RunsDir: defaultRunsDir,
		Compose: ComposeConfig{
			ReportFile:      defaultReportFile,
			StaleImportDays: defaultStaleImportDays,
			WaitTimeout:     defaultWaitTimeout,
		},
		Serve: ServeConfig{Name: defaultServeName},
	}
}

// WaitTimeoutDuration parses Compose.WaitTimeout, falling back to the default.
func (c *Config) WaitTimeoutDuration() time.Duration {
	if d, err := time.ParseDuration(c.Compose.WaitTimeout); err == nil && d > 0 {
		return d
	}
	d, _ := time.ParseDuration(defaultWaitTimeout)
	return d
}

// Load loads configuration with proper precedence.
// Priority: flags > env > project > home > defaults
// A non-empty path replaces the project config location.
func Load(path string, flagOverrides *Config) (*Config, error) {
	cfg := Default()

	homeConfig, err := loadFromPath(homeConfigPath())
	if err != nil {
		return nil, err
	}
	if homeConfig != nil {
		cfg = merge(cfg, homeConfig)
	}

	projectConfig, err := loadFromPath(projectConfigPath(path))
	if err != nil {
		return nil, err
	}
	if projectConfig != nil {
		cfg = merge(cfg, projectConfig)
	}

	env, err := envConfig()
	if err != nil {
		return nil, err
	}
	cfg = merge(cfg, env)

	if flagOverrides != nil {
		cfg = merge(cfg, flagOverrides)
	}

	return cfg, nil
}

// homeConfigPath returns the home config path.
func homeConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".founder", "config.yaml")
}

// projectConfigPath returns the project config path.
func projectConfigPath(override string) string {
	if override = strings.TrimSpace(override); override != "" {
		return override
	}
	if env := strings.TrimSpace(os.Getenv("FOUNDER_CONFIG")); env != "" {
		return env
	}
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}
	return filepath.Join(cwd, ".founder", "config.yaml")
}

// loadFromPath loads config from a YAML file. A missing file is not an error.
func loadFromPath(path string) (*Config, error) {
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return &cfg, nil
}

// envConfig reads FOUNDER_* variables into a Config layer.
func envConfig() (*Config, error) {
	cfg := &Config{}
	if v, ok := getEnvBool("FOUNDER_PRETTY"); ok {
		cfg.Pretty = v
	}
	if v, ok := getEnvBool("FOUNDER_VERBOSE"); ok {
		cfg.Verbose = v
	}
	if v, ok := getEnvBool("FOUNDER_STRICT"); ok {
		cfg.Compose.Strict = v
	}
	cfg.RunsDir, _ = getEnvString("FOUNDER_RUNS_DIR")
	cfg.Compose.ReportFile, _ = getEnvString("FOUNDER_REPORT_FILE")
	cfg.Compose.WaitTimeout, _ = getEnvString("FOUNDER_WAIT_TIMEOUT")
	cfg.Serve.Name, _ = getEnvString("FOUNDER_SERVE_NAME")

	var err error
	if cfg.Compose.StaleImportDays, err = getEnvInt("FOUNDER_STALE_IMPORT_DAYS"); err != nil {
		return nil, err
	}
	if cfg.Compose.Concurrency, err = getEnvInt("FOUNDER_CONCURRENCY"); err != nil {
		return nil, err
	}
	return cfg, nil
}

// mergeStr overwrites dst with src when src is non-empty.
func mergeStr(dst *string, src string) {
	if src != "" {
		*dst = src
	}
}

// mergeInt overwrites dst with src when src is non-zero.
func mergeInt(dst *int, src int) {
	if src != 0 {
		*dst = src
	}
}

// merge merges src into dst, with src values taking precedence.
// Booleans have OR semantics: a layer can enable but not disable.
func merge(dst, src *Config) *Config {
	if src.Pretty {
		dst.Pretty = true
	}
	if src.Verbose {
		dst.Verbose = true
	}
	mergeStr(&dst.RunsDir, src.RunsDir)
	mergeCompose(&dst.Compose, &src.Compose)
	mergeStr(&dst.Serve.Name, src.Serve.Name)
	return dst
}

// mergeCompose merges compose-specific config fields.
func mergeCompose(dst, src *ComposeConfig) {
	mergeStr(&dst.ReportFile, src.ReportFile)
	if src.Strict {
		dst.Strict = true
	}
	mergeInt(&dst.StaleImportDays, src.StaleImportDays)
	mergeStr(&dst.WaitTimeout, src.WaitTimeout)
	mergeInt(&dst.Concurrency, src.Concurrency)
}

// Source represents where a config value came from.
type Source string

const (
	SourceDefault Source = "default"
	SourceHome    Source = "~/.founder/config.yaml"
	SourceProject Source = ".founder/config.yaml"
	SourceEnv     Source = "environment"
	SourceFlag    Source = "flag"
)

// getEnvString returns the value and whether the env var was set.
func getEnvString(key string) (string, bool) {
	v := os.Getenv(key)
	return v, v != ""
}

// getEnvBool returns the boolean value and whether it was truthy.
func getEnvBool(key string) (bool, bool) {
	v := os.Getenv(key)
	if v == "true" || v == "1" {
		return true, true
	}
	return false, false
}

// getEnvInt parses an integer variable; unset is 0.
func getEnvInt(key string) (int, error) {
	v, ok := getEnvString(key)
	if !ok {
		return 0, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %s=%q must be a non-negative integer", ErrInvalidValue, key, v)
	}
	return n, nil
}

// ResolvedConfig shows config values with their sources.
type ResolvedConfig struct {
	Pretty          resolved `json:"pretty"`
	Verbose         resolved `json:"verbose"`
	RunsDir         resolved `json:"runs_dir"`
	ReportFile      resolved `json:"compose_report_file"`
	Strict          resolved `json:"compose_strict"`
	StaleImportDays resolved `json:"compose_stale_import_days"`
	WaitTimeout     resolved `json:"compose_wait_timeout"`
	Concurrency     resolved `json:"compose_concurrency"`
	ServeName       resolved `json:"serve_name"`
}

type resolved struct {
	Value  interface{} `json:"value"`
	Source Source      `json:"source"`
}

type layer struct {
	source Source
	cfg    *Config
}

// resolveField resolves one field through the precedence chain: the last
// layer holding a non-zero value wins.
func resolveField(layers []layer, def interface{}, get func(*Config) interface{}) resolved {
	result := resolved{Value: def, Source: SourceDefault}
	for _, l := range layers {
		if l.cfg == nil {
			continue
		}
		switch v := get(l.cfg).(type) {
		case string:
			if v != "" {
				result = resolved{Value: v, Source: l.source}
			}
		case int:
			if v != 0 {
				result = resolved{Value: v, Source: l.source}
			}
		case bool:
			if v {
				result = resolved{Value: v, Source: l.source}
			}
		}
	}
	return result
}

// Resolve returns configuration with source tracking.
// Uses precedence chain: flags > env > project > home > defaults.
func Resolve(path string, flags *Config) (*ResolvedConfig, error) {
	homeConfig, err := loadFromPath(homeConfigPath())
	if err != nil {
		return nil, err
	}
	projectConfig, err := loadFromPath(projectConfigPath(path))
	if err != nil {
		return nil, err
	}
	env, err := envConfig()
	if err != nil {
		return nil, err
	}
	layers := []layer{
		{SourceHome, homeConfig},
		{SourceProject, projectConfig},
		{SourceEnv, env},
		{SourceFlag, flags},
	}

	return &ResolvedConfig{
		Pretty:          resolveField(layers, false, func(c *Config) interface{} { return c.Pretty }),
		Verbose:         resolveField(layers, false, func(c *Config) interface{} { return c.Verbose }),
		RunsDir:         resolveField(layers, defaultRunsDir, func(c *Config) interface{} { return c.RunsDir }),
		ReportFile:      resolveField(layers, defaultReportFile, func(c *Config) interface{} { return c.Compose.ReportFile }),
		Strict:          resolveField(layers, false, func(c *Config) interface{} { return c.Compose.Strict }),
		StaleImportDays: resolveField(layers, defaultStaleImportDays, func(c *Config) interface{} { return c.Compose.StaleImportDays }),
		WaitTimeout:     resolveField(layers, defaultWaitTimeout, func(c *Config) interface{} { return c.Compose.WaitTimeout }),
		Concurrency:     resolveField(layers, 0, func(c *Config) interface{} { return c.Compose.Concurrency }),
		ServeName:       resolveField(layers, defaultServeName, func(c *Config) interface{} { return c.Serve.Name }),
	}, nil
}
