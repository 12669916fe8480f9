package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/lool-ventures/founder-skills/cli/internal/config"
)

var configJSON bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show resolved configuration",
	Long: `Show the resolved founder configuration and where each value came from.

Configuration priority (highest to lowest):
  1. Command-line flags
  2. Environment variables (FOUNDER_*)
  3. Project config (.founder/config.yaml, --config or FOUNDER_CONFIG)
  4. Home config (~/.founder/config.yaml)
  5. Defaults

Environment variables:
  FOUNDER_CONFIG            - Explicit project config file path
  FOUNDER_PRETTY            - Indent JSON output (true/1)
  FOUNDER_VERBOSE           - Debug diagnostics (true/1)
  FOUNDER_RUNS_DIR          - Parent directory for init
  FOUNDER_STRICT            - Strict compose (true/1)
  FOUNDER_REPORT_FILE       - compose-all report file name
  FOUNDER_STALE_IMPORT_DAYS - STALE_IMPORT age threshold in days
  FOUNDER_WAIT_TIMEOUT      - compose --wait timeout (Go duration)
  FOUNDER_CONCURRENCY       - compose-all concurrency
  FOUNDER_SERVE_NAME        - MCP server name

Examples:
  founder config
  founder config --json`,
	Args: cobra.NoArgs,
	RunE: runConfig,
}

var configEnvVars = []string{
	"FOUNDER_CONFIG",
	"FOUNDER_PRETTY",
	"FOUNDER_VERBOSE",
	"FOUNDER_RUNS_DIR",
	"FOUNDER_STRICT",
	"FOUNDER_REPORT_FILE",
	"FOUNDER_STALE_IMPORT_DAYS",
	"FOUNDER_WAIT_TIMEOUT",
	"FOUNDER_CONCURRENCY",
	"FOUNDER_SERVE_NAME",
}

func init() {
	configCmd.Flags().BoolVar(&configJSON, "json", false, "Output as JSON")
	rootCmd.AddCommand(configCmd)
}

func runConfig(cmd *cobra.Command, args []string) error {
	resolved, err := config.Resolve(cfgFile, flagOverrides())
	if err != nil {
		return err
	}
	if configJSON {
		return writeJSON(cmd, resolved)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintln(w, "Founder Configuration")
	fmt.Fprintln(w, "=====================")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Config files:")
	home, _ := os.UserHomeDir()
	printConfigFile(w, "Home:   ", filepath.Join(home, ".founder", "config.yaml"))
	project := cfgFile
	if project == "" {
		project = os.Getenv("FOUNDER_CONFIG")
	}
	if project == "" {
		cwd, _ := os.Getwd()
		project = filepath.Join(cwd, ".founder", "config.yaml")
	}
	printConfigFile(w, "Project:", project)

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Resolved values:")
	fmt.Fprintf(w, "  pretty:                    %v  (from %s)\n", resolved.Pretty.Value, resolved.Pretty.Source)
	fmt.Fprintf(w, "  verbose:                   %v  (from %s)\n", resolved.Verbose.Value, resolved.Verbose.Source)
	fmt.Fprintf(w, "  runs_dir:                  %v  (from %s)\n", resolved.RunsDir.Value, resolved.RunsDir.Source)
	fmt.Fprintf(w, "  compose.report_file:       %v  (from %s)\n", resolved.ReportFile.Value, resolved.ReportFile.Source)
	fmt.Fprintf(w, "  compose.strict:            %v  (from %s)\n", resolved.Strict.Value, resolved.Strict.Source)
	fmt.Fprintf(w, "  compose.stale_import_days: %v  (from %s)\n", resolved.StaleImportDays.Value, resolved.StaleImportDays.Source)
	fmt.Fprintf(w, "  compose.wait_timeout:      %v  (from %s)\n", resolved.WaitTimeout.Value, resolved.WaitTimeout.Source)
	fmt.Fprintf(w, "  compose.concurrency:       %v  (from %s)\n", resolved.Concurrency.Value, resolved.Concurrency.Source)
	fmt.Fprintf(w, "  serve.name:                %v  (from %s)\n", resolved.ServeName.Value, resolved.ServeName.Source)

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment variables (if set):")
	anySet := false
	for _, env := range configEnvVars {
		if v := os.Getenv(env); v != "" {
			fmt.Fprintf(w, "  %s=%s\n", env, v)
			anySet = true
		}
	}
	if !anySet {
		fmt.Fprintln(w, "  (none set)")
	}
	return nil
}

func printConfigFile(w io.Writer, label, path string) {
	if _, err := os.Stat(path); err == nil {
		fmt.Fprintf(w, "  ✓ %s %s\n", label, path)
	} else {
		fmt.Fprintf(w, "  ✗ %s %s (not found)\n", label, path)
	}
}
