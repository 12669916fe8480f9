package main

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lool-ventures/founder-skills/cli/internal/artifact"
	"github.com/lool-ventures/founder-skills/cli/internal/config"
	"github.com/lool-ventures/founder-skills/cli/internal/logging"
)

var (
	// Global flags
	pretty  bool
	verbose bool
	output  string
	cfgFile string

	// cfg is the resolved configuration; PersistentPreRunE replaces it.
	cfg = config.Default()

	version = "dev"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "founder",
	Short: "Founder coaching artifact validation CLI",
	Long: `founder validates the JSON artifacts produced by the founder coaching
workflows and composes them into a final report.

Engines (stdin JSON in, JSON out):
  score        Score assessment items against a rubric
  fund-profile Validate a fund profile
  conflicts    Deduplicate and validate a portfolio conflict check
  market-size  Compute TAM/SAM/SOM
  sensitivity  Stress-test sizing assumptions

Reports:
  init         Create a run directory
  compose      Compose one run directory into a report
  compose-all  Compose many run directories concurrently
  view         Render a composed report in the terminal

Agents:
  serve        MCP server over stdio`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&pretty, "pretty", false, "Indent JSON output")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Enable debug diagnostics on stderr")
	rootCmd.PersistentFlags().StringVarP(&output, "out", "o", "", "Write output to file instead of stdout (parent directory must exist)")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default: .founder/config.yaml)")
	rootCmd.Version = version
}

// flagOverrides is the flag layer of the configuration.
func flagOverrides() *config.Config {
	return &config.Config{Pretty: pretty, Verbose: verbose}
}

func loadConfig(cmd *cobra.Command, args []string) error {
	if output != "" {
		if _, err := artifact.CheckOutput(output); err != nil {
			return err
		}
	}
	loaded, err := config.Load(cfgFile, flagOverrides())
	if err != nil {
		return err
	}
	cfg = loaded
	return nil
}

// newLogger returns the diagnostic logger for cmd, writing to its stderr.
func newLogger(cmd *cobra.Command) *zap.Logger {
	return logging.New(cmd.ErrOrStderr(), cfg.Verbose || verbose)
}
