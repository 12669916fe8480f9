package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/lool-ventures/founder-skills/cli/internal/compose"
	"github.com/lool-ventures/founder-skills/cli/internal/mcp"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server over stdio",
	Long: `Start an MCP server over stdin/stdout. An agent connects and calls the
engines as tools instead of shelling out:

  score_rubric, validate_fund_profile, validate_conflicts,
  size_market, run_sensitivity, compose_report

Tool results carry the same JSON the matching CLI commands print.
Diagnostics go to stderr.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	log := newLogger(cmd)
	defer func() { _ = log.Sync() }()

	srv := mcp.NewServer(cfg.Serve.Name, version, log,
		compose.WithStaleImportDays(cfg.Compose.StaleImportDays))

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return srv.Run(ctx)
}
