package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lool-ventures/founder-skills/cli/internal/artifact"
	"github.com/lool-ventures/founder-skills/cli/internal/compose"
)

var (
	composeDir     string
	composeStrict  bool
	composeWait    bool
	composeTimeout time.Duration
)

var composeCmd = &cobra.Command{
	Use:   "compose <workflow>",
	Short: "Compose a run directory into the final report",
	Long: `Read every artifact of a workflow run, cross-check them and render the
final markdown report with a severity-classified warning list.

Missing or corrupt artifacts are warnings, not failures: a report is always
written. With --strict the command exits non-zero after writing the output
when unacknowledged high or medium warnings remain.

With --wait the command first blocks until every required artifact exists
(or --timeout elapses), watching the run directory for changes.

Workflows: market-sizing, deck-review, ic-sim.

Examples:
  founder compose deck-review --dir runs/deck-review-acme --pretty
  founder compose ic-sim -d runs/ic-sim-acme --wait --strict -o report.json`,
	Args: cobra.ExactArgs(1),
	RunE: runCompose,
}

func init() {
	composeCmd.Flags().StringVarP(&composeDir, "dir", "d", "", "Run directory containing the JSON artifacts")
	composeCmd.Flags().BoolVar(&composeStrict, "strict", false, "Exit non-zero when high or medium warnings remain")
	composeCmd.Flags().BoolVar(&composeWait, "wait", false, "Wait for required artifacts before composing")
	composeCmd.Flags().DurationVar(&composeTimeout, "timeout", 0, "Maximum time to wait with --wait (default from config, 10m)")
	_ = composeCmd.MarkFlagRequired("dir")
	rootCmd.AddCommand(composeCmd)
}

// composerFor builds a composer with the configured stale threshold.
func composerFor(workflow string, log *zap.Logger) (*compose.Composer, error) {
	return compose.New(workflow,
		compose.WithLogger(log),
		compose.WithStaleImportDays(cfg.Compose.StaleImportDays),
	)
}

// strictError reports remaining blocking warnings when strict is set.
func strictError(res *compose.Result, strict bool) error {
	if !strict {
		return nil
	}
	if n := len(res.Blocking()); n > 0 {
		return fmt.Errorf("%w: %d remaining", compose.ErrStrict, n)
	}
	return nil
}

func runCompose(cmd *cobra.Command, args []string) error {
	log := newLogger(cmd)
	defer func() { _ = log.Sync() }()

	c, err := composerFor(args[0], log)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if composeWait {
		if err := waitForArtifacts(ctx, c, log); err != nil {
			return err
		}
	}

	res, err := c.Compose(ctx, composeDir)
	if err != nil {
		return err
	}
	// The report is written before strict mode can fail the command.
	if err := writeJSON(cmd, res); err != nil {
		return err
	}
	return strictError(res, composeStrict || cfg.Compose.Strict)
}

func waitForArtifacts(ctx context.Context, c *compose.Composer, log *zap.Logger) error {
	store, err := artifact.NewStore(composeDir)
	if err != nil {
		return err
	}
	timeout := composeTimeout
	if timeout <= 0 {
		timeout = cfg.WaitTimeoutDuration()
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	log.Debug("waiting for artifacts", zap.Strings("required", c.Required()), zap.Duration("timeout", timeout))
	return store.WaitFor(ctx, c.Required())
}
