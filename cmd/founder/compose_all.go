package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lool-ventures/founder-skills/cli/internal/artifact"
	"github.com/lool-ventures/founder-skills/cli/internal/compose"
	"github.com/lool-ventures/founder-skills/cli/internal/formatter"
	"github.com/lool-ventures/founder-skills/cli/internal/worker"
)

var (
	composeAllStrict      bool
	composeAllConcurrency int
	composeAllJSON        bool
)

var composeAllCmd = &cobra.Command{
	Use:   "compose-all <workflow> <dir>...",
	Short: "Compose many run directories concurrently",
	Long: `Compose every run directory of one workflow, writing each result into
<dir>/<report_file> (default report.json), and print a status table.

A directory that cannot be composed is reported in its row and does not
stop the others. With --strict the command exits non-zero once every
report is written if any run has blocking warnings or failed.

Examples:
  founder compose-all deck-review runs/deck-review-*
  founder compose-all ic-sim runs/a runs/b --concurrency 2 --json`,
	Args: cobra.MinimumNArgs(2),
	RunE: runComposeAll,
}

func init() {
	composeAllCmd.Flags().BoolVar(&composeAllStrict, "strict", false, "Exit non-zero when any run has blocking warnings")
	composeAllCmd.Flags().IntVar(&composeAllConcurrency, "concurrency", 0, "Runs composed at once (default from config, NumCPU)")
	composeAllCmd.Flags().BoolVar(&composeAllJSON, "json", false, "Print results as JSON instead of a table")
	rootCmd.AddCommand(composeAllCmd)
}

// runSummary is one row of compose-all output.
type runSummary struct {
	Dir         string `json:"dir"`
	Report      string `json:"report,omitempty"`
	Status      string `json:"status,omitempty"`
	Warnings    int    `json:"warnings"`
	Blocking    int    `json:"blocking"`
	Fingerprint string `json:"fingerprint,omitempty"`
	Error       string `json:"error,omitempty"`
}

func runComposeAll(cmd *cobra.Command, args []string) error {
	log := newLogger(cmd)
	defer func() { _ = log.Sync() }()

	c, err := composerFor(args[0], log)
	if err != nil {
		return err
	}
	dirs := args[1:]
	reportFile := cfg.Compose.ReportFile

	concurrency := composeAllConcurrency
	if concurrency <= 0 {
		concurrency = cfg.Compose.Concurrency
	}
	pool := worker.NewPool[*compose.Result](concurrency)
	log.Debug("composing runs", zap.Int("runs", len(dirs)), zap.Int("concurrency", pool.Concurrency()))

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	results := pool.Process(ctx, dirs, func(ctx context.Context, dir string) (*compose.Result, error) {
		res, err := c.Compose(ctx, dir)
		if err != nil {
			return nil, err
		}
		data, err := formatter.MarshalJSON(res, true)
		if err != nil {
			return nil, err
		}
		if err := artifact.WriteOutput(filepath.Join(dir, reportFile), data); err != nil {
			return nil, err
		}
		return res, nil
	})

	rows := make([]runSummary, len(results))
	failed, blocked := 0, 0
	for i, r := range results {
		row := runSummary{Dir: r.Item}
		if r.Err != nil {
			row.Error = r.Err.Error()
			failed++
			log.Warn("compose failed", zap.String("dir", r.Item), zap.Error(r.Err))
		} else {
			row.Report = filepath.Join(r.Item, reportFile)
			row.Status = r.Value.Validation.Status
			row.Warnings = len(r.Value.Validation.Warnings)
			row.Blocking = len(r.Value.Blocking())
			row.Fingerprint = r.Value.Fingerprint
			if row.Blocking > 0 {
				blocked++
			}
		}
		rows[i] = row
	}

	if composeAllJSON {
		if err := writeJSON(cmd, rows); err != nil {
			return err
		}
	} else if err := printRunTable(cmd, rows); err != nil {
		return err
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d runs failed to compose", failed, len(rows))
	}
	if (composeAllStrict || cfg.Compose.Strict) && blocked > 0 {
		return fmt.Errorf("%w: %d of %d runs", compose.ErrStrict, blocked, len(rows))
	}
	return nil
}

func printRunTable(cmd *cobra.Command, rows []runSummary) error {
	w := cmd.OutOrStdout()
	tbl := formatter.NewTable(w, "Run", "Status", "Warnings", "Blocking", "Fingerprint").
		SetMaxWidth(0, 48).
		SetMaxWidth(1, 60).
		SetMaxWidth(4, 13).
		AlignRight(2, 3)
	total, blocking := 0, 0
	for _, r := range rows {
		status := r.Status
		if r.Error != "" {
			status = "error: " + r.Error
		}
		tbl.AddRow(r.Dir, status, r.Warnings, r.Blocking, r.Fingerprint)
		total += r.Warnings
		blocking += r.Blocking
	}
	if err := tbl.Render(); err != nil {
		return err
	}
	status := compose.StatusClean
	if total > 0 {
		status = compose.StatusWarnings
	}
	_, err := fmt.Fprintln(w, formatter.Banner(status, total, blocking))
	return err
}
