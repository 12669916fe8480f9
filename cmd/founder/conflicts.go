package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lool-ventures/founder-skills/cli/internal/validate"
)

var conflictsCmd = &cobra.Command{
	Use:   "conflicts",
	Short: "Deduplicate and validate a portfolio conflict check",
	Long: `Read {"portfolio_size": N, "conflicts": [...]} on stdin.

Conflicts are deduplicated by normalized company and type (first occurrence
wins, each drop is reported on stderr), validated, and summarized. The
summary is null whenever validation fails.`,
	Args: cobra.NoArgs,
	RunE: runConflicts,
}

func init() {
	rootCmd.AddCommand(conflictsCmd)
}

func runConflicts(cmd *cobra.Command, args []string) error {
	doc, err := readObject(cmd)
	if err != nil {
		return err
	}
	rep := validate.Conflicts(doc)

	log := newLogger(cmd)
	defer func() { _ = log.Sync() }()
	for _, d := range rep.Dropped {
		log.Warn(d.String(), zap.String("company", d.Company), zap.String("type", d.Type))
	}
	return writeJSON(cmd, rep.Output())
}
