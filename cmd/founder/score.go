package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lool-ventures/founder-skills/cli/internal/scoring"
)

var scoreCmd = &cobra.Command{
	Use:     "score <rubric>",
	Aliases: []string{"checklist", "score-dimensions"},
	Short:   "Score assessment items against a rubric",
	Long: `Read {"items": [...]} on stdin and score it against an embedded rubric.

Every canonical item of the rubric must appear exactly once with a status
from the rubric's vocabulary. Any deviation fails with the full problem list.
Items whose status requires evidence but carry none are reported on stderr.

Rubrics: deck-review, market-sizing, ic-dimensions.
"score-dimensions" defaults to ic-dimensions.

Examples:
  founder score deck-review < checklist_input.json --pretty
  founder score-dimensions -o run/score_dimensions.json < dims.json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScore,
}

func init() {
	rootCmd.AddCommand(scoreCmd)
}

// rubricArg picks the rubric for an invocation.
func rubricArg(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	if cmd.CalledAs() == "score-dimensions" {
		return scoring.ICDimensions, nil
	}
	return "", fmt.Errorf("rubric name required (available: %v)", scoring.Names())
}

func runScore(cmd *cobra.Command, args []string) error {
	name, err := rubricArg(cmd, args)
	if err != nil {
		return err
	}
	r, err := scoring.Load(name)
	if err != nil {
		return err
	}
	data, err := readInput(cmd)
	if err != nil {
		return err
	}
	items, err := scoring.DecodeItems(r.Name, data)
	if err != nil {
		return err
	}
	res, err := scoring.Score(r, items)
	if err != nil {
		return err
	}

	log := newLogger(cmd)
	defer func() { _ = log.Sync() }()
	for _, w := range res.Evidence {
		log.Warn(w.String(), zap.String("rubric", r.Name), zap.String("id", w.ID), zap.String("status", w.Status))
	}
	return writeJSON(cmd, res)
}
