package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lool-ventures/founder-skills/cli/internal/sensitivity"
)

var sensitivityCmd = &cobra.Command{
	Use:   "sensitivity",
	Short: "Stress-test market sizing assumptions",
	Long: `Read {"approach", "base", "ranges"} on stdin. Each ranged parameter is
perturbed on its own, after widening its range to the minimum for its
confidence (sourced 0%, derived 30%, agent_estimate 50%), and the
parameters are ranked by SOM swing.`,
	Args: cobra.NoArgs,
	RunE: runSensitivity,
}

func init() {
	rootCmd.AddCommand(sensitivityCmd)
}

func runSensitivity(cmd *cobra.Command, args []string) error {
	var req sensitivity.Request
	if err := readInto(cmd, &req); err != nil {
		return err
	}
	res, err := sensitivity.Analyze(req)
	if err != nil {
		return err
	}

	log := newLogger(cmd)
	defer func() { _ = log.Sync() }()
	for _, n := range res.Notes {
		log.Info(n, zap.String("approach", res.Approach))
	}
	return writeJSON(cmd, res)
}
