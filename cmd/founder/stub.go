package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lool-ventures/founder-skills/cli/internal/artifact"
	"github.com/lool-ventures/founder-skills/cli/internal/compose"
)

var stubWorkflow string

var stubCmd = &cobra.Command{
	Use:   "stub <dir> <artifact> <reason>",
	Short: "Record that a phase was skipped",
	Long: `Write {"skipped": true, "reason": ...} as <artifact>.json in a run
directory. The composer suppresses checks that depend on a stubbed artifact
and renders the reason in the report.

With --workflow the artifact name is checked against the workflow.`,
	Args: cobra.ExactArgs(3),
	RunE: runStub,
}

func init() {
	stubCmd.Flags().StringVar(&stubWorkflow, "workflow", "", "Check the artifact name against this workflow")
	rootCmd.AddCommand(stubCmd)
}

func runStub(cmd *cobra.Command, args []string) error {
	dir, name, reason := args[0], strings.TrimSuffix(args[1], artifact.Ext), args[2]
	if strings.TrimSpace(reason) == "" {
		return fmt.Errorf("reason must not be blank")
	}
	if stubWorkflow != "" && !knownArtifact(stubWorkflow, name) {
		return fmt.Errorf("workflow %q has no artifact %q", stubWorkflow, name)
	}
	store, err := artifact.NewStore(dir)
	if err != nil {
		return err
	}
	if err := store.WriteStub(name, reason); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), store.Path(name))
	return nil
}

func knownArtifact(workflow, name string) bool {
	for _, a := range compose.Artifacts(workflow) {
		if a.Name == name {
			return true
		}
	}
	return false
}
