package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lool-ventures/founder-skills/cli/internal/artifact"
	"github.com/lool-ventures/founder-skills/cli/internal/compose"
)

var (
	initRunsDir string
	initExistOK bool
)

var initCmd = &cobra.Command{
	Use:   "init <workflow> <subject>",
	Short: "Create a run directory for a workflow",
	Long: `Create <runs_dir>/<workflow>-<slug> for subject and list the artifacts
the workflow expects in it. Safe to re-run with --exist-ok, which also
reports the artifacts already present.

Examples:
  founder init market-sizing "Acme Robotics"
  founder init ic-sim "Acme Robotics" --runs-dir runs --exist-ok`,
	Args: cobra.ExactArgs(2),
	RunE: runInit,
}

func init() {
	initCmd.Flags().StringVar(&initRunsDir, "runs-dir", "", "Parent directory for runs (default from config)")
	initCmd.Flags().BoolVar(&initExistOK, "exist-ok", false, "Do not fail when the run directory exists")
	rootCmd.AddCommand(initCmd)
}

type initArtifact struct {
	File     string `json:"file"`
	Required bool   `json:"required"`
	Shape    string `json:"shape"`
}

type initResult struct {
	Dir      string         `json:"dir"`
	Workflow string         `json:"workflow"`
	Created  bool           `json:"created"`
	Expected []initArtifact `json:"expected"`
	Present  []string       `json:"present"`
}

func runInit(cmd *cobra.Command, args []string) error {
	workflow, subject := args[0], args[1]
	arts := compose.Artifacts(workflow)
	if arts == nil {
		return fmt.Errorf("%w: %q (available: %v)", compose.ErrUnknownWorkflow, workflow, compose.Workflows())
	}
	runsDir := initRunsDir
	if runsDir == "" {
		runsDir = cfg.RunsDir
	}

	dir, err := artifact.Init(runsDir, workflow, subject)
	created := err == nil
	if errors.Is(err, artifact.ErrRunExists) && initExistOK {
		err = nil
	}
	if err != nil {
		return err
	}

	store, err := artifact.NewStore(dir)
	if err != nil {
		return err
	}
	present, err := store.List()
	if err != nil {
		return fmt.Errorf("list %s: %w", dir, err)
	}

	res := initResult{Dir: dir, Workflow: workflow, Created: created, Present: []string{}}
	for _, a := range arts {
		res.Expected = append(res.Expected, initArtifact{File: a.File(), Required: a.Required, Shape: a.Shape})
	}
	for _, name := range present {
		res.Present = append(res.Present, name+artifact.Ext)
	}
	return writeJSON(cmd, res)
}
