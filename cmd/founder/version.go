package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/lool-ventures/founder-skills/cli/internal/compose"
	"github.com/lool-ventures/founder-skills/cli/internal/scoring"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Long:  `Display the version, build information, and embedded rubrics and workflows.`,
	Run: func(cmd *cobra.Command, args []string) {
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "founder version %s\n", version)
		fmt.Fprintf(w, "  Go version: %s\n", runtime.Version())
		fmt.Fprintf(w, "  Platform: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		fmt.Fprintf(w, "  Rubrics: %v\n", scoring.Names())
		fmt.Fprintf(w, "  Workflows: %v\n", compose.Workflows())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
