package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/lool-ventures/founder-skills/cli/internal/formatter"
	"github.com/lool-ventures/founder-skills/cli/internal/scoring"
)

var (
	rubricMarkdown bool
	rubricJSON     bool
)

var rubricCmd = &cobra.Command{
	Use:   "rubric [name]",
	Short: "List rubrics or show a rubric's items",
	Long: `Without a name, list the embedded rubrics. With a name, show the
rubric's canonical items, statuses and verdict rule.

Examples:
  founder rubric
  founder rubric ic-dimensions --markdown
  founder rubric deck-review --json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRubric,
}

func init() {
	rubricCmd.Flags().BoolVar(&rubricMarkdown, "markdown", false, "Render tables as markdown")
	rubricCmd.Flags().BoolVar(&rubricJSON, "json", false, "Print the rubric table as JSON")
	rootCmd.AddCommand(rubricCmd)
}

func tableMode() formatter.Mode {
	if rubricMarkdown {
		return formatter.Markdown
	}
	return formatter.Terminal
}

func runRubric(cmd *cobra.Command, args []string) error {
	w := cmd.OutOrStdout()
	if len(args) == 0 {
		if rubricJSON {
			return writeJSON(cmd, scoring.Names())
		}
		tbl := formatter.NewTable(w, "Name", "Title", "Items", "Verdict").SetMode(tableMode()).AlignRight(2)
		for _, name := range scoring.Names() {
			r := scoring.MustLoad(name)
			tbl.AddRow(r.Name, r.Title, len(r.Items), r.Verdict.Mode)
		}
		return tbl.Render()
	}

	r, err := scoring.Load(args[0])
	if err != nil {
		return err
	}
	if rubricJSON {
		return writeJSON(cmd, r)
	}
	tbl := formatter.NewTable(w, "ID", "Category", "Label").SetMode(tableMode()).SetMaxWidth(2, 60)
	for _, it := range r.Items {
		tbl.AddRow(it.ID, it.Category, it.Label)
	}
	if err := tbl.Render(); err != nil {
		return err
	}
	_, err = w.Write([]byte("Statuses: " + strings.Join(r.Statuses, ", ") + "\n"))
	return err
}
