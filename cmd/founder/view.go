package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lool-ventures/founder-skills/cli/internal/compose"
	"github.com/lool-ventures/founder-skills/cli/internal/formatter"
)

var (
	viewWidth int
	viewRaw   bool
	viewStyle string
)

var viewCmd = &cobra.Command{
	Use:   "view <file>",
	Short: "Render a composed report in the terminal",
	Long: `Render a report in the terminal. The file may be a compose result
(JSON with report_markdown) or a markdown file. A compose result also gets a
status banner summarizing its warnings.

Examples:
  founder view runs/deck-review-acme/report.json
  founder view report.md --width 80
  founder view report.md --style dark | less -R`,
	Args: cobra.ExactArgs(1),
	RunE: runView,
}

func init() {
	viewCmd.Flags().IntVar(&viewWidth, "width", formatter.DefaultWidth, "Word-wrap width")
	viewCmd.Flags().BoolVar(&viewRaw, "raw", false, "Print markdown without terminal styling")
	viewCmd.Flags().StringVar(&viewStyle, "style", formatter.AutoStyle,
		"Glamour style ("+strings.Join(formatter.Styles(), ", ")+"); auto falls back to notty when stdout is not a terminal")
	rootCmd.AddCommand(viewCmd)
}

// loadReport returns the markdown of path and, for a compose result, its
// parsed form.
func loadReport(path string) (string, *compose.Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", nil, fmt.Errorf("read report: %w", err)
	}
	var res compose.Result
	if err := json.Unmarshal(data, &res); err == nil && res.ReportMarkdown != "" {
		return res.ReportMarkdown, &res, nil
	}
	return string(data), nil, nil
}

func runView(cmd *cobra.Command, args []string) error {
	md, res, err := loadReport(args[0])
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()
	if res != nil {
		if _, err := fmt.Fprintln(w, formatter.Banner(res.Validation.Status, len(res.Validation.Warnings), len(res.Blocking()))); err != nil {
			return err
		}
	}
	if viewRaw {
		_, err := fmt.Fprint(w, md)
		return err
	}
	out, err := formatter.RenderTerminal(md, viewWidth, viewStyle)
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(w, out)
	return err
}
