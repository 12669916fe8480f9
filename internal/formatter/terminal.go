package formatter

import (
	"fmt"
	"sort"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/lipgloss"
)

// DefaultWidth is the word-wrap width for terminal rendering.
const DefaultWidth = 100

// AutoStyle picks dark or light from the terminal background, and plain
// notty output when stdout is not a terminal.
const AutoStyle = styles.AutoStyle

// Styles lists the accepted style names, sorted.
func Styles() []string {
	names := []string{AutoStyle}
	for name := range styles.DefaultStyles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RenderTerminal renders markdown for a terminal with the named glamour
// style. An empty style is AutoStyle.
func RenderTerminal(md string, width int, style string) (string, error) {
	if width <= 0 {
		width = DefaultWidth
	}
	if style == "" {
		style = AutoStyle
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("create renderer: %w", err)
	}
	out, err := r.Render(md)
	if err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return out, nil
}

var (
	bannerBase = lipgloss.NewStyle().Bold(true).Padding(0, 1)

	cleanStyle    = bannerBase.Foreground(lipgloss.Color("0")).Background(lipgloss.Color("42"))
	warningsStyle = bannerBase.Foreground(lipgloss.Color("0")).Background(lipgloss.Color("214"))
	blockedStyle  = bannerBase.Foreground(lipgloss.Color("15")).Background(lipgloss.Color("160"))
)

// Banner is a one-line status label for a composed report. blocking counts
// unacknowledged high and medium warnings; total counts all warnings.
func Banner(status string, total, blocking int) string {
	switch {
	case blocking > 0:
		return blockedStyle.Render(fmt.Sprintf("BLOCKED %s: %d warnings, %d blocking", status, total, blocking))
	case total > 0:
		return warningsStyle.Render(fmt.Sprintf("%s: %d warnings, none blocking", status, total))
	default:
		return cleanStyle.Render(status)
	}
}
