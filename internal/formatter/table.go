// Package formatter renders command output: JSON documents, terminal and
// markdown tables, and composed reports for the terminal.
package formatter

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// Mode selects how a Table renders.
type Mode int

const (
	// Terminal draws box-style tables.
	Terminal Mode = iota
	// Markdown emits GitHub-flavoured markdown tables.
	Markdown
)

// Table formats columnar output with go-pretty.
type Table struct {
	out      io.Writer
	w        table.Writer
	mode     Mode
	headers  int
	rows     int
	maxWidth map[int]int // column index -> max width (0 = unlimited)
}

// NewTable creates a table that writes to w with the given column headers.
func NewTable(w io.Writer, headers ...string) *Table {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleLight)
	row := make(table.Row, len(headers))
	for i, h := range headers {
		row[i] = h
	}
	tw.AppendHeader(row)
	return &Table{out: w, w: tw, headers: len(headers), maxWidth: make(map[int]int)}
}

// SetMode switches between terminal and markdown rendering.
func (t *Table) SetMode(m Mode) *Table {
	t.mode = m
	return t
}

// SetMaxWidth sets the maximum display width for a column (0-indexed).
// Values exceeding the limit are truncated with "...".
func (t *Table) SetMaxWidth(col, width int) *Table {
	t.maxWidth[col] = width
	return t
}

// AlignRight right-aligns a column (0-indexed), for numbers.
func (t *Table) AlignRight(cols ...int) *Table {
	cfgs := make([]table.ColumnConfig, len(cols))
	for i, c := range cols {
		cfgs[i] = table.ColumnConfig{Number: c + 1, Align: text.AlignRight}
	}
	t.w.SetColumnConfigs(cfgs)
	return t
}

// AddRow appends a data row. Extra values beyond the header count are ignored;
// missing values are filled with empty strings.
func (t *Table) AddRow(values ...any) {
	row := make(table.Row, t.headers)
	for i := range row {
		cell := ""
		if i < len(values) {
			cell = fmt.Sprint(values[i])
		}
		row[i] = t.truncate(i, cell)
	}
	t.w.AppendRow(row)
	t.rows++
}

// Render writes the table. A table with no rows writes nothing.
func (t *Table) Render() error {
	if t.rows == 0 {
		return nil
	}
	var s string
	if t.mode == Markdown {
		s = t.w.RenderMarkdown()
	} else {
		s = t.w.Render()
	}
	_, err := fmt.Fprintln(t.out, s)
	return err
}

func (t *Table) truncate(col int, s string) string {
	limit, ok := t.maxWidth[col]
	if !ok || limit <= 0 || len(s) <= limit {
		return s
	}
	if limit <= 3 {
		return s[:limit]
	}
	return s[:limit-3] + "..."
}
