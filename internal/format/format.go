// Package format renders CLI tables and human-readable values.
package format

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// Mode controls the table output format.
type Mode int

const (
	ASCII    Mode = iota // box-drawn terminal tables
	Markdown             // pipe tables, pasteable into a note
)

// ModeFor returns Markdown when markdown is set, else ASCII.
func ModeFor(markdown bool) Mode {
	if markdown {
		return Markdown
	}
	return ASCII
}

// ColumnAlign specifies the horizontal alignment for a column.
type ColumnAlign int

const (
	AlignDefault ColumnAlign = iota
	AlignLeft
	AlignCenter
	AlignRight
)

// ColumnConfig controls per-column formatting.
type ColumnConfig struct {
	Number   int // 1-based
	Align    ColumnAlign
	MaxWidth int // wrap beyond this width; 0 = unlimited
}

// Table collects rows and renders them in one Mode.
type Table struct {
	w    table.Writer
	mode Mode
	rows int
}

// NewTable returns an empty table.
func NewTable(m Mode) *Table {
	w := table.NewWriter()
	style := table.StyleDefault
	if m == ASCII {
		style = table.StyleLight
	}
	// Headers and footers keep their case: footers carry counts like "3 notes".
	style.Format.Header = text.FormatDefault
	style.Format.Footer = text.FormatDefault
	w.SetStyle(style)
	return &Table{w: w, mode: m}
}

// Title sets a caption rendered above ASCII tables. Markdown tables get it
// as a leading line.
func (t *Table) Title(s string) { t.w.SetTitle(s) }

// Header sets the column headers.
func (t *Table) Header(cols ...string) {
	row := make(table.Row, len(cols))
	for i, c := range cols {
		row[i] = c
	}
	t.w.AppendHeader(row)
}

// Row appends a data row.
func (t *Table) Row(vals ...any) {
	t.w.AppendRow(table.Row(append([]any(nil), vals...)))
	t.rows++
}

// Footer appends a footer row.
func (t *Table) Footer(vals ...any) {
	t.w.AppendFooter(table.Row(append([]any(nil), vals...)))
}

// Len returns the number of data rows.
func (t *Table) Len() int { return t.rows }

// Columns applies per-column configuration.
func (t *Table) Columns(cfgs ...ColumnConfig) {
	out := make([]table.ColumnConfig, len(cfgs))
	for i, c := range cfgs {
		out[i] = table.ColumnConfig{
			Number:   c.Number,
			Align:    textAlign(c.Align),
			WidthMax: c.MaxWidth,
		}
	}
	t.w.SetColumnConfigs(out)
}

// String renders the table.
func (t *Table) String() string {
	if t.mode == Markdown {
		return t.w.RenderMarkdown()
	}
	return t.w.Render()
}

// Render writes the table and a trailing newline to w.
func (t *Table) Render(w io.Writer) error {
	_, err := fmt.Fprintln(w, t.String())
	return err
}

func textAlign(a ColumnAlign) text.Align {
	switch a {
	case AlignLeft:
		return text.AlignLeft
	case AlignRight:
		return text.AlignRight
	case AlignCenter:
		return text.AlignCenter
	default:
		return text.AlignDefault
	}
}
