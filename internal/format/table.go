package format

import (
	"fmt"
	"io"
	"strings"

	"github.com/machibo/backoffice/internal/colors"
)

// Alignment of a column.
type Alignment string

const (
	AlignLeft   Alignment = "left"
	AlignRight  Alignment = "right"
	AlignCenter Alignment = "center"
)

// Column describes one table column.
type Column[T any] struct {
	// Name is the header text.
	Name string
	// Width is the column width in characters. Longer values are truncated
	// with "...".
	Width int
	Align Alignment
	// Value extracts the cell text from a row.
	Value func(T) string
}

// Table renders rows as fixed-width columns.
type Table[T any] struct {
	Columns     []Column[T]
	ShowHeaders bool
	HeaderColor string
	// EmptyText is printed when there are no rows.
	EmptyText string
}

// NewTable creates a Table with headers on and the default header color.
func NewTable[T any](columns []Column[T]) *Table[T] {
	return &Table[T]{
		Columns:     columns,
		ShowHeaders: true,
		HeaderColor: colors.Blue,
		EmptyText:   "No records found",
	}
}

// Render writes the header, a separator and one line per row.
func (t *Table[T]) Render(w io.Writer, rows []T) error {
	if len(rows) == 0 {
		_, err := fmt.Fprintf(w, "%s%s%s\n", colors.Blue, t.EmptyText, colors.Reset)
		return err
	}
	if t.ShowHeaders {
		separators := make([]string, len(t.Columns))
		for i, col := range t.Columns {
			separators[i] = strings.Repeat("-", col.Width)
		}
		if _, err := fmt.Fprintf(w, "%s%s%s\n", t.HeaderColor, t.HeaderLine(), colors.Reset); err != nil {
			return err
		}
		if _, err := fmt.Fprintln(w, strings.Join(separators, "  ")); err != nil {
			return err
		}
	}
	for _, row := range rows {
		if _, err := fmt.Fprintln(w, t.Line(row)); err != nil {
			return err
		}
	}
	return nil
}

// HeaderLine returns the uncolored column headers.
func (t *Table[T]) HeaderLine() string {
	headers := make([]string, len(t.Columns))
	for i, col := range t.Columns {
		headers[i] = pad(col.Name, col.Width, AlignLeft)
	}
	return strings.Join(headers, "  ")
}

// Line returns row as padded, truncated cells.
func (t *Table[T]) Line(row T) string {
	cells := make([]string, len(t.Columns))
	for i, col := range t.Columns {
		cells[i] = pad(truncate(col.Value(row), col.Width), col.Width, col.Align)
	}
	return strings.TrimRight(strings.Join(cells, "  "), " ")
}

// RenderCompact writes one tab-separated line per row, untruncated.
func (t *Table[T]) RenderCompact(w io.Writer, rows []T) error {
	for _, row := range rows {
		cells := make([]string, len(t.Columns))
		for i, col := range t.Columns {
			cells[i] = col.Value(row)
		}
		if _, err := fmt.Fprintln(w, strings.Join(cells, "\t")); err != nil {
			return err
		}
	}
	return nil
}

// pad aligns s within width runes. s is assumed to fit.
func pad(s string, width int, align Alignment) string {
	n := len([]rune(s))
	if n >= width {
		return s
	}
	switch align {
	case AlignRight:
		return strings.Repeat(" ", width-n) + s
	case AlignCenter:
		left := (width - n) / 2
		return strings.Repeat(" ", left) + s + strings.Repeat(" ", width-n-left)
	default:
		return s + strings.Repeat(" ", width-n)
	}
}

// truncate shortens s to width runes, ending in "..." when cut.
func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	if width < 3 {
		return string(r[:width])
	}
	return string(r[:width-3]) + "..."
}
