// Package format renders API records for the CLI.
package format

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/machibo/backoffice/internal/domain"
)

// Type is an output format.
type Type string

const (
	// TypeTable renders aligned columns with a pagination footer.
	TypeTable Type = "table"
	// TypeCompact renders one tab-separated line per row without headers.
	TypeCompact Type = "compact"
	// TypeJSON renders rows and pagination as indented JSON.
	TypeJSON Type = "json"
)

// ParseType validates a --format value. Empty means table.
func ParseType(s string) (Type, error) {
	switch t := Type(strings.ToLower(strings.TrimSpace(s))); t {
	case "":
		return TypeTable, nil
	case TypeTable, TypeCompact, TypeJSON:
		return t, nil
	default:
		return "", fmt.Errorf("format: unknown format %q (want table, compact or json)", s)
	}
}

// WritePage renders one page of rows.
func WritePage[T any](w io.Writer, t Type, page domain.Page[T], columns []Column[T]) error {
	switch t {
	case TypeJSON:
		return WriteJSON(w, struct {
			Rows       []T               `json:"rows"`
			Pagination domain.Pagination `json:"pagination"`
		}{page.Rows, page.Pagination})
	case TypeCompact:
		return NewTable(columns).RenderCompact(w, page.Rows)
	default:
		if err := NewTable(columns).Render(w, page.Rows); err != nil {
			return err
		}
		return writeFooter(w, page.Pagination)
	}
}

// WriteRows renders an unpaginated list.
func WriteRows[T any](w io.Writer, t Type, rows []T, columns []Column[T]) error {
	switch t {
	case TypeJSON:
		if rows == nil {
			rows = []T{}
		}
		return WriteJSON(w, rows)
	case TypeCompact:
		return NewTable(columns).RenderCompact(w, rows)
	default:
		return NewTable(columns).Render(w, rows)
	}
}

// WriteJSON writes v as indented JSON.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeFooter(w io.Writer, p domain.Pagination) error {
	_, err := fmt.Fprintf(w, "\nPage %d/%d, %d per page, %d total\n", p.CurrentPage, p.LastPage, p.PerPage, p.Total)
	return err
}

// Field is one labeled value of a detail view.
type Field struct {
	Label string
	Value string
}

// WriteFields renders label/value pairs with aligned labels. Empty values
// are shown as "-".
func WriteFields(w io.Writer, fields []Field) error {
	width := 0
	for _, f := range fields {
		if n := len([]rune(f.Label)); n > width {
			width = n
		}
	}
	for _, f := range fields {
		value := f.Value
		if value == "" {
			value = "-"
		}
		if _, err := fmt.Fprintf(w, "%s  %s\n", pad(f.Label+":", width+1, AlignLeft), value); err != nil {
			return err
		}
	}
	return nil
}
