// Package render draws the withdrawals console.
package render

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"

	"github.com/machibo/backoffice/internal/colors"
	"github.com/machibo/backoffice/internal/domain"
	"github.com/machibo/backoffice/internal/errors"
	"github.com/machibo/backoffice/internal/format"
)

const (
	defaultWidth = 80
	dimColor     = "241"
)

var withdrawalTable = format.NewTable(format.WithdrawalColumns)

// HeaderState defines the inputs needed to render the title bar.
type HeaderState struct {
	Badge  int
	Muted  bool
	Armed  bool
	Width  int
	Loaded bool
}

// FilterField is one filter input as shown in the filter bar.
type FilterField struct {
	Label   string
	View    string
	Focused bool
}

// FooterState defines the inputs needed to render footer help text.
type FooterState struct {
	Pagination  domain.Pagination
	FilterMode  bool
	DetailOpen  bool
	Confirming  bool
	ConfirmText string
	Loading     bool
	Width       int
}

// RowState defines the inputs needed to render a withdrawal row.
type RowState struct {
	Withdrawal domain.Withdrawal
	Selected   bool
	Width      int
}

// Header renders the title bar with the pending badge.
func Header(state HeaderState) string {
	title := lipgloss.NewStyle().Bold(true).Render("Withdrawals")

	badgeStyle := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	if state.Badge > 0 {
		badgeStyle = badgeStyle.
			Background(lipgloss.Color(ansiColorNumber(colors.Red))).
			Foreground(lipgloss.Color("15"))
	} else {
		badgeStyle = badgeStyle.Foreground(lipgloss.Color(dimColor))
	}
	badge := badgeStyle.Render(fmt.Sprintf("pending %d", state.Badge))
	if !state.Loaded {
		badge = badgeStyle.Render("pending -")
	}

	var flags []string
	if state.Muted {
		flags = append(flags, "muted")
	} else if !state.Armed {
		flags = append(flags, "press any key to arm alerts")
	}
	right := badge
	if len(flags) > 0 {
		right += " " + lipgloss.NewStyle().Foreground(lipgloss.Color(dimColor)).Render(strings.Join(flags, " "))
	}

	width := state.Width
	if width <= 0 {
		width = defaultWidth
	}
	gap := width - lipgloss.Width(title) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return title + strings.Repeat(" ", gap) + right
}

// FilterBar renders the filter inputs on one line.
func FilterBar(fields []FilterField) string {
	label := lipgloss.NewStyle().Foreground(lipgloss.Color(dimColor))
	focused := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ansiColorNumber(colors.Cyan)))

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		name := label.Render(f.Label + ":")
		if f.Focused {
			name = focused.Render(f.Label + ":")
		}
		parts = append(parts, name+" "+f.View)
	}
	return strings.Join(parts, "  ")
}

// TableHeader renders the column headers.
func TableHeader(width int) string {
	style := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(ansiColorNumber(colors.Blue)))
	return style.Render(clip(withdrawalTable.HeaderLine(), width))
}

// Row renders a single withdrawal row.
func Row(state RowState) string {
	rowStyle := lipgloss.NewStyle()
	switch {
	case state.Selected:
		rowStyle = rowStyle.Background(lipgloss.Color(ansiColorNumber(colors.Blue))).Foreground(lipgloss.Color("0"))
	case state.Withdrawal.Status == domain.WithdrawalPending:
		rowStyle = rowStyle.Foreground(lipgloss.Color(ansiColorNumber(colors.Yellow)))
	}
	return rowStyle.Render(clip(withdrawalTable.Line(state.Withdrawal), state.Width))
}

// Rows renders the table body, or a placeholder when empty.
func Rows(rows []domain.Withdrawal, cursor, width int) string {
	if len(rows) == 0 {
		return lipgloss.NewStyle().Foreground(lipgloss.Color(dimColor)).Render("No withdrawals found")
	}
	lines := make([]string, len(rows))
	for i, wd := range rows {
		lines[i] = Row(RowState{Withdrawal: wd, Selected: i == cursor, Width: width})
	}
	return strings.Join(lines, "\n")
}

// Detail renders a withdrawal detail panel.
func Detail(d domain.WithdrawalDetail, width int) string {
	var b strings.Builder
	_ = format.WriteFields(&b, format.WithdrawalDetailFields(d))
	if len(d.Logs) > 0 {
		b.WriteString("\nHistory\n")
		for _, l := range d.Logs {
			fmt.Fprintf(&b, "  %s  %-10s %s %s\n", l.CreatedAt, l.Action, l.Operator, l.Remark)
		}
	}
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(ansiColorNumber(colors.Blue))).
		Padding(0, 1)
	if width > 4 {
		box = box.Width(width - 2)
	}
	return box.Render(strings.TrimRight(b.String(), "\n"))
}

// Status renders a toast on the status line.
func Status(msg errors.Message) string {
	style := lipgloss.NewStyle()
	prefix := ""
	switch msg.Type {
	case errors.MessageTypeError:
		style = style.Foreground(lipgloss.Color(ansiColorNumber(colors.Red)))
		prefix = "✗ "
	case errors.MessageTypeWarning:
		style = style.Foreground(lipgloss.Color(ansiColorNumber(colors.Yellow)))
		prefix = "! "
	case errors.MessageTypeSuccess:
		style = style.Foreground(lipgloss.Color(ansiColorNumber(colors.Green)))
		prefix = "✓ "
	}
	return style.Render(prefix + msg.Text)
}

// Footer renders the pagination line and help text.
func Footer(state FooterState) string {
	helpStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(dimColor))
	p := state.Pagination
	page := fmt.Sprintf("Page %d/%d  %d per page  %d total", p.CurrentPage, p.LastPage, p.PerPage, p.Total)
	if state.Loading {
		page += "  loading..."
	}

	var help []string
	switch {
	case state.Confirming:
		help = append(help, state.ConfirmText, "y: confirm", "n/Esc: cancel")
	case state.FilterMode:
		help = append(help, "Tab: next field", "Enter: search", "Ctrl+R: clear", "Esc: done")
	case state.DetailOpen:
		help = append(help, "Esc: close", "a: approve", "x: reject")
	default:
		help = append(help, "j/k: move", "/: filter", "Enter: search", "Ctrl+R: clear",
			"←/→: page", "+/-: rows", "d: detail", "a/x: approve/reject", "m: mute", "q: quit")
	}
	return page + "\n" + helpStyle.Render(clip(strings.Join(help, "  |  "), state.Width))
}

func clip(value string, width int) string {
	if width <= 0 || utf8.RuneCountInString(value) <= width {
		return value
	}
	return string([]rune(value)[:width])
}

// ansiColorNumber extracts the color number from an ANSI escape sequence.
// Example: "\033[0;34m" -> "34"
func ansiColorNumber(ansi string) string {
	if len(ansi) < 2 {
		return ""
	}
	lastSemicolon := strings.LastIndex(ansi, ";")
	if lastSemicolon == -1 {
		return ""
	}
	return ansi[lastSemicolon+1 : len(ansi)-1]
}
