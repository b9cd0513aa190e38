package state

import (
	"fmt"
	"strings"

	"github.com/machibo/backoffice/internal/tui/render"
)

// View renders the TUI.
func (m *Model) View() string {
	snap := m.list.Snapshot()

	var s strings.Builder
	s.WriteString(render.Header(render.HeaderState{
		Badge:  m.badge,
		Loaded: m.badgeLoaded,
		Muted:  m.mute != nil && m.mute.Muted(),
		Armed:  m.gate.Satisfied(),
		Width:  m.width,
	}))
	s.WriteString("\n")
	s.WriteString(render.FilterBar(m.filterFields()))
	s.WriteString("\n\n")

	if m.detail != nil {
		s.WriteString(render.Detail(*m.detail, m.width))
	} else {
		s.WriteString(render.TableHeader(m.width))
		s.WriteString("\n")
		s.WriteString(m.viewport.View())
	}
	s.WriteString("\n")

	if msg, ok := m.toasts.Visible(errorClearDuration); ok {
		s.WriteString(render.Status(msg))
	}
	s.WriteString("\n")

	footer := render.FooterState{
		Pagination: snap.Pagination,
		FilterMode: m.focus != focusTable,
		DetailOpen: m.detail != nil,
		Loading:    snap.Loading,
		Width:      m.width,
	}
	if m.confirm != nil {
		footer.Confirming = true
		footer.ConfirmText = confirmText(*m.confirm)
	}
	s.WriteString(render.Footer(footer))
	return s.String()
}

func (m *Model) filterFields() []render.FilterField {
	fields := make([]render.FilterField, len(m.inputs))
	for i, in := range m.inputs {
		fields[i] = render.FilterField{
			Label:   filterLabels[i],
			View:    in.View(),
			Focused: int(m.focus)-1 == i,
		}
	}
	return fields
}

func confirmText(a pendingAction) string {
	verb := "Reject"
	if a.approve {
		verb = "Approve"
	}
	return fmt.Sprintf("%s withdrawal #%d?", verb, a.id)
}

// updateViewportContent redraws the rows into the viewport.
func (m *Model) updateViewportContent() {
	m.viewport.SetContent(render.Rows(m.list.Rows(), m.cursor, m.width))
}

// ensureCursorVisible scrolls the viewport so the cursor row is shown.
func (m *Model) ensureCursorVisible() {
	if m.cursor < m.viewport.YOffset {
		m.viewport.SetYOffset(m.cursor)
	} else if m.cursor >= m.viewport.YOffset+m.viewport.Height {
		m.viewport.SetYOffset(m.cursor - m.viewport.Height + 1)
	}
}
