package state

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// handleKeyMsg processes keyboard input. Any key satisfies the alert gate.
func (m *Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.gate.Satisfy()

	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}
	if m.confirm != nil {
		return m.handleConfirmation(msg)
	}
	if m.focus != focusTable {
		return m.handleFilterKey(msg)
	}
	return m.handleTableKey(msg)
}

// handleConfirmation handles key input while an approve/reject waits for y/n.
func (m *Model) handleConfirmation(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y", "enter":
		action := *m.confirm
		m.confirm = nil
		return m, m.decisionCmd(action)
	case "n", "N", "esc":
		m.confirm = nil
	}
	return m, nil
}

func (m *Model) handleFilterKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.setFocus(focusTable)
		return m, nil
	case "tab":
		next := m.focus + 1
		if next > focusTo {
			next = focusUsername
		}
		m.setFocus(next)
		return m, nil
	case "shift+tab":
		prev := m.focus - 1
		if prev < focusUsername {
			prev = focusTo
		}
		m.setFocus(prev)
		return m, nil
	case "enter":
		m.setFocus(focusTable)
		return m, m.searchCmd()
	case "ctrl+r":
		return m, m.clearCmd()
	}

	idx := int(m.focus) - 1
	var cmd tea.Cmd
	m.inputs[idx], cmd = m.inputs[idx].Update(msg)
	m.applyDraft()
	return m, cmd
}

func (m *Model) handleTableKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "esc":
		m.detail = nil
		return m, nil
	case "/", "tab", "f":
		m.detail = nil
		m.setFocus(focusUsername)
		return m, nil
	case "enter":
		return m, m.searchCmd()
	case "ctrl+r":
		return m, m.clearCmd()
	case "r":
		return m, m.pageCmd(m.list.Pagination().CurrentPage)
	case "j", "down":
		m.moveCursor(1)
		return m, nil
	case "k", "up":
		m.moveCursor(-1)
		return m, nil
	case "left", "h":
		if p := m.list.Pagination(); p.HasPrev() {
			return m, m.pageCmd(p.CurrentPage - 1)
		}
		return m, nil
	case "right", "l":
		if p := m.list.Pagination(); p.HasNext() {
			return m, m.pageCmd(p.CurrentPage + 1)
		}
		return m, nil
	case "+", "=":
		return m, m.stepRowsPerPage(1)
	case "-":
		return m, m.stepRowsPerPage(-1)
	case "d":
		if wd, ok := m.selected(); ok {
			return m, m.detailCmd(wd.ID)
		}
		return m, nil
	case "a":
		return m, m.askDecision(true)
	case "x":
		return m, m.askDecision(false)
	case "m":
		return m, m.toggleMute()
	}
	return m, nil
}

func (m *Model) setFocus(f focus) {
	for i := range m.inputs {
		if int(f)-1 == i {
			m.inputs[i].Focus()
		} else {
			m.inputs[i].Blur()
		}
	}
	m.focus = f
}

func (m *Model) moveCursor(delta int) {
	m.cursor += delta
	m.clampCursor()
	m.updateViewportContent()
	m.ensureCursorVisible()
}

func (m *Model) stepRowsPerPage(dir int) tea.Cmd {
	current := m.list.Pagination().PerPage
	next := 0
	if dir > 0 {
		for _, n := range rowsPerPageSteps {
			if n > current {
				next = n
				break
			}
		}
	} else {
		for _, n := range rowsPerPageSteps {
			if n < current {
				next = n
			}
		}
	}
	if next == 0 {
		return nil
	}
	return m.rowsPerPageCmd(next)
}

// askDecision targets the open detail, else the selected row.
func (m *Model) askDecision(approve bool) tea.Cmd {
	wd, ok := m.selected()
	if m.detail != nil {
		wd, ok = m.detail.Withdrawal, true
	}
	if !ok {
		return nil
	}
	if !pendingOnly(wd) {
		m.toasts.Warning(fmt.Sprintf("Withdrawal #%d is %s", wd.ID, wd.Status))
		return m.toast()
	}
	m.confirm = &pendingAction{approve: approve, id: wd.ID}
	return nil
}

func (m *Model) toggleMute() tea.Cmd {
	if m.mute == nil {
		return nil
	}
	muted, err := m.mute.ToggleMuted()
	switch {
	case err != nil:
		m.toasts.Error(fmt.Sprintf("Failed to save mute setting: %v", err))
	case muted:
		m.toasts.Info("Alerts muted")
	default:
		m.toasts.Info("Alerts unmuted")
	}
	return m.toast()
}
