package state

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/machibo/backoffice/internal/domain"
	"github.com/machibo/backoffice/internal/errors"
	"github.com/machibo/backoffice/internal/poller"
)

func (m *Model) loadCmd(fn func(context.Context) error, cleared bool) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return listLoadedMsg{err: fn(ctx), cleared: cleared}
	}
}

func (m *Model) searchCmd() tea.Cmd {
	m.applyDraft()
	m.cursor = 0
	return m.loadCmd(m.list.Search, false)
}

func (m *Model) clearCmd() tea.Cmd {
	m.cursor = 0
	return m.loadCmd(m.list.Clear, true)
}

func (m *Model) pageCmd(page int) tea.Cmd {
	m.cursor = 0
	return m.loadCmd(func(ctx context.Context) error { return m.list.PageChange(ctx, page) }, false)
}

func (m *Model) rowsPerPageCmd(n int) tea.Cmd {
	m.cursor = 0
	return m.loadCmd(func(ctx context.Context) error { return m.list.RowsPerPageChange(ctx, n) }, false)
}

func (m *Model) detailCmd(id int64) tea.Cmd {
	ctx, cache := m.ctx, m.details
	return func() tea.Msg {
		d, err := cache.GetOrFetch(ctx, id)
		return detailLoadedMsg{id: id, detail: d, err: err}
	}
}

func (m *Model) decisionCmd(action pendingAction) tea.Cmd {
	ctx, decisions := m.ctx, m.decisions
	return func() tea.Msg {
		var err error
		if action.approve {
			err = decisions.Approve(ctx, action.id, "")
		} else {
			err = decisions.Reject(ctx, action.id, "")
		}
		return decisionDoneMsg{id: action.id, err: err}
	}
}

// publishUpdate runs on the poller goroutine and keeps only the newest update.
func (m *Model) publishUpdate(upd poller.Update) {
	for {
		select {
		case m.updates <- upd:
			return
		default:
		}
		select {
		case <-m.updates:
		default:
		}
	}
}

func (m *Model) waitForUpdate() tea.Cmd {
	ch := m.updates
	return func() tea.Msg {
		return pendingUpdateMsg(<-ch)
	}
}

func (m *Model) handleListLoaded(msg listLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.cleared {
		m.syncInputs()
	}
	m.clampCursor()
	m.updateViewportContent()
	if msg.err != nil {
		m.toasts.Error(errors.FailureText("Load withdrawals", msg.err))
		return m, m.toast()
	}
	return m, nil
}

func (m *Model) handleDetailLoaded(msg detailLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.toasts.Error(errors.FailureText(fmt.Sprintf("Load withdrawal #%d", msg.id), msg.err))
		return m, m.toast()
	}
	d := msg.detail
	m.detail = &d
	return m, nil
}

func (m *Model) handleDecisionDone(msg decisionDoneMsg) (tea.Model, tea.Cmd) {
	if msg.err == nil {
		m.detail = nil
		m.details.Dispose()
	}
	current := m.list.Pagination().CurrentPage
	return m, tea.Batch(m.pageCmd(current), m.toast())
}

func (m *Model) handlePendingUpdate(msg pendingUpdateMsg) (tea.Model, tea.Cmd) {
	m.badge = msg.Badge
	m.badgeLoaded = true
	var cmds []tea.Cmd
	if n := len(msg.Novel); n > 0 {
		m.toasts.Info(fmt.Sprintf("%d new pending withdrawal(s)", n))
		cmds = append(cmds, m.toast())
	}
	cmds = append(cmds, m.waitForUpdate())
	return m, tea.Batch(cmds...)
}

func pendingOnly(wd domain.Withdrawal) bool {
	return wd.Status == domain.WithdrawalPending
}
