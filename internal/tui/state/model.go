// Package state holds the Bubble Tea model of the withdrawals console.
package state

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/machibo/backoffice/internal/app"
	"github.com/machibo/backoffice/internal/detailcache"
	"github.com/machibo/backoffice/internal/domain"
	"github.com/machibo/backoffice/internal/errors"
	"github.com/machibo/backoffice/internal/poller"
)

const (
	headerLines           = 4
	footerLines           = 3
	defaultViewportWidth  = 80
	defaultViewportHeight = 17
	errorClearDuration    = 5 * time.Second
)

// rowsPerPageSteps are the choices cycled by +/-.
var rowsPerPageSteps = []int{10, 25, 50, 100}

type focus int

const (
	focusTable focus = iota
	focusUsername
	focusStatus
	focusFrom
	focusTo
)

var filterLabels = []string{"User", "Status", "From", "To"}

// MuteToggler reads and flips the alert mute preference.
type MuteToggler interface {
	Muted() bool
	ToggleMuted() (bool, error)
}

// Dependencies are the collaborators of the console.
type Dependencies struct {
	Context   context.Context
	List      *app.WithdrawalList
	Details   *detailcache.Cache[int64, domain.WithdrawalDetail]
	Decisions app.DecisionClient
	// Hooks runs post-decision scripts. Optional.
	Hooks app.HookRunner
	// Poller is optional; without it the badge is never updated.
	Poller *poller.Poller
	// Gate defaults to the poller's gate.
	Gate *poller.Gate
	Mute MuteToggler
}

type pendingAction struct {
	approve bool
	id      int64
}

// Model is the withdrawals console.
type Model struct {
	ctx       context.Context
	list      *app.WithdrawalList
	details   *detailcache.Cache[int64, domain.WithdrawalDetail]
	decisions *app.DecisionUseCase
	mute      MuteToggler
	gate      *poller.Gate
	hasPoller bool
	updates   chan poller.Update

	toasts     *errors.TUIHandler
	statusTick func() tea.Cmd

	inputs   []textinput.Model
	focus    focus
	cursor   int
	viewport viewport.Model
	width    int
	height   int

	badge       int
	badgeLoaded bool
	detail      *domain.WithdrawalDetail
	confirm     *pendingAction
}

// NewModel creates the console. List, Details and Decisions are required.
func NewModel(deps Dependencies) *Model {
	if deps.List == nil || deps.Details == nil || deps.Decisions == nil {
		panic("state.NewModel: list, details and decisions dependencies cannot be nil")
	}
	ctx := deps.Context
	if ctx == nil {
		ctx = context.Background()
	}
	gate := deps.Gate
	if gate == nil && deps.Poller != nil {
		gate = deps.Poller.Gate()
	}
	if gate == nil {
		gate = &poller.Gate{}
	}

	m := &Model{
		ctx:      ctx,
		list:     deps.List,
		details:  deps.Details,
		mute:     deps.Mute,
		gate:     gate,
		toasts:   errors.NewTUIHandler(nil),
		viewport: viewport.New(defaultViewportWidth, defaultViewportHeight),
		width:    defaultViewportWidth,
		statusTick: func() tea.Cmd {
			return tea.Tick(errorClearDuration, func(time.Time) tea.Msg { return clearStatusMsg{} })
		},
	}
	m.decisions = app.NewDecisionUseCase(deps.Decisions, m.toasts).WithHooks(deps.Hooks)
	m.inputs = newFilterInputs()
	m.syncInputs()

	if deps.Poller != nil {
		m.hasPoller = true
		m.updates = make(chan poller.Update, 1)
		deps.Poller.OnUpdate(m.publishUpdate)
	}
	return m
}

func newFilterInputs() []textinput.Model {
	placeholders := []string{"username", "PENDING", domain.DateLayout, domain.DateLayout}
	widths := []int{14, 9, 10, 10}
	inputs := make([]textinput.Model, len(placeholders))
	for i := range inputs {
		ti := textinput.New()
		ti.Prompt = ""
		ti.Placeholder = placeholders[i]
		ti.Width = widths[i]
		ti.CharLimit = 32
		ti.Cursor.SetMode(cursor.CursorStatic)
		inputs[i] = ti
	}
	return inputs
}

// Init loads the first page and starts listening for pending updates.
func (m *Model) Init() tea.Cmd {
	load := m.loadCmd(m.list.Load, false)
	if m.hasPoller {
		return tea.Batch(load, m.waitForUpdate())
	}
	return load
}

// Update handles messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	case tea.WindowSizeMsg:
		return m.handleWindowSizeMsg(msg)
	case listLoadedMsg:
		return m.handleListLoaded(msg)
	case detailLoadedMsg:
		return m.handleDetailLoaded(msg)
	case decisionDoneMsg:
		return m.handleDecisionDone(msg)
	case pendingUpdateMsg:
		return m.handlePendingUpdate(msg)
	case clearStatusMsg:
		return m, nil
	}
	return m, nil
}

// Badge returns the last published pending count.
func (m *Model) Badge() int { return m.badge }

// Toasts returns the status-line handler.
func (m *Model) Toasts() *errors.TUIHandler { return m.toasts }

func (m *Model) handleWindowSizeMsg(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height
	h := msg.Height - headerLines - footerLines
	if h < 3 {
		h = 3
	}
	m.viewport.Width = msg.Width
	m.viewport.Height = h
	m.updateViewportContent()
	return m, nil
}

func (m *Model) toast() tea.Cmd {
	if m.statusTick == nil {
		return nil
	}
	return m.statusTick()
}

func (m *Model) selected() (domain.Withdrawal, bool) {
	rows := m.list.Rows()
	if m.cursor < 0 || m.cursor >= len(rows) {
		return domain.Withdrawal{}, false
	}
	return rows[m.cursor], true
}

func (m *Model) clampCursor() {
	n := len(m.list.Rows())
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// syncInputs copies the draft filter into the inputs.
func (m *Model) syncInputs() {
	draft := m.list.Draft()
	values := []string{draft.Username, string(draft.Status), draft.From, draft.To}
	for i := range m.inputs {
		m.inputs[i].SetValue(values[i])
	}
}

// applyDraft copies the inputs into the draft filter without fetching.
func (m *Model) applyDraft() {
	m.list.Edit(func(f *domain.WithdrawalFilter) {
		f.Username = m.inputs[0].Value()
		f.Status = domain.WithdrawalStatus(m.inputs[1].Value())
		f.From = m.inputs[2].Value()
		f.To = m.inputs[3].Value()
	})
}
