// Package app provides TUI application adapters for command wiring.
package app

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	usecase "github.com/machibo/backoffice/internal/app"
	"github.com/machibo/backoffice/internal/audio"
	"github.com/machibo/backoffice/internal/colors"
	"github.com/machibo/backoffice/internal/config"
	"github.com/machibo/backoffice/internal/poller"
	"github.com/machibo/backoffice/internal/tui/state"
)

// ProgramRunner runs a bubbletea program to completion.
type ProgramRunner interface {
	Run(model tea.Model) error
}

// DefaultProgramRunner wraps tea.NewProgram with the alternate screen.
type DefaultProgramRunner struct{}

// NewDefaultProgramRunner creates a new DefaultProgramRunner.
func NewDefaultProgramRunner() *DefaultProgramRunner {
	return &DefaultProgramRunner{}
}

// Run starts a bubbletea program with the given model.
func (r *DefaultProgramRunner) Run(model tea.Model) error {
	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// Client builds and runs the withdrawals console over a Runtime.
type Client struct {
	runtime *usecase.Runtime
	runner  ProgramRunner
	player  audio.Player
}

// NewClient creates a TUI client. A nil runner uses DefaultProgramRunner and
// a nil player uses the configured alert sound.
func NewClient(rt *usecase.Runtime, runner ProgramRunner, player audio.Player) *Client {
	if rt == nil {
		panic("tui.NewClient: runtime dependency cannot be nil")
	}
	if runner == nil {
		runner = NewDefaultProgramRunner()
	}
	if player == nil {
		player = audio.FromConfig(config.Get("alert_sound", ""))
	}
	return &Client{runtime: rt, runner: runner, player: player}
}

// Run shows the console until the operator quits. The pending poller runs
// for the lifetime of the program.
func (c *Client) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := c.runtime.NewPoller(c.player, &poller.Gate{})
	model := c.CreateModel(ctx, p)

	done := make(chan error, 1)
	go func() { done <- p.Run(ctx, c.runtime.Sessions) }()

	err := c.runner.Run(model)
	cancel()
	<-done
	if err != nil {
		colors.Error(fmt.Sprintf("Error running TUI: %v", err))
		return err
	}
	return nil
}

// CreateModel builds the console model bound to p.
func (c *Client) CreateModel(ctx context.Context, p *poller.Poller) *state.Model {
	rt := c.runtime
	return state.NewModel(state.Dependencies{
		Context:   ctx,
		List:      usecase.NewWithdrawalList(rt.Client, rt.Settings.PerPage(), nil, rt.Logger),
		Details:   usecase.NewWithdrawalDetailCache(rt.Client),
		Decisions: rt.Client,
		Hooks:     rt.Hooks,
		Poller:    p,
		Mute:      rt.Settings,
	})
}
