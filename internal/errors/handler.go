// Package errors delivers user-facing toasts: colored console lines in the
// CLI and a status line in the TUI.
package errors

import (
	"sync"

	"github.com/machibo/backoffice/internal/colors"
)

// ErrorHandler receives toasts. Different front ends render them differently.
type ErrorHandler interface {
	Error(msg string)
	Warning(msg string)
	Info(msg string)
	Success(msg string)
}

// ColorOutput is the console writer used by CLIHandler.
type ColorOutput interface {
	Error(msgs ...string)
	Warning(msgs ...string)
	Info(msgs ...string)
	Success(msgs ...string)
}

// ColorsOutput writes through the colors package.
type ColorsOutput struct{}

var _ ColorOutput = ColorsOutput{}

func (ColorsOutput) Error(msgs ...string)   { colors.Error(msgs...) }
func (ColorsOutput) Warning(msgs ...string) { colors.Warning(msgs...) }
func (ColorsOutput) Info(msgs ...string)    { colors.Info(msgs...) }
func (ColorsOutput) Success(msgs ...string) { colors.Success(msgs...) }

// CLIHandler prints toasts to stdout/stderr. Toasts are serialized so
// concurrent commands never interleave partial lines.
type CLIHandler struct {
	out ColorOutput
	mu  sync.Mutex
}

// NewCLIHandler creates a CLIHandler writing to out.
func NewCLIHandler(out ColorOutput) *CLIHandler {
	return &CLIHandler{out: out}
}

// NewDefaultCLIHandler creates a CLIHandler using the colors package.
func NewDefaultCLIHandler() *CLIHandler {
	return NewCLIHandler(ColorsOutput{})
}

func (h *CLIHandler) Error(msg string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.out.Error(msg)
}

func (h *CLIHandler) Warning(msg string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.out.Warning(msg)
}

func (h *CLIHandler) Info(msg string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.out.Info(msg)
}

func (h *CLIHandler) Success(msg string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.out.Success(msg)
}
