package app

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/machibo/backoffice/internal/colors"
	"github.com/machibo/backoffice/internal/poller"
	"github.com/machibo/backoffice/internal/session"
)

// WatchOptions holds the parameters of watch mode.
type WatchOptions struct {
	Poller   *poller.Poller
	Sessions *session.Store
	Output   io.Writer
	// Input is read line by line; the first Enter satisfies the alert gate.
	Input io.Reader
	// Armed satisfies the alert gate up front.
	Armed bool
	// Signals overrides SIGINT/SIGTERM handling; used by tests.
	Signals <-chan os.Signal
}

// WatchUseCase prints pending-withdrawal updates until interrupted.
type WatchUseCase struct{}

// NewWatchUseCase creates a watch use-case.
func NewWatchUseCase() *WatchUseCase {
	return &WatchUseCase{}
}

// Execute runs the poller and prints every update until ctx is done, a
// signal arrives, or the session ends.
func (u *WatchUseCase) Execute(ctx context.Context, opts WatchOptions) error {
	if opts.Poller == nil || opts.Sessions == nil {
		return fmt.Errorf("watch: poller and session store are required")
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	sigChan := opts.Signals
	if sigChan == nil {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(ch)
		sigChan = ch
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	gate := opts.Poller.Gate()
	if opts.Armed {
		gate.Satisfy()
	}
	colors.Info("Watching pending withdrawals (Ctrl+C to stop)...")
	if !gate.Satisfied() && opts.Input != nil {
		colors.Info("Press Enter to arm sound alerts.")
		go armOnEnter(opts.Input, gate, opts.Output)
	}

	opts.Poller.OnUpdate(func(upd poller.Update) {
		printWatchUpdate(opts.Output, upd)
	})

	ended := make(chan struct{})
	var once sync.Once
	unsubscribe := opts.Sessions.Subscribe(func(snap session.Snapshot) {
		if snap.Status == session.Unauthenticated {
			once.Do(func() { close(ended) })
		}
	})
	defer unsubscribe()

	done := make(chan error, 1)
	go func() { done <- opts.Poller.Run(ctx, opts.Sessions) }()

	var result error
	select {
	case <-ctx.Done():
	case sig := <-sigChan:
		_, _ = fmt.Fprintf(opts.Output, "\nReceived signal %v, stopping...\n", sig)
	case <-ended:
		result = fmt.Errorf("watch: session ended, run 'backoffice login' to sign in again")
	}
	cancel()
	if err := <-done; err != nil && result == nil {
		result = err
	}
	return result
}

func armOnEnter(r io.Reader, gate *poller.Gate, w io.Writer) {
	scanner := bufio.NewScanner(r)
	if scanner.Scan() {
		gate.Satisfy()
		_, _ = fmt.Fprintln(w, "Sound alerts armed.")
	}
}

func printWatchUpdate(w io.Writer, upd poller.Update) {
	line := fmt.Sprintf("[%s] pending: %d", upd.At.Format(time.DateTime), upd.Badge)
	if len(upd.Novel) > 0 {
		ids := make([]string, len(upd.Novel))
		for i, id := range upd.Novel {
			ids[i] = fmt.Sprintf("#%d", id)
		}
		line += fmt.Sprintf("  new: %s", strings.Join(ids, " "))
	}
	if upd.Alerted {
		line += "  (alert)"
	}
	color := ""
	if len(upd.Novel) > 0 {
		color = colors.Yellow
	}
	if color != "" {
		_, _ = fmt.Fprintf(w, "%s%s%s\n", color, line, colors.Reset)
		return
	}
	_, _ = fmt.Fprintln(w, line)
}
