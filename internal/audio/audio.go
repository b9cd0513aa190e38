// Package audio plays the pending-withdrawal alert.
package audio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/machibo/backoffice/internal/config"
)

// DefaultTimeout bounds a single playback.
const DefaultTimeout = 10 * time.Second

// ErrNoPlayer is returned when a sound file is configured but no player
// command could be found.
var ErrNoPlayer = errors.New("audio: no sound player found")

// Player plays the alert once.
type Player interface {
	Play(ctx context.Context) error
}

// knownPlayers are tried in order when alert_player is unset.
var knownPlayers = []string{"paplay", "afplay", "aplay", "ffplay"}

// CommandPlayer plays a sound file with an external command.
type CommandPlayer struct {
	command  string
	args     []string
	sound    string
	timeout  time.Duration
	lookPath func(string) (string, error)
	run      func(ctx context.Context, name string, args ...string) ([]byte, error)
}

// PlayerOption configures a CommandPlayer.
type PlayerOption func(*CommandPlayer)

// WithCommand sets the player command line, e.g. "mpv --no-video".
func WithCommand(commandLine string) PlayerOption {
	return func(p *CommandPlayer) {
		fields := strings.Fields(commandLine)
		if len(fields) == 0 {
			return
		}
		p.command = fields[0]
		p.args = fields[1:]
	}
}

// WithTimeout bounds each playback.
func WithTimeout(d time.Duration) PlayerOption {
	return func(p *CommandPlayer) { p.timeout = d }
}

// NewCommandPlayer creates a player for the sound file at path.
func NewCommandPlayer(sound string, opts ...PlayerOption) *CommandPlayer {
	p := &CommandPlayer{
		sound:    sound,
		timeout:  DefaultTimeout,
		lookPath: exec.LookPath,
		run:      runCommand,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Play runs the player command and waits for it to finish.
func (p *CommandPlayer) Play(ctx context.Context) error {
	name, args, err := p.commandLine()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	if out, err := p.run(ctx, name, args...); err != nil {
		return fmt.Errorf("audio: %s failed: %w: %s", name, err, strings.TrimSpace(string(out)))
	}
	return nil
}

func (p *CommandPlayer) commandLine() (string, []string, error) {
	if p.command != "" {
		return p.command, append(append([]string(nil), p.args...), p.sound), nil
	}
	for _, candidate := range knownPlayers {
		if _, err := p.lookPath(candidate); err == nil {
			args := []string{p.sound}
			if candidate == "ffplay" {
				args = []string{"-nodisp", "-autoexit", "-loglevel", "quiet", p.sound}
			}
			return candidate, args, nil
		}
	}
	return "", nil, ErrNoPlayer
}

func runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	err := cmd.Run()
	return out.Bytes(), err
}

// Bell rings the terminal bell.
type Bell struct {
	w io.Writer
}

// NewBell creates a Bell writing to w, or stderr when w is nil.
func NewBell(w io.Writer) *Bell {
	if w == nil {
		w = os.Stderr
	}
	return &Bell{w: w}
}

// Play writes the BEL character.
func (b *Bell) Play(context.Context) error {
	_, err := io.WriteString(b.w, "\a")
	return err
}

// FromConfig returns a CommandPlayer when alert_sound is set and a Bell otherwise.
// sound overrides alert_sound when non-empty.
func FromConfig(sound string) Player {
	if sound == "" {
		sound = config.Get("alert_sound", "")
	}
	if sound == "" {
		return NewBell(nil)
	}
	return NewCommandPlayer(sound, WithCommand(config.Get("alert_player", "")))
}
