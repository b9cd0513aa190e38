// Package hooks runs operator scripts at fixed points of the console's life.
//
// Every executable file in <hooks_dir>/<point>/ runs in name order with the
// point's variables added to the process environment.
package hooks

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/machibo/backoffice/internal/config"
	"github.com/machibo/backoffice/internal/logging"
)

// Hook points.
const (
	// PointPendingNew runs when a poll finds pending withdrawals not seen before.
	PointPendingNew = "pending-new"
	// PointPostDecision runs after a withdrawal was approved or rejected.
	PointPostDecision = "post-decision"
)

// Failure modes.
const (
	FailureAbort  = "abort"
	FailureWarn   = "warn"
	FailureIgnore = "ignore"
)

// waitDelay bounds how long output pipes stay open after a script is killed.
const waitDelay = time.Second

// Options configures a Runner.
type Options struct {
	// Dir holds one sub-directory per hook point. Empty disables hooks.
	Dir string
	// FailureMode is abort, warn or ignore.
	FailureMode string
	// Async starts scripts without waiting for them.
	Async bool
	// Timeout bounds every script.
	Timeout time.Duration
	// MaxAsync caps concurrently running async scripts.
	MaxAsync int
	// Output receives script output. Defaults to stderr.
	Output io.Writer
	Logger logging.Logger
}

// OptionsFromConfig reads the hooks_* configuration keys.
func OptionsFromConfig() Options {
	return Options{
		Dir:         config.Get("hooks_dir", ""),
		FailureMode: config.Get("hooks_failure_mode", FailureWarn),
		Async:       config.GetBool("hooks_async", false),
		Timeout:     config.GetSeconds("hooks_async_timeout", 30*time.Second),
		MaxAsync:    config.GetInt("hooks_max_async", 10),
	}
}

// Runner executes hook scripts.
type Runner struct {
	opts   Options
	logger logging.Logger

	mu      sync.Mutex
	pending int
	wg      sync.WaitGroup
}

// New creates a Runner.
func New(opts Options) *Runner {
	if opts.FailureMode == "" {
		opts.FailureMode = FailureWarn
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.MaxAsync <= 0 {
		opts.MaxAsync = 10
	}
	if opts.Output == nil {
		opts.Output = os.Stderr
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Nop()
	}
	return &Runner{opts: opts, logger: logger.With("component", "hooks")}
}

// Run executes the scripts of point. In abort mode the first failing
// synchronous script stops the run and its error is returned.
func (r *Runner) Run(ctx context.Context, point string, env map[string]string) error {
	if r == nil || r.opts.Dir == "" {
		return nil
	}
	scripts, err := listScripts(filepath.Join(r.opts.Dir, point))
	if err != nil || len(scripts) == 0 {
		return nil
	}

	environ := r.environ(point, env)
	r.logger.Debug("running hooks", "point", point, "scripts", len(scripts))
	for _, script := range scripts {
		if r.opts.Async {
			r.startAsync(script, environ)
			continue
		}
		if err := r.runSync(ctx, script, environ); err != nil && r.opts.FailureMode == FailureAbort {
			return err
		}
	}
	return nil
}

// Wait blocks until every async script has finished.
func (r *Runner) Wait() {
	if r == nil {
		return
	}
	r.wg.Wait()
}

// Pending reports how many async scripts are still running.
func (r *Runner) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pending
}

func (r *Runner) environ(point string, env map[string]string) []string {
	environ := append(os.Environ(),
		"HOOK_POINT="+point,
		"HOOK_TIMESTAMP="+time.Now().Format(time.RFC3339),
		config.EnvPrefix+"HOOKS_FAILURE_MODE="+r.opts.FailureMode,
	)
	if exe, err := os.Executable(); err == nil {
		environ = append(environ, config.EnvPrefix+"BINARY="+exe)
	}
	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		environ = append(environ, k+"="+env[k])
	}
	return environ
}

func (r *Runner) runSync(ctx context.Context, script string, environ []string) error {
	ctx, cancel := context.WithTimeout(ctx, r.opts.Timeout)
	defer cancel()

	start := time.Now()
	cmd := exec.CommandContext(ctx, script)
	cmd.Env = environ
	cmd.WaitDelay = waitDelay
	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output
	err := cmd.Run()
	if output.Len() > 0 {
		_, _ = r.opts.Output.Write(output.Bytes())
	}
	name := filepath.Base(script)
	if err == nil {
		r.logger.Debug("hook completed", "script", name, "duration_seconds", time.Since(start).Seconds())
		return nil
	}
	err = fmt.Errorf("hook %s failed: %w", name, err)
	r.report(err)
	return err
}

func (r *Runner) startAsync(script string, environ []string) {
	name := filepath.Base(script)
	r.mu.Lock()
	if r.pending >= r.opts.MaxAsync {
		r.mu.Unlock()
		r.logger.Warn("too many async hooks pending, skipping", "script", name, "max", r.opts.MaxAsync)
		return
	}
	r.pending++
	r.wg.Add(1)
	r.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), r.opts.Timeout)
	cmd := exec.CommandContext(ctx, script)
	cmd.Env = environ
	cmd.WaitDelay = waitDelay
	cmd.Stdout = r.opts.Output
	cmd.Stderr = r.opts.Output

	done := func() {
		cancel()
		r.mu.Lock()
		r.pending--
		r.mu.Unlock()
		r.wg.Done()
	}
	if err := cmd.Start(); err != nil {
		r.report(fmt.Errorf("hook %s failed to start: %w", name, err))
		done()
		return
	}
	go func() {
		defer done()
		start := time.Now()
		err := cmd.Wait()
		if ctx.Err() == context.DeadlineExceeded {
			r.report(fmt.Errorf("hook %s timed out after %.2fs", name, time.Since(start).Seconds()))
			return
		}
		if err != nil {
			r.report(fmt.Errorf("hook %s failed: %w", name, err))
		}
	}()
}

func (r *Runner) report(err error) {
	if r.opts.FailureMode == FailureIgnore {
		return
	}
	r.logger.Warn("hook failed", "error", err.Error())
	_, _ = fmt.Fprintf(r.opts.Output, "warning: %v\n", err)
}

func listScripts(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var scripts []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		path := filepath.Join(dir, e.Name())
		info, err := os.Stat(path)
		if err != nil || info.Mode()&0111 == 0 {
			continue
		}
		scripts = append(scripts, path)
	}
	sort.Strings(scripts)
	return scripts, nil
}
