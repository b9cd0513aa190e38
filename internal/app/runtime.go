// Package app wires the back-office components into use cases shared by the
// CLI commands and the TUI.
package app

import (
	"context"
	"fmt"

	"github.com/machibo/backoffice/internal/api"
	"github.com/machibo/backoffice/internal/audio"
	"github.com/machibo/backoffice/internal/auth"
	"github.com/machibo/backoffice/internal/config"
	"github.com/machibo/backoffice/internal/errors"
	"github.com/machibo/backoffice/internal/hooks"
	"github.com/machibo/backoffice/internal/logging"
	"github.com/machibo/backoffice/internal/poller"
	"github.com/machibo/backoffice/internal/session"
	"github.com/machibo/backoffice/internal/settings"
	"github.com/machibo/backoffice/internal/storage"
)

// Runtime holds the process-wide components. Create it once per process
// after config.Load and close it on exit.
type Runtime struct {
	Logger   logging.Logger
	KV       storage.Store
	Sessions *session.Store
	Client   *api.Client
	Auth     *auth.Service
	Settings *settings.Store
	Hooks    *hooks.Runner
}

// NewRuntime opens durable storage, loads the persisted session and builds
// the API client from configuration.
func NewRuntime() (*Runtime, error) {
	kv, err := storage.NewFromConfig()
	if err != nil {
		return nil, fmt.Errorf("app: open storage: %w", err)
	}
	logger := logging.GetGlobal()
	rt, err := NewRuntimeWith(kv, config.Get("api_base_url", config.DefaultAPIBaseURL), logger)
	if err != nil {
		_ = kv.Close()
		return nil, err
	}
	opts := hooks.OptionsFromConfig()
	opts.Logger = logger
	rt.Hooks = hooks.New(opts)
	return rt, nil
}

// NewRuntimeWith builds a Runtime over an existing store and base URL.
// Hooks stay disabled until the caller sets Runtime.Hooks.
func NewRuntimeWith(kv storage.Store, baseURL string, logger logging.Logger) (*Runtime, error) {
	if logger == nil {
		logger = logging.Nop()
	}
	sessions := session.New(kv, logger)
	sessions.Init()
	if sessions.Token() == "" {
		sessions.OnAuthStateChange(session.Unauthenticated, "")
	}

	client, err := api.NewClient(api.ClientConfig{
		BaseURL:    baseURL,
		HTTPClient: newHTTPClient(),
		Tokens:     sessions,
		Logger:     logger,
	})
	if err != nil {
		return nil, fmt.Errorf("app: create api client: %w", err)
	}

	return &Runtime{
		Logger:   logger,
		KV:       kv,
		Sessions: sessions,
		Client:   client,
		Auth:     auth.NewService(client, sessions, kv, logger),
		Settings: settings.DefaultStore(),
		Hooks:    hooks.New(hooks.Options{Logger: logger}),
	}, nil
}

// Restore settles the session loaded from storage. A persisted token is
// re-validated against the API; until then the session stays loading.
func (r *Runtime) Restore(ctx context.Context) (session.Snapshot, error) {
	snap, err := r.Auth.Restore(ctx)
	if err != nil {
		r.Logger.Warn("restore session failed", "error", err.Error())
	}
	return snap, err
}

// NewPoller creates a pending-withdrawal poller bound to this runtime.
// Pending-new hooks run for every update with unseen IDs.
func (r *Runtime) NewPoller(player audio.Player, gate *poller.Gate) *poller.Poller {
	p := poller.New(poller.Config{
		Lister:   r.Client,
		Store:    r.KV,
		Player:   player,
		Gate:     gate,
		Mute:     r.Settings,
		Logger:   r.Logger,
		Interval: config.GetSeconds("poll_interval", poller.DefaultInterval),
	})
	p.OnUpdate(r.Hooks.PollListener())
	return p
}

// NewDecisionUseCase creates a decision use case that runs post-decision hooks.
func (r *Runtime) NewDecisionUseCase(toasts errors.ErrorHandler) *DecisionUseCase {
	return NewDecisionUseCase(r.Client, toasts).WithHooks(r.Hooks)
}

// Close waits for async hooks and releases durable storage.
func (r *Runtime) Close() error {
	r.Hooks.Wait()
	return r.KV.Close()
}
