// Package auth drives token store transitions from credential login, logout and
// session restore.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/machibo/backoffice/internal/api"
	"github.com/machibo/backoffice/internal/domain"
	"github.com/machibo/backoffice/internal/logging"
	"github.com/machibo/backoffice/internal/session"
	"github.com/machibo/backoffice/internal/storage"
)

// ErrMissingCredentials is returned when username or password is empty.
var ErrMissingCredentials = errors.New("auth: username and password are required")

// Client is the subset of the API used for authentication.
type Client interface {
	Login(ctx context.Context, creds domain.Credentials) (domain.LoginResult, error)
	WithdrawalBanks(ctx context.Context) ([]domain.WithdrawalBank, error)
}

// Service reports auth provider events to the token store.
type Service struct {
	client   Client
	sessions *session.Store
	kv       storage.Store
	logger   logging.Logger
}

// NewService creates a Service. kv holds per-session state cleared on logout.
func NewService(client Client, sessions *session.Store, kv storage.Store, logger logging.Logger) *Service {
	if client == nil {
		panic("auth.NewService: client dependency cannot be nil")
	}
	if sessions == nil {
		panic("auth.NewService: session store dependency cannot be nil")
	}
	if logger == nil {
		logger = logging.Nop()
	}
	return &Service{client: client, sessions: sessions, kv: kv, logger: logger.With("component", "auth")}
}

// Login exchanges credentials for a token and marks the session authenticated.
// A failed login leaves the session unauthenticated.
func (s *Service) Login(ctx context.Context, username, password string) (domain.LoginResult, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return domain.LoginResult{}, ErrMissingCredentials
	}

	s.sessions.OnAuthStateChange(session.Loading, "")
	result, err := s.client.Login(ctx, domain.Credentials{Username: username, Password: password})
	if err != nil {
		s.sessions.OnAuthStateChange(session.Unauthenticated, "")
		s.logger.Warn("login failed", "username", username, "error", err.Error())
		return domain.LoginResult{}, fmt.Errorf("auth: login: %w", err)
	}
	s.sessions.OnAuthStateChange(session.Authenticated, result.AccessToken)
	s.logger.Info("logged in", "username", result.Username)
	return result, nil
}

// Logout drops the token and the per-session pending-ID set.
func (s *Service) Logout() error {
	s.sessions.OnAuthStateChange(session.Unauthenticated, "")
	if s.kv != nil {
		if err := s.kv.Delete(storage.KeyPendingWithdrawalIDs); err != nil {
			return fmt.Errorf("auth: clear pending ids: %w", err)
		}
	}
	s.logger.Info("logged out")
	return nil
}

// Restore loads the persisted token and re-validates it with a cheap
// authenticated call. While validation is in flight the session is loading
// and the persisted token is reused.
func (s *Service) Restore(ctx context.Context) (session.Snapshot, error) {
	s.sessions.Init()
	token := s.sessions.Token()
	if token == "" {
		s.sessions.OnAuthStateChange(session.Unauthenticated, "")
		return s.sessions.Snapshot(), nil
	}

	if _, err := s.client.WithdrawalBanks(ctx); err != nil {
		if errors.Is(err, api.ErrUnauthorized) {
			// The client already invalidated the token.
			s.logger.Info("persisted session expired")
			return s.sessions.Snapshot(), nil
		}
		return s.sessions.Snapshot(), fmt.Errorf("auth: validate session: %w", err)
	}
	s.sessions.OnAuthStateChange(session.Authenticated, token)
	return s.sessions.Snapshot(), nil
}
