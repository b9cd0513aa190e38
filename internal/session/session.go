// Package session projects the authentication status onto a bearer token
// persisted in durable client storage.
package session

import (
	"sort"
	"sync"

	"github.com/machibo/backoffice/internal/logging"
	"github.com/machibo/backoffice/internal/storage"
)

// Status is the authentication status reported by the auth provider.
type Status string

const (
	Unauthenticated Status = "unauthenticated"
	Loading         Status = "loading"
	Authenticated   Status = "authenticated"
)

// Snapshot is the session state observed at one point in time.
type Snapshot struct {
	Status Status
	Token  string
}

// Authenticated reports whether the snapshot carries an authenticated session.
func (s Snapshot) Authenticated() bool {
	return s.Status == Authenticated && s.Token != ""
}

// Store is the process-wide token store. The zero value is not usable; use New.
type Store struct {
	mu        sync.RWMutex
	kv        storage.Store
	logger    logging.Logger
	snap      Snapshot
	listeners map[int]func(Snapshot)
	nextID    int
}

// New creates a Store backed by kv. The store starts unauthenticated; call Init
// to pick up a persisted token.
func New(kv storage.Store, logger logging.Logger) *Store {
	if kv == nil {
		panic("session.New: storage must not be nil")
	}
	if logger == nil {
		logger = logging.Nop()
	}
	return &Store{
		kv:        kv,
		logger:    logger.With("component", "session"),
		snap:      Snapshot{Status: Unauthenticated},
		listeners: make(map[int]func(Snapshot)),
	}
}

// Init loads the persisted token as if the provider reported a loading status.
func (s *Store) Init() {
	s.OnAuthStateChange(Loading, "")
}

// OnAuthStateChange applies an auth provider transition.
//
// Authenticated with a token persists and publishes it. Authenticated without a
// token and Unauthenticated both remove the persisted key and publish a
// signed-out snapshot. Any other status reuses the persisted token until the
// provider settles.
func (s *Store) OnAuthStateChange(status Status, token string) {
	var next Snapshot
	switch status {
	case Authenticated:
		if token == "" {
			s.logger.Warn("authenticated without token, treating as signed out")
			s.forget()
			next = Snapshot{Status: Unauthenticated}
			break
		}
		if err := s.kv.Set(storage.KeyAccessToken, token); err != nil {
			s.logger.Error("persist access token failed", "error", err.Error())
		}
		next = Snapshot{Status: Authenticated, Token: token}
	case Unauthenticated:
		s.forget()
		next = Snapshot{Status: Unauthenticated}
	default:
		next = Snapshot{Status: Loading, Token: s.persisted()}
	}
	s.publish(next)
}

// Invalidate drops the token after the server rejected it.
func (s *Store) Invalidate() {
	s.forget()
	s.publish(Snapshot{Status: Unauthenticated})
}

// Token returns the current access token, or "" when there is none.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.Token
}

// Status returns the current status.
func (s *Store) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.Status
}

// Snapshot returns the current status and token together.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// Subscribe registers fn to be called after every transition. The returned
// function removes the registration.
func (s *Store) Subscribe(fn func(Snapshot)) (cancel func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}

func (s *Store) publish(next Snapshot) {
	s.mu.Lock()
	s.snap = next
	ids := make([]int, 0, len(s.listeners))
	for id := range s.listeners {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fns := make([]func(Snapshot), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, s.listeners[id])
	}
	s.mu.Unlock()

	s.logger.Debug("session transition", "status", string(next.Status), "has_token", next.Token != "")
	for _, fn := range fns {
		fn(next)
	}
}

func (s *Store) forget() {
	if err := s.kv.Delete(storage.KeyAccessToken); err != nil {
		s.logger.Error("remove access token failed", "error", err.Error())
	}
}

func (s *Store) persisted() string {
	token, ok, err := s.kv.Get(storage.KeyAccessToken)
	if err != nil {
		s.logger.Error("read access token failed", "error", err.Error())
		return ""
	}
	if !ok {
		return ""
	}
	return token
}
