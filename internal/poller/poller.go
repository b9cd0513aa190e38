// Package poller watches the pending withdrawal list while a session is
// authenticated and raises an audible alert when new items appear.
package poller

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/machibo/backoffice/internal/audio"
	"github.com/machibo/backoffice/internal/domain"
	"github.com/machibo/backoffice/internal/logging"
	"github.com/machibo/backoffice/internal/session"
	"github.com/machibo/backoffice/internal/storage"
)

const (
	// DefaultInterval is the period between polls.
	DefaultInterval = 30 * time.Second
	// DefaultPageSize is how many pending rows one poll requests.
	DefaultPageSize = 100
	// maxPages bounds one cycle's walk over the pending list.
	maxPages = 50
)

// State is the poller state.
type State int

const (
	Idle State = iota
	Polling
)

func (s State) String() string {
	if s == Polling {
		return "polling"
	}
	return "idle"
}

// Lister fetches withdrawals. *api.Client satisfies it.
type Lister interface {
	ListWithdrawals(ctx context.Context, filter domain.WithdrawalFilter, page domain.PageRequest) (domain.Page[domain.Withdrawal], error)
}

// MuteSource reports the current mute preference. *settings.Store satisfies it.
type MuteSource interface {
	Muted() bool
}

// Gate is the one-time user interaction flag that must be set before any
// sound plays. Once satisfied it stays satisfied for the process.
type Gate struct {
	satisfied atomic.Bool
}

// Satisfy marks the gate as satisfied.
func (g *Gate) Satisfy() { g.satisfied.Store(true) }

// Satisfied reports whether Satisfy has been called.
func (g *Gate) Satisfied() bool { return g.satisfied.Load() }

// Update is published after every successful poll.
type Update struct {
	// Badge is the server-reported number of pending withdrawals.
	Badge int
	// IDs is the pending-ID set now stored.
	IDs []int64
	// Novel lists IDs absent from the previously stored set.
	Novel []int64
	// Alerted is true when the alert sound was played.
	Alerted bool
	At      time.Time
}

// Config holds the poller dependencies.
type Config struct {
	Lister   Lister
	Store    storage.Store
	Player   audio.Player
	Gate     *Gate
	Mute     MuteSource
	Logger   logging.Logger
	Interval time.Duration
	PageSize int
	// TickChan replaces the interval ticker; used by tests.
	TickChan <-chan time.Time
	Now      func() time.Time
}

// Poller is the Idle/Polling state machine.
type Poller struct {
	cfg    Config
	logger logging.Logger

	mu        sync.Mutex
	state     State
	gen       uint64
	cancel    context.CancelFunc
	base      context.Context
	badge     int
	listeners []func(Update)
	wg        sync.WaitGroup
}

// New creates an idle Poller.
func New(cfg Config) *Poller {
	if cfg.Lister == nil {
		panic("poller.New: lister dependency cannot be nil")
	}
	if cfg.Store == nil {
		panic("poller.New: storage dependency cannot be nil")
	}
	if cfg.Gate == nil {
		cfg.Gate = &Gate{}
	}
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultPageSize
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Nop()
	}
	return &Poller{
		cfg:    cfg,
		logger: logger.With("component", "poller"),
		base:   context.Background(),
	}
}

// Gate returns the interaction gate consulted before playing audio.
func (p *Poller) Gate() *Gate { return p.cfg.Gate }

// State returns the current state.
func (p *Poller) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Badge returns the last published badge count.
func (p *Poller) Badge() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.badge
}

// OnUpdate registers fn to receive every successful poll.
func (p *Poller) OnUpdate(fn func(Update)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.listeners = append(p.listeners, fn)
}

// HandleAuthChange moves Idle to Polling on an authenticated snapshot and
// Polling to Idle on anything else.
func (p *Poller) HandleAuthChange(snap session.Snapshot) {
	p.mu.Lock()
	defer p.mu.Unlock()
	switch {
	case snap.Authenticated() && p.state == Idle:
		p.startLocked()
	case !snap.Authenticated() && p.state == Polling:
		p.stopLocked()
	}
}

// Run follows the session store until ctx is done, then stops polling.
func (p *Poller) Run(ctx context.Context, sessions *session.Store) error {
	p.mu.Lock()
	p.base = ctx
	p.mu.Unlock()

	cancel := sessions.Subscribe(p.HandleAuthChange)
	defer cancel()
	p.HandleAuthChange(sessions.Snapshot())

	<-ctx.Done()
	p.Stop()
	return nil
}

// Stop cancels polling and waits for the loop to exit.
func (p *Poller) Stop() {
	p.mu.Lock()
	if p.state == Polling {
		p.stopLocked()
	}
	p.mu.Unlock()
	p.wg.Wait()
}

func (p *Poller) startLocked() {
	ctx, cancel := context.WithCancel(p.base)
	p.gen++
	p.cancel = cancel
	p.state = Polling
	p.logger.Info("polling started", "interval", p.cfg.Interval.String())

	p.wg.Add(1)
	go p.loop(ctx, p.gen)
}

func (p *Poller) stopLocked() {
	p.gen++
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	p.state = Idle
	p.logger.Info("polling stopped")
}

func (p *Poller) loop(ctx context.Context, gen uint64) {
	defer p.wg.Done()

	tick, stopTicker := p.tickChan()
	defer stopTicker()

	p.cycle(ctx, gen)
	for {
		select {
		case <-ctx.Done():
			return
		case <-tick:
			p.cycle(ctx, gen)
		}
	}
}

func (p *Poller) tickChan() (<-chan time.Time, func()) {
	if p.cfg.TickChan != nil {
		return p.cfg.TickChan, func() {}
	}
	ticker := time.NewTicker(p.cfg.Interval)
	return ticker.C, ticker.Stop
}

func (p *Poller) cycle(ctx context.Context, gen uint64) {
	_, err := p.run(ctx, func() bool { return p.gen == gen })
	switch {
	case err == nil:
	case errors.Is(err, errStale), ctx.Err() != nil:
		p.logger.Debug("poll result discarded")
	default:
		p.logger.Warn("poll failed", "error", err.Error())
	}
}

// PollOnce runs a single cycle regardless of state.
func (p *Poller) PollOnce(ctx context.Context) (Update, error) {
	return p.run(ctx, func() bool { return true })
}

// errStale marks a result dropped because the poller stopped mid-flight.
var errStale = errors.New("poller: stale result discarded")

func (p *Poller) run(ctx context.Context, current func() bool) (Update, error) {
	fresh, badge, err := p.listPending(ctx)
	if err != nil {
		return Update{}, err
	}

	p.mu.Lock()
	if !current() {
		p.mu.Unlock()
		return Update{}, errStale
	}
	var stored []int64
	if _, err := storage.GetJSON(p.cfg.Store, storage.KeyPendingWithdrawalIDs, &stored); err != nil {
		p.logger.Warn("read pending ids failed", "error", err.Error())
	}
	novel := Novel(stored, fresh)
	if err := storage.SetJSON(p.cfg.Store, storage.KeyPendingWithdrawalIDs, fresh); err != nil {
		p.logger.Error("store pending ids failed", "error", err.Error())
	}
	p.badge = badge
	listeners := slices.Clone(p.listeners)
	p.mu.Unlock()

	upd := Update{Badge: badge, IDs: fresh, Novel: novel, At: p.cfg.Now()}
	if len(novel) > 0 && p.shouldAlert() && p.stillCurrent(current) {
		if err := p.cfg.Player.Play(ctx); err != nil {
			p.logger.Warn("alert playback failed", "error", err.Error())
		} else {
			upd.Alerted = true
		}
	}
	p.logger.Debug("poll complete", "badge", badge, "novel", len(novel), "alerted", upd.Alerted)

	for _, fn := range listeners {
		fn(upd)
	}
	return upd, nil
}

// listPending walks every page of pending withdrawals and returns the full
// ID set with the server-reported total.
func (p *Poller) listPending(ctx context.Context) ([]int64, int, error) {
	filter := domain.WithdrawalFilter{Status: domain.WithdrawalPending}
	var fresh []int64
	total := 0
	for page := 1; page <= maxPages; page++ {
		res, err := p.cfg.Lister.ListWithdrawals(ctx, filter, domain.PageRequest{Page: page, PerPage: p.cfg.PageSize})
		if err != nil {
			return nil, 0, fmt.Errorf("poller: list pending page %d: %w", page, err)
		}
		for _, row := range res.Rows {
			fresh = append(fresh, row.ID)
		}
		total = res.Pagination.Total
		if len(res.Rows) == 0 || page >= res.Pagination.LastPage {
			break
		}
	}
	if fresh == nil {
		fresh = []int64{}
	}
	if total < len(fresh) {
		total = len(fresh)
	}
	return fresh, total, nil
}

// stillCurrent re-checks the generation after the state lock was released.
func (p *Poller) stillCurrent(current func() bool) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return current()
}

func (p *Poller) shouldAlert() bool {
	if p.cfg.Player == nil || !p.cfg.Gate.Satisfied() {
		return false
	}
	return p.cfg.Mute == nil || !p.cfg.Mute.Muted()
}

// Novel returns the IDs in fresh that are absent from stored, sorted.
func Novel(stored, fresh []int64) []int64 {
	seen := make(map[int64]struct{}, len(stored))
	for _, id := range stored {
		seen[id] = struct{}{}
	}
	var novel []int64
	for _, id := range fresh {
		if _, ok := seen[id]; !ok {
			novel = append(novel, id)
			seen[id] = struct{}{}
		}
	}
	sort.Slice(novel, func(i, j int) bool { return novel[i] < novel[j] })
	return novel
}

// HasNovelty reports whether fresh contains an ID absent from stored.
func HasNovelty(stored, fresh []int64) bool {
	return len(Novel(stored, fresh)) > 0
}
