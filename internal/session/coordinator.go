// Package session holds the client-resident source of truth for user
// identity, account selection, and workspace membership. A single Coordinator
// owns all session state; everything else reads snapshots and calls actions.
package session

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/mialabs/mia-session/internal/domain"
	"github.com/mialabs/mia-session/internal/oauthflow"
	"github.com/mialabs/mia-session/internal/ports"
)

// Transport selects how logins reach the hosted OAuth pages.
type Transport int

const (
	// TransportPopup opens a secondary window and polls it. Default.
	TransportPopup Transport = iota
	// TransportRedirect replaces the page and finishes on the next
	// initialization. Used on constrained environments.
	TransportRedirect
)

// Config wires a Coordinator. Gateway, Store, Browser, and Navigator are
// required; the rest default sensibly.
type Config struct {
	Gateway   ports.Gateway
	Store     ports.DurableStore
	Browser   ports.Browser
	Navigator ports.Navigator
	Clock     ports.Clock
	Logger    *slog.Logger

	Transport    Transport
	PollInterval time.Duration
	LoginTimeout time.Duration
}

type Coordinator struct {
	gateway   ports.Gateway
	store     ports.DurableStore
	nav       ports.Navigator
	clock     ports.Clock
	logger    *slog.Logger
	flows     *oauthflow.Driver
	transport Transport

	mu          sync.RWMutex
	state       State
	initialized bool

	subMu       sync.Mutex
	subscribers map[int]func(State)
	nextSubID   int
}

func New(cfg Config) (*Coordinator, error) {
	if cfg.Gateway == nil {
		return nil, errors.New("gateway is required")
	}
	if cfg.Store == nil {
		return nil, errors.New("durable store is required")
	}
	if cfg.Browser == nil {
		return nil, errors.New("browser is required")
	}
	if cfg.Navigator == nil {
		return nil, errors.New("navigator is required")
	}
	if cfg.Clock == nil {
		cfg.Clock = ports.SystemClock{}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	c := &Coordinator{
		gateway:   cfg.Gateway,
		store:     cfg.Store,
		nav:       cfg.Navigator,
		clock:     cfg.Clock,
		logger:    cfg.Logger,
		transport: cfg.Transport,
		flows: &oauthflow.Driver{
			Gateway:      cfg.Gateway,
			Store:        cfg.Store,
			Browser:      cfg.Browser,
			Nav:          cfg.Navigator,
			Logger:       cfg.Logger,
			PollInterval: cfg.PollInterval,
			LoginTimeout: cfg.LoginTimeout,
		},
		state:       State{Phase: PhaseUninitialized},
		subscribers: map[int]func(State){},
	}
	return c, nil
}

// Snapshot returns a copy of the current state.
func (c *Coordinator) Snapshot() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state.clone()
}

// Subscribe registers fn to run after every state change, with a snapshot of
// the resulting state. The returned function unsubscribes.
func (c *Coordinator) Subscribe(fn func(State)) func() {
	c.subMu.Lock()
	id := c.nextSubID
	c.nextSubID++
	c.subscribers[id] = fn
	c.subMu.Unlock()

	return func() {
		c.subMu.Lock()
		delete(c.subscribers, id)
		c.subMu.Unlock()
	}
}

// mutate applies fn under the write lock and notifies subscribers with the
// resulting snapshot. Subscribers run outside the lock.
func (c *Coordinator) mutate(fn func(s *State)) State {
	c.mu.Lock()
	fn(&c.state)
	snapshot := c.state.clone()
	c.mu.Unlock()

	c.subMu.Lock()
	fns := make([]func(State), 0, len(c.subscribers))
	for _, sub := range c.subscribers {
		fns = append(fns, sub)
	}
	c.subMu.Unlock()
	for _, fn := range fns {
		fn(snapshot)
	}
	return snapshot
}

func (c *Coordinator) setError(msg string) {
	c.mutate(func(s *State) {
		s.Error = msg
		s.IsLoading = false
		s.ConnectingPlatform = ""
	})
}

// ClearError resets the error field without touching anything else.
func (c *Coordinator) ClearError() {
	c.mutate(func(s *State) {
		s.Error = ""
	})
}

// currentSessionID re-reads the persisted session id. Deferred work (popup
// completion, retries) must call this at fire time instead of capturing the
// id when the work was scheduled: a logout in between replaces the id, and
// acting on the old one would resurrect a dead session.
func (c *Coordinator) currentSessionID() string {
	if id, ok := c.store.Get(keySessionID); ok && id != "" {
		return id
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state.SessionID
}

func (c *Coordinator) mintSessionID() string {
	id := newSessionID(c.clock.Now())
	if err := c.store.Set(keySessionID, id); err != nil {
		c.logger.Warn("could not persist session id", "error", err)
	}
	return id
}

// SetPendingInvite records an invite id to be consumed after the next login.
func (c *Coordinator) SetPendingInvite(inviteID string) {
	if inviteID == "" {
		return
	}
	if err := c.store.Set(keyPendingInvite, inviteID); err != nil {
		c.logger.Warn("could not persist pending invite", "error", err)
	}
}

// ConsumePendingInvite returns and clears the stored invite id, if any.
func (c *Coordinator) ConsumePendingInvite() (string, bool) {
	id, ok := c.store.Get(keyPendingInvite)
	if !ok || id == "" {
		return "", false
	}
	_ = c.store.Delete(keyPendingInvite)
	return id, true
}

// MarkPendingMetaLink records that a Meta link should be offered after the
// next Google login.
func (c *Coordinator) MarkPendingMetaLink() {
	if err := c.store.Set(keyPendingMetaLink, "true"); err != nil {
		c.logger.Warn("could not persist pending meta link", "error", err)
	}
}

// ConsumePendingMetaLink returns and clears the pending Meta link flag.
func (c *Coordinator) ConsumePendingMetaLink() bool {
	val, ok := c.store.Get(keyPendingMetaLink)
	if !ok || val != "true" {
		return false
	}
	_ = c.store.Delete(keyPendingMetaLink)
	return true
}

func (c *Coordinator) rememberLastUser(profile *domain.UserProfile) {
	if profile == nil || profile.ID == "" {
		return
	}
	if err := c.store.Set(keyLastUserID, profile.ID); err != nil {
		c.logger.Warn("could not persist last user id", "error", err)
	}
}

// LastUserID reports the most recently authenticated user id, surviving
// logout. Embedders use it to prefill login hints.
func (c *Coordinator) LastUserID() (string, bool) {
	id, ok := c.store.Get(keyLastUserID)
	return id, ok && id != ""
}
