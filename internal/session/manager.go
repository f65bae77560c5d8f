// Package session owns the authenticated identity: establishing it, keeping
// it durable across restarts, and revalidating it against the backend.
package session

import (
	"context"
	"errors"
	"sync"

	"shopfront/internal/api"
	"shopfront/internal/domain"
	"shopfront/internal/observability"
)

// Phase is the manager lifecycle. Initialize transitions to PhaseReady
// exactly once, whether revalidation succeeds, fails, or is skipped.
type Phase int

const (
	PhaseInitializing Phase = iota
	PhaseReady
)

// AuthAPI is the slice of the backend client the manager needs.
type AuthAPI interface {
	Login(ctx context.Context, email, password string) (*api.AuthResponse, error)
	Register(ctx context.Context, payload api.RegisterPayload) (*api.AuthResponse, error)
	Me(ctx context.Context, token string) (*domain.User, error)
}

// Manager is the single authority for "who is logged in". All identity
// mutations are mirrored to the durable store before they return, so a
// reload can never observe an in-memory session without its persisted
// counterpart.
type Manager struct {
	mu    sync.Mutex
	api   AuthAPI
	store domain.SessionStore

	user  *domain.User
	token string
	phase Phase

	// gen invalidates an in-flight startup revalidation once a logout (or a
	// fresh login) supersedes it; the stale result is discarded instead of
	// resurrecting the old session.
	gen uint64

	subscribers []func()
}

// NewManager creates a session manager in PhaseInitializing.
func NewManager(authAPI AuthAPI, store domain.SessionStore) *Manager {
	return &Manager{
		api:   authAPI,
		store: store,
		phase: PhaseInitializing,
	}
}

// Subscribe registers a callback invoked after every identity change and
// after the Ready transition. Callbacks run outside the manager lock.
func (m *Manager) Subscribe(fn func()) {
	m.mu.Lock()
	m.subscribers = append(m.subscribers, fn)
	m.mu.Unlock()
}

// Current returns the identity snapshot. Token presence is the sole
// authority for "is authenticated".
func (m *Manager) Current() (*domain.User, string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.user, m.token
}

// Phase reports whether startup initialization has settled.
func (m *Manager) Phase() Phase {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.phase
}

// Ready reports whether Initialize has completed.
func (m *Manager) Ready() bool {
	return m.Phase() == PhaseReady
}

// Authenticated reports whether a token is held.
func (m *Manager) Authenticated() bool {
	_, token := m.Current()
	return token != ""
}

// Initialize restores the persisted session, revalidates it against the
// backend, and transitions to Ready. A persisted pair is adopted
// optimistically first so the caller sees no login flash; if revalidation
// then fails in any way the pair is cleared entirely. A token that cannot be
// revalidated is never partially trusted.
func (m *Manager) Initialize(ctx context.Context) {
	stored, err := m.store.Load()
	if err != nil {
		if !errors.Is(err, domain.ErrNoSession) {
			observability.Warn("session store unreadable, starting anonymous", "error", err.Error())
		}
		m.settle(nil, "")
		return
	}

	// Optimistic adoption before the network round-trip.
	m.mu.Lock()
	m.user = stored.User
	m.token = stored.Token
	gen := m.gen
	m.mu.Unlock()
	m.notify()

	user, err := m.api.Me(ctx, stored.Token)

	m.mu.Lock()
	if m.gen != gen {
		// A logout (or a new login) won the race; drop the stale result but
		// still finish initialization.
		m.phase = PhaseReady
		m.mu.Unlock()
		observability.SessionRevalidationsTotal.WithLabelValues("superseded").Inc()
		m.notify()
		return
	}
	if err != nil {
		m.user = nil
		m.token = ""
		m.phase = PhaseReady
		m.mu.Unlock()
		if clearErr := m.store.Clear(); clearErr != nil {
			observability.Warn("failed to clear session store", "error", clearErr.Error())
		}
		observability.SessionRevalidationsTotal.WithLabelValues("invalid").Inc()
		observability.Info("persisted session rejected by revalidation")
		m.notify()
		return
	}

	m.user = user
	m.phase = PhaseReady
	token := m.token
	m.mu.Unlock()

	// Mirror the authoritative user copy back to the store.
	if saveErr := m.store.Save(&domain.Session{User: user, Token: token}); saveErr != nil {
		observability.Warn("failed to persist revalidated session", "error", saveErr.Error())
	}
	observability.SessionRevalidationsTotal.WithLabelValues("success").Inc()
	m.notify()
}

// Login exchanges credentials for a session. On failure the prior session is
// left untouched and the error carries a display message.
func (m *Manager) Login(ctx context.Context, email, password string) error {
	resp, err := m.api.Login(ctx, email, password)
	if err != nil {
		return err
	}
	return m.adopt(resp)
}

// Register creates an account and adopts the returned session, with the same
// failure contract as Login.
func (m *Manager) Register(ctx context.Context, payload api.RegisterPayload) error {
	resp, err := m.api.Register(ctx, payload)
	if err != nil {
		return err
	}
	return m.adopt(resp)
}

// Logout clears the identity and its persisted counterpart synchronously.
// No network call is made. An in-flight startup revalidation is superseded.
func (m *Manager) Logout() {
	m.mu.Lock()
	m.user = nil
	m.token = ""
	m.gen++
	m.mu.Unlock()

	if err := m.store.Clear(); err != nil {
		observability.Warn("failed to clear session store", "error", err.Error())
	}
	m.notify()
}

// adopt persists then applies a fresh auth response. Persist comes first: if
// the store write fails, the in-memory session stays as it was.
func (m *Manager) adopt(resp *api.AuthResponse) error {
	user := resp.User
	session := &domain.Session{User: &user, Token: resp.AccessToken}
	if err := m.store.Save(session); err != nil {
		return err
	}

	m.mu.Lock()
	m.user = &user
	m.token = resp.AccessToken
	m.gen++
	m.phase = PhaseReady
	m.mu.Unlock()
	m.notify()
	return nil
}

// settle finishes initialization with the given identity.
func (m *Manager) settle(user *domain.User, token string) {
	m.mu.Lock()
	m.user = user
	m.token = token
	m.phase = PhaseReady
	m.mu.Unlock()
	m.notify()
}

func (m *Manager) notify() {
	m.mu.Lock()
	subscribers := make([]func(), len(m.subscribers))
	copy(subscribers, m.subscribers)
	m.mu.Unlock()

	for _, fn := range subscribers {
		fn()
	}
}
