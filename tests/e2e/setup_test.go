//go:build e2e
// +build e2e

// Package e2e exercises the full client stack against the in-memory backend:
// session restore and revalidation, catalog browsing, cart synchronization,
// checkout, and interaction telemetry.
package e2e

import (
	"net/http/httptest"
	"path/filepath"
	"testing"

	"shopfront/internal/api"
	"shopfront/internal/cart"
	"shopfront/internal/catalog"
	"shopfront/internal/repository/file"
	"shopfront/internal/session"
	"shopfront/internal/stubserver"
	"shopfront/internal/telemetry"
)

// stack is one complete client wired to a backend.
type stack struct {
	backend     *stubserver.Server
	client      *api.Client
	store       *file.Store
	session     *session.Manager
	cart        *cart.Synchronizer
	listing     *catalog.Listing
	events      *telemetry.Sender
	sessionFile string
	baseURL     string
}

// newStack starts a fresh backend and builds a client stack on it.
func newStack(t *testing.T) *stack {
	t.Helper()

	backend := stubserver.NewServer()
	ts := httptest.NewServer(backend.Router())
	t.Cleanup(ts.Close)

	sessionFile := filepath.Join(t.TempDir(), "session.json")
	return buildStack(t, backend, ts.URL, sessionFile)
}

// restart builds a second client stack against the same backend and session
// file, simulating a process restart.
func (s *stack) restart(t *testing.T) *stack {
	t.Helper()
	return buildStack(t, s.backend, s.baseURL, s.sessionFile)
}

func buildStack(t *testing.T, backend *stubserver.Server, baseURL, sessionFile string) *stack {
	t.Helper()

	client := api.NewClient(baseURL+"/api", 0)
	store := file.NewStore(sessionFile)
	manager := session.NewManager(client, store)
	synchronizer := cart.NewSynchronizer(client, manager)
	listing := catalog.NewListing(client, 12)
	events := telemetry.NewSender(client, manager, 100, 100)

	t.Cleanup(func() {
		listing.Close()
		events.Close()
	})

	return &stack{
		backend:     backend,
		client:      client,
		store:       store,
		session:     manager,
		cart:        synchronizer,
		listing:     listing,
		events:      events,
		sessionFile: sessionFile,
		baseURL:     baseURL,
	}
}
