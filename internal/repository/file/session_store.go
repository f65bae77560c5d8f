// Package file persists the client session as a single namespaced JSON entry
// on disk, the durable store the session manager reads once at startup.
package file

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"shopfront/internal/domain"
)

// storageKey namespaces the session entry inside the store file so unrelated
// client state could share the file later without colliding.
const storageKey = "shopfront-auth-session"

// Store is a file-backed domain.SessionStore. Absence or corruption of the
// file or the entry reads as "no session", never as an error the user must
// act on.
type Store struct {
	path string
	mu   sync.Mutex
}

// NewStore creates a store writing to the given path. Parent directories are
// created lazily on first save.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load reads the persisted session. It returns domain.ErrNoSession when the
// file is missing, unreadable, malformed, or holds no token.
func (s *Store) Load() (*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.readEntries()
	if err != nil {
		return nil, domain.ErrNoSession
	}

	raw, ok := entries[storageKey]
	if !ok {
		return nil, domain.ErrNoSession
	}

	var session domain.Session
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, domain.ErrNoSession
	}
	if session.Token == "" {
		return nil, domain.ErrNoSession
	}
	return &session, nil
}

// Save persists the session atomically (write-then-rename), so a crash cannot
// leave a torn entry behind.
func (s *Store) Save(session *domain.Session) error {
	if session == nil || session.Token == "" {
		return fmt.Errorf("refusing to persist a session without a token")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.readEntries()
	if err != nil {
		entries = map[string]json.RawMessage{}
	}

	raw, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	entries[storageKey] = raw

	return s.writeEntries(entries)
}

// Clear removes the persisted entry. Clearing an absent entry is not an error.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.readEntries()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		// Corrupt store file: removing it wholesale is the safe reset.
		return os.Remove(s.path)
	}

	if _, ok := entries[storageKey]; !ok {
		return nil
	}
	delete(entries, storageKey)

	if len(entries) == 0 {
		return os.Remove(s.path)
	}
	return s.writeEntries(entries)
}

func (s *Store) readEntries() (map[string]json.RawMessage, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return nil, err
	}

	var entries map[string]json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (s *Store) writeEntries(entries map[string]json.RawMessage) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("failed to create store directory: %w", err)
	}

	raw, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("failed to encode store: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return fmt.Errorf("failed to write store: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace store: %w", err)
	}
	return nil
}
