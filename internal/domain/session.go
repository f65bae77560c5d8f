package domain

import "errors"

var (
	// ErrNoSession is returned by a SessionStore when no usable session is
	// persisted. A corrupt or partial entry counts as no session.
	ErrNoSession = errors.New("no persisted session")

	// ErrAuthRequired is returned when an operation needs an authenticated
	// session and none exists. No network call is made in that case.
	ErrAuthRequired = errors.New("authentication required")
)

// Session is the persisted identity pair. Token presence is the sole
// authority for "is authenticated".
type Session struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

// SessionStore persists a single session across process restarts.
type SessionStore interface {
	Load() (*Session, error)
	Save(session *Session) error
	Clear() error
}
