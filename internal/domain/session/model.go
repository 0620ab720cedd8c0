package session

import (
	"errors"
	"time"
)

// ErrNotFound is returned for unknown or expired session ids.
var ErrNotFound = errors.New("session not found")

// Session binds a browser cookie to the bearer token pair issued at login.
type Session struct {
	ID         string
	Access     string
	Refresh    string
	CreatedAt  time.Time
	LastSeenAt time.Time
}

// Validate checks a session before it is stored.
// INVARIANT: ID and Access must not be empty
func (s *Session) Validate() error {
	if s.ID == "" {
		return errors.New("session id cannot be empty")
	}
	if s.Access == "" {
		return errors.New("session access token cannot be empty")
	}
	return nil
}

// IsExpired reports whether the session has been idle for longer than ttl.
func (s *Session) IsExpired(now time.Time, ttl time.Duration) bool {
	return now.Sub(s.LastSeenAt) > ttl
}
