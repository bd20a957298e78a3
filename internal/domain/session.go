package domain

import (
	"errors"
	"time"
)

// ErrSessionNotFound is returned when a session id is unknown, expired or terminated.
var ErrSessionNotFound = errors.New("session not found")

// SessionID is the opaque value handed to the client after login.
type SessionID string

// String returns the string representation of the SessionID.
func (id SessionID) String() string {
	return string(id)
}

// Session binds a session id to exactly one user until it expires or is terminated.
type Session struct {
	ID        SessionID `json:"id"`
	UserID    int64     `json:"userId"`
	Username  string    `json:"username"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Expired reports whether the session is past its deadline at the given time.
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// Identity returns the identity the session is bound to.
func (s Session) Identity() Identity {
	return Identity{UserID: s.UserID, Username: s.Username}
}

// LoginResponse is returned by a successful login.
type LoginResponse struct {
	Message string `json:"message"`
	UserID  int64  `json:"user_id"`
}
