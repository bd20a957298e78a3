package domain

import "errors"

// ErrUnauthenticated is returned when an operation requires an identity and none is attached.
var ErrUnauthenticated = errors.New("unauthenticated")

// Identity is the authenticated caller of a request.
// The zero value is Unauthenticated.
type Identity struct {
	UserID   int64
	Username string
}

// Unauthenticated is the identity of a caller without a valid session.
var Unauthenticated = Identity{}

// IsAuthenticated reports whether the identity is bound to a user.
func (i Identity) IsAuthenticated() bool {
	return i.UserID != 0
}

// Require returns ErrUnauthenticated unless the identity is bound to a user.
func (i Identity) Require() error {
	if !i.IsAuthenticated() {
		return ErrUnauthenticated
	}

	return nil
}
