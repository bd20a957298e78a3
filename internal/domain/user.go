package domain

import "errors"

var (
	// ErrUserAlreadyExists is returned when trying to create a user with an existing username.
	ErrUserAlreadyExists = errors.New("user already exists")
	// ErrUserNotFound is returned when looking up a non-existent user.
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidCredentials is returned when the username/password combination is incorrect
	// or either of them is missing.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// User is an account allowed to log in.
//
// Password is stored and compared in plaintext.
// TODO: store a salted hash (bcrypt) once accounts leave development setups.
type User struct {
	ID       int64  `db:"id"`
	Username string `db:"username"`
	Password string `db:"password"`
}
