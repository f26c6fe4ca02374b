package domain

import "errors"

// Sentinel errors for the account domain. Use errors.Is() to check these.
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUsernameTaken      = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidUsername indicates a username shorter than three characters
	// or containing whitespace.
	ErrInvalidUsername = errors.New("invalid username")

	// ErrInvalidPassword indicates a password shorter than six characters.
	ErrInvalidPassword = errors.New("invalid password")

	// ErrInvalidDisplayName indicates a blank display name.
	ErrInvalidDisplayName = errors.New("invalid display name")

	// ErrInvalidRole indicates a role outside user and admin.
	ErrInvalidRole = errors.New("invalid role")
)
