package services

import "errors"

// Expected failures, recovered at the handler boundary. Anything else
// coming out of a service is treated as a server error.
var (
	// ErrDuplicateUsername is returned when registration hits the UNIQUE
	// constraint on usernames.
	ErrDuplicateUsername = errors.New("username already taken")

	// ErrInvalidCredentials covers both an unknown username and a wrong
	// password. Callers must not be able to tell the two apart.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrSessionNotFound is returned for a missing or expired session.
	ErrSessionNotFound = errors.New("session not found")
)
