package session

import "errors"

// Sentinel errors for the session package.
var (
	// ErrSessionClosed is returned when operations are attempted on a closed session.
	ErrSessionClosed = errors.New("session is closed")

	// ErrSessionNotFound is returned when a session ID is not found.
	ErrSessionNotFound = errors.New("session not found")

	// ErrManagerClosed is returned when operations are attempted on a shut-down manager.
	ErrManagerClosed = errors.New("session manager is closed")
)
