package service

import "errors"

// Sentinel kinds for engine errors.
var (
	// ErrSessionExpired surfaces a submit with no matching active session.
	// Callers should restart the flow.
	ErrSessionExpired = errors.New("session expired or invalid")

	// ErrNoSession is the precondition failure for proposing a comparison
	// without an active session.
	ErrNoSession = errors.New("no active rating session")
)
