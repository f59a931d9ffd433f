package repository

import "errors"

// Sentinel kinds for repository errors.
var (
	ErrOpen   = errors.New("open rating store failed")
	ErrRead   = errors.New("rating store read failed")
	ErrWrite  = errors.New("rating store write failed")
	ErrClosed = errors.New("rating store closed")
)
