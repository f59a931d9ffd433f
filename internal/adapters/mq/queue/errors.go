package queue

import "errors"

// Sentinel kinds for queue errors.
var (
	ErrQueueClosed = errors.New("commit queue closed")
)
