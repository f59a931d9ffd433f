package recommend

import "errors"

// Sentinel kinds for recommendation errors.
var (
	ErrEmptyCatalog      = errors.New("empty city catalog")
	ErrInvalidCatalog    = errors.New("invalid city catalog")
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
	ErrNoCandidates      = errors.New("no unseen cities left to recommend")
)
