// Package repository defines the rating document store interface and its
// badger-backed implementation.
package repository

import (
	"context"

	"github.com/KusumaMurthy109/Elysian/internal/domain/model"
)

// Store provides read/write access to persisted rating documents.
//
// Reads never fail on missing documents: unknown cities come back with the
// default record and unknown users with an empty profile, matching the lazy
// creation semantics of the rating flow. The engine only ever reads; writes
// happen after a flow finalizes, via ApplyResult.
type Store interface {
	// City returns the shared rating record for a city.
	City(ctx context.Context, id string) (model.CityRecord, error)

	// Profile returns the per-user rating profile.
	Profile(ctx context.Context, userID string) (model.UserProfile, error)

	// CityInfo returns display metadata for comparison prompts.
	// Unknown ids return a record carrying just the id.
	CityInfo(ctx context.Context, id string) (model.CityInfo, error)

	// PutCityInfo stores display metadata for a city.
	PutCityInfo(ctx context.Context, info model.CityInfo) error

	// UserFeedback returns the ids of cities the user liked and disliked.
	UserFeedback(ctx context.Context, userID string) (liked, disliked []string, err error)

	// RecordFeedback adds a city to the user's liked or disliked set.
	RecordFeedback(ctx context.Context, userID, cityID string, liked bool) error

	// ApplyResult merges a finalized rating flow into the stored documents:
	// the user's personal map and comparison count, and the global rating
	// and comparison count of every city touched during the flow.
	ApplyResult(ctx context.Context, commit model.RatingCommit) error

	// Close releases the underlying database.
	Close() error
}
