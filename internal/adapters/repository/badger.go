package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/KusumaMurthy109/Elysian/internal/domain/model"
	"github.com/KusumaMurthy109/Elysian/pkg/logger"
	"github.com/KusumaMurthy109/Elysian/pkg/metrics"
)

// Key prefixes for the document namespaces.
const (
	cityKeyPrefix      = "city:"
	cityInfoKeyPrefix  = "city_info:"
	profileKeyPrefix   = "profile:"
	favoritesKeyPrefix = "favorites:"
	dislikesKeyPrefix  = "dislikes:"
)

// BadgerStore implements Store on an embedded badger database with JSON
// document values.
type BadgerStore struct {
	db  *badger.DB
	log logger.Logger
}

type storeOptions struct {
	inMemory bool
	log      logger.Logger
}

// Option applies a configuration option to the BadgerStore.
type Option func(*storeOptions)

// WithInMemory keeps the database off disk. Used by tests.
func WithInMemory() Option {
	return func(o *storeOptions) {
		o.inMemory = true
	}
}

// WithLogger sets a custom logger for the store.
func WithLogger(l logger.Logger) Option {
	return func(o *storeOptions) {
		if l != nil {
			o.log = l
		}
	}
}

// NewBadgerStore opens (or creates) the database at path.
func NewBadgerStore(path string, opts ...Option) (*BadgerStore, error) {
	o := &storeOptions{log: logger.Named("repository")}
	for _, opt := range opts {
		opt(o)
	}

	bopts := badger.DefaultOptions(path)
	if o.inMemory {
		bopts = badger.DefaultOptions("").WithInMemory(true)
	}
	// Badger's own logger is noisy; routing it through ours is not worth
	// the adapter, so it is disabled.
	bopts = bopts.WithLogger(nil)

	db, err := badger.Open(bopts)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOpen, err)
	}

	return &BadgerStore{db: db, log: o.log}, nil
}

// City returns the shared rating record for a city, defaulting when absent.
func (s *BadgerStore) City(ctx context.Context, id string) (model.CityRecord, error) {
	rec := model.DefaultCityRecord()
	_, err := s.read(ctx, cityKeyPrefix+id, &rec)
	if err != nil {
		return model.CityRecord{}, err
	}
	return rec, nil
}

// Profile returns the per-user rating profile, empty when absent.
func (s *BadgerStore) Profile(ctx context.Context, userID string) (model.UserProfile, error) {
	profile := model.EmptyUserProfile()
	_, err := s.read(ctx, profileKeyPrefix+userID, &profile)
	if err != nil {
		return model.UserProfile{}, err
	}
	if profile.PersonalRatings == nil {
		profile.PersonalRatings = map[string]float64{}
	}
	return profile, nil
}

// CityInfo returns display metadata for a city. Unknown ids come back with
// just the id so comparison prompts always have something to show.
func (s *BadgerStore) CityInfo(ctx context.Context, id string) (model.CityInfo, error) {
	info := model.CityInfo{ID: id}
	_, err := s.read(ctx, cityInfoKeyPrefix+id, &info)
	if err != nil {
		return model.CityInfo{}, err
	}
	info.ID = id
	return info, nil
}

// PutCityInfo stores display metadata for a city.
func (s *BadgerStore) PutCityInfo(ctx context.Context, info model.CityInfo) error {
	return s.write(ctx, func(txn *badger.Txn) error {
		return txnSet(txn, cityInfoKeyPrefix+info.ID, info)
	})
}

// UserFeedback returns the liked and disliked city id sets for a user.
func (s *BadgerStore) UserFeedback(ctx context.Context, userID string) ([]string, []string, error) {
	var likedSet, dislikedSet map[string]bool
	if _, err := s.read(ctx, favoritesKeyPrefix+userID, &likedSet); err != nil {
		return nil, nil, err
	}
	if _, err := s.read(ctx, dislikesKeyPrefix+userID, &dislikedSet); err != nil {
		return nil, nil, err
	}
	return setKeys(likedSet), setKeys(dislikedSet), nil
}

// RecordFeedback adds cityID to the user's liked or disliked set and drops
// it from the opposite one, keeping the two sets disjoint.
func (s *BadgerStore) RecordFeedback(ctx context.Context, userID, cityID string, liked bool) error {
	addKey, removeKey := favoritesKeyPrefix+userID, dislikesKeyPrefix+userID
	if !liked {
		addKey, removeKey = removeKey, addKey
	}

	return s.write(ctx, func(txn *badger.Txn) error {
		var add, remove map[string]bool
		if _, err := txnGet(txn, addKey, &add); err != nil {
			return err
		}
		if _, err := txnGet(txn, removeKey, &remove); err != nil {
			return err
		}
		if add == nil {
			add = map[string]bool{}
		}
		add[cityID] = true
		delete(remove, cityID)

		if err := txnSet(txn, addKey, add); err != nil {
			return err
		}
		return txnSet(txn, removeKey, remove)
	})
}

// ApplyResult merges a finalized flow into the stored documents in one
// transaction.
func (s *BadgerStore) ApplyResult(ctx context.Context, commit model.RatingCommit) error {
	err := s.write(ctx, func(txn *badger.Txn) error {
		profile := model.EmptyUserProfile()
		if _, err := txnGet(txn, profileKeyPrefix+commit.UserID, &profile); err != nil {
			return err
		}
		if profile.PersonalRatings == nil {
			profile.PersonalRatings = map[string]float64{}
		}

		for id, rating := range commit.PersonalRatings {
			if _, known := profile.PersonalRatings[id]; !known {
				profile.RatingOrder = append(profile.RatingOrder, id)
			}
			profile.PersonalRatings[id] = rating
		}
		profile.ComparisonCount += commit.ComparisonIncrement

		if err := txnSet(txn, profileKeyPrefix+commit.UserID, profile); err != nil {
			return err
		}

		for id, rating := range commit.GlobalRatings {
			rec := model.DefaultCityRecord()
			if _, err := txnGet(txn, cityKeyPrefix+id, &rec); err != nil {
				return err
			}
			rec.GlobalRating = rating
			rec.ComparisonCount += commit.ComparisonIncrement
			if err := txnSet(txn, cityKeyPrefix+id, rec); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return err
	}

	s.log.Debug(ctx, "applied rating result",
		logger.String("user_id", commit.UserID),
		logger.String("city_id", commit.CityID),
		logger.Int("cities_touched", len(commit.GlobalRatings)),
	)
	return nil
}

// Close releases the underlying database.
func (s *BadgerStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("%w: %w", ErrClosed, err)
	}
	return nil
}

// read loads one JSON document, reporting whether the key existed.
func (s *BadgerStore) read(ctx context.Context, key string, v any) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, fmt.Errorf("%w: %w", ErrRead, err)
	}

	start := time.Now()
	var found bool
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		found, err = txnGet(txn, key, v)
		return err
	})
	metrics.RecordRepositoryReadLatency(float64(time.Since(start).Microseconds()) / 1000.0)

	if err != nil {
		metrics.RecordRepositoryError()
		return false, fmt.Errorf("%w: %s: %w", ErrRead, key, err)
	}
	return found, nil
}

// write runs fn inside an update transaction with timing and error metrics.
func (s *BadgerStore) write(ctx context.Context, fn func(txn *badger.Txn) error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}

	start := time.Now()
	err := s.db.Update(fn)
	metrics.RecordRepositoryWriteLatency(float64(time.Since(start).Microseconds()) / 1000.0)

	if err != nil {
		metrics.RecordRepositoryError()
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	return nil
}

func txnGet(txn *badger.Txn, key string, v any) (bool, error) {
	item, err := txn.Get([]byte(key))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := item.Value(func(val []byte) error {
		return json.Unmarshal(val, v)
	}); err != nil {
		return false, err
	}
	return true, nil
}

func txnSet(txn *badger.Txn, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return txn.Set([]byte(key), data)
}

func setKeys(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for id, ok := range set {
		if ok {
			out = append(out, id)
		}
	}
	return out
}
