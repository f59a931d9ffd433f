// Package service implements the insertion ranking engine: a binary-search
// comparison protocol over per-user and global Elo ratings.
package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/KusumaMurthy109/Elysian/internal/adapters/session"
	"github.com/KusumaMurthy109/Elysian/internal/domain/elo"
	"github.com/KusumaMurthy109/Elysian/internal/domain/model"
	"github.com/KusumaMurthy109/Elysian/pkg/logger"
	"github.com/KusumaMurthy109/Elysian/pkg/metrics"
)

// defaultSessionTimeout reclaims sessions after five minutes of inactivity.
const defaultSessionTimeout = 300 * time.Second

// RatingStore is the read side of the document store the engine depends on.
// The engine never writes ratings; finalized results go back to the caller.
type RatingStore interface {
	City(ctx context.Context, id string) (model.CityRecord, error)
	Profile(ctx context.Context, userID string) (model.UserProfile, error)
	CityInfo(ctx context.Context, id string) (model.CityInfo, error)
}

// Service orchestrates rating flows: it starts sessions, proposes
// comparison pairs, applies outcomes and detects completion.
type Service struct {
	store    RatingStore
	sessions *session.Store

	sessionTimeout time.Duration
	kFactor        float64

	now func() time.Time
	log logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithSessionTimeout sets the inactivity timeout for sessions.
func WithSessionTimeout(timeout time.Duration) Option {
	return func(s *Service) {
		if timeout > 0 {
			s.sessionTimeout = timeout
		}
	}
}

// WithKFactor sets the personal rating step size. The global step is always
// the damped fraction of it.
func WithKFactor(k float64) Option {
	return func(s *Service) {
		if k > 0 {
			s.kFactor = k
		}
	}
}

// WithClock sets the time source. Used by tests to drive expiry.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

// New constructs the engine over a rating store and a session store.
func New(store RatingStore, sessions *session.Store, opts ...Option) *Service {
	s := &Service{
		store:          store,
		sessions:       sessions,
		sessionTimeout: defaultSessionTimeout,
		kFactor:        elo.KFactor,
		now:            time.Now,
		log:            logger.Named("engine"),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// StartRating begins a rating flow for cityID. Users with no rated cities
// finish immediately with the feedback seed; everyone else gets a session
// and the first comparison pair. A prior incomplete session for the same
// user is silently replaced.
func (s *Service) StartRating(ctx context.Context, userID, cityID string, feedback model.Feedback) (model.Result, error) {
	s.sweep()

	s.sessions.Lock(userID)
	defer s.sessions.Unlock(userID)

	profile, err := s.store.Profile(ctx, userID)
	if err != nil {
		return model.Result{}, fmt.Errorf("load profile: %w", err)
	}

	ranked := rankedCities(profile)
	seed := feedback.SeedRating()
	metrics.RecordFlowStarted()

	if len(ranked) == 0 {
		// Nothing to compare against; the seed is the final rating.
		score := elo.DisplayScore(seed)
		metrics.RecordFlowFinalized()
		metrics.RecordComparisonsPerFlow(0)
		metrics.RecordDisplayScore(score)

		s.log.Debug(ctx, "rating finalized without comparisons",
			logger.String("user_id", userID),
			logger.String("city_id", cityID),
			logger.Float64("display_score", score),
		)

		return model.Result{
			Status:              model.StatusDone,
			CityID:              cityID,
			PersonalRatings:     map[string]float64{cityID: seed},
			GlobalRatings:       map[string]float64{},
			ComparisonIncrement: 0,
			DisplayScore:        score,
		}, nil
	}

	temp := make(map[string]float64, len(profile.PersonalRatings)+1)
	for id, rating := range profile.PersonalRatings {
		temp[id] = rating
	}
	temp[cityID] = seed

	left, right := initialBounds(feedback, len(ranked))

	sess := &session.Session{
		UserID:       userID,
		CityID:       cityID,
		Left:         left,
		Right:        right,
		Ranked:       ranked,
		TempPersonal: temp,
		TempGlobal:   map[string]float64{},
		LastActivity: s.now(),
	}

	if replaced := s.sessions.Put(userID, sess); replaced {
		metrics.RecordSessionReplaced()
		s.log.Debug(ctx, "replaced prior session",
			logger.String("user_id", userID),
			logger.String("city_id", cityID),
		)
	}
	metrics.UpdateActiveSessions(s.sessions.Len())

	return s.comparisonResult(ctx, sess)
}

// NextComparison returns the current comparison pair without mutating any
// rating state. Calling it twice in a row yields the identical pair.
func (s *Service) NextComparison(ctx context.Context, userID string) (model.Result, error) {
	s.sessions.Lock(userID)
	defer s.sessions.Unlock(userID)

	sess := s.sessions.Get(userID)
	if sess == nil {
		return model.Result{}, ErrNoSession
	}
	s.sessions.Touch(userID, s.now())

	return s.comparisonResult(ctx, sess)
}

// SubmitComparison applies one comparison outcome: it narrows the search
// bounds, updates both temp rating maps, and either finalizes the flow or
// returns the next pair.
func (s *Service) SubmitComparison(ctx context.Context, userID string, preferred model.Side) (model.Result, error) {
	s.sweep()

	s.sessions.Lock(userID)
	defer s.sessions.Unlock(userID)

	sess := s.sessions.Get(userID)
	if sess == nil {
		metrics.RecordSessionMissing()
		return model.Result{}, ErrSessionExpired
	}
	s.sessions.Touch(userID, s.now())

	// The pair under judgment is recomputed from the bounds, exactly as
	// NextComparison computed it.
	existingID := sess.Ranked[sess.Mid()]

	var winner, loser string
	if preferred == model.SideNew {
		winner, loser = sess.CityID, existingID
		sess.Right = sess.Mid() - 1
	} else {
		winner, loser = existingID, sess.CityID
		sess.Left = sess.Mid() + 1
	}

	if err := s.applyEloUpdates(ctx, sess, winner, loser); err != nil {
		return model.Result{}, err
	}

	if sess.Complete() {
		score := elo.DisplayScore(sess.TempPersonal[sess.CityID])
		s.sessions.Remove(userID)

		metrics.RecordFlowFinalized()
		metrics.RecordComparisonsPerFlow(sess.Comparisons)
		metrics.RecordDisplayScore(score)
		metrics.UpdateActiveSessions(s.sessions.Len())

		s.log.Debug(ctx, "rating finalized",
			logger.String("user_id", userID),
			logger.String("city_id", sess.CityID),
			logger.Int("comparisons", sess.Comparisons),
			logger.Float64("display_score", score),
		)

		return model.Result{
			Status:              model.StatusDone,
			CityID:              sess.CityID,
			PersonalRatings:     sess.TempPersonal,
			GlobalRatings:       sess.TempGlobal,
			ComparisonIncrement: 1,
			DisplayScore:        score,
		}, nil
	}

	return s.comparisonResult(ctx, sess)
}

// applyEloUpdates performs one Elo step on both rating scales. Personal
// expectations come from the session's working map, falling back to the
// persisted global rating for cities new to this user. Global expectations
// always come from the persisted baselines so per-session global drift does
// not compound.
func (s *Service) applyEloUpdates(ctx context.Context, sess *session.Session, winner, loser string) error {
	winnerCity, err := s.store.City(ctx, winner)
	if err != nil {
		return fmt.Errorf("load city %s: %w", winner, err)
	}
	loserCity, err := s.store.City(ctx, loser)
	if err != nil {
		return fmt.Errorf("load city %s: %w", loser, err)
	}

	winnerPersonal, ok := sess.TempPersonal[winner]
	if !ok {
		winnerPersonal = winnerCity.GlobalRating
	}
	loserPersonal, ok := sess.TempPersonal[loser]
	if !ok {
		loserPersonal = loserCity.GlobalRating
	}

	expected := elo.ExpectedScore(winnerPersonal, loserPersonal)
	sess.TempPersonal[winner] = elo.UpdateRating(winnerPersonal, expected, 1, s.kFactor)
	sess.TempPersonal[loser] = elo.UpdateRating(loserPersonal, 1-expected, 0, s.kFactor)

	globalK := s.kFactor * elo.GlobalKDamping
	expectedGlobal := elo.ExpectedScore(winnerCity.GlobalRating, loserCity.GlobalRating)
	sess.TempGlobal[winner] = elo.UpdateRating(winnerCity.GlobalRating, expectedGlobal, 1, globalK)
	sess.TempGlobal[loser] = elo.UpdateRating(loserCity.GlobalRating, 1-expectedGlobal, 0, globalK)

	sess.Comparisons++
	metrics.RecordComparison()
	return nil
}

// comparisonResult builds the compare response for the session's current pair.
func (s *Service) comparisonResult(ctx context.Context, sess *session.Session) (model.Result, error) {
	newInfo, err := s.store.CityInfo(ctx, sess.CityID)
	if err != nil {
		return model.Result{}, fmt.Errorf("load city info %s: %w", sess.CityID, err)
	}
	existingID := sess.Ranked[sess.Mid()]
	existingInfo, err := s.store.CityInfo(ctx, existingID)
	if err != nil {
		return model.Result{}, fmt.Errorf("load city info %s: %w", existingID, err)
	}

	return model.Result{
		Status: model.StatusCompare,
		Comparison: &model.Comparison{
			NewCity:      newInfo,
			ExistingCity: existingInfo,
		},
	}, nil
}

// sweep lazily evicts expired sessions. It runs at the start of every
// StartRating and SubmitComparison call, so expiry is observed relative to
// request arrival order rather than a background timer.
func (s *Service) sweep() {
	if evicted := s.sessions.SweepExpired(s.now(), s.sessionTimeout); evicted > 0 {
		metrics.RecordSessionExpired(evicted)
	}
	metrics.UpdateActiveSessions(s.sessions.Len())
}

// ActiveSessions returns the number of in-progress flows.
func (s *Service) ActiveSessions() int {
	return s.sessions.Len()
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	return map[string]interface{}{
		"activeSessions":        s.sessions.Len(),
		"sessionTimeoutSeconds": int(s.sessionTimeout / time.Second),
		"kFactor":               s.kFactor,
	}
}

// initialBounds chooses the starting search window from the feedback
// signal: LIKE searches the better half, DISLIKE the worse half, anything
// else the full range.
func initialBounds(feedback model.Feedback, n int) (left, right int) {
	switch feedback {
	case model.FeedbackLike:
		return 0, n / 2
	case model.FeedbackDislike:
		return n / 2, n - 1
	default:
		return 0, n - 1
	}
}

// rankedCities returns the user's cities sorted by personal rating,
// highest first. Ties keep the order the cities first entered the profile.
func rankedCities(profile model.UserProfile) []string {
	ids := make([]string, 0, len(profile.PersonalRatings))
	seen := make(map[string]bool, len(profile.PersonalRatings))
	for _, id := range profile.RatingOrder {
		if _, ok := profile.PersonalRatings[id]; ok && !seen[id] {
			ids = append(ids, id)
			seen[id] = true
		}
	}
	// Ratings missing from RatingOrder (profiles written before order
	// tracking) are appended in lexical order to stay deterministic.
	rest := make([]string, 0)
	for id := range profile.PersonalRatings {
		if !seen[id] {
			rest = append(rest, id)
		}
	}
	sort.Strings(rest)
	ids = append(ids, rest...)

	sort.SliceStable(ids, func(i, j int) bool {
		return profile.PersonalRatings[ids[i]] > profile.PersonalRatings[ids[j]]
	})
	return ids
}
