// Package model contains domain models passed between layers.
package model

import "github.com/KusumaMurthy109/Elysian/internal/domain/elo"

// CityRecord is the persisted shared rating state for one city.
type CityRecord struct {
	GlobalRating    float64 `json:"global_rating"`
	ComparisonCount int     `json:"comparison_count"`
}

// DefaultCityRecord is returned for cities with no rating history yet.
func DefaultCityRecord() CityRecord {
	return CityRecord{GlobalRating: elo.BaseRating, ComparisonCount: 0}
}

// UserProfile is the persisted per-user rating state. RatingOrder tracks the
// order city ids first entered the profile so equal ratings sort
// deterministically.
type UserProfile struct {
	PersonalRatings map[string]float64 `json:"personal_ratings"`
	RatingOrder     []string           `json:"rating_order"`
	ComparisonCount int                `json:"comparison_count"`
}

// EmptyUserProfile is returned for users with no rated cities yet.
func EmptyUserProfile() UserProfile {
	return UserProfile{PersonalRatings: map[string]float64{}}
}

// CityInfo is display metadata for a city used in comparison prompts.
type CityInfo struct {
	ID      string `json:"city_id"`
	Name    string `json:"city_name"`
	Country string `json:"country_name"`
}

// Feedback is the qualitative signal attached to a new rating.
type Feedback string

// Recognized feedback values. Anything else falls back to the neutral seed.
const (
	FeedbackLike    Feedback = "LIKE"
	FeedbackNeutral Feedback = "NEUTRAL"
	FeedbackDislike Feedback = "DISLIKE"
)

// SeedRating returns the provisional rating a new city starts from.
func (f Feedback) SeedRating() float64 {
	switch f {
	case FeedbackLike:
		return 1100
	case FeedbackDislike:
		return 900
	case FeedbackNeutral:
		return elo.BaseRating
	default:
		return elo.BaseRating
	}
}

// Side identifies which item the user preferred in a comparison.
type Side string

// Comparison outcomes.
const (
	SideNew      Side = "new"
	SideExisting Side = "existing"
)

// Status values carried on rating flow results.
const (
	StatusDone    = "done"
	StatusCompare = "compare"
)

// Comparison is the next pair the user should judge.
type Comparison struct {
	NewCity      CityInfo `json:"new_city"`
	ExistingCity CityInfo `json:"existing_city"`
}

// Result is the outcome of a start or submit operation. Status is
// StatusCompare while the binary search is narrowing, StatusDone once the
// insertion slot is found.
type Result struct {
	Status string

	// CityID is the city being inserted by this flow.
	CityID string

	// Populated when Status is StatusCompare.
	Comparison *Comparison

	// Populated when Status is StatusDone. PersonalRatings is the full
	// updated map for the user; GlobalRatings holds only the cities touched
	// during this flow.
	PersonalRatings     map[string]float64
	GlobalRatings       map[string]float64
	ComparisonIncrement int
	DisplayScore        float64
}

// RatingCommit carries a finalized flow to the persistence pipeline.
type RatingCommit struct {
	UserID              string
	CityID              string
	PersonalRatings     map[string]float64
	GlobalRatings       map[string]float64
	ComparisonIncrement int
}
