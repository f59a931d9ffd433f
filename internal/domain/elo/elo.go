// Package elo implements the pairwise rating math used by the insertion
// ranking engine. All functions are pure.
package elo

import "math"

// Rating constants shared by the personal and global scales.
const (
	// BaseRating is the default rating for cities and users with no history.
	BaseRating = 1000.0

	// KFactor controls how far one comparison outcome moves a personal rating.
	KFactor = 32.0

	// GlobalKDamping scales KFactor down for the shared global rating, so
	// cross-user consensus drifts slowly.
	GlobalKDamping = 0.3

	// MinRating and MaxRating bound the linear rescale to a display score.
	MinRating = 800.0
	MaxRating = 1200.0

	// sensitivityDivisor is the conventional Elo logistic scale.
	sensitivityDivisor = 400.0

	// maxDisplayScore is the top of the user-facing scale.
	maxDisplayScore = 10.0
)

// ExpectedScore returns the probability that a rating of a beats a rating
// of b under the logistic Elo model. ExpectedScore(a,b)+ExpectedScore(b,a)
// is always 1.
func ExpectedScore(a, b float64) float64 {
	return 1.0 / (1.0 + math.Pow(10, (b-a)/sensitivityDivisor))
}

// UpdateRating applies one comparison outcome to a rating. outcome is 1 for
// a win and 0 for a loss; k is the step size for the scale being updated.
func UpdateRating(rating, expected, outcome, k float64) float64 {
	return rating + k*(outcome-expected)
}

// ToDisplayScore rescales a rating from [minRating, maxRating] onto the
// 0-10 display scale, clamped and rounded to one decimal. The result is in
// [0,10] for any input.
func ToDisplayScore(rating, minRating, maxRating float64) float64 {
	scaled := maxDisplayScore * (rating - minRating) / (maxRating - minRating)
	clamped := math.Max(0, math.Min(maxDisplayScore, scaled))
	return math.Round(clamped*10) / 10
}

// DisplayScore applies ToDisplayScore with the service-wide rating bounds.
func DisplayScore(rating float64) float64 {
	return ToDisplayScore(rating, MinRating, MaxRating)
}
