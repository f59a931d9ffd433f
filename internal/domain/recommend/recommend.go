// Package recommend ranks catalog cities against a user embedding using
// dot-product and cosine similarity. It is the comparison-free
// recommendation path next to the insertion ranking engine.
package recommend

import (
	"context"
	"fmt"
	"math"
)

// Default blend weights for the dynamic score. The base similarity carries
// full weight; liked and disliked group similarities pull at 0.7 each.
const (
	defaultAlpha        = 1.0
	defaultBeta         = 0.7
	defaultGamma        = 0.7
	defaultLearningRate = 0.1

	// normEpsilon keeps cosine and normalization away from division by zero.
	normEpsilon = 1e-8
)

// Recommendation is the highest scoring unseen city.
type Recommendation struct {
	CityID  string  `json:"city_id"`
	Name    string  `json:"city_name"`
	Country string  `json:"country"`
	Score   float64 `json:"score"`
}

// Ranker scores catalog cities against an adjusted user embedding.
type Ranker struct {
	catalog      *Catalog
	alpha        float64
	beta         float64
	gamma        float64
	learningRate float64
}

// Option applies a configuration option to the Ranker.
type Option func(*Ranker)

// WithBlendWeights sets the base/liked/disliked blend weights.
func WithBlendWeights(alpha, beta, gamma float64) Option {
	return func(r *Ranker) {
		if alpha > 0 {
			r.alpha = alpha
		}
		if beta >= 0 {
			r.beta = beta
		}
		if gamma >= 0 {
			r.gamma = gamma
		}
	}
}

// WithLearningRate sets the embedding adjustment step.
func WithLearningRate(lr float64) Option {
	return func(r *Ranker) {
		if lr > 0 {
			r.learningRate = lr
		}
	}
}

// NewRanker creates a Ranker over the given catalog.
func NewRanker(catalog *Catalog, opts ...Option) *Ranker {
	r := &Ranker{
		catalog:      catalog,
		alpha:        defaultAlpha,
		beta:         defaultBeta,
		gamma:        defaultGamma,
		learningRate: defaultLearningRate,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// NextCity returns the best scoring city the user has not already liked or
// disliked. The user embedding is first shifted toward liked cities and away
// from disliked ones, then every catalog city is scored.
func (r *Ranker) NextCity(ctx context.Context, userVec []float64, likedIDs, dislikedIDs []string) (Recommendation, error) {
	if r.catalog == nil || r.catalog.Len() == 0 {
		return Recommendation{}, ErrEmptyCatalog
	}
	if len(userVec) != r.catalog.Dimension() {
		return Recommendation{}, fmt.Errorf("%w: got %d, catalog has %d",
			ErrDimensionMismatch, len(userVec), r.catalog.Dimension())
	}

	likedIdx := r.catalog.Indices(likedIDs)
	dislikedIdx := r.catalog.Indices(dislikedIDs)

	adjusted := r.AdjustEmbedding(userVec, likedIdx, dislikedIdx)

	seen := make(map[int]struct{}, len(likedIdx)+len(dislikedIdx))
	for _, i := range likedIdx {
		seen[i] = struct{}{}
	}
	for _, i := range dislikedIdx {
		seen[i] = struct{}{}
	}

	best := -1
	bestScore := math.Inf(-1)
	for i, city := range r.catalog.cities {
		if _, ok := seen[i]; ok {
			continue
		}
		if err := ctx.Err(); err != nil {
			return Recommendation{}, fmt.Errorf("ranking cancelled: %w", err)
		}
		score := r.alpha*dot(city.Vector, adjusted) +
			r.beta*r.similarityToGroup(city.Vector, likedIdx) -
			r.gamma*r.similarityToGroup(city.Vector, dislikedIdx)
		if score > bestScore {
			bestScore = score
			best = i
		}
	}

	if best < 0 {
		return Recommendation{}, ErrNoCandidates
	}

	city := r.catalog.cities[best]
	return Recommendation{
		CityID:  city.ID,
		Name:    city.Name,
		Country: city.Country,
		Score:   bestScore,
	}, nil
}

// AdjustEmbedding shifts the user embedding toward the mean of liked city
// vectors and away from the mean of disliked ones, then L2-normalizes it.
// The input slice is not modified.
func (r *Ranker) AdjustEmbedding(userVec []float64, likedIdx, dislikedIdx []int) []float64 {
	adjusted := make([]float64, len(userVec))
	copy(adjusted, userVec)

	if len(likedIdx) > 0 {
		mean := r.catalog.meanVector(likedIdx)
		for i := range adjusted {
			adjusted[i] += r.learningRate * mean[i]
		}
	}
	if len(dislikedIdx) > 0 {
		mean := r.catalog.meanVector(dislikedIdx)
		for i := range adjusted {
			adjusted[i] -= r.learningRate * mean[i]
		}
	}

	n := norm(adjusted) + normEpsilon
	for i := range adjusted {
		adjusted[i] /= n
	}
	return adjusted
}

// similarityToGroup returns the mean cosine similarity between a vector and
// a group of catalog cities, or 0 for an empty group.
func (r *Ranker) similarityToGroup(vec []float64, group []int) float64 {
	if len(group) == 0 {
		return 0
	}
	var sum float64
	for _, i := range group {
		sum += cosine(vec, r.catalog.cities[i].Vector)
	}
	return sum / float64(len(group))
}

func dot(a, b []float64) float64 {
	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

func norm(a []float64) float64 {
	return math.Sqrt(dot(a, a))
}

func cosine(a, b []float64) float64 {
	return dot(a, b) / (norm(a)*norm(b) + normEpsilon)
}
