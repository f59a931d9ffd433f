package service

import (
	"context"
	"fmt"

	"github.com/KusumaMurthy109/Elysian/internal/domain/recommend"
	"github.com/KusumaMurthy109/Elysian/pkg/logger"
	"github.com/KusumaMurthy109/Elysian/pkg/metrics"
)

// FeedbackSource exposes the liked and disliked city sets of a user.
type FeedbackSource interface {
	UserFeedback(ctx context.Context, userID string) (liked, disliked []string, err error)
}

// Recommender suggests the next city a user should rate. It blends the
// catalog's neutral embedding with the user's feedback history and delegates
// the scoring to the embedding ranker.
type Recommender struct {
	feedback FeedbackSource
	ranker   *recommend.Ranker
	catalog  *recommend.Catalog
	log      logger.Logger
}

// RecommenderOption applies a configuration option to the Recommender.
type RecommenderOption func(*Recommender)

// WithRecommenderLogger sets the logger.
func WithRecommenderLogger(l logger.Logger) RecommenderOption {
	return func(r *Recommender) {
		if l != nil {
			r.log = l
		}
	}
}

// NewRecommender creates a recommender over the given catalog.
func NewRecommender(feedback FeedbackSource, catalog *recommend.Catalog, opts ...RecommenderOption) *Recommender {
	r := &Recommender{
		feedback: feedback,
		ranker:   recommend.NewRanker(catalog),
		catalog:  catalog,
		log:      logger.Named("recommender"),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// NextCity returns the best unseen city for the user. The caller may supply
// a user embedding; without one the catalog mean serves as the neutral base.
func (r *Recommender) NextCity(ctx context.Context, userID string, embedding []float64) (recommend.Recommendation, error) {
	liked, disliked, err := r.feedback.UserFeedback(ctx, userID)
	if err != nil {
		metrics.RecordRecommendationError()
		return recommend.Recommendation{}, fmt.Errorf("load feedback: %w", err)
	}

	if len(embedding) == 0 {
		embedding = r.catalog.MeanVector()
	}
	rec, err := r.ranker.NextCity(ctx, embedding, liked, disliked)
	if err != nil {
		metrics.RecordRecommendationError()
		return recommend.Recommendation{}, err
	}

	metrics.RecordRecommendation()
	r.log.Debug(ctx, "recommended city",
		logger.String("user_id", userID),
		logger.String("city_id", rec.CityID),
		logger.Float64("score", rec.Score),
	)
	return rec, nil
}
