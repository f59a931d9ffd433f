// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/goccy/go-json"

	"github.com/KusumaMurthy109/Elysian/internal/adapters/unsplash"
	"github.com/KusumaMurthy109/Elysian/internal/domain/model"
	"github.com/KusumaMurthy109/Elysian/internal/domain/recommend"
	"github.com/KusumaMurthy109/Elysian/pkg/logger"
	"github.com/KusumaMurthy109/Elysian/pkg/metrics"
)

// Engine drives the binary-search rating flow.
type Engine interface {
	StartRating(ctx context.Context, userID, cityID string, feedback model.Feedback) (model.Result, error)
	SubmitComparison(ctx context.Context, userID string, preferred model.Side) (model.Result, error)
}

// Committer pushes finalized flows onto the async persistence pipeline.
// Enqueue returns false on backpressure.
type Committer interface {
	Enqueue(ctx context.Context, c model.RatingCommit) bool
}

// CommitApplier writes a commit synchronously. It is the fallback path when
// the queue is full, so a finalized flow never gets dropped.
type CommitApplier interface {
	ApplyResult(ctx context.Context, commit model.RatingCommit) error
}

// FeedbackRecorder tracks which cities a user liked or disliked.
type FeedbackRecorder interface {
	RecordFeedback(ctx context.Context, userID, cityID string, liked bool) error
}

// Recommender suggests the next unseen city for a user. The embedding is
// optional; implementations fall back to a neutral base without one.
type Recommender interface {
	NextCity(ctx context.Context, userID string, embedding []float64) (recommend.Recommendation, error)
}

// ImageSource resolves a display photo for a city query.
type ImageSource interface {
	FetchCityImage(ctx context.Context, query string) (Image, error)
}

// Image mirrors the photo payload returned by GET /city-image.
type Image = unsplash.Image

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	Engine
	Committer
	CommitApplier
	FeedbackRecorder
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler  *HealthHandler
	statsHandler   *StatsHandler
	rateHandler    *RateHandler
	compareHandler *CompareHandler
	nextHandler    *NextCityHandler
	imageHandler   *ImageHandler
}

// NewServer creates a new API server with all handlers. The recommender and
// image source are optional; their endpoints answer with an error envelope
// when nil.
func NewServer(deps Dependencies, statsProvider StatsProvider, rec Recommender, images ImageSource) *Server {
	return &Server{
		healthHandler:  NewHealthHandler(),
		statsHandler:   NewStatsHandler(statsProvider),
		rateHandler:    NewRateHandler(deps),
		compareHandler: NewCompareHandler(deps),
		nextHandler:    NewNextCityHandler(rec),
		imageHandler:   NewImageHandler(images),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/rate-city", MetricsMiddleware(s.rateHandler.HandleRateCity, "rate_city"))
	mux.HandleFunc("/compare-cities", MetricsMiddleware(s.compareHandler.HandleCompareCities, "compare_cities"))
	mux.HandleFunc("/next-city", MetricsMiddleware(s.nextHandler.HandleNextCity, "next_city"))
	mux.HandleFunc("/city-image", MetricsMiddleware(s.imageHandler.HandleCityImage, "city_image"))
}

// rateRequest mirrors the POST /rate-city body.
type rateRequest struct {
	UserID   string `json:"user_id"`
	CityID   string `json:"city_id"`
	Feedback string `json:"feedback"`
}

func (r rateRequest) validate() error {
	switch {
	case strings.TrimSpace(r.UserID) == "":
		return ErrMissingUserID
	case strings.TrimSpace(r.CityID) == "":
		return ErrMissingCityID
	}
	return nil
}

// compareRequest mirrors the POST /compare-cities body.
type compareRequest struct {
	UserID    string `json:"user_id"`
	Preferred string `json:"preferred"`
}

func (r compareRequest) validate() error {
	switch {
	case strings.TrimSpace(r.UserID) == "":
		return ErrMissingUserID
	case r.Preferred != string(model.SideNew) && r.Preferred != string(model.SideExisting):
		return ErrInvalidPreferred
	}
	return nil
}

// compareResponse is the envelope while the binary search is narrowing.
type compareResponse struct {
	Status       string         `json:"status"`
	NewCity      model.CityInfo `json:"newCity"`
	ExistingCity model.CityInfo `json:"existingCity"`
}

// doneResponse is the envelope once the insertion slot is found. The rating
// maps are always present, empty when the flow touched nothing.
type doneResponse struct {
	Status              string             `json:"status"`
	PersonalRatings     map[string]float64 `json:"personalRatings"`
	GlobalRatings       map[string]float64 `json:"globalRatings"`
	ComparisonIncrement int                `json:"comparisonIncrement"`
	RatingValue         float64            `json:"ratingValue"`
}

func flowEnvelope(res model.Result) any {
	if res.Status == model.StatusCompare && res.Comparison != nil {
		return compareResponse{
			Status:       model.StatusCompare,
			NewCity:      res.Comparison.NewCity,
			ExistingCity: res.Comparison.ExistingCity,
		}
	}

	personal := res.PersonalRatings
	if personal == nil {
		personal = map[string]float64{}
	}
	global := res.GlobalRatings
	if global == nil {
		global = map[string]float64{}
	}
	return doneResponse{
		Status:              model.StatusDone,
		PersonalRatings:     personal,
		GlobalRatings:       global,
		ComparisonIncrement: res.ComparisonIncrement,
		RatingValue:         res.DisplayScore,
	}
}

type errorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Status: "error", Message: msg})
}

// persistResult pushes a finalized flow to the commit queue, falling back to
// a synchronous write when the queue is saturated.
func persistResult(ctx context.Context, deps Dependencies, userID, cityID string, res model.Result, log logger.Logger) {
	commit := model.RatingCommit{
		UserID:              userID,
		CityID:              cityID,
		PersonalRatings:     res.PersonalRatings,
		GlobalRatings:       res.GlobalRatings,
		ComparisonIncrement: res.ComparisonIncrement,
	}

	if deps.Enqueue(ctx, commit) {
		return
	}

	fallbackCommit(ctx, deps, commit, log)
}

func fallbackCommit(ctx context.Context, applier CommitApplier, commit model.RatingCommit, log logger.Logger) {
	metrics.RecordCommitFallback()
	if err := applier.ApplyResult(ctx, commit); err != nil {
		log.Error(ctx, "fallback commit failed",
			logger.String("user_id", commit.UserID),
			logger.String("city_id", commit.CityID),
			logger.Error(err),
		)
	}
}
