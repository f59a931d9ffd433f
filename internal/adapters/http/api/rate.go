// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"errors"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/KusumaMurthy109/Elysian/internal/domain/model"
	"github.com/KusumaMurthy109/Elysian/pkg/logger"
)

// RateHandler handles requests that start a rating flow.
type RateHandler struct {
	deps Dependencies
	log  logger.Logger
}

// NewRateHandler creates a new rate handler.
func NewRateHandler(deps Dependencies) *RateHandler {
	return &RateHandler{deps: deps, log: logger.Named("api.rate")}
}

// HandleRateCity handles POST /rate-city requests. Starting a flow replaces
// any in-progress flow for the same user.
func (h *RateHandler) HandleRateCity(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	var req rateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errors.Join(ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	feedback := model.Feedback(req.Feedback)
	switch feedback {
	case model.FeedbackLike, model.FeedbackDislike:
		// Feedback sets feed the recommender; a write failure should not
		// block the rating flow.
		if err := h.deps.RecordFeedback(r.Context(), req.UserID, req.CityID, feedback == model.FeedbackLike); err != nil {
			h.log.Warn(r.Context(), "recording feedback failed",
				logger.String("user_id", req.UserID),
				logger.String("city_id", req.CityID),
				logger.Error(err),
			)
		}
	}

	res, err := h.deps.StartRating(r.Context(), req.UserID, req.CityID, feedback)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	if res.Status == model.StatusDone {
		persistResult(r.Context(), h.deps, req.UserID, req.CityID, res, h.log)
	}

	writeJSON(w, http.StatusOK, flowEnvelope(res))
}
