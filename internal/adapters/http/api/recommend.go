// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"errors"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/KusumaMurthy109/Elysian/internal/domain/recommend"
)

// nextCityRequest mirrors the POST /next-city body. Embedding is optional.
type nextCityRequest struct {
	UserID    string    `json:"user_id"`
	Embedding []float64 `json:"embedding"`
}

// nextCityResponse wraps the winning city.
type nextCityResponse struct {
	City recommend.Recommendation `json:"city"`
}

// NextCityHandler handles recommendation requests.
type NextCityHandler struct {
	rec Recommender
}

// NewNextCityHandler creates a new next-city handler.
func NewNextCityHandler(rec Recommender) *NextCityHandler {
	return &NextCityHandler{rec: rec}
}

// HandleNextCity handles POST /next-city requests.
func (h *NextCityHandler) HandleNextCity(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	if h.rec == nil {
		writeError(w, http.StatusServiceUnavailable, ErrUnavailable)
		return
	}

	var req nextCityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errors.Join(ErrBadRequest, err))
		return
	}
	if req.UserID == "" {
		writeError(w, http.StatusBadRequest, ErrMissingUserID)
		return
	}

	rec, err := h.rec.NextCity(r.Context(), req.UserID, req.Embedding)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	writeJSON(w, http.StatusOK, nextCityResponse{City: rec})
}
