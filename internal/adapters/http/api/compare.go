// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"errors"
	"net/http"

	"github.com/goccy/go-json"

	service "github.com/KusumaMurthy109/Elysian/internal/app"
	"github.com/KusumaMurthy109/Elysian/internal/domain/model"
	"github.com/KusumaMurthy109/Elysian/pkg/logger"
)

// CompareHandler handles comparison answers for in-progress rating flows.
type CompareHandler struct {
	deps Dependencies
	log  logger.Logger
}

// NewCompareHandler creates a new compare handler.
func NewCompareHandler(deps Dependencies) *CompareHandler {
	return &CompareHandler{deps: deps, log: logger.Named("api.compare")}
}

// HandleCompareCities handles POST /compare-cities requests. An expired or
// missing session is a protocol-level outcome, not a transport failure, so
// it rides an HTTP 200 error envelope the client can render.
func (h *CompareHandler) HandleCompareCities(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	var req compareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errors.Join(ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	res, err := h.deps.SubmitComparison(r.Context(), req.UserID, model.Side(req.Preferred))
	if err != nil {
		if errors.Is(err, service.ErrSessionExpired) || errors.Is(err, service.ErrNoSession) {
			writeJSON(w, http.StatusOK, errorResponse{
				Status:  "error",
				Message: "comparison session expired, rate the city again",
			})
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	if res.Status == model.StatusDone {
		persistResult(r.Context(), h.deps, req.UserID, res.CityID, res, h.log)
	}

	writeJSON(w, http.StatusOK, flowEnvelope(res))
}
