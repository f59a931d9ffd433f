// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/KusumaMurthy109/Elysian/internal/adapters/unsplash"
)

// imageResponse is the GET /city-image payload.
type imageResponse struct {
	OK    bool   `json:"ok"`
	Image *Image `json:"image,omitempty"`
}

// ImageHandler resolves display photos for cities.
type ImageHandler struct {
	images ImageSource
}

// NewImageHandler creates a new image handler.
func NewImageHandler(images ImageSource) *ImageHandler {
	return &ImageHandler{images: images}
}

// HandleCityImage handles GET /city-image?city=X&country=Y requests. A miss
// is an expected outcome and answers 404 with ok:false rather than an error
// envelope.
func (h *ImageHandler) HandleCityImage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	if h.images == nil {
		writeError(w, http.StatusServiceUnavailable, ErrUnavailable)
		return
	}

	city := strings.TrimSpace(r.URL.Query().Get("city"))
	if city == "" {
		writeError(w, http.StatusBadRequest, ErrMissingQuery)
		return
	}
	query := city
	if country := strings.TrimSpace(r.URL.Query().Get("country")); country != "" {
		query = city + " " + country
	}

	img, err := h.images.FetchCityImage(r.Context(), query)
	if err != nil {
		if errors.Is(err, unsplash.ErrMissingAccessKey) || errors.Is(err, unsplash.ErrNoResult) {
			writeJSON(w, http.StatusNotFound, imageResponse{OK: false})
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	writeJSON(w, http.StatusOK, imageResponse{OK: true, Image: &img})
}
