package handler

import (
	"net/http"

	"github.com/breatheroute/roadtrip/internal/api/models"
	"github.com/breatheroute/roadtrip/internal/api/response"
	"github.com/breatheroute/roadtrip/internal/overlay"
	"github.com/breatheroute/roadtrip/internal/trip"
)

// MetadataHandler serves the static catalogues the display layer needs.
type MetadataHandler struct {
	styles overlay.StyleConfig
}

// NewMetadataHandler creates a new MetadataHandler.
func NewMetadataHandler(classifier *overlay.Classifier) *MetadataHandler {
	if classifier == nil {
		classifier = overlay.NewClassifier(overlay.DefaultStyleConfig())
	}
	return &MetadataHandler{styles: classifier.Config()}
}

// ListAttractionTypes handles GET /v1/metadata/attraction-types.
func (h *MetadataHandler) ListAttractionTypes(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "public, max-age=3600")
	response.JSON(w, r, http.StatusOK, models.AttractionTypesResponse{Items: trip.AttractionTypes})
}

// GetMarkerStyles handles GET /v1/metadata/marker-styles.
func (h *MetadataHandler) GetMarkerStyles(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "public, max-age=3600")
	response.JSON(w, r, http.StatusOK, h.styles)
}
