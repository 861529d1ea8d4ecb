package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/breatheroute/roadtrip/internal/api/models"
	"github.com/breatheroute/roadtrip/internal/api/response"
	"github.com/breatheroute/roadtrip/internal/metrics"
	"github.com/breatheroute/roadtrip/internal/overlay"
	"github.com/breatheroute/roadtrip/internal/session"
	"github.com/breatheroute/roadtrip/internal/trip"
)

const (
	// maxFormBytes bounds a trip form body.
	maxFormBytes = 64 << 10

	// DefaultMaxResultBytes bounds a raw planning result posted for normalization.
	DefaultMaxResultBytes = 16 << 20
)

// TripHandlerConfig holds the pipeline used by stateless trip endpoints.
type TripHandlerConfig struct {
	Builder        *trip.RequestBuilder
	Planner        session.Planner
	Normalizer     *overlay.Normalizer
	Metrics        *metrics.Metrics
	Logger         zerolog.Logger
	MaxResultBytes int64
}

// TripHandler runs the plan → normalize pipeline without a session.
type TripHandler struct {
	builder        *trip.RequestBuilder
	planner        session.Planner
	normalizer     *overlay.Normalizer
	metrics        *metrics.Metrics
	logger         zerolog.Logger
	maxResultBytes int64
}

// NewTripHandler creates a new TripHandler.
func NewTripHandler(cfg TripHandlerConfig) *TripHandler {
	if cfg.Builder == nil {
		cfg.Builder = trip.NewRequestBuilder(trip.BuilderConfig{})
	}
	if cfg.Normalizer == nil {
		cfg.Normalizer = overlay.NewNormalizer(overlay.Config{})
	}
	if cfg.MaxResultBytes <= 0 {
		cfg.MaxResultBytes = DefaultMaxResultBytes
	}
	return &TripHandler{
		builder:        cfg.Builder,
		planner:        cfg.Planner,
		normalizer:     cfg.Normalizer,
		metrics:        cfg.Metrics,
		logger:         cfg.Logger,
		maxResultBytes: cfg.MaxResultBytes,
	}
}

// PlanTrip handles POST /v1/trips:plan - form fields to render model.
func (h *TripHandler) PlanTrip(w http.ResponseWriter, r *http.Request) {
	format, ok := requestFormat(w, r)
	if !ok {
		return
	}

	var in trip.FormInput
	if err := decodeJSON(w, r, maxFormBytes, &in); err != nil {
		writeDecodeError(w, r, err)
		return
	}

	start := time.Now()
	model, err := h.plan(r.Context(), in)
	h.metrics.ObserveSubmission(metrics.OutcomeOf(err), time.Since(start))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	writeModel(w, r, format, model)
}

func (h *TripHandler) plan(ctx context.Context, in trip.FormInput) (overlay.RenderModel, error) {
	req, err := h.builder.Build(in)
	if err != nil {
		return overlay.RenderModel{}, err
	}

	result, err := h.planner.PlanTrip(ctx, req)
	if err != nil {
		return overlay.RenderModel{}, err
	}

	model, report := h.normalizer.NormalizeWithReport(result)
	h.metrics.ObserveNormalization(model, report)
	h.logger.Debug().
		EmbedObject(report).
		Int("markers", len(model.Markers)).
		Msg("trip normalized")
	return model, nil
}

// NormalizeOverlay handles POST /v1/overlays:normalize - a raw planning
// result to render model. Malformed members are dropped, never rejected.
func (h *TripHandler) NormalizeOverlay(w http.ResponseWriter, r *http.Request) {
	format, ok := requestFormat(w, r)
	if !ok {
		return
	}

	var result trip.TripPlanResult
	if err := decodeJSON(w, r, h.maxResultBytes, &result); err != nil {
		writeDecodeError(w, r, err)
		return
	}

	model, report := h.normalizer.NormalizeWithReport(&result)
	h.metrics.ObserveNormalization(model, report)
	w.Header().Set("X-Dropped-Items", strconv.Itoa(report.Dropped()))
	writeModel(w, r, format, model)
}

func requestFormat(w http.ResponseWriter, r *http.Request) (models.Format, bool) {
	format, ok := models.ParseFormat(r.URL.Query().Get("format"))
	if !ok {
		response.BadRequest(w, r, "unsupported response format", []models.FieldError{
			{Field: "format", Message: "must be model or geojson", Code: "INVALID"},
		})
	}
	return format, ok
}

func decodeJSON(w http.ResponseWriter, r *http.Request, limit int64, v interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	return json.NewDecoder(r.Body).Decode(v)
}

func writeDecodeError(w http.ResponseWriter, r *http.Request, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		response.BadRequest(w, r, "request body too large", nil)
		return
	}
	response.BadRequest(w, r, "invalid JSON body", nil)
}

func writeModel(w http.ResponseWriter, r *http.Request, format models.Format, model overlay.RenderModel) {
	if format == models.FormatGeoJSON {
		response.GeoJSON(w, r, http.StatusOK, model.FeatureCollection())
		return
	}
	response.JSON(w, r, http.StatusOK, model)
}
