package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/breatheroute/roadtrip/internal/api/models"
	"github.com/breatheroute/roadtrip/internal/api/response"
	"github.com/breatheroute/roadtrip/internal/session"
	"github.com/breatheroute/roadtrip/internal/trip"
)

// SessionHandler handles display session endpoints. A session keeps the
// overlay of its most recent submission only.
type SessionHandler struct {
	store  *session.Store
	logger zerolog.Logger
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(store *session.Store, logger zerolog.Logger) *SessionHandler {
	return &SessionHandler{
		store:  store,
		logger: logger,
	}
}

// CreateSession handles POST /v1/sessions.
func (h *SessionHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	s, err := h.store.Create()
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	response.Created(w, r, "/v1/sessions/"+s.ID(), models.NewSessionResponse(s))
}

// GetSession handles GET /v1/sessions/{sessionId}.
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	s, err := h.store.Get(chi.URLParam(r, "sessionId"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	response.JSON(w, r, http.StatusOK, models.NewSessionResponse(s))
}

// DeleteSession handles DELETE /v1/sessions/{sessionId}.
func (h *SessionHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Delete(chi.URLParam(r, "sessionId")); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	response.NoContent(w, r)
}

// Submit handles POST /v1/sessions/{sessionId}/submissions. A submission
// that is overtaken by a newer one in the same session gets 409.
func (h *SessionHandler) Submit(w http.ResponseWriter, r *http.Request) {
	format, ok := requestFormat(w, r)
	if !ok {
		return
	}

	s, err := h.store.Get(chi.URLParam(r, "sessionId"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	var in trip.FormInput
	if err := decodeJSON(w, r, maxFormBytes, &in); err != nil {
		writeDecodeError(w, r, err)
		return
	}

	ov, err := s.Submit(r.Context(), in)
	if err != nil {
		writeError(w, r, h.logger.With().Str("session_id", s.ID()).Logger(), err)
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	writeOverlay(w, r, format, ov)
}

// GetOverlay handles GET /v1/sessions/{sessionId}/overlay. It answers 204
// until the first submission renders.
func (h *SessionHandler) GetOverlay(w http.ResponseWriter, r *http.Request) {
	format, ok := requestFormat(w, r)
	if !ok {
		return
	}

	s, err := h.store.Get(chi.URLParam(r, "sessionId"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	ov := s.Current()
	if ov == nil {
		response.NoContent(w, r)
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	writeOverlay(w, r, format, ov)
}

func writeOverlay(w http.ResponseWriter, r *http.Request, format models.Format, ov *session.Overlay) {
	w.Header().Set("X-Overlay-Sequence", strconv.FormatUint(ov.Sequence, 10))
	if format == models.FormatGeoJSON {
		response.GeoJSON(w, r, http.StatusOK, ov.Model.FeatureCollection())
		return
	}
	response.JSON(w, r, http.StatusOK, ov)
}
