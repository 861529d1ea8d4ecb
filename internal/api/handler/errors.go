package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/breatheroute/roadtrip/internal/api/models"
	"github.com/breatheroute/roadtrip/internal/api/response"
	"github.com/breatheroute/roadtrip/internal/provider/resilience"
	"github.com/breatheroute/roadtrip/internal/session"
	"github.com/breatheroute/roadtrip/internal/trip"
)

// writeError maps pipeline and session errors to problem responses.
func writeError(w http.ResponseWriter, r *http.Request, log zerolog.Logger, err error) {
	var (
		validation *trip.RequestValidationError
		network    *trip.NetworkError
		shape      *trip.ResponseShapeError
	)

	switch {
	case errors.As(err, &validation):
		response.BadRequest(w, r, "trip request is invalid", fieldErrors(validation.Fields))
	case errors.Is(err, session.ErrSuperseded):
		response.Superseded(w, r, "a newer submission replaced this one")
	case errors.Is(err, session.ErrNotFound):
		response.NotFound(w, r, "session not found")
	case errors.Is(err, session.ErrStoreFull):
		response.ServiceUnavailable(w, r, "too many active sessions, try again later")
	case errors.Is(err, resilience.ErrCircuitOpen):
		response.ServiceUnavailable(w, r, "planning service temporarily unavailable")
	case errors.Is(err, context.Canceled) && r.Context().Err() != nil:
		// Client went away; nobody reads the response.
		log.Debug().Err(err).Msg("request canceled by client")
	case errors.As(err, &network):
		log.Warn().Err(err).Int("upstream_status", network.StatusCode).Msg("planning service request failed")
		response.BadGateway(w, r, network.Message)
	case errors.As(err, &shape):
		log.Warn().Str("reason", shape.Reason).Msg("planning service returned an unusable response")
		response.ResponseShape(w, r, shape.Reason)
	default:
		log.Error().Err(err).Msg("unexpected error")
		response.InternalError(w, r, "An unexpected error occurred")
	}
}

func fieldErrors(fields []trip.FieldError) []models.FieldError {
	out := make([]models.FieldError, 0, len(fields))
	for _, f := range fields {
		out = append(out, models.FieldError{Field: f.Field, Message: f.Message, Code: "INVALID"})
	}
	return out
}
