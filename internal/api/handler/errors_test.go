package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/breatheroute/roadtrip/internal/api/models"
	"github.com/breatheroute/roadtrip/internal/provider/resilience"
	"github.com/breatheroute/roadtrip/internal/session"
	"github.com/breatheroute/roadtrip/internal/trip"
)

func TestWriteError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
	}{
		{"validation", &trip.RequestValidationError{Fields: []trip.FieldError{{Field: "origin", Message: "origin is required"}}}, http.StatusBadRequest, models.ProblemTypeValidation},
		{"superseded", session.ErrSuperseded, http.StatusConflict, models.ProblemTypeSuperseded},
		{"wrapped superseded", fmt.Errorf("submit: %w", session.ErrSuperseded), http.StatusConflict, models.ProblemTypeSuperseded},
		{"unknown session", session.ErrNotFound, http.StatusNotFound, models.ProblemTypeNotFound},
		{"store full", session.ErrStoreFull, http.StatusServiceUnavailable, models.ProblemTypeUnavailable},
		{"circuit open", &trip.NetworkError{Message: "planning service temporarily unavailable", Err: resilience.ErrCircuitOpen}, http.StatusServiceUnavailable, models.ProblemTypeUnavailable},
		{"network", &trip.NetworkError{StatusCode: 502, Message: "Bad Gateway"}, http.StatusBadGateway, models.ProblemTypeUpstream},
		{"shape", &trip.ResponseShapeError{Reason: "response has no route"}, http.StatusBadGateway, models.ProblemTypeResponseShape},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError, models.ProblemTypeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/v1/trips:plan", http.NoBody)
			rec := httptest.NewRecorder()

			writeError(rec, req, zerolog.Nop(), tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			var problem models.Problem
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
			assert.Equal(t, tt.wantType, problem.Type)
			assert.Equal(t, "/v1/trips:plan", problem.Instance)
		})
	}
}

func TestWriteError_ValidationFields(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/v1/trips:plan", http.NoBody)
	rec := httptest.NewRecorder()

	writeError(rec, req, zerolog.Nop(), &trip.RequestValidationError{Fields: []trip.FieldError{
		{Field: trip.FieldOrigin, Message: "origin is required"},
		{Field: trip.FieldDepartureTime, Message: "departure time is required"},
	}})

	var problem models.Problem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	assert.Equal(t, []models.FieldError{
		{Field: trip.FieldOrigin, Message: "origin is required", Code: "INVALID"},
		{Field: trip.FieldDepartureTime, Message: "departure time is required", Code: "INVALID"},
	}, problem.Errors)
}

func TestWriteError_ClientGone(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodPost, "/v1/trips:plan", http.NoBody).WithContext(ctx)
	rec := httptest.NewRecorder()

	writeError(rec, req, zerolog.Nop(), &trip.NetworkError{Message: "request canceled", Err: context.Canceled})

	assert.Zero(t, rec.Body.Len(), "nothing is written for a client that went away")
}
