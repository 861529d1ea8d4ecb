package middleware_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/breatheroute/roadtrip/internal/api/middleware"
	"github.com/breatheroute/roadtrip/internal/api/models"
)

type panicCounter struct {
	mu     sync.Mutex
	routes []string
}

func (c *panicCounter) ObservePanic(route string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.routes = append(c.routes, route)
}

func TestRecovery_WritesProblemAndCountsRoute(t *testing.T) {
	counter := &panicCounter{}
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery(zerolog.Nop(), counter))
	r.Post("/v1/sessions/{sessionId}/submissions", func(w http.ResponseWriter, r *http.Request) {
		panic("normalizer exploded")
	})

	req := httptest.NewRequest(http.MethodPost, "/v1/sessions/abc/submissions", http.NoBody)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var problem models.Problem
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&problem))
	assert.Equal(t, models.ProblemTypeInternal, problem.Type)
	assert.Equal(t, "/v1/sessions/abc/submissions", problem.Instance)
	assert.Equal(t, rec.Header().Get(middleware.RequestIDHeader), problem.TraceID)

	assert.Equal(t, []string{"/v1/sessions/{sessionId}/submissions"}, counter.routes)
}

func TestRecovery_NilRecorder(t *testing.T) {
	handler := middleware.Recovery(zerolog.Nop(), nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic(42)
	}))

	rec := httptest.NewRecorder()
	require.NotPanics(t, func() {
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", http.NoBody))
	})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestRecovery_ReraisesAbortHandler(t *testing.T) {
	counter := &panicCounter{}
	handler := middleware.Recovery(zerolog.Nop(), counter)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic(http.ErrAbortHandler)
	}))

	assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", http.NoBody))
	})
	assert.Empty(t, counter.routes)
}

func TestRecovery_PassesThrough(t *testing.T) {
	counter := &panicCounter{}
	handler := middleware.Recovery(zerolog.Nop(), counter)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", http.NoBody))
	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Empty(t, counter.routes)
}
