// Package handler provides HTTP handlers for the roadtrip API.
package handler

import (
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/breatheroute/roadtrip/internal/api/models"
	"github.com/breatheroute/roadtrip/internal/api/response"
	"github.com/breatheroute/roadtrip/internal/provider/resilience"
)

// SessionCounter reports the number of live sessions.
type SessionCounter interface {
	Len() int
}

// OpsHandler handles operational endpoints.
type OpsHandler struct {
	version   string
	buildTime string
	registry  *resilience.Registry
	sessions  SessionCounter
}

// NewOpsHandler creates a new OpsHandler. registry and sessions may be nil.
func NewOpsHandler(version, buildTime string, registry *resilience.Registry, sessions SessionCounter) *OpsHandler {
	return &OpsHandler{
		version:   version,
		buildTime: buildTime,
		registry:  registry,
		sessions:  sessions,
	}
}

// HealthCheck handles GET /v1/ops/health - liveness check.
func (h *OpsHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	health := models.Health{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(time.Now()),
		Details: map[string]interface{}{
			"version":   h.version,
			"buildTime": h.buildTime,
		},
	}
	response.JSON(w, r, http.StatusOK, health)
}

// ReadinessCheck handles GET /v1/ops/ready. It fails while any provider
// circuit is open and reports DEGRADED while one is probing.
func (h *OpsHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	ready := models.ReadyStatus{
		Status:    models.HealthStatusOK,
		Time:      models.Timestamp(time.Now()),
		Providers: []models.ProviderStatus{},
	}
	if h.sessions != nil {
		ready.Sessions = h.sessions.Len()
	}

	if h.registry != nil {
		for _, ph := range h.registry.GetAllHealth() {
			ready.Providers = append(ready.Providers, providerStatus(ph))
			switch {
			case ph.IsUnhealthy():
				ready.Status = models.HealthStatusFail
			case ph.IsDegraded() && ready.Status == models.HealthStatusOK:
				ready.Status = models.HealthStatusDegraded
			}
		}
	}

	status := http.StatusOK
	if ready.Status == models.HealthStatusFail {
		status = http.StatusServiceUnavailable
	}
	response.JSON(w, r, status, ready)
}

func providerStatus(ph *resilience.ProviderHealth) models.ProviderStatus {
	ps := models.ProviderStatus{
		Provider:      ph.Name,
		Status:        models.HealthStatusOK,
		CircuitState:  ph.CircuitState.String(),
		LastSuccessAt: models.TimestampPtr(ph.LastSuccessAt),
		LastFailureAt: models.TimestampPtr(ph.LastFailureAt),
	}
	switch ph.CircuitState {
	case gobreaker.StateOpen:
		ps.Status = models.HealthStatusFail
	case gobreaker.StateHalfOpen:
		ps.Status = models.HealthStatusDegraded
	}
	if ph.LastError != "" {
		msg := ph.LastError
		ps.Message = &msg
	}
	return ps
}
