// Package metrics exposes Prometheus counters for trip submissions and
// overlay normalization.
package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/breatheroute/roadtrip/internal/overlay"
	"github.com/breatheroute/roadtrip/internal/provider/resilience"
	"github.com/breatheroute/roadtrip/internal/trip"
)

const namespace = "roadtrip"

// Submission outcomes.
const (
	OutcomeRendered    = "rendered"
	OutcomeSuperseded  = "superseded"
	OutcomeValidation  = "validation_error"
	OutcomeNetwork     = "network_error"
	OutcomeShape       = "response_shape_error"
	OutcomeCircuitOpen = "circuit_open"
	OutcomeError       = "error"
)

// Metrics holds the service's Prometheus collectors on a private registry.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	submissions      *prometheus.CounterVec
	planDuration     *prometheus.HistogramVec
	markers          *prometheus.HistogramVec
	dropped          *prometheus.CounterVec
	fallbackSegments prometheus.Counter
	activeSessions   prometheus.Gauge
	panics           *prometheus.CounterVec
}

// New creates the collectors, plus Go runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		submissions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "trip",
			Name:      "submissions_total",
			Help:      "Trip submissions by outcome",
		}, []string{"outcome"}),
		planDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "trip",
			Name:      "submission_duration_seconds",
			Help:      "Time from submission to rendered overlay or failure",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 20, 30, 60, 90, 120},
		}, []string{"outcome"}),
		markers: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "overlay",
			Name:      "markers",
			Help:      "Markers per render model by category",
			Buckets:   []float64{0, 1, 2, 5, 10, 20, 50, 100},
		}, []string{"category"}),
		dropped: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "overlay",
			Name:      "dropped_items_total",
			Help:      "Input items dropped during normalization by section",
		}, []string{"section"}),
		fallbackSegments: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "overlay",
			Name:      "fallback_segments_total",
			Help:      "Render models whose route was drawn as a single fallback segment",
		}),
		activeSessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "active",
			Help:      "Display sessions currently held in memory",
		}),
		panics: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "panics_total",
			Help:      "Handler panics recovered by route pattern",
		}, []string{"route"}),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.HandlerFor(prometheus.NewRegistry(), promhttp.HandlerOpts{})
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveSubmission records one submission outcome and its duration.
func (m *Metrics) ObserveSubmission(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.submissions.WithLabelValues(outcome).Inc()
	m.planDuration.WithLabelValues(outcome).Observe(d.Seconds())
}

// ObserveNormalization records marker counts and drops for one render model.
func (m *Metrics) ObserveNormalization(model overlay.RenderModel, report overlay.Report) {
	if m == nil {
		return
	}
	for _, category := range overlay.Categories {
		m.markers.WithLabelValues(string(category)).Observe(float64(len(model.MarkersOf(category))))
	}
	for section, n := range report.Sections() {
		if n > 0 {
			m.dropped.WithLabelValues(section).Add(float64(n))
		}
	}
	if report.FallbackSegment {
		m.fallbackSegments.Inc()
	}
}

// SetActiveSessions sets the session gauge.
func (m *Metrics) SetActiveSessions(n int) {
	if m == nil {
		return
	}
	m.activeSessions.Set(float64(n))
}

// ObservePanic counts one recovered handler panic.
func (m *Metrics) ObservePanic(route string) {
	if m == nil {
		return
	}
	m.panics.WithLabelValues(route).Inc()
}

// OutcomeOf maps a submission error to its outcome label.
func OutcomeOf(err error) string {
	switch {
	case err == nil:
		return OutcomeRendered
	case errors.Is(err, trip.ErrValidation):
		return OutcomeValidation
	case errors.Is(err, resilience.ErrCircuitOpen):
		return OutcomeCircuitOpen
	case errors.Is(err, trip.ErrNetwork):
		return OutcomeNetwork
	case errors.Is(err, trip.ErrResponseShape):
		return OutcomeShape
	default:
		return OutcomeError
	}
}
