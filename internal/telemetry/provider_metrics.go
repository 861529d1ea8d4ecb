package telemetry

import (
	"context"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/breatheroute/roadtrip/internal/telemetry"

// Outcomes recorded for provider calls.
const (
	OutcomeSuccess     = "success"
	OutcomeNetwork     = "network_error"
	OutcomeShape       = "response_shape_error"
	OutcomeCircuitOpen = "circuit_open"
	OutcomeCanceled    = "canceled"
)

// ProviderMetrics holds instruments for calls to an external provider.
type ProviderMetrics struct {
	provider        string
	requestDuration metric.Float64Histogram
	requestTotal    metric.Int64Counter
}

// NewProviderMetrics creates instruments for the named provider.
func NewProviderMetrics(providerName string) (*ProviderMetrics, error) {
	meter := otel.Meter(meterName)

	requestDuration, err := meter.Float64Histogram(
		"provider.request.duration",
		metric.WithDescription("Duration of provider requests in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	requestTotal, err := meter.Int64Counter(
		"provider.request.total",
		metric.WithDescription("Total number of provider requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	return &ProviderMetrics{
		provider:        providerName,
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
	}, nil
}

// RecordRequest records one provider call. statusCode is 0 when no response
// was received.
func (m *ProviderMetrics) RecordRequest(operation string, duration time.Duration, outcome string, statusCode int) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("provider.name", m.provider),
		attribute.String("provider.operation", operation),
		attribute.String("provider.outcome", outcome),
		attribute.String("http.status_code", strconv.Itoa(statusCode)),
	)

	// The caller's context may already be canceled.
	ctx := context.Background()
	m.requestDuration.Record(ctx, duration.Seconds(), attrs)
	m.requestTotal.Add(ctx, 1, attrs)
}
