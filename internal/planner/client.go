// Package planner is the client for the external trip-planning service.
package planner

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/breatheroute/roadtrip/internal/provider/resilience"
	"github.com/breatheroute/roadtrip/internal/telemetry"
	"github.com/breatheroute/roadtrip/internal/trip"
)

const (
	// ProviderName identifies the planning service in the provider registry.
	ProviderName = "planner"

	// PlanTripPath is the planning endpoint relative to the base URL.
	PlanTripPath = "/api/plan_trip"

	// DefaultTimeout bounds one planning call. Planning runs several
	// upstream lookups, so it is much slower than a typical API call.
	DefaultTimeout = 90 * time.Second

	// DefaultMaxBodyBytes caps the response body.
	DefaultMaxBodyBytes int64 = 16 << 20

	operationPlanTrip = "plan_trip"
	tracerName        = "github.com/breatheroute/roadtrip/internal/planner"
)

// HTTPDoer is an interface for executing HTTP requests.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientConfig holds configuration for the planning service client.
type ClientConfig struct {
	// BaseURL is the planning service root, e.g. http://localhost:8000 (required).
	BaseURL string

	// HTTPClient is the HTTP client to use (optional).
	// If nil, a resilient client with a circuit breaker and no retries is used.
	HTTPClient HTTPDoer

	// Timeout is the request timeout (optional, defaults to 90s).
	Timeout time.Duration

	// MaxBodyBytes caps the accepted response size (optional, defaults to 16 MiB).
	MaxBodyBytes int64

	// CircuitBreaker tunes the breaker of the default HTTP client (optional).
	CircuitBreaker *resilience.CircuitBreakerConfig

	// Registry is the provider registry for health tracking (optional).
	Registry *resilience.Registry

	// Metrics records call duration and outcome (optional).
	Metrics *telemetry.ProviderMetrics

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client calls the planning service.
type Client struct {
	baseURL      string
	httpClient   HTTPDoer
	maxBodyBytes int64
	metrics      *telemetry.ProviderMetrics
	tracer       trace.Tracer
	logger       zerolog.Logger
}

// NewClient creates a new planning service client.
func NewClient(cfg ClientConfig) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	maxBody := cfg.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = DefaultMaxBodyBytes
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		clientCfg := resilience.DefaultClientConfig(ProviderName)
		clientCfg.Timeout = timeout
		clientCfg.MaxRetries = 0 // submissions are never retried automatically
		if cfg.CircuitBreaker != nil {
			cb := *cfg.CircuitBreaker
			cb.Name = ProviderName
			clientCfg.CircuitBreaker = &cb
		}
		clientCfg.Registry = cfg.Registry
		clientCfg.Logger = cfg.Logger
		httpClient = resilience.NewClient(clientCfg)
	}

	return &Client{
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		httpClient:   httpClient,
		maxBodyBytes: maxBody,
		metrics:      cfg.Metrics,
		tracer:       otel.Tracer(tracerName),
		logger:       cfg.Logger,
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return ProviderName
}

// PlanTrip submits a request and returns the parsed, unmodified result.
//
// Errors are *trip.NetworkError for transport failures and non-2xx
// responses, and *trip.ResponseShapeError for a 2xx response without
// route coordinates and polyline.
func (c *Client) PlanTrip(ctx context.Context, req *trip.TripPlanRequest) (*trip.TripPlanResult, error) {
	ctx, span := c.tracer.Start(ctx, "planner.PlanTrip",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.Int("trip.waypoints", len(req.Waypoints)),
			attribute.Int("trip.preferences", len(req.AttractionPreferences)),
		),
	)
	defer span.End()

	start := time.Now()
	result, status, err := c.planTrip(ctx, req)
	outcome := outcomeOf(err)

	c.metrics.RecordRequest(operationPlanTrip, time.Since(start), outcome, status)
	span.SetAttributes(
		attribute.Int("http.status_code", status),
		attribute.String("planner.outcome", outcome),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
		return nil, err
	}
	return result, nil
}

func (c *Client) planTrip(ctx context.Context, req *trip.TripPlanRequest) (*trip.TripPlanResult, int, error) {
	body, err := json.Marshal(toPlanRequest(req))
	if err != nil {
		return nil, 0, fmt.Errorf("marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+PlanTripPath, bytes.NewReader(body))
	if err != nil {
		return nil, 0, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	c.logger.Debug().
		Str("origin", req.Origin).
		Str("destination", req.Destination).
		Int("waypoints", len(req.Waypoints)).
		Msg("requesting trip plan")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, 0, transportError(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBodyBytes+1))
	if err != nil {
		return nil, resp.StatusCode, &trip.NetworkError{
			StatusCode: resp.StatusCode,
			Message:    "reading response body",
			Err:        err,
		}
	}
	if int64(len(respBody)) > c.maxBodyBytes {
		return nil, resp.StatusCode, &trip.NetworkError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("response exceeds %d bytes", c.maxBodyBytes),
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := parseErrorMessage(respBody)
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return nil, resp.StatusCode, &trip.NetworkError{StatusCode: resp.StatusCode, Message: msg}
	}

	var result trip.TripPlanResult
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, resp.StatusCode, &trip.ResponseShapeError{Reason: "response is not a JSON object"}
	}
	if err := checkShape(&result, respBody); err != nil {
		return nil, resp.StatusCode, err
	}

	c.logger.Debug().
		Int("status", resp.StatusCode).
		Int("bytes", len(respBody)).
		Int("coordinates", len(result.Route.Coordinates)).
		Int("weather", len(result.Weather)).
		Int("traffic_segments", len(result.Traffic)).
		Int("recommendation_locations", len(result.Recommendations)).
		Msg("received trip plan")

	return &result, resp.StatusCode, nil
}

// checkShape requires a route with coordinates and a polyline. A success
// status carrying only an "error" member reports that message.
func checkShape(result *trip.TripPlanResult, body []byte) error {
	if !result.HasRoute {
		if msg := parseErrorMessage(body); msg != "" {
			return &trip.ResponseShapeError{Reason: "planning failed: " + msg}
		}
		return &trip.ResponseShapeError{Reason: "response has no route"}
	}
	if len(result.Route.Coordinates) == 0 {
		return &trip.ResponseShapeError{Reason: "route has no coordinates"}
	}
	if strings.TrimSpace(result.Route.Polyline) == "" {
		return &trip.ResponseShapeError{Reason: "route has no polyline"}
	}
	return nil
}

func transportError(err error) error {
	switch {
	case errors.Is(err, resilience.ErrCircuitOpen):
		return &trip.NetworkError{Message: "planning service temporarily unavailable", Err: err}
	case errors.Is(err, context.Canceled):
		return &trip.NetworkError{Message: "request canceled", Err: err}
	case errors.Is(err, context.DeadlineExceeded):
		return &trip.NetworkError{Message: "request timed out", Err: err}
	default:
		return &trip.NetworkError{Message: "failed to reach planning service", Err: err}
	}
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return telemetry.OutcomeSuccess
	case errors.Is(err, context.Canceled):
		return telemetry.OutcomeCanceled
	case errors.Is(err, resilience.ErrCircuitOpen):
		return telemetry.OutcomeCircuitOpen
	case errors.Is(err, trip.ErrResponseShape):
		return telemetry.OutcomeShape
	default:
		return telemetry.OutcomeNetwork
	}
}

func toPlanRequest(req *trip.TripPlanRequest) planRequest {
	out := planRequest{
		Origin:                req.Origin,
		Destination:           req.Destination,
		Waypoints:             req.Waypoints,
		StopDurations:         req.StopDurations,
		AttractionPreferences: req.AttractionPreferences,
	}
	// The service expects lists, never null.
	if out.Waypoints == nil {
		out.Waypoints = []string{}
	}
	if out.StopDurations == nil {
		out.StopDurations = []int{}
	}
	if out.AttractionPreferences == nil {
		out.AttractionPreferences = []string{}
	}
	if req.DepartureTime != nil {
		s := req.DepartureTime.Format(departureLayout)
		out.DepartureTime = &s
	}
	return out
}
