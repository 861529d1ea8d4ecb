// Package session holds display sessions: one current overlay per session,
// replaced wholesale by the latest submission.
package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/breatheroute/roadtrip/internal/metrics"
	"github.com/breatheroute/roadtrip/internal/overlay"
	"github.com/breatheroute/roadtrip/internal/trip"
)

// ErrSuperseded is returned to a submission overtaken by a newer one in the
// same session. Its result is discarded.
var ErrSuperseded = errors.New("submission superseded by a newer submission")

// Planner plans a trip.
type Planner interface {
	PlanTrip(ctx context.Context, req *trip.TripPlanRequest) (*trip.TripPlanResult, error)
}

// Config holds the dependencies shared by sessions.
type Config struct {
	// Builder validates form input (optional, defaults to a builder with defaults).
	Builder *trip.RequestBuilder

	// Planner calls the planning service (required).
	Planner Planner

	// Normalizer builds render models (optional, defaults to NewNormalizer(overlay.Config{})).
	Normalizer *overlay.Normalizer

	// Metrics records submission outcomes (optional).
	Metrics *metrics.Metrics

	// Logger for session operations.
	Logger zerolog.Logger
}

func (c Config) withDefaults() Config {
	if c.Builder == nil {
		c.Builder = trip.NewRequestBuilder(trip.BuilderConfig{})
	}
	if c.Normalizer == nil {
		c.Normalizer = overlay.NewNormalizer(overlay.Config{})
	}
	return c
}

// Overlay is a published render model.
type Overlay struct {
	Sequence   uint64              `json:"sequence"`
	Model      overlay.RenderModel `json:"model"`
	Report     overlay.Report      `json:"-"`
	RenderedAt time.Time           `json:"renderedAt"`
}

// Session sequences submissions for one display. Only the latest submission
// may publish its overlay; earlier in-flight submissions are canceled.
type Session struct {
	id        string
	createdAt time.Time
	cfg       Config

	mu       sync.Mutex
	seq      uint64
	inflight context.CancelFunc

	current atomic.Pointer[Overlay]
}

// New creates a session with the given ID.
func New(id string, cfg Config) *Session {
	cfg = cfg.withDefaults()
	cfg.Logger = cfg.Logger.With().Str("session_id", id).Logger()
	return &Session{
		id:        id,
		createdAt: time.Now(),
		cfg:       cfg,
	}
}

// ID returns the session ID.
func (s *Session) ID() string {
	return s.id
}

// CreatedAt returns when the session was created.
func (s *Session) CreatedAt() time.Time {
	return s.createdAt
}

// Current returns the published overlay, or nil before the first success.
func (s *Session) Current() *Overlay {
	return s.current.Load()
}

// Sequence returns the number of accepted submissions so far.
func (s *Session) Sequence() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seq
}

// Submit validates in, plans the trip and publishes the normalized overlay.
//
// Invalid input returns a *trip.RequestValidationError and leaves any
// in-flight submission running. Otherwise the submission takes the next
// sequence number and cancels its predecessor. If a newer submission
// arrives before this one finishes, Submit returns ErrSuperseded whatever
// the planning outcome was, and the current overlay is untouched.
func (s *Session) Submit(ctx context.Context, in trip.FormInput) (*Overlay, error) {
	start := time.Now()

	req, err := s.cfg.Builder.Build(in)
	if err != nil {
		s.observe(start, err)
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	seq := s.begin(cancel)

	log := s.cfg.Logger.With().Uint64("sequence", seq).Logger()
	log.Debug().
		Str("origin", req.Origin).
		Str("destination", req.Destination).
		Int("waypoints", len(req.Waypoints)).
		Msg("submission started")

	result, err := s.cfg.Planner.PlanTrip(ctx, req)
	if s.superseded(seq) {
		log.Debug().Msg("submission superseded")
		s.observe(start, ErrSuperseded)
		return nil, ErrSuperseded
	}
	if err != nil {
		s.finish(seq)
		log.Warn().Err(err).Msg("submission failed")
		s.observe(start, err)
		return nil, err
	}

	model, report := s.cfg.Normalizer.NormalizeWithReport(result)
	published, ok := s.publish(seq, model, report)
	if !ok {
		log.Debug().Msg("submission superseded")
		s.observe(start, ErrSuperseded)
		return nil, ErrSuperseded
	}

	log.Debug().
		EmbedObject(report).
		Int("markers", len(model.Markers)).
		Int("segments", len(model.RouteSegments)).
		Msg("overlay published")
	s.cfg.Metrics.ObserveNormalization(model, report)
	s.observe(start, nil)
	return published, nil
}

// Close cancels any in-flight submission.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inflight != nil {
		s.inflight()
		s.inflight = nil
	}
}

// begin assigns the next sequence number and cancels the previous submission.
func (s *Session) begin(cancel context.CancelFunc) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inflight != nil {
		s.inflight()
	}
	s.seq++
	s.inflight = cancel
	return s.seq
}

func (s *Session) superseded(seq uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seq != seq
}

// finish clears the in-flight handle if seq still owns it.
func (s *Session) finish(seq uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seq == seq {
		s.inflight = nil
	}
}

// publish stores the overlay if seq is still the latest submission.
func (s *Session) publish(seq uint64, model overlay.RenderModel, report overlay.Report) (*Overlay, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seq != seq {
		return nil, false
	}
	o := &Overlay{
		Sequence:   seq,
		Model:      model,
		Report:     report,
		RenderedAt: time.Now(),
	}
	s.current.Store(o)
	s.inflight = nil
	return o, true
}

func (s *Session) observe(start time.Time, err error) {
	outcome := metrics.OutcomeOf(err)
	if errors.Is(err, ErrSuperseded) {
		outcome = metrics.OutcomeSuperseded
	}
	s.cfg.Metrics.ObserveSubmission(outcome, time.Since(start))
}
