package session_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/breatheroute/roadtrip/internal/overlay"
	"github.com/breatheroute/roadtrip/internal/session"
	"github.com/breatheroute/roadtrip/internal/trip"
)

type plannerFunc func(ctx context.Context, req *trip.TripPlanRequest) (*trip.TripPlanResult, error)

func (f plannerFunc) PlanTrip(ctx context.Context, req *trip.TripPlanRequest) (*trip.TripPlanResult, error) {
	return f(ctx, req)
}

// resultFor returns a two-point route whose origin label is the request origin.
func resultFor(req *trip.TripPlanRequest) *trip.TripPlanResult {
	return &trip.TripPlanResult{
		HasRoute: true,
		Route: trip.Route{
			Coordinates: []trip.Point{trip.NewPoint(29.7604, -95.3698), trip.NewPoint(28.5383, -81.3792)},
			Polyline:    "_p~iF~ps|U",
			Legs: []trip.Leg{
				{StartAddress: req.Origin, EndAddress: req.Destination},
			},
		},
	}
}

func echoPlanner() session.Planner {
	return plannerFunc(func(_ context.Context, req *trip.TripPlanRequest) (*trip.TripPlanResult, error) {
		return resultFor(req), nil
	})
}

func form(origin string) trip.FormInput {
	return trip.FormInput{
		Origin:        origin,
		Destination:   "Orlando, FL",
		DepartureTime: "2026-03-14T08:30",
	}
}

func originLabel(t *testing.T, o *session.Overlay) string {
	t.Helper()
	markers := o.Model.MarkersOf(overlay.CategoryOrigin)
	require.Len(t, markers, 1)
	return markers[0].Label
}

func newSession(planner session.Planner) *session.Session {
	return session.New("test-session", session.Config{
		Planner: planner,
		Logger:  zerolog.Nop(),
	})
}

func TestSession_SubmitPublishes(t *testing.T) {
	s := newSession(echoPlanner())
	assert.Nil(t, s.Current())

	o, err := s.Submit(context.Background(), form("Houston, TX"))
	require.NoError(t, err)

	assert.Equal(t, uint64(1), o.Sequence)
	assert.Equal(t, "Houston, TX", originLabel(t, o))
	assert.Same(t, o, s.Current())
	assert.False(t, o.RenderedAt.IsZero())
	assert.Equal(t, "test-session", s.ID())
}

func TestSession_ValidationErrorDoesNotTakeSequence(t *testing.T) {
	var calls int
	s := newSession(plannerFunc(func(_ context.Context, req *trip.TripPlanRequest) (*trip.TripPlanResult, error) {
		calls++
		return resultFor(req), nil
	}))

	_, err := s.Submit(context.Background(), trip.FormInput{Origin: "Houston, TX"})

	var verr *trip.RequestValidationError
	require.ErrorAs(t, err, &verr)
	assert.True(t, verr.Has(trip.FieldDestination))
	assert.True(t, verr.Has(trip.FieldDepartureTime))
	assert.Zero(t, calls)
	assert.Zero(t, s.Sequence())
	assert.Nil(t, s.Current())
}

func TestSession_StaleResponseIsDiscarded(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var slowCtx context.Context

	s := newSession(plannerFunc(func(ctx context.Context, req *trip.TripPlanRequest) (*trip.TripPlanResult, error) {
		if req.Origin == "Slow" {
			slowCtx = ctx
			close(started)
			<-release // responds even after cancellation
		}
		return resultFor(req), nil
	}))

	type outcome struct {
		overlay *session.Overlay
		err     error
	}
	done := make(chan outcome, 1)
	go func() {
		o, err := s.Submit(context.Background(), form("Slow"))
		done <- outcome{o, err}
	}()
	<-started

	fast, err := s.Submit(context.Background(), form("Fast"))
	require.NoError(t, err)
	assert.Equal(t, uint64(2), fast.Sequence)
	assert.ErrorIs(t, slowCtx.Err(), context.Canceled, "newer submission cancels the older one")

	close(release)
	slow := <-done

	assert.ErrorIs(t, slow.err, session.ErrSuperseded)
	assert.Nil(t, slow.overlay)

	current := s.Current()
	require.NotNil(t, current)
	assert.Equal(t, uint64(2), current.Sequence)
	assert.Equal(t, "Fast", originLabel(t, current))
}

func TestSession_StaleFailureReportsSuperseded(t *testing.T) {
	started := make(chan struct{})

	s := newSession(plannerFunc(func(ctx context.Context, req *trip.TripPlanRequest) (*trip.TripPlanResult, error) {
		if req.Origin == "Slow" {
			close(started)
			<-ctx.Done()
			return nil, &trip.NetworkError{Message: "request canceled", Err: ctx.Err()}
		}
		return resultFor(req), nil
	}))

	errc := make(chan error, 1)
	go func() {
		_, err := s.Submit(context.Background(), form("Slow"))
		errc <- err
	}()
	<-started

	_, err := s.Submit(context.Background(), form("Fast"))
	require.NoError(t, err)

	slowErr := <-errc
	assert.ErrorIs(t, slowErr, session.ErrSuperseded)
	assert.False(t, errors.Is(slowErr, trip.ErrNetwork))
}

func TestSession_FailureKeepsPreviousOverlay(t *testing.T) {
	fail := false
	s := newSession(plannerFunc(func(_ context.Context, req *trip.TripPlanRequest) (*trip.TripPlanResult, error) {
		if fail {
			return nil, &trip.ResponseShapeError{Reason: "route has no polyline"}
		}
		return resultFor(req), nil
	}))

	first, err := s.Submit(context.Background(), form("Houston, TX"))
	require.NoError(t, err)

	fail = true
	_, err = s.Submit(context.Background(), form("Dallas, TX"))
	assert.ErrorIs(t, err, trip.ErrResponseShape)

	assert.Same(t, first, s.Current())
	assert.Equal(t, uint64(2), s.Sequence())
}

func TestSession_ConcurrentSubmissionsPublishLatest(t *testing.T) {
	s := newSession(echoPlanner())

	var wg sync.WaitGroup
	var mu sync.Mutex
	var maxPublished uint64

	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			o, err := s.Submit(context.Background(), form("Houston, TX"))
			if err != nil {
				assert.ErrorIs(t, err, session.ErrSuperseded)
				return
			}
			mu.Lock()
			if o.Sequence > maxPublished {
				maxPublished = o.Sequence
			}
			mu.Unlock()
		}()
	}
	wg.Wait()

	current := s.Current()
	require.NotNil(t, current)
	assert.Equal(t, maxPublished, current.Sequence)
	assert.Equal(t, uint64(32), s.Sequence())
}

func TestSession_CloseCancelsInFlight(t *testing.T) {
	started := make(chan struct{})
	s := newSession(plannerFunc(func(ctx context.Context, _ *trip.TripPlanRequest) (*trip.TripPlanResult, error) {
		close(started)
		<-ctx.Done()
		return nil, &trip.NetworkError{Message: "request canceled", Err: ctx.Err()}
	}))

	errc := make(chan error, 1)
	go func() {
		_, err := s.Submit(context.Background(), form("Houston, TX"))
		errc <- err
	}()
	<-started

	s.Close()

	err := <-errc
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, s.Current())
}
