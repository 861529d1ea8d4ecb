package overlay

import "github.com/rs/zerolog"

// Report counts what normalization dropped or degraded. None of it is an
// error; callers use it for debug logs and metrics.
type Report struct {
	InvalidRouteCoordinates int
	UnplacedWaypoints       int
	InvalidWeather          int
	InvalidTrafficStops     int
	UnusableTrafficSegments int
	InvalidPlaces           int
	CappedPlaces            int
	DuplicateMarkers        int
	FallbackSegment         bool
}

// Dropped is the total number of input items that produced no output.
func (r Report) Dropped() int {
	return r.InvalidRouteCoordinates + r.UnplacedWaypoints + r.InvalidWeather +
		r.InvalidTrafficStops + r.UnusableTrafficSegments + r.InvalidPlaces +
		r.CappedPlaces + r.DuplicateMarkers
}

// Sections returns per-section drop counts keyed by a stable section name.
func (r Report) Sections() map[string]int {
	return map[string]int{
		"route":         r.InvalidRouteCoordinates,
		"waypoints":     r.UnplacedWaypoints,
		"weather":       r.InvalidWeather,
		"traffic_stops": r.InvalidTrafficStops,
		"traffic":       r.UnusableTrafficSegments,
		"places":        r.InvalidPlaces,
		"places_capped": r.CappedPlaces,
		"duplicates":    r.DuplicateMarkers,
	}
}

// MarshalZerologObject implements zerolog.LogObjectMarshaler.
func (r Report) MarshalZerologObject(e *zerolog.Event) {
	e.Int("invalid_route_coordinates", r.InvalidRouteCoordinates).
		Int("unplaced_waypoints", r.UnplacedWaypoints).
		Int("invalid_weather", r.InvalidWeather).
		Int("invalid_traffic_stops", r.InvalidTrafficStops).
		Int("unusable_traffic_segments", r.UnusableTrafficSegments).
		Int("invalid_places", r.InvalidPlaces).
		Int("capped_places", r.CappedPlaces).
		Int("duplicate_markers", r.DuplicateMarkers).
		Bool("fallback_segment", r.FallbackSegment)
}
