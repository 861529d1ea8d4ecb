// Package trip defines the trip-planning request and the raw planning result,
// together with the form validation that produces requests.
package trip

import (
	"math"
	"time"
)

// Coordinate represents a validated geographic point.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Valid reports whether both components are finite and in range.
func (c Coordinate) Valid() bool {
	if math.IsNaN(c.Lat) || math.IsNaN(c.Lng) || math.IsInf(c.Lat, 0) || math.IsInf(c.Lng, 0) {
		return false
	}
	return c.Lat >= -90 && c.Lat <= 90 && c.Lng >= -180 && c.Lng <= 180
}

// TripPlanRequest is a validated submission ready for the planning service.
type TripPlanRequest struct {
	Origin                string
	Destination           string
	Waypoints             []string
	DepartureTime         *time.Time
	StopDurations         []int // hours, parallel to Waypoints
	AttractionPreferences []string
}

// CongestionLevel classifies traffic density.
type CongestionLevel string

const (
	CongestionLight    CongestionLevel = "light"
	CongestionModerate CongestionLevel = "moderate"
	CongestionHeavy    CongestionLevel = "heavy"
	CongestionUnknown  CongestionLevel = "unknown"
)

// TripPlanResult is the loosely structured payload returned by the planning
// service. Every section is optional; see decode.go for accepted shapes.
type TripPlanResult struct {
	Route           Route
	Weather         []WeatherObservation
	Traffic         []TrafficSegment
	Recommendations []LocationRecommendations

	// HasRoute is false when the payload carried no usable route object.
	HasRoute bool
}

// Route is the routed geometry of the trip.
type Route struct {
	Coordinates       []Point
	Polyline          string
	Legs              []Leg
	Waypoints         []string
	DestinationCoords Point
}

// Leg is one routed hop between two consecutive stops.
type Leg struct {
	StartAddress string
	EndAddress   string
	EndLocation  Point
}

// WeatherObservation is the current weather at one named location.
type WeatherObservation struct {
	Location    string
	Coords      Point
	Condition   string
	Temperature string
}

// TrafficSegment is a stretch of route with a single congestion level.
type TrafficSegment struct {
	Coordinates     []Point
	CongestionLevel CongestionLevel
	EstimatedStops  []Stop
}

// Stop is an estimated arrival at a stop along the route.
type Stop struct {
	Coords              Point
	Stop                string
	ArrivalDateTime     string
	TravelTime          string
	StopDuration        string // empty when the stop is the final destination
	CongestionLevel     CongestionLevel
	TrafficDelaySeconds int
}

// PlaceKind is the recommendation category a place was listed under.
type PlaceKind string

const (
	PlaceRestaurants PlaceKind = "restaurants"
	PlaceHotels      PlaceKind = "hotels"
	PlaceAttractions PlaceKind = "attractions"
)

// PlaceKinds lists the recommendation categories in emission order.
var PlaceKinds = []PlaceKind{PlaceRestaurants, PlaceHotels, PlaceAttractions}

// LocationRecommendations holds the places recommended near one location.
type LocationRecommendations struct {
	Location    string
	Restaurants []Place
	Hotels      []Place
	Attractions []Place
}

// Places returns the list for the given kind.
func (r LocationRecommendations) Places(kind PlaceKind) []Place {
	switch kind {
	case PlaceRestaurants:
		return r.Restaurants
	case PlaceHotels:
		return r.Hotels
	case PlaceAttractions:
		return r.Attractions
	default:
		return nil
	}
}

// Place is a recommended restaurant, hotel or attraction.
type Place struct {
	Name    string
	Coords  Point
	Rating  *float64
	Address string
	Phone   string
}
