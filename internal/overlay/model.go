// Package overlay turns raw trip-planning results into render-ready map
// overlays: a route path, congestion-colored segments, categorized markers
// and a viewport bounding box.
package overlay

import (
	"github.com/paulmach/orb"

	"github.com/breatheroute/roadtrip/internal/trip"
)

// Category is the kind of thing a marker represents.
type Category string

const (
	CategoryOrigin         Category = "origin"
	CategoryDestination    Category = "destination"
	CategoryWaypoint       Category = "waypoint"
	CategoryWeather        Category = "weather"
	CategoryTraffic        Category = "traffic"
	CategoryRestaurant     Category = "restaurant"
	CategoryHotel          Category = "hotel"
	CategoryAttraction     Category = "attraction"
	CategoryRecommendation Category = "recommendation"
	CategoryGeneric        Category = "generic"
)

// Categories lists the categories the normalizer emits, in render order.
var Categories = []Category{
	CategoryOrigin,
	CategoryDestination,
	CategoryWaypoint,
	CategoryWeather,
	CategoryTraffic,
	CategoryRecommendation,
}

// Marker is a single point of interest on the map.
type Marker struct {
	Position    trip.Coordinate `json:"position"`
	Category    Category        `json:"category"`
	Subcategory string          `json:"subcategory,omitempty"`
	Label       string          `json:"label"`
	Style       StyleKey        `json:"style"`
}

// Segment is a stretch of route drawn in its congestion color.
type Segment struct {
	Path        []trip.Coordinate    `json:"path"`
	Color       trip.CongestionLevel `json:"color"`
	StrokeColor string               `json:"strokeColor,omitempty"`
}

// Bounds is an axis-aligned viewport box.
type Bounds struct {
	SouthWest trip.Coordinate `json:"southWest"`
	NorthEast trip.Coordinate `json:"northEast"`
}

// Contains reports whether c lies inside or on the edge of the box.
func (b Bounds) Contains(c trip.Coordinate) bool {
	return b.Bound().Contains(toPoint(c))
}

// Bound returns the box as an orb.Bound (X is longitude).
func (b Bounds) Bound() orb.Bound {
	return orb.Bound{Min: toPoint(b.SouthWest), Max: toPoint(b.NorthEast)}
}

func boundsFrom(b orb.Bound) *Bounds {
	return &Bounds{
		SouthWest: trip.Coordinate{Lat: b.Min.Lat(), Lng: b.Min.Lon()},
		NorthEast: trip.Coordinate{Lat: b.Max.Lat(), Lng: b.Max.Lon()},
	}
}

func toPoint(c trip.Coordinate) orb.Point {
	return orb.Point{c.Lng, c.Lat}
}

// RenderModel is everything the display layer needs to draw one trip.
// A new model always replaces the previous one.
type RenderModel struct {
	RoutePath      []trip.Coordinate `json:"routePath"`
	RouteSegments  []Segment         `json:"routeSegments"`
	Markers        []Marker          `json:"markers"`
	Bounds         *Bounds           `json:"bounds,omitempty"`
	EncodedPath    string            `json:"encodedPath,omitempty"`
	DistanceMeters float64           `json:"distanceMeters"`
}

// Empty reports whether the model has no route to show.
func (m RenderModel) Empty() bool {
	return len(m.RoutePath) == 0
}

// MarkersOf returns the markers of one category, in emission order.
func (m RenderModel) MarkersOf(category Category) []Marker {
	var out []Marker
	for _, mk := range m.Markers {
		if mk.Category == category {
			out = append(out, mk)
		}
	}
	return out
}

func emptyModel() RenderModel {
	return RenderModel{
		RoutePath:     []trip.Coordinate{},
		RouteSegments: []Segment{},
		Markers:       []Marker{},
	}
}
