package overlay

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"

	"github.com/breatheroute/roadtrip/internal/trip"
	"github.com/breatheroute/roadtrip/pkg/polyline"
)

// DefaultRecommendationLimit caps markers per (location, place kind).
const DefaultRecommendationLimit = 5

// Config holds configuration for the Normalizer.
type Config struct {
	// Classifier resolves marker styles.
	// Default: NewClassifier(DefaultStyleConfig())
	Classifier *Classifier

	// RecommendationLimit is the most markers emitted per location and place kind.
	// Default: 5
	RecommendationLimit int
}

// Normalizer converts planning results into render models. It holds no
// per-call state and is safe for concurrent use.
type Normalizer struct {
	classifier *Classifier
	limit      int
}

// NewNormalizer creates a new Normalizer.
func NewNormalizer(cfg Config) *Normalizer {
	if cfg.Classifier == nil {
		cfg.Classifier = NewClassifier(DefaultStyleConfig())
	}
	if cfg.RecommendationLimit <= 0 {
		cfg.RecommendationLimit = DefaultRecommendationLimit
	}
	return &Normalizer{
		classifier: cfg.Classifier,
		limit:      cfg.RecommendationLimit,
	}
}

// Classifier returns the classifier used for marker styles.
func (n *Normalizer) Classifier() *Classifier {
	return n.classifier
}

// Normalize builds a render model from result. It never fails; malformed
// sections only reduce marker coverage.
func (n *Normalizer) Normalize(result *trip.TripPlanResult) RenderModel {
	model, _ := n.NormalizeWithReport(result)
	return model
}

// NormalizeWithReport is Normalize plus a count of what was dropped.
func (n *Normalizer) NormalizeWithReport(result *trip.TripPlanResult) (RenderModel, Report) {
	var report Report
	model := emptyModel()
	if result == nil {
		return model, report
	}

	route := result.Route
	path := validCoordinates(route.Coordinates, &report.InvalidRouteCoordinates)
	if len(path) == 0 {
		return model, report
	}

	b := &builder{
		classifier: n.classifier,
		report:     &report,
		seen:       make(map[Marker]struct{}),
		bound:      toPoint(path[0]).Bound(),
	}
	for _, c := range path[1:] {
		b.bound = b.bound.Extend(toPoint(c))
	}

	destination := path[len(path)-1]
	if c, ok := route.DestinationCoords.Coordinate(); ok {
		destination = c
	}

	var startAddress, endAddress string
	if len(route.Legs) > 0 {
		startAddress = route.Legs[0].StartAddress
		endAddress = route.Legs[len(route.Legs)-1].EndAddress
	}
	b.add(path[0], CategoryOrigin, "", firstNonEmpty(startAddress, labelStartingPoint))
	b.add(destination, CategoryDestination, "", firstNonEmpty(endAddress, labelDestinationPoint))

	b.addWaypoints(route, path)
	b.addWeather(result.Weather)
	b.addTraffic(result.Traffic)
	b.addRecommendations(result.Recommendations, n.limit)

	model.RoutePath = path
	model.RouteSegments = b.segments(result.Traffic, path)
	model.Markers = b.markers
	model.Bounds = boundsFrom(b.bound)
	model.EncodedPath = polyline.Encode(toPolyline(path))
	model.DistanceMeters = math.Round(polyline.Length(toPolyline(path)))

	return model, report
}

// builder accumulates markers and their bounding box for one call.
type builder struct {
	classifier *Classifier
	report     *Report
	markers    []Marker
	seen       map[Marker]struct{}
	bound      orb.Bound
}

// add appends a marker unless an identical one is already present and
// reports whether it appended.
func (b *builder) add(pos trip.Coordinate, category Category, subcategory, label string) bool {
	m := Marker{
		Position:    pos,
		Category:    category,
		Subcategory: subcategory,
		Label:       label,
		Style:       b.classifier.Classify(category, subcategory),
	}
	if _, dup := b.seen[m]; dup {
		b.report.DuplicateMarkers++
		return false
	}
	b.seen[m] = struct{}{}
	b.markers = append(b.markers, m)
	b.bound = b.bound.Extend(toPoint(pos))
	return true
}

// addWaypoints places a marker for the end of every leg but the last.
// Placement is best-effort: the leg's own end location when valid, otherwise
// an interior path point chosen by the leg's position in the trip.
func (b *builder) addWaypoints(route trip.Route, path []trip.Coordinate) {
	legs := route.Legs
	for i := 0; i < len(legs)-1; i++ {
		pos, ok := legs[i].EndLocation.Coordinate()
		if !ok {
			pos, ok = interiorPoint(path, i, len(legs))
		}
		if !ok {
			b.report.UnplacedWaypoints++
			continue
		}

		var named string
		if i < len(route.Waypoints) {
			named = route.Waypoints[i]
		}
		label := firstNonEmpty(legs[i].EndAddress, named, fmt.Sprintf("Waypoint %d", i+1))
		b.add(pos, CategoryWaypoint, "", label)
	}
}

// interiorPoint maps leg i of n onto the path strictly between its ends.
func interiorPoint(path []trip.Coordinate, i, n int) (trip.Coordinate, bool) {
	if len(path) < 3 || n <= 0 {
		return trip.Coordinate{}, false
	}
	last := len(path) - 1
	idx := int(math.Round(float64((i+1)*last) / float64(n)))
	idx = max(1, min(idx, last-1))
	return path[idx], true
}

func (b *builder) addWeather(observations []trip.WeatherObservation) {
	for _, w := range observations {
		pos, ok := w.Coords.Coordinate()
		if !ok {
			b.report.InvalidWeather++
			continue
		}
		b.add(pos, CategoryWeather, "", weatherLabel(w))
	}
}

func (b *builder) addTraffic(segments []trip.TrafficSegment) {
	for _, seg := range segments {
		for _, stop := range seg.EstimatedStops {
			pos, ok := stop.Coords.Coordinate()
			if !ok {
				b.report.InvalidTrafficStops++
				continue
			}
			b.add(pos, CategoryTraffic, "", trafficLabel(stop, seg.CongestionLevel))
		}
	}
}

var placeSubcategories = map[trip.PlaceKind]Category{
	trip.PlaceRestaurants: CategoryRestaurant,
	trip.PlaceHotels:      CategoryHotel,
	trip.PlaceAttractions: CategoryAttraction,
}

type placeKey struct {
	name string
	pos  trip.Coordinate
}

func (b *builder) addRecommendations(recs []trip.LocationRecommendations, limit int) {
	for _, loc := range recs {
		for _, kind := range trip.PlaceKinds {
			sub := string(placeSubcategories[kind])
			seen := make(map[placeKey]struct{})
			emitted := 0
			for _, place := range loc.Places(kind) {
				pos, ok := place.Coords.Coordinate()
				if !ok {
					b.report.InvalidPlaces++
					continue
				}
				key := placeKey{name: place.Name, pos: pos}
				if _, dup := seen[key]; dup {
					b.report.DuplicateMarkers++
					continue
				}
				seen[key] = struct{}{}
				if emitted == limit {
					b.report.CappedPlaces++
					continue
				}
				// Places already shown for another location do not use up this one's cap.
				if b.add(pos, CategoryRecommendation, sub, placeLabel(place, kind)) {
					emitted++
				}
			}
		}
	}
}

// segments colors each usable traffic segment, or the whole path when none is usable.
func (b *builder) segments(traffic []trip.TrafficSegment, path []trip.Coordinate) []Segment {
	out := []Segment{}
	for _, seg := range traffic {
		var dropped int
		coords := validCoordinates(seg.Coordinates, &dropped)
		if len(coords) < 2 {
			b.report.UnusableTrafficSegments++
			continue
		}
		level := seg.CongestionLevel
		if level == "" {
			level = trip.CongestionUnknown
		}
		out = append(out, Segment{
			Path:        coords,
			Color:       level,
			StrokeColor: b.classifier.CongestionColor(level),
		})
	}
	if len(out) > 0 {
		return out
	}

	b.report.FallbackSegment = true
	whole := make([]trip.Coordinate, len(path))
	copy(whole, path)
	return []Segment{{
		Path:        whole,
		Color:       trip.CongestionLight,
		StrokeColor: b.classifier.CongestionColor(trip.CongestionLight),
	}}
}

func validCoordinates(points []trip.Point, dropped *int) []trip.Coordinate {
	out := make([]trip.Coordinate, 0, len(points))
	for _, p := range points {
		if c, ok := p.Coordinate(); ok {
			out = append(out, c)
			continue
		}
		*dropped++
	}
	return out
}

func toPolyline(path []trip.Coordinate) []polyline.Coordinate {
	out := make([]polyline.Coordinate, len(path))
	for i, c := range path {
		out[i] = polyline.Coordinate{Lat: c.Lat, Lng: c.Lng}
	}
	return out
}
