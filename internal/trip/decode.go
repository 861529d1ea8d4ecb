package trip

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Point is a coordinate as received from the planning service. Decoding a
// Point never fails: anything that is not a coordinate decodes to an unset
// Point, which Coordinate reports as invalid.
type Point struct {
	lat float64
	lng float64
	set bool
}

// NewPoint returns a set Point. Range validation still happens in Coordinate.
func NewPoint(lat, lng float64) Point {
	return Point{lat: lat, lng: lng, set: true}
}

// Coordinate returns the point and whether it is a valid coordinate.
func (p Point) Coordinate() (Coordinate, bool) {
	c := Coordinate{Lat: p.lat, Lng: p.lng}
	return c, p.set && c.Valid()
}

// UnmarshalJSON accepts [lat, lng, ...], {"lat","lng"} and {"lat","lon"}.
// Numbers may be encoded as strings.
func (p *Point) UnmarshalJSON(data []byte) error {
	*p = Point{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil
	}

	switch data[0] {
	case '[':
		var parts []json.RawMessage
		if json.Unmarshal(data, &parts) != nil || len(parts) < 2 {
			return nil
		}
		lat, okLat := flexFloat(parts[0])
		lng, okLng := flexFloat(parts[1])
		if okLat && okLng {
			*p = NewPoint(lat, lng)
		}
	case '{':
		var obj map[string]json.RawMessage
		if json.Unmarshal(data, &obj) != nil {
			return nil
		}
		lat, okLat := firstFloat(obj, "lat", "latitude")
		lng, okLng := firstFloat(obj, "lng", "lon", "longitude")
		if okLat && okLng {
			*p = NewPoint(lat, lng)
		}
	}
	return nil
}

// MarshalJSON writes [lat, lng], or null for an unset point.
func (p Point) MarshalJSON() ([]byte, error) {
	if !p.set {
		return []byte("null"), nil
	}
	return json.Marshal([2]float64{p.lat, p.lng})
}

func firstFloat(obj map[string]json.RawMessage, keys ...string) (float64, bool) {
	for _, k := range keys {
		if raw, ok := obj[k]; ok && !isNull(raw) {
			return flexFloat(raw)
		}
	}
	return 0, false
}

// flexFloat decodes a JSON number or a numeric string. null is not a number.
func flexFloat(raw json.RawMessage) (float64, bool) {
	if isNull(raw) {
		return 0, false
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f, true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// flexString decodes a JSON string, or the text form of a number or bool.
// Anything else yields "".
func flexString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return ""
	}
	switch raw[0] {
	case '{', '[', '"', 'n':
		return ""
	}
	return string(raw)
}

// keyedRaw is one member of a JSON object, in document order.
type keyedRaw struct {
	Key   string
	Value json.RawMessage
}

// orderedObject walks a JSON object and returns its members in document
// order. Non-objects yield nil.
func orderedObject(raw json.RawMessage) []keyedRaw {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	if _, err := dec.Token(); err != nil {
		return nil
	}

	var members []keyedRaw
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return members
		}
		key, ok := tok.(string)
		if !ok {
			return members
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return members
		}
		members = append(members, keyedRaw{Key: key, Value: value})
	}
	return members
}

// objectFields decodes an object into a field map, or nil for non-objects.
// Members set to null are left out so that fallback keys still apply.
func objectFields(raw json.RawMessage) map[string]json.RawMessage {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return nil
	}
	var obj map[string]json.RawMessage
	if json.Unmarshal(raw, &obj) != nil {
		return nil
	}
	for k, v := range obj {
		if isNull(v) {
			delete(obj, k)
		}
	}
	return obj
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// list returns the elements of a JSON array. When single is true a lone
// object is treated as a one-element list. Other shapes yield nil.
func list(raw json.RawMessage, single bool) []json.RawMessage {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil
	}
	switch raw[0] {
	case '[':
		var items []json.RawMessage
		if json.Unmarshal(raw, &items) != nil {
			return nil
		}
		return items
	case '{':
		if single {
			return []json.RawMessage{raw}
		}
	}
	return nil
}

func decodePoint(raw json.RawMessage) Point {
	var p Point
	_ = p.UnmarshalJSON(raw)
	return p
}

func decodePoints(raw json.RawMessage) []Point {
	items := list(raw, false)
	if len(items) == 0 {
		return nil
	}
	points := make([]Point, len(items))
	for i, item := range items {
		points[i] = decodePoint(item)
	}
	return points
}

// ParseCongestion maps a free-form congestion string to a level.
// Matching is case-insensitive; anything unrecognized is unknown.
func ParseCongestion(s string) CongestionLevel {
	switch CongestionLevel(strings.ToLower(strings.TrimSpace(s))) {
	case CongestionLight:
		return CongestionLight
	case CongestionModerate:
		return CongestionModerate
	case CongestionHeavy:
		return CongestionHeavy
	default:
		return CongestionUnknown
	}
}

// UnmarshalJSON decodes a planning result tolerantly. It only fails when the
// payload is not a JSON object.
func (r *TripPlanResult) UnmarshalJSON(data []byte) error {
	var raw struct {
		Route           json.RawMessage `json:"route"`
		Weather         json.RawMessage `json:"weather"`
		Traffic         json.RawMessage `json:"traffic"`
		Recommendations json.RawMessage `json:"recommendations"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*r = TripPlanResult{}
	r.Route, r.HasRoute = decodeRoute(raw.Route)
	r.Weather = decodeWeather(raw.Weather)
	r.Traffic = decodeTraffic(raw.Traffic)
	r.Recommendations = decodeRecommendations(raw.Recommendations)
	return nil
}

// decodeRoute accepts a route object or a list whose first object is the route.
func decodeRoute(raw json.RawMessage) (Route, bool) {
	var fields map[string]json.RawMessage
	for _, item := range list(raw, true) {
		if fields = objectFields(item); fields != nil {
			break
		}
	}
	if fields == nil {
		return Route{}, false
	}

	route := Route{
		Coordinates:       decodePoints(fields["coordinates"]),
		Polyline:          flexString(fields["polyline"]),
		DestinationCoords: decodePoint(fields["destination_coords"]),
	}
	for _, item := range list(fields["legs"], false) {
		leg := objectFields(item)
		if leg == nil {
			continue
		}
		route.Legs = append(route.Legs, Leg{
			StartAddress: flexString(leg["start_address"]),
			EndAddress:   flexString(leg["end_address"]),
			EndLocation:  decodePoint(leg["end_location"]),
		})
	}
	for _, item := range list(fields["waypoints"], false) {
		route.Waypoints = append(route.Waypoints, flexString(item))
	}
	return route, true
}

func decodeWeather(raw json.RawMessage) []WeatherObservation {
	var out []WeatherObservation
	for _, member := range orderedObject(raw) {
		fields := objectFields(member.Value)
		if fields == nil {
			continue
		}
		if _, failed := fields["error"]; failed {
			continue
		}
		out = append(out, WeatherObservation{
			Location:    member.Key,
			Coords:      decodePoint(fields["coords"]),
			Condition:   flexString(fields["condition"]),
			Temperature: flexString(fields["temperature"]),
		})
	}
	return out
}

func decodeTraffic(raw json.RawMessage) []TrafficSegment {
	var out []TrafficSegment
	for _, item := range list(raw, true) {
		fields := objectFields(item)
		if fields == nil {
			continue
		}
		segment := TrafficSegment{
			Coordinates:     decodePoints(fields["coordinates"]),
			CongestionLevel: ParseCongestion(flexString(fields["congestion_level"])),
		}
		for _, s := range list(fields["estimated_stops"], false) {
			if stop, ok := decodeStop(s); ok {
				segment.EstimatedStops = append(segment.EstimatedStops, stop)
			}
		}
		out = append(out, segment)
	}
	return out
}

// MaxTrafficDelaySeconds is the largest delay accepted from the service.
// Larger values are treated as missing.
const MaxTrafficDelaySeconds = 24 * 60 * 60

func decodeStop(raw json.RawMessage) (Stop, bool) {
	fields := objectFields(raw)
	if fields == nil {
		return Stop{}, false
	}

	arrival := fields["arrival_date_time"]
	if arrival == nil {
		arrival = fields["arrival_datetime"]
	}

	stop := Stop{
		Coords:          decodePoint(fields["coords"]),
		Stop:            flexString(fields["stop"]),
		ArrivalDateTime: flexString(arrival),
		TravelTime:      flexString(fields["travel_time"]),
		StopDuration:    flexString(fields["stop_duration"]),
		CongestionLevel: ParseCongestion(flexString(fields["congestion_level"])),
	}
	if delay, ok := flexFloat(fields["traffic_delay_seconds"]); ok && delay > 0 && delay <= MaxTrafficDelaySeconds {
		stop.TrafficDelaySeconds = int(math.Round(delay))
	}
	return stop, true
}

func decodeRecommendations(raw json.RawMessage) []LocationRecommendations {
	var out []LocationRecommendations
	for _, member := range orderedObject(raw) {
		fields := objectFields(member.Value)
		if fields == nil {
			continue
		}
		out = append(out, LocationRecommendations{
			Location:    member.Key,
			Restaurants: decodePlaces(fields[string(PlaceRestaurants)]),
			Hotels:      decodePlaces(fields[string(PlaceHotels)]),
			Attractions: decodePlaces(fields[string(PlaceAttractions)]),
		})
	}
	return out
}

func decodePlaces(raw json.RawMessage) []Place {
	var out []Place
	for _, item := range list(raw, false) {
		fields := objectFields(item)
		if fields == nil {
			continue
		}
		phone := fields["phone"]
		if phone == nil {
			phone = fields["phone_number"]
		}
		place := Place{
			Name:    flexString(fields["name"]),
			Coords:  decodePoint(fields["coords"]),
			Address: flexString(fields["address"]),
			Phone:   flexString(phone),
		}
		if rating, ok := flexFloat(fields["rating"]); ok {
			place.Rating = &rating
		}
		out = append(out, place)
	}
	return out
}
