package trip

import (
	"bytes"
	"encoding/json"
)

type wireLeg struct {
	StartAddress string `json:"start_address,omitempty"`
	EndAddress   string `json:"end_address,omitempty"`
	EndLocation  Point  `json:"end_location"`
}

type wireRoute struct {
	Coordinates       []Point   `json:"coordinates"`
	Polyline          string    `json:"polyline"`
	Legs              []wireLeg `json:"legs,omitempty"`
	Waypoints         []string  `json:"waypoints,omitempty"`
	DestinationCoords Point     `json:"destination_coords"`
}

type wireWeather struct {
	Coords      Point  `json:"coords"`
	Condition   string `json:"condition,omitempty"`
	Temperature string `json:"temperature,omitempty"`
}

type wireStop struct {
	Coords              Point  `json:"coords"`
	Stop                string `json:"stop,omitempty"`
	ArrivalDateTime     string `json:"arrival_date_time,omitempty"`
	TravelTime          string `json:"travel_time,omitempty"`
	StopDuration        string `json:"stop_duration,omitempty"`
	CongestionLevel     string `json:"congestion_level,omitempty"`
	TrafficDelaySeconds int    `json:"traffic_delay_seconds,omitempty"`
}

type wireSegment struct {
	Coordinates     []Point    `json:"coordinates"`
	CongestionLevel string     `json:"congestion_level,omitempty"`
	EstimatedStops  []wireStop `json:"estimated_stops,omitempty"`
}

type wirePlace struct {
	Name    string   `json:"name,omitempty"`
	Coords  Point    `json:"coords"`
	Rating  *float64 `json:"rating,omitempty"`
	Address string   `json:"address,omitempty"`
	Phone   string   `json:"phone,omitempty"`
}

type wireRecommendations struct {
	Restaurants []wirePlace `json:"restaurants"`
	Hotels      []wirePlace `json:"hotels"`
	Attractions []wirePlace `json:"attractions"`
}

// MarshalJSON writes the result back in the planning service's wire shape,
// keeping the order of the weather and recommendation locations.
func (r TripPlanResult) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	if r.HasRoute {
		route := wireRoute{
			Coordinates:       r.Route.Coordinates,
			Polyline:          r.Route.Polyline,
			Waypoints:         r.Route.Waypoints,
			DestinationCoords: r.Route.DestinationCoords,
		}
		for _, leg := range r.Route.Legs {
			route.Legs = append(route.Legs, wireLeg(leg))
		}
		if err := writeMember(&buf, "route", route, false); err != nil {
			return nil, err
		}
	} else {
		buf.WriteString(`"route":null`)
	}

	buf.WriteString(`,"weather":{`)
	for i, w := range r.Weather {
		entry := wireWeather{Coords: w.Coords, Condition: w.Condition, Temperature: w.Temperature}
		if err := writeMember(&buf, w.Location, entry, i > 0); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')

	segments := make([]wireSegment, 0, len(r.Traffic))
	for _, seg := range r.Traffic {
		ws := wireSegment{Coordinates: seg.Coordinates, CongestionLevel: string(seg.CongestionLevel)}
		for _, s := range seg.EstimatedStops {
			ws.EstimatedStops = append(ws.EstimatedStops, wireStop{
				Coords:              s.Coords,
				Stop:                s.Stop,
				ArrivalDateTime:     s.ArrivalDateTime,
				TravelTime:          s.TravelTime,
				StopDuration:        s.StopDuration,
				CongestionLevel:     string(s.CongestionLevel),
				TrafficDelaySeconds: s.TrafficDelaySeconds,
			})
		}
		segments = append(segments, ws)
	}
	if err := writeMember(&buf, "traffic", segments, true); err != nil {
		return nil, err
	}

	buf.WriteString(`,"recommendations":{`)
	for i, rec := range r.Recommendations {
		entry := wireRecommendations{
			Restaurants: wirePlaces(rec.Restaurants),
			Hotels:      wirePlaces(rec.Hotels),
			Attractions: wirePlaces(rec.Attractions),
		}
		if err := writeMember(&buf, rec.Location, entry, i > 0); err != nil {
			return nil, err
		}
	}
	buf.WriteString("}}")

	return buf.Bytes(), nil
}

func wirePlaces(places []Place) []wirePlace {
	out := make([]wirePlace, 0, len(places))
	for _, p := range places {
		out = append(out, wirePlace(p))
	}
	return out
}

func writeMember(buf *bytes.Buffer, key string, value any, comma bool) error {
	k, err := json.Marshal(key)
	if err != nil {
		return err
	}
	v, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if comma {
		buf.WriteByte(',')
	}
	buf.Write(k)
	buf.WriteByte(':')
	buf.Write(v)
	return nil
}
