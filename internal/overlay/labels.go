package overlay

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/breatheroute/roadtrip/internal/trip"
)

const (
	labelStartingPoint    = "Starting Point"
	labelDestinationPoint = "Destination Point"
	labelFinalDestination = "Final Destination"
	notAvailable          = "N/A"
)

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return notAvailable
	}
	return s
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func weatherLabel(w trip.WeatherObservation) string {
	var details []string
	if w.Condition != "" {
		details = append(details, w.Condition)
	}
	if w.Temperature != "" {
		details = append(details, w.Temperature)
	}
	if len(details) == 0 {
		return w.Location
	}
	return w.Location + ": " + strings.Join(details, ", ")
}

func trafficLabel(s trip.Stop, segmentLevel trip.CongestionLevel) string {
	duration := s.StopDuration
	if strings.TrimSpace(duration) == "" {
		duration = labelFinalDestination
	}
	level := s.CongestionLevel
	if level == trip.CongestionUnknown || level == "" {
		level = segmentLevel
	}
	if level == "" {
		level = trip.CongestionUnknown
	}
	delay := int(math.Round(float64(s.TrafficDelaySeconds) / 60))

	var b strings.Builder
	fmt.Fprintf(&b, "Stop: %s\n", orNA(s.Stop))
	fmt.Fprintf(&b, "Arrival: %s\n", orNA(s.ArrivalDateTime))
	fmt.Fprintf(&b, "Travel Time: %s\n", orNA(s.TravelTime))
	fmt.Fprintf(&b, "Stop Duration: %s\n", duration)
	fmt.Fprintf(&b, "Congestion: %s\n", level)
	fmt.Fprintf(&b, "Traffic Delay: %d minutes", delay)
	return b.String()
}

var placeKindTitles = map[trip.PlaceKind]string{
	trip.PlaceRestaurants: "Restaurant",
	trip.PlaceHotels:      "Hotel",
	trip.PlaceAttractions: "Attraction",
}

func placeLabel(p trip.Place, kind trip.PlaceKind) string {
	rating := notAvailable
	if p.Rating != nil {
		rating = strconv.FormatFloat(*p.Rating, 'f', -1, 64)
	}

	var b strings.Builder
	b.WriteString(orNA(p.Name))
	fmt.Fprintf(&b, "\nType: %s", placeKindTitles[kind])
	fmt.Fprintf(&b, "\nRating: %s", rating)
	fmt.Fprintf(&b, "\nAddress: %s", orNA(p.Address))
	fmt.Fprintf(&b, "\nPhone: %s", orNA(p.Phone))
	return b.String()
}
