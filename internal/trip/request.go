package trip

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// Form field names used in validation errors.
const (
	FieldOrigin        = "origin"
	FieldDestination   = "destination"
	FieldDepartureTime = "departureTime"
)

// DefaultMaxStopHours bounds a single stop duration.
const DefaultMaxStopHours = 72

// departureLayouts are the accepted local datetime forms, tried in order.
var departureLayouts = []string{
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
}

// FormInput is the raw content of the trip form.
type FormInput struct {
	Origin                string      `json:"origin"`
	Destination           string      `json:"destination"`
	Waypoints             FlexStrings `json:"waypoints"`
	StopDurations         FlexStrings `json:"stopDurations"`
	DepartureTime         string      `json:"departureTime"`
	AttractionPreferences FlexStrings `json:"attractionPreferences"`
}

// FlexStrings decodes a list of strings or numbers, or a single
// comma-separated string.
type FlexStrings []string

// UnmarshalJSON never fails; unsupported shapes decode to nil.
func (f *FlexStrings) UnmarshalJSON(data []byte) error {
	*f = nil
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if json.Unmarshal(data, &s) == nil {
			*f = SplitList(s)
		}
	case '[':
		var items []json.RawMessage
		if json.Unmarshal(data, &items) != nil {
			return nil
		}
		out := make(FlexStrings, 0, len(items))
		for _, item := range items {
			out = append(out, flexString(item))
		}
		*f = out
	}
	return nil
}

// SplitList splits a comma-separated form value. Empty entries are kept so
// that positions stay aligned with a parallel list.
func SplitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// BuilderConfig holds configuration for the RequestBuilder.
type BuilderConfig struct {
	// Location is the zone departure times are interpreted in.
	// Default: time.Local
	Location *time.Location

	// MaxStopHours clamps each stop duration.
	// Default: 72
	MaxStopHours int
}

// RequestBuilder validates form input into trip plan requests.
type RequestBuilder struct {
	location     *time.Location
	maxStopHours int
}

// NewRequestBuilder creates a new RequestBuilder.
func NewRequestBuilder(cfg BuilderConfig) *RequestBuilder {
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.MaxStopHours <= 0 {
		cfg.MaxStopHours = DefaultMaxStopHours
	}
	return &RequestBuilder{
		location:     cfg.Location,
		maxStopHours: cfg.MaxStopHours,
	}
}

// Build validates the form and returns a request. All missing or invalid
// required fields are reported together in a *RequestValidationError.
func (b *RequestBuilder) Build(in FormInput) (*TripPlanRequest, error) {
	verr := &RequestValidationError{}

	req := &TripPlanRequest{
		Origin:      strings.TrimSpace(in.Origin),
		Destination: strings.TrimSpace(in.Destination),
	}
	if req.Origin == "" {
		verr.add(FieldOrigin, "origin is required")
	}
	if req.Destination == "" {
		verr.add(FieldDestination, "destination is required")
	}

	departure := strings.TrimSpace(in.DepartureTime)
	if departure == "" {
		verr.add(FieldDepartureTime, "departure time is required")
	} else if t, ok := b.parseDeparture(departure); ok {
		req.DepartureTime = &t
	} else {
		verr.add(FieldDepartureTime, "departure time must look like 2006-01-02T15:04")
	}

	if len(verr.Fields) > 0 {
		return nil, verr
	}

	req.Waypoints = make([]string, 0, len(in.Waypoints))
	req.StopDurations = make([]int, 0, len(in.Waypoints))
	for i, w := range in.Waypoints {
		w = strings.TrimSpace(w)
		if w == "" {
			continue
		}
		hours := 0
		if i < len(in.StopDurations) {
			hours = b.parseHours(in.StopDurations[i])
		}
		req.Waypoints = append(req.Waypoints, w)
		req.StopDurations = append(req.StopDurations, hours)
	}

	req.AttractionPreferences = normalizePreferences(in.AttractionPreferences)

	return req, nil
}

func (b *RequestBuilder) parseDeparture(s string) (time.Time, bool) {
	for _, layout := range departureLayouts {
		if t, err := time.ParseInLocation(layout, s, b.location); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// parseHours returns a positive whole number of hours, or 0.
func (b *RequestBuilder) parseHours(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return 0
	}
	if n > b.maxStopHours {
		return b.maxStopHours
	}
	return n
}

func normalizePreferences(prefs []string) []string {
	out := make([]string, 0, len(prefs))
	seen := make(map[string]struct{}, len(prefs))
	for _, p := range prefs {
		p = strings.ToLower(strings.TrimSpace(p))
		if p == "" {
			continue
		}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}
