package planner

import (
	"encoding/json"
	"strings"
)

// departureLayout is the planning service's departure_time format.
const departureLayout = "2006-01-02 15:04"

// planRequest is the JSON body of POST /api/plan_trip.
type planRequest struct {
	Origin                string   `json:"origin"`
	Destination           string   `json:"destination"`
	Waypoints             []string `json:"waypoints"`
	DepartureTime         *string  `json:"departure_time"`
	StopDurations         []int    `json:"stop_durations"`
	AttractionPreferences []string `json:"attraction_preferences"`
}

// errorEnvelope captures the "error" member the service sends on failure.
// It may be a string or an object carrying "message" or "detail".
type errorEnvelope struct {
	Error  json.RawMessage `json:"error"`
	Detail json.RawMessage `json:"detail"`
}

// message returns the best human-readable message in the envelope.
func (e errorEnvelope) message() string {
	for _, raw := range []json.RawMessage{e.Error, e.Detail} {
		if msg := rawMessage(raw); msg != "" {
			return msg
		}
	}
	return ""
}

func rawMessage(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var obj struct {
		Message string `json:"message"`
		Detail  string `json:"detail"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		if obj.Message != "" {
			return strings.TrimSpace(obj.Message)
		}
		return strings.TrimSpace(obj.Detail)
	}
	return ""
}

// parseErrorMessage extracts the service's error message from a body.
func parseErrorMessage(body []byte) string {
	var env errorEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return ""
	}
	return env.message()
}
