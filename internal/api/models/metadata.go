package models

import "github.com/breatheroute/roadtrip/internal/trip"

// AttractionTypesResponse lists the preference tags the trip form offers.
type AttractionTypesResponse struct {
	Items []trip.AttractionType `json:"items"`
}
