package trip

// AttractionType is a preference tag offered by the trip form.
type AttractionType struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// AttractionTypes is the catalogue of preference tags the planning service
// understands. Unknown tags are still forwarded.
var AttractionTypes = []AttractionType{
	{ID: "amusement_park", Label: "Amusement Park"},
	{ID: "aquarium", Label: "Aquarium"},
	{ID: "art_gallery", Label: "Art Gallery"},
	{ID: "beach", Label: "Beach"},
	{ID: "casino", Label: "Casino"},
	{ID: "cultural_landmark", Label: "Cultural Landmark"},
	{ID: "electric_vehicle_charging_station", Label: "Charging Station"},
	{ID: "gas_station", Label: "Gas Station"},
	{ID: "historical_landmark", Label: "Historical Landmark"},
	{ID: "movie_theater", Label: "Movie Theater"},
	{ID: "museum", Label: "Museum"},
	{ID: "night_club", Label: "Night Club"},
	{ID: "park", Label: "Park"},
	{ID: "rest_stop", Label: "Rest Stop"},
	{ID: "stadium", Label: "Stadium"},
	{ID: "theme_park", Label: "Theme Park"},
	{ID: "tourist_attraction", Label: "Tourist Attraction"},
	{ID: "zoo", Label: "Zoo"},
}

// IsKnownAttraction reports whether id is in the catalogue.
func IsKnownAttraction(id string) bool {
	for _, a := range AttractionTypes {
		if a.ID == id {
			return true
		}
	}
	return false
}
