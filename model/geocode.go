package model

// GeocodeResult is the first match for a free text place name. A nil
// *GeocodeResult means the lookup found nothing or the upstream service
// failed; "not found" is represented by absence, never by an error.
type GeocodeResult struct {
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
	DisplayName string  `json:"display_name"`
	PlaceID     int64   `json:"place_id"`
}

// ReverseGeocodeResult maps coordinates back to a display address.
type ReverseGeocodeResult struct {
	DisplayName string            `json:"display_name"`
	Address     map[string]string `json:"address"`
}

// LocatedPlace pairs an extracted location name with its geocoded
// coordinates (null when geocoding found nothing).
type LocatedPlace struct {
	LocationName string         `json:"location_name"`
	Coordinates  *GeocodeResult `json:"coordinates"`
}
