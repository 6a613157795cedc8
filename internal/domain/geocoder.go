package domain

import "context"

// GeocodeCandidate is one result from the address resolver.
type GeocodeCandidate struct {
	FormattedAddress string
	Location         Coordinates
}

// Geocoder resolves free-text addresses to coordinates. An empty candidate
// list is a valid "not found" response, not an error.
type Geocoder interface {
	Geocode(ctx context.Context, address string) ([]GeocodeCandidate, error)
}
