package domain

import (
	"context"
	"fmt"
)

// EnrichWithGeocoding attaches resolved coordinates to a record. The first
// candidate wins. Zero candidates leave Coordinates nil: the record stays in
// the log but is excluded from mapping. Resolver failures propagate wrapped
// in ErrGeocoding (or ErrUpstreamTimeout, already wrapped by the adapter) so
// the caller can decide whether to retry or keep the record unresolved. No
// retry happens here.
func EnrichWithGeocoding(ctx context.Context, rec IncidentRecord, geocoder Geocoder) (IncidentRecord, error) {
	if geocoder == nil || rec.Address == "" {
		return rec, nil
	}

	candidates, err := geocoder.Geocode(ctx, rec.Address)
	if err != nil {
		return rec, fmt.Errorf("resolve %q: %w", rec.Address, err)
	}
	if len(candidates) == 0 {
		return rec, nil
	}

	first := candidates[0]
	rec.ResolvedAddress = first.FormattedAddress
	loc := first.Location
	rec.Coordinates = &loc
	return rec, nil
}
