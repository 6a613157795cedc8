// Package googlemaps adapts the Google Maps Geocoding API to the domain
// Geocoder interface.
package googlemaps

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"googlemaps.github.io/maps"

	"github.com/pinemarten/campus-alert-service/internal/domain"
)

// Client implements domain.Geocoder using the Google Maps Geocoding API.
// Queries are suffixed with a fixed locality so bare street addresses
// resolve inside the campus area.
type Client struct {
	mc       *maps.Client
	locality string
	timeout  time.Duration
	logger   *slog.Logger
}

// NewClient wraps an injected maps client. The locality suffix is appended
// to every query, e.g. ", University District, Seattle WA".
func NewClient(mc *maps.Client, locality string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{mc: mc, locality: locality, timeout: timeout, logger: logger}
}

// Geocode resolves an address to candidate coordinates. An empty candidate
// list is a valid not-found response. Transport failures wrap ErrGeocoding;
// deadline hits wrap ErrUpstreamTimeout. No retries happen here — the
// caller owns that decision.
func (c *Client) Geocode(ctx context.Context, address string) ([]domain.GeocodeCandidate, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	results, err := c.mc.Geocode(ctx, &maps.GeocodingRequest{
		Address: address + c.locality,
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("geocode %q: %w", address, domain.ErrUpstreamTimeout)
		}
		return nil, fmt.Errorf("geocode %q: %v: %w", address, err, domain.ErrGeocoding)
	}

	candidates := make([]domain.GeocodeCandidate, 0, len(results))
	for _, r := range results {
		candidates = append(candidates, domain.GeocodeCandidate{
			FormattedAddress: r.FormattedAddress,
			Location: domain.Coordinates{
				Lat: r.Geometry.Location.Lat,
				Lng: r.Geometry.Location.Lng,
			},
		})
	}
	return candidates, nil
}
