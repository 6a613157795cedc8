package domain

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubGeocoder struct {
	candidates []GeocodeCandidate
	err        error
	calls      int
	lastQuery  string
}

func (s *stubGeocoder) Geocode(_ context.Context, address string) ([]GeocodeCandidate, error) {
	s.calls++
	s.lastQuery = address
	return s.candidates, s.err
}

func TestEnrichWithGeocoding_FirstCandidateWins(t *testing.T) {
	geocoder := &stubGeocoder{candidates: []GeocodeCandidate{
		{FormattedAddress: "4500 Brooklyn Ave NE, Seattle, WA", Location: Coordinates{Lat: 47.66, Lng: -122.31}},
		{FormattedAddress: "somewhere else", Location: Coordinates{Lat: 1, Lng: 2}},
	}}

	rec, err := EnrichWithGeocoding(context.Background(), IncidentRecord{Address: "45th and Brooklyn"}, geocoder)
	require.NoError(t, err)

	assert.Equal(t, "4500 Brooklyn Ave NE, Seattle, WA", rec.ResolvedAddress)
	require.NotNil(t, rec.Coordinates)
	assert.Equal(t, Coordinates{Lat: 47.66, Lng: -122.31}, *rec.Coordinates)
	assert.Equal(t, "45th and Brooklyn", geocoder.lastQuery)
}

func TestEnrichWithGeocoding_NoCandidates(t *testing.T) {
	rec, err := EnrichWithGeocoding(context.Background(), IncidentRecord{Address: "nowhere in particular"}, &stubGeocoder{})
	require.NoError(t, err)
	assert.Nil(t, rec.Coordinates)
	assert.Empty(t, rec.ResolvedAddress)
}

func TestEnrichWithGeocoding_ResolverError(t *testing.T) {
	geocoder := &stubGeocoder{err: ErrGeocoding}

	rec, err := EnrichWithGeocoding(context.Background(), IncidentRecord{Address: "45th and Brooklyn"}, geocoder)
	assert.ErrorIs(t, err, ErrGeocoding)
	assert.Nil(t, rec.Coordinates)
}

func TestEnrichWithGeocoding_NilGeocoderPassthrough(t *testing.T) {
	in := IncidentRecord{AlertID: 1, Address: "45th and Brooklyn"}
	out, err := EnrichWithGeocoding(context.Background(), in, nil)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestEnrichWithGeocoding_EmptyAddressSkipsResolver(t *testing.T) {
	geocoder := &stubGeocoder{}
	rec, err := EnrichWithGeocoding(context.Background(), IncidentRecord{AlertID: 1}, geocoder)
	require.NoError(t, err)
	assert.Nil(t, rec.Coordinates)
	assert.Zero(t, geocoder.calls)
}
