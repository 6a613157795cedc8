package render

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pinemarten/campus-alert-service/internal/domain"
)

func displayIncidents() []domain.DisplayIncident {
	reportTime := time.Date(0, 1, 1, 20, 47, 0, 0, time.UTC)
	return []domain.DisplayIncident{
		{
			IncidentID:  1,
			AlertID:     2,
			Category:    "Robbery",
			Address:     "45th and Brooklyn",
			Date:        time.Date(2023, 3, 9, 0, 0, 0, 0, time.UTC),
			ReportTime:  &reportTime,
			Coordinates: &domain.Coordinates{Lat: 47.6615, Lng: -122.3142},
			Messages:    []string{"UPDATE: clear.", "Robbery reported."},
		},
		{
			IncidentID: 2,
			AlertID:    3,
			Category:   "Burglary",
			Address:    "somewhere unresolvable",
			Date:       time.Date(2023, 3, 9, 0, 0, 0, 0, time.UTC),
			// No coordinates: stays in the log, off the map.
		},
		{
			IncidentID:  3,
			AlertID:     4,
			Category:    "Theft",
			Address:     "NE 50th St",
			Coordinates: &domain.Coordinates{Lat: 47.665, Lng: -122.3},
			Messages:    []string{"Bike stolen."},
		},
	}
}

func TestBuildMarkers_SkipsUnresolvedIncidents(t *testing.T) {
	markers := BuildMarkers(displayIncidents())
	require.Len(t, markers, 2)

	assert.Equal(t, 0, markers[0].Ordinal)
	assert.Equal(t, "Robbery", markers[0].Category)
	assert.Equal(t, "8:47 PM", markers[0].ReportTime)
	assert.Equal(t, "2023-03-09", markers[0].Date)

	assert.Equal(t, 1, markers[1].Ordinal)
	assert.Equal(t, "Theft", markers[1].Category)
	assert.Equal(t, "No report time found", markers[1].ReportTime)
	assert.Empty(t, markers[1].Date, "zero date renders empty")
}

func TestBuildMarkers_Deterministic(t *testing.T) {
	first := BuildMarkers(displayIncidents())
	second := BuildMarkers(displayIncidents())
	assert.Equal(t, first, second)
}

func TestRenderMap_MetaKeyedByOrdinal(t *testing.T) {
	markers := BuildMarkers(displayIncidents())

	html, meta, err := RenderMap(markers)
	require.NoError(t, err)
	require.Len(t, meta, 2)

	assert.Equal(t, "Robbery", meta[0].Category)
	assert.Equal(t, []string{"UPDATE: clear.", "Robbery reported."}, meta[0].Messages)
	assert.Equal(t, "Theft", meta[1].Category)

	page := string(html)
	assert.Contains(t, page, `id="alertmap"`)
	assert.Contains(t, page, "47.6615")
	assert.Contains(t, page, "Robbery")
}

func TestRenderMap_NoMarkers(t *testing.T) {
	html, meta, err := RenderMap(nil)
	require.NoError(t, err)
	assert.Empty(t, meta)
	assert.Contains(t, string(html), `id="alertmap"`, "an empty map still renders")
}
