// Package render produces the interactive leaflet map for urgent incidents.
//
// Markers carry a caller-assigned ordinal directly, and marker metadata is
// returned keyed by that ordinal — the presentation layer never has to scan
// rendered markup for renderer-internal identifiers.
package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"time"

	"github.com/pinemarten/campus-alert-service/internal/domain"
)

// Marker is one mappable incident. Ordinal is the stable per-incident index
// used to key metadata and wire click handlers.
type Marker struct {
	Ordinal     int
	Category    string
	Address     string
	Date        string
	ReportTime  string
	Coordinates domain.Coordinates
	Messages    []string
}

// MarkerMeta is the click-handler payload for one marker, keyed by ordinal
// in the map returned from RenderMap.
type MarkerMeta struct {
	Category   string   `json:"category"`
	ReportTime string   `json:"report_time"`
	Date       string   `json:"date"`
	Messages   []string `json:"messages"`
}

// BuildMarkers converts display incidents into markers. Incidents without
// coordinates are left off the map (they remain in the log). Ordinals are
// assigned in input order, so identical input yields identical markers.
func BuildMarkers(incidents []domain.DisplayIncident) []Marker {
	markers := make([]Marker, 0, len(incidents))
	for _, inc := range incidents {
		if inc.Coordinates == nil {
			continue
		}
		markers = append(markers, Marker{
			Ordinal:     len(markers),
			Category:    inc.Category,
			Address:     inc.Address,
			Date:        formatDate(inc.Date),
			ReportTime:  formatReportTime(inc.ReportTime),
			Coordinates: *inc.Coordinates,
			Messages:    inc.Messages,
		})
	}
	return markers
}

// RenderMap renders the leaflet map markup for the markers and returns the
// per-marker metadata keyed by ordinal.
func RenderMap(markers []Marker) (template.HTML, map[int]MarkerMeta, error) {
	meta := make(map[int]MarkerMeta, len(markers))
	for _, m := range markers {
		meta[m.Ordinal] = MarkerMeta{
			Category:   m.Category,
			ReportTime: m.ReportTime,
			Date:       m.Date,
			Messages:   m.Messages,
		}
	}

	payload, err := json.Marshal(markers2json(markers))
	if err != nil {
		return "", nil, fmt.Errorf("marshal markers: %w", err)
	}

	var buf bytes.Buffer
	if err := mapTemplate.Execute(&buf, template.JS(payload)); err != nil {
		return "", nil, fmt.Errorf("render map: %w", err)
	}
	return template.HTML(buf.String()), meta, nil
}

type markerJSON struct {
	ID       int        `json:"id"`
	Lat      float64    `json:"lat"`
	Lng      float64    `json:"lng"`
	Category string     `json:"category"`
	Address  string     `json:"address"`
	Meta     MarkerMeta `json:"meta"`
}

func markers2json(markers []Marker) []markerJSON {
	out := make([]markerJSON, len(markers))
	for i, m := range markers {
		out[i] = markerJSON{
			ID:       m.Ordinal,
			Lat:      m.Coordinates.Lat,
			Lng:      m.Coordinates.Lng,
			Category: m.Category,
			Address:  m.Address,
			Meta: MarkerMeta{
				Category:   m.Category,
				ReportTime: m.ReportTime,
				Date:       m.Date,
				Messages:   m.Messages,
			},
		}
	}
	return out
}

// formatReportTime renders a time of day in non-military form, e.g.
// "8:47 PM". Missing report times render a placeholder.
func formatReportTime(t *time.Time) string {
	if t == nil {
		return "No report time found"
	}
	return t.Format("3:04 PM")
}

func formatDate(d time.Time) string {
	if d.IsZero() {
		return ""
	}
	return d.Format("2006-01-02")
}

var mapTemplate = template.Must(template.New("map").Parse(`<div id="alertmap"></div>
<script>
  var map = L.map('alertmap').setView([47.66, -122.32], 15);
  L.tileLayer('https://tile.openstreetmap.org/{z}/{x}/{y}.png', {
    maxZoom: 19,
    attribution: '&copy; OpenStreetMap contributors'
  }).addTo(map);

  var markers = {{.}};
  markers.forEach(function (m) {
    var marker = L.marker([m.lat, m.lng], {id: m.id}).addTo(map);
    marker.bindPopup('<center><h4>' + m.category + '</h4><p>' + m.address + '</p></center>');
    marker.on('click', function () {
      var panel = document.getElementById('alertcontainer');
      if (!panel) { return; }
      var html = '<h2>' + m.meta.category + ' - ' + m.meta.date + ' ' + m.meta.report_time + '</h2><br>';
      m.meta.messages.forEach(function (msg, i) {
        if (i > 0) { html += '<hr>'; }
        html += '<p>' + msg + '</p><br>';
      });
      panel.innerHTML = html;
    });
  });
</script>`))
