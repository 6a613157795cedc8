package domain

import (
	"sort"
	"time"
)

// UrgentIncidents selects incidents with activity inside the trailing
// timeFrame window and flattens each into one display row.
//
// A record with a report time qualifies its incident when date+time is
// strictly after now-timeFrame. A record without one can only qualify by
// being dated today. Every record of a qualifying incident is included, even
// those outside the window, so the display row carries the incident's full
// message history newest-first. Single-valued fields come from the newest
// posting.
//
// No qualifying incident is an empty result, not an error. Rows are ordered
// by incident ID so identical input always yields identical output.
func UrgentIncidents(records []IncidentRecord, timeFrame time.Duration) []DisplayIncident {
	now := clock.Now().UTC()
	cutoff := now.Add(-timeFrame)

	urgent := make(map[int]bool)
	for _, rec := range records {
		if dt, ok := rec.ReportDateTime(); ok {
			if dt.After(cutoff) {
				urgent[rec.IncidentID] = true
			}
			continue
		}
		if rec.ReportTime == nil && sameDay(rec.Date, now) {
			urgent[rec.IncidentID] = true
		}
	}
	if len(urgent) == 0 {
		return []DisplayIncident{}
	}

	groups := make(map[int][]IncidentRecord)
	for _, rec := range records {
		if urgent[rec.IncidentID] {
			groups[rec.IncidentID] = append(groups[rec.IncidentID], rec)
		}
	}

	ids := make([]int, 0, len(groups))
	for id := range groups {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	out := make([]DisplayIncident, 0, len(ids))
	for _, id := range ids {
		group := groups[id]
		// Newest posting first.
		sort.SliceStable(group, func(i, j int) bool { return group[i].AlertID > group[j].AlertID })

		newest := group[0]
		messages := make([]string, len(group))
		for i, rec := range group {
			messages[i] = rec.AlertText
		}
		out = append(out, DisplayIncident{
			IncidentID:  id,
			AlertID:     newest.AlertID,
			Category:    newest.Category,
			Address:     newest.Address,
			Date:        newest.Date,
			ReportTime:  newest.ReportTime,
			Coordinates: newest.Coordinates,
			Messages:    messages,
		})
	}
	return out
}

func sameDay(d, now time.Time) bool {
	if d.IsZero() {
		return false
	}
	y1, m1, d1 := d.Date()
	y2, m2, d2 := now.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}
