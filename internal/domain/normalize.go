package domain

import (
	"log/slog"
	"sort"
	"strings"
	"time"
)

var dateLayouts = []string{
	"01/02/2006",
	"1/2/2006",
	"January 2, 2006",
	"2006-01-02",
}

var timeLayouts = []string{
	"3:04 PM",
	"3:04PM",
	"15:04:05",
	"15:04",
}

// ParseDate coerces extractor date text into a calendar date at midnight
// UTC. Returns the zero time when no layout matches.
func ParseDate(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" || s == "-" {
		return time.Time{}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		}
	}
	return time.Time{}
}

// ParseTimeOfDay coerces extractor time text into a time of day on the zero
// date. AM/PM markers are uppercased and periods stripped before parsing
// ("8:47 p.m." → "8:47 PM"), and the literal token "unknown" is discarded.
// Unparseable values yield nil rather than an error.
func ParseTimeOfDay(s string) *time.Time {
	s = strings.ToUpper(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, ".", "")
	s = strings.TrimSpace(strings.ReplaceAll(s, "UNKNOWN", ""))
	if s == "" || s == "-" {
		return nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			tod := time.Date(0, 1, 1, t.Hour(), t.Minute(), t.Second(), 0, time.UTC)
			return &tod
		}
	}
	return nil
}

// NormalizeRecord converts a raw extracted posting into a typed log record
// under the given identity. Placeholder dashes become empty strings so the
// map layer can treat "" uniformly as "nothing to display".
func NormalizeRecord(raw RawRecord, alertID, incidentID int) IncidentRecord {
	return IncidentRecord{
		AlertID:      alertID,
		IncidentID:   incidentID,
		Date:         ParseDate(raw.Date),
		ReportTime:   ParseTimeOfDay(raw.ReportTime),
		IncidentTime: ParseTimeOfDay(raw.IncidentTime),
		Address:      cleanCell(raw.Address),
		Category:     cleanCell(raw.Category),
		Summary:      cleanCell(raw.Summary),
		AlertText:    strings.TrimSpace(raw.AlertText),
		Kind:         raw.Kind,
	}
}

// Backfill fills missing dates, times, and addresses within each incident
// group by propagating the nearest known sibling value: an Update that omits
// the address inherits the Original's, and an Original missing its date can
// take it from a later Update. Records whose date is still unknown after
// backfill cannot be placed in time and are dropped with a warning.
//
// The result is sorted by alert ID ascending. Running Backfill on already
// backfilled records changes nothing.
func Backfill(records []IncidentRecord, logger *slog.Logger) []IncidentRecord {
	out := make([]IncidentRecord, len(records))
	copy(out, records)
	sort.SliceStable(out, func(i, j int) bool { return out[i].AlertID < out[j].AlertID })

	groups := make(map[int][]int)
	order := make([]int, 0)
	for i, rec := range out {
		if _, seen := groups[rec.IncidentID]; !seen {
			order = append(order, rec.IncidentID)
		}
		groups[rec.IncidentID] = append(groups[rec.IncidentID], i)
	}

	for _, id := range order {
		fillGroup(out, groups[id])
	}

	kept := out[:0]
	for _, rec := range out {
		if rec.Date.IsZero() {
			logger.Warn("dropping record with unparseable date",
				"alert_id", rec.AlertID,
				"incident_id", rec.IncidentID,
				"category", rec.Category,
			)
			continue
		}
		kept = append(kept, rec)
	}
	return kept
}

// fillGroup propagates known field values across one incident's records,
// preferring the nearest earlier posting, then the nearest later one.
func fillGroup(records []IncidentRecord, idxs []int) {
	passes := [][]int{idxs, reversed(idxs)}
	for _, pass := range passes {
		var (
			date    time.Time
			report  *time.Time
			incTime *time.Time
			address string
		)
		for _, i := range pass {
			rec := &records[i]
			if rec.Date.IsZero() {
				rec.Date = date
			} else {
				date = rec.Date
			}
			if rec.ReportTime == nil {
				rec.ReportTime = report
			} else {
				report = rec.ReportTime
			}
			if rec.IncidentTime == nil {
				rec.IncidentTime = incTime
			} else {
				incTime = rec.IncidentTime
			}
			if rec.Address == "" {
				rec.Address = address
			} else {
				address = rec.Address
			}
		}
	}
}

func reversed(idxs []int) []int {
	out := make([]int, len(idxs))
	for i, v := range idxs {
		out[len(idxs)-1-i] = v
	}
	return out
}

func cleanCell(s string) string {
	s = strings.TrimSpace(s)
	if s == "-" {
		return ""
	}
	return s
}
