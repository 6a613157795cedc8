package domain

import "fmt"

// AssignIdentity computes the alert and incident IDs for a fresh posting
// given the current log.
//
// The alert ID is always one past the highest existing ID. An Update
// continues the incident of the most recent posting (highest alert ID); an
// Original opens a new incident one past the highest existing incident ID.
// The same rule serves both live ingestion and historical batch rebuilds:
// the posting's own explicit kind is the one trustworthy continuation
// signal. An empty log yields (1, 1) regardless of kind.
func AssignIdentity(log []IncidentRecord, kind AlertKind) (alertID, incidentID int, err error) {
	if !kind.Valid() {
		return 0, 0, fmt.Errorf("alert kind %q: %w", kind, ErrIdentity)
	}
	if len(log) == 0 {
		return 1, 1, nil
	}

	var newest IncidentRecord
	maxIncident := 0
	for _, rec := range log {
		if rec.AlertID > newest.AlertID {
			newest = rec
		}
		if rec.IncidentID > maxIncident {
			maxIncident = rec.IncidentID
		}
	}
	if newest.AlertID <= 0 || maxIncident <= 0 {
		return 0, 0, fmt.Errorf("log has rows without assigned ids: %w", ErrIdentity)
	}

	alertID = newest.AlertID + 1
	if kind == KindUpdate {
		return alertID, newest.IncidentID, nil
	}
	return alertID, maxIncident + 1, nil
}
