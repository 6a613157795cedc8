package domain

import "time"

// AlertKind distinguishes the first posting about an incident from follow-ups.
type AlertKind string

const (
	KindOriginal AlertKind = "Original"
	KindUpdate   AlertKind = "Update"
)

// Valid reports whether k is one of the two recognized kinds.
func (k AlertKind) Valid() bool {
	return k == KindOriginal || k == KindUpdate
}

// AlertChunk is the raw text span of exactly one posting. The first line is
// always the date heading that owns the posting. Chunks are transient: the
// chunker produces them and the field extractor consumes them immediately.
type AlertChunk struct {
	Lines []string
	Kind  AlertKind
}

// Body returns the chunk text with the owning date line stripped, blank
// lines removed, and en/em dashes normalized to hyphens.
func (c AlertChunk) Body() string {
	return joinBody(c.Lines[1:])
}

// Text returns the full chunk text, date line included, cleaned the same way
// as Body.
func (c AlertChunk) Text() string {
	return joinBody(c.Lines)
}

// RawRecord holds the still-stringly field values for one posting, as
// returned by the field extractor before normalization.
type RawRecord struct {
	Date         string
	ReportTime   string
	IncidentTime string
	Address      string
	Category     string
	Summary      string

	// AlertText is the posting body verbatim (date line stripped). It is
	// taken from the chunk itself, never from extractor output.
	AlertText string
	Kind      AlertKind
}

// Coordinates is a WGS-84 latitude/longitude pair.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// IncidentRecord is one row of the durable alert log.
//
// AlertID strictly increases with insertion order. All records sharing an
// IncidentID describe the same real-world event, and the group's first
// record in AlertID order is always an Original. Rows are never mutated
// after geocoding except by backfill of missing fields while a fresh batch
// is normalized.
type IncidentRecord struct {
	AlertID    int
	IncidentID int

	// Date is the posting's calendar date at midnight UTC; the zero value
	// means the date is unknown.
	Date time.Time

	// ReportTime and IncidentTime are times of day carried on the zero date;
	// nil means the posting did not state one.
	ReportTime   *time.Time
	IncidentTime *time.Time

	// Address is the free-text location. Empty string means "no address to
	// display" — distinct from a never-extracted field, which backfill may
	// still fill from a sibling posting.
	Address  string
	Category string

	// Summary is the extractor's condensed description of this posting only.
	// AlertText is the posting body verbatim.
	Summary   string
	AlertText string

	Kind AlertKind

	// Geocoding enrichment. Coordinates stays nil when the resolver found
	// nothing; such records are kept in the log but excluded from mapping.
	ResolvedAddress string
	Coordinates     *Coordinates
}

// ReportDateTime combines the record's date and report time. The second
// return is false when either part is missing.
func (r IncidentRecord) ReportDateTime() (time.Time, bool) {
	if r.Date.IsZero() || r.ReportTime == nil {
		return time.Time{}, false
	}
	t := *r.ReportTime
	return time.Date(r.Date.Year(), r.Date.Month(), r.Date.Day(),
		t.Hour(), t.Minute(), t.Second(), 0, time.UTC), true
}

// DisplayIncident is one urgent incident flattened for display: single-valued
// fields come from the incident's newest posting, Messages holds every
// posting's text newest-first. Computed by UrgentIncidents, never persisted.
type DisplayIncident struct {
	IncidentID  int
	AlertID     int
	Category    string
	Address     string
	Date        time.Time
	ReportTime  *time.Time
	Coordinates *Coordinates
	Messages    []string
}
