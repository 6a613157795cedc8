// Package logstore persists the durable alert log as a CSV file.
//
// The log is rewritten in full rather than appended in place, so writers
// serialize the whole read-modify-rewrite sequence behind one mutex and the
// rewrite goes through a temp file plus rename. Readers never observe a torn
// file.
package logstore

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/pinemarten/campus-alert-service/internal/domain"
)

// columns is the fixed durable log schema, in order.
var columns = []string{
	"Date",
	"Report Time",
	"Incident Time",
	"Nearest Address to Incident",
	"Incident Category",
	"Incident Summary",
	"Incident Alert",
	"Alert Type",
	"Incident ID",
	"Alert ID",
	"Google Address",
	"geometry",
}

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04:05"
)

// geometry is the serialized shape of the coordinates cell.
type geometry struct {
	Location domain.Coordinates `json:"location"`
}

// Store reads and rewrites the CSV alert log under single-writer discipline.
type Store struct {
	path   string
	mu     sync.Mutex
	logger *slog.Logger
}

// New creates a store for the log at path. The file is created on first write.
func New(path string, logger *slog.Logger) *Store {
	return &Store{path: path, logger: logger}
}

// Read returns every record in the log, oldest alert first. A missing file
// is an empty log, not an error.
func (s *Store) Read() ([]domain.IncidentRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readLocked()
}

// Update runs fn on the current log contents and persists whatever it
// returns, all under the writer lock. If fn errors, nothing is written.
func (s *Store) Update(fn func([]domain.IncidentRecord) ([]domain.IncidentRecord, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.readLocked()
	if err != nil {
		return err
	}
	updated, err := fn(records)
	if err != nil {
		return err
	}
	return s.writeLocked(updated)
}

func (s *Store) readLocked() ([]domain.IncidentRecord, error) {
	f, err := os.Open(s.path)
	if os.IsNotExist(err) {
		return []domain.IncidentRecord{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open alert log: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = len(columns)

	header, err := r.Read()
	if err == io.EOF {
		return []domain.IncidentRecord{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read alert log header: %v: %w", err, domain.ErrSchema)
	}
	for i, name := range columns {
		if header[i] != name {
			return nil, fmt.Errorf("alert log column %d is %q, want %q: %w", i, header[i], name, domain.ErrSchema)
		}
	}

	var records []domain.IncidentRecord
	for line := 2; ; line++ {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read alert log row %d: %v: %w", line, err, domain.ErrSchema)
		}
		rec, err := parseRow(row)
		if err != nil {
			return nil, fmt.Errorf("alert log row %d: %v: %w", line, err, domain.ErrSchema)
		}
		records = append(records, rec)
	}
	if records == nil {
		records = []domain.IncidentRecord{}
	}
	return records, nil
}

func (s *Store) writeLocked(records []domain.IncidentRecord) error {
	sorted := make([]domain.IncidentRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].AlertID < sorted[j].AlertID })

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".alerts-*.csv")
	if err != nil {
		return fmt.Errorf("create temp log: %w", err)
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	if err := w.Write(columns); err != nil {
		tmp.Close()
		return fmt.Errorf("write alert log header: %w", err)
	}
	for _, rec := range sorted {
		row, err := formatRow(rec)
		if err != nil {
			tmp.Close()
			return err
		}
		if err := w.Write(row); err != nil {
			tmp.Close()
			return fmt.Errorf("write alert log row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		return fmt.Errorf("flush alert log: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp log: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace alert log: %w", err)
	}
	return nil
}

func parseRow(row []string) (domain.IncidentRecord, error) {
	incidentID, err := strconv.Atoi(row[8])
	if err != nil {
		return domain.IncidentRecord{}, fmt.Errorf("incident id %q: %v", row[8], err)
	}
	alertID, err := strconv.Atoi(row[9])
	if err != nil {
		return domain.IncidentRecord{}, fmt.Errorf("alert id %q: %v", row[9], err)
	}

	rec := domain.IncidentRecord{
		Address:         row[3],
		Category:        row[4],
		Summary:         row[5],
		AlertText:       row[6],
		Kind:            domain.AlertKind(row[7]),
		IncidentID:      incidentID,
		AlertID:         alertID,
		ResolvedAddress: row[10],
	}
	if !rec.Kind.Valid() {
		return domain.IncidentRecord{}, fmt.Errorf("alert type %q", row[7])
	}

	if row[0] != "" {
		d, err := time.Parse(dateLayout, row[0])
		if err != nil {
			return domain.IncidentRecord{}, fmt.Errorf("date %q: %v", row[0], err)
		}
		rec.Date = d
	}
	if rec.ReportTime, err = parseTimeCell(row[1]); err != nil {
		return domain.IncidentRecord{}, err
	}
	if rec.IncidentTime, err = parseTimeCell(row[2]); err != nil {
		return domain.IncidentRecord{}, err
	}

	if row[11] != "" {
		var g geometry
		if err := json.Unmarshal([]byte(row[11]), &g); err != nil {
			return domain.IncidentRecord{}, fmt.Errorf("geometry %q: %v", row[11], err)
		}
		rec.Coordinates = &g.Location
	}
	return rec, nil
}

func formatRow(rec domain.IncidentRecord) ([]string, error) {
	var date string
	if !rec.Date.IsZero() {
		date = rec.Date.Format(dateLayout)
	}
	var geom string
	if rec.Coordinates != nil {
		data, err := json.Marshal(geometry{Location: *rec.Coordinates})
		if err != nil {
			return nil, fmt.Errorf("marshal geometry: %w", err)
		}
		geom = string(data)
	}
	return []string{
		date,
		formatTimeCell(rec.ReportTime),
		formatTimeCell(rec.IncidentTime),
		rec.Address,
		rec.Category,
		rec.Summary,
		rec.AlertText,
		string(rec.Kind),
		strconv.Itoa(rec.IncidentID),
		strconv.Itoa(rec.AlertID),
		rec.ResolvedAddress,
		geom,
	}, nil
}

func parseTimeCell(cell string) (*time.Time, error) {
	if cell == "" {
		return nil, nil
	}
	t, err := time.Parse(timeLayout, cell)
	if err != nil {
		return nil, fmt.Errorf("time %q: %v", cell, err)
	}
	tod := time.Date(0, 1, 1, t.Hour(), t.Minute(), t.Second(), 0, time.UTC)
	return &tod, nil
}

func formatTimeCell(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(timeLayout)
}
