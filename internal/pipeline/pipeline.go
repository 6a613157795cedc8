// Package pipeline orchestrates alert ingestion: chunk, extract, assign
// identity, normalize, geocode, persist, publish.
//
// Each stage runs to completion before the next; there is no concurrency
// inside an ingest. The whole read-log → compute-rows → rewrite-log sequence
// runs under the store's writer lock, because the log is rewritten in full
// and a live ingest must not interleave with a batch backfill.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/pinemarten/campus-alert-service/internal/domain"
	"github.com/pinemarten/campus-alert-service/internal/extract"
	"github.com/pinemarten/campus-alert-service/internal/logstore"
	"github.com/pinemarten/campus-alert-service/internal/observability"
)

// Publisher forwards newly ingested records to the alert feed.
type Publisher interface {
	PublishRecords(ctx context.Context, records []domain.IncidentRecord) error
}

// Pipeline wires the ingestion stages together.
type Pipeline struct {
	extractor *extract.FieldExtractor
	geocoder  domain.Geocoder
	store     *logstore.Store
	publisher Publisher // nil disables the feed
	logger    *slog.Logger
	metrics   *observability.Metrics
	ready     atomic.Bool
}

// New creates a Pipeline. geocoder and publisher may be nil to disable
// enrichment and the feed respectively.
func New(extractor *extract.FieldExtractor, geocoder domain.Geocoder, store *logstore.Store,
	publisher Publisher, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		extractor: extractor,
		geocoder:  geocoder,
		store:     store,
		publisher: publisher,
		logger:    logger,
		metrics:   metrics,
	}
}

// CheckReadiness returns nil once the pipeline has served the log at least
// once, or an error describing why the service is not yet ready.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("alert log has not been read yet")
	}
	return nil
}

// UrgentIncidents reads the log and computes the display rows for incidents
// active within the trailing window.
func (p *Pipeline) UrgentIncidents(windowHours int) ([]domain.DisplayIncident, error) {
	records, err := p.store.Read()
	if err != nil {
		return nil, err
	}
	p.ready.Store(true)
	return domain.UrgentIncidents(records, time.Duration(windowHours)*time.Hour), nil
}

// LatestAlertText returns the posting text of the newest record, for the
// scraper's has-anything-changed check. ok is false when the log is empty.
func (p *Pipeline) LatestAlertText() (text string, ok bool, err error) {
	records, err := p.store.Read()
	if err != nil {
		return "", false, err
	}
	var newest domain.IncidentRecord
	for _, rec := range records {
		if rec.AlertID > newest.AlertID {
			newest = rec
		}
	}
	if newest.AlertID == 0 {
		return "", false, nil
	}
	return newest.AlertText, true, nil
}

// IngestMessage processes one live alert message (pasted or scraped). Any
// extraction failure aborts the whole ingest and nothing is written.
func (p *Pipeline) IngestMessage(ctx context.Context, text string) ([]domain.IncidentRecord, error) {
	chunks, err := domain.ChunkAlerts(splitLines(text))
	if err != nil {
		return nil, err
	}
	return p.ingest(ctx, chunks, false)
}

// IngestHistorical rebuilds the log forward from a historical text corpus.
// Chunks whose extraction fails schema cleanup are skipped with a warning
// and the batch continues; the log is only rewritten once, after the whole
// batch has been normalized and geocoded.
func (p *Pipeline) IngestHistorical(ctx context.Context, lines []string) (int, error) {
	chunks, err := domain.ChunkAlerts(lines)
	if err != nil {
		return 0, err
	}
	added, err := p.ingest(ctx, chunks, true)
	if err != nil {
		return 0, err
	}
	return len(added), nil
}

// ingest runs the extract → identify → normalize → geocode stages for a set
// of chunks under the store's writer lock, then publishes the new records.
func (p *Pipeline) ingest(ctx context.Context, chunks []domain.AlertChunk, skipFailedChunks bool) ([]domain.IncidentRecord, error) {
	start := time.Now()
	var added []domain.IncidentRecord

	err := p.store.Update(func(log []domain.IncidentRecord) ([]domain.IncidentRecord, error) {
		maxExisting := 0
		for _, rec := range log {
			if rec.AlertID > maxExisting {
				maxExisting = rec.AlertID
			}
		}

		appended := 0
		for _, chunk := range chunks {
			raw, err := p.extractor.Extract(ctx, chunk)
			if err != nil {
				p.metrics.ExtractionErrors.Inc()
				if skipFailedChunks && errors.Is(err, domain.ErrExtractionSchema) {
					p.logger.Warn("skipping chunk after extraction failure", "error", err)
					continue
				}
				return nil, err
			}

			alertID, incidentID, err := domain.AssignIdentity(log, raw.Kind)
			if err != nil {
				return nil, err
			}
			log = append(log, domain.NormalizeRecord(raw, alertID, incidentID))
			appended++
		}

		sizeBefore := len(log)
		log = domain.Backfill(log, p.logger)
		if dropped := sizeBefore - len(log); dropped > 0 {
			p.metrics.RecordsDropped.Add(float64(dropped))
		}

		for i := range log {
			if log[i].AlertID <= maxExisting {
				continue
			}
			rec, err := domain.EnrichWithGeocoding(ctx, log[i], p.geocoder)
			if err != nil {
				p.metrics.GeocodeRequests.WithLabelValues("error").Inc()
				p.logger.Warn("geocoding failed, keeping record without coordinates",
					"alert_id", log[i].AlertID, "address", log[i].Address, "error", err)
			} else if rec.Coordinates == nil && p.geocoder != nil {
				p.metrics.GeocodeRequests.WithLabelValues("empty").Inc()
			} else if p.geocoder != nil {
				p.metrics.GeocodeRequests.WithLabelValues("resolved").Inc()
			}
			log[i] = rec
			added = append(added, rec)
		}

		if appended == 0 {
			return nil, fmt.Errorf("no chunk in batch could be extracted: %w", domain.ErrExtractionSchema)
		}
		return log, nil
	})
	if err != nil {
		return nil, err
	}

	p.metrics.AlertsIngested.Add(float64(len(added)))
	p.metrics.IngestDuration.Observe(time.Since(start).Seconds())
	p.ready.Store(true)

	if p.publisher != nil && len(added) > 0 {
		if err := p.publisher.PublishRecords(ctx, added); err != nil {
			p.metrics.PublishErrors.Inc()
			p.logger.Warn("publishing ingested records failed", "error", err, "count", len(added))
		}
	}
	return added, nil
}

func splitLines(text string) []string {
	return strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
}
