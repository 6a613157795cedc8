// Package scraper polls the campus emergency page and feeds new postings
// into the ingestion pipeline.
package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/pinemarten/campus-alert-service/internal/domain"
	"github.com/pinemarten/campus-alert-service/internal/observability"
)

// Ingestor is the slice of the pipeline the scraper needs.
type Ingestor interface {
	IngestMessage(ctx context.Context, text string) ([]domain.IncidentRecord, error)
	LatestAlertText() (text string, ok bool, err error)
}

// Scraper fetches the alerts page and ingests the newest date block when it
// contains postings not yet in the log.
type Scraper struct {
	url     string
	client  *http.Client
	svc     Ingestor
	logger  *slog.Logger
	metrics *observability.Metrics
}

// New creates a Scraper. client may be nil to use http.DefaultClient.
func New(url string, client *http.Client, svc Ingestor, logger *slog.Logger, metrics *observability.Metrics) *Scraper {
	if client == nil {
		client = http.DefaultClient
	}
	return &Scraper{url: url, client: client, svc: svc, logger: logger, metrics: metrics}
}

// Poll fetches the page once. Network and parse failures are returned so the
// cron wrapper can log them; the next tick retries naturally.
func (s *Scraper) Poll(ctx context.Context) error {
	block, err := s.fetchNewestBlock(ctx)
	if err != nil {
		s.metrics.ScrapePolls.WithLabelValues("error").Inc()
		return err
	}
	if block == "" {
		s.metrics.ScrapePolls.WithLabelValues("unchanged").Inc()
		return nil
	}

	latest, ok, err := s.svc.LatestAlertText()
	if err != nil {
		s.metrics.ScrapePolls.WithLabelValues("error").Inc()
		return err
	}
	// Stored alert text has en/em dashes normalized; the raw page does not.
	if ok && latest != "" && strings.Contains(domain.NormalizeDashes(block), latest) {
		s.metrics.ScrapePolls.WithLabelValues("unchanged").Inc()
		return nil
	}

	records, err := s.svc.IngestMessage(ctx, block)
	if err != nil {
		s.metrics.ScrapePolls.WithLabelValues("error").Inc()
		return fmt.Errorf("ingest scraped alert: %w", err)
	}
	s.metrics.ScrapePolls.WithLabelValues("new_alert").Inc()
	s.logger.Info("ingested scraped alert", "records", len(records))
	return nil
}

// fetchNewestBlock returns the text of the newest date block on the page:
// every paragraph under #main_content up to (not including) the second date
// heading. Empty string means no date heading was found.
func (s *Scraper) fetchNewestBlock(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch alerts page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("alerts page returned status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("parse alerts page: %w", err)
	}

	var (
		lines     []string
		headings  int
		seenFirst bool
	)
	doc.Find("#main_content p").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		text := strings.TrimSpace(sel.Text())
		if domain.IsDateHeading(text) {
			headings++
			if headings > 1 {
				return false
			}
			seenFirst = true
		}
		if seenFirst {
			lines = append(lines, text)
		}
		return true
	})
	if headings == 0 {
		return "", nil
	}
	return strings.Join(lines, "\n"), nil
}
