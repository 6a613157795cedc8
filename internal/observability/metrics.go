package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters and histograms for the ingestion
// pipeline and its collaborators.
type Metrics struct {
	AlertsIngested   prometheus.Counter
	ExtractionErrors prometheus.Counter
	RecordsDropped   prometheus.Counter

	IngestDuration prometheus.Histogram

	// Geocoding metrics.
	GeocodeRequests *prometheus.CounterVec // labels: outcome={resolved,empty,error}

	// Scraper and publisher metrics.
	ScrapePolls   *prometheus.CounterVec // labels: outcome={new_alert,unchanged,error}
	PublishErrors prometheus.Counter
}

// NewMetrics creates and registers all service metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.AlertsIngested,
		m.ExtractionErrors,
		m.RecordsDropped,
		m.IngestDuration,
		m.GeocodeRequests,
		m.ScrapePolls,
		m.PublishErrors,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		AlertsIngested: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "campus_alerts",
			Name:      "alerts_ingested_total",
			Help:      "Total alert postings written to the durable log.",
		}),
		ExtractionErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "campus_alerts",
			Name:      "extraction_errors_total",
			Help:      "Total chunks whose extractor output failed schema cleanup.",
		}),
		RecordsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "campus_alerts",
			Name:      "records_dropped_total",
			Help:      "Total records dropped because no date could be parsed.",
		}),
		IngestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "campus_alerts",
			Name:      "ingest_duration_seconds",
			Help:      "Duration of a complete ingest (chunk, extract, geocode, write).",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
		GeocodeRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "campus_alerts",
			Name:      "geocode_requests_total",
			Help:      "Address resolver requests by outcome.",
		}, []string{"outcome"}),
		ScrapePolls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "campus_alerts",
			Name:      "scrape_polls_total",
			Help:      "Alert page polls by outcome.",
		}, []string{"outcome"}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "campus_alerts",
			Name:      "publish_errors_total",
			Help:      "Total failures publishing ingested records to the feed topic.",
		}),
	}
}
