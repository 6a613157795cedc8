// Command backfill rebuilds the alert log from a historical text corpus of
// blog postings. Chunks that fail extraction are skipped so one bad posting
// never sinks the run.
package main

import (
	"bufio"
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	openai "github.com/sashabaranov/go-openai"
	"googlemaps.github.io/maps"

	"github.com/pinemarten/campus-alert-service/internal/adapter/googlemaps"
	"github.com/pinemarten/campus-alert-service/internal/config"
	"github.com/pinemarten/campus-alert-service/internal/domain"
	"github.com/pinemarten/campus-alert-service/internal/extract"
	"github.com/pinemarten/campus-alert-service/internal/logstore"
	"github.com/pinemarten/campus-alert-service/internal/observability"
	"github.com/pinemarten/campus-alert-service/internal/pipeline"
)

func main() {
	input := flag.String("input", "", "path to the historical alerts .txt file")
	fileStart := flag.Int("file-start", 0, "line offset to resume parsing from")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)

	if *input == "" {
		logger.Error("-input is required")
		os.Exit(1)
	}
	if *fileStart < 0 {
		logger.Error("-file-start must be 0 or greater")
		os.Exit(1)
	}
	if cfg.OpenAIKey == "" {
		logger.Error("OPENAI_API_KEY is required")
		os.Exit(1)
	}

	lines, err := readLines(*input)
	if err != nil {
		logger.Error("failed to read input", "path", *input, "error", err)
		os.Exit(1)
	}
	if *fileStart >= len(lines) {
		logger.Error("-file-start is past the end of the input", "lines", len(lines))
		os.Exit(1)
	}

	metrics := observability.NewMetrics()
	extractor := extract.NewFieldExtractor(
		extract.NewOpenAIExtractor(openai.NewClient(cfg.OpenAIKey), cfg.OpenAIModel),
		cfg.ExtractTimeout,
		logger,
	)

	var geocoder domain.Geocoder
	if cfg.MapsAPIKey != "" {
		mc, err := maps.NewClient(maps.WithAPIKey(cfg.MapsAPIKey))
		if err != nil {
			logger.Error("failed to create maps client", "error", err)
			os.Exit(1)
		}
		client := googlemaps.NewClient(mc, cfg.GeocodeLocality, cfg.GeocodeTimeout, logger)
		geocoder = googlemaps.NewCachedGeocoder(client, cfg.GeocodeCacheSize)
	}

	store := logstore.New(cfg.AlertLogPath, logger)
	p := pipeline.New(extractor, geocoder, store, nil, logger, metrics)

	count, err := p.IngestHistorical(context.Background(), lines[*fileStart:])
	if err != nil {
		logger.Error("backfill failed", "error", err)
		os.Exit(1)
	}
	logger.Info("backfill complete", "records", count, "log", cfg.AlertLogPath)
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	return lines, scanner.Err()
}
