package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	openai "github.com/sashabaranov/go-openai"
	"googlemaps.github.io/maps"

	"github.com/pinemarten/campus-alert-service/internal/adapter/googlemaps"
	kafkaadapter "github.com/pinemarten/campus-alert-service/internal/adapter/kafka"
	"github.com/pinemarten/campus-alert-service/internal/config"
	"github.com/pinemarten/campus-alert-service/internal/domain"
	"github.com/pinemarten/campus-alert-service/internal/extract"
	"github.com/pinemarten/campus-alert-service/internal/logstore"
	"github.com/pinemarten/campus-alert-service/internal/observability"
	"github.com/pinemarten/campus-alert-service/internal/pipeline"
	"github.com/pinemarten/campus-alert-service/internal/scraper"
	"github.com/pinemarten/campus-alert-service/internal/webserver"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if cfg.OpenAIKey == "" {
		slog.Error("OPENAI_API_KEY is required for live ingestion")
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	extractor := extract.NewFieldExtractor(
		extract.NewOpenAIExtractor(openai.NewClient(cfg.OpenAIKey), cfg.OpenAIModel),
		cfg.ExtractTimeout,
		logger,
	)

	// Geocoding is feature-flagged on the API key being present.
	var geocoder domain.Geocoder
	if cfg.MapsAPIKey != "" {
		mc, err := maps.NewClient(maps.WithAPIKey(cfg.MapsAPIKey))
		if err != nil {
			logger.Error("failed to create maps client", "error", err)
			os.Exit(1)
		}
		client := googlemaps.NewClient(mc, cfg.GeocodeLocality, cfg.GeocodeTimeout, logger)
		geocoder = googlemaps.NewCachedGeocoder(client, cfg.GeocodeCacheSize)
		logger.Info("geocoding enabled", "cache_size", cfg.GeocodeCacheSize, "timeout", cfg.GeocodeTimeout)
	} else {
		logger.Info("geocoding disabled")
	}

	var publisher pipeline.Publisher
	var kafkaPublisher *kafkaadapter.Publisher
	if cfg.KafkaEnabled {
		kafkaPublisher = kafkaadapter.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, logger)
		publisher = kafkaPublisher
		logger.Info("alert feed enabled", "topic", cfg.KafkaTopic)
	}

	store := logstore.New(cfg.AlertLogPath, logger)
	p := pipeline.New(extractor, geocoder, store, publisher, logger, metrics)

	srv := webserver.NewServer(cfg.HTTPAddr, p, cfg.UrgentWindowHours, cfg.PastWindowHours, logger)
	scr := scraper.New(cfg.AlertsURL, nil, p, logger, metrics)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Poll the alerts page on a schedule.
	sched := cron.New()
	if _, err := sched.AddFunc(cfg.ScrapeSchedule, func() {
		if err := scr.Poll(ctx); err != nil {
			logger.Warn("alert page poll failed", "error", err)
		}
	}); err != nil {
		logger.Error("invalid scrape schedule", "schedule", cfg.ScrapeSchedule, "error", err)
		os.Exit(1)
	}
	sched.Start()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	<-sched.Stop().Done()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if kafkaPublisher != nil {
		if err := kafkaPublisher.Close(); err != nil {
			logger.Error("kafka publisher close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
