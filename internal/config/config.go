package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Durable log.
	AlertLogPath string

	// Urgency windows, in hours.
	UrgentWindowHours int
	PastWindowHours   int

	// OpenAI field extraction.
	OpenAIKey      string
	OpenAIModel    string
	ExtractTimeout time.Duration

	// Google Maps geocoding.
	MapsAPIKey       string
	GeocodeLocality  string
	GeocodeTimeout   time.Duration
	GeocodeCacheSize int

	// Alert page scraping.
	AlertsURL      string
	ScrapeSchedule string

	// Optional Kafka alert feed.
	KafkaEnabled bool
	KafkaBrokers []string
	KafkaTopic   string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	extractTimeout, err := parseDuration("EXTRACT_TIMEOUT", "60s")
	if err != nil {
		return nil, err
	}
	geocodeTimeout, err := parseDuration("GEOCODE_TIMEOUT", "5s")
	if err != nil {
		return nil, err
	}
	urgentWindow, err := parseInt("URGENT_WINDOW_HOURS", 168)
	if err != nil {
		return nil, err
	}
	pastWindow, err := parseInt("PAST_WINDOW_HOURS", 24*365*10)
	if err != nil {
		return nil, err
	}
	cacheSize, err := parseInt("GEOCODE_CACHE_SIZE", 1000)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		AlertLogPath: envOrDefault("ALERT_LOG_PATH", "data/alerts_clean.csv"),

		UrgentWindowHours: urgentWindow,
		PastWindowHours:   pastWindow,

		OpenAIKey:      os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:    envOrDefault("OPENAI_MODEL", ""),
		ExtractTimeout: extractTimeout,

		MapsAPIKey:       os.Getenv("GOOGLE_MAPS_API_KEY"),
		GeocodeLocality:  envOrDefault("GEOCODE_LOCALITY", ", University District, Seattle WA"),
		GeocodeTimeout:   geocodeTimeout,
		GeocodeCacheSize: cacheSize,

		AlertsURL:      envOrDefault("ALERTS_URL", "https://emergency.uw.edu/"),
		ScrapeSchedule: envOrDefault("SCRAPE_SCHEDULE", "@every 5m"),

		KafkaEnabled: os.Getenv("KAFKA_ENABLED") == "true",
		KafkaBrokers: splitList(envOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaTopic:   envOrDefault("KAFKA_TOPIC", "campus-alerts"),
	}

	if cfg.AlertLogPath == "" {
		return nil, errors.New("ALERT_LOG_PATH is required")
	}
	if cfg.UrgentWindowHours <= 0 {
		return nil, errors.New("URGENT_WINDOW_HOURS must be positive")
	}
	if cfg.PastWindowHours <= 0 {
		return nil, errors.New("PAST_WINDOW_HOURS must be positive")
	}
	if cfg.GeocodeCacheSize <= 0 {
		return nil, errors.New("GEOCODE_CACHE_SIZE must be positive")
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is not set")
	}
	if cfg.KafkaEnabled && cfg.KafkaTopic == "" {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_TOPIC is not set")
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseDuration(key, fallback string) (time.Duration, error) {
	v := envOrDefault(key, fallback)
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s %q", key, v)
	}
	return d, nil
}

func parseInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", key, v)
	}
	return n, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
