package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "data/alerts_clean.csv", cfg.AlertLogPath)
	assert.Equal(t, 168, cfg.UrgentWindowHours)
	assert.Equal(t, 24*365*10, cfg.PastWindowHours)
	assert.Equal(t, 60*time.Second, cfg.ExtractTimeout)
	assert.Equal(t, ", University District, Seattle WA", cfg.GeocodeLocality)
	assert.Equal(t, 5*time.Second, cfg.GeocodeTimeout)
	assert.Equal(t, 1000, cfg.GeocodeCacheSize)
	assert.Equal(t, "https://emergency.uw.edu/", cfg.AlertsURL)
	assert.Equal(t, "@every 5m", cfg.ScrapeSchedule)
	assert.False(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "campus-alerts", cfg.KafkaTopic)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9999")
	t.Setenv("ALERT_LOG_PATH", "/var/lib/alerts/log.csv")
	t.Setenv("URGENT_WINDOW_HOURS", "48")
	t.Setenv("EXTRACT_TIMEOUT", "90s")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("OPENAI_MODEL", "gpt-4o")
	t.Setenv("GOOGLE_MAPS_API_KEY", "maps-test")
	t.Setenv("GEOCODE_LOCALITY", ", Capitol Hill, Seattle WA")
	t.Setenv("KAFKA_ENABLED", "true")
	t.Setenv("KAFKA_BROKERS", "broker1:9092, broker2:9092")
	t.Setenv("KAFKA_TOPIC", "alerts-feed")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9999", cfg.HTTPAddr)
	assert.Equal(t, "/var/lib/alerts/log.csv", cfg.AlertLogPath)
	assert.Equal(t, 48, cfg.UrgentWindowHours)
	assert.Equal(t, 90*time.Second, cfg.ExtractTimeout)
	assert.Equal(t, "sk-test", cfg.OpenAIKey)
	assert.Equal(t, "gpt-4o", cfg.OpenAIModel)
	assert.Equal(t, "maps-test", cfg.MapsAPIKey)
	assert.Equal(t, ", Capitol Hill, Seattle WA", cfg.GeocodeLocality)
	assert.True(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "alerts-feed", cfg.KafkaTopic)
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"bad duration", "EXTRACT_TIMEOUT", "soon"},
		{"negative duration", "GEOCODE_TIMEOUT", "-5s"},
		{"bad int", "URGENT_WINDOW_HOURS", "a week"},
		{"zero window", "URGENT_WINDOW_HOURS", "0"},
		{"negative past window", "PAST_WINDOW_HOURS", "-1"},
		{"zero cache size", "GEOCODE_CACHE_SIZE", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoad_KafkaEnabledNeedsBrokersAndTopic(t *testing.T) {
	t.Setenv("KAFKA_ENABLED", "true")
	t.Setenv("KAFKA_BROKERS", " , ")

	_, err := Load()
	assert.Error(t, err)
}
