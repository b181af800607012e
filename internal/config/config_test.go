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

	assert.Equal(t, "airports.txt", cfg.SitesFile)
	assert.Equal(t, "data", cfg.OutputDir)
	assert.Equal(t, "https://flightplan.romatsa.ro/init/notam/getsnowtam?ad={icao}", cfg.SnowtamURL)
	assert.Equal(t, "https://flightplan.romatsa.ro/init/notam/snowtam", cfg.SnowtamIndexURL)
	assert.Equal(t, "https://davidmegginson.github.io/ourairports-data/airports.csv", cfg.OurAirportsURL)
	assert.Equal(t, "Mozilla/5.0 (compatible; SNOWTAM-Watch/1.0)", cfg.UserAgent)
	assert.Equal(t, 35*time.Second, cfg.FetchTimeout)
	assert.Equal(t, 60*time.Second, cfg.AirportsTimeout)
	assert.Equal(t, 3, cfg.FetchRetries)
	assert.Equal(t, 2*time.Second, cfg.FetchBackoff)
	assert.Equal(t, 10, cfg.PaceEvery)
	assert.Equal(t, time.Second, cfg.PaceDelay)
	assert.Equal(t, 30*time.Minute, cfg.RunTimeout)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Empty(t, cfg.LogFile)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.False(t, cfg.KafkaEnabled())
	assert.Equal(t, "snowtam-status", cfg.KafkaTopic)
	assert.Empty(t, cfg.DatabaseURL)
	assert.Empty(t, cfg.RedisAddr)
	assert.Equal(t, 720*time.Hour, cfg.RedisHashTTL)
	assert.Empty(t, cfg.PushgatewayURL)
	assert.Equal(t, "snowtam_watch", cfg.MetricsJob)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("SITES_FILE", "/etc/snowtam/sites.txt")
	t.Setenv("OUTPUT_DIR", "/var/lib/snowtam")
	t.Setenv("SNOWTAM_URL", "http://portal.local/snowtam/{icao}.html")
	t.Setenv("USER_AGENT", "test-agent")
	t.Setenv("FETCH_TIMEOUT", "5s")
	t.Setenv("FETCH_RETRIES", "5")
	t.Setenv("FETCH_BACKOFF", "0s")
	t.Setenv("PACE_EVERY", "0")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("LOG_FILE", "/tmp/snowtam.log")
	t.Setenv("KAFKA_BROKERS", "broker1:9092,broker2:9092")
	t.Setenv("KAFKA_TOPIC", "custom-topic")
	t.Setenv("DATABASE_URL", "postgres://localhost/snowtam")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("REDIS_HASH_TTL", "1h")
	t.Setenv("PUSHGATEWAY_URL", "http://pushgateway:9091")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/etc/snowtam/sites.txt", cfg.SitesFile)
	assert.Equal(t, "/var/lib/snowtam", cfg.OutputDir)
	assert.Equal(t, "test-agent", cfg.UserAgent)
	assert.Equal(t, 5*time.Second, cfg.FetchTimeout)
	assert.Equal(t, 5, cfg.FetchRetries)
	assert.Zero(t, cfg.FetchBackoff)
	assert.Zero(t, cfg.PaceEvery)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, "/tmp/snowtam.log", cfg.LogFile)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.True(t, cfg.KafkaEnabled())
	assert.Equal(t, "custom-topic", cfg.KafkaTopic)
	assert.Equal(t, "postgres://localhost/snowtam", cfg.DatabaseURL)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Equal(t, time.Hour, cfg.RedisHashTTL)
	assert.Equal(t, "http://pushgateway:9091", cfg.PushgatewayURL)
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"FETCH_TIMEOUT", "not-a-duration"},
		{"FETCH_TIMEOUT", "0s"},
		{"AIRPORTS_TIMEOUT", "-1s"},
		{"FETCH_BACKOFF", "-2s"},
		{"PACE_DELAY", "soon"},
		{"RUN_TIMEOUT", "0"},
		{"REDIS_HASH_TTL", "forever"},
		{"FETCH_RETRIES", "0"},
		{"FETCH_RETRIES", "11"},
		{"FETCH_RETRIES", "three"},
		{"PACE_EVERY", "-1"},
		{"SNOWTAM_URL", "https://portal.example/snowtam"},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.key)
		})
	}
}

func TestLoad_BlankBrokersDisableKafka(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "   ")
	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.KafkaEnabled())
}
