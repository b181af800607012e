package config

import (
	"errors"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// ICAOPlaceholder is replaced by the site code in SnowtamURL.
const ICAOPlaceholder = "{icao}"

// Config holds all job settings, populated from environment variables.
type Config struct {
	SitesFile string
	OutputDir string

	SnowtamURL      string
	SnowtamIndexURL string
	OurAirportsURL  string
	UserAgent       string

	FetchTimeout    time.Duration
	AirportsTimeout time.Duration
	FetchRetries    int
	FetchBackoff    time.Duration

	// Pacing: pause PaceDelay after every PaceEvery sites. Zero disables.
	PaceEvery int
	PaceDelay time.Duration

	RunTimeout time.Duration

	LogLevel  string
	LogFormat string
	LogFile   string

	// Optional sinks. Empty values disable them.
	KafkaBrokers []string
	KafkaTopic   string
	DatabaseURL  string
	RedisAddr    string
	RedisHashTTL time.Duration

	PushgatewayURL string
	MetricsJob     string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	fetchTimeout, err := parsePositiveDuration("FETCH_TIMEOUT", "35s")
	if err != nil {
		return nil, err
	}
	airportsTimeout, err := parsePositiveDuration("AIRPORTS_TIMEOUT", "60s")
	if err != nil {
		return nil, err
	}
	fetchBackoff, err := parseDuration("FETCH_BACKOFF", "2s")
	if err != nil {
		return nil, err
	}
	paceDelay, err := parseDuration("PACE_DELAY", "1s")
	if err != nil {
		return nil, err
	}
	runTimeout, err := parsePositiveDuration("RUN_TIMEOUT", "30m")
	if err != nil {
		return nil, err
	}
	redisTTL, err := parsePositiveDuration("REDIS_HASH_TTL", "720h")
	if err != nil {
		return nil, err
	}

	retries, err := strconv.Atoi(sharedcfg.EnvOrDefault("FETCH_RETRIES", "3"))
	if err != nil || retries < 1 || retries > 10 {
		return nil, errors.New("invalid FETCH_RETRIES: must be between 1 and 10")
	}
	paceEvery, err := strconv.Atoi(sharedcfg.EnvOrDefault("PACE_EVERY", "10"))
	if err != nil || paceEvery < 0 {
		return nil, errors.New("invalid PACE_EVERY")
	}

	cfg := &Config{
		SitesFile:       sharedcfg.EnvOrDefault("SITES_FILE", "airports.txt"),
		OutputDir:       sharedcfg.EnvOrDefault("OUTPUT_DIR", "data"),
		SnowtamURL:      sharedcfg.EnvOrDefault("SNOWTAM_URL", "https://flightplan.romatsa.ro/init/notam/getsnowtam?ad="+ICAOPlaceholder),
		SnowtamIndexURL: sharedcfg.EnvOrDefault("SNOWTAM_INDEX_URL", "https://flightplan.romatsa.ro/init/notam/snowtam"),
		OurAirportsURL:  sharedcfg.EnvOrDefault("OURAIRPORTS_URL", "https://davidmegginson.github.io/ourairports-data/airports.csv"),
		UserAgent:       sharedcfg.EnvOrDefault("USER_AGENT", "Mozilla/5.0 (compatible; SNOWTAM-Watch/1.0)"),
		FetchTimeout:    fetchTimeout,
		AirportsTimeout: airportsTimeout,
		FetchRetries:    retries,
		FetchBackoff:    fetchBackoff,
		PaceEvery:       paceEvery,
		PaceDelay:       paceDelay,
		RunTimeout:      runTimeout,
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		LogFile:         sharedcfg.EnvOrDefault("LOG_FILE", ""),
		KafkaTopic:      sharedcfg.EnvOrDefault("KAFKA_TOPIC", "snowtam-status"),
		DatabaseURL:     sharedcfg.EnvOrDefault("DATABASE_URL", ""),
		RedisAddr:       sharedcfg.EnvOrDefault("REDIS_ADDR", ""),
		RedisHashTTL:    redisTTL,
		PushgatewayURL:  sharedcfg.EnvOrDefault("PUSHGATEWAY_URL", ""),
		MetricsJob:      sharedcfg.EnvOrDefault("METRICS_JOB", "snowtam_watch"),
	}
	if brokers := sharedcfg.EnvOrDefault("KAFKA_BROKERS", ""); strings.TrimSpace(brokers) != "" {
		cfg.KafkaBrokers = sharedcfg.ParseBrokers(brokers)
	}

	if cfg.SitesFile == "" {
		return nil, errors.New("SITES_FILE is required")
	}
	if cfg.OutputDir == "" {
		return nil, errors.New("OUTPUT_DIR is required")
	}
	if !strings.Contains(cfg.SnowtamURL, ICAOPlaceholder) {
		return nil, errors.New("invalid SNOWTAM_URL: missing " + ICAOPlaceholder + " placeholder")
	}
	if len(cfg.KafkaBrokers) > 0 && cfg.KafkaTopic == "" {
		return nil, errors.New("KAFKA_TOPIC is required when KAFKA_BROKERS is set")
	}
	if cfg.PushgatewayURL != "" && cfg.MetricsJob == "" {
		return nil, errors.New("METRICS_JOB is required when PUSHGATEWAY_URL is set")
	}

	return cfg, nil
}

// KafkaEnabled reports whether records are published to Kafka.
func (c *Config) KafkaEnabled() bool { return len(c.KafkaBrokers) > 0 }

func parseDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d < 0 {
		return 0, errors.New("invalid " + key)
	}
	return d, nil
}

func parsePositiveDuration(key, def string) (time.Duration, error) {
	d, err := parseDuration(key, def)
	if err != nil || d == 0 {
		return 0, errors.New("invalid " + key)
	}
	return d, nil
}
