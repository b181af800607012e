package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/couchcryptid/snowtam-watch/internal/adapter/httpfetch"
	"github.com/couchcryptid/snowtam-watch/internal/adapter/jsonfile"
	kafkaadapter "github.com/couchcryptid/snowtam-watch/internal/adapter/kafka"
	"github.com/couchcryptid/snowtam-watch/internal/adapter/ourairports"
	"github.com/couchcryptid/snowtam-watch/internal/adapter/portal"
	"github.com/couchcryptid/snowtam-watch/internal/adapter/postgres"
	redisadapter "github.com/couchcryptid/snowtam-watch/internal/adapter/redis"
	"github.com/couchcryptid/snowtam-watch/internal/config"
	"github.com/couchcryptid/snowtam-watch/internal/domain"
	"github.com/couchcryptid/snowtam-watch/internal/observability"
	"github.com/couchcryptid/snowtam-watch/internal/pipeline"
)

// Process exit codes.
const (
	exitOK      = 0
	exitFailure = 1
	exitNoSites = 2
)

const pushTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(exitFailure)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, cfg, logger, metrics))
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) int {
	sites, invalid, err := jsonfile.ReadSites(cfg.SitesFile)
	if err != nil {
		logger.Error("failed to read site list", "path", cfg.SitesFile, "error", err)
		return exitFailure
	}
	for _, code := range invalid {
		logger.Warn("skipping invalid site identifier", "code", code)
	}
	if len(sites) == 0 {
		logger.Error("no ICAO codes found", "path", cfg.SitesFile)
		return exitNoSites
	}

	runCtx, cancel := context.WithTimeout(ctx, cfg.RunTimeout)
	defer cancel()

	pages := httpfetch.NewClient(httpfetch.Options{
		UserAgent: cfg.UserAgent,
		Timeout:   cfg.FetchTimeout,
		Retries:   cfg.FetchRetries,
		Backoff:   cfg.FetchBackoff,
	}, metrics, logger)
	reference := httpfetch.NewClient(httpfetch.Options{
		UserAgent: cfg.UserAgent,
		Timeout:   cfg.AirportsTimeout,
		Retries:   cfg.FetchRetries,
		Backoff:   cfg.FetchBackoff,
	}, metrics, logger)

	store := jsonfile.NewStore(cfg.OutputDir)
	stages := pipeline.Stages{
		Pages:    portal.NewClient(pages, cfg.SnowtamURL),
		Airports: ourairports.NewClient(reference, cfg.OurAirportsURL),
		Cache:    store,
		Hashes:   store,
		Output:   store,
	}
	closeSinks := attachSinks(runCtx, cfg, &stages, logger)
	defer closeSinks()

	runner := pipeline.New(stages, pipeline.Options{
		Source:    domain.Source{Name: domain.PortalIndexName, URL: cfg.SnowtamIndexURL},
		PaceEvery: cfg.PaceEvery,
		PaceDelay: cfg.PaceDelay,
	}, logger, metrics)

	res, err := runner.Run(runCtx, sites)
	pushMetrics(ctx, cfg, metrics, logger)
	if err != nil {
		if errors.Is(err, pipeline.ErrNoSites) {
			return exitNoSites
		}
		logger.Error("run failed", "error", err)
		return exitFailure
	}

	for _, w := range res.Warnings {
		logger.Warn("run warning", "warning", w)
	}
	logger.Info("wrote output",
		"status", store.StatusPath(),
		"airports", store.AirportsPath(),
		"red", res.BySeverity[domain.SeverityRed],
		"orange", res.BySeverity[domain.SeverityOrange],
		"yellow", res.BySeverity[domain.SeverityYellow],
		"ok", res.BySeverity[domain.SeverityOK],
		"unknown", res.BySeverity[domain.SeverityUnknown],
	)
	return exitOK
}

// attachSinks connects the optional destinations that are configured. A sink
// that cannot be set up is logged and skipped. The returned func releases
// every opened connection.
func attachSinks(ctx context.Context, cfg *config.Config, stages *pipeline.Stages, logger *slog.Logger) func() {
	var closers []func()

	if cfg.KafkaEnabled() {
		w := kafkaadapter.NewWriter(cfg, logger)
		stages.Sinks = append(stages.Sinks, w)
		closers = append(closers, func() {
			if err := w.Close(); err != nil {
				logger.Error("kafka writer close error", "error", err)
			}
		})
		logger.Info("kafka publishing enabled", "topic", cfg.KafkaTopic)
	}

	if cfg.DatabaseURL != "" {
		if pool, err := postgres.Connect(ctx, cfg.DatabaseURL); err != nil {
			logger.Warn("postgres history disabled", "error", err)
		} else {
			history := postgres.NewHistoryStore(pool, logger)
			if err := history.EnsureSchema(ctx); err != nil {
				logger.Warn("postgres history disabled", "error", err)
				pool.Close()
			} else {
				stages.Sinks = append(stages.Sinks, history)
				closers = append(closers, pool.Close)
				logger.Info("postgres history enabled")
			}
		}
	}

	if cfg.RedisAddr != "" {
		if client, err := redisadapter.Connect(ctx, cfg.RedisAddr); err != nil {
			logger.Warn("redis hash store disabled, using previous status file", "error", err)
		} else {
			hashes := redisadapter.NewHashStore(client, cfg.RedisHashTTL)
			stages.Hashes = hashes
			stages.Sinks = append(stages.Sinks, hashes)
			closers = append(closers, func() { _ = client.Close() })
			logger.Info("redis hash store enabled", "addr", cfg.RedisAddr)
		}
	}

	return func() {
		for _, c := range closers {
			c()
		}
	}
}

func pushMetrics(ctx context.Context, cfg *config.Config, metrics *observability.Metrics, logger *slog.Logger) {
	if cfg.PushgatewayURL == "" {
		return
	}
	// The run context may already be cancelled; the push still gets a short window.
	pushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), pushTimeout)
	defer cancel()
	if err := metrics.Push(pushCtx, cfg.PushgatewayURL, cfg.MetricsJob); err != nil {
		logger.Warn("metrics push failed", "url", cfg.PushgatewayURL, "error", err)
	}
}
