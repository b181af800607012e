package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"

	"github.com/couchcryptid/snowtam-watch/internal/domain"
	"github.com/couchcryptid/snowtam-watch/internal/observability"
)

// ErrNoSites is returned when a run is started without any site.
var ErrNoSites = errors.New("no valid site identifiers")

// PageFetcher retrieves the portal page for one site.
type PageFetcher interface {
	FetchPage(ctx context.Context, icao string) (string, error)
	Source(icao string) domain.Source
}

// AirportLoader loads the reference airport index.
type AirportLoader interface {
	LoadIndex(ctx context.Context) (domain.AirportIndex, error)
}

// AirportCache supplies the index saved by an earlier run.
type AirportCache interface {
	LoadCachedAirports(ctx context.Context) (domain.AirportIndex, error)
}

// HashStore supplies each site's content hash from the previous run.
type HashStore interface {
	PreviousHashes(ctx context.Context, sites []string) (map[string]string, error)
}

// StatusLoader writes the status payload to a destination.
type StatusLoader interface {
	Name() string
	LoadStatus(ctx context.Context, payload domain.StatusPayload) error
}

// OutputWriter persists both payloads. It is the one destination a run cannot
// succeed without.
type OutputWriter interface {
	StatusLoader
	LoadAirports(ctx context.Context, payload domain.AirportsPayload) error
}

// Stages wires the runner to its collaborators. Sinks are optional; their
// failures become warnings.
type Stages struct {
	Pages    PageFetcher
	Airports AirportLoader
	Cache    AirportCache
	Hashes   HashStore
	Output   OutputWriter
	Sinks    []StatusLoader
}

// Options tune a run.
type Options struct {
	// Source labels the status payload as a whole.
	Source domain.Source
	// PaceEvery pauses the run for PaceDelay after every PaceEvery sites. Zero disables pacing.
	PaceEvery int
	PaceDelay time.Duration
}

// Result summarizes a completed run.
type Result struct {
	Records    []domain.StatusRecord
	Warnings   []string
	BySeverity map[domain.Severity]int
	Changed    int
	Failed     int
}

// Runner scrapes every configured site once and writes the results.
type Runner struct {
	stages  Stages
	opts    Options
	clock   clockwork.Clock
	logger  *slog.Logger
	metrics *observability.Metrics
}

// New creates a Runner with the given stages and observability.
func New(stages Stages, opts Options, logger *slog.Logger, metrics *observability.Metrics) *Runner {
	return &Runner{
		stages:  stages,
		opts:    opts,
		clock:   clockwork.NewRealClock(),
		logger:  logger,
		metrics: metrics,
	}
}

// SetClock replaces the time source used for pacing and durations.
func (r *Runner) SetClock(c clockwork.Clock) {
	r.clock = c
}

// Run processes sites in order. Per-site fetch failures are recorded as
// unknown-severity records and never abort the run. It returns an error only
// when the context ends before all sites are processed or when the output
// files cannot be written.
func (r *Runner) Run(ctx context.Context, sites []string) (Result, error) {
	if len(sites) == 0 {
		return Result{}, ErrNoSites
	}

	start := r.clock.Now()
	res := Result{BySeverity: make(map[domain.Severity]int, len(domain.Severities))}
	r.logger.Info("run started", "sites", len(sites))

	index, airportWarnings := r.loadAirports(ctx, sites)
	res.Warnings = append(res.Warnings, airportWarnings...)
	previous := r.previousHashes(ctx, sites, &res)

	records, err := r.scrapeAll(ctx, sites, previous)
	if err != nil {
		return res, err
	}
	res.Records = records
	r.tally(&res)

	status := domain.NewStatusPayload(records, r.opts.Source)
	airports := domain.NewAirportsPayload(sites, index, airportWarnings)

	if err := r.writeOutput(ctx, status, airports); err != nil {
		return res, err
	}
	res.Warnings = append(res.Warnings, r.fanOut(ctx, status)...)

	elapsed := r.clock.Since(start)
	r.metrics.RunDuration.Set(elapsed.Seconds())
	r.metrics.LastSuccess.Set(float64(r.clock.Now().Unix()))
	r.logger.Info("run finished",
		"sites", len(records),
		"changed", res.Changed,
		"failed", res.Failed,
		"warnings", len(res.Warnings),
		"duration", elapsed,
	)
	return res, nil
}

// loadAirports downloads the reference index, falling back to the cached
// airports.json with a warning. Both failing leaves an empty index.
func (r *Runner) loadAirports(ctx context.Context, sites []string) (domain.AirportIndex, []string) {
	r.logger.Info("loading airport index", "sites", len(sites))
	index, err := r.stages.Airports.LoadIndex(ctx)
	if err == nil {
		return index, nil
	}

	r.logger.Warn("airport index download failed, falling back to cache", "error", err)
	warnings := []string{fmt.Sprintf("OurAirports download failed; using cached airports.json. %v", err)}

	index, err = r.stages.Cache.LoadCachedAirports(ctx)
	if err != nil {
		r.logger.Warn("cached airport index unavailable", "error", err)
		return domain.AirportIndex{}, warnings
	}
	return index, warnings
}

// previousHashes tolerates a failing store: every record then counts as changed.
func (r *Runner) previousHashes(ctx context.Context, sites []string, res *Result) map[string]string {
	if r.stages.Hashes == nil {
		return nil
	}
	hashes, err := r.stages.Hashes.PreviousHashes(ctx, sites)
	if err != nil {
		r.logger.Warn("previous hashes unavailable", "error", err)
		res.Warnings = append(res.Warnings, fmt.Sprintf("previous hashes unavailable; all records marked changed. %v", err))
		return nil
	}
	return hashes
}

func (r *Runner) scrapeAll(ctx context.Context, sites []string, previous map[string]string) ([]domain.StatusRecord, error) {
	records := make([]domain.StatusRecord, 0, len(sites))
	for i, icao := range sites {
		if err := ctx.Err(); err != nil {
			return records, fmt.Errorf("run interrupted after %d/%d sites: %w", i, len(sites), err)
		}

		rec := r.scrapeSite(ctx, icao)
		prev, seen := previous[rec.ICAO]
		rec.Changed = !seen || prev != rec.Hash
		records = append(records, rec)

		r.metrics.SitesProcessed.Inc()
		r.logger.Info("site done",
			"progress", fmt.Sprintf("%d/%d", i+1, len(sites)),
			"icao", icao,
			"severity", rec.Severity,
			"changed", rec.Changed,
		)

		if r.shouldPause(i+1, len(sites)) && !sleepWithContext(ctx, r.clock, r.opts.PaceDelay) {
			return records, fmt.Errorf("run interrupted after %d/%d sites: %w", i+1, len(sites), ctx.Err())
		}
	}
	return records, nil
}

// shouldPause reports whether to pause after done sites. No pause follows the last site.
func (r *Runner) shouldPause(done, total int) bool {
	return r.opts.PaceEvery > 0 && done%r.opts.PaceEvery == 0 && done < total
}

func (r *Runner) tally(res *Result) {
	for _, s := range domain.Severities {
		res.BySeverity[s] = 0
	}
	for _, rec := range res.Records {
		res.BySeverity[rec.Severity]++
		if rec.Changed {
			res.Changed++
		}
		if rec.Severity == domain.SeverityUnknown {
			res.Failed++
		}
	}
	for s, n := range res.BySeverity {
		r.metrics.SitesBySeverity.WithLabelValues(string(s)).Set(float64(n))
	}
	r.metrics.ChangedRecords.Add(float64(res.Changed))
}

func (r *Runner) writeOutput(ctx context.Context, status domain.StatusPayload, airports domain.AirportsPayload) error {
	out := r.stages.Output
	if err := out.LoadAirports(ctx, airports); err != nil {
		r.metrics.SinkErrors.WithLabelValues(out.Name()).Inc()
		return fmt.Errorf("write airports: %w", err)
	}
	if err := out.LoadStatus(ctx, status); err != nil {
		r.metrics.SinkErrors.WithLabelValues(out.Name()).Inc()
		return fmt.Errorf("write status: %w", err)
	}
	return nil
}

// fanOut delivers the status payload to every optional sink concurrently and
// returns one warning per failed sink, in sink order.
func (r *Runner) fanOut(ctx context.Context, status domain.StatusPayload) []string {
	sinks := r.stages.Sinks
	if len(sinks) == 0 {
		return nil
	}

	// Each goroutine owns one slot of errs.
	errs := make([]error, len(sinks))
	var g errgroup.Group
	for i, sink := range sinks {
		g.Go(func() error {
			errs[i] = sink.LoadStatus(ctx, status)
			return errs[i]
		})
	}
	if err := g.Wait(); err != nil {
		r.logger.Debug("one or more sinks failed", "first_error", err)
	}

	var warnings []string
	for i, err := range errs {
		if err == nil {
			continue
		}
		name := sinks[i].Name()
		r.metrics.SinkErrors.WithLabelValues(name).Inc()
		r.logger.Warn("sink failed", "sink", name, "error", err)
		warnings = append(warnings, fmt.Sprintf("%s sink failed: %v", name, err))
	}
	return warnings
}

func sleepWithContext(ctx context.Context, clock clockwork.Clock, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}

	timer := clock.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.Chan():
		return true
	}
}
