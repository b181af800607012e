package pipeline

import (
	"context"

	"github.com/couchcryptid/snowtam-watch/internal/domain"
)

// scrapeSite fetches and classifies one site. A failed fetch yields an
// unknown-severity record carrying the error.
func (r *Runner) scrapeSite(ctx context.Context, icao string) domain.StatusRecord {
	source := r.stages.Pages.Source(icao)

	page, err := r.stages.Pages.FetchPage(ctx, icao)
	if err != nil {
		r.metrics.FetchErrors.Inc()
		r.logger.Warn("fetch failed", "icao", icao, "error", err)
		return domain.FailedRecord(icao, err, source)
	}

	blocks := domain.Extract(page)
	rec := domain.NewStatusRecord(icao, blocks, source)
	r.logger.Debug("site classified",
		"icao", icao,
		"has_snowtam", rec.HasSnowtam,
		"severity", rec.Severity,
		"summary", rec.Summary,
		"hash", rec.Hash,
	)
	return rec
}
