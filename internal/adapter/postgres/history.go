// Package postgres keeps a history of distinct SNOWTAM reports per aerodrome.
package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/couchcryptid/snowtam-watch/internal/domain"
)

const schema = `
	CREATE TABLE IF NOT EXISTS snowtam_history (
		icao            TEXT        NOT NULL,
		hash            TEXT        NOT NULL,
		severity        TEXT        NOT NULL,
		has_snowtam     BOOLEAN     NOT NULL,
		snowtam_number  TEXT        NOT NULL DEFAULT '',
		received_utc    TIMESTAMPTZ,
		summary         TEXT        NOT NULL DEFAULT '',
		raw             TEXT        NOT NULL DEFAULT '',
		decode          TEXT        NOT NULL DEFAULT '',
		decode_opposite TEXT        NOT NULL DEFAULT '',
		error           TEXT        NOT NULL DEFAULT '',
		first_seen_utc  TIMESTAMPTZ NOT NULL,
		last_seen_utc   TIMESTAMPTZ NOT NULL,
		PRIMARY KEY (icao, hash)
	);
	CREATE INDEX IF NOT EXISTS snowtam_history_last_seen_idx ON snowtam_history (icao, last_seen_utc DESC);
`

const upsertQuery = `
	INSERT INTO snowtam_history (icao, hash, severity, has_snowtam, snowtam_number, received_utc,
		summary, raw, decode, decode_opposite, error, first_seen_utc, last_seen_utc)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $12)
	ON CONFLICT (icao, hash) DO UPDATE SET
		severity = EXCLUDED.severity,
		summary = EXCLUDED.summary,
		last_seen_utc = EXCLUDED.last_seen_utc;
`

// execer is the subset of *pgxpool.Pool used here.
type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// HistoryStore records every distinct report seen for each site. A report is
// identified by its content hash; seeing it again only moves last_seen_utc.
// It implements pipeline.StatusLoader.
type HistoryStore struct {
	db     execer
	logger *slog.Logger
}

// NewHistoryStore creates a HistoryStore on an open pool.
func NewHistoryStore(pool *pgxpool.Pool, logger *slog.Logger) *HistoryStore {
	return &HistoryStore{db: pool, logger: logger}
}

// Connect opens a pool for databaseURL and verifies the connection.
func Connect(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("create postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return pool, nil
}

// Name identifies the sink in logs and metrics.
func (s *HistoryStore) Name() string { return "postgres" }

// EnsureSchema creates the history table if it does not exist.
func (s *HistoryStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure snowtam_history schema: %w", err)
	}
	return nil
}

// LoadStatus upserts every record of the payload.
func (s *HistoryStore) LoadStatus(ctx context.Context, payload domain.StatusPayload) error {
	seen := seenAt(payload.GeneratedUTC)

	sites := make([]string, 0, len(payload.Airports))
	for icao := range payload.Airports {
		sites = append(sites, icao)
	}
	slices.Sort(sites)

	for _, icao := range sites {
		r := payload.Airports[icao]
		_, err := s.db.Exec(ctx, upsertQuery,
			r.ICAO,
			r.Hash,
			string(r.Severity),
			r.HasSnowtam,
			r.SnowtamNumber,
			r.ReceivedUTC,
			r.Summary,
			r.Raw,
			r.Decode,
			r.DecodeOpposite,
			r.Error,
			seen,
		)
		if err != nil {
			return fmt.Errorf("upsert history for %s: %w", icao, err)
		}
	}
	s.logger.Debug("recorded snowtam history", "count", len(sites))
	return nil
}

// seenAt is the payload timestamp, or the current time if it does not parse.
func seenAt(generatedUTC string) time.Time {
	if t, err := time.Parse(time.RFC3339Nano, generatedUTC); err == nil {
		return t
	}
	return time.Now().UTC()
}
