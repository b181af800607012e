// Package redis remembers the latest content hash of each site between runs.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/couchcryptid/snowtam-watch/internal/domain"
)

const hashKeyPrefix = "snowtam:hash:"

// HashStore keeps one key per site holding the hash of its latest record.
// Keys expire after ttl so retired sites do not linger.
// It implements pipeline.HashStore and pipeline.StatusLoader.
type HashStore struct {
	client goredis.Cmdable
	ttl    time.Duration
}

// NewHashStore creates a HashStore on an existing client.
func NewHashStore(client goredis.Cmdable, ttl time.Duration) *HashStore {
	return &HashStore{client: client, ttl: ttl}
}

// Connect opens a client for addr and verifies the connection.
func Connect(ctx context.Context, addr string) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:         addr,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis at %s: %w", addr, err)
	}
	return client, nil
}

func key(icao string) string {
	return hashKeyPrefix + icao
}

// Name identifies the sink in logs and metrics.
func (s *HashStore) Name() string { return "redis" }

// PreviousHashes returns the stored hash of each requested site. Sites
// without a stored hash are omitted.
func (s *HashStore) PreviousHashes(ctx context.Context, sites []string) (map[string]string, error) {
	hashes := make(map[string]string, len(sites))
	if len(sites) == 0 {
		return hashes, nil
	}

	keys := make([]string, len(sites))
	for i, icao := range sites {
		keys[i] = key(icao)
	}
	vals, err := s.client.MGet(ctx, keys...).Result()
	if err != nil && !errors.Is(err, goredis.Nil) {
		return nil, fmt.Errorf("read previous hashes: %w", err)
	}
	for i, v := range vals {
		if h, ok := v.(string); ok && h != "" {
			hashes[sites[i]] = h
		}
	}
	return hashes, nil
}

// LoadStatus stores the hash of every record in one pipelined round trip.
func (s *HashStore) LoadStatus(ctx context.Context, payload domain.StatusPayload) error {
	if len(payload.Airports) == 0 {
		return nil
	}
	_, err := s.client.Pipelined(ctx, func(p goredis.Pipeliner) error {
		for icao, rec := range payload.Airports {
			p.SetEx(ctx, key(icao), rec.Hash, s.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("store hashes: %w", err)
	}
	return nil
}
