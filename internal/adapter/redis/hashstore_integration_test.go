//go:build integration

package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/couchcryptid/snowtam-watch/internal/domain"
)

func TestHashStore_RoundTrip(t *testing.T) {
	ctx := context.Background()

	ctr, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	testcontainers.CleanupContainer(t, ctr)
	require.NoError(t, err)

	endpoint, err := ctr.Endpoint(ctx, "")
	require.NoError(t, err)

	client, err := Connect(ctx, endpoint)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	s := NewHashStore(client, time.Hour)

	hashes, err := s.PreviousHashes(ctx, []string{"LROP", "LHBP"})
	require.NoError(t, err)
	assert.Empty(t, hashes)

	payload := domain.StatusPayload{Airports: map[string]domain.StatusRecord{
		"LROP": {ICAO: "LROP", Hash: "aaaaaaaaaaaaaaaa"},
	}}
	require.NoError(t, s.LoadStatus(ctx, payload))

	hashes, err = s.PreviousHashes(ctx, []string{"LROP", "LHBP"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"LROP": "aaaaaaaaaaaaaaaa"}, hashes)

	ttl, err := client.TTL(ctx, key("LROP")).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, 59*time.Minute)
}
