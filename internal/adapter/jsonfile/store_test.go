package jsonfile

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/snowtam-watch/internal/domain"
)

var testSource = domain.Source{Name: domain.PortalIndexName, URL: "https://portal.example/snowtam"}

func freezeClock(t *testing.T) {
	t.Helper()
	domain.SetClock(clockwork.NewFakeClockAt(time.Date(2026, 1, 9, 7, 0, 0, 0, time.UTC)))
	t.Cleanup(func() { domain.SetClock(nil) })
}

func TestReadSites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "airports.txt")
	require.NoError(t, os.WriteFile(path, []byte("lrop\n\nLHBP\r\nLROP\nBAD!\n"), 0o600))

	sites, invalid, err := ReadSites(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"LHBP", "LROP"}, sites)
	assert.Equal(t, []string{"BAD!"}, invalid)
}

func TestReadSites_Missing(t *testing.T) {
	_, _, err := ReadSites(filepath.Join(t.TempDir(), "nope.txt"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open site list")
}

func TestStore_LoadStatus(t *testing.T) {
	freezeClock(t)
	dir := filepath.Join(t.TempDir(), "data")
	s := NewStore(dir)

	rec := domain.NewStatusRecord("LROP", domain.Blocks{Raw: "SWRO0001 LROP 01090600\n(SNOWTAM 0001)"}, testSource)
	require.NoError(t, s.LoadStatus(context.Background(), domain.NewStatusPayload([]domain.StatusRecord{rec}, testSource)))

	data, err := os.ReadFile(filepath.Join(dir, StatusFile))
	require.NoError(t, err)
	assert.Contains(t, string(data), "\n  \"generatedUtc\": \"2026-01-09T07:00:00Z\"")

	var got domain.StatusPayload
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, rec.Hash, got.Airports["LROP"].Hash)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files must not be left behind")
}

func TestStore_LoadStatus_DoesNotEscapeHTML(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir)

	rec := domain.StatusRecord{ICAO: "LROP", Raw: "A) <B> & C"}
	require.NoError(t, s.LoadStatus(context.Background(), domain.StatusPayload{Airports: map[string]domain.StatusRecord{"LROP": rec}}))

	data, err := os.ReadFile(s.StatusPath())
	require.NoError(t, err)
	assert.Contains(t, string(data), "A) <B> & C")
}

func TestStore_PreviousHashes(t *testing.T) {
	s := NewStore(t.TempDir())
	ctx := context.Background()

	hashes, err := s.PreviousHashes(ctx, []string{"LROP"})
	require.NoError(t, err)
	assert.Empty(t, hashes)

	payload := domain.StatusPayload{Airports: map[string]domain.StatusRecord{
		"LROP": {ICAO: "LROP", Hash: "aaaaaaaaaaaaaaaa"},
		"LHBP": {ICAO: "LHBP", Hash: "bbbbbbbbbbbbbbbb"},
	}}
	require.NoError(t, s.LoadStatus(ctx, payload))

	hashes, err = s.PreviousHashes(ctx, []string{"LROP", "LRBS"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"LROP": "aaaaaaaaaaaaaaaa"}, hashes)
}

func TestStore_PreviousHashes_Corrupt(t *testing.T) {
	s := NewStore(t.TempDir())
	require.NoError(t, os.WriteFile(s.StatusPath(), []byte("{not json"), 0o600))

	_, err := s.PreviousHashes(context.Background(), []string{"LROP"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode snowtam_status.json")
}

func TestStore_LoadCachedAirports(t *testing.T) {
	freezeClock(t)
	s := NewStore(t.TempDir())
	ctx := context.Background()

	index, err := s.LoadCachedAirports(ctx)
	require.NoError(t, err)
	assert.Empty(t, index)

	known := domain.AirportIndex{
		"LROP": {ICAO: "LROP", IATA: "OTP", Name: "Henri Coanda", Lat: 44.57, Lon: 26.08, ISOCountry: "RO"},
	}
	require.NoError(t, s.LoadAirports(ctx, domain.NewAirportsPayload([]string{"LROP", "ZZZZ"}, known, nil)))

	index, err = s.LoadCachedAirports(ctx)
	require.NoError(t, err)
	assert.Equal(t, known, index)
}
