// Package jsonfile reads the site list and persists run output as JSON files.
package jsonfile

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/couchcryptid/snowtam-watch/internal/domain"
)

// File names within the output directory.
const (
	StatusFile   = "snowtam_status.json"
	AirportsFile = "airports.json"
)

// ReadSites reads one site identifier per line and normalizes the list.
// Invalid identifiers are returned separately so callers can warn about them.
func ReadSites(path string) (sites, invalid []string, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open site list: %w", err)
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, nil, fmt.Errorf("read site list: %w", err)
	}
	sites, invalid = domain.ParseSiteList(lines)
	return sites, invalid, nil
}

// Store writes snowtam_status.json and airports.json into one directory and
// reads back the previous run's files.
type Store struct {
	dir string
}

// NewStore creates a Store rooted at dir. The directory is created on first write.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// StatusPath is the location of snowtam_status.json.
func (s *Store) StatusPath() string { return filepath.Join(s.dir, StatusFile) }

// AirportsPath is the location of airports.json.
func (s *Store) AirportsPath() string { return filepath.Join(s.dir, AirportsFile) }

// Name identifies the store in logs and metrics.
func (s *Store) Name() string { return "json" }

// LoadStatus writes the status payload.
func (s *Store) LoadStatus(_ context.Context, payload domain.StatusPayload) error {
	return writeJSON(s.StatusPath(), payload)
}

// LoadAirports writes the airports payload.
func (s *Store) LoadAirports(_ context.Context, payload domain.AirportsPayload) error {
	return writeJSON(s.AirportsPath(), payload)
}

// LoadCachedAirports reads the previous airports.json as a fallback index.
// Entries without coordinates or with a malformed code are skipped. A missing
// file yields an empty index.
func (s *Store) LoadCachedAirports(_ context.Context) (domain.AirportIndex, error) {
	var payload domain.AirportsPayload
	if err := readJSON(s.AirportsPath(), &payload); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domain.AirportIndex{}, nil
		}
		return nil, err
	}

	index := domain.AirportIndex{}
	for _, e := range payload.Airports {
		icao := strings.ToUpper(strings.TrimSpace(e.ICAO))
		if len(icao) != 4 || e.Lat == nil || e.Lon == nil {
			continue
		}
		index[icao] = domain.Airport{
			ICAO:       icao,
			IATA:       strings.ToUpper(strings.TrimSpace(e.IATA)),
			Name:       strings.TrimSpace(e.Name),
			Lat:        *e.Lat,
			Lon:        *e.Lon,
			ISOCountry: strings.ToUpper(strings.TrimSpace(e.Country)),
		}
	}
	return index, nil
}

// PreviousHashes returns the content hash of each requested site from the
// previous snowtam_status.json. Sites absent from the file are omitted. A
// missing file yields an empty map.
func (s *Store) PreviousHashes(_ context.Context, sites []string) (map[string]string, error) {
	var payload domain.StatusPayload
	if err := readJSON(s.StatusPath(), &payload); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, err
	}

	hashes := make(map[string]string, len(sites))
	for _, icao := range sites {
		if rec, ok := payload.Airports[icao]; ok && rec.Hash != "" {
			hashes[icao] = rec.Hash
		}
	}
	return hashes, nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return nil
}

// writeJSON writes v as indented JSON through a temporary file so readers
// never observe a partially written document.
func writeJSON(path string, v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", filepath.Base(path), err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("chmod %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace %s: %w", filepath.Base(path), err)
	}
	return nil
}
