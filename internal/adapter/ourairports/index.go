// Package ourairports loads the OurAirports reference dataset.
package ourairports

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/couchcryptid/snowtam-watch/internal/domain"
)

// Getter retrieves a document as text.
type Getter interface {
	Get(ctx context.Context, url string) (string, error)
}

// Columns read from airports.csv.
const (
	colIdent   = "ident"
	colIATA    = "iata_code"
	colName    = "name"
	colLat     = "latitude_deg"
	colLon     = "longitude_deg"
	colCountry = "iso_country"
)

var requiredColumns = []string{colIdent, colIATA, colName, colLat, colLon, colCountry}

// Client loads the airport index from a remote airports.csv.
type Client struct {
	getter Getter
	url    string
}

// NewClient creates a Client reading the CSV at url.
func NewClient(getter Getter, url string) *Client {
	return &Client{getter: getter, url: url}
}

// LoadIndex downloads airports.csv and indexes it by ICAO code.
func (c *Client) LoadIndex(ctx context.Context) (domain.AirportIndex, error) {
	body, err := c.getter.Get(ctx, c.url)
	if err != nil {
		return nil, fmt.Errorf("download airports csv: %w", err)
	}
	return ParseIndex(strings.NewReader(body))
}

// ParseIndex reads an airports.csv stream. Rows whose ident is not a
// four-character code or whose coordinates do not parse are skipped.
func ParseIndex(r io.Reader) (domain.AirportIndex, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	cols, err := columnIndex(header)
	if err != nil {
		return nil, err
	}

	index := domain.AirportIndex{}
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row: %w", err)
		}
		ap, ok := parseRow(row, cols)
		if !ok {
			continue
		}
		index[ap.ICAO] = ap
	}
	return index, nil
}

func columnIndex(header []string) (map[string]int, error) {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.TrimSpace(h)] = i
	}
	var missing []string
	for _, c := range requiredColumns {
		if _, ok := cols[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("airports csv missing columns %v", missing)
	}
	return cols, nil
}

func parseRow(row []string, cols map[string]int) (domain.Airport, bool) {
	field := func(name string) string {
		i := cols[name]
		if i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	ident := strings.ToUpper(field(colIdent))
	if len(ident) != 4 {
		return domain.Airport{}, false
	}
	lat, err := strconv.ParseFloat(field(colLat), 64)
	if err != nil {
		return domain.Airport{}, false
	}
	lon, err := strconv.ParseFloat(field(colLon), 64)
	if err != nil {
		return domain.Airport{}, false
	}

	return domain.Airport{
		ICAO:       ident,
		IATA:       strings.ToUpper(field(colIATA)),
		Name:       field(colName),
		Lat:        lat,
		Lon:        lon,
		ISOCountry: strings.ToUpper(field(colCountry)),
	}, true
}
