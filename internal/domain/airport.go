package domain

import (
	"regexp"
	"slices"
	"strings"
)

// NotFoundName is used for sites missing from the reference index.
const NotFoundName = "(not found in OurAirports)"

var icaoRe = regexp.MustCompile(`^[A-Z0-9]{4}$`)

// Airport is reference metadata for one aerodrome.
type Airport struct {
	ICAO       string
	IATA       string
	Name       string
	Lat        float64
	Lon        float64
	ISOCountry string
}

// AirportIndex maps ICAO codes to reference metadata.
type AirportIndex map[string]Airport

// AirportEntry is the serialized form of an airport. Coordinates are null for
// sites missing from the index.
type AirportEntry struct {
	ICAO    string   `json:"icao"`
	IATA    string   `json:"iata"`
	Name    string   `json:"name"`
	Lat     *float64 `json:"lat"`
	Lon     *float64 `json:"lon"`
	Country string   `json:"country"`
}

// ValidICAO reports whether code is a four-character alphanumeric site code.
func ValidICAO(code string) bool {
	return icaoRe.MatchString(code)
}

// ParseSiteList normalizes a list of site identifiers: lines are trimmed and
// upper-cased, blanks dropped, invalid codes skipped and returned separately.
// The result is sorted and free of duplicates.
func ParseSiteList(lines []string) (sites, invalid []string) {
	for _, ln := range lines {
		code := strings.ToUpper(strings.TrimSpace(ln))
		if code == "" {
			continue
		}
		if !ValidICAO(code) {
			invalid = append(invalid, code)
			continue
		}
		sites = append(sites, code)
	}
	slices.Sort(sites)
	return slices.Compact(sites), invalid
}

// Entry converts a reference airport into its serialized form.
func (a Airport) Entry() AirportEntry {
	lat, lon := a.Lat, a.Lon
	return AirportEntry{
		ICAO:    a.ICAO,
		IATA:    a.IATA,
		Name:    a.Name,
		Lat:     &lat,
		Lon:     &lon,
		Country: a.ISOCountry,
	}
}

// missingEntry is the placeholder for a site absent from the index.
func missingEntry(icao string) AirportEntry {
	return AirportEntry{ICAO: icao, Name: NotFoundName}
}
