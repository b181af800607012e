package domain

import "time"

// PortalIndexName labels the status payload as a whole.
const PortalIndexName = "ROMATSA Aeronautical Information Portal (unofficial)"

// OurAirportsSource is the reference dataset behind airports.json.
var OurAirportsSource = Source{Name: "OurAirports (public domain)", URL: "https://ourairports.com/data/"}

// StatusPayload is the serialized form of snowtam_status.json.
type StatusPayload struct {
	GeneratedUTC string                  `json:"generatedUtc"`
	Source       Source                  `json:"source"`
	Airports     map[string]StatusRecord `json:"airports"`
}

// AirportsPayload is the serialized form of airports.json.
type AirportsPayload struct {
	GeneratedUTC string         `json:"generatedUtc"`
	Source       Source         `json:"source"`
	Warnings     []string       `json:"warnings"`
	Airports     []AirportEntry `json:"airports"`
}

// NewStatusPayload keys records by ICAO code and stamps the payload with the
// current time.
func NewStatusPayload(records []StatusRecord, source Source) StatusPayload {
	airports := make(map[string]StatusRecord, len(records))
	for _, r := range records {
		airports[r.ICAO] = r
	}
	return StatusPayload{
		GeneratedUTC: generatedUTC(),
		Source:       source,
		Airports:     airports,
	}
}

// NewAirportsPayload emits one entry per site in the given order. Sites
// missing from the index are kept with a placeholder name and no coordinates.
func NewAirportsPayload(sites []string, index AirportIndex, warnings []string) AirportsPayload {
	entries := make([]AirportEntry, 0, len(sites))
	for _, icao := range sites {
		ap, ok := index[icao]
		if !ok {
			entries = append(entries, missingEntry(icao))
			continue
		}
		entries = append(entries, ap.Entry())
	}
	if warnings == nil {
		warnings = []string{}
	}
	return AirportsPayload{
		GeneratedUTC: generatedUTC(),
		Source:       OurAirportsSource,
		Warnings:     warnings,
		Airports:     entries,
	}
}

// generatedUTC formats the current time as RFC 3339 with a "Z" suffix.
func generatedUTC() string {
	return clock.Now().UTC().Format(time.RFC3339Nano)
}
