package domain

import "time"

// Severity is the tier assigned to an aerodrome's current SNOWTAM.
type Severity string

const (
	SeverityOK      Severity = "ok"
	SeverityYellow  Severity = "yellow"
	SeverityOrange  Severity = "orange"
	SeverityRed     Severity = "red"
	SeverityUnknown Severity = "unknown" // fetch failed; never produced by Classify
)

// Severities lists the tiers in increasing order of severity, unknown last.
var Severities = []Severity{SeverityOK, SeverityYellow, SeverityOrange, SeverityRed, SeverityUnknown}

// Rank orders tiers by severity. Unknown ranks below ok because it carries no
// information about the runway itself.
func (s Severity) Rank() int {
	switch s {
	case SeverityOK:
		return 1
	case SeverityYellow:
		return 2
	case SeverityOrange:
		return 3
	case SeverityRed:
		return 4
	default:
		return 0
	}
}

// Blocks holds the text slices extracted from one portal page.
// An empty field means the corresponding section was not found.
type Blocks struct {
	ReceivedText   string
	Raw            string
	Decode         string
	DecodeOpposite string
}

// HasSnowtam reports whether the page carried an active report.
func (b Blocks) HasSnowtam() bool {
	return b.Raw != ""
}

// Verdict is the outcome of classifying a report.
type Verdict struct {
	Severity Severity
	Summary  string
}

// Source describes where a record or payload came from.
type Source struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// StatusRecord is the per-aerodrome output of one run.
type StatusRecord struct {
	ICAO           string     `json:"icao"`
	HasSnowtam     bool       `json:"hasSnowtam"`
	Severity       Severity   `json:"severity"`
	ReceivedUTC    *time.Time `json:"receivedUtc"`
	ReceivedText   string     `json:"receivedText"`
	SnowtamNumber  string     `json:"snowtamNumber"`
	Raw            string     `json:"raw"`
	Decode         string     `json:"decode"`
	DecodeOpposite string     `json:"decodeOpposite"`
	Summary        string     `json:"summary"`
	Error          string     `json:"error,omitempty"`
	Hash           string     `json:"hash"`
	Changed        bool       `json:"changed"`
	Source         Source     `json:"source"`
}
