// Package domain models SNOWTAM runway-condition reports as rendered by the
// ROMATSA aeronautical information portal.
//
// # Data Source
//
// The portal serves one HTML page per aerodrome at
// https://flightplan.romatsa.ro/init/notam/getsnowtam?ad=<ICAO>. The page is not
// an official AIS feed; it wraps the coded report and two plain-language
// renderings in loosely structured markup. Only the text matters, so pages are
// flattened to one text node per line before any matching (see [Extract]).
//
// # Page Conventions
//
// Receipt time:
//
//	"Received on: 2026-01-09 06:32 UTC"
//	Captured verbatim by [Extract] and parsed separately by [ParseReceived].
//
// Coded report:
//
//	SWLH0012 LHBP 01090622
//	(SNOWTAM 0012
//	A) LHBP
//	B) 01090622 13L 5/5/5 100/100/100 NR/NR/NR ...
//	...)
//
//	The header line starts with "SW" followed by the series and number, then the
//	aerodrome ICAO code and the observation time. The report body ends with a
//	line closing the parenthesis opened by "(SNOWTAM".
//
// Plain-language renderings:
//
//	UNOFFICIAL PLAIN LANGUAGE DECODE
//	  ... RUNWAY 13L SURFACE CONDITION CODE 5 5 5 ...
//	UNOFFICIAL PLAIN LANGUAGE DECODE OPPOSITE DIRECTION
//	  ... RUNWAY 31R SURFACE CONDITION CODE 5 5 5 ...
//	Select voice:
//
// # Severity Classification
//
// Runway condition codes (RWYCC, 0–6, lower is worse) are reported per runway
// third. The lowest code across all runways drives the tier:
//
//	≤2 red | 3–4 orange | ≥5 yellow
//
// Textual closures and POOR braking action override the codes; see [Classify]
// for the full precedence order. "unknown" is reserved for pages that could not
// be fetched at all.
//
// # Content Hash
//
// Each record carries a truncated SHA-256 over the trimmed raw and decoded
// blocks (see [Fingerprint]), so consumers can tell whether a report changed
// between runs without diffing free text.
package domain
