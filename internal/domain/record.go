package domain

import "strings"

// PortalSourceName labels records scraped from the SNOWTAM portal.
const PortalSourceName = "ROMATSA Aeronautical Information Portal (unofficial page)"

// NewStatusRecord assembles the record for one aerodrome from the blocks
// extracted off its portal page.
func NewStatusRecord(icao string, blocks Blocks, source Source) StatusRecord {
	raw := strings.TrimSpace(blocks.Raw)
	decode := strings.TrimSpace(blocks.Decode)
	decodeOpposite := strings.TrimSpace(blocks.DecodeOpposite)

	hasSnowtam := raw != ""
	verdict := Classify(raw, decode)
	if !hasSnowtam {
		verdict.Severity = SeverityOK
	}

	rec := StatusRecord{
		ICAO:           icao,
		HasSnowtam:     hasSnowtam,
		Severity:       verdict.Severity,
		ReceivedText:   blocks.ReceivedText,
		SnowtamNumber:  SnowtamNumber(raw),
		Raw:            raw,
		Decode:         decode,
		DecodeOpposite: decodeOpposite,
		Summary:        verdict.Summary,
		Hash:           Fingerprint(raw, decode, decodeOpposite),
		Source:         source,
	}
	if t, ok := ParseReceived(blocks.ReceivedText); ok {
		rec.ReceivedUTC = &t
	}
	return rec
}

// FailedRecord is the record for an aerodrome whose page could not be fetched.
// Its severity is unknown and its hash is derived from the error message, so
// a persisting failure keeps a stable hash.
func FailedRecord(icao string, err error, source Source) StatusRecord {
	msg := err.Error()
	return StatusRecord{
		ICAO:     icao,
		Severity: SeverityUnknown,
		Error:    msg,
		Hash:     Fingerprint("error", msg),
		Source:   source,
	}
}
