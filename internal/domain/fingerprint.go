package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"
)

// fingerprintLen is the number of hex characters kept from the SHA-256 digest.
const fingerprintLen = 16

// partSeparator follows every part so ("ab", "c") and ("a", "bc") differ.
var partSeparator = []byte("\n---\n")

// snowtamNumberRe captures the report number from "(SNOWTAM 0012".
var snowtamNumberRe = regexp.MustCompile(`(?i)\(SNOWTAM\s+([0-9]{4})`)

// Fingerprint produces a short, deterministic content hash of the given parts.
// Each part is trimmed before hashing, and order matters. Records hash their
// raw, decode and opposite-direction blocks in that order, enabling change
// detection across runs without comparing free text.
func Fingerprint(parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(strings.TrimSpace(p)))
		h.Write(partSeparator)
	}
	return hex.EncodeToString(h.Sum(nil))[:fingerprintLen]
}

// SnowtamNumber returns the four-digit report number from a raw block, or ""
// when the block carries none.
func SnowtamNumber(raw string) string {
	m := snowtamNumberRe.FindStringSubmatch(raw)
	if len(m) != 2 {
		return ""
	}
	return m[1]
}
