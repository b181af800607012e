package domain

import (
	"regexp"
	"time"
)

// receivedLayout is the portal's receipt stamp format, e.g. "2026-01-09 06:32 UTC".
const receivedLayout = "2006-01-02 15:04 UTC"

// receivedExactRe rejects text time.Parse would still accept, such as a
// single-digit hour.
var receivedExactRe = regexp.MustCompile(`^[0-9]{4}-[0-9]{2}-[0-9]{2} [0-9]{2}:[0-9]{2} UTC$`)

// ParseReceived converts a captured receipt stamp to a UTC time. It reports
// false when the text does not match the layout exactly; callers treat that as
// an unknown receipt time, not as an error.
func ParseReceived(text string) (time.Time, bool) {
	if !receivedExactRe.MatchString(text) {
		return time.Time{}, false
	}
	t, err := time.Parse(receivedLayout, text)
	if err != nil {
		return time.Time{}, false
	}
	return t.UTC(), true
}
