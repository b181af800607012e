package domain

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
)

const (
	decodeHeading         = "UNOFFICIAL PLAIN LANGUAGE DECODE"
	decodeOppositeHeading = "UNOFFICIAL PLAIN LANGUAGE DECODE OPPOSITE DIRECTION"
	voiceMarker           = "Select voice:"

	// headerLookahead is how many lines, including the candidate itself, may
	// carry the SNOWTAM token for an "SW" line to count as a report header.
	headerLookahead = 5

	// decodeWindow bounds the search for the decode heading after the report
	// header. The heading confirms the closing parenthesis ends a real report.
	decodeWindow = 120
)

var (
	// receivedRe matches the portal's receipt stamp, e.g.
	// "Received on: 2026-01-09 06:32 UTC" -> "2026-01-09 06:32 UTC".
	receivedRe = regexp.MustCompile(`Received on:[\s\p{Zs}]*([0-9]{4}-[0-9]{2}-[0-9]{2}[\s\p{Zs}]+[0-9]{2}:[0-9]{2}[\s\p{Zs}]+UTC)`)

	siteCodeRe = regexp.MustCompile(`^[A-Z0-9]{4}$`)
)

// Extract isolates the receipt stamp, the coded report and both plain-language
// renderings from a portal page. It accepts HTML or plain text and never fails:
// sections that cannot be located come back empty. All fields are trimmed.
func Extract(document string) Blocks {
	text := pageText(document)

	return Blocks{
		ReceivedText:   findReceived(text),
		Raw:            rawBlock(nonBlankLines(text)),
		Decode:         sliceBetween(text, decodeHeading, decodeOppositeHeading),
		DecodeOpposite: sliceBetween(text, decodeOppositeHeading, voiceMarker),
	}
}

// pageText flattens a document to one line per text node, dropping markup.
// Script and style contents are not part of the rendered page and are skipped.
func pageText(document string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(document))
	if err != nil {
		return document
	}
	doc.Find("script, style, noscript").Remove()

	var parts []string
	collectText(doc.Selection, &parts)
	return strings.Join(parts, "\n")
}

func collectText(s *goquery.Selection, parts *[]string) {
	s.Contents().Each(func(_ int, child *goquery.Selection) {
		if goquery.NodeName(child) == "#text" {
			*parts = append(*parts, child.Text())
			return
		}
		collectText(child, parts)
	})
}

// findReceived returns the receipt date-time substring, unparsed.
func findReceived(text string) string {
	m := receivedRe.FindStringSubmatch(text)
	if len(m) != 2 {
		return ""
	}
	return m[1]
}

// nonBlankLines splits text into lines with trailing whitespace removed,
// discarding lines that are empty or whitespace-only.
func nonBlankLines(text string) []string {
	var lines []string
	for _, ln := range strings.Split(text, "\n") {
		if strings.TrimSpace(ln) == "" {
			continue
		}
		lines = append(lines, strings.TrimRightFunc(ln, unicode.IsSpace))
	}
	return lines
}

// rawBlock returns the coded report: from the first header line up to and
// including the line that closes the report. Returns "" without a header.
func rawBlock(lines []string) string {
	start := reportStart(lines)
	if start < 0 {
		return ""
	}

	confirmed := decodeFollows(lines, start)
	var collected []string
	for _, ln := range lines[start:] {
		collected = append(collected, ln)
		if confirmed && closesReport(ln) {
			break
		}
	}
	return strings.TrimSpace(strings.Join(collected, "\n"))
}

// reportStart returns the index of the first report header line, or -1.
func reportStart(lines []string) int {
	for i := range lines {
		if isReportHeader(lines, i) {
			return i
		}
	}
	return -1
}

// isReportHeader reports whether lines[i] opens a SNOWTAM: it starts with "SW"
// and either the SNOWTAM token shows up within the lookahead window or the line
// reads like "SWLH0012 LHBP 01090622" (site code as second token).
func isReportHeader(lines []string, i int) bool {
	ln := lines[i]
	if !strings.HasPrefix(ln, "SW") {
		return false
	}
	return mentionsSnowtam(lines, i) || hasSiteCodeToken(ln)
}

func mentionsSnowtam(lines []string, i int) bool {
	end := min(i+headerLookahead, len(lines))
	return strings.Contains(strings.Join(lines[i:end], " "), "SNOWTAM")
}

func hasSiteCodeToken(ln string) bool {
	fields := strings.Fields(ln)
	return len(fields) >= 3 && siteCodeRe.MatchString(fields[1])
}

// decodeFollows reports whether the decode heading appears within the window
// that starts at the report header.
func decodeFollows(lines []string, start int) bool {
	end := min(start+decodeWindow, len(lines))
	return strings.Contains(strings.Join(lines[start:end], "\n"), decodeHeading)
}

func closesReport(ln string) bool {
	ln = strings.TrimSpace(ln)
	return strings.HasSuffix(ln, ")") || strings.HasSuffix(ln, ").")
}

// sliceBetween returns the trimmed text after the first occurrence of head and
// before the next occurrence of next, or to the end of text when next is
// absent. The search for next starts after head so overlapping headings such
// as the decode pair do not match themselves. Returns "" if head is missing.
func sliceBetween(text, head, next string) string {
	a := strings.Index(text, head)
	if a < 0 {
		return ""
	}
	from := a + len(head)
	rest := text[from:]
	if b := strings.Index(rest, next); b >= 0 {
		rest = rest[:b]
	}
	return strings.TrimSpace(rest)
}
