package domain

import (
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

// closureIndicators are matched case-insensitively against raw+decode text.
var closureIndicators = []string{"CLOSED", "CLSD", "RWY CLSD", "RUNWAY CLSD"}

// conditionCodeRe matches a runway condition code triplet in the decoded text,
// one digit per runway third, e.g. "SURFACE CONDITION CODE 5 5 5". Separators
// include Unicode spaces such as the no-break space rendered from &nbsp;.
var conditionCodeRe = regexp.MustCompile(`SURFACE CONDITION CODE[\s\p{Zs}]+([0-9])[\s\p{Zs}]+([0-9])[\s\p{Zs}]+([0-9])`)

// report is the pre-digested input shared by all classification rules.
type report struct {
	raw      string
	combined string // upper-cased raw + "\n" + decode
	codes    []int
	hasPoor  bool
}

func newReport(raw, decode string) report {
	combined := strings.ToUpper(raw + "\n" + decode)
	return report{
		raw:      raw,
		combined: combined,
		codes:    conditionCodes(decode),
		hasPoor:  strings.Contains(combined, " POOR"),
	}
}

// rule is one step of the classification precedence. The first rule whose
// match returns true decides the verdict.
type rule struct {
	name    string
	match   func(r report) bool
	verdict func(r report) Verdict
}

// rules is evaluated top to bottom. Keyword rules come before the condition
// codes so textual closures win over any numeric reading.
var rules = []rule{
	{
		name:    "no report",
		match:   func(r report) bool { return strings.TrimSpace(r.raw) == "" },
		verdict: fixed(SeverityOK, "No valid SNOWTAM"),
	},
	{
		name:    "runway closed",
		match:   hasClosure,
		verdict: fixed(SeverityRed, "Runway closed indicator found"),
	},
	{
		name: "braking action poor",
		match: func(r report) bool {
			return strings.Contains(r.combined, "BRAKING ACTION") && strings.Contains(r.combined, "POOR")
		},
		verdict: fixed(SeverityRed, "Braking action POOR"),
	},
	{
		name:    "condition codes",
		match:   func(r report) bool { return len(r.codes) > 0 },
		verdict: codeVerdict,
	},
	{
		name:    "unparsed codes with poor areas",
		match:   func(r report) bool { return r.hasPoor },
		verdict: fixed(SeverityOrange, "Could not parse RWYCC; POOR movement area noted"),
	},
}

// fallback decides a report that no rule in rules matched.
var fallback = rule{
	name:    "unparsed codes",
	verdict: fixed(SeverityYellow, "Could not parse RWYCC; SNOWTAM present"),
}

// Classify assigns a severity tier and a short diagnostic summary to a report
// given its raw block and primary decode block. It is pure and deterministic.
func Classify(raw, decode string) Verdict {
	v, _ := classify(raw, decode)
	return v
}

// classify also returns the name of the deciding rule, for tests and logs.
func classify(raw, decode string) (Verdict, string) {
	r := newReport(raw, decode)
	for _, rl := range rules {
		if rl.match(r) {
			return rl.verdict(r), rl.name
		}
	}
	return fallback.verdict(r), fallback.name
}

func fixed(s Severity, summary string) func(report) Verdict {
	return func(report) Verdict {
		return Verdict{Severity: s, Summary: summary}
	}
}

func hasClosure(r report) bool {
	for _, k := range closureIndicators {
		if strings.Contains(r.combined, k) {
			return true
		}
	}
	return false
}

// codeVerdict tiers a report on its lowest condition code. A POOR movement
// area lifts yellow to orange but never changes orange or red.
func codeVerdict(r report) Verdict {
	minCode := slices.Min(r.codes)

	s := tierForCode(minCode)
	if r.hasPoor && s == SeverityYellow {
		s = SeverityOrange
	}
	return Verdict{
		Severity: s,
		Summary:  fmt.Sprintf("minCode=%d; poorAreas=%t", minCode, r.hasPoor),
	}
}

// tierForCode maps a runway condition code (0–6, lower is worse) to a tier.
func tierForCode(code int) Severity {
	switch {
	case code <= 2:
		return SeverityRed
	case code <= 4:
		return SeverityOrange
	default:
		return SeverityYellow
	}
}

// conditionCodes collects every digit of every condition code triplet found in
// the decoded text, in order of appearance.
func conditionCodes(decode string) []int {
	var codes []int
	for _, m := range conditionCodeRe.FindAllStringSubmatch(strings.ToUpper(decode), -1) {
		for _, d := range m[1:] {
			n, err := strconv.Atoi(d)
			if err != nil {
				continue
			}
			codes = append(codes, n)
		}
	}
	return codes
}
