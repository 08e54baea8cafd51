// Package address parses free-text US street addresses and filters the
// geocoder's address candidates down to ones a report can be filed against.
package address

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

// Parsed is the portion of an address the reporting form asks for.
type Parsed struct {
	BlockNumber string
	StreetName  string // name and type, upper-cased, e.g. "WHARTON ST"
	ZipCode     string
}

// Candidates look like "2300 Wharton St, Philadelphia, PA 19146, USA".
var (
	streetRe = regexp.MustCompile(`^(\d+)\s+(.+)$`)
	zipRe    = regexp.MustCompile(`\b(\d{5})(?:-\d{4})?\b`)
)

// Parse extracts the block number, street and zip code from a geocoded
// address string.
func Parse(s string) (*Parsed, error) {
	segments := strings.Split(s, ",")
	first := strings.TrimSpace(segments[0])

	m := streetRe.FindStringSubmatch(first)
	if m == nil {
		return nil, fmt.Errorf("address has no leading street number: %q", s)
	}

	// The zip appears in a later segment ("PA 19146"), never the first
	var zip string
	for _, segment := range segments[1:] {
		if zm := zipRe.FindStringSubmatch(segment); zm != nil {
			zip = zm[1]
			break
		}
	}
	if zip == "" {
		return nil, fmt.Errorf("address has no zip code: %q", s)
	}

	return &Parsed{
		BlockNumber: m[1],
		StreetName:  strings.ToUpper(strings.TrimSpace(m[2])),
		ZipCode:     zip,
	}, nil
}

// Viable reports whether a geocoder candidate is concrete enough to show
// the user: at least 4 comma-separated segments, a leading digit, and no
// intersection marker in its first segment.
func Viable(candidate string) bool {
	segments := strings.Split(candidate, ",")
	if len(segments) < 4 {
		return false
	}
	first := strings.TrimSpace(segments[0])
	if first == "" || !unicode.IsDigit(rune(first[0])) {
		return false
	}
	return !strings.Contains(first, " & ")
}

// FilterCandidates returns the viable candidates, preserving order.
func FilterCandidates(candidates []string) []string {
	viable := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if Viable(c) {
			viable = append(viable, c)
		}
	}
	return viable
}
