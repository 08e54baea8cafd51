// Package refdata maps free-form detection output onto the reporting
// form's fixed select-field options.
package refdata

import (
	_ "embed"
	"fmt"
	"math"
	"strings"

	"gopkg.in/yaml.v3"
)

// Well-known field names in the reference table.
const (
	FieldMake                = "Make"
	FieldBodyStyle           = "Body Style"
	FieldVehicleColor        = "Vehicle Color"
	FieldViolationObserved   = "Violation Observed"
	FieldOccurrenceFrequency = "Occurrence Frequency"
)

//go:embed options.yaml
var rawOptions []byte

var fieldOptions map[string][]string

func init() {
	if err := yaml.Unmarshal(rawOptions, &fieldOptions); err != nil {
		panic(fmt.Sprintf("refdata: corrupt options table: %v", err))
	}
}

// ListOptions returns the options for field, in form order. It panics on an
// unknown field: that is a programming error, not user input.
func ListOptions(field string) []string {
	options, ok := fieldOptions[field]
	if !ok || len(options) == 0 {
		panic(fmt.Sprintf("refdata: no options for field %q", field))
	}
	return options
}

// BestMatch returns the option for field closest to the free-form text.
// Exact matches win, then substring containment in form order, then
// Levenshtein similarity. Ties keep the earlier option.
func BestMatch(field, text string) string {
	options := ListOptions(field)
	best := options[0]
	bestScore := matchScore(text, best)
	for _, option := range options[1:] {
		if score := matchScore(text, option); score > bestScore {
			best, bestScore = option, score
		}
	}
	return best
}

// matchScore ranks option against text. Containment in either direction
// outranks any edit-distance score; "sedan" must land on
// "Sedan (4 door car)" rather than a shorter near-miss.
func matchScore(text, option string) float64 {
	t := strings.ToLower(strings.TrimSpace(text))
	o := strings.ToLower(strings.TrimSpace(option))
	if t == o {
		return 1.0
	}
	if t != "" && (strings.Contains(o, t) || strings.Contains(t, o)) {
		return 0.9
	}
	return similarity(text, option)
}

// similarity scores two strings from 0.0 (completely different) to 1.0
// (identical), case- and whitespace-insensitively.
func similarity(s1, s2 string) float64 {
	s1 = strings.ToLower(strings.TrimSpace(s1))
	s2 = strings.ToLower(strings.TrimSpace(s2))

	if s1 == s2 {
		return 1.0
	}

	distance := levenshteinDistance(s1, s2)
	maxLen := math.Max(float64(len(s1)), float64(len(s2)))

	if maxLen == 0 {
		return 1.0
	}

	return 1.0 - (float64(distance) / maxLen)
}

// levenshteinDistance calculates the Levenshtein distance between two strings
func levenshteinDistance(s1, s2 string) int {
	if len(s1) == 0 {
		return len(s2)
	}
	if len(s2) == 0 {
		return len(s1)
	}

	matrix := make([][]int, len(s1)+1)
	for i := range matrix {
		matrix[i] = make([]int, len(s2)+1)
		matrix[i][0] = i
	}
	for j := range matrix[0] {
		matrix[0][j] = j
	}

	for i := 1; i <= len(s1); i++ {
		for j := 1; j <= len(s2); j++ {
			cost := 0
			if s1[i-1] != s2[j-1] {
				cost = 1
			}

			matrix[i][j] = min(
				matrix[i-1][j]+1,      // deletion
				matrix[i][j-1]+1,      // insertion
				matrix[i-1][j-1]+cost, // substitution
			)
		}
	}

	return matrix[len(s1)][len(s2)]
}
