package stats

import (
	"strings"

	"golang.org/x/text/cases"
)

// SongKey returns the identity used to compare song names across records.
// Whitespace runs collapse to a single space and the result is case folded;
// punctuation is kept as-is.
func SongKey(name string) string {
	// A Caser keeps state, so one is built per call.
	return cases.Fold().String(strings.Join(strings.Fields(name), " "))
}
