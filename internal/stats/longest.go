package stats

import (
	"fmt"
	"sort"
	"strings"
)

// SelectLongest returns up to k performances ordered by duration, longest
// first. Performances without a song name or with a non-positive duration are
// dropped. Equal durations keep their input order.
//
// SelectLongest panics if k < 1.
func SelectLongest(tracks []TrackPerformance, k int) []TrackPerformance {
	mustBePositive(k)

	valid := make([]TrackPerformance, 0, len(tracks))
	for _, t := range tracks {
		if strings.TrimSpace(t.SongName) == "" || t.DurationSeconds <= 0 {
			continue
		}
		valid = append(valid, t)
	}

	sort.SliceStable(valid, func(i, j int) bool {
		return valid[i].DurationSeconds > valid[j].DurationSeconds
	})

	if len(valid) > k {
		valid = valid[:k]
	}
	return valid
}

func mustBePositive(k int) {
	if k < 1 {
		panic(fmt.Sprintf("stats: top-k must be positive, got %d", k))
	}
}
