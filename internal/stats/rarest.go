package stats

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrNotChronological is returned by CheckChronological.
var ErrNotChronological = errors.New("shows are not in chronological order")

// SelectRarest folds shows, which must be in chronological order, into the
// highest gap seen for each song and returns the top k songs by gap.
//
// A song's record only changes when a strictly larger gap shows up, so the
// earliest show reaching the maximum is the one credited. The date and venue
// of a record always come from the show, not from the observation. Songs with
// equal gaps keep the order in which they were first seen.
//
// Observations without a song name or with a negative gap are ignored.
// SelectRarest panics if k < 1.
func SelectRarest(shows []TourShow, k int) []RarestSong {
	mustBePositive(k)

	best := []RarestSong{}
	index := make(map[string]int)
	for _, show := range shows {
		for _, obs := range show.SongGaps {
			if strings.TrimSpace(obs.SongName) == "" || obs.Gap < 0 {
				continue
			}

			key := SongKey(obs.SongName)
			i, seen := index[key]
			if seen && obs.Gap <= best[i].Gap {
				continue
			}

			record := rarestRecord(show, obs)
			if seen {
				best[i] = record
			} else {
				index[key] = len(best)
				best = append(best, record)
			}
		}
	}

	sort.SliceStable(best, func(i, j int) bool {
		return best[i].Gap > best[j].Gap
	})

	if len(best) > k {
		best = best[:k]
	}
	return best
}

func rarestRecord(show TourShow, obs ShowGapObservation) RarestSong {
	lastPlayed := obs.LastPlayed
	if lastPlayed == "" {
		lastPlayed = obs.HistoricalLastPlayed
	}

	venue := show.Venue
	if venue == "" {
		venue = UnknownVenue
	}

	timesPlayed := obs.TimesPlayed
	if timesPlayed <= 0 {
		timesPlayed = DefaultTimesPlayed
	}

	return RarestSong{
		SongName:             obs.SongName,
		Gap:                  obs.Gap,
		LastPlayed:           lastPlayed,
		TourDate:             show.ShowDate,
		TourVenue:            venue,
		HistoricalVenue:      obs.HistoricalVenue,
		HistoricalCity:       obs.HistoricalCity,
		HistoricalState:      obs.HistoricalState,
		HistoricalLastPlayed: obs.HistoricalLastPlayed,
		TimesPlayed:          timesPlayed,
	}
}

// CheckChronological reports whether shows are ordered earliest first.
// Shows on the same date are allowed.
func CheckChronological(shows []TourShow) error {
	for i := 1; i < len(shows); i++ {
		if shows[i].ShowDate.Before(shows[i-1].ShowDate) {
			return fmt.Errorf("%w: %s follows %s", ErrNotChronological,
				shows[i].ShowDate.Format(DateFormat), shows[i-1].ShowDate.Format(DateFormat))
		}
	}
	return nil
}
