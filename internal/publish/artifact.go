// Package publish turns TourStatistics into the JSON artifact read by the
// client app and writes it without ever leaving a partial file behind.
package publish

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/ademuri/tour-stats/internal/stats"
)

// Artifact is the published document. Its JSON field names are relied on by
// the client app.
type Artifact struct {
	TourName     string        `json:"tourName" validate:"required"`
	LastUpdated  string        `json:"lastUpdated" validate:"required"`
	LatestShow   string        `json:"latestShow" validate:"required,datetime=2006-01-02"`
	LongestSongs []LongestSong `json:"longestSongs" validate:"max=3,dive"`
	RarestSongs  []RareSong    `json:"rarestSongs" validate:"max=3,dive"`
}

type LongestSong struct {
	SongName        string    `json:"songName" validate:"required"`
	DurationSeconds int       `json:"durationSeconds" validate:"gt=0"`
	ShowDate        string    `json:"showDate" validate:"required,datetime=2006-01-02"`
	Venue           string    `json:"venue" validate:"required"`
	VenueRun        *VenueRun `json:"venueRun"`
}

type VenueRun struct {
	ShowNumber  int    `json:"showNumber" validate:"gt=0"`
	TotalShows  int    `json:"totalShows" validate:"gtefield=ShowNumber"`
	DisplayText string `json:"displayText"`
}

type RareSong struct {
	SongName   string `json:"songName" validate:"required"`
	Gap        int    `json:"gap" validate:"gte=0"`
	LastPlayed string `json:"lastPlayed"`
	TourDate   string `json:"tourDate" validate:"required,datetime=2006-01-02"`
	TourVenue  string `json:"tourVenue" validate:"required"`
}

// FromStatistics shapes s as an artifact stamped with updated.
func FromStatistics(s *stats.TourStatistics, updated time.Time) Artifact {
	a := Artifact{
		TourName:     s.TourName,
		LastUpdated:  updated.UTC().Format(time.RFC3339),
		LatestShow:   s.LatestShow.Format(stats.DateFormat),
		LongestSongs: make([]LongestSong, 0, len(s.LongestSongs)),
		RarestSongs:  make([]RareSong, 0, len(s.RarestSongs)),
	}

	for _, t := range s.LongestSongs {
		venue := t.Venue
		if venue == "" {
			venue = stats.UnknownVenue
		}
		song := LongestSong{
			SongName:        t.SongName,
			DurationSeconds: t.DurationSeconds,
			ShowDate:        t.ShowDate.Format(stats.DateFormat),
			Venue:           venue,
		}
		if t.VenueRun != nil {
			song.VenueRun = &VenueRun{
				ShowNumber:  t.VenueRun.NightNumber,
				TotalShows:  t.VenueRun.TotalNights,
				DisplayText: t.VenueRun.DisplayText,
			}
		}
		a.LongestSongs = append(a.LongestSongs, song)
	}

	for _, r := range s.RarestSongs {
		a.RarestSongs = append(a.RarestSongs, RareSong{
			SongName:   r.SongName,
			Gap:        r.Gap,
			LastPlayed: r.LastPlayed,
			TourDate:   r.TourDate.Format(stats.DateFormat),
			TourVenue:  r.TourVenue,
		})
	}
	return a
}

// ContentHash identifies the artifact's content, ignoring LastUpdated, so
// republishing unchanged statistics yields the same hash.
func ContentHash(a Artifact) string {
	a.LastUpdated = ""
	b, err := json.Marshal(a)
	if err != nil {
		// Artifact only holds strings, ints and slices of them.
		panic(err)
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}
