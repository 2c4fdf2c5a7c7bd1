package stats

import "time"

const (
	// DefaultTopK is the number of entries kept in each published list.
	DefaultTopK = 3

	// UnknownVenue is displayed when a show has no venue.
	UnknownVenue = "Unknown Venue"

	// UnknownTour names statistics whose tour could not be resolved.
	UnknownTour = "Unknown Tour"

	// DefaultTimesPlayed stands in for an unknown play count.
	DefaultTimesPlayed = 100

	// MissingGap marks an observation whose upstream gap was absent.
	MissingGap = -1

	// DateFormat is the yyyy-mm-dd layout used for show dates.
	DateFormat = "2006-01-02"
)

// VenueRun describes one night of a multi-night stay at a venue.
type VenueRun struct {
	NightNumber int
	TotalNights int
	DisplayText string
}

// TrackPerformance is one recorded performance of a song.
type TrackPerformance struct {
	SongName        string
	DurationSeconds int
	ShowDate        time.Time
	Venue           string
	VenueRun        *VenueRun
}

// ShowGapObservation is a song's gap as of one show.
//
// TourDate and TourVenue are informational only: the reducer attributes an
// observation to the show that carries it.
type ShowGapObservation struct {
	SongName   string
	Gap        int
	LastPlayed string

	TourDate  time.Time
	TourVenue string

	HistoricalVenue      string
	HistoricalCity       string
	HistoricalState      string
	HistoricalLastPlayed string
	TimesPlayed          int
}

// TourShow holds the gap observations taken at one show.
type TourShow struct {
	ShowDate time.Time
	Venue    string
	SongGaps []ShowGapObservation
}

// RarestSong is the best (highest gap) observation retained for a song.
type RarestSong struct {
	SongName   string
	Gap        int
	LastPlayed string
	TourDate   time.Time
	TourVenue  string

	HistoricalVenue      string
	HistoricalCity       string
	HistoricalState      string
	HistoricalLastPlayed string
	TimesPlayed          int
}

// TourStatistics is the result of one aggregation run.
type TourStatistics struct {
	TourName string
	// LastUpdated is zero until the statistics are published.
	LastUpdated  time.Time
	LatestShow   time.Time
	LongestSongs []TrackPerformance
	RarestSongs  []RarestSong

	// Degraded is set when part of the result came from a fallback.
	Degraded bool
}

// Tour identifies a tour as known to the gap catalog.
type Tour struct {
	ID   string
	Name string
}
