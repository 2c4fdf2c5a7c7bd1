package source

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/ademuri/tour-stats/internal/stats"
)

const PhishInBaseURL = "https://phish.in/api/v2"

const phishInPageSize = 50

// PhishIn reads recorded track durations from the phish.in API.
type PhishIn struct {
	client *client
}

func NewPhishIn(config Config) *PhishIn {
	return &PhishIn{client: newClient(PhishInBaseURL, config)}
}

type phishInTrack struct {
	Title string `json:"title"`
	// Duration is in milliseconds.
	Duration int `json:"duration"`
}

type phishInShow struct {
	Date      string         `json:"date"`
	VenueName string         `json:"venue_name"`
	Tracks    []phishInTrack `json:"tracks"`
}

type phishInShowsPage struct {
	Shows       []phishInShow `json:"shows"`
	TotalPages  int           `json:"total_pages"`
	CurrentPage int           `json:"current_page"`
}

// TourTrackDurations returns every recorded track of the tour.
func (p *PhishIn) TourTrackDurations(ctx context.Context, tourName string) ([]stats.TrackPerformance, error) {
	var shows []phishInShow
	for page := 1; ; page++ {
		query := url.Values{
			"tour_name": {tourName},
			"per_page":  {strconv.Itoa(phishInPageSize)},
			"page":      {strconv.Itoa(page)},
		}
		var resp phishInShowsPage
		if err := p.client.getJSON(ctx, "phishin.shows", "/shows", query, &resp); err != nil {
			return nil, fmt.Errorf("listing shows of %q (page %d): %w", tourName, page, err)
		}
		shows = append(shows, resp.Shows...)

		p.client.logger.Debug("downloaded phish.in page", "page", page, "pages", resp.TotalPages)
		if page >= resp.TotalPages || len(resp.Shows) == 0 {
			break
		}
	}

	sort.SliceStable(shows, func(i, j int) bool { return shows[i].Date < shows[j].Date })
	runs := venueRuns(shows)

	var tracks []stats.TrackPerformance
	for i, show := range shows {
		performed, err := showTracks(show, runs[i])
		if err != nil {
			return nil, err
		}
		tracks = append(tracks, performed...)
	}
	return tracks, nil
}

// ShowTrackDurations returns the recorded tracks of a single show.
func (p *PhishIn) ShowTrackDurations(ctx context.Context, showDate time.Time) ([]stats.TrackPerformance, error) {
	date := showDate.Format(stats.DateFormat)
	var show phishInShow
	if err := p.client.getJSON(ctx, "phishin.show", "/shows/"+date, nil, &show); err != nil {
		return nil, fmt.Errorf("fetching show %s: %w", date, err)
	}
	return showTracks(show, nil)
}

func showTracks(show phishInShow, run *stats.VenueRun) ([]stats.TrackPerformance, error) {
	date, err := time.Parse(stats.DateFormat, show.Date)
	if err != nil {
		return nil, &TransportError{Endpoint: "phishin.shows", Err: fmt.Errorf("parsing show date: %w", err)}
	}

	tracks := make([]stats.TrackPerformance, 0, len(show.Tracks))
	for _, t := range show.Tracks {
		tracks = append(tracks, stats.TrackPerformance{
			SongName:        t.Title,
			DurationSeconds: (t.Duration + 500) / 1000,
			ShowDate:        date,
			Venue:           show.VenueName,
			VenueRun:        run,
		})
	}
	return tracks, nil
}

// venueRuns numbers consecutive shows at the same venue. Shows sorted by date
// are expected; one-night stays get no run.
func venueRuns(shows []phishInShow) []*stats.VenueRun {
	runs := make([]*stats.VenueRun, len(shows))
	for start := 0; start < len(shows); {
		end := start + 1
		for end < len(shows) && strings.EqualFold(shows[end].VenueName, shows[start].VenueName) {
			end++
		}

		if total := end - start; total > 1 {
			for i := start; i < end; i++ {
				night := i - start + 1
				runs[i] = &stats.VenueRun{
					NightNumber: night,
					TotalNights: total,
					DisplayText: fmt.Sprintf("N%d/%d", night, total),
				}
			}
		}
		start = end
	}
	return runs
}
