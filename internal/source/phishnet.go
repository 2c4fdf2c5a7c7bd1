package source

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ademuri/tour-stats/internal/stats"
)

const PhishNetBaseURL = "https://api.phish.net/v5"

// PhishNet reads setlists, gaps and tour metadata from the phish.net API.
type PhishNet struct {
	client *client
	apiKey string
	artist string
}

func NewPhishNet(apiKey, artist string, config Config) *PhishNet {
	return &PhishNet{
		client: newClient(PhishNetBaseURL, config),
		apiKey: apiKey,
		artist: artist,
	}
}

type phishNetResponse[T any] struct {
	Error        bool   `json:"error"`
	ErrorMessage string `json:"error_message"`
	Data         []T    `json:"data"`
}

type setlistEntry struct {
	ShowDate   string   `json:"showdate"`
	Song       string   `json:"song"`
	Gap        looseInt `json:"gap"`
	TourID     looseInt `json:"tourid"`
	TourName   string   `json:"tourname"`
	Venue      string   `json:"venue"`
	City       string   `json:"city"`
	State      string   `json:"state"`
	ArtistName string   `json:"artist_name"`
	LastPlayed string   `json:"lastplayed"`
}

type showEntry struct {
	ShowDate         string   `json:"showdate"`
	TourName         string   `json:"tourname"`
	Venue            string   `json:"venue"`
	ArtistName       string   `json:"artist_name"`
	ExcludeFromStats looseInt `json:"exclude_from_stats"`
}

// looseInt decodes an integer sent either as a JSON number or a string.
type looseInt struct {
	Value int
	Valid bool
}

func (l *looseInt) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*l = looseInt{}
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("parsing integer %q: %w", s, err)
	}
	*l = looseInt{Value: n, Valid: true}
	return nil
}

func (p *PhishNet) get(ctx context.Context, endpoint, path string, out any) error {
	return p.client.getJSON(ctx, endpoint, path, url.Values{"apikey": {p.apiKey}}, out)
}

func (p *PhishNet) setlist(ctx context.Context, showDate time.Time) ([]setlistEntry, error) {
	var resp phishNetResponse[setlistEntry]
	date := showDate.Format(stats.DateFormat)
	if err := p.get(ctx, "phishnet.setlist", "/setlists/showdate/"+date+".json", &resp); err != nil {
		return nil, err
	}
	if resp.Error {
		return nil, &TransportError{Endpoint: "phishnet.setlist", Err: fmt.Errorf("api error: %s", resp.ErrorMessage)}
	}

	var entries []setlistEntry
	for _, e := range resp.Data {
		if p.isArtist(e.ArtistName) {
			entries = append(entries, e)
		}
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("setlist for %s: %w", date, ErrNotFound)
	}
	return entries, nil
}

func (p *PhishNet) showsInYear(ctx context.Context, year int) ([]showEntry, error) {
	var resp phishNetResponse[showEntry]
	if err := p.get(ctx, "phishnet.shows", fmt.Sprintf("/shows/showyear/%d.json", year), &resp); err != nil {
		return nil, err
	}
	if resp.Error {
		return nil, &TransportError{Endpoint: "phishnet.shows", Err: fmt.Errorf("api error: %s", resp.ErrorMessage)}
	}

	var shows []showEntry
	for _, s := range resp.Data {
		if p.isArtist(s.ArtistName) && s.ExcludeFromStats.Value == 0 {
			shows = append(shows, s)
		}
	}
	return shows, nil
}

// showsAround returns the artist's shows in the year of date and the year
// before it, so tours that cross New Year are complete.
func (p *PhishNet) showsAround(ctx context.Context, date time.Time) ([]showEntry, error) {
	years := []int{date.Year() - 1, date.Year()}
	perYear := make([][]showEntry, len(years))

	g, ctx := errgroup.WithContext(ctx)
	for i, year := range years {
		g.Go(func() error {
			shows, err := p.showsInYear(ctx, year)
			if err != nil {
				return fmt.Errorf("listing %d shows: %w", year, err)
			}
			perYear[i] = shows
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []showEntry
	for _, shows := range perYear {
		all = append(all, shows...)
	}
	return all, nil
}

func (p *PhishNet) isArtist(name string) bool {
	return p.artist == "" || strings.EqualFold(name, p.artist)
}

// ResolveTour names the tour the show belongs to.
func (p *PhishNet) ResolveTour(ctx context.Context, showDate time.Time) (stats.Tour, error) {
	entries, err := p.setlist(ctx, showDate)
	if err != nil {
		return stats.Tour{}, fmt.Errorf("resolving tour: %w", err)
	}
	first := entries[0]
	if first.TourName == "" {
		return stats.Tour{}, fmt.Errorf("resolving tour for %s: %w", showDate.Format(stats.DateFormat), ErrNotFound)
	}

	tour := stats.Tour{Name: first.TourName}
	if first.TourID.Valid {
		tour.ID = strconv.Itoa(first.TourID.Value)
	}
	return tour, nil
}

// LatestShow returns the date of the most recent show on or before day.
func (p *PhishNet) LatestShow(ctx context.Context, day time.Time) (time.Time, error) {
	shows, err := p.showsAround(ctx, day)
	if err != nil {
		return time.Time{}, err
	}

	var latest time.Time
	for _, s := range shows {
		d, err := time.Parse(stats.DateFormat, s.ShowDate)
		if err != nil || d.After(day) {
			continue
		}
		if d.After(latest) {
			latest = d
		}
	}
	if latest.IsZero() {
		return time.Time{}, fmt.Errorf("no show on or before %s: %w", day.Format(stats.DateFormat), ErrNotFound)
	}
	return latest, nil
}

// TourShowDates lists the tour's show dates through the given date, earliest
// first.
func (p *PhishNet) TourShowDates(ctx context.Context, tourName string, through time.Time) ([]time.Time, error) {
	shows, err := p.showsAround(ctx, through)
	if err != nil {
		return nil, err
	}

	seen := make(map[time.Time]bool)
	var dates []time.Time
	for _, s := range shows {
		if s.TourName != tourName {
			continue
		}
		d, err := time.Parse(stats.DateFormat, s.ShowDate)
		if err != nil || d.After(through) || seen[d] {
			continue
		}
		seen[d] = true
		dates = append(dates, d)
	}

	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates, nil
}

// ShowGaps returns the gap observations of one show.
func (p *PhishNet) ShowGaps(ctx context.Context, showDate time.Time) (stats.TourShow, error) {
	entries, err := p.setlist(ctx, showDate)
	if err != nil {
		return stats.TourShow{}, err
	}

	show := stats.TourShow{ShowDate: showDate, Venue: entries[0].Venue}
	for _, e := range entries {
		gap := stats.MissingGap
		if e.Gap.Valid {
			gap = e.Gap.Value
		}
		show.SongGaps = append(show.SongGaps, stats.ShowGapObservation{
			SongName:   e.Song,
			Gap:        gap,
			LastPlayed: e.LastPlayed,
			TourVenue:  e.Venue,
		})
	}
	return show, nil
}

// TourShowsWithGaps fetches every show of the tour one after another.
func (p *PhishNet) TourShowsWithGaps(ctx context.Context, tourName string, through time.Time) ([]stats.TourShow, error) {
	return tourShowsWithGaps(ctx, p, p.ShowGaps, tourName, through, p.client.logger)
}
