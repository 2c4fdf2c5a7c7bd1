package source

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ademuri/tour-stats/internal/stats"
	"github.com/ademuri/tour-stats/internal/store"
)

// ShowLister lists the dates of a tour's shows.
type ShowLister interface {
	TourShowDates(ctx context.Context, tourName string, through time.Time) ([]time.Time, error)
}

// GapFetcher is a ShowLister that can also fetch one show's gaps.
type GapFetcher interface {
	ShowLister
	ShowGaps(ctx context.Context, showDate time.Time) (stats.TourShow, error)
}

type showGapsFunc func(ctx context.Context, showDate time.Time) (stats.TourShow, error)

// tourShowsWithGaps fetches shows sequentially in tour order. Shows without a
// setlist yet are skipped.
func tourShowsWithGaps(ctx context.Context, lister ShowLister, fetch showGapsFunc, tourName string, through time.Time, logger *slog.Logger) ([]stats.TourShow, error) {
	dates, err := lister.TourShowDates(ctx, tourName, through)
	if err != nil {
		return nil, fmt.Errorf("listing shows of %q: %w", tourName, err)
	}

	shows := make([]stats.TourShow, 0, len(dates))
	for i, d := range dates {
		logger.Debug("fetching show gaps", "show", d.Format(stats.DateFormat), "index", i+1, "total", len(dates))
		show, err := fetch(ctx, d)
		if errors.Is(err, ErrNotFound) {
			logger.Info("show has no setlist, skipping", "show", d.Format(stats.DateFormat))
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("fetching gaps for %s: %w", d.Format(stats.DateFormat), err)
		}
		shows = append(shows, show)
	}
	return shows, nil
}

// CachedGapSource serves shows from the store when it can. A show is only
// cached once a later show exists; the most recent show is always fetched
// and never stored, since its setlist may still be being entered.
type CachedGapSource struct {
	Upstream GapFetcher
	Store    *store.Store
	Logger   *slog.Logger
}

func (c *CachedGapSource) TourShowsWithGaps(ctx context.Context, tourName string, through time.Time) ([]stats.TourShow, error) {
	logger := c.Logger
	if logger == nil {
		logger = slog.Default()
	}

	fetch := func(ctx context.Context, showDate time.Time) (stats.TourShow, error) {
		date := showDate.Format(stats.DateFormat)
		if showDate.Before(through) {
			cached, ok, err := c.Store.GetShowGaps(date)
			if err != nil {
				return stats.TourShow{}, err
			}
			if ok {
				return fromCache(showDate, cached), nil
			}
		}

		show, err := c.Upstream.ShowGaps(ctx, showDate)
		if err != nil {
			return stats.TourShow{}, err
		}
		if !showDate.Before(through) {
			// Not final until a later show has been played.
			return show, nil
		}
		if err := c.Store.SaveShowGaps(toCache(tourName, show)); err != nil {
			return stats.TourShow{}, fmt.Errorf("caching %s: %w", date, err)
		}
		return show, nil
	}

	return tourShowsWithGaps(ctx, c.Upstream, fetch, tourName, through, logger)
}

func toCache(tourName string, show stats.TourShow) store.ShowGaps {
	cached := store.ShowGaps{
		Date:  show.ShowDate.Format(stats.DateFormat),
		Tour:  tourName,
		Venue: show.Venue,
	}
	for _, g := range show.SongGaps {
		cached.Songs = append(cached.Songs, store.SongGap{
			Song:       g.SongName,
			Gap:        g.Gap,
			LastPlayed: g.LastPlayed,
		})
	}
	return cached
}

func fromCache(showDate time.Time, cached store.ShowGaps) stats.TourShow {
	show := stats.TourShow{ShowDate: showDate, Venue: cached.Venue}
	for _, g := range cached.Songs {
		show.SongGaps = append(show.SongGaps, stats.ShowGapObservation{
			SongName:   g.Song,
			Gap:        g.Gap,
			LastPlayed: g.LastPlayed,
		})
	}
	return show
}
