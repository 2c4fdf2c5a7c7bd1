package stats

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// TourResolver finds the tour a show belongs to.
type TourResolver interface {
	ResolveTour(ctx context.Context, showDate time.Time) (Tour, error)
}

// DurationSource provides measured track durations.
type DurationSource interface {
	// TourTrackDurations returns every performance of the tour.
	TourTrackDurations(ctx context.Context, tourName string) ([]TrackPerformance, error)

	// ShowTrackDurations returns the performances of a single show.
	ShowTrackDurations(ctx context.Context, showDate time.Time) ([]TrackPerformance, error)
}

// GapSource provides per-show gap observations.
type GapSource interface {
	// TourShowsWithGaps returns the tour's shows up to and including
	// throughDate, earliest first.
	TourShowsWithGaps(ctx context.Context, tourName string, throughDate time.Time) ([]TourShow, error)
}

// Aggregator computes TourStatistics from the external catalogs.
type Aggregator struct {
	Tours     TourResolver
	Durations DurationSource
	Gaps      GapSource

	// TopK defaults to DefaultTopK.
	TopK   int
	Logger *slog.Logger
}

// Aggregate computes the statistics for the tour containing latestShow.
//
// Failing upstream fetches degrade the result instead of failing it: longest
// songs fall back to the latest show's setlist and rarest songs come back
// empty. An error is returned only when the fallback fails too, when the
// context is done, or when the gap source breaks its ordering contract.
func (a *Aggregator) Aggregate(ctx context.Context, latestShow time.Time) (*TourStatistics, error) {
	k := a.TopK
	if k == 0 {
		k = DefaultTopK
	}
	log := a.logger().With("latest_show", latestShow.Format(DateFormat))

	result := &TourStatistics{
		TourName:     UnknownTour,
		LatestShow:   latestShow,
		LongestSongs: []TrackPerformance{},
		RarestSongs:  []RarestSong{},
	}

	tour, err := a.Tours.ResolveTour(ctx, latestShow)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		log.Warn("resolving tour failed, using the latest show only", "error", err)
		result.Degraded = true
		if err := a.fallbackLongest(ctx, result, k, log); err != nil {
			return nil, err
		}
		return result, nil
	}
	result.TourName = tour.Name
	log = log.With("tour", tour.Name)

	var (
		tracks    []TrackPerformance
		tracksErr error
		shows     []TourShow
		showsErr  error
	)
	// The two catalogs are separate services, so they are queried side by
	// side. Each fetch keeps its own error; neither cancels the other.
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		tracks, tracksErr = a.Durations.TourTrackDurations(ctx, tour.Name)
	}()
	go func() {
		defer wg.Done()
		shows, showsErr = a.Gaps.TourShowsWithGaps(ctx, tour.Name, latestShow)
	}()
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if showsErr != nil {
		log.Warn("fetching tour gaps failed, publishing no rarest songs", "error", showsErr)
		result.Degraded = true
	} else {
		if err := CheckChronological(shows); err != nil {
			return nil, fmt.Errorf("tour shows for %q: %w", tour.Name, err)
		}
		result.RarestSongs = SelectRarest(shows, k)
		log.Debug("selected rarest songs", "shows", len(shows), "selected", len(result.RarestSongs))
	}

	if tracksErr != nil {
		log.Warn("fetching tour durations failed, using the latest show only", "error", tracksErr)
		result.Degraded = true
		if err := a.fallbackLongest(ctx, result, k, log); err != nil {
			return nil, err
		}
	} else {
		result.LongestSongs = SelectLongest(tracks, k)
		log.Debug("selected longest songs", "tracks", len(tracks), "selected", len(result.LongestSongs))
	}

	return result, nil
}

func (a *Aggregator) fallbackLongest(ctx context.Context, result *TourStatistics, k int, log *slog.Logger) error {
	tracks, err := a.Durations.ShowTrackDurations(ctx, result.LatestShow)
	if err != nil {
		return fmt.Errorf("fetching durations for %s: %w", result.LatestShow.Format(DateFormat), err)
	}
	result.LongestSongs = SelectLongest(tracks, k)
	log.Debug("selected longest songs from latest show", "tracks", len(tracks), "selected", len(result.LongestSongs))
	return nil
}

func (a *Aggregator) logger() *slog.Logger {
	if a.Logger != nil {
		return a.Logger
	}
	return slog.Default()
}
