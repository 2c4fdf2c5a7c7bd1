package stats

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errUpstream = errors.New("upstream unavailable")

type fakeCatalog struct {
	tour        Tour
	tourErr     error
	tracks      []TrackPerformance
	tracksErr   error
	showTracks  []TrackPerformance
	showErr     error
	shows       []TourShow
	showsErr    error
	showCalls   int
	gotThrough  time.Time
	gotTourName string
}

func (f *fakeCatalog) ResolveTour(ctx context.Context, showDate time.Time) (Tour, error) {
	return f.tour, f.tourErr
}

func (f *fakeCatalog) TourTrackDurations(ctx context.Context, tourName string) ([]TrackPerformance, error) {
	return f.tracks, f.tracksErr
}

func (f *fakeCatalog) ShowTrackDurations(ctx context.Context, showDate time.Time) ([]TrackPerformance, error) {
	f.showCalls++
	return f.showTracks, f.showErr
}

func (f *fakeCatalog) TourShowsWithGaps(ctx context.Context, tourName string, throughDate time.Time) ([]TourShow, error) {
	f.gotTourName = tourName
	f.gotThrough = throughDate
	return f.shows, f.showsErr
}

func newAggregator(f *fakeCatalog) *Aggregator {
	return &Aggregator{Tours: f, Durations: f, Gaps: f}
}

func summerTour(t *testing.T) *fakeCatalog {
	return &fakeCatalog{
		tour: Tour{ID: "199", Name: "2025 Summer Tour"},
		tracks: []TrackPerformance{
			{SongName: "Sand", DurationSeconds: 2383},
			{SongName: "What's Going Through Your Mind", DurationSeconds: 2544},
			{SongName: "Tweezer", DurationSeconds: 1383},
			{SongName: "Down with Disease", DurationSeconds: 2048},
		},
		showTracks: []TrackPerformance{
			{SongName: "Chalk Dust Torture", DurationSeconds: 1100},
		},
		shows: []TourShow{
			{ShowDate: day(t, "2025-06-24"), Venue: "Bethel Woods Center for the Arts", SongGaps: gaps(ShowGapObservation{SongName: "Paul and Silas", Gap: 323})},
			{ShowDate: day(t, "2025-07-18"), Venue: "United Center", SongGaps: gaps(ShowGapObservation{SongName: "On Your Way Down", Gap: 522})},
		},
	}
}

func TestAggregate(t *testing.T) {
	f := summerTour(t)
	latest := day(t, "2025-07-18")

	got, err := newAggregator(f).Aggregate(context.Background(), latest)
	require.NoError(t, err)

	assert.Equal(t, "2025 Summer Tour", got.TourName)
	assert.Equal(t, latest, got.LatestShow)
	assert.False(t, got.Degraded)
	assert.True(t, got.LastUpdated.IsZero())

	require.Len(t, got.LongestSongs, 3)
	assert.Equal(t, "What's Going Through Your Mind", got.LongestSongs[0].SongName)
	assert.Equal(t, "Sand", got.LongestSongs[1].SongName)
	assert.Equal(t, "Down with Disease", got.LongestSongs[2].SongName)

	require.Len(t, got.RarestSongs, 2)
	assert.Equal(t, "On Your Way Down", got.RarestSongs[0].SongName)

	assert.Equal(t, "2025 Summer Tour", f.gotTourName)
	assert.Equal(t, latest, f.gotThrough)
	assert.Zero(t, f.showCalls)
}

func TestAggregateTopK(t *testing.T) {
	f := summerTour(t)
	a := newAggregator(f)
	a.TopK = 1

	got, err := a.Aggregate(context.Background(), day(t, "2025-07-18"))
	require.NoError(t, err)
	assert.Len(t, got.LongestSongs, 1)
	assert.Len(t, got.RarestSongs, 1)
}

func TestAggregateDurationsFallback(t *testing.T) {
	f := summerTour(t)
	f.tracksErr = errUpstream

	got, err := newAggregator(f).Aggregate(context.Background(), day(t, "2025-07-18"))
	require.NoError(t, err)

	assert.True(t, got.Degraded)
	assert.Equal(t, 1, f.showCalls)
	require.Len(t, got.LongestSongs, 1)
	assert.Equal(t, "Chalk Dust Torture", got.LongestSongs[0].SongName)
	assert.Len(t, got.RarestSongs, 2)
}

func TestAggregateGapsFailure(t *testing.T) {
	f := summerTour(t)
	f.showsErr = errUpstream

	got, err := newAggregator(f).Aggregate(context.Background(), day(t, "2025-07-18"))
	require.NoError(t, err)

	assert.True(t, got.Degraded)
	assert.NotNil(t, got.RarestSongs)
	assert.Empty(t, got.RarestSongs)
	assert.Len(t, got.LongestSongs, 3)
	assert.Zero(t, f.showCalls)
}

func TestAggregateTourUnresolved(t *testing.T) {
	f := summerTour(t)
	f.tourErr = errUpstream

	got, err := newAggregator(f).Aggregate(context.Background(), day(t, "2025-07-18"))
	require.NoError(t, err)

	assert.Equal(t, UnknownTour, got.TourName)
	assert.True(t, got.Degraded)
	assert.Len(t, got.LongestSongs, 1)
	assert.Empty(t, got.RarestSongs)
	assert.Empty(t, f.gotTourName)
}

func TestAggregateFallbackFailure(t *testing.T) {
	f := summerTour(t)
	f.tracksErr = errUpstream
	f.showErr = errUpstream

	_, err := newAggregator(f).Aggregate(context.Background(), day(t, "2025-07-18"))
	assert.ErrorIs(t, err, errUpstream)
}

func TestAggregateRejectsUnorderedShows(t *testing.T) {
	f := summerTour(t)
	f.shows[0], f.shows[1] = f.shows[1], f.shows[0]

	_, err := newAggregator(f).Aggregate(context.Background(), day(t, "2025-07-18"))
	assert.ErrorIs(t, err, ErrNotChronological)
}

func TestAggregateCancelled(t *testing.T) {
	f := summerTour(t)
	f.tourErr = context.Canceled
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newAggregator(f).Aggregate(ctx, day(t, "2025-07-18"))
	assert.ErrorIs(t, err, context.Canceled)
}
