package cmd

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ademuri/tour-stats/internal/publish"
	"github.com/ademuri/tour-stats/internal/stats"
)

func TestShowArtifact(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tour-stats.json")
	updated := time.Date(2025, 7, 19, 12, 0, 0, 0, time.UTC)
	w := publish.NewWriter(path)
	w.Now = func() time.Time { return updated }

	_, err := w.Publish(&stats.TourStatistics{
		TourName:   "2025 Summer Tour",
		LatestShow: day(t, "2025-07-20"),
		LongestSongs: []stats.TrackPerformance{
			{SongName: "What's Going Through Your Mind", DurationSeconds: 2544, ShowDate: day(t, "2025-07-20"), Venue: "Alpine Valley Music Theatre",
				VenueRun: &stats.VenueRun{NightNumber: 2, TotalNights: 3, DisplayText: "N2/3"}},
		},
		RarestSongs: []stats.RarestSong{
			{SongName: "Harpua", Gap: 1234, LastPlayed: "2017-08-06", TourDate: day(t, "2025-07-18"), TourVenue: "United Center"},
		},
	})
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}

	var out bytes.Buffer
	if err := showArtifact(&out, path, updated.Add(2*time.Hour)); err != nil {
		t.Fatalf("showArtifact: %v", err)
	}

	for _, want := range []string{"2025 Summer Tour through 2025-07-20", "2 hours ago", "42:24", "N2/3", "Harpua", "1,234", "2017-08-06"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("Output missing %q:\n%s", want, out.String())
		}
	}
}

func TestShowArtifactMissing(t *testing.T) {
	var out bytes.Buffer
	err := showArtifact(&out, filepath.Join(t.TempDir(), "missing.json"), time.Now())
	if err == nil {
		t.Fatalf("Expected error for a missing artifact")
	}
}
