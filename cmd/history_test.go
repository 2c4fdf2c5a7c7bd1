package cmd

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ademuri/tour-stats/internal/store"
)

func TestPrintHistory(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "tour-stats.db")
	db, err := store.New(dbPath)
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}

	published := store.NewRun(time.Date(2025, 7, 19, 12, 0, 0, 0, time.UTC))
	published.LatestShow = "2025-07-18"
	published.Tour = "2025 Summer Tour"
	published.Published = true
	published.ContentHash = "abc"

	failed := store.NewRun(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	failed.LatestShow = "2025-05-31"
	failed.Error = "computing statistics: upstream unavailable"

	for _, r := range []store.Run{published, failed} {
		if err := db.RecordRun(r); err != nil {
			t.Fatalf("RecordRun: %v", err)
		}
	}
	db.Close()

	var out bytes.Buffer
	if err := printHistory(&out, dbPath, time.Time{}, time.Time{}, 0); err != nil {
		t.Fatalf("printHistory: %v", err)
	}
	got := out.String()
	for _, want := range []string{"2025-07-18", "2025 Summer Tour", "upstream unavailable"} {
		if !strings.Contains(got, want) {
			t.Errorf("Output missing %q:\n%s", want, got)
		}
	}
	if strings.Index(got, "2025-07-18") > strings.Index(got, "2025-05-31") {
		t.Errorf("Runs should be listed newest first:\n%s", got)
	}

	start, end, err := parseDateRangeFromArgs([]string{"2025-07"})
	if err != nil {
		t.Fatalf("parseDateRangeFromArgs: %v", err)
	}
	out.Reset()
	if err := printHistory(&out, dbPath, start, end, 0); err != nil {
		t.Fatalf("printHistory: %v", err)
	}
	if strings.Contains(out.String(), "2025-05-31") {
		t.Errorf("June run should be filtered out:\n%s", out.String())
	}
}

func TestPrintHistoryEmpty(t *testing.T) {
	var out bytes.Buffer
	if err := printHistory(&out, filepath.Join(t.TempDir(), "tour-stats.db"), time.Time{}, time.Time{}, 0); err != nil {
		t.Fatalf("printHistory: %v", err)
	}
	if !strings.Contains(out.String(), "No runs recorded") {
		t.Errorf("Unexpected output: %s", out.String())
	}
}
