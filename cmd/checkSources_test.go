package cmd

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestCheckSources(t *testing.T) {
	catalog := summerCatalog(t)
	catalog.showTracks = catalog.tracks[:1]
	checker := sourceChecker{shows: catalog, tours: catalog, durations: catalog}

	var out bytes.Buffer
	if err := checker.check(context.Background(), &out, time.Now()); err != nil {
		t.Fatalf("check: %v\n%s", err, out.String())
	}
	for _, want := range []string{"2025-07-18", "2025 Summer Tour", "1 tracks"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("Output missing %q:\n%s", want, out.String())
		}
	}
}

func TestCheckSourcesFailures(t *testing.T) {
	catalog := summerCatalog(t)
	catalog.tourErr = errors.New("no setlist")
	checker := sourceChecker{shows: catalog, tours: catalog, durations: catalog}

	var out bytes.Buffer
	err := checker.check(context.Background(), &out, time.Now())
	if err == nil || !strings.Contains(err.Error(), "1 check(s) failed") {
		t.Errorf("Expected one failed check, got %v", err)
	}
	if !strings.Contains(out.String(), "no setlist") {
		t.Errorf("Output should include the failure:\n%s", out.String())
	}

	catalog.latestErr = errors.New("bad api key")
	catalog.latest = time.Time{}
	out.Reset()
	err = checker.check(context.Background(), &out, time.Now())
	if err == nil || !strings.Contains(err.Error(), "1 check(s) failed") {
		t.Errorf("Later checks should be skipped when the latest show is unknown, got %v", err)
	}
}
