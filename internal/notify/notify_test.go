package notify

import (
	"errors"
	"strings"
	"testing"

	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/ademuri/tour-stats/internal/publish"
)

func testArtifact() publish.Artifact {
	return publish.Artifact{
		TourName:    "2025 Summer Tour",
		LastUpdated: "2025-07-19T12:30:00Z",
		LatestShow:  "2025-07-18",
		LongestSongs: []publish.LongestSong{
			{SongName: "What's Going Through Your Mind", DurationSeconds: 2544, ShowDate: "2025-07-20", Venue: "Alpine Valley Music Theatre"},
		},
		RarestSongs: []publish.RareSong{
			{SongName: "On Your Way Down", Gap: 522, TourDate: "2025-07-18", TourVenue: "United Center"},
		},
	}
}

func TestSummary(t *testing.T) {
	subject, plain, body := Summary(testArtifact())

	if subject != "Tour stats for 2025 Summer Tour through 2025-07-18" {
		t.Errorf("Unexpected subject %q", subject)
	}
	if !strings.Contains(plain, "1. What's Going Through Your Mind (42:24) - 2025-07-20, Alpine Valley Music Theatre") {
		t.Errorf("Plain body missing longest song:\n%s", plain)
	}
	if !strings.Contains(plain, "1. On Your Way Down (gap 522) - 2025-07-18, United Center") {
		t.Errorf("Plain body missing rarest song:\n%s", plain)
	}
	if !strings.Contains(body, "What&#39;s Going Through Your Mind") {
		t.Errorf("HTML body should escape song names:\n%s", body)
	}
}

func TestSummaryEmpty(t *testing.T) {
	a := testArtifact()
	a.LongestSongs = nil
	a.RarestSongs = nil

	_, plain, _ := Summary(a)
	if strings.Count(plain, "none") != 2 {
		t.Errorf("Expected both lists to read none:\n%s", plain)
	}
}

func TestSend(t *testing.T) {
	var sent *mail.SGMailV3
	m := &Mailer{From: "stats@example.com", send: func(msg *mail.SGMailV3) (int, error) {
		sent = msg
		return 202, nil
	}}

	if err := m.Send("fan@example.com", testArtifact()); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if sent == nil {
		t.Fatalf("Nothing was sent")
	}
	if sent.From.Address != "stats@example.com" {
		t.Errorf("Unexpected from %q", sent.From.Address)
	}
	if sent.Personalizations[0].To[0].Address != "fan@example.com" {
		t.Errorf("Unexpected to %q", sent.Personalizations[0].To[0].Address)
	}
}

func TestSendFailures(t *testing.T) {
	m := &Mailer{From: "stats@example.com", send: func(msg *mail.SGMailV3) (int, error) {
		return 401, nil
	}}
	if err := m.Send("fan@example.com", testArtifact()); err == nil {
		t.Errorf("Expected error for status 401")
	}

	m.send = func(msg *mail.SGMailV3) (int, error) {
		return 0, errors.New("dial tcp: timeout")
	}
	if err := m.Send("fan@example.com", testArtifact()); err == nil {
		t.Errorf("Expected error for transport failure")
	}
}

func TestFormatDuration(t *testing.T) {
	cases := map[int]string{
		59:   "0:59",
		2544: "42:24",
		3725: "1:02:05",
	}
	for in, want := range cases {
		if got := FormatDuration(in); got != want {
			t.Errorf("FormatDuration(%d) = %q, want %q", in, got, want)
		}
	}
}
