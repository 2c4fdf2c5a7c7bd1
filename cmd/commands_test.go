package cmd

import (
	"testing"
)

func TestCommands(t *testing.T) {
	want := map[string]bool{
		"generate":      false,
		"show":          false,
		"history":       false,
		"notify":        false,
		"check-sources": false,
	}
	for _, c := range rootCmd.Commands() {
		if _, ok := want[c.Name()]; ok {
			want[c.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("command %q is not registered", name)
		}
	}

	if generateCmd.Use != "generate [show-date]" {
		t.Errorf("expected use 'generate [show-date]', got %s", generateCmd.Use)
	}
	if err := generateCmd.Args(generateCmd, []string{"2025-07-18", "2025-07-19"}); err == nil {
		t.Errorf("generate should accept at most one argument")
	}
	if err := notifyCmd.Args(notifyCmd, []string{}); err == nil {
		t.Errorf("notify should require an address")
	}
}

func TestRootFlags(t *testing.T) {
	for _, name := range []string{"phishnet_api_key", "artist", "database", "output", "top_k", "request_interval", "verbose", "sendgrid_api_key", "from", "notify"} {
		if rootCmd.PersistentFlags().Lookup(name) == nil {
			t.Errorf("root flag %q is missing", name)
		}
	}

	if got := rootCmd.PersistentFlags().Lookup("artist").DefValue; got != "Phish" {
		t.Errorf("expected default artist Phish, got %s", got)
	}
	if got := rootCmd.PersistentFlags().Lookup("top_k").DefValue; got != "3" {
		t.Errorf("expected default top_k 3, got %s", got)
	}
}
