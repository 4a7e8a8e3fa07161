package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.DBDriver != "sqlite" {
		t.Fatalf("default driver = %q", cfg.DBDriver)
	}
	if cfg.HistoryWindow != 30 {
		t.Fatalf("default window = %d", cfg.HistoryWindow)
	}
	if cfg.RetentionDays != 30 {
		t.Fatalf("default retention = %d", cfg.RetentionDays)
	}
	if cfg.MaxTokens != 999 {
		t.Fatalf("default max tokens = %d", cfg.MaxTokens)
	}
}

func TestEnvJSONOverrides(t *testing.T) {
	t.Setenv("TEAM_IDS", `{"real":541,"lfc":40}`)
	t.Setenv("KEYWORD_TRIGGERS", `{"ping?":["pong","yep"]}`)
	t.Setenv("AI_TEMPERATURE", "0.7")

	cfg := Load()

	if cfg.TeamIDs["real"] != 541 || cfg.TeamIDs["lfc"] != 40 {
		t.Fatalf("team ids not parsed: %+v", cfg.TeamIDs)
	}
	if got := cfg.Triggers["ping?"]; len(got) != 2 || got[0] != "pong" {
		t.Fatalf("triggers not parsed: %+v", cfg.Triggers)
	}
	if cfg.Temperature != 0.7 {
		t.Fatalf("temperature = %v", cfg.Temperature)
	}
}

func TestEnvJSONMalformedFallsBack(t *testing.T) {
	t.Setenv("TEAM_IDS", `{broken`)

	cfg := Load()
	if len(cfg.TeamIDs) != 0 {
		t.Fatalf("malformed json should yield default, got %+v", cfg.TeamIDs)
	}
}
