package assistant

import (
	"strings"
	"testing"
	"time"
)

func TestSystemPromptIncludesDate(t *testing.T) {
	now := time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC)
	got := SystemPrompt("You are a test bot.", now)

	if !strings.HasPrefix(got, "You are a test bot.") {
		t.Fatalf("persona missing: %q", got)
	}
	if !strings.Contains(got, "2026-08-30") {
		t.Fatalf("date missing: %q", got)
	}
}

func TestSystemPromptFallsBackToDefaultPersona(t *testing.T) {
	got := SystemPrompt("  ", time.Now())
	if !strings.Contains(got, "Gavrila") {
		t.Fatalf("default persona not applied: %q", got)
	}
}
