package sched

import (
	"context"
	"testing"
)

func TestAddRejectsInvalidCron(t *testing.T) {
	s := New()
	if err := s.Add("bad", "not a cron", func(ctx context.Context) error { return nil }); err == nil {
		t.Fatalf("expected error for invalid expression")
	}
}

func TestAddAcceptsValidCron(t *testing.T) {
	s := New()
	for _, expr := range []string{"0 8 * * *", "*/5 * * * *", "0 0 * * 1"} {
		if err := s.Add("job", expr, func(ctx context.Context) error { return nil }); err != nil {
			t.Fatalf("valid expression %q rejected: %v", expr, err)
		}
	}
	if len(s.jobs) != 3 {
		t.Fatalf("expected 3 registered jobs, got %d", len(s.jobs))
	}
}
