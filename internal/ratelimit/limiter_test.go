package ratelimit

import (
	"errors"
	"testing"
	"time"
)

func fixedClock(start time.Time) (*time.Time, func() time.Time) {
	now := start
	return &now, func() time.Time { return now }
}

func TestAllowUpToLimit(t *testing.T) {
	l := New(10, time.Minute)
	now, clock := fixedClock(time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC))
	l.now = clock

	for i := 0; i < 10; i++ {
		if err := l.Allow("10.0.0.1"); err != nil {
			t.Fatalf("request %d should be allowed, got %v", i+1, err)
		}
	}

	err := l.Allow("10.0.0.1")
	if !errors.Is(err, ErrLimitExceeded) {
		t.Fatalf("request 11 should be rejected, got %v", err)
	}

	// Still rejected inside the same window.
	*now = now.Add(30 * time.Second)
	if err := l.Allow("10.0.0.1"); !errors.Is(err, ErrLimitExceeded) {
		t.Fatalf("expected rejection within window, got %v", err)
	}
}

func TestWindowReset(t *testing.T) {
	l := New(2, time.Minute)
	now, clock := fixedClock(time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC))
	l.now = clock

	l.Allow("10.0.0.1")
	l.Allow("10.0.0.1")
	if err := l.Allow("10.0.0.1"); !errors.Is(err, ErrLimitExceeded) {
		t.Fatalf("expected rejection, got %v", err)
	}

	*now = now.Add(time.Minute + time.Millisecond)
	if err := l.Allow("10.0.0.1"); err != nil {
		t.Fatalf("expected fresh window to allow, got %v", err)
	}
}

func TestClientsAreIndependent(t *testing.T) {
	l := New(1, time.Minute)
	_, clock := fixedClock(time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC))
	l.now = clock

	if err := l.Allow("10.0.0.1"); err != nil {
		t.Fatalf("first client: %v", err)
	}
	if err := l.Allow("10.0.0.1"); !errors.Is(err, ErrLimitExceeded) {
		t.Fatalf("first client should be limited, got %v", err)
	}
	if err := l.Allow("10.0.0.2"); err != nil {
		t.Fatalf("second client should be unaffected, got %v", err)
	}
}

func TestSweepEvictsStaleCounters(t *testing.T) {
	l := New(10, time.Minute)
	now, clock := fixedClock(time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC))
	l.now = clock

	l.Allow("10.0.0.1")
	*now = now.Add(90 * time.Second)
	l.Allow("10.0.0.2")

	// First counter is 90s idle, inside the 2-window grace.
	l.sweep()
	if l.Size() != 2 {
		t.Fatalf("expected 2 counters after early sweep, got %d", l.Size())
	}

	*now = now.Add(time.Minute)
	l.sweep()
	if l.Size() != 1 {
		t.Fatalf("expected 1 counter after eviction, got %d", l.Size())
	}

	// An evicted client starts over with a fresh counter.
	if err := l.Allow("10.0.0.1"); err != nil {
		t.Fatalf("evicted client should be allowed again, got %v", err)
	}
}
