package health

import (
	"context"
	"errors"
	"testing"
	"time"
)

var errDown = errors.New("connection refused")

func TestTrackerDisconnectsAfterRetriesThenManualRetryConnects(t *testing.T) {
	tr := NewTracker(DefaultPolicy())
	if tr.Status != StatusChecking {
		t.Fatalf("expected checking on start, got %q", tr.Status)
	}

	for i := 0; i < 3; i++ {
		if !tr.Record(errDown) {
			t.Fatalf("expected retry after failure %d", i+1)
		}
		if tr.Status != StatusChecking {
			t.Fatalf("expected checking while retrying, got %q", tr.Status)
		}
	}
	if tr.Record(errDown) {
		t.Fatal("expected no retry after the fourth failure")
	}
	if tr.Status != StatusDisconnected {
		t.Fatalf("expected disconnected, got %q", tr.Status)
	}
	if tr.Attempts() != 4 {
		t.Fatalf("expected 4 attempts, got %d", tr.Attempts())
	}

	tr.BeginManual()
	if tr.Status != StatusChecking {
		t.Fatalf("expected checking during manual retry, got %q", tr.Status)
	}
	if tr.Record(nil) {
		t.Fatal("success should not ask for a retry")
	}
	if tr.Status != StatusConnected {
		t.Fatalf("expected connected, got %q", tr.Status)
	}
}

func TestTrackerManualRetryIsSingleProbe(t *testing.T) {
	tr := NewTracker(DefaultPolicy())
	tr.BeginManual()
	if tr.Record(errDown) {
		t.Fatal("manual retry must not schedule automatic retries")
	}
	if tr.Status != StatusDisconnected {
		t.Fatalf("expected disconnected, got %q", tr.Status)
	}
}

func TestWaitStopsOnFirstSuccess(t *testing.T) {
	calls := 0
	probe := func(context.Context) error {
		calls++
		if calls < 3 {
			return errDown
		}
		return nil
	}
	status, err := Wait(context.Background(), probe, Policy{Retries: 3, Delay: time.Millisecond})
	if err != nil || status != StatusConnected {
		t.Fatalf("expected connected, got %q err=%v", status, err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 probes, got %d", calls)
	}
}

func TestWaitGivesUpAfterRetries(t *testing.T) {
	calls := 0
	probe := func(context.Context) error {
		calls++
		return errDown
	}
	status, err := Wait(context.Background(), probe, Policy{Retries: 3, Delay: time.Millisecond})
	if status != StatusDisconnected || !errors.Is(err, errDown) {
		t.Fatalf("expected disconnected with last error, got %q err=%v", status, err)
	}
	if calls != 4 {
		t.Fatalf("expected 1 probe + 3 retries, got %d", calls)
	}
}

func TestTrackerFallsBackToDefaultDelay(t *testing.T) {
	tr := NewTracker(Policy{Retries: 1})
	if tr.Policy.Delay != DefaultPolicy().Delay {
		t.Fatalf("expected default delay %s, got %s", DefaultPolicy().Delay, tr.Policy.Delay)
	}
}
