package health

import (
	"context"
	"time"
)

type Status string

const (
	StatusChecking     Status = "checking"
	StatusConnected    Status = "connected"
	StatusDisconnected Status = "disconnected"
)

// Policy is the automatic retry schedule after a failed probe.
type Policy struct {
	Retries int
	Delay   time.Duration
}

func DefaultPolicy() Policy {
	return Policy{Retries: 3, Delay: 2 * time.Second}
}

// Tracker folds probe outcomes into a connection status. It does no I/O; callers
// run the probe and schedule the retry it asks for.
type Tracker struct {
	Policy   Policy
	Status   Status
	failures int
	budget   int
}

func NewTracker(policy Policy) *Tracker {
	if policy.Retries < 0 {
		policy.Retries = 0
	}
	if policy.Delay <= 0 {
		policy.Delay = DefaultPolicy().Delay
	}
	return &Tracker{Policy: policy, Status: StatusChecking, budget: policy.Retries}
}

// Begin starts a fresh check with the full retry budget.
func (t *Tracker) Begin() {
	t.Status = StatusChecking
	t.failures = 0
	t.budget = t.Policy.Retries
}

// BeginManual starts a user-triggered check: a single probe with no automatic retry.
func (t *Tracker) BeginManual() {
	t.Status = StatusChecking
	t.failures = 0
	t.budget = 0
}

// Record applies one probe result. When retry is true the caller should probe again
// after the policy delay; otherwise Status is final.
func (t *Tracker) Record(err error) (retry bool) {
	if err == nil {
		t.Status = StatusConnected
		t.failures = 0
		return false
	}
	t.failures++
	if t.failures <= t.budget {
		t.Status = StatusChecking
		return true
	}
	t.Status = StatusDisconnected
	return false
}

// Attempts returns the number of failed probes in the current check.
func (t *Tracker) Attempts() int {
	return t.failures
}

// Probe performs one health request.
type Probe func(ctx context.Context) error

// Wait runs a probe under policy until it succeeds or the retries are exhausted.
// It returns the final status and the last probe error.
func Wait(ctx context.Context, probe Probe, policy Policy) (Status, error) {
	tracker := NewTracker(policy)
	for {
		err := probe(ctx)
		if !tracker.Record(err) {
			return tracker.Status, err
		}
		timer := time.NewTimer(tracker.Policy.Delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return StatusDisconnected, ctx.Err()
		case <-timer.C:
		}
	}
}
