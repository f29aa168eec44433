package testutil

import (
	"sync"
	"time"
)

// StepClock is a deterministic wall clock for tests.
//
// Every call to Now advances the clock by Step, so a measured interval
// between two consecutive calls is always exactly Step. This keeps runtime
// columns in golden files stable.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type StepClock struct {
	mu   sync.Mutex
	now  time.Time
	Step time.Duration
}

// NewStepClock creates a clock starting at the Unix epoch.
func NewStepClock(step time.Duration) *StepClock {
	return &StepClock{now: time.Unix(0, 0).UTC(), Step: step}
}

// Now returns the current time and advances the clock by Step.
func (c *StepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.now
	c.now = c.now.Add(c.Step)
	return t
}

// Reset rewinds the clock to the Unix epoch.
func (c *StepClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = time.Unix(0, 0).UTC()
}

// FixedRunID returns the same run identifier every time.
//
// If id is empty, Generate returns "test-run-default".
type FixedRunID string

// Generate implements batch.RunIDGenerator.
func (f FixedRunID) Generate() string {
	if f == "" {
		return "test-run-default"
	}
	return string(f)
}
