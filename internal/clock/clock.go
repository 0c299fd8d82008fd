// Package clock provides an abstraction for time operations to improve testability.
// The task store stamps created_at/started_at/completed_at through a Clock so
// tests can control ordering without sleeping.
package clock

import (
	"sync"
	"time"
)

// Clock is an interface for time operations.
type Clock interface {
	// Now returns the current time.
	Now() time.Time
}

// RealClock implements Clock using the actual system time.
type RealClock struct{}

// Now returns the current time from the system clock in UTC.
func (RealClock) Now() time.Time {
	return time.Now().UTC()
}

// StepClock returns a fixed start time that advances by Step on every call.
// It is safe for concurrent use.
type StepClock struct {
	mu   sync.Mutex
	next time.Time
	step time.Duration
}

// NewStepClock creates a StepClock starting at start.
func NewStepClock(start time.Time, step time.Duration) *StepClock {
	return &StepClock{next: start, step: step}
}

// Now returns the current time and advances the clock.
func (c *StepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.next
	c.next = c.next.Add(c.step)
	return now
}

var (
	_ Clock = RealClock{}
	_ Clock = (*StepClock)(nil)
)
