// Package setup sequences the dependent, fallible provisioning steps that
// prepare a machine for the automation runtime. Failing steps are retried
// with exponential backoff, non-critical failures are tolerated, and all
// progress is observable through the terminal like any other tracked
// operation.
package setup

import (
	"time"
)

// Policy maps a retry attempt to the delay inserted before it. Attempts are
// counted from 1 for the first retry, the original attempt is not delayed.
type Policy interface {
	Delay(attempt int) time.Duration
}

type exponentialPolicy struct {
	base    time.Duration
	ceiling time.Duration
}

// NewExponentialPolicy returns a policy that doubles the base delay per
// attempt, capped at ceiling.
func NewExponentialPolicy(base, ceiling time.Duration) Policy {
	if base <= 0 {
		base = time.Second
	}

	if ceiling < base {
		ceiling = base
	}

	return &exponentialPolicy{
		base:    base,
		ceiling: ceiling,
	}
}

// NewDefaultPolicy returns the default policy of 1 second base, doubling
// per attempt, capped at 5 seconds.
func NewDefaultPolicy() Policy {
	return NewExponentialPolicy(time.Second, 5*time.Second)
}

func (p *exponentialPolicy) Delay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}

	// Past 32 doublings the shift would overflow, the ceiling applies
	// long before that anyway.
	if attempt > 32 {
		return p.ceiling
	}

	delay := p.base << (attempt - 1)

	if delay <= 0 || delay > p.ceiling {
		delay = p.ceiling
	}

	return delay
}
