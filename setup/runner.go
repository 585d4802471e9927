package setup

import (
	"context"
	"fmt"
	"time"
)

// Runner executes one fallible action with a bounded number of retries.
// Human readable progress is reported through the onMessage callback.
type Runner struct {
	policy Policy
}

// NewRunner returns a runner using the given backoff policy. If policy is
// nil, the default policy is used.
func NewRunner(policy Policy) *Runner {
	if policy == nil {
		policy = NewDefaultPolicy()
	}

	return &Runner{
		policy: policy,
	}
}

// Run invokes action up to attempts times. Before each retry the backoff
// delay is awaited cooperatively, i.e. the sleep is bound to the context and
// doesn't block anything but this run. On success the result of that attempt
// counts and earlier failures are discarded. On exhaustion the last observed
// failure is returned, not the first.
func (r *Runner) Run(ctx context.Context, name string, attempts int, action func(ctx context.Context) error, onMessage func(message string)) error {
	if attempts < 1 {
		attempts = 1
	}

	if onMessage == nil {
		onMessage = func(string) {}
	}

	var lastErr error

	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			retry := attempt - 1
			delay := r.policy.Delay(retry)

			onMessage(fmt.Sprintf("%s: retry %d/%d in %ds", name, retry, attempts-1, int(delay.Seconds())))

			timer := time.NewTimer(delay)

			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}

			onMessage(fmt.Sprintf("%s: retrying %d/%d", name, retry, attempts-1))
		}

		if err := action(ctx); err != nil {
			lastErr = err
			continue
		}

		return nil
	}

	return lastErr
}
