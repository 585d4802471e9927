package setup

import (
	"context"
)

// Step is one declarative provisioning action.
type Step struct {
	// Key identifies the step in progress messages.
	Key string

	// Name is the human readable label.
	Name string

	// Satisfied reports whether the step's work has already been done.
	// A satisfied step is skipped but still credits its weight. May be
	// nil, in which case the action always runs.
	Satisfied func(ctx context.Context) bool

	// Action performs the actual work.
	Action func(ctx context.Context) error

	// Critical aborts the remaining run if the step exhausts its
	// attempts. Non-critical steps record a warning and the run
	// continues.
	Critical bool

	// Attempts is the total number of tries, i.e. the first attempt plus
	// Attempts-1 retries. Values below 1 mean a single attempt.
	Attempts int

	// Weight is the step's share of the overall progress.
	Weight int

	// Hint is remediation text appended to the failure reason when the
	// step exhausts its attempts, e.g. "requires a package manager,
	// install manually". Optional.
	Hint string
}
