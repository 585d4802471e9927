package terminal

import (
	"time"
)

// Status is the lifecycle state of a tracked operation. The expected
// transitions are running to one of the terminal states, but the registry
// trusts its callers and doesn't enforce a state graph.
type Status string

const (
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

func (s Status) String() string {
	return string(s)
}

// Process is a tracked background operation. Completed and failed entries
// stay in the registry for the session so they remain visible in history
// views, until they are explicitly removed.
type Process struct {
	ID         string
	Name       string
	Source     Source
	Status     Status
	StartedAt  time.Time
	FinishedAt time.Time // zero while running
	ExitCode   *int      // nil while running
	HasError   bool
}

// ProcessUpdate is a partial update of a tracked operation. Only non-nil
// fields are applied.
type ProcessUpdate struct {
	Status   *Status
	ExitCode *int
	HasError *bool
}

// registry holds the tracked operations. It is not safe for concurrent use,
// the owning terminal serializes access.
type registry struct {
	procs map[string]*Process
}

func newRegistry() *registry {
	return &registry{
		procs: make(map[string]*Process),
	}
}

// register adds an operation with status running. A prior entry with the
// same id is replaced, this tolerates caller restarts.
func (r *registry) register(id, name string, source Source) Process {
	p := &Process{
		ID:        id,
		Name:      name,
		Source:    source,
		Status:    StatusRunning,
		StartedAt: time.Now(),
	}

	r.procs[id] = p

	return *p
}

// update applies the given fields to the entry with the id. Updating an
// unknown id is not an error, it tolerates races between an operation's
// completion and its de-registration.
func (r *registry) update(id string, update ProcessUpdate) (Process, bool) {
	p, ok := r.procs[id]
	if !ok {
		return Process{}, false
	}

	if update.Status != nil {
		p.Status = *update.Status

		if p.Status != StatusRunning && p.FinishedAt.IsZero() {
			p.FinishedAt = time.Now()
		}
	}

	if update.ExitCode != nil {
		code := *update.ExitCode
		p.ExitCode = &code
	}

	if update.HasError != nil {
		p.HasError = *update.HasError
	}

	return *p, true
}

func (r *registry) remove(id string) bool {
	_, ok := r.procs[id]

	delete(r.procs, id)

	return ok
}

func (r *registry) list() []Process {
	procs := make([]Process, 0, len(r.procs))

	for _, p := range r.procs {
		procs = append(procs, *p)
	}

	return procs
}

func (r *registry) running() int {
	n := 0

	for _, p := range r.procs {
		if p.Status == StatusRunning {
			n++
		}
	}

	return n
}
