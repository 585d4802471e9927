package setup

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/klever-desktop/core/log"
	"github.com/klever-desktop/core/terminal"
)

// State is the lifecycle of one orchestrator run.
type State string

const (
	StateIdle                  State = "idle"
	StateRunning               State = "running"
	StateSucceeded             State = "succeeded"
	StateAborted               State = "aborted"
	StateCompletedWithWarnings State = "completed-with-warnings"
)

func (s State) String() string {
	return string(s)
}

// Outcome is the result of one orchestrator run.
type Outcome struct {
	State    State
	Reason   string   // set when aborted
	Warnings []string // one entry per exhausted non-critical step
	Progress int      // final progress in percent
}

// ErrAlreadyRunning is returned when a run is requested while another run
// is still in flight. The request is a no-op.
var ErrAlreadyRunning = errors.New("a setup run is already in progress")

// Config is the configuration for creating a new orchestrator.
type Config struct {
	// Steps is the ordered list of provisioning steps.
	Steps []Step

	// Policy is the backoff policy for retries. If nil, the default
	// policy is used.
	Policy Policy

	// Terminal receives the run's progress lines and tracks the run as a
	// process. Required.
	Terminal terminal.Terminal

	// ProcessID is the id under which the run is tracked. Defaults to
	// "setup".
	ProcessID string

	// Name is the display name of the tracked run. Defaults to
	// "Environment setup".
	Name string

	// Logger is an instance of a logger. If it is nil, no logs will be
	// written.
	Logger log.Logger
}

// Orchestrator runs a fixed ordered list of steps. A run proceeds to a
// terminal state once started, there is no mid-run cancellation beyond host
// shutdown through the context.
type Orchestrator interface {
	// Run executes the steps in order and blocks until the run reached a
	// terminal state. Invoking Run while a run is in flight is a no-op
	// and returns ErrAlreadyRunning.
	Run(ctx context.Context) (Outcome, error)

	// State returns the state of the current or last run.
	State() State

	// Progress returns the overall progress in percent, monotonically
	// non-decreasing within a run.
	Progress() int
}

type orchestrator struct {
	steps     []Step
	runner    *Runner
	term      terminal.Terminal
	processID string
	name      string
	logger    log.Logger

	state    State
	progress int
	running  bool
	lock     sync.Mutex
}

// New returns an orchestrator implementing the Orchestrator interface. An
// error is returned if no terminal is provided.
func New(config Config) (Orchestrator, error) {
	o := &orchestrator{
		steps:     config.Steps,
		runner:    NewRunner(config.Policy),
		term:      config.Terminal,
		processID: config.ProcessID,
		name:      config.Name,
		logger:    config.Logger,
		state:     StateIdle,
	}

	if o.term == nil {
		return nil, fmt.Errorf("a terminal is required")
	}

	if len(o.processID) == 0 {
		o.processID = "setup"
	}

	if len(o.name) == 0 {
		o.name = "Environment setup"
	}

	if o.logger == nil {
		o.logger = log.New("Setup")
	}

	return o, nil
}

func (o *orchestrator) State() State {
	o.lock.Lock()
	defer o.lock.Unlock()

	return o.state
}

func (o *orchestrator) Progress() int {
	o.lock.Lock()
	defer o.lock.Unlock()

	return o.progress
}

func (o *orchestrator) Run(ctx context.Context) (Outcome, error) {
	o.lock.Lock()
	if o.running {
		o.lock.Unlock()
		return Outcome{}, ErrAlreadyRunning
	}

	o.running = true
	o.state = StateRunning
	o.progress = 0
	o.lock.Unlock()

	outcome := o.run(ctx)

	o.lock.Lock()
	o.running = false
	o.state = outcome.State
	o.lock.Unlock()

	return outcome, nil
}

func (o *orchestrator) run(ctx context.Context) Outcome {
	outcome := Outcome{}

	o.term.RegisterProcess(o.processID, o.name, terminal.SourceSetup)
	o.emit("setup started")

	o.logger.Info().WithField("steps", len(o.steps)).Log("Started")

	totalWeight := 0
	for _, step := range o.steps {
		totalWeight += step.Weight
	}

	credited := 0

	for _, step := range o.steps {
		if err := ctx.Err(); err != nil {
			outcome.State = StateAborted
			outcome.Reason = fmt.Sprintf("step %s: %s", step.Key, err)
			o.finishAborted(outcome.Reason)
			outcome.Progress = o.Progress()
			return outcome
		}

		if step.Satisfied != nil && step.Satisfied(ctx) {
			o.emit(fmt.Sprintf("step %s: already satisfied, skipping", step.Key))
			credited = o.credit(credited, step.Weight, totalWeight)
			continue
		}

		o.emit(fmt.Sprintf("step %s: %s", step.Key, step.Name))

		err := o.runner.Run(ctx, step.Key, step.Attempts, step.Action, o.emit)
		if err == nil {
			o.emit(fmt.Sprintf("step %s: done", step.Key))
			credited = o.credit(credited, step.Weight, totalWeight)
			continue
		}

		if step.Critical {
			reason := fmt.Sprintf("step %s failed: %s", step.Key, err)
			if len(step.Hint) != 0 {
				reason += " (" + step.Hint + ")"
			}

			o.emit(reason)
			o.finishAborted(reason)

			o.logger.Error().WithError(err).WithField("step", step.Key).Log("Aborted")

			outcome.State = StateAborted
			outcome.Reason = reason
			outcome.Progress = o.Progress()

			return outcome
		}

		warning := fmt.Sprintf("warning: step %s gave up after %d attempts: %s", step.Key, attemptCount(step.Attempts), err)

		o.emit(warning)
		o.logger.Warn().WithError(err).WithField("step", step.Key).Log("Step gave up")

		outcome.Warnings = append(outcome.Warnings, warning)
	}

	if len(outcome.Warnings) == 0 {
		outcome.State = StateSucceeded
		o.emit("setup succeeded")
	} else {
		outcome.State = StateCompletedWithWarnings
		o.emit(fmt.Sprintf("setup completed, %d step(s) gave up", len(outcome.Warnings)))
	}

	// The run record ends completed in both cases, only a critical step
	// failure marks it failed.
	status := terminal.StatusCompleted
	exitCode := 0
	hasError := false

	o.term.UpdateProcess(o.processID, terminal.ProcessUpdate{
		Status:   &status,
		ExitCode: &exitCode,
		HasError: &hasError,
	})

	o.logger.Info().WithField("state", outcome.State).Log("Finished")

	outcome.Progress = o.Progress()

	return outcome
}

// credit adds the step's weight to the running total and updates the
// progress percentage.
func (o *orchestrator) credit(credited, weight, total int) int {
	credited += weight

	progress := 100
	if total > 0 {
		progress = credited * 100 / total
	}

	o.lock.Lock()
	if progress > o.progress {
		o.progress = progress
	}
	progress = o.progress
	o.lock.Unlock()

	o.emit(fmt.Sprintf("progress: %d%%", progress))

	return credited
}

func attemptCount(attempts int) int {
	if attempts < 1 {
		return 1
	}

	return attempts
}

func (o *orchestrator) finishAborted(reason string) {
	status := terminal.StatusFailed
	exitCode := 1
	hasError := true

	o.term.UpdateProcess(o.processID, terminal.ProcessUpdate{
		Status:   &status,
		ExitCode: &exitCode,
		HasError: &hasError,
	})
}

// emit routes a progress message through the same surface as any other
// tracked operation.
func (o *orchestrator) emit(message string) {
	o.term.AppendLine(terminal.SourceSetup, o.processID, terminal.ChannelSystem, message)
}
