// Package process is a wrapper of exec.Cmd for running the external
// operations the dashboard supervises, e.g. automation task runs, one-off
// integration tests, or a local model server. Stdout and stderr are captured
// line by line and ingested into the terminal, and the operation is tracked
// in the terminal's process registry for its whole lifecycle.
package process

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"sync"
	"sync/atomic"
	"syscall"
	"time"
	"unicode/utf8"

	"github.com/klever-desktop/core/log"
	"github.com/klever-desktop/core/terminal"

	"golang.org/x/sync/errgroup"
)

// Process represents a supervised external operation and ways to control it
// and to extract information.
type Process interface {
	// Status returns the current status of this process.
	Status() Status

	// Start starts the process. If the process stops by itself
	// it will restart automatically if it is defined to do so.
	Start() error

	// Stop stops the process and will not let it restart
	// automatically. If wait is true, it returns after the
	// process exited.
	Stop(wait bool) error

	// IsRunning returns whether the process is currently
	// running or not.
	IsRunning() bool
}

// Config is the configuration of a process.
type Config struct {
	ID           string          // Identifier under which the operation is tracked. Required.
	Name         string          // Human readable name for the dashboard. Defaults to the ID.
	Source       terminal.Source // Source tag for the captured output lines.
	Binary       string          // Path to the binary.
	Args         []string        // List of arguments for the binary.
	Dir          string          // Working directory. If empty, the current directory is used.
	Env          []string        // Environment for the process. If nil, the host environment is inherited.
	Restart      bool            // Whether to restart the process if it exited on its own.
	RestartDelay time.Duration   // Duration to wait before restarting the process.
	Scheduler    Scheduler       // An optional scheduler for recurring runs.
	Terminal     terminal.Terminal
	OnExit       func(status terminal.Status, exitCode int) // A callback which is called after the process exited.
	Logger       log.Logger
}

// Status represents the current status of a process.
type Status struct {
	PID      int32           // Last known process ID, -1 if not running.
	State    terminal.Status // Registry status of the last or current run.
	Order    string          // Order is the wanted condition of the process, either "start" or "stop".
	Runs     uint64          // Number of times the process has been started.
	ExitCode int             // Exit code of the last run, -1 while running.
	Time     time.Time       // Time of the last state change.
}

type process struct {
	id     string
	name   string
	source terminal.Source
	binary string
	args   []string
	dir    string
	env    []string

	cmd *exec.Cmd
	pid atomic.Int32

	state struct {
		running  bool
		status   terminal.Status
		runs     uint64
		exitCode int
		time     time.Time
		done     chan struct{}
		lock     sync.RWMutex
	}

	order struct {
		order string
		lock  sync.Mutex
	}

	reconn struct {
		enable bool
		delay  time.Duration
		timer  *time.Timer
		lock   sync.Mutex
	}

	killTimer     *time.Timer
	killTimerLock sync.Mutex

	scheduler Scheduler
	term      terminal.Terminal
	onExit    func(status terminal.Status, exitCode int)
	logger    log.Logger
}

var _ Process = &process{}

// New creates a new process wrapper. It doesn't start the process.
func New(config Config) (Process, error) {
	p := &process{
		id:        config.ID,
		name:      config.Name,
		source:    config.Source,
		binary:    config.Binary,
		dir:       config.Dir,
		env:       config.Env,
		scheduler: config.Scheduler,
		term:      config.Terminal,
		onExit:    config.OnExit,
		logger:    config.Logger,
	}

	if len(p.id) == 0 {
		return nil, fmt.Errorf("an id is required")
	}

	// This is a loose check on purpose. If the binary doesn't exist or is
	// not executable, it will be reflected in the resulting state.
	if len(p.binary) == 0 {
		return nil, fmt.Errorf("no valid binary given")
	}

	if p.term == nil {
		return nil, fmt.Errorf("a terminal is required")
	}

	if len(p.name) == 0 {
		p.name = p.id
	}

	if p.logger == nil {
		p.logger = log.New("Process")
	}

	p.logger = p.logger.WithFields(log.Fields{
		"id":     p.id,
		"binary": p.binary,
	})

	p.args = make([]string, len(config.Args))
	copy(p.args, config.Args)

	p.pid.Store(-1)

	p.state.exitCode = -1
	p.state.time = time.Now()

	p.setOrder("stop")

	p.reconn.enable = config.Restart
	p.reconn.delay = config.RestartDelay

	return p, nil
}

func (p *process) getOrder() string {
	p.order.lock.Lock()
	defer p.order.lock.Unlock()

	return p.order.order
}

// setOrder sets the order to the given value. If the order already
// has that value, it returns true. Otherwise false.
func (p *process) setOrder(order string) bool {
	p.order.lock.Lock()
	defer p.order.lock.Unlock()

	if p.order.order == order {
		return true
	}

	p.order.order = order

	return false
}

func (p *process) isRunning() bool {
	p.state.lock.RLock()
	defer p.state.lock.RUnlock()

	return p.state.running
}

// IsRunning returns whether the process is considered running.
func (p *process) IsRunning() bool {
	return p.isRunning()
}

// Status returns the current status of the process.
func (p *process) Status() Status {
	p.state.lock.RLock()
	defer p.state.lock.RUnlock()

	return Status{
		PID:      p.pid.Load(),
		State:    p.state.status,
		Order:    p.getOrder(),
		Runs:     p.state.runs,
		ExitCode: p.state.exitCode,
		Time:     p.state.time,
	}
}

// Start will start the process and sets the order to "start". If the
// process already has the "start" order, nothing will be done. With a
// scheduler the first run happens at the next scheduled time.
func (p *process) Start() error {
	if p.setOrder("start") {
		return nil
	}

	if p.scheduler != nil {
		next, err := p.scheduler.Next()
		if err != nil {
			return err
		}

		p.reconnect(next)

		return nil
	}

	return p.start()
}

// start launches the process considering the current order. Each run is
// registered in the terminal and its output is captured until exit.
func (p *process) start() error {
	if p.isRunning() {
		return nil
	}

	// Stop any restart timer in order to start the process immediately.
	p.unreconnect()

	p.logger.Info().Log("Starting")

	p.term.RegisterProcess(p.id, p.name, p.source)

	cmd := exec.Command(p.binary, p.args...)
	cmd.Dir = p.dir
	cmd.Env = p.env
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return p.failStart(err)
	}

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return p.failStart(err)
	}

	if err := cmd.Start(); err != nil {
		return p.failStart(err)
	}

	done := make(chan struct{})

	// The command must be visible before the state flips to running, a
	// racing Stop() dereferences it as soon as it sees running=true.
	p.cmd = cmd
	p.pid.Store(int32(cmd.Process.Pid))

	p.state.lock.Lock()
	p.state.running = true
	p.state.status = terminal.StatusRunning
	p.state.runs++
	p.state.exitCode = -1
	p.state.time = time.Now()
	p.state.done = done
	p.state.lock.Unlock()

	p.logger.Info().WithField("pid", cmd.Process.Pid).Log("Started")

	readers := errgroup.Group{}

	readers.Go(func() error { return p.reader(stdout, terminal.ChannelStdout) })
	readers.Go(func() error { return p.reader(stderr, terminal.ChannelStderr) })

	go p.waiter(cmd, &readers, done)

	return nil
}

// failStart records a run that never got off the ground.
func (p *process) failStart(err error) error {
	p.logger.WithError(err).Error().Log("Starting failed")

	p.term.AppendLine(p.source, p.id, terminal.ChannelSystem, err.Error())

	status := terminal.StatusFailed
	exitCode := -1
	hasError := true

	p.term.UpdateProcess(p.id, terminal.ProcessUpdate{
		Status:   &status,
		ExitCode: &exitCode,
		HasError: &hasError,
	})

	p.state.lock.Lock()
	p.state.status = terminal.StatusFailed
	p.state.exitCode = -1
	p.state.time = time.Now()
	p.state.lock.Unlock()

	p.reconnect(p.delay(terminal.StatusFailed))

	return err
}

// Stop will stop the process and set the order to "stop".
func (p *process) Stop(wait bool) error {
	if p.setOrder("stop") {
		return nil
	}

	// Stop the restart timer.
	p.unreconnect()

	p.state.lock.RLock()
	running := p.state.running
	done := p.state.done
	p.state.lock.RUnlock()

	if !running {
		return nil
	}

	p.logger.Info().Log("Stopping")

	if runtime.GOOS == "windows" {
		// Windows doesn't know the SIGINT.
		p.cmd.Process.Kill()
	} else {
		// First try to stop the process gracefully.
		p.cmd.Process.Signal(os.Interrupt)
	}

	// Set up a timer to kill the process with SIGKILL in case SIGINT
	// didn't have an effect.
	p.killTimerLock.Lock()
	p.killTimer = time.AfterFunc(5*time.Second, func() {
		p.cmd.Process.Kill()
	})
	p.killTimerLock.Unlock()

	if wait && done != nil {
		<-done
	}

	return nil
}

// reader reads the output from the process line by line and feeds
// each line into the terminal.
func (p *process) reader(pipe io.ReadCloser, channel terminal.Channel) error {
	scanner := bufio.NewScanner(pipe)
	scanner.Split(scanLines)

	for scanner.Scan() {
		p.term.AppendLine(p.source, p.id, channel, scanner.Text())
	}

	return scanner.Err()
}

// waiter waits for the process to exit, records the exit condition in the
// terminal, and schedules a restart if wanted.
func (p *process) waiter(cmd *exec.Cmd, readers *errgroup.Group, done chan struct{}) {
	// Drain both pipes before Wait closes them.
	if err := readers.Wait(); err != nil {
		p.logger.Debug().WithError(err).Log("Read error")
	}

	exitCode := 0

	err := cmd.Wait()
	if err != nil {
		exitCode = -1

		if exiterr, ok := err.(*exec.ExitError); ok {
			exitCode = exiterr.ExitCode()
		}
	}

	status := terminal.StatusCompleted

	if p.getOrder() == "stop" {
		status = terminal.StatusCancelled
	} else if exitCode != 0 {
		status = terminal.StatusFailed
	}

	// Stop the kill timer.
	p.killTimerLock.Lock()
	if p.killTimer != nil {
		p.killTimer.Stop()
		p.killTimer = nil
	}
	p.killTimerLock.Unlock()

	p.pid.Store(-1)

	hasError := status == terminal.StatusFailed

	p.term.UpdateProcess(p.id, terminal.ProcessUpdate{
		Status:   &status,
		ExitCode: &exitCode,
		HasError: &hasError,
	})

	p.state.lock.Lock()
	p.state.running = false
	p.state.status = status
	p.state.exitCode = exitCode
	p.state.time = time.Now()
	p.state.done = nil
	p.state.lock.Unlock()

	p.logger.Info().WithFields(log.Fields{
		"status":    status,
		"exit_code": exitCode,
	}).Log("Stopped")

	if p.getOrder() == "start" {
		p.reconnect(p.delay(status))
	}

	if p.onExit != nil {
		p.onExit(status, exitCode)
	}

	close(done)
}

// reconnect will set up a timer to restart the process.
func (p *process) reconnect(delay time.Duration) {
	p.reconn.lock.Lock()
	defer p.reconn.lock.Unlock()

	if p.reconn.timer != nil {
		p.reconn.timer.Stop()
		p.reconn.timer = nil
	}

	if delay < time.Duration(0) {
		return
	}

	p.logger.Info().Log("Scheduling restart in %s", delay)

	p.reconn.timer = time.AfterFunc(delay, func() {
		p.start()
	})
}

// unreconnect will stop the restart timer.
func (p *process) unreconnect() {
	p.reconn.lock.Lock()
	defer p.reconn.lock.Unlock()

	if p.reconn.timer == nil {
		return
	}

	p.reconn.timer.Stop()
	p.reconn.timer = nil
}

// delay returns the duration until the next restart of the process. If no
// restart is wanted, it returns a negative duration.
func (p *process) delay(status terminal.Status) time.Duration {
	// By default, restart after the configured delay.
	delay := p.reconn.delay

	if p.scheduler == nil {
		// No scheduler has been provided, restart in any case, if enabled.
		if !p.reconn.enable {
			return time.Duration(-1)
		}

		return delay
	}

	// Get the next scheduled start time.
	next, err := p.scheduler.Next()
	if err == nil {
		if status == terminal.StatusCompleted {
			// The run completed cleanly, run again at the next
			// scheduled time.
			delay = next
		} else if !p.reconn.enable {
			delay = next
		} else if next < p.reconn.delay {
			delay = next
		}
	} else {
		// No next scheduled time.
		if status == terminal.StatusCompleted {
			delay = time.Duration(-1)
		} else if !p.reconn.enable {
			delay = time.Duration(-1)
		}
	}

	return delay
}

// scanLines splits the data on \r, \n, or \r\n line endings such that
// carriage-return progress output, e.g. from downloads, forms lines too.
func scanLines(data []byte, atEOF bool) (advance int, token []byte, err error) {
	// Skip leading line endings.
	start := 0
	for width := 0; start < len(data); start += width {
		var r rune
		r, width = utf8.DecodeRune(data[start:])
		if r != '\n' && r != '\r' {
			break
		}
	}

	// Scan until a line ending, marking the end of the line.
	for width, i := 0, start; i < len(data); i += width {
		var r rune
		r, width = utf8.DecodeRune(data[i:])
		if r == '\n' || r == '\r' {
			return i + width, data[start:i], nil
		}
	}

	// At EOF, a final non-terminated line is a line.
	if atEOF && len(data) > start {
		return len(data), data[start:], nil
	}

	return start, nil, nil
}
