package process

import (
	"testing"
	"time"

	"github.com/klever-desktop/core/terminal"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewValidation(t *testing.T) {
	term := terminal.New(terminal.Config{})

	_, err := New(Config{Binary: "sleep", Terminal: term})
	require.Error(t, err, "an id is required")

	_, err = New(Config{ID: "task", Terminal: term})
	require.Error(t, err, "a binary is required")

	_, err = New(Config{ID: "task", Binary: "sleep"})
	require.Error(t, err, "a terminal is required")

	p, err := New(Config{ID: "task", Binary: "sleep", Args: []string{"1"}, Terminal: term})
	require.NoError(t, err)

	status := p.Status()
	assert.Equal(t, int32(-1), status.PID)
	assert.Equal(t, "stop", status.Order)
	assert.False(t, p.IsRunning())
}

func TestProcessCapturesOutput(t *testing.T) {
	term := terminal.New(terminal.Config{})

	p, err := New(Config{
		ID:       "task-1",
		Name:     "Echo task",
		Source:   terminal.SourceTask,
		Binary:   "sh",
		Args:     []string{"-c", "echo one; echo two 1>&2"},
		Terminal: term,
	})
	require.NoError(t, err)

	require.NoError(t, p.Start())

	require.Eventually(t, func() bool {
		return !p.IsRunning() && p.Status().Runs == 1
	}, 5*time.Second, 10*time.Millisecond)

	status := p.Status()
	assert.Equal(t, terminal.StatusCompleted, status.State)
	assert.Equal(t, 0, status.ExitCode)

	lines := term.Lines(terminal.SourceTask)
	require.Equal(t, 2, len(lines))

	byChannel := map[terminal.Channel]string{}
	for _, line := range lines {
		assert.Equal(t, "task-1", line.ProcessID)
		byChannel[line.Channel] = line.Text
	}

	assert.Equal(t, "one", byChannel[terminal.ChannelStdout])
	assert.Equal(t, "two", byChannel[terminal.ChannelStderr])

	processes := term.Processes()
	require.Equal(t, 1, len(processes))
	assert.Equal(t, "Echo task", processes[0].Name)
	assert.Equal(t, terminal.StatusCompleted, processes[0].Status)
	require.NotNil(t, processes[0].ExitCode)
	assert.Equal(t, 0, *processes[0].ExitCode)
	assert.False(t, processes[0].HasError)
}

func TestProcessFailure(t *testing.T) {
	term := terminal.New(terminal.Config{})

	p, err := New(Config{
		ID:       "task-2",
		Source:   terminal.SourceTask,
		Binary:   "sh",
		Args:     []string{"-c", "exit 3"},
		Terminal: term,
	})
	require.NoError(t, err)

	require.NoError(t, p.Start())

	require.Eventually(t, func() bool {
		return p.Status().State == terminal.StatusFailed
	}, 5*time.Second, 10*time.Millisecond)

	status := p.Status()
	assert.Equal(t, 3, status.ExitCode)

	processes := term.Processes()
	require.Equal(t, 1, len(processes))
	assert.Equal(t, terminal.StatusFailed, processes[0].Status)
	assert.True(t, processes[0].HasError)
	require.NotNil(t, processes[0].ExitCode)
	assert.Equal(t, 3, *processes[0].ExitCode)
}

func TestProcessStartFailure(t *testing.T) {
	term := terminal.New(terminal.Config{})

	p, err := New(Config{
		ID:       "task-3",
		Source:   terminal.SourceTask,
		Binary:   "/nonexistent-binary",
		Terminal: term,
	})
	require.NoError(t, err)

	require.Error(t, p.Start())

	processes := term.Processes()
	require.Equal(t, 1, len(processes))
	assert.Equal(t, terminal.StatusFailed, processes[0].Status)
	assert.True(t, processes[0].HasError)

	lines := term.Lines(terminal.SourceTask)
	require.Equal(t, 1, len(lines))
	assert.Equal(t, terminal.ChannelSystem, lines[0].Channel)
}

func TestStopDuringStart(t *testing.T) {
	// A stop racing the very first start must never observe a running
	// process without its command.
	for i := 0; i < 20; i++ {
		term := terminal.New(terminal.Config{})

		p, err := New(Config{
			ID:       "server",
			Source:   terminal.SourceOllama,
			Binary:   "sleep",
			Args:     []string{"10"},
			Terminal: term,
		})
		require.NoError(t, err)

		go p.Start()

		require.Eventually(t, func() bool {
			return p.IsRunning()
		}, 5*time.Second, time.Millisecond)

		require.NoError(t, p.Stop(true))

		assert.False(t, p.IsRunning())
	}
}

func TestProcessStop(t *testing.T) {
	term := terminal.New(terminal.Config{})

	p, err := New(Config{
		ID:       "server",
		Source:   terminal.SourceOllama,
		Binary:   "sleep",
		Args:     []string{"10"},
		Terminal: term,
	})
	require.NoError(t, err)

	require.NoError(t, p.Start())

	require.Eventually(t, func() bool {
		return p.IsRunning()
	}, 5*time.Second, 10*time.Millisecond)

	require.NoError(t, p.Stop(true))

	assert.False(t, p.IsRunning())

	status := p.Status()
	assert.Equal(t, terminal.StatusCancelled, status.State)
	assert.Equal(t, "stop", status.Order)

	processes := term.Processes()
	require.Equal(t, 1, len(processes))
	assert.Equal(t, terminal.StatusCancelled, processes[0].Status)
	assert.False(t, processes[0].HasError)
}

func TestProcessRestart(t *testing.T) {
	term := terminal.New(terminal.Config{})

	p, err := New(Config{
		ID:           "task-4",
		Source:       terminal.SourceTask,
		Binary:       "sh",
		Args:         []string{"-c", "exit 0"},
		Restart:      true,
		RestartDelay: 10 * time.Millisecond,
		Terminal:     term,
	})
	require.NoError(t, err)

	require.NoError(t, p.Start())

	require.Eventually(t, func() bool {
		return p.Status().Runs >= 2
	}, 5*time.Second, 10*time.Millisecond)

	require.NoError(t, p.Stop(true))
}

func TestProcessOnExit(t *testing.T) {
	term := terminal.New(terminal.Config{})

	exited := make(chan terminal.Status, 1)

	p, err := New(Config{
		ID:       "task-5",
		Source:   terminal.SourceTask,
		Binary:   "sh",
		Args:     []string{"-c", "exit 0"},
		Terminal: term,
		OnExit: func(status terminal.Status, exitCode int) {
			exited <- status
		},
	})
	require.NoError(t, err)

	require.NoError(t, p.Start())

	select {
	case status := <-exited:
		assert.Equal(t, terminal.StatusCompleted, status)
	case <-time.After(5 * time.Second):
		t.Fatal("process didn't exit")
	}
}
