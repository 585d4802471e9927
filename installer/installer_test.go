package installer

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCommander struct {
	runFunc      func(ctx context.Context, name string, args ...string) (string, error)
	lookPathFunc func(name string) (string, error)
	runs         [][]string
}

func (c *fakeCommander) Run(ctx context.Context, name string, args ...string) (string, error) {
	c.runs = append(c.runs, append([]string{name}, args...))

	if c.runFunc == nil {
		return "", nil
	}

	return c.runFunc(ctx, name, args...)
}

func (c *fakeCommander) LookPath(name string) (string, error) {
	if c.lookPathFunc == nil {
		return "/usr/bin/" + name, nil
	}

	return c.lookPathFunc(name)
}

func TestVersion(t *testing.T) {
	commander := &fakeCommander{
		runFunc: func(ctx context.Context, name string, args ...string) (string, error) {
			return "Python 3.11.4\n", nil
		},
	}

	version, err := Version(context.Background(), commander, "python3", "--version")
	require.NoError(t, err)

	assert.Equal(t, "3.11.4", version)
}

func TestVersionToolMissing(t *testing.T) {
	commander := &fakeCommander{
		lookPathFunc: func(name string) (string, error) {
			return "", fmt.Errorf("not found")
		},
	}

	_, err := Version(context.Background(), commander, "adb", "--version")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found in PATH")
	assert.Equal(t, 0, len(commander.runs), "missing tool must not be executed")
}

func TestVersionNoVersionInOutput(t *testing.T) {
	commander := &fakeCommander{
		runFunc: func(ctx context.Context, name string, args ...string) (string, error) {
			return "gibberish", nil
		},
	}

	_, err := Version(context.Background(), commander, "python3", "--version")
	require.Error(t, err)
}

func TestCheckVersion(t *testing.T) {
	commander := &fakeCommander{
		runFunc: func(ctx context.Context, name string, args ...string) (string, error) {
			return "Python 3.11.4", nil
		},
	}

	version, err := CheckVersion(context.Background(), commander, "python3", "--version", ">= 3.10")
	require.NoError(t, err)
	assert.Equal(t, "3.11.4", version)
}

func TestCheckVersionTooOld(t *testing.T) {
	commander := &fakeCommander{
		runFunc: func(ctx context.Context, name string, args ...string) (string, error) {
			return "Python 3.9.7", nil
		},
	}

	version, err := CheckVersion(context.Background(), commander, "python3", "--version", ">= 3.10")
	require.Error(t, err)
	assert.Equal(t, "3.9.7", version)
	assert.Contains(t, err.Error(), "doesn't satisfy")
}

func TestCheckVersionPartialVersion(t *testing.T) {
	commander := &fakeCommander{
		runFunc: func(ctx context.Context, name string, args ...string) (string, error) {
			return "Android Debug Bridge version 1.0", nil
		},
	}

	version, err := CheckVersion(context.Background(), commander, "adb", "--version", ">= 1.0")
	require.NoError(t, err)
	assert.Equal(t, "1.0", version)
}

func TestCommandInstaller(t *testing.T) {
	commander := &fakeCommander{}

	inst := NewCommand(commander, "ollama", "pull", "qwen3-vl")

	require.NoError(t, inst.Attempt(context.Background()))

	require.Equal(t, 1, len(commander.runs))
	assert.Equal(t, []string{"ollama", "pull", "qwen3-vl"}, commander.runs[0])
}

func TestCommandInstallerFailure(t *testing.T) {
	commander := &fakeCommander{
		runFunc: func(ctx context.Context, name string, args ...string) (string, error) {
			return "some output\nno space left on device", fmt.Errorf("ollama: exit status 1")
		},
	}

	inst := NewCommand(commander, "ollama", "pull", "qwen3-vl")

	err := inst.Attempt(context.Background())
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "no space left on device"))
}

func TestStatusBoard(t *testing.T) {
	board := NewStatusBoard()

	_, ok := board.Get(ToolPython)
	assert.False(t, ok)

	board.Checking(ToolPython)

	s, ok := board.Get(ToolPython)
	require.True(t, ok)
	assert.True(t, s.Checking)
	assert.False(t, s.Installed)

	board.Installed(ToolPython, "3.11.4")

	s, _ = board.Get(ToolPython)
	assert.False(t, s.Checking)
	assert.True(t, s.Installed)
	assert.Equal(t, "3.11.4", s.Version)
	assert.Empty(t, s.Error)

	board.Installing(ToolVenv)

	s, _ = board.Get(ToolVenv)
	assert.True(t, s.Installing)

	board.Failed(ToolVenv, fmt.Errorf("disk full"))

	s, _ = board.Get(ToolVenv)
	assert.False(t, s.Installing)
	assert.False(t, s.Installed)
	assert.Equal(t, "disk full", s.Error)

	all := board.All()
	assert.Equal(t, 2, len(all))
}
