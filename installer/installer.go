// Package installer provides the provisioning actions the setup orchestrator
// sequences: runtime checks, virtual environment creation, package and SDK
// installation, and the Ollama model pull. The actions are built on a small
// command abstraction such that they can be exercised in tests without
// touching the machine.
package installer

import (
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Installer is one fallible provisioning capability.
type Installer interface {
	Attempt(ctx context.Context) error
}

// Func adapts a plain function to the Installer interface.
type Func func(ctx context.Context) error

func (f Func) Attempt(ctx context.Context) error {
	return f(ctx)
}

// Commander abstracts the execution of external commands.
type Commander interface {
	// Run executes the command and returns its combined output.
	Run(ctx context.Context, name string, args ...string) (string, error)

	// LookPath resolves the command in the search path.
	LookPath(name string) (string, error)
}

type execCommander struct{}

// NewCommander returns a Commander backed by the OS.
func NewCommander() Commander {
	return &execCommander{}
}

func (c *execCommander) Run(ctx context.Context, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	out, err := cmd.CombinedOutput()
	if err != nil {
		return string(out), fmt.Errorf("%s: %w", name, err)
	}

	return string(out), nil
}

func (c *execCommander) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}

// NewCommand returns an installer that runs the given command once per
// attempt.
func NewCommand(commander Commander, name string, args ...string) Installer {
	return Func(func(ctx context.Context) error {
		out, err := commander.Run(ctx, name, args...)
		if err != nil {
			return fmt.Errorf("%w: %s", err, lastLine(out))
		}

		return nil
	})
}

var versionPattern = regexp.MustCompile(`\d+\.\d+(\.\d+)?`)

// Version resolves the tool in the search path, runs it with versionArg and
// extracts the first version number from its output.
func Version(ctx context.Context, commander Commander, tool, versionArg string) (string, error) {
	if _, err := commander.LookPath(tool); err != nil {
		return "", fmt.Errorf("%s not found in PATH", tool)
	}

	out, err := commander.Run(ctx, tool, versionArg)
	if err != nil {
		return "", err
	}

	version := versionPattern.FindString(out)
	if len(version) == 0 {
		return "", fmt.Errorf("no version in output of %s %s", tool, versionArg)
	}

	return version, nil
}

// CheckVersion verifies that the tool exists and its version satisfies the
// given constraint, e.g. ">= 3.10".
func CheckVersion(ctx context.Context, commander Commander, tool, versionArg, constraint string) (string, error) {
	version, err := Version(ctx, commander, tool, versionArg)
	if err != nil {
		return "", err
	}

	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return "", err
	}

	v, err := semver.NewVersion(version)
	if err != nil {
		return "", fmt.Errorf("can't parse version %q of %s: %w", version, tool, err)
	}

	if !c.Check(v) {
		return version, fmt.Errorf("%s %s doesn't satisfy %s", tool, version, constraint)
	}

	return version, nil
}

func lastLine(out string) string {
	lines := strings.Split(strings.TrimSpace(out), "\n")

	return lines[len(lines)-1]
}
