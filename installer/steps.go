package installer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/klever-desktop/core/setup"
)

// StepsConfig describes the machine state the default provisioning sequence
// establishes.
type StepsConfig struct {
	// Commander executes external commands. If nil, the OS commander is
	// used.
	Commander Commander

	// Board receives per-tool status updates. If nil, a board is created.
	Board *StatusBoard

	// Python is the runtime binary name. Defaults to "python3".
	Python string

	// PythonConstraint is the minimum runtime version. Defaults to
	// ">= 3.10".
	PythonConstraint string

	// VenvDir is the directory of the virtual environment.
	VenvDir string

	// Packages are installed into the virtual environment.
	Packages []string

	// Model is the vision model pulled into Ollama. If empty, the model
	// steps are skipped entirely.
	Model string
}

// DefaultSteps returns the ordered provisioning sequence of the dashboard:
// verify the Python runtime, create the virtual environment, install the
// Python packages, verify the Android platform tools, verify Ollama and pull
// the configured vision model. Runtime and SDK checks cannot install
// anything themselves and carry remediation hints instead.
func DefaultSteps(config StepsConfig) []setup.Step {
	commander := config.Commander
	if commander == nil {
		commander = NewCommander()
	}

	board := config.Board
	if board == nil {
		board = NewStatusBoard()
	}

	python := config.Python
	if len(python) == 0 {
		python = "python3"
	}

	constraint := config.PythonConstraint
	if len(constraint) == 0 {
		constraint = ">= 3.10"
	}

	venvDir := config.VenvDir
	if len(venvDir) == 0 {
		if home, err := os.UserHomeDir(); err == nil {
			venvDir = filepath.Join(home, ".klever", "venv")
		} else {
			venvDir = ".venv"
		}
	}

	venvPython := filepath.Join(venvDir, "bin", "python")

	checkPython := func(ctx context.Context) (string, error) {
		return CheckVersion(ctx, commander, python, "--version", constraint)
	}

	steps := []setup.Step{
		{
			Key:  ToolPython,
			Name: "Check Python runtime",
			Satisfied: func(ctx context.Context) bool {
				board.Checking(ToolPython)

				version, err := checkPython(ctx)
				if err != nil {
					return false
				}

				board.Installed(ToolPython, version)

				return true
			},
			Action: func(ctx context.Context) error {
				version, err := checkPython(ctx)
				if err != nil {
					board.Failed(ToolPython, err)
					return err
				}

				board.Installed(ToolPython, version)

				return nil
			},
			Critical: true,
			Attempts: 2,
			Weight:   20,
			Hint:     "requires Python " + constraint + ", install manually",
		},
		{
			Key:  ToolVenv,
			Name: "Create virtual environment",
			Satisfied: func(ctx context.Context) bool {
				board.Checking(ToolVenv)

				if _, err := os.Stat(venvPython); err != nil {
					return false
				}

				board.Installed(ToolVenv, "")

				return true
			},
			Action: func(ctx context.Context) error {
				board.Installing(ToolVenv)

				if _, err := commander.Run(ctx, python, "-m", "venv", venvDir); err != nil {
					board.Failed(ToolVenv, err)
					return err
				}

				board.Installed(ToolVenv, "")

				return nil
			},
			Critical: true,
			Attempts: 3,
			Weight:   20,
		},
		{
			Key:  ToolPackages,
			Name: "Install Python packages",
			Action: func(ctx context.Context) error {
				board.Installing(ToolPackages)

				args := append([]string{"-m", "pip", "install", "--upgrade"}, config.Packages...)

				if _, err := commander.Run(ctx, venvPython, args...); err != nil {
					board.Failed(ToolPackages, err)
					return err
				}

				board.Installed(ToolPackages, "")

				return nil
			},
			Critical: true,
			Attempts: 3,
			Weight:   30,
		},
		{
			Key:  ToolADB,
			Name: "Check Android platform tools",
			Satisfied: func(ctx context.Context) bool {
				board.Checking(ToolADB)

				version, err := Version(ctx, commander, "adb", "--version")
				if err != nil {
					return false
				}

				board.Installed(ToolADB, version)

				return true
			},
			Action: func(ctx context.Context) error {
				version, err := Version(ctx, commander, "adb", "--version")
				if err != nil {
					board.Failed(ToolADB, err)
					return err
				}

				board.Installed(ToolADB, version)

				return nil
			},
			Critical: true,
			Attempts: 2,
			Weight:   15,
			Hint:     "requires the Android platform tools, install manually",
		},
	}

	if len(config.Model) == 0 {
		return steps
	}

	steps = append(steps,
		setup.Step{
			Key:  ToolOllama,
			Name: "Check Ollama",
			Satisfied: func(ctx context.Context) bool {
				board.Checking(ToolOllama)

				version, err := Version(ctx, commander, "ollama", "--version")
				if err != nil {
					return false
				}

				board.Installed(ToolOllama, version)

				return true
			},
			Action: func(ctx context.Context) error {
				version, err := Version(ctx, commander, "ollama", "--version")
				if err != nil {
					board.Failed(ToolOllama, err)
					return err
				}

				board.Installed(ToolOllama, version)

				return nil
			},
			Critical: false,
			Attempts: 2,
			Weight:   10,
			Hint:     "requires Ollama for local models, install manually",
		},
		setup.Step{
			Key:  ToolModel,
			Name: fmt.Sprintf("Pull vision model %s", config.Model),
			Action: func(ctx context.Context) error {
				board.Installing(ToolModel)

				if _, err := commander.Run(ctx, "ollama", "pull", config.Model); err != nil {
					board.Failed(ToolModel, err)
					return err
				}

				board.Installed(ToolModel, config.Model)

				return nil
			},
			Critical: false,
			Attempts: 2,
			Weight:   5,
		},
	)

	return steps
}
