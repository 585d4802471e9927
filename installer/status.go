package installer

import (
	"sync"

	"github.com/klever-desktop/core/maps"
)

// Tool keys the dashboard knows about.
const (
	ToolPython   = "python"
	ToolVenv     = "venv"
	ToolPackages = "packages"
	ToolADB      = "adb"
	ToolOllama   = "ollama"
	ToolModel    = "model"
)

// Status is the provisioning state of one tool.
type Status struct {
	Checking   bool
	Installed  bool
	Installing bool
	Version    string
	Error      string
}

// StatusBoard holds the provisioning state per tool key. It is safe for
// concurrent use.
type StatusBoard struct {
	tools map[string]Status
	lock  sync.RWMutex
}

func NewStatusBoard() *StatusBoard {
	return &StatusBoard{
		tools: make(map[string]Status),
	}
}

func (b *StatusBoard) Checking(key string) {
	b.mutate(key, func(s *Status) {
		s.Checking = true
		s.Error = ""
	})
}

func (b *StatusBoard) Installing(key string) {
	b.mutate(key, func(s *Status) {
		s.Checking = false
		s.Installing = true
		s.Error = ""
	})
}

func (b *StatusBoard) Installed(key string, version string) {
	b.mutate(key, func(s *Status) {
		s.Checking = false
		s.Installing = false
		s.Installed = true
		s.Version = version
		s.Error = ""
	})
}

func (b *StatusBoard) Failed(key string, err error) {
	b.mutate(key, func(s *Status) {
		s.Checking = false
		s.Installing = false
		s.Installed = false

		if err != nil {
			s.Error = err.Error()
		}
	})
}

func (b *StatusBoard) Get(key string) (Status, bool) {
	b.lock.RLock()
	defer b.lock.RUnlock()

	s, ok := b.tools[key]

	return s, ok
}

// All returns a copy of the board.
func (b *StatusBoard) All() map[string]Status {
	b.lock.RLock()
	defer b.lock.RUnlock()

	return maps.Copy(b.tools)
}

func (b *StatusBoard) mutate(key string, fn func(s *Status)) {
	b.lock.Lock()
	defer b.lock.Unlock()

	s := b.tools[key]
	fn(&s)
	b.tools[key] = s
}
