// Package terminal implements the process supervision and log multiplexing
// core: it ingests tagged output lines from any number of concurrently
// running background operations into one bounded buffer, tracks the lifecycle
// of each operation, and derives the notification state for the dashboard.
package terminal

import (
	"time"
)

// Source groups lines and processes by the surface that produced them. It is
// an open set, the constants below are the ones the dashboard knows about.
type Source string

const (
	SourceAll             Source = "all"
	SourceSetup           Source = "setup"
	SourceTask            Source = "task"
	SourceProject         Source = "project"
	SourceIntegrationTest Source = "integration-test"
	SourceOllama          Source = "ollama"
)

func (s Source) String() string {
	return string(s)
}

// Channel denotes where a line originated.
type Channel string

const (
	ChannelStdout Channel = "stdout"
	ChannelStderr Channel = "stderr"
	ChannelSystem Channel = "system"
)

func (c Channel) String() string {
	return string(c)
}

// Level is the derived severity of a line.
type Level string

const (
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

func (l Level) String() string {
	return string(l)
}

// Line is one unit of output. Lines are immutable once ingested.
type Line struct {
	ID        string
	Timestamp time.Time
	Source    Source
	ProcessID string
	Channel   Channel
	Level     Level
	Text      string
}
