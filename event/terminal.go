package event

import (
	"time"
)

// LineEvent is published for every output line ingested into the terminal.
type LineEvent struct {
	ID        string
	Source    string
	ProcessID string
	Channel   string
	Level     string
	Text      string
	Timestamp time.Time
}

func (e *LineEvent) Clone() Event {
	evt := &LineEvent{
		ID:        e.ID,
		Source:    e.Source,
		ProcessID: e.ProcessID,
		Channel:   e.Channel,
		Level:     e.Level,
		Text:      e.Text,
		Timestamp: e.Timestamp,
	}

	return evt
}

// ProcessEvent is published whenever a tracked operation is registered,
// changes its status, or is removed.
type ProcessEvent struct {
	ID        string
	Name      string
	Source    string
	Type      string // "register", "update", "remove"
	Status    string
	Timestamp time.Time
}

func (e *ProcessEvent) Clone() Event {
	evt := &ProcessEvent{
		ID:        e.ID,
		Name:      e.Name,
		Source:    e.Source,
		Type:      e.Type,
		Status:    e.Status,
		Timestamp: e.Timestamp,
	}

	return evt
}
