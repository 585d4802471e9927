package api

import (
	"time"

	"github.com/klever-desktop/core/event"
)

// Event is the wire representation of a pub/sub event. Type is "line" for
// ingested output lines and "process" for registry changes.
type Event struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"ts"`
	ID        string    `json:"id"`
	Source    string    `json:"source"`
	ProcessID string    `json:"process_id,omitempty"`
	Channel   string    `json:"channel,omitempty"`
	Level     string    `json:"level,omitempty"`
	Text      string    `json:"text,omitempty"`
	Name      string    `json:"name,omitempty"`
	Action    string    `json:"action,omitempty"`
	Status    string    `json:"status,omitempty"`
}

// Unmarshal fills the Event from a pub/sub event. Unknown event types are
// reported as false.
func (e *Event) Unmarshal(evt event.Event) bool {
	switch v := evt.(type) {
	case *event.LineEvent:
		*e = Event{
			Type:      "line",
			Timestamp: v.Timestamp,
			ID:        v.ID,
			Source:    v.Source,
			ProcessID: v.ProcessID,
			Channel:   v.Channel,
			Level:     v.Level,
			Text:      v.Text,
		}
	case *event.ProcessEvent:
		*e = Event{
			Type:      "process",
			Timestamp: v.Timestamp,
			ID:        v.ID,
			Source:    v.Source,
			Name:      v.Name,
			Action:    v.Type,
			Status:    v.Status,
		}
	default:
		return false
	}

	return true
}
