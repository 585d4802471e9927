package api

import (
	"time"

	"github.com/klever-desktop/core/terminal"
)

// Line is one captured output line.
type Line struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"ts"`
	Source    string    `json:"source"`
	ProcessID string    `json:"process_id,omitempty"`
	Channel   string    `json:"channel"`
	Level     string    `json:"level"`
	Text      string    `json:"text"`
}

// Unmarshal fills the Line from a terminal line.
func (l *Line) Unmarshal(line terminal.Line) {
	l.ID = line.ID
	l.Timestamp = line.Timestamp
	l.Source = string(line.Source)
	l.ProcessID = line.ProcessID
	l.Channel = string(line.Channel)
	l.Level = string(line.Level)
	l.Text = line.Text
}

// Process is one tracked operation.
type Process struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Source     string     `json:"source"`
	Status     string     `json:"status"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	ExitCode   *int       `json:"exit_code,omitempty"`
	HasError   bool       `json:"has_error"`
}

// Unmarshal fills the Process from a registry entry.
func (p *Process) Unmarshal(process terminal.Process) {
	p.ID = process.ID
	p.Name = process.Name
	p.Source = string(process.Source)
	p.Status = process.Status.String()
	p.StartedAt = process.StartedAt
	p.ExitCode = process.ExitCode
	p.HasError = process.HasError

	if !process.FinishedAt.IsZero() {
		finished := process.FinishedAt
		p.FinishedAt = &finished
	}
}

// Notifications is the badge state for the dashboard.
type Notifications struct {
	Errors   int `json:"errors"`
	Warnings int `json:"warnings"`
	Running  int `json:"running"`
}

// Unmarshal fills the Notifications from the terminal badge state.
func (n *Notifications) Unmarshal(notifications terminal.Notifications) {
	n.Errors = notifications.Errors
	n.Warnings = notifications.Warnings
	n.Running = notifications.Running
}
