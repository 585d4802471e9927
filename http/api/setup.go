package api

import (
	"github.com/klever-desktop/core/installer"
)

// SetupStatus is the state of the environment setup and its tools.
type SetupStatus struct {
	State    string          `json:"state"`
	Progress int             `json:"progress"`
	Tools    map[string]Tool `json:"tools"`
}

// Tool is the provisioning state of one tool.
type Tool struct {
	Checking   bool   `json:"checking"`
	Installing bool   `json:"installing"`
	Installed  bool   `json:"installed"`
	Version    string `json:"version,omitempty"`
	Error      string `json:"error,omitempty"`
}

// Unmarshal fills the Tool from an installer status.
func (t *Tool) Unmarshal(status installer.Status) {
	t.Checking = status.Checking
	t.Installing = status.Installing
	t.Installed = status.Installed
	t.Version = status.Version
	t.Error = status.Error
}

// SetupResult is the response to starting a setup run.
type SetupResult struct {
	State    string   `json:"state"`
	Reason   string   `json:"reason,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
	Progress int      `json:"progress"`
}
