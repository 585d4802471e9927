// Package api implements the REST API handlers of the dashboard.
package api

import (
	"net/http"

	"github.com/klever-desktop/core/http/api"
	"github.com/klever-desktop/core/http/handler/util"
	"github.com/klever-desktop/core/terminal"

	"github.com/labstack/echo/v4"
)

// The TerminalHandler type provides handler functions for the terminal
// surface: lines, tracked operations, and notifications.
type TerminalHandler struct {
	terminal terminal.Terminal
}

// NewTerminal returns a new Terminal type. You have to provide a terminal.
func NewTerminal(t terminal.Terminal) *TerminalHandler {
	return &TerminalHandler{
		terminal: t,
	}
}

// Lines returns the buffered lines for a tab.
func (h *TerminalHandler) Lines(c echo.Context) error {
	tab := terminal.Source(util.DefaultQuery(c, "tab", string(terminal.SourceAll)))

	lines := h.terminal.Lines(tab)

	result := make([]api.Line, len(lines))
	for i, line := range lines {
		result[i].Unmarshal(line)
	}

	return c.JSON(http.StatusOK, result)
}

// Clear drops all buffered lines. Tracked operations stay untouched.
func (h *TerminalHandler) Clear(c echo.Context) error {
	h.terminal.Clear()

	return c.NoContent(http.StatusNoContent)
}

// Processes returns all tracked operations.
func (h *TerminalHandler) Processes(c echo.Context) error {
	processes := h.terminal.Processes()

	result := make([]api.Process, len(processes))
	for i, process := range processes {
		result[i].Unmarshal(process)
	}

	return c.JSON(http.StatusOK, result)
}

// Notifications returns the current badge state.
func (h *TerminalHandler) Notifications(c echo.Context) error {
	notifications := api.Notifications{}
	notifications.Unmarshal(h.terminal.Notifications())

	return c.JSON(http.StatusOK, notifications)
}

// Acknowledge resets the error and warning counters and returns the
// resulting badge state.
func (h *TerminalHandler) Acknowledge(c echo.Context) error {
	h.terminal.Acknowledge()

	notifications := api.Notifications{}
	notifications.Unmarshal(h.terminal.Notifications())

	return c.JSON(http.StatusOK, notifications)
}
