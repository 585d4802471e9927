package api

import (
	"net/http"
	"strings"

	"github.com/klever-desktop/core/http/handler/util"
	"github.com/klever-desktop/core/log"

	"github.com/labstack/echo/v4"
)

// The LogHandler type provides handler functions for reading the
// application log.
type LogHandler struct {
	buffer log.BufferWriter
}

// NewLog returns a new Log type. You have to provide a log buffer.
func NewLog(buffer log.BufferWriter) *LogHandler {
	l := &LogHandler{
		buffer: buffer,
	}

	if l.buffer == nil {
		l.buffer = log.NewBufferWriter(log.Lsilent, 1)
	}

	return l
}

// Log returns the last log lines of the application.
func (p *LogHandler) Log(c echo.Context) error {
	format := util.DefaultQuery(c, "format", "console")

	events := p.buffer.Events()

	if format == "raw" {
		lines := make([]map[string]interface{}, len(events))

		for i, e := range events {
			line := map[string]interface{}{
				"ts":        e.Time,
				"level":     e.Level.String(),
				"component": e.Component,
			}

			if len(e.Message) != 0 {
				line["message"] = e.Message
			}

			for k, v := range e.Data {
				line[k] = v
			}

			lines[i] = line
		}

		return c.JSON(http.StatusOK, lines)
	}

	formatter := log.NewConsoleFormatter(false)

	lines := make([]string, len(events))

	for i, e := range events {
		lines[i] = strings.TrimSpace(formatter.String(e))
	}

	return c.JSON(http.StatusOK, lines)
}
