package prometheus

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/klever-desktop/core/terminal"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, m Metrics) string {
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()

	m.HTTPHandler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	return rec.Body.String()
}

func TestTerminalCollector(t *testing.T) {
	term := terminal.New(terminal.Config{})

	term.RegisterProcess("task-1", "Task", terminal.SourceTask)
	term.AppendLine(terminal.SourceTask, "task-1", terminal.ChannelStdout, "error: boom")
	term.AppendLine(terminal.SourceTask, "task-1", terminal.ChannelStdout, "all good")

	m := New()
	require.NoError(t, m.Register(NewTerminalCollector("test", term)))

	body := scrape(t, m)

	assert.Contains(t, body, `terminal_lines_total{core="test"} 2`)
	assert.Contains(t, body, `terminal_lines_level_total{core="test",level="error"} 1`)
	assert.Contains(t, body, `terminal_processes{core="test",status="running"} 1`)
	assert.Contains(t, body, `terminal_notifications{core="test",kind="error"} 1`)
	assert.Contains(t, body, `terminal_buffer_lines{core="test"} 2`)
}

func TestUptimeCollector(t *testing.T) {
	m := New()
	require.NoError(t, m.Register(NewUptimeCollector("test", time.Now().Add(-time.Minute))))

	body := scrape(t, m)

	assert.Contains(t, body, `uptime_seconds{core="test"}`)
}

func TestUnregisterAll(t *testing.T) {
	term := terminal.New(terminal.Config{})

	m := New()
	require.NoError(t, m.Register(NewTerminalCollector("test", term)))

	m.UnregisterAll()

	body := scrape(t, m)

	assert.NotContains(t, body, "terminal_lines_total")
}
