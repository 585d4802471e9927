package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/klever-desktop/core/config/store"
	"github.com/klever-desktop/core/event"
	"github.com/klever-desktop/core/http/mock"
	"github.com/klever-desktop/core/installer"
	"github.com/klever-desktop/core/log"
	"github.com/klever-desktop/core/prometheus"
	"github.com/klever-desktop/core/setup"
	"github.com/klever-desktop/core/terminal"

	"github.com/stretchr/testify/require"
)

func getDummyServer(t *testing.T) Server {
	events := event.NewPubSub()
	t.Cleanup(events.Close)

	term := terminal.New(terminal.Config{
		Events: events,
	})

	orchestrator, err := setup.New(setup.Config{
		Terminal: term,
	})
	require.NoError(t, err)

	cfgstore, err := store.NewJSON(filepath.Join(t.TempDir(), "config.json"), nil)
	require.NoError(t, err)

	metrics := prometheus.New()
	require.NoError(t, metrics.Register(prometheus.NewTerminalCollector("test", term)))

	server, err := NewServer(Config{
		Logger:       log.New("HTTP"),
		LogBuffer:    log.NewBufferWriter(log.Linfo, 10),
		Terminal:     term,
		Orchestrator: orchestrator,
		Board:        installer.NewStatusBoard(),
		Events:       events,
		Prometheus:   metrics,
		Config:       cfgstore,
	})
	require.NoError(t, err)

	return server
}

func TestServerRoutes(t *testing.T) {
	server := getDummyServer(t)

	mock.Request(t, http.StatusOK, server, "GET", "/ping", nil)
	mock.Request(t, http.StatusOK, server, "GET", "/metrics", nil)
	mock.Request(t, http.StatusOK, server, "GET", "/api/v1/terminal", nil)
	mock.Request(t, http.StatusOK, server, "GET", "/api/v1/processes", nil)
	mock.Request(t, http.StatusOK, server, "GET", "/api/v1/notifications", nil)
	mock.Request(t, http.StatusOK, server, "POST", "/api/v1/notifications/acknowledge", nil)
	mock.Request(t, http.StatusOK, server, "GET", "/api/v1/setup", nil)
	mock.Request(t, http.StatusOK, server, "GET", "/api/v1/log", nil)
	mock.Request(t, http.StatusOK, server, "GET", "/api/v1/config", nil)
	mock.Request(t, http.StatusNotFound, server, "GET", "/api/v1/unknown", nil)
}

func TestServerEventsRoute(t *testing.T) {
	server := getDummyServer(t)

	// A cancelled request context makes the stream return immediately
	// after the headers are out.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/events", nil).WithContext(ctx)
	rec := httptest.NewRecorder()

	server.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
}
