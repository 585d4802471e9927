package api

import (
	gojson "encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/klever-desktop/core/event"
	"github.com/klever-desktop/core/http/api"
	"github.com/klever-desktop/core/http/handler/util"
	"github.com/klever-desktop/core/terminal"

	"github.com/labstack/echo/v4"
)

// The EventsHandler type streams the pub/sub events of the terminal core to
// push-style observers.
type EventsHandler struct {
	events *event.PubSub
}

// NewEvents returns a new EventsHandler type. You have to provide a pub/sub.
func NewEvents(events *event.PubSub) *EventsHandler {
	return &EventsHandler{
		events: events,
	}
}

// Events streams line and process events as they happen. The stream is
// served as text/event-stream, or as application/x-json-stream if the
// client accepts it. The tab query limits the stream to one source.
func (h *EventsHandler) Events(c echo.Context) error {
	tab := terminal.Source(util.DefaultQuery(c, "tab", string(terminal.SourceAll)))

	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	req := c.Request()
	reqctx := req.Context()

	contentType := "text/event-stream"
	accept := req.Header.Get(echo.HeaderAccept)
	if strings.Contains(accept, "application/x-json-stream") {
		contentType = "application/x-json-stream"
	}

	res := c.Response()

	res.Header().Set(echo.HeaderContentType, contentType+"; charset=UTF-8")
	res.Header().Set(echo.HeaderCacheControl, "no-store")
	res.Header().Set(echo.HeaderConnection, "close")
	res.WriteHeader(http.StatusOK)

	evts, cancel := h.events.Subscribe()
	defer cancel()

	enc := gojson.NewEncoder(res)
	enc.SetIndent("", "")

	filterEvent := func(e *api.Event) bool {
		if tab == terminal.SourceAll {
			return true
		}

		return e.Source == string(tab)
	}

	wireEvent := api.Event{}

	if contentType == "text/event-stream" {
		res.Write([]byte(":keepalive\n\n"))
		res.Flush()

		for {
			select {
			case <-reqctx.Done():
				return nil
			case <-ticker.C:
				res.Write([]byte(":keepalive\n\n"))
				res.Flush()
			case e, ok := <-evts:
				if !ok {
					return nil
				}

				if !wireEvent.Unmarshal(e) {
					continue
				}

				if !filterEvent(&wireEvent) {
					continue
				}

				res.Write([]byte("event: " + wireEvent.Type + "\ndata: "))
				if err := enc.Encode(wireEvent); err != nil {
					return err
				}
				res.Write([]byte("\n"))
				res.Flush()
			}
		}
	} else {
		res.Write([]byte("{\"event\": \"keepalive\"}\n"))
		res.Flush()

		for {
			select {
			case <-reqctx.Done():
				return nil
			case <-ticker.C:
				res.Write([]byte("{\"event\": \"keepalive\"}\n"))
				res.Flush()
			case e, ok := <-evts:
				if !ok {
					return nil
				}

				if !wireEvent.Unmarshal(e) {
					continue
				}

				if !filterEvent(&wireEvent) {
					continue
				}

				if err := enc.Encode(wireEvent); err != nil {
					return err
				}
				res.Flush()
			}
		}
	}
}
