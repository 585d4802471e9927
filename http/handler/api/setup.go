package api

import (
	"context"
	"net/http"

	"github.com/klever-desktop/core/http/api"
	"github.com/klever-desktop/core/installer"
	"github.com/klever-desktop/core/log"
	"github.com/klever-desktop/core/setup"

	"github.com/labstack/echo/v4"
)

// The SetupHandler type provides handler functions for running the
// environment setup and reading its progress.
type SetupHandler struct {
	orchestrator setup.Orchestrator
	board        *installer.StatusBoard
	logger       log.Logger
}

// NewSetup returns a new Setup type. You have to provide an orchestrator
// and the status board its steps report to.
func NewSetup(orchestrator setup.Orchestrator, board *installer.StatusBoard, logger log.Logger) *SetupHandler {
	h := &SetupHandler{
		orchestrator: orchestrator,
		board:        board,
		logger:       logger,
	}

	if h.board == nil {
		h.board = installer.NewStatusBoard()
	}

	if h.logger == nil {
		h.logger = log.New("")
	}

	return h
}

// Run starts a setup run in the background. A run that is already in
// flight is not started twice.
func (h *SetupHandler) Run(c echo.Context) error {
	if h.orchestrator.State() == setup.StateRunning {
		return api.Err(http.StatusConflict, "", "a setup run is already in flight")
	}

	go func() {
		outcome, err := h.orchestrator.Run(context.Background())
		if err != nil {
			h.logger.WithError(err).Warn().Log("Setup run rejected")
			return
		}

		h.logger.WithField("state", outcome.State).Info().Log("Setup run finished")
	}()

	return c.JSON(http.StatusAccepted, h.status())
}

// Status returns the state of the setup and of each provisioned tool.
func (h *SetupHandler) Status(c echo.Context) error {
	return c.JSON(http.StatusOK, h.status())
}

func (h *SetupHandler) status() api.SetupStatus {
	status := api.SetupStatus{
		State:    h.orchestrator.State().String(),
		Progress: h.orchestrator.Progress(),
		Tools:    map[string]api.Tool{},
	}

	for key, s := range h.board.All() {
		tool := api.Tool{}
		tool.Unmarshal(s)
		status.Tools[key] = tool
	}

	return status
}
