package api

import (
	"net/http"

	"github.com/klever-desktop/core/config"
	"github.com/klever-desktop/core/config/store"
	"github.com/klever-desktop/core/http/api"
	"github.com/klever-desktop/core/http/handler/util"

	"github.com/labstack/echo/v4"
)

// The ConfigHandler type provides handler functions for reading and
// writing the configuration.
type ConfigHandler struct {
	store store.Store
}

// NewConfig returns a new Config type. You have to provide a config store.
func NewConfig(store store.Store) *ConfigHandler {
	return &ConfigHandler{
		store: store,
	}
}

// Get returns the active configuration.
func (p *ConfigHandler) Get(c echo.Context) error {
	cfg := p.store.GetActive()

	return c.JSON(http.StatusOK, cfg.Data)
}

// Set stores a new configuration. The new configuration takes effect on
// the next start of the app.
func (p *ConfigHandler) Set(c echo.Context) error {
	cfg := p.store.Get()

	data := cfg.Data

	if err := util.ShouldBindJSON(c, &data); err != nil {
		return api.Err(http.StatusBadRequest, "", "invalid JSON: %s", err.Error())
	}

	cfg.Data = data

	cfg.Validate(true)

	if cfg.HasErrors() {
		details := []string{}

		cfg.Messages(func(level string, v config.Variable, message string) {
			if level == "error" {
				details = append(details, v.Name+": "+message)
			}
		})

		return api.Err(http.StatusBadRequest, "invalid configuration", "%s", details)
	}

	if err := p.store.Set(cfg); err != nil {
		return api.Err(http.StatusBadRequest, "", "failed to store configuration: %s", err.Error())
	}

	return c.JSON(http.StatusOK, cfg.Data)
}
