// Package http exposes the REST API of the dashboard. It serves the
// terminal surface, the setup orchestrator, the application log, the
// configuration, and the prometheus metrics.
package http

import (
	"net/http"
	"strings"

	cfgstore "github.com/klever-desktop/core/config/store"
	"github.com/klever-desktop/core/event"
	"github.com/klever-desktop/core/http/errorhandler"
	"github.com/klever-desktop/core/http/handler"
	api "github.com/klever-desktop/core/http/handler/api"
	"github.com/klever-desktop/core/http/validator"
	"github.com/klever-desktop/core/installer"
	"github.com/klever-desktop/core/log"
	"github.com/klever-desktop/core/prometheus"
	"github.com/klever-desktop/core/setup"
	"github.com/klever-desktop/core/terminal"

	mwlog "github.com/klever-desktop/core/http/middleware/log"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

type Config struct {
	Logger       log.Logger
	LogBuffer    log.BufferWriter
	Terminal     terminal.Terminal
	Orchestrator setup.Orchestrator
	Board        *installer.StatusBoard
	Events       *event.PubSub
	Prometheus   prometheus.Reader
	Config       cfgstore.Store
	Cors         CorsConfig
}

type CorsConfig struct {
	Origins []string
}

type Server interface {
	ServeHTTP(w http.ResponseWriter, r *http.Request)
}

type server struct {
	logger log.Logger

	handler struct {
		ping       *handler.PingHandler
		prometheus *handler.PrometheusHandler
	}

	v1handler struct {
		terminal *api.TerminalHandler
		setup    *api.SetupHandler
		events   *api.EventsHandler
		log      *api.LogHandler
		config   *api.ConfigHandler
	}

	middleware struct {
		log  echo.MiddlewareFunc
		cors echo.MiddlewareFunc
	}

	router *echo.Echo
}

func NewServer(config Config) (Server, error) {
	s := &server{
		logger: config.Logger,
	}

	if s.logger == nil {
		s.logger = log.New("HTTP")
	}

	if config.Terminal != nil {
		s.v1handler.terminal = api.NewTerminal(config.Terminal)
	}

	if config.Orchestrator != nil {
		s.v1handler.setup = api.NewSetup(config.Orchestrator, config.Board, s.logger.WithComponent("Setup"))
	}

	if config.Events != nil {
		s.v1handler.events = api.NewEvents(config.Events)
	}

	if config.Config != nil {
		s.v1handler.config = api.NewConfig(config.Config)
	}

	if config.Prometheus != nil {
		s.handler.prometheus = handler.NewPrometheus(config.Prometheus.HTTPHandler())
	}

	s.v1handler.log = api.NewLog(config.LogBuffer)

	s.handler.ping = handler.NewPing()

	s.middleware.log = mwlog.NewWithConfig(mwlog.Config{
		Logger: s.logger,
	})

	origins := config.Cors.Origins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	s.middleware.cors = middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: origins,
	})

	s.router = echo.New()
	s.router.HTTPErrorHandler = errorhandler.HTTPErrorHandler
	s.router.Validator = validator.New()
	s.router.HideBanner = true
	s.router.HidePort = true

	s.router.Use(s.middleware.log)
	s.router.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			rows := strings.Split(string(stack), "\n")
			s.logger.Error().WithField("stack", rows).Log("recovered from a panic")
			return nil
		},
	}))
	s.router.Use(middleware.Gzip())
	s.router.Use(s.middleware.cors)

	s.setRoutes()

	return s, nil
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *server) setRoutes() {
	s.router.GET("/ping", s.handler.ping.Ping)

	if s.handler.prometheus != nil {
		s.router.GET("/metrics", s.handler.prometheus.Metrics)
	}

	// API router group
	api := s.router.Group("/api")

	v1 := api.Group("/v1")

	v1.GET("/log", s.v1handler.log.Log)

	if s.v1handler.terminal != nil {
		v1.GET("/terminal", s.v1handler.terminal.Lines)
		v1.DELETE("/terminal", s.v1handler.terminal.Clear)

		v1.GET("/processes", s.v1handler.terminal.Processes)

		v1.GET("/notifications", s.v1handler.terminal.Notifications)
		v1.POST("/notifications/acknowledge", s.v1handler.terminal.Acknowledge)
	}

	if s.v1handler.setup != nil {
		v1.GET("/setup", s.v1handler.setup.Status)
		v1.POST("/setup", s.v1handler.setup.Run)
	}

	if s.v1handler.events != nil {
		v1.GET("/events", s.v1handler.events.Events)
	}

	if s.v1handler.config != nil {
		v1.GET("/config", s.v1handler.config.Get)
		v1.PUT("/config", s.v1handler.config.Set)
	}
}
