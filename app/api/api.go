package api

import (
	"context"
	"fmt"
	"io"
	gohttp "net/http"
	"sync"
	"time"

	"github.com/klever-desktop/core/app"
	"github.com/klever-desktop/core/config"
	configstore "github.com/klever-desktop/core/config/store"
	"github.com/klever-desktop/core/event"
	"github.com/klever-desktop/core/http"
	"github.com/klever-desktop/core/installer"
	"github.com/klever-desktop/core/log"
	"github.com/klever-desktop/core/prometheus"
	"github.com/klever-desktop/core/setup"
	"github.com/klever-desktop/core/terminal"
)

// The API interface is the implementation for the dashboard API.
type API interface {
	// Start starts the API. This is blocking until the app has
	// been ended with Stop() or Destroy(). In this case a nil error
	// is returned. An ErrConfigReload error is returned if a
	// configuration reload has been requested.
	Start(ctx context.Context) error

	// Stop stops the API, some states may be kept intact such
	// that they can be reused after starting the API again.
	Stop()

	// Destroy is the same as Stop() but no state will be kept intact.
	Destroy()

	// Reload the configuration for the API. If there's an error the
	// previously loaded configuration is not altered.
	Reload() error
}

type api struct {
	terminal     terminal.Terminal
	events       *event.PubSub
	board        *installer.StatusBoard
	orchestrator setup.Orchestrator
	prom         prometheus.Metrics
	mainserver   *gohttp.Server

	errorChan chan error

	setupCancel context.CancelFunc

	log struct {
		writer io.Writer
		buffer log.BufferWriter
		logger struct {
			core log.Logger
			main log.Logger
		}
	}

	config struct {
		path   string
		store  configstore.Store
		config *config.Config
	}

	lock   sync.Mutex
	wgStop sync.WaitGroup
	state  string
}

// ErrConfigReload is an error returned to indicate that a reload of
// the configuration has been requested.
var ErrConfigReload = fmt.Errorf("configuration reload")

// New returns a new instance of the API interface
func New(configpath string, logwriter io.Writer) (API, error) {
	a := &api{
		state: "idle",
	}

	a.config.path = configpath
	a.log.writer = logwriter

	if a.log.writer == nil {
		a.log.writer = io.Discard
	}

	a.errorChan = make(chan error, 1)

	if err := a.Reload(); err != nil {
		return nil, err
	}

	return a, nil
}

func (a *api) Reload() error {
	a.lock.Lock()
	defer a.lock.Unlock()

	if a.state == "running" {
		return fmt.Errorf("can't reload config while running")
	}

	if a.errorChan == nil {
		a.errorChan = make(chan error, 1)
	}

	logger := log.New("Core").WithOutput(log.NewConsoleWriter(a.log.writer, log.Lwarn, true))

	store, err := configstore.NewJSON(a.config.path, func() {
		select {
		case a.errorChan <- ErrConfigReload:
		default:
		}
	})
	if err != nil {
		return err
	}

	cfg := store.Get()

	cfg.Merge()

	cfg.Validate(false)

	loglevel := log.Linfo

	switch cfg.Log.Level {
	case "silent":
		loglevel = log.Lsilent
	case "error":
		loglevel = log.Lerror
	case "warn":
		loglevel = log.Lwarn
	case "info":
		loglevel = log.Linfo
	case "debug":
		loglevel = log.Ldebug
	default:
		break
	}

	buffer := log.NewBufferWriter(loglevel, cfg.Log.MaxLines)

	logger = logger.WithOutput(log.NewMultiWriter(
		log.NewConsoleWriter(a.log.writer, loglevel, true),
		buffer,
	))

	logfields := log.Fields{
		"application": app.Name,
		"version":     app.Version.String(),
		"arch":        app.Arch,
		"compiler":    app.Compiler,
	}

	if len(app.Commit) != 0 && len(app.Branch) != 0 {
		logfields["commit"] = app.Commit
		logfields["branch"] = app.Branch
	}

	if len(app.Build) != 0 {
		logfields["build"] = app.Build
	}

	logger.Info().WithFields(logfields).Log("")

	logger.Info().WithField("path", a.config.path).Log("Read config file")

	configlogger := logger.WithComponent("Config")
	cfg.Messages(func(level string, v config.Variable, message string) {
		configlogger = configlogger.WithFields(log.Fields{
			"variable":    v.Name,
			"value":       v.Value,
			"env":         v.EnvName,
			"description": v.Description,
			"override":    v.Merged,
		})
		configlogger.Debug().Log(message)

		switch level {
		case "warn":
			configlogger.Warn().Log(message)
		case "error":
			configlogger.Error().WithField("error", message).Log("")
		default:
			break
		}
	})

	if cfg.HasErrors() {
		logger.Error().WithField("error", "Not all variables are set or are valid. Check the error messages above. Bailing out.").Log("")
		return fmt.Errorf("not all variables are set or valid")
	}

	cfg.LoadedAt = time.Now()

	store.SetActive(cfg)

	a.config.store = store
	a.config.config = cfg
	a.log.logger.core = logger
	a.log.buffer = buffer

	return nil
}

func (a *api) start(ctx context.Context) error {
	a.lock.Lock()
	defer a.lock.Unlock()

	if a.errorChan == nil {
		a.errorChan = make(chan error, 1)
	}

	if a.state == "running" {
		return fmt.Errorf("already running")
	}

	a.state = "starting"

	cfg := a.config.store.GetActive()

	a.events = event.NewPubSub()

	a.terminal = terminal.New(terminal.Config{
		Capacity: cfg.Terminal.Capacity,
		Events:   a.events,
		Logger:   a.log.logger.core.WithComponent("Terminal"),
	})

	a.board = installer.NewStatusBoard()

	steps := installer.DefaultSteps(installer.StepsConfig{
		Board:            a.board,
		Python:           cfg.Setup.Python,
		PythonConstraint: cfg.Setup.PythonConstraint,
		VenvDir:          cfg.Setup.VenvDir,
		Packages:         cfg.Setup.Packages,
		Model:            cfg.Setup.Model,
	})

	orchestrator, err := setup.New(setup.Config{
		Steps:    steps,
		Terminal: a.terminal,
		Name:     "Environment setup",
		Logger:   a.log.logger.core.WithComponent("Setup"),
	})
	if err != nil {
		return fmt.Errorf("unable to create setup orchestrator: %w", err)
	}

	a.orchestrator = orchestrator

	if cfg.Metrics.Enable {
		a.prom = prometheus.New()

		a.prom.Register(prometheus.NewUptimeCollector(cfg.ID, time.Now()))
		a.prom.Register(prometheus.NewTerminalCollector(cfg.ID, a.terminal))
		a.prom.Register(prometheus.NewSetupCollector(cfg.ID, a.orchestrator))
	}

	a.log.logger.main = a.log.logger.core.WithComponent("HTTP").WithField("address", cfg.Address)

	serverConfig := http.Config{
		Logger:       a.log.logger.main,
		LogBuffer:    a.log.buffer,
		Terminal:     a.terminal,
		Orchestrator: a.orchestrator,
		Board:        a.board,
		Events:       a.events,
		Config:       a.config.store,
	}

	if a.prom != nil {
		serverConfig.Prometheus = a.prom
	}

	mainserverhandler, err := http.NewServer(serverConfig)
	if err != nil {
		return fmt.Errorf("unable to create server: %w", err)
	}

	var wgStart sync.WaitGroup

	sendError := func(err error) {
		select {
		case a.errorChan <- err:
		default:
		}
	}

	a.mainserver = &gohttp.Server{
		Addr:              cfg.Address,
		Handler:           mainserverhandler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	wgStart.Add(1)
	a.wgStop.Add(1)

	go func() {
		logger := a.log.logger.main

		defer func() {
			logger.Info().Log("Server exited")
			a.wgStop.Done()
		}()

		wgStart.Done()

		logger.Info().Log("Server started")

		err := a.mainserver.ListenAndServe()
		if err != nil && err != gohttp.ErrServerClosed {
			err = fmt.Errorf("HTTP server: %w", err)
		} else {
			err = nil
		}

		sendError(err)
	}()

	// Wait for the server to be started
	wgStart.Wait()

	if cfg.Setup.AutoRun {
		setupCtx, cancel := context.WithCancel(ctx)
		a.setupCancel = cancel

		a.wgStop.Add(1)

		go func() {
			logger := a.log.logger.core.WithComponent("Setup")

			defer a.wgStop.Done()

			outcome, err := a.orchestrator.Run(setupCtx)
			if err != nil {
				if err != setup.ErrAlreadyRunning {
					logger.Warn().WithError(err).Log("Setup didn't complete")
				}
				return
			}

			logger.Info().WithFields(log.Fields{
				"state":    outcome.State,
				"progress": outcome.Progress,
			}).Log("Setup finished")
		}()
	}

	a.state = "running"

	return nil
}

func (a *api) Start(ctx context.Context) error {
	if err := a.start(ctx); err != nil {
		a.stop()
		return err
	}

	// Block until there's an error from the server
	err := <-a.errorChan

	return err
}

func (a *api) stop() {
	a.lock.Lock()
	defer a.lock.Unlock()

	logger := a.log.logger.core.WithField("action", "shutdown")

	if a.state == "idle" {
		logger.Info().Log("Complete")
		return
	}

	// Cancel a running setup
	if a.setupCancel != nil {
		a.setupCancel()
		a.setupCancel = nil
	}

	// Unregister all collectors
	if a.prom != nil {
		a.prom.UnregisterAll()
		a.prom = nil
	}

	// Shutdown the HTTP mainserver
	if a.mainserver != nil {
		logger := a.log.logger.main
		logger.Info().Log("Stopping ...")

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.mainserver.Shutdown(ctx); err != nil {
			logger.Error().WithError(err).Log("")
		}

		a.mainserver = nil
	}

	// Wait for all goroutines to exit
	logger.Info().Log("Waiting for all servers to stop ...")
	a.wgStop.Wait()

	a.orchestrator = nil
	a.board = nil

	// Stop the event broadcaster
	if a.events != nil {
		a.events.Close()
		a.events = nil
	}

	// Drain error channel
	if a.errorChan != nil {
		close(a.errorChan)
		a.errorChan = nil
	}

	a.state = "idle"

	logger.Info().Log("Complete")
}

func (a *api) Stop() {
	a.log.logger.core.Info().Log("Shutdown requested ...")
	a.stop()
}

func (a *api) Destroy() {
	a.log.logger.core.Info().Log("Shutdown requested ...")
	a.stop()

	// Drop the buffered terminal history
	if a.terminal != nil {
		a.terminal.Clear()
		a.terminal = nil
	}
}
