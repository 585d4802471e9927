// Package config implements types for handling the configuration of the app.
package config

import (
	"time"

	"github.com/klever-desktop/core/slices"

	haikunator "github.com/atrox/haikunatorgo/v2"
	"github.com/google/uuid"
)

// Data is the actual configuration data for the app.
type Data struct {
	CreatedAt time.Time `json:"created_at"`
	LoadedAt  time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
	Version   int64     `json:"version"`
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	Log       struct {
		Level    string `json:"level" enums:"debug,info,warn,error,silent"`
		MaxLines int    `json:"max_lines"`
	} `json:"log"`
	Terminal struct {
		Capacity   int  `json:"capacity"`
		AutoOpen   bool `json:"auto_open"`
		AutoClose  bool `json:"auto_close"`
		AutoScroll bool `json:"auto_scroll"`
	} `json:"terminal"`
	Setup struct {
		AutoRun          bool     `json:"auto_run"`
		Python           string   `json:"python"`
		PythonConstraint string   `json:"python_constraint"`
		VenvDir          string   `json:"venv_dir"`
		Packages         []string `json:"packages"`
		Model            string   `json:"model"`
	} `json:"setup"`
	Metrics struct {
		Enable bool `json:"enable"`
	} `json:"metrics"`
}

// Config is the actual configuration data with the knowledge of how each
// value is named, defaulted, validated, and overridden from the environment.
type Config struct {
	Data

	vars variables
}

// New returns a configuration with default values.
func New() *Config {
	cfg := &Config{}

	cfg.init()

	cfg.CreatedAt = time.Now()
	cfg.UpdatedAt = cfg.CreatedAt

	return cfg
}

// Clone returns a copy of the configuration.
func (d *Config) Clone() *Config {
	cfg := New()

	cfg.Data = d.Data

	cfg.Setup.Packages = slices.Copy(d.Setup.Packages)

	return cfg
}

func (d *Config) init() {
	d.vars = variables{}

	d.Version = 1

	d.vars.register(newStringValue(&d.ID, uuid.New().String()), "id", "KLEVER_ID", "ID for this instance", true)
	d.vars.register(newStringValue(&d.Name, haikunator.New().Haikunate()), "name", "KLEVER_NAME", "A human readable name for this instance", false)
	d.vars.register(newAddressValue(&d.Address, ":8080"), "address", "KLEVER_ADDRESS", "HTTP listen address", true)

	d.vars.register(newLogLevelValue(&d.Log.Level, "info"), "log.level", "KLEVER_LOG_LEVEL", "Loglevel: silent, error, warn, info, debug", false)
	d.vars.register(newIntValue(&d.Log.MaxLines, 1000), "log.max_lines", "KLEVER_LOG_MAX_LINES", "Number of latest log lines to keep in memory", false)

	d.vars.register(newIntValue(&d.Terminal.Capacity, 2000), "terminal.capacity", "KLEVER_TERMINAL_CAPACITY", "Number of terminal lines to keep in memory", false)
	d.vars.register(newBoolValue(&d.Terminal.AutoOpen, true), "terminal.auto_open", "KLEVER_TERMINAL_AUTO_OPEN", "Open the terminal when an operation starts", false)
	d.vars.register(newBoolValue(&d.Terminal.AutoClose, false), "terminal.auto_close", "KLEVER_TERMINAL_AUTO_CLOSE", "Close the terminal when all operations finished without errors", false)
	d.vars.register(newBoolValue(&d.Terminal.AutoScroll, true), "terminal.auto_scroll", "KLEVER_TERMINAL_AUTO_SCROLL", "Follow the newest terminal line", false)

	d.vars.register(newBoolValue(&d.Setup.AutoRun, true), "setup.auto_run", "KLEVER_SETUP_AUTO_RUN", "Run the environment setup on startup", false)
	d.vars.register(newStringValue(&d.Setup.Python, "python3"), "setup.python", "KLEVER_SETUP_PYTHON", "Python binary to probe", false)
	d.vars.register(newStringValue(&d.Setup.PythonConstraint, ">= 3.10"), "setup.python_constraint", "KLEVER_SETUP_PYTHON_CONSTRAINT", "Required Python version", false)
	d.vars.register(newStringValue(&d.Setup.VenvDir, ""), "setup.venv_dir", "KLEVER_SETUP_VENV_DIR", "Directory of the virtual environment", false)
	d.vars.register(newStringListValue(&d.Setup.Packages, []string{"uiautomator2", "requests"}, ","), "setup.packages", "KLEVER_SETUP_PACKAGES", "Python packages to install into the virtual environment", false)
	d.vars.register(newStringValue(&d.Setup.Model, ""), "setup.model", "KLEVER_SETUP_MODEL", "Vision model to pull into Ollama, empty to skip", false)

	d.vars.register(newBoolValue(&d.Metrics.Enable, true), "metrics.enable", "KLEVER_METRICS_ENABLE", "Expose prometheus metrics", false)
}

// Merge applies the environment variable overrides.
func (d *Config) Merge() {
	d.vars.Merge()

	if len(d.vars.Overrides()) != 0 {
		d.UpdatedAt = time.Now()
	}
}

// Validate checks the configuration and records a message for each
// violation. With resetLogs, previously recorded messages are dropped.
func (d *Config) Validate(resetLogs bool) {
	d.vars.Validate(resetLogs)
}

// HasErrors returns whether the last validation recorded errors.
func (d *Config) HasErrors() bool {
	return d.vars.HasErrors()
}

// Messages calls the given callback for each message the last validation
// or merge recorded.
func (d *Config) Messages(logger func(level string, v Variable, message string)) {
	d.vars.Messages(logger)
}

// Overrides returns the names of all values that came from the environment.
func (d *Config) Overrides() []string {
	return d.vars.Overrides()
}

// Get returns the string representation of the value with the given name.
func (d *Config) Get(name string) (string, error) {
	return d.vars.Get(name)
}

// Set sets the value with the given name from its string representation.
func (d *Config) Set(name, val string) error {
	return d.vars.Set(name, val)
}
