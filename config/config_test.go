package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigDefaults(t *testing.T) {
	cfg := New()

	assert.NotEmpty(t, cfg.ID)
	assert.NotEmpty(t, cfg.Name)
	assert.Equal(t, int64(1), cfg.Version)
	assert.Equal(t, ":8080", cfg.Address)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 2000, cfg.Terminal.Capacity)
	assert.True(t, cfg.Terminal.AutoScroll)
	assert.Equal(t, "python3", cfg.Setup.Python)
	assert.Equal(t, ">= 3.10", cfg.Setup.PythonConstraint)
	assert.Equal(t, []string{"uiautomator2", "requests"}, cfg.Setup.Packages)

	cfg.Validate(true)
	assert.False(t, cfg.HasErrors())
}

func TestConfigClone(t *testing.T) {
	cfg := New()
	cfg.Address = ":9090"
	cfg.Setup.Packages = []string{"requests"}

	clone := cfg.Clone()

	assert.Equal(t, cfg.ID, clone.ID)
	assert.Equal(t, ":9090", clone.Address)
	assert.Equal(t, []string{"requests"}, clone.Setup.Packages)

	clone.Address = ":8080"
	clone.Setup.Packages[0] = "uiautomator2"

	assert.Equal(t, ":9090", cfg.Address)
	assert.Equal(t, []string{"requests"}, cfg.Setup.Packages)
}

func TestConfigSetGet(t *testing.T) {
	cfg := New()

	require.NoError(t, cfg.Set("terminal.capacity", "500"))
	assert.Equal(t, 500, cfg.Terminal.Capacity)

	v, err := cfg.Get("terminal.capacity")
	require.NoError(t, err)
	assert.Equal(t, "500", v)

	require.Error(t, cfg.Set("unknown.name", "x"))

	require.NoError(t, cfg.Set("address", "8090"))
	assert.Equal(t, ":8090", cfg.Address, "a bare port is normalized")
}

func TestConfigMerge(t *testing.T) {
	t.Setenv("KLEVER_LOG_LEVEL", "debug")
	t.Setenv("KLEVER_TERMINAL_CAPACITY", "100")
	t.Setenv("KLEVER_SETUP_PACKAGES", "requests, pillow")

	cfg := New()
	cfg.Merge()

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 100, cfg.Terminal.Capacity)
	assert.Equal(t, []string{"requests", "pillow"}, cfg.Setup.Packages)

	overrides := cfg.Overrides()
	assert.ElementsMatch(t, []string{"log.level", "terminal.capacity", "setup.packages"}, overrides)
}

func TestConfigValidate(t *testing.T) {
	cfg := New()
	cfg.Log.Level = "verbose"
	cfg.Address = "nonsense"

	cfg.Validate(true)
	assert.True(t, cfg.HasErrors())

	names := []string{}
	cfg.Messages(func(level string, v Variable, message string) {
		if level == "error" {
			names = append(names, v.Name)
		}
	})

	assert.ElementsMatch(t, []string{"log.level", "address"}, names)

	cfg.Log.Level = "warn"
	cfg.Address = "127.0.0.1:8080"

	cfg.Validate(true)
	assert.False(t, cfg.HasErrors())
}

func TestConfigRequired(t *testing.T) {
	cfg := New()
	cfg.ID = ""

	cfg.Validate(true)
	assert.True(t, cfg.HasErrors())
}
