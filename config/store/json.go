package store

import (
	gojson "encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/klever-desktop/core/config"
	"github.com/klever-desktop/core/encoding/json"
)

type jsonStore struct {
	path string

	data map[string]*config.Config

	reloadFn func()
}

// NewJSON reads the JSON config file from the given path. After successfully
// reading it in, it is written back to the path. If the path doesn't exist, a
// default JSON config file is written to that path. The returned Store can be
// used to retrieve or write the config. The reloadFn is called whenever a new
// config is written to the store.
func NewJSON(path string, reloadFn func()) (Store, error) {
	c := &jsonStore{
		data:     make(map[string]*config.Config),
		reloadFn: reloadFn,
	}

	path, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to determine absolute path of '%s': %w", path, err)
	}

	c.path = path

	c.data["base"] = config.New()

	if err := c.load(c.data["base"]); err != nil {
		return nil, fmt.Errorf("failed to read JSON from '%s': %w", path, err)
	}

	if err := c.store(c.data["base"]); err != nil {
		return nil, fmt.Errorf("failed to write JSON to '%s': %w", path, err)
	}

	return c, nil
}

func (c *jsonStore) Get() *config.Config {
	return c.data["base"].Clone()
}

func (c *jsonStore) Set(d *config.Config) error {
	d.Validate(true)

	if d.HasErrors() {
		return fmt.Errorf("configuration data has errors after validation")
	}

	data := d.Clone()

	if err := c.store(data); err != nil {
		return fmt.Errorf("failed to write JSON to '%s': %w", c.path, err)
	}

	c.data["base"] = data

	if c.reloadFn != nil {
		c.reloadFn()
	}

	return nil
}

func (c *jsonStore) GetActive() *config.Config {
	if x, ok := c.data["merged"]; ok {
		return x.Clone()
	}

	if x, ok := c.data["base"]; ok {
		return x.Clone()
	}

	return nil
}

func (c *jsonStore) SetActive(d *config.Config) error {
	d.Validate(true)

	if d.HasErrors() {
		return fmt.Errorf("configuration data has errors after validation")
	}

	c.data["merged"] = d.Clone()

	return nil
}

func (c *jsonStore) load(cfg *config.Config) error {
	if len(c.path) == 0 {
		return nil
	}

	if _, err := os.Stat(c.path); os.IsNotExist(err) {
		return nil
	}

	jsondata, err := os.ReadFile(c.path)
	if err != nil {
		return err
	}

	if len(jsondata) == 0 {
		return nil
	}

	version := DataVersion{}

	if err := json.Unmarshal(jsondata, &version); err != nil {
		return json.FormatError(jsondata, err)
	}

	if version.Version != 1 {
		return fmt.Errorf("unknown configuration version %d", version.Version)
	}

	// Unmarshal over the defaults so absent fields keep their default
	// value.
	data := config.New().Data

	if err := json.Unmarshal(jsondata, &data); err != nil {
		return json.FormatError(jsondata, err)
	}

	cfg.Data = data

	cfg.LoadedAt = cfg.CreatedAt
	cfg.UpdatedAt = cfg.CreatedAt

	return nil
}

func (c *jsonStore) store(data *config.Config) error {
	if len(c.path) == 0 {
		return nil
	}

	jsondata, err := gojson.MarshalIndent(data, "", "    ")
	if err != nil {
		return err
	}

	// Write to a temporary file first so a crash can't leave a truncated
	// config behind.
	tmp := c.path + ".tmp"

	if err := os.WriteFile(tmp, jsondata, 0640); err != nil {
		return err
	}

	return os.Rename(tmp, c.path)
}
