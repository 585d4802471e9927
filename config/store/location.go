package store

import (
	"os"
	"path"
)

// Location returns the path to the config file. If no path is provided,
// different standard locations will be probed:
// - os.UserConfigDir() + /klever-desktop/config.json
// - os.UserHomeDir() + /.config/klever-desktop/config.json
// - ./config/config.json
// If the config exists in none of these locations, it will be assumed
// at ./config/config.json
func Location(filepath string) string {
	configfile := filepath
	if len(configfile) != 0 {
		return configfile
	}

	locations := []string{}

	if dir, err := os.UserConfigDir(); err == nil {
		locations = append(locations, dir+"/klever-desktop/config.json")
	}

	if dir, err := os.UserHomeDir(); err == nil {
		locations = append(locations, dir+"/.config/klever-desktop/config.json")
	}

	locations = append(locations, "./config/config.json")

	for _, path := range locations {
		info, err := os.Stat(path)
		if err != nil {
			continue
		}

		if info.IsDir() {
			continue
		}

		configfile = path
	}

	if len(configfile) == 0 {
		configfile = "./config/config.json"
	}

	os.MkdirAll(path.Dir(configfile), 0740)

	return configfile
}
