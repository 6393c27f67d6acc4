// Package config loads my-grid's settings file, merging it over built-in
// defaults the same way the CLI flags merge over the file (spec.md §6.1).
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/stlalpha/my-grid/internal/logging"
)

// Settings is the persisted, user-editable configuration; CLI flags
// override whichever of these the user passes explicitly.
type Settings struct {
	Host          string `json:"host"`
	Port          int    `json:"port"`
	FIFOPath      string `json:"fifo_path"`
	FIFOEnabled   bool   `json:"fifo_enabled"`
	RateLimit     int    `json:"rate_limit"`
	TargetFPS     int    `json:"target_fps"`
	LayoutDir     string `json:"layout_dir"`
	DefaultBorder string `json:"default_border"`
	Debug         bool   `json:"debug"`
}

// Default returns the built-in settings used when no config file exists.
func Default() Settings {
	return Settings{
		Host:          "127.0.0.1",
		Port:          8765,
		FIFOPath:      "/tmp/mygrid.fifo",
		FIFOEnabled:   true,
		RateLimit:     10,
		TargetFPS:     20,
		LayoutDir:     "layouts",
		DefaultBorder: "unicode",
		Debug:         false,
	}
}

// Load reads config.json from dir, merging it over Default(). A missing
// file is not an error; a malformed one is.
func Load(dir string) (Settings, error) {
	path := filepath.Join(dir, "config.json")
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			logging.Info("config.json not found at %s, using defaults", path)
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config file %s: %w", path, err)
	}

	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config JSON from %s: %w", path, err)
	}
	logging.Info("loaded configuration from %s", path)
	return cfg, nil
}

// Save writes cfg to dir/config.json.
func Save(dir string, cfg Settings) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file %s: %w", path, err)
	}
	return nil
}
