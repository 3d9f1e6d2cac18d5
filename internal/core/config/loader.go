package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

// Default returns the built-in settings used when no configuration can be
// loaded.
func Default() *Settings {
	cfg := &Settings{}
	applyDefaults(cfg)
	return cfg
}

// Load reads device settings from a YAML file.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Settings
	// Expand environment variables in the YAML content
	expandedData := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

// Save writes the settings back to a YAML file. Used by the emergency
// shutdown path on a best-effort basis.
func Save(path string, cfg *Settings) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// FileStore loads and saves settings from a fixed YAML path.
type FileStore struct {
	Path string
}

func (s FileStore) Load() (*Settings, error) {
	return Load(s.Path)
}

func (s FileStore) Save(cfg *Settings) error {
	return Save(s.Path, cfg)
}

func applyDefaults(cfg *Settings) {
	if cfg.Device.Name == "" {
		cfg.Device.Name = "screencore"
	}
	if cfg.Device.StoragePath == "" {
		cfg.Device.StoragePath = "data"
	}
	if cfg.Device.WatchdogTimeout == 0 {
		cfg.Device.WatchdogTimeout = 30 * time.Second
	}
	if cfg.Wifi.Timeout == 0 {
		cfg.Wifi.Timeout = 15 * time.Second
	}
	if cfg.Display.Width == 0 {
		cfg.Display.Width = 536
	}
	if cfg.Display.Height == 0 {
		cfg.Display.Height = 240
	}
	if cfg.Display.Brightness == 0 {
		cfg.Display.Brightness = 200
	}
	if cfg.Script.File == "" {
		cfg.Script.File = "app.js"
	}
	if cfg.Script.TickBudget == 0 {
		cfg.Script.TickBudget = 100 * time.Millisecond
	}
	if cfg.Memory.PrimaryBytes == 0 {
		cfg.Memory.PrimaryBytes = 128 * 1024
	}
}
