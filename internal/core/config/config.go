package config

import "time"

// Settings is the typed device configuration consumed read-only by the
// supervisor. It is produced by Load; the core owns no file format.
type Settings struct {
	Device  DeviceConfig  `yaml:"device"`
	Wifi    WifiConfig    `yaml:"wifi"`
	Display DisplayConfig `yaml:"display"`
	Script  ScriptConfig  `yaml:"script"`
	Memory  MemoryConfig  `yaml:"memory"`
	Logging LoggingConfig `yaml:"logging"`
}

// DeviceConfig holds device-wide settings.
type DeviceConfig struct {
	Name            string        `yaml:"name"`
	Timezone        string        `yaml:"timezone"`
	WatchdogTimeout time.Duration `yaml:"watchdog_timeout"`
	StoragePath     string        `yaml:"storage_path"`
}

// WifiConfig holds network settings. The network boot stage is attempted
// only when Enabled is true.
type WifiConfig struct {
	Enabled       bool          `yaml:"enabled"`
	SSID          string        `yaml:"ssid"`
	Password      string        `yaml:"password"`
	ProbeAddress  string        `yaml:"probe_address"`
	Timeout       time.Duration `yaml:"timeout"`
	AutoReconnect bool          `yaml:"auto_reconnect"`
}

// DisplayConfig holds panel settings.
type DisplayConfig struct {
	Width      int   `yaml:"width"`
	Height     int   `yaml:"height"`
	Brightness uint8 `yaml:"brightness"`
	Rotation   int   `yaml:"rotation"`
}

// ScriptConfig holds primary-runtime settings. File is the required resource
// whose absence forces the fallback application.
type ScriptConfig struct {
	File          string        `yaml:"file"`
	TickBudget    time.Duration `yaml:"tick_budget"`
	HeapSize      uint64        `yaml:"heap_size"`
	EnableNetwork bool          `yaml:"enable_network"`
}

// MemoryConfig holds pool capacities for the tiered allocator. A zero
// secondary capacity means the device has no secondary tier.
type MemoryConfig struct {
	PrimaryBytes   uint64 `yaml:"primary_bytes"`
	SecondaryBytes uint64 `yaml:"secondary_bytes"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}
