package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Tracker modes.
const (
	ModeReconcile  = "reconcile"
	ModeAccumulate = "accumulate"
)

const (
	DefaultVendorID  = 0x1B1C
	DefaultProductID = 0x2A08

	DefaultSwitcherPath      = "SoundVolumeView.exe"
	DefaultHeadsetName       = "CORSAIR VOID WIRELESS v2 Gaming Headset"
	DefaultSpeakerName       = "Realtek(R) Audio"
	DefaultCommandTimeoutSec = 5

	DefaultMode            = ModeReconcile
	DefaultCheckIntervalMS = 100
	DefaultDebounceMS      = 500
	DefaultOnlineAfter     = 3
	DefaultOfflineGraceMS  = 1000
)

// Config holds all recognized settings.
type Config struct {
	Device  DeviceConfig  `yaml:"device"`
	Audio   AudioConfig   `yaml:"audio"`
	Monitor MonitorConfig `yaml:"monitor"`
}

// DeviceConfig identifies the USB receiver to listen on.
type DeviceConfig struct {
	VendorID  uint16 `yaml:"vendor_id"`
	ProductID uint16 `yaml:"product_id"`
}

// AudioConfig describes the external switcher invocation.
type AudioConfig struct {
	SwitcherPath      string `yaml:"switcher_path"`
	HeadsetName       string `yaml:"headset_name"`
	SpeakerName       string `yaml:"speaker_name"`
	CommandTimeoutSec int    `yaml:"command_timeout_sec"`
}

// MonitorConfig tunes the link-state machine.
type MonitorConfig struct {
	Mode            string `yaml:"mode"`
	CheckIntervalMS int    `yaml:"check_interval_ms"`
	DebounceMS      int    `yaml:"debounce_ms"`
	OnlineAfter     int    `yaml:"online_after"`
	OfflineGraceMS  int    `yaml:"offline_grace_ms"`
	HistoryPath     string `yaml:"history_path"`
}

// Default returns the calibrated built-in configuration.
func Default() Config {
	var cfg Config
	ApplyDefaults(&cfg)
	return cfg
}

// Load reads and parses a YAML config file.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, err
	}

	ApplyDefaults(&cfg)
	return cfg, nil
}

// Save writes a YAML config file to disk.
func Save(path string, cfg Config) error {
	ApplyDefaults(&cfg)
	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o644)
}

// ApplyDefaults fills in default values when empty.
func ApplyDefaults(cfg *Config) {
	if cfg.Device.VendorID == 0 {
		cfg.Device.VendorID = DefaultVendorID
	}
	if cfg.Device.ProductID == 0 {
		cfg.Device.ProductID = DefaultProductID
	}

	if cfg.Audio.SwitcherPath == "" {
		cfg.Audio.SwitcherPath = DefaultSwitcherPath
	}
	if cfg.Audio.HeadsetName == "" {
		cfg.Audio.HeadsetName = DefaultHeadsetName
	}
	if cfg.Audio.SpeakerName == "" {
		cfg.Audio.SpeakerName = DefaultSpeakerName
	}
	if cfg.Audio.CommandTimeoutSec == 0 {
		cfg.Audio.CommandTimeoutSec = DefaultCommandTimeoutSec
	}

	if cfg.Monitor.Mode == "" {
		cfg.Monitor.Mode = DefaultMode
	}
	if cfg.Monitor.CheckIntervalMS == 0 {
		cfg.Monitor.CheckIntervalMS = DefaultCheckIntervalMS
	}
	if cfg.Monitor.DebounceMS == 0 {
		cfg.Monitor.DebounceMS = DefaultDebounceMS
	}
	if cfg.Monitor.OnlineAfter == 0 {
		cfg.Monitor.OnlineAfter = DefaultOnlineAfter
	}
	if cfg.Monitor.OfflineGraceMS == 0 {
		cfg.Monitor.OfflineGraceMS = DefaultOfflineGraceMS
	}
}

// Validate performs minimal validation of required fields.
func Validate(cfg Config) error {
	if cfg.Device.VendorID == 0 || cfg.Device.ProductID == 0 {
		return fmt.Errorf("device.vendor_id and device.product_id are required")
	}
	if cfg.Audio.HeadsetName == "" {
		return fmt.Errorf("audio.headset_name is required")
	}
	if cfg.Audio.SpeakerName == "" {
		return fmt.Errorf("audio.speaker_name is required")
	}
	switch cfg.Monitor.Mode {
	case ModeReconcile, ModeAccumulate:
	default:
		return fmt.Errorf("monitor.mode must be %q or %q, got %q", ModeReconcile, ModeAccumulate, cfg.Monitor.Mode)
	}
	if cfg.Monitor.CheckIntervalMS <= 0 {
		return fmt.Errorf("monitor.check_interval_ms must be positive")
	}
	if cfg.Monitor.DebounceMS < 0 {
		return fmt.Errorf("monitor.debounce_ms must not be negative")
	}
	if cfg.Monitor.OnlineAfter <= 0 {
		return fmt.Errorf("monitor.online_after must be positive")
	}
	if cfg.Monitor.OfflineGraceMS <= 0 {
		return fmt.Errorf("monitor.offline_grace_ms must be positive")
	}
	return nil
}
