package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v2"
)

// Config represents the complete configuration for the RC link controller.
type Config struct {
	Link    LinkConfig    `yaml:"link"`
	Steps   StepConfig    `yaml:"steps"`
	Timing  TimingConfig  `yaml:"timing"`
	Logging LoggingConfig `yaml:"logging"`
	Audit   AuditConfig   `yaml:"audit"`
}

// LinkConfig holds the serial link settings.
type LinkConfig struct {
	// Address is a serial device path or tcp://host:port
	Address  string `yaml:"address"`
	BaudRate int    `yaml:"baudRate"`

	// OpenSettle is the wait between opening the port and the first frame.
	// Opening the port resets the microcontroller.
	OpenSettle time.Duration `yaml:"openSettle"`
}

// StepConfig holds the default per-axis step sizes for relative deltas.
type StepConfig struct {
	Throttle int `yaml:"throttle"`
	Roll     int `yaml:"roll"`
	Pitch    int `yaml:"pitch"`
	Yaw      int `yaml:"yaw"`
}

// TimingConfig holds timing-related settings.
type TimingConfig struct {
	// ArmSettle is the receiver settle time between arm sequence phases
	ArmSettle time.Duration `yaml:"armSettle"`
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"maxSizeMB"`
	MaxBackups int    `yaml:"maxBackups"`
}

// AuditConfig holds frame journal settings. An empty Dir disables the journal.
type AuditConfig struct {
	Dir        string `yaml:"dir"`
	MaxSizeMB  int    `yaml:"maxSizeMB"`
	MaxBackups int    `yaml:"maxBackups"`
}

// Default returns the baseline configuration.
func Default() *Config {
	return &Config{
		Link: LinkConfig{
			Address:    "/dev/ttyUSB0",
			BaudRate:   115200,
			OpenSettle: time.Second,
		},
		Steps: StepConfig{
			Throttle: 50,
			Roll:     20,
			Pitch:    20,
			Yaw:      20,
		},
		Timing: TimingConfig{
			ArmSettle: 500 * time.Millisecond,
		},
		Logging: LoggingConfig{
			Level:      "INFO",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
		Audit: AuditConfig{
			MaxSizeMB:  10,
			MaxBackups: 5,
		},
	}
}

// Load merges defaults + optional YAML file + RCLINK_* environment overrides,
// then validates the result. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := loadFromFile(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// loadFromFile loads configuration from a YAML file
func loadFromFile(cfg *Config, filename string) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return err
	}

	return yaml.UnmarshalStrict(data, cfg)
}

// applyEnvOverrides applies RCLINK_* environment variables to the config.
func applyEnvOverrides(cfg *Config) error {
	if val := os.Getenv("RCLINK_LINK_ADDRESS"); val != "" {
		cfg.Link.Address = val
	}

	if err := envInt("RCLINK_LINK_BAUD", &cfg.Link.BaudRate); err != nil {
		return err
	}
	if err := envDuration("RCLINK_LINK_OPEN_SETTLE", &cfg.Link.OpenSettle); err != nil {
		return err
	}

	// Step sizes
	if err := envInt("RCLINK_STEP_THROTTLE", &cfg.Steps.Throttle); err != nil {
		return err
	}
	if err := envInt("RCLINK_STEP_ROLL", &cfg.Steps.Roll); err != nil {
		return err
	}
	if err := envInt("RCLINK_STEP_PITCH", &cfg.Steps.Pitch); err != nil {
		return err
	}
	if err := envInt("RCLINK_STEP_YAW", &cfg.Steps.Yaw); err != nil {
		return err
	}

	if err := envDuration("RCLINK_TIMING_ARM_SETTLE", &cfg.Timing.ArmSettle); err != nil {
		return err
	}

	if val := os.Getenv("RCLINK_LOG_LEVEL"); val != "" {
		cfg.Logging.Level = val
	}
	if val := os.Getenv("RCLINK_AUDIT_DIR"); val != "" {
		cfg.Audit.Dir = val
	}

	return nil
}

func envInt(name string, dst *int) error {
	val := os.Getenv(name)
	if val == "" {
		return nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	*dst = n
	return nil
}

func envDuration(name string, dst *time.Duration) error {
	val := os.Getenv(name)
	if val == "" {
		return nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	*dst = d
	return nil
}
