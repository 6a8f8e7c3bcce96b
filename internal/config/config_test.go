package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Link.Address != "/dev/ttyUSB0" {
		t.Errorf("Expected default address /dev/ttyUSB0, got %s", cfg.Link.Address)
	}
	if cfg.Link.BaudRate != 115200 {
		t.Errorf("Expected baud rate 115200, got %d", cfg.Link.BaudRate)
	}
	if cfg.Steps != (StepConfig{Throttle: 50, Roll: 20, Pitch: 20, Yaw: 20}) {
		t.Errorf("Unexpected default steps: %+v", cfg.Steps)
	}
	if cfg.Timing.ArmSettle != 500*time.Millisecond {
		t.Errorf("Expected arm settle 500ms, got %v", cfg.Timing.ArmSettle)
	}
	if err := Validate(cfg); err != nil {
		t.Errorf("Default config should validate: %v", err)
	}
}

func TestLoadWithoutFile(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Steps.Throttle != 50 {
		t.Errorf("Expected throttle step 50, got %d", cfg.Steps.Throttle)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rclink.yaml")
	content := `
link:
  address: tcp://127.0.0.1:23
  openSettle: 250ms
steps:
  roll: 10
timing:
  armSettle: 1s
logging:
  level: debug
audit:
  dir: /var/log/rclink
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Link.Address != "tcp://127.0.0.1:23" {
		t.Errorf("Expected tcp address, got %s", cfg.Link.Address)
	}
	if cfg.Link.OpenSettle != 250*time.Millisecond {
		t.Errorf("Expected open settle 250ms, got %v", cfg.Link.OpenSettle)
	}
	// Fields absent from the file keep their defaults
	if cfg.Link.BaudRate != 115200 {
		t.Errorf("Expected default baud rate, got %d", cfg.Link.BaudRate)
	}
	if cfg.Steps.Roll != 10 || cfg.Steps.Pitch != 20 {
		t.Errorf("Unexpected steps: %+v", cfg.Steps)
	}
	if cfg.Timing.ArmSettle != time.Second {
		t.Errorf("Expected arm settle 1s, got %v", cfg.Timing.ArmSettle)
	}
	if cfg.Audit.Dir != "/var/log/rclink" {
		t.Errorf("Expected audit dir, got %q", cfg.Audit.Dir)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rclink.yaml")
	if err := os.WriteFile(path, []byte("link:\n  adress: /dev/ttyACM0\n"), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Error("Expected error for misspelled key")
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatal("Expected error for missing file")
	}
	if !strings.Contains(err.Error(), "failed to load config") {
		t.Errorf("Unexpected error: %v", err)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("RCLINK_LINK_ADDRESS", "/dev/ttyACM1")
	t.Setenv("RCLINK_LINK_BAUD", "57600")
	t.Setenv("RCLINK_LINK_OPEN_SETTLE", "2s")
	t.Setenv("RCLINK_STEP_THROTTLE", "25")
	t.Setenv("RCLINK_STEP_YAW", "5")
	t.Setenv("RCLINK_TIMING_ARM_SETTLE", "750ms")
	t.Setenv("RCLINK_LOG_LEVEL", "WARNING")
	t.Setenv("RCLINK_AUDIT_DIR", "/tmp/frames")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Link.Address != "/dev/ttyACM1" {
		t.Errorf("Expected address override, got %s", cfg.Link.Address)
	}
	if cfg.Link.BaudRate != 57600 {
		t.Errorf("Expected baud override, got %d", cfg.Link.BaudRate)
	}
	if cfg.Link.OpenSettle != 2*time.Second {
		t.Errorf("Expected open settle override, got %v", cfg.Link.OpenSettle)
	}
	if cfg.Steps.Throttle != 25 || cfg.Steps.Yaw != 5 {
		t.Errorf("Expected step overrides, got %+v", cfg.Steps)
	}
	if cfg.Timing.ArmSettle != 750*time.Millisecond {
		t.Errorf("Expected arm settle override, got %v", cfg.Timing.ArmSettle)
	}
	if cfg.Logging.Level != "WARNING" {
		t.Errorf("Expected log level override, got %s", cfg.Logging.Level)
	}
	if cfg.Audit.Dir != "/tmp/frames" {
		t.Errorf("Expected audit dir override, got %s", cfg.Audit.Dir)
	}
}

func TestEnvOverrideMalformed(t *testing.T) {
	tests := []struct {
		name string
		env  string
		val  string
	}{
		{"baud not a number", "RCLINK_LINK_BAUD", "fast"},
		{"step not a number", "RCLINK_STEP_ROLL", "twenty"},
		{"bad duration", "RCLINK_TIMING_ARM_SETTLE", "half a second"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.env, tt.val)
			if _, err := Load(""); err == nil {
				t.Errorf("Expected error for %s=%s", tt.env, tt.val)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"empty address", func(c *Config) { c.Link.Address = "  " }, "address"},
		{"zero baud", func(c *Config) { c.Link.BaudRate = 0 }, "baud"},
		{"negative open settle", func(c *Config) { c.Link.OpenSettle = -time.Second }, "open settle"},
		{"zero throttle step", func(c *Config) { c.Steps.Throttle = 0 }, "throttle step"},
		{"huge yaw step", func(c *Config) { c.Steps.Yaw = 1001 }, "yaw step"},
		{"negative arm settle", func(c *Config) { c.Timing.ArmSettle = -1 }, "arm settle"},
		{"unknown level", func(c *Config) { c.Logging.Level = "LOUD" }, "log level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := Validate(cfg)
			if err == nil {
				t.Fatal("Expected validation error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}

	if err := Validate(nil); err == nil {
		t.Error("Expected error for nil config")
	}
}

func TestValidateLevelCaseInsensitive(t *testing.T) {
	cfg := Default()
	cfg.Logging.Level = "debug"
	if err := Validate(cfg); err != nil {
		t.Errorf("Lowercase level should validate: %v", err)
	}
}
