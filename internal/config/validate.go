package config

import (
	"fmt"
	"strings"
)

// Step sizes beyond this would cross the full axis range in one event.
const maxStep = 1000

var validLevels = []string{"CRITICAL", "ERROR", "WARNING", "NOTICE", "INFO", "DEBUG"}

// Validate enforces configuration bounds.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config cannot be nil")
	}

	if err := validateLink(&cfg.Link); err != nil {
		return fmt.Errorf("link validation failed: %w", err)
	}

	if err := validateSteps(&cfg.Steps); err != nil {
		return fmt.Errorf("step validation failed: %w", err)
	}

	if cfg.Timing.ArmSettle < 0 {
		return fmt.Errorf("arm settle must be non-negative, got %v", cfg.Timing.ArmSettle)
	}

	if !contains(validLevels, strings.ToUpper(cfg.Logging.Level)) {
		return fmt.Errorf("invalid log level %s, must be one of: %v", cfg.Logging.Level, validLevels)
	}

	return nil
}

func validateLink(link *LinkConfig) error {
	if strings.TrimSpace(link.Address) == "" {
		return fmt.Errorf("address must not be empty")
	}
	if link.BaudRate <= 0 {
		return fmt.Errorf("baud rate must be positive, got %d", link.BaudRate)
	}
	if link.OpenSettle < 0 {
		return fmt.Errorf("open settle must be non-negative, got %v", link.OpenSettle)
	}
	return nil
}

func validateSteps(steps *StepConfig) error {
	named := []struct {
		name string
		val  int
	}{
		{"throttle", steps.Throttle},
		{"roll", steps.Roll},
		{"pitch", steps.Pitch},
		{"yaw", steps.Yaw},
	}
	for _, s := range named {
		if s.val < 1 || s.val > maxStep {
			return fmt.Errorf("%s step %d is outside range [1, %d]", s.name, s.val, maxStep)
		}
	}
	return nil
}

// contains checks if a string slice contains a specific string
func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
