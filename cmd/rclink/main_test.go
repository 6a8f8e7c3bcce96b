package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/radio-control/rclink/internal/config"
)

func TestResolveAddressPassthrough(t *testing.T) {
	for _, addr := range []string{"tcp://127.0.0.1:5000", "/dev/ttyUSB0"} {
		if got := resolveAddress(addr); got != addr {
			t.Errorf("resolveAddress(%q) = %q", addr, got)
		}
	}
}

func TestSetupLogging(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "rclink.log")

	closeLog, err := setupLogging(config.LoggingConfig{Level: "debug", File: logFile, MaxSizeMB: 1, MaxBackups: 1})
	if err != nil {
		t.Fatalf("setupLogging() failed: %v", err)
	}
	log.Info("hello")
	closeLog()

	data, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("log file not written: %v", err)
	}
	if len(data) == 0 {
		t.Error("Expected log output in file")
	}
}

func TestSetupLoggingRejectsLevel(t *testing.T) {
	if _, err := setupLogging(config.LoggingConfig{Level: "LOUD"}); err == nil {
		t.Error("Expected error for unknown level")
	}
}

func TestOpenScript(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bench.rc")
	if err := os.WriteFile(path, []byte("send\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	in, err := openScript(path)
	if err != nil {
		t.Fatalf("openScript() failed: %v", err)
	}
	_ = in.Close()

	if _, err := openScript(filepath.Join(t.TempDir(), "missing.rc")); err == nil {
		t.Error("Expected error for missing script")
	}
}
