// Package main implements the RC link bench controller entry point.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/op/go-logging"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/radio-control/rclink/internal/audit"
	"github.com/radio-control/rclink/internal/command"
	"github.com/radio-control/rclink/internal/config"
	"github.com/radio-control/rclink/internal/link"
	"github.com/radio-control/rclink/internal/script"
)

const Version = "1.0.0"

var log = logging.MustGetLogger("rclink")

var logFormat = logging.MustStringFormatter(
	`%{time:15:04:05.000} %{module:-8s} %{level:.4s} %{message}`,
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		configPath string
		address    string
		scriptPath string
		arm        bool
		list       bool
		version    bool
	)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage of %s [options]\n", os.Args[0])
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nScript commands:\n")
		script.NewRunner(nil, nil).Usage(os.Stderr)
	}
	flag.StringVar(&configPath, "config", os.Getenv("RCLINK_CONFIG"), "YAML configuration file")
	flag.StringVar(&address, "address", "", "Serial device, USB product/serial string, or tcp://host:port (overrides config)")
	flag.StringVar(&scriptPath, "script", "", "Bench script to run after the link is up (- for stdin)")
	flag.BoolVar(&arm, "arm", false, "Run the arm sequence before the script")
	flag.BoolVar(&list, "list", false, "List serial ports and exit")
	flag.BoolVar(&version, "version", false, "Show version information")
	flag.Parse()

	if version {
		fmt.Printf("rclink %s\n", Version)
		return 0
	}

	if list {
		return listPorts()
	}

	// Step 1: Load configuration
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		return 1
	}
	if address != "" {
		cfg.Link.Address = resolveAddress(address)
	}

	// Step 2: Set up logging
	closeLog, err := setupLogging(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to set up logging: %v\n", err)
		return 1
	}
	defer closeLog()
	log.Infof("Starting rclink v%s", Version)

	// Step 3: Open the frame journal
	opts := []command.Option{}
	if cfg.Audit.Dir != "" {
		journal, err := audit.NewLogger(cfg.Audit.Dir, audit.Options{
			MaxSizeMB:  cfg.Audit.MaxSizeMB,
			MaxBackups: cfg.Audit.MaxBackups,
		})
		if err != nil {
			log.Errorf("Failed to open frame journal: %v", err)
			return 1
		}
		defer func() {
			if err := journal.Close(); err != nil {
				log.Warningf("Error closing frame journal: %v", err)
			}
		}()
		opts = append(opts, command.WithRecorder(journal))
		log.Infof("Frame journal at %s", journal.GetFilePath())
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Step 4: Establish the link. No link, no flight.
	st, err := command.Establish(link.NewTransport(cfg.Link), cfg, opts...)
	if err != nil {
		log.Criticalf("Link unavailable: %v", err)
		return 2
	}
	// Release pulses the receiver reset; it must run on every path from here.
	defer func() {
		if err := st.Release(); err != nil {
			log.Errorf("Fail-safe release incomplete: %v", err)
		}
	}()

	// Step 5: Arm
	if arm {
		if err := st.ArmSequence(); err != nil {
			log.Errorf("Arm sequence failed: %v", err)
			return 1
		}
	}

	// Step 6: Run the bench script
	if scriptPath != "" {
		in, err := openScript(scriptPath)
		if err != nil {
			log.Errorf("Failed to open script: %v", err)
			return 1
		}
		defer in.Close()

		err = script.NewRunner(nil, os.Stdout).Run(ctx, st, in)
		if errors.Is(err, context.Canceled) {
			log.Notice("Interrupted, releasing link")
			return 130
		}
		if err != nil {
			log.Errorf("Script failed: %v", err)
			return 1
		}
	}

	log.Infof("Final state %s", st.Values())
	return 0
}

// setupLogging installs a leveled backend on stderr, plus a rotated file
// when configured.
func setupLogging(cfg config.LoggingConfig) (func(), error) {
	level, err := logging.LogLevel(strings.ToUpper(cfg.Level))
	if err != nil {
		return nil, err
	}

	var out io.Writer = os.Stderr
	closer := func() {}
	if cfg.File != "" {
		file := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
		}
		out = io.MultiWriter(os.Stderr, file)
		closer = func() { _ = file.Close() }
	}

	backend := logging.NewBackendFormatter(logging.NewLogBackend(out, "", 0), logFormat)
	leveled := logging.AddModuleLevel(backend)
	leveled.SetLevel(level, "")
	logging.SetBackend(leveled)

	return closer, nil
}

// resolveAddress maps a USB product or serial string to its device name.
func resolveAddress(address string) string {
	if strings.HasPrefix(address, "tcp://") || strings.HasPrefix(address, "/") {
		return address
	}
	ports, err := link.ListPorts()
	if err != nil {
		return address
	}
	return link.FindPort(ports, address)
}

func listPorts() int {
	ports, err := link.ListPorts()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}
	if len(ports) == 0 {
		fmt.Println("No serial ports found")
		return 0
	}
	for _, port := range ports {
		if port.IsUSB {
			fmt.Printf("%-16s %s:%s %s %s\n", port.Name, port.VID, port.PID, port.SerialNumber, port.Product)
		} else {
			fmt.Println(port.Name)
		}
	}
	return 0
}

func openScript(path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	return os.Open(path)
}
