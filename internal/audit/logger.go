package audit

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/radio-control/rclink/internal/command"
	"github.com/radio-control/rclink/internal/link"
)

// FileName is the journal file inside the audit directory.
const FileName = "frames.jsonl"

// Outcome codes
const (
	CodeSuccess         = "SUCCESS"
	CodeLinkUnavailable = "LINK_UNAVAILABLE"
	CodeTransportWrite  = "TRANSPORT_WRITE"
	CodeError           = "ERROR"
)

// Entry represents a single journal record.
type Entry struct {
	Timestamp time.Time `json:"ts"`
	Action    string    `json:"action"`
	Frame     string    `json:"frame"`
	Outcome   string    `json:"outcome"`
	Code      string    `json:"code"`
}

// Options controls journal rotation.
type Options struct {
	MaxSizeMB  int
	MaxBackups int
}

// Logger appends every transmitted frame to a rotated JSONL journal.
type Logger struct {
	mu       sync.Mutex
	filePath string
	out      io.WriteCloser
	now      func() time.Time
}

// Compile-time assertion that Logger implements command.FrameRecorder
var _ command.FrameRecorder = (*Logger)(nil)

// NewLogger creates a journal in logDir.
func NewLogger(logDir string, opts Options) (*Logger, error) {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	filePath := filepath.Join(logDir, FileName)

	// Create the file up front so permission problems surface at startup
	file, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open frame journal: %w", err)
	}
	if err := file.Close(); err != nil {
		return nil, fmt.Errorf("failed to open frame journal: %w", err)
	}

	return &Logger{
		filePath: filePath,
		out: &lumberjack.Logger{
			Filename:   filePath,
			MaxSize:    opts.MaxSizeMB,
			MaxBackups: opts.MaxBackups,
		},
		now: time.Now,
	}, nil
}

// RecordFrame logs one frame transmission attempt.
func (l *Logger) RecordFrame(action, frame string, err error) {
	outcome := "sent"
	if err != nil {
		outcome = err.Error()
	}

	l.writeEntry(Entry{
		Timestamp: l.now().UTC(),
		Action:    action,
		Frame:     frame,
		Outcome:   outcome,
		Code:      CodeFromError(err),
	})
}

// CodeFromError maps transport errors to journal codes.
func CodeFromError(err error) string {
	switch {
	case err == nil:
		return CodeSuccess
	case errors.Is(err, link.ErrLinkUnavailable):
		return CodeLinkUnavailable
	case errors.Is(err, link.ErrTransportWrite):
		return CodeTransportWrite
	default:
		return CodeError
	}
}

func (l *Logger) writeEntry(entry Entry) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.out == nil {
		return
	}

	jsonData, err := json.Marshal(entry)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to marshal frame entry: %v\n", err)
		return
	}

	if _, err := l.out.Write(append(jsonData, '\n')); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write frame entry: %v\n", err)
	}
}

// Rotate closes the current journal file and starts a new one.
func (l *Logger) Rotate() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	rotator, ok := l.out.(*lumberjack.Logger)
	if !ok {
		return fmt.Errorf("journal is closed")
	}
	return rotator.Rotate()
}

// Close closes the journal. Later records are dropped.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.out == nil {
		return nil
	}
	err := l.out.Close()
	l.out = nil
	return err
}

// GetFilePath returns the path to the journal file.
func (l *Logger) GetFilePath() string {
	return l.filePath
}
