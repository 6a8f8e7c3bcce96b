package script

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/shlex"
	"github.com/op/go-logging"

	"github.com/radio-control/rclink/internal/command"
)

var log = logging.MustGetLogger("script")

var (
	// ErrUnknownCommand indicates a script line names no registered command.
	ErrUnknownCommand = errors.New("UNKNOWN_COMMAND")

	// ErrUsage indicates malformed command arguments.
	ErrUsage = errors.New("BAD_USAGE")
)

func usageError(msg string) error {
	return fmt.Errorf("%w: %s", ErrUsage, msg)
}

// LineError reports the script line that failed.
type LineError struct {
	Line int
	Text string
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d %q: %v", e.Line, e.Text, e.Err)
}

func (e *LineError) Unwrap() error {
	return e.Err
}

// Runner executes bench scripts against a command state.
type Runner struct {
	registry *Registry
	out      io.Writer
}

// NewRunner creates a runner echoing command output to out.
// A nil registry uses DefaultRegistry.
func NewRunner(registry *Registry, out io.Writer) *Runner {
	if registry == nil {
		registry = DefaultRegistry()
	}
	if out == nil {
		out = io.Discard
	}
	return &Runner{registry: registry, out: out}
}

// Exec runs a single script line. Blank lines and comments do nothing.
func (r *Runner) Exec(ctx context.Context, st *command.State, line string) (string, error) {
	fields, err := shlex.Split(line)
	if err != nil {
		return "", usageError(err.Error())
	}
	if len(fields) == 0 {
		return "", nil
	}

	cmd, ok := r.registry.Get(fields[0])
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownCommand, fields[0])
	}

	out, err := cmd.Handle(ctx, st, fields[1:])
	if err != nil {
		if errors.Is(err, ErrUsage) {
			return "", fmt.Errorf("%w (usage: %s)", err, cmd.Usage)
		}
		return "", err
	}
	return out, nil
}

// Run executes in line by line and stops at the first failing line or when
// ctx is cancelled.
func (r *Runner) Run(ctx context.Context, st *command.State, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	lineNo := 0

	for scanner.Scan() {
		lineNo++
		if err := ctx.Err(); err != nil {
			return err
		}

		text := scanner.Text()
		out, err := r.Exec(ctx, st, text)
		if err != nil {
			return &LineError{Line: lineNo, Text: text, Err: err}
		}
		if out != "" {
			fmt.Fprintln(r.out, out)
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read script: %w", err)
	}

	log.Infof("script finished after %d lines", lineNo)
	return nil
}

// Usage writes the command reference to w.
func (r *Runner) Usage(w io.Writer) {
	for _, name := range r.registry.List() {
		cmd, _ := r.registry.Get(name)
		fmt.Fprintf(w, "  %-34s %s\n", cmd.Usage, cmd.Description)
	}
}
