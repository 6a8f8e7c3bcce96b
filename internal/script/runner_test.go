package script

import (
	"bytes"
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/radio-control/rclink/internal/command"
	"github.com/radio-control/rclink/internal/config"
	"github.com/radio-control/rclink/internal/link"
	"github.com/radio-control/rclink/internal/link/fake"
)

func setupState(t *testing.T) (*command.State, *fake.Transport) {
	t.Helper()

	tr := fake.NewTransport()
	st, err := command.Establish(tr, config.Default(), command.WithSleeper(func(time.Duration) {}))
	if err != nil {
		t.Fatalf("Establish() failed: %v", err)
	}
	return st, tr
}

func TestRunScript(t *testing.T) {
	st, tr := setupState(t)
	var out bytes.Buffer

	script := `
# preflight check
roll right
send
pitch back 40      # larger step
yaw ccw
thrust up
values
set roll -1
rel thrust -1
send
reset
send
`
	if err := NewRunner(nil, &out).Run(context.Background(), st, strings.NewReader(script)); err != nil {
		t.Fatalf("Run() failed: %v", err)
	}

	expectedFrames := []string{
		"1000, 1500, 1500, 1500",
		"1000, 1520, 1500, 1500",
		"1000, 1000, 1460, 1480",
		"1000, 1500, 1500, 1500",
	}
	if !reflect.DeepEqual(tr.Frames(), expectedFrames) {
		t.Errorf("Expected frames %v, got %v", expectedFrames, tr.Frames())
	}

	expectedOut := "1000, 1520, 1500, 1500\n" +
		"T: 1050 R: 1520 P: 1460 Y: 1480\n" +
		"1000, 1000, 1460, 1480\n" +
		"1000, 1500, 1500, 1500\n"
	if out.String() != expectedOut {
		t.Errorf("Expected output\n%s\ngot\n%s", expectedOut, out.String())
	}
}

func TestExecCommands(t *testing.T) {
	tests := []struct {
		name   string
		lines  []string
		expect string
	}{
		{"thrust mid", []string{"thrust mid"}, "1500, 1500, 1500, 1500"},
		{"thrust custom step", []string{"thrust up 10"}, "1010, 1500, 1500, 1500"},
		{"level", []string{"level"}, "1500, 1500, 1500, 1500"},
		{"max", []string{"max"}, "2000, 1500, 1500, 1500"},
		{"reset rotation keeps throttle", []string{"max", "yaw cw", "reset-rotation"}, "2000, 1500, 1500, 1500"},
		{"set pitch", []string{"set pitch 1"}, "1000, 1500, 2000, 1500"},
		{"rel roll", []string{"rel roll 0.5"}, "1000, 1510, 1500, 1500"},
		{"huge step saturates in its direction", []string{"roll right 9223372036854775807"}, "1000, 2000, 1500, 1500"},
		{"huge step saturates low", []string{"pitch back 5000"}, "1000, 1500, 1000, 1500"},
		{"huge thrust step", []string{"thrust up 9223372036854775807", "yaw ccw 1001"}, "2000, 1500, 1500, 1000"},
		{"small gains accumulate", []string{"rel roll 0.0125", "rel roll 0.0125", "rel roll 0.0125", "rel roll 0.0125"}, "1000, 1501, 1500, 1500"},
		{"unknown direction is skipped", []string{"roll up", "pitch sideways 10"}, "1000, 1500, 1500, 1500"},
		{"blank and comment", []string{"", "   ", "# nothing"}, "1000, 1500, 1500, 1500"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st, _ := setupState(t)
			runner := NewRunner(nil, nil)
			for _, line := range tt.lines {
				if _, err := runner.Exec(context.Background(), st, line); err != nil {
					t.Fatalf("Exec(%q) failed: %v", line, err)
				}
			}
			if st.Frame() != tt.expect {
				t.Errorf("Expected frame %q, got %q", tt.expect, st.Frame())
			}
		})
	}
}

func TestExecErrors(t *testing.T) {
	tests := []struct {
		name string
		line string
		want error
	}{
		{"unknown command", "hover", ErrUnknownCommand},
		{"send with args", "send now", ErrUsage},
		{"missing direction", "roll", ErrUsage},
		{"bad step", "roll left lots", ErrUsage},
		{"zero step", "yaw cw 0", ErrUsage},
		{"negative step", "roll right -20", ErrUsage},
		{"step beyond int range", "roll right 99999999999999999999", ErrUsage},
		{"unknown axis", "set throttle 0.5", ErrUsage},
		{"bad unit", "set roll half", ErrUsage},
		{"missing gain", "rel roll", ErrUsage},
		{"bad duration", "sleep soon", ErrUsage},
		{"unterminated quote", `roll "left`, ErrUsage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st, _ := setupState(t)
			before := st.Frame()

			_, err := NewRunner(nil, nil).Exec(context.Background(), st, tt.line)
			if !errors.Is(err, tt.want) {
				t.Fatalf("Expected %v, got %v", tt.want, err)
			}
			if st.Frame() != before {
				t.Errorf("Failed command must not change state, got %q", st.Frame())
			}
		})
	}
}

func TestRunReportsLine(t *testing.T) {
	st, _ := setupState(t)

	err := NewRunner(nil, nil).Run(context.Background(), st, strings.NewReader("send\nroll left\nflip\nsend\n"))

	var lineErr *LineError
	if !errors.As(err, &lineErr) {
		t.Fatalf("Expected *LineError, got %v", err)
	}
	if lineErr.Line != 3 || lineErr.Text != "flip" {
		t.Errorf("Unexpected line error %+v", lineErr)
	}
	if !errors.Is(err, ErrUnknownCommand) {
		t.Errorf("Expected ErrUnknownCommand, got %v", err)
	}
}

func TestRunArm(t *testing.T) {
	st, tr := setupState(t)
	var out bytes.Buffer

	if err := NewRunner(nil, &out).Run(context.Background(), st, strings.NewReader("arm\n")); err != nil {
		t.Fatalf("Run() failed: %v", err)
	}

	expected := []string{
		"1000, 1500, 1500, 1500",
		"2000, 1500, 1500, 1500",
		"2000, 1500, 1500, 1500",
		"1530, 1500, 1500, 1500",
	}
	if !reflect.DeepEqual(tr.Frames(), expected) {
		t.Errorf("Expected frames %v, got %v", expected, tr.Frames())
	}
	if out.String() != "1530, 1500, 1500, 1500\n" {
		t.Errorf("Unexpected output %q", out.String())
	}
}

func TestRunPropagatesTransportError(t *testing.T) {
	st, tr := setupState(t)
	tr.FailWrites(fake.ErrSimulated)

	err := NewRunner(nil, nil).Run(context.Background(), st, strings.NewReader("send\n"))
	if !errors.Is(err, link.ErrTransportWrite) {
		t.Fatalf("Expected ErrTransportWrite, got %v", err)
	}
}

func TestSleepHonoursCancellation(t *testing.T) {
	st, _ := setupState(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	_, err := NewRunner(nil, nil).Exec(ctx, st, "sleep 10s")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected context.Canceled, got %v", err)
	}
	if time.Since(start) > time.Second {
		t.Error("sleep did not return promptly after cancellation")
	}
}

func TestRunStopsWhenCancelled(t *testing.T) {
	st, tr := setupState(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewRunner(nil, nil).Run(ctx, st, strings.NewReader("send\nsend\n"))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected context.Canceled, got %v", err)
	}
	if len(tr.Frames()) != 1 {
		t.Errorf("Expected only the neutral frame, got %v", tr.Frames())
	}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	r.Register(&Command{Name: "b"})
	r.Register(&Command{Name: "a"})

	if !reflect.DeepEqual(r.List(), []string{"a", "b"}) {
		t.Errorf("Expected sorted names, got %v", r.List())
	}
	if _, ok := r.Get("c"); ok {
		t.Error("Get() should miss unknown names")
	}

	var usage bytes.Buffer
	NewRunner(nil, nil).Usage(&usage)
	for _, name := range []string{"arm", "roll left|right [step]", "sleep <duration>"} {
		if !strings.Contains(usage.String(), name) {
			t.Errorf("Usage missing %q", name)
		}
	}
}
