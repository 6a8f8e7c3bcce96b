// Package fake provides a recording link transport for testing.
package fake

import (
	"errors"
	"strings"
	"sync"

	"github.com/radio-control/rclink/internal/link"
)

// Operation names recorded in the transport log.
const (
	OpOpen  = "open"
	OpWrite = "write"
	OpClose = "close"
)

// ErrSimulated is the default injected failure.
var ErrSimulated = errors.New("simulated transport failure")

// Transport implements link.Transport and records every operation.
type Transport struct {
	mu     sync.Mutex
	ops    []string
	writes []string
	opens  int

	// Error simulation
	openErr      error
	failOpenFrom int // 1-based open attempt that starts failing; 0 = never
	writeErr     error
}

// Compile-time assertion that Transport implements link.Transport
var _ link.Transport = (*Transport)(nil)

// NewTransport creates a fake transport that always succeeds.
func NewTransport() *Transport {
	return &Transport{}
}

// FailOpen makes every open attempt fail with err.
func (t *Transport) FailOpen(err error) {
	t.FailOpenFrom(1, err)
}

// FailOpenFrom makes open attempts fail starting with attempt n (1-based).
func (t *Transport) FailOpenFrom(n int, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err == nil {
		err = ErrSimulated
	}
	t.failOpenFrom = n
	t.openErr = err
}

// FailWrites makes subsequent writes fail with err. A nil err clears the failure.
func (t *Transport) FailWrites(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.writeErr = err
}

// Open records the attempt and returns a recording port.
func (t *Transport) Open(address string) (link.Port, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.opens++
	t.ops = append(t.ops, OpOpen)

	if t.failOpenFrom > 0 && t.opens >= t.failOpenFrom {
		return nil, link.Unavailable(address, t.openErr)
	}

	return &port{transport: t, address: address}, nil
}

// Ops returns the operation log in order.
func (t *Transport) Ops() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.ops...)
}

// Frames returns every successfully written frame without its line terminator.
func (t *Transport) Frames() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	frames := make([]string, 0, len(t.writes))
	for _, w := range t.writes {
		frames = append(frames, strings.TrimSuffix(w, "\n"))
	}
	return frames
}

// Raw returns the written payloads exactly as received.
func (t *Transport) Raw() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.writes...)
}

// Reset clears the recorded log and frames.
func (t *Transport) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.ops = nil
	t.writes = nil
}

type port struct {
	transport *Transport
	address   string
	closed    bool
}

func (p *port) Write(b []byte) (int, error) {
	t := p.transport
	t.mu.Lock()
	defer t.mu.Unlock()

	t.ops = append(t.ops, OpWrite)

	if p.closed {
		return 0, link.ErrPortClosed
	}
	if t.writeErr != nil {
		return 0, t.writeErr
	}

	t.writes = append(t.writes, string(b))
	return len(b), nil
}

func (p *port) Close() error {
	t := p.transport
	t.mu.Lock()
	defer t.mu.Unlock()

	t.ops = append(t.ops, OpClose)
	p.closed = true
	return nil
}
