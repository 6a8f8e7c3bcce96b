package link

import (
	"errors"
	"fmt"
	"sync"

	"go.bug.st/serial"
	"go.bug.st/serial/enumerator"
)

const (
	DefaultBaudRate = 115200
	DefaultDataBits = 8
)

// ErrPortClosed is returned by writes on a port that was already closed.
var ErrPortClosed = errors.New("port closed")

// SerialTransport opens serial devices.
type SerialTransport struct {
	mode serial.Mode
}

// NewSerialTransport creates a transport using 8N1 at the given baud rate.
func NewSerialTransport(baudRate int) *SerialTransport {
	if baudRate <= 0 {
		baudRate = DefaultBaudRate
	}
	return &SerialTransport{
		mode: serial.Mode{
			BaudRate: baudRate,
			DataBits: DefaultDataBits,
			Parity:   serial.NoParity,
			StopBits: serial.OneStopBit,
		},
	}
}

// Open opens the serial device at address.
func (t *SerialTransport) Open(address string) (Port, error) {
	mode := t.mode
	p, err := serial.Open(address, &mode)
	if err != nil {
		return nil, Unavailable(address, err)
	}

	log.Debugf("opened %s at %d baud", address, mode.BaudRate)
	return &serialPort{port: p, address: address}, nil
}

// serialPort makes Close idempotent and rejects writes after close.
type serialPort struct {
	mu      sync.Mutex
	port    serial.Port
	address string
	closed  bool
}

func (p *serialPort) Write(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return 0, ErrPortClosed
	}
	return p.port.Write(b)
}

func (p *serialPort) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true

	if err := p.port.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", p.address, err)
	}
	log.Debugf("closed %s", p.address)
	return nil
}

// PortInfo describes a serial device visible to the host.
type PortInfo struct {
	Name         string
	IsUSB        bool
	VID          string
	PID          string
	SerialNumber string
	Product      string
}

// ListPorts enumerates the serial devices on this host.
func ListPorts() ([]PortInfo, error) {
	ports, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return nil, fmt.Errorf("failed to list serial ports: %w", err)
	}

	infos := make([]PortInfo, 0, len(ports))
	for _, port := range ports {
		infos = append(infos, PortInfo{
			Name:         port.Name,
			IsUSB:        port.IsUSB,
			VID:          port.VID,
			PID:          port.PID,
			SerialNumber: port.SerialNumber,
			Product:      port.Product,
		})
	}
	return infos, nil
}

// FindPort returns the device name whose product string matches desc,
// or desc itself when nothing matches.
func FindPort(ports []PortInfo, desc string) string {
	for _, port := range ports {
		if port.Product == desc || port.SerialNumber == desc {
			return port.Name
		}
	}
	return desc
}
