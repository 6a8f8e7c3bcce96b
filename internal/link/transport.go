package link

import (
	"io"
	"strings"

	"github.com/op/go-logging"

	"github.com/radio-control/rclink/internal/config"
)

var log = logging.MustGetLogger("link")

// Port is an open channel to the microcontroller.
type Port interface {
	io.Writer

	// Close releases the channel. Closing twice must not panic.
	Close() error
}

// Transport opens ports by address.
type Transport interface {
	// Open opens the port at address.
	// Side-effect: on Arduino-class boards opening the port pulses the reset line.
	Open(address string) (Port, error)
}

// tcpScheme prefixes addresses served by a serial-to-TCP bridge.
const tcpScheme = "tcp://"

// NewTransport returns the transport matching the configured address.
func NewTransport(cfg config.LinkConfig) Transport {
	if strings.HasPrefix(cfg.Address, tcpScheme) {
		return &TCPTransport{DialTimeout: defaultDialTimeout}
	}
	return NewSerialTransport(cfg.BaudRate)
}
