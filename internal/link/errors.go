package link

import (
	"errors"
	"fmt"

	"go.bug.st/serial"
)

// Normalized link errors.
var (
	// ErrLinkUnavailable: the transport could not be opened.
	ErrLinkUnavailable = errors.New("LINK_UNAVAILABLE")

	// ErrTransportWrite: a frame could not be delivered.
	ErrTransportWrite = errors.New("TRANSPORT_WRITE")
)

// Error wraps a transport failure with diagnostic details.
type Error struct {
	Kind    error  // ErrLinkUnavailable or ErrTransportWrite
	Op      string // open, write, close
	Address string
	Reason  string // normalized cause, e.g. PORT_BUSY
	Err     error  // underlying transport error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%v: %s %s: %s (%v)", e.Kind, e.Op, e.Address, e.Reason, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Kind
}

// Cause returns the underlying transport error.
func (e *Error) Cause() error {
	return e.Err
}

// portErrorReasons maps serial port error codes to normalized reasons.
var portErrorReasons = map[serial.PortErrorCode]string{
	serial.PortBusy:               "PORT_BUSY",
	serial.PortNotFound:           "PORT_NOT_FOUND",
	serial.InvalidSerialPort:      "INVALID_PORT",
	serial.PermissionDenied:       "PERMISSION_DENIED",
	serial.InvalidSpeed:           "INVALID_SPEED",
	serial.InvalidDataBits:        "INVALID_DATA_BITS",
	serial.InvalidParity:          "INVALID_PARITY",
	serial.InvalidStopBits:        "INVALID_STOP_BITS",
	serial.InvalidTimeoutValue:    "INVALID_TIMEOUT",
	serial.ErrorEnumeratingPorts:  "ENUMERATION_FAILED",
	serial.PortClosed:             "PORT_CLOSED",
	serial.FunctionNotImplemented: "NOT_IMPLEMENTED",
}

// Reason returns the normalized reason for a transport error.
// Unknown errors map to IO_ERROR.
func Reason(err error) string {
	if err == nil {
		return ""
	}

	var portErr *serial.PortError
	if errors.As(err, &portErr) {
		if reason, ok := portErrorReasons[portErr.Code()]; ok {
			return reason
		}
	}

	if errors.Is(err, ErrPortClosed) {
		return "PORT_CLOSED"
	}

	return "IO_ERROR"
}

// Unavailable wraps an open failure. A nil err returns nil.
func Unavailable(address string, err error) error {
	return wrap(ErrLinkUnavailable, "open", address, err)
}

// WriteFailure wraps a write failure. A nil err returns nil.
func WriteFailure(address string, err error) error {
	return wrap(ErrTransportWrite, "write", address, err)
}

func wrap(kind error, op, address string, err error) error {
	if err == nil {
		return nil
	}

	// Already normalized
	var linkErr *Error
	if errors.As(err, &linkErr) {
		return err
	}

	return &Error{
		Kind:    kind,
		Op:      op,
		Address: address,
		Reason:  Reason(err),
		Err:     err,
	}
}
