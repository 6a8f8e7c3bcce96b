// Package link carries RC command frames to the microcontroller.
//
// A Transport opens a Port by address. Serial device paths are opened with
// go.bug.st/serial; tcp://host:port addresses go through a serial-to-TCP
// bridge. Open failures normalize to ErrLinkUnavailable and write failures to
// ErrTransportWrite, with the underlying cause kept on *Error.
package link
