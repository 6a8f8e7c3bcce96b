package link

import (
	"net"
	"strings"
	"sync"
	"time"
)

const defaultDialTimeout = 3 * time.Second

// TCPTransport reaches the microcontroller through a serial-to-TCP bridge.
// Addresses take the form tcp://host:port.
type TCPTransport struct {
	DialTimeout time.Duration
}

// Open dials the bridge.
func (t *TCPTransport) Open(address string) (Port, error) {
	hostPort := strings.TrimPrefix(address, tcpScheme)

	timeout := t.DialTimeout
	if timeout <= 0 {
		timeout = defaultDialTimeout
	}

	conn, err := net.DialTimeout("tcp", hostPort, timeout)
	if err != nil {
		return nil, Unavailable(address, err)
	}

	log.Debugf("connected to bridge %s", hostPort)
	return &tcpPort{conn: conn}, nil
}

type tcpPort struct {
	once sync.Once
	conn net.Conn
	err  error
}

func (p *tcpPort) Write(b []byte) (int, error) {
	return p.conn.Write(b)
}

func (p *tcpPort) Close() error {
	p.once.Do(func() {
		p.err = p.conn.Close()
	})
	return p.err
}
