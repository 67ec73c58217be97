package server

import (
	"bufio"
	"net"
	"sync/atomic"

	"github.com/oklog/ulid/v2"
)

// Conn represents a single client connection.
type Conn struct {
	id      string
	netConn net.Conn
	bw      *bufio.Writer

	// buf accumulates raw bytes until they form complete frames.
	buf []byte

	closed atomic.Bool
}

func newConn(c net.Conn) *Conn {
	return &Conn{
		id:      newConnID(),
		netConn: c,
		bw:      bufio.NewWriter(c),
		buf:     make([]byte, 0, 4096),
	}
}

// ID returns the connection's ULID, used for log correlation.
func (c *Conn) ID() string {
	return c.id
}

func (c *Conn) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	return c.netConn.Close()
}

func (c *Conn) RemoteAddr() net.Addr {
	return c.netConn.RemoteAddr()
}

// remoteIP returns the remote address without the port, for rate
// limiter bucketing.
func (c *Conn) remoteIP() string {
	host, _, err := net.SplitHostPort(c.netConn.RemoteAddr().String())
	if err != nil {
		return c.netConn.RemoteAddr().String()
	}
	return host
}

func newConnID() string {
	return ulid.Make().String()
}
