// Package client implements a minimal wire-protocol client for the
// command-line tool.
package client

import (
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/wirecache/wirecache/internal/proto"
)

// DefaultTimeout bounds dial, read and write operations.
const DefaultTimeout = 5 * time.Second

// Client is a single-connection wire-protocol client.
type Client struct {
	conn    net.Conn
	timeout time.Duration

	// buf accumulates reply bytes until a complete frame decodes.
	buf []byte
}

// Dial connects to a server. A timeout of zero uses DefaultTimeout.
func Dial(addr string, timeout time.Duration) (*Client, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}

	return &Client{
		conn:    conn,
		timeout: timeout,
		buf:     make([]byte, 0, 4096),
	}, nil
}

// Do sends a command as an array of bulk strings and returns the
// server's reply.
func (c *Client) Do(args ...string) (proto.Value, error) {
	if len(args) == 0 {
		return proto.Value{}, errors.New("client: empty command")
	}

	elems := make([]proto.Value, len(args))
	for i, arg := range args {
		elems[i] = proto.BulkString([]byte(arg))
	}

	if err := c.conn.SetWriteDeadline(time.Now().Add(c.timeout)); err != nil {
		return proto.Value{}, err
	}
	if _, err := c.conn.Write(proto.Encode(proto.Array(elems...))); err != nil {
		return proto.Value{}, fmt.Errorf("client: write: %w", err)
	}

	return c.readReply()
}

// readReply reads until the buffer holds one complete frame.
func (c *Client) readReply() (proto.Value, error) {
	chunk := make([]byte, 4096)

	for {
		if len(c.buf) > 0 {
			value, rest, err := proto.Decode(c.buf)
			if err == nil {
				n := copy(c.buf, rest)
				c.buf = c.buf[:n]
				return value, nil
			}
			if !errors.Is(err, proto.ErrIncomplete) {
				return proto.Value{}, fmt.Errorf("client: bad reply: %w", err)
			}
		}

		if err := c.conn.SetReadDeadline(time.Now().Add(c.timeout)); err != nil {
			return proto.Value{}, err
		}
		n, err := c.conn.Read(chunk)
		if n > 0 {
			c.buf = append(c.buf, chunk[:n]...)
			continue
		}
		if err != nil {
			return proto.Value{}, fmt.Errorf("client: read: %w", err)
		}
	}
}

// Close closes the connection.
func (c *Client) Close() error {
	return c.conn.Close()
}
