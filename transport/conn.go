package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"time"

	"github.com/moffa90/go-jnflash/protocol"
)

// DefaultDialTimeout bounds connection setup to a bridge agent.
const DefaultDialTimeout = 10 * time.Second

// DeadlineConn is a stream whose reads can be bounded by a deadline.
// net.Conn and *WebSocketConn both satisfy it.
type DeadlineConn interface {
	io.ReadWriteCloser
	SetReadDeadline(t time.Time) error
}

// Conn is a Channel over a network stream. Each Read gets a fresh deadline.
type Conn struct {
	conn    DeadlineConn
	timeout time.Duration
}

// NewConn wraps c with the given read timeout.
func NewConn(c DeadlineConn, timeout time.Duration) *Conn {
	if timeout <= 0 {
		timeout = DefaultReadTimeout
	}
	return &Conn{conn: c, timeout: timeout}
}

// DialTCP connects to a bridge agent's raw TCP tunnel.
func DialTCP(ctx context.Context, address string) (*Conn, error) {
	d := net.Dialer{Timeout: DefaultDialTimeout}
	c, err := d.DialContext(ctx, "tcp", address)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", address, err)
	}

	if tcp, ok := c.(*net.TCPConn); ok {
		// Frames are small; send them as soon as they are written.
		_ = tcp.SetNoDelay(true)
	}

	return NewConn(c, DefaultReadTimeout), nil
}

func (c *Conn) Read(p []byte) (int, error) {
	if err := c.conn.SetReadDeadline(time.Now().Add(c.timeout)); err != nil {
		return 0, err
	}

	n, err := c.conn.Read(p)
	if err != nil && isTimeout(err) {
		return n, fmt.Errorf("%w: %w", protocol.ErrTimeout, err)
	}
	return n, err
}

func (c *Conn) Write(p []byte) (int, error) {
	return c.conn.Write(p)
}

func (c *Conn) Close() error {
	return c.conn.Close()
}

// SetReadTimeout changes the per-read bound. Non-positive values select
// DefaultReadTimeout.
func (c *Conn) SetReadTimeout(t time.Duration) error {
	if t <= 0 {
		t = DefaultReadTimeout
	}
	c.timeout = t
	return nil
}

func isTimeout(err error) bool {
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
