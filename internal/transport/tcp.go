// Package transport provides TCP-backed implementations of the session
// package's SendData/ReceiveData callbacks, reading exactly one framed
// Container per ReceiveData call as the callback contract requires.
package transport

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"net"

	"go.uber.org/zap"

	"secure-session/internal/container"
)

// Conn adapts a net.Conn into the session package's Callbacks shape.
type Conn struct {
	conn net.Conn
	log  *zap.Logger
}

// NewConn wraps an established net.Conn. A nil logger is replaced with a
// no-op one.
func NewConn(conn net.Conn, log *zap.Logger) *Conn {
	if log == nil {
		log = zap.NewNop()
	}
	return &Conn{conn: conn, log: log}
}

// Close closes the underlying connection.
func (c *Conn) Close() error { return c.conn.Close() }

// SendData writes one already-framed wire message in full.
func (c *Conn) SendData(_ context.Context, wire []byte) error {
	_, err := c.conn.Write(wire)
	if err != nil {
		c.log.Warn("send failed", zap.Error(err))
		return fmt.Errorf("transport: write: %w", err)
	}
	return nil
}

// ReceiveData reads exactly one framed Container: the 12-byte header
// first (to learn the declared size), then the remaining declared bytes.
func (c *Conn) ReceiveData(_ context.Context) ([]byte, error) {
	header := make([]byte, container.HeaderSize)
	if _, err := io.ReadFull(c.conn, header); err != nil {
		c.log.Warn("receive failed reading header", zap.Error(err))
		return nil, fmt.Errorf("transport: read header: %w", err)
	}
	size := binary.BigEndian.Uint32(header[4:8])
	if size < container.HeaderSize {
		return nil, fmt.Errorf("transport: declared size %d smaller than header", size)
	}

	msg := make([]byte, size)
	copy(msg, header)
	if _, err := io.ReadFull(c.conn, msg[container.HeaderSize:]); err != nil {
		c.log.Warn("receive failed reading payload", zap.Error(err))
		return nil, fmt.Errorf("transport: read payload: %w", err)
	}
	return msg, nil
}
