// Package transport provides the network delivery side left external to
// the core: framing is the transport's job, decoding/dispatch is the
// core's. Session wraps a net.Conn with the wire codec's frame reader/
// writer and gives the world package a Sink.
package transport

import (
	"fmt"
	"net"
	"sync"

	"github.com/google/uuid"

	"github.com/bramblecraft/shard/wire"
)

// Session is a single client's persistent bidirectional connection. It
// implements world.Sink: Send is safe for concurrent use.
type Session struct {
	// ID identifies this connection in logs, independent of the world
	// client id the Hub assigns after Join (which is only meaningful once
	// a world has accepted the session).
	ID   uuid.UUID
	conn net.Conn

	mu sync.Mutex
}

// NewSession wraps conn in a Session.
func NewSession(conn net.Conn) *Session {
	return &Session{ID: uuid.New(), conn: conn}
}

// Send encodes and writes msg as a single framed message. Concurrent Sends
// are serialized so frames are never interleaved on the wire.
func (s *Session) Send(msg wire.Message) error {
	frame, err := wire.Encode(msg)
	if err != nil {
		return fmt.Errorf("transport: encode: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return wire.WriteFrame(s.conn, frame)
}

// Receive blocks until one framed message has been read from the
// connection and decoded.
func (s *Session) Receive() (wire.Message, error) {
	frame, err := wire.ReadFrame(s.conn)
	if err != nil {
		return wire.Message{}, fmt.Errorf("transport: read frame: %w", err)
	}
	return wire.Decode(frame)
}

// Close closes the underlying connection.
func (s *Session) Close() error {
	return s.conn.Close()
}

// RemoteAddr returns the address of the connected peer, for logging.
func (s *Session) RemoteAddr() net.Addr {
	return s.conn.RemoteAddr()
}
