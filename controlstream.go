package qftp

import (
	"errors"
	"io"
	"sync"

	"github.com/quic-go/quic-go"

	"github.com/onestay/qftp/internal/qerr"
	"github.com/onestay/qftp/message"
)

// ControlStream wraps the single bidirectional QUIC stream that carries
// negotiation, login, and request envelopes for one connection. It
// serializes access so messages are sent and received strictly in FIFO
// order, matching the ordering guarantee in §4.2 of the protocol.
type ControlStream struct {
	mu     sync.Mutex
	stream Stream
}

// NewControlStream wraps an already-accepted or already-opened bidirectional
// stream.
func NewControlStream(stream Stream) *ControlStream {
	return &ControlStream{stream: stream}
}

// SendMessage encodes m and writes it as one logical unit. Concurrent callers
// are serialized; a write error leaves the stream considered broken and is
// returned to the caller.
func (c *ControlStream) SendMessage(m message.Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := m.Encode(c.stream); err != nil {
		return qerr.New(qerr.Io, "ControlStream.SendMessage", err)
	}
	return nil
}

// RecvMessage decodes exactly what m's Decode consumes. A clean end-of-stream
// surfaces as qerr.Closed rather than qerr.Protocol.
func (c *ControlStream) RecvMessage(m message.Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := m.Decode(c.stream); err != nil {
		if err == io.EOF {
			return qerr.New(qerr.Closed, "ControlStream.RecvMessage", err)
		}
		return err
	}
	return nil
}

// ReadRequestKind reads the two-byte discriminator preceding a request body.
func (c *ControlStream) ReadRequestKind() (message.RequestKind, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return message.ReadRequestKind(c.stream)
}

// WriteRequestKind writes the discriminator preceding a request body.
func (c *ControlStream) WriteRequestKind(k message.RequestKind) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := message.WriteRequestKind(c.stream, k); err != nil {
		return qerr.New(qerr.Io, "ControlStream.WriteRequestKind", err)
	}
	return nil
}

// Finish signals end-of-stream on the send half. A benign application close
// with error code 0 observed while finishing is swallowed, matching the
// peer's clean shutdown.
func (c *ControlStream) Finish() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	err := c.stream.Close()
	var appErr *quic.ApplicationError
	if errors.As(err, &appErr) && appErr.ErrorCode == 0 {
		return nil
	}
	return err
}
