package qftp

import (
	"context"
	"io"

	"github.com/quic-go/quic-go"
)

// Stream is the minimal contract the core needs from a bidirectional QUIC
// stream's read half and write half combined, satisfied directly by
// quic.Stream.
type Stream interface {
	io.Reader
	io.Writer
	Close() error
}

// SendStream is the minimal contract needed from a unidirectional send
// stream, satisfied directly by quic.SendStream.
type SendStream interface {
	io.Writer
	Close() error
	CancelWrite(quic.StreamErrorCode)
}

// RecvStream is the minimal contract needed from a unidirectional receive
// stream, satisfied directly by quic.ReceiveStream.
type RecvStream interface {
	io.Reader
	CancelRead(quic.StreamErrorCode)
}

// Connection is the minimal contract the core needs from the QUIC transport:
// open/accept a bidirectional stream for the control channel, open/accept
// unidirectional streams for response payloads, and a connection-level close
// with an application error code. quic.Connection (the real transport) and
// any test double satisfying this interface both work.
type Connection interface {
	AcceptStream(ctx context.Context) (quic.Stream, error)
	OpenStream() (quic.Stream, error)
	OpenStreamSync(ctx context.Context) (quic.Stream, error)
	AcceptUniStream(ctx context.Context) (quic.ReceiveStream, error)
	OpenUniStream() (quic.SendStream, error)
	OpenUniStreamSync(ctx context.Context) (quic.SendStream, error)
	CloseWithError(quic.ApplicationErrorCode, string) error
	Context() context.Context
}

// Application error codes carried on CloseWithError, per §6 of the protocol
// specification.
const (
	AppErrorNoError         quic.ApplicationErrorCode = 0
	AppErrorVersionMismatch quic.ApplicationErrorCode = 1
	AppErrorAuthFailed      quic.ApplicationErrorCode = 2
	AppErrorProtocolError   quic.ApplicationErrorCode = 3
)
