// Package message implements the QFTP wire codec: big-endian primitives,
// length-prefixed strings and integer sequences, and the concrete message
// catalog exchanged on the control stream and response streams.
//
// Field order is wire order. Every variable-length field is immediately
// preceded by the integer field that sizes it — no framing tags, no padding.
package message

import (
	"io"
	"unicode/utf8"

	"github.com/onestay/qftp/internal/qerr"
)

// MaxStringLen bounds any length-prefixed string field. A decode that would
// read a string longer than this fails with qerr.Protocol rather than
// allocating an attacker-controlled amount of memory.
const MaxStringLen = 1 << 20 // 1 MiB

// MaxSequenceLen bounds any length-prefixed sequence of fixed-width integers.
const MaxSequenceLen = 1 << 16

// Message is satisfied by every concrete wire message. Encode and Decode are
// written out per type; Send, Recv and ControlStream call them through this
// interface.
type Message interface {
	Encode(w io.Writer) error
	Decode(r io.Reader) error
}

// Send encodes m and writes it in one logical unit, as the ControlStream and
// the per-request response streams both require.
func Send(w io.Writer, m Message) error {
	return m.Encode(w)
}

// Recv decodes m from r, translating end-of-stream into qerr.Closed so
// callers can tell a clean shutdown from a truncated message.
func Recv(r io.Reader, m Message) error {
	if err := m.Decode(r); err != nil {
		if err == io.EOF {
			return qerr.New(qerr.Closed, "message.Recv", err)
		}
		return err
	}
	return nil
}

func readString(r io.Reader, length uint64) (string, error) {
	if length > MaxStringLen {
		return "", qerr.New(qerr.Protocol, "message.readString", nil)
	}
	buf := make([]byte, length)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", ioError(err, "message.readString")
	}
	if !utf8.Valid(buf) {
		return "", qerr.New(qerr.Encoding, "message.readString", nil)
	}
	return string(buf), nil
}

func writeString(w io.Writer, s string) error {
	_, err := w.Write([]byte(s))
	return err
}

func readUint8Seq(r io.Reader, count uint64) ([]uint8, error) {
	if count > MaxSequenceLen {
		return nil, qerr.New(qerr.Protocol, "message.readUint8Seq", nil)
	}
	out := make([]uint8, count)
	for i := range out {
		v, err := readUint8(r)
		if err != nil {
			return nil, ioError(err, "message.readUint8Seq")
		}
		out[i] = v
	}
	return out, nil
}

func writeUint8Seq(w io.Writer, vs []uint8) error {
	for _, v := range vs {
		if err := writeUint8(w, v); err != nil {
			return err
		}
	}
	return nil
}

// ioError classifies a failure from a primitive read as Io unless it is
// already a tagged *qerr.Error (e.g. a length-ceiling Protocol error raised
// before any I/O happened), or is a clean io.EOF, which becomes qerr.Closed
// so callers reading a message can tell a clean stream finish from a
// truncated one.
func ioError(err error, op string) error {
	if err == nil {
		return nil
	}
	if _, ok := err.(*qerr.Error); ok {
		return err
	}
	if err == io.EOF {
		return qerr.New(qerr.Closed, op, err)
	}
	return qerr.New(qerr.Io, op, err)
}
