package qftp

import "github.com/onestay/qftp/internal/qerr"

// Error and Kind are re-exported from the internal error-taxonomy package so
// callers outside this module can inspect failures with errors.As without
// reaching into an internal package themselves.
type (
	Error = qerr.Error
	Kind  = qerr.Kind
)

// Error kinds, see §7 of the protocol specification.
const (
	KindIo              = qerr.Io
	KindProtocol        = qerr.Protocol
	KindEncoding        = qerr.Encoding
	KindVersionMismatch = qerr.VersionMismatch
	KindAuth            = qerr.Auth
	KindLoginRejected   = qerr.LoginRejected
	KindFileError       = qerr.FileError
	KindRequestAborted  = qerr.RequestAborted
	KindCancelled       = qerr.Cancelled
	KindClosed          = qerr.Closed
)
