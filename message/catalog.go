package message

import (
	"io"

	"github.com/onestay/qftp/internal/qerr"
)

// RequestKind discriminates the request envelope read after the control
// stream's kind field.
type RequestKind uint16

const (
	// KindListFiles requests a directory listing.
	KindListFiles RequestKind = 0x0001
	// KindGetFiles requests a bulk file transfer.
	KindGetFiles RequestKind = 0x0002
)

// ReadRequestKind reads the two-byte discriminator that precedes every
// request body on the control stream.
func ReadRequestKind(r io.Reader) (RequestKind, error) {
	v, err := readUint16(r)
	if err != nil {
		return 0, ioError(err, "message.ReadRequestKind")
	}
	switch RequestKind(v) {
	case KindListFiles, KindGetFiles:
		return RequestKind(v), nil
	default:
		return 0, qerr.New(qerr.Protocol, "message.ReadRequestKind", nil)
	}
}

// WriteRequestKind writes the discriminator preceding a request body.
func WriteRequestKind(w io.Writer, k RequestKind) error {
	return writeUint16(w, uint16(k))
}

// Version is the client's offered list of supported protocol versions.
type Version struct {
	Versions []uint8
}

func (v *Version) Encode(w io.Writer) error {
	if err := writeUint8(w, uint8(len(v.Versions))); err != nil {
		return err
	}
	return writeUint8Seq(w, v.Versions)
}

func (v *Version) Decode(r io.Reader) error {
	length, err := readUint8(r)
	if err != nil {
		return ioError(err, "Version.Decode")
	}
	versions, err := readUint8Seq(r, uint64(length))
	if err != nil {
		return err
	}
	v.Versions = versions
	return nil
}

// VersionResponse is the server's single negotiated version.
type VersionResponse struct {
	NegotiatedVersion uint8
}

func (v *VersionResponse) Encode(w io.Writer) error {
	return writeUint8(w, v.NegotiatedVersion)
}

func (v *VersionResponse) Decode(r io.Reader) error {
	n, err := readUint8(r)
	if err != nil {
		return ioError(err, "VersionResponse.Decode")
	}
	v.NegotiatedVersion = n
	return nil
}

// LoginRequest carries the client's credentials.
type LoginRequest struct {
	Name     string
	Password string
}

func (l *LoginRequest) Encode(w io.Writer) error {
	if len(l.Name) > 0xff || len(l.Password) > 0xff {
		return qerr.New(qerr.Protocol, "LoginRequest.Encode", nil)
	}
	if err := writeUint8(w, uint8(len(l.Name))); err != nil {
		return err
	}
	if err := writeString(w, l.Name); err != nil {
		return err
	}
	if err := writeUint8(w, uint8(len(l.Password))); err != nil {
		return err
	}
	return writeString(w, l.Password)
}

func (l *LoginRequest) Decode(r io.Reader) error {
	nameLen, err := readUint8(r)
	if err != nil {
		return ioError(err, "LoginRequest.Decode")
	}
	name, err := readString(r, uint64(nameLen))
	if err != nil {
		return err
	}
	passLen, err := readUint8(r)
	if err != nil {
		return ioError(err, "LoginRequest.Decode")
	}
	password, err := readString(r, uint64(passLen))
	if err != nil {
		return err
	}
	l.Name = name
	l.Password = password
	return nil
}

// LoginResponse reports whether login succeeded.
type LoginResponse struct {
	Status uint8
}

// Ok reports whether the login was accepted.
func (l *LoginResponse) Ok() bool { return l.Status != 0 }

// NewLoginResponse builds a LoginResponse from a boolean outcome.
func NewLoginResponse(ok bool) *LoginResponse {
	if ok {
		return &LoginResponse{Status: 1}
	}
	return &LoginResponse{Status: 0}
}

func (l *LoginResponse) Encode(w io.Writer) error {
	return writeUint8(w, l.Status)
}

func (l *LoginResponse) Decode(r io.Reader) error {
	s, err := readUint8(r)
	if err != nil {
		return ioError(err, "LoginResponse.Decode")
	}
	l.Status = s
	return nil
}

// ListFilesRequest asks the server to enumerate files under Path.
type ListFilesRequest struct {
	Path      string
	RequestID uint32
}

func (l *ListFilesRequest) Encode(w io.Writer) error {
	if err := writeUint32(w, uint32(len(l.Path))); err != nil {
		return err
	}
	if err := writeString(w, l.Path); err != nil {
		return err
	}
	return writeUint32(w, l.RequestID)
}

func (l *ListFilesRequest) Decode(r io.Reader) error {
	pathLen, err := readUint32(r)
	if err != nil {
		return ioError(err, "ListFilesRequest.Decode")
	}
	path, err := readString(r, uint64(pathLen))
	if err != nil {
		return err
	}
	requestID, err := readUint32(r)
	if err != nil {
		return ioError(err, "ListFilesRequest.Decode")
	}
	l.Path = path
	l.RequestID = requestID
	return nil
}

// ListFileResponseHeader precedes NumFiles ListFileResponse records on a
// ListFiles response stream.
type ListFileResponseHeader struct {
	NumFiles uint32
}

func (h *ListFileResponseHeader) Encode(w io.Writer) error {
	return writeUint32(w, h.NumFiles)
}

func (h *ListFileResponseHeader) Decode(r io.Reader) error {
	n, err := readUint32(r)
	if err != nil {
		return ioError(err, "ListFileResponseHeader.Decode")
	}
	h.NumFiles = n
	return nil
}

// ListFileResponse describes one regular file found by a directory walk.
// Atime/Ctime/Mtime are milliseconds since the Unix epoch.
type ListFileResponse struct {
	Name  string
	Size  uint64
	Atime int64
	Ctime int64
	Mtime int64
	Mode  uint32
}

func (f *ListFileResponse) Encode(w io.Writer) error {
	if err := writeUint32(w, uint32(len(f.Name))); err != nil {
		return err
	}
	if err := writeString(w, f.Name); err != nil {
		return err
	}
	if err := writeUint64(w, f.Size); err != nil {
		return err
	}
	if err := writeInt64(w, f.Atime); err != nil {
		return err
	}
	if err := writeInt64(w, f.Ctime); err != nil {
		return err
	}
	if err := writeInt64(w, f.Mtime); err != nil {
		return err
	}
	return writeUint32(w, f.Mode)
}

func (f *ListFileResponse) Decode(r io.Reader) error {
	nameLen, err := readUint32(r)
	if err != nil {
		return ioError(err, "ListFileResponse.Decode")
	}
	name, err := readString(r, uint64(nameLen))
	if err != nil {
		return err
	}
	size, err := readUint64(r)
	if err != nil {
		return ioError(err, "ListFileResponse.Decode")
	}
	atime, err := readInt64(r)
	if err != nil {
		return ioError(err, "ListFileResponse.Decode")
	}
	ctime, err := readInt64(r)
	if err != nil {
		return ioError(err, "ListFileResponse.Decode")
	}
	mtime, err := readInt64(r)
	if err != nil {
		return ioError(err, "ListFileResponse.Decode")
	}
	mode, err := readUint32(r)
	if err != nil {
		return ioError(err, "ListFileResponse.Decode")
	}
	f.Name = name
	f.Size = size
	f.Atime = atime
	f.Ctime = ctime
	f.Mtime = mtime
	f.Mode = mode
	return nil
}

// GetFilesRequest asks the server to fan a bulk transfer out across
// NumStreams unidirectional response streams.
type GetFilesRequest struct {
	Path       string
	RequestID  uint32
	NumStreams uint16
}

func (g *GetFilesRequest) Encode(w io.Writer) error {
	if err := writeUint32(w, uint32(len(g.Path))); err != nil {
		return err
	}
	if err := writeString(w, g.Path); err != nil {
		return err
	}
	if err := writeUint32(w, g.RequestID); err != nil {
		return err
	}
	return writeUint16(w, g.NumStreams)
}

func (g *GetFilesRequest) Decode(r io.Reader) error {
	pathLen, err := readUint32(r)
	if err != nil {
		return ioError(err, "GetFilesRequest.Decode")
	}
	path, err := readString(r, uint64(pathLen))
	if err != nil {
		return err
	}
	requestID, err := readUint32(r)
	if err != nil {
		return ioError(err, "GetFilesRequest.Decode")
	}
	numStreams, err := readUint16(r)
	if err != nil {
		return ioError(err, "GetFilesRequest.Decode")
	}
	g.Path = path
	g.RequestID = requestID
	g.NumStreams = numStreams
	return nil
}

// FileChunkHeader precedes the raw bytes of one file on a GetFiles response
// stream: name, then size, then exactly Size raw bytes (written separately,
// not through Encode/Decode, since the payload isn't itself a wire message).
type FileChunkHeader struct {
	Name string
	Size uint64
}

func (c *FileChunkHeader) Encode(w io.Writer) error {
	if err := writeUint32(w, uint32(len(c.Name))); err != nil {
		return err
	}
	if err := writeString(w, c.Name); err != nil {
		return err
	}
	return writeUint64(w, c.Size)
}

func (c *FileChunkHeader) Decode(r io.Reader) error {
	nameLen, err := readUint32(r)
	if err != nil {
		return ioError(err, "FileChunkHeader.Decode")
	}
	name, err := readString(r, uint64(nameLen))
	if err != nil {
		return err
	}
	size, err := readUint64(r)
	if err != nil {
		return ioError(err, "FileChunkHeader.Decode")
	}
	c.Name = name
	c.Size = size
	return nil
}

var (
	_ Message = (*Version)(nil)
	_ Message = (*VersionResponse)(nil)
	_ Message = (*LoginRequest)(nil)
	_ Message = (*LoginResponse)(nil)
	_ Message = (*ListFilesRequest)(nil)
	_ Message = (*ListFileResponseHeader)(nil)
	_ Message = (*ListFileResponse)(nil)
	_ Message = (*GetFilesRequest)(nil)
	_ Message = (*FileChunkHeader)(nil)
)
