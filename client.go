package qftp

import (
	"context"
	"crypto/tls"
	"io"
	"sync"
	"sync/atomic"

	"github.com/quic-go/quic-go"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/onestay/qftp/internal/qerr"
	"github.com/onestay/qftp/message"
)

// SupportedVersions is the set of protocol versions this client offers
// during negotiation, highest first.
var SupportedVersions = []uint8{1}

// ClientConfig is the builder-style constructor input named in §6 of the
// protocol specification.
type ClientConfig struct {
	Addr       string
	ServerName string
	TLSConfig  *tls.Config
	QUICConfig *quic.Config
	Logger     *zap.SugaredLogger
}

// Client is the QFTP client engine: it owns one QUIC connection, its control
// stream, and the Distributor correlating response streams with in-flight
// requests.
type Client struct {
	conn        Connection
	control     *ControlStream
	distributor *Distributor
	logger      *zap.SugaredLogger

	nextRequestID atomic.Uint32

	cancel context.CancelFunc
}

// Dial opens a QUIC connection, negotiates a version, logs in, and starts
// the Distributor. It implements the startup sequence in §4.4 of the
// protocol specification.
func Dial(ctx context.Context, cfg ClientConfig, name, password string) (*Client, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	tlsConf := cfg.TLSConfig
	if tlsConf == nil {
		tlsConf = &tls.Config{ServerName: cfg.ServerName}
	} else if tlsConf.ServerName == "" {
		tlsConf = tlsConf.Clone()
		tlsConf.ServerName = cfg.ServerName
	}

	conn, err := quic.DialAddr(ctx, cfg.Addr, tlsConf, cfg.QUICConfig)
	if err != nil {
		return nil, qerr.New(qerr.Io, "Dial", err)
	}

	stream, err := conn.OpenStreamSync(ctx)
	if err != nil {
		conn.CloseWithError(AppErrorProtocolError, "open control stream")
		return nil, qerr.New(qerr.Io, "Dial", err)
	}

	runCtx, cancel := context.WithCancel(conn.Context())
	c := &Client{
		conn:    conn,
		control: NewControlStream(stream),
		logger:  logger,
		cancel:  cancel,
	}

	if err := c.negotiateVersion(runCtx); err != nil {
		cancel()
		return nil, err
	}
	if err := c.login(name, password); err != nil {
		cancel()
		return nil, err
	}

	c.distributor = NewDistributor(conn, logger)
	go c.distributor.Run(runCtx)

	return c, nil
}

func (c *Client) negotiateVersion(ctx context.Context) error {
	if err := c.control.SendMessage(&message.Version{Versions: SupportedVersions}); err != nil {
		return err
	}

	resp := &message.VersionResponse{}
	if err := c.control.RecvMessage(resp); err != nil {
		return err
	}

	for _, v := range SupportedVersions {
		if v == resp.NegotiatedVersion {
			c.logger.Debugw("negotiated protocol version", "version", v)
			return nil
		}
	}
	c.conn.CloseWithError(AppErrorVersionMismatch, "no version in common")
	return qerr.New(qerr.VersionMismatch, "Client.negotiateVersion", nil)
}

func (c *Client) login(name, password string) error {
	if err := c.control.SendMessage(&message.LoginRequest{Name: name, Password: password}); err != nil {
		return err
	}

	resp := &message.LoginResponse{}
	if err := c.control.RecvMessage(resp); err != nil {
		return err
	}
	if !resp.Ok() {
		c.conn.CloseWithError(AppErrorAuthFailed, "login rejected")
		return qerr.New(qerr.LoginRejected, "Client.login", nil)
	}
	return nil
}

func (c *Client) allocateRequestID() uint32 {
	return c.nextRequestID.Add(1)
}

// ListFiles enumerates the regular files the server finds under path,
// relative to its served base directory.
func (c *Client) ListFiles(ctx context.Context, path string) ([]message.ListFileResponse, error) {
	requestID := c.allocateRequestID()

	req := newStreamRequest(1, requestID)
	c.distributor.Register(req)

	if err := c.control.WriteRequestKind(message.KindListFiles); err != nil {
		return nil, err
	}
	if err := c.control.SendMessage(&message.ListFilesRequest{Path: path, RequestID: requestID}); err != nil {
		return nil, err
	}

	streams, ok := c.awaitStreams(ctx, req)
	if !ok {
		return nil, qerr.New(qerr.RequestAborted, "Client.ListFiles", nil)
	}
	stream := streams[0]

	header := &message.ListFileResponseHeader{}
	if err := message.Recv(stream, header); err != nil {
		return nil, err
	}

	files := make([]message.ListFileResponse, 0, header.NumFiles)
	for i := uint32(0); i < header.NumFiles; i++ {
		var f message.ListFileResponse
		if err := message.Recv(stream, &f); err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, nil
}

// FileChunk is one file's header and raw content, as delivered on a GetFiles
// response stream.
type FileChunk struct {
	Name string
	Data []byte
}

// GetFiles requests a bulk transfer of every regular file under path,
// fanned out across numStreams parallel response streams.
func (c *Client) GetFiles(ctx context.Context, path string, numStreams uint16) ([]FileChunk, error) {
	if numStreams == 0 {
		return nil, qerr.New(qerr.Protocol, "Client.GetFiles", nil)
	}

	requestID := c.allocateRequestID()

	req := newStreamRequest(numStreams, requestID)
	c.distributor.Register(req)

	if err := c.control.WriteRequestKind(message.KindGetFiles); err != nil {
		return nil, err
	}
	if err := c.control.SendMessage(&message.GetFilesRequest{Path: path, RequestID: requestID, NumStreams: numStreams}); err != nil {
		return nil, err
	}

	streams, ok := c.awaitStreams(ctx, req)
	if !ok {
		return nil, qerr.New(qerr.RequestAborted, "Client.GetFiles", nil)
	}

	var (
		mu    sync.Mutex
		files []FileChunk
	)
	group, _ := errgroup.WithContext(ctx)
	for _, s := range streams {
		s := s
		group.Go(func() error {
			chunks, err := readFileChunks(s)
			if err != nil {
				return err
			}
			mu.Lock()
			files = append(files, chunks...)
			mu.Unlock()
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return files, nil
}

// readFileChunks decodes every QFile payload on a single GetFiles response
// stream until the peer finishes it.
func readFileChunks(s RecvStream) ([]FileChunk, error) {
	var chunks []FileChunk
	for {
		header := &message.FileChunkHeader{}
		if err := message.Recv(s, header); err != nil {
			if qe, ok := err.(*qerr.Error); ok && qe.Kind == qerr.Closed {
				return chunks, nil
			}
			return nil, err
		}

		data := make([]byte, header.Size)
		if _, err := io.ReadFull(s, data); err != nil {
			return nil, qerr.New(qerr.Io, "readFileChunks", err)
		}
		chunks = append(chunks, FileChunk{Name: header.Name, Data: data})
	}
}

// GetFile is a convenience wrapper around GetFiles for the common case of
// fetching under a single response stream.
func (c *Client) GetFile(ctx context.Context, path string) ([]FileChunk, error) {
	return c.GetFiles(ctx, path, 1)
}

func (c *Client) awaitStreams(ctx context.Context, req *StreamRequest) ([]RecvStream, bool) {
	select {
	case streams, ok := <-req.Notify:
		return streams, ok
	case <-ctx.Done():
		return nil, false
	}
}

// Close finishes the control stream's send half and stops the Distributor,
// per the shutdown sequence in §4.4 of the protocol specification.
func (c *Client) Close() error {
	c.cancel()
	return c.control.Finish()
}
