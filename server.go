package qftp

import (
	"context"
	"crypto/tls"

	"github.com/quic-go/quic-go"
	"go.uber.org/zap"

	"github.com/onestay/qftp/internal/auth"
	"github.com/onestay/qftp/internal/dirwalk"
	"github.com/onestay/qftp/internal/qerr"
)

// MaxGetFilesStreams bounds num_streams on a GetFilesRequest, per the
// implementation-defined ceiling named in §4.3.2 of the protocol
// specification.
const MaxGetFilesStreams = 64

// ServerConfig is the builder-style constructor input named in §6 of the
// protocol specification.
type ServerConfig struct {
	ListenAddr   string
	ServerTLS    *tls.Config
	QUICConfig   *quic.Config
	AuthFilePath string
	BasePath     string
	Logger       *zap.SugaredLogger
}

// Server accepts QUIC connections and produces one ConnectedClient per
// connection, sharing a single authentication authority and directory
// oracle across all of them.
type Server struct {
	listener  *quic.Listener
	authority *auth.Authority
	oracle    *dirwalk.Oracle
	logger    *zap.SugaredLogger
}

// NewServer opens the listening UDP socket and constructs the shared
// authority and oracle handles. It does not start accepting connections;
// call Accept in a loop for that.
func NewServer(cfg ServerConfig) (*Server, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	storage, err := auth.NewFileStorage(cfg.AuthFilePath)
	if err != nil {
		return nil, err
	}
	authority := auth.NewAuthority(storage)

	oracle, err := dirwalk.NewOracle(cfg.BasePath)
	if err != nil {
		return nil, err
	}

	listener, err := quic.ListenAddr(cfg.ListenAddr, cfg.ServerTLS, cfg.QUICConfig)
	if err != nil {
		return nil, qerr.New(qerr.Io, "NewServer", err)
	}

	return &Server{listener: listener, authority: authority, oracle: oracle, logger: logger}, nil
}

// Accept blocks until the next connection arrives and returns a
// ConnectedClient wrapping it. Callers typically loop: spawn a goroutine
// running Serve on each returned client.
func (s *Server) Accept(ctx context.Context) (*ConnectedClient, error) {
	conn, err := s.listener.Accept(ctx)
	if err != nil {
		return nil, qerr.New(qerr.Io, "Server.Accept", err)
	}
	return newConnectedClient(conn, s.authority, s.oracle, s.logger), nil
}

// Close stops accepting new connections.
func (s *Server) Close() error {
	return s.listener.Close()
}
