package qftp

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/onestay/qftp/internal/auth"
	"github.com/onestay/qftp/internal/dirwalk"
	"github.com/onestay/qftp/internal/qerr"
	"github.com/onestay/qftp/message"
)

// RunningRequest is bookkeeping for one spawned request handler: its
// cancellation signal, raised when the connection shuts down.
type RunningRequest struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// RequestContext is the read-only view shared with a handler: the
// connection, the directory oracle, and this request's cancellation
// context.
type RequestContext struct {
	Conn   Connection
	Oracle *dirwalk.Oracle
	Ctx    context.Context
	Logger *zap.SugaredLogger
}

// ConnectedClient runs the per-connection server-side state machine
// described in §4.3 of the protocol specification: AwaitVersion ->
// AwaitLogin -> Serving -> ShuttingDown.
type ConnectedClient struct {
	conn      Connection
	control   *ControlStream
	authority *auth.Authority
	oracle    *dirwalk.Oracle
	logger    *zap.SugaredLogger

	user *auth.User

	mu      sync.Mutex
	running map[uint32]*RunningRequest
}

func newConnectedClient(conn Connection, authority *auth.Authority, oracle *dirwalk.Oracle, logger *zap.SugaredLogger) *ConnectedClient {
	return &ConnectedClient{
		conn:      conn,
		authority: authority,
		oracle:    oracle,
		logger:    logger,
		running:   make(map[uint32]*RunningRequest),
	}
}

// Serve drives this connection through negotiation, login, and the request
// dispatch loop until the control stream closes or fails. ctx bounds the
// wait for the control stream and is the parent of every handler's context;
// it is not observed while the loop waits for the next request. Callers
// typically run Serve in its own goroutine per accepted connection.
func (c *ConnectedClient) Serve(ctx context.Context) error {
	stream, err := c.conn.AcceptStream(ctx)
	if err != nil {
		return qerr.New(qerr.Io, "ConnectedClient.Serve", err)
	}
	c.control = NewControlStream(stream)

	if err := c.awaitVersion(); err != nil {
		return err
	}
	if err := c.awaitLogin(); err != nil {
		return err
	}
	return c.serveRequests(ctx)
}

// awaitVersion implements state 1 (AwaitVersion): select the highest
// version common to both sides and send exactly one VersionResponse. A
// connection whose source sent one response per overlapping version is the
// bug this implementation fixes — see §9(b).
func (c *ConnectedClient) awaitVersion() error {
	var v message.Version
	if err := c.control.RecvMessage(&v); err != nil {
		return err
	}

	negotiated, ok := highestCommonVersion(v.Versions, SupportedVersions)
	if !ok {
		c.conn.CloseWithError(AppErrorVersionMismatch, "no version in common")
		return qerr.New(qerr.VersionMismatch, "ConnectedClient.awaitVersion", nil)
	}

	if err := c.control.SendMessage(&message.VersionResponse{NegotiatedVersion: negotiated}); err != nil {
		return err
	}
	return nil
}

// highestCommonVersion returns max(offered ∩ supported).
func highestCommonVersion(offered, supported []uint8) (uint8, bool) {
	supportedSet := make(map[uint8]bool, len(supported))
	for _, s := range supported {
		supportedSet[s] = true
	}

	var best uint8
	found := false
	for _, o := range offered {
		if supportedSet[o] && (!found || o > best) {
			best, found = o, true
		}
	}
	return best, found
}

// awaitLogin implements state 2 (AwaitLogin).
func (c *ConnectedClient) awaitLogin() error {
	var req message.LoginRequest
	if err := c.control.RecvMessage(&req); err != nil {
		return err
	}

	user, err := c.authority.GetUser(req.Name, req.Password)
	if err != nil {
		c.control.SendMessage(message.NewLoginResponse(false))
		c.conn.CloseWithError(AppErrorAuthFailed, "login rejected")
		return qerr.New(qerr.Auth, "ConnectedClient.awaitLogin", err)
	}

	if err := c.control.SendMessage(message.NewLoginResponse(true)); err != nil {
		return err
	}
	c.user = &user
	c.logger.Debugw("login accepted", "user", user.Name)
	return nil
}

// serveRequests implements state 3 (Serving): read requests off the control
// stream and spawn an independent handler for each, never waiting on a
// handler before reading the next request.
func (c *ConnectedClient) serveRequests(ctx context.Context) error {
	for {
		kind, err := c.control.ReadRequestKind()
		if err != nil {
			if qe, ok := err.(*qerr.Error); ok && qe.Kind == qerr.Closed {
				return nil
			}
			return err
		}

		switch kind {
		case message.KindListFiles:
			var req message.ListFilesRequest
			if err := c.control.RecvMessage(&req); err != nil {
				return err
			}
			c.spawn(ctx, req.RequestID, func(rc RequestContext) {
				if err := listFilesHandler(rc, req); err != nil {
					rc.Logger.Warnw("list files handler failed", "request_id", req.RequestID, "error", err)
				}
			})

		case message.KindGetFiles:
			var req message.GetFilesRequest
			if err := c.control.RecvMessage(&req); err != nil {
				return err
			}
			if req.NumStreams == 0 || req.NumStreams > MaxGetFilesStreams {
				c.logger.Warnw("rejecting get files request with invalid stream count", "num_streams", req.NumStreams)
				continue
			}
			c.spawn(ctx, req.RequestID, func(rc RequestContext) {
				if err := getFilesHandler(rc, req); err != nil {
					rc.Logger.Warnw("get files handler failed", "request_id", req.RequestID, "error", err)
				}
			})

		default:
			return qerr.New(qerr.Protocol, "ConnectedClient.serveRequests", nil)
		}
	}
}

// spawn starts an independent handler goroutine and records a
// RunningRequest so Shutdown can cancel it.
func (c *ConnectedClient) spawn(parent context.Context, requestID uint32, handler func(RequestContext)) {
	ctx, cancel := context.WithCancel(parent)
	rr := &RunningRequest{cancel: cancel, done: make(chan struct{})}

	c.mu.Lock()
	c.running[requestID] = rr
	c.mu.Unlock()

	go func() {
		defer close(rr.done)
		defer func() {
			c.mu.Lock()
			delete(c.running, requestID)
			c.mu.Unlock()
		}()
		handler(RequestContext{Conn: c.conn, Oracle: c.oracle, Ctx: ctx, Logger: c.logger})
	}()
}

// Shutdown implements state 4 (ShuttingDown): finish the control stream's
// send half, tolerating a benign application-close with error code 0, then
// cancel every still-running handler.
func (c *ConnectedClient) Shutdown() {
	if c.control != nil {
		if err := c.control.Finish(); err != nil {
			c.logger.Debugw("control stream finish returned error during shutdown", "error", err)
		}
	}

	c.mu.Lock()
	running := make([]*RunningRequest, 0, len(c.running))
	for _, rr := range c.running {
		running = append(running, rr)
	}
	c.mu.Unlock()

	for _, rr := range running {
		rr.cancel()
	}
}
