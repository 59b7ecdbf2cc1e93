package qftp

import (
	"context"

	"go.uber.org/zap"

	"github.com/onestay/qftp/internal/qerr"
)

// StreamRequest describes one in-flight client request waiting for its
// response streams. It is registered with the Distributor, fulfilled when
// len(Collected) == NumStreams, and then Notify is signalled exactly once.
type StreamRequest struct {
	NumStreams uint16
	RequestID  uint32
	Collected  []RecvStream
	Notify     chan []RecvStream
}

func newStreamRequest(numStreams uint16, requestID uint32) *StreamRequest {
	return &StreamRequest{
		NumStreams: numStreams,
		RequestID:  requestID,
		Collected:  make([]RecvStream, 0, numStreams),
		Notify:     make(chan []RecvStream, 1),
	}
}

func (s *StreamRequest) isDone() bool {
	return len(s.Collected) == int(s.NumStreams)
}

// Distributor is the client-side reactor that correlates inbound
// unidirectional streams (each tagged with a leading 4-byte request id) with
// StreamRequests registered by the client engine. It runs on its own
// goroutine for the lifetime of one connection.
type Distributor struct {
	conn     Connection
	register chan *StreamRequest
	logger   *zap.SugaredLogger
}

// NewDistributor builds a Distributor bound to conn. Call Run to start it.
func NewDistributor(conn Connection, logger *zap.SugaredLogger) *Distributor {
	return &Distributor{
		conn:     conn,
		register: make(chan *StreamRequest, 64),
		logger:   logger,
	}
}

// Register enqueues a new StreamRequest for correlation against inbound
// streams. It never blocks for long: the channel is buffered and only the
// Distributor goroutine drains it.
func (d *Distributor) Register(req *StreamRequest) {
	d.register <- req
}

// Run is the single-task reactor described in §4.5. It exits when the
// connection's context is done or the accept loop ends; any still-pending
// requests, including ones still queued by Register, are dropped without a
// value on Notify, which callers surface as qerr.RequestAborted.
func (d *Distributor) Run(ctx context.Context) {
	d.logger.Debug("starting distributor")
	pending := make(map[uint32]*StreamRequest)
	buffered := make(map[uint32][]RecvStream)

	streams := make(chan RecvStream)
	go d.acceptLoop(ctx, streams)

	for {
		select {
		case s, ok := <-streams:
			if !ok {
				d.logger.Debug("distributor accept loop closed, exiting")
				d.drainPending(pending)
				return
			}
			d.handleStream(s, pending, buffered)

		case req := <-d.register:
			d.logger.Debugw("registering stream request", "request_id", req.RequestID)
			if buf, ok := buffered[req.RequestID]; ok {
				req.Collected = append(req.Collected, buf...)
				delete(buffered, req.RequestID)
			}
			if req.isDone() {
				req.Notify <- req.Collected
				continue
			}
			pending[req.RequestID] = req

		case <-ctx.Done():
			d.logger.Debug("distributor context done, exiting")
			d.drainPending(pending)
			return
		}
	}
}

func (d *Distributor) acceptLoop(ctx context.Context, out chan<- RecvStream) {
	defer close(out)
	for {
		s, err := d.conn.AcceptUniStream(ctx)
		if err != nil {
			d.logger.Debugw("distributor accept_uni returned", "error", err)
			return
		}
		requestID, err := readRequestID(s)
		if err != nil {
			d.logger.Warnw("failed reading request id off inbound stream", "error", err)
			continue
		}
		select {
		case out <- taggedStream{RecvStream: s, requestID: requestID}:
		case <-ctx.Done():
			return
		}
	}
}

// taggedStream carries the request id already read off the wire alongside
// the stream, so handleStream doesn't need to read it again.
type taggedStream struct {
	RecvStream
	requestID uint32
}

func (d *Distributor) handleStream(s RecvStream, pending map[uint32]*StreamRequest, buffered map[uint32][]RecvStream) {
	tagged, ok := s.(taggedStream)
	if !ok {
		return
	}
	requestID := tagged.requestID

	if req, ok := pending[requestID]; ok {
		req.Collected = append(req.Collected, tagged.RecvStream)
		if req.isDone() {
			delete(pending, requestID)
			req.Notify <- req.Collected
		}
		return
	}

	buffered[requestID] = append(buffered[requestID], tagged.RecvStream)
}

func (d *Distributor) drainPending(pending map[uint32]*StreamRequest) {
	for id, req := range pending {
		d.logger.Debugw("dropping unfulfilled stream request on shutdown", "request_id", id)
		close(req.Notify)
	}
	for {
		select {
		case req := <-d.register:
			d.logger.Debugw("dropping unprocessed stream request on shutdown", "request_id", req.RequestID)
			close(req.Notify)
		default:
			return
		}
	}
}

func readRequestID(s RecvStream) (uint32, error) {
	var buf [4]byte
	if _, err := readFull(s, buf[:]); err != nil {
		return 0, qerr.New(qerr.Io, "distributor.readRequestID", err)
	}
	return uint32(buf[0])<<24 | uint32(buf[1])<<16 | uint32(buf[2])<<8 | uint32(buf[3]), nil
}

func readFull(r interface{ Read([]byte) (int, error) }, buf []byte) (int, error) {
	n := 0
	for n < len(buf) {
		m, err := r.Read(buf[n:])
		n += m
		if err != nil {
			return n, err
		}
	}
	return n, nil
}
