package qftp

import (
	"context"
	"encoding/binary"
	"io"
	"os"

	"github.com/quic-go/quic-go"
	"golang.org/x/sync/errgroup"

	"github.com/onestay/qftp/internal/dirwalk"
	"github.com/onestay/qftp/internal/qerr"
	"github.com/onestay/qftp/message"
)

// streamErrProtocolError is the stream-level error code used to cancel a
// response stream's write half when a handler aborts mid-transfer.
const streamErrProtocolError quic.StreamErrorCode = 3

// writeRequestIDPrefix writes requestID as the four big-endian bytes every
// response stream is tagged with, per §4.3.1 and §4.3.2.
func writeRequestIDPrefix(w io.Writer, requestID uint32) error {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], requestID)
	_, err := w.Write(buf[:])
	return err
}

// listFilesHandler implements §4.3.1: open one response stream, tag it,
// enumerate the requested directory, and write the header followed by one
// ListFileResponse per file in enumeration order.
func listFilesHandler(rc RequestContext, req message.ListFilesRequest) error {
	stream, err := rc.Conn.OpenUniStreamSync(rc.Ctx)
	if err != nil {
		return qerr.New(qerr.Io, "listFilesHandler", err)
	}

	if err := writeRequestIDPrefix(stream, req.RequestID); err != nil {
		stream.CancelWrite(streamErrProtocolError)
		return qerr.New(qerr.Io, "listFilesHandler", err)
	}

	files, err := rc.Oracle.Walk(rc.Ctx, req.Path)
	if err != nil {
		stream.CancelWrite(streamErrProtocolError)
		return err
	}

	header := &message.ListFileResponseHeader{NumFiles: uint32(len(files))}
	if err := message.Send(stream, header); err != nil {
		stream.CancelWrite(streamErrProtocolError)
		return qerr.New(qerr.Io, "listFilesHandler", err)
	}

	for _, f := range files {
		resp := qfileToListFileResponse(f)
		if err := message.Send(stream, &resp); err != nil {
			stream.CancelWrite(streamErrProtocolError)
			return qerr.New(qerr.Io, "listFilesHandler", err)
		}
	}

	return stream.Close()
}

func qfileToListFileResponse(f dirwalk.QFile) message.ListFileResponse {
	return message.ListFileResponse{
		Name:  f.RelativePath,
		Size:  uint64(f.Metadata.Size),
		Atime: f.Metadata.Atime,
		Ctime: f.Metadata.Ctime,
		Mtime: f.Metadata.Mtime,
		Mode:  f.Metadata.Mode,
	}
}

// getFilesHandler implements §4.3.2: open num_streams response streams in
// parallel, enumerate the requested directory, fan files out round-robin
// across per-stream channels, and join the writer tasks.
func getFilesHandler(rc RequestContext, req message.GetFilesRequest) error {
	streams := make([]SendStream, req.NumStreams)

	openGroup, openCtx := errgroup.WithContext(rc.Ctx)
	for i := range streams {
		i := i
		openGroup.Go(func() error {
			s, err := rc.Conn.OpenUniStreamSync(openCtx)
			if err != nil {
				return qerr.New(qerr.Io, "getFilesHandler", err)
			}
			if err := writeRequestIDPrefix(s, req.RequestID); err != nil {
				s.CancelWrite(streamErrProtocolError)
				return qerr.New(qerr.Io, "getFilesHandler", err)
			}
			streams[i] = s
			return nil
		})
	}
	if err := openGroup.Wait(); err != nil {
		for _, s := range streams {
			if s != nil {
				s.CancelWrite(streamErrProtocolError)
			}
		}
		return err
	}

	files, err := rc.Oracle.Walk(rc.Ctx, req.Path)
	if err != nil {
		for _, s := range streams {
			s.CancelWrite(streamErrProtocolError)
		}
		return err
	}

	channels := make([]chan dirwalk.QFile, req.NumStreams)
	for i := range channels {
		channels[i] = make(chan dirwalk.QFile, 1)
	}

	writeGroup, _ := errgroup.WithContext(rc.Ctx)
	for i, s := range streams {
		i, s := i, s
		writeGroup.Go(func() error {
			return writeFilesToStream(rc, s, channels[i])
		})
	}

	dispatchLoop(rc.Ctx, files, channels)

	return writeGroup.Wait()
}

// dispatchLoop distributes files round-robin across channels and closes
// every channel once all files are dispatched or the context is cancelled.
func dispatchLoop(ctx context.Context, files []dirwalk.QFile, channels []chan dirwalk.QFile) {
	defer func() {
		for _, ch := range channels {
			close(ch)
		}
	}()

	for i, f := range files {
		ch := channels[i%len(channels)]
		select {
		case ch <- f:
		case <-ctx.Done():
			return
		}
	}
}

// writeFilesToStream is the per-stream writer task: it receives QFile
// values off ch, writes the §4.1 QFile payload for each, and finishes the
// stream once ch closes.
func writeFilesToStream(rc RequestContext, s SendStream, ch <-chan dirwalk.QFile) error {
	for {
		select {
		case f, ok := <-ch:
			if !ok {
				return s.Close()
			}
			if err := writeFilePayload(s, f); err != nil {
				s.CancelWrite(streamErrProtocolError)
				return qerr.New(qerr.Io, "writeFilesToStream", err)
			}
		case <-rc.Ctx.Done():
			for range ch {
			}
			return s.Close()
		}
	}
}

func writeFilePayload(w io.Writer, f dirwalk.QFile) error {
	file, err := os.Open(f.AbsolutePath)
	if err != nil {
		return err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return err
	}

	header := &message.FileChunkHeader{Name: f.RelativePath, Size: uint64(info.Size())}
	if err := message.Send(w, header); err != nil {
		return err
	}

	_, err = io.Copy(w, file)
	return err
}
