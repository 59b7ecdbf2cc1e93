package qftp

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"io"

	"github.com/golang/mock/gomock"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/quic-go/quic-go"
	"go.uber.org/zap"

	"github.com/onestay/qftp/internal/mocks"
	"github.com/onestay/qftp/internal/qerr"
	"github.com/onestay/qftp/message"
)

var _ = Describe("Client", func() {
	var ctrl *gomock.Controller

	BeforeEach(func() {
		ctrl = gomock.NewController(GinkgoT())
	})

	Describe("negotiateVersion", func() {
		It("accepts a version the server echoes back", func() {
			buf := &bytes.Buffer{}
			Expect((&message.VersionResponse{NegotiatedVersion: 1}).Encode(buf)).To(Succeed())

			conn := mocks.NewMockConnection(ctrl)
			c := &Client{conn: conn, control: NewControlStream(&bufStream{Buffer: buf}), logger: zap.NewNop().Sugar()}

			Expect(c.negotiateVersion(context.Background())).To(Succeed())

			var sent message.Version
			Expect(sent.Decode(buf)).To(Succeed())
			Expect(sent.Versions).To(Equal(SupportedVersions))
		})

		It("closes the connection when nothing overlaps", func() {
			buf := &bytes.Buffer{}
			Expect((&message.VersionResponse{NegotiatedVersion: 99}).Encode(buf)).To(Succeed())

			conn := mocks.NewMockConnection(ctrl)
			conn.EXPECT().CloseWithError(AppErrorVersionMismatch, gomock.Any())
			c := &Client{conn: conn, control: NewControlStream(&bufStream{Buffer: buf}), logger: zap.NewNop().Sugar()}

			err := c.negotiateVersion(context.Background())
			var qe *qerr.Error
			Expect(errors.As(err, &qe)).To(BeTrue())
			Expect(qe.Kind).To(Equal(qerr.VersionMismatch))
		})
	})

	Describe("login", func() {
		It("returns no error when the server accepts the credentials", func() {
			buf := &bytes.Buffer{}
			Expect(message.NewLoginResponse(true).Encode(buf)).To(Succeed())

			conn := mocks.NewMockConnection(ctrl)
			c := &Client{conn: conn, control: NewControlStream(&bufStream{Buffer: buf}), logger: zap.NewNop().Sugar()}

			Expect(c.login("alice", "hunter2")).To(Succeed())

			var sent message.LoginRequest
			Expect(sent.Decode(buf)).To(Succeed())
			Expect(sent.Name).To(Equal("alice"))
			Expect(sent.Password).To(Equal("hunter2"))
		})

		It("closes the connection when the server rejects the credentials", func() {
			buf := &bytes.Buffer{}
			Expect(message.NewLoginResponse(false).Encode(buf)).To(Succeed())

			conn := mocks.NewMockConnection(ctrl)
			conn.EXPECT().CloseWithError(AppErrorAuthFailed, gomock.Any())
			c := &Client{conn: conn, control: NewControlStream(&bufStream{Buffer: buf}), logger: zap.NewNop().Sugar()}

			err := c.login("alice", "wrong")
			var qe *qerr.Error
			Expect(errors.As(err, &qe)).To(BeTrue())
			Expect(qe.Kind).To(Equal(qerr.LoginRejected))
		})
	})

	It("allocates monotonically increasing, per-connection request ids", func() {
		c := &Client{}
		Expect(c.allocateRequestID()).To(Equal(uint32(1)))
		Expect(c.allocateRequestID()).To(Equal(uint32(2)))
		Expect(c.allocateRequestID()).To(Equal(uint32(3)))
	})

	Describe("ListFiles", func() {
		It("decodes the header and every file off the single response stream", func() {
			respBuf := &bytes.Buffer{}
			Expect((&message.ListFileResponseHeader{NumFiles: 2}).Encode(respBuf)).To(Succeed())
			Expect((&message.ListFileResponse{Name: "a", Size: 1}).Encode(respBuf)).To(Succeed())
			Expect((&message.ListFileResponse{Name: "b", Size: 2}).Encode(respBuf)).To(Succeed())

			var idPrefix bytes.Buffer
			Expect(binary.Write(&idPrefix, binary.BigEndian, uint32(1))).To(Succeed())
			respStream := mocks.NewMockRecvStream(ctrl)
			respStream.EXPECT().Read(gomock.Any()).DoAndReturn(io.MultiReader(&idPrefix, respBuf).Read).AnyTimes()

			conn := mocks.NewMockConnection(ctrl)
			conn.EXPECT().AcceptUniStream(gomock.Any()).DoAndReturn(func(context.Context) (quic.ReceiveStream, error) {
				return respStream, nil
			})
			conn.EXPECT().AcceptUniStream(gomock.Any()).DoAndReturn(func(ctx context.Context) (quic.ReceiveStream, error) {
				<-ctx.Done()
				return nil, errors.New("closed")
			}).AnyTimes()

			controlBuf := &bytes.Buffer{}
			c := &Client{
				conn:        conn,
				control:     NewControlStream(&bufStream{Buffer: controlBuf}),
				distributor: NewDistributor(conn, zap.NewNop().Sugar()),
				logger:      zap.NewNop().Sugar(),
			}
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			go c.distributor.Run(ctx)

			files, err := c.ListFiles(context.Background(), "")
			Expect(err).ToNot(HaveOccurred())
			Expect(files).To(HaveLen(2))
			Expect(files[0].Name).To(Equal("a"))
			Expect(files[1].Name).To(Equal("b"))

			var kind message.RequestKind
			Expect(binary.Read(controlBuf, binary.BigEndian, &kind)).To(Succeed())
			Expect(kind).To(Equal(message.KindListFiles))
		})
	})
})
