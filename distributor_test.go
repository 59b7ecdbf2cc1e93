package qftp

import (
	"context"
	"encoding/binary"
	"errors"

	"github.com/golang/mock/gomock"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/quic-go/quic-go"
	"go.uber.org/zap"

	"github.com/onestay/qftp/internal/mocks"
)

func requestIDStream(ctrl *gomock.Controller, id uint32) *mocks.MockRecvStream {
	s := mocks.NewMockRecvStream(ctrl)
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], id)
	sent := false
	s.EXPECT().Read(gomock.Any()).DoAndReturn(func(p []byte) (int, error) {
		if sent {
			return 0, errors.New("no more data")
		}
		sent = true
		return copy(p, buf[:]), nil
	}).AnyTimes()
	return s
}

var _ = Describe("Distributor", func() {
	var ctrl *gomock.Controller

	BeforeEach(func() {
		ctrl = gomock.NewController(GinkgoT())
	})

	It("buffers a stream that arrives before its StreamRequest is registered", func() {
		conn := mocks.NewMockConnection(ctrl)
		stopped := make(chan struct{})

		gomock.InOrder(
			conn.EXPECT().AcceptUniStream(gomock.Any()).Return(requestIDStream(ctrl, 42), nil),
			conn.EXPECT().AcceptUniStream(gomock.Any()).DoAndReturn(func(context.Context) (quic.ReceiveStream, error) {
				<-stopped
				return nil, errors.New("closed")
			}),
		)

		d := NewDistributor(conn, zap.NewNop().Sugar())
		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})
		go func() {
			defer close(done)
			d.Run(ctx)
		}()

		req := newStreamRequest(1, 42)
		d.Register(req)

		var streams []RecvStream
		Eventually(req.Notify).Should(Receive(&streams))
		Expect(streams).To(HaveLen(1))

		close(stopped)
		cancel()
		Eventually(done).Should(BeClosed())
	})

	It("drops pending requests without fulfilment when the connection closes", func() {
		conn := mocks.NewMockConnection(ctrl)
		conn.EXPECT().AcceptUniStream(gomock.Any()).Return(nil, errors.New("closed"))

		d := NewDistributor(conn, zap.NewNop().Sugar())
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		req := newStreamRequest(1, 7)
		d.Register(req)

		done := make(chan struct{})
		go func() {
			defer close(done)
			d.Run(ctx)
		}()

		Eventually(done).Should(BeClosed())
		_, ok := <-req.Notify
		Expect(ok).To(BeFalse())
	})
})
