package qftp

import (
	"bytes"

	"github.com/golang/mock/gomock"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/onestay/qftp/internal/auth"
	"github.com/onestay/qftp/internal/mocks"
	"github.com/onestay/qftp/message"
)

var _ = Describe("highestCommonVersion", func() {
	It("picks the highest version present in both sets", func() {
		v, ok := highestCommonVersion([]uint8{1, 2, 3}, []uint8{2, 3, 9})
		Expect(ok).To(BeTrue())
		Expect(v).To(Equal(uint8(3)))
	})

	It("reports no match when the sets are disjoint", func() {
		_, ok := highestCommonVersion([]uint8{5}, []uint8{1})
		Expect(ok).To(BeFalse())
	})
})

var _ = Describe("ConnectedClient", func() {
	var ctrl *gomock.Controller

	BeforeEach(func() {
		ctrl = gomock.NewController(GinkgoT())
	})

	Describe("awaitVersion", func() {
		It("sends exactly one VersionResponse for the highest common version", func() {
			buf := &bytes.Buffer{}
			Expect((&message.Version{Versions: []uint8{1}}).Encode(buf)).To(Succeed())

			conn := mocks.NewMockConnection(ctrl)
			cc := newConnectedClient(conn, nil, nil, zap.NewNop().Sugar())
			cc.control = NewControlStream(&bufStream{Buffer: buf})

			Expect(cc.awaitVersion()).To(Succeed())

			var resp message.VersionResponse
			Expect(resp.Decode(buf)).To(Succeed())
			Expect(resp.NegotiatedVersion).To(Equal(uint8(1)))
			Expect(buf.Len()).To(Equal(0), "exactly one VersionResponse must be written, never one per overlapping version")
		})

		It("closes the connection with VersionMismatch when no version overlaps", func() {
			buf := &bytes.Buffer{}
			Expect((&message.Version{Versions: []uint8{9}}).Encode(buf)).To(Succeed())

			conn := mocks.NewMockConnection(ctrl)
			conn.EXPECT().CloseWithError(AppErrorVersionMismatch, gomock.Any())

			cc := newConnectedClient(conn, nil, nil, zap.NewNop().Sugar())
			cc.control = NewControlStream(&bufStream{Buffer: buf})

			err := cc.awaitVersion()
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("awaitLogin", func() {
		var (
			authority *auth.Authority
			storage   *mocks.MockStorage
			stored    auth.User
		)

		BeforeEach(func() {
			storage = mocks.NewMockStorage(ctrl)
			authority = auth.NewAuthority(storage)

			storage.EXPECT().AddUser(gomock.Any()).DoAndReturn(func(u auth.User) error {
				stored = u
				return nil
			})
			Expect(authority.AddUser("alice", "hunter2", 1000, []uint32{1000})).To(Succeed())

			storage.EXPECT().Users().Return([]auth.User{stored}, nil).AnyTimes()
		})

		It("accepts a correct password and remembers the user", func() {
			buf := &bytes.Buffer{}
			Expect((&message.LoginRequest{Name: "alice", Password: "hunter2"}).Encode(buf)).To(Succeed())

			conn := mocks.NewMockConnection(ctrl)
			cc := newConnectedClient(conn, authority, nil, zap.NewNop().Sugar())
			cc.control = NewControlStream(&bufStream{Buffer: buf})

			Expect(cc.awaitLogin()).To(Succeed())

			var resp message.LoginResponse
			Expect(resp.Decode(buf)).To(Succeed())
			Expect(resp.Ok()).To(BeTrue())
			Expect(cc.user.Name).To(Equal("alice"))
		})

		It("rejects a wrong password and closes with AppErrorAuthFailed", func() {
			buf := &bytes.Buffer{}
			Expect((&message.LoginRequest{Name: "alice", Password: "wrong"}).Encode(buf)).To(Succeed())

			conn := mocks.NewMockConnection(ctrl)
			conn.EXPECT().CloseWithError(AppErrorAuthFailed, gomock.Any())

			cc := newConnectedClient(conn, authority, nil, zap.NewNop().Sugar())
			cc.control = NewControlStream(&bufStream{Buffer: buf})

			err := cc.awaitLogin()
			Expect(err).To(HaveOccurred())

			var resp message.LoginResponse
			Expect(resp.Decode(buf)).To(Succeed())
			Expect(resp.Ok()).To(BeFalse())
		})
	})
})
