package message_test

import (
	"bytes"
	"errors"
	"io"
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/onestay/qftp/internal/qerr"
	"github.com/onestay/qftp/message"
)

var _ = Describe("wire messages", func() {
	DescribeTable("round-trip through encode/decode",
		func(encode message.Message, decode message.Message) {
			var buf bytes.Buffer
			Expect(encode.Encode(&buf)).To(Succeed())
			Expect(decode.Decode(&buf)).To(Succeed())
			Expect(decode).To(Equal(encode))
		},
		Entry("Version", &message.Version{Versions: []uint8{1, 2, 3}}, &message.Version{}),
		Entry("Version empty", &message.Version{Versions: []uint8{}}, &message.Version{Versions: []uint8{}}),
		Entry("VersionResponse", &message.VersionResponse{NegotiatedVersion: 1}, &message.VersionResponse{}),
		Entry("LoginRequest", &message.LoginRequest{Name: "alice", Password: "pw"}, &message.LoginRequest{}),
		Entry("LoginResponse accepted", message.NewLoginResponse(true), &message.LoginResponse{}),
		Entry("LoginResponse rejected", message.NewLoginResponse(false), &message.LoginResponse{}),
		Entry("ListFilesRequest", &message.ListFilesRequest{Path: "b/c", RequestID: 7}, &message.ListFilesRequest{}),
		Entry("ListFileResponseHeader", &message.ListFileResponseHeader{NumFiles: 4}, &message.ListFileResponseHeader{}),
		Entry("ListFileResponse", &message.ListFileResponse{
			Name: "a", Size: 1, Atime: -100, Ctime: 5, Mtime: 10, Mode: 0644,
		}, &message.ListFileResponse{}),
		Entry("GetFilesRequest", &message.GetFilesRequest{Path: "", RequestID: 9, NumStreams: 2}, &message.GetFilesRequest{}),
		Entry("FileChunkHeader", &message.FileChunkHeader{Name: "e", Size: 4}, &message.FileChunkHeader{}),
	)

	It("encodes Version to the exact bytes from scenario A", func() {
		var buf bytes.Buffer
		v := &message.Version{Versions: []uint8{0x01}}
		Expect(v.Encode(&buf)).To(Succeed())
		Expect(buf.Bytes()).To(Equal([]byte{0x01, 0x01}))
	})

	It("encodes LoginRequest to the exact bytes from scenario B", func() {
		var buf bytes.Buffer
		l := &message.LoginRequest{Name: "alice", Password: "pw"}
		Expect(l.Encode(&buf)).To(Succeed())
		Expect(buf.Bytes()).To(Equal([]byte{
			0x05, 'a', 'l', 'i', 'c', 'e',
			0x02, 'p', 'w',
		}))
	})

	It("encodes ListFilesRequest to the exact bytes from scenario D", func() {
		var buf bytes.Buffer
		req := &message.ListFilesRequest{Path: "", RequestID: 7}
		Expect(req.Encode(&buf)).To(Succeed())
		Expect(buf.Bytes()).To(Equal([]byte{0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x07}))
	})

	It("rejects string lengths beyond the configured ceiling with Protocol", func() {
		var buf bytes.Buffer
		Expect(writeRawUint32(&buf, message.MaxStringLen+1)).To(Succeed())
		buf.Write(make([]byte, 16))
		h := &message.ListFileResponseHeader{}
		_ = h // header decode doesn't hit the string path; use ListFilesRequest instead
		req := &message.ListFilesRequest{}
		err := req.Decode(&buf)
		Expect(err).To(HaveOccurred())
		var qe *qerr.Error
		Expect(errors.As(err, &qe)).To(BeTrue())
		Expect(qe.Kind).To(Equal(qerr.Protocol))
	})

	It("never panics on truncated or garbage input", func() {
		r := rand.New(rand.NewSource(1))
		decoders := []func() message.Message{
			func() message.Message { return &message.Version{} },
			func() message.Message { return &message.VersionResponse{} },
			func() message.Message { return &message.LoginRequest{} },
			func() message.Message { return &message.LoginResponse{} },
			func() message.Message { return &message.ListFilesRequest{} },
			func() message.Message { return &message.ListFileResponseHeader{} },
			func() message.Message { return &message.ListFileResponse{} },
			func() message.Message { return &message.GetFilesRequest{} },
			func() message.Message { return &message.FileChunkHeader{} },
		}
		for _, newMsg := range decoders {
			for n := 0; n < 8; n++ {
				buf := make([]byte, n)
				r.Read(buf)
				func() {
					defer GinkgoRecover()
					_ = newMsg().Decode(bytes.NewReader(buf))
				}()
			}
		}
	})

	It("surfaces premature end-of-stream as a non-panicking error", func() {
		v := &message.VersionResponse{}
		err := v.Decode(bytes.NewReader(nil))
		Expect(err).To(HaveOccurred())
		Expect(err).ToNot(BeIdenticalTo(io.EOF))
	})
})

func writeRawUint32(w io.Writer, v uint32) error {
	_, err := w.Write([]byte{byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v)})
	return err
}
