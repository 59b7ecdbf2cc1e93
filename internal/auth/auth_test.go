package auth

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// memStorage is a minimal in-memory Storage double for exercising Authority
// without a real file on disk.
type memStorage struct {
	users []User
}

func (m *memStorage) AddUser(u User) error {
	m.users = append(m.users, u)
	return nil
}

func (m *memStorage) Users() ([]User, error) {
	return m.users, nil
}

var _ = Describe("Authority", func() {
	var (
		storage *memStorage
		a       *Authority
	)

	BeforeEach(func() {
		storage = &memStorage{}
		a = NewAuthority(storage)
	})

	It("hashes the password before persisting the user", func() {
		Expect(a.AddUser("alice", "hunter2", 1000, []uint32{1000, 100})).To(Succeed())
		Expect(storage.users).To(HaveLen(1))
		Expect(storage.users[0].Name).To(Equal("alice"))
		Expect(storage.users[0].PasswordHash).ToNot(Equal("hunter2"))
		Expect(storage.users[0].GIDs).To(Equal([]uint32{1000, 100}))
	})

	It("returns the user when the password verifies", func() {
		Expect(a.AddUser("alice", "hunter2", 1000, nil)).To(Succeed())

		u, err := a.GetUser("alice", "hunter2")
		Expect(err).ToNot(HaveOccurred())
		Expect(u.Name).To(Equal("alice"))
		Expect(u.UID).To(Equal(uint32(1000)))
	})

	It("rejects a wrong password", func() {
		Expect(a.AddUser("alice", "hunter2", 1000, nil)).To(Succeed())

		_, err := a.GetUser("alice", "wrong")
		Expect(err).To(HaveOccurred())
	})

	It("rejects an unknown user without revealing that distinction", func() {
		_, err := a.GetUser("nobody", "whatever")
		Expect(err).To(HaveOccurred())
	})
})
