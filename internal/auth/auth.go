// Package auth implements the authentication authority QFTP logins against:
// a JSON-backed user store with argon2-hashed passwords. Authority takes no
// lock of its own: FileStorage serializes access to the user file, and
// concurrent GetUser calls verify passwords in parallel.
package auth

import (
	"golang.org/x/crypto/argon2"

	"github.com/onestay/qftp/internal/qerr"
)

// User is an immutable descriptor of one registered account.
type User struct {
	Name         string
	PasswordHash string
	UID          uint32
	GIDs         []uint32
}

// Storage persists User records. FileStorage is the only implementation the
// core ships; it is intentionally narrow so a database-backed Storage can
// be substituted without touching Authority.
type Storage interface {
	AddUser(User) error
	Users() ([]User, error)
}

// Authority maps (name, password) to a User or an Auth failure. It is the
// external collaborator named in §1 of the protocol specification; the
// wire-level bits (LoginRequest/LoginResponse) never appear here.
type Authority struct {
	storage Storage
	params  argon2Params
}

type argon2Params struct {
	time    uint32
	memory  uint32
	threads uint8
	keyLen  uint32
	saltLen uint32
}

var defaultArgon2Params = argon2Params{
	time:    1,
	memory:  64 * 1024,
	threads: 4,
	keyLen:  32,
	saltLen: 16,
}

// NewAuthority wraps storage with argon2 password hashing.
func NewAuthority(storage Storage) *Authority {
	return &Authority{storage: storage, params: defaultArgon2Params}
}

// AddUser hashes password and persists a new User record.
func (a *Authority) AddUser(name, password string, uid uint32, gids []uint32) error {
	salt, err := randomSalt(a.params.saltLen)
	if err != nil {
		return qerr.New(qerr.Io, "Authority.AddUser", err)
	}
	hash := argon2.IDKey([]byte(password), salt, a.params.time, a.params.memory, a.params.threads, a.params.keyLen)
	encoded := encodeHash(a.params, salt, hash)

	return a.storage.AddUser(User{
		Name:         name,
		PasswordHash: encoded,
		UID:          uid,
		GIDs:         gids,
	})
}

// GetUser returns the named User if password verifies against its stored
// hash. Failures are qerr.Auth whether the user doesn't exist, the password
// is wrong, or the stored hash is malformed; a failure reading the storage is
// qerr.Io.
func (a *Authority) GetUser(name, password string) (User, error) {
	users, err := a.storage.Users()
	if err != nil {
		return User{}, qerr.New(qerr.Io, "Authority.GetUser", err)
	}

	var user User
	found := false
	for _, u := range users {
		if u.Name == name {
			user, found = u, true
			break
		}
	}
	if !found {
		return User{}, qerr.New(qerr.Auth, "Authority.GetUser", nil)
	}

	params, salt, hash, err := decodeHash(user.PasswordHash)
	if err != nil {
		return User{}, qerr.New(qerr.Auth, "Authority.GetUser", err)
	}

	candidate := argon2.IDKey([]byte(password), salt, params.time, params.memory, params.threads, uint32(len(hash)))
	if !constantTimeEqual(candidate, hash) {
		return User{}, qerr.New(qerr.Auth, "Authority.GetUser", nil)
	}

	return user, nil
}
