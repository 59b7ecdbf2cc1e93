package auth

import (
	"os"
	"sync"

	"github.com/francoispqt/gojay"

	"github.com/onestay/qftp/internal/qerr"
)

// FileStorage persists the user list to a single UTF-8 JSON file, rewritten
// in full on every write. Concurrent writers within one process are
// serialized by mu; cross-process concurrency is not supported, matching
// §6 of the protocol specification.
type FileStorage struct {
	mu   sync.Mutex
	path string
}

// NewFileStorage opens (creating if necessary) the user file at path.
func NewFileStorage(path string) (*FileStorage, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDONLY, 0o600)
	if err != nil {
		return nil, qerr.New(qerr.Io, "NewFileStorage", err)
	}
	f.Close()
	return &FileStorage{path: path}, nil
}

// Users returns every persisted user record.
func (f *FileStorage) Users() ([]User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.readLocked()
}

// AddUser appends user and rewrites the file in full.
func (f *FileStorage) AddUser(user User) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	users, err := f.readLocked()
	if err != nil {
		return err
	}
	users = append(users, user)

	buf, err := gojay.MarshalJSONArray(userList(users))
	if err != nil {
		return qerr.New(qerr.Io, "FileStorage.AddUser", err)
	}

	if err := os.WriteFile(f.path, buf, 0o600); err != nil {
		return qerr.New(qerr.Io, "FileStorage.AddUser", err)
	}
	return nil
}

func (f *FileStorage) readLocked() ([]User, error) {
	raw, err := os.ReadFile(f.path)
	if err != nil {
		return nil, qerr.New(qerr.Io, "FileStorage.readLocked", err)
	}
	if len(raw) == 0 {
		return nil, nil
	}

	var users userList
	if err := gojay.UnmarshalJSONArray(raw, &users); err != nil {
		return nil, qerr.New(qerr.Io, "FileStorage.readLocked", err)
	}
	return users, nil
}

// userList adapts []User to gojay's array marshaling interfaces.
type userList []User

func (u *userList) UnmarshalJSONArray(dec *gojay.Decoder) error {
	user := User{}
	if err := dec.Object(&user); err != nil {
		return err
	}
	*u = append(*u, user)
	return nil
}

func (u userList) MarshalJSONArray(enc *gojay.Encoder) {
	for i := range u {
		enc.Object(&u[i])
	}
}

func (u userList) IsNil() bool { return u == nil }

// UnmarshalJSONObject implements gojay's object-decoding interface for User.
func (u *User) UnmarshalJSONObject(dec *gojay.Decoder, key string) error {
	switch key {
	case "name":
		return dec.String(&u.Name)
	case "password":
		return dec.String(&u.PasswordHash)
	case "uid":
		return dec.Uint32(&u.UID)
	case "gid":
		gids := uint32List{}
		if err := dec.Array(&gids); err != nil {
			return err
		}
		u.GIDs = gids
		return nil
	}
	return nil
}

func (u *User) NKeys() int { return 4 }

// MarshalJSONObject implements gojay's object-encoding interface for User.
func (u *User) MarshalJSONObject(enc *gojay.Encoder) {
	enc.StringKey("name", u.Name)
	enc.StringKey("password", u.PasswordHash)
	enc.Uint32Key("uid", u.UID)
	enc.ArrayKey("gid", uint32List(u.GIDs))
}

func (u *User) IsNil() bool { return u == nil }

// uint32List adapts []uint32 to gojay's array marshaling interfaces; gojay
// has no built-in support for slices of primitives.
type uint32List []uint32

func (l *uint32List) UnmarshalJSONArray(dec *gojay.Decoder) error {
	var v uint32
	if err := dec.Uint32(&v); err != nil {
		return err
	}
	*l = append(*l, v)
	return nil
}

func (l uint32List) MarshalJSONArray(enc *gojay.Encoder) {
	for _, v := range l {
		enc.AddUint32(v)
	}
}

func (l uint32List) IsNil() bool { return l == nil }
