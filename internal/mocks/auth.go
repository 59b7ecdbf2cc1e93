package mocks

import (
	"reflect"

	"github.com/golang/mock/gomock"

	"github.com/onestay/qftp/internal/auth"
)

// MockStorage is a mock of the auth.Storage interface.
type MockStorage struct {
	ctrl     *gomock.Controller
	recorder *MockStorageRecorder
}

type MockStorageRecorder struct {
	mock *MockStorage
}

func NewMockStorage(ctrl *gomock.Controller) *MockStorage {
	m := &MockStorage{ctrl: ctrl}
	m.recorder = &MockStorageRecorder{m}
	return m
}

func (m *MockStorage) EXPECT() *MockStorageRecorder { return m.recorder }

func (m *MockStorage) AddUser(u auth.User) error {
	ret := m.ctrl.Call(m, "AddUser", u)
	err, _ := ret[0].(error)
	return err
}

func (mr *MockStorageRecorder) AddUser(u interface{}) *gomock.Call {
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "AddUser", reflect.TypeOf((*MockStorage)(nil).AddUser), u)
}

func (m *MockStorage) Users() ([]auth.User, error) {
	ret := m.ctrl.Call(m, "Users")
	users, _ := ret[0].([]auth.User)
	err, _ := ret[1].(error)
	return users, err
}

func (mr *MockStorageRecorder) Users() *gomock.Call {
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Users", reflect.TypeOf((*MockStorage)(nil).Users))
}
