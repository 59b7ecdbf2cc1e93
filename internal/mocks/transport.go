// Package mocks holds hand-written gomock doubles for the core's external
// collaborator interfaces (the QUIC transport and the authentication
// storage), in the shape mockgen would generate.
package mocks

import (
	"context"
	"reflect"

	"github.com/golang/mock/gomock"
	"github.com/quic-go/quic-go"
)

// MockConnection is a mock of the qftp.Connection interface.
type MockConnection struct {
	ctrl     *gomock.Controller
	recorder *MockConnectionRecorder
}

type MockConnectionRecorder struct {
	mock *MockConnection
}

func NewMockConnection(ctrl *gomock.Controller) *MockConnection {
	m := &MockConnection{ctrl: ctrl}
	m.recorder = &MockConnectionRecorder{m}
	return m
}

func (m *MockConnection) EXPECT() *MockConnectionRecorder { return m.recorder }

func (m *MockConnection) AcceptStream(ctx context.Context) (quic.Stream, error) {
	ret := m.ctrl.Call(m, "AcceptStream", ctx)
	s, _ := ret[0].(quic.Stream)
	err, _ := ret[1].(error)
	return s, err
}

func (mr *MockConnectionRecorder) AcceptStream(ctx interface{}) *gomock.Call {
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "AcceptStream", reflect.TypeOf((*MockConnection)(nil).AcceptStream), ctx)
}

func (m *MockConnection) OpenStream() (quic.Stream, error) {
	ret := m.ctrl.Call(m, "OpenStream")
	s, _ := ret[0].(quic.Stream)
	err, _ := ret[1].(error)
	return s, err
}

func (mr *MockConnectionRecorder) OpenStream() *gomock.Call {
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "OpenStream", reflect.TypeOf((*MockConnection)(nil).OpenStream))
}

func (m *MockConnection) OpenStreamSync(ctx context.Context) (quic.Stream, error) {
	ret := m.ctrl.Call(m, "OpenStreamSync", ctx)
	s, _ := ret[0].(quic.Stream)
	err, _ := ret[1].(error)
	return s, err
}

func (mr *MockConnectionRecorder) OpenStreamSync(ctx interface{}) *gomock.Call {
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "OpenStreamSync", reflect.TypeOf((*MockConnection)(nil).OpenStreamSync), ctx)
}

func (m *MockConnection) AcceptUniStream(ctx context.Context) (quic.ReceiveStream, error) {
	ret := m.ctrl.Call(m, "AcceptUniStream", ctx)
	s, _ := ret[0].(quic.ReceiveStream)
	err, _ := ret[1].(error)
	return s, err
}

func (mr *MockConnectionRecorder) AcceptUniStream(ctx interface{}) *gomock.Call {
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "AcceptUniStream", reflect.TypeOf((*MockConnection)(nil).AcceptUniStream), ctx)
}

func (m *MockConnection) OpenUniStream() (quic.SendStream, error) {
	ret := m.ctrl.Call(m, "OpenUniStream")
	s, _ := ret[0].(quic.SendStream)
	err, _ := ret[1].(error)
	return s, err
}

func (mr *MockConnectionRecorder) OpenUniStream() *gomock.Call {
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "OpenUniStream", reflect.TypeOf((*MockConnection)(nil).OpenUniStream))
}

func (m *MockConnection) OpenUniStreamSync(ctx context.Context) (quic.SendStream, error) {
	ret := m.ctrl.Call(m, "OpenUniStreamSync", ctx)
	s, _ := ret[0].(quic.SendStream)
	err, _ := ret[1].(error)
	return s, err
}

func (mr *MockConnectionRecorder) OpenUniStreamSync(ctx interface{}) *gomock.Call {
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "OpenUniStreamSync", reflect.TypeOf((*MockConnection)(nil).OpenUniStreamSync), ctx)
}

func (m *MockConnection) CloseWithError(code quic.ApplicationErrorCode, reason string) error {
	ret := m.ctrl.Call(m, "CloseWithError", code, reason)
	err, _ := ret[0].(error)
	return err
}

func (mr *MockConnectionRecorder) CloseWithError(code, reason interface{}) *gomock.Call {
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "CloseWithError", reflect.TypeOf((*MockConnection)(nil).CloseWithError), code, reason)
}

func (m *MockConnection) Context() context.Context {
	ret := m.ctrl.Call(m, "Context")
	ctx, _ := ret[0].(context.Context)
	return ctx
}

func (mr *MockConnectionRecorder) Context() *gomock.Call {
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Context", reflect.TypeOf((*MockConnection)(nil).Context))
}

// MockStream is a mock of quic.Stream (the full bidirectional-stream
// interface, so a *MockStream can stand in anywhere a real QUIC stream is
// expected). It embeds a nil quic.Stream to pick up every method this
// package doesn't care to mock; only Read/Write/Close are exercised by the
// core, so only those are overridden below.
type MockStream struct {
	quic.Stream
	ctrl     *gomock.Controller
	recorder *MockStreamRecorder
}

type MockStreamRecorder struct {
	mock *MockStream
}

func NewMockStream(ctrl *gomock.Controller) *MockStream {
	m := &MockStream{ctrl: ctrl}
	m.recorder = &MockStreamRecorder{m}
	return m
}

func (m *MockStream) EXPECT() *MockStreamRecorder { return m.recorder }

func (m *MockStream) Read(p []byte) (int, error) {
	ret := m.ctrl.Call(m, "Read", p)
	n, _ := ret[0].(int)
	err, _ := ret[1].(error)
	return n, err
}

func (mr *MockStreamRecorder) Read(p interface{}) *gomock.Call {
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Read", reflect.TypeOf((*MockStream)(nil).Read), p)
}

func (m *MockStream) Write(p []byte) (int, error) {
	ret := m.ctrl.Call(m, "Write", p)
	n, _ := ret[0].(int)
	err, _ := ret[1].(error)
	return n, err
}

func (mr *MockStreamRecorder) Write(p interface{}) *gomock.Call {
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Write", reflect.TypeOf((*MockStream)(nil).Write), p)
}

func (m *MockStream) Close() error {
	ret := m.ctrl.Call(m, "Close")
	err, _ := ret[0].(error)
	return err
}

func (mr *MockStreamRecorder) Close() *gomock.Call {
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Close", reflect.TypeOf((*MockStream)(nil).Close))
}

// MockSendStream is a mock of quic.SendStream, embedding a nil instance so
// it satisfies the full interface; only Write/Close/CancelWrite are
// overridden.
type MockSendStream struct {
	quic.SendStream
	ctrl     *gomock.Controller
	recorder *MockSendStreamRecorder
}

type MockSendStreamRecorder struct {
	mock *MockSendStream
}

func NewMockSendStream(ctrl *gomock.Controller) *MockSendStream {
	m := &MockSendStream{ctrl: ctrl}
	m.recorder = &MockSendStreamRecorder{m}
	return m
}

func (m *MockSendStream) EXPECT() *MockSendStreamRecorder { return m.recorder }

func (m *MockSendStream) Write(p []byte) (int, error) {
	ret := m.ctrl.Call(m, "Write", p)
	n, _ := ret[0].(int)
	err, _ := ret[1].(error)
	return n, err
}

func (mr *MockSendStreamRecorder) Write(p interface{}) *gomock.Call {
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Write", reflect.TypeOf((*MockSendStream)(nil).Write), p)
}

func (m *MockSendStream) Close() error {
	ret := m.ctrl.Call(m, "Close")
	err, _ := ret[0].(error)
	return err
}

func (mr *MockSendStreamRecorder) Close() *gomock.Call {
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Close", reflect.TypeOf((*MockSendStream)(nil).Close))
}

func (m *MockSendStream) CancelWrite(code quic.StreamErrorCode) {
	m.ctrl.Call(m, "CancelWrite", code)
}

func (mr *MockSendStreamRecorder) CancelWrite(code interface{}) *gomock.Call {
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "CancelWrite", reflect.TypeOf((*MockSendStream)(nil).CancelWrite), code)
}

// MockRecvStream is a mock of quic.ReceiveStream, embedding a nil instance
// so it satisfies the full interface; only Read/CancelRead are overridden.
type MockRecvStream struct {
	quic.ReceiveStream
	ctrl     *gomock.Controller
	recorder *MockRecvStreamRecorder
}

type MockRecvStreamRecorder struct {
	mock *MockRecvStream
}

func NewMockRecvStream(ctrl *gomock.Controller) *MockRecvStream {
	m := &MockRecvStream{ctrl: ctrl}
	m.recorder = &MockRecvStreamRecorder{m}
	return m
}

func (m *MockRecvStream) EXPECT() *MockRecvStreamRecorder { return m.recorder }

func (m *MockRecvStream) Read(p []byte) (int, error) {
	ret := m.ctrl.Call(m, "Read", p)
	n, _ := ret[0].(int)
	err, _ := ret[1].(error)
	return n, err
}

func (mr *MockRecvStreamRecorder) Read(p interface{}) *gomock.Call {
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Read", reflect.TypeOf((*MockRecvStream)(nil).Read), p)
}

func (m *MockRecvStream) CancelRead(code quic.StreamErrorCode) {
	m.ctrl.Call(m, "CancelRead", code)
}

func (mr *MockRecvStreamRecorder) CancelRead(code interface{}) *gomock.Call {
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "CancelRead", reflect.TypeOf((*MockRecvStream)(nil).CancelRead), code)
}
