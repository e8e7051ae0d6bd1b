package testutils

import (
	"errors"
	"sync"
)

var ErrConnClosed = errors.New("connection closed")

// MockConn simulates a connected websocket client for hub tests. Inbound
// control messages are pushed via PushControl; outbound frames delivered
// by the hub are captured in order.
type MockConn struct {
	Mu     sync.Mutex
	Sent   []string
	Closes int

	inbound   chan []byte
	closeOnce sync.Once
}

func NewMockConn() *MockConn {
	return &MockConn{inbound: make(chan []byte, 16)}
}

// PushControl queues one inbound control message for the control loop.
func (m *MockConn) PushControl(raw string) {
	m.inbound <- []byte(raw)
}

func (m *MockConn) ReadMessage() ([]byte, error) {
	raw, ok := <-m.inbound
	if !ok {
		return nil, ErrConnClosed
	}
	return raw, nil
}

func (m *MockConn) SendBytes(b []byte) {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	m.Sent = append(m.Sent, string(b))
}

func (m *MockConn) Close() error {
	m.closeOnce.Do(func() { close(m.inbound) })
	m.Mu.Lock()
	defer m.Mu.Unlock()
	m.Closes++
	return nil
}

func (m *MockConn) SentMessages() []string {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	out := make([]string, len(m.Sent))
	copy(out, m.Sent)
	return out
}

// BrokenConn simulates a subscriber whose transport is dead: every send
// fails silently, exactly like a full buffer on a real connection.
type BrokenConn struct {
	MockConn
	Drops int
}

func NewBrokenConn() *BrokenConn {
	return &BrokenConn{MockConn: MockConn{inbound: make(chan []byte, 16)}}
}

func (b *BrokenConn) SendBytes(_ []byte) {
	b.Mu.Lock()
	defer b.Mu.Unlock()
	b.Drops++
}
