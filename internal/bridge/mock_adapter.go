package bridge

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
)

// SentMessage is one message recorded by MockAdapter.
type SentMessage struct {
	ChatID    int64
	MessageID int
	Text      string
	FilePath  string
	Keyboard  Keyboard
}

// MockAdapter implements Adapter for testing. It records sent messages
// with incrementing message ids and allows injecting inbound messages via
// SimulateInbound.
type MockAdapter struct {
	mu        sync.Mutex
	connected bool
	closed    bool
	inbound   chan InboundMessage
	sent      []SentMessage
	nextID    int

	downloadErr error
}

// NewMockAdapter creates a MockAdapter with a buffered inbound channel.
func NewMockAdapter() *MockAdapter {
	return &MockAdapter{
		inbound: make(chan InboundMessage, 100),
	}
}

// Connect marks the adapter as connected.
func (m *MockAdapter) Connect(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return fmt.Errorf("mock adapter: already closed")
	}
	m.connected = true
	return nil
}

// Listen returns the inbound message channel. Must be called after Connect.
func (m *MockAdapter) Listen(ctx context.Context) (<-chan InboundMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.connected {
		return nil, fmt.Errorf("mock adapter: not connected")
	}
	return m.inbound, nil
}

// SendText records the message and returns its assigned id.
func (m *MockAdapter) SendText(ctx context.Context, chatID int64, text string, kb Keyboard) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	m.sent = append(m.sent, SentMessage{
		ChatID:    chatID,
		MessageID: m.nextID,
		Text:      text,
		Keyboard:  kb,
	})
	return m.nextID, nil
}

// SendFile records the message with its file path and returns the
// assigned id.
func (m *MockAdapter) SendFile(ctx context.Context, chatID int64, path, caption string, kb Keyboard) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	m.sent = append(m.sent, SentMessage{
		ChatID:    chatID,
		MessageID: m.nextID,
		Text:      caption,
		FilePath:  path,
		Keyboard:  kb,
	})
	return m.nextID, nil
}

// Download returns a stable fake path under dir, or the configured error.
func (m *MockAdapter) Download(ctx context.Context, att Attachment, dir string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.downloadErr != nil {
		return "", m.downloadErr
	}
	return filepath.Join(dir, att.Name), nil
}

// Close shuts down the mock adapter and closes the inbound channel.
func (m *MockAdapter) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	m.closed = true
	m.connected = false
	close(m.inbound)
	return nil
}

// --- Test helpers ---

// SimulateInbound sends a message into the inbound channel as if it came
// from the chat platform. Safe to call from any goroutine.
func (m *MockAdapter) SimulateInbound(msg InboundMessage) {
	m.inbound <- msg
}

// SetDownloadError makes subsequent Download calls fail with err.
func (m *MockAdapter) SetDownloadError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.downloadErr = err
}

// LastSent returns the most recently sent message.
// Returns zero value and false if nothing has been sent.
func (m *MockAdapter) LastSent() (SentMessage, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		return SentMessage{}, false
	}
	return m.sent[len(m.sent)-1], true
}

// SentCount returns the number of messages sent.
func (m *MockAdapter) SentCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

// AllSent returns a copy of all sent messages.
func (m *MockAdapter) AllSent() []SentMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]SentMessage, len(m.sent))
	copy(out, m.sent)
	return out
}
