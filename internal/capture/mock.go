package capture

import (
	"context"
	"sync"
)

// MockClipboard is an in-memory Clipboard for tests and headless runs.
type MockClipboard struct {
	mu      sync.RWMutex
	content string
	err     error
}

func NewMockClipboard() *MockClipboard {
	return &MockClipboard{}
}

func (m *MockClipboard) Read(context.Context) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.content, m.err
}

// Set replaces the clipboard content.
func (m *MockClipboard) Set(content string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.content = content
}

// Fail makes subsequent reads return err; nil restores normal reads.
func (m *MockClipboard) Fail(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}
