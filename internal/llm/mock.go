package llm

import (
	"context"
	"sync"
)

// MockClient permite tests sin llamar a un LLM real.
type MockClient struct {
	Response string
	Err      error

	mu          sync.Mutex
	Calls       int
	LastHistory []Message
	LastPrompt  string
}

func (m *MockClient) Chat(_ context.Context, history []Message, prompt string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	m.LastHistory = append([]Message(nil), history...)
	m.LastPrompt = prompt
	return m.Response, m.Err
}
