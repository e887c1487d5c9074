package provider

import (
	"context"
	"sync"

	"github.com/tatianab/llmserver/internal/models"
)

// MockClient replays scripted replies. When the script runs out it echoes
// the last user message. It lets the server run without provider keys.
type MockClient struct {
	name string

	mu      sync.Mutex
	replies []string
	err     error
	calls   []*models.Context
}

func NewMockClient(name string, replies ...string) *MockClient {
	return &MockClient{name: name, replies: replies}
}

// Fail makes every following GenerateResponse call return err.
func (m *MockClient) Fail(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Push appends replies to the script.
func (m *MockClient) Push(replies ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.replies = append(m.replies, replies...)
}

// Calls returns snapshots of every context passed to GenerateResponse.
func (m *MockClient) Calls() []*models.Context {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*models.Context(nil), m.calls...)
}

func (m *MockClient) Name() string {
	return m.name
}

func (m *MockClient) GenerateResponse(ctx context.Context, c *models.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, c.Clone())
	if m.err != nil {
		return "", providerError(ctx, "Mock", m.err)
	}
	if len(m.replies) > 0 {
		reply := m.replies[0]
		m.replies = m.replies[1:]
		return reply, nil
	}
	for i := len(c.History) - 1; i >= 0; i-- {
		if c.History[i].Role == models.RoleUser {
			return "echo: " + c.History[i].Content, nil
		}
	}
	return "", nil
}

func (m *MockClient) ListModels(context.Context) ([]string, error) {
	return []string{"mock-small", "mock-large"}, nil
}

func (m *MockClient) GetModelInfo(_ context.Context, model string) ModelInfo {
	return catalogInfo([]string{"mock-small", "mock-large"}, model, "Scripted test model")
}
