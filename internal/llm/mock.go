package llm

import (
	"context"
	"sync"
)

// MockResponse defines a canned response for the mock provider.
type MockResponse struct {
	Content string
	Err     error
}

// MockProvider is a test double that returns pre-configured responses in
// sequence. After all responses are exhausted, it keeps returning the last one.
// It records every request for later assertion.
type MockProvider struct {
	mu        sync.Mutex
	responses []MockResponse
	calls     []Request
	idx       int

	// Models is returned by ListModels unless ListErr is set.
	Models  []string
	ListErr error

	listCalls int
}

// Compile-time check that MockProvider satisfies the Provider interface.
var _ Provider = (*MockProvider)(nil)

// NewMockProvider creates a mock that returns the given responses in order.
// If no responses are provided, Complete returns an empty Response.
func NewMockProvider(responses ...MockResponse) *MockProvider {
	return &MockProvider{
		responses: responses,
	}
}

// Complete returns the next canned response and records the request.
// It respects context cancellation.
func (m *MockProvider) Complete(ctx context.Context, req Request) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	msgs := make([]Message, len(req.Messages))
	copy(msgs, req.Messages)
	req.Messages = msgs
	m.calls = append(m.calls, req)

	if len(m.responses) == 0 {
		return &Response{Content: "", Model: "mock"}, nil
	}

	r := m.responses[m.idx]
	if m.idx < len(m.responses)-1 {
		m.idx++
	}

	if r.Err != nil {
		return nil, r.Err
	}

	return &Response{
		Content: r.Content,
		Model:   "mock",
		Usage:   Usage{InputTokens: 10, OutputTokens: 5},
	}, nil
}

// ListModels returns Models or ListErr.
func (m *MockProvider) ListModels(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.listCalls++
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	out := make([]string, len(m.Models))
	copy(out, m.Models)
	return out, nil
}

// Calls returns a copy of all requests received by this mock.
func (m *MockProvider) Calls() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Request, len(m.calls))
	copy(out, m.calls)
	return out
}

// ListCalls returns how many times ListModels was called.
func (m *MockProvider) ListCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.listCalls
}

// Reset clears call history and resets the response index to zero.
func (m *MockProvider) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = nil
	m.listCalls = 0
	m.idx = 0
}

// MockFactory returns a Factory that always yields m and records the keys it
// was asked for.
func MockFactory(m *MockProvider, keys *[]string) Factory {
	var mu sync.Mutex
	return func(apiKey string) (Provider, error) {
		if keys != nil {
			mu.Lock()
			*keys = append(*keys, apiKey)
			mu.Unlock()
		}
		return m, nil
	}
}
