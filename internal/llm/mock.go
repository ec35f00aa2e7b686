package llm

import (
	"context"
	"encoding/json"
	"sync"
)

// MockResponse is a canned response returned by MockProvider.
type MockResponse struct {
	Content string
	Err     error
}

// MockProvider is a test double that replays canned responses in FIFO
// order and records every request it receives.
type MockProvider struct {
	mu        sync.Mutex
	responses []MockResponse
	calls     []Request
}

// NewMockProvider creates an empty mock provider. With no queued
// responses, Generate returns a minimal valid text response.
func NewMockProvider() *MockProvider {
	return &MockProvider{}
}

// AddResponse queues a canned response.
func (p *MockProvider) AddResponse(content string) *MockProvider {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.responses = append(p.responses, MockResponse{Content: content})
	return p
}

// AddError queues a canned error.
func (p *MockProvider) AddError(err error) *MockProvider {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.responses = append(p.responses, MockResponse{Err: err})
	return p
}

func (p *MockProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, req)

	if len(p.responses) == 0 {
		return &Response{
			Content:    json.RawMessage(`"mock response"`),
			Model:      p.ModelID(),
			StopReason: "end",
		}, nil
	}

	next := p.responses[0]
	p.responses = p.responses[1:]
	if next.Err != nil {
		return nil, next.Err
	}

	content := json.RawMessage(next.Content)
	if req.Schema != nil {
		if err := validateResponse(req.Schema, content); err != nil {
			return nil, err
		}
	}

	return &Response{
		Content: content,
		Usage: Usage{
			InputTokens:  10,
			OutputTokens: 20,
			TotalTokens:  30,
		},
		Model:      p.ModelID(),
		StopReason: "end",
	}, nil
}

func (p *MockProvider) ModelID() string {
	return "mock-model"
}

// Calls returns a copy of all requests seen so far.
func (p *MockProvider) Calls() []Request {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Request, len(p.calls))
	copy(out, p.calls)
	return out
}

// CallCount returns the number of Generate calls seen so far.
func (p *MockProvider) CallCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.calls)
}
