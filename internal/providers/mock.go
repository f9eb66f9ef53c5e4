package providers

import (
	"context"
	"fmt"
	"sync"
	"time"
)

const MockClientName = "mock"

// MockClient is an LLMClient for testing.
type MockClient struct {
	// Responses are returned in order; the last one repeats once exhausted.
	Responses []string
	// Errs are returned in order before any response is served. A nil entry
	// means that call succeeds.
	Errs []error
	// Latency is simulated per call.
	Latency time.Duration

	mu       sync.Mutex
	requests []*GenerateRequest
}

// NewMockClient creates a new mock client with a single canned response.
func NewMockClient(responses ...string) *MockClient {
	if len(responses) == 0 {
		responses = []string{"mock response"}
	}
	return &MockClient{Responses: responses}
}

// Name returns the client identifier.
func (c *MockClient) Name() string {
	return MockClientName
}

// Requests returns a copy of the requests seen so far.
func (c *MockClient) Requests() []*GenerateRequest {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*GenerateRequest, len(c.requests))
	copy(out, c.requests)
	return out
}

// Generate serves the next canned error or response.
func (c *MockClient) Generate(ctx context.Context, req *GenerateRequest) (*GenerateResult, error) {
	if c.Latency > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.Latency):
		}
	}

	c.mu.Lock()
	count := len(c.requests)
	c.requests = append(c.requests, req)
	c.mu.Unlock()

	if count < len(c.Errs) && c.Errs[count] != nil {
		return nil, c.Errs[count]
	}

	idx := count
	if idx >= len(c.Responses) {
		idx = len(c.Responses) - 1
	}

	return &GenerateResult{
		Text:      c.Responses[idx],
		Provider:  MockClientName,
		ModelUsed: req.Model,
		RequestID: fmt.Sprintf("mock-%d", count+1),
	}, nil
}

// Verify interface
var _ LLMClient = (*MockClient)(nil)
