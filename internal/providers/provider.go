package providers

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrMissingAPIKey indicates a generation provider was requested but no
// credential is configured for it. Surfaced before any external call is made.
var ErrMissingAPIKey = errors.New("missing API key")

// LLMClient is the interface for text generation requests.
type LLMClient interface {
	// Generate sends a single-prompt completion request.
	Generate(ctx context.Context, req *GenerateRequest) (*GenerateResult, error)

	// Name returns the client identifier (e.g., "gemini").
	Name() string
}

// GenerateRequest is a request to a generation provider.
type GenerateRequest struct {
	// Prompt is the full instruction text.
	Prompt string `json:"prompt"`

	// Model selection (uses client default if empty)
	Model string `json:"model,omitempty"`

	// Generation parameters
	Temperature float64 `json:"temperature,omitempty"`
	MaxTokens   int     `json:"max_tokens,omitempty"`

	// Request tracking
	RequestID string `json:"-"`
}

// GenerateResult is the response from a generation call.
type GenerateResult struct {
	Text string `json:"text"`

	// Token counts
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`

	// Provider info
	Provider  string `json:"provider"`
	ModelUsed string `json:"model_used"`

	// Request tracking
	RequestID     string        `json:"request_id"`
	ExecutionTime time.Duration `json:"execution_time"`
}

// StatusError is an upstream failure carrying the HTTP status the provider
// returned. Retry classification keys off the code.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("provider error (status %d): %s", e.Code, e.Message)
}
