// Package answer builds grounded replies from retrieved evidence.
package answer

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/jackzampolin/kaidan/internal/prompts"
	"github.com/jackzampolin/kaidan/internal/providers"
	"github.com/jackzampolin/kaidan/internal/retrieval"
)

// Composer turns a question and an evidence set into an answer via the
// generation service. The model is chosen per call so the orchestrator can
// honor a per-request model selection.
type Composer struct {
	// Retry is the call retry policy, defaulting to the standard one.
	Retry providers.RetryConfig

	logger *slog.Logger
}

// NewComposer creates a Composer with the standard retry policy.
func NewComposer(logger *slog.Logger) *Composer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Composer{Retry: providers.DefaultRetryConfig(), logger: logger}
}

// Compose generates an answer grounded strictly in evidence. The returned
// text carries inline citation markers and is passed through unmodified.
func (c *Composer) Compose(ctx context.Context, client providers.LLMClient, model, message string, evidence []retrieval.EvidenceItem) (string, error) {
	return c.generate(ctx, client, &providers.GenerateRequest{
		Prompt:    prompts.Answer(message, evidence),
		Model:     model,
		RequestID: uuid.New().String(),
	})
}

// Apologize generates a short no-results reply inviting the user to rephrase.
func (c *Composer) Apologize(ctx context.Context, client providers.LLMClient, model, message string) (string, error) {
	return c.generate(ctx, client, &providers.GenerateRequest{
		Prompt:    prompts.Apology(message),
		Model:     model,
		RequestID: uuid.New().String(),
	})
}

func (c *Composer) generate(ctx context.Context, client providers.LLMClient, req *providers.GenerateRequest) (string, error) {
	result, err := providers.CallWithRetry(ctx, c.Retry, func() (*providers.GenerateResult, error) {
		return client.Generate(ctx, req)
	})
	if err != nil {
		return "", err
	}
	c.logger.Debug("answer generated",
		"request_id", req.RequestID,
		"provider", result.Provider,
		"model", result.ModelUsed,
		"tokens", result.TotalTokens)
	return result.Text, nil
}
