// Package intent turns a free-text question into structured search
// parameters by calling the generation service.
package intent

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/jackzampolin/kaidan/internal/prompts"
	"github.com/jackzampolin/kaidan/internal/providers"
)

// SearchIntent is the structured search request derived from a user message.
type SearchIntent struct {
	Query         string   `json:"query"`
	FocusKeywords []string `json:"focusKeywords"`
	IsRandom      bool     `json:"isRandom"`
}

// intentSchema validates the extraction response shape before it is trusted.
var intentSchema = jsonschema.MustCompileString("intent.json", `{
	"type": "object",
	"properties": {
		"query": {"type": "string"},
		"focusKeywords": {"type": "array", "items": {"type": "string"}},
		"isRandom": {"type": "boolean"}
	},
	"required": ["query", "focusKeywords", "isRandom"]
}`)

// Extractor asks a fixed lightweight model for a SearchIntent. A malformed
// response degrades to an intent built from the raw message; a failed call
// propagates so the caller can classify it.
type Extractor struct {
	// Retry is the call retry policy, defaulting to the standard one.
	Retry providers.RetryConfig

	client providers.LLMClient
	model  string
	logger *slog.Logger
}

// NewExtractor creates an Extractor bound to client and model.
func NewExtractor(client providers.LLMClient, model string, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{
		Retry:  providers.DefaultRetryConfig(),
		client: client,
		model:  model,
		logger: logger,
	}
}

// Extract derives a SearchIntent from message. The error is non-nil only when
// the generation call itself failed; unparseable output never fails.
func (e *Extractor) Extract(ctx context.Context, message string) (SearchIntent, error) {
	req := &providers.GenerateRequest{
		Prompt:    prompts.Intent(message),
		Model:     e.model,
		RequestID: uuid.New().String(),
	}

	result, err := providers.CallWithRetry(ctx, e.Retry, func() (*providers.GenerateResult, error) {
		return e.client.Generate(ctx, req)
	})
	if err != nil {
		return SearchIntent{}, err
	}

	parsed, err := parseIntent(result.Text)
	if err != nil {
		e.logger.Warn("intent extraction unparseable, using degraded intent",
			"request_id", req.RequestID, "error", err)
		return Degraded(message), nil
	}

	e.logger.Debug("intent extracted",
		"request_id", req.RequestID,
		"query", parsed.Query,
		"keywords", len(parsed.FocusKeywords),
		"random", parsed.IsRandom)
	return parsed, nil
}

// Degraded is the fallback intent when extraction output cannot be parsed:
// search with the raw message itself.
func Degraded(message string) SearchIntent {
	return SearchIntent{
		Query:         message,
		FocusKeywords: []string{message},
		IsRandom:      false,
	}
}

func parseIntent(raw string) (SearchIntent, error) {
	cleaned := stripCodeFence(raw)

	var doc any
	if err := json.Unmarshal([]byte(cleaned), &doc); err != nil {
		return SearchIntent{}, err
	}
	if err := intentSchema.Validate(doc); err != nil {
		return SearchIntent{}, err
	}

	var out SearchIntent
	if err := json.Unmarshal([]byte(cleaned), &out); err != nil {
		return SearchIntent{}, err
	}
	return out, nil
}

// stripCodeFence removes a surrounding markdown code fence, with or without a
// language tag, leaving bare text untouched.
func stripCodeFence(s string) string {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```")
	if idx := strings.Index(trimmed, "\n"); idx >= 0 {
		// Drop a language tag like "json" on the fence line.
		first := strings.TrimSpace(trimmed[:idx])
		if !strings.ContainsAny(first, "{[") {
			trimmed = trimmed[idx+1:]
		}
	}
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}
