package chat

import (
	"errors"
	"fmt"

	"github.com/jackzampolin/kaidan/internal/providers"
)

// ErrorKind classifies a request failure for the outbound contract.
type ErrorKind string

const (
	// KindInternal is an unclassified pipeline failure.
	KindInternal ErrorKind = "internal"
	// KindMissingCredential means a required provider has no API key.
	KindMissingCredential ErrorKind = "missing_credential"
	// KindQuota means the generation service refused on rate or quota grounds
	// after retries; the user should pick a different model.
	KindQuota ErrorKind = "quota"
)

// Error is the structured failure a request resolves to. Message is a short
// label; Details is the user-facing explanation.
type Error struct {
	Kind    ErrorKind
	Message string
	Details string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Message, e.Details)
}

// classify maps an arbitrary pipeline error to the outbound taxonomy.
func classify(err error) *Error {
	var chatErr *Error
	if errors.As(err, &chatErr) {
		return chatErr
	}

	if errors.Is(err, providers.ErrMissingAPIKey) {
		return &Error{
			Kind:    KindMissingCredential,
			Message: "provider not configured",
			Details: err.Error(),
		}
	}

	var se *providers.StatusError
	if errors.As(err, &se) && se.Code == 429 {
		return &Error{
			Kind:    KindQuota,
			Message: "model quota exhausted",
			Details: "選択中のモデルが利用上限に達しています。別のモデルを選んでお試しください。",
		}
	}

	return &Error{
		Kind:    KindInternal,
		Message: "request failed",
		Details: err.Error(),
	}
}
