// Package svcctx provides service context for dependency injection via context.
// This package is separate from server to avoid import cycles with endpoints.
package svcctx

import (
	"context"
	"log/slog"

	"github.com/jackzampolin/kaidan/internal/chat"
	"github.com/jackzampolin/kaidan/internal/config"
	"github.com/jackzampolin/kaidan/internal/providers"
	"github.com/jackzampolin/kaidan/internal/retrieval"
)

// Services holds all core services that flow through context.
// Components extract what they need via the individual extractors.
type Services struct {
	Registry  *providers.Registry
	Retriever *retrieval.Retriever
	Chat      *chat.Service
	ConfigMgr *config.Manager
	Logger    *slog.Logger
}

type servicesKey struct{}

// WithServices returns a new context with services attached.
func WithServices(ctx context.Context, s *Services) context.Context {
	return context.WithValue(ctx, servicesKey{}, s)
}

// ServicesFrom extracts the full Services struct from context.
// Returns nil if not present.
func ServicesFrom(ctx context.Context) *Services {
	s, _ := ctx.Value(servicesKey{}).(*Services)
	return s
}

// RegistryFrom extracts the provider registry from context.
func RegistryFrom(ctx context.Context) *providers.Registry {
	if s := ServicesFrom(ctx); s != nil {
		return s.Registry
	}
	return nil
}

// RetrieverFrom extracts the evidence retriever from context.
func RetrieverFrom(ctx context.Context) *retrieval.Retriever {
	if s := ServicesFrom(ctx); s != nil {
		return s.Retriever
	}
	return nil
}

// ChatFrom extracts the chat service from context.
func ChatFrom(ctx context.Context) *chat.Service {
	if s := ServicesFrom(ctx); s != nil {
		return s.Chat
	}
	return nil
}

// ConfigManagerFrom extracts the config manager from context.
func ConfigManagerFrom(ctx context.Context) *config.Manager {
	if s := ServicesFrom(ctx); s != nil {
		return s.ConfigMgr
	}
	return nil
}

// LoggerFrom extracts the logger from context.
func LoggerFrom(ctx context.Context) *slog.Logger {
	if s := ServicesFrom(ctx); s != nil {
		return s.Logger
	}
	return nil
}
