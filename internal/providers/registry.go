package providers

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
)

// Registry holds references to generation clients. It supports config-driven
// instantiation, hot-reload, and thread-safe access.
type Registry struct {
	mu         sync.RWMutex
	llmClients map[string]LLMClient
	logger     *slog.Logger
}

// NewRegistry creates a new empty provider registry.
func NewRegistry() *Registry {
	return &Registry{
		llmClients: make(map[string]LLMClient),
		logger:     slog.Default(),
	}
}

// SetLogger sets the logger for the registry.
func (r *Registry) SetLogger(logger *slog.Logger) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logger = logger
}

// RegisterLLM registers a generation client by name.
func (r *Registry) RegisterLLM(name string, client LLMClient) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.llmClients[name] = client
	if r.logger != nil {
		r.logger.Info("registered LLM client", "name", name)
	}
}

// UnregisterLLM removes a generation client by name.
func (r *Registry) UnregisterLLM(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.llmClients, name)
	if r.logger != nil {
		r.logger.Info("unregistered LLM client", "name", name)
	}
}

// GetLLM returns a generation client by name.
func (r *Registry) GetLLM(name string) (LLMClient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	client, ok := r.llmClients[name]
	if !ok {
		return nil, fmt.Errorf("LLM client not found: %s", name)
	}
	return client, nil
}

// ForModel resolves the client that serves a model name. Models prefixed
// "gemini" route to the Gemini client; everything else routes to the
// OpenAI-compatible client. An unconfigured provider surfaces
// ErrMissingAPIKey so the caller can fail before any external call.
func (r *Registry) ForModel(model string) (LLMClient, error) {
	name := OpenAIName
	if model == "" || strings.HasPrefix(model, "gemini") {
		name = GeminiName
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	client, ok := r.llmClients[name]
	if !ok {
		return nil, fmt.Errorf("%w: provider %q is not configured (set the API key in config or environment)", ErrMissingAPIKey, name)
	}
	return client, nil
}

// ListLLM returns all registered client names.
func (r *Registry) ListLLM() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.llmClients))
	for name := range r.llmClients {
		names = append(names, name)
	}
	return names
}

// RegistryConfig describes which providers to instantiate.
type RegistryConfig struct {
	Gemini GeminiConfig
	OpenAI OpenAIConfig
}

// Reload replaces the registered clients from config. Providers without an
// API key are skipped, which makes the missing-credential case visible at
// resolution time rather than mid-request.
func (r *Registry) Reload(cfg RegistryConfig) {
	r.mu.Lock()
	clients := make(map[string]LLMClient)
	if cfg.Gemini.APIKey != "" {
		clients[GeminiName] = NewGeminiClient(cfg.Gemini)
	}
	if cfg.OpenAI.APIKey != "" {
		clients[OpenAIName] = NewOpenAIClient(cfg.OpenAI)
	}
	r.llmClients = clients
	logger := r.logger
	r.mu.Unlock()

	if logger != nil {
		logger.Info("provider registry reloaded", "llm", r.ListLLM())
	}
}
