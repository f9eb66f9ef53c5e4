package providers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGeminiClient_Generate(t *testing.T) {
	t.Run("successful generation", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/models/gemini-2.5-flash:generateContent" {
				t.Errorf("unexpected path: %s", r.URL.Path)
			}
			if key := r.Header.Get("x-goog-api-key"); key != "test-key" {
				t.Errorf("unexpected api key header: %s", key)
			}

			var req geminiRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Fatalf("failed to decode request: %v", err)
			}
			if len(req.Contents) != 1 || req.Contents[0].Parts[0].Text != "こんにちは" {
				t.Errorf("unexpected prompt: %+v", req.Contents)
			}

			resp := map[string]any{
				"candidates": []map[string]any{
					{"content": map[string]any{"parts": []map[string]any{{"text": "やあ"}}}},
				},
				"usageMetadata": map[string]int{
					"promptTokenCount":     5,
					"candidatesTokenCount": 2,
					"totalTokenCount":      7,
				},
			}
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(resp)
		}))
		defer server.Close()

		client := NewGeminiClient(GeminiConfig{APIKey: "test-key", BaseURL: server.URL})
		result, err := client.Generate(context.Background(), &GenerateRequest{Prompt: "こんにちは"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Text != "やあ" {
			t.Errorf("text = %q, want やあ", result.Text)
		}
		if result.TotalTokens != 7 {
			t.Errorf("total tokens = %d, want 7", result.TotalTokens)
		}
		if result.ModelUsed != "gemini-2.5-flash" {
			t.Errorf("model = %q", result.ModelUsed)
		}
	})

	t.Run("rate limit surfaces as transient status error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"error":{"code":429,"message":"quota exceeded","status":"RESOURCE_EXHAUSTED"}}`))
		}))
		defer server.Close()

		client := NewGeminiClient(GeminiConfig{APIKey: "test-key", BaseURL: server.URL})
		_, err := client.Generate(context.Background(), &GenerateRequest{Prompt: "hi"})

		var se *StatusError
		if !errors.As(err, &se) {
			t.Fatalf("error = %v, want StatusError", err)
		}
		if se.Code != 429 || se.Message != "quota exceeded" {
			t.Errorf("got %+v", se)
		}
		if !IsTransient(err) {
			t.Error("429 should classify as transient")
		}
	})

	t.Run("empty candidates", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"candidates":[]}`))
		}))
		defer server.Close()

		client := NewGeminiClient(GeminiConfig{APIKey: "test-key", BaseURL: server.URL})
		if _, err := client.Generate(context.Background(), &GenerateRequest{Prompt: "hi"}); err == nil {
			t.Error("expected error for empty candidates")
		}
	})
}

func TestRegistry_ForModel(t *testing.T) {
	registry := NewRegistry()
	gemini := NewMockClient("g")
	oai := NewMockClient("o")
	registry.RegisterLLM(GeminiName, gemini)
	registry.RegisterLLM(OpenAIName, oai)

	tests := []struct {
		model string
		want  LLMClient
	}{
		{"gemini-2.5-flash", gemini},
		{"gemini-2.5-flash-lite", gemini},
		{"", gemini},
		{"gpt-4o-mini", oai},
	}
	for _, tt := range tests {
		client, err := registry.ForModel(tt.model)
		if err != nil {
			t.Fatalf("ForModel(%q): %v", tt.model, err)
		}
		if client != tt.want {
			t.Errorf("ForModel(%q) routed to %s", tt.model, client.Name())
		}
	}
}

func TestRegistry_ForModelMissingCredential(t *testing.T) {
	registry := NewRegistry()
	if _, err := registry.ForModel("gemini-2.5-flash"); !errors.Is(err, ErrMissingAPIKey) {
		t.Errorf("error = %v, want ErrMissingAPIKey", err)
	}
}
