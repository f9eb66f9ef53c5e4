package intent

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/jackzampolin/kaidan/internal/providers"
)

func newTestExtractor(client providers.LLMClient) *Extractor {
	e := NewExtractor(client, "test-model", nil)
	e.Retry = providers.RetryConfig{Attempts: 2, Delay: time.Millisecond}
	return e
}

func TestExtract(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     SearchIntent
	}{
		{
			name:     "bare JSON",
			response: `{"query": "化け猫 怪談", "focusKeywords": ["化け猫", "猫又", "怪談"], "isRandom": false}`,
			want: SearchIntent{
				Query:         "化け猫 怪談",
				FocusKeywords: []string{"化け猫", "猫又", "怪談"},
				IsRandom:      false,
			},
		},
		{
			name: "fenced JSON with language tag",
			response: "```json\n" +
				`{"query": "河童 伝説", "focusKeywords": ["河童"], "isRandom": false}` +
				"\n```",
			want: SearchIntent{
				Query:         "河童 伝説",
				FocusKeywords: []string{"河童"},
				IsRandom:      false,
			},
		},
		{
			name: "fenced JSON without language tag",
			response: "```\n" +
				`{"query": "狐", "focusKeywords": ["狐", "妖狐"], "isRandom": true}` +
				"\n```",
			want: SearchIntent{
				Query:         "狐",
				FocusKeywords: []string{"狐", "妖狐"},
				IsRandom:      true,
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := providers.NewMockClient(tt.response)
			got, err := newTestExtractor(client).Extract(context.Background(), "message")
			if err != nil {
				t.Fatalf("Extract: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Extract = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestExtractDegradedFallback(t *testing.T) {
	tests := []struct {
		name     string
		response string
	}{
		{"not JSON", "すみません、JSONでお答えできません。"},
		{"missing field", `{"query": "猫"}`},
		{"wrong type", `{"query": "猫", "focusKeywords": "猫又", "isRandom": false}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := providers.NewMockClient(tt.response)
			got, err := newTestExtractor(client).Extract(context.Background(), "猫の怪談が読みたい")
			if err != nil {
				t.Fatalf("Extract: %v", err)
			}
			want := SearchIntent{
				Query:         "猫の怪談が読みたい",
				FocusKeywords: []string{"猫の怪談が読みたい"},
				IsRandom:      false,
			}
			if !reflect.DeepEqual(got, want) {
				t.Errorf("Extract = %+v, want degraded %+v", got, want)
			}
		})
	}
}

func TestExtractCallFailurePropagates(t *testing.T) {
	client := providers.NewMockClient()
	client.Errs = []error{errors.New("connection refused")}

	_, err := newTestExtractor(client).Extract(context.Background(), "message")
	if err == nil {
		t.Fatal("expected call failure to propagate")
	}
	if len(client.Requests()) != 1 {
		t.Errorf("non-transient failure should not retry, got %d calls", len(client.Requests()))
	}
}

func TestExtractRetriesTransient(t *testing.T) {
	client := providers.NewMockClient(`{"query": "猫", "focusKeywords": ["猫"], "isRandom": false}`)
	client.Errs = []error{&providers.StatusError{Code: 429, Message: "quota"}, nil}

	got, err := newTestExtractor(client).Extract(context.Background(), "message")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if got.Query != "猫" {
		t.Errorf("Query = %q, want 猫", got.Query)
	}
	if len(client.Requests()) != 2 {
		t.Errorf("expected 2 calls, got %d", len(client.Requests()))
	}
}

func TestExtractPromptAndModel(t *testing.T) {
	client := providers.NewMockClient(`{"query": "猫", "focusKeywords": ["猫"], "isRandom": false}`)
	if _, err := newTestExtractor(client).Extract(context.Background(), "珍しい話はある?"); err != nil {
		t.Fatalf("Extract: %v", err)
	}

	reqs := client.Requests()
	if len(reqs) != 1 {
		t.Fatalf("expected 1 call, got %d", len(reqs))
	}
	if reqs[0].Model != "test-model" {
		t.Errorf("Model = %q, want test-model", reqs[0].Model)
	}
	if !strings.Contains(reqs[0].Prompt, "珍しい話はある?") {
		t.Error("prompt should embed the user message")
	}
}

func TestStripCodeFence(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bare", `{"a":1}`, `{"a":1}`},
		{"fence with tag", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"fence no tag", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"surrounding whitespace", "  ```json\n{\"a\":1}\n```  ", `{"a":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stripCodeFence(tt.in); got != tt.want {
				t.Errorf("stripCodeFence(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
