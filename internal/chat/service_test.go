package chat

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackzampolin/kaidan/internal/providers"
	"github.com/jackzampolin/kaidan/internal/retrieval"
)

// stubRetriever scripts evidence per ByTopic call and records the arguments.
type stubRetriever struct {
	byTopicResults [][]retrieval.EvidenceItem
	randomResult   []retrieval.EvidenceItem

	byTopicQueries  []string
	byTopicKeywords [][]string
	randomCalls     int
}

func (s *stubRetriever) ByTopic(_ context.Context, query string, focusKeywords []string) []retrieval.EvidenceItem {
	s.byTopicQueries = append(s.byTopicQueries, query)
	s.byTopicKeywords = append(s.byTopicKeywords, focusKeywords)
	if len(s.byTopicResults) == 0 {
		return nil
	}
	out := s.byTopicResults[0]
	s.byTopicResults = s.byTopicResults[1:]
	return out
}

func (s *stubRetriever) RandomTopic(_ context.Context) []retrieval.EvidenceItem {
	s.randomCalls++
	return s.randomResult
}

func evidenceSet(n int) []retrieval.EvidenceItem {
	items := make([]retrieval.EvidenceItem, n)
	for i := range items {
		items[i] = retrieval.EvidenceItem{
			Title:     fmt.Sprintf("資料%d", i+1),
			SourceID:  fmt.Sprintf("book-%d", i+1),
			PageLabel: "1",
			Snippet:   "十分な長さの抜粋です",
		}
	}
	return items
}

// newTestService registers mock under the Gemini slot so both the intent
// model and the default model resolve to it. The mock serves the intent
// response first, then the answer response.
func newTestService(mock *providers.MockClient, retriever *stubRetriever) *Service {
	registry := providers.NewRegistry()
	registry.RegisterLLM(providers.GeminiName, mock)

	s := NewService(registry, retriever, "gemini-2.5-flash-lite", "gemini-2.5-flash", nil)
	s.retry = providers.RetryConfig{Attempts: 2, Delay: time.Millisecond}
	s.composer.Retry = s.retry
	return s
}

const catIntent = `{"query": "猫 怪談 江戸", "focusKeywords": ["化け猫", "猫又"], "isRandom": false}`

func TestHandleGroundedAnswer(t *testing.T) {
	retriever := &stubRetriever{byTopicResults: [][]retrieval.EvidenceItem{evidenceSet(6)}}
	mock := providers.NewMockClient(catIntent, `<cite idx="1">化け猫</cite>と<cite idx="6">猫又</cite>の話。`)

	resp, err := newTestService(mock, retriever).Handle(context.Background(), Request{Message: "猫の怪談"})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if len(resp.Sources) != 6 {
		t.Errorf("Sources count = %d, want 6", len(resp.Sources))
	}
	if resp.Reply != `<cite idx="1">化け猫</cite>と<cite idx="6">猫又</cite>の話。` {
		t.Errorf("Reply should pass through unchanged, got %q", resp.Reply)
	}

	if len(retriever.byTopicQueries) != 1 || retriever.byTopicQueries[0] != "猫 怪談 江戸" {
		t.Errorf("ByTopic queries = %v", retriever.byTopicQueries)
	}
	if retriever.randomCalls != 0 {
		t.Error("random path should not run for a targeted request")
	}

	// Intent extraction uses the fixed lightweight model, the answer the default.
	reqs := mock.Requests()
	if len(reqs) != 2 {
		t.Fatalf("expected 2 generation calls, got %d", len(reqs))
	}
	if reqs[0].Model != "gemini-2.5-flash-lite" {
		t.Errorf("intent model = %q", reqs[0].Model)
	}
	if reqs[1].Model != "gemini-2.5-flash" {
		t.Errorf("answer model = %q", reqs[1].Model)
	}
}

func TestHandleBroadenRetryThenApology(t *testing.T) {
	retriever := &stubRetriever{byTopicResults: [][]retrieval.EvidenceItem{nil, nil}}
	mock := providers.NewMockClient(catIntent, "見つかりませんでした。別の話題でお試しください。")

	resp, err := newTestService(mock, retriever).Handle(context.Background(), Request{Message: "猫の怪談"})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}

	if len(retriever.byTopicQueries) != 2 {
		t.Fatalf("expected broaden retry, got queries %v", retriever.byTopicQueries)
	}
	if retriever.byTopicQueries[1] != "猫 奇談 珍事 実録" {
		t.Errorf("broadened query = %q", retriever.byTopicQueries[1])
	}
	if got, want := fmt.Sprint(retriever.byTopicKeywords[1]), fmt.Sprint([]string{"化け猫", "猫又"}); got != want {
		t.Errorf("broaden retry should keep focus keywords, got %v", got)
	}

	if resp.Reply != "見つかりませんでした。別の話題でお試しください。" {
		t.Errorf("Reply = %q", resp.Reply)
	}
	if resp.Sources == nil || len(resp.Sources) != 0 {
		t.Errorf("apology path must return an empty non-nil source list, got %#v", resp.Sources)
	}
}

func TestHandleBroadenRetrySucceeds(t *testing.T) {
	retriever := &stubRetriever{byTopicResults: [][]retrieval.EvidenceItem{nil, evidenceSet(2)}}
	mock := providers.NewMockClient(catIntent, "広げた検索で見つかった話。")

	resp, err := newTestService(mock, retriever).Handle(context.Background(), Request{Message: "猫の怪談"})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if len(resp.Sources) != 2 {
		t.Errorf("Sources count = %d, want 2", len(resp.Sources))
	}
}

func TestHandleMissingCredential(t *testing.T) {
	retriever := &stubRetriever{}
	registry := providers.NewRegistry()
	s := NewService(registry, retriever, "gemini-2.5-flash-lite", "gemini-2.5-flash", nil)

	_, err := s.Handle(context.Background(), Request{Message: "猫の怪談"})
	var chatErr *Error
	if !errors.As(err, &chatErr) || chatErr.Kind != KindMissingCredential {
		t.Fatalf("expected missing credential error, got %v", err)
	}
	if len(retriever.byTopicQueries) != 0 || retriever.randomCalls != 0 {
		t.Error("no retrieval should run when no credential is configured")
	}
}

func TestHandleMissingAnswerModelCredential(t *testing.T) {
	// Only the Gemini slot is configured; requesting a non-gemini model must
	// fail before any generation call.
	retriever := &stubRetriever{}
	mock := providers.NewMockClient(catIntent)
	s := newTestService(mock, retriever)

	_, err := s.Handle(context.Background(), Request{Message: "猫の怪談", Model: "gpt-4o-mini"})
	var chatErr *Error
	if !errors.As(err, &chatErr) || chatErr.Kind != KindMissingCredential {
		t.Fatalf("expected missing credential error, got %v", err)
	}
	if len(mock.Requests()) != 0 {
		t.Errorf("expected zero generation calls, got %d", len(mock.Requests()))
	}
}

func TestHandleRandomPath(t *testing.T) {
	retriever := &stubRetriever{randomResult: evidenceSet(3)}
	randomIntent := `{"query": "怪談", "focusKeywords": ["怪談"], "isRandom": true}`
	mock := providers.NewMockClient(randomIntent, "ランダムに選んだ話。")

	resp, err := newTestService(mock, retriever).Handle(context.Background(), Request{Message: "何か読ませて"})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if retriever.randomCalls != 1 {
		t.Errorf("randomCalls = %d, want 1", retriever.randomCalls)
	}
	if len(retriever.byTopicQueries) != 0 {
		t.Errorf("targeted retrieval must not run on the random path, got %v", retriever.byTopicQueries)
	}
	if len(resp.Sources) != 3 {
		t.Errorf("Sources count = %d", len(resp.Sources))
	}
}

func TestHandleRandomCueOverridesIntent(t *testing.T) {
	retriever := &stubRetriever{randomResult: evidenceSet(1)}
	mock := providers.NewMockClient(catIntent, "おまかせの話。")

	if _, err := newTestService(mock, retriever).Handle(context.Background(), Request{Message: "おまかせで怪談を"}); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if retriever.randomCalls != 1 {
		t.Error("random cue in the message should force the random path")
	}
}

func TestHandleRandomPathDoesNotBroaden(t *testing.T) {
	retriever := &stubRetriever{}
	randomIntent := `{"query": "怪談", "focusKeywords": ["怪談"], "isRandom": true}`
	mock := providers.NewMockClient(randomIntent, "見つかりませんでした。")

	resp, err := newTestService(mock, retriever).Handle(context.Background(), Request{Message: "何か読ませて"})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if len(retriever.byTopicQueries) != 0 {
		t.Errorf("random path must not broaden, got %v", retriever.byTopicQueries)
	}
	if len(resp.Sources) != 0 {
		t.Errorf("Sources = %v", resp.Sources)
	}
}

func TestHandleDegradedIntentStillRetrieves(t *testing.T) {
	retriever := &stubRetriever{byTopicResults: [][]retrieval.EvidenceItem{evidenceSet(1)}}
	mock := providers.NewMockClient("JSONではありません", "回答。")

	if _, err := newTestService(mock, retriever).Handle(context.Background(), Request{Message: "珍しい猫の話"}); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if len(retriever.byTopicQueries) != 1 || retriever.byTopicQueries[0] != "珍しい猫の話" {
		t.Errorf("degraded intent should search with the raw message, got %v", retriever.byTopicQueries)
	}
	if fmt.Sprint(retriever.byTopicKeywords[0]) != fmt.Sprint([]string{"珍しい猫の話"}) {
		t.Errorf("degraded keywords = %v", retriever.byTopicKeywords[0])
	}
}

func TestHandleQuotaExhausted(t *testing.T) {
	retriever := &stubRetriever{byTopicResults: [][]retrieval.EvidenceItem{evidenceSet(1)}}
	mock := providers.NewMockClient(catIntent)
	// First call (intent) succeeds, then the compose call fails through all
	// retry attempts with a rate-limit status.
	quota := &providers.StatusError{Code: 429, Message: "quota exceeded"}
	mock.Errs = []error{nil, quota, quota, quota}

	_, err := newTestService(mock, retriever).Handle(context.Background(), Request{Message: "猫の怪談"})
	var chatErr *Error
	if !errors.As(err, &chatErr) || chatErr.Kind != KindQuota {
		t.Fatalf("expected quota error, got %v", err)
	}
	if chatErr.Details == "" {
		t.Error("quota error should carry a user-facing details message")
	}
}

func TestHandleUnclassifiedError(t *testing.T) {
	retriever := &stubRetriever{byTopicResults: [][]retrieval.EvidenceItem{evidenceSet(1)}}
	mock := providers.NewMockClient(catIntent)
	mock.Errs = []error{nil, errors.New("connection reset")}

	_, err := newTestService(mock, retriever).Handle(context.Background(), Request{Message: "猫の怪談"})
	var chatErr *Error
	if !errors.As(err, &chatErr) || chatErr.Kind != KindInternal {
		t.Fatalf("expected internal error, got %v", err)
	}
	if chatErr.Details != "connection reset" {
		t.Errorf("Details = %q", chatErr.Details)
	}
}

func TestBroadenQuery(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"猫 怪談 江戸", "猫 奇談 珍事 実録"},
		{"猫", "猫 奇談 珍事 実録"},
	}
	for _, tt := range tests {
		if got := broadenQuery(tt.in); got != tt.want {
			t.Errorf("broadenQuery(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
