// Package chat orchestrates one question/answer request: intent extraction,
// evidence retrieval with fallbacks, and grounded answer composition.
package chat

import (
	"context"
	"log/slog"
	"strings"

	"github.com/jackzampolin/kaidan/internal/answer"
	"github.com/jackzampolin/kaidan/internal/intent"
	"github.com/jackzampolin/kaidan/internal/providers"
	"github.com/jackzampolin/kaidan/internal/retrieval"
)

// broadenSuffix holds the fixed genre terms appended to a loosened query when
// targeted retrieval comes up empty.
const broadenSuffix = " 奇談 珍事 実録"

// randomCues are message fragments that force the random-pick path even when
// the extracted intent did not flag it.
var randomCues = []string{"ランダム", "おまかせ", "お任せ", "なんでもいい", "何でもいい", "何か面白い"}

// Retriever is the evidence source the orchestrator draws from.
type Retriever interface {
	ByTopic(ctx context.Context, query string, focusKeywords []string) []retrieval.EvidenceItem
	RandomTopic(ctx context.Context) []retrieval.EvidenceItem
}

// Request is one inbound question. Model optionally overrides which model
// composes the answer; intent extraction always uses the fixed intent model.
type Request struct {
	Message string `json:"message"`
	Model   string `json:"model,omitempty"`
}

// Response is a successful answer. Sources is never nil; the apology path
// returns it empty.
type Response struct {
	Reply   string                   `json:"reply"`
	Sources []retrieval.EvidenceItem `json:"sources"`
}

// Service runs the request pipeline. It holds no per-request state.
type Service struct {
	registry  *providers.Registry
	retriever Retriever
	composer  *answer.Composer

	intentModel  string
	defaultModel string
	retry        providers.RetryConfig
	logger       *slog.Logger
}

// NewService wires the orchestrator.
func NewService(registry *providers.Registry, retriever Retriever, intentModel, defaultModel string, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	composer := answer.NewComposer(logger)
	return &Service{
		registry:     registry,
		retriever:    retriever,
		composer:     composer,
		intentModel:  intentModel,
		defaultModel: defaultModel,
		retry:        providers.DefaultRetryConfig(),
		logger:       logger,
	}
}

// Handle resolves one request to either a Response or a *Error. Both
// generation clients are resolved up front so a missing credential fails
// before any external call.
func (s *Service) Handle(ctx context.Context, req Request) (*Response, error) {
	intentClient, err := s.registry.ForModel(s.intentModel)
	if err != nil {
		return nil, classify(err)
	}

	model := req.Model
	if model == "" {
		model = s.defaultModel
	}
	answerClient, err := s.registry.ForModel(model)
	if err != nil {
		return nil, classify(err)
	}

	extractor := intent.NewExtractor(intentClient, s.intentModel, s.logger)
	extractor.Retry = s.retry
	searchIntent, err := extractor.Extract(ctx, req.Message)
	if err != nil {
		s.logger.Error("intent extraction failed", "error", err)
		return nil, classify(err)
	}

	evidence := s.retrieve(ctx, req.Message, searchIntent)

	if len(evidence) == 0 {
		reply, err := s.composer.Apologize(ctx, answerClient, model, req.Message)
		if err != nil {
			s.logger.Error("apology composition failed", "error", err)
			return nil, classify(err)
		}
		return &Response{Reply: reply, Sources: []retrieval.EvidenceItem{}}, nil
	}

	reply, err := s.composer.Compose(ctx, answerClient, model, req.Message, evidence)
	if err != nil {
		s.logger.Error("answer composition failed", "error", err)
		return nil, classify(err)
	}
	return &Response{Reply: reply, Sources: evidence}, nil
}

// retrieve picks the retrieval path and applies the broaden-and-retry policy.
// The random path never broadens.
func (s *Service) retrieve(ctx context.Context, message string, si intent.SearchIntent) []retrieval.EvidenceItem {
	if si.IsRandom || hasRandomCue(message) {
		return s.retriever.RandomTopic(ctx)
	}

	evidence := s.retriever.ByTopic(ctx, si.Query, si.FocusKeywords)
	if len(evidence) == 0 {
		broadened := broadenQuery(si.Query)
		s.logger.Info("no evidence, broadening query", "query", si.Query, "broadened", broadened)
		evidence = s.retriever.ByTopic(ctx, broadened, si.FocusKeywords)
	}
	return evidence
}

// broadenQuery keeps the first query token and appends the fixed genre terms.
func broadenQuery(query string) string {
	return strings.Split(query, " ")[0] + broadenSuffix
}

func hasRandomCue(message string) bool {
	for _, cue := range randomCues {
		if strings.Contains(message, cue) {
			return true
		}
	}
	return false
}
