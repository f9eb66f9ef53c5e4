package retrieval

import (
	"context"
	"log/slog"
	"math/rand"
	"regexp"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/jackzampolin/kaidan/internal/ndl"
)

const (
	// bookSearchSize is how many candidate books the primary search requests.
	bookSearchSize = 15
	// fallbackSearchSize is the page size for the loosened one-token retry.
	fallbackSearchSize = 10
	// passagesPerKeyword bounds each in-book keyword search.
	passagesPerKeyword = 2
	// innerEvidenceCap stops passage scanning once this much evidence exists.
	innerEvidenceCap = 8
	// maxEvidence is the hard cap on a returned evidence set.
	maxEvidence = 10
	// minSnippetRunes: snippets at or below this length are discarded as noise.
	minSnippetRunes = 5

	// Random-pick search shape: a small window sampled at a random offset.
	randomSearchSize  = 5
	randomOffsetBound = 50
)

// randomTopicKeywords are the thematic terms the random pick samples from.
var randomTopicKeywords = []string{
	"怪談", "妖怪", "幽霊", "奇談", "化物", "伝説", "怪異", "狐",
}

// genericFocusKeywords are broad single-character terms used to pull passages
// out of a randomly chosen book.
var genericFocusKeywords = []string{"怪", "霊", "奇"}

// komaPattern extracts the page number from highlight fragments of the form
// "...(0012.jp2)...".
var komaPattern = regexp.MustCompile(`\((\d+)\.jp2\)`)

// Retriever queries the book and passage search endpoints and assembles a
// bounded, per-call deduplicated evidence set. It holds no per-request state;
// the random source is shared and guarded.
type Retriever struct {
	client *ndl.Client
	logger *slog.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

// New creates a Retriever. rng may be seeded for reproducible random picks.
func New(client *ndl.Client, rng *rand.Rand, logger *slog.Logger) *Retriever {
	if logger == nil {
		logger = slog.Default()
	}
	return &Retriever{client: client, rng: rng, logger: logger}
}

// ByTopic retrieves evidence for a targeted search intent. Any failure of the
// operation as a whole degrades to an empty evidence set; per-keyword passage
// search failures are treated as "no match" and skipped.
func (r *Retriever) ByTopic(ctx context.Context, query string, focusKeywords []string) []EvidenceItem {
	items, err := r.byTopic(ctx, query, focusKeywords)
	if err != nil {
		r.logger.Warn("retrieval failed, degrading to no evidence", "query", query, "error", err)
		return nil
	}
	return items
}

func (r *Retriever) byTopic(ctx context.Context, query string, focusKeywords []string) ([]EvidenceItem, error) {
	books, err := r.client.SearchBooks(ctx, query, 0, bookSearchSize)
	if err != nil {
		return nil, err
	}

	// Loosen the query to its first token when the full query finds nothing.
	if len(books) == 0 {
		head := strings.Split(query, " ")[0]
		books, err = r.client.SearchBooks(ctx, head, 0, fallbackSearchSize)
		if err != nil {
			return nil, err
		}
	}

	processed := make(map[string]bool)
	var items []EvidenceItem

	for _, book := range books {
		if len(items) >= maxEvidence {
			break
		}
		if processed[book.ID] {
			continue
		}

		before := len(items)
		capped := false
		for _, kw := range focusKeywords {
			if len(items) >= innerEvidenceCap {
				capped = true
				break
			}
			passages, err := r.client.SearchPassages(ctx, book.ID, kw, passagesPerKeyword)
			if err != nil {
				// No match for this keyword, not a retrieval failure.
				r.logger.Debug("passage search failed", "book", book.ID, "keyword", kw, "error", err)
				continue
			}
			for _, p := range passages {
				items = append(items, EvidenceItem{
					Title:     book.Title,
					SourceID:  book.ID,
					PageLabel: p.Page,
					Snippet:   NormalizeSnippet(p.Snippet),
					Link:      r.client.BookLink(book.ID, p.Page),
				})
			}
		}

		// A book whose passage searches came up empty can still contribute
		// the highlight fragments attached to its search record.
		if len(items) == before {
			for _, h := range book.Highlights {
				page := highlightPage(h)
				items = append(items, EvidenceItem{
					Title:     book.Title,
					SourceID:  book.ID,
					PageLabel: page,
					Snippet:   NormalizeSnippet(h),
					Link:      r.client.BookLink(book.ID, page),
				})
			}
		}

		processed[book.ID] = true
		if capped {
			break
		}
	}

	// Drop noise fragments, then enforce the hard cap.
	filtered := items[:0]
	for _, item := range items {
		if utf8.RuneCountInString(item.Snippet) > minSnippetRunes {
			filtered = append(filtered, item)
		}
	}
	if len(filtered) > maxEvidence {
		filtered = filtered[:maxEvidence]
	}
	return filtered, nil
}

// RandomTopic retrieves evidence for an arbitrary topical pick: a random
// thematic keyword, a random page of its matches, a random book from that
// page, then a targeted retrieval seeded with the book's title.
func (r *Retriever) RandomTopic(ctx context.Context) []EvidenceItem {
	keyword := randomTopicKeywords[r.intn(len(randomTopicKeywords))]
	offset := r.intn(randomOffsetBound)

	books, err := r.client.SearchBooks(ctx, keyword, offset, randomSearchSize)
	if err != nil {
		r.logger.Warn("random topic search failed, degrading to no evidence", "keyword", keyword, "error", err)
		return nil
	}
	if len(books) == 0 {
		return nil
	}

	book := books[r.intn(len(books))]
	r.logger.Info("random topic pick", "keyword", keyword, "offset", offset, "book", book.ID, "title", book.Title)

	return r.ByTopic(ctx, book.Title, genericFocusKeywords)
}

func (r *Retriever) intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.Intn(n)
}

// highlightPage extracts the koma number embedded in a highlight fragment,
// defaulting to page "1" when the fragment carries none.
func highlightPage(highlight string) string {
	if m := komaPattern.FindStringSubmatch(highlight); m != nil {
		if page := strings.TrimLeft(m[1], "0"); page != "" {
			return page
		}
	}
	return "1"
}
