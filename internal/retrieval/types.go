// Package retrieval assembles grounded evidence sets from the digitized-book
// search service: a document search to find candidate books, then per-book
// passage searches to pull the excerpts that an answer can cite.
package retrieval

// EvidenceItem is one retrieved excerpt with provenance.
type EvidenceItem struct {
	// Title of the parent book.
	Title string `json:"title"`
	// SourceID identifies the parent book in the upstream index.
	SourceID string `json:"sourceId"`
	// PageLabel is the koma (frame) label within the book.
	PageLabel string `json:"pageLabel"`
	// Snippet is the normalized excerpt text.
	Snippet string `json:"snippet"`
	// Link is the deterministic viewer URL for this page.
	Link string `json:"link"`
}
