package ndl

// Book is one digitized-book record from the document search endpoint.
type Book struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	// Highlights are inline matched fragments the search index attaches to
	// the record. Present only when the index produced them.
	Highlights []string `json:"highlights,omitempty"`
}

// Passage is one in-book match from the passage search endpoint. Page is the
// koma (frame) label within the digitized book.
type Passage struct {
	Page    string `json:"page"`
	Snippet string `json:"snippet"`
}
