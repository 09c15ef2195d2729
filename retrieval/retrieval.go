// Package retrieval defines the document search collaborator consumed by the
// search tool. The ranking algorithm and index schema belong to the backend;
// this package only fixes the query/result contract.
package retrieval

import "context"

// Document identifies one retrieved source document chunk.
type Document struct {
	Title  string `json:"title"`
	Source string `json:"source"`
	Page   *int   `json:"page_number,omitempty"`
	URL    string `json:"url,omitempty"`
}

// Result is the outcome of one search: the formatted context text handed to
// the model plus the raw per-document metadata used for citations.
type Result struct {
	Content   string     `json:"content"`
	Documents []Document `json:"documents"`
}

// Searcher retrieves document chunks relevant to a free-text query.
// Implementations must be safe for concurrent use.
type Searcher interface {
	Search(ctx context.Context, query string) (*Result, error)
}

// SearcherFunc adapts a function to the Searcher interface.
type SearcherFunc func(ctx context.Context, query string) (*Result, error)

// Search implements Searcher.
func (f SearcherFunc) Search(ctx context.Context, query string) (*Result, error) {
	return f(ctx, query)
}
