// Package weaviate implements retrieval.Searcher on top of a Weaviate
// nearText GraphQL query. The class is expected to carry title, content,
// source, page and url properties; vectorization is the server's concern.
package weaviate

import (
	"context"
	"fmt"
	"strings"

	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"

	"github.com/hupe1980/askdocs/retrieval"
)

// Options configure the searcher.
type Options struct {
	// ClassName is the Weaviate class holding document chunks.
	ClassName string
	// Limit is the maximum number of chunks returned per query.
	Limit int
}

// Searcher retrieves document chunks from a Weaviate instance.
type Searcher struct {
	client *weaviate.Client
	opts   Options
}

// NewSearcher creates a Searcher from an existing client.
func NewSearcher(client *weaviate.Client, optFns ...func(o *Options)) (*Searcher, error) {
	if client == nil {
		return nil, fmt.Errorf("weaviate: client must not be nil")
	}
	opts := Options{ClassName: "TechnicalDocument", Limit: 5}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Searcher{client: client, opts: opts}, nil
}

// Search implements retrieval.Searcher via a nearText query.
func (s *Searcher) Search(ctx context.Context, query string) (*retrieval.Result, error) {
	nearText := s.client.GraphQL().NearTextArgBuilder().
		WithConcepts([]string{query})

	fields := []graphql.Field{
		{Name: "title"},
		{Name: "content"},
		{Name: "source"},
		{Name: "page"},
		{Name: "url"},
	}

	resp, err := s.client.GraphQL().Get().
		WithClassName(s.opts.ClassName).
		WithFields(fields...).
		WithNearText(nearText).
		WithLimit(s.opts.Limit).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("weaviate search: %w", err)
	}
	if len(resp.Errors) > 0 {
		return nil, fmt.Errorf("weaviate search: %s", resp.Errors[0].Message)
	}

	return s.parseResult(resp), nil
}

// parseResult flattens the GraphQL response into the retrieval contract:
// one formatted context block per chunk plus the raw document metadata.
func (s *Searcher) parseResult(resp *models.GraphQLResponse) *retrieval.Result {
	data, ok := resp.Data["Get"].(map[string]any)
	if !ok {
		return &retrieval.Result{}
	}
	objects, ok := data[s.opts.ClassName].([]any)
	if !ok {
		return &retrieval.Result{}
	}

	var blocks []string
	docs := make([]retrieval.Document, 0, len(objects))
	for _, obj := range objects {
		m, ok := obj.(map[string]any)
		if !ok {
			continue
		}
		doc := retrieval.Document{
			Title:  getString(m, "title"),
			Source: getString(m, "source"),
			URL:    getString(m, "url"),
		}
		if page, ok := getInt(m, "page"); ok {
			doc.Page = &page
		}
		pageLabel := "N/A"
		if doc.Page != nil {
			pageLabel = fmt.Sprintf("%d", *doc.Page)
		}
		blocks = append(blocks, fmt.Sprintf(
			"SOURCE: %s\nMETADATA: File %s, Page %s\nCONTENT: %s",
			doc.Title, doc.Source, pageLabel, getString(m, "content"),
		))
		docs = append(docs, doc)
	}

	return &retrieval.Result{
		Content:   strings.Join(blocks, "\n\n---\n\n"),
		Documents: docs,
	}
}

func getString(m map[string]any, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

func getInt(m map[string]any, key string) (int, bool) {
	// GraphQL numbers arrive as float64.
	if v, ok := m[key].(float64); ok {
		return int(v), true
	}
	return 0, false
}
