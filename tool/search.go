package tool

import (
	"context"
	"fmt"

	"github.com/hupe1980/askdocs/internal/util"
	"github.com/hupe1980/askdocs/retrieval"
)

// SearchToolName is the tool name declared to the model for document search.
const SearchToolName = "search_technical_docs"

type searchArgs struct {
	Query string `json:"query" description:"The user's current question, used verbatim as the search query."`
}

// SearchTool exposes the retrieval collaborator as a model-callable tool.
type SearchTool struct {
	searcher retrieval.Searcher
	schema   map[string]any
}

// NewSearchTool wraps a Searcher as a Tool.
func NewSearchTool(searcher retrieval.Searcher) *SearchTool {
	return &SearchTool{
		searcher: searcher,
		schema:   util.CreateSchema(searchArgs{}),
	}
}

// Name implements Tool.
func (t *SearchTool) Name() string { return SearchToolName }

// Description implements Tool. The wording steers the model towards querying
// with the current question instead of earlier turns.
func (t *SearchTool) Description() string {
	return "Search the official Azure technical documentation (networking, security, SQL). " +
		"Always use the user's CURRENT question as the search query, never questions " +
		"from earlier in the conversation."
}

// Parameters implements Tool.
func (t *SearchTool) Parameters() map[string]any { return t.schema }

// Call implements Tool. Arguments are validated against the schema; the
// result is a Payload carrying the formatted context and raw document
// metadata for citation extraction.
func (t *SearchTool) Call(ctx context.Context, args map[string]any) (any, error) {
	if err := util.ValidateParameters(args, t.schema); err != nil {
		return nil, &ToolError{
			Tool:    SearchToolName,
			Message: fmt.Sprintf("parameter validation failed: %v", err),
			Code:    CodeValidationError,
			Details: err,
		}
	}

	query, _ := args["query"].(string)
	result, err := t.searcher.Search(ctx, query)
	if err != nil {
		return nil, &ToolError{
			Tool:    SearchToolName,
			Message: err.Error(),
			Code:    CodeExecutionError,
		}
	}

	payload := Payload{
		Content: result.Content,
		Value:   make([]DocumentPayload, 0, len(result.Documents)),
	}
	for _, doc := range result.Documents {
		url := doc.URL
		if url == "" {
			url = "#"
		}
		payload.Value = append(payload.Value, DocumentPayload{
			Source: doc.Source,
			Title:  doc.Title,
			Page:   doc.Page,
			URL:    url,
		})
	}
	return payload, nil
}
