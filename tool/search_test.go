package tool

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/askdocs/retrieval"
)

func TestSearchTool_Schema(t *testing.T) {
	st := NewSearchTool(retrieval.SearcherFunc(func(context.Context, string) (*retrieval.Result, error) {
		return &retrieval.Result{}, nil
	}))

	assert.Equal(t, SearchToolName, st.Name())
	schema := st.Parameters()
	props, ok := schema["properties"].(map[string]any)
	require.True(t, ok)
	query, ok := props["query"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "string", query["type"])
}

func TestSearchTool_Call(t *testing.T) {
	page := 4
	var gotQuery string
	st := NewSearchTool(retrieval.SearcherFunc(func(_ context.Context, query string) (*retrieval.Result, error) {
		gotQuery = query
		return &retrieval.Result{
			Content: "CONTENT: vnet overview",
			Documents: []retrieval.Document{
				{Title: "azure-networking", Source: "azure-networking.pdf", Page: &page},
			},
		}, nil
	}))

	result, err := st.Call(context.Background(), map[string]any{"query": "what is a vnet?"})
	require.NoError(t, err)
	assert.Equal(t, "what is a vnet?", gotQuery)

	payload, ok := result.(Payload)
	require.True(t, ok)
	assert.Equal(t, "CONTENT: vnet overview", payload.Content)
	require.Len(t, payload.Value, 1)
	assert.Equal(t, "azure-networking.pdf", payload.Value[0].Source)
	// Documents without a URL get a placeholder so rendered citations stay
	// well formed.
	assert.Equal(t, "#", payload.Value[0].URL)
	require.NotNil(t, payload.Value[0].Page)
	assert.Equal(t, 4, *payload.Value[0].Page)
}

func TestSearchTool_SearcherError(t *testing.T) {
	st := NewSearchTool(retrieval.SearcherFunc(func(context.Context, string) (*retrieval.Result, error) {
		return nil, errors.New("weaviate unreachable")
	}))

	_, err := st.Call(context.Background(), map[string]any{"query": "vnet"})
	require.Error(t, err)

	var toolErr *ToolError
	require.ErrorAs(t, err, &toolErr)
	assert.Equal(t, CodeExecutionError, toolErr.Code)
	assert.Equal(t, SearchToolName, toolErr.Tool)
}

func TestSearchTool_InvalidArgumentType(t *testing.T) {
	st := NewSearchTool(retrieval.SearcherFunc(func(context.Context, string) (*retrieval.Result, error) {
		return &retrieval.Result{}, nil
	}))

	_, err := st.Call(context.Background(), map[string]any{"query": 42})
	require.Error(t, err)

	var toolErr *ToolError
	require.ErrorAs(t, err, &toolErr)
	assert.Equal(t, CodeValidationError, toolErr.Code)
}

func TestNewRegistry(t *testing.T) {
	st := NewSearchTool(retrieval.SearcherFunc(func(context.Context, string) (*retrieval.Result, error) {
		return &retrieval.Result{}, nil
	}))

	reg := NewRegistry(st)
	require.Len(t, reg, 1)
	assert.Equal(t, st, reg[SearchToolName])
}
