package badger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/askdocs/message"
	"github.com/hupe1980/askdocs/session"
)

var _ session.Store = (*Store)(nil)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStore_LoadUnknownSession(t *testing.T) {
	store := newTestStore(t)

	hist, err := store.Load(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, hist)
}

func TestStore_SaveAndLoadRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	history := []message.Message{
		message.Human{Text: "what is private link?"},
		message.Assistant{
			ToolCalls: []message.ToolCall{{
				ID:        "call_1",
				Name:      "search_technical_docs",
				Arguments: map[string]any{"query": "private link"},
			}},
		},
		message.ToolResult{ToolCallID: "call_1", Content: `{"content":"...","value":[]}`},
		message.Assistant{Text: "Private Link exposes services over a private endpoint."},
	}

	require.NoError(t, store.Save(ctx, "s1", history))

	loaded, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, history, loaded)
}

func TestStore_SaveOverwrites(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "s1", []message.Message{message.Human{Text: "first"}}))
	require.NoError(t, store.Save(ctx, "s1", []message.Message{message.Human{Text: "second"}}))

	loaded, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, message.Human{Text: "second"}, loaded[0])
}

func TestStore_SessionsAreIsolated(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "a", []message.Message{message.Human{Text: "for a"}}))
	require.NoError(t, store.Save(ctx, "b", []message.Message{message.Human{Text: "for b"}}))

	loaded, err := store.Load(ctx, "a")
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, message.Human{Text: "for a"}, loaded[0])
}
