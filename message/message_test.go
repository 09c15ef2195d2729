package message

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssistant_HasToolCalls(t *testing.T) {
	assert.False(t, Assistant{Text: "hello"}.HasToolCalls())
	assert.True(t, Assistant{ToolCalls: []ToolCall{{ID: "call_1", Name: "search_technical_docs"}}}.HasToolCalls())
}

func TestLastHuman(t *testing.T) {
	hist := []Message{
		Human{Text: "first"},
		Assistant{Text: "reply"},
		Human{Text: "second"},
		Assistant{Text: "reply two"},
	}

	h, ok := LastHuman(hist)
	require.True(t, ok)
	assert.Equal(t, "second", h.Text)

	_, ok = LastHuman([]Message{Assistant{Text: "only"}})
	assert.False(t, ok)
}

func TestLastAssistant(t *testing.T) {
	hist := []Message{
		Human{Text: "question"},
		Assistant{Text: "first"},
		Assistant{Text: "second"},
	}

	a, ok := LastAssistant(hist)
	require.True(t, ok)
	assert.Equal(t, "second", a.Text)

	_, ok = LastAssistant(nil)
	assert.False(t, ok)
}

func TestPendingToolCalls(t *testing.T) {
	hist := []Message{
		Assistant{ToolCalls: []ToolCall{
			{ID: "call_1", Name: "search_technical_docs"},
			{ID: "call_2", Name: "search_technical_docs"},
			{ID: "", Name: "search_technical_docs"},
		}},
		ToolResult{ToolCallID: "call_1", Content: "{}"},
	}

	pending := PendingToolCalls(hist)
	require.Len(t, pending, 1)
	assert.Equal(t, "call_2", pending[0].ID)
}

func TestPendingToolCalls_ResultAnywhereCounts(t *testing.T) {
	// The result precedes the call in storage order; it still resolves it.
	hist := []Message{
		ToolResult{ToolCallID: "call_1", Content: "{}"},
		Assistant{ToolCalls: []ToolCall{{ID: "call_1", Name: "search_technical_docs"}}},
	}

	assert.Empty(t, PendingToolCalls(hist))
}

func TestResultIDs(t *testing.T) {
	hist := []Message{
		ToolResult{ToolCallID: "call_1", Content: "{}"},
		ToolResult{ToolCallID: "", Content: "{}"},
		Human{Text: "question"},
	}

	ids := ResultIDs(hist)
	assert.Len(t, ids, 1)
	_, ok := ids["call_1"]
	assert.True(t, ok)
}
