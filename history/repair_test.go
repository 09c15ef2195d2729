package history

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/askdocs/internal/testutil"
	"github.com/hupe1980/askdocs/message"
)

// requirePaired asserts that every tool-calling assistant message is
// immediately followed by exactly one result per call, in call order.
func requirePaired(t *testing.T, hist []message.Message) {
	t.Helper()
	for i := 0; i < len(hist); i++ {
		a, ok := hist[i].(message.Assistant)
		if !ok || !a.HasToolCalls() {
			if _, stray := hist[i].(message.ToolResult); stray {
				t.Fatalf("stray tool result at index %d", i)
			}
			continue
		}
		for j, tc := range a.ToolCalls {
			idx := i + 1 + j
			require.Less(t, idx, len(hist), "missing result for call %s", tc.ID)
			tr, ok := hist[idx].(message.ToolResult)
			require.True(t, ok, "expected tool result at index %d", idx)
			assert.Equal(t, tc.ID, tr.ToolCallID)
		}
		i += len(a.ToolCalls)
	}
}

func TestRepair_ValidHistoryIsUnchanged(t *testing.T) {
	hist := testutil.NewHistoryBuilder().
		Human("what is a vnet?").
		AssistantToolCall("call_1", "search_technical_docs", "vnet").
		SearchResult("call_1", "azure-networking", 3).
		Assistant("A VNet is described in azure-networking.").
		Build()

	repaired := Repair(hist)

	assert.Equal(t, hist, repaired)
	requirePaired(t, repaired)
}

func TestRepair_SynthesizesMissingResult(t *testing.T) {
	hist := testutil.NewHistoryBuilder().
		Human("what is a vnet?").
		AssistantToolCall("call_1", "search_technical_docs", "vnet").
		Build()

	repaired := Repair(hist)

	require.Len(t, repaired, 3)
	tr, ok := repaired[2].(message.ToolResult)
	require.True(t, ok)
	assert.Equal(t, "call_1", tr.ToolCallID)

	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(tr.Content), &payload))
	assert.Equal(t, "missing tool result", payload["error"])
	assert.Equal(t, []any{}, payload["value"])
	requirePaired(t, repaired)
}

func TestRepair_DropsStrayResults(t *testing.T) {
	hist := testutil.NewHistoryBuilder().
		Human("what is a vnet?").
		ToolResult("orphan_1", `{"content":"orphaned"}`).
		Assistant("An answer.").
		Build()

	repaired := Repair(hist)

	require.Len(t, repaired, 2)
	assert.Equal(t, message.Human{Text: "what is a vnet?"}, repaired[0])
	assert.Equal(t, message.Assistant{Text: "An answer."}, repaired[1])
}

func TestRepair_ReordersDisplacedResult(t *testing.T) {
	// The result for call_1 was persisted after an unrelated message; Repair
	// must move a copy directly after the calling assistant message.
	hist := []message.Message{
		message.Human{Text: "question"},
		message.Assistant{ToolCalls: []message.ToolCall{{ID: "call_1", Name: "search_technical_docs"}}},
		message.Assistant{Text: "intermediate"},
		message.ToolResult{ToolCallID: "call_1", Content: `{"content":"found"}`},
	}

	repaired := Repair(hist)

	require.Len(t, repaired, 4)
	tr, ok := repaired[2].(message.ToolResult)
	require.True(t, ok)
	assert.Equal(t, "call_1", tr.ToolCallID)
	assert.Equal(t, `{"content":"found"}`, tr.Content)
	assert.Equal(t, message.Assistant{Text: "intermediate"}, repaired[3])
	requirePaired(t, repaired)
}

func TestRepair_MultipleCallsKeepCallOrder(t *testing.T) {
	hist := []message.Message{
		message.Human{Text: "question"},
		message.Assistant{ToolCalls: []message.ToolCall{
			{ID: "call_1", Name: "search_technical_docs"},
			{ID: "call_2", Name: "search_technical_docs"},
		}},
		// Results stored in reverse order.
		message.ToolResult{ToolCallID: "call_2", Content: `{"content":"two"}`},
		message.ToolResult{ToolCallID: "call_1", Content: `{"content":"one"}`},
	}

	repaired := Repair(hist)

	require.Len(t, repaired, 4)
	first := repaired[2].(message.ToolResult)
	second := repaired[3].(message.ToolResult)
	assert.Equal(t, "call_1", first.ToolCallID)
	assert.Equal(t, "call_2", second.ToolCallID)
	requirePaired(t, repaired)
}

func TestRepair_SharedIDReusesFirstResult(t *testing.T) {
	// Two historical calls with the same id are both satisfied by a copy of
	// the first stored result.
	hist := []message.Message{
		message.Human{Text: "question"},
		message.Assistant{ToolCalls: []message.ToolCall{{ID: "call_1", Name: "search_technical_docs"}}},
		message.ToolResult{ToolCallID: "call_1", Content: `{"content":"first"}`},
		message.Assistant{ToolCalls: []message.ToolCall{{ID: "call_1", Name: "search_technical_docs"}}},
	}

	repaired := Repair(hist)

	require.Len(t, repaired, 5)
	assert.Equal(t, `{"content":"first"}`, repaired[2].(message.ToolResult).Content)
	assert.Equal(t, `{"content":"first"}`, repaired[4].(message.ToolResult).Content)
	requirePaired(t, repaired)
}

func TestRepair_SkipsEmptyCallIDs(t *testing.T) {
	hist := []message.Message{
		message.Human{Text: "question"},
		message.Assistant{ToolCalls: []message.ToolCall{
			{ID: "", Name: "search_technical_docs"},
			{ID: "call_1", Name: "search_technical_docs"},
		}},
	}

	repaired := Repair(hist)

	require.Len(t, repaired, 3)
	assert.Equal(t, "call_1", repaired[2].(message.ToolResult).ToolCallID)
}

func TestRepair_Idempotent(t *testing.T) {
	hist := []message.Message{
		message.Human{Text: "question"},
		message.Assistant{ToolCalls: []message.ToolCall{{ID: "call_1", Name: "search_technical_docs"}}},
		message.Assistant{Text: "intermediate"},
		message.ToolResult{ToolCallID: "call_1", Content: `{"content":"found"}`},
		message.Assistant{ToolCalls: []message.ToolCall{{ID: "call_2", Name: "search_technical_docs"}}},
	}

	once := Repair(hist)
	twice := Repair(once)

	assert.Equal(t, once, twice)
	requirePaired(t, once)
}

func TestRepair_EmptyHistory(t *testing.T) {
	assert.Nil(t, Repair(nil))
	assert.Nil(t, Repair([]message.Message{}))
}

func TestMissingResultIDs(t *testing.T) {
	hist := []message.Message{
		message.Assistant{ToolCalls: []message.ToolCall{
			{ID: "call_1", Name: "search_technical_docs"},
			{ID: "call_2", Name: "search_technical_docs"},
		}},
		message.ToolResult{ToolCallID: "call_1", Content: `{}`},
	}

	assert.Equal(t, []string{"call_2"}, MissingResultIDs(hist))
	assert.Empty(t, MissingResultIDs(nil))
}
