package testutil

import (
	"github.com/hupe1980/askdocs/message"
	"github.com/hupe1980/askdocs/tool"
)

// HistoryBuilder provides a fluent helper for constructing conversation
// histories in tests. Example:
//
//	hist := NewHistoryBuilder().
//		Human("what is a vnet?").
//		AssistantToolCall("call_1", "search_technical_docs", "vnet").
//		SearchResult("call_1", "azure-networking", 12).
//		Assistant("A VNet is described in azure-networking.").
//		Build()
//
// Chain only the messages you need.
type HistoryBuilder struct {
	history []message.Message
}

// NewHistoryBuilder creates an empty builder.
func NewHistoryBuilder() *HistoryBuilder { return &HistoryBuilder{} }

// Human appends a human message (chainable).
func (b *HistoryBuilder) Human(text string) *HistoryBuilder {
	b.history = append(b.history, message.Human{Text: text})
	return b
}

// Assistant appends a tool-free assistant message (chainable).
func (b *HistoryBuilder) Assistant(text string) *HistoryBuilder {
	b.history = append(b.history, message.Assistant{Text: text})
	return b
}

// AssistantToolCall appends an assistant message carrying a single search
// call with the given query (chainable).
func (b *HistoryBuilder) AssistantToolCall(callID, toolName, query string) *HistoryBuilder {
	b.history = append(b.history, message.Assistant{
		ToolCalls: []message.ToolCall{{
			ID:        callID,
			Name:      toolName,
			Arguments: map[string]any{"query": query},
		}},
	})
	return b
}

// ToolResult appends a tool result with raw content (chainable).
func (b *HistoryBuilder) ToolResult(callID, content string) *HistoryBuilder {
	b.history = append(b.history, message.ToolResult{ToolCallID: callID, Content: content})
	return b
}

// SearchResult appends a tool result carrying one document payload for the
// given source file and page (chainable).
func (b *HistoryBuilder) SearchResult(callID, source string, page int) *HistoryBuilder {
	payload := tool.Payload{
		Content: "CONTENT: about " + source,
		Value: []tool.DocumentPayload{{
			Source: source,
			Title:  source,
			Page:   &page,
			URL:    "#",
		}},
	}
	return b.ToolResult(callID, payload.Encode())
}

// Build returns the accumulated history.
func (b *HistoryBuilder) Build() []message.Message {
	out := make([]message.Message, len(b.history))
	copy(out, b.history)
	return out
}
