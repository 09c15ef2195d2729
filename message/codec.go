package message

import (
	"encoding/json"
	"fmt"
)

// Wire envelope kinds. The tagged encoding keeps persisted histories readable
// and lets DecodeHistory reject unknown variants instead of guessing.
const (
	kindSystem     = "system"
	kindHuman      = "human"
	kindAssistant  = "assistant"
	kindToolResult = "tool_result"
)

type envelope struct {
	Kind       string     `json:"kind"`
	Text       string     `json:"text,omitempty"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
	Content    string     `json:"content,omitempty"`
}

// EncodeHistory serializes a history for persistence.
func EncodeHistory(history []Message) ([]byte, error) {
	envelopes := make([]envelope, 0, len(history))
	for i, m := range history {
		switch v := m.(type) {
		case System:
			envelopes = append(envelopes, envelope{Kind: kindSystem, Text: v.Text})
		case Human:
			envelopes = append(envelopes, envelope{Kind: kindHuman, Text: v.Text})
		case Assistant:
			envelopes = append(envelopes, envelope{Kind: kindAssistant, Text: v.Text, ToolCalls: v.ToolCalls})
		case ToolResult:
			envelopes = append(envelopes, envelope{Kind: kindToolResult, ToolCallID: v.ToolCallID, Content: v.Content})
		default:
			return nil, fmt.Errorf("encode history: unsupported message at index %d: %T", i, m)
		}
	}
	return json.Marshal(envelopes)
}

// DecodeHistory deserializes a history previously produced by EncodeHistory.
func DecodeHistory(data []byte) ([]Message, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var envelopes []envelope
	if err := json.Unmarshal(data, &envelopes); err != nil {
		return nil, fmt.Errorf("decode history: %w", err)
	}
	history := make([]Message, 0, len(envelopes))
	for i, e := range envelopes {
		switch e.Kind {
		case kindSystem:
			history = append(history, System{Text: e.Text})
		case kindHuman:
			history = append(history, Human{Text: e.Text})
		case kindAssistant:
			history = append(history, Assistant{Text: e.Text, ToolCalls: e.ToolCalls})
		case kindToolResult:
			history = append(history, ToolResult{ToolCallID: e.ToolCallID, Content: e.Content})
		default:
			return nil, fmt.Errorf("decode history: unknown message kind %q at index %d", e.Kind, i)
		}
	}
	return history, nil
}
