// Package message defines the conversational message model shared by the
// reconciler, the orchestration graph and the session stores. Message is a
// closed tagged union: concrete variants implement the unexported isMessage
// marker, so switches over the variants are exhaustive by construction.
package message

// Message represents one entry of a conversation history. Concrete variants
// are System, Human, Assistant and ToolResult.
type Message interface{ isMessage() }

// System carries an instruction for the generation service.
type System struct {
	Text string `json:"text"`
}

func (System) isMessage() {}

// Human carries a user utterance.
type Human struct {
	Text string `json:"text"`
}

func (Human) isMessage() {}

// ToolCall describes a tool invocation requested by an Assistant message.
// The ID is unique within the owning message and assumed unique for the
// lifetime of a session.
type ToolCall struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments,omitempty"`
}

// Assistant carries generated text and the ordered tool calls requested
// alongside it. A tool-free Assistant message terminates the generation loop.
type Assistant struct {
	Text      string     `json:"text,omitempty"`
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`
}

func (Assistant) isMessage() {}

// HasToolCalls reports whether the message requests at least one tool call.
func (a Assistant) HasToolCalls() bool { return len(a.ToolCalls) > 0 }

// ToolResult carries the opaque payload produced for a single tool call,
// matched to its originating call by ToolCallID. By convention the content is
// a JSON document (see the tool package for the payload shape).
type ToolResult struct {
	ToolCallID string `json:"tool_call_id"`
	Content    string `json:"content"`
}

func (ToolResult) isMessage() {}
