package tool

import "encoding/json"

// DocumentPayload is the per-document entry inside a tool result payload.
// Field names are part of the wire contract shared with the finalizer.
type DocumentPayload struct {
	Source string `json:"source"`
	Title  string `json:"title"`
	Page   *int   `json:"page_number,omitempty"`
	URL    string `json:"url,omitempty"`
}

// Payload is the structured content of every ToolResult produced by this
// module, successful or synthesized. Content is the model-facing text; Value
// carries the raw document metadata the finalizer derives citations from.
type Payload struct {
	Content  string            `json:"content"`
	Value    []DocumentPayload `json:"value"`
	Error    string            `json:"error,omitempty"`
	Message  string            `json:"message,omitempty"`
	ToolName string            `json:"tool_name,omitempty"`
}

// Encode serializes the payload for embedding in a ToolResult message.
func (p Payload) Encode() string {
	data, err := json.Marshal(p)
	if err != nil {
		// Payload fields are plain strings and ints; this cannot realistically fail.
		return `{"content":"","value":[]}`
	}
	return string(data)
}

// DecodePayload parses a ToolResult content string. Unparseable content yields
// an empty payload: the finalizer treats it as citation-free.
func DecodePayload(content string) Payload {
	var p Payload
	if err := json.Unmarshal([]byte(content), &p); err != nil {
		return Payload{}
	}
	return p
}

// ErrorPayload builds the payload for a failed tool invocation with a
// machine-readable error and a user-safe content string.
func ErrorPayload(toolName, errMsg, userSafe string) Payload {
	const maxErrLen = 500
	if len(errMsg) > maxErrLen {
		errMsg = errMsg[:maxErrLen]
	}
	return Payload{
		Content:  userSafe,
		Value:    []DocumentPayload{},
		Error:    "tool execution failed",
		Message:  errMsg,
		ToolName: toolName,
	}
}
