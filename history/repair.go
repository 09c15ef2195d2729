package history

import (
	"encoding/json"

	"github.com/hupe1980/askdocs/message"
)

// missingResultPayload is the structured content of a synthesized ToolResult.
// It mirrors the payload shape produced by tool execution so the finalizer and
// the generation service can treat synthesized results like real ones.
type missingResultPayload struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Content string `json:"content"`
	Value   []any  `json:"value"`
}

// Repair rewrites history so it satisfies the tool call / tool result pairing
// contract, regardless of how malformed the input is.
//
// The walk emits messages in order. Each Assistant message carrying tool calls
// is followed by one ToolResult per call, in call order: the first matching
// result found anywhere in the input is re-emitted as a copy (one stored
// result may satisfy several historical calls with the same id), and a result
// with a structured "missing tool result" payload is synthesized when no match
// exists. ToolResult messages encountered directly in the walk are dropped —
// matched ones have already been re-emitted, unmatched ones are stray.
// Repair is idempotent: repairing an already valid history reproduces it.
func Repair(history []message.Message) []message.Message {
	if len(history) == 0 {
		return nil
	}

	results := firstResultByID(history)
	out := make([]message.Message, 0, len(history))

	for i := 0; i < len(history); {
		switch m := history[i].(type) {
		case message.Assistant:
			out = append(out, m)
			i++
			if !m.HasToolCalls() {
				continue
			}
			for _, tc := range m.ToolCalls {
				if tc.ID == "" {
					continue
				}
				if tr, ok := results[tc.ID]; ok {
					out = append(out, tr)
				} else {
					out = append(out, synthesizeMissingResult(tc))
				}
			}
			// The results that followed the original position were re-emitted
			// in matched form above.
			for i < len(history) {
				if _, ok := history[i].(message.ToolResult); !ok {
					break
				}
				i++
			}
		case message.ToolResult:
			i++
		default:
			out = append(out, m)
			i++
		}
	}
	return out
}

// MissingResultIDs returns the ids Repair would have to synthesize results
// for. A non-empty return is a data-integrity signal: something upstream
// persisted a tool call without its result.
func MissingResultIDs(history []message.Message) []string {
	var ids []string
	for _, tc := range message.PendingToolCalls(history) {
		ids = append(ids, tc.ID)
	}
	return ids
}

func firstResultByID(history []message.Message) map[string]message.ToolResult {
	results := make(map[string]message.ToolResult)
	for _, m := range history {
		tr, ok := m.(message.ToolResult)
		if !ok || tr.ToolCallID == "" {
			continue
		}
		if _, seen := results[tr.ToolCallID]; !seen {
			results[tr.ToolCallID] = tr
		}
	}
	return results
}

func synthesizeMissingResult(tc message.ToolCall) message.ToolResult {
	payload, err := json.Marshal(missingResultPayload{
		Error:   "missing tool result",
		Message: "no tool result was recorded for this call",
		Content: "The result of this tool call is no longer available. Run the tool again if its output is still needed.",
		Value:   []any{},
	})
	if err != nil {
		// The payload is a fixed struct; marshaling cannot realistically fail.
		payload = []byte(`{"error":"missing tool result","value":[]}`)
	}
	return message.ToolResult{ToolCallID: tc.ID, Content: string(payload)}
}
