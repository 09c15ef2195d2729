package message

// LastHuman returns the most recent Human message in history, or false when
// none exists.
func LastHuman(history []Message) (Human, bool) {
	for i := len(history) - 1; i >= 0; i-- {
		if h, ok := history[i].(Human); ok {
			return h, true
		}
	}
	return Human{}, false
}

// LastAssistant returns the most recent Assistant message, or false when none
// exists.
func LastAssistant(history []Message) (Assistant, bool) {
	for i := len(history) - 1; i >= 0; i-- {
		if a, ok := history[i].(Assistant); ok {
			return a, true
		}
	}
	return Assistant{}, false
}

// ResultIDs collects the tool_call_id of every ToolResult in history.
func ResultIDs(history []Message) map[string]struct{} {
	ids := make(map[string]struct{})
	for _, m := range history {
		if tr, ok := m.(ToolResult); ok && tr.ToolCallID != "" {
			ids[tr.ToolCallID] = struct{}{}
		}
	}
	return ids
}

// PendingToolCalls returns, in history order, every ToolCall of every
// Assistant message that has no ToolResult anywhere in history. A non-empty
// result means the history must not be discarded: resetting would strand the
// calls and break the call/result pairing the generation service requires.
func PendingToolCalls(history []Message) []ToolCall {
	resolved := ResultIDs(history)
	var pending []ToolCall
	for _, m := range history {
		a, ok := m.(Assistant)
		if !ok {
			continue
		}
		for _, tc := range a.ToolCalls {
			if tc.ID == "" {
				continue
			}
			if _, ok := resolved[tc.ID]; !ok {
				pending = append(pending, tc)
			}
		}
	}
	return pending
}
