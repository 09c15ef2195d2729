// Package history implements the reconciliation protocol for conversational
// memory. It makes two independent guarantees:
//
//   - Decide chooses between continuing, appending to, or resetting the prior
//     history when a new turn arrives, and never discards a history that still
//     contains unresolved tool calls.
//   - Repair rewrites any history into one that satisfies the generation
//     service's structural contract: every tool-call-bearing Assistant message
//     is immediately followed by exactly one ToolResult per call, in call
//     order, with no stray results in between.
//
// Both functions are pure; they never mutate their input.
package history

import (
	"strings"

	"github.com/hupe1980/askdocs/message"
)

// Decide seeds the history for a new turn from the prior persisted history.
//
// An empty prior history, or one without a Human message, starts fresh. When
// the last Human message equals the new input (after trimming), the turn is a
// continuation and the prior history is kept. When the input differs the topic
// may have changed and the history is reset — unless any tool call in the
// prior history is still unresolved, in which case the history is kept so the
// in-flight calls can be completed without breaking the pairing contract.
func Decide(prior []message.Message, input string) []message.Message {
	turn := message.Human{Text: input}
	if len(prior) == 0 {
		return []message.Message{turn}
	}

	last, ok := message.LastHuman(prior)
	if !ok {
		return []message.Message{turn}
	}

	if strings.TrimSpace(last.Text) == strings.TrimSpace(input) {
		return appendCopy(prior, turn)
	}

	if len(message.PendingToolCalls(prior)) > 0 {
		return appendCopy(prior, turn)
	}

	return []message.Message{turn}
}

func appendCopy(history []message.Message, m message.Message) []message.Message {
	out := make([]message.Message, 0, len(history)+1)
	out = append(out, history...)
	return append(out, m)
}
