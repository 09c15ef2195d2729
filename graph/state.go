// Package graph implements the turn orchestration engine: a directed state
// machine that sequences intent classification, generation, tool execution
// and finalization over a shared per-turn conversation state.
//
// Control flow for one turn:
//
//	CLASSIFY ──> REJECT ──> END
//	    │
//	    └──────> GENERATE ──> FINALIZE ──> END
//	                 ▲            ▲
//	                 │            │ (tool-free reply)
//	                 └── EXECUTE_TOOLS (loops while the model requests tools,
//	                                    bounded by MaxToolCycles)
//
// Nodes mutate the state one at a time; the graph never runs two nodes
// concurrently against the same state.
package graph

import (
	"github.com/hupe1980/askdocs/intent"
	"github.com/hupe1980/askdocs/message"
)

// Citation is a turn-scoped source attribution derived from tool results.
type Citation struct {
	Title string `json:"title"`
	Page  *int   `json:"page,omitempty"`
	URL   string `json:"url"`
}

// State is the conversation state for a single turn. History is the only
// field carried across turns; everything else is recomputed per invocation.
type State struct {
	// Input is the user utterance for this turn.
	Input string
	// Intent is set by the classify node.
	Intent intent.Intent
	// History is seeded by the reconciler and extended by the generation and
	// tool execution nodes.
	History []message.Message
	// Answer is the user-facing answer text, set by finalize or reject.
	Answer string
	// Sources are the turn-scoped citations, set by finalize.
	Sources []Citation

	// toolCycles counts completed EXECUTE_TOOLS passes this turn.
	toolCycles int
}

// NewState creates the state for one turn from the reconciled history seed.
func NewState(input string, seed []message.Message) *State {
	return &State{Input: input, History: seed, Sources: []Citation{}}
}
