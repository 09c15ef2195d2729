package graph

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/askdocs/intent"
	"github.com/hupe1980/askdocs/message"
	"github.com/hupe1980/askdocs/model"
	"github.com/hupe1980/askdocs/tool"
)

type staticClassifier struct {
	label intent.Intent
}

func (c staticClassifier) Classify(context.Context, string) intent.Classification {
	return intent.Classification{Intent: c.label, Reasoning: "static"}
}

func newTestGraph(llm model.Model, label intent.Intent, tools tool.Registry) *Graph {
	return New(llm, staticClassifier{label: label}, tools)
}

func TestGraph_OutOfDomainIsRejected(t *testing.T) {
	llm := model.NewMockModel("mock", "test")
	g := newTestGraph(llm, intent.IntentOutOfDomain, tool.NewRegistry())

	state := NewState("what is the best pizza topping?", []message.Message{
		message.Human{Text: "what is the best pizza topping?"},
	})
	require.NoError(t, g.Run(context.Background(), state))

	assert.Equal(t, RejectionAnswer, state.Answer)
	assert.Empty(t, state.Sources)
	// The model is never consulted for rejected turns.
	assert.Empty(t, llm.Requests())
}

func TestGraph_DirectAnswerWithoutTools(t *testing.T) {
	llm := model.NewMockModel("mock", "test")
	llm.Enqueue(message.Assistant{Text: "Hello! Ask me about Azure."})
	g := newTestGraph(llm, intent.IntentGreeting, tool.NewRegistry())

	state := NewState("hi", []message.Message{message.Human{Text: "hi"}})
	require.NoError(t, g.Run(context.Background(), state))

	assert.Equal(t, "Hello! Ask me about Azure.", state.Answer)
	assert.Empty(t, state.Sources)
}

func TestGraph_ToolCycleProducesCitedAnswer(t *testing.T) {
	page := 12
	search := newMockSearchTool("search_technical_docs")
	search.result = tool.Payload{
		Content: "CONTENT: vnet overview",
		Value: []tool.DocumentPayload{
			{Source: "azure-networking.pdf", Title: "azure-networking", Page: &page, URL: "#"},
		},
	}

	llm := model.NewMockModel("mock", "test")
	llm.Enqueue(
		message.Assistant{ToolCalls: []message.ToolCall{{
			ID:        "call_1",
			Name:      "search_technical_docs",
			Arguments: map[string]any{"query": "vnet"},
		}}},
		message.Assistant{Text: "VNets are described in azure-networking."},
	)
	g := newTestGraph(llm, intent.IntentTechnical, tool.NewRegistry(search))

	state := NewState("what is a vnet?", []message.Message{message.Human{Text: "what is a vnet?"}})
	require.NoError(t, g.Run(context.Background(), state))

	assert.Equal(t, "VNets are described in azure-networking.", state.Answer)
	require.Len(t, state.Sources, 1)
	assert.Equal(t, "azure-networking.pdf", state.Sources[0].Title)

	// History carries the full call/result pairing for the next turn.
	require.Len(t, state.History, 4)
	_, ok := state.History[2].(message.ToolResult)
	assert.True(t, ok)
}

func TestGraph_ToolBudgetForcesTermination(t *testing.T) {
	search := newMockSearchTool("search_technical_docs")
	search.result = tool.Payload{Content: "nothing useful", Value: []tool.DocumentPayload{}}

	llm := model.NewMockModel("mock", "test")
	// The model keeps requesting tools beyond the budget.
	for i := 0; i < 10; i++ {
		llm.Enqueue(message.Assistant{ToolCalls: []message.ToolCall{{
			ID:        "call",
			Name:      "search_technical_docs",
			Arguments: map[string]any{"query": "vnet"},
		}}})
	}

	g := New(llm, staticClassifier{label: intent.IntentTechnical}, tool.NewRegistry(search), func(o *Options) {
		o.MaxToolCycles = 2
	})

	state := NewState("what is a vnet?", []message.Message{message.Human{Text: "what is a vnet?"}})
	require.NoError(t, g.Run(context.Background(), state))

	// Two in-budget generations request tools, the final one is invoked
	// without tool declarations.
	reqs := llm.Requests()
	require.Len(t, reqs, 3)
	assert.NotEmpty(t, reqs[0].Tools)
	assert.NotEmpty(t, reqs[1].Tools)
	assert.Empty(t, reqs[2].Tools)

	// The over-budget reply's calls were dropped; the turn ends with text.
	last, ok := message.LastAssistant(state.History)
	require.True(t, ok)
	assert.False(t, last.HasToolCalls())
	assert.NotEmpty(t, state.Answer)
	assert.Empty(t, message.PendingToolCalls(state.History))
}

func TestGraph_GenerationFailureDegrades(t *testing.T) {
	llm := model.NewMockModel("mock", "test")
	llm.FailWith(errors.New("connection reset"))
	g := newTestGraph(llm, intent.IntentTechnical, tool.NewRegistry())

	state := NewState("what is a vnet?", []message.Message{message.Human{Text: "what is a vnet?"}})
	require.NoError(t, g.Run(context.Background(), state))

	assert.Contains(t, state.Answer, "connection error")
	assert.Empty(t, state.Sources)
}

func TestGraph_SeedsHumanWhenMissing(t *testing.T) {
	llm := model.NewMockModel("mock", "test")
	llm.Enqueue(message.Assistant{Text: "answer"})
	g := newTestGraph(llm, intent.IntentTechnical, tool.NewRegistry())

	state := NewState("orphan question", nil)
	require.NoError(t, g.Run(context.Background(), state))

	reqs := llm.Requests()
	require.Len(t, reqs, 1)
	h, ok := message.LastHuman(reqs[0].History)
	require.True(t, ok)
	assert.Equal(t, "orphan question", h.Text)
}
