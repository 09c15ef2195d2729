// Package model defines the generation-service boundary. A Model turns a
// validated history plus task instructions into a single Assistant message,
// optionally requesting tool calls from a declared set. Adapters for concrete
// providers live in the openai and anthropic subpackages.
package model

import (
	"context"
	"fmt"

	"github.com/hupe1980/askdocs/message"
)

// ToolDefinition declaratively exposes a callable tool to the model.
// Parameters is a JSON Schema object (minimal subset expected).
type ToolDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// ResponseSchema constrains the model to emit a single JSON object matching
// the given schema. Adapters that support native constrained decoding enforce
// it server-side; others fall back to instructing the model and leave
// validation to the caller.
type ResponseSchema struct {
	Name   string         `json:"name"`
	Schema map[string]any `json:"schema"`
}

// Request captures the normalized model input produced by the orchestrator.
// History must already satisfy the tool call / tool result pairing contract;
// adapters translate it message-for-message and do not reorder it.
type Request struct {
	Instructions   string
	History        []message.Message
	Tools          []ToolDefinition
	ResponseSchema *ResponseSchema
}

// Info contains metadata about a model implementation.
type Info struct {
	Name          string `json:"name"`
	Provider      string `json:"provider"`
	SupportsTools bool   `json:"supports_tools"`
}

// Model is the minimal interface the orchestrator needs to drive generation.
type Model interface {
	// Invoke blocks until the provider returns a complete Assistant message
	// (text, tool calls, or both).
	Invoke(ctx context.Context, req Request) (message.Assistant, error)

	// Info returns information about the model implementation.
	Info() Info
}

// MockModel is a lightweight in-memory Model useful for tests. Replies are
// served from a scripted queue first, then from canned prompt/response pairs.
type MockModel struct {
	info      Info
	queue     []message.Assistant
	responses map[string]string
	err       error
	requests  []Request
}

// NewMockModel constructs a MockModel with tool support enabled.
func NewMockModel(name, provider string) *MockModel {
	return &MockModel{
		info:      Info{Name: name, Provider: provider, SupportsTools: true},
		responses: make(map[string]string),
	}
}

// Enqueue scripts the next replies in order, ahead of any canned responses.
func (m *MockModel) Enqueue(replies ...message.Assistant) { m.queue = append(m.queue, replies...) }

// AddResponse registers a deterministic canned completion for an input prompt.
func (m *MockModel) AddResponse(prompt, response string) { m.responses[prompt] = response }

// FailWith makes every subsequent Invoke return err.
func (m *MockModel) FailWith(err error) { m.err = err }

// Requests returns the requests observed so far, in order.
func (m *MockModel) Requests() []Request { return m.requests }

// Invoke implements Model.
func (m *MockModel) Invoke(_ context.Context, req Request) (message.Assistant, error) {
	m.requests = append(m.requests, req)
	if m.err != nil {
		return message.Assistant{}, m.err
	}
	if len(m.queue) > 0 {
		next := m.queue[0]
		m.queue = m.queue[1:]
		return next, nil
	}
	last, ok := message.LastHuman(req.History)
	if !ok {
		return message.Assistant{}, fmt.Errorf("no human message in request history")
	}
	if canned, ok := m.responses[last.Text]; ok {
		return message.Assistant{Text: canned}, nil
	}
	return message.Assistant{Text: fmt.Sprintf("Mock response to: %s", last.Text)}, nil
}

// Info implements Model.
func (m *MockModel) Info() Info { return m.info }
