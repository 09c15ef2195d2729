// Package anthropic adapts the Anthropic Messages API (including tool use)
// to the generic model.Model interface.
package anthropic

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/shared/constant"

	"github.com/hupe1980/askdocs/message"
	"github.com/hupe1980/askdocs/model"
)

// Options configures the Anthropic model adapter (temperature, model id,
// max tokens, API key). Extend via functional options to preserve stability.
type Options struct {
	Model       anthropic.Model
	Temperature float64
	MaxTokens   int64
	APIKey      string
}

// Model wraps the Anthropic Messages API behind the generic model.Model interface.
type Model struct {
	client *anthropic.Client
	opts   Options
}

// NewModel creates a new Anthropic model using the official client.
func NewModel(optFns ...func(o *Options)) *Model {
	opts := Options{
		Model:       anthropic.ModelClaude3_5Sonnet20241022,
		Temperature: 0.2,
		MaxTokens:   4096,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	var clientOpts []option.RequestOption
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}
	client := anthropic.NewClient(clientOpts...)

	return &Model{client: &client, opts: opts}
}

// NewModelFromClient creates a new Anthropic model from an existing client.
func NewModelFromClient(client *anthropic.Client, optFns ...func(o *Options)) *Model {
	opts := Options{
		Model:       anthropic.ModelClaude3_5Sonnet20241022,
		Temperature: 0.2,
		MaxTokens:   4096,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Model{client: client, opts: opts}
}

// Invoke implements model.Model using a non-streaming message request.
//
// The Messages API has no JSON-schema response format; when a ResponseSchema
// is requested the schema's intent is appended to the system prompt and the
// caller validates the emitted JSON (failing closed on mismatch).
func (m *Model) Invoke(ctx context.Context, req model.Request) (message.Assistant, error) {
	params := anthropic.MessageNewParams{
		Model:       m.opts.Model,
		Messages:    m.buildMessages(req.History),
		MaxTokens:   m.opts.MaxTokens,
		Temperature: anthropic.Float(m.opts.Temperature),
	}

	system := req.Instructions
	if req.ResponseSchema != nil {
		schema, err := json.Marshal(req.ResponseSchema.Schema)
		if err != nil {
			return message.Assistant{}, fmt.Errorf("anthropic: marshal response schema: %w", err)
		}
		system = fmt.Sprintf(
			"%s\n\nRespond with a single JSON object matching this JSON schema and nothing else:\n%s",
			system, schema,
		)
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}

	if len(req.Tools) > 0 {
		params.Tools = m.buildTools(req.Tools)
	}

	resp, err := m.client.Messages.New(ctx, params)
	if err != nil {
		return message.Assistant{}, fmt.Errorf("anthropic api error: %w", err)
	}

	var out message.Assistant
	for _, block := range resp.Content {
		switch block.Type {
		case "text":
			out.Text += block.AsText().Text
		case "tool_use":
			toolBlock := block.AsToolUse()
			out.ToolCalls = append(out.ToolCalls, message.ToolCall{
				ID:        toolBlock.ID,
				Name:      toolBlock.Name,
				Arguments: decodeInput(toolBlock.Input),
			})
		}
	}
	return out, nil
}

func decodeInput(input json.RawMessage) map[string]any {
	if len(input) == 0 {
		return map[string]any{}
	}
	var args map[string]any
	if err := json.Unmarshal(input, &args); err != nil {
		return map[string]any{}
	}
	return args
}

// buildMessages converts the normalized history to Anthropic message params.
// Tool results become tool_result blocks inside a user message immediately
// after the assistant turn that requested them, which is where the repaired
// history places them.
func (m *Model) buildMessages(history []message.Message) []anthropic.MessageParam {
	var messages []anthropic.MessageParam
	for _, msg := range history {
		switch v := msg.(type) {
		case message.System:
			// System text is carried via params.System; mid-history system
			// messages are folded into the user stream.
			messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(v.Text)))
		case message.Human:
			messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(v.Text)))
		case message.Assistant:
			var content []anthropic.ContentBlockParamUnion
			if v.Text != "" {
				content = append(content, anthropic.NewTextBlock(v.Text))
			}
			for _, tc := range v.ToolCalls {
				content = append(content, anthropic.NewToolUseBlock(tc.ID, tc.Arguments, tc.Name))
			}
			if len(content) > 0 {
				messages = append(messages, anthropic.NewAssistantMessage(content...))
			}
		case message.ToolResult:
			messages = append(messages, anthropic.NewUserMessage(
				anthropic.NewToolResultBlock(v.ToolCallID, v.Content, false),
			))
		}
	}
	return messages
}

// buildTools converts tool definitions to the Anthropic tool format.
func (m *Model) buildTools(tools []model.ToolDefinition) []anthropic.ToolUnionParam {
	out := make([]anthropic.ToolUnionParam, len(tools))
	for i, tdef := range tools {
		inputSchema := anthropic.ToolInputSchemaParam{
			Type: constant.Object("object"),
		}
		if tdef.Parameters != nil {
			if properties, exists := tdef.Parameters["properties"]; exists {
				inputSchema.Properties = properties
			}
			if required, exists := tdef.Parameters["required"]; exists {
				switch req := required.(type) {
				case []string:
					inputSchema.Required = req
				case []any:
					for _, r := range req {
						if s, ok := r.(string); ok {
							inputSchema.Required = append(inputSchema.Required, s)
						}
					}
				}
			}
		}
		out[i] = anthropic.ToolUnionParamOfTool(inputSchema, tdef.Name)
	}
	return out
}

// Info returns metadata describing this Anthropic model implementation.
func (m *Model) Info() model.Info {
	return model.Info{
		Name:          string(m.opts.Model),
		Provider:      "anthropic",
		SupportsTools: true,
	}
}
