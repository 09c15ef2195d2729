package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"github.com/hupe1980/askdocs/logging"
	"github.com/hupe1980/askdocs/message"
	"github.com/hupe1980/askdocs/observability"
	"github.com/hupe1980/askdocs/tool"
)

const toolFailureAnswer = "The tool could not be executed. Please try rephrasing your question."

// toolExecutor runs a batch of tool calls, possibly in parallel, and returns
// exactly one ToolResult per call in request order. It never lets a failure
// escape: validation errors, execution errors and panics all become error
// results tagged with the originating call id.
type toolExecutor struct {
	maxParallel int
	logger      logging.Logger
}

func newToolExecutor(maxParallel int, logger logging.Logger) *toolExecutor {
	if maxParallel < 1 {
		maxParallel = 1
	}
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return &toolExecutor{maxParallel: maxParallel, logger: logger}
}

// Execute processes calls and guarantees len(out) == len(calls) with ids in
// request order. Calls are independent reads and may run concurrently up to
// maxParallel; ordering of the returned slice follows the request, not
// completion.
func (e *toolExecutor) Execute(ctx context.Context, reg tool.Registry, calls []message.ToolCall) (out []message.ToolResult) {
	n := len(calls)
	if n == 0 {
		return nil
	}

	defer func() {
		// A wrapper-level panic still yields one error result per call.
		if r := recover(); r != nil {
			e.logger.Error("tools.execute.panic", "recover", fmt.Sprintf("%v", r), "stack", string(debug.Stack()))
			out = make([]message.ToolResult, 0, n)
			for i, call := range calls {
				out = append(out, message.ToolResult{
					ToolCallID: resultID(call, i),
					Content:    tool.ErrorPayload(call.Name, fmt.Sprintf("internal error: %v", r), toolFailureAnswer).Encode(),
				})
			}
		}
	}()

	results := make([]message.ToolResult, n)
	if n == 1 {
		results[0] = e.executeCall(ctx, reg, calls[0], 0)
	} else {
		var wg sync.WaitGroup
		sem := make(chan struct{}, e.maxParallel)
		for i := range calls {
			wg.Add(1)
			sem <- struct{}{}
			go func(idx int, call message.ToolCall) {
				defer wg.Done()
				defer func() { <-sem }()
				results[idx] = e.executeCall(ctx, reg, call, idx)
			}(i, calls[i])
		}
		wg.Wait()
	}

	return e.fillGaps(calls, results)
}

// executeCall validates, normalizes and invokes one call. Every failure path
// returns a synthesized error result paired to the call id.
func (e *toolExecutor) executeCall(ctx context.Context, reg tool.Registry, call message.ToolCall, idx int) (res message.ToolResult) {
	id := resultID(call, idx)

	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("tools.call.panic", "tool", call.Name, "recover", fmt.Sprintf("%v", r))
			res = message.ToolResult{
				ToolCallID: id,
				Content:    tool.ErrorPayload(call.Name, fmt.Sprintf("panic: %v", r), toolFailureAnswer).Encode(),
			}
		}
	}()

	fail := func(err error) message.ToolResult {
		e.logger.Error("tools.call.failed", "tool", call.Name, "tool_call_id", id, "error", err.Error())
		observability.ObserveToolCall(call.Name, true)
		return message.ToolResult{
			ToolCallID: id,
			Content:    tool.ErrorPayload(call.Name, err.Error(), toolFailureAnswer).Encode(),
		}
	}

	if call.Name == "" {
		return fail(fmt.Errorf("tool name is empty"))
	}
	if call.ID == "" {
		return fail(fmt.Errorf("tool call id is empty"))
	}
	t, ok := reg[call.Name]
	if !ok {
		return fail(tool.NewToolError(call.Name, fmt.Sprintf("tool %q is not registered", call.Name), tool.CodeUnknownTool))
	}

	args, err := normalizeArgs(t, call.Arguments)
	if err != nil {
		return fail(err)
	}

	start := time.Now()
	result, err := t.Call(ctx, args)
	e.logger.Info("tools.call.executed",
		"tool", call.Name,
		"tool_call_id", id,
		"duration_ms", time.Since(start).Milliseconds(),
		"error", err != nil,
	)
	if err != nil {
		return fail(err)
	}

	observability.ObserveToolCall(call.Name, false)
	return message.ToolResult{ToolCallID: id, Content: encodeResult(result)}
}

// normalizeArgs coerces free-form model arguments to the tool's expected
// shape. For single-string-parameter tools the value is looked up under the
// declared name and common aliases, so a model that labels the argument
// differently still resolves.
func normalizeArgs(t tool.Tool, args map[string]any) (map[string]any, error) {
	field, single := singleStringParameter(t.Parameters())
	if !single {
		if args == nil {
			args = map[string]any{}
		}
		return args, nil
	}

	for _, key := range []string{field, "text", "input"} {
		v, ok := args[key]
		if !ok || v == nil {
			continue
		}
		if s, ok := v.(string); ok {
			if strings.TrimSpace(s) != "" {
				return map[string]any{field: s}, nil
			}
			continue
		}
		return map[string]any{field: fmt.Sprintf("%v", v)}, nil
	}
	return nil, fmt.Errorf("argument %q not found in tool arguments %v", field, args)
}

// singleStringParameter reports whether the schema declares exactly one
// property of type string, returning its name.
func singleStringParameter(schema map[string]any) (string, bool) {
	properties, ok := schema["properties"].(map[string]any)
	if !ok || len(properties) != 1 {
		return "", false
	}
	for name, prop := range properties {
		propMap, ok := prop.(map[string]any)
		if !ok {
			return "", false
		}
		if propType, _ := propMap["type"].(string); propType == "string" {
			return name, true
		}
	}
	return "", false
}

// encodeResult serializes a tool return value into ToolResult content.
// Payload values pass through; strings and other values are wrapped so the
// content is always a structured document.
func encodeResult(result any) string {
	switch v := result.(type) {
	case tool.Payload:
		return v.Encode()
	case string:
		return tool.Payload{Content: v, Value: []tool.DocumentPayload{}}.Encode()
	case map[string]any:
		if data, err := json.Marshal(v); err == nil {
			return string(data)
		}
		return tool.Payload{Content: fmt.Sprintf("%v", v), Value: []tool.DocumentPayload{}}.Encode()
	default:
		if data, err := json.Marshal(v); err == nil {
			return tool.Payload{Content: string(data), Value: []tool.DocumentPayload{}}.Encode()
		}
		return tool.Payload{Content: fmt.Sprintf("%v", v), Value: []tool.DocumentPayload{}}.Encode()
	}
}

// fillGaps verifies the emitted id set covers the requested ids. The per-call
// path already guarantees this; any gap found indicates a bug and is closed
// with a catch-all error result so the pairing contract holds regardless.
func (e *toolExecutor) fillGaps(calls []message.ToolCall, results []message.ToolResult) []message.ToolResult {
	emitted := make(map[string]struct{}, len(results))
	for _, r := range results {
		emitted[r.ToolCallID] = struct{}{}
	}
	for _, call := range calls {
		if call.ID == "" {
			continue
		}
		if _, ok := emitted[call.ID]; ok {
			continue
		}
		e.logger.Error("tools.execute.gap", "tool_call_id", call.ID, "tool", call.Name)
		results = append(results, message.ToolResult{
			ToolCallID: call.ID,
			Content:    tool.ErrorPayload(call.Name, "no result was produced for this call", toolFailureAnswer).Encode(),
		})
	}
	return results
}

func resultID(call message.ToolCall, idx int) string {
	if call.ID != "" {
		return call.ID
	}
	return fmt.Sprintf("error_%d", idx)
}
