// Package tool implements the capability subsystem the orchestrator can hand
// to the model: named tools with JSON-schema validated arguments and uniform
// error handling. The binding between tool name and implementation is an
// explicit Registry passed in at construction time, never global state.
package tool

import (
	"context"
	"fmt"
)

// Tool defines a capability the model can invoke during a turn.
//
// Tool implementations should:
//   - Provide clear, descriptive names (snake_case) and descriptions
//   - Define a proper JSON schema for parameters
//   - Be safe for concurrent use
type Tool interface {
	// Name returns the unique identifier for this tool.
	Name() string

	// Description returns a human-readable description of what this tool does.
	// It is provided to the model to help it decide when to call the tool.
	Description() string

	// Parameters returns a JSON schema describing the expected arguments.
	Parameters() map[string]any

	// Call executes the tool. The returned value must be JSON-serializable;
	// failures should be reported as *ToolError where possible.
	Call(ctx context.Context, args map[string]any) (any, error)
}

// Registry maps tool names to implementations.
type Registry map[string]Tool

// NewRegistry builds a Registry from the given tools, keyed by name.
func NewRegistry(tools ...Tool) Registry {
	reg := make(Registry, len(tools))
	for _, t := range tools {
		reg[t.Name()] = t
	}
	return reg
}

// ToolError represents errors that occur during tool execution.
type ToolError struct {
	Tool    string `json:"tool"`              // Name of the tool that failed
	Message string `json:"message"`           // Error message
	Code    string `json:"code"`              // Error code for categorization
	Details any    `json:"details,omitempty"` // Additional error details
}

// Error codes used across the execution path.
const (
	CodeValidationError = "VALIDATION_ERROR"
	CodeUnknownTool     = "UNKNOWN_TOOL"
	CodeExecutionError  = "EXECUTION_ERROR"
)

func (e *ToolError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("tool error [%s] in %s: %s", e.Code, e.Tool, e.Message)
	}
	return fmt.Sprintf("tool error in %s: %s", e.Tool, e.Message)
}

// NewToolError creates a new ToolError with the specified details.
func NewToolError(tool, message, code string) *ToolError {
	return &ToolError{Tool: tool, Message: message, Code: code}
}
