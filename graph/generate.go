package graph

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/hupe1980/askdocs/history"
	"github.com/hupe1980/askdocs/message"
	"github.com/hupe1980/askdocs/model"
	"github.com/hupe1980/askdocs/tool"
)

// generate invokes the model over the repaired history and appends the reply.
// A tool-requesting reply routes to tool execution; a tool-free reply routes
// to finalization. Failures never propagate: they degrade to a tool-free
// assistant message with a user-safe explanation.
func (g *Graph) generate(ctx context.Context, state *State) node {
	hist := state.History
	if _, ok := message.LastHuman(hist); !ok {
		hist = append([]message.Message{message.Human{Text: state.Input}}, hist...)
	}

	if missing := history.MissingResultIDs(hist); len(missing) > 0 {
		// Upstream persisted a call without its result; repair below
		// synthesizes stand-ins, but the condition itself is a bug signal.
		g.logger.Warn("graph.generate.missing_tool_results", "ids", strings.Join(missing, ","))
	}
	validated := history.Repair(hist)

	req := model.Request{
		Instructions: g.buildInstructions(state.Input),
		History:      validated,
	}

	// Within budget the model may request tools; at the bound it is invoked
	// without them so the turn terminates with a plain answer.
	withinBudget := state.toolCycles < g.maxCycles
	if withinBudget {
		req.Tools = toolDefinitions(g.tools)
	} else {
		g.logger.Warn("graph.generate.tool_budget_exhausted", "cycles", state.toolCycles)
	}

	reply, err := g.llm.Invoke(ctx, req)
	if err != nil {
		g.logger.Error("graph.generate.failed", "error", err.Error())
		state.History = append(state.History, message.Assistant{Text: userSafeGenerationMessage(err)})
		return nodeFinalize
	}

	if !withinBudget && reply.HasToolCalls() {
		// The model requested tools although none were declared; drop the
		// calls rather than loop past the budget.
		reply.ToolCalls = nil
		if strings.TrimSpace(reply.Text) == "" {
			reply.Text = "I could not finish researching your question within the allowed number of searches. Please try a more specific question."
		}
	}

	state.History = append(state.History, reply)
	if reply.HasToolCalls() {
		return nodeExecuteTools
	}
	return nodeFinalize
}

// buildInstructions anchors the model on the current question so stale tool
// results from earlier topics are ignored.
func (g *Graph) buildInstructions(input string) string {
	return fmt.Sprintf(
		"You are an expert Azure architect. Your goal is to answer ONLY the user's LATEST question.\n\n"+
			"CURRENT USER QUESTION: %q\n\n"+
			"CRITICAL INSTRUCTIONS:\n"+
			"1. Answer ONLY the current question stated above.\n"+
			"2. Answer in a SINGLE paragraph of at most 12 lines.\n"+
			"3. Use ONLY the retrieved documents that are RELEVANT to the CURRENT question.\n"+
			"4. If the documents discuss SQL but the question is about networking, IGNORE the SQL ones.\n"+
			"5. ALWAYS cite the file name you find in the documents.\n"+
			"6. Do NOT mix information from different topics.\n"+
			"7. When you use the search tool, ALWAYS search with the user's CURRENT question.\n"+
			"8. Do NOT repeat earlier answers. Produce a NEW answer based on the current question.\n"+
			"9. If the question changed, completely ignore earlier answers and produce a new one.",
		input,
	)
}

func toolDefinitions(reg tool.Registry) []model.ToolDefinition {
	names := make([]string, 0, len(reg))
	for name := range reg {
		names = append(names, name)
	}
	sort.Strings(names)
	defs := make([]model.ToolDefinition, 0, len(names))
	for _, name := range names {
		t := reg[name]
		defs = append(defs, model.ToolDefinition{
			Name:        t.Name(),
			Description: t.Description(),
			Parameters:  t.Parameters(),
		})
	}
	return defs
}

// userSafeGenerationMessage maps a generation failure to a message safe to
// show the user, by failure class: tool-related, timeout, connectivity or
// unknown.
func userSafeGenerationMessage(err error) string {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "tool"):
		return "Sorry, there was a problem with the assistant's tool execution. Please try rephrasing your question."
	case errors.Is(err, context.DeadlineExceeded) || strings.Contains(msg, "timeout"):
		return "The request took too long. Please try a more specific question."
	case strings.Contains(msg, "connection") || strings.Contains(msg, "network"):
		return "There was a connection error with the generation service. Please try again in a few moments."
	default:
		return "Sorry, there was an error processing your request. Please try rephrasing your question."
	}
}
