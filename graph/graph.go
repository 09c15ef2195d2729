package graph

import (
	"context"
	"fmt"

	"github.com/hupe1980/askdocs/intent"
	"github.com/hupe1980/askdocs/logging"
	"github.com/hupe1980/askdocs/message"
	"github.com/hupe1980/askdocs/model"
	"github.com/hupe1980/askdocs/tool"
)

// node identifies a state machine node.
type node string

const (
	nodeClassify     node = "classify"
	nodeGenerate     node = "generate"
	nodeExecuteTools node = "execute_tools"
	nodeFinalize     node = "finalize"
	nodeReject       node = "reject"
	nodeEnd          node = "end"
)

// RejectionAnswer is the canned reply for out-of-domain input.
const RejectionAnswer = "I can only help with technical questions about Microsoft Azure."

// Options configure a Graph.
type Options struct {
	// Logger receives node-level progress and data-integrity signals.
	Logger logging.Logger
	// MaxToolCycles bounds the GENERATE/EXECUTE_TOOLS loop within one turn.
	// When the bound is reached the model is invoked once more without tools
	// so the turn terminates with a plain answer.
	MaxToolCycles int
	// MaxParallelTools bounds concurrent tool calls within one assistant
	// message. Results are always emitted in request order.
	MaxParallelTools int
}

// Graph is the turn orchestrator. It is immutable after construction and safe
// for concurrent use; each Run owns its State exclusively.
type Graph struct {
	llm        model.Model
	classifier intent.Classifier
	tools      tool.Registry
	executor   *toolExecutor
	logger     logging.Logger
	maxCycles  int
}

// New constructs a Graph over the given collaborators.
func New(llm model.Model, classifier intent.Classifier, tools tool.Registry, optFns ...func(o *Options)) *Graph {
	opts := Options{
		Logger:           logging.NoOpLogger{},
		MaxToolCycles:    5,
		MaxParallelTools: 4,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	if opts.MaxToolCycles < 1 {
		opts.MaxToolCycles = 1
	}
	return &Graph{
		llm:        llm,
		classifier: classifier,
		tools:      tools,
		executor:   newToolExecutor(opts.MaxParallelTools, opts.Logger),
		logger:     opts.Logger,
		maxCycles:  opts.MaxToolCycles,
	}
}

// Run executes one turn to completion, mutating state along the way. Node
// failures degrade to synthesized messages inside the nodes; Run itself only
// fails on a programming error (unknown transition).
func (g *Graph) Run(ctx context.Context, state *State) error {
	current := nodeClassify
	for current != nodeEnd {
		next, err := g.step(ctx, current, state)
		if err != nil {
			return err
		}
		current = next
	}
	return nil
}

func (g *Graph) step(ctx context.Context, current node, state *State) (node, error) {
	switch current {
	case nodeClassify:
		return g.classify(ctx, state), nil
	case nodeGenerate:
		return g.generate(ctx, state), nil
	case nodeExecuteTools:
		return g.executeTools(ctx, state), nil
	case nodeFinalize:
		g.finalize(state)
		return nodeEnd, nil
	case nodeReject:
		g.reject(state)
		return nodeEnd, nil
	default:
		return nodeEnd, fmt.Errorf("graph: unknown node %q", current)
	}
}

// classify labels the turn input and routes out-of-domain turns to rejection.
func (g *Graph) classify(ctx context.Context, state *State) node {
	result := g.classifier.Classify(ctx, state.Input)
	state.Intent = result.Intent
	g.logger.Info("graph.classified", "intent", string(result.Intent))
	if result.Intent == intent.IntentOutOfDomain {
		return nodeReject
	}
	return nodeGenerate
}

// executeTools runs the calls requested by the last assistant message and
// appends one result per call, in request order.
func (g *Graph) executeTools(ctx context.Context, state *State) node {
	last, ok := message.LastAssistant(state.History)
	if !ok || !last.HasToolCalls() {
		g.logger.Warn("graph.execute_tools.no_calls")
		return nodeGenerate
	}
	results := g.executor.Execute(ctx, g.tools, last.ToolCalls)
	for _, r := range results {
		state.History = append(state.History, r)
	}
	state.toolCycles++
	return nodeGenerate
}

// reject appends the canned out-of-domain answer and ends the turn.
func (g *Graph) reject(state *State) {
	state.History = append(state.History, message.Assistant{Text: RejectionAnswer})
	state.Answer = RejectionAnswer
	state.Sources = []Citation{}
}
