// Package askdocs provides a high-level façade over the turn orchestration
// engine and its services (session persistence, retrieval, logging). Most
// applications interact with this package by:
//  1. Creating an Assistant via New() with a model, classifier and tools
//  2. Calling Chat() once per user utterance
//
// The façade owns the cross-turn concerns: minting session ids, loading and
// reconciling persisted histories, and saving the updated history after a
// completed turn. Orchestration within the turn is delegated to graph.Graph.
// All defaults are safe for local development; production deployments supply
// a durable session store and a structured logger.
package askdocs

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hupe1980/askdocs/graph"
	"github.com/hupe1980/askdocs/history"
	"github.com/hupe1980/askdocs/intent"
	"github.com/hupe1980/askdocs/logging"
	"github.com/hupe1980/askdocs/model"
	"github.com/hupe1980/askdocs/observability"
	"github.com/hupe1980/askdocs/session"
	"github.com/hupe1980/askdocs/tool"
)

// Options configures the Assistant.
type Options struct {
	// SessionStore persists conversation histories across turns. Defaults to
	// an in-memory store.
	SessionStore session.Store

	// Logger defaults to NoOpLogger.
	Logger logging.Logger

	// MaxToolCycles bounds the generate/execute loop within one turn.
	MaxToolCycles int

	// MaxParallelTools bounds concurrent tool calls within one assistant
	// message.
	MaxParallelTools int
}

// Turn is the outcome of one completed conversation turn.
type Turn struct {
	SessionID string           `json:"session_id"`
	Intent    intent.Intent    `json:"intent"`
	Answer    string           `json:"answer"`
	Sources   []graph.Citation `json:"sources"`
}

// Assistant is the high-level façade aggregating the orchestration graph and
// the session store. It is safe for concurrent use; concurrent turns against
// the same session id are last-writer-wins.
type Assistant struct {
	graph  *graph.Graph
	store  session.Store
	logger logging.Logger
}

// New creates an Assistant over the given model, classifier and tools. Any
// unset service is initialized with an in-memory implementation.
func New(llm model.Model, classifier intent.Classifier, tools tool.Registry, optFns ...func(o *Options)) *Assistant {
	opts := Options{
		SessionStore:     session.NewInMemoryStore(),
		Logger:           logging.NoOpLogger{},
		MaxToolCycles:    5,
		MaxParallelTools: 4,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.SessionStore == nil {
		opts.SessionStore = session.NewInMemoryStore()
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	g := graph.New(llm, classifier, tools, func(o *graph.Options) {
		o.Logger = opts.Logger
		o.MaxToolCycles = opts.MaxToolCycles
		o.MaxParallelTools = opts.MaxParallelTools
	})

	return &Assistant{graph: g, store: opts.SessionStore, logger: opts.Logger}
}

// Chat runs one conversation turn. An empty sessionID starts a fresh session
// with a minted id. The stored history is reconciled against the input before
// the turn runs, and the updated history is persisted only after the turn
// completed, so an aborted turn never leaves dangling tool calls behind.
func (a *Assistant) Chat(ctx context.Context, sessionID, text string) (*Turn, error) {
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	prior, err := a.store.Load(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", sessionID, err)
	}

	seed := history.Decide(prior, text)
	state := graph.NewState(text, seed)

	start := time.Now()
	if err := a.graph.Run(ctx, state); err != nil {
		observability.ObserveTurn(string(state.Intent), "error", time.Since(start), 0)
		return nil, fmt.Errorf("run turn: %w", err)
	}
	observability.ObserveTurn(string(state.Intent), "ok", time.Since(start), len(state.Sources))

	if err := a.store.Save(ctx, sessionID, state.History); err != nil {
		// The answer is still valid; persistence failure only affects the
		// next turn's context.
		a.logger.Error("askdocs.save_failed", "session_id", sessionID, "error", err.Error())
	}

	a.logger.Info("askdocs.turn_completed",
		"session_id", sessionID,
		"intent", string(state.Intent),
		"sources", len(state.Sources),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return &Turn{
		SessionID: sessionID,
		Intent:    state.Intent,
		Answer:    state.Answer,
		Sources:   state.Sources,
	}, nil
}
