// Package observability exposes the Prometheus metrics for the assistant.
// Metrics are registered on the default registry so the HTTP layer only needs
// to mount promhttp.Handler.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// turnsTotal counts completed turns by intent and outcome.
	turnsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "askdocs",
		Name:      "turns_total",
		Help:      "Completed conversation turns by intent and status",
	}, []string{"intent", "status"})

	// turnDuration tracks end-to-end turn latency. Buckets span quick
	// rejections to multi-cycle tool turns.
	turnDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "askdocs",
		Name:      "turn_duration_seconds",
		Help:      "End-to-end turn duration in seconds",
		Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
	}, []string{"intent"})

	// toolCallsTotal counts individual tool invocations by tool and result.
	toolCallsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "askdocs",
		Name:      "tool_calls_total",
		Help:      "Tool invocations by tool name and result",
	}, []string{"tool", "result"})

	// citationsPerTurn tracks how many sources each answer cites.
	citationsPerTurn = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "askdocs",
		Name:      "citations_per_turn",
		Help:      "Number of citations attached to an answer",
		Buckets:   []float64{0, 1, 2, 3, 5, 10},
	})
)

// ObserveTurn records one completed turn.
func ObserveTurn(intent, status string, duration time.Duration, citations int) {
	turnsTotal.WithLabelValues(intent, status).Inc()
	turnDuration.WithLabelValues(intent).Observe(duration.Seconds())
	citationsPerTurn.Observe(float64(citations))
}

// ObserveToolCall records one tool invocation outcome.
func ObserveToolCall(tool string, failed bool) {
	result := "ok"
	if failed {
		result = "error"
	}
	toolCallsTotal.WithLabelValues(tool, result).Inc()
}
