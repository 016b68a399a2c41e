// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	TurnsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assistant_turns_processed_total",
			Help: "Total number of conversation turns processed",
		},
		[]string{"stage"},
	)

	TurnFaults = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "assistant_turn_faults_total",
			Help: "Total number of turns recovered from an unexpected fault",
		},
	)

	TurnDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "assistant_turn_duration_seconds",
			Help: "Duration of turn processing in seconds",
		},
		[]string{"stage"},
	)

	Decisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assistant_decisions_total",
			Help: "Total number of eligibility decisions by outcome path",
		},
		[]string{"path"},
	)

	GenerationFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assistant_generation_fallbacks_total",
			Help: "Total number of turns answered with a static fallback prompt",
		},
		[]string{"reason"},
	)

	RegistryLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assistant_registry_lookups_total",
			Help: "Total number of customer registry lookups by result",
		},
		[]string{"result"},
	)
)
