package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Occurrences written by the materializer, by kind (daily, weekly, biweekly, manual).
	OccurrencesMaterialized = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "planner_occurrences_materialized_total",
			Help: "Occurrences inserted by the materializer",
		},
		[]string{"kind"},
	)

	// Roll-forward outcomes: moved or hidden.
	OccurrencesRolledForward = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "planner_occurrences_rolled_forward_total",
			Help: "Stale occurrences moved to today or hidden as duplicates",
		},
		[]string{"outcome"},
	)

	// Planning pass duration in seconds.
	PlanningPassDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "planner_planning_pass_duration_seconds",
			Help:    "Duration of a full materialize + roll-forward pass",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12), // 5ms to ~10s
		},
	)

	// Tasks still unscheduled per cadence at the last pace check.
	PaceRemainingTasks = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "planner_pace_remaining_tasks",
			Help: "Unscheduled tasks per cadence in the current cycle",
		},
		[]string{"cadence"},
	)

	// Remaining scheduling opportunities per cadence at the last pace check.
	PaceRemainingSlots = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "planner_pace_remaining_slots",
			Help: "Estimated scheduling opportunities left per cadence in the current cycle",
		},
		[]string{"cadence"},
	)

	Suggestions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "planner_suggestions_total",
			Help: "Cascade suggestion requests by result",
		},
		[]string{"cadence", "result"},
	)
)

func AddMaterialized(kind string, n int) {
	if n > 0 {
		OccurrencesMaterialized.WithLabelValues(kind).Add(float64(n))
	}
}

func AddRolledForward(moved, hidden int) {
	if moved > 0 {
		OccurrencesRolledForward.WithLabelValues("moved").Add(float64(moved))
	}
	if hidden > 0 {
		OccurrencesRolledForward.WithLabelValues("hidden").Add(float64(hidden))
	}
}

func SetPace(cadence string, remainingTasks, remainingSlots int) {
	PaceRemainingTasks.WithLabelValues(cadence).Set(float64(remainingTasks))
	PaceRemainingSlots.WithLabelValues(cadence).Set(float64(remainingSlots))
}

func IncSuggestion(cadence, result string) {
	Suggestions.WithLabelValues(cadence, result).Inc()
}
