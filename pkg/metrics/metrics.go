// Package metrics exposes Prometheus collectors for the text-command
// pipeline. Collectors are registered once at package load; services record
// through the helper functions.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	commandsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "assistant",
		Name:      "commands_total",
		Help:      "Processed text commands by intent and outcome.",
	}, []string{"intent", "status"})

	commandDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "assistant",
		Name:      "command_duration_seconds",
		Help:      "End-to-end command processing latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"intent"})

	classificationConfidence = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "assistant",
		Name:      "classification_confidence",
		Help:      "Confidence of recognized commands.",
		Buckets:   []float64{0.5, 0.6, 0.7, 0.75, 0.8, 0.85, 0.9, 0.95, 1.0},
	}, []string{"intent"})

	unrecognizedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "assistant",
		Name:      "unrecognized_commands_total",
		Help:      "Inputs that matched no command pattern.",
	})

	reconcileMatches = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "assistant",
		Name:      "reconcile_matches_total",
		Help:      "Receipt-voice reconciliation outcomes.",
	}, []string{"status"})

	reconcileConfidence = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "assistant",
		Name:      "reconcile_confidence",
		Help:      "Fused confidence of receipt-voice matches.",
		Buckets:   []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1.0},
	})

	rateFetches = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "assistant",
		Name:      "rate_fetches_total",
		Help:      "Exchange rate feed requests by outcome.",
	}, []string{"status"})
)

// RecordCommand records one processed command.
func RecordCommand(intent, status string, seconds float64) {
	commandsTotal.WithLabelValues(intent, status).Inc()
	commandDuration.WithLabelValues(intent).Observe(seconds)
}

// RecordConfidence records the confidence of a recognized command.
func RecordConfidence(intent string, confidence float64) {
	classificationConfidence.WithLabelValues(intent).Observe(confidence)
}

// RecordUnrecognized counts an input no pattern matched.
func RecordUnrecognized() {
	unrecognizedTotal.Inc()
}

// RecordReconcileMatch records a reconciliation outcome and its confidence.
func RecordReconcileMatch(status string, confidence float64) {
	reconcileMatches.WithLabelValues(status).Inc()
	reconcileConfidence.Observe(confidence)
}

// RecordRateFetch counts an exchange rate feed request.
func RecordRateFetch(status string) {
	rateFetches.WithLabelValues(status).Inc()
}

// Handler returns the scrape endpoint handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
