package businessflow

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	recommendationsGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "printshop_recommendations_generated_total",
			Help: "Recommendation batches generated, by scoring model",
		},
		[]string{"model"},
	)

	candidatesScored = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "printshop_candidates_scored_total",
			Help: "Supplier/item pairs scored",
		},
	)

	recommendationLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "printshop_recommendation_duration_seconds",
			Help:    "Time to generate one recommendation batch",
			Buckets: prometheus.DefBuckets,
		},
	)

	selectionCommits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "printshop_selection_commits_total",
			Help: "Supplier selection commits, by outcome",
		},
		[]string{"outcome"},
	)

	quoteTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "printshop_quote_transitions_total",
			Help: "Quote status transitions, by target status",
		},
		[]string{"status"},
	)

	metricsCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "printshop_supplier_metrics_cache_total",
			Help: "Supplier metrics cache lookups, by result",
		},
		[]string{"result"},
	)
)
