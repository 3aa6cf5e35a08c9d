package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Mutation metrics, exposed on /metrics by the handler package.
var (
	operationsApplied = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tabinavi_operations_applied_total",
		Help: "Itinerary operations applied and committed, by operation type.",
	}, []string{"operation"})

	operationsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tabinavi_operations_rejected_total",
		Help: "Itinerary operations that failed, by operation type and reason.",
	}, []string{"operation", "reason"})

	commitDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "tabinavi_commit_duration_seconds",
		Help:    "Time to persist a mutated plan together with its history entry.",
		Buckets: prometheus.DefBuckets,
	})

	plansSaved = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tabinavi_plans_saved_total",
		Help: "Whole-plan writes, by source (create, save, generate).",
	}, []string{"source"})
)
