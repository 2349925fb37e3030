package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PlansTotal counts produced review plans, labeled by engine and outcome.
	PlansTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "planner_plans_total",
		Help: "The total number of review plans produced",
	}, []string{"engine", "result"}) // engine: heuristic, model; result: success, error

	// PlanDuration measures the time taken to produce a plan (end-to-end).
	PlanDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "planner_plan_duration_seconds",
		Help:    "Time taken to produce a review plan",
		Buckets: prometheus.DefBuckets,
	}, []string{"engine"}) // engine: heuristic, model

	// ParsedFiles observes the number of changed files per parsed diff.
	ParsedFiles = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "planner_parsed_files",
		Help:    "Number of changed files per parsed diff",
		Buckets: prometheus.ExponentialBuckets(1, 2, 10),
	})

	// ModelAttempts counts generation attempts, labeled by outcome.
	ModelAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "planner_model_attempts_total",
		Help: "The total number of model generation attempts",
	}, []string{"outcome"}) // outcome: success, schema_mismatch, error

	// HTTPRequests counts handled API requests, labeled by route and status class.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "planner_http_requests_total",
		Help: "The total number of handled HTTP requests",
	}, []string{"route", "status"}) // status: 2xx, 4xx, 5xx

	// BatchItems observes the number of items per batch planning request.
	BatchItems = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "planner_batch_items",
		Help:    "Number of items per batch planning request",
		Buckets: prometheus.LinearBuckets(1, 2, 10),
	})
)
