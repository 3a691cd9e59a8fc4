package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// EvaluationsProcessed counts clause evaluations by framework
var EvaluationsProcessed = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "clauselens_evaluations_total",
		Help: "Total number of clause evaluations run against a rule snapshot",
	},
	[]string{"framework"},
)

// ViolationsDetected counts detected violations by severity
var ViolationsDetected = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "clauselens_violations_detected_total",
		Help: "Total number of compliance violations detected",
	},
	[]string{"severity"},
)

// RuleCompileFailures counts rules skipped due to malformed patterns
var RuleCompileFailures = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "clauselens_rule_compile_failures_total",
		Help: "Total number of rules skipped because a pattern failed to compile",
	},
)

// SuggestionLatency records latency distribution for suggestion generation
var SuggestionLatency = prometheus.NewHistogram(
	prometheus.HistogramOpts{
		Name:    "clauselens_suggestion_latency_seconds",
		Help:    "Latency in seconds to generate clause suggestions",
		Buckets: prometheus.DefBuckets,
	},
)

// Rewrite provider call metrics
var (
	ProviderCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clauselens_provider_calls_total",
			Help: "Total calls to the external rewrite provider",
		},
		[]string{"outcome"},
	)

	AnalyticsBatchSize = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "clauselens_analytics_batch_size",
			Help:    "Number of analyses per risk analytics computation",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		},
	)
)

func init() {
	prometheus.MustRegister(EvaluationsProcessed, ViolationsDetected, RuleCompileFailures)
	prometheus.MustRegister(SuggestionLatency, ProviderCalls, AnalyticsBatchSize)
}
