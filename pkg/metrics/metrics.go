package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestCounter counts HTTP requests by status code, method, and route
	RequestCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "arena_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"status", "method", "route"},
	)

	// RequestDuration measures HTTP request duration
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "arena_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"status", "method", "route"},
	)

	// AnswersSubmitted counts graded answers
	AnswersSubmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "arena_answers_submitted_total",
			Help: "Answers graded, by round and correctness",
		},
		[]string{"round", "correct"},
	)

	// SubmissionsRejected counts answers refused before or during persistence
	SubmissionsRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "arena_submissions_rejected_total",
			Help: "Answer submissions rejected, by reason",
		},
		[]string{"reason"},
	)

	// RoundTransitions counts admin-driven game transitions
	RoundTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "arena_game_transitions_total",
			Help: "Game status transitions, by target status",
		},
		[]string{"status"},
	)

	// Strikes counts anti-cheat strikes
	Strikes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "arena_strikes_total",
			Help: "Anti-cheat strikes, by source",
		},
		[]string{"source"},
	)

	// EventsPublished counts realtime events by type
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "arena_events_published_total",
			Help: "Realtime events published",
		},
		[]string{"type"},
	)

	// EventsDropped counts events dropped for slow subscribers
	EventsDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "arena_events_dropped_total",
			Help: "Realtime events dropped because a subscriber was slow",
		},
	)

	// ActiveStreams tracks open SSE and WebSocket subscribers
	ActiveStreams = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "arena_active_streams",
			Help: "Open realtime streams, by transport",
		},
		[]string{"transport"},
	)

	// CacheRequests counts cache lookups
	CacheRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "arena_cache_requests_total",
			Help: "Cache lookups, by cache and result",
		},
		[]string{"cache", "result"},
	)

	// SandboxExecutions counts code sandbox runs
	SandboxExecutions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "arena_sandbox_executions_total",
			Help: "Code sandbox executions, by language and status",
		},
		[]string{"language", "status"},
	)

	// SandboxDuration measures sandbox round-trip time
	SandboxDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "arena_sandbox_duration_seconds",
			Help:    "Code sandbox round-trip time in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
	)

	// RateLimiterRejections counts requests rejected by the rate limiter
	RateLimiterRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "arena_rate_limiter_rejections_total",
			Help: "Requests rejected by the rate limiter, by scope",
		},
		[]string{"scope"},
	)
)

// CacheHit records a cache hit
func CacheHit(cache string) {
	CacheRequests.WithLabelValues(cache, "hit").Inc()
}

// CacheMiss records a cache miss
func CacheMiss(cache string) {
	CacheRequests.WithLabelValues(cache, "miss").Inc()
}
