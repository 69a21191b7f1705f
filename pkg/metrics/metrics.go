package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AuthAttempts records login attempts by result (success|failure).
	AuthAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "authcore_auth_attempts_total",
			Help: "Total number of login attempts",
		},
		[]string{"result"},
	)

	// PermissionChecks counts access checks and their outcome (allowed|denied|invalid_token).
	PermissionChecks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "authcore_permission_checks_total",
			Help: "Total number of access checks",
		},
		[]string{"permission", "result"},
	)

	// ActiveSessions tracks tokens currently in the ACTIVE state.
	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "authcore_active_sessions",
			Help: "Number of active access tokens",
		},
	)

	// ExpiredTokensSwept counts tokens transitioned to EXPIRED by the maintenance sweep.
	ExpiredTokensSwept = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "authcore_expired_tokens_swept_total",
			Help: "Tokens expired by the background sweep rather than lazily at check time",
		},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "authcore_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
