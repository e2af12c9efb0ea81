package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Database/Repository Metrics
var (
	// DBOperations tracks total database operations
	DBOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inkwell_db_operations_total",
			Help: "Total database operations by repository, operation, and status",
		},
		[]string{"repo", "operation", "status"},
	)

	// DBDuration tracks database operation latency
	DBDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:                            "inkwell_db_operation_duration_ms",
			Help:                            "Database operation duration in milliseconds",
			NativeHistogramBucketFactor:     1.1,
			NativeHistogramMaxBucketNumber:  100,
			NativeHistogramMinResetDuration: 1 * time.Hour,
		},
		[]string{"repo", "operation"},
	)

	// DBErrors tracks database errors by type
	DBErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inkwell_db_errors_total",
			Help: "Total database errors by repository, operation, and error type",
		},
		[]string{"repo", "operation", "error_type"},
	)
)

// HTTP Handler Metrics
var (
	// HTTPRequests tracks HTTP requests
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inkwell_http_requests_total",
			Help: "Total HTTP requests by method, path, and status",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPDuration tracks HTTP request duration
	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:                            "inkwell_http_request_duration_ms",
			Help:                            "HTTP request duration in milliseconds",
			NativeHistogramBucketFactor:     1.1,
			NativeHistogramMaxBucketNumber:  100,
			NativeHistogramMinResetDuration: 1 * time.Hour,
		},
		[]string{"method", "path"},
	)

	// HTTPActiveRequests tracks active HTTP requests
	HTTPActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "inkwell_http_active_requests",
			Help: "Number of active HTTP requests",
		},
	)
)

// Authentication Metrics
var (
	// Logins tracks completed OAuth logins by outcome
	Logins = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inkwell_logins_total",
			Help: "Total OAuth logins by outcome (created, updated, failed)",
		},
		[]string{"outcome"},
	)

	// TokenVerifications tracks bearer token verification results
	TokenVerifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inkwell_token_verifications_total",
			Help: "Total bearer token verifications by result",
		},
		[]string{"result"},
	)

	// SessionsCleaned tracks expired login sessions removed by the janitor
	SessionsCleaned = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "inkwell_sessions_cleaned_total",
			Help: "Total expired login sessions removed",
		},
	)
)
