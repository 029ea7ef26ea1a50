// Package metrics provides Prometheus metrics instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestDuration tracks HTTP request duration.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)

	// RequestsTotal tracks total HTTP requests.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// ChatRequestDuration tracks round trips to the chatbot backend.
	ChatRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chat_request_duration_seconds",
			Help:    "Chatbot backend request duration",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 20, 30, 60},
		},
		[]string{"status"},
	)

	// ChatRequestsTotal tracks total requests issued to the chatbot backend.
	ChatRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_requests_total",
			Help: "Total chatbot backend requests",
		},
		[]string{"status"},
	)

	// StaleResultsDropped counts completions discarded because a newer
	// request superseded them.
	StaleResultsDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_stale_results_dropped_total",
			Help: "Chat completions discarded due to a superseding request",
		},
	)

	// DuplicatesSuppressed counts bot messages skipped by the duplicate guard.
	DuplicatesSuppressed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_duplicate_completions_suppressed_total",
			Help: "Bot messages skipped by the duplicate completion guard",
		},
	)

	// SubmissionsRejected counts submissions rejected at the controller
	// boundary, by reason.
	SubmissionsRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_submissions_rejected_total",
			Help: "Submissions rejected before a request was issued",
		},
		[]string{"reason"},
	)

	// ConversationsTotal tracks total conversations created.
	ConversationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "conversations_total",
			Help: "Total conversations created",
		},
	)

	// MessagesTotal tracks total messages appended, by sender.
	MessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "messages_total",
			Help: "Total messages appended to conversation logs",
		},
		[]string{"sender"},
	)
)

// RecordRequest records metrics for an HTTP request.
func RecordRequest(method, path, status string, duration float64) {
	RequestDuration.WithLabelValues(method, path, status).Observe(duration)
	RequestsTotal.WithLabelValues(method, path, status).Inc()
}

// RecordChatRequest records metrics for one chatbot backend round trip.
func RecordChatRequest(status string, duration float64) {
	ChatRequestDuration.WithLabelValues(status).Observe(duration)
	ChatRequestsTotal.WithLabelValues(status).Inc()
}
