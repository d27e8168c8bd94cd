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

	// ConversationsTotal tracks conversations created per platform.
	ConversationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "conversations_total",
			Help: "Total conversations created",
		},
		[]string{"platform"},
	)

	// MessagesTotal tracks messages recorded per platform and direction.
	MessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "messages_total",
			Help: "Total messages recorded",
		},
		[]string{"platform", "direction"},
	)

	// PublicationsTotal tracks social posts per platform and outcome.
	PublicationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "publications_total",
			Help: "Total social publications attempted",
		},
		[]string{"platform", "status"},
	)

	// ContentGenerationsTotal tracks AI caption generations per model.
	ContentGenerationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "content_generations_total",
			Help: "Total AI content generations",
		},
		[]string{"model"},
	)

	// PairingSessionsStarted counts WhatsApp pairing sessions opened.
	PairingSessionsStarted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "whatsapp_pairing_sessions_started_total",
			Help: "WhatsApp pairing sessions started",
		},
	)

	// PairingSessionsCompleted counts WhatsApp pairings that reached the
	// connected state.
	PairingSessionsCompleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "whatsapp_pairing_sessions_completed_total",
			Help: "WhatsApp pairing sessions completed",
		},
	)

	// PairingStreamsActive tracks active pairing event streams.
	PairingStreamsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "whatsapp_pairing_streams_active",
			Help: "Number of active pairing event streams",
		},
	)
)

// RecordRequest records metrics for an HTTP request.
func RecordRequest(method, path, status string, duration float64) {
	RequestDuration.WithLabelValues(method, path, status).Observe(duration)
	RequestsTotal.WithLabelValues(method, path, status).Inc()
}
