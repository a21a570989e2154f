package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "nature_translator"

// Classification sources
const (
	SourceStream = "stream"
	SourceUpload = "upload"
)

// Metrics holds every collector the server reports
type Metrics struct {
	// Business metrics
	ClassificationsTotal  *prometheus.CounterVec
	ClassificationLatency *prometheus.HistogramVec
	UploadsTotal          *prometheus.CounterVec

	// Stream metrics
	ActiveConnections prometheus.Gauge
	MessagesTotal     *prometheus.CounterVec
	SessionsClosed    *prometheus.CounterVec
}

// New registers the collectors with reg. Pass prometheus.DefaultRegisterer
// in production and a fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		ClassificationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "classifications_total",
			Help:      "Classifications produced, by source and animal",
		}, []string{"source", "animal"}),

		ClassificationLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "classification_duration_seconds",
			Help:      "Time spent in the classifier",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10),
		}, []string{"source"}),

		UploadsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "uploads_total",
			Help:      "Upload requests, by outcome",
		}, []string{"status"}),

		ActiveConnections: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "ws_active_connections",
			Help:      "Open streaming connections",
		}),

		MessagesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ws_messages_total",
			Help:      "Streaming messages, by direction",
		}, []string{"direction"}),

		SessionsClosed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ws_sessions_closed_total",
			Help:      "Closed streaming sessions, by reason",
		}, []string{"reason"}),
	}
}

// Nop returns metrics registered on a throwaway registry
func Nop() *Metrics {
	return New(prometheus.NewRegistry())
}
