package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus instruments for the webhook server.
type Metrics struct {
	Outcomes        *prometheus.CounterVec
	Rejections      *prometheus.CounterVec
	PipelineSeconds prometheus.Histogram
	Unauthorized    prometheus.Counter
}

// NewMetrics registers the webhook metrics on the given registerer. Passing
// nil uses the default registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		Outcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pennywise",
			Name:      "messages_total",
			Help:      "Processed messages by terminal outcome.",
		}, []string{"outcome"}),
		Rejections: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pennywise",
			Name:      "rejections_total",
			Help:      "Rejected messages by rejection code.",
		}, []string{"code"}),
		PipelineSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "pennywise",
			Name:      "pipeline_duration_seconds",
			Help:      "Wall time spent processing one message end to end.",
			Buckets:   prometheus.DefBuckets,
		}),
		Unauthorized: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "pennywise",
			Name:      "unauthorized_requests_total",
			Help:      "Webhook requests that failed verification.",
		}),
	}
}

func (m *Metrics) observeAccepted() {
	m.Outcomes.WithLabelValues("accepted").Inc()
}

func (m *Metrics) observeRejected(code string) {
	m.Outcomes.WithLabelValues("rejected").Inc()
	m.Rejections.WithLabelValues(code).Inc()
}
