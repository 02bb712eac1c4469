// Package metrics defines the Prometheus collectors exported on /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "billsplit"

// Extraction results.
const (
	ExtractionOK        = "ok"
	ExtractionTruncated = "truncated"
	ExtractionFailed    = "error"
)

// Metrics holds the service collectors. A nil *Metrics records nothing.
type Metrics struct {
	rpcDuration     *prometheus.HistogramVec
	sessionsStarted prometheus.Counter
	sessionsEnded   prometheus.Counter
	settlements     prometheus.Counter
	extractions     *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		rpcDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "rpc_duration_seconds",
			Help:      "Duration of RPC calls by procedure and result code.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"procedure", "code"}),
		sessionsStarted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_started_total",
			Help:      "Sessions created.",
		}),
		sessionsEnded: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_ended_total",
			Help:      "Sessions deleted by their owner.",
		}),
		settlements: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "settlements_total",
			Help:      "Sessions settled.",
		}),
		extractions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "extractions_total",
			Help:      "Receipt extractions by result.",
		}, []string{"result"}),
	}
}

// ObserveRPC records one RPC call.
func (m *Metrics) ObserveRPC(procedure, code string, d time.Duration) {
	if m == nil {
		return
	}
	m.rpcDuration.WithLabelValues(procedure, code).Observe(d.Seconds())
}

// SessionStarted counts a new session.
func (m *Metrics) SessionStarted() {
	if m == nil {
		return
	}
	m.sessionsStarted.Inc()
}

// SessionEnded counts a deleted session.
func (m *Metrics) SessionEnded() {
	if m == nil {
		return
	}
	m.sessionsEnded.Inc()
}

// Settled counts a settlement.
func (m *Metrics) Settled() {
	if m == nil {
		return
	}
	m.settlements.Inc()
}

// Extraction counts an extraction attempt with the given result.
func (m *Metrics) Extraction(result string) {
	if m == nil {
		return
	}
	m.extractions.WithLabelValues(result).Inc()
}
