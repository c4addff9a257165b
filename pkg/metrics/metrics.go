package metrics

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// SyncMetrics records per-channel sync attempts and order fulfillment
// outcomes.
type SyncMetrics struct {
	syncDuration *prometheus.HistogramVec
	syncAttempts *prometheus.CounterVec
	orders       *prometheus.CounterVec
}

// NewSyncMetrics registers the sync metrics on the provided registerer.
func NewSyncMetrics(reg prometheus.Registerer) *SyncMetrics {
	if reg == nil {
		return &SyncMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "channel_sync_duration_seconds",
		Help:    "Duration of per-channel sync attempts in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"resource", "direction"})
	attempts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "channel_sync_attempts_total",
		Help: "Per-channel sync attempts by resource and outcome.",
	}, []string{"resource", "direction", "outcome"})
	orders := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "order_fulfillment_total",
		Help: "Order fulfillment attempts by outcome.",
	}, []string{"outcome"})
	reg.MustRegister(duration, attempts, orders)
	return &SyncMetrics{
		syncDuration: duration,
		syncAttempts: attempts,
		orders:       orders,
	}
}

// ObserveSync records one per-channel sync attempt.
func (m *SyncMetrics) ObserveSync(resource, direction, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	if m.syncDuration != nil {
		m.syncDuration.WithLabelValues(normalizeLabel(resource), normalizeLabel(direction)).Observe(duration.Seconds())
	}
	if m.syncAttempts != nil {
		m.syncAttempts.WithLabelValues(normalizeLabel(resource), normalizeLabel(direction), normalizeLabel(outcome)).Inc()
	}
}

// IncOrder records one order fulfillment outcome.
func (m *SyncMetrics) IncOrder(outcome string) {
	if m == nil || m.orders == nil {
		return
	}
	m.orders.WithLabelValues(normalizeLabel(outcome)).Inc()
}

func normalizeLabel(value string) string {
	trimmed := strings.TrimSpace(strings.ToLower(value))
	if trimmed == "" {
		return "unknown"
	}
	return strings.ReplaceAll(trimmed, " ", "_")
}
