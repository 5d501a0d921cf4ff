package metrics

import "github.com/prometheus/client_golang/prometheus"

const (
	OutboxResultPublished = "published"
	OutboxResultRetry     = "retry"
	OutboxResultDead      = "dead"
)

// OutboxMetrics tracks the relay from outbox_events to the broker.
type OutboxMetrics struct {
	relayed *prometheus.CounterVec
	pending prometheus.Gauge
	dead    prometheus.Gauge
}

// NewOutboxMetrics registers the outbox metrics on the provided registerer.
func NewOutboxMetrics(reg prometheus.Registerer) *OutboxMetrics {
	if reg == nil {
		return &OutboxMetrics{}
	}
	relayed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "outbox_events_relayed_total",
		Help: "Outbox rows handled by the relay, by event type and result.",
	}, []string{"event_type", "result"})
	pending := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "outbox_events_pending",
		Help: "Unpublished outbox rows that will still be retried.",
	})
	dead := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "outbox_events_dead",
		Help: "Unpublished outbox rows that exhausted their attempts.",
	})
	reg.MustRegister(relayed, pending, dead)
	return &OutboxMetrics{relayed: relayed, pending: pending, dead: dead}
}

func (o *OutboxMetrics) IncRelayed(eventType, result string) {
	if o == nil || o.relayed == nil {
		return
	}
	o.relayed.WithLabelValues(normalizeLabel(eventType), normalizeLabel(result)).Inc()
}

// SetBacklog records the latest pending and dead row counts.
func (o *OutboxMetrics) SetBacklog(pending, dead int64) {
	if o == nil || o.pending == nil {
		return
	}
	o.pending.Set(float64(pending))
	o.dead.Set(float64(dead))
}
