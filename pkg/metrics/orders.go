package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// OrderMetrics counts order lifecycle events on the API side.
type OrderMetrics struct {
	created       *prometheus.CounterVec
	statusChanges *prometheus.CounterVec
	publishFailed prometheus.Counter
}

// NewOrderMetrics registers the order metrics on the provided registerer.
func NewOrderMetrics(reg prometheus.Registerer) *OrderMetrics {
	if reg == nil {
		return &OrderMetrics{}
	}
	created := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_created_total",
		Help: "Orders created, by payment method.",
	}, []string{"payment_method"})
	statusChanges := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "order_status_changes_total",
		Help: "Order status updates, by target status.",
	}, []string{"status"})
	publishFailed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "order_event_publish_failures_total",
		Help: "Order events that could not be published to the broker.",
	})
	reg.MustRegister(created, statusChanges, publishFailed)
	return &OrderMetrics{created: created, statusChanges: statusChanges, publishFailed: publishFailed}
}

// IncCreated increments the created counter for the payment method.
func (m *OrderMetrics) IncCreated(method string) {
	if m == nil || m.created == nil {
		return
	}
	m.created.WithLabelValues(normalizeLabel(method)).Inc()
}

// IncStatusChange increments the status change counter.
func (m *OrderMetrics) IncStatusChange(status string) {
	if m == nil || m.statusChanges == nil {
		return
	}
	m.statusChanges.WithLabelValues(normalizeLabel(status)).Inc()
}

// IncPublishFailure increments the broker publish failure counter.
func (m *OrderMetrics) IncPublishFailure() {
	if m == nil || m.publishFailed == nil {
		return
	}
	m.publishFailed.Inc()
}
