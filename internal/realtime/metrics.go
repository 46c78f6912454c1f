package realtime

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the broadcast-domain instrumentation.
// A nil *Metrics is valid everywhere and records nothing.
type Metrics struct {
	ConnectionsOpen prometheus.Gauge
	BroadcastsTotal prometheus.Counter
	DeliveriesTotal prometheus.Counter
	DropsTotal      prometheus.Counter
}

// NewMetrics registers the realtime metrics on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		ConnectionsOpen: f.NewGauge(prometheus.GaugeOpts{
			Name: "chat_connections_open",
			Help: "Number of currently registered connections.",
		}),
		BroadcastsTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "chat_broadcasts_total",
			Help: "Inbound messages accepted for broadcast.",
		}),
		DeliveriesTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "chat_deliveries_total",
			Help: "Per-recipient deliveries enqueued.",
		}),
		DropsTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "chat_delivery_drops_total",
			Help: "Per-recipient deliveries dropped (backpressure or closing connection).",
		}),
	}
}

func (m *Metrics) connInc() {
	if m != nil {
		m.ConnectionsOpen.Inc()
	}
}

func (m *Metrics) connDec() {
	if m != nil {
		m.ConnectionsOpen.Dec()
	}
}

func (m *Metrics) broadcast() {
	if m != nil {
		m.BroadcastsTotal.Inc()
	}
}

func (m *Metrics) delivered() {
	if m != nil {
		m.DeliveriesTotal.Inc()
	}
}

func (m *Metrics) dropped() {
	if m != nil {
		m.DropsTotal.Inc()
	}
}
