// Package monitoring exposes Prometheus metrics for the terminal core.
package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics. A nil *Metrics is valid and
// records nothing, so components can run unmetered in tests.
type Metrics struct {
	// Session metrics
	SessionsActive  prometheus.Gauge
	SessionsCreated prometheus.Counter
	SessionsRemoved prometheus.Counter

	// Connection metrics
	ReconnectAttempts  prometheus.Counter
	ReconnectFailures  prometheus.Counter
	WritesDropped      prometheus.Counter
	TransportConnected prometheus.Gauge

	// Event metrics
	EventsPublished *prometheus.CounterVec

	// UI boundary metrics
	WSClients  prometheus.Gauge
	WSMessages *prometheus.CounterVec

	// System metrics
	Uptime    prometheus.Gauge
	startTime time.Time
}

// NewMetrics creates and registers the metrics collector.
func NewMetrics() *Metrics {
	return &Metrics{
		startTime: time.Now(),

		SessionsActive: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "termcore_sessions_active",
				Help: "Number of live terminal sessions",
			},
		),
		SessionsCreated: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "termcore_sessions_created_total",
				Help: "Total number of sessions created",
			},
		),
		SessionsRemoved: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "termcore_sessions_removed_total",
				Help: "Total number of sessions removed",
			},
		),

		ReconnectAttempts: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "termcore_reconnect_attempts_total",
				Help: "Total number of host reconnect attempts",
			},
		),
		ReconnectFailures: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "termcore_reconnect_failures_total",
				Help: "Times the reconnect retry cap was exhausted",
			},
		),
		WritesDropped: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "termcore_writes_dropped_total",
				Help: "Queued writes dropped due to the per-session bound",
			},
		),
		TransportConnected: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "termcore_transport_connected",
				Help: "Whether the host transport is connected (0 or 1)",
			},
		),

		EventsPublished: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "termcore_events_published_total",
				Help: "Events published on the notification bus",
			},
			[]string{"type"},
		),

		WSClients: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "termcore_ws_clients",
				Help: "Number of connected UI WebSocket clients",
			},
		),
		WSMessages: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "termcore_ws_messages_total",
				Help: "UI WebSocket messages by direction and type",
			},
			[]string{"direction", "type"},
		),

		Uptime: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "termcore_uptime_seconds",
				Help: "Process uptime in seconds",
			},
		),
	}
}

// RecordSessionCreated tracks a new session.
func (m *Metrics) RecordSessionCreated() {
	if m == nil {
		return
	}
	m.SessionsCreated.Inc()
	m.SessionsActive.Inc()
}

// RecordSessionRemoved tracks session removal.
func (m *Metrics) RecordSessionRemoved() {
	if m == nil {
		return
	}
	m.SessionsRemoved.Inc()
	m.SessionsActive.Dec()
}

// RecordReconnectAttempt tracks one reconnect dial.
func (m *Metrics) RecordReconnectAttempt() {
	if m == nil {
		return
	}
	m.ReconnectAttempts.Inc()
}

// RecordReconnectFailure tracks retry-cap exhaustion.
func (m *Metrics) RecordReconnectFailure() {
	if m == nil {
		return
	}
	m.ReconnectFailures.Inc()
}

// RecordDroppedWrite tracks a queued write evicted by the bound.
func (m *Metrics) RecordDroppedWrite() {
	if m == nil {
		return
	}
	m.WritesDropped.Inc()
}

// RecordEvent tracks a published event by type.
func (m *Metrics) RecordEvent(eventType string) {
	if m == nil {
		return
	}
	m.EventsPublished.WithLabelValues(eventType).Inc()
}

// SetTransportConnected tracks the connection state gauge.
func (m *Metrics) SetTransportConnected(connected bool) {
	if m == nil {
		return
	}
	if connected {
		m.TransportConnected.Set(1)
	} else {
		m.TransportConnected.Set(0)
	}
}

// WSClientConnected tracks a new UI client.
func (m *Metrics) WSClientConnected() {
	if m == nil {
		return
	}
	m.WSClients.Inc()
}

// WSClientDisconnected tracks a UI client leaving.
func (m *Metrics) WSClientDisconnected() {
	if m == nil {
		return
	}
	m.WSClients.Dec()
}

// RecordWSMessage tracks a UI message by direction and type.
func (m *Metrics) RecordWSMessage(direction, msgType string) {
	if m == nil {
		return
	}
	m.WSMessages.WithLabelValues(direction, msgType).Inc()
}

// UpdateUptime refreshes the uptime gauge.
func (m *Metrics) UpdateUptime() {
	if m == nil {
		return
	}
	m.Uptime.Set(time.Since(m.startTime).Seconds())
}
