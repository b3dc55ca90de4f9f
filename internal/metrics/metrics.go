// Package metrics exposes Prometheus counters/gauges/histogram for the
// arena server, grounded verbatim on the teacher's
// internal/metrics/metrics.go promauto style — the same
// promauto.NewCounter/NewGauge/NewHistogram calls, renamed from
// websocket/message concepts to connection/match/combat concepts. The
// teacher's EnhancedMetrics/SimpleMetrics/ConnectionTracker trio (three
// competing metrics abstractions covering the same concern) is not
// carried forward.
package metrics

import (
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds every counter/gauge/histogram the reactor updates, plus
// the match-duration observer the engine drives.
type Metrics struct {
	connectionsTotal  prometheus.Counter
	connectionsActive prometheus.Gauge
	connectionErrors  prometheus.Counter

	matchesStarted  prometheus.Counter
	matchesFinished prometheus.Counter
	matchDuration   prometheus.Histogram

	attacksTotal    prometheus.Counter
	powerMovesTotal prometheus.Counter
	itemsUsedTotal  *prometheus.CounterVec

	startTime    time.Time
	activeClients int64 // atomic
}

// New registers and returns a fresh Metrics. Call once per process; a
// second call would panic on duplicate registration, matching
// promauto's own behaviour.
func New() *Metrics {
	return &Metrics{
		startTime: time.Now(),

		connectionsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "arena_connections_total",
			Help: "Total number of accepted connections.",
		}),
		connectionsActive: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "arena_connections_active",
			Help: "Number of currently connected clients.",
		}),
		connectionErrors: promauto.NewCounter(prometheus.CounterOpts{
			Name: "arena_connection_errors_total",
			Help: "Total number of per-connection read errors other than EOF.",
		}),
		matchesStarted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "arena_matches_started_total",
			Help: "Total number of matches begun by the matcher.",
		}),
		matchesFinished: promauto.NewCounter(prometheus.CounterOpts{
			Name: "arena_matches_finished_total",
			Help: "Total number of matches resolved, by victory or forfeit.",
		}),
		matchDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "arena_match_duration_seconds",
			Help:    "Wall-clock duration of resolved matches.",
			Buckets: prometheus.DefBuckets,
		}),
		attacksTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "arena_attacks_total",
			Help: "Total number of attack commands resolved.",
		}),
		powerMovesTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "arena_power_moves_total",
			Help: "Total number of power move commands resolved.",
		}),
		itemsUsedTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "arena_items_used_total",
			Help: "Total number of items consumed, by item type.",
		}, []string{"item"}),
	}
}

// ConnectionAccepted records a newly admitted socket.
func (m *Metrics) ConnectionAccepted() {
	m.connectionsTotal.Inc()
	m.connectionsActive.Inc()
	atomic.AddInt64(&m.activeClients, 1)
}

// ConnectionClosed records a removed socket.
func (m *Metrics) ConnectionClosed() {
	m.connectionsActive.Dec()
	atomic.AddInt64(&m.activeClients, -1)
}

// ConnectionError records a read failure other than EOF. Write errors
// are not counted.
func (m *Metrics) ConnectionError() {
	m.connectionErrors.Inc()
}

// AttackUsed implements engine.Observer.
func (m *Metrics) AttackUsed() {
	m.attacksTotal.Inc()
}

// PowerMoveUsed implements engine.Observer.
func (m *Metrics) PowerMoveUsed() {
	m.powerMovesTotal.Inc()
}

// ItemUsed implements engine.Observer.
func (m *Metrics) ItemUsed(item string) {
	m.itemsUsedTotal.WithLabelValues(item).Inc()
}

// MatchStarted implements engine.Observer. a and b are unused here —
// Prometheus cardinality per-player would be unbounded — but are kept in
// the signature so one Observer interface serves both metrics and the
// event bus.
func (m *Metrics) MatchStarted(a, b string) {
	m.matchesStarted.Inc()
}

// MatchFinished implements engine.Observer. duration is computed by the
// engine from the match's own start time (see internal/client.Client's
// MatchStartedAt) so concurrent matches never share mutable state here.
func (m *Metrics) MatchFinished(winner, loser string, forfeit bool, duration time.Duration) {
	m.matchesFinished.Inc()
	m.matchDuration.Observe(duration.Seconds())
}

// ActiveConnections returns the current connection count.
func (m *Metrics) ActiveConnections() int64 {
	return atomic.LoadInt64(&m.activeClients)
}

// Uptime returns how long this process has been running.
func (m *Metrics) Uptime() time.Duration {
	return time.Since(m.startTime)
}
