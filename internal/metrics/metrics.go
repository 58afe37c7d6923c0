// Package metrics exposes Prometheus collectors for the round engine.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	roundsCompleted *prometheus.CounterVec
	joins           prometheus.Counter
	joinsRejected   *prometheus.CounterVec
	potValue        prometheus.Histogram
	payouts         *prometheus.CounterVec
	transitionRetry prometheus.Counter
	activeObservers prometheus.Gauge
}

// New creates the collectors and registers them with reg
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		roundsCompleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "jackpot",
			Name:      "rounds_completed_total",
			Help:      "Rounds sealed as completed, by outcome.",
		}, []string{"outcome"}),
		joins: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "jackpot",
			Name:      "joins_total",
			Help:      "Accepted join requests.",
		}),
		joinsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "jackpot",
			Name:      "joins_rejected_total",
			Help:      "Rejected join requests, by reason.",
		}, []string{"reason"}),
		potValue: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "jackpot",
			Name:      "pot_value_usd",
			Help:      "Total value of completed rounds.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		}),
		payouts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "jackpot",
			Name:      "payouts_total",
			Help:      "Trade offers by destination kind and final status.",
		}, []string{"kind", "status"}),
		transitionRetry: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "jackpot",
			Name:      "transition_conflicts_total",
			Help:      "Conditional round writes that lost a race and re-read state.",
		}),
		activeObservers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "jackpot",
			Name:      "active_observers",
			Help:      "Connected realtime observers.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.roundsCompleted, m.joins, m.joinsRejected, m.potValue, m.payouts, m.transitionRetry, m.activeObservers)
	}
	return m
}

// RoundCompleted counts a sealed round
func (m *Metrics) RoundCompleted(outcome string, value float64) {
	if m == nil {
		return
	}
	m.roundsCompleted.WithLabelValues(outcome).Inc()
	m.potValue.Observe(value)
}

// JoinAccepted counts an accepted join
func (m *Metrics) JoinAccepted() {
	if m == nil {
		return
	}
	m.joins.Inc()
}

// JoinRejected counts a rejected join
func (m *Metrics) JoinRejected(reason string) {
	if m == nil {
		return
	}
	m.joinsRejected.WithLabelValues(reason).Inc()
}

// Payout counts a payout reaching a status
func (m *Metrics) Payout(kind, status string) {
	if m == nil {
		return
	}
	m.payouts.WithLabelValues(kind, status).Inc()
}

// TransitionConflict counts a lost conditional write
func (m *Metrics) TransitionConflict() {
	if m == nil {
		return
	}
	m.transitionRetry.Inc()
}

// SetActiveObservers records the number of connected observers
func (m *Metrics) SetActiveObservers(n int) {
	if m == nil {
		return
	}
	m.activeObservers.Set(float64(n))
}
