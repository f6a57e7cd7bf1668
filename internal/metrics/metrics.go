// Package metrics exposes runtime indicators to Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/roach88/treasury/internal/runtime"
	"github.com/roach88/treasury/internal/types"
)

const namespace = "treasury"

// Metrics implements runtime.Observer.
type Metrics struct {
	callsApplied   *prometheus.CounterVec
	callsRejected  *prometheus.CounterVec
	events         *prometheus.CounterVec
	headBlock      prometheus.Gauge
	blockCalls     prometheus.Histogram
	budgetBalances *prometheus.GaugeVec
}

var _ runtime.Observer = (*Metrics)(nil)

// New registers the runtime indicators with reg.
func New(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		callsApplied: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "calls_applied_total",
				Help:      "Calls included in a block, by method and result.",
			},
			[]string{"method", "result"},
		),
		callsRejected: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "calls_rejected_total",
				Help:      "Calls rejected before dispatch, by method and error code.",
			},
			[]string{"method", "code"},
		),
		events: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "events_total",
				Help:      "Events emitted, by module and name.",
			},
			[]string{"module", "name"},
		),
		headBlock: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "finalized_block",
				Help:      "Number of the last finalized block.",
			},
		),
		blockCalls: promauto.With(reg).NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "block_calls",
				Help:      "Calls included per finalized block.",
				Buckets:   prometheus.ExponentialBuckets(1, 2, 8),
			},
		),
		budgetBalances: promauto.With(reg).NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "budget_balance",
				Help:      "Budget balance after the last finalized block.",
			},
			[]string{"budget"},
		),
	}
}

func (m *Metrics) CallApplied(method, result string) {
	m.callsApplied.WithLabelValues(method, result).Inc()
}

func (m *Metrics) CallRejected(method string, code runtime.ErrorCode) {
	m.callsRejected.WithLabelValues(method, string(code)).Inc()
}

func (m *Metrics) EventEmitted(module, name string) {
	m.events.WithLabelValues(module, name).Inc()
}

func (m *Metrics) BlockFinalized(block types.BlockNumber, calls int) {
	m.headBlock.Set(float64(block))
	m.blockCalls.Observe(float64(calls))
}

func (m *Metrics) BudgetBalance(budgetType string, balance types.Balance) {
	m.budgetBalances.WithLabelValues(budgetType).Set(float64(balance))
}
