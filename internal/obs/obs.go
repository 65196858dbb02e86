// Package obs carries the observability stack for the replay tooling:
// structured logging via go.uber.org/zap and simple cumulative
// Prometheus counters/gauges. It deliberately stops short of latency
// histograms or any per-operation timing - the engine's hot path is
// never instrumented from here.
package obs

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// NewLogger builds the module's standard structured logger. Production
// callers get JSON output; tests and local replay tools can use
// NewDevelopmentLogger instead.
func NewLogger() (*zap.Logger, error) {
	return zap.NewProduction()
}

// NewDevelopmentLogger builds a human-readable console logger, for
// cmd/lobctl's interactive use.
func NewDevelopmentLogger() (*zap.Logger, error) {
	return zap.NewDevelopment()
}

// Metrics holds the cumulative counters and gauges a replay/backtest
// run exposes. These are intentionally simple accumulators - no
// latency histograms, no percentile tracking.
type Metrics struct {
	CommandsProcessed *prometheus.CounterVec
	TradesTotal       prometheus.Counter
	RejectsTotal      *prometheus.CounterVec
	OrdersResting     prometheus.Gauge
	BestBid           prometheus.Gauge
	BestAsk           prometheus.Gauge
}

// NewMetrics registers a fresh Metrics set against registry.
func NewMetrics(registry prometheus.Registerer) *Metrics {
	m := &Metrics{
		CommandsProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lob_commands_processed_total",
			Help: "Total commands processed, labeled by kind (place/cancel/modify).",
		}, []string{"kind"}),
		TradesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lob_trades_total",
			Help: "Total trade events emitted by the matcher.",
		}),
		RejectsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lob_rejects_total",
			Help: "Total rejected commands, labeled by reason.",
		}, []string{"reason"}),
		OrdersResting: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "lob_orders_resting",
			Help: "Current number of resting orders in the book.",
		}),
		BestBid: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "lob_best_bid",
			Help: "Current best bid price, or 0 if the bid side is empty.",
		}),
		BestAsk: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "lob_best_ask",
			Help: "Current best ask price, or 0 if the ask side is empty.",
		}),
	}

	registry.MustRegister(
		m.CommandsProcessed,
		m.TradesTotal,
		m.RejectsTotal,
		m.OrdersResting,
		m.BestBid,
		m.BestAsk,
	)

	return m
}

// ObserveBest updates the best-bid/best-ask gauges; callers pass 0 for
// a missing side, matching Prometheus's "no such thing as absent" gauge model.
func (m *Metrics) ObserveBest(bid, ask uint64) {
	m.BestBid.Set(float64(bid))
	m.BestAsk.Set(float64(ask))
}
