package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	SignalsGenerated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_signals_generated_total",
			Help: "Total number of entry signals generated (by side).",
		},
		[]string{"symbol", "side"},
	)

	OrdersSubmitted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_orders_submitted_total",
			Help: "Total number of orders submitted (by symbol).",
		},
		[]string{"symbol"},
	)

	OrdersRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_orders_rejected_total",
			Help: "Total number of orders rejected by the risk gate.",
		},
		[]string{"symbol"},
	)

	PositionsOpen = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "bot_positions_open",
			Help: "Current number of open positions.",
		},
	)

	TrailingStopExits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_trailing_stop_exits_total",
			Help: "Positions closed by the trailing stop (by symbol).",
		},
		[]string{"symbol"},
	)

	EquityGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "bot_equity",
			Help: "Current equity of the executor (paper or live).",
		},
	)
)

func init() {
	prometheus.MustRegister(
		SignalsGenerated,
		OrdersSubmitted,
		OrdersRejected,
		PositionsOpen,
		TrailingStopExits,
		EquityGauge,
	)
}
