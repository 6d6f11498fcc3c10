package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	OrdersSubmitted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "turtle_orders_submitted_total",
			Help: "Total number of orders filled, by reason (entry, add, exit, stop, integrity).",
		},
		[]string{"reason"},
	)

	OrdersSkipped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "turtle_orders_skipped_total",
			Help: "Orders not placed because of cash or executor errors.",
		},
		[]string{"reason"},
	)

	PositionsOpen = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "turtle_positions_open",
			Help: "Current number of tracked positions.",
		},
	)

	PyramidUnits = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "turtle_pyramid_units",
			Help: "Units held per symbol (0 when flat).",
		},
		[]string{"symbol"},
	)

	RealizedPnL = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "turtle_realized_pnl",
			Help: "Cumulative realized profit and loss per symbol.",
		},
		[]string{"symbol"},
	)

	IntegrityViolations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "turtle_integrity_violations_total",
			Help: "Holdings found without a tracked stop and force-liquidated.",
		},
		[]string{"symbol"},
	)

	EquityGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "turtle_equity",
			Help: "Current total equity of the executor (paper or live).",
		},
	)

	EffectiveEquityGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "turtle_effective_equity",
			Help: "Drawdown-throttled equity used for position sizing.",
		},
	)

	PeakEquityGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "turtle_peak_equity",
			Help: "Equity peak the drawdown map is built from.",
		},
	)
)

func init() {
	prometheus.MustRegister(OrdersSubmitted, OrdersSkipped, PositionsOpen, PyramidUnits,
		RealizedPnL, IntegrityViolations, EquityGauge, EffectiveEquityGauge, PeakEquityGauge)
}
