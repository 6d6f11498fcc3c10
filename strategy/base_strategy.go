package strategy

import (
	"github.com/evdnx/turtle/config"
	"github.com/evdnx/turtle/executor"
	"github.com/evdnx/turtle/logger"
	"github.com/evdnx/turtle/metrics"
	"github.com/evdnx/turtle/risk"
	"github.com/evdnx/turtle/types"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// BaseStrategy bundles the common dependencies and helpers.
type BaseStrategy struct {
	Exec     executor.Executor
	Log      logger.Logger
	Cfg      config.TurtleConfig
	Throttle *risk.Throttle
}

// NewBaseStrategy validates the config and seeds the drawdown throttle with
// the executor's current equity.
func NewBaseStrategy(cfg config.TurtleConfig, exec executor.Executor, log logger.Logger) (*BaseStrategy, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if exec == nil {
		return nil, errors.New("executor is required")
	}
	if log == nil {
		log = logger.NewNop()
	}
	start := exec.Equity()
	metrics.PeakEquityGauge.Set(start)
	return &BaseStrategy{
		Exec:     exec,
		Log:      log,
		Cfg:      cfg,
		Throttle: risk.NewThrottle(start, cfg.DrawdownFloor, cfg.DrawdownActualStep, cfg.DrawdownEffectiveStep),
	}, nil
}

// submitOrder is a thin wrapper that records metrics and logs.
func (b *BaseStrategy) submitOrder(o types.Order, reason string) error {
	if o.ID == "" {
		o.ID = uuid.New().String()
	}
	err := b.Exec.Submit(o)
	if err != nil {
		skip := "executor_error"
		if errors.Is(err, executor.ErrInsufficientCash) {
			skip = "insufficient_cash"
		}
		metrics.OrdersSkipped.WithLabelValues(skip).Inc()
		b.Log.Error("order_submit_failed",
			logger.String("id", o.ID),
			logger.String("symbol", o.Symbol),
			logger.String("side", string(o.Side)),
			logger.Float64("qty", o.Qty),
			logger.String("reason", reason),
			logger.Err(err),
		)
		return err
	}
	b.Log.Info("order_submitted",
		logger.String("id", o.ID),
		logger.String("symbol", o.Symbol),
		logger.String("side", string(o.Side)),
		logger.Float64("qty", o.Qty),
		logger.Float64("price", o.Price),
		logger.String("reason", reason),
	)
	metrics.OrdersSubmitted.WithLabelValues(reason).Inc()
	return nil
}

// effectiveEquity reads total equity through the drawdown throttle.
func (b *BaseStrategy) effectiveEquity() float64 {
	eq := b.Exec.Equity()
	eff := b.Throttle.EffectiveEquity(eq)
	metrics.EquityGauge.Set(eq)
	metrics.EffectiveEquityGauge.Set(eff)
	metrics.PeakEquityGauge.Set(b.Throttle.Peak())
	return eff
}

// calcQty sizes one unit for an entry at price with the given stop.
func (b *BaseStrategy) calcQty(price, stop float64) int {
	return risk.PositionSize(b.effectiveEquity(), b.Cfg.RiskPerTrade, price, stop, b.Cfg.MinShares)
}

// closePosition flattens the executor holding at the supplied price and
// returns the quantity and average price that were closed.
func (b *BaseStrategy) closePosition(symbol string, price float64, reason string) (qty, avg float64, err error) {
	qty, avg = b.Exec.Position(symbol)
	if qty == 0 {
		return 0, 0, nil
	}
	o := types.MarketOrder(symbol, -qty, price)
	o.Comment = reason
	if err := b.submitOrder(o, reason); err != nil {
		return 0, 0, err
	}
	return qty, avg, nil
}
