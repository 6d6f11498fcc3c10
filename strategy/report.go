package strategy

import (
	"math"
	"time"

	"github.com/evdnx/turtle/logger"
	"github.com/evdnx/turtle/risk"
)

// reportLevels is how many drawdown levels a report carries.
const reportLevels = 5

// HoldingReport describes one tracked holding at report time.
type HoldingReport struct {
	Symbol        string
	Direction     Direction
	Quantity      float64
	AvgPrice      float64
	LastPrice     float64
	MarketValue   float64 // absolute
	Stop          float64
	ExitLevel     float64 // exit-channel bound that would close the position
	Units         int
	UnrealizedPnL float64
	UnrealizedPct float64 // relative to market value, in percent
	Trend         *TrendSnapshot
}

// Report is the end-of-day summary.
type Report struct {
	Time            time.Time
	Equity          float64
	Cash            float64
	HoldingsValue   float64
	EffectiveEquity float64
	PeakEquity      float64
	Levels          []risk.Level
	Holdings        []HoldingReport
	Untracked       []string // holdings without a tracked stop
	Trades          []TradeEvent
}

// DailyReport snapshots positions and throttle state and hands over the
// day's trade events, which are then reset. It does not move the equity
// peak or touch any position.
func (t *Turtle) DailyReport(at time.Time) Report {
	t.mu.Lock()
	defer t.mu.Unlock()

	eq := t.Exec.Equity()
	r := Report{
		Time:            at,
		Equity:          eq,
		Cash:            t.Exec.Cash(),
		EffectiveEquity: t.Throttle.Peek(eq),
		PeakEquity:      t.Throttle.Peak(),
		Trades:          t.today,
	}
	levels := t.Throttle.Levels()
	if len(levels) > reportLevels {
		levels = levels[:reportLevels]
	}
	r.Levels = levels
	t.today = nil

	for _, sym := range t.symbols {
		qty, avg := t.Exec.Position(sym)
		if qty == 0 {
			continue
		}
		st := t.states[sym]
		last := avg
		if st.hasBar {
			last = st.last.Close
		}
		value := math.Abs(qty * last)
		r.HoldingsValue += value

		pos, ok := t.book.get(sym)
		if !ok {
			r.Untracked = append(r.Untracked, sym)
			continue
		}
		h := HoldingReport{
			Symbol:        sym,
			Direction:     pos.Direction,
			Quantity:      qty,
			AvgPrice:      avg,
			LastPrice:     last,
			MarketValue:   value,
			Stop:          pos.Stop,
			Units:         pos.Units(),
			UnrealizedPnL: (last - avg) * qty,
			Trend:         trendSnapshot(st.suite),
		}
		if value != 0 {
			h.UnrealizedPct = h.UnrealizedPnL / value * 100
		}
		if pos.Direction == Long {
			h.ExitLevel = st.exit.Lower()
		} else {
			h.ExitLevel = st.exit.Upper()
		}
		r.Holdings = append(r.Holdings, h)
	}
	return r
}

// LogReport writes a report as structured log lines.
func LogReport(log logger.Logger, r Report) {
	log.Info("daily_report",
		logger.Time("at", r.Time),
		logger.Float64("equity", r.Equity),
		logger.Float64("cash", r.Cash),
		logger.Float64("holdings_value", r.HoldingsValue),
		logger.Float64("effective_equity", r.EffectiveEquity),
		logger.Float64("peak_equity", r.PeakEquity),
		logger.Int("trades", len(r.Trades)),
	)
	for _, sym := range r.Untracked {
		log.Warn("holding_without_stop", logger.String("symbol", sym))
	}
	for _, h := range r.Holdings {
		fields := []logger.Field{
			logger.String("symbol", h.Symbol),
			logger.String("direction", h.Direction.String()),
			logger.Float64("qty", h.Quantity),
			logger.Float64("avg_price", h.AvgPrice),
			logger.Float64("last_price", h.LastPrice),
			logger.Float64("market_value", h.MarketValue),
			logger.Float64("stop", h.Stop),
			logger.Float64("exit_level", h.ExitLevel),
			logger.Int("units", h.Units),
			logger.Float64("unrealized_pnl", h.UnrealizedPnL),
			logger.Float64("unrealized_pct", h.UnrealizedPct),
		}
		if h.Trend != nil {
			fields = append(fields,
				logger.Bool("rsi_ready", h.Trend.RSIReady),
				logger.Float64("rsi", h.Trend.RSI),
				logger.Bool("hma_bullish", h.Trend.HMABullish),
				logger.Bool("hma_bearish", h.Trend.HMABearish),
			)
		}
		log.Info("holding", fields...)
	}
	for _, e := range r.Trades {
		log.Info("trade",
			logger.String("id", e.ID),
			logger.String("symbol", e.Symbol),
			logger.String("kind", string(e.Kind)),
			logger.String("direction", e.Direction.String()),
			logger.Float64("qty", e.Quantity),
			logger.Float64("price", e.Price),
			logger.Float64("stop", e.Stop),
			logger.Int("units", e.Units),
			logger.Float64("pnl", e.PnL),
			logger.Float64("pnl_pct", e.PnLPct),
		)
	}
	for _, l := range r.Levels {
		log.Info("drawdown_level",
			logger.Float64("actual", l.Actual),
			logger.Float64("effective", l.Effective),
		)
	}
}
