// Package backtest replays historical daily bars through the Turtle engine
// against a paper account.
package backtest

import (
	"context"
	"sort"
	"time"

	"github.com/evdnx/turtle/executor"
	"github.com/evdnx/turtle/logger"
	"github.com/evdnx/turtle/metrics"
	"github.com/evdnx/turtle/strategy"
	"github.com/evdnx/turtle/types"
	"github.com/pkg/errors"
)

// Account is an executor whose holdings can be marked to market.
type Account interface {
	executor.Executor
	Mark(symbol string, price float64)
}

// Summary is the outcome of one replay.
type Summary struct {
	Days        int
	StartEquity float64
	EndEquity   float64
	PeakEquity  float64
	MaxDrawdown float64 // fraction of the running peak
	RealizedPnL float64
	Trades      int // liquidations
	Orders      int // filled orders, entries and adds included
}

// Runner drives a Turtle day by day. The strategy must trade through
// Account.
type Runner struct {
	Strategy *strategy.Turtle
	Account  Account
	Log      logger.Logger
}

func NewRunner(t *strategy.Turtle, acct Account, log logger.Logger) *Runner {
	if log == nil {
		log = logger.NewNop()
	}
	return &Runner{Strategy: t, Account: acct, Log: log}
}

// Run marks the account at each day's closes, processes that day's bars
// and emits the daily report. Cancelling ctx stops between days and
// returns the summary so far together with the context error.
func (r *Runner) Run(ctx context.Context, bars []types.Bar) (Summary, error) {
	if r.Strategy == nil || r.Account == nil {
		return Summary{}, errors.New("backtest: strategy and account are required")
	}
	if len(bars) == 0 {
		return Summary{}, errors.New("backtest: no bars")
	}
	days := groupByDay(bars)

	start := r.Account.Equity()
	sum := Summary{StartEquity: start, EndEquity: start, PeakEquity: start}
	for _, day := range days {
		if err := ctx.Err(); err != nil {
			r.finish(&sum)
			return sum, errors.Wrap(err, "backtest cancelled")
		}
		for _, b := range day {
			r.Account.Mark(b.Symbol, b.Close)
		}
		r.Strategy.ProcessSlice(day)

		rep := r.Strategy.DailyReport(day[0].Time)
		strategy.LogReport(r.Log, rep)
		metrics.EquityGauge.Set(rep.Equity)

		sum.Days++
		sum.EndEquity = rep.Equity
		if rep.Equity > sum.PeakEquity {
			sum.PeakEquity = rep.Equity
		}
		if sum.PeakEquity > 0 {
			if dd := (sum.PeakEquity - rep.Equity) / sum.PeakEquity; dd > sum.MaxDrawdown {
				sum.MaxDrawdown = dd
			}
		}
	}
	r.finish(&sum)
	return sum, nil
}

func (r *Runner) finish(sum *Summary) {
	events := r.Strategy.Events()
	sum.Orders = len(events)
	sum.Trades = 0
	for _, e := range events {
		if e.Liquidation() {
			sum.Trades++
		}
	}
	sum.RealizedPnL = r.Strategy.RealizedPnL()
	r.Log.Info("backtest_complete",
		logger.Int("days", sum.Days),
		logger.Float64("start_equity", sum.StartEquity),
		logger.Float64("end_equity", sum.EndEquity),
		logger.Float64("max_drawdown", sum.MaxDrawdown),
		logger.Float64("realized_pnl", sum.RealizedPnL),
		logger.Int("trades", sum.Trades),
		logger.Int("orders", sum.Orders),
	)
}

// groupByDay sorts bars by time and splits them into calendar days (UTC).
func groupByDay(bars []types.Bar) [][]types.Bar {
	sorted := append([]types.Bar(nil), bars...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Time.Before(sorted[j].Time) })

	var out [][]types.Bar
	var cur time.Time
	for _, b := range sorted {
		d := b.Time.UTC().Truncate(24 * time.Hour)
		if len(out) == 0 || !d.Equal(cur) {
			out = append(out, nil)
			cur = d
		}
		out[len(out)-1] = append(out[len(out)-1], b)
	}
	return out
}
