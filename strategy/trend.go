package strategy

import (
	"github.com/evdnx/goti"
	"github.com/evdnx/turtle/logger"
	"github.com/evdnx/turtle/types"
)

// SuiteFactory builds the goti suite that supplies per-symbol trend context.
type SuiteFactory func() (*goti.IndicatorSuite, error)

// DefaultSuiteFactory returns a suite with goti's default thresholds.
func DefaultSuiteFactory() SuiteFactory {
	return func() (*goti.IndicatorSuite, error) {
		ic := goti.DefaultConfig()
		return goti.NewIndicatorSuiteWithConfig(ic)
	}
}

// TrendSnapshot is informational only; it never gates a trade.
type TrendSnapshot struct {
	RSI        float64
	RSIReady   bool
	HMABullish bool
	HMABearish bool
}

// feedTrend adds the bar to the symbol's suite. A failing suite is dropped
// for the rest of the run so it cannot flood the log.
func (t *Turtle) feedTrend(st *symbolState, b types.Bar) {
	if st.suite == nil {
		return
	}
	if err := st.suite.Add(b.High, b.Low, b.Close, b.Volume); err != nil {
		t.Log.Warn("trend_context_disabled",
			logger.String("symbol", b.Symbol),
			logger.Err(err),
		)
		st.suite = nil
	}
}

func trendSnapshot(suite *goti.IndicatorSuite) *TrendSnapshot {
	if suite == nil {
		return nil
	}
	snap := &TrendSnapshot{}
	if v, err := suite.GetRSI().Calculate(); err == nil {
		snap.RSI = v
		snap.RSIReady = true
	}
	if ok, err := suite.GetHMA().IsBullishCrossover(); err == nil {
		snap.HMABullish = ok
	}
	if ok, err := suite.GetHMA().IsBearishCrossover(); err == nil {
		snap.HMABearish = ok
	}
	return snap
}
