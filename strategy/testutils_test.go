package strategy

import (
	"testing"
	"time"

	"github.com/evdnx/turtle/config"
	"github.com/evdnx/turtle/indicator"
	"github.com/evdnx/turtle/testutils"
	"github.com/evdnx/turtle/types"
)

const testSymbol = "TEST"

// fixedVolatility is a volatility estimator with a constant N, so the tests
// control stop distance and pyramid spacing directly.
type fixedVolatility struct {
	n     float64
	ready bool
}

func (f *fixedVolatility) Update(types.Bar) bool { return f.ready }
func (f *fixedVolatility) Ready() bool { return f.ready }
func (f *fixedVolatility) Value() float64 { return f.n }

func fixedN(n float64, ready bool) indicator.VolatilityFactory {
	return func(int) (indicator.Volatility, error) {
		return &fixedVolatility{n: n, ready: ready}, nil
	}
}

// buildConfig returns System 2 defaults with short channels (entry 3,
// exit 2) so scenarios need only a handful of bars.
func buildConfig() config.TurtleConfig {
	cfg := config.Default()
	cfg.Symbols = []string{testSymbol}
	cfg.EntryPeriod = 3
	cfg.ExitPeriod = 2
	cfg.TrendContext = false
	return cfg
}

// buildTurtle creates a mock executor with startCash, a mock logger and a
// Turtle whose N is fixed at n.
func buildTurtle(t *testing.T, cfg config.TurtleConfig, startCash, n float64) (*Turtle, *testutils.MockExecutor, *testutils.MockLogger) {
	t.Helper()
	mockExec := testutils.NewMockExecutor(startCash)
	mockLog := testutils.NewMockLogger()
	tt, err := NewTurtleWithFactories(cfg.Symbols, cfg, mockExec, mockLog, fixedN(n, true), nil)
	if err != nil {
		t.Fatalf("NewTurtleWithFactories failed: %v", err)
	}
	return tt, mockExec, mockLog
}

var day0 = time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

// barAt builds a bar for testSymbol on the i-th day.
func barAt(i int, high, low, close float64) types.Bar {
	return types.Bar{
		Symbol: testSymbol,
		Time:   day0.AddDate(0, 0, i),
		Open:   close,
		High:   high,
		Low:    low,
		Close:  close,
		Volume: 1000,
	}
}

// feed sends bars to the strategy, numbering days from start.
func feed(p BarProcessor, start int, bars ...types.Bar) {
	for i, b := range bars {
		if b.Time.IsZero() {
			b.Time = day0.AddDate(0, 0, start+i)
		}
		p.ProcessBar(b)
	}
}

// risingEntry feeds closes 100, 101, 102 with high == close, which breaks the
// 3-bar high on the third bar.
func risingEntry(tt *Turtle) {
	feed(tt, 0,
		barAt(0, 100, 99.5, 100),
		barAt(1, 101, 100.5, 101),
		barAt(2, 102, 101.5, 102),
	)
}

// fallingEntry feeds closes 100, 99, 98 with low == close, which breaks the
// 3-bar low on the third bar.
func fallingEntry(tt *Turtle) {
	feed(tt, 0,
		barAt(0, 100.5, 100, 100),
		barAt(1, 99.5, 99, 99),
		barAt(2, 98.5, 98, 98),
	)
}
