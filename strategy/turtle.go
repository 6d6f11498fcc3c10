package strategy

import (
	"math"
	"sync"
	"time"

	"github.com/evdnx/goti"
	"github.com/evdnx/turtle/config"
	"github.com/evdnx/turtle/executor"
	"github.com/evdnx/turtle/indicator"
	"github.com/evdnx/turtle/logger"
	"github.com/evdnx/turtle/metrics"
	"github.com/evdnx/turtle/types"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// symbolState holds the indicators of one symbol.
type symbolState struct {
	entry    *indicator.Channel
	exit     *indicator.Channel
	atr      indicator.Volatility
	suite    *goti.IndicatorSuite
	last     types.Bar
	hasBar   bool
	realized float64
}

// Turtle implements Turtle Trading System 2: 55-day breakout entries, 20-day
// channel exits, 2N stops, pyramiding by 1N up to MaxUnits, and sizing from
// drawdown-throttled equity.
type Turtle struct {
	*BaseStrategy

	mu      sync.Mutex
	symbols []string
	states  map[string]*symbolState
	book    *positionBook
	today   []TradeEvent
	history []TradeEvent
}

// NewTurtle wires the default ATR and, when cfg.TrendContext is set, a goti
// trend suite per symbol.
func NewTurtle(symbols []string, cfg config.TurtleConfig,
	exec executor.Executor, log logger.Logger) (*Turtle, error) {

	var suites SuiteFactory
	if cfg.TrendContext {
		suites = DefaultSuiteFactory()
	}
	return NewTurtleWithFactories(symbols, cfg, exec, log, indicator.NewATRFactory(), suites)
}

// NewTurtleWithFactories lets callers supply the volatility estimator and the
// trend suite. A nil suiteFactory disables trend context.
func NewTurtleWithFactories(symbols []string, cfg config.TurtleConfig,
	exec executor.Executor, log logger.Logger,
	volFactory indicator.VolatilityFactory, suiteFactory SuiteFactory) (*Turtle, error) {

	if len(symbols) == 0 {
		return nil, errors.New("at least one symbol is required")
	}
	if volFactory == nil {
		return nil, errors.New("volatility factory is required")
	}
	base, err := NewBaseStrategy(cfg, exec, log)
	if err != nil {
		return nil, err
	}
	t := &Turtle{
		BaseStrategy: base,
		states:       make(map[string]*symbolState, len(symbols)),
		book:         newPositionBook(),
	}
	for _, sym := range symbols {
		if _, dup := t.states[sym]; dup {
			continue
		}
		st, err := newSymbolState(cfg, volFactory, suiteFactory)
		if err != nil {
			return nil, errors.Wrapf(err, "indicators for %s", sym)
		}
		t.symbols = append(t.symbols, sym)
		t.states[sym] = st
	}
	return t, nil
}

func newSymbolState(cfg config.TurtleConfig, volFactory indicator.VolatilityFactory, suiteFactory SuiteFactory) (*symbolState, error) {
	entry, err := indicator.NewChannel(cfg.EntryPeriod)
	if err != nil {
		return nil, err
	}
	exit, err := indicator.NewChannel(cfg.ExitPeriod)
	if err != nil {
		return nil, err
	}
	atr, err := volFactory(cfg.ATRPeriod)
	if err != nil {
		return nil, err
	}
	st := &symbolState{entry: entry, exit: exit, atr: atr}
	if suiteFactory != nil {
		suite, err := suiteFactory()
		if err != nil {
			return nil, errors.Wrap(err, "trend suite")
		}
		st.suite = suite
	}
	return st, nil
}

// Symbols returns the traded symbols in configuration order.
func (t *Turtle) Symbols() []string {
	return append([]string(nil), t.symbols...)
}

// ProcessSlice processes one trading day's bars, one per symbol, in order.
// Configured symbols without a bar that day still get the integrity check,
// priced at their last close.
func (t *Turtle) ProcessSlice(bars []types.Bar) {
	if len(bars) == 0 {
		return
	}
	present := make(map[string]bool, len(bars))
	for _, b := range bars {
		present[b.Symbol] = true
	}
	t.checkMissing(present, bars[0].Time)
	for _, b := range bars {
		t.ProcessBar(b)
	}
}

func (t *Turtle) checkMissing(present map[string]bool, at time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, sym := range t.symbols {
		if present[sym] {
			continue
		}
		st := t.states[sym]
		b := types.Bar{Symbol: sym}
		if st.hasBar {
			b = st.last
		} else {
			_, avg := t.Exec.Position(sym)
			b.Open, b.High, b.Low, b.Close = avg, avg, avg, avg
		}
		b.Time = at
		t.checkIntegrity(b)
	}
}

// ProcessBar updates the symbol's indicators and runs, in order: the
// integrity check, the readiness gate, then either the entry rules (flat)
// or exit, stop and pyramid rules (invested), all against this close.
func (t *Turtle) ProcessBar(b types.Bar) {
	t.mu.Lock()
	defer t.mu.Unlock()

	st, ok := t.states[b.Symbol]
	if !ok {
		t.Log.Warn("unknown_symbol", logger.String("symbol", b.Symbol))
		return
	}
	st.entry.Update(b)
	st.exit.Update(b)
	st.atr.Update(b)
	t.feedTrend(st, b)
	st.last = b
	st.hasBar = true

	if !t.checkIntegrity(b) {
		return
	}
	if !st.entry.Ready() || !st.exit.Ready() || !st.atr.Ready() {
		return
	}
	n := st.atr.Value()

	pos, invested := t.book.get(b.Symbol)
	if !invested {
		t.evaluateEntry(b, st, n)
		return
	}
	t.managePosition(b, st, pos, n)
}

// checkIntegrity enforces "holding ⇔ tracked stop". A holding without a
// tracked position is liquidated and the bar is consumed; tracking without
// a holding is dropped.
func (t *Turtle) checkIntegrity(b types.Bar) bool {
	qty, _ := t.Exec.Position(b.Symbol)
	pos, tracked := t.book.get(b.Symbol)

	switch {
	case qty != 0 && (!tracked || math.Signbit(qty) != (pos.Direction == Short)):
		t.Log.Error("integrity_violation",
			logger.String("symbol", b.Symbol),
			logger.Float64("qty", qty),
			logger.Bool("tracked", tracked),
		)
		metrics.IntegrityViolations.WithLabelValues(b.Symbol).Inc()
		t.liquidate(b, EventIntegrity)
		return false
	case qty == 0 && tracked:
		t.Log.Warn("stale_position_cleared",
			logger.String("symbol", b.Symbol),
			logger.Int("units", pos.Units()),
		)
		t.book.clear(b.Symbol)
		t.syncGauges(b.Symbol)
	}
	return true
}

func (t *Turtle) evaluateEntry(b types.Bar, st *symbolState, n float64) {
	switch {
	case b.Close >= st.entry.Upper():
		t.Log.Info("breakout_long",
			logger.String("symbol", b.Symbol),
			logger.Float64("close", b.Close),
			logger.Float64("entry_upper", st.entry.Upper()),
		)
		t.enter(b, Long, n)
	case b.Close <= st.entry.Lower():
		t.Log.Info("breakout_short",
			logger.String("symbol", b.Symbol),
			logger.Float64("close", b.Close),
			logger.Float64("entry_lower", st.entry.Lower()),
		)
		t.enter(b, Short, n)
	}
}

func (t *Turtle) managePosition(b types.Bar, st *symbolState, pos *Position, n float64) {
	exitHit := (pos.Direction == Long && b.Close <= st.exit.Lower()) ||
		(pos.Direction == Short && b.Close >= st.exit.Upper())
	if exitHit {
		t.liquidate(b, EventExit)
		return
	}
	if pos.StopHit(b.Close) {
		t.liquidate(b, EventStop)
		return
	}
	if pos.Units() < t.Cfg.MaxUnits && pos.AddTriggered(b.Close, n) {
		t.addUnit(b, pos, n)
	}
}

// stopFor places the stop ATRMultiplier*N against the direction.
func (t *Turtle) stopFor(dir Direction, price, n float64) float64 {
	return price - dir.sign()*n*t.Cfg.ATRMultiplier
}

// affordable reports whether shares at price fit in the available cash.
func (t *Turtle) affordable(b types.Bar, shares int, reason string) bool {
	cost := float64(shares) * b.Close
	if cash := t.Exec.Cash(); cost > cash {
		t.Log.Warn("order_skipped_insufficient_cash",
			logger.String("symbol", b.Symbol),
			logger.String("reason", reason),
			logger.Int("shares", shares),
			logger.Float64("cost", cost),
			logger.Float64("cash", cash),
		)
		metrics.OrdersSkipped.WithLabelValues("insufficient_cash").Inc()
		return false
	}
	return true
}

func (t *Turtle) enter(b types.Bar, dir Direction, n float64) {
	stop := t.stopFor(dir, b.Close, n)
	shares := t.calcQty(b.Close, stop)
	if !t.affordable(b, shares, string(EventEnter)) {
		return
	}
	o := types.MarketOrder(b.Symbol, dir.sign()*float64(shares), b.Close)
	o.Comment = "turtle entry " + dir.String()
	if err := t.submitOrder(o, string(EventEnter)); err != nil {
		return
	}
	pos := t.book.openPosition(b.Symbol, dir, b.Close, stop, b.Time)
	t.syncGauges(b.Symbol)
	t.record(TradeEvent{
		Time:      b.Time,
		Symbol:    b.Symbol,
		Kind:      EventEnter,
		Direction: dir,
		Quantity:  o.Signed(),
		Price:     b.Close,
		Stop:      stop,
		Units:     pos.Units(),
	})
}

func (t *Turtle) addUnit(b types.Bar, pos *Position, n float64) {
	stop := t.stopFor(pos.Direction, b.Close, n)
	shares := t.calcQty(b.Close, stop)
	if !t.affordable(b, shares, string(EventAdd)) {
		return
	}
	o := types.MarketOrder(b.Symbol, pos.Direction.sign()*float64(shares), b.Close)
	o.Comment = "turtle add " + pos.Direction.String()
	if err := t.submitOrder(o, string(EventAdd)); err != nil {
		return
	}
	pos.addUnit(b.Close, stop)
	t.syncGauges(b.Symbol)
	t.record(TradeEvent{
		Time:      b.Time,
		Symbol:    b.Symbol,
		Kind:      EventAdd,
		Direction: pos.Direction,
		Quantity:  o.Signed(),
		Price:     b.Close,
		Stop:      stop,
		Units:     pos.Units(),
	})
}

// liquidate closes the whole holding at the bar's close and clears the
// tracked position. On a failed order the state is left untouched.
func (t *Turtle) liquidate(b types.Bar, kind EventKind) {
	qty, avg, err := t.closePosition(b.Symbol, b.Close, string(kind))
	if err != nil || qty == 0 {
		return
	}
	// The closed holding decides the side, even when tracking disagreed.
	dir := Long
	if qty < 0 {
		dir = Short
	}
	pnl := (b.Close - avg) * qty
	pct := 0.0
	if basis := math.Abs(avg * qty); basis != 0 {
		pct = pnl / basis * 100
	}
	t.book.clear(b.Symbol)
	if st, ok := t.states[b.Symbol]; ok {
		st.realized += pnl
	}
	metrics.RealizedPnL.WithLabelValues(b.Symbol).Add(pnl)
	t.syncGauges(b.Symbol)

	t.Log.Info("position_closed",
		logger.String("symbol", b.Symbol),
		logger.String("kind", string(kind)),
		logger.Float64("price", b.Close),
		logger.Float64("qty", qty),
		logger.Float64("pnl", pnl),
		logger.Float64("pnl_pct", pct),
	)
	t.record(TradeEvent{
		Time:      b.Time,
		Symbol:    b.Symbol,
		Kind:      kind,
		Direction: dir,
		Quantity:  -qty,
		Price:     b.Close,
		PnL:       pnl,
		PnLPct:    pct,
	})
}

func (t *Turtle) record(e TradeEvent) {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	t.today = append(t.today, e)
	t.history = append(t.history, e)
}

func (t *Turtle) syncGauges(symbol string) {
	metrics.PositionsOpen.Set(float64(t.book.len()))
	units := 0
	if pos, ok := t.book.get(symbol); ok {
		units = pos.Units()
	}
	metrics.PyramidUnits.WithLabelValues(symbol).Set(float64(units))
}

// State returns the symbol's state-machine side.
func (t *Turtle) State(symbol string) Direction {
	t.mu.Lock()
	defer t.mu.Unlock()
	if pos, ok := t.book.get(symbol); ok {
		return pos.Direction
	}
	return Flat
}

// Position returns a copy of the tracked position of symbol.
func (t *Turtle) Position(symbol string) (Position, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	pos, ok := t.book.get(symbol)
	if !ok {
		return Position{}, false
	}
	return pos.clone(), true
}

// Events returns every trade event since construction.
func (t *Turtle) Events() []TradeEvent {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]TradeEvent(nil), t.history...)
}

// RealizedPnL sums realised profit and loss over all symbols.
func (t *Turtle) RealizedPnL() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	total := 0.0
	for _, st := range t.states {
		total += st.realized
	}
	return total
}
