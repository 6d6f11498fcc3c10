package executor

import (
	"math"
	"sync"

	"github.com/evdnx/turtle/types"
	"github.com/pkg/errors"
)

// ErrInsufficientCash is returned when an order that adds exposure costs
// more than the available cash.
var ErrInsufficientCash = errors.New("insufficient cash")

type Executor interface {
	Submit(o types.Order) error
	// Cash is the uninvested balance.
	Cash() float64
	// Equity is the total account value: cash plus marked holdings.
	Equity() float64
	Position(symbol string) (qty float64, avgPrice float64)
}

// Very simple paper‑trader – perfect fills at Order.Price, no slippage.
type PaperExecutor struct {
	mu        sync.RWMutex
	cash      float64
	positions map[string]float64 // qty (positive = long, negative = short)
	avgPrice  map[string]float64
	marks     map[string]float64 // last known price per symbol
}

func NewPaperExecutor(startCash float64) *PaperExecutor {
	return &PaperExecutor{
		cash:      startCash,
		positions: make(map[string]float64),
		avgPrice:  make(map[string]float64),
		marks:     make(map[string]float64),
	}
}

func (p *PaperExecutor) Submit(o types.Order) error {
	if o.Qty == 0 {
		return nil
	}
	if o.Qty < 0 || o.Price <= 0 {
		return errors.Errorf("paper executor: invalid order qty=%v price=%v", o.Qty, o.Price)
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	prevQty := p.positions[o.Symbol]
	delta := o.Signed()
	cost := o.Price * o.Qty
	if adds := prevQty == 0 || math.Signbit(prevQty) == math.Signbit(delta); adds && cost > p.cash {
		return errors.Wrapf(ErrInsufficientCash, "%s %s %.4f @ %.2f needs %.2f, have %.2f",
			o.Side, o.Symbol, o.Qty, o.Price, cost, p.cash)
	}

	p.cash -= delta * o.Price
	p.positions[o.Symbol] = applyFill(prevQty, delta, o.Price, p.avgPrice, o.Symbol)
	p.marks[o.Symbol] = o.Price
	return nil
}

// applyFill updates the average price and returns the new signed quantity.
// Adding to a position blends the average (VWAP); reducing keeps it; a flip
// restarts it at the fill price.
func applyFill(prevQty, delta, price float64, avg map[string]float64, sym string) float64 {
	newQty := prevQty + delta
	switch {
	case newQty == 0:
		delete(avg, sym)
	case prevQty == 0 || math.Signbit(prevQty) == math.Signbit(delta):
		avg[sym] = (avg[sym]*math.Abs(prevQty) + price*math.Abs(delta)) / math.Abs(newQty)
	case math.Signbit(prevQty) != math.Signbit(newQty):
		avg[sym] = price
	}
	return newQty
}

// Mark records the latest price of a symbol for equity valuation.
func (p *PaperExecutor) Mark(symbol string, price float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.marks[symbol] = price
}

func (p *PaperExecutor) Cash() float64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.cash
}

func (p *PaperExecutor) Equity() float64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	eq := p.cash
	for sym, qty := range p.positions {
		eq += qty * p.marks[sym]
	}
	return eq
}

func (p *PaperExecutor) Position(sym string) (float64, float64) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.positions[sym], p.avgPrice[sym]
}
