package testutils

import (
	"math"
	"sync"

	"github.com/evdnx/turtle/executor"
	"github.com/evdnx/turtle/types"
)

// MockExecutor implements the Executor interface in‑memory.
type MockExecutor struct {
	mu        sync.RWMutex
	cash      float64
	positions map[string]float64 // qty (signed)
	avgPrice  map[string]float64
	marks     map[string]float64
	orders    []types.Order // captured for assertions
	rejected  []types.Order
}

// NewMockExecutor creates a fresh executor with the supplied starting cash.
func NewMockExecutor(startCash float64) *MockExecutor {
	return &MockExecutor{
		cash:      startCash,
		positions: make(map[string]float64),
		avgPrice:  make(map[string]float64),
		marks:     make(map[string]float64),
	}
}

// Submit records the order and updates cash/position exactly like PaperExecutor.
func (m *MockExecutor) Submit(o types.Order) error {
	if o.Qty == 0 {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	prev := m.positions[o.Symbol]
	delta := o.Signed()
	adds := prev == 0 || math.Signbit(prev) == math.Signbit(delta)
	if adds && o.Price*o.Qty > m.cash {
		m.rejected = append(m.rejected, o)
		return executor.ErrInsufficientCash
	}
	m.cash -= delta * o.Price
	next := prev + delta
	switch {
	case next == 0:
		delete(m.avgPrice, o.Symbol)
	case adds:
		m.avgPrice[o.Symbol] = (m.avgPrice[o.Symbol]*math.Abs(prev) + o.Price*o.Qty) / math.Abs(next)
	case math.Signbit(prev) != math.Signbit(next):
		m.avgPrice[o.Symbol] = o.Price
	}
	m.positions[o.Symbol] = next
	m.marks[o.Symbol] = o.Price
	m.orders = append(m.orders, o)
	return nil
}

// SetPosition injects a holding that did not come through Submit.
func (m *MockExecutor) SetPosition(symbol string, qty, avg float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.positions[symbol] = qty
	m.avgPrice[symbol] = avg
	m.marks[symbol] = avg
}

// SetCash overrides the cash balance.
func (m *MockExecutor) SetCash(cash float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cash = cash
}

// Mark sets the valuation price of a symbol.
func (m *MockExecutor) Mark(symbol string, price float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.marks[symbol] = price
}

// Cash returns the current cash balance.
func (m *MockExecutor) Cash() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cash
}

// Equity returns cash plus marked holdings.
func (m *MockExecutor) Equity() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	eq := m.cash
	for sym, qty := range m.positions {
		eq += qty * m.marks[sym]
	}
	return eq
}

// Position returns qty & avg price for a symbol.
func (m *MockExecutor) Position(symbol string) (float64, float64) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.positions[symbol], m.avgPrice[symbol]
}

// Orders returns a copy of all filled orders (useful for assertions).
func (m *MockExecutor) Orders() []types.Order {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]types.Order, len(m.orders))
	copy(out, m.orders)
	return out
}

// Rejected returns the orders refused for lack of cash.
func (m *MockExecutor) Rejected() []types.Order {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]types.Order, len(m.rejected))
	copy(out, m.rejected)
	return out
}
