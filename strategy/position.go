package strategy

import "time"

// Direction is the side of a symbol's state machine.
type Direction int

const (
	Flat  Direction = 0
	Long  Direction = 1
	Short Direction = -1
)

func (d Direction) String() string {
	switch d {
	case Long:
		return "long"
	case Short:
		return "short"
	default:
		return "flat"
	}
}

// sign is +1 for long, -1 for short.
func (d Direction) sign() float64 { return float64(d) }

// Position is the tracked state of one open, possibly pyramided, trade.
type Position struct {
	Symbol    string
	Direction Direction
	// EntryPrices holds one fill price per unit, oldest first.
	EntryPrices  []float64
	Stop         float64
	LastAddPrice float64
	OpenedAt     time.Time
}

func (p *Position) Units() int { return len(p.EntryPrices) }

// StopHit reports whether close has reached the stop.
func (p *Position) StopHit(close float64) bool {
	if p.Direction == Long {
		return close <= p.Stop
	}
	return close >= p.Stop
}

// AddTriggered reports whether price moved n in the position's favour since
// the last unit was added.
func (p *Position) AddTriggered(close, n float64) bool {
	if p.Direction == Long {
		return close >= p.LastAddPrice+n
	}
	return close <= p.LastAddPrice-n
}

// addUnit appends a unit and moves the stop of the whole position to the
// latest unit's stop.
func (p *Position) addUnit(price, stop float64) {
	p.EntryPrices = append(p.EntryPrices, price)
	p.LastAddPrice = price
	p.Stop = stop
}

func (p *Position) clone() Position {
	out := *p
	out.EntryPrices = append([]float64(nil), p.EntryPrices...)
	return out
}

// positionBook holds at most one Position per symbol. A symbol has a stop
// exactly when it has an entry here.
type positionBook struct {
	open map[string]*Position
}

func newPositionBook() *positionBook {
	return &positionBook{open: make(map[string]*Position)}
}

func (b *positionBook) get(symbol string) (*Position, bool) {
	p, ok := b.open[symbol]
	return p, ok
}

func (b *positionBook) openPosition(symbol string, dir Direction, price, stop float64, at time.Time) *Position {
	p := &Position{
		Symbol:       symbol,
		Direction:    dir,
		EntryPrices:  []float64{price},
		Stop:         stop,
		LastAddPrice: price,
		OpenedAt:     at,
	}
	b.open[symbol] = p
	return p
}

func (b *positionBook) clear(symbol string) {
	delete(b.open, symbol)
}

func (b *positionBook) len() int { return len(b.open) }
