package types

import (
	"math"
	"time"
)

type Side string

const (
	Buy  Side = "BUY"
	Sell Side = "SELL"
)

type Order struct {
	ID     string
	Symbol string
	Side   Side
	Qty    float64
	Price  float64 // expected fill (the triggering close); orders are market orders
	// meta
	Comment string
}

// MarketOrder maps a signed share quantity onto Side/Qty: positive buys,
// negative sells.
func MarketOrder(symbol string, signedQty, price float64) Order {
	side := Buy
	if signedQty < 0 {
		side = Sell
	}
	return Order{
		Symbol: symbol,
		Side:   side,
		Qty:    math.Abs(signedQty),
		Price:  price,
	}
}

// Signed returns the order quantity with the sign of its side.
func (o Order) Signed() float64 {
	if o.Side == Sell {
		return -o.Qty
	}
	return o.Qty
}

// Bar is one daily OHLCV sample for a symbol.
type Bar struct {
	Symbol string
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}
