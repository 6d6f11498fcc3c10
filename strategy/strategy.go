package strategy

import (
	"time"

	"github.com/evdnx/turtle/types"
)

// BarProcessor is anything fed one daily bar at a time.
type BarProcessor interface {
	ProcessBar(b types.Bar)
}

// EventKind names what a TradeEvent did to a position.
type EventKind string

const (
	EventEnter     EventKind = "enter"
	EventAdd       EventKind = "add"
	EventExit      EventKind = "exit"
	EventStop      EventKind = "stop"
	EventIntegrity EventKind = "integrity"
)

// TradeEvent records one filled order and its effect on the position.
type TradeEvent struct {
	ID        string
	Time      time.Time
	Symbol    string
	Kind      EventKind
	Direction Direction
	Quantity  float64 // signed shares of the order
	Price     float64
	Stop      float64 // stop after the event; 0 once flat
	Units     int     // units after the event
	PnL       float64 // realised, liquidations only
	PnLPct    float64 // PnL relative to |avg entry * qty|, in percent
}

// Liquidation reports whether the event closed a position.
func (e TradeEvent) Liquidation() bool {
	return e.Kind == EventExit || e.Kind == EventStop || e.Kind == EventIntegrity
}
