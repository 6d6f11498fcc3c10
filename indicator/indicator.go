// Package indicator holds the rolling-window indicators the Turtle rules
// read: the Donchian channel and the ATR volatility estimate ("N").
package indicator

import "github.com/evdnx/turtle/types"

// Indicator is the capability shared by every per-symbol indicator: it is
// fed exactly one bar per trading day and reports whether it has warmed up.
type Indicator interface {
	Update(b types.Bar) bool
	Ready() bool
}

// Volatility is an indicator producing a single smoothed scalar.
// Value must not be read before Ready reports true.
type Volatility interface {
	Indicator
	Value() float64
}

// VolatilityFactory builds one estimator per symbol.
type VolatilityFactory func(period int) (Volatility, error)

// NewATRFactory is the default VolatilityFactory.
func NewATRFactory() VolatilityFactory {
	return func(period int) (Volatility, error) {
		return NewATR(period)
	}
}
