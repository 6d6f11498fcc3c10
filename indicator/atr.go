package indicator

import (
	"github.com/evdnx/goti"
	"github.com/evdnx/turtle/types"
	"github.com/pkg/errors"
)

// ATR is goti's average true range: the simple mean of the true range over
// the last Period bars. The first bar only seeds the previous close, so the
// estimate is ready after Period+1 bars. Candles goti rejects (high below
// low, non-positive prices) are skipped.
type ATR struct {
	atr *goti.AverageTrueRange
}

func NewATR(period int) (*ATR, error) {
	a, err := goti.NewAverageTrueRangeWithParams(period, goti.WithCloseValidation(false))
	if err != nil {
		return nil, errors.Wrapf(err, "ATR period %d", period)
	}
	return &ATR{atr: a}, nil
}

func (a *ATR) Update(b types.Bar) bool {
	_ = a.atr.AddCandle(b.High, b.Low, b.Close)
	return a.Ready()
}

func (a *ATR) Ready() bool {
	_, err := a.atr.Calculate()
	return err == nil
}

// Value is the latest ATR, 0 before ready.
func (a *ATR) Value() float64 {
	v, err := a.atr.Calculate()
	if err != nil {
		return 0
	}
	return v
}
