package indicator

import (
	"fmt"

	"github.com/evdnx/turtle/types"
)

// Channel is a Donchian channel: the highest high and lowest low of the last
// Period bars.
type Channel struct {
	period int
	highs  *window
	lows   *window
	count  int
}

func NewChannel(period int) (*Channel, error) {
	if period <= 0 {
		return nil, fmt.Errorf("channel period must be positive, got %d", period)
	}
	return &Channel{
		period: period,
		highs:  newWindow(period),
		lows:   newWindow(period),
	}, nil
}

// Update adds the bar's high and low and reports readiness.
func (c *Channel) Update(b types.Bar) bool {
	return c.Add(b.High, b.Low)
}

// Add is Update for a bare high/low pair.
func (c *Channel) Add(high, low float64) bool {
	c.highs.Add(high)
	c.lows.Add(low)
	c.count++
	return c.Ready()
}

func (c *Channel) Ready() bool { return c.count >= c.period }

// Upper is the max of the windowed highs; 0 before any sample.
func (c *Channel) Upper() float64 { return c.highs.Max() }

// Lower is the min of the windowed lows; 0 before any sample.
func (c *Channel) Lower() float64 { return c.lows.Min() }
