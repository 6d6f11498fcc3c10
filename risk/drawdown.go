package risk

import "sync"

// Level pairs an actual-equity threshold with the effective equity used for
// sizing while the account sits at or above it.
type Level struct {
	Actual    float64
	Effective float64
}

const (
	DefaultFloor         = 100.0
	DefaultActualStep    = 0.10
	DefaultEffectiveStep = 0.20
)

// BuildDrawdownMap returns the throttle levels for a peak, strictly
// descending on both axes. The first level is (peak, peak); each following
// level lowers the threshold by actualStep and the effective value by
// effectiveStep, both as a fraction of the previous effective value.
// Only levels whose effective value is above floor are kept.
func BuildDrawdownMap(peak, floor, actualStep, effectiveStep float64) []Level {
	if actualStep <= 0 || effectiveStep <= 0 || effectiveStep >= 1 {
		return []Level{{Actual: peak, Effective: peak}}
	}
	var levels []Level
	actual, effective := peak, peak
	for effective > floor {
		levels = append(levels, Level{Actual: actual, Effective: effective})
		actual -= effective * actualStep
		effective -= effective * effectiveStep
	}
	return levels
}

// LookupEffective walks levels from the highest threshold down. Equity above
// a threshold keeps the previous (higher) effective value, an exact hit
// returns the level's own value, and equity below every threshold gets the
// lowest effective value.
func LookupEffective(levels []Level, current float64) float64 {
	if len(levels) == 0 {
		return current
	}
	prev := levels[0].Effective
	for _, l := range levels {
		if current > l.Actual {
			return prev
		}
		if current == l.Actual {
			return l.Effective
		}
		prev = l.Effective
	}
	return levels[len(levels)-1].Effective
}

// Throttle tracks the equity peak of one account and the drawdown map
// derived from it. It is safe for concurrent use.
type Throttle struct {
	mu            sync.Mutex
	peak          float64
	levels        []Level
	floor         float64
	actualStep    float64
	effectiveStep float64
}

// NewThrottle seeds the peak with the starting equity.
func NewThrottle(startEquity, floor, actualStep, effectiveStep float64) *Throttle {
	t := &Throttle{
		peak:          startEquity,
		floor:         floor,
		actualStep:    actualStep,
		effectiveStep: effectiveStep,
	}
	t.levels = BuildDrawdownMap(startEquity, floor, actualStep, effectiveStep)
	return t
}

// EffectiveEquity returns the equity to size positions with. A new high
// resets the peak and the map and is returned unthrottled.
func (t *Throttle) EffectiveEquity(current float64) float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	if current > t.peak {
		t.peak = current
		t.levels = BuildDrawdownMap(current, t.floor, t.actualStep, t.effectiveStep)
		return current
	}
	return LookupEffective(t.levels, current)
}

// Peek is EffectiveEquity without the peak update.
func (t *Throttle) Peek(current float64) float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	if current > t.peak {
		return current
	}
	return LookupEffective(t.levels, current)
}

func (t *Throttle) Peak() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.peak
}

// Levels returns a copy of the current drawdown map.
func (t *Throttle) Levels() []Level {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Level, len(t.levels))
	copy(out, t.levels)
	return out
}
