package indicator

import (
	"math"
	"testing"

	"github.com/evdnx/turtle/types"
)

func TestChannelThreeBars(t *testing.T) {
	ch, err := NewChannel(3)
	if err != nil {
		t.Fatalf("NewChannel failed: %v", err)
	}
	highs := []float64{10, 12, 9}
	lows := []float64{8, 11, 7}
	for i := range highs {
		ready := ch.Add(highs[i], lows[i])
		if i < 2 && ready {
			t.Fatalf("channel ready after %d samples", i+1)
		}
		if i == 2 && !ready {
			t.Fatal("channel should be ready after 3 samples")
		}
	}
	if ch.Upper() != 12 {
		t.Fatalf("expected upper 12, got %v", ch.Upper())
	}
	if ch.Lower() != 7 {
		t.Fatalf("expected lower 7, got %v", ch.Lower())
	}
}

func TestChannelEvictsOldest(t *testing.T) {
	ch, _ := NewChannel(3)
	series := []float64{20, 5, 9, 11, 8, 6}
	for i, v := range series {
		ch.Add(v, v)
		if i < 2 {
			continue
		}
		trailing := series[i-2 : i+1]
		hi, lo := trailing[0], trailing[0]
		for _, x := range trailing {
			hi = math.Max(hi, x)
			lo = math.Min(lo, x)
		}
		if ch.Upper() != hi || ch.Lower() != lo {
			t.Fatalf("bar %d: got [%v,%v], want [%v,%v]", i, ch.Lower(), ch.Upper(), lo, hi)
		}
	}
}

func TestChannelRejectsBadPeriod(t *testing.T) {
	if _, err := NewChannel(0); err == nil {
		t.Fatal("expected error for zero period")
	}
}

func TestATRSimpleAverage(t *testing.T) {
	atr, err := NewATR(3)
	if err != nil {
		t.Fatalf("NewATR failed: %v", err)
	}
	bars := []types.Bar{
		{High: 11, Low: 9, Close: 10},  // seeds the previous close
		{High: 13, Low: 10, Close: 12}, // TR max(3, |13-10|, |10-10|) = 3
		{High: 12, Low: 8, Close: 9},   // TR max(4, 0, 4) = 4
		{High: 15, Low: 14, Close: 14}, // TR max(1, |15-9|=6, 5) = 6
		{High: 15, Low: 13, Close: 14}, // TR max(2, 1, 1) = 2
	}
	for i, b := range bars[:3] {
		if atr.Update(b) {
			t.Fatalf("ATR ready too early at %d", i)
		}
	}
	if atr.Value() != 0 {
		t.Fatalf("value before ready should be 0, got %v", atr.Value())
	}
	if !atr.Update(bars[3]) {
		t.Fatal("ATR should be ready after period+1 bars")
	}
	if got := atr.Value(); math.Abs(got-13.0/3) > 1e-9 {
		t.Fatalf("expected ATR 13/3, got %v", got)
	}
	atr.Update(bars[4])
	if got := atr.Value(); math.Abs(got-4) > 1e-9 {
		t.Fatalf("expected ATR 4 after the window moves, got %v", got)
	}
}

func TestATRSkipsInvalidCandle(t *testing.T) {
	atr, _ := NewATR(1)
	atr.Update(types.Bar{High: 11, Low: 9, Close: 10})
	atr.Update(types.Bar{High: 8, Low: 12, Close: 10})
	if atr.Ready() {
		t.Fatal("a candle with high below low must not count")
	}
	atr.Update(types.Bar{High: 12, Low: 10, Close: 11})
	if got := atr.Value(); got != 2 {
		t.Fatalf("expected ATR 2, got %v", got)
	}
}

func TestATRFactory(t *testing.T) {
	v, err := NewATRFactory()(20)
	if err != nil {
		t.Fatalf("factory failed: %v", err)
	}
	if v.Ready() {
		t.Fatal("fresh ATR must not be ready")
	}
	if _, err := NewATRFactory()(-1); err == nil {
		t.Fatal("expected error for negative period")
	}
}
