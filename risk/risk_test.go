package risk

import (
	"math"
	"testing"
)

func TestPositionSizeBasic(t *testing.T) {
	// risk $20 000 (2 % of 1M), stop 4 away => 5000 shares
	qty := PositionSize(1_000_000, 0.02, 100, 96, 1)
	if qty != 5000 {
		t.Fatalf("unexpected qty: %v", qty)
	}
}

func TestPositionSizeFloorsFractionalShares(t *testing.T) {
	// 200 / 3 = 66.67 => 66
	qty := PositionSize(10_000, 0.02, 50, 53, 1)
	if qty != 66 {
		t.Fatalf("expected 66, got %d", qty)
	}
}

func TestPositionSizeZeroRiskPerShare(t *testing.T) {
	for _, eq := range []float64{1, 500, 1_000_000} {
		if qty := PositionSize(eq, 0.02, 100, 100, 1); qty != 1 {
			t.Fatalf("equity %v: expected 1 share on zero risk, got %d", eq, qty)
		}
	}
}

func TestPositionSizeRespectsMinimum(t *testing.T) {
	// 1000*0.02 = 20 risk, 50 per share => 0.4 -> clamped to 1
	if qty := PositionSize(1000, 0.02, 100, 50, 1); qty != 1 {
		t.Fatalf("expected minimum of 1, got %d", qty)
	}
	if qty := PositionSize(1000, 0.02, 100, 50, 5); qty != 5 {
		t.Fatalf("expected configured minimum of 5, got %d", qty)
	}
	if qty := PositionSize(1000, 0.02, 100, 50, 0); qty != 1 {
		t.Fatalf("minimum below one must still yield 1, got %d", qty)
	}
}

func TestPositionSizeShortSide(t *testing.T) {
	// stop above entry: distance is absolute
	if qty := PositionSize(100_000, 0.02, 50, 54, 1); qty != 500 {
		t.Fatalf("expected 500, got %d", qty)
	}
}

func TestPositionSizeSaturatesOnTinyStopDistance(t *testing.T) {
	qty := PositionSize(1_000_000, 0.02, 1, 1-1e-15, 1)
	if qty != math.MaxInt {
		t.Fatalf("expected saturation at MaxInt, got %d", qty)
	}
	if qty := PositionSize(math.Inf(1), 0.02, 100, 99, 1); qty != math.MaxInt {
		t.Fatalf("infinite equity must saturate, got %d", qty)
	}
}
