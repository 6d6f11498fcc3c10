package executor

import (
	"testing"

	"github.com/evdnx/turtle/types"
	"github.com/pkg/errors"
)

func TestPaperExecutor_SubmitAndPosition(t *testing.T) {
	ex := NewPaperExecutor(10_000)

	o := types.Order{
		Symbol: "AAPL",
		Side:   types.Buy,
		Qty:    50,
		Price:  200,
	}
	if err := ex.Submit(o); err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if cash := ex.Cash(); cash != 0 {
		t.Fatalf("expected cash 0 after buying 50*200, got %v", cash)
	}
	if eq := ex.Equity(); eq != 10_000 {
		t.Fatalf("equity should equal marked holdings, got %v", eq)
	}
	qty, avg := ex.Position("AAPL")
	if qty != 50 || avg != 200 {
		t.Fatalf("unexpected position: qty=%v avg=%v", qty, avg)
	}
}

func TestPaperExecutor_InsufficientCash(t *testing.T) {
	ex := NewPaperExecutor(1000)
	o := types.Order{
		Symbol: "MSFT",
		Side:   types.Buy,
		Qty:    1,
		Price:  2000,
	}
	err := ex.Submit(o)
	if !errors.Is(err, ErrInsufficientCash) {
		t.Fatalf("expected ErrInsufficientCash, got %v", err)
	}
	if cash := ex.Cash(); cash != 1000 {
		t.Fatalf("cash should stay unchanged on insufficient cash")
	}
	if qty, _ := ex.Position("MSFT"); qty != 0 {
		t.Fatalf("no position expected, got %v", qty)
	}
}

func TestPaperExecutor_VWAPAndMarkToMarket(t *testing.T) {
	ex := NewPaperExecutor(10_000)
	_ = ex.Submit(types.MarketOrder("SPY", 10, 100))
	_ = ex.Submit(types.MarketOrder("SPY", 30, 120))
	qty, avg := ex.Position("SPY")
	if qty != 40 || avg != 115 {
		t.Fatalf("expected 40 @ 115, got %v @ %v", qty, avg)
	}
	ex.Mark("SPY", 130)
	// cash 10000-1000-3600 = 5400, holdings 40*130 = 5200
	if eq := ex.Equity(); eq != 10_600 {
		t.Fatalf("expected equity 10600, got %v", eq)
	}
	// full close keeps the realised gain in cash
	if err := ex.Submit(types.MarketOrder("SPY", -40, 130)); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	if qty, avg := ex.Position("SPY"); qty != 0 || avg != 0 {
		t.Fatalf("expected flat, got %v @ %v", qty, avg)
	}
	if cash := ex.Cash(); cash != 10_600 {
		t.Fatalf("expected cash 10600, got %v", cash)
	}
}

func TestPaperExecutor_ShortAndCover(t *testing.T) {
	ex := NewPaperExecutor(5_000)
	if err := ex.Submit(types.MarketOrder("QQQ", -10, 300)); err != nil {
		t.Fatalf("short failed: %v", err)
	}
	qty, avg := ex.Position("QQQ")
	if qty != -10 || avg != 300 {
		t.Fatalf("unexpected short: %v @ %v", qty, avg)
	}
	if cash := ex.Cash(); cash != 8_000 {
		t.Fatalf("short proceeds should be credited, got %v", cash)
	}
	ex.Mark("QQQ", 280)
	if eq := ex.Equity(); eq != 5_200 {
		t.Fatalf("expected equity 5200, got %v", eq)
	}
	if err := ex.Submit(types.MarketOrder("QQQ", 10, 280)); err != nil {
		t.Fatalf("cover failed: %v", err)
	}
	if cash := ex.Cash(); cash != 5_200 {
		t.Fatalf("expected cash 5200 after cover, got %v", cash)
	}
}
