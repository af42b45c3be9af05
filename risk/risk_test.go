package risk

import (
	"math"
	"strings"
	"testing"

	"github.com/adrianotavares/crypto-trading-bot/config"
	"github.com/adrianotavares/crypto-trading-bot/types"
)

func testLimits() config.Risk {
	return config.Risk{
		MaxPositionSize:  0.05,
		MaxOpenPositions: 5,
		MaxDailyLoss:     0.03,
		TrailingStopPct:  2.0,
	}
}

func mustGate(t *testing.T) *Gate {
	t.Helper()
	g, err := NewGate(testLimits())
	if err != nil {
		t.Fatalf("NewGate: %v", err)
	}
	return g
}

func TestNewGateRejectsBadLimits(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*config.Risk)
	}{
		{"zero position size", func(r *config.Risk) { r.MaxPositionSize = 0 }},
		{"position size above one", func(r *config.Risk) { r.MaxPositionSize = 1.5 }},
		{"zero open positions", func(r *config.Risk) { r.MaxOpenPositions = 0 }},
		{"negative daily loss", func(r *config.Risk) { r.MaxDailyLoss = -0.01 }},
	}
	for _, tc := range cases {
		limits := testLimits()
		tc.mutate(&limits)
		if _, err := NewGate(limits); err == nil {
			t.Fatalf("%s: expected error", tc.name)
		}
	}
}

func TestSizeFromPrice(t *testing.T) {
	g := mustGate(t)
	// 1000 * 0.05 / 50 = 1.0
	if got := g.Size(50, 1000); got != 1 {
		t.Fatalf("expected qty 1, got %v", got)
	}
}

func TestSizeFallbackWithoutPrice(t *testing.T) {
	g := mustGate(t)
	// 1000 * 0.05 / 100 = 0.5
	if got := g.Size(0, 1000); math.Abs(got-0.5) > 1e-12 {
		t.Fatalf("expected fallback qty 0.5, got %v", got)
	}
	if got := g.Size(-1, 1000); math.Abs(got-0.5) > 1e-12 {
		t.Fatalf("expected negative price to use the fallback, got %v", got)
	}
}

func TestApproveHappyPath(t *testing.T) {
	g := mustGate(t)
	p := Portfolio{Balance: 1000, OpenPositions: 0, DailyPnL: 0}
	d := g.Approve("BTCUSDT", types.Buy, 1, 50, p)
	if !d.Approved {
		t.Fatalf("expected approval, got %q", d.Reason)
	}
	if d.Qty != 1 {
		t.Fatalf("expected qty carried through, got %v", d.Qty)
	}
}

func TestApproveRejectsWhenPositionsFull(t *testing.T) {
	g := mustGate(t)
	p := Portfolio{Balance: 1000, OpenPositions: 5}
	d := g.Approve("BTCUSDT", types.Buy, 1, 50, p)
	if d.Approved {
		t.Fatal("expected rejection at the open-position cap")
	}
	if !strings.Contains(d.Reason, "max open positions") {
		t.Fatalf("unexpected reason: %q", d.Reason)
	}
}

func TestApproveRejectsOnDailyLoss(t *testing.T) {
	g := mustGate(t)
	// limit is 3% of 1000 = 30; a realized -30 trips it.
	p := Portfolio{Balance: 1000, DailyPnL: -30}
	d := g.Approve("BTCUSDT", types.Sell, 1, 50, p)
	if d.Approved {
		t.Fatal("expected rejection at the daily loss limit")
	}
	if !strings.Contains(d.Reason, "daily loss") {
		t.Fatalf("unexpected reason: %q", d.Reason)
	}
}

func TestApproveRejectsOversizedOrder(t *testing.T) {
	g := mustGate(t)
	// max value is 5% of 1000 = 50; 2 * 50 = 100 exceeds it.
	p := Portfolio{Balance: 1000}
	d := g.Approve("BTCUSDT", types.Buy, 2, 50, p)
	if d.Approved {
		t.Fatal("expected rejection of the oversized order")
	}
	if !strings.Contains(d.Reason, "order value") {
		t.Fatalf("unexpected reason: %q", d.Reason)
	}
}

func TestApproveSkipsValueCheckWithoutPrice(t *testing.T) {
	g := mustGate(t)
	p := Portfolio{Balance: 1000}
	d := g.Approve("BTCUSDT", types.Buy, 1000, 0, p)
	if !d.Approved {
		t.Fatalf("expected approval without a price, got %q", d.Reason)
	}
}

func TestApproveChecksInOrder(t *testing.T) {
	g := mustGate(t)
	// All three limits violated; the position cap reports first.
	p := Portfolio{Balance: 1000, OpenPositions: 9, DailyPnL: -500}
	d := g.Approve("BTCUSDT", types.Buy, 100, 50, p)
	if d.Approved {
		t.Fatal("expected rejection")
	}
	if !strings.Contains(d.Reason, "max open positions") {
		t.Fatalf("expected the position cap to short-circuit, got %q", d.Reason)
	}
}
