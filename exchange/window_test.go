package exchange

import (
	"testing"
	"time"

	"github.com/adrianotavares/crypto-trading-bot/types"
)

func windowBar(minute int, close float64) types.Bar {
	return types.Bar{
		Time:  time.Date(2024, 5, 1, 0, minute, 0, 0, time.UTC),
		Close: close,
	}
}

func TestWindowPushAndTrim(t *testing.T) {
	w := NewWindow(3)
	for i := 0; i < 5; i++ {
		w.Push(windowBar(i, float64(100+i)))
	}
	if w.Len() != 3 {
		t.Fatalf("expected the window to hold 3 bars, got %d", w.Len())
	}
	bars := w.Bars()
	if bars[0].Close != 102 || bars[2].Close != 104 {
		t.Fatalf("expected the newest bars to survive, got %+v", bars)
	}
}

func TestWindowReplacesOpenCandle(t *testing.T) {
	w := NewWindow(10)
	w.Push(windowBar(0, 100))
	// Partial updates for the same candle overwrite in place.
	w.Push(windowBar(1, 100.5))
	w.Push(windowBar(1, 101))
	w.Push(windowBar(1, 100.8))

	bars := w.Bars()
	if len(bars) != 2 {
		t.Fatalf("expected 2 bars, got %d", len(bars))
	}
	if bars[1].Close != 100.8 {
		t.Fatalf("expected the last update to win, got %v", bars[1].Close)
	}
}

func TestWindowSeed(t *testing.T) {
	w := NewWindow(2)
	w.Push(windowBar(0, 1))
	w.Seed(types.Series{windowBar(1, 10), windowBar(2, 11), windowBar(3, 12)})

	bars := w.Bars()
	if len(bars) != 2 || bars[0].Close != 11 || bars[1].Close != 12 {
		t.Fatalf("expected the seed to replace and trim, got %+v", bars)
	}
}

func TestWindowBarsIsACopy(t *testing.T) {
	w := NewWindow(4)
	w.Push(windowBar(0, 100))
	bars := w.Bars()
	bars[0].Close = 0
	if w.Bars()[0].Close != 100 {
		t.Fatal("Bars must not expose the internal slice")
	}
}
