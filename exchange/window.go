package exchange

import "github.com/adrianotavares/crypto-trading-bot/types"

// Window keeps a rolling window of the most recent bars for one symbol.
// It absorbs the repeated partial updates a kline stream emits for the
// still-open candle: pushing a bar with a timestamp already present
// replaces that bar instead of appending.
type Window struct {
	max  int
	bars types.Series
}

func NewWindow(max int) *Window {
	if max <= 0 {
		max = 16
	}
	return &Window{max: max}
}

// Seed replaces the window contents with a backfilled series, keeping
// only the newest max bars.
func (w *Window) Seed(bars types.Series) {
	w.bars = append(w.bars[:0], bars...)
	w.trim()
}

// Push appends a bar, or replaces the bar with the same timestamp.
func (w *Window) Push(bar types.Bar) {
	if n := len(w.bars); n > 0 && w.bars[n-1].Time.Equal(bar.Time) {
		w.bars[n-1] = bar
		return
	}
	w.bars = append(w.bars, bar)
	w.trim()
}

// Bars returns a copy of the current window.
func (w *Window) Bars() types.Series {
	out := make(types.Series, len(w.bars))
	copy(out, w.bars)
	return out
}

func (w *Window) Len() int { return len(w.bars) }

func (w *Window) trim() {
	if len(w.bars) > w.max {
		w.bars = append(w.bars[:0], w.bars[len(w.bars)-w.max:]...)
	}
}
