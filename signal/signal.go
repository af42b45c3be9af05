// Package signal aggregates indicator flags into a signed strength and
// the buy/sell entry decision.
package signal

import (
	"errors"
	"time"

	"github.com/adrianotavares/crypto-trading-bot/indicator"
	"github.com/adrianotavares/crypto-trading-bot/types"
)

// ErrAmbiguousSignal is returned when buy and sell hold on the same bar.
// That is only reachable with a threshold <= 0; the engine surfaces it
// instead of picking a side.
var ErrAmbiguousSignal = errors.New("signal: buy and sell fired on the same bar")

// Signal is an actionable entry suggestion for one bar.
type Signal struct {
	Time       time.Time
	Symbol     string
	Side       types.Side
	Strength   int
	Price      float64 // close of the triggering bar
	StopLoss   float64
	TakeProfit float64
}

// Evaluation is the per-bar outcome before it is turned into a Signal.
type Evaluation struct {
	Strength int
	Buy      bool
	Sell     bool
}

// Engine scores one indicator frame at a time. It is a pure function of
// the frame and the configured threshold; undefined indicator values
// contribute zero.
type Engine struct {
	threshold int
}

// NewEngine returns an engine with the supplied entry threshold.
func NewEngine(threshold int) *Engine {
	return &Engine{threshold: threshold}
}

// Threshold returns the configured entry threshold.
func (e *Engine) Threshold() int { return e.threshold }

// Evaluate sums the per-indicator votes (+1 bullish, -1 bearish), applies
// the high-volume confirmation toward whichever side already leads, and
// derives the buy/sell flags. With a threshold <= 0 both flags can hold
// simultaneously; that case is reported as ErrAmbiguousSignal.
func (e *Engine) Evaluate(f indicator.Frame) (Evaluation, error) {
	strength := 0

	if f.RSIOversold {
		strength++
	}
	if f.RSIOverbought {
		strength--
	}
	if f.MACDBullish {
		strength++
	}
	if f.MACDBearish {
		strength--
	}
	if f.BBLowerTouch {
		strength++
	}
	if f.BBUpperTouch {
		strength--
	}
	if f.StochBullish {
		strength++
	}
	if f.StochBearish {
		strength--
	}

	// Volume only confirms an existing direction, it never creates one.
	if f.HighVolume {
		switch {
		case strength > 0:
			strength++
		case strength < 0:
			strength--
		}
	}

	ev := Evaluation{
		Strength: strength,
		Buy:      strength >= e.threshold,
		Sell:     strength <= -e.threshold,
	}
	if ev.Buy && ev.Sell {
		return ev, ErrAmbiguousSignal
	}
	return ev, nil
}
