// Package stop derives initial stop-loss/take-profit levels from ATR and
// maintains a ratcheting trailing stop for open positions. The engine is
// stateless: position values go in, updated copies come out.
package stop

import (
	"fmt"

	"github.com/adrianotavares/crypto-trading-bot/types"
)

// ExitReason labels why a position should be closed.
type ExitReason string

const (
	ReasonTrailingStop   ExitReason = "trailing_stop"
	ReasonSignalReversal ExitReason = "signal_reversal"
)

// Engine holds the two stop parameters. Both are validated at
// construction; a bad value is a configuration error.
type Engine struct {
	atrMultiplier float64
	trailingPct   float64 // percent, e.g. 2.0 = 2%
}

// NewEngine validates the parameters and returns a ready engine.
func NewEngine(atrMultiplier, trailingPct float64) (*Engine, error) {
	if atrMultiplier <= 0 {
		return nil, fmt.Errorf("stop: atr multiplier (%f) must be positive", atrMultiplier)
	}
	if trailingPct <= 0 || trailingPct >= 100 {
		return nil, fmt.Errorf("stop: trailing pct (%f) must be in (0, 100)", trailingPct)
	}
	return &Engine{atrMultiplier: atrMultiplier, trailingPct: trailingPct}, nil
}

// Levels computes the initial stop-loss and take-profit for an entry at
// the supplied price and ATR. The take-profit sits twice as far from the
// entry as the stop-loss.
func (e *Engine) Levels(entry, atr float64, side types.PositionSide) (stopLoss, takeProfit float64) {
	dist := atr * e.atrMultiplier
	if side == types.Long {
		return entry - dist, entry + dist*2
	}
	return entry + dist, entry - dist*2
}

// Open seeds the trailing-stop state of a freshly entered position:
// water marks start at the entry price and the stop at the configured
// trailing distance below (long) or above (short) it.
func (e *Engine) Open(pos types.Position) types.Position {
	pos.HighWater = pos.Entry
	pos.LowWater = pos.Entry
	if pos.Side == types.Long {
		floor := pos.Entry * (1 - e.trailingPct/100)
		if floor > pos.Stop {
			pos.Stop = floor
		}
	} else {
		ceil := pos.Entry * (1 + e.trailingPct/100)
		if pos.Stop == 0 || ceil < pos.Stop {
			pos.Stop = ceil
		}
	}
	return pos
}

// Update advances the water marks with the new bar and ratchets the stop.
// A long stop only ever moves up; a short stop only ever moves down.
func (e *Engine) Update(pos types.Position, bar types.Bar) types.Position {
	if pos.Side == types.Long {
		if bar.High > pos.HighWater {
			pos.HighWater = bar.High
		}
		candidate := pos.HighWater * (1 - e.trailingPct/100)
		if candidate > pos.Stop {
			pos.Stop = candidate
		}
		return pos
	}
	if bar.Low < pos.LowWater {
		pos.LowWater = bar.Low
	}
	candidate := pos.LowWater * (1 + e.trailingPct/100)
	if candidate < pos.Stop {
		pos.Stop = candidate
	}
	return pos
}

// CheckExit reports every exit condition that holds on the bar: the
// trailing stop being breached, an opposing signal, or both. An empty
// result means the position stays open.
func (e *Engine) CheckExit(pos types.Position, bar types.Bar, reversal bool) []ExitReason {
	var reasons []ExitReason
	if pos.Side == types.Long {
		if bar.Low <= pos.Stop {
			reasons = append(reasons, ReasonTrailingStop)
		}
	} else {
		if bar.High >= pos.Stop {
			reasons = append(reasons, ReasonTrailingStop)
		}
	}
	if reversal {
		reasons = append(reasons, ReasonSignalReversal)
	}
	return reasons
}

// ProfitPct returns the percentage gain of a closed trade.
func ProfitPct(entry, exit float64, side types.PositionSide) float64 {
	if entry == 0 {
		return 0
	}
	if side == types.Long {
		return (exit - entry) / entry * 100
	}
	return (entry - exit) / entry * 100
}
