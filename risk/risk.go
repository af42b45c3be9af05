// Package risk approves or rejects proposed orders against the
// configured portfolio limits and computes the risk-adjusted position
// size. Rejection is a normal outcome, not an error.
package risk

import (
	"fmt"

	"github.com/adrianotavares/crypto-trading-bot/config"
	"github.com/adrianotavares/crypto-trading-bot/types"
)

// fallbackNotionalDivisor is used by Size when no price is available.
// The resulting quantity is a degraded-accuracy estimate, not a real
// conversion; callers should prefer passing a price.
const fallbackNotionalDivisor = 100.0

// Portfolio is a snapshot of the account state at evaluation time. It is
// owned and serialized by the caller; the gate only reads it.
type Portfolio struct {
	Balance       float64 // account balance in quote currency
	OpenPositions int
	DailyPnL      float64 // realized P&L since the daily rollover
}

// Decision is the outcome of one order evaluation.
type Decision struct {
	Approved bool
	Reason   string
	Qty      float64
}

// Gate enforces the portfolio limits. Limits are immutable after
// construction.
type Gate struct {
	limits config.Risk
}

// NewGate validates the limits and returns a ready gate.
func NewGate(limits config.Risk) (*Gate, error) {
	if limits.MaxPositionSize <= 0 || limits.MaxPositionSize > 1 {
		return nil, fmt.Errorf("risk: max position size (%f) must be >0 and <=1", limits.MaxPositionSize)
	}
	if limits.MaxOpenPositions <= 0 {
		return nil, fmt.Errorf("risk: max open positions (%d) must be positive", limits.MaxOpenPositions)
	}
	if limits.MaxDailyLoss <= 0 || limits.MaxDailyLoss > 1 {
		return nil, fmt.Errorf("risk: max daily loss (%f) must be >0 and <=1", limits.MaxDailyLoss)
	}
	return &Gate{limits: limits}, nil
}

// Size computes the order quantity from the position-size fraction of the
// balance. When price is unavailable (<= 0) it falls back to a fixed
// notional divisor, which loses accuracy but keeps sizing bounded.
func (g *Gate) Size(price, balance float64) float64 {
	notional := balance * g.limits.MaxPositionSize
	if price > 0 {
		return notional / price
	}
	return notional / fallbackNotionalDivisor
}

// Approve evaluates a proposed order against the limits. The checks are
// independent; the first failing one short-circuits with its reason.
// Approval never mutates the portfolio snapshot.
func (g *Gate) Approve(symbol string, side types.Side, qty, price float64, p Portfolio) Decision {
	if p.OpenPositions >= g.limits.MaxOpenPositions {
		return Decision{
			Reason: fmt.Sprintf("max open positions (%d) reached", g.limits.MaxOpenPositions),
			Qty:    qty,
		}
	}

	maxLoss := p.Balance * g.limits.MaxDailyLoss
	if p.DailyPnL <= -maxLoss {
		return Decision{
			Reason: fmt.Sprintf("daily loss limit reached (pnl %.2f, limit -%.2f)", p.DailyPnL, maxLoss),
			Qty:    qty,
		}
	}

	if price > 0 {
		orderValue := qty * price
		maxValue := p.Balance * g.limits.MaxPositionSize
		// Tolerance absorbs round-off when qty came from Size with the
		// same price and balance.
		if orderValue > maxValue*(1+1e-9) {
			return Decision{
				Reason: fmt.Sprintf("order value %.2f exceeds max position value %.2f", orderValue, maxValue),
				Qty:    qty,
			}
		}
	}

	return Decision{Approved: true, Reason: "ok", Qty: qty}
}
