// Package executor routes orders to a trading venue. The only venue
// shipped here is a paper trader with perfect fills; live connectors
// implement the same interface.
package executor

import (
	"errors"
	"sync"

	"github.com/adrianotavares/crypto-trading-bot/logger"
	"github.com/adrianotavares/crypto-trading-bot/types"
)

// ErrInsufficientCash is returned when a buy would exceed the available
// cash balance.
var ErrInsufficientCash = errors.New("executor: insufficient cash")

type Executor interface {
	Submit(o types.Order) error
	// Portfolio state, exposed for risk checks and paper trading.
	Equity() float64
	Position(symbol string) (qty float64, avgPrice float64)
}

// PaperExecutor simulates an exchange account: perfect fills, no
// slippage, signed positions (positive = long, negative = short).
type PaperExecutor struct {
	mu        sync.RWMutex
	equity    float64
	positions map[string]float64
	avgPrice  map[string]float64
	log       logger.Logger
}

func NewPaperExecutor(startEquity float64, log logger.Logger) *PaperExecutor {
	return &PaperExecutor{
		equity:    startEquity,
		positions: make(map[string]float64),
		avgPrice:  make(map[string]float64),
		log:       log,
	}
}

// Submit fills the order at Order.Price and updates cash, position, and
// volume-weighted average price.
func (p *PaperExecutor) Submit(o types.Order) error {
	if o.Qty == 0 {
		return nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	cost := o.Price * o.Qty
	if o.Side == types.Buy {
		prevQty := p.positions[o.Symbol]
		// The cash check only gates new long exposure; covering a short
		// always fills, even when the loss drives cash negative.
		if prevQty >= 0 && cost > p.equity {
			return ErrInsufficientCash
		}
		p.equity -= cost
		newQty := prevQty + o.Qty
		if newQty == 0 {
			delete(p.positions, o.Symbol)
			delete(p.avgPrice, o.Symbol)
		} else {
			p.positions[o.Symbol] = newQty
			prev := p.avgPrice[o.Symbol]
			p.avgPrice[o.Symbol] = (prev*prevQty + cost) / newQty
		}
	} else {
		p.equity += cost
		p.positions[o.Symbol] -= o.Qty
		if p.positions[o.Symbol] == 0 {
			delete(p.positions, o.Symbol)
			delete(p.avgPrice, o.Symbol)
		} else {
			prev := p.avgPrice[o.Symbol]
			p.avgPrice[o.Symbol] = (prev*(p.positions[o.Symbol]+o.Qty) + cost) / p.positions[o.Symbol]
		}
	}

	p.log.Info("paper_fill",
		logger.String("symbol", o.Symbol),
		logger.String("side", string(o.Side)),
		logger.Float64("qty", o.Qty),
		logger.Float64("price", o.Price),
		logger.Float64("equity", p.equity),
		logger.String("comment", o.Comment),
	)
	return nil
}

func (p *PaperExecutor) Equity() float64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.equity
}

func (p *PaperExecutor) Position(symbol string) (float64, float64) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.positions[symbol], p.avgPrice[symbol]
}
