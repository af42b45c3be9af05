// Package exchange hosts market-data connectors. Providers deliver
// chronologically ordered OHLCV bars and a current-price lookup; the
// analysis packages never talk to a venue directly.
package exchange

import (
	"context"
	"time"

	"github.com/adrianotavares/crypto-trading-bot/types"
)

// Provider is the market-data collaborator the bot polls each cycle.
type Provider interface {
	// Klines returns up to limit most recent bars for the symbol at the
	// given interval, oldest first.
	Klines(ctx context.Context, symbol, interval string, limit int) (types.Series, error)
	// LastPrice returns the most recent trade price for the symbol.
	LastPrice(ctx context.Context, symbol string) (float64, error)
}

// StubProvider emits deterministic synthetic bars, useful for tests and
// offline runs.
type StubProvider struct {
	Start    time.Time
	Interval time.Duration
	Base     float64 // base price, default 100
}

func (s *StubProvider) basePrice() float64 {
	if s.Base > 0 {
		return s.Base
	}
	return 100
}

// Klines generates a gently oscillating series around the base price.
func (s *StubProvider) Klines(_ context.Context, _ string, _ string, limit int) (types.Series, error) {
	step := s.Interval
	if step == 0 {
		step = time.Hour
	}
	base := s.basePrice()
	bars := make(types.Series, limit)
	for i := range bars {
		drift := float64(i%20) * 0.1
		open := base + drift
		close := open + 0.05
		bars[i] = types.Bar{
			Time:   s.Start.Add(time.Duration(i) * step),
			Open:   open,
			High:   close + 0.1,
			Low:    open - 0.1,
			Close:  close,
			Volume: 1000 + float64(i%5)*50,
		}
	}
	return bars, nil
}

// LastPrice returns the base price.
func (s *StubProvider) LastPrice(context.Context, string) (float64, error) {
	return s.basePrice(), nil
}
