package strategy

import (
	"github.com/evdnx/goti"

	"github.com/adrianotavares/crypto-trading-bot/config"
	"github.com/adrianotavares/crypto-trading-bot/types"
)

// Confirmation runs an independent indicator suite over the same bars and
// vetoes entries that it flatly contradicts. It is an optional filter in
// front of the composite signal, not a signal source of its own.
type Confirmation struct {
	suite *goti.IndicatorSuite
	cfg   config.Indicators
}

// NewConfirmation builds the suite with the configured RSI thresholds.
func NewConfirmation(cfg config.Indicators) (*Confirmation, error) {
	ic := goti.DefaultConfig()
	ic.RSIOverbought = cfg.RSIOverbought
	ic.RSIOversold = cfg.RSIOversold
	suite, err := goti.NewIndicatorSuiteWithConfig(ic)
	if err != nil {
		return nil, err
	}
	return &Confirmation{suite: suite, cfg: cfg}, nil
}

// Observe feeds one bar into the suite. Errors during warm-up are
// expected and ignored; the filter simply stays permissive until the
// suite has enough history.
func (c *Confirmation) Observe(bar types.Bar) {
	_ = c.suite.Add(bar.High, bar.Low, bar.Close, bar.Volume)
}

// Allow reports whether an entry on the given side survives the
// cross-check. A buy is vetoed when the suite's RSI is already past the
// overbought threshold or just crossed bearish; mirror logic for sells.
// When the suite cannot produce a value yet, the entry is allowed.
func (c *Confirmation) Allow(side types.Side) bool {
	rsiVal, err := c.suite.GetRSI().Calculate()
	if err != nil {
		return true
	}
	if side == types.Buy {
		if rsiVal >= c.cfg.RSIOverbought {
			return false
		}
		if bearish, err := c.suite.GetRSI().IsBearishCrossover(); err == nil && bearish {
			return false
		}
		return true
	}
	if rsiVal <= c.cfg.RSIOversold {
		return false
	}
	if bullish, err := c.suite.GetRSI().IsBullishCrossover(); err == nil && bullish {
		return false
	}
	return true
}
