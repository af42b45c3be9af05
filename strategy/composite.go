// Package strategy assembles the indicator set, the signal engine, and
// the stop engine into the composite entry/exit pipeline the bot runs
// once per polling cycle.
package strategy

import (
	"time"

	"github.com/adrianotavares/crypto-trading-bot/config"
	"github.com/adrianotavares/crypto-trading-bot/indicator"
	"github.com/adrianotavares/crypto-trading-bot/logger"
	"github.com/adrianotavares/crypto-trading-bot/signal"
	"github.com/adrianotavares/crypto-trading-bot/stop"
	"github.com/adrianotavares/crypto-trading-bot/types"
)

// Composite scores a bar series with the fixed indicator basket and
// derives entry signals and exit decisions. It holds no mutable state;
// every call is a pure function of the inputs.
type Composite struct {
	Symbol string
	set    *indicator.Set
	engine *signal.Engine
	stops  *stop.Engine
	log    logger.Logger
}

// NewComposite validates the configuration and wires the three engines.
func NewComposite(symbol string, cfg config.Config, log logger.Logger) (*Composite, error) {
	set, err := indicator.NewSet(cfg.Indicators)
	if err != nil {
		return nil, err
	}
	stops, err := stop.NewEngine(cfg.Signal.ATRMultiplier, cfg.Risk.TrailingStopPct)
	if err != nil {
		return nil, err
	}
	return &Composite{
		Symbol: symbol,
		set:    set,
		engine: signal.NewEngine(cfg.Signal.Threshold),
		stops:  stops,
		log:    log,
	}, nil
}

// Stops exposes the stop engine so the caller can seed and trail
// positions with the same parameters the signals were built from.
func (c *Composite) Stops() *stop.Engine { return c.stops }

// Analyze computes the indicator frames and returns one Signal per bar
// where the strength crosses the threshold, each carrying ATR-based
// stop-loss/take-profit suggestions. An ambiguous bar (threshold <= 0)
// aborts with signal.ErrAmbiguousSignal.
func (c *Composite) Analyze(bars types.Series) ([]signal.Signal, error) {
	frames, err := c.set.Compute(bars)
	if err != nil {
		return nil, err
	}

	var out []signal.Signal
	for _, f := range frames {
		ev, err := c.engine.Evaluate(f)
		if err != nil {
			return nil, err
		}
		if !ev.Buy && !ev.Sell {
			continue
		}

		s := signal.Signal{
			Time:     f.Bar.Time,
			Symbol:   c.Symbol,
			Strength: ev.Strength,
			Price:    f.Bar.Close,
		}
		if ev.Buy {
			s.Side = types.Buy
			if indicator.Defined(f.ATR) {
				s.StopLoss, s.TakeProfit = c.stops.Levels(f.Bar.Close, f.ATR, types.Long)
			}
		} else {
			s.Side = types.Sell
			if indicator.Defined(f.ATR) {
				s.StopLoss, s.TakeProfit = c.stops.Levels(f.Bar.Close, f.ATR, types.Short)
			}
		}
		out = append(out, s)
	}
	return out, nil
}

// ExitPoint is one bar on which an open position should be closed.
type ExitPoint struct {
	Time      time.Time
	Price     float64 // close of the triggering bar
	Reasons   []stop.ExitReason
	ProfitPct float64
}

// ExitPoints walks the bars after the position's entry, ratcheting the
// trailing stop and checking for stop breaches and signal reversals. It
// returns every exit candidate plus the position with its updated stop;
// the caller decides which exit to act on and owns the position state.
func (c *Composite) ExitPoints(bars types.Series, pos types.Position) ([]ExitPoint, types.Position, error) {
	frames, err := c.set.Compute(bars)
	if err != nil {
		return nil, pos, err
	}

	var out []ExitPoint
	for _, f := range frames {
		if !f.Bar.Time.After(pos.EntryTime) {
			continue
		}
		ev, err := c.engine.Evaluate(f)
		if err != nil {
			return nil, pos, err
		}
		reversal := (pos.Side == types.Long && ev.Sell) || (pos.Side == types.Short && ev.Buy)

		pos = c.stops.Update(pos, f.Bar)
		reasons := c.stops.CheckExit(pos, f.Bar, reversal)
		if len(reasons) == 0 {
			continue
		}
		out = append(out, ExitPoint{
			Time:      f.Bar.Time,
			Price:     f.Bar.Close,
			Reasons:   reasons,
			ProfitPct: stop.ProfitPct(pos.Entry, f.Bar.Close, pos.Side),
		})
	}
	return out, pos, nil
}
