// Package bot owns the control loop and all mutable trading state:
// open positions, daily P&L, and the per-cycle orchestration of the
// analysis, risk, and execution collaborators. The analysis packages
// underneath it stay pure.
package bot

import (
	"context"
	"errors"
	"time"

	"github.com/adrianotavares/crypto-trading-bot/config"
	"github.com/adrianotavares/crypto-trading-bot/exchange"
	"github.com/adrianotavares/crypto-trading-bot/executor"
	"github.com/adrianotavares/crypto-trading-bot/indicator"
	"github.com/adrianotavares/crypto-trading-bot/logger"
	"github.com/adrianotavares/crypto-trading-bot/metrics"
	"github.com/adrianotavares/crypto-trading-bot/risk"
	"github.com/adrianotavares/crypto-trading-bot/signal"
	"github.com/adrianotavares/crypto-trading-bot/stop"
	"github.com/adrianotavares/crypto-trading-bot/strategy"
	"github.com/adrianotavares/crypto-trading-bot/types"
)

// klineLimit is how many bars each cycle fetches; comfortably above the
// longest indicator warm-up at default settings.
const klineLimit = 200

// Engine drives one polling cycle at a time: fetch bars, analyze, gate,
// execute, and manage open positions. It is not safe for concurrent use;
// the single control loop in Run is the only caller.
type Engine struct {
	cfg      config.Config
	provider exchange.Provider
	exec     executor.Executor
	gate     *risk.Gate
	log      logger.Logger

	strategies map[string]*strategy.Composite
	positions  map[string]types.Position
	dailyPnL   float64
	day        time.Time
}

// New wires an engine from validated configuration and collaborators.
func New(cfg config.Config, provider exchange.Provider, exec executor.Executor, log logger.Logger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	gate, err := risk.NewGate(cfg.Risk)
	if err != nil {
		return nil, err
	}
	strategies := make(map[string]*strategy.Composite, len(cfg.App.Symbols))
	for _, sym := range cfg.App.Symbols {
		comp, err := strategy.NewComposite(sym, cfg, log)
		if err != nil {
			return nil, err
		}
		strategies[sym] = comp
	}
	return &Engine{
		cfg:        cfg,
		provider:   provider,
		exec:       exec,
		gate:       gate,
		log:        log,
		strategies: strategies,
		positions:  make(map[string]types.Position),
	}, nil
}

// Streamer delivers live kline events; *exchange.Stream is the real
// implementation.
type Streamer interface {
	Run(ctx context.Context, symbols []string, interval string, out chan<- exchange.KlineEvent) error
}

// RunStream drives the engine from live kline events instead of polling.
// Each symbol's window is backfilled over REST once, then kept current
// from the stream; a closed candle triggers the same per-symbol pass as
// a polling cycle.
func (e *Engine) RunStream(ctx context.Context, stream Streamer) error {
	windows := make(map[string]*exchange.Window, len(e.cfg.App.Symbols))
	for _, sym := range e.cfg.App.Symbols {
		w := exchange.NewWindow(klineLimit)
		bars, err := e.provider.Klines(ctx, sym, e.cfg.App.Interval, klineLimit)
		if err != nil {
			e.log.Warn("backfill failed, window starts empty",
				logger.String("symbol", sym), logger.Err(err))
		} else {
			w.Seed(bars)
		}
		windows[sym] = w
	}

	events := make(chan exchange.KlineEvent, 64)
	errc := make(chan error, 1)
	go func() { errc <- stream.Run(ctx, e.cfg.App.Symbols, e.cfg.App.Interval, events) }()

	e.log.Info("bot started on live stream",
		logger.String("interval", e.cfg.App.Interval),
		logger.Int("symbols", len(e.cfg.App.Symbols)),
	)
	for {
		select {
		case <-ctx.Done():
			e.log.Info("bot stopped")
			return ctx.Err()
		case err := <-errc:
			return err
		case ev := <-events:
			w, ok := windows[ev.Symbol]
			if !ok {
				continue
			}
			w.Push(ev.Bar)
			if !ev.Final {
				continue
			}
			e.rolloverDay(ev.Bar.Time)
			e.processSymbol(ctx, ev.Symbol, w.Bars())
			e.publishGauges()
		}
	}
}

// Run polls until the context is cancelled.
func (e *Engine) Run(ctx context.Context) error {
	interval := time.Duration(e.cfg.App.PollSecs) * time.Second
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	e.log.Info("bot started",
		logger.String("interval", e.cfg.App.Interval),
		logger.Int("symbols", len(e.cfg.App.Symbols)),
	)
	for {
		select {
		case <-ctx.Done():
			e.log.Info("bot stopped")
			return ctx.Err()
		case now := <-ticker.C:
			e.Cycle(ctx, now)
		}
	}
}

// Cycle runs one full pass over every configured symbol.
func (e *Engine) Cycle(ctx context.Context, now time.Time) {
	e.rolloverDay(now)

	for _, sym := range e.cfg.App.Symbols {
		bars, err := e.provider.Klines(ctx, sym, e.cfg.App.Interval, klineLimit)
		if err != nil {
			e.log.Error("kline fetch failed", logger.String("symbol", sym), logger.Err(err))
			continue
		}
		e.processSymbol(ctx, sym, bars)
	}

	e.publishGauges()
}

// processSymbol runs the entry scan or the position management pass for
// one symbol over the given series.
func (e *Engine) processSymbol(ctx context.Context, sym string, bars types.Series) {
	if pos, open := e.positions[sym]; open {
		e.managePosition(sym, bars, pos)
	} else {
		e.scanEntry(ctx, sym, bars)
	}
}

func (e *Engine) publishGauges() {
	metrics.PositionsOpen.Set(float64(len(e.positions)))
	metrics.EquityGauge.Set(e.exec.Equity())
}

// Positions returns a copy of the currently open positions.
func (e *Engine) Positions() map[string]types.Position {
	out := make(map[string]types.Position, len(e.positions))
	for k, v := range e.positions {
		out[k] = v
	}
	return out
}

// DailyPnL returns the realized P&L since the last daily rollover.
func (e *Engine) DailyPnL() float64 { return e.dailyPnL }

// rolloverDay resets the realized P&L counter at the first cycle of a
// new (UTC) day.
func (e *Engine) rolloverDay(now time.Time) {
	day := now.UTC().Truncate(24 * time.Hour)
	if !day.Equal(e.day) {
		if !e.day.IsZero() {
			e.log.Info("daily rollover", logger.Float64("realized_pnl", e.dailyPnL))
		}
		e.day = day
		e.dailyPnL = 0
	}
}

// scanEntry looks for a fresh signal on the latest bar and opens a
// position when the risk gate approves it.
func (e *Engine) scanEntry(ctx context.Context, sym string, bars types.Series) {
	comp := e.strategies[sym]
	signals, err := comp.Analyze(bars)
	if err != nil {
		switch {
		case errors.Is(err, indicator.ErrInsufficientHistory):
			e.log.Warn("waiting for history", logger.String("symbol", sym), logger.Err(err))
		case errors.Is(err, signal.ErrAmbiguousSignal):
			e.log.Error("ambiguous signal, skipping cycle", logger.String("symbol", sym), logger.Err(err))
		default:
			e.log.Error("analysis failed", logger.String("symbol", sym), logger.Err(err))
		}
		return
	}
	if len(signals) == 0 {
		return
	}
	sig := signals[len(signals)-1]
	if !sig.Time.Equal(bars[len(bars)-1].Time) {
		return // stale signal from an earlier bar
	}
	metrics.SignalsGenerated.WithLabelValues(sym, string(sig.Side)).Inc()

	if e.cfg.App.Confirmation && !e.confirmed(sym, bars, sig.Side) {
		e.log.Info("entry vetoed by confirmation filter",
			logger.String("symbol", sym),
			logger.String("side", string(sig.Side)),
		)
		return
	}

	price := sig.Price
	if price <= 0 {
		if px, err := e.provider.LastPrice(ctx, sym); err == nil {
			price = px
		} else {
			e.log.Warn("no price available, sizing degraded", logger.String("symbol", sym), logger.Err(err))
		}
	}

	balance := e.exec.Equity()
	qty := e.gate.Size(price, balance)
	decision := e.gate.Approve(sym, sig.Side, qty, price, risk.Portfolio{
		Balance:       balance,
		OpenPositions: len(e.positions),
		DailyPnL:      e.dailyPnL,
	})
	if !decision.Approved {
		metrics.OrdersRejected.WithLabelValues(sym).Inc()
		e.log.Warn("order rejected",
			logger.String("symbol", sym),
			logger.String("reason", decision.Reason),
		)
		return
	}

	order := types.Order{
		Symbol:  sym,
		Side:    sig.Side,
		Qty:     decision.Qty,
		Price:   price,
		Comment: "composite entry",
	}
	if err := e.exec.Submit(order); err != nil {
		e.log.Error("order submit failed", logger.String("symbol", sym), logger.Err(err))
		return
	}
	metrics.OrdersSubmitted.WithLabelValues(sym).Inc()

	side := types.Long
	if sig.Side == types.Sell {
		side = types.Short
	}
	pos := types.Position{
		Symbol:     sym,
		Side:       side,
		EntryTime:  sig.Time,
		Entry:      price,
		Qty:        decision.Qty,
		Stop:       sig.StopLoss,
		TakeProfit: sig.TakeProfit,
	}
	e.positions[sym] = comp.Stops().Open(pos)

	e.log.Info("position opened",
		logger.String("symbol", sym),
		logger.String("side", string(side)),
		logger.Float64("entry", price),
		logger.Float64("qty", decision.Qty),
		logger.Float64("stop", e.positions[sym].Stop),
		logger.Int("strength", sig.Strength),
	)
}

// confirmed replays the bars through a fresh confirmation suite and asks
// it to pass judgement on the entry side.
func (e *Engine) confirmed(sym string, bars types.Series, side types.Side) bool {
	filter, err := strategy.NewConfirmation(e.cfg.Indicators)
	if err != nil {
		e.log.Warn("confirmation filter unavailable", logger.String("symbol", sym), logger.Err(err))
		return true
	}
	for _, b := range bars {
		filter.Observe(b)
	}
	return filter.Allow(side)
}

// managePosition trails the stop and closes the position when an exit
// condition holds on the latest bar.
func (e *Engine) managePosition(sym string, bars types.Series, pos types.Position) {
	comp := e.strategies[sym]
	exits, updated, err := comp.ExitPoints(bars, pos)
	if err != nil {
		e.log.Error("exit analysis failed", logger.String("symbol", sym), logger.Err(err))
		return
	}
	e.positions[sym] = updated

	if len(exits) == 0 {
		return
	}
	last := exits[len(exits)-1]
	if !last.Time.Equal(bars[len(bars)-1].Time) {
		return // exit condition was on an earlier bar, nothing actionable now
	}
	e.closePosition(sym, updated, last)
}

func (e *Engine) closePosition(sym string, pos types.Position, exit strategy.ExitPoint) {
	side := types.Sell
	if pos.Side == types.Short {
		side = types.Buy
	}
	order := types.Order{
		Symbol:  sym,
		Side:    side,
		Qty:     pos.Qty,
		Price:   exit.Price,
		Comment: exitComment(exit.Reasons),
	}
	if err := e.exec.Submit(order); err != nil {
		e.log.Error("close submit failed", logger.String("symbol", sym), logger.Err(err))
		return
	}
	metrics.OrdersSubmitted.WithLabelValues(sym).Inc()
	for _, r := range exit.Reasons {
		if r == stop.ReasonTrailingStop {
			metrics.TrailingStopExits.WithLabelValues(sym).Inc()
		}
	}

	pnl := (exit.Price - pos.Entry) * pos.Qty
	if pos.Side == types.Short {
		pnl = -pnl
	}
	e.dailyPnL += pnl
	delete(e.positions, sym)

	e.log.Info("position closed",
		logger.String("symbol", sym),
		logger.String("reasons", exitComment(exit.Reasons)),
		logger.Float64("exit", exit.Price),
		logger.Float64("pnl", pnl),
		logger.Float64("profit_pct", exit.ProfitPct),
	)
}

func exitComment(reasons []stop.ExitReason) string {
	out := ""
	for i, r := range reasons {
		if i > 0 {
			out += "+"
		}
		out += string(r)
	}
	return out
}
