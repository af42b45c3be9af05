// Command bot runs the trading agent: it loads the YAML configuration,
// wires the paper executor and the Binance market-data provider, and
// runs cycles (polled or stream-driven) until interrupted.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/adrianotavares/crypto-trading-bot/bot"
	"github.com/adrianotavares/crypto-trading-bot/config"
	"github.com/adrianotavares/crypto-trading-bot/exchange"
	"github.com/adrianotavares/crypto-trading-bot/executor"
	"github.com/adrianotavares/crypto-trading-bot/logger"
)

func main() {
	cfgPath := flag.String("config", "config.yaml", "path to YAML configuration")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.NewZapLogger(cfg.App.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger setup failed: %v\n", err)
		os.Exit(1)
	}

	exec := executor.NewPaperExecutor(cfg.Paper.InitialBalance, log)
	provider := exchange.NewBinance("", log)

	engine, err := bot.New(cfg, provider, exec, log)
	if err != nil {
		log.Error("engine setup failed", logger.Err(err))
		os.Exit(1)
	}

	if cfg.App.MetricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			if err := http.ListenAndServe(cfg.App.MetricsAddr, mux); err != nil {
				log.Error("metrics server failed", logger.Err(err))
			}
		}()
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	run := engine.Run
	if cfg.App.UseStream {
		stream := exchange.NewStream("", log)
		run = func(ctx context.Context) error { return engine.RunStream(ctx, stream) }
	}
	if err := run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("bot exited with error", logger.Err(err))
		os.Exit(1)
	}
}
