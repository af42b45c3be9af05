package exchange

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/adrianotavares/crypto-trading-bot/logger"
	"github.com/adrianotavares/crypto-trading-bot/types"
)

const defaultBinanceStreamURL = "wss://stream.binance.com:9443/stream"

// KlineEvent is one live candle update from the websocket stream. Final
// is set when the candle closed; intermediate updates carry the partial
// bar.
type KlineEvent struct {
	Symbol string
	Bar    types.Bar
	Final  bool
}

// Stream consumes combined Binance kline streams, reconnecting with
// exponential backoff until the context is cancelled.
type Stream struct {
	url string
	log logger.Logger
}

// NewStream returns a websocket kline stream. An empty url selects the
// public endpoint.
func NewStream(url string, log logger.Logger) *Stream {
	if url == "" {
		url = defaultBinanceStreamURL
	}
	return &Stream{url: url, log: log}
}

// Run subscribes to symbol@kline_interval streams and forwards events to
// out until ctx is cancelled. The channel is not closed by Run.
func (s *Stream) Run(ctx context.Context, symbols []string, interval string, out chan<- KlineEvent) error {
	if len(symbols) == 0 {
		return fmt.Errorf("kline stream requires at least one symbol")
	}

	streams := make([]string, len(symbols))
	for i, sym := range symbols {
		streams[i] = strings.ToLower(sym) + "@kline_" + interval
	}
	url := fmt.Sprintf("%s?streams=%s", s.url, strings.Join(streams, "/"))

	backoff := time.Second
	const maxBackoff = 30 * time.Second
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		err := s.consume(ctx, url, out)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		s.log.Warn("kline stream disconnected, retrying", logger.Err(err))
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return ctx.Err()
		}
		backoff = time.Duration(math.Min(float64(maxBackoff), float64(backoff)*1.8))
	}
}

type klineEnvelope struct {
	Stream string `json:"stream"`
	Data   struct {
		Symbol string `json:"s"`
		Kline  struct {
			Start  int64  `json:"t"`
			Open   string `json:"o"`
			High   string `json:"h"`
			Low    string `json:"l"`
			Close  string `json:"c"`
			Volume string `json:"v"`
			Final  bool   `json:"x"`
		} `json:"k"`
	} `json:"data"`
}

func (s *Stream) consume(ctx context.Context, url string, out chan<- KlineEvent) error {
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	s.log.Info("connected kline stream", logger.String("url", url))

	conn.SetReadLimit(1 << 20)
	conn.SetReadDeadline(time.Now().Add(30 * time.Second))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(30 * time.Second))
		return nil
	})

	pingCtx, pingCancel := context.WithCancel(ctx)
	defer pingCancel()
	go func() {
		ticker := time.NewTicker(15 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			case <-pingCtx.Done():
				// Unblocks the pending ReadMessage on shutdown.
				conn.Close()
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		_, message, err := conn.ReadMessage()
		if err != nil {
			return err
		}

		var env klineEnvelope
		if err := json.Unmarshal(message, &env); err != nil {
			s.log.Warn("failed to decode kline message", logger.Err(err))
			continue
		}
		bar, err := klineEventBar(env)
		if err != nil {
			s.log.Warn("invalid kline payload", logger.Err(err))
			continue
		}
		ev := KlineEvent{Symbol: env.Data.Symbol, Bar: bar, Final: env.Data.Kline.Final}
		select {
		case out <- ev:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func klineEventBar(env klineEnvelope) (types.Bar, error) {
	k := env.Data.Kline
	fields := [5]string{k.Open, k.High, k.Low, k.Close, k.Volume}
	var vals [5]float64
	for i, s := range fields {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return types.Bar{}, fmt.Errorf("parse kline field %q: %w", s, err)
		}
		vals[i] = v
	}
	return types.Bar{
		Time:   time.UnixMilli(k.Start).UTC(),
		Open:   vals[0],
		High:   vals[1],
		Low:    vals[2],
		Close:  vals[3],
		Volume: vals[4],
	}, nil
}
