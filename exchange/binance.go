package exchange

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/adrianotavares/crypto-trading-bot/logger"
	"github.com/adrianotavares/crypto-trading-bot/types"
)

const defaultBinanceBaseURL = "https://api.binance.com"

// Binance implements Provider against the Binance public REST API.
type Binance struct {
	client  *http.Client
	baseURL string
	log     logger.Logger
}

// NewBinance returns a REST provider. An empty baseURL selects the public
// endpoint; tests point it at a local httptest server.
func NewBinance(baseURL string, log logger.Logger) *Binance {
	if baseURL == "" {
		baseURL = defaultBinanceBaseURL
	}
	return &Binance{
		client:  &http.Client{Timeout: 30 * time.Second},
		baseURL: baseURL,
		log:     log,
	}
}

// Klines fetches candlesticks from /api/v3/klines. Binance encodes each
// kline as a positional JSON array of mixed types.
func (b *Binance) Klines(ctx context.Context, symbol, interval string, limit int) (types.Series, error) {
	params := url.Values{}
	params.Add("symbol", symbol)
	params.Add("interval", interval)
	if limit > 0 {
		if limit > 1000 {
			limit = 1000
		}
		params.Add("limit", strconv.Itoa(limit))
	}

	var raw [][]interface{}
	if err := b.get(ctx, "/api/v3/klines", params, &raw); err != nil {
		return nil, err
	}

	bars := make(types.Series, 0, len(raw))
	for _, k := range raw {
		bar, err := parseKline(k)
		if err != nil {
			b.log.Warn("skipping malformed kline",
				logger.String("symbol", symbol),
				logger.Err(err),
			)
			continue
		}
		bars = append(bars, bar)
	}
	return bars, nil
}

// LastPrice fetches the current ticker price from /api/v3/ticker/price.
func (b *Binance) LastPrice(ctx context.Context, symbol string) (float64, error) {
	params := url.Values{}
	params.Add("symbol", symbol)

	var out struct {
		Symbol string `json:"symbol"`
		Price  string `json:"price"`
	}
	if err := b.get(ctx, "/api/v3/ticker/price", params, &out); err != nil {
		return 0, err
	}
	px, err := strconv.ParseFloat(out.Price, 64)
	if err != nil {
		return 0, fmt.Errorf("parse ticker price %q: %w", out.Price, err)
	}
	return px, nil
}

func (b *Binance) get(ctx context.Context, path string, params url.Values, dst interface{}) error {
	fullURL := fmt.Sprintf("%s%s?%s", b.baseURL, path, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	resp, err := b.client.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("binance %s: unexpected status %d", path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

// parseKline converts one positional kline array:
// [openTime, open, high, low, close, volume, closeTime, ...].
func parseKline(k []interface{}) (types.Bar, error) {
	if len(k) < 6 {
		return types.Bar{}, fmt.Errorf("kline has %d fields, want >= 6", len(k))
	}
	openTime, ok := k[0].(float64)
	if !ok {
		return types.Bar{}, fmt.Errorf("kline open time %v is not numeric", k[0])
	}
	vals := make([]float64, 5)
	for i := 1; i <= 5; i++ {
		s, ok := k[i].(string)
		if !ok {
			return types.Bar{}, fmt.Errorf("kline field %d (%v) is not a string", i, k[i])
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return types.Bar{}, fmt.Errorf("kline field %d: %w", i, err)
		}
		vals[i-1] = v
	}
	return types.Bar{
		Time:   time.UnixMilli(int64(openTime)).UTC(),
		Open:   vals[0],
		High:   vals[1],
		Low:    vals[2],
		Close:  vals[3],
		Volume: vals[4],
	}, nil
}
