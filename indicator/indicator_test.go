package indicator

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/adrianotavares/crypto-trading-bot/config"
	"github.com/adrianotavares/crypto-trading-bot/types"
)

// testIndicators returns a config with short lookbacks so tests stay
// small. MinBars for this config is 9.
func testIndicators() config.Indicators {
	return config.Indicators{
		RSIPeriod:        3,
		RSIOverbought:    70,
		RSIOversold:      30,
		MACDFast:         3,
		MACDSlow:         6,
		MACDSignal:       3,
		BBPeriod:         6,
		BBStdDev:         2.0,
		StochKPeriod:     5,
		StochDPeriod:     3,
		StochSmoothK:     3,
		StochOversold:    20,
		StochOverbought:  80,
		ATRPeriod:        3,
		VolumePeriod:     3,
		VolumeMultiplier: 1.5,
	}
}

// barsFromCloses builds a series with a fixed 0.4 high/low range around
// each close and constant volume.
func barsFromCloses(closes []float64) types.Series {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make(types.Series, len(closes))
	for i, c := range closes {
		bars[i] = types.Bar{
			Time:   start.Add(time.Duration(i) * time.Hour),
			Open:   c,
			High:   c + 0.2,
			Low:    c - 0.2,
			Close:  c,
			Volume: 100,
		}
	}
	return bars
}

func mustCompute(t *testing.T, cfg config.Indicators, bars types.Series) []Frame {
	t.Helper()
	set, err := NewSet(cfg)
	if err != nil {
		t.Fatalf("NewSet failed: %v", err)
	}
	frames, err := set.Compute(bars)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	return frames
}

func TestComputeInsufficientHistory(t *testing.T) {
	set, err := NewSet(testIndicators())
	if err != nil {
		t.Fatalf("NewSet failed: %v", err)
	}
	bars := barsFromCloses([]float64{100, 100, 100, 100})
	if _, err := set.Compute(bars); !errors.Is(err, ErrInsufficientHistory) {
		t.Fatalf("expected ErrInsufficientHistory, got %v", err)
	}
}

func TestNewSetRejectsBadConfig(t *testing.T) {
	cfg := testIndicators()
	cfg.ATRPeriod = -1
	if _, err := NewSet(cfg); err == nil {
		t.Fatal("expected error for negative atr_period")
	}
}

func TestWarmupValuesAreUndefined(t *testing.T) {
	closes := make([]float64, 20)
	for i := range closes {
		closes[i] = 100 + float64(i%3)
	}
	frames := mustCompute(t, testIndicators(), barsFromCloses(closes))

	first := frames[0]
	if Defined(first.RSI) || Defined(first.MACD) || Defined(first.ATR) || Defined(first.BBUpper) {
		t.Fatal("expected first frame values to be undefined")
	}
	if first.RSIOversold || first.RSIOverbought || first.MACDBullish || first.BBLowerTouch {
		t.Fatal("no flag may be set while the inputs are undefined")
	}
}

func TestRSIRangeAndFlags(t *testing.T) {
	falling := make([]float64, 20)
	for i := range falling {
		falling[i] = 100 - 0.5*float64(i)
	}
	frames := mustCompute(t, testIndicators(), barsFromCloses(falling))
	for i, f := range frames {
		if !Defined(f.RSI) {
			continue
		}
		if f.RSI < 0 || f.RSI > 100 {
			t.Fatalf("RSI out of range at bar %d: %v", i, f.RSI)
		}
	}
	last := frames[len(frames)-1]
	if !last.RSIOversold {
		t.Fatalf("expected oversold flag on a strict downtrend, RSI=%v", last.RSI)
	}

	rising := make([]float64, 20)
	for i := range rising {
		rising[i] = 100 + 0.5*float64(i)
	}
	frames = mustCompute(t, testIndicators(), barsFromCloses(rising))
	last = frames[len(frames)-1]
	if !last.RSIOverbought {
		t.Fatalf("expected overbought flag on a strict uptrend, RSI=%v", last.RSI)
	}
}

func TestBollingerOrderingAndTouch(t *testing.T) {
	closes := []float64{100, 101, 100, 99, 100, 101, 100, 99, 100, 100, 100, 100, 100, 97}
	frames := mustCompute(t, testIndicators(), barsFromCloses(closes))
	for i, f := range frames {
		if !Defined(f.BBMiddle) {
			continue
		}
		if !(f.BBLower <= f.BBMiddle && f.BBMiddle <= f.BBUpper) {
			t.Fatalf("band ordering violated at bar %d: %v %v %v", i, f.BBLower, f.BBMiddle, f.BBUpper)
		}
	}
	// Five flat closes followed by a sharp drop put the close through the
	// lower band.
	last := frames[len(frames)-1]
	if !last.BBLowerTouch {
		t.Fatalf("expected lower-band touch on the plunge bar, close=%v lower=%v", last.Bar.Close, last.BBLower)
	}
	if last.BBUpperTouch {
		t.Fatal("upper touch must not fire on a plunge bar")
	}
}

func TestMACDBullishCrossoverOnReversal(t *testing.T) {
	closes := []float64{100, 99, 98, 97, 96, 95, 96, 97, 98, 99, 100, 101, 102, 103, 104, 105}
	frames := mustCompute(t, testIndicators(), barsFromCloses(closes))

	crossed := -1
	for i, f := range frames {
		if f.MACDBullish {
			crossed = i
			break
		}
	}
	if crossed == -1 {
		t.Fatal("expected a bullish MACD crossover after the trough")
	}
	if crossed <= 5 {
		t.Fatalf("crossover before the trough at bar %d", crossed)
	}
	f := frames[crossed]
	if !Defined(f.MACD) || !Defined(f.MACDSignal) || f.MACD <= f.MACDSignal {
		t.Fatalf("crossover bar must have MACD above signal: %v vs %v", f.MACD, f.MACDSignal)
	}
}

func TestStochasticFlatRangePinsMidScale(t *testing.T) {
	closes := make([]float64, 15)
	for i := range closes {
		closes[i] = 100
	}
	frames := mustCompute(t, testIndicators(), barsFromCloses(closes))
	last := frames[len(frames)-1]
	if !Defined(last.StochK) || !Defined(last.StochD) {
		t.Fatal("expected the oscillator lines to be defined after warm-up")
	}
	if last.StochK != 50 || last.StochD != 50 {
		t.Fatalf("flat range should pin the oscillator at 50, got K=%v D=%v", last.StochK, last.StochD)
	}
	if last.StochBullish || last.StochBearish {
		t.Fatal("no stochastic crossover may fire on a flat range")
	}
}

func TestATRConstantRange(t *testing.T) {
	bars := barsFromCloses(make([]float64, 12))
	for i := range bars {
		bars[i].Close = 100
		bars[i].Open = 100
		bars[i].High = 101
		bars[i].Low = 99
	}
	frames := mustCompute(t, testIndicators(), bars)
	last := frames[len(frames)-1]
	if last.ATR != 2 {
		t.Fatalf("constant 2-point range must yield ATR=2, got %v", last.ATR)
	}
}

func TestHighVolumeFlag(t *testing.T) {
	closes := make([]float64, 12)
	for i := range closes {
		closes[i] = 100 + float64(i%2)
	}
	bars := barsFromCloses(closes)
	bars[len(bars)-1].Volume = 300

	frames := mustCompute(t, testIndicators(), bars)
	last := frames[len(frames)-1]
	if !last.HighVolume {
		t.Fatalf("expected high-volume flag, ratio=%v", last.VolumeRatio)
	}
	if last.VolumeRatio <= 1 {
		t.Fatalf("expected volume ratio above 1, got %v", last.VolumeRatio)
	}
	if frames[len(frames)-2].HighVolume {
		t.Fatal("high-volume flag must not fire on an average bar")
	}
}

func TestSMAValues(t *testing.T) {
	out := SMA([]float64{1, 2, 3, 4}, 2)
	want := []float64{math.NaN(), 1.5, 2.5, 3.5}
	for i := range want {
		if math.IsNaN(want[i]) {
			if !math.IsNaN(out[i]) {
				t.Fatalf("index %d: expected NaN, got %v", i, out[i])
			}
			continue
		}
		if out[i] != want[i] {
			t.Fatalf("index %d: expected %v, got %v", i, want[i], out[i])
		}
	}
}

func TestEMAConverges(t *testing.T) {
	out := EMA([]float64{1, 2, 3}, 2)
	if !math.IsNaN(out[0]) {
		t.Fatalf("expected NaN seed, got %v", out[0])
	}
	if out[1] != 1.5 {
		t.Fatalf("expected simple-average seed 1.5, got %v", out[1])
	}
	if math.Abs(out[2]-2.5) > 1e-9 {
		t.Fatalf("expected EMA ~2.5, got %v", out[2])
	}
}
