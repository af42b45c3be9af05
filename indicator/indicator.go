// Package indicator computes the technical indicator set over an OHLCV
// series. Each bar yields one Frame; values that have not accumulated
// enough history are NaN, an explicit "undefined" marker distinct from
// numeric zero. The package never mutates the input bars.
package indicator

import (
	"errors"
	"fmt"
	"math"

	"github.com/adrianotavares/crypto-trading-bot/config"
	"github.com/adrianotavares/crypto-trading-bot/types"
)

// ErrInsufficientHistory is returned when the series is shorter than the
// largest configured lookback. The caller should wait for more bars.
var ErrInsufficientHistory = errors.New("indicator: insufficient history")

// Frame is a Bar annotated with indicator values and signal flags.
// NaN fields are undefined; a flag is only ever set when every value it
// depends on is defined.
type Frame struct {
	Bar types.Bar

	RSI float64

	MACD       float64
	MACDSignal float64
	MACDHist   float64

	BBUpper  float64
	BBMiddle float64
	BBLower  float64

	StochK float64
	StochD float64

	ATR float64

	VolumeSMA   float64
	VolumeRatio float64

	RSIOversold   bool
	RSIOverbought bool
	MACDBullish   bool // MACD line crossed above the signal line on this bar
	MACDBearish   bool
	BBLowerTouch  bool // close at or below the lower band
	BBUpperTouch  bool
	StochBullish  bool // %K crossed above %D inside the oversold zone
	StochBearish  bool
	HighVolume    bool
}

// Defined reports whether v carries a real value.
func Defined(v float64) bool { return !math.IsNaN(v) }

// Set computes every configured indicator over a series in one pass.
type Set struct {
	cfg config.Indicators
}

// NewSet validates the configuration and returns a ready Set.
func NewSet(cfg config.Indicators) (*Set, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Set{cfg: cfg}, nil
}

// MinBars returns the minimum series length required before every
// configured indicator has at least one defined value.
func (s *Set) MinBars() int {
	min := s.cfg.RSIPeriod + 1
	if n := s.cfg.MACDSlow + s.cfg.MACDSignal; n > min {
		min = n
	}
	if s.cfg.BBPeriod > min {
		min = s.cfg.BBPeriod
	}
	if n := s.cfg.StochKPeriod + s.cfg.StochSmoothK + s.cfg.StochDPeriod - 2; n > min {
		min = n
	}
	if n := s.cfg.ATRPeriod + 1; n > min {
		min = n
	}
	if s.cfg.VolumePeriod > min {
		min = s.cfg.VolumePeriod
	}
	return min
}

// Compute produces one Frame per input bar. It fails with
// ErrInsufficientHistory when the series is shorter than MinBars.
func (s *Set) Compute(series types.Series) ([]Frame, error) {
	if need := s.MinBars(); len(series) < need {
		return nil, fmt.Errorf("%w: have %d bars, need %d", ErrInsufficientHistory, len(series), need)
	}

	closes := series.Closes()
	volumes := series.Volumes()

	rsi := RSI(closes, s.cfg.RSIPeriod)
	macd, macdSig, macdHist := MACD(closes, s.cfg.MACDFast, s.cfg.MACDSlow, s.cfg.MACDSignal)
	bbUpper, bbMid, bbLower := BollingerBands(closes, s.cfg.BBPeriod, s.cfg.BBStdDev)
	stochK, stochD := Stochastic(series, s.cfg.StochKPeriod, s.cfg.StochDPeriod, s.cfg.StochSmoothK)
	atr := ATR(series, s.cfg.ATRPeriod)
	volSMA := SMA(volumes, s.cfg.VolumePeriod)

	frames := make([]Frame, len(series))
	for i, bar := range series {
		f := Frame{
			Bar:        bar,
			RSI:        rsi[i],
			MACD:       macd[i],
			MACDSignal: macdSig[i],
			MACDHist:   macdHist[i],
			BBUpper:    bbUpper[i],
			BBMiddle:   bbMid[i],
			BBLower:    bbLower[i],
			StochK:     stochK[i],
			StochD:     stochD[i],
			ATR:        atr[i],
			VolumeSMA:  volSMA[i],
		}
		if Defined(volSMA[i]) && volSMA[i] > 0 {
			f.VolumeRatio = bar.Volume / volSMA[i]
			f.HighVolume = bar.Volume > volSMA[i]*s.cfg.VolumeMultiplier
		} else {
			f.VolumeRatio = math.NaN()
		}
		if Defined(rsi[i]) {
			f.RSIOversold = rsi[i] < s.cfg.RSIOversold
			f.RSIOverbought = rsi[i] > s.cfg.RSIOverbought
		}
		if Defined(bbUpper[i]) {
			f.BBLowerTouch = bar.Close <= bbLower[i]
			f.BBUpperTouch = bar.Close >= bbUpper[i]
		}
		if i > 0 {
			f.MACDBullish, f.MACDBearish = crossover(macd[i-1], macdSig[i-1], macd[i], macdSig[i])
			kUp, kDown := crossover(stochK[i-1], stochD[i-1], stochK[i], stochD[i])
			f.StochBullish = kUp && stochK[i] < s.cfg.StochOversold
			f.StochBearish = kDown && stochK[i] > s.cfg.StochOverbought
		}
		frames[i] = f
	}
	return frames, nil
}

// crossover reports whether a crossed above (or below) b on the current
// bar. Any undefined input yields no crossover.
func crossover(prevA, prevB, curA, curB float64) (up, down bool) {
	if !Defined(prevA) || !Defined(prevB) || !Defined(curA) || !Defined(curB) {
		return false, false
	}
	up = curA > curB && prevA <= prevB
	down = curA < curB && prevA >= prevB
	return up, down
}
