package indicator

import (
	"math"

	"github.com/adrianotavares/crypto-trading-bot/types"
)

// Stochastic computes the smoothed %K and %D oscillator lines over the
// high/low/close range. Warm-up entries are NaN.
func Stochastic(series types.Series, kPeriod, dPeriod, smoothK int) (k, d []float64) {
	n := len(series)
	rawK := nanSlice(n)
	if kPeriod <= 0 || n < kPeriod {
		return nanSlice(n), nanSlice(n)
	}

	for i := kPeriod - 1; i < n; i++ {
		hh := math.Inf(-1)
		ll := math.Inf(1)
		for j := i - kPeriod + 1; j <= i; j++ {
			if series[j].High > hh {
				hh = series[j].High
			}
			if series[j].Low < ll {
				ll = series[j].Low
			}
		}
		if hh == ll {
			// Flat range: the oscillator is conventionally pinned mid-scale.
			rawK[i] = 50
			continue
		}
		rawK[i] = 100 * (series[i].Close - ll) / (hh - ll)
	}

	k = smaSkippingNaN(rawK, smoothK)
	d = smaSkippingNaN(k, dPeriod)
	return k, d
}

// smaSkippingNaN averages over the trailing window only once every value
// in the window is defined.
func smaSkippingNaN(series []float64, period int) []float64 {
	out := nanSlice(len(series))
	if period <= 0 {
		return out
	}
	for i := period - 1; i < len(series); i++ {
		sum := 0.0
		ok := true
		for j := i - period + 1; j <= i; j++ {
			if math.IsNaN(series[j]) {
				ok = false
				break
			}
			sum += series[j]
		}
		if ok {
			out[i] = sum / float64(period)
		}
	}
	return out
}
