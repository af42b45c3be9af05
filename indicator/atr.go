package indicator

import (
	"math"

	"github.com/adrianotavares/crypto-trading-bot/types"
)

// ATR computes the Average True Range with Wilder's smoothing. The first
// period entries are NaN.
func ATR(series types.Series, period int) []float64 {
	n := len(series)
	out := nanSlice(n)
	if period <= 0 || n < period+1 {
		return out
	}

	tr := make([]float64, n)
	for i := 1; i < n; i++ {
		hl := series[i].High - series[i].Low
		hc := math.Abs(series[i].High - series[i-1].Close)
		lc := math.Abs(series[i].Low - series[i-1].Close)
		tr[i] = math.Max(hl, math.Max(hc, lc))
	}

	sum := 0.0
	for i := 1; i <= period; i++ {
		sum += tr[i]
	}
	out[period] = sum / float64(period)

	for i := period + 1; i < n; i++ {
		out[i] = (out[i-1]*float64(period-1) + tr[i]) / float64(period)
	}
	return out
}
