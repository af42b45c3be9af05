package indicator

import "math"

// BollingerBands computes the SMA middle band and the upper/lower bands
// at stdDev standard deviations. Warm-up entries are NaN.
func BollingerBands(series []float64, period int, stdDev float64) (upper, middle, lower []float64) {
	n := len(series)
	upper = nanSlice(n)
	middle = SMA(series, period)
	lower = nanSlice(n)
	if period <= 0 || n < period {
		return upper, middle, lower
	}

	for i := period - 1; i < n; i++ {
		mean := middle[i]
		variance := 0.0
		for j := i - period + 1; j <= i; j++ {
			d := series[j] - mean
			variance += d * d
		}
		sd := math.Sqrt(variance / float64(period))
		upper[i] = mean + stdDev*sd
		lower[i] = mean - stdDev*sd
	}
	return upper, middle, lower
}
