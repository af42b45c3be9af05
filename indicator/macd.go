package indicator

import "math"

// MACD computes the MACD line (fast EMA minus slow EMA), its EMA signal
// line, and the histogram. Warm-up entries are NaN; the signal line is
// seeded from the first defined MACD value.
func MACD(series []float64, fast, slow, signal int) (macd, signalLine, hist []float64) {
	n := len(series)
	macd = nanSlice(n)
	signalLine = nanSlice(n)
	hist = nanSlice(n)
	if n < slow {
		return macd, signalLine, hist
	}

	fastEMA := EMA(series, fast)
	slowEMA := EMA(series, slow)
	firstValid := -1
	for i := range series {
		if math.IsNaN(fastEMA[i]) || math.IsNaN(slowEMA[i]) {
			continue
		}
		macd[i] = fastEMA[i] - slowEMA[i]
		if firstValid == -1 {
			firstValid = i
		}
	}
	if firstValid == -1 || n-firstValid < signal {
		return macd, signalLine, hist
	}

	sigRaw := EMA(macd[firstValid:], signal)
	for off, v := range sigRaw {
		i := firstValid + off
		if math.IsNaN(v) {
			continue
		}
		signalLine[i] = v
		hist[i] = macd[i] - v
	}
	return macd, signalLine, hist
}
