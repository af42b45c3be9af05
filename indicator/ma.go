package indicator

import "math"

// SMA computes the simple moving average. The first period-1 entries are
// NaN.
func SMA(series []float64, period int) []float64 {
	out := nanSlice(len(series))
	if period <= 0 || len(series) < period {
		return out
	}
	sum := 0.0
	for i, v := range series {
		sum += v
		if i >= period {
			sum -= series[i-period]
		}
		if i >= period-1 {
			out[i] = sum / float64(period)
		}
	}
	return out
}

// EMA computes the exponential moving average, seeding the first value
// with a simple average over the initial period.
func EMA(series []float64, period int) []float64 {
	out := nanSlice(len(series))
	if period <= 0 || len(series) < period {
		return out
	}
	multiplier := 2.0 / float64(period+1)

	sum := 0.0
	for i := 0; i < period; i++ {
		sum += series[i]
	}
	out[period-1] = sum / float64(period)

	for i := period; i < len(series); i++ {
		out[i] = (series[i]-out[i-1])*multiplier + out[i-1]
	}
	return out
}

func nanSlice(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}
