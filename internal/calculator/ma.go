package calculator

import "math"

// SMA computes the rolling simple moving average.
// The first period-1 values are NaN.
func SMA(prices []float64, period int) ([]float64, error) {
	if period <= 0 {
		return nil, errPeriod
	}
	out := nanSeries(len(prices))
	if len(prices) < period {
		return out, nil
	}
	sum := 0.0
	for i, p := range prices {
		sum += p
		if i >= period {
			sum -= prices[i-period]
		}
		if i >= period-1 {
			out[i] = sum / float64(period)
		}
	}
	return out, nil
}

// EMA computes the exponential moving average with alpha = 2/(period+1),
// seeded by the simple average of the first period prices.
// Output is defined from index period-1.
func EMA(prices []float64, period int) ([]float64, error) {
	if period <= 0 {
		return nil, errPeriod
	}
	out := nanSeries(len(prices))
	emaFrom(prices, 0, period, out)
	return out, nil
}

// emaFrom writes the EMA of values[start:] into out, aligned to the original index.
func emaFrom(values []float64, start, period int, out []float64) {
	if len(values)-start < period {
		return
	}
	alpha := 2.0 / float64(period+1)

	seed := 0.0
	for i := start; i < start+period; i++ {
		seed += values[i]
	}
	prev := seed / float64(period)
	out[start+period-1] = prev

	for i := start + period; i < len(values); i++ {
		prev = alpha*values[i] + (1-alpha)*prev
		out[i] = prev
	}
}

// StdDev computes the rolling population standard deviation.
// The first period-1 values are NaN.
func StdDev(prices []float64, period int) ([]float64, error) {
	if period <= 0 {
		return nil, errPeriod
	}
	out := nanSeries(len(prices))
	for i := period - 1; i < len(prices); i++ {
		window := prices[i-period+1 : i+1]
		mean := 0.0
		for _, p := range window {
			mean += p
		}
		mean /= float64(period)
		variance := 0.0
		for _, p := range window {
			d := p - mean
			variance += d * d
		}
		out[i] = math.Sqrt(variance / float64(period))
	}
	return out, nil
}
