package calculator

// PercentChange returns 100 * (p[t] - p[t-k]) / p[t-k]. The first k values are NaN.
func PercentChange(prices []float64, k int) ([]float64, error) {
	if k <= 0 {
		return nil, errPeriod
	}
	out := nanSeries(len(prices))
	for i := k; i < len(prices); i++ {
		out[i] = 100 * (prices[i] - prices[i-k]) / prices[i-k]
	}
	return out, nil
}
