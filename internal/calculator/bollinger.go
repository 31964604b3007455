package calculator

import "math"

// Bands holds Bollinger band series aligned with the input prices.
type Bands struct {
	Middle []float64
	Upper  []float64
	Lower  []float64
}

// Bollinger computes SMA(period) +/- k population standard deviations.
func Bollinger(prices []float64, period int, k float64) (Bands, error) {
	mid, err := SMA(prices, period)
	if err != nil {
		return Bands{}, err
	}
	sd, err := StdDev(prices, period)
	if err != nil {
		return Bands{}, err
	}
	b := Bands{
		Middle: mid,
		Upper:  nanSeries(len(prices)),
		Lower:  nanSeries(len(prices)),
	}
	for i := range prices {
		if math.IsNaN(mid[i]) || math.IsNaN(sd[i]) {
			continue
		}
		b.Upper[i] = mid[i] + k*sd[i]
		b.Lower[i] = mid[i] - k*sd[i]
	}
	return b, nil
}
