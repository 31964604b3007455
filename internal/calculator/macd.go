package calculator

import (
	"errors"
	"math"
)

// MACD returns the MACD line (EMA(fast) - EMA(slow)) and its signal line
// (EMA(signal) of the MACD line, seeded from the first defined MACD value).
func MACD(prices []float64, fast, slow, signal int) (macd, signalLine []float64, err error) {
	if fast <= 0 || slow <= 0 || signal <= 0 {
		return nil, nil, errPeriod
	}
	if fast >= slow {
		return nil, nil, errors.New("fast period must be smaller than slow period")
	}

	fastEMA, _ := EMA(prices, fast)
	slowEMA, _ := EMA(prices, slow)

	macd = nanSeries(len(prices))
	for i := range prices {
		if math.IsNaN(fastEMA[i]) || math.IsNaN(slowEMA[i]) {
			continue
		}
		macd[i] = fastEMA[i] - slowEMA[i]
	}

	signalLine = nanSeries(len(prices))
	if start := firstDefined(macd); start >= 0 {
		emaFrom(macd, start, signal, signalLine)
	}
	return macd, signalLine, nil
}
