package collector

import (
	"context"
	"fmt"
	"time"

	"CryptoPulse/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Closes []float64
	Err    error
	Calls  int
}

func (m *MockFetcher) Name() string { return "mock" }

// Fetch spaces the closes one interval apart starting at start.
func (m *MockFetcher) Fetch(_ context.Context, ticker string, start, _ time.Time, interval model.Interval) (model.PriceSeries, error) {
	m.Calls++
	if m.Err != nil {
		return model.PriceSeries{}, m.Err
	}
	if len(m.Closes) == 0 {
		return model.PriceSeries{}, fmt.Errorf("%w: mock has no data", model.ErrDataUnavailable)
	}
	series := model.PriceSeries{Ticker: ticker, Interval: interval, FetchedAt: time.Now()}
	for i, c := range m.Closes {
		series.Bars = append(series.Bars, model.OHLCV{
			Time:  start.Add(time.Duration(i) * interval.Duration()),
			Open:  c,
			High:  c,
			Low:   c,
			Close: c,
		})
	}
	return series, nil
}
