package model

import (
	"fmt"
	"strings"
	"time"
)

// Interval is the bar spacing requested from a data provider.
type Interval string

const (
	IntervalDaily  Interval = "1d"
	IntervalHourly Interval = "1h"
)

// ParseInterval accepts both the provider form ("1d") and the descriptive form ("daily").
func ParseInterval(s string) (Interval, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1d", "d", "day", "daily":
		return IntervalDaily, nil
	case "1h", "h", "hour", "hourly":
		return IntervalHourly, nil
	}
	return "", fmt.Errorf("%w: unknown interval %q", ErrInvalidConfig, s)
}

// Duration returns the nominal length of one bar.
func (i Interval) Duration() time.Duration {
	if i == IntervalHourly {
		return time.Hour
	}
	return 24 * time.Hour
}

// OHLCV represents a single candlestick bar.
type OHLCV struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// PriceSeries holds the bars of one instrument in chronological order.
type PriceSeries struct {
	Ticker    string
	Interval  Interval
	Bars      []OHLCV
	FetchedAt time.Time
}

// Closes returns the close prices aligned with Bars.
func (s PriceSeries) Closes() []float64 {
	closes := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		closes[i] = b.Close
	}
	return closes
}

// Len returns the number of bars.
func (s PriceSeries) Len() int { return len(s.Bars) }
