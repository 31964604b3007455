package collector

import (
	"context"
	"time"

	"CryptoPulse/internal/model"
)

// Fetcher defines the interface for fetching market data.
// Implementations return ErrDataUnavailable (wrapped) when the provider has
// no rows for the range or no close prices at all.
type Fetcher interface {
	Fetch(ctx context.Context, ticker string, start, end time.Time, interval model.Interval) (model.PriceSeries, error)
	Name() string
}
