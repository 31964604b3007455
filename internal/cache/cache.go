// Package cache stores fetched price series keyed on the requested range.
package cache

import (
	"fmt"
	"time"

	"CryptoPulse/internal/model"
)

// Key identifies one provider request.
type Key struct {
	Ticker   string
	Interval model.Interval
	Start    time.Time
	End      time.Time
}

func (k Key) String() string {
	return fmt.Sprintf("%s/%s/%s/%s", k.Ticker, k.Interval,
		k.Start.UTC().Format(time.RFC3339), k.End.UTC().Format(time.RFC3339))
}

// Cache is a read-through store for price series.
type Cache interface {
	// Get returns ok=false on a miss.
	Get(key Key) (series model.PriceSeries, ok bool, err error)
	Put(key Key, series model.PriceSeries) error
	Close() error
}
