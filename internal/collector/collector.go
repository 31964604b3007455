package collector

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"CryptoPulse/internal/cache"
	"CryptoPulse/internal/metrics"
	"CryptoPulse/internal/model"
)

// Collector fetches price series through a read-through cache.
type Collector struct {
	Fetcher Fetcher
	Cache   cache.Cache
	Metrics *metrics.Metrics
	// MaxAge expires cached series whose range was still open when fetched.
	MaxAge  time.Duration
	Retries int
	Backoff time.Duration
}

// NewCollector creates a new Collector. A nil cache disables caching.
func NewCollector(fetcher Fetcher, c cache.Cache, m *metrics.Metrics) *Collector {
	if c == nil {
		c = cache.NewNoopCache()
	}
	return &Collector{
		Fetcher: fetcher,
		Cache:   c,
		Metrics: m,
		MaxAge:  15 * time.Minute,
		Retries: 2,
		Backoff: time.Second,
	}
}

// New returns the fetcher for a provider name.
func New(provider, csvDir, binanceKey, binanceSecret, proxyURL string) (Fetcher, error) {
	switch strings.ToLower(provider) {
	case "", "yahoo":
		return NewYahooFetcher(proxyURL), nil
	case "binance":
		return NewBinanceFetcher(binanceKey, binanceSecret, proxyURL), nil
	case "csv":
		if csvDir == "" {
			return nil, fmt.Errorf("%w: csv provider needs data_source.csv_path", model.ErrInvalidConfig)
		}
		return NewCSVFetcher(csvDir), nil
	default:
		return nil, fmt.Errorf("%w: unknown data provider %q", model.ErrInvalidConfig, provider)
	}
}

// Collect returns the close series for [start, end] at interval.
// The range is validated here so no provider is asked for an empty window.
func (c *Collector) Collect(ctx context.Context, ticker string, start, end time.Time, interval model.Interval) (model.PriceSeries, error) {
	if !start.Before(end) {
		return model.PriceSeries{}, fmt.Errorf("%w: start %s is not before end %s",
			model.ErrInvalidConfig, start.Format("2006-01-02"), end.Format("2006-01-02"))
	}
	key := c.key(ticker, start, end, interval)
	logger := log.WithFields(log.Fields{"ticker": ticker, "interval": interval, "provider": c.Fetcher.Name()})

	series, ok, err := c.Cache.Get(key)
	if err != nil {
		logger.WithError(err).Warn("cache read failed, treating as miss")
		ok = false
	}
	if ok && c.fresh(series, end, interval) {
		c.Metrics.ObserveCache(true)
		logger.Debug("price series served from cache")
		return series, nil
	}
	c.Metrics.ObserveCache(false)

	series, err = c.fetchWithRetry(ctx, ticker, start, end, interval)
	if err != nil {
		return model.PriceSeries{}, err
	}
	if err := c.Cache.Put(key, series); err != nil {
		logger.WithError(err).Warn("cache write failed")
	}
	logger.WithField("bars", series.Len()).Info("price series fetched")
	return series, nil
}

// key buckets the range by MaxAge so repeated "up to now" runs share an entry.
func (c *Collector) key(ticker string, start, end time.Time, interval model.Interval) cache.Key {
	k := cache.Key{Ticker: ticker, Interval: interval, Start: start, End: end}
	if c.MaxAge > 0 {
		k.Start = start.Truncate(c.MaxAge)
		k.End = end.Truncate(c.MaxAge)
	}
	return k
}

// fresh reports whether a cached series can still be served. A range whose
// last bar had closed when it was fetched never changes.
func (c *Collector) fresh(series model.PriceSeries, end time.Time, interval model.Interval) bool {
	if series.FetchedAt.After(end.Add(interval.Duration())) {
		return true
	}
	return c.MaxAge > 0 && time.Since(series.FetchedAt) < c.MaxAge
}

func (c *Collector) fetchWithRetry(ctx context.Context, ticker string, start, end time.Time, interval model.Interval) (model.PriceSeries, error) {
	var lastErr error
	for attempt := 0; attempt <= c.Retries; attempt++ {
		if attempt > 0 {
			log.WithFields(log.Fields{"ticker": ticker, "attempt": attempt}).
				WithError(lastErr).Warn("retrying price fetch")
			select {
			case <-ctx.Done():
				return model.PriceSeries{}, ctx.Err()
			case <-time.After(c.Backoff * time.Duration(attempt)):
			}
		}
		begin := time.Now()
		series, err := c.Fetcher.Fetch(ctx, ticker, start, end, interval)
		c.Metrics.ObserveFetch(c.Fetcher.Name(), time.Since(begin), err)
		if err == nil {
			return series, nil
		}
		lastErr = err
		if !retryable(err) {
			break
		}
	}
	return model.PriceSeries{}, fmt.Errorf("fetch %s: %w", ticker, lastErr)
}

func retryable(err error) bool {
	return !errors.Is(err, model.ErrDataUnavailable) &&
		!errors.Is(err, model.ErrUnknownTicker) &&
		!errors.Is(err, context.Canceled) &&
		!errors.Is(err, context.DeadlineExceeded)
}
