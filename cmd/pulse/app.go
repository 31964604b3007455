package main

import (
	"context"
	"fmt"
	"io"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"CryptoPulse/internal/cache"
	"CryptoPulse/internal/collector"
	"CryptoPulse/internal/config"
	"CryptoPulse/internal/logging"
	"CryptoPulse/internal/metrics"
	"CryptoPulse/internal/service"
	"CryptoPulse/internal/service/serviceobs"
	"CryptoPulse/internal/trace"
)

// env bundles everything one command needs.
type env struct {
	cfg      *config.Config
	analyzer service.Analyzer
	metrics  *metrics.Metrics
	closers  []io.Closer
}

func (r *env) Close() {
	if err := trace.Shutdown(context.Background()); err != nil {
		log.WithError(err).Warn("trace shutdown")
	}
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i].Close(); err != nil {
			log.WithError(err).Warn("close")
		}
	}
	r.closers = nil
}

// setup loads the config, applies command flags and wires the analysis stack.
// On error everything opened so far is closed again.
func setup(c *cli.Context) (*env, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}
	applyFlags(c, cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	rt := &env{cfg: cfg, metrics: metrics.New()}
	if err := rt.wire(c.Bool("no-cache")); err != nil {
		rt.Close()
		return nil, err
	}
	return rt, nil
}

func (r *env) wire(noCache bool) error {
	cfg := r.cfg
	logCloser, err := logging.Init(logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format, File: cfg.Log.File})
	if err != nil {
		return err
	}
	r.closers = append(r.closers, logCloser)
	if err := trace.Init(cfg.Tracing.Enabled); err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}

	fetcher, err := collector.New(cfg.DataSource.Provider, cfg.DataSource.CSVPath,
		cfg.DataSource.BinanceKey, cfg.DataSource.BinanceSecret, cfg.Proxy)
	if err != nil {
		return err
	}

	var store cache.Cache = cache.NewNoopCache()
	if cfg.Cache.SQLitePath != "" && !noCache {
		sc, err := cache.NewSQLiteCache(cfg.Cache.SQLitePath)
		if err != nil {
			log.WithError(err).Warn("init sqlite cache failed, using noop")
		} else {
			store = sc
			r.closers = append(r.closers, sc)
		}
	}

	col := collector.NewCollector(fetcher, store, r.metrics)
	if col.MaxAge, err = cfg.CacheMaxAge(); err != nil {
		return err
	}
	r.analyzer = serviceobs.Wrap(service.New(col), r.metrics)
	log.WithFields(log.Fields{"provider": fetcher.Name(), "cache": cfg.Cache.SQLitePath}).Debug("analysis stack ready")
	return nil
}

func applyFlags(c *cli.Context, cfg *config.Config) {
	textFlags := map[string]*string{
		"ticker":     &cfg.Run.Ticker,
		"start":      &cfg.Run.Start,
		"end":        &cfg.Run.End,
		"lookback":   &cfg.Run.Lookback,
		"interval":   &cfg.Run.Interval,
		"rule":       &cfg.Run.Rule,
		"thresholds": &cfg.Run.Thresholds,
		"filter":     &cfg.Run.SignalFilter,
		"pairing":    &cfg.Run.Pairing,
		"provider":   &cfg.DataSource.Provider,
	}
	for name, dst := range textFlags {
		if c.IsSet(name) {
			*dst = c.String(name)
		}
	}
	if c.IsSet("rsi-low") {
		v := c.Float64("rsi-low")
		cfg.Run.RSILow = &v
	}
	if c.IsSet("rsi-high") {
		v := c.Float64("rsi-high")
		cfg.Run.RSIHigh = &v
	}
	if c.IsSet("ticker") {
		cfg.Watch.Tickers = []string{cfg.Run.Ticker}
	}
}
