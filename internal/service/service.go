// Package service runs one complete analysis: fetch, process, evaluate, report.
package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"CryptoPulse/internal/alertlog"
	"CryptoPulse/internal/backtest"
	"CryptoPulse/internal/model"
	"CryptoPulse/internal/processor"
)

// Analyzer produces a Report for one run configuration.
type Analyzer interface {
	Run(ctx context.Context, cfg model.RunConfig) (*model.Report, error)
}

// SeriesSource is satisfied by collector.Collector.
type SeriesSource interface {
	Collect(ctx context.Context, ticker string, start, end time.Time, interval model.Interval) (model.PriceSeries, error)
}

type Service struct {
	source SeriesSource
	now    func() time.Time
}

func New(source SeriesSource) *Service {
	return &Service{source: source, now: time.Now}
}

// Run fails as a whole on any data error; it never returns a partial report.
func (s *Service) Run(ctx context.Context, cfg model.RunConfig) (*model.Report, error) {
	instrument, err := model.LookupInstrument(cfg.Ticker)
	if err != nil {
		return nil, err
	}
	cfg.Ticker = instrument.Ticker
	if err := cfg.Thresholds.Validate(); err != nil {
		return nil, err
	}

	series, err := s.source.Collect(ctx, cfg.Ticker, cfg.Start, cfg.End, cfg.Interval)
	if err != nil {
		return nil, err
	}

	table, err := processor.Process(series, cfg)
	if err != nil {
		return nil, err
	}
	evaluable := processor.Evaluable(table)

	report := &model.Report{
		RunID:       uuid.NewString(),
		Config:      cfg,
		Instrument:  instrument,
		Table:       table,
		Signals:     processor.Filter(evaluable, cfg.SignalFilter),
		Alerts:      alertlog.Build(evaluable),
		Summary:     backtest.Evaluate(evaluable, cfg.Pairing),
		Downgrades:  processor.Downgrades(table),
		GeneratedAt: s.now(),
	}

	log.WithFields(log.Fields{
		"run_id":  report.RunID,
		"ticker":  cfg.Ticker,
		"rule":    cfg.Rule,
		"rows":    len(table),
		"signals": len(report.Alerts),
	}).Debug("analysis finished")
	return report, nil
}
