// Package processor turns a raw price series into the annotated signal table.
package processor

import (
	"errors"
	"fmt"
	"math"
	"sort"

	log "github.com/sirupsen/logrus"

	"CryptoPulse/internal/calculator"
	"CryptoPulse/internal/model"
	"CryptoPulse/internal/strategy"
)

// Clean drops bars whose close is missing, non-finite or non-positive, sorts
// the remainder chronologically and keeps the last bar of duplicate timestamps.
func Clean(series model.PriceSeries) (model.PriceSeries, int) {
	bars := make([]model.OHLCV, 0, len(series.Bars))
	for _, b := range series.Bars {
		if math.IsNaN(b.Close) || math.IsInf(b.Close, 0) || b.Close <= 0 {
			continue
		}
		bars = append(bars, b)
	}
	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })

	deduped := bars[:0]
	for _, b := range bars {
		if n := len(deduped); n > 0 && deduped[n-1].Time.Equal(b.Time) {
			deduped[n-1] = b
			continue
		}
		deduped = append(deduped, b)
	}

	out := series
	out.Bars = deduped
	return out, len(series.Bars) - len(deduped)
}

// Process cleans the series, computes the indicator table and evaluates the
// configured rule on every row. The returned table has one row per cleaned bar;
// rows without enough history are marked not evaluable and hold SignalHold.
func Process(series model.PriceSeries, cfg model.RunConfig) ([]model.SignalRow, error) {
	cleaned, dropped := Clean(series)
	if cleaned.Len() == 0 {
		return nil, fmt.Errorf("%w: %s has no usable close after cleaning %d bars",
			model.ErrEmptySeries, series.Ticker, len(series.Bars))
	}
	if dropped > 0 {
		log.WithFields(log.Fields{"ticker": series.Ticker, "dropped": dropped}).Warn("dropped unusable bars")
	}

	rule, err := strategy.NewRule(cfg.Rule, cfg.Thresholds)
	if err != nil {
		return nil, err
	}

	indicators, err := calculator.Table(cleaned, cfg.Indicators.WithDefaults())
	if err != nil {
		return nil, fmt.Errorf("compute indicators: %w", err)
	}

	rows := make([]model.SignalRow, len(indicators))
	lookback := rule.Lookback()
	for i := range indicators {
		start := i - lookback
		if start < 0 {
			start = 0
		}
		sig, err := strategy.Evaluate(rule, indicators[start:i+1])
		rows[i] = model.SignalRow{
			IndicatorRow: indicators[i],
			Signal:       sig,
			Evaluable:    !errors.Is(err, model.ErrInsufficientHistory),
		}
		if err != nil && rows[i].Evaluable {
			rows[i].Err = err
			log.WithFields(log.Fields{
				"ticker": series.Ticker,
				"time":   indicators[i].Time,
				"rule":   rule.Name(),
			}).WithError(err).Debug("rule downgraded to hold")
		}
	}
	return rows, nil
}

// Evaluable returns the rows that entered signal evaluation.
func Evaluable(rows []model.SignalRow) []model.SignalRow {
	out := make([]model.SignalRow, 0, len(rows))
	for _, r := range rows {
		if r.Evaluable {
			out = append(out, r)
		}
	}
	return out
}

// Filter keeps the rows whose signal passes f.
func Filter(rows []model.SignalRow, f model.SignalFilter) []model.SignalRow {
	out := make([]model.SignalRow, 0, len(rows))
	for _, r := range rows {
		if f.Match(r.Signal) {
			out = append(out, r)
		}
	}
	return out
}

// Downgrades counts evaluable rows forced to Hold by an invalid indicator.
func Downgrades(rows []model.SignalRow) int {
	n := 0
	for _, r := range rows {
		if r.Evaluable && r.Err != nil {
			n++
		}
	}
	return n
}
