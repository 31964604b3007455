package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CryptoPulse/internal/collector"
	"CryptoPulse/internal/model"
)

func runConfig(ticker string) model.RunConfig {
	return model.RunConfig{
		Ticker:       ticker,
		Start:        time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		End:          time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
		Interval:     model.IntervalDaily,
		SignalFilter: model.FilterAll,
		Rule:         model.RuleMomentumTriple,
		Thresholds:   model.StrictThresholds,
		Pairing:      model.PairPositional,
	}
}

func TestRun_Momentum(t *testing.T) {
	mock := &collector.MockFetcher{Closes: []float64{100, 102, 105, 103, 101, 98, 95, 97, 100, 104}}
	svc := New(collector.NewCollector(mock, nil, nil))

	report, err := svc.Run(context.Background(), runConfig("btc"))
	require.NoError(t, err)

	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, "BTC-USD", report.Config.Ticker, "ticker is normalized through the catalog")
	assert.Len(t, report.Table, 10)
	assert.Len(t, report.Signals, 8, "two warm-up rows are not evaluated")

	// Buy@105 Sell@101 pair first, then Buy@100 is matched with the second Sell.
	require.False(t, report.Summary.Insufficient)
	assert.Equal(t, model.PairPositional, report.Summary.Policy)
	assert.Equal(t, -4.0, report.Summary.Pairs[0].Profit)
	assert.Equal(t, 6, len(report.Alerts))
	assert.Equal(t, 0, report.Downgrades)
}

func TestRun_FilterOnlyAffectsSignals(t *testing.T) {
	mock := &collector.MockFetcher{Closes: []float64{100, 102, 105, 103, 101, 98, 95, 97, 100, 104}}
	svc := New(collector.NewCollector(mock, nil, nil))

	cfg := runConfig("BTC-USD")
	cfg.SignalFilter = model.FilterBuy
	report, err := svc.Run(context.Background(), cfg)
	require.NoError(t, err)

	for _, row := range report.Signals {
		assert.Equal(t, model.SignalBuy, row.Signal)
	}
	assert.Len(t, report.Alerts, 6)
}

func TestRun_Errors(t *testing.T) {
	svc := New(collector.NewCollector(&collector.MockFetcher{}, nil, nil))
	_, err := svc.Run(context.Background(), runConfig("BTC-USD"))
	assert.ErrorIs(t, err, model.ErrDataUnavailable)

	_, err = svc.Run(context.Background(), runConfig("DOGE2-USD"))
	assert.ErrorIs(t, err, model.ErrUnknownTicker)

	cfg := runConfig("BTC-USD")
	cfg.Thresholds = model.Thresholds{RSILow: 80, RSIHigh: 20}
	_, err = svc.Run(context.Background(), cfg)
	assert.ErrorIs(t, err, model.ErrInvalidConfig)

	svc = New(collector.NewCollector(&collector.MockFetcher{Closes: []float64{-1, 0}}, nil, nil))
	_, err = svc.Run(context.Background(), runConfig("BTC-USD"))
	assert.ErrorIs(t, err, model.ErrEmptySeries)
}
