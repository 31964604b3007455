package processor

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CryptoPulse/internal/model"
)

var day0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func seriesOf(prices ...float64) model.PriceSeries {
	s := model.PriceSeries{Ticker: "BTC-USD", Interval: model.IntervalDaily}
	for i, p := range prices {
		s.Bars = append(s.Bars, model.OHLCV{Time: day0.AddDate(0, 0, i), Close: p})
	}
	return s
}

func runConfig(rule model.RuleChoice) model.RunConfig {
	return model.RunConfig{
		Ticker:       "BTC-USD",
		Interval:     model.IntervalDaily,
		SignalFilter: model.FilterAll,
		Rule:         rule,
		Thresholds:   model.StrictThresholds,
		Pairing:      model.PairFIFO,
		Indicators:   model.DefaultIndicatorConfig(),
	}
}

func signalsOf(rows []model.SignalRow) []model.Signal {
	out := make([]model.Signal, len(rows))
	for i, r := range rows {
		out[i] = r.Signal
	}
	return out
}

func TestProcess_MomentumEndToEnd(t *testing.T) {
	series := seriesOf(100, 102, 105, 103, 101, 98, 95, 97, 100, 104)
	rows, err := Process(series, runConfig(model.RuleMomentumTriple))
	require.NoError(t, err)

	// Strict 3-point rule: 105>103>101, 101>98>95 and 95<97<100 are monotone too.
	H, B, S := model.SignalHold, model.SignalBuy, model.SignalSell
	assert.Equal(t, []model.Signal{H, H, B, H, S, S, S, H, B, B}, signalsOf(rows))
	assert.False(t, rows[0].Evaluable)
	assert.False(t, rows[1].Evaluable)
	assert.True(t, rows[2].Evaluable)
	assert.Len(t, Evaluable(rows), 8)
}

func TestProcess_MomentumFlatSeries(t *testing.T) {
	rows, err := Process(seriesOf(100, 100, 100), runConfig(model.RuleMomentumTriple))
	require.NoError(t, err)
	for i, r := range rows {
		assert.Equalf(t, model.SignalHold, r.Signal, "index %d", i)
	}
}

func TestProcess_ThresholdWarmupExcluded(t *testing.T) {
	prices := make([]float64, 60)
	for i := range prices {
		prices[i] = 100 + 10*math.Sin(float64(i)/4)
	}
	rows, err := Process(seriesOf(prices...), runConfig(model.RuleThresholdCrossover))
	require.NoError(t, err)
	require.Len(t, rows, 60)

	// macd_signal is the last indicator to warm up: slow-1 + signal-1.
	for i := 0; i < 33; i++ {
		assert.Falsef(t, rows[i].Evaluable, "row %d should be warm-up", i)
		assert.Equal(t, model.SignalHold, rows[i].Signal)
	}
	for i := 33; i < 60; i++ {
		assert.Truef(t, rows[i].Evaluable, "row %d should be evaluable", i)
	}
	assert.Equal(t, 0, Downgrades(rows))
}

func TestProcess_CleansNonFinite(t *testing.T) {
	series := seriesOf(100, math.NaN(), 102, math.Inf(1), 105, -3)
	rows, err := Process(series, runConfig(model.RuleMomentumTriple))
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, model.SignalBuy, rows[2].Signal)
}

func TestProcess_EmptySeries(t *testing.T) {
	_, err := Process(seriesOf(math.NaN(), math.NaN()), runConfig(model.RuleMomentumTriple))
	assert.True(t, errors.Is(err, model.ErrEmptySeries))

	_, err = Process(model.PriceSeries{Ticker: "ETH-USD"}, runConfig(model.RuleThresholdCrossover))
	assert.True(t, errors.Is(err, model.ErrEmptySeries))
}

func TestClean_SortsAndDedupes(t *testing.T) {
	s := model.PriceSeries{Bars: []model.OHLCV{
		{Time: day0.AddDate(0, 0, 2), Close: 3},
		{Time: day0, Close: 1},
		{Time: day0.AddDate(0, 0, 1), Close: 2},
		{Time: day0.AddDate(0, 0, 1), Close: 2.5},
	}}
	cleaned, dropped := Clean(s)
	require.Len(t, cleaned.Bars, 3)
	assert.Equal(t, 1, dropped)
	assert.Equal(t, []float64{1, 2.5, 3}, cleaned.Closes())
}

func TestFilter(t *testing.T) {
	rows, err := Process(seriesOf(100, 102, 105, 103, 101, 98), runConfig(model.RuleMomentumTriple))
	require.NoError(t, err)

	buys := Filter(Evaluable(rows), model.FilterBuy)
	sells := Filter(Evaluable(rows), model.FilterSell)
	all := Filter(Evaluable(rows), model.FilterAll)
	assert.Len(t, buys, 1)
	assert.Len(t, sells, 2)
	assert.Len(t, all, 4)
}

func TestProcess_OverflowDowngradesToHold(t *testing.T) {
	prices := make([]float64, 40)
	for i := range prices {
		prices[i] = 1e308
	}
	rows, err := Process(seriesOf(prices...), runConfig(model.RuleThresholdCrossover))
	require.NoError(t, err)
	require.Len(t, rows, 40)

	for i := 33; i < 40; i++ {
		assert.Truef(t, rows[i].Evaluable, "row %d should be evaluable", i)
		assert.Truef(t, errors.Is(rows[i].Err, model.ErrIndicatorComputation), "row %d: %v", i, rows[i].Err)
		assert.Equal(t, model.SignalHold, rows[i].Signal)
	}
	assert.GreaterOrEqual(t, Downgrades(rows), 7)
}
