package calculator

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/markcheno/go-talib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CryptoPulse/internal/model"
)

const tol = 1e-9

func randomWalk(n int, seed int64) []float64 {
	r := rand.New(rand.NewSource(seed))
	prices := make([]float64, n)
	p := 100.0
	for i := range prices {
		p *= 1 + (r.Float64()-0.5)*0.06
		prices[i] = p
	}
	return prices
}

func assertAligned(t *testing.T, label string, got []float64, n, warmup int) {
	t.Helper()
	require.Len(t, got, n, label)
	for i := 0; i < warmup && i < n; i++ {
		assert.Truef(t, math.IsNaN(got[i]), "%s[%d] should be undefined, got %f", label, i, got[i])
	}
	for i := warmup; i < n; i++ {
		assert.Falsef(t, math.IsNaN(got[i]), "%s[%d] should be defined", label, i)
	}
}

func TestSMA_HandCalculated(t *testing.T) {
	got, err := SMA([]float64{100, 102, 104, 103, 105}, 3)
	require.NoError(t, err)
	assertAligned(t, "sma", got, 5, 2)
	assert.InDelta(t, 102.0, got[2], tol)
	assert.InDelta(t, 103.0, got[3], tol)
	assert.InDelta(t, 104.0, got[4], tol)
}

func TestEMA_SeedAndRecursion(t *testing.T) {
	prices := randomWalk(120, 7)
	period := 10
	got, err := EMA(prices, period)
	require.NoError(t, err)
	assertAligned(t, "ema", got, len(prices), period-1)

	seed := 0.0
	for _, p := range prices[:period] {
		seed += p
	}
	assert.InDelta(t, seed/float64(period), got[period-1], tol)

	alpha := 2.0 / float64(period+1)
	for i := period; i < len(prices); i++ {
		want := alpha*prices[i] + (1-alpha)*got[i-1]
		assert.InDeltaf(t, want, got[i], tol, "ema recursion at %d", i)
	}
}

func TestRSI_BoundsAndWarmup(t *testing.T) {
	for seed := int64(1); seed <= 5; seed++ {
		prices := randomWalk(200, seed)
		got, err := RSI(prices, 14)
		require.NoError(t, err)
		assertAligned(t, "rsi", got, len(prices), 14)
		for i := 14; i < len(got); i++ {
			assert.GreaterOrEqual(t, got[i], 0.0)
			assert.LessOrEqual(t, got[i], 100.0)
		}
	}
}

func TestRSI_MonotoneSeriesIs100(t *testing.T) {
	prices := make([]float64, 20)
	for i := range prices {
		prices[i] = 100 + float64(i)
	}
	got, err := RSI(prices, 14)
	require.NoError(t, err)
	for i := 14; i < len(got); i++ {
		assert.Equal(t, 100.0, got[i])
	}
}

func TestRSI_AllLossesIsZero(t *testing.T) {
	prices := make([]float64, 20)
	for i := range prices {
		prices[i] = 200 - float64(i)
	}
	got, err := RSI(prices, 14)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, got[19], tol)
}

func TestMACD_Alignment(t *testing.T) {
	prices := randomWalk(100, 3)
	macd, signal, err := MACD(prices, 12, 26, 9)
	require.NoError(t, err)
	assertAligned(t, "macd", macd, len(prices), 25)
	assertAligned(t, "macd_signal", signal, len(prices), 25+8)

	fast, _ := EMA(prices, 12)
	slow, _ := EMA(prices, 26)
	for i := 25; i < len(prices); i++ {
		assert.InDelta(t, fast[i]-slow[i], macd[i], tol)
	}

	_, _, err = MACD(prices, 26, 12, 9)
	assert.Error(t, err)
}

func TestBollinger_FlatSeriesCollapses(t *testing.T) {
	prices := []float64{5, 5, 5, 5, 5}
	b, err := Bollinger(prices, 3, 2)
	require.NoError(t, err)
	assertAligned(t, "upper", b.Upper, 5, 2)
	for i := 2; i < 5; i++ {
		assert.InDelta(t, 5.0, b.Upper[i], tol)
		assert.InDelta(t, 5.0, b.Lower[i], tol)
	}
}

func TestPercentChange(t *testing.T) {
	got, err := PercentChange([]float64{100, 110, 99}, 1)
	require.NoError(t, err)
	assertAligned(t, "pct", got, 3, 1)
	assert.InDelta(t, 10.0, got[1], tol)
	assert.InDelta(t, -10.0, got[2], tol)

	_, err = PercentChange([]float64{1}, 0)
	assert.Error(t, err)
}

func TestShortInputStaysAligned(t *testing.T) {
	prices := []float64{1, 2, 3}
	sma, _ := SMA(prices, 20)
	ema, _ := EMA(prices, 20)
	rsi, _ := RSI(prices, 14)
	macd, sig, _ := MACD(prices, 12, 26, 9)
	for _, s := range [][]float64{sma, ema, rsi, macd, sig} {
		assertAligned(t, "short", s, 3, 3)
	}
}

func TestAgainstTalib(t *testing.T) {
	prices := randomWalk(300, 42)

	sma, _ := SMA(prices, 20)
	wantSMA := talib.Sma(prices, 20)
	ema, _ := EMA(prices, 12)
	wantEMA := talib.Ema(prices, 12)
	rsi, _ := RSI(prices, 14)
	wantRSI := talib.Rsi(prices, 14)
	bands, _ := Bollinger(prices, 20, 2)
	wantUpper, _, wantLower := talib.BBands(prices, 20, 2, 2, talib.SMA)

	for i := 30; i < len(prices); i++ {
		assert.InDeltaf(t, wantSMA[i], sma[i], 1e-6, "sma[%d]", i)
		assert.InDeltaf(t, wantEMA[i], ema[i], 1e-6, "ema[%d]", i)
		assert.InDeltaf(t, wantRSI[i], rsi[i], 1e-6, "rsi[%d]", i)
		assert.InDeltaf(t, wantUpper[i], bands.Upper[i], 1e-6, "bb_upper[%d]", i)
		assert.InDeltaf(t, wantLower[i], bands.Lower[i], 1e-6, "bb_lower[%d]", i)
	}
}

func TestTable_RowPerBar(t *testing.T) {
	prices := randomWalk(60, 9)
	series := model.PriceSeries{Ticker: "BTC-USD", Interval: model.IntervalDaily}
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, p := range prices {
		series.Bars = append(series.Bars, model.OHLCV{Time: start.AddDate(0, 0, i), Close: p})
	}

	rows, err := Table(series, model.DefaultIndicatorConfig())
	require.NoError(t, err)
	require.Len(t, rows, len(prices))
	for i, row := range rows {
		assert.Equal(t, series.Bars[i].Time, row.Time)
		assert.Equal(t, prices[i], row.Close)
	}
	assert.False(t, model.Defined(rows[0].RSI))
	assert.True(t, model.Defined(rows[59].MACDSignal))
	assert.True(t, model.Defined(rows[59].BBUpper))
}

func TestTable_OverflowIsNonFinite(t *testing.T) {
	series := model.PriceSeries{Ticker: "BTC-USD", Interval: model.IntervalDaily}
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 40; i++ {
		series.Bars = append(series.Bars, model.OHLCV{Time: start.AddDate(0, 0, i), Close: 1e308})
	}

	rows, err := Table(series, model.DefaultIndicatorConfig())
	require.NoError(t, err)
	// Both EMA seeds overflow, so fast-slow would be Inf-Inf.
	assert.True(t, math.IsNaN(rows[24].MACD))
	for i := 25; i < len(rows); i++ {
		assert.Truef(t, math.IsInf(rows[i].MACD, 1), "macd[%d] = %v", i, rows[i].MACD)
	}
	assert.True(t, math.IsNaN(rows[32].MACDSignal))
	assert.True(t, math.IsInf(rows[39].MACDSignal, 1))
	assert.True(t, math.IsInf(rows[39].EMASlow, 1))
	assert.InDelta(t, 100.0, rows[39].RSI, tol)
}
