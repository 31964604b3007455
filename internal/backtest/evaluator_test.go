package backtest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CryptoPulse/internal/model"
)

var t0 = time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

type step struct {
	signal model.Signal
	price  float64
}

func rowsOf(steps ...step) []model.SignalRow {
	rows := make([]model.SignalRow, len(steps))
	for i, s := range steps {
		rows[i] = model.SignalRow{
			IndicatorRow: model.EmptyIndicatorRow(t0.AddDate(0, 0, i), s.price),
			Signal:       s.signal,
			Evaluable:    true,
		}
	}
	return rows
}

func TestPositional_DiscardsUnmatchedBuy(t *testing.T) {
	rows := rowsOf(
		step{model.SignalBuy, 10},
		step{model.SignalHold, 11},
		step{model.SignalBuy, 12},
		step{model.SignalSell, 15},
	)
	s := Evaluate(rows, model.PairPositional)
	require.False(t, s.Insufficient)
	require.Equal(t, 1, s.Count)
	assert.Equal(t, 10.0, s.Pairs[0].Buy.Price)
	assert.Equal(t, 15.0, s.Pairs[0].Sell.Price)
	assert.Equal(t, 5.0, s.TotalProfit)
	assert.Equal(t, 5.0, s.AverageProfit)
	assert.Equal(t, model.PairPositional, s.Policy)
}

func TestPositional_PairsSellBeforeBuy(t *testing.T) {
	rows := rowsOf(
		step{model.SignalSell, 20},
		step{model.SignalBuy, 12},
	)
	s := Evaluate(rows, model.PairPositional)
	require.Equal(t, 1, s.Count)
	assert.True(t, s.Pairs[0].Sell.Time.Before(s.Pairs[0].Buy.Time))
	assert.Equal(t, 8.0, s.TotalProfit)

	fifo := Evaluate(rows, model.PairFIFO)
	assert.True(t, fifo.Insufficient, "fifo must not close a position that was never opened")
}

func TestFIFO_SingleOpenPosition(t *testing.T) {
	rows := rowsOf(
		step{model.SignalSell, 50}, // flat: ignored
		step{model.SignalBuy, 10},
		step{model.SignalBuy, 12}, // already long: ignored
		step{model.SignalSell, 15},
		step{model.SignalSell, 16}, // flat: ignored
		step{model.SignalBuy, 20},
		step{model.SignalSell, 18},
		step{model.SignalBuy, 30}, // open at end: discarded
	)
	s := Evaluate(rows, model.PairFIFO)
	require.Equal(t, 2, s.Count)
	assert.Equal(t, 10.0, s.Pairs[0].Buy.Price)
	assert.Equal(t, 15.0, s.Pairs[0].Sell.Price)
	assert.Equal(t, 20.0, s.Pairs[1].Buy.Price)
	assert.Equal(t, 18.0, s.Pairs[1].Sell.Price)
	assert.Equal(t, 3.0, s.TotalProfit)
	assert.Equal(t, 1.5, s.AverageProfit)
	assert.Equal(t, 1, s.Wins)
	assert.Equal(t, 1, s.Losses)
	assert.Equal(t, 0.5, s.WinRate)
	assert.Equal(t, 5.0, s.Best)
	assert.Equal(t, -2.0, s.Worst)
}

func TestEvaluate_NoEventsIsInsufficient(t *testing.T) {
	rows := rowsOf(step{model.SignalHold, 10}, step{model.SignalHold, 11})
	for _, policy := range []model.PairingPolicy{model.PairPositional, model.PairFIFO} {
		s := Evaluate(rows, policy)
		assert.True(t, s.Insufficient, policy)
		assert.Zero(t, s.Count)
	}

	onlyBuys := rowsOf(step{model.SignalBuy, 10}, step{model.SignalBuy, 11})
	assert.True(t, Evaluate(onlyBuys, model.PairPositional).Insufficient)
}

func TestSummarize_DecimalTotals(t *testing.T) {
	pairs := []model.TradePair{
		{Buy: model.TradeEvent{Price: 0.1}, Sell: model.TradeEvent{Price: 0.3}},
		{Buy: model.TradeEvent{Price: 0.2}, Sell: model.TradeEvent{Price: 0.3}},
	}
	s := Summarize(pairs)
	assert.Equal(t, 0.3, s.TotalProfit)
	assert.Equal(t, 0.15, s.AverageProfit)
}

func TestEvents_Chronological(t *testing.T) {
	rows := rowsOf(
		step{model.SignalBuy, 1},
		step{model.SignalSell, 2},
		step{model.SignalBuy, 3},
	)
	buys, sells := Events(rows)
	require.Len(t, buys, 2)
	require.Len(t, sells, 1)
	assert.True(t, buys[0].Time.Before(buys[1].Time))
	assert.Equal(t, model.SignalSell, sells[0].Kind)
}
