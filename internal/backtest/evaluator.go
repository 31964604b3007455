// Package backtest evaluates the theoretical profit of a signal sequence.
package backtest

import (
	"github.com/shopspring/decimal"

	"CryptoPulse/internal/model"
)

// Events extracts Buy and Sell events in chronological order.
func Events(rows []model.SignalRow) (buys, sells []model.TradeEvent) {
	for _, r := range rows {
		switch r.Signal {
		case model.SignalBuy:
			buys = append(buys, model.TradeEvent{Kind: model.SignalBuy, Time: r.Time, Price: r.Close})
		case model.SignalSell:
			sells = append(sells, model.TradeEvent{Kind: model.SignalSell, Time: r.Time, Price: r.Close})
		}
	}
	return buys, sells
}

// PairPositional pairs buys[j] with sells[j] for j < min(len(buys), len(sells)).
// The pairs are not necessarily chronological: a Sell may precede its Buy.
func PairPositional(buys, sells []model.TradeEvent) []model.TradePair {
	n := len(buys)
	if len(sells) < n {
		n = len(sells)
	}
	pairs := make([]model.TradePair, 0, n)
	for j := 0; j < n; j++ {
		pairs = append(pairs, newPair(buys[j], sells[j]))
	}
	return pairs
}

// PairFIFO walks the rows with a single open-position flag: a Buy opens a
// position when flat, a Sell closes it when long. Everything else is ignored,
// including a position still open at the end of the series.
func PairFIFO(rows []model.SignalRow) []model.TradePair {
	var (
		pairs []model.TradePair
		open  model.TradeEvent
		long  bool
	)
	for _, r := range rows {
		switch {
		case r.Signal == model.SignalBuy && !long:
			open = model.TradeEvent{Kind: model.SignalBuy, Time: r.Time, Price: r.Close}
			long = true
		case r.Signal == model.SignalSell && long:
			pairs = append(pairs, newPair(open, model.TradeEvent{Kind: model.SignalSell, Time: r.Time, Price: r.Close}))
			long = false
		}
	}
	return pairs
}

func newPair(buy, sell model.TradeEvent) model.TradePair {
	p := model.TradePair{Buy: buy, Sell: sell}
	p.Profit, _ = pairProfit(p).Float64()
	return p
}

func pairProfit(p model.TradePair) decimal.Decimal {
	return decimal.NewFromFloat(p.Sell.Price).Sub(decimal.NewFromFloat(p.Buy.Price))
}

// Evaluate pairs the signals with the given policy and summarizes the result.
func Evaluate(rows []model.SignalRow, policy model.PairingPolicy) model.TradeSummary {
	var pairs []model.TradePair
	if policy == model.PairPositional {
		buys, sells := Events(rows)
		pairs = PairPositional(buys, sells)
	} else {
		policy = model.PairFIFO
		pairs = PairFIFO(rows)
	}
	s := Summarize(pairs)
	s.Policy = policy
	return s
}

// Summarize aggregates the pairs. With no pairs the summary is marked Insufficient.
func Summarize(pairs []model.TradePair) model.TradeSummary {
	s := model.TradeSummary{Pairs: pairs, Count: len(pairs)}
	if len(pairs) == 0 {
		s.Insufficient = true
		return s
	}

	total := decimal.Zero
	best := pairProfit(pairs[0])
	worst := best
	for _, p := range pairs {
		profit := pairProfit(p)
		total = total.Add(profit)
		if profit.GreaterThan(best) {
			best = profit
		}
		if profit.LessThan(worst) {
			worst = profit
		}
		if profit.IsPositive() {
			s.Wins++
		} else if profit.IsNegative() {
			s.Losses++
		}
	}
	count := decimal.NewFromInt(int64(len(pairs)))

	s.TotalProfit, _ = total.Float64()
	s.AverageProfit, _ = total.Div(count).Float64()
	s.Best, _ = best.Float64()
	s.Worst, _ = worst.Float64()
	s.WinRate = float64(s.Wins) / float64(len(pairs))
	return s
}
