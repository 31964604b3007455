package strategy

import "CryptoPulse/internal/model"

// ThresholdCrossover buys an oversold market in an up-trend and sells an
// overbought market in a down-trend:
//
//	Buy  iff rsi < low  && macd > macd_signal && ema_fast > ema_slow
//	Sell iff rsi > high && macd < macd_signal && ema_fast < ema_slow
type ThresholdCrossover struct {
	Thresholds model.Thresholds
}

func (r *ThresholdCrossover) Name() model.RuleChoice { return model.RuleThresholdCrossover }

func (r *ThresholdCrossover) Lookback() int { return 0 }

func (r *ThresholdCrossover) Check(window []model.IndicatorRow) error {
	row := window[len(window)-1]
	return checkFields(
		field{"rsi", row.RSI},
		field{"macd", row.MACD},
		field{"macd_signal", row.MACDSignal},
		field{"ema_fast", row.EMAFast},
		field{"ema_slow", row.EMASlow},
	)
}

func (r *ThresholdCrossover) Decide(window []model.IndicatorRow) model.Signal {
	row := window[len(window)-1]
	switch {
	case row.RSI < r.Thresholds.RSILow && row.MACD > row.MACDSignal && row.EMAFast > row.EMASlow:
		return model.SignalBuy
	case row.RSI > r.Thresholds.RSIHigh && row.MACD < row.MACDSignal && row.EMAFast < row.EMASlow:
		return model.SignalSell
	default:
		return model.SignalHold
	}
}
