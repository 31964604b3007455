package calculator

import (
	"fmt"
	"math"

	"CryptoPulse/internal/model"
)

// Table computes every configured indicator over the series and returns one
// row per bar, index-aligned with series.Bars.
func Table(series model.PriceSeries, cfg model.IndicatorConfig) ([]model.IndicatorRow, error) {
	closes := series.Closes()

	rsi, err := RSI(closes, cfg.RSIWindow)
	if err != nil {
		return nil, fmt.Errorf("rsi: %w", err)
	}
	macd, macdSignal, err := MACD(closes, cfg.MACDFast, cfg.MACDSlow, cfg.MACDSignal)
	if err != nil {
		return nil, fmt.Errorf("macd: %w", err)
	}
	emaFast, err := EMA(closes, cfg.EMAFast)
	if err != nil {
		return nil, fmt.Errorf("ema fast: %w", err)
	}
	emaSlow, err := EMA(closes, cfg.EMASlow)
	if err != nil {
		return nil, fmt.Errorf("ema slow: %w", err)
	}
	sma, err := SMA(closes, cfg.SMAWindow)
	if err != nil {
		return nil, fmt.Errorf("sma: %w", err)
	}
	bands, err := Bollinger(closes, cfg.BBWindow, cfg.BBK)
	if err != nil {
		return nil, fmt.Errorf("bollinger: %w", err)
	}
	pct, err := PercentChange(closes, cfg.PctChangeK)
	if err != nil {
		return nil, fmt.Errorf("percent change: %w", err)
	}

	// Past its warm-up an indicator over finite closes is only NaN after an
	// overflow (Inf-Inf); report it as non-finite, not as missing history.
	markOverflow(rsi, cfg.RSIWindow)
	markOverflow(macd, cfg.MACDSlow-1)
	markOverflow(macdSignal, cfg.MACDSlow+cfg.MACDSignal-2)
	markOverflow(emaFast, cfg.EMAFast-1)
	markOverflow(emaSlow, cfg.EMASlow-1)
	markOverflow(sma, cfg.SMAWindow-1)
	markOverflow(bands.Upper, cfg.BBWindow-1)
	markOverflow(bands.Lower, cfg.BBWindow-1)
	markOverflow(pct, cfg.PctChangeK)

	rows := make([]model.IndicatorRow, len(closes))
	for i, bar := range series.Bars {
		rows[i] = model.IndicatorRow{
			Time:       bar.Time,
			Close:      bar.Close,
			RSI:        rsi[i],
			MACD:       macd[i],
			MACDSignal: macdSignal[i],
			EMAFast:    emaFast[i],
			EMASlow:    emaSlow[i],
			SMA:        sma[i],
			BBUpper:    bands.Upper[i],
			BBLower:    bands.Lower[i],
			PctChange:  pct[i],
		}
	}
	return rows, nil
}

// markOverflow replaces NaN at or after warmup with +Inf.
func markOverflow(values []float64, warmup int) {
	for i := warmup; i < len(values); i++ {
		if math.IsNaN(values[i]) {
			values[i] = math.Inf(1)
		}
	}
}
