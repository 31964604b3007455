package model

import (
	"math"
	"time"
)

// IndicatorConfig holds the window lengths of every computed indicator.
type IndicatorConfig struct {
	RSIWindow  int     `yaml:"rsi_window"`
	MACDFast   int     `yaml:"macd_fast"`
	MACDSlow   int     `yaml:"macd_slow"`
	MACDSignal int     `yaml:"macd_signal"`
	EMAFast    int     `yaml:"ema_fast"`
	EMASlow    int     `yaml:"ema_slow"`
	SMAWindow  int     `yaml:"sma_window"`
	BBWindow   int     `yaml:"bb_window"`
	BBK        float64 `yaml:"bb_k"`
	PctChangeK int     `yaml:"pct_change_k"`
}

// DefaultIndicatorConfig returns the standard parameter set.
func DefaultIndicatorConfig() IndicatorConfig {
	return IndicatorConfig{
		RSIWindow:  14,
		MACDFast:   12,
		MACDSlow:   26,
		MACDSignal: 9,
		EMAFast:    12,
		EMASlow:    26,
		SMAWindow:  20,
		BBWindow:   20,
		BBK:        2,
		PctChangeK: 1,
	}
}

// WithDefaults fills every zero field from DefaultIndicatorConfig.
func (c IndicatorConfig) WithDefaults() IndicatorConfig {
	d := DefaultIndicatorConfig()
	if c.RSIWindow == 0 {
		c.RSIWindow = d.RSIWindow
	}
	if c.MACDFast == 0 {
		c.MACDFast = d.MACDFast
	}
	if c.MACDSlow == 0 {
		c.MACDSlow = d.MACDSlow
	}
	if c.MACDSignal == 0 {
		c.MACDSignal = d.MACDSignal
	}
	if c.EMAFast == 0 {
		c.EMAFast = d.EMAFast
	}
	if c.EMASlow == 0 {
		c.EMASlow = d.EMASlow
	}
	if c.SMAWindow == 0 {
		c.SMAWindow = d.SMAWindow
	}
	if c.BBWindow == 0 {
		c.BBWindow = d.BBWindow
	}
	if c.BBK == 0 {
		c.BBK = d.BBK
	}
	if c.PctChangeK == 0 {
		c.PctChangeK = d.PctChangeK
	}
	return c
}

// IndicatorRow is the indicator snapshot at one timestamp.
// Every indicator field is NaN until its warm-up window has elapsed.
type IndicatorRow struct {
	Time       time.Time
	Close      float64
	RSI        float64
	MACD       float64
	MACDSignal float64
	EMAFast    float64
	EMASlow    float64
	SMA        float64
	BBUpper    float64
	BBLower    float64
	PctChange  float64
}

// EmptyIndicatorRow returns a row with every indicator undefined.
func EmptyIndicatorRow(t time.Time, close float64) IndicatorRow {
	nan := math.NaN()
	return IndicatorRow{
		Time:       t,
		Close:      close,
		RSI:        nan,
		MACD:       nan,
		MACDSignal: nan,
		EMAFast:    nan,
		EMASlow:    nan,
		SMA:        nan,
		BBUpper:    nan,
		BBLower:    nan,
		PctChange:  nan,
	}
}

// Defined reports whether an indicator value has been computed.
func Defined(v float64) bool { return !math.IsNaN(v) }
