package model

import (
	"fmt"
	"strings"
	"time"
)

// Signal is the discrete trading decision attached to a row.
type Signal string

const (
	SignalBuy  Signal = "Buy"
	SignalSell Signal = "Sell"
	SignalHold Signal = "Hold"
)

// SignalRow is an IndicatorRow annotated with the decision made at that timestamp.
// Evaluable is false for warm-up rows, which always carry SignalHold.
// Err records why an evaluable row was downgraded to SignalHold, if it was.
type SignalRow struct {
	IndicatorRow
	Signal    Signal
	Evaluable bool
	Err       error
}

// TradeEvent is a non-Hold signal extracted from the annotated series.
type TradeEvent struct {
	Kind  Signal
	Time  time.Time
	Price float64
}

// TradePair matches one Buy event with one Sell event.
type TradePair struct {
	Buy    TradeEvent
	Sell   TradeEvent
	Profit float64
}

// TradeSummary aggregates the profit and loss of all pairs.
// Insufficient is set when no pair could be formed; the numeric fields are then meaningless.
type TradeSummary struct {
	Policy        PairingPolicy
	Pairs         []TradePair
	Count         int
	TotalProfit   float64
	AverageProfit float64
	Wins          int
	Losses        int
	WinRate       float64
	Best          float64
	Worst         float64
	Insufficient  bool
}

// AlertEntry is one row of the alert history.
type AlertEntry struct {
	Time   time.Time
	Price  float64
	Signal Signal
}

// SignalFilter restricts the signal table shown to the user.
type SignalFilter string

const (
	FilterAll  SignalFilter = "All"
	FilterBuy  SignalFilter = "Buy"
	FilterSell SignalFilter = "Sell"
)

// ParseSignalFilter is case-insensitive and treats an empty string as FilterAll.
func ParseSignalFilter(s string) (SignalFilter, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return FilterAll, nil
	case "buy":
		return FilterBuy, nil
	case "sell":
		return FilterSell, nil
	}
	return "", fmt.Errorf("%w: unknown signal filter %q", ErrInvalidConfig, s)
}

// Match reports whether a signal passes the filter.
func (f SignalFilter) Match(s Signal) bool {
	switch f {
	case FilterBuy:
		return s == SignalBuy
	case FilterSell:
		return s == SignalSell
	default:
		return true
	}
}

// RuleChoice selects the active signal rule.
type RuleChoice string

const (
	RuleThresholdCrossover RuleChoice = "ThresholdCrossover"
	RuleMomentumTriple     RuleChoice = "MomentumTriple"
)

// ParseRuleChoice accepts the canonical names and the short aliases "smart" and "momentum".
func ParseRuleChoice(s string) (RuleChoice, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "thresholdcrossover", "threshold", "smart":
		return RuleThresholdCrossover, nil
	case "momentumtriple", "momentum", "triple":
		return RuleMomentumTriple, nil
	}
	return "", fmt.Errorf("%w: unknown rule %q", ErrInvalidConfig, s)
}

// Thresholds are the RSI bounds of the threshold-crossover rule.
type Thresholds struct {
	RSILow  float64 `yaml:"rsi_low"`
	RSIHigh float64 `yaml:"rsi_high"`
}

var (
	StrictThresholds = Thresholds{RSILow: 30, RSIHigh: 70}
	LooseThresholds  = Thresholds{RSILow: 35, RSIHigh: 65}
)

// ThresholdPreset resolves a named preset ("strict" or "loose").
func ThresholdPreset(name string) (Thresholds, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "strict":
		return StrictThresholds, nil
	case "loose":
		return LooseThresholds, nil
	}
	return Thresholds{}, fmt.Errorf("%w: unknown threshold preset %q", ErrInvalidConfig, name)
}

// Validate requires 0 <= RSILow < RSIHigh <= 100.
func (t Thresholds) Validate() error {
	if t.RSILow < 0 || t.RSIHigh > 100 || t.RSILow >= t.RSIHigh {
		return fmt.Errorf("%w: rsi thresholds must satisfy 0 <= low < high <= 100, got %.2f/%.2f",
			ErrInvalidConfig, t.RSILow, t.RSIHigh)
	}
	return nil
}

// PairingPolicy decides how Buy and Sell events become trades.
type PairingPolicy string

const (
	// PairPositional pairs the i-th Buy with the i-th Sell regardless of chronology.
	PairPositional PairingPolicy = "positional"
	// PairFIFO tracks a single open position and closes it on the next Sell.
	PairFIFO PairingPolicy = "fifo"
)

func ParsePairingPolicy(s string) (PairingPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "fifo":
		return PairFIFO, nil
	case "positional":
		return PairPositional, nil
	}
	return "", fmt.Errorf("%w: unknown pairing policy %q", ErrInvalidConfig, s)
}
