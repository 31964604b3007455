package model

import "time"

// RunConfig carries every parameter of one analysis run.
type RunConfig struct {
	Ticker       string
	Start        time.Time
	End          time.Time
	Interval     Interval
	SignalFilter SignalFilter
	Rule         RuleChoice
	Thresholds   Thresholds
	Pairing      PairingPolicy
	Indicators   IndicatorConfig
}

// Report is the complete output of one analysis run.
type Report struct {
	RunID       string
	Config      RunConfig
	Instrument  Instrument
	Table       []SignalRow // every cleaned bar, warm-up rows included
	Signals     []SignalRow // evaluable rows passing SignalFilter
	Alerts      []AlertEntry
	Summary     TradeSummary
	Downgrades  int
	GeneratedAt time.Time
}

// LastSignal returns the most recent evaluable row, if any.
func (r *Report) LastSignal() (SignalRow, bool) {
	for i := len(r.Table) - 1; i >= 0; i-- {
		if r.Table[i].Evaluable {
			return r.Table[i], true
		}
	}
	return SignalRow{}, false
}
