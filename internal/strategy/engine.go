package strategy

import (
	"fmt"
	"math"

	"CryptoPulse/internal/model"
)

// Rule turns a trailing window of indicator rows into a signal.
// The last element of the window is the row being decided.
type Rule interface {
	Name() model.RuleChoice
	// Lookback is the number of rows before the current one the rule reads.
	Lookback() int
	// Check reports why the window cannot be evaluated, or nil.
	Check(window []model.IndicatorRow) error
	// Decide assumes Check returned nil.
	Decide(window []model.IndicatorRow) model.Signal
}

// NewRule builds the rule selected by the run configuration.
func NewRule(choice model.RuleChoice, th model.Thresholds) (Rule, error) {
	switch choice {
	case model.RuleThresholdCrossover:
		if err := th.Validate(); err != nil {
			return nil, err
		}
		return &ThresholdCrossover{Thresholds: th}, nil
	case model.RuleMomentumTriple:
		return MomentumTriple{}, nil
	}
	return nil, fmt.Errorf("%w: unknown rule %q", model.ErrInvalidConfig, choice)
}

// Evaluate runs the rule on one window. It never panics and returns
// SignalHold together with the cause whenever the window is not evaluable.
func Evaluate(rule Rule, window []model.IndicatorRow) (model.Signal, error) {
	if len(window) == 0 {
		return model.SignalHold, fmt.Errorf("%w: empty window", model.ErrInsufficientHistory)
	}
	if err := rule.Check(window); err != nil {
		return model.SignalHold, err
	}
	return rule.Decide(window), nil
}

type field struct {
	name  string
	value float64
}

// checkFields fails on the first undefined or non-finite value.
func checkFields(fields ...field) error {
	for _, f := range fields {
		if math.IsNaN(f.value) {
			return fmt.Errorf("%w: %s undefined", model.ErrInsufficientHistory, f.name)
		}
		if math.IsInf(f.value, 0) {
			return fmt.Errorf("%w: %s is %v", model.ErrIndicatorComputation, f.name, f.value)
		}
	}
	return nil
}
