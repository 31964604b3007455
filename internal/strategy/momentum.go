package strategy

import (
	"fmt"
	"math"

	"CryptoPulse/internal/model"
)

// MomentumTriple follows three strictly monotone closes:
// Buy on p[i-2] < p[i-1] < p[i], Sell on p[i-2] > p[i-1] > p[i].
type MomentumTriple struct{}

func (MomentumTriple) Name() model.RuleChoice { return model.RuleMomentumTriple }

func (MomentumTriple) Lookback() int { return 2 }

func (MomentumTriple) Check(window []model.IndicatorRow) error {
	if len(window) < 3 {
		return fmt.Errorf("%w: momentum needs 3 closes, have %d", model.ErrInsufficientHistory, len(window))
	}
	for _, row := range window[len(window)-3:] {
		if math.IsNaN(row.Close) || math.IsInf(row.Close, 0) {
			return fmt.Errorf("%w: close is %v", model.ErrIndicatorComputation, row.Close)
		}
	}
	return nil
}

func (MomentumTriple) Decide(window []model.IndicatorRow) model.Signal {
	n := len(window)
	p2, p1, p0 := window[n-3].Close, window[n-2].Close, window[n-1].Close
	switch {
	case p0 > p1 && p1 > p2:
		return model.SignalBuy
	case p0 < p1 && p1 < p2:
		return model.SignalSell
	default:
		return model.SignalHold
	}
}
