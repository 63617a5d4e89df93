package simulation

import (
	"github.com/finsim/retirement-simulator/internal/domain"
	"github.com/shopspring/decimal"
)

// Recommendation texts for the annuity comparison.
const (
	recommendInvest  = "Consider investing - high probability of exceeding annuity returns with low depletion risk."
	recommendAnnuity = "Consider the annuity - simulation shows significant depletion risk."
	recommendHybrid  = "Mixed results - consider a hybrid approach or consult a financial advisor."
)

// CompareToAnnuity contrasts the last run's per-path net income against a
// guaranteed annuity paying monthlyPayment for guaranteeYears. Must be
// called after Run or RunWithProgress.
func (s *Simulator) CompareToAnnuity(result *domain.SimulationResult, monthlyPayment float64, guaranteeYears int) *domain.AnnuityComparisonResult {
	annuityTotal := decimal.NewFromFloat(monthlyPayment).
		Mul(decimal.NewFromInt(12)).
		Mul(decimal.NewFromInt(int64(guaranteeYears)))
	annuityTotalF, _ := annuityTotal.Float64()

	simTotal := result.TotalWithdrawnMedian - result.TotalTaxesMedian

	// Fraction of paths whose cumulative net income beats the guarantee.
	probBeats := 0.0
	if len(s.pathWithdrawn) > 0 {
		beats := 0
		for i := range s.pathWithdrawn {
			if s.pathWithdrawn[i]-s.pathTaxes[i] > annuityTotalF {
				beats++
			}
		}
		probBeats = float64(beats) / float64(len(s.pathWithdrawn))
	} else if simTotal > annuityTotalF {
		probBeats = 0.75
	} else {
		probBeats = 0.25
	}

	var recommendation string
	switch {
	case result.SuccessRate > 0.9 && probBeats > 0.6:
		recommendation = recommendInvest
	case result.SuccessRate < 0.7:
		recommendation = recommendAnnuity
	default:
		recommendation = recommendHybrid
	}

	return &domain.AnnuityComparisonResult{
		AnnuityTotalGuaranteed:      annuityTotalF,
		ProbabilityBeatsAnnuity:     probBeats,
		SimulationMedianTotalIncome: simTotal,
		Recommendation:              recommendation,
	}
}
