// Package tax estimates combined federal, state, and Medicare-surcharge
// liability for simulated retirement income. Two implementations exist:
// a self-contained Estimator and an HTTP Client for an external
// PolicyEngine-style microservice.
package tax

import (
	"context"

	"github.com/finsim/retirement-simulator/internal/domain"
)

// BatchRequest carries one simulated year's income components for every
// path. All slices must have equal length.
type BatchRequest struct {
	CapitalGains   []float64           `json:"capital_gains"`
	SocialSecurity []float64           `json:"social_security"`
	DividendIncome []float64           `json:"dividend_income"`
	OrdinaryIncome []float64           `json:"employment_income"`
	Age            int                 `json:"age"`
	FilingStatus   domain.FilingStatus `json:"filing_status"`
	State          string              `json:"state"`
	Year           int                 `json:"year"`
}

// Paths is the number of entries in the batch.
func (r *BatchRequest) Paths() int { return len(r.OrdinaryIncome) }

// BatchResult holds per-path tax amounts. TotalTax is federal + state +
// IRMAA and never negative.
type BatchResult struct {
	FederalTax     []float64 `json:"federal_income_tax"`
	StateTax       []float64 `json:"state_income_tax"`
	IRMAASurcharge []float64 `json:"irmaa_surcharge"`
	TotalTax       []float64 `json:"total_tax"`
}

// Service computes taxes for a batch of simulation paths.
type Service interface {
	ComputeTaxes(ctx context.Context, req *BatchRequest) (*BatchResult, error)
}
