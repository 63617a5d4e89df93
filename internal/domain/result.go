package domain

// PercentilePaths holds year-by-year portfolio trajectories at fixed
// percentiles of the final-value distribution. Each slice has years+1
// entries, index 0 being the starting balance.
type PercentilePaths struct {
	P5  []float64 `json:"p5"`
	P25 []float64 `json:"p25"`
	P50 []float64 `json:"p50"`
	P75 []float64 `json:"p75"`
	P95 []float64 `json:"p95"`
}

// Percentiles holds the final portfolio value distribution.
type Percentiles struct {
	P5  float64 `json:"p5"`
	P25 float64 `json:"p25"`
	P50 float64 `json:"p50"`
	P75 float64 `json:"p75"`
	P95 float64 `json:"p95"`
}

// YearBreakdown is the median across paths of each cash-flow component
// for one simulated year.
type YearBreakdown struct {
	Age             int     `json:"age"`
	YearIndex       int     `json:"year_index"`
	PortfolioStart  float64 `json:"portfolio_start"`
	PortfolioEnd    float64 `json:"portfolio_end"`
	PortfolioReturn float64 `json:"portfolio_return"`

	EmploymentIncome float64 `json:"employment_income"`
	SocialSecurity   float64 `json:"social_security"`
	Pension          float64 `json:"pension"`
	Dividends        float64 `json:"dividends"`
	AnnuityIncome    float64 `json:"annuity_income"`
	TotalIncome      float64 `json:"total_income"`

	Withdrawal       float64 `json:"withdrawal"`
	FederalTax       float64 `json:"federal_tax"`
	StateTax         float64 `json:"state_tax"`
	TotalTax         float64 `json:"total_tax"`
	EffectiveTaxRate float64 `json:"effective_tax_rate"`
	NetIncome        float64 `json:"net_income"`
}

// SimulationResult is the aggregate outcome of a Monte Carlo run.
type SimulationResult struct {
	SuccessRate      float64 `json:"success_rate"`
	MedianFinalValue float64 `json:"median_final_value"`
	MeanFinalValue   float64 `json:"mean_final_value"`

	Percentiles     Percentiles     `json:"percentiles"`
	PercentilePaths PercentilePaths `json:"percentile_paths"`

	// MedianDepletionAge is nil when fewer than half of the paths deplete.
	MedianDepletionAge  *int     `json:"median_depletion_age"`
	MedianDepletionYear *float64 `json:"median_depletion_year"`

	TotalWithdrawnMedian  float64 `json:"total_withdrawn_median"`
	TotalTaxesMedian      float64 `json:"total_taxes_median"`
	InitialWithdrawalRate float64 `json:"initial_withdrawal_rate"`
	Prob10YearFailure     float64 `json:"prob_10_year_failure"`

	YearBreakdown []YearBreakdown `json:"year_breakdown,omitempty"`
}

// AnnuityComparisonResult contrasts the simulated net income distribution
// against a guaranteed annuity payout over the guarantee window.
type AnnuityComparisonResult struct {
	AnnuityTotalGuaranteed      float64 `json:"annuity_total_guaranteed"`
	ProbabilityBeatsAnnuity     float64 `json:"probability_simulation_beats_annuity"`
	SimulationMedianTotalIncome float64 `json:"simulation_median_total_income"`
	Recommendation              string  `json:"recommendation"`
}
