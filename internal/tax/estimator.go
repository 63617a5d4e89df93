package tax

import (
	"context"
	"fmt"

	"github.com/finsim/retirement-simulator/internal/domain"
)

// bracket is one marginal rate step. Upper bounds are for married filing
// jointly; single filers use half of each bound.
type bracket struct {
	upper float64
	rate  float64
}

// 2025 federal ordinary income brackets (married filing jointly).
var federalBrackets = []bracket{
	{23200, 0.10},
	{94300, 0.12},
	{201050, 0.22},
	{383900, 0.24},
	{487450, 0.32},
	{731200, 0.35},
	{1e18, 0.37},
}

// 2025 long-term capital gains brackets (married filing jointly). The 0%
// and 15% breakpoints apply to taxable income including the gains.
var capitalGainsBrackets = []bracket{
	{96700, 0.00},
	{1067450, 0.15},
	{1e18, 0.20},
}

const (
	standardDeductionJoint  = 30000.0
	standardDeductionSingle = 15000.0
	seniorDeduction         = 1550.0
	seniorAge               = 65
)

// Social Security provisional income thresholds.
const (
	ssTier1Single = 25000.0
	ssTier2Single = 34000.0
	ssTier1Joint  = 32000.0
	ssTier2Joint  = 44000.0
)

// IRMAA income tiers (single filer MAGI) and the monthly Part B surcharge
// at each tier. Joint thresholds are double.
var irmaaThresholds = []float64{103000, 129000, 161000, 193000, 500000}
var irmaaMonthly = []float64{69.90, 174.70, 279.50, 384.30, 489.10}

// Flat effective state income tax rates. States absent from the map use
// the default; no-income-tax states are listed explicitly at zero.
var stateRates = map[string]float64{
	"CA": 0.093,
	"NY": 0.0685,
	"PA": 0.0307,
	"AK": 0, "FL": 0, "NV": 0, "NH": 0, "SD": 0,
	"TN": 0, "TX": 0, "WA": 0, "WY": 0,
}

const defaultStateRate = 0.05

// Estimator is a self-contained progressive tax approximation: federal
// brackets with the standard deduction, Social Security taxability tiers,
// stacked capital gains rates, IRMAA surcharges, and flat state rates.
// It is the default tax service and the fallback when an external
// service is unavailable.
type Estimator struct{}

// NewEstimator returns a stateless estimator safe for concurrent use.
func NewEstimator() *Estimator { return &Estimator{} }

// ComputeTaxes estimates per-path taxes for one simulated year.
func (e *Estimator) ComputeTaxes(_ context.Context, req *BatchRequest) (*BatchResult, error) {
	n := req.Paths()
	if len(req.CapitalGains) != n || len(req.SocialSecurity) != n || len(req.DividendIncome) != n {
		return nil, fmt.Errorf("tax batch arrays must have equal length")
	}
	joint := req.FilingStatus == domain.MarriedJoint

	res := &BatchResult{
		FederalTax:     make([]float64, n),
		StateTax:       make([]float64, n),
		IRMAASurcharge: make([]float64, n),
		TotalTax:       make([]float64, n),
	}
	for i := 0; i < n; i++ {
		ordinary := req.OrdinaryIncome[i]
		gains := req.CapitalGains[i]
		divs := req.DividendIncome[i]
		ss := req.SocialSecurity[i]

		taxableSS := taxableSocialSecurity(ss, ordinary+gains+divs, joint)
		deduction := standardDeduction(req.Age, joint)

		// Ordinary income fills the brackets first; qualified dividends
		// and long-term gains stack on top at preferential rates.
		ordinaryTaxable := ordinary + taxableSS - deduction
		if ordinaryTaxable < 0 {
			ordinaryTaxable = 0
		}
		preferential := gains + divs

		federal := bracketTax(federalBrackets, ordinaryTaxable, joint)
		federal += stackedGainsTax(ordinaryTaxable, preferential, joint)

		state := stateRate(req.State) * (ordinaryTaxable + preferential)

		var irmaa float64
		if req.Age >= seniorAge {
			magi := ordinary + gains + divs + taxableSS
			irmaa = irmaaSurcharge(magi, joint)
		}

		total := federal + state + irmaa
		if total < 0 {
			total = 0
		}
		res.FederalTax[i] = federal
		res.StateTax[i] = state
		res.IRMAASurcharge[i] = irmaa
		res.TotalTax[i] = total
	}
	return res, nil
}

func standardDeduction(age int, joint bool) float64 {
	d := standardDeductionSingle
	seniors := 1.0
	if joint {
		d = standardDeductionJoint
		seniors = 2.0
	}
	if age >= seniorAge {
		d += seniorDeduction * seniors
	}
	return d
}

// taxableSocialSecurity applies the provisional income tiers: up to 50%
// of benefits taxable past the first threshold, up to 85% past the second.
func taxableSocialSecurity(benefits, otherIncome float64, joint bool) float64 {
	if benefits <= 0 {
		return 0
	}
	t1, t2 := ssTier1Single, ssTier2Single
	if joint {
		t1, t2 = ssTier1Joint, ssTier2Joint
	}
	provisional := otherIncome + 0.5*benefits
	switch {
	case provisional <= t1:
		return 0
	case provisional <= t2:
		return min(0.5*(provisional-t1), 0.5*benefits)
	default:
		taxable := 0.85*(provisional-t2) + min(0.5*(t2-t1), 0.5*benefits)
		return min(taxable, 0.85*benefits)
	}
}

func bracketTax(brackets []bracket, taxable float64, joint bool) float64 {
	scale := 0.5
	if joint {
		scale = 1.0
	}
	var tax, lower float64
	for _, b := range brackets {
		upper := b.upper * scale
		if taxable <= lower {
			break
		}
		amount := taxable
		if amount > upper {
			amount = upper
		}
		tax += (amount - lower) * b.rate
		lower = upper
	}
	return tax
}

// stackedGainsTax taxes preferential income in the capital gains brackets
// occupied above the ordinary taxable income.
func stackedGainsTax(ordinaryTaxable, preferential float64, joint bool) float64 {
	if preferential <= 0 {
		return 0
	}
	scale := 0.5
	if joint {
		scale = 1.0
	}
	var tax float64
	lower := ordinaryTaxable
	top := ordinaryTaxable + preferential
	for _, b := range capitalGainsBrackets {
		upper := b.upper * scale
		if top <= lower {
			break
		}
		if upper <= lower {
			continue
		}
		amount := top
		if amount > upper {
			amount = upper
		}
		tax += (amount - lower) * b.rate
		lower = amount
	}
	return tax
}

func irmaaSurcharge(magi float64, joint bool) float64 {
	scale := 1.0
	enrollees := 1.0
	if joint {
		scale = 2.0
		enrollees = 2.0
	}
	monthly := 0.0
	for i, threshold := range irmaaThresholds {
		if magi > threshold*scale {
			monthly = irmaaMonthly[i]
		}
	}
	return monthly * 12 * enrollees
}

func stateRate(state string) float64 {
	if r, ok := stateRates[state]; ok {
		return r
	}
	return defaultStateRate
}
