package tax

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finsim/retirement-simulator/internal/domain"
)

func computeOne(t *testing.T, req *BatchRequest) (federal, state, irmaa, total float64) {
	t.Helper()
	res, err := NewEstimator().ComputeTaxes(context.Background(), req)
	require.NoError(t, err)
	return res.FederalTax[0], res.StateTax[0], res.IRMAASurcharge[0], res.TotalTax[0]
}

func singleRequest(ordinary, gains, divs, ss float64) *BatchRequest {
	return &BatchRequest{
		CapitalGains:   []float64{gains},
		SocialSecurity: []float64{ss},
		DividendIncome: []float64{divs},
		OrdinaryIncome: []float64{ordinary},
		Age:            60,
		FilingStatus:   domain.Single,
		State:          "TX",
		Year:           2026,
	}
}

func TestZeroIncomeZeroTax(t *testing.T) {
	_, _, _, total := computeOne(t, singleRequest(0, 0, 0, 0))
	assert.Zero(t, total)
}

func TestRejectsMismatchedArrayLengths(t *testing.T) {
	req := singleRequest(50000, 0, 0, 0)
	req.CapitalGains = []float64{1, 2}
	_, err := NewEstimator().ComputeTaxes(context.Background(), req)
	assert.Error(t, err)
}

func TestIncomeBelowDeductionIsUntaxed(t *testing.T) {
	_, _, _, total := computeOne(t, singleRequest(14000, 0, 0, 0))
	assert.Zero(t, total)
}

func TestOrdinaryBrackets(t *testing.T) {
	// 50000 single: 35000 taxable after the 15000 deduction.
	// 10% on 11600, 12% on the remaining 23400.
	federal, _, _, _ := computeOne(t, singleRequest(50000, 0, 0, 0))
	assert.InDelta(t, 0.10*11600+0.12*23400, federal, 0.01)
}

func TestJointBracketsAreDoubleWidth(t *testing.T) {
	reqSingle := singleRequest(100000, 0, 0, 0)
	single, err := NewEstimator().ComputeTaxes(context.Background(), reqSingle)
	require.NoError(t, err)

	reqJoint := singleRequest(100000, 0, 0, 0)
	reqJoint.FilingStatus = domain.MarriedJoint
	joint, err := NewEstimator().ComputeTaxes(context.Background(), reqJoint)
	require.NoError(t, err)

	assert.Less(t, joint.FederalTax[0], single.FederalTax[0])
}

func TestFederalTaxMonotoneInIncome(t *testing.T) {
	prev := 0.0
	for _, income := range []float64{20000, 60000, 150000, 400000, 900000} {
		federal, _, _, _ := computeOne(t, singleRequest(income, 0, 0, 0))
		assert.Greater(t, federal, prev, "income %v", income)
		prev = federal
	}
}

func TestCapitalGainsZeroBracket(t *testing.T) {
	// No ordinary income: gains below the single 0% breakpoint (48350
	// after stacking starts at zero) stay untaxed federally.
	federal, _, _, _ := computeOne(t, singleRequest(0, 40000, 0, 0))
	assert.Zero(t, federal)

	// Above the breakpoint the excess is taxed at 15%.
	federal, _, _, _ = computeOne(t, singleRequest(0, 60000, 0, 0))
	assert.InDelta(t, 0.15*(60000-48350), federal, 0.01)
}

func TestGainsStackOnOrdinaryIncome(t *testing.T) {
	// Enough ordinary income pushes the same gains out of the 0% bracket.
	low, _, _, _ := computeOne(t, singleRequest(0, 40000, 0, 0))
	req := singleRequest(100000, 40000, 0, 0)
	res, err := NewEstimator().ComputeTaxes(context.Background(), req)
	require.NoError(t, err)
	ordinaryOnly, _, _, _ := computeOne(t, singleRequest(100000, 0, 0, 0))

	gainsTax := res.FederalTax[0] - ordinaryOnly
	assert.Zero(t, low)
	assert.InDelta(t, 0.15*40000, gainsTax, 0.01)
}

func TestSocialSecurityTiers(t *testing.T) {
	// Benefits alone below the first threshold: untaxed.
	_, _, _, total := computeOne(t, singleRequest(0, 0, 0, 20000))
	assert.Zero(t, total)

	// High other income makes 85% of benefits taxable.
	withSS, err := NewEstimator().ComputeTaxes(context.Background(), singleRequest(200000, 0, 0, 40000))
	require.NoError(t, err)
	without, err := NewEstimator().ComputeTaxes(context.Background(), singleRequest(200000+0.85*40000, 0, 0, 0))
	require.NoError(t, err)
	assert.InDelta(t, without.FederalTax[0], withSS.FederalTax[0], 0.01)
}

func TestSeniorDeduction(t *testing.T) {
	young := singleRequest(50000, 0, 0, 0)
	old := singleRequest(50000, 0, 0, 0)
	old.Age = 70

	youngRes, err := NewEstimator().ComputeTaxes(context.Background(), young)
	require.NoError(t, err)
	oldRes, err := NewEstimator().ComputeTaxes(context.Background(), old)
	require.NoError(t, err)

	// 1550 of extra deduction in the 12% bracket.
	assert.InDelta(t, 1550*0.12, youngRes.FederalTax[0]-oldRes.FederalTax[0], 0.01)
}

func TestIRMAARequiresMedicareAge(t *testing.T) {
	young := singleRequest(250000, 0, 0, 0)
	_, _, irmaa, _ := computeOne(t, young)
	assert.Zero(t, irmaa)

	old := singleRequest(250000, 0, 0, 0)
	old.Age = 67
	res, err := NewEstimator().ComputeTaxes(context.Background(), old)
	require.NoError(t, err)
	// MAGI 250000 lands in the fourth single tier.
	assert.InDelta(t, 384.30*12, res.IRMAASurcharge[0], 0.01)
}

func TestIRMAAJointDoublesThresholdsAndEnrollees(t *testing.T) {
	req := singleRequest(250000, 0, 0, 0)
	req.Age = 67
	req.FilingStatus = domain.MarriedJoint
	res, err := NewEstimator().ComputeTaxes(context.Background(), req)
	require.NoError(t, err)
	// 250000 joint MAGI clears only the first joint threshold (206000),
	// and both spouses pay the surcharge.
	assert.InDelta(t, 69.90*12*2, res.IRMAASurcharge[0], 0.01)
}

func TestStateRates(t *testing.T) {
	base := func(state string) float64 {
		req := singleRequest(100000, 0, 0, 0)
		req.State = state
		res, err := NewEstimator().ComputeTaxes(context.Background(), req)
		require.NoError(t, err)
		return res.StateTax[0]
	}

	taxable := 100000.0 - 15000.0
	assert.InDelta(t, taxable*0.093, base("CA"), 0.01)
	assert.InDelta(t, taxable*0.0685, base("NY"), 0.01)
	assert.Zero(t, base("FL"))
	assert.Zero(t, base("WA"))
	// Unlisted states get the default flat rate.
	assert.InDelta(t, taxable*0.05, base("OH"), 0.01)
}

func TestBatchComputesEveryPath(t *testing.T) {
	req := &BatchRequest{
		CapitalGains:   []float64{0, 10000, 0},
		SocialSecurity: []float64{0, 0, 0},
		DividendIncome: []float64{0, 0, 5000},
		OrdinaryIncome: []float64{30000, 80000, 120000},
		Age:            60,
		FilingStatus:   domain.Single,
		State:          "PA",
		Year:           2026,
	}
	res, err := NewEstimator().ComputeTaxes(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, res.TotalTax, 3)
	assert.Less(t, res.TotalTax[0], res.TotalTax[1])
	assert.Less(t, res.TotalTax[1], res.TotalTax[2])
	for i := range res.TotalTax {
		assert.InDelta(t, res.FederalTax[i]+res.StateTax[i]+res.IRMAASurcharge[i], res.TotalTax[i], 1e-9)
	}
}
