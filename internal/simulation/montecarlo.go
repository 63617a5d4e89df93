package simulation

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/finsim/retirement-simulator/internal/domain"
	"github.com/finsim/retirement-simulator/internal/marketdata"
	"github.com/finsim/retirement-simulator/internal/mortality"
	"github.com/finsim/retirement-simulator/internal/tax"
)

// ProgressFunc receives a progress event after each simulated year.
// It is called once with year 0 before the loop starts and once per
// completed year, so years+1 times in total.
type ProgressFunc func(year, totalYears int)

// Simulator runs the vectorized Monte Carlo year loop. Construct one per
// run; the market provider, mortality table, and tax service can be
// shared across simulators.
type Simulator struct {
	params *domain.SimulationParameters
	market *marketdata.Provider
	mort   mortality.Table
	taxes  tax.Service
	log    zerolog.Logger

	startYear          int
	fallbackOnTaxError bool
	fallbackTaxRate    float64

	// Per-path run totals, kept for annuity comparison.
	pathWithdrawn []float64
	pathTaxes     []float64
}

// Option configures a Simulator.
type Option func(*Simulator)

// WithLogger attaches a logger; the default discards everything.
func WithLogger(log zerolog.Logger) Option {
	return func(s *Simulator) { s.log = log }
}

// WithTaxService replaces the default local estimator.
func WithTaxService(svc tax.Service) Option {
	return func(s *Simulator) { s.taxes = svc }
}

// WithMortalityTable replaces the embedded life table.
func WithMortalityTable(tbl mortality.Table) Option {
	return func(s *Simulator) { s.mort = tbl }
}

// WithMarketProvider replaces the embedded historical series.
func WithMarketProvider(p *marketdata.Provider) Option {
	return func(s *Simulator) { s.market = p }
}

// WithStartYear pins the calendar year of the first simulated year,
// which feeds the tax service. Defaults to the current year.
func WithStartYear(year int) Option {
	return func(s *Simulator) { s.startYear = year }
}

// WithTaxFallback makes tax service failures non-fatal: the given flat
// rate is applied to taxable income for the affected year and a warning
// is logged. Without this option a tax failure aborts the run.
func WithTaxFallback(flatRate float64) Option {
	return func(s *Simulator) {
		s.fallbackOnTaxError = true
		s.fallbackTaxRate = flatRate
	}
}

// NewSimulator validates the parameters and builds a simulator.
func NewSimulator(params *domain.SimulationParameters, opts ...Option) (*Simulator, error) {
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("invalid simulation parameters: %w", err)
	}
	s := &Simulator{
		params:    params,
		market:    marketdata.NewProvider(),
		mort:      mortality.NewDefaultTable(),
		taxes:     tax.NewEstimator(),
		log:       zerolog.Nop(),
		startYear: nowFunc().Year(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Run executes the simulation without progress reporting.
func (s *Simulator) Run(ctx context.Context) (*domain.SimulationResult, error) {
	return s.RunWithProgress(ctx, nil)
}

// RunWithProgress executes the simulation, invoking progress after each
// year. Cancellation is honored between years.
func (s *Simulator) RunWithProgress(ctx context.Context, progress ProgressFunc) (*domain.SimulationResult, error) {
	p := s.params
	nYears := p.Years()
	nPaths := p.NumPaths

	seed := p.Seed
	if seed == 0 {
		seed = seedFunc()
	}
	rng := rand.New(rand.NewSource(seed))

	s.log.Info().
		Int("paths", nPaths).
		Int("years", nYears).
		Str("return_model", string(p.ReturnModel)).
		Bool("holdings_mode", p.HasHoldings()).
		Msg("starting simulation")

	// Portfolio value per path per year boundary; column 0 is today.
	paths := make([][]float64, nPaths)
	for i := range paths {
		paths[i] = make([]float64, nYears+1)
	}

	var tracker *HoldingsTracker
	var priceGrowth, divYields [][]float64
	if p.HasHoldings() {
		var err error
		tracker, err = NewHoldingsTracker(s.market, p.Holdings, nPaths, nYears, p.WithdrawalStrategy, p.ReturnModel, rng)
		if err != nil {
			return nil, err
		}
		start := tracker.TotalBalance()
		for i := range paths {
			paths[i][0] = start[i]
		}
	} else {
		var err error
		priceGrowth, divYields, err = s.market.GenerateBlended(nPaths, nYears, p.ReturnModel, marketdata.BlendedOptions{
			StockAllocation:     p.StockAllocation,
			StockIndex:          p.StockIndex,
			BondIndex:           p.BondIndex,
			ExpectedStockReturn: p.ExpectedReturn,
			StockVolatility:     p.ReturnVolatility,
			ExpectedBondReturn:  marketdata.DefaultBondReturn,
			BondVolatility:      marketdata.DefaultBondVolatility,
		}, rng)
		if err != nil {
			return nil, err
		}
		for i := range paths {
			paths[i][0] = p.InitialCapital
		}
	}

	primaryAlive, spouseAlive, eitherAlive := s.aliveMasks(nPaths, nYears, rng)

	totalWithdrawn := make([]float64, nPaths)
	totalTaxes := make([]float64, nPaths)
	failureYear := make([]float64, nPaths)
	for i := range failureYear {
		failureYear[i] = float64(nYears + 1)
	}

	initialWithdrawalRate := s.initialWithdrawalRate()

	if progress != nil {
		progress(0, nYears)
	}

	// Per-year component arrays feeding the median breakdown.
	yearly := newYearlyTotals(nYears, nPaths)

	for year := 0; year < nYears; year++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		age := p.CurrentAge + year

		anyActive := false
		for i := 0; i < nPaths; i++ {
			if paths[i][year] > 0 && eitherAlive[i][year] {
				anyActive = true
				break
			}
		}
		if !anyActive {
			if progress != nil {
				progress(year+1, nYears)
			}
			continue
		}

		// Primary income components for the year.
		employment := 0.0
		if p.EmploymentIncome > 0 && age < p.RetirementAge {
			yearsWorked := min(year, p.RetirementAge-p.CurrentAge)
			employment = p.EmploymentIncome * math.Pow(1+p.EmploymentGrowthRate, float64(yearsWorked))
		}
		socialSecurity := 0.0
		if age >= p.SocialSecurityStartAge {
			socialSecurity = p.SocialSecurityMonthly * 12
		}
		pension := p.PensionAnnual

		spouseEmployment, spouseSS, spousePension := s.spouseIncome(year, nPaths, spouseAlive)
		annuityIncome := s.annuityIncome(year, nPaths, primaryAlive)

		// Dividend income; Roth dividends offset spending but are never
		// taxable.
		taxableDividends := make([]float64, nPaths)
		rothDividends := make([]float64, nPaths)
		if tracker != nil {
			d := tracker.Dividends(year)
			for i := 0; i < nPaths; i++ {
				taxableDividends[i] = d.Taxable[i] + d.Traditional[i]
				rothDividends[i] = d.Roth[i]
			}
		} else {
			for i := 0; i < nPaths; i++ {
				taxableDividends[i] = paths[i][year] * divYields[i][year]
			}
		}

		// Net portfolio need after every income source.
		netNeed := make([]float64, nPaths)
		for i := 0; i < nPaths; i++ {
			income := employment + socialSecurity + pension +
				spouseEmployment[i] + spouseSS[i] + spousePension[i] +
				annuityIncome[i] + taxableDividends[i] + rothDividends[i]
			netNeed[i] = max(0, p.AnnualSpending-income)
		}

		ssIncome := make([]float64, nPaths)
		copy(ssIncome, spouseSS)
		floats.AddConst(socialSecurity, ssIncome)
		employmentTotal := make([]float64, nPaths)
		copy(employmentTotal, spouseEmployment)
		floats.AddConst(employment, employmentTotal)

		var grossWithdrawal []float64
		var taxResult *tax.BatchResult
		if tracker != nil {
			wres := tracker.Withdraw(netNeed, age)

			ordinary := make([]float64, nPaths)
			for i := 0; i < nPaths; i++ {
				ordinary[i] = employmentTotal[i] + wres.Traditional[i] + wres.TraditionalRMD[i]
			}
			var err error
			taxResult, err = s.computeTaxes(ctx, &tax.BatchRequest{
				CapitalGains:   wres.Taxable,
				SocialSecurity: ssIncome,
				DividendIncome: taxableDividends,
				OrdinaryIncome: ordinary,
				Age:            age,
				FilingStatus:   p.FilingStatus,
				State:          p.State,
				Year:           s.startYear + year,
			})
			if err != nil {
				return nil, err
			}

			grossWithdrawal = make([]float64, nPaths)
			for i := 0; i < nPaths; i++ {
				grossWithdrawal[i] = wres.Total[i] + max(0, taxResult.TotalTax[i])
			}

			tracker.ApplyGrowth(year)
			newValue := tracker.TotalBalance()
			s.settleYear(paths, year, newValue, failureYear)
		} else {
			// Legacy mode treats the whole withdrawal as capital gains.
			var err error
			taxResult, err = s.computeTaxes(ctx, &tax.BatchRequest{
				CapitalGains:   netNeed,
				SocialSecurity: ssIncome,
				DividendIncome: taxableDividends,
				OrdinaryIncome: employmentTotal,
				Age:            age,
				FilingStatus:   p.FilingStatus,
				State:          p.State,
				Year:           s.startYear + year,
			})
			if err != nil {
				return nil, err
			}

			grossWithdrawal = make([]float64, nPaths)
			newValue := make([]float64, nPaths)
			for i := 0; i < nPaths; i++ {
				grossWithdrawal[i] = netNeed[i] + max(0, taxResult.TotalTax[i])
				growth := paths[i][year] * priceGrowth[i][year]
				newValue[i] = paths[i][year] + growth - grossWithdrawal[i]
			}
			s.settleYear(paths, year, newValue, failureYear)
		}

		for i := 0; i < nPaths; i++ {
			if paths[i][year] > 0 && eitherAlive[i][year] {
				totalWithdrawn[i] += grossWithdrawal[i]
				totalTaxes[i] += max(0, taxResult.TotalTax[i])
			}
		}

		for i := 0; i < nPaths; i++ {
			yearly.employment[year][i] = employmentTotal[i]
			yearly.socialSecurity[year][i] = ssIncome[i]
			yearly.pension[year][i] = pension + spousePension[i]
			yearly.dividends[year][i] = taxableDividends[i]
			yearly.annuity[year][i] = annuityIncome[i]
			yearly.withdrawal[year][i] = grossWithdrawal[i]
			yearly.federalTax[year][i] = taxResult.FederalTax[i]
			yearly.stateTax[year][i] = taxResult.StateTax[i]
			yearly.totalTax[year][i] = max(0, taxResult.TotalTax[i])
		}

		if progress != nil {
			progress(year+1, nYears)
		}
	}

	s.pathWithdrawn = totalWithdrawn
	s.pathTaxes = totalTaxes

	result := s.aggregate(paths, eitherAlive, failureYear, totalWithdrawn, totalTaxes, yearly, initialWithdrawalRate)
	s.log.Info().
		Float64("success_rate", result.SuccessRate).
		Float64("median_final_value", result.MedianFinalValue).
		Msg("simulation complete")
	return result, nil
}

// settleYear clamps new values at zero, records first depletion, and
// writes the next column of the paths matrix.
func (s *Simulator) settleYear(paths [][]float64, year int, newValue []float64, failureYear []float64) {
	for i := range newValue {
		if paths[i][year] > 0 && newValue[i] <= 0 && failureYear[i] > float64(year) {
			failureYear[i] = float64(year + 1)
		}
		paths[i][year+1] = max(0, newValue[i])
	}
}

func (s *Simulator) computeTaxes(ctx context.Context, req *tax.BatchRequest) (*tax.BatchResult, error) {
	res, err := s.taxes.ComputeTaxes(ctx, req)
	if err == nil {
		return res, nil
	}
	if !s.fallbackOnTaxError {
		return nil, fmt.Errorf("tax calculation failed for year %d: %w", req.Year, err)
	}
	s.log.Warn().Err(err).Int("year", req.Year).
		Float64("flat_rate", s.fallbackTaxRate).
		Msg("tax service failed, applying flat-rate fallback")

	n := req.Paths()
	out := &tax.BatchResult{
		FederalTax:     make([]float64, n),
		StateTax:       make([]float64, n),
		IRMAASurcharge: make([]float64, n),
		TotalTax:       make([]float64, n),
	}
	for i := 0; i < n; i++ {
		taxable := req.OrdinaryIncome[i] + req.CapitalGains[i] + req.DividendIncome[i]
		out.FederalTax[i] = taxable * s.fallbackTaxRate
		out.TotalTax[i] = out.FederalTax[i]
	}
	return out, nil
}

func (s *Simulator) aliveMasks(nPaths, nYears int, rng *rand.Rand) (primary, spouse, either [][]bool) {
	p := s.params
	if !p.IncludeMortality {
		either = make([][]bool, nPaths)
		for i := range either {
			either[i] = make([]bool, nYears+1)
			for y := range either[i] {
				either[i][y] = true
			}
		}
		return either, nil, either
	}
	if p.Spouse != nil {
		return mortality.GenerateJointAliveMask(s.mort, nPaths, nYears,
			p.CurrentAge, p.Gender, p.Spouse.Age, p.Spouse.Gender, rng)
	}
	primary = mortality.GenerateAliveMask(s.mort, nPaths, nYears, p.CurrentAge, p.Gender, rng)
	return primary, nil, primary
}

// spouseIncome returns per-path spouse income components for a year,
// zeroed where the spouse has died.
func (s *Simulator) spouseIncome(year, nPaths int, spouseAlive [][]bool) (employment, ss, pension []float64) {
	employment = make([]float64, nPaths)
	ss = make([]float64, nPaths)
	pension = make([]float64, nPaths)
	sp := s.params.Spouse
	if sp == nil {
		return employment, ss, pension
	}

	age := sp.Age + year
	emp := 0.0
	if sp.EmploymentIncome > 0 && age < sp.RetirementAge {
		yearsWorked := min(year, sp.RetirementAge-sp.Age)
		emp = sp.EmploymentIncome * math.Pow(1+sp.EmploymentGrowthRate, float64(yearsWorked))
	}
	ssAnnual := 0.0
	if age >= sp.SocialSecurityStartAge {
		ssAnnual = sp.SocialSecurityMonthly * 12
	}
	for i := 0; i < nPaths; i++ {
		if spouseAlive != nil && !spouseAlive[i][year] {
			continue
		}
		employment[i] = emp
		ss[i] = ssAnnual
		pension[i] = sp.PensionAnnual
	}
	return employment, ss, pension
}

// annuityIncome returns per-path annuity income for a year per the payout
// type: fixed_period pays only inside the guarantee window,
// life_with_guarantee pays unconditionally inside the window and while
// the primary lives after it, life_only pays only while the primary lives.
func (s *Simulator) annuityIncome(year, nPaths int, primaryAlive [][]bool) []float64 {
	income := make([]float64, nPaths)
	a := s.params.Annuity
	if a == nil {
		return income
	}
	annual := a.MonthlyPayment * 12

	switch a.Type {
	case domain.FixedPeriod:
		if year < a.GuaranteeYears {
			for i := range income {
				income[i] = annual
			}
		}
	case domain.LifeWithGuarantee:
		for i := range income {
			if year < a.GuaranteeYears || primaryAlive[i][year] {
				income[i] = annual
			}
		}
	case domain.LifeOnly:
		for i := range income {
			if primaryAlive[i][year] {
				income[i] = annual
			}
		}
	}
	return income
}

// initialWithdrawalRate is the first-year net portfolio need as a
// percentage of starting capital, for reporting only.
func (s *Simulator) initialWithdrawalRate() float64 {
	p := s.params
	guaranteed := p.SocialSecurityMonthly*12 + p.PensionAnnual
	if p.CurrentAge < p.RetirementAge {
		guaranteed += p.EmploymentIncome
	}
	if p.Spouse != nil {
		guaranteed += p.Spouse.SocialSecurityMonthly*12 + p.Spouse.PensionAnnual
		if p.Spouse.Age < p.Spouse.RetirementAge {
			guaranteed += p.Spouse.EmploymentIncome
		}
	}
	if p.Annuity != nil {
		guaranteed += p.Annuity.MonthlyPayment * 12
	}
	netNeed := max(0, p.AnnualSpending-guaranteed)
	capital := p.TotalCapital()
	if capital <= 0 {
		return 0
	}
	return netNeed / capital * 100
}

type yearlyTotals struct {
	employment     [][]float64
	socialSecurity [][]float64
	pension        [][]float64
	dividends      [][]float64
	annuity        [][]float64
	withdrawal     [][]float64
	federalTax     [][]float64
	stateTax       [][]float64
	totalTax       [][]float64
}

func newYearlyTotals(nYears, nPaths int) *yearlyTotals {
	alloc := func() [][]float64 {
		m := make([][]float64, nYears)
		for i := range m {
			m[i] = make([]float64, nPaths)
		}
		return m
	}
	return &yearlyTotals{
		employment:     alloc(),
		socialSecurity: alloc(),
		pension:        alloc(),
		dividends:      alloc(),
		annuity:        alloc(),
		withdrawal:     alloc(),
		federalTax:     alloc(),
		stateTax:       alloc(),
		totalTax:       alloc(),
	}
}

func (s *Simulator) aggregate(
	paths [][]float64,
	eitherAlive [][]bool,
	failureYear []float64,
	totalWithdrawn, totalTaxes []float64,
	yearly *yearlyTotals,
	initialWithdrawalRate float64,
) *domain.SimulationResult {
	p := s.params
	nYears := p.Years()
	nPaths := p.NumPaths

	finalValues := make([]float64, nPaths)
	for i := range finalValues {
		finalValues[i] = paths[i][nYears]
	}

	// Dying before the money runs out counts as success.
	successes := 0
	for i := 0; i < nPaths; i++ {
		if failureYear[i] > float64(nYears) || (p.IncludeMortality && !eitherAlive[i][nYears]) {
			successes++
		}
	}
	successRate := float64(successes) / float64(nPaths)

	column := make([]float64, nPaths)
	trajectory := func(q float64) []float64 {
		out := make([]float64, nYears+1)
		for y := 0; y <= nYears; y++ {
			for i := 0; i < nPaths; i++ {
				column[i] = paths[i][y]
			}
			out[y] = quantile(column, q)
		}
		return out
	}
	percentilePaths := domain.PercentilePaths{
		P5:  trajectory(0.05),
		P25: trajectory(0.25),
		P50: trajectory(0.50),
		P75: trajectory(0.75),
		P95: trajectory(0.95),
	}

	var depleted []float64
	for _, fy := range failureYear {
		if fy <= float64(nYears) {
			depleted = append(depleted, fy)
		}
	}
	var medianDepletionAge *int
	var medianDepletionYear *float64
	if len(depleted) > 0 {
		m := quantile(depleted, 0.5)
		age := p.CurrentAge + int(m)
		medianDepletionAge = &age
		medianDepletionYear = &m
	}

	failedBy10 := 0
	for _, fy := range failureYear {
		if fy <= 10 {
			failedBy10++
		}
	}

	breakdown := make([]domain.YearBreakdown, 0, nYears)
	for y := 0; y < nYears; y++ {
		for i := 0; i < nPaths; i++ {
			column[i] = paths[i][y]
		}
		start := quantile(column, 0.5)
		for i := 0; i < nPaths; i++ {
			column[i] = paths[i][y+1]
		}
		end := quantile(column, 0.5)

		employment := quantile(yearly.employment[y], 0.5)
		ss := quantile(yearly.socialSecurity[y], 0.5)
		pension := quantile(yearly.pension[y], 0.5)
		divs := quantile(yearly.dividends[y], 0.5)
		annuity := quantile(yearly.annuity[y], 0.5)
		withdrawal := quantile(yearly.withdrawal[y], 0.5)
		fedTax := quantile(yearly.federalTax[y], 0.5)
		stateTax := quantile(yearly.stateTax[y], 0.5)
		totalTax := quantile(yearly.totalTax[y], 0.5)

		totalIncome := employment + ss + pension + divs + annuity
		effectiveRate := 0.0
		if totalIncome > 0 {
			effectiveRate = totalTax / totalIncome
		}
		portfolioReturn := 0.0
		if start > 0 {
			portfolioReturn = (end - start + withdrawal) / start
		}

		breakdown = append(breakdown, domain.YearBreakdown{
			Age:              p.CurrentAge + y,
			YearIndex:        y,
			PortfolioStart:   start,
			PortfolioEnd:     end,
			PortfolioReturn:  portfolioReturn,
			EmploymentIncome: employment,
			SocialSecurity:   ss,
			Pension:          pension,
			Dividends:        divs,
			AnnuityIncome:    annuity,
			TotalIncome:      totalIncome,
			Withdrawal:       withdrawal,
			FederalTax:       fedTax,
			StateTax:         stateTax,
			TotalTax:         totalTax,
			EffectiveTaxRate: effectiveRate,
			NetIncome:        totalIncome + withdrawal - totalTax,
		})
	}

	return &domain.SimulationResult{
		SuccessRate:      successRate,
		MedianFinalValue: quantile(finalValues, 0.5),
		MeanFinalValue:   stat.Mean(finalValues, nil),
		Percentiles: domain.Percentiles{
			P5:  quantile(finalValues, 0.05),
			P25: quantile(finalValues, 0.25),
			P50: quantile(finalValues, 0.50),
			P75: quantile(finalValues, 0.75),
			P95: quantile(finalValues, 0.95),
		},
		PercentilePaths:       percentilePaths,
		MedianDepletionAge:    medianDepletionAge,
		MedianDepletionYear:   medianDepletionYear,
		TotalWithdrawnMedian:  quantile(totalWithdrawn, 0.5),
		TotalTaxesMedian:      quantile(totalTaxes, 0.5),
		InitialWithdrawalRate: initialWithdrawalRate,
		Prob10YearFailure:     float64(failedBy10) / float64(nPaths),
		YearBreakdown:         breakdown,
	}
}

// quantile computes a linearly interpolated quantile over an unsorted
// sample without mutating it.
func quantile(values []float64, q float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	return stat.Quantile(q, stat.LinInterp, sorted, nil)
}
