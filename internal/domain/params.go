package domain

import "fmt"

// Gender selects the mortality table used for an individual.
type Gender string

const (
	Male   Gender = "male"
	Female Gender = "female"
)

// ParseGender validates a gender string from user input.
func ParseGender(s string) (Gender, error) {
	switch Gender(s) {
	case Male, Female:
		return Gender(s), nil
	}
	return "", fmt.Errorf("unknown gender %q (want 'male' or 'female')", s)
}

// FilingStatus is the federal tax filing status.
type FilingStatus string

const (
	Single       FilingStatus = "single"
	MarriedJoint FilingStatus = "married_joint"
)

// ParseFilingStatus validates a filing status string from user input.
func ParseFilingStatus(s string) (FilingStatus, error) {
	switch FilingStatus(s) {
	case Single, MarriedJoint:
		return FilingStatus(s), nil
	}
	return "", fmt.Errorf("unknown filing status %q (want 'single' or 'married_joint')", s)
}

// AccountType identifies the legal wrapper of a holding.
type AccountType string

const (
	Traditional401k AccountType = "traditional_401k"
	TraditionalIRA  AccountType = "traditional_ira"
	Roth401k        AccountType = "roth_401k"
	RothIRA         AccountType = "roth_ira"
	TaxableAccount  AccountType = "taxable"
)

// TaxCategory is the tax treatment bucket an account type belongs to.
// The three categories partition all account types.
type TaxCategory string

const (
	CategoryTraditional TaxCategory = "traditional" // tax-deferred, ordinary income on withdrawal
	CategoryRoth        TaxCategory = "roth"        // tax-free
	CategoryTaxable     TaxCategory = "taxable"     // capital gains on withdrawal
)

// Category maps an account type to its tax category.
func (a AccountType) Category() TaxCategory {
	switch a {
	case Traditional401k, TraditionalIRA:
		return CategoryTraditional
	case Roth401k, RothIRA:
		return CategoryRoth
	default:
		return CategoryTaxable
	}
}

// ParseAccountType validates an account type string from user input.
func ParseAccountType(s string) (AccountType, error) {
	switch AccountType(s) {
	case Traditional401k, TraditionalIRA, Roth401k, RothIRA, TaxableAccount:
		return AccountType(s), nil
	}
	return "", fmt.Errorf("unknown account type %q", s)
}

// WithdrawalStrategy selects the discretionary withdrawal ordering across
// tax categories. The RMD phase always runs first regardless of strategy.
type WithdrawalStrategy string

const (
	TaxableFirst     WithdrawalStrategy = "taxable_first"
	TraditionalFirst WithdrawalStrategy = "traditional_first"
	RothFirst        WithdrawalStrategy = "roth_first"
	ProRata          WithdrawalStrategy = "pro_rata"
)

// ParseWithdrawalStrategy validates a withdrawal strategy string.
func ParseWithdrawalStrategy(s string) (WithdrawalStrategy, error) {
	switch WithdrawalStrategy(s) {
	case TaxableFirst, TraditionalFirst, RothFirst, ProRata:
		return WithdrawalStrategy(s), nil
	}
	return "", fmt.Errorf("unknown withdrawal strategy %q", s)
}

// ReturnModel selects how synthetic market returns are generated.
type ReturnModel string

const (
	Bootstrap      ReturnModel = "bootstrap"
	BlockBootstrap ReturnModel = "block_bootstrap"
	Historical     ReturnModel = "historical"
	Normal         ReturnModel = "normal"
)

// ParseReturnModel validates a return model string.
func ParseReturnModel(s string) (ReturnModel, error) {
	switch ReturnModel(s) {
	case Bootstrap, BlockBootstrap, Historical, Normal:
		return ReturnModel(s), nil
	}
	return "", fmt.Errorf("unknown return model %q", s)
}

// Fund identifies a historical return series.
type Fund string

const (
	FundVT       Fund = "vt"       // Vanguard Total World Stock
	FundSP500    Fund = "sp500"    // S&P 500
	FundBND      Fund = "bnd"      // Vanguard Total Bond Market
	FundTreasury Fund = "treasury" // 10-year Treasury
)

// ParseFund validates a fund identifier string.
func ParseFund(s string) (Fund, error) {
	switch Fund(s) {
	case FundVT, FundSP500, FundBND, FundTreasury:
		return Fund(s), nil
	}
	return "", fmt.Errorf("unknown fund %q", s)
}

// AnnuityType selects the payout rule for an annuity income stream.
type AnnuityType string

const (
	FixedPeriod       AnnuityType = "fixed_period"        // paid only within the guarantee window
	LifeWithGuarantee AnnuityType = "life_with_guarantee" // unconditional within the window, then life-contingent
	LifeOnly          AnnuityType = "life_only"           // paid only while the primary is alive
)

// ParseAnnuityType validates an annuity type string.
func ParseAnnuityType(s string) (AnnuityType, error) {
	switch AnnuityType(s) {
	case FixedPeriod, LifeWithGuarantee, LifeOnly:
		return AnnuityType(s), nil
	}
	return "", fmt.Errorf("unknown annuity type %q", s)
}

// Holding is one account position with its own fund and starting balance.
type Holding struct {
	AccountType AccountType `json:"account_type" yaml:"account_type"`
	Fund        Fund        `json:"fund" yaml:"fund"`
	Balance     float64     `json:"balance" yaml:"balance"`
}

// Annuity describes an already-purchased annuity income stream.
type Annuity struct {
	Type           AnnuityType `json:"annuity_type" yaml:"annuity_type"`
	GuaranteeYears int         `json:"guarantee_years" yaml:"guarantee_years"`
	MonthlyPayment float64     `json:"monthly_payment" yaml:"monthly_payment"`
}

// Spouse mirrors the primary person's income fields for joint simulations.
type Spouse struct {
	Age                    int     `json:"age" yaml:"age"`
	Gender                 Gender  `json:"gender" yaml:"gender"`
	EmploymentIncome       float64 `json:"employment_income" yaml:"employment_income"`
	EmploymentGrowthRate   float64 `json:"employment_growth_rate" yaml:"employment_growth_rate"`
	RetirementAge          int     `json:"retirement_age" yaml:"retirement_age"`
	SocialSecurityMonthly  float64 `json:"social_security_monthly" yaml:"social_security_monthly"`
	SocialSecurityStartAge int     `json:"social_security_start_age" yaml:"social_security_start_age"`
	PensionAnnual          float64 `json:"pension_annual" yaml:"pension_annual"`
}

// SimulationParameters is the canonical, validated input to one simulation
// run. Legacy input shapes (monthly income targets, capital-vs-holdings
// duplication) are normalized into this struct at the config boundary and
// never reach the engine.
type SimulationParameters struct {
	CurrentAge   int          `json:"current_age"`
	MaxAge       int          `json:"max_age"`
	Gender       Gender       `json:"gender"`
	State        string       `json:"state"`
	FilingStatus FilingStatus `json:"filing_status"`

	AnnualSpending float64 `json:"annual_spending"`

	EmploymentIncome       float64 `json:"employment_income"`
	EmploymentGrowthRate   float64 `json:"employment_growth_rate"`
	RetirementAge          int     `json:"retirement_age"`
	SocialSecurityMonthly  float64 `json:"social_security_monthly"`
	SocialSecurityStartAge int     `json:"social_security_start_age"`
	PensionAnnual          float64 `json:"pension_annual"`

	Spouse  *Spouse  `json:"spouse,omitempty"`
	Annuity *Annuity `json:"annuity,omitempty"`

	ReturnModel      ReturnModel `json:"return_model"`
	StockAllocation  float64     `json:"stock_allocation"`
	ExpectedReturn   float64     `json:"expected_return"`
	ReturnVolatility float64     `json:"return_volatility"`
	StockIndex       Fund        `json:"stock_index"`
	BondIndex        Fund        `json:"bond_index"`

	// Exactly one of InitialCapital / Holdings determines starting capital.
	InitialCapital float64   `json:"initial_capital,omitempty"`
	Holdings       []Holding `json:"holdings,omitempty"`

	WithdrawalStrategy WithdrawalStrategy `json:"withdrawal_strategy"`
	NumPaths           int                `json:"n_simulations"`
	IncludeMortality   bool               `json:"include_mortality"`

	// Seed pins the run's random generator; 0 means seed from the clock.
	Seed int64 `json:"seed,omitempty"`
}

// Years is the simulation horizon in whole years.
func (p *SimulationParameters) Years() int {
	return p.MaxAge - p.CurrentAge
}

// HasHoldings reports whether the run is in holdings mode.
func (p *SimulationParameters) HasHoldings() bool {
	return len(p.Holdings) > 0
}

// TotalCapital derives starting capital from holdings when present,
// otherwise from the legacy scalar. Never stored redundantly.
func (p *SimulationParameters) TotalCapital() float64 {
	if !p.HasHoldings() {
		return p.InitialCapital
	}
	var total float64
	for _, h := range p.Holdings {
		total += h.Balance
	}
	return total
}

// Validate rejects invalid parameters before any simulation work happens.
func (p *SimulationParameters) Validate() error {
	if p.CurrentAge < 18 || p.CurrentAge > 100 {
		return fmt.Errorf("current age must be between 18 and 100, got %d", p.CurrentAge)
	}
	if p.MaxAge <= p.CurrentAge {
		return fmt.Errorf("max age (%d) must be greater than current age (%d)", p.MaxAge, p.CurrentAge)
	}
	if p.MaxAge > 120 {
		return fmt.Errorf("max age must not exceed 120, got %d", p.MaxAge)
	}
	if _, err := ParseGender(string(p.Gender)); err != nil {
		return err
	}
	if _, err := ParseFilingStatus(string(p.FilingStatus)); err != nil {
		return err
	}
	if p.AnnualSpending <= 0 {
		return fmt.Errorf("annual spending must be positive, got %.2f", p.AnnualSpending)
	}
	if p.HasHoldings() && p.InitialCapital != 0 {
		return fmt.Errorf("specify either initial_capital or holdings, not both")
	}
	if !p.HasHoldings() && p.InitialCapital <= 0 {
		return fmt.Errorf("initial capital must be positive, got %.2f", p.InitialCapital)
	}
	for i, h := range p.Holdings {
		if _, err := ParseAccountType(string(h.AccountType)); err != nil {
			return fmt.Errorf("holding %d: %w", i, err)
		}
		if _, err := ParseFund(string(h.Fund)); err != nil {
			return fmt.Errorf("holding %d: %w", i, err)
		}
		if h.Balance < 0 {
			return fmt.Errorf("holding %d: balance cannot be negative", i)
		}
	}
	if _, err := ParseReturnModel(string(p.ReturnModel)); err != nil {
		return err
	}
	if p.StockAllocation < 0 || p.StockAllocation > 1 {
		return fmt.Errorf("stock allocation must be between 0 and 1, got %.4f", p.StockAllocation)
	}
	if _, err := ParseFund(string(p.StockIndex)); err != nil {
		return fmt.Errorf("stock index: %w", err)
	}
	if _, err := ParseFund(string(p.BondIndex)); err != nil {
		return fmt.Errorf("bond index: %w", err)
	}
	if _, err := ParseWithdrawalStrategy(string(p.WithdrawalStrategy)); err != nil {
		return err
	}
	if p.NumPaths < 100 || p.NumPaths > 100000 {
		return fmt.Errorf("number of simulation paths must be between 100 and 100000, got %d", p.NumPaths)
	}
	if p.Annuity != nil {
		if _, err := ParseAnnuityType(string(p.Annuity.Type)); err != nil {
			return err
		}
		if p.Annuity.GuaranteeYears < 0 {
			return fmt.Errorf("annuity guarantee years cannot be negative")
		}
		if p.Annuity.MonthlyPayment < 0 {
			return fmt.Errorf("annuity monthly payment cannot be negative")
		}
	}
	if p.Spouse != nil {
		if p.Spouse.Age < 18 || p.Spouse.Age > 100 {
			return fmt.Errorf("spouse age must be between 18 and 100, got %d", p.Spouse.Age)
		}
		if _, err := ParseGender(string(p.Spouse.Gender)); err != nil {
			return fmt.Errorf("spouse: %w", err)
		}
	}
	return nil
}
