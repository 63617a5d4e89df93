// Package config parses simulation parameter files and environment
// settings, normalizing legacy input shapes into canonical domain
// parameters at the boundary.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/finsim/retirement-simulator/internal/domain"
)

// Input defaults applied during normalization.
const (
	DefaultRetirementAge  = 65
	DefaultSSStartAge     = 67
	DefaultMaxAge         = 95
	DefaultNumPaths       = 10000
	DefaultState          = "CA"
	DefaultExpectedReturn = 0.07
	DefaultVolatility     = 0.16
)

// SimulationInput is the user-facing parameter file shape. It accepts
// both the current fields and legacy aliases (target_monthly_income,
// n_years); Normalize resolves them into domain.SimulationParameters so
// the engine never sees dual fields.
type SimulationInput struct {
	CurrentAge   int    `yaml:"current_age" json:"current_age"`
	MaxAge       int    `yaml:"max_age,omitempty" json:"max_age,omitempty"`
	Gender       string `yaml:"gender,omitempty" json:"gender,omitempty"`
	State        string `yaml:"state,omitempty" json:"state,omitempty"`
	FilingStatus string `yaml:"filing_status,omitempty" json:"filing_status,omitempty"`

	AnnualSpending float64 `yaml:"annual_spending,omitempty" json:"annual_spending,omitempty"`
	// Legacy alias for annual_spending / 12.
	TargetMonthlyIncome float64 `yaml:"target_monthly_income,omitempty" json:"target_monthly_income,omitempty"`
	// Legacy alias for max_age - current_age.
	NumYears int `yaml:"n_years,omitempty" json:"n_years,omitempty"`

	EmploymentIncome       float64 `yaml:"employment_income,omitempty" json:"employment_income,omitempty"`
	EmploymentGrowthRate   float64 `yaml:"employment_growth_rate,omitempty" json:"employment_growth_rate,omitempty"`
	RetirementAge          int     `yaml:"retirement_age,omitempty" json:"retirement_age,omitempty"`
	SocialSecurityMonthly  float64 `yaml:"social_security_monthly,omitempty" json:"social_security_monthly,omitempty"`
	SocialSecurityStartAge int     `yaml:"social_security_start_age,omitempty" json:"social_security_start_age,omitempty"`
	PensionAnnual          float64 `yaml:"pension_annual,omitempty" json:"pension_annual,omitempty"`

	Spouse  *SpouseInput  `yaml:"spouse,omitempty" json:"spouse,omitempty"`
	Annuity *AnnuityInput `yaml:"annuity,omitempty" json:"annuity,omitempty"`

	ReturnModel string `yaml:"return_model,omitempty" json:"return_model,omitempty"`
	// Pointers so an explicit 0 (all bonds, zero volatility) is distinct
	// from omitted.
	StockAllocation  *float64 `yaml:"stock_allocation,omitempty" json:"stock_allocation,omitempty"`
	ExpectedReturn   *float64 `yaml:"expected_return,omitempty" json:"expected_return,omitempty"`
	ReturnVolatility *float64 `yaml:"return_volatility,omitempty" json:"return_volatility,omitempty"`
	StockIndex       string   `yaml:"stock_index,omitempty" json:"stock_index,omitempty"`
	BondIndex        string   `yaml:"bond_index,omitempty" json:"bond_index,omitempty"`

	InitialCapital float64        `yaml:"initial_capital,omitempty" json:"initial_capital,omitempty"`
	Holdings       []HoldingInput `yaml:"holdings,omitempty" json:"holdings,omitempty"`

	WithdrawalStrategy string `yaml:"withdrawal_strategy,omitempty" json:"withdrawal_strategy,omitempty"`
	NumSimulations     int    `yaml:"n_simulations,omitempty" json:"n_simulations,omitempty"`
	IncludeMortality   bool   `yaml:"include_mortality,omitempty" json:"include_mortality,omitempty"`
	Seed               int64  `yaml:"seed,omitempty" json:"seed,omitempty"`
}

// HoldingInput is one account position in the parameter file.
type HoldingInput struct {
	AccountType string  `yaml:"account_type" json:"account_type"`
	Fund        string  `yaml:"fund" json:"fund"`
	Balance     float64 `yaml:"balance" json:"balance"`
}

// SpouseInput mirrors the primary person's income fields.
type SpouseInput struct {
	Age                    int     `yaml:"age" json:"age"`
	Gender                 string  `yaml:"gender" json:"gender"`
	EmploymentIncome       float64 `yaml:"employment_income,omitempty" json:"employment_income,omitempty"`
	EmploymentGrowthRate   float64 `yaml:"employment_growth_rate,omitempty" json:"employment_growth_rate,omitempty"`
	RetirementAge          int     `yaml:"retirement_age,omitempty" json:"retirement_age,omitempty"`
	SocialSecurityMonthly  float64 `yaml:"social_security_monthly,omitempty" json:"social_security_monthly,omitempty"`
	SocialSecurityStartAge int     `yaml:"social_security_start_age,omitempty" json:"social_security_start_age,omitempty"`
	PensionAnnual          float64 `yaml:"pension_annual,omitempty" json:"pension_annual,omitempty"`
}

// AnnuityInput describes an annuity income stream in the parameter file.
type AnnuityInput struct {
	Type           string  `yaml:"annuity_type" json:"annuity_type"`
	GuaranteeYears int     `yaml:"guarantee_years" json:"guarantee_years"`
	MonthlyPayment float64 `yaml:"monthly_payment" json:"monthly_payment"`
}

// InputParser loads and normalizes simulation parameter files.
type InputParser struct {
	defaultPaths int
}

// NewInputParser creates a new input parser.
func NewInputParser() *InputParser {
	return &InputParser{defaultPaths: DefaultNumPaths}
}

// WithDefaultPaths overrides the path count applied when a parameter
// file omits n_simulations. Non-positive values keep the built-in
// default; an explicit n_simulations always wins.
func (ip *InputParser) WithDefaultPaths(n int) *InputParser {
	if n > 0 {
		ip.defaultPaths = n
	}
	return ip
}

// LoadFromFile parses a YAML parameter file and normalizes it.
func (ip *InputParser) LoadFromFile(filename string) (*domain.SimulationParameters, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
	}

	var input SimulationInput
	if err := yaml.Unmarshal(data, &input); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if input.NumSimulations == 0 {
		input.NumSimulations = ip.defaultPaths
	}
	return input.Normalize()
}

// Normalize resolves legacy aliases, applies defaults, and validates.
func (in *SimulationInput) Normalize() (*domain.SimulationParameters, error) {
	spending := in.AnnualSpending
	if spending == 0 && in.TargetMonthlyIncome > 0 {
		spending = in.TargetMonthlyIncome * 12
	}
	if in.AnnualSpending > 0 && in.TargetMonthlyIncome > 0 {
		return nil, fmt.Errorf("specify either annual_spending or target_monthly_income, not both")
	}

	maxAge := in.MaxAge
	if maxAge == 0 {
		if in.NumYears > 0 {
			maxAge = in.CurrentAge + in.NumYears
		} else {
			maxAge = DefaultMaxAge
		}
	} else if in.NumYears > 0 {
		return nil, fmt.Errorf("specify either max_age or n_years, not both")
	}

	p := &domain.SimulationParameters{
		CurrentAge:   in.CurrentAge,
		MaxAge:       maxAge,
		Gender:       domain.Gender(defaultString(in.Gender, string(domain.Male))),
		State:        defaultString(in.State, DefaultState),
		FilingStatus: domain.FilingStatus(defaultString(in.FilingStatus, string(domain.Single))),

		AnnualSpending: spending,

		EmploymentIncome:       in.EmploymentIncome,
		EmploymentGrowthRate:   in.EmploymentGrowthRate,
		RetirementAge:          defaultInt(in.RetirementAge, DefaultRetirementAge),
		SocialSecurityMonthly:  in.SocialSecurityMonthly,
		SocialSecurityStartAge: defaultInt(in.SocialSecurityStartAge, DefaultSSStartAge),
		PensionAnnual:          in.PensionAnnual,

		ReturnModel:      domain.ReturnModel(defaultString(in.ReturnModel, string(domain.Bootstrap))),
		StockAllocation:  1.0,
		ExpectedReturn:   defaultFloatPtr(in.ExpectedReturn, DefaultExpectedReturn),
		ReturnVolatility: defaultFloatPtr(in.ReturnVolatility, DefaultVolatility),
		StockIndex:       domain.Fund(defaultString(in.StockIndex, string(domain.FundVT))),
		BondIndex:        domain.Fund(defaultString(in.BondIndex, string(domain.FundBND))),

		InitialCapital: in.InitialCapital,

		WithdrawalStrategy: domain.WithdrawalStrategy(defaultString(in.WithdrawalStrategy, string(domain.TaxableFirst))),
		NumPaths:           defaultInt(in.NumSimulations, DefaultNumPaths),
		IncludeMortality:   in.IncludeMortality,
		Seed:               in.Seed,
	}

	if in.StockAllocation != nil {
		p.StockAllocation = *in.StockAllocation
	}

	for _, h := range in.Holdings {
		p.Holdings = append(p.Holdings, domain.Holding{
			AccountType: domain.AccountType(h.AccountType),
			Fund:        domain.Fund(h.Fund),
			Balance:     h.Balance,
		})
	}

	if in.Spouse != nil {
		p.Spouse = &domain.Spouse{
			Age:                    in.Spouse.Age,
			Gender:                 domain.Gender(in.Spouse.Gender),
			EmploymentIncome:       in.Spouse.EmploymentIncome,
			EmploymentGrowthRate:   in.Spouse.EmploymentGrowthRate,
			RetirementAge:          defaultInt(in.Spouse.RetirementAge, DefaultRetirementAge),
			SocialSecurityMonthly:  in.Spouse.SocialSecurityMonthly,
			SocialSecurityStartAge: defaultInt(in.Spouse.SocialSecurityStartAge, DefaultSSStartAge),
			PensionAnnual:          in.Spouse.PensionAnnual,
		}
	}

	if in.Annuity != nil {
		p.Annuity = &domain.Annuity{
			Type:           domain.AnnuityType(in.Annuity.Type),
			GuaranteeYears: in.Annuity.GuaranteeYears,
			MonthlyPayment: in.Annuity.MonthlyPayment,
		}
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

func defaultString(v, d string) string {
	if v == "" {
		return d
	}
	return v
}

func defaultInt(v, d int) int {
	if v == 0 {
		return d
	}
	return v
}

func defaultFloatPtr(v *float64, d float64) float64 {
	if v == nil {
		return d
	}
	return *v
}
