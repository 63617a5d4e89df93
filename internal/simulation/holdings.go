package simulation

import (
	"math/rand"

	"github.com/finsim/retirement-simulator/internal/domain"
	"github.com/finsim/retirement-simulator/internal/marketdata"
)

// HoldingState is one account position tracked across all paths. Returns
// are pre-generated; holdings on the same fund share the same matrices so
// they experience identical markets.
type HoldingState struct {
	AccountType domain.AccountType
	Fund        domain.Fund
	Balance     []float64   // per path
	PriceGrowth [][]float64 // (paths, years)
	DivYields   [][]float64 // (paths, years)
}

// DividendIncome is one year's dividend income split by tax category.
type DividendIncome struct {
	Traditional []float64
	Roth        []float64
	Taxable     []float64
}

// WithdrawalResult reports how one year's withdrawal was sourced. The RMD
// portion and any further traditional draw are both ordinary income; they
// are kept separate for reporting.
type WithdrawalResult struct {
	TraditionalRMD []float64
	Traditional    []float64
	Roth           []float64
	Taxable        []float64
	Total          []float64
}

// HoldingsTracker tracks a multi-account portfolio through the year loop:
// per-fund returns, RMDs, and withdrawal ordering across tax categories.
type HoldingsTracker struct {
	paths    int
	years    int
	strategy domain.WithdrawalStrategy
	holdings []*HoldingState
}

// NewHoldingsTracker pre-generates per-fund return matrices and initializes
// per-path balances. Only the sampling return models apply per fund;
// others are coerced to plain bootstrap.
func NewHoldingsTracker(
	provider *marketdata.Provider,
	holdings []domain.Holding,
	paths, years int,
	strategy domain.WithdrawalStrategy,
	model domain.ReturnModel,
	rng *rand.Rand,
) (*HoldingsTracker, error) {
	type fundReturns struct {
		price [][]float64
		div   [][]float64
	}
	byFund := make(map[domain.Fund]fundReturns)
	for _, h := range holdings {
		if _, ok := byFund[h.Fund]; ok {
			continue
		}
		price, div, err := provider.GenerateFund(h.Fund, paths, years, model, rng)
		if err != nil {
			return nil, err
		}
		byFund[h.Fund] = fundReturns{price: price, div: div}
	}

	t := &HoldingsTracker{
		paths:    paths,
		years:    years,
		strategy: strategy,
	}
	for _, h := range holdings {
		balance := make([]float64, paths)
		for i := range balance {
			balance[i] = h.Balance
		}
		fr := byFund[h.Fund]
		t.holdings = append(t.holdings, &HoldingState{
			AccountType: h.AccountType,
			Fund:        h.Fund,
			Balance:     balance,
			PriceGrowth: fr.price,
			DivYields:   fr.div,
		})
	}
	return t, nil
}

// TotalBalance returns the per-path portfolio total.
func (t *HoldingsTracker) TotalBalance() []float64 {
	total := make([]float64, t.paths)
	for _, h := range t.holdings {
		for i, b := range h.Balance {
			total[i] += b
		}
	}
	return total
}

// CategoryBalance returns the per-path total for one tax category.
func (t *HoldingsTracker) CategoryBalance(cat domain.TaxCategory) []float64 {
	total := make([]float64, t.paths)
	for _, h := range t.holdings {
		if h.AccountType.Category() != cat {
			continue
		}
		for i, b := range h.Balance {
			total[i] += b
		}
	}
	return total
}

// ApplyGrowth compounds every holding by its price return for the year.
// Dividends are income, not growth, and are handled separately.
func (t *HoldingsTracker) ApplyGrowth(year int) {
	for _, h := range t.holdings {
		for i := range h.Balance {
			h.Balance[i] += h.Balance[i] * h.PriceGrowth[i][year]
		}
	}
}

// Dividends returns this year's dividend income per path, split by tax
// category. Roth dividends reduce spending need but are never taxed.
func (t *HoldingsTracker) Dividends(year int) DividendIncome {
	d := DividendIncome{
		Traditional: make([]float64, t.paths),
		Roth:        make([]float64, t.paths),
		Taxable:     make([]float64, t.paths),
	}
	for _, h := range t.holdings {
		var dst []float64
		switch h.AccountType.Category() {
		case domain.CategoryTraditional:
			dst = d.Traditional
		case domain.CategoryRoth:
			dst = d.Roth
		default:
			dst = d.Taxable
		}
		for i := range h.Balance {
			dst[i] += h.Balance[i] * h.DivYields[i][year]
		}
	}
	return d
}

// categoryOrder is the discretionary withdrawal sequence per strategy.
func categoryOrder(s domain.WithdrawalStrategy) []domain.TaxCategory {
	switch s {
	case domain.TraditionalFirst:
		return []domain.TaxCategory{domain.CategoryTraditional, domain.CategoryTaxable, domain.CategoryRoth}
	case domain.RothFirst:
		return []domain.TaxCategory{domain.CategoryRoth, domain.CategoryTaxable, domain.CategoryTraditional}
	default:
		return []domain.TaxCategory{domain.CategoryTaxable, domain.CategoryTraditional, domain.CategoryRoth}
	}
}

// Withdraw pulls the requested per-path amount out of the portfolio.
// RMDs come out of traditional accounts first regardless of strategy;
// any excess RMD counts toward the need. The remainder follows the
// configured ordering, or pro-rata across categories. Total reports what
// was actually extracted, which falls short when the portfolio cannot
// cover the need.
func (t *HoldingsTracker) Withdraw(amount []float64, age int) WithdrawalResult {
	res := WithdrawalResult{
		TraditionalRMD: make([]float64, t.paths),
		Traditional:    make([]float64, t.paths),
		Roth:           make([]float64, t.paths),
		Taxable:        make([]float64, t.paths),
		Total:          make([]float64, t.paths),
	}

	remaining := make([]float64, t.paths)
	copy(remaining, amount)

	// Mandatory RMD phase.
	tradBalance := t.CategoryBalance(domain.CategoryTraditional)
	rmd := RMDBatch(tradBalance, age)
	for i := range rmd {
		if rmd[i] > tradBalance[i] {
			rmd[i] = tradBalance[i]
		}
	}
	t.withdrawFromCategory(domain.CategoryTraditional, rmd)
	copy(res.TraditionalRMD, rmd)
	for i := range remaining {
		remaining[i] -= rmd[i]
		if remaining[i] < 0 {
			remaining[i] = 0
		}
	}

	if t.strategy == domain.ProRata {
		total := t.TotalBalance()
		for _, cat := range categoryOrder(domain.TaxableFirst) {
			catBalance := t.CategoryBalance(cat)
			w := make([]float64, t.paths)
			for i := range w {
				if total[i] <= 0 {
					continue
				}
				w[i] = remaining[i] * catBalance[i] / total[i]
				if w[i] > catBalance[i] {
					w[i] = catBalance[i]
				}
			}
			t.withdrawFromCategory(cat, w)
			res.add(cat, w)
			for i := range remaining {
				remaining[i] -= w[i]
				if remaining[i] < 0 {
					remaining[i] = 0
				}
			}
		}
	} else {
		for _, cat := range categoryOrder(t.strategy) {
			catBalance := t.CategoryBalance(cat)
			w := make([]float64, t.paths)
			for i := range w {
				w[i] = remaining[i]
				if w[i] > catBalance[i] {
					w[i] = catBalance[i]
				}
			}
			t.withdrawFromCategory(cat, w)
			res.add(cat, w)
			for i := range remaining {
				remaining[i] -= w[i]
				if remaining[i] < 0 {
					remaining[i] = 0
				}
			}
		}
	}

	for i := range res.Total {
		res.Total[i] = amount[i] - remaining[i]
	}
	return res
}

func (r *WithdrawalResult) add(cat domain.TaxCategory, w []float64) {
	var dst []float64
	switch cat {
	case domain.CategoryTraditional:
		dst = r.Traditional
	case domain.CategoryRoth:
		dst = r.Roth
	default:
		dst = r.Taxable
	}
	for i, v := range w {
		dst[i] += v
	}
}

// withdrawFromCategory removes amount pro-rata across the holdings within
// a category, clamping balances at zero.
func (t *HoldingsTracker) withdrawFromCategory(cat domain.TaxCategory, amount []float64) {
	var catHoldings []*HoldingState
	for _, h := range t.holdings {
		if h.AccountType.Category() == cat {
			catHoldings = append(catHoldings, h)
		}
	}
	if len(catHoldings) == 0 {
		return
	}

	catTotal := make([]float64, t.paths)
	for _, h := range catHoldings {
		for i, b := range h.Balance {
			catTotal[i] += b
		}
	}

	for _, h := range catHoldings {
		for i := range h.Balance {
			if catTotal[i] <= 0 {
				continue
			}
			h.Balance[i] -= amount[i] * h.Balance[i] / catTotal[i]
			if h.Balance[i] < 0 {
				h.Balance[i] = 0
			}
		}
	}
}
