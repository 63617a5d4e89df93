package marketdata

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat"

	"github.com/finsim/retirement-simulator/internal/domain"
)

func testRNG() *rand.Rand { return rand.New(rand.NewSource(42)) }

// containsPair reports whether (p0, d0) followed by (p1, d1) occurs as a
// consecutive pair somewhere in the series.
func containsPair(s Series, p0, d0, p1, d1 float64) bool {
	for j := 0; j+1 < s.Len(); j++ {
		if s.Price[j] == p0 && s.Dividend[j] == d0 &&
			s.Price[j+1] == p1 && s.Dividend[j+1] == d1 {
			return true
		}
	}
	return false
}

func TestGenerateShapes(t *testing.T) {
	p := NewProvider()

	for _, model := range []domain.ReturnModel{
		domain.Bootstrap, domain.BlockBootstrap, domain.Historical, domain.Normal,
	} {
		price, div, err := p.Generate(25, 30, model, Options{}, testRNG())
		require.NoError(t, err, "model %s", model)
		require.Len(t, price, 25)
		require.Len(t, div, 25)
		for i := range price {
			assert.Len(t, price[i], 30)
			assert.Len(t, div[i], 30)
		}
	}
}

func TestGenerateUnknownModel(t *testing.T) {
	p := NewProvider()
	_, _, err := p.Generate(5, 5, domain.ReturnModel("garch"), Options{}, testRNG())
	assert.Error(t, err)
}

func TestBootstrapDrawsFromHistory(t *testing.T) {
	p := NewProvider()
	s, err := p.Series(domain.FundSP500)
	require.NoError(t, err)

	inHistory := make(map[float64]bool, s.Len())
	for _, v := range s.Price {
		inHistory[v] = true
	}

	price, _, err := p.Generate(20, 40, domain.Bootstrap, Options{}, testRNG())
	require.NoError(t, err)
	for i := range price {
		for _, v := range price[i] {
			assert.True(t, inHistory[v])
		}
	}
}

func TestBlockBootstrapKeepsBlocksContiguous(t *testing.T) {
	p := NewProvider()
	s, err := p.Series(domain.FundSP500)
	require.NoError(t, err)

	years := 20
	price, div, err := p.Generate(10, years, domain.BlockBootstrap, Options{}, testRNG())
	require.NoError(t, err)

	for i := range price {
		for y := 0; y+1 < years; y++ {
			if (y+1)%DefaultBlockSize == 0 {
				continue // block boundary, no contiguity expected
			}
			assert.True(t,
				containsPair(s, price[i][y], div[i][y], price[i][y+1], div[i][y+1]),
				"path %d year %d is not a historical pair", i, y)
		}
	}
}

func TestBlockBootstrapRejectsOversizedBlock(t *testing.T) {
	p := NewProvider()
	_, _, err := p.Generate(2, 5, domain.BlockBootstrap, Options{BlockSize: 200}, testRNG())
	assert.Error(t, err)
}

func TestHistoricalWalksForwardWithWrap(t *testing.T) {
	p := NewProvider()
	s, err := p.Series(domain.FundSP500)
	require.NoError(t, err)

	years := 120 // longer than the 97-year history to force wrapping
	price, div, err := p.Generate(8, years, domain.Historical, Options{}, testRNG())
	require.NoError(t, err)

	n := s.Len()
	for i := range price {
		matched := false
		for start := 0; start < n && !matched; start++ {
			ok := true
			for y := 0; y < years; y++ {
				idx := (start + y) % n
				if price[i][y] != s.Price[idx] || div[i][y] != s.Dividend[idx] {
					ok = false
					break
				}
			}
			matched = ok
		}
		assert.True(t, matched, "path %d does not replay history from any start year", i)
	}
}

func TestNormalUsesConstantDividend(t *testing.T) {
	p := NewProvider()
	price, div, err := p.Generate(5, 10, domain.Normal, Options{
		ExpectedReturn: 0.08,
		Volatility:     0.01,
	}, testRNG())
	require.NoError(t, err)

	first := div[0][0]
	for i := range div {
		for y := range div[i] {
			assert.Equal(t, first, div[i][y])
		}
	}
	// Low volatility keeps total returns near the expected value.
	for i := range price {
		for y := range price[i] {
			assert.InDelta(t, 0.08, price[i][y]+div[i][y], 0.06)
		}
	}
}

func TestNormalZeroVolatilityIsConstant(t *testing.T) {
	p := NewProvider()
	price, div, err := p.Generate(4, 8, domain.Normal, Options{
		ExpectedReturn: 0.05,
		Volatility:     0,
	}, testRNG())
	require.NoError(t, err)

	first := price[0][0]
	for i := range price {
		for y := range price[i] {
			assert.Equal(t, first, price[i][y])
			assert.InDelta(t, 0.05, price[i][y]+div[i][y], 1e-12)
		}
	}
}

func TestBlendedAllBondsLessVolatileThanAllStocks(t *testing.T) {
	p := NewProvider()

	totals := func(w float64) []float64 {
		price, div, err := p.GenerateBlended(200, 30, domain.Bootstrap, BlendedOptions{
			StockAllocation: w,
			StockIndex:      domain.FundSP500,
			BondIndex:       domain.FundTreasury,
		}, testRNG())
		require.NoError(t, err)
		out := make([]float64, 0, 200*30)
		for i := range price {
			for y := range price[i] {
				out = append(out, price[i][y]+div[i][y])
			}
		}
		return out
	}

	bondVol := stat.PopStdDev(totals(0.0), nil)
	stockVol := stat.PopStdDev(totals(1.0), nil)
	assert.Less(t, bondVol, stockVol)
}

func TestGenerateBlendedValidatesAllocation(t *testing.T) {
	p := NewProvider()
	opt := BlendedOptions{StockAllocation: 1.2, StockIndex: domain.FundVT, BondIndex: domain.FundBND}
	_, _, err := p.GenerateBlended(3, 5, domain.Bootstrap, opt, testRNG())
	assert.Error(t, err)

	opt.StockAllocation = -0.1
	_, _, err = p.GenerateBlended(3, 5, domain.Bootstrap, opt, testRNG())
	assert.Error(t, err)
}

func TestGenerateBlendedDrawsFromBlendedHistory(t *testing.T) {
	p := NewProvider()
	stock, bond, err := p.Aligned(domain.FundVT, domain.FundBND)
	require.NoError(t, err)

	w := 0.6
	valid := make(map[float64]bool, stock.Len())
	for i := 0; i < stock.Len(); i++ {
		valid[w*stock.Price[i]+(1-w)*bond.Price[i]] = true
	}

	price, _, err := p.GenerateBlended(10, 20, domain.Bootstrap, BlendedOptions{
		StockAllocation: w,
		StockIndex:      domain.FundVT,
		BondIndex:       domain.FundBND,
	}, testRNG())
	require.NoError(t, err)

	for i := range price {
		for _, v := range price[i] {
			assert.True(t, valid[v])
		}
	}
}

func TestGenerateBlendedAllStockMatchesStockHistory(t *testing.T) {
	p := NewProvider()
	stock, _, err := p.Aligned(domain.FundSP500, domain.FundTreasury)
	require.NoError(t, err)

	inHistory := make(map[float64]bool, stock.Len())
	for _, v := range stock.Price {
		inHistory[v] = true
	}

	price, _, err := p.GenerateBlended(5, 15, domain.Bootstrap, BlendedOptions{
		StockAllocation: 1.0,
		StockIndex:      domain.FundSP500,
		BondIndex:       domain.FundTreasury,
	}, testRNG())
	require.NoError(t, err)

	for i := range price {
		for _, v := range price[i] {
			assert.True(t, inHistory[v])
		}
	}
}

func TestGenerateFundCoercesStatisticalModels(t *testing.T) {
	p := NewProvider()
	s, err := p.Series(domain.FundBND)
	require.NoError(t, err)

	inHistory := make(map[float64]bool, s.Len())
	for _, v := range s.Price {
		inHistory[v] = true
	}

	// normal has no per-fund meaning here; it falls back to resampling.
	price, _, err := p.GenerateFund(domain.FundBND, 6, 12, domain.Normal, testRNG())
	require.NoError(t, err)
	for i := range price {
		for _, v := range price[i] {
			assert.True(t, inHistory[v])
		}
	}
}
