package marketdata

import (
	"fmt"
	"math/rand"

	"gonum.org/v1/gonum/stat"

	"github.com/finsim/retirement-simulator/internal/domain"
)

// DefaultBlockSize is the block length for block bootstrap sampling.
const DefaultBlockSize = 5

// Defaults for the normal model's bond leg, which parameter files do
// not expose.
const (
	DefaultBondReturn     = 0.04
	DefaultBondVolatility = 0.08
)

// Options control the statistical (normal) generation mode; the values
// are used verbatim, so a zero volatility means constant returns. The
// sampling modes ignore them and draw from history.
type Options struct {
	BlockSize      int
	ExpectedReturn float64
	Volatility     float64
}

// BlendedOptions extend Options with the bond leg and the mix.
type BlendedOptions struct {
	StockAllocation     float64
	StockIndex          domain.Fund
	BondIndex           domain.Fund
	BlockSize           int
	ExpectedStockReturn float64
	StockVolatility     float64
	ExpectedBondReturn  float64
	BondVolatility      float64
}

func newMatrix(paths, years int) [][]float64 {
	m := make([][]float64, paths)
	backing := make([]float64, paths*years)
	for i := range m {
		m[i] = backing[i*years : (i+1)*years]
	}
	return m
}

// Generate produces price-growth and dividend-yield matrices of shape
// (paths, years) for the S&P 500 series using the given model.
func (p *Provider) Generate(paths, years int, model domain.ReturnModel, opt Options, rng *rand.Rand) ([][]float64, [][]float64, error) {
	s, err := p.Series(domain.FundSP500)
	if err != nil {
		return nil, nil, err
	}
	return sample(s, paths, years, model, opt, rng)
}

// GenerateBlended produces blended stock/bond return matrices. Both legs
// draw the same historical year per cell so cross-asset correlation is
// preserved.
func (p *Provider) GenerateBlended(paths, years int, model domain.ReturnModel, opt BlendedOptions, rng *rand.Rand) ([][]float64, [][]float64, error) {
	if opt.StockAllocation < 0 || opt.StockAllocation > 1 {
		return nil, nil, fmt.Errorf("stock allocation must be between 0 and 1, got %v", opt.StockAllocation)
	}
	stock, bond, err := p.Aligned(opt.StockIndex, opt.BondIndex)
	if err != nil {
		return nil, nil, err
	}
	if model == domain.Normal {
		return blendedNormal(stock, bond, paths, years, opt, rng)
	}
	// Pre-blend the aligned histories; sampling a blended year is the same
	// as blending two samples drawn at the same index.
	blended := Series{
		Price:    make([]float64, stock.Len()),
		Dividend: make([]float64, stock.Len()),
	}
	w := opt.StockAllocation
	for i := 0; i < stock.Len(); i++ {
		blended.Price[i] = w*stock.Price[i] + (1-w)*bond.Price[i]
		blended.Dividend[i] = w*stock.Dividend[i] + (1-w)*bond.Dividend[i]
	}
	return sample(blended, paths, years, model, Options{BlockSize: opt.BlockSize}, rng)
}

// GenerateFund produces return matrices for a single fund, used by the
// holdings tracker. Only the sampling models apply per fund; anything else
// falls back to plain bootstrap.
func (p *Provider) GenerateFund(fund domain.Fund, paths, years int, model domain.ReturnModel, rng *rand.Rand) ([][]float64, [][]float64, error) {
	s, err := p.Series(fund)
	if err != nil {
		return nil, nil, err
	}
	if model != domain.BlockBootstrap {
		model = domain.Bootstrap
	}
	return sample(s, paths, years, model, Options{}, rng)
}

func sample(s Series, paths, years int, model domain.ReturnModel, opt Options, rng *rand.Rand) ([][]float64, [][]float64, error) {
	n := s.Len()
	priceOut := newMatrix(paths, years)
	divOut := newMatrix(paths, years)

	switch model {
	case domain.Bootstrap:
		for i := 0; i < paths; i++ {
			for y := 0; y < years; y++ {
				idx := rng.Intn(n)
				priceOut[i][y] = s.Price[idx]
				divOut[i][y] = s.Dividend[idx]
			}
		}

	case domain.BlockBootstrap:
		blockSize := opt.BlockSize
		if blockSize <= 0 {
			blockSize = DefaultBlockSize
		}
		if blockSize > n {
			return nil, nil, fmt.Errorf("block size %d exceeds history length %d", blockSize, n)
		}
		for i := 0; i < paths; i++ {
			for y := 0; y < years; {
				start := rng.Intn(n - blockSize + 1)
				for k := 0; k < blockSize && y < years; k++ {
					priceOut[i][y] = s.Price[start+k]
					divOut[i][y] = s.Dividend[start+k]
					y++
				}
			}
		}

	case domain.Historical:
		// Random entry year per path, then walk forward wrapping around.
		for i := 0; i < paths; i++ {
			start := rng.Intn(n)
			for y := 0; y < years; y++ {
				idx := (start + y) % n
				priceOut[i][y] = s.Price[idx]
				divOut[i][y] = s.Dividend[idx]
			}
		}

	case domain.Normal:
		avgDiv := stat.Mean(s.Dividend, nil)
		for i := 0; i < paths; i++ {
			for y := 0; y < years; y++ {
				priceOut[i][y] = rng.NormFloat64()*opt.Volatility + (opt.ExpectedReturn - avgDiv)
				divOut[i][y] = avgDiv
			}
		}

	default:
		return nil, nil, fmt.Errorf("unknown return model %q", model)
	}

	return priceOut, divOut, nil
}

func blendedNormal(stock, bond Series, paths, years int, opt BlendedOptions, rng *rand.Rand) ([][]float64, [][]float64, error) {
	avgStockDiv := stat.Mean(stock.Dividend, nil)
	avgBondDiv := stat.Mean(bond.Dividend, nil)

	expStock := opt.ExpectedStockReturn
	volStock := opt.StockVolatility
	expBond := opt.ExpectedBondReturn
	volBond := opt.BondVolatility

	w := opt.StockAllocation
	constDiv := w*avgStockDiv + (1-w)*avgBondDiv

	priceOut := newMatrix(paths, years)
	divOut := newMatrix(paths, years)
	for i := 0; i < paths; i++ {
		for y := 0; y < years; y++ {
			sp := rng.NormFloat64()*volStock + (expStock - avgStockDiv)
			bp := rng.NormFloat64()*volBond + (expBond - avgBondDiv)
			priceOut[i][y] = w*sp + (1-w)*bp
			divOut[i][y] = constDiv
		}
	}
	return priceOut, divOut, nil
}
