package marketdata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finsim/retirement-simulator/internal/domain"
)

func TestSeriesLengths(t *testing.T) {
	p := NewProvider()

	sp, err := p.Series(domain.FundSP500)
	require.NoError(t, err)
	assert.Equal(t, 97, sp.Len())
	assert.Len(t, sp.Dividend, 97)

	tr, err := p.Series(domain.FundTreasury)
	require.NoError(t, err)
	assert.Equal(t, 97, tr.Len())

	vt, err := p.Series(domain.FundVT)
	require.NoError(t, err)
	assert.Equal(t, 17, vt.Len())

	bnd, err := p.Series(domain.FundBND)
	require.NoError(t, err)
	assert.Equal(t, 17, bnd.Len())
}

func TestSeriesUnknownFund(t *testing.T) {
	p := NewProvider()
	_, err := p.Series(domain.Fund("vtsax"))
	assert.Error(t, err)
}

func TestTotalReturnFundsSplitOutDividends(t *testing.T) {
	p := NewProvider()

	vt, err := p.Series(domain.FundVT)
	require.NoError(t, err)
	for i := range vtTotal {
		assert.InDelta(t, vtTotal[i], vt.Price[i]+vt.Dividend[i], 1e-12)
	}

	bnd, err := p.Series(domain.FundBND)
	require.NoError(t, err)
	for i := range bndTotal {
		assert.InDelta(t, bndTotal[i], bnd.Price[i]+bnd.Dividend[i], 1e-12)
	}
}

func TestAlignedTrimsToCommonSpan(t *testing.T) {
	p := NewProvider()

	// Same-era pair stays full length.
	s, b, err := p.Aligned(domain.FundSP500, domain.FundTreasury)
	require.NoError(t, err)
	assert.Equal(t, 97, s.Len())
	assert.Equal(t, 97, b.Len())

	// Mixed-era pair trims the long history to the short one's span.
	s, b, err = p.Aligned(domain.FundSP500, domain.FundBND)
	require.NoError(t, err)
	assert.Equal(t, 17, s.Len())
	assert.Equal(t, 17, b.Len())

	// The kept span is the most recent: 2008 onward for the S&P 500.
	assert.InDelta(t, -0.3849, s.Price[0], 1e-12)
	assert.InDelta(t, 0.2331, s.Price[16], 1e-12)
}

func TestStats(t *testing.T) {
	p := NewProvider()

	sp, err := p.Stats(domain.FundSP500)
	require.NoError(t, err)
	assert.Equal(t, 97, sp.Years)
	assert.InDelta(t, sp.PriceMean+sp.DividendMean, sp.TotalMean, 1e-12)
	assert.InDelta(t, -0.4707+0.0373, sp.TotalMin, 1e-12)
	assert.Greater(t, sp.TotalMax, 0.4)

	tr, err := p.Stats(domain.FundTreasury)
	require.NoError(t, err)
	assert.Greater(t, sp.TotalMean, tr.TotalMean)
	assert.Greater(t, sp.TotalStdDev, tr.TotalStdDev)
}
