// Package marketdata holds historical nominal return series and the
// samplers that turn them into simulated return matrices.
//
// Returns are nominal, split into a price component (capital gains) and a
// dividend/coupon component (income), because the two are taxed differently.
// Sources: slickcharts.com (S&P 500), NYU Stern Damodaran dataset (10-year
// Treasury), lazyportfolioetf.com and Vanguard (VT), Yahoo Finance (BND).
package marketdata

import (
	"fmt"

	"gonum.org/v1/gonum/stat"

	"github.com/finsim/retirement-simulator/internal/domain"
)

// S&P 500 price returns, 1928-2024.
var sp500Price = []float64{
	0.3788, -0.1191, -0.2848, -0.4707, -0.1478, 0.4408, -0.0471, 0.4137, 0.2792, -0.3859,
	0.2455, -0.0518, -0.1509, -0.1786, 0.1243, 0.1945, 0.1380, 0.3072, -0.1187, 0.0000,
	-0.0065, 0.1046, 0.2168, 0.1635, 0.1178, -0.0662, 0.4502, 0.2640, 0.0262, -0.1431,
	0.3806, 0.0848, -0.0297, 0.2313, -0.1181, 0.1889, 0.1297, 0.0906, -0.1309, 0.2009,
	0.0766, -0.1136, 0.0010, 0.1079, 0.1563, -0.1737, -0.2972, 0.3155, 0.1915, -0.1150,
	0.0106, 0.1231, 0.2577, -0.0973, 0.1476, 0.1727, 0.0140, 0.2633, 0.1462, 0.0203,
	0.1240, 0.2725, -0.0656, 0.2631, 0.0446, 0.0706, -0.0154, 0.3411, 0.2026, 0.3101,
	0.2667, 0.1953, -0.1014, -0.1304, -0.2337, 0.2638, 0.0899, 0.0300, 0.1362, 0.0353,
	-0.3849, 0.2345, 0.1278, 0.0000, 0.1341, 0.2960, 0.1139, -0.0073, 0.0954, 0.1942,
	-0.0624, 0.2888, 0.1626, 0.2689, -0.1944, 0.2423, 0.2331,
}

// S&P 500 dividend returns, 1928-2024.
var sp500Dividend = []float64{
	0.0573, 0.0349, 0.0358, 0.0373, 0.0659, 0.0991, 0.0327, 0.0630, 0.0600, 0.0356,
	0.0657, 0.0477, 0.0531, 0.0627, 0.0791, 0.0645, 0.0595, 0.0572, 0.0380, 0.0571,
	0.0615, 0.0833, 0.1003, 0.0767, 0.0659, 0.0563, 0.0760, 0.0516, 0.0394, 0.0353,
	0.0530, 0.0348, 0.0344, 0.0376, 0.0308, 0.0391, 0.0351, 0.0339, 0.0303, 0.0389,
	0.0340, 0.0286, 0.0391, 0.0352, 0.0335, 0.0271, 0.0325, 0.0565, 0.0469, 0.0432,
	0.0550, 0.0613, 0.0665, 0.0482, 0.0679, 0.0529, 0.0487, 0.0540, 0.0405, 0.0322,
	0.0421, 0.0444, 0.0346, 0.0416, 0.0316, 0.0302, 0.0286, 0.0347, 0.0270, 0.0235,
	0.0191, 0.0151, 0.0104, 0.0115, 0.0127, 0.0230, 0.0189, 0.0191, 0.0217, 0.0196,
	0.0149, 0.0301, 0.0228, 0.0211, 0.0259, 0.0279, 0.0230, 0.0211, 0.0242, 0.0241,
	0.0186, 0.0261, 0.0214, 0.0182, 0.0133, 0.0206, 0.0171,
}

// 10-year Treasury total returns, 1928-2024. Treated as the price series;
// coupon income is carried separately in treasuryYield.
var treasuryPrice = []float64{
	0.0084, 0.0342, 0.0466, -0.0531, 0.1682, -0.0007, 0.1002, 0.0498, 0.0751, 0.0023,
	0.0553, 0.0594, 0.0609, 0.0093, 0.0322, 0.0208, 0.0281, 0.1073, -0.0010, -0.0262,
	0.0340, 0.0645, 0.0006, -0.0394, 0.0116, 0.0363, 0.0719, -0.0129, -0.0559, 0.0745,
	-0.0609, -0.0226, 0.1378, 0.0097, 0.0689, 0.0121, 0.0351, 0.0071, 0.0365, -0.0919,
	-0.0026, -0.0508, 0.1210, 0.1324, 0.0568, -0.0111, 0.0435, 0.0919, 0.1675, -0.0067,
	-0.0116, -0.0122, -0.0395, 0.0185, 0.4036, 0.0065, 0.1543, 0.3097, 0.2453, -0.0274,
	0.0967, 0.1803, 0.0621, 0.1930, 0.0806, 0.1821, -0.0776, 0.2352, 0.0014, 0.0999,
	0.1476, -0.0825, 0.1666, 0.0535, 0.1522, 0.0138, 0.0449, 0.0287, 0.0196, 0.1000,
	0.2010, -0.1112, 0.0841, 0.1604, 0.0297, -0.0778, 0.1075, 0.0155, 0.0069, 0.0275,
	-0.0002, 0.0892, 0.1126, -0.0439, -0.1747, 0.0396, 0.0053,
}

// 10-year Treasury coupon yields, 1928-2024.
var treasuryYield = []float64{
	0.0340, 0.0360, 0.0329, 0.0393, 0.0368, 0.0331, 0.0312, 0.0279, 0.0265, 0.0268,
	0.0256, 0.0236, 0.0221, 0.0195, 0.0246, 0.0247, 0.0248, 0.0237, 0.0219, 0.0225,
	0.0244, 0.0231, 0.0232, 0.0257, 0.0268, 0.0294, 0.0290, 0.0284, 0.0296, 0.0346,
	0.0379, 0.0402, 0.0469, 0.0438, 0.0453, 0.0400, 0.0415, 0.0413, 0.0461, 0.0451,
	0.0549, 0.0610, 0.0791, 0.0674, 0.0595, 0.0630, 0.0699, 0.0799, 0.0787, 0.0742,
	0.0796, 0.0925, 0.1080, 0.1384, 0.1457, 0.1146, 0.1192, 0.1162, 0.0964, 0.0783,
	0.0867, 0.0884, 0.0855, 0.0886, 0.0770, 0.0687, 0.0609, 0.0757, 0.0644, 0.0635,
	0.0626, 0.0544, 0.0603, 0.0516, 0.0504, 0.0401, 0.0427, 0.0422, 0.0479, 0.0463,
	0.0366, 0.0326, 0.0322, 0.0278, 0.0180, 0.0235, 0.0254, 0.0214, 0.0184, 0.0233,
	0.0291, 0.0214, 0.0089, 0.0152, 0.0295, 0.0396, 0.0428,
}

// VT total returns and dividend yields, 2008-2024.
var vtTotal = []float64{
	-0.4231, 0.3265, 0.1308, -0.0750, 0.1712, 0.2295, 0.0367, -0.0186, 0.0851, 0.2449,
	-0.0976, 0.2682, 0.1661, 0.1827, -0.1801, 0.2203, 0.1649,
}

var vtDividend = []float64{
	0.0280, 0.0240, 0.0210, 0.0230, 0.0250, 0.0220, 0.0230, 0.0250, 0.0240, 0.0210,
	0.0220, 0.0200, 0.0180, 0.0160, 0.0190, 0.0180, 0.0195,
}

// BND total returns and dividend yields, 2008-2024.
var bndTotal = []float64{
	0.0686, 0.0363, 0.0620, 0.0792, 0.0389, -0.0210, 0.0582, 0.0056, 0.0253, 0.0357,
	-0.0011, 0.0884, 0.0771, -0.0186, -0.1311, 0.0566, 0.0138,
}

var bndDividend = []float64{
	0.0450, 0.0380, 0.0350, 0.0320, 0.0280, 0.0260, 0.0250, 0.0240, 0.0250, 0.0260,
	0.0290, 0.0280, 0.0220, 0.0180, 0.0250, 0.0340, 0.0386,
}

// Series is one asset's aligned price-return and dividend-yield history.
type Series struct {
	Price    []float64
	Dividend []float64
}

// Len is the number of historical years in the series.
func (s Series) Len() int { return len(s.Price) }

// Provider exposes the embedded historical series. It is immutable after
// construction; share one instance across simulations.
type Provider struct {
	series map[domain.Fund]Series
}

// NewProvider builds the default provider over the embedded series.
func NewProvider() *Provider {
	// VT/BND publish total returns; back out the price component so the
	// dividend part can be taxed as income.
	vtPrice := make([]float64, len(vtTotal))
	bndPrice := make([]float64, len(bndTotal))
	for i := range vtTotal {
		vtPrice[i] = vtTotal[i] - vtDividend[i]
	}
	for i := range bndTotal {
		bndPrice[i] = bndTotal[i] - bndDividend[i]
	}
	return &Provider{series: map[domain.Fund]Series{
		domain.FundSP500:    {Price: sp500Price, Dividend: sp500Dividend},
		domain.FundTreasury: {Price: treasuryPrice, Dividend: treasuryYield},
		domain.FundVT:       {Price: vtPrice, Dividend: vtDividend},
		domain.FundBND:      {Price: bndPrice, Dividend: bndDividend},
	}}
}

// Series returns the history for a fund.
func (p *Provider) Series(fund domain.Fund) (Series, error) {
	s, ok := p.series[fund]
	if !ok {
		return Series{}, fmt.Errorf("no return series for fund %q", fund)
	}
	return s, nil
}

// Aligned returns the stock and bond series trimmed to their common most
// recent span, so mixed-era pairs (e.g. S&P 500 with BND) sample the same
// calendar years.
func (p *Provider) Aligned(stock, bond domain.Fund) (Series, Series, error) {
	s, err := p.Series(stock)
	if err != nil {
		return Series{}, Series{}, err
	}
	b, err := p.Series(bond)
	if err != nil {
		return Series{}, Series{}, err
	}
	n := s.Len()
	if b.Len() < n {
		n = b.Len()
	}
	return tail(s, n), tail(b, n), nil
}

func tail(s Series, n int) Series {
	return Series{
		Price:    s.Price[len(s.Price)-n:],
		Dividend: s.Dividend[len(s.Dividend)-n:],
	}
}

// FundStats summarizes one fund's total-return history.
type FundStats struct {
	PriceMean    float64 `json:"price_mean"`
	DividendMean float64 `json:"dividend_mean"`
	TotalMean    float64 `json:"total_mean"`
	TotalStdDev  float64 `json:"total_std"`
	TotalMin     float64 `json:"total_min"`
	TotalMax     float64 `json:"total_max"`
	Years        int     `json:"n_years"`
}

// Stats computes summary statistics for a fund's total returns.
func (p *Provider) Stats(fund domain.Fund) (FundStats, error) {
	s, err := p.Series(fund)
	if err != nil {
		return FundStats{}, err
	}
	total := make([]float64, s.Len())
	for i := range total {
		total[i] = s.Price[i] + s.Dividend[i]
	}
	min, max := total[0], total[0]
	for _, v := range total {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return FundStats{
		PriceMean:    stat.Mean(s.Price, nil),
		DividendMean: stat.Mean(s.Dividend, nil),
		TotalMean:    stat.Mean(total, nil),
		TotalStdDev:  stat.PopStdDev(total, nil),
		TotalMin:     min,
		TotalMax:     max,
		Years:        s.Len(),
	}, nil
}
