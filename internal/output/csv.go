package output

import (
	"bytes"
	"encoding/csv"
	"strconv"

	"github.com/finsim/retirement-simulator/internal/domain"
)

// CSVFormatter emits the year-by-year median breakdown, one row per
// simulated year, for spreadsheet analysis.
type CSVFormatter struct{}

func (c CSVFormatter) Name() string { return "csv" }

func (c CSVFormatter) Format(result *domain.SimulationResult) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	header := []string{"Age", "Year", "PortfolioStart", "PortfolioEnd", "PortfolioReturn", "EmploymentIncome", "SocialSecurity", "Pension", "Dividends", "AnnuityIncome", "TotalIncome", "Withdrawal", "FederalTax", "StateTax", "TotalTax", "EffectiveTaxRate", "NetIncome"}
	if err := w.Write(header); err != nil {
		return nil, err
	}
	for _, y := range result.YearBreakdown {
		row := []string{
			strconv.Itoa(y.Age),
			strconv.Itoa(y.YearIndex),
			amount(y.PortfolioStart),
			amount(y.PortfolioEnd),
			rate(y.PortfolioReturn),
			amount(y.EmploymentIncome),
			amount(y.SocialSecurity),
			amount(y.Pension),
			amount(y.Dividends),
			amount(y.AnnuityIncome),
			amount(y.TotalIncome),
			amount(y.Withdrawal),
			amount(y.FederalTax),
			amount(y.StateTax),
			amount(y.TotalTax),
			rate(y.EffectiveTaxRate),
			amount(y.NetIncome),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

func amount(v float64) string { return strconv.FormatFloat(v, 'f', 2, 64) }
func rate(v float64) string   { return strconv.FormatFloat(v, 'f', 4, 64) }
