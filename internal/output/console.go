package output

import (
	"bytes"
	"fmt"

	"github.com/finsim/retirement-simulator/internal/domain"
)

// ConsoleFormatter renders a human-readable simulation report.
type ConsoleFormatter struct {
	// Verbose adds the year-by-year median breakdown table.
	Verbose bool
}

func (c ConsoleFormatter) Name() string { return "console" }

func (c ConsoleFormatter) Format(result *domain.SimulationResult) ([]byte, error) {
	var buf bytes.Buffer
	fmt.Fprintln(&buf, "RETIREMENT SIMULATION SUMMARY")
	fmt.Fprintln(&buf, "================================")
	fmt.Fprintf(&buf, "Success Rate:            %s\n", FormatPercent(result.SuccessRate))
	fmt.Fprintf(&buf, "Median Final Value:      %s\n", FormatCurrency(result.MedianFinalValue))
	fmt.Fprintf(&buf, "Mean Final Value:        %s\n", FormatCurrency(result.MeanFinalValue))
	fmt.Fprintf(&buf, "Initial Withdrawal Rate: %.2f%%\n", result.InitialWithdrawalRate)
	fmt.Fprintf(&buf, "10-Year Failure Prob:    %s\n", FormatPercent(result.Prob10YearFailure))
	if result.MedianDepletionAge != nil {
		fmt.Fprintf(&buf, "Median Depletion Age:    %d\n", *result.MedianDepletionAge)
	}
	fmt.Fprintf(&buf, "Median Total Withdrawn:  %s\n", FormatCurrency(result.TotalWithdrawnMedian))
	fmt.Fprintf(&buf, "Median Total Taxes:      %s\n", FormatCurrency(result.TotalTaxesMedian))

	fmt.Fprintln(&buf)
	fmt.Fprintln(&buf, "Final Value Percentiles")
	fmt.Fprintf(&buf, "  p5:  %s\n", FormatCurrency(result.Percentiles.P5))
	fmt.Fprintf(&buf, "  p25: %s\n", FormatCurrency(result.Percentiles.P25))
	fmt.Fprintf(&buf, "  p50: %s\n", FormatCurrency(result.Percentiles.P50))
	fmt.Fprintf(&buf, "  p75: %s\n", FormatCurrency(result.Percentiles.P75))
	fmt.Fprintf(&buf, "  p95: %s\n", FormatCurrency(result.Percentiles.P95))

	if c.Verbose && len(result.YearBreakdown) > 0 {
		fmt.Fprintln(&buf)
		fmt.Fprintln(&buf, "Year-by-Year Medians")
		fmt.Fprintf(&buf, "%-4s %-14s %-14s %-12s %-12s %-10s\n",
			"Age", "Start", "End", "Withdrawal", "Taxes", "EffRate")
		for _, y := range result.YearBreakdown {
			fmt.Fprintf(&buf, "%-4d %-14s %-14s %-12s %-12s %-10s\n",
				y.Age,
				FormatCurrency(y.PortfolioStart),
				FormatCurrency(y.PortfolioEnd),
				FormatCurrency(y.Withdrawal),
				FormatCurrency(y.TotalTax),
				FormatPercent(y.EffectiveTaxRate),
			)
		}
	}
	return buf.Bytes(), nil
}

// FormatAnnuityComparison renders an annuity comparison block for the
// console.
func FormatAnnuityComparison(cmp *domain.AnnuityComparisonResult) []byte {
	var buf bytes.Buffer
	fmt.Fprintln(&buf, "ANNUITY COMPARISON")
	fmt.Fprintln(&buf, "================================")
	fmt.Fprintf(&buf, "Guaranteed Annuity Total:  %s\n", FormatCurrency(cmp.AnnuityTotalGuaranteed))
	fmt.Fprintf(&buf, "Simulation Median Income:  %s\n", FormatCurrency(cmp.SimulationMedianTotalIncome))
	fmt.Fprintf(&buf, "Prob. Simulation Wins:     %s\n", FormatPercent(cmp.ProbabilityBeatsAnnuity))
	fmt.Fprintln(&buf)
	fmt.Fprintln(&buf, cmp.Recommendation)
	return buf.Bytes()
}
