// Package output renders simulation results for the console and for
// machine consumption.
package output

import (
	"github.com/finsim/retirement-simulator/internal/domain"
	"github.com/finsim/retirement-simulator/pkg/money"
)

// Formatter defines a pluggable result formatter that returns a byte slice.
// Implementations should be pure (no side effects besides deterministic formatting).
type Formatter interface {
	Format(result *domain.SimulationResult) ([]byte, error)
	// Name returns a short identifier for logging / debugging.
	Name() string
}

// FormatCurrency renders a float amount as dollars and cents.
func FormatCurrency(v float64) string {
	return money.New(v).Format()
}

// FormatPercent renders a 0-1 fraction as a percentage.
func FormatPercent(v float64) string {
	return money.New(v*100).Round().String() + "%"
}
