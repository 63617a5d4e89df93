package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Settings are process-level knobs loaded from the environment, with an
// optional .env file for local development.
type Settings struct {
	// TaxServiceURL, when set, routes tax batches to the external
	// service instead of the built-in estimator.
	TaxServiceURL string
	// StorePath is the SQLite database for saved simulations.
	StorePath string
	// DefaultNumPaths overrides the built-in simulation path count.
	DefaultNumPaths int
	// Debug enables verbose logging.
	Debug bool
}

// LoadSettings reads settings from the environment. A missing .env file
// is not an error.
func LoadSettings() Settings {
	_ = godotenv.Load()

	s := Settings{
		TaxServiceURL:   os.Getenv("FINSIM_TAX_SERVICE_URL"),
		StorePath:       os.Getenv("FINSIM_STORE_PATH"),
		DefaultNumPaths: DefaultNumPaths,
	}
	if s.StorePath == "" {
		s.StorePath = "finsim.db"
	}
	if v := os.Getenv("FINSIM_DEFAULT_SIMULATIONS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			s.DefaultNumPaths = n
		}
	}
	if v := os.Getenv("FINSIM_DEBUG"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			s.Debug = b
		}
	}
	return s
}
