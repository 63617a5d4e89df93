// finsim — Monte Carlo retirement portfolio simulator.
//
// Main CLI entrypoint using the cobra command framework.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/finsim/retirement-simulator/internal/config"
	"github.com/finsim/retirement-simulator/internal/output"
	"github.com/finsim/retirement-simulator/internal/simulation"
	"github.com/finsim/retirement-simulator/internal/store"
	"github.com/finsim/retirement-simulator/internal/tax"
)

var (
	settings config.Settings
	logger   zerolog.Logger
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "finsim",
	Short: "Monte Carlo retirement portfolio simulator",
	Long: `finsim simulates retirement portfolio survival over thousands of
market paths: historical bootstrap returns, mortality, Social Security,
pensions, annuities, RMDs, and tax-aware withdrawal ordering across
account types.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		settings = config.LoadSettings()
		level := zerolog.InfoLevel
		if settings.Debug {
			level = zerolog.DebugLevel
		}
		quiet, _ := cmd.Flags().GetBool("quiet")
		if quiet {
			level = zerolog.ErrorLevel
		}
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
			Level(level).
			With().Timestamp().Logger()
	},
}

func init() {
	rootCmd.PersistentFlags().Bool("quiet", false, "suppress log output")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(compareAnnuityCmd)
	rootCmd.AddCommand(savedCmd)
	rootCmd.AddCommand(exampleConfigCmd)
}

// taxService picks the external client when a URL is configured,
// otherwise the built-in estimator.
func taxService() tax.Service {
	if settings.TaxServiceURL != "" {
		return tax.NewClient(settings.TaxServiceURL, tax.WithClientLogger(logger))
	}
	return tax.NewEstimator()
}

// inputParser applies the environment's default path count to files
// that omit n_simulations.
func inputParser() *config.InputParser {
	return config.NewInputParser().WithDefaultPaths(settings.DefaultNumPaths)
}

func buildSimulator(paramsFile string, progress bool) (*simulation.Simulator, simulation.ProgressFunc, error) {
	params, err := inputParser().LoadFromFile(paramsFile)
	if err != nil {
		return nil, nil, err
	}

	sim, err := simulation.NewSimulator(params,
		simulation.WithLogger(logger),
		simulation.WithTaxService(taxService()),
	)
	if err != nil {
		return nil, nil, err
	}

	var sink simulation.ProgressFunc
	if progress {
		sink = func(year, totalYears int) {
			fmt.Fprintf(os.Stderr, "\rsimulating year %d/%d", year, totalYears)
			if year == totalYears {
				fmt.Fprintln(os.Stderr)
			}
		}
	}
	return sim, sink, nil
}

// --- Run Command ---

var runCmd = &cobra.Command{
	Use:   "run [params.yaml]",
	Short: "Run a simulation from a parameter file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		verbose, _ := cmd.Flags().GetBool("breakdown")
		progress, _ := cmd.Flags().GetBool("progress")

		var formatter output.Formatter
		switch format {
		case "console":
			formatter = output.ConsoleFormatter{Verbose: verbose}
		case "json":
			formatter = output.JSONFormatter{}
		case "csv":
			formatter = output.CSVFormatter{}
		default:
			return fmt.Errorf("unknown output format %q (want console, json, or csv)", format)
		}

		sim, sink, err := buildSimulator(args[0], progress)
		if err != nil {
			return err
		}

		result, err := sim.RunWithProgress(cmd.Context(), sink)
		if err != nil {
			return err
		}

		data, err := formatter.Format(result)
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	},
}

func init() {
	runCmd.Flags().String("format", "console", "output format: console, json, or csv")
	runCmd.Flags().Bool("breakdown", false, "include the year-by-year median table")
	runCmd.Flags().Bool("progress", false, "report per-year progress on stderr")
}

// --- Compare Annuity Command ---

var compareAnnuityCmd = &cobra.Command{
	Use:   "compare-annuity [params.yaml]",
	Short: "Compare a simulation against a guaranteed annuity",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		monthly, _ := cmd.Flags().GetFloat64("monthly-payment")
		years, _ := cmd.Flags().GetInt("guarantee-years")
		if monthly <= 0 {
			return fmt.Errorf("--monthly-payment must be positive")
		}
		if years < 1 || years > 40 {
			return fmt.Errorf("--guarantee-years must be between 1 and 40")
		}

		sim, _, err := buildSimulator(args[0], false)
		if err != nil {
			return err
		}
		result, err := sim.Run(cmd.Context())
		if err != nil {
			return err
		}

		cmp := sim.CompareToAnnuity(result, monthly, years)
		fmt.Print(string(output.FormatAnnuityComparison(cmp)))
		return nil
	},
}

func init() {
	compareAnnuityCmd.Flags().Float64("monthly-payment", 0, "monthly annuity payment to compare against")
	compareAnnuityCmd.Flags().Int("guarantee-years", 20, "annuity guarantee period in years")
	_ = compareAnnuityCmd.MarkFlagRequired("monthly-payment")
}

// --- Saved Simulations ---

var savedCmd = &cobra.Command{
	Use:   "saved",
	Short: "Manage saved simulation configurations",
}

var savedListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved simulations",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := store.Open(settings.StorePath, logger)
		if err != nil {
			return err
		}
		defer st.Close()

		saved, err := st.List(cmd.Context())
		if err != nil {
			return err
		}
		if len(saved) == 0 {
			fmt.Println("no saved simulations")
			return nil
		}
		for _, s := range saved {
			fmt.Printf("%s  %-30s  updated %s\n", s.ID, s.Name, s.UpdatedAt.Format("2006-01-02 15:04"))
		}
		return nil
	},
}

var savedSaveCmd = &cobra.Command{
	Use:   "save [name] [params.yaml]",
	Short: "Save a parameter file under a name",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		params, err := inputParser().LoadFromFile(args[1])
		if err != nil {
			return err
		}
		st, err := store.Open(settings.StorePath, logger)
		if err != nil {
			return err
		}
		defer st.Close()

		saved, err := st.Create(cmd.Context(), args[0], params)
		if err != nil {
			return err
		}
		fmt.Printf("saved %s as %s\n", saved.Name, saved.ID)
		return nil
	},
}

var savedDeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a saved simulation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := store.Open(settings.StorePath, logger)
		if err != nil {
			return err
		}
		defer st.Close()
		return st.Delete(cmd.Context(), args[0])
	},
}

func init() {
	savedCmd.AddCommand(savedListCmd)
	savedCmd.AddCommand(savedSaveCmd)
	savedCmd.AddCommand(savedDeleteCmd)
}

// --- Example Config ---

var exampleConfigCmd = &cobra.Command{
	Use:   "example-config",
	Short: "Print an example parameter file",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Print(exampleConfig)
	},
}

const exampleConfig = `# finsim simulation parameters
current_age: 55
max_age: 95
gender: female
state: CA
filing_status: married_joint
annual_spending: 90000

employment_income: 150000
employment_growth_rate: 0.03
retirement_age: 62
social_security_monthly: 2800
social_security_start_age: 67

spouse:
  age: 57
  gender: male
  social_security_monthly: 2200
  social_security_start_age: 67

holdings:
  - account_type: traditional_401k
    fund: vt
    balance: 650000
  - account_type: roth_ira
    fund: sp500
    balance: 150000
  - account_type: taxable
    fund: bnd
    balance: 200000

withdrawal_strategy: taxable_first
return_model: bootstrap
n_simulations: 10000
include_mortality: true
`
