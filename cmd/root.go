package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	sim "github.com/carrier-sim/carrier-sim/sim"
	"github.com/carrier-sim/carrier-sim/sim/leaderboard"
)

var (
	// CLI flags for scenario setup
	seed          int64  // Seed for scenario environment construction
	logLevel      string // Log verbosity level
	geographyPath string // Shipper geography CSV path
	betasPath     string // Pre-estimated choice coefficients YAML path
	historyPath   string // Round history CSV (imported if present, exported after the round)

	// CLI flags for strategic levers
	dieselShare   float64 // Percent of van fleet running diesel
	electricShare float64 // Percent of van fleet running electric (defaults to 100 - diesel)
	microhub      bool    // Vans feed a CBD microhub; cargo bikes do final mile

	// CLI flags for operational levers
	feeSmall   float64 // Delivery fee per small parcel (AUD)
	feeMedium  float64 // Delivery fee per medium parcel (AUD)
	feeLarge   float64 // Delivery fee per large parcel (AUD)
	nextDayInc float64 // Next-day price uplift vs standard
	sameDayInc float64 // Same-day price uplift vs standard

	// CLI flags for service levers
	offPeak    bool
	signature  bool
	redelivery bool
	tracking   bool
	insurance  bool

	// CLI flags for the leaderboard
	player         string // Player identity for leaderboard submission
	leaderboardDB  string // SQLite leaderboard database path
	leaderboardHzn string // Horizon for per-parcel leaderboard metrics
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "carrier-sim",
	Short: "Deterministic round simulator for the urban parcel-carrier game",
}

// runCmd evaluates one round using parameters from CLI flags
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one carrier round and append it to the history",
	Run: func(cmd *cobra.Command, args []string) {
		// Set up logging
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)

		shippers, recipients, err := LoadBetas(betasPath)
		if err != nil {
			logrus.Fatalf("Could not load choice coefficients: %v", err)
		}
		geo, err := LoadShipperGeography(geographyPath)
		if err != nil {
			logrus.Fatalf("Could not load shipper geography: %v", err)
		}

		env, _, err := sim.NewEnvironment(seed, sim.DefaultEnvironmentConfig(), geo)
		if err != nil {
			logrus.Fatalf("Could not build scenario environment: %v", err)
		}
		logrus.Infof("Scenario ready: %.0f deliveries/day over %d shippers, CDD share %.3f, failed-delivery rate %.3f",
			env.Deliveries, env.ShipperCount, env.CDDShare, env.FailedDeliveryRate)

		history := sim.NewHistory()
		if historyPath != "" {
			if imported, err := importHistory(historyPath); err != nil {
				logrus.Fatalf("Could not import history: %v", err)
			} else if imported != nil {
				history.Merge(imported)
				logrus.Infof("Imported %d previous rounds from %s", len(imported), historyPath)
			}
		}

		if !cmd.Flags().Changed("share-electric") {
			electricShare = 100 - dieselShare
		}

		raw := sim.LeverVector{
			sim.ColNextDayIncrease: nextDayInc,
			sim.ColSameDayIncrease: sameDayInc,
			sim.ColFeeSmall:        feeSmall,
			sim.ColFeeMedium:       feeMedium,
			sim.ColFeeLarge:        feeLarge,
			sim.ColDieselShare:     dieselShare,
			sim.ColElectricShare:   electricShare,
			sim.ColMicrohub:        boolLever(microhub),
			sim.ColOffPeak:         boolLever(offPeak),
			sim.ColSignature:       boolLever(signature),
			sim.ColRedelivery:      boolLever(redelivery),
			sim.ColTracking:        boolLever(tracking),
			sim.ColInsurance:       boolLever(insurance),
		}

		res, err := history.RunRound(raw, env, shippers, recipients)
		if err != nil {
			logrus.Fatalf("Round failed: %v", err)
		}
		printResult(res)

		if historyPath != "" {
			if err := exportHistory(history, historyPath); err != nil {
				logrus.Fatalf("Could not export history: %v", err)
			}
			logrus.Infof("History with %d rounds written to %s", history.Len(), historyPath)
		}

		if player != "" {
			submitToLeaderboard(res)
		}
	},
}

// leaderboardCmd prints the current leaderboard records
var leaderboardCmd = &cobra.Command{
	Use:   "leaderboard",
	Short: "Show per-player best profit and emission records",
	Run: func(cmd *cobra.Command, args []string) {
		store, err := leaderboard.NewSQLiteStore(leaderboardDB)
		if err != nil {
			logrus.Fatalf("Could not open leaderboard: %v", err)
		}
		defer store.Close()

		records, err := store.All()
		if err != nil {
			logrus.Fatalf("Could not read leaderboard: %v", err)
		}
		if len(records) == 0 {
			fmt.Println("Leaderboard is empty.")
			return
		}
		fmt.Println("=== Leaderboard ===")
		for _, rec := range records {
			fmt.Printf("%-20s profit/parcel %10.4f (round %d)   emission/parcel %10.4f (round %d)\n",
				rec.Player, rec.BestProfitPerParcel, rec.BestProfitRound,
				rec.BestEmissionPerParcel, rec.BestEmissionRound)
		}
	},
}

func submitToLeaderboard(res sim.RoundResult) {
	hz, err := parseHorizon(leaderboardHzn)
	if err != nil {
		logrus.Fatalf("Invalid leaderboard horizon: %v", err)
	}
	store, err := leaderboard.NewSQLiteStore(leaderboardDB)
	if err != nil {
		logrus.Fatalf("Could not open leaderboard: %v", err)
	}
	defer store.Close()

	rec, changed, err := leaderboard.Submit(store, player, res, hz)
	if err != nil {
		logrus.Fatalf("Leaderboard submission failed: %v", err)
	}
	if changed {
		logrus.Infof("Leaderboard updated for %s: profit/parcel %.4f (round %d), emission/parcel %.4f (round %d)",
			rec.Player, rec.BestProfitPerParcel, rec.BestProfitRound,
			rec.BestEmissionPerParcel, rec.BestEmissionRound)
	} else {
		logrus.Infof("Round %d did not beat %s's records", res.RoundID, player)
	}
}

func parseHorizon(label string) (sim.Horizon, error) {
	for _, hz := range sim.Horizons {
		if hz.Label() == label {
			return hz, nil
		}
	}
	return 0, fmt.Errorf("unknown horizon %q (want two_months, one_year or five_year)", label)
}

func importHistory(path string) ([]sim.RoundResult, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, nil // first run, nothing to import
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return sim.ImportResults(f)
}

func exportHistory(h *sim.History, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return h.Export(f)
}

// printResult displays the round outcome in daily and horizon-scaled terms.
func printResult(res sim.RoundResult) {
	fmt.Printf("=== Round %d ===\n", res.RoundID)
	fmt.Printf("Shipper acceptance    : %.4f\n", res.ShipperProbability)
	fmt.Printf("Recipient acceptance  : %.4f\n", res.RecipientProbability)
	fmt.Printf("Daily demand          : %.2f parcels\n", res.DailyDemand)
	fmt.Printf("Daily revenue         : %.2f AUD\n", res.DailyRevenue)
	fmt.Printf("Daily cost            : %.2f AUD\n", res.DailyCost)
	fmt.Printf("Daily emission proxy  : %.2f\n", res.DailyEmission)
	fmt.Printf("Daily profit          : %.2f AUD\n", res.DailyProfit)
	for _, hz := range sim.Horizons {
		t := res.AtHorizon(hz)
		fmt.Printf("%-12s profit %14.2f   emission %12.2f   demand %12.0f\n",
			hz.Label(), t.Profit, t.Emission, t.Demand)
	}
}

func boolLever(on bool) float64 {
	if on {
		return 1
	}
	return 0
}

// getEnv returns the environment value for key, or fallback if unset.
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	// .env file can pin data file locations per checkout; flags still win.
	if err := godotenv.Load(); err != nil {
		logrus.Debug("No .env file found (using environment variables)")
	}

	runCmd.Flags().Int64Var(&seed, "seed", 42, "Seed for scenario environment construction")
	runCmd.Flags().StringVar(&logLevel, "log", "info", "Log level (trace, debug, info, warn, error, fatal, panic)")

	// Scenario data files
	runCmd.Flags().StringVar(&geographyPath, "geography", getEnv("SHIPPER_DATA", "shipper_data.csv"), "Shipper geography CSV")
	runCmd.Flags().StringVar(&betasPath, "betas", getEnv("BETAS_FILE", "betas.yaml"), "Choice coefficient tables YAML")
	runCmd.Flags().StringVar(&historyPath, "history", getEnv("HISTORY_FILE", ""), "Round history CSV to import and re-export")

	// Strategic levers
	runCmd.Flags().Float64Var(&dieselShare, "share-diesel", 60, "Percent of van fleet running diesel [0,100]")
	runCmd.Flags().Float64Var(&electricShare, "share-electric", 40, "Percent of van fleet running electric (default 100 - diesel)")
	runCmd.Flags().BoolVar(&microhub, "microhub", false, "Vans feed a CBD microhub; cargo bikes do final mile")

	// Operational levers
	runCmd.Flags().Float64Var(&feeSmall, "fee-small", 7.0, "Delivery fee per small parcel (AUD)")
	runCmd.Flags().Float64Var(&feeMedium, "fee-medium", 10.0, "Delivery fee per medium parcel (AUD)")
	runCmd.Flags().Float64Var(&feeLarge, "fee-large", 18.0, "Delivery fee per large parcel (AUD)")
	runCmd.Flags().Float64Var(&nextDayInc, "next-day-increase", 0.20, "Next-day price uplift vs standard")
	runCmd.Flags().Float64Var(&sameDayInc, "same-day-increase", 0.50, "Same-day price uplift vs standard")

	// Service levers
	runCmd.Flags().BoolVar(&offPeak, "off-peak", false, "Offer off-peak delivery")
	runCmd.Flags().BoolVar(&signature, "signature", false, "Require signature on delivery")
	runCmd.Flags().BoolVar(&redelivery, "redelivery", true, "Offer redelivery after a failed attempt")
	runCmd.Flags().BoolVar(&tracking, "tracking", true, "Offer parcel tracking")
	runCmd.Flags().BoolVar(&insurance, "insurance", false, "Offer parcel insurance")

	// Leaderboard
	runCmd.Flags().StringVar(&player, "player", "", "Player identity for leaderboard submission (empty = skip)")
	runCmd.Flags().StringVar(&leaderboardDB, "leaderboard-db", getEnv("LEADERBOARD_DB", "leaderboard.db"), "SQLite leaderboard database")
	runCmd.Flags().StringVar(&leaderboardHzn, "leaderboard-horizon", "one_year", "Horizon for per-parcel records (two_months, one_year, five_year)")

	leaderboardCmd.Flags().StringVar(&leaderboardDB, "leaderboard-db", getEnv("LEADERBOARD_DB", "leaderboard.db"), "SQLite leaderboard database")

	// Attach subcommands to `root`
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(leaderboardCmd)
}
