package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/H2K2U/WEC4SO/internal/analysis"
	"github.com/H2K2U/WEC4SO/internal/config"
	"github.com/H2K2U/WEC4SO/internal/sim"
	"github.com/H2K2U/WEC4SO/internal/strategy"
)

var (
	verbose bool
	logger  *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "wec",
	Short: "Annual operating-regime planner for a hydropower reservoir",
	Long: `wec plans and simulates the annual operating regime of a hydropower
reservoir: it classifies each month as a storage-discharge or
storage-fill period, computes a year-long volume-change plan against a
guaranteed-power contract, and replays the plan through the hydraulic
formulas into a month-by-month report.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := zap.NewProductionConfig()
		if verbose {
			cfg = zap.NewDevelopmentConfig()
			cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = cfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Compute and replay a volume-change plan for one scenario",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfgPath, _ := cmd.Flags().GetString("config")
		outPath, _ := cmd.Flags().GetString("out")
		stratName, _ := cmd.Flags().GetString("strategy")

		cfg, err := config.Load(cfgPath)
		if err != nil {
			return err
		}
		geom, err := cfg.ToGeometry()
		if err != nil {
			return err
		}
		levels, err := cfg.ToLevels()
		if err != nil {
			return err
		}
		series, err := cfg.ToSeries()
		if err != nil {
			return err
		}

		if stratName == "" {
			stratName = cfg.Strategy.Name
		}
		opt, err := strategy.New(stratName, cfg.Strategy.Params)
		if err != nil {
			return err
		}

		res, _, _, err := analysis.RunScenario(geom, levels, series, opt, logger)
		if err != nil {
			return err
		}

		printReport(res)
		fmt.Printf("\nstrategy=%s  energy=%.0f MWh  deficit=%.2f MW  final volume=%.3f km³\n",
			opt.Name(), res.TotalEnergyMWh, res.TotalDeficitMW, res.FinalVolume)

		if outPath != "" {
			if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
				return err
			}
			if err := sim.WriteReportCSV(outPath, res.Report); err != nil {
				return err
			}
			fmt.Printf("Wrote %d rows to %s\n", len(res.Report), outPath)
		}
		return nil
	},
}

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Run every built-in strategy over one scenario and rank the plans",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfgPath, _ := cmd.Flags().GetString("config")

		cfg, err := config.Load(cfgPath)
		if err != nil {
			return err
		}
		geom, err := cfg.ToGeometry()
		if err != nil {
			return err
		}
		levels, err := cfg.ToLevels()
		if err != nil {
			return err
		}
		series, err := cfg.ToSeries()
		if err != nil {
			return err
		}

		names := strategy.Names()
		params := map[string]map[string]any{
			cfg.Strategy.Name: cfg.Strategy.Params,
		}
		scores, err := analysis.RankStrategies(geom, levels, series, names, params, logger)
		if err != nil {
			return err
		}

		fmt.Printf("%-4s %-10s %-14s %-14s %-14s %-12s\n",
			"rank", "strategy", "deficit MW", "worst mo. MW", "energy MWh", "|sum dV| km³")
		for i, s := range scores {
			fmt.Printf("%-4d %-10s %-14.2f %-14.2f %-14.0f %-12.2e\n",
				i+1, s.Strategy, s.TotalDeficitMW, s.MaxMonthlyDeficitMW, s.TotalEnergyMWh, s.ClosureError)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	planCmd.Flags().String("config", "examples/scenario.yaml", "path to the YAML scenario")
	planCmd.Flags().String("out", "", "optional path to write the report CSV")
	planCmd.Flags().String("strategy", "", "override the scenario's strategy name")

	compareCmd.Flags().String("config", "examples/scenario.yaml", "path to the YAML scenario")

	rootCmd.AddCommand(planCmd, compareCmd)
}

func printReport(res *sim.Result) {
	fmt.Printf("%-6s %-10s %9s %9s %8s %9s %9s %8s %8s %8s\n",
		"month", "mode", "Q_dom", "Q_plant", "dV", "V_start", "V_end", "H_net", "N_gar", "N_gen")
	for _, r := range res.Report {
		fmt.Printf("%-6d %-10s %9.1f %9.1f %8.3f %9.3f %9.3f %8.2f %8.1f %8.1f\n",
			r.Month,
			r.Mode.String(),
			r.DomesticInflow,
			r.PlantFlow,
			r.DeltaV,
			r.StartVolume,
			r.EndVolume,
			r.NetHead,
			r.GuaranteedMW,
			r.GeneratedMW,
		)
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
