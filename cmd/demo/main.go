package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/H2K2U/WEC4SO/internal/analysis"
	"github.com/H2K2U/WEC4SO/internal/model"
	"github.com/H2K2U/WEC4SO/internal/sim"
	"github.com/H2K2U/WEC4SO/internal/strategy"
)

// Demo:
// - Build the reference reservoir dataset in code (no files needed)
// - Classify and rotate the hydrological year
// - Compute a plan with the chosen strategy and replay it
func main() {
	stratName := flag.String("strategy", "greedy", "Strategy name (greedy, dynamic, greywolf)")
	outCSV := flag.String("out", "", "Optional path to write the report CSV")
	flag.Parse()

	geom, err := model.NewGeometry(
		[]float64{87, 89, 91, 93, 95, 97, 99, 101, 103},
		[]float64{0.1, 0.4, 0.9, 2.3, 4.6, 8.8, 14.6, 21, 29.3},
		[]float64{81, 83, 85, 87, 89, 91},
		[]float64{100, 460, 1200, 2250, 3800, 5100},
	)
	if err != nil {
		panic(err)
	}
	levels, err := model.NewStaticLevels(102, 100, 500)
	if err != nil {
		panic(err)
	}
	series, err := model.NewHydrologicalSeries(
		[]int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12},
		[]float64{540, 450, 740, 2850, 3500, 1100, 750, 630, 450, 465, 560, 410},
		[]float64{130, 130, 135, 220, 200, 190, 50, 50, 50, 140, 140, 140},
	)
	if err != nil {
		panic(err)
	}

	// Keep the metaheuristic demo snappy; the defaults are sized for
	// offline planning runs.
	params := map[string]any{}
	if *stratName == "greywolf" {
		params["iterations"] = 1500
	}
	opt, err := strategy.New(*stratName, params)
	if err != nil {
		panic(err)
	}

	res, rotated, modes, err := analysis.RunScenario(geom, levels, series, opt, nil)
	if err != nil {
		panic(err)
	}

	fmt.Printf("Strategy=%s, year rotated to start at month %d\n\n", opt.Name(), rotated.Months[0])
	fmt.Printf("%-6s %-10s %9s %8s %9s %9s %8s %8s\n",
		"month", "mode", "Q_plant", "dV", "V_start", "V_end", "N_gar", "N_gen")
	for i, r := range res.Report {
		fmt.Printf("%-6d %-10s %9.1f %8.3f %9.3f %9.3f %8.1f %8.1f\n",
			r.Month, modes[i].String(), r.PlantFlow, r.DeltaV, r.StartVolume, r.EndVolume,
			r.GuaranteedMW, r.GeneratedMW)
	}
	fmt.Printf("\nTotal energy=%.0f MWh  Total deficit=%.2f MW  Final volume=%.3f km³\n",
		res.TotalEnergyMWh, res.TotalDeficitMW, res.FinalVolume)

	if *outCSV != "" {
		if err := os.MkdirAll(filepath.Dir(*outCSV), 0o755); err != nil {
			panic(err)
		}
		if err := sim.WriteReportCSV(*outCSV, res.Report); err != nil {
			panic(err)
		}
		fmt.Printf("\nWrote CSV: %s\n", *outCSV)
	}
}
