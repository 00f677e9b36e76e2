// Package analysis wires the planning pipeline end to end and scores
// competing strategies against one scenario.
package analysis

import (
	"fmt"
	"math"
	"sort"

	"go.uber.org/zap"

	"github.com/H2K2U/WEC4SO/internal/model"
	"github.com/H2K2U/WEC4SO/internal/regime"
	"github.com/H2K2U/WEC4SO/internal/sim"
	"github.com/H2K2U/WEC4SO/internal/strategy"
)

// PlanScore is a strategy-level summary you can rank on: reliability
// first (total deficit), output second (total energy).
type PlanScore struct {
	Strategy string

	TotalDeficitMW      float64
	MaxMonthlyDeficitMW float64
	TotalEnergyMWh      float64

	// ClosureError is |ΣΔV| (km³): how far the plan is from returning
	// the reservoir to its starting volume.
	ClosureError float64
}

// RunScenario is the one-call pipeline: classify and rotate the year,
// compute the plan with the given optimizer, and replay it. The returned
// series and modes are the rotated ones the report is aligned with.
func RunScenario(geom model.Geometry, levels model.StaticLevels, series model.HydrologicalSeries, opt strategy.Optimizer, log *zap.Logger) (*sim.Result, model.HydrologicalSeries, []model.OperationMode, error) {
	sel, err := regime.NewSelector(geom, levels, nil, log)
	if err != nil {
		return nil, model.HydrologicalSeries{}, nil, err
	}
	rotated, modes := sel.Rotated(series)

	plan, err := opt.ComputeDV(geom, levels, rotated, modes)
	if err != nil {
		return nil, model.HydrologicalSeries{}, nil, fmt.Errorf("strategy %s: %w", opt.Name(), err)
	}

	simulator, err := sim.New(geom, levels, rotated, modes, nil, log)
	if err != nil {
		return nil, model.HydrologicalSeries{}, nil, err
	}
	res, err := simulator.Run(plan)
	if err != nil {
		return nil, model.HydrologicalSeries{}, nil, err
	}
	return res, rotated, modes, nil
}

// ScorePlan condenses a simulation result into a rankable summary.
func ScorePlan(name string, plan []float64, res *sim.Result) PlanScore {
	s := PlanScore{
		Strategy:       name,
		TotalDeficitMW: res.TotalDeficitMW,
		TotalEnergyMWh: res.TotalEnergyMWh,
	}
	for _, r := range res.Report {
		if d := r.GuaranteedMW - r.GeneratedMW; d > s.MaxMonthlyDeficitMW {
			s.MaxMonthlyDeficitMW = d
		}
	}
	sum := 0.0
	for _, dv := range plan {
		sum += dv
	}
	s.ClosureError = math.Abs(sum)
	return s
}

// RankStrategies runs every named strategy over the same scenario and
// sorts the scores by total deficit ascending, then total energy
// descending. A strategy that fails to produce a plan fails the whole
// comparison; partial rankings would be misleading.
func RankStrategies(geom model.Geometry, levels model.StaticLevels, series model.HydrologicalSeries, names []string, params map[string]map[string]any, log *zap.Logger) ([]PlanScore, error) {
	sel, err := regime.NewSelector(geom, levels, nil, log)
	if err != nil {
		return nil, err
	}
	rotated, modes := sel.Rotated(series)

	simulator, err := sim.New(geom, levels, rotated, modes, nil, log)
	if err != nil {
		return nil, err
	}

	out := make([]PlanScore, 0, len(names))
	for _, name := range names {
		opt, err := strategy.New(name, params[name])
		if err != nil {
			return nil, err
		}
		plan, err := opt.ComputeDV(geom, levels, rotated, modes)
		if err != nil {
			return nil, fmt.Errorf("strategy %s: %w", name, err)
		}
		res, err := simulator.Run(plan)
		if err != nil {
			return nil, fmt.Errorf("strategy %s: %w", name, err)
		}
		out = append(out, ScorePlan(name, plan, res))
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].TotalDeficitMW != out[j].TotalDeficitMW {
			return out[i].TotalDeficitMW < out[j].TotalDeficitMW
		}
		return out[i].TotalEnergyMWh > out[j].TotalEnergyMWh
	})
	return out, nil
}
