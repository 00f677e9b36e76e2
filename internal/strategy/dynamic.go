package strategy

import (
	"fmt"
	"math"

	"github.com/H2K2U/WEC4SO/internal/hydro"
	"github.com/H2K2U/WEC4SO/internal/model"
)

func init() {
	Register("dynamic", func(params map[string]any) (Optimizer, error) {
		d := NewDynamic()
		d.Step = floatParam(params, "step", d.Step)
		if d.Step <= 0 {
			return nil, fmt.Errorf("dynamic step must be > 0, got %g", d.Step)
		}
		return d, nil
	})
}

// Dynamic runs a Bellman search over a uniform discretization of the
// storage volume between the dead-level volume and the NRL volume.
//
// The objective is lexicographic: minimize the cumulative guaranteed-
// capacity deficit first, and among equally reliable plans maximize the
// cumulative energy (tracked as a negated second cost so both parts are
// minimized). Both parts accumulate additively across months, which is
// what makes the recursion correct.
//
// Runtime is O(months × states²); halving Step quadruples the
// month-transition work.
type Dynamic struct {
	// Step is the volume grid spacing (km³). Finer is more accurate and
	// quadratically slower.
	Step   float64
	Interp hydro.Interpolator
}

func NewDynamic() *Dynamic {
	return &Dynamic{Step: 0.1, Interp: hydro.Linear}
}

func (d *Dynamic) Name() string { return "dynamic" }

func (d *Dynamic) ComputeDV(geom model.Geometry, levels model.StaticLevels, series model.HydrologicalSeries, modes []model.OperationMode) ([]float64, error) {
	if err := checkInputs(geom, levels, series, modes); err != nil {
		return nil, err
	}

	nMonths := series.Len()
	nrlVolume := hydro.VolumeAtMark(levels.NRL, geom, d.Interp)
	deadVolume := hydro.VolumeAtMark(levels.Dead, geom, d.Interp)

	grid := volumeGrid(deadVolume, nrlVolume, d.Step)
	nStates := len(grid)

	inf := math.Inf(1)
	// defCost[t*nStates+i]: minimal cumulative deficit at the end of
	// month t in state i; enCost is the negated-energy tie-break carried
	// alongside it. Unreachable states stay at +Inf.
	defCost := make([]float64, (nMonths+1)*nStates)
	enCost := make([]float64, (nMonths+1)*nStates)
	prev := make([]int, nMonths*nStates)
	for i := range defCost {
		defCost[i] = inf
		enCost[i] = inf
	}
	for i := range prev {
		prev[i] = -1
	}

	// The year opens with the reservoir at NRL.
	startIdx := nearestState(grid, nrlVolume)
	defCost[startIdx] = 0
	enCost[startIdx] = 0

	headAt := make([]float64, nStates)
	for i, v := range grid {
		headAt[i] = hydro.HeadwaterMark(v, geom, d.Interp)
	}

	for t := 0; t < nMonths; t++ {
		qByt := series.DomesticInflows[t]
		nGar := series.GuaranteedCapacity[t]
		mode := modes[t]

		for i := 0; i < nStates; i++ {
			curDef := defCost[t*nStates+i]
			if math.IsInf(curDef, 1) {
				continue
			}
			curEn := enCost[t*nStates+i]
			zStart := headAt[i]

			for j := 0; j < nStates; j++ {
				dV := grid[j] - grid[i]
				// The classifier fixed the phase structure; a transition
				// may not oppose its month's mode.
				if (mode == model.ModeDischarge && dV > 0) || (mode == model.ModeFill && dV < 0) {
					continue
				}

				q := qByt - hydro.CubicKmToFlow(dV)
				zLow := hydro.LowwaterMark(q, geom, d.Interp)
				head := 0.5*(zStart+headAt[j]) - zLow

				n := math.Min(hydro.Capacity(q, head), levels.InstalledCapacity)
				deficit := math.Max(0, nGar-n)
				energy := n * hydro.SecondsPerMonth / 3600.0 // MWh

				newDef := curDef + deficit
				newEn := curEn - energy

				k := (t+1)*nStates + j
				if lexBetter(newDef, newEn, defCost[k], enCost[k]) {
					defCost[k] = newDef
					enCost[k] = newEn
					prev[t*nStates+j] = i
				}
			}
		}
	}

	// Target terminal state: back at the NRL volume. If it was never
	// reached, degrade to the cheapest reachable terminal state instead
	// of failing; callers who need exactness can compare the final
	// trajectory volume against the target.
	endIdx := startIdx
	if math.IsInf(defCost[nMonths*nStates+endIdx], 1) {
		endIdx = -1
		bestDef, bestEn := inf, inf
		for j := 0; j < nStates; j++ {
			k := nMonths*nStates + j
			if lexBetter(defCost[k], enCost[k], bestDef, bestEn) {
				bestDef, bestEn = defCost[k], enCost[k]
				endIdx = j
			}
		}
		if endIdx < 0 {
			return nil, fmt.Errorf("no terminal state is reachable on a %d-state grid", nStates)
		}
	}

	states := make([]int, nMonths+1)
	states[nMonths] = endIdx
	for t := nMonths - 1; t >= 0; t-- {
		p := prev[t*nStates+states[t+1]]
		if p < 0 {
			return nil, fmt.Errorf("broken predecessor chain at month %d", t)
		}
		states[t] = p
	}

	dv := make([]float64, nMonths)
	for t := 0; t < nMonths; t++ {
		dv[t] = grid[states[t+1]] - grid[states[t]]
	}
	return dv, nil
}

// volumeGrid spans [lo, hi] in uniform steps; hi is always the last
// point so the NRL volume is an exact grid state.
func volumeGrid(lo, hi, step float64) []float64 {
	var grid []float64
	for k := 0; ; k++ {
		v := lo + float64(k)*step
		if v >= hi-1e-12 {
			break
		}
		grid = append(grid, v)
	}
	return append(grid, hi)
}

func nearestState(grid []float64, v float64) int {
	best := 0
	for i := range grid {
		if math.Abs(grid[i]-v) < math.Abs(grid[best]-v) {
			best = i
		}
	}
	return best
}

// lexBetter reports whether (d1, e1) beats (d2, e2) in the
// deficit-then-energy ordering. Deficits within a hair of each other are
// treated as ties so the energy tie-break actually engages.
func lexBetter(d1, e1, d2, e2 float64) bool {
	if math.IsInf(d2, 1) {
		return !math.IsInf(d1, 1)
	}
	const tol = 1e-9
	if d1 < d2-tol {
		return true
	}
	if d1 > d2+tol {
		return false
	}
	return e1 < e2
}
