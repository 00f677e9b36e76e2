package strategy

import (
	"fmt"
	"math"

	"github.com/H2K2U/WEC4SO/internal/hydro"
	"github.com/H2K2U/WEC4SO/internal/model"
)

const (
	// closureTolerance bounds |ΣΔV| of an acceptable plan. A violation
	// means malformed curves or a step too coarse to balance, and is
	// fatal rather than recoverable.
	closureTolerance = 1e-6

	// guaranteeFactor is the sizing target relative to the guaranteed
	// capacity.
	guaranteeFactor = 1.05
)

func init() {
	Register("greedy", func(params map[string]any) (Optimizer, error) {
		g := NewGreedy()
		g.Step = floatParam(params, "step", g.Step)
		if g.Step <= 0 {
			return nil, fmt.Errorf("greedy step must be > 0, got %g", g.Step)
		}
		return g, nil
	})
}

// Greedy sizes each DISCHARGE month independently, then spreads the
// released volume over the FILL months and rebalances until every fill
// month also clears its guarantee target.
type Greedy struct {
	// Step is the volume increment (km³) used both for discharge sizing
	// and for fill rebalancing transfers.
	Step   float64
	Interp hydro.Interpolator
}

func NewGreedy() *Greedy {
	return &Greedy{Step: 0.01, Interp: hydro.Linear}
}

func (g *Greedy) Name() string { return "greedy" }

func (g *Greedy) ComputeDV(geom model.Geometry, levels model.StaticLevels, series model.HydrologicalSeries, modes []model.OperationMode) ([]float64, error) {
	if err := checkInputs(geom, levels, series, modes); err != nil {
		return nil, err
	}

	var fillIdx, discIdx []int
	for i, m := range modes {
		if m == model.ModeDischarge {
			discIdx = append(discIdx, i)
		} else {
			fillIdx = append(fillIdx, i)
		}
	}

	discVol, err := g.sizeDischarge(geom, levels, series, discIdx)
	if err != nil {
		return nil, err
	}

	total := 0.0
	for _, v := range discVol {
		total += v
	}

	fillVol := g.balanceFill(geom, levels, series, initialFill(total, len(fillIdx)), fillIdx, total)

	dv := make([]float64, series.Len())
	di, fi := 0, 0
	for i, m := range modes {
		if m == model.ModeDischarge {
			dv[i] = -discVol[di]
			di++
		} else {
			dv[i] = +fillVol[fi]
			fi++
		}
	}

	sum := 0.0
	for _, v := range dv {
		sum += v
	}
	if math.Abs(sum) > closureTolerance {
		return nil, fmt.Errorf("greedy plan does not close the annual cycle: sum(dV)=%g km³", sum)
	}
	return dv, nil
}

// sizeDischarge grows each discharge month's released volume from zero
// in Step increments until the month clears guaranteeFactor times its
// guarantee (with power capped at installed capacity). The search is
// bounded by the full regulating span so bad curve data cannot spin
// forever.
func (g *Greedy) sizeDischarge(geom model.Geometry, levels model.StaticLevels, series model.HydrologicalSeries, discIdx []int) ([]float64, error) {
	span := hydro.VolumeAtMark(levels.NRL, geom, g.Interp) - hydro.VolumeAtMark(levels.Dead, geom, g.Interp)
	vols := make([]float64, len(discIdx))
	for k, idx := range discIdx {
		qByt := series.DomesticInflows[idx]
		nGar := series.GuaranteedCapacity[idx]
		dV := 0.0
		for {
			q := qByt + hydro.CubicKmToFlow(dV)
			zLow := hydro.LowwaterMark(q, geom, g.Interp)
			n := math.Min(hydro.Capacity(q, levels.NRL-zLow), levels.InstalledCapacity)
			if n >= guaranteeFactor*nGar {
				break
			}
			dV += g.Step
			if dV > span {
				return nil, fmt.Errorf("month %d cannot reach %.0f%% of its guarantee within the regulating span",
					series.Months[idx], guaranteeFactor*100)
			}
		}
		vols[k] = dV
	}
	return vols, nil
}

func initialFill(total float64, n int) []float64 {
	if n == 0 {
		return nil
	}
	share := total / float64(n)
	out := make([]float64, n)
	for i := range out {
		out[i] = share
	}
	return out
}

// balanceFill shifts Step-sized slices of fill volume away from months
// that cannot clear their guarantee target (storing less water raises
// their plant flow) onto whichever month currently has the largest
// capacity margin. The transfers conserve the total so closure is kept
// by construction.
func (g *Greedy) balanceFill(geom model.Geometry, levels model.StaticLevels, series model.HydrologicalSeries, vols []float64, fillIdx []int, totalDischarge float64) []float64 {
	if len(fillIdx) == 0 {
		return nil
	}
	// A fill run starts from the reservoir's post-drawdown volume.
	base := hydro.VolumeAtMark(levels.NRL, geom, g.Interp) - totalDischarge

	caps := make([]float64, len(fillIdx))
	for i := range fillIdx {
		caps[i] = g.fillCapacity(geom, vols[i], fillIdx[i], base, series)
	}

	for i, idx := range fillIdx {
		nGar := series.GuaranteedCapacity[idx]
		for caps[i] < guaranteeFactor*nGar && vols[i] >= g.Step {
			j := argmax(caps)
			if j == i {
				break // nowhere left to push volume
			}
			vols[j] += g.Step
			vols[i] -= g.Step
			caps[i] = g.fillCapacity(geom, vols[i], fillIdx[i], base, series)
			caps[j] = g.fillCapacity(geom, vols[j], fillIdx[j], base, series)
		}
	}
	return vols
}

// fillCapacity is the plant power of a single fill month holding back dV
// km³, with the reservoir around the base volume.
func (g *Greedy) fillCapacity(geom model.Geometry, dV float64, idx int, base float64, series model.HydrologicalSeries) float64 {
	q := series.DomesticInflows[idx] - hydro.CubicKmToFlow(dV)
	avgHead := 0.5 * (hydro.HeadwaterMark(base, geom, g.Interp) + hydro.HeadwaterMark(base+dV, geom, g.Interp))
	zLow := hydro.LowwaterMark(q, geom, g.Interp)
	return hydro.Capacity(q, avgHead-zLow)
}

func argmax(xs []float64) int {
	best := 0
	for i := 1; i < len(xs); i++ {
		if xs[i] > xs[best] {
			best = i
		}
	}
	return best
}
