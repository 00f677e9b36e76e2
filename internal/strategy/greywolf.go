package strategy

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/H2K2U/WEC4SO/internal/hydro"
	"github.com/H2K2U/WEC4SO/internal/model"
)

// terminalPenalty weights the squared terminal-volume mismatch in the
// fitness. The last dimension is pinned to the NRL volume anyway; the
// penalty is a second line of defense.
const terminalPenalty = 100.0

func init() {
	Register("greywolf", func(params map[string]any) (Optimizer, error) {
		g := NewGreyWolf()
		g.PackSize = intParam(params, "pack_size", g.PackSize)
		g.Iterations = intParam(params, "iterations", g.Iterations)
		g.Seed = int64(intParam(params, "seed", int(g.Seed)))
		if g.PackSize < 3 {
			return nil, fmt.Errorf("greywolf pack_size must be >= 3, got %d", g.PackSize)
		}
		if g.Iterations <= 0 {
			return nil, fmt.Errorf("greywolf iterations must be > 0, got %d", g.Iterations)
		}
		return g, nil
	})
}

// GreyWolf is a population metaheuristic over end-of-month storage
// volumes. Candidates live in [deadVolume, nrlVolume] per month with the
// last month pinned to the NRL volume, which closes the annual cycle by
// construction. Fitness is the sum of squared monthly deficits plus the
// terminal penalty.
//
// All randomness comes from a rand.Rand seeded with Seed; an identical
// seed and inputs reproduce the output bit for bit, and separate runs
// never share generator state.
type GreyWolf struct {
	PackSize   int
	Iterations int
	Seed       int64
	Interp     hydro.Interpolator
}

func NewGreyWolf() *GreyWolf {
	return &GreyWolf{PackSize: 20, Iterations: 15000, Seed: 0, Interp: hydro.Linear}
}

func (g *GreyWolf) Name() string { return "greywolf" }

func (g *GreyWolf) ComputeDV(geom model.Geometry, levels model.StaticLevels, series model.HydrologicalSeries, modes []model.OperationMode) ([]float64, error) {
	if err := checkInputs(geom, levels, series, modes); err != nil {
		return nil, err
	}
	if g.PackSize < 3 {
		return nil, fmt.Errorf("pack size must be >= 3 to pick three attractors, got %d", g.PackSize)
	}

	rng := rand.New(rand.NewSource(g.Seed))
	nMonths := series.Len()
	vNRL := hydro.VolumeAtMark(levels.NRL, geom, g.Interp)
	vDead := hydro.VolumeAtMark(levels.Dead, geom, g.Interp)

	pack := make([][]float64, g.PackSize)
	for i := range pack {
		w := make([]float64, nMonths)
		for j := range w {
			w[j] = vDead + rng.Float64()*(vNRL-vDead)
		}
		w[nMonths-1] = vNRL
		pack[i] = w
	}

	scores := make([]float64, g.PackSize)
	for i, w := range pack {
		scores[i] = g.fitness(w, geom, levels, series, vNRL, vDead)
	}

	order := make([]int, g.PackSize)
	for it := 0; it < g.Iterations; it++ {
		for i := range order {
			order[i] = i
		}
		sort.SliceStable(order, func(a, b int) bool { return scores[order[a]] < scores[order[b]] })
		alpha, beta, delta := pack[order[0]], pack[order[1]], pack[order[2]]

		// Exploration coefficient shrinks linearly 2 → 0 over the run.
		a := 2 - 2*float64(it)/math.Max(1, float64(g.Iterations-1))

		for i := range pack {
			w := pack[i]
			for j := 0; j < nMonths; j++ {
				x1 := pull(rng, a, alpha[j], w[j])
				x2 := pull(rng, a, beta[j], w[j])
				x3 := pull(rng, a, delta[j], w[j])
				w[j] = (x1 + x2 + x3) / 3
			}
			for j := range w {
				w[j] = clamp(w[j], vDead, vNRL)
			}
			w[nMonths-1] = vNRL
			scores[i] = g.fitness(w, geom, levels, series, vNRL, vDead)
		}
	}

	best := 0
	for i := range scores {
		if scores[i] < scores[best] {
			best = i
		}
	}

	dv := make([]float64, nMonths)
	prev := vNRL
	for t, v := range pack[best] {
		dv[t] = v - prev
		prev = v
	}
	return dv, nil
}

// pull moves a coordinate toward an attractor: the classic grey-wolf
// encircling step with exploration coefficient A = a·(2r₁−1) and
// exploitation coefficient C = 2r₂.
func pull(rng *rand.Rand, a, attractor, x float64) float64 {
	r1, r2 := rng.Float64(), rng.Float64()
	A := a * (2*r1 - 1)
	C := 2 * r2
	return attractor - A*math.Abs(C*attractor-x)
}

func (g *GreyWolf) fitness(vols []float64, geom model.Geometry, levels model.StaticLevels, series model.HydrologicalSeries, vNRL, vDead float64) float64 {
	cost := 0.0
	prev := vNRL
	for t, vEnd := range vols {
		vEnd = clamp(vEnd, vDead, vNRL)
		dV := vEnd - prev
		q := series.DomesticInflows[t] - hydro.CubicKmToFlow(dV)
		head := 0.5*(hydro.HeadwaterMark(prev, geom, g.Interp)+hydro.HeadwaterMark(vEnd, geom, g.Interp)) -
			hydro.LowwaterMark(q, geom, g.Interp)
		n := math.Min(hydro.Capacity(q, head), levels.InstalledCapacity)
		deficit := math.Max(0, series.GuaranteedCapacity[t]-n)
		cost += deficit * deficit
		prev = vEnd
	}
	diff := prev - vNRL
	return cost + terminalPenalty*diff*diff
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
