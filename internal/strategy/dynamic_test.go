package strategy

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/H2K2U/WEC4SO/internal/hydro"
	"github.com/H2K2U/WEC4SO/internal/model"
)

// planDeficit replays a plan through the shared formulas and sums the
// monthly guarantee shortfalls.
func planDeficit(geom model.Geometry, levels model.StaticLevels, series model.HydrologicalSeries, dv []float64) float64 {
	deficit := 0.0
	vol := hydro.VolumeAtMark(levels.NRL, geom, hydro.Linear)
	for i, d := range dv {
		end := vol + d
		q := series.DomesticInflows[i] - hydro.CubicKmToFlow(d)
		head := 0.5*(hydro.HeadwaterMark(vol, geom, hydro.Linear)+hydro.HeadwaterMark(end, geom, hydro.Linear)) -
			hydro.LowwaterMark(q, geom, hydro.Linear)
		n := math.Min(hydro.Capacity(q, head), levels.InstalledCapacity)
		deficit += math.Max(0, series.GuaranteedCapacity[i]-n)
		vol = end
	}
	return deficit
}

func TestDynamicPlanShape(t *testing.T) {
	geom, levels, series, modes := testScenario(t)

	d := NewDynamic()
	d.Step = 0.25
	dv, err := d.ComputeDV(geom, levels, series, modes)
	require.NoError(t, err)
	require.Len(t, dv, series.Len())

	t.Run("closes the annual cycle on the grid", func(t *testing.T) {
		sum := 0.0
		for _, v := range dv {
			sum += v
		}
		assert.InDelta(t, 0, sum, 1e-9, "the NRL terminal state is on the grid, so closure is exact")
	})

	t.Run("respects each month's mode sign", func(t *testing.T) {
		for i, m := range modes {
			if m == model.ModeDischarge {
				assert.LessOrEqual(t, dv[i], 0.0, "month %d", i)
			} else {
				assert.GreaterOrEqual(t, dv[i], 0.0, "month %d", i)
			}
		}
	})

	t.Run("trajectory stays inside the regulating span", func(t *testing.T) {
		vNRL := hydro.VolumeAtMark(levels.NRL, geom, hydro.Linear)
		vDead := hydro.VolumeAtMark(levels.Dead, geom, hydro.Linear)
		vol := vNRL
		for i, d := range dv {
			vol += d
			assert.GreaterOrEqual(t, vol, vDead-1e-9, "month %d", i)
			assert.LessOrEqual(t, vol, vNRL+1e-9, "month %d", i)
		}
	})
}

func TestDynamicFinerGridNeverWorse(t *testing.T) {
	geom, levels, series, modes := testScenario(t)

	coarse := NewDynamic()
	coarse.Step = 0.5
	fine := NewDynamic()
	fine.Step = 0.25 // every coarse state is also a fine state

	dvCoarse, err := coarse.ComputeDV(geom, levels, series, modes)
	require.NoError(t, err)
	dvFine, err := fine.ComputeDV(geom, levels, series, modes)
	require.NoError(t, err)

	defCoarse := planDeficit(geom, levels, series, dvCoarse)
	defFine := planDeficit(geom, levels, series, dvFine)
	assert.LessOrEqual(t, defFine, defCoarse+1e-6,
		"refining the grid must not lose reliability (coarse=%.4f fine=%.4f)", defCoarse, defFine)
}

func TestDynamicDeterministic(t *testing.T) {
	geom, levels, series, modes := testScenario(t)

	d := NewDynamic()
	d.Step = 0.5
	first, err := d.ComputeDV(geom, levels, series, modes)
	require.NoError(t, err)
	second, err := d.ComputeDV(geom, levels, series, modes)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
