package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/H2K2U/WEC4SO/internal/model"
)

// testScenario returns the reference reservoir rotated to its canonical
// autumn start, the form strategies run on in the full pipeline.
func testScenario(t *testing.T) (model.Geometry, model.StaticLevels, model.HydrologicalSeries, []model.OperationMode) {
	t.Helper()
	geom, err := model.NewGeometry(
		[]float64{87, 89, 91, 93, 95, 97, 99, 101, 103},
		[]float64{0.1, 0.4, 0.9, 2.3, 4.6, 8.8, 14.6, 21, 29.3},
		[]float64{81, 83, 85, 87, 89, 91},
		[]float64{100, 460, 1200, 2250, 3800, 5100},
	)
	require.NoError(t, err)
	levels, err := model.NewStaticLevels(102, 100, 500)
	require.NoError(t, err)
	series, err := model.NewHydrologicalSeries(
		[]int{10, 11, 12, 1, 2, 3, 4, 5, 6, 7, 8, 9},
		[]float64{465, 560, 410, 540, 450, 740, 2850, 3500, 1100, 750, 630, 450},
		[]float64{140, 140, 140, 130, 130, 135, 220, 200, 190, 50, 50, 50},
	)
	require.NoError(t, err)

	D, F := model.ModeDischarge, model.ModeFill
	modes := []model.OperationMode{D, D, D, D, D, D, F, F, D, F, F, F}
	return geom, levels, series, modes
}

func TestRegistry(t *testing.T) {
	t.Run("built-ins resolve", func(t *testing.T) {
		for _, name := range []string{"greedy", "dynamic", "greywolf"} {
			opt, err := New(name, nil)
			require.NoError(t, err)
			assert.Equal(t, name, opt.Name())
		}
	})

	t.Run("unknown name fails immediately", func(t *testing.T) {
		_, err := New("simplex", nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown strategy")
	})

	t.Run("params override defaults", func(t *testing.T) {
		opt, err := New("dynamic", map[string]any{"step": 0.25})
		require.NoError(t, err)
		assert.InDelta(t, 0.25, opt.(*Dynamic).Step, 1e-12)

		opt, err = New("greywolf", map[string]any{"pack_size": 8, "iterations": 100, "seed": 42})
		require.NoError(t, err)
		gw := opt.(*GreyWolf)
		assert.Equal(t, 8, gw.PackSize)
		assert.Equal(t, 100, gw.Iterations)
		assert.Equal(t, int64(42), gw.Seed)
	})

	t.Run("invalid params are rejected", func(t *testing.T) {
		_, err := New("greedy", map[string]any{"step": -1})
		require.Error(t, err)
		_, err = New("dynamic", map[string]any{"step": 0})
		require.Error(t, err)
		_, err = New("greywolf", map[string]any{"pack_size": 2})
		require.Error(t, err)
		_, err = New("greywolf", map[string]any{"iterations": 0})
		require.Error(t, err)
	})

	t.Run("external registrations are honored", func(t *testing.T) {
		Register("external-test", func(params map[string]any) (Optimizer, error) {
			return NewGreedy(), nil
		})
		defer delete(registry, "external-test")

		opt, err := New("external-test", nil)
		require.NoError(t, err)
		assert.NotNil(t, opt)
	})
}

func TestStrategiesRejectMismatchedModes(t *testing.T) {
	geom, levels, series, modes := testScenario(t)
	short := modes[:len(modes)-1]

	for _, opt := range []Optimizer{NewGreedy(), NewDynamic(), NewGreyWolf()} {
		_, err := opt.ComputeDV(geom, levels, series, short)
		require.Error(t, err, "%s accepted mismatched modes", opt.Name())
	}
}
