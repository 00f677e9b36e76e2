package sim

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/H2K2U/WEC4SO/internal/hydro"
	"github.com/H2K2U/WEC4SO/internal/model"
)

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

func TestNewRejectsLengthMismatch(t *testing.T) {
	geom, levels, series, modes := testScenario(t)

	_, err := New(geom, levels, series, modes[:11], nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not match modes length")

	_, err = New(geom, levels, series, modes, nil, nil)
	require.NoError(t, err)
}

func TestRunRejectsWrongPlanLength(t *testing.T) {
	geom, levels, series, modes := testScenario(t)
	s, err := New(geom, levels, series, modes, nil, nil)
	require.NoError(t, err)

	_, err = s.Run(make([]float64, 5))
	require.Error(t, err)
}

func TestRunVolumeChaining(t *testing.T) {
	geom, levels, series, modes := testScenario(t)
	s, err := New(geom, levels, series, modes, nil, nil)
	require.NoError(t, err)

	plan := []float64{-1, -1, -0.5, -0.5, -0.5, -0.5, 2, 2, -1, 0.5, 0.25, 0.25}
	res, err := s.Run(plan)
	require.NoError(t, err)
	require.Len(t, res.Report, 12)

	vNRL := hydro.VolumeAtMark(levels.NRL, geom, hydro.Linear)
	assert.InDelta(t, vNRL, res.Report[0].StartVolume, 1e-12, "year opens at the NRL volume")

	for i := 1; i < len(res.Report); i++ {
		assert.Equal(t, res.Report[i-1].EndVolume, res.Report[i].StartVolume,
			"month %d must start where month %d ended", i, i-1)
	}
	assert.Equal(t, res.Report[len(res.Report)-1].EndVolume, res.FinalVolume)
	assert.InDelta(t, vNRL, res.FinalVolume, 1e-9, "this plan sums to zero")
}

func TestRunNeverExceedsInstalledCapacity(t *testing.T) {
	geom, levels, series, modes := testScenario(t)
	s, err := New(geom, levels, series, modes, nil, nil)
	require.NoError(t, err)

	// A violent drawdown in the wettest month pushes the raw power
	// formula past the installed capacity; the clamp must hold it.
	plan := []float64{0, 0, 0, 0, 0, 0, 0, -6, 0, 2, 2, 2}
	res, err := s.Run(plan)
	require.NoError(t, err)

	for _, r := range res.Report {
		assert.LessOrEqual(t, r.GeneratedMW, levels.InstalledCapacity+1e-9,
			"month %d exceeds the installed capacity", r.Month)
	}
	assert.InDelta(t, levels.InstalledCapacity, res.Report[7].GeneratedMW, 1e-9,
		"the drawdown month should be pinned at the ceiling")
}

func TestRunZeroPlan(t *testing.T) {
	geom, levels, series, modes := testScenario(t)
	s, err := New(geom, levels, series, modes, nil, nil)
	require.NoError(t, err)

	res, err := s.Run(make([]float64, 12))
	require.NoError(t, err)

	vNRL := hydro.VolumeAtMark(levels.NRL, geom, hydro.Linear)
	for _, r := range res.Report {
		assert.Equal(t, vNRL, r.StartVolume)
		assert.Equal(t, vNRL, r.EndVolume)
		assert.Equal(t, r.DomesticInflow, r.PlantFlow, "no plan delta means plant flow equals inflow")
	}
}

func TestRunDeficitAndEnergyTotals(t *testing.T) {
	geom, levels, series, modes := testScenario(t)
	s, err := New(geom, levels, series, modes, nil, nil)
	require.NoError(t, err)

	res, err := s.Run(make([]float64, 12))
	require.NoError(t, err)

	wantEnergy, wantDeficit := 0.0, 0.0
	for _, r := range res.Report {
		wantEnergy += r.GeneratedMW * hydro.SecondsPerMonth / 3600.0
		wantDeficit += math.Max(0, r.GuaranteedMW-r.GeneratedMW)
	}
	assert.InDelta(t, wantEnergy, res.TotalEnergyMWh, 1e-6)
	assert.InDelta(t, wantDeficit, res.TotalDeficitMW, 1e-9)
}

func TestWriteReportCSV(t *testing.T) {
	geom, levels, series, modes := testScenario(t)
	s, err := New(geom, levels, series, modes, nil, nil)
	require.NoError(t, err)

	res, err := s.Run(make([]float64, 12))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "report.csv")
	require.NoError(t, WriteReportCSV(path, res.Report))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	assert.Len(t, lines, 13, "header plus one row per month")
	assert.Contains(t, lines[0], "generated_mw")
	assert.Contains(t, lines[1], model.ModeDischarge.String())
}
