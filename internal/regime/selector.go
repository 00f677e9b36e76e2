// Package regime classifies the months of a hydrological year into
// storage-discharge and storage-fill periods and canonicalizes the
// calendar so the year opens on the autumn depletion run.
package regime

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/H2K2U/WEC4SO/internal/hydro"
	"github.com/H2K2U/WEC4SO/internal/model"
)

// capacityMarginMW guards the mode decision against rounding on the
// rating curves: a month is DISCHARGE only when baseline power plus this
// margin still falls short of the guarantee.
const capacityMarginMW = 1.0

// rotationThreshold is the last calendar slot (0-based) that may not
// open the rotated year; the first DISCHARGE month after it becomes
// index 0.
const rotationThreshold = 8

type Selector struct {
	geom   model.Geometry
	levels model.StaticLevels
	interp hydro.Interpolator
	log    *zap.Logger
}

// NewSelector validates the geometry and levels up front; a nil interp
// defaults to hydro.Linear and a nil log to a no-op logger.
func NewSelector(geom model.Geometry, levels model.StaticLevels, interp hydro.Interpolator, log *zap.Logger) (*Selector, error) {
	if err := geom.Validate(); err != nil {
		return nil, fmt.Errorf("invalid geometry: %w", err)
	}
	if err := levels.Validate(); err != nil {
		return nil, fmt.Errorf("invalid levels: %w", err)
	}
	if interp == nil {
		interp = hydro.Linear
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Selector{geom: geom, levels: levels, interp: interp, log: log}, nil
}

// CalcModes classifies every month of the series. A month runs in
// DISCHARGE when the power available from its natural inflow alone,
// at full headwater, cannot cover the guaranteed capacity; otherwise it
// is a FILL month. A smoothing pass then removes single FILL months
// flanked by DISCHARGE on both sides, wrapping across the year boundary,
// since those islands are rating-curve artifacts that would wrongly
// interrupt a depletion run.
func (s *Selector) CalcModes(series model.HydrologicalSeries) []model.OperationMode {
	n := series.Len()
	modes := make([]model.OperationMode, n)
	for i := 0; i < n; i++ {
		q := series.DomesticInflows[i]
		zLow := hydro.LowwaterMark(q, s.geom, s.interp)
		head := s.levels.NRL - zLow
		baseline := hydro.Capacity(q, head) + capacityMarginMW
		if baseline < series.GuaranteedCapacity[i] {
			modes[i] = model.ModeDischarge
		} else {
			modes[i] = model.ModeFill
		}
	}
	for i := 0; i < n; i++ {
		prev := modes[(i-1+n)%n]
		next := modes[(i+1)%n]
		if modes[i] == model.ModeFill && prev == model.ModeDischarge && next == model.ModeDischarge {
			modes[i] = model.ModeDischarge
		}
	}
	return modes
}

// Rotated classifies the series and rotates both the series and the mode
// list so the first DISCHARGE month with original index above the
// rotation threshold becomes index 0. When no month qualifies the input
// ordering is kept and a warning is logged; that is not an error.
func (s *Selector) Rotated(series model.HydrologicalSeries) (model.HydrologicalSeries, []model.OperationMode) {
	modes := s.CalcModes(series)
	start := -1
	for i, m := range modes {
		if m == model.ModeDischarge && i > rotationThreshold {
			start = i
			break
		}
	}
	if start < 0 {
		s.log.Warn("no discharge month found after the rotation threshold; keeping original order",
			zap.Int("threshold", rotationThreshold))
		return series, modes
	}
	return series.Rotate(start), model.RotateModes(modes, start)
}
