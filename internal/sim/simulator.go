// Package sim replays a monthly volume-change plan through the
// hydraulic and power formulas. It owns no optimization logic; any plan
// of the right length can be replayed and inspected.
package sim

import (
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/H2K2U/WEC4SO/internal/hydro"
	"github.com/H2K2U/WEC4SO/internal/model"
)

// Simulator is a deterministic forward model of one hydrological year at
// monthly resolution. The only mutable state during a run is the current
// reservoir volume, local to Run.
type Simulator struct {
	geom   model.Geometry
	levels model.StaticLevels
	series model.HydrologicalSeries
	modes  []model.OperationMode
	interp hydro.Interpolator
	log    *zap.Logger

	nrlVolume float64
}

// New validates its configuration up front: a series/modes length
// mismatch is a configuration error and fails here, never inside the
// replay loop. A nil interp defaults to hydro.Linear, a nil log to a
// no-op logger.
func New(geom model.Geometry, levels model.StaticLevels, series model.HydrologicalSeries, modes []model.OperationMode, interp hydro.Interpolator, log *zap.Logger) (*Simulator, error) {
	if err := geom.Validate(); err != nil {
		return nil, fmt.Errorf("invalid geometry: %w", err)
	}
	if err := levels.Validate(); err != nil {
		return nil, fmt.Errorf("invalid levels: %w", err)
	}
	if err := series.Validate(); err != nil {
		return nil, fmt.Errorf("invalid series: %w", err)
	}
	if series.Len() != len(modes) {
		return nil, fmt.Errorf("series length %d does not match modes length %d", series.Len(), len(modes))
	}
	if interp == nil {
		interp = hydro.Linear
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Simulator{
		geom:      geom,
		levels:    levels,
		series:    series,
		modes:     modes,
		interp:    interp,
		log:       log,
		nrlVolume: hydro.VolumeAtMark(levels.NRL, geom, interp),
	}, nil
}

// Run replays the signed plan (km³ per month, negative = drawdown) and
// emits one record per month in input order. Generated power is clamped
// at the installed capacity and never exceeds it.
func (s *Simulator) Run(plan []float64) (*Result, error) {
	if len(plan) != s.series.Len() {
		return nil, fmt.Errorf("plan length %d does not match series length %d", len(plan), s.series.Len())
	}

	s.log.Info("starting reservoir simulation",
		zap.Int("months", s.series.Len()),
		zap.Float64("start_volume_km3", s.nrlVolume))

	res := &Result{Report: make([]Record, 0, len(plan))}
	volume := s.nrlVolume

	for i, dV := range plan {
		qByt := s.series.DomesticInflows[i]
		nGar := s.series.GuaranteedCapacity[i]

		startVolume := volume
		endVolume := startVolume + dV
		startHead := hydro.HeadwaterMark(startVolume, s.geom, s.interp)
		endHead := hydro.HeadwaterMark(endVolume, s.geom, s.interp)
		avgHead := 0.5 * (startHead + endHead)

		// A drawdown (dV < 0) contributes flow to the plant; a fill
		// withholds it.
		plantFlow := qByt - hydro.CubicKmToFlow(dV)
		zLow := hydro.LowwaterMark(plantFlow, s.geom, s.interp)
		netHead := avgHead - zLow
		generated := math.Min(hydro.Capacity(plantFlow, netHead), s.levels.InstalledCapacity)

		s.log.Debug("month simulated",
			zap.Int("month", s.series.Months[i]),
			zap.String("mode", s.modes[i].String()),
			zap.Float64("dV_km3", dV),
			zap.Float64("generated_mw", generated))

		res.Report = append(res.Report, Record{
			Index:          i,
			Month:          s.series.Months[i],
			Mode:           s.modes[i],
			DomesticInflow: qByt,
			PlantFlow:      plantFlow,
			DeltaV:         dV,
			StartVolume:    startVolume,
			EndVolume:      endVolume,
			StartHead:      startHead,
			EndHead:        endHead,
			LowwaterMark:   zLow,
			NetHead:        netHead,
			GuaranteedMW:   nGar,
			GeneratedMW:    generated,
		})

		res.TotalEnergyMWh += generated * hydro.SecondsPerMonth / 3600.0
		res.TotalDeficitMW += math.Max(0, nGar-generated)
		volume = endVolume
	}

	res.FinalVolume = volume
	return res, nil
}
