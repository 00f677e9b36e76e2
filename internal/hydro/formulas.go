package hydro

import "github.com/H2K2U/WEC4SO/internal/model"

// SecondsPerMonth is the mean month length used to convert between a
// monthly volume change (km³) and a flow contribution (m³/s).
const SecondsPerMonth = 2.63e6

// CubicKmToFlow converts a monthly volume (km³) into the equivalent mean
// flow (m³/s) over one month.
func CubicKmToFlow(v float64) float64 { return v * 1e9 / SecondsPerMonth }

// LowwaterMark returns the tailwater elevation (m) for a plant discharge
// q (m³/s) from the Q-Z rating curve.
func LowwaterMark(q float64, g model.Geometry, interp Interpolator) float64 {
	return interp(q, g.LowwaterInflows, g.LowwaterMarks)
}

// HeadwaterMark returns the upstream elevation (m) for a storage volume
// v (km³) from the V-Z rating curve.
func HeadwaterMark(v float64, g model.Geometry, interp Interpolator) float64 {
	return interp(v, g.AverageVolumes, g.HeadwaterMarks)
}

// VolumeAtMark inverts the V-Z curve: the storage volume (km³) at which
// the headwater sits at elevation z (m).
func VolumeAtMark(z float64, g model.Geometry, interp Interpolator) float64 {
	return interp(z, g.HeadwaterMarks, g.AverageVolumes)
}

// Capacity is the plant power (MW) for discharge q (m³/s) under net head
// h (m): N = 8.5·Q·H/1000.
func Capacity(q, h float64) float64 {
	return 8.5 * q * h / 1000.0
}
