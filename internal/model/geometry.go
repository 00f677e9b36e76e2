package model

import "errors"

// Geometry holds the hydraulic rating curves for the reservoir and its
// downstream reach.
// Units:
// - HeadwaterMarks: m (upstream surface elevation)
// - AverageVolumes: km³ (storage volume at each headwater mark)
// - LowwaterMarks: m (tailwater elevation)
// - LowwaterInflows: m³/s (plant discharge at each tailwater mark)
//
// Each pair of parallel slices is one piecewise-linear rating curve; the
// independent slice must be strictly ascending.
type Geometry struct {
	HeadwaterMarks  []float64
	AverageVolumes  []float64
	LowwaterMarks   []float64
	LowwaterInflows []float64
}

func NewGeometry(headwaterMarks, averageVolumes, lowwaterMarks, lowwaterInflows []float64) (Geometry, error) {
	g := Geometry{
		HeadwaterMarks:  headwaterMarks,
		AverageVolumes:  averageVolumes,
		LowwaterMarks:   lowwaterMarks,
		LowwaterInflows: lowwaterInflows,
	}
	if err := g.Validate(); err != nil {
		return Geometry{}, err
	}
	return g, nil
}

func (g Geometry) Validate() error {
	if len(g.HeadwaterMarks) < 2 {
		return errors.New("headwater curve needs at least two points")
	}
	if len(g.HeadwaterMarks) != len(g.AverageVolumes) {
		return errors.New("HeadwaterMarks and AverageVolumes must have equal length")
	}
	if len(g.LowwaterInflows) < 2 {
		return errors.New("lowwater curve needs at least two points")
	}
	if len(g.LowwaterInflows) != len(g.LowwaterMarks) {
		return errors.New("LowwaterInflows and LowwaterMarks must have equal length")
	}
	if !strictlyAscending(g.AverageVolumes) {
		return errors.New("AverageVolumes must be strictly ascending")
	}
	if !strictlyAscending(g.HeadwaterMarks) {
		return errors.New("HeadwaterMarks must be strictly ascending")
	}
	if !strictlyAscending(g.LowwaterInflows) {
		return errors.New("LowwaterInflows must be strictly ascending")
	}
	return nil
}

func strictlyAscending(xs []float64) bool {
	for i := 1; i < len(xs); i++ {
		if xs[i] <= xs[i-1] {
			return false
		}
	}
	return true
}
