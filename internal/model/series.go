package model

import "errors"

// HydrologicalSeries is the monthly forcing for one hydrological year:
// parallel slices of month labels, domestic (natural) inflow in m³/s and
// contracted guaranteed capacity in MW.
//
// A series is treated as immutable once built; Rotate returns a fresh
// value and never touches the receiver's slices.
type HydrologicalSeries struct {
	Months             []int
	DomesticInflows    []float64
	GuaranteedCapacity []float64
}

func NewHydrologicalSeries(months []int, domesticInflows, guaranteedCapacity []float64) (HydrologicalSeries, error) {
	s := HydrologicalSeries{
		Months:             months,
		DomesticInflows:    domesticInflows,
		GuaranteedCapacity: guaranteedCapacity,
	}
	if err := s.Validate(); err != nil {
		return HydrologicalSeries{}, err
	}
	return s, nil
}

func (s HydrologicalSeries) Validate() error {
	if len(s.Months) == 0 {
		return errors.New("series is empty")
	}
	if len(s.Months) != len(s.DomesticInflows) || len(s.Months) != len(s.GuaranteedCapacity) {
		return errors.New("all hydrological series must have equal length")
	}
	return nil
}

func (s HydrologicalSeries) Len() int { return len(s.Months) }

// Rotate returns a copy of the series shifted so that index start becomes
// index 0, wrapping around the year boundary.
func (s HydrologicalSeries) Rotate(start int) HydrologicalSeries {
	n := s.Len()
	out := HydrologicalSeries{
		Months:             make([]int, n),
		DomesticInflows:    make([]float64, n),
		GuaranteedCapacity: make([]float64, n),
	}
	for i := 0; i < n; i++ {
		j := (start + i) % n
		out.Months[i] = s.Months[j]
		out.DomesticInflows[i] = s.DomesticInflows[j]
		out.GuaranteedCapacity[i] = s.GuaranteedCapacity[j]
	}
	return out
}
