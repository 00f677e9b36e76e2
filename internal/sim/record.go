package sim

import "github.com/H2K2U/WEC4SO/internal/model"

// Record is one row of per-month output: the primary artifact for "what
// the plan does" once replayed through the hydraulic formulas.
type Record struct {
	Index int
	Month int

	Mode model.OperationMode

	DomesticInflow float64 // m³/s
	PlantFlow      float64 // m³/s

	DeltaV      float64 // km³, signed (negative = drawdown)
	StartVolume float64 // km³
	EndVolume   float64 // km³

	StartHead    float64 // m
	EndHead      float64 // m
	LowwaterMark float64 // m
	NetHead      float64 // m

	GuaranteedMW float64
	GeneratedMW  float64
}

// Result bundles the full report with year totals.
type Result struct {
	Report []Record

	TotalEnergyMWh float64
	// TotalDeficitMW sums each month's shortfall against its guarantee.
	TotalDeficitMW float64
	FinalVolume    float64 // km³
}
