package sim

import (
	"encoding/csv"
	"os"
	"strconv"
)

func WriteReportCSV(path string, report []Record) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{
		"index",
		"month",
		"mode",
		"domestic_inflow_m3s",
		"plant_flow_m3s",
		"delta_v_km3",
		"start_volume_km3",
		"end_volume_km3",
		"start_head_m",
		"end_head_m",
		"lowwater_mark_m",
		"net_head_m",
		"guaranteed_mw",
		"generated_mw",
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, r := range report {
		row := []string{
			strconv.Itoa(r.Index),
			strconv.Itoa(r.Month),
			r.Mode.String(),
			fmtFloat(r.DomesticInflow),
			fmtFloat(r.PlantFlow),
			fmtFloat(r.DeltaV),
			fmtFloat(r.StartVolume),
			fmtFloat(r.EndVolume),
			fmtFloat(r.StartHead),
			fmtFloat(r.EndHead),
			fmtFloat(r.LowwaterMark),
			fmtFloat(r.NetHead),
			fmtFloat(r.GuaranteedMW),
			fmtFloat(r.GeneratedMW),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	return w.Error()
}

func fmtFloat(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}
