package model

// OperationMode is the operating regime assigned to a month.
// Keep the string values stable; they are intended for CSV output.
type OperationMode string

const (
	// ModeFill stores surplus inflow, raising the reservoir volume.
	ModeFill OperationMode = "FILL"
	// ModeDischarge releases stored water to cover a power shortfall.
	ModeDischarge OperationMode = "DISCHARGE"
)

func (m OperationMode) String() string { return string(m) }

// RotateModes returns a copy of modes shifted so that index start becomes
// index 0, wrapping around the year boundary.
func RotateModes(modes []OperationMode, start int) []OperationMode {
	n := len(modes)
	out := make([]OperationMode, n)
	for i := 0; i < n; i++ {
		out[i] = modes[(start+i)%n]
	}
	return out
}
