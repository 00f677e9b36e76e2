// Package strategy provides the annual volume-change planners. Every
// planner satisfies the same Optimizer contract and is resolved through
// a name-keyed registry, so callers can pick one from configuration.
//
// Sign convention, applied uniformly here and in the simulator:
// DISCHARGE months carry ΔV < 0 (the reservoir empties), FILL months
// ΔV > 0. The plant flow for a month is always
// inflow − ΔV·1e9/SecondsPerMonth, so a drawdown adds flow.
package strategy

import (
	"fmt"
	"sort"

	"github.com/H2K2U/WEC4SO/internal/model"
)

// Optimizer computes a signed monthly volume-change plan (km³) for one
// hydrological year. The returned slice is aligned with the series and
// must sum to approximately zero so the reservoir closes its annual
// cycle.
type Optimizer interface {
	Name() string
	ComputeDV(geom model.Geometry, levels model.StaticLevels, series model.HydrologicalSeries, modes []model.OperationMode) ([]float64, error)
}

// Factory builds an Optimizer from loosely-typed configuration params.
type Factory func(params map[string]any) (Optimizer, error)

var registry = map[string]Factory{}

// Register adds an optimizer constructor under a name. External
// implementations of the contract (a solver-backed variant, say) hook in
// through this.
func Register(name string, f Factory) {
	registry[name] = f
}

// New resolves a registered optimizer by name. Unknown names fail
// immediately.
func New(name string, params map[string]any) (Optimizer, error) {
	f, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown strategy %q (registered: %v)", name, Names())
	}
	return f(params)
}

// Names lists the registered strategy names, sorted.
func Names() []string {
	out := make([]string, 0, len(registry))
	for k := range registry {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// checkInputs validates the shared preconditions of every strategy.
func checkInputs(geom model.Geometry, levels model.StaticLevels, series model.HydrologicalSeries, modes []model.OperationMode) error {
	if err := geom.Validate(); err != nil {
		return fmt.Errorf("invalid geometry: %w", err)
	}
	if err := levels.Validate(); err != nil {
		return fmt.Errorf("invalid levels: %w", err)
	}
	if err := series.Validate(); err != nil {
		return fmt.Errorf("invalid series: %w", err)
	}
	if series.Len() != len(modes) {
		return fmt.Errorf("series length %d does not match modes length %d", series.Len(), len(modes))
	}
	return nil
}

// floatParam and intParam pull numeric values out of YAML-decoded
// strategy params, which may arrive as int or float64.
func floatParam(m map[string]any, key string, def float64) float64 {
	if v, ok := m[key]; ok && v != nil {
		switch x := v.(type) {
		case float64:
			return x
		case int:
			return float64(x)
		case int64:
			return float64(x)
		}
	}
	return def
}

func intParam(m map[string]any, key string, def int) int {
	if v, ok := m[key]; ok && v != nil {
		switch x := v.(type) {
		case int:
			return x
		case int64:
			return int(x)
		case float64:
			return int(x)
		}
	}
	return def
}
