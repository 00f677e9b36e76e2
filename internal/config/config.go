package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/H2K2U/WEC4SO/internal/model"
)

// Config is the on-disk scenario shape (YAML).
type Config struct {
	// Optional: load the rating curves from a separate YAML (e.g.
	// examples/geometry/*.yaml). If both GeometryFile and Geometry are
	// provided, non-empty Geometry curves override the file.
	GeometryFile string         `yaml:"geometry_file"`
	Geometry     GeometryConfig `yaml:"geometry"`
	Levels       LevelsConfig   `yaml:"levels"`
	Series       SeriesConfig   `yaml:"series"`
	Strategy     StrategyConfig `yaml:"strategy"`
}

type GeometryConfig struct {
	HeadwaterMarks  []float64 `yaml:"headwater_marks"`
	AverageVolumes  []float64 `yaml:"average_volumes"`
	LowwaterMarks   []float64 `yaml:"lowwater_marks"`
	LowwaterInflows []float64 `yaml:"lowwater_inflows"`
}

type LevelsConfig struct {
	NRL               float64 `yaml:"nrl"`
	Dead              float64 `yaml:"dead"`
	InstalledCapacity float64 `yaml:"installed_capacity"`
}

type SeriesConfig struct {
	Months             []int     `yaml:"months"`
	DomesticInflows    []float64 `yaml:"domestic_inflows"`
	GuaranteedCapacity []float64 `yaml:"guaranteed_capacity"`
}

type StrategyConfig struct {
	Name   string         `yaml:"name"`
	Params map[string]any `yaml:"params"`
}

func Load(path string) (*Config, error) {
	c, err := LoadUnchecked(path)
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadUnchecked loads and merges the scenario, but does not validate it.
// Useful for debugging/printing partial configs.
func LoadUnchecked(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, err
	}
	if c.GeometryFile != "" {
		geomPath := c.GeometryFile
		if !filepath.IsAbs(geomPath) {
			// Prefer interpreting relative paths as relative to the
			// scenario file directory, falling back to the cwd-relative
			// path if that doesn't exist.
			cand := filepath.Join(filepath.Dir(path), geomPath)
			if _, err := os.Stat(cand); err == nil {
				geomPath = cand
			}
		}
		loaded, err := loadGeometryFile(geomPath)
		if err != nil {
			return nil, err
		}
		c.Geometry = MergeGeometry(loaded, c.Geometry)
	}
	return &c, nil
}

func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if c.Strategy.Name == "" {
		return errors.New("strategy.name is required")
	}
	// Validate curves, levels and series by constructing the model types.
	if _, err := c.ToGeometry(); err != nil {
		return fmt.Errorf("geometry config invalid: %w", err)
	}
	if _, err := c.ToLevels(); err != nil {
		return fmt.Errorf("levels config invalid: %w", err)
	}
	if _, err := c.ToSeries(); err != nil {
		return fmt.Errorf("series config invalid: %w", err)
	}
	return nil
}

func (c *Config) ToGeometry() (model.Geometry, error) {
	return model.NewGeometry(
		c.Geometry.HeadwaterMarks,
		c.Geometry.AverageVolumes,
		c.Geometry.LowwaterMarks,
		c.Geometry.LowwaterInflows,
	)
}

func (c *Config) ToLevels() (model.StaticLevels, error) {
	return model.NewStaticLevels(c.Levels.NRL, c.Levels.Dead, c.Levels.InstalledCapacity)
}

func (c *Config) ToSeries() (model.HydrologicalSeries, error) {
	return model.NewHydrologicalSeries(c.Series.Months, c.Series.DomesticInflows, c.Series.GuaranteedCapacity)
}

type geometryFileWrapper struct {
	Geometry GeometryConfig `yaml:"geometry"`
}

func loadGeometryFile(path string) (GeometryConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return GeometryConfig{}, err
	}
	var w geometryFileWrapper
	if err := yaml.Unmarshal(raw, &w); err != nil {
		return GeometryConfig{}, err
	}
	return w.Geometry, nil
}

// MergeGeometry overlays non-empty curves from override onto base. This
// is used when a scenario names a geometry file and then pins individual
// curves inline.
func MergeGeometry(base, override GeometryConfig) GeometryConfig {
	out := base
	if len(override.HeadwaterMarks) != 0 {
		out.HeadwaterMarks = override.HeadwaterMarks
	}
	if len(override.AverageVolumes) != 0 {
		out.AverageVolumes = override.AverageVolumes
	}
	if len(override.LowwaterMarks) != 0 {
		out.LowwaterMarks = override.LowwaterMarks
	}
	if len(override.LowwaterInflows) != 0 {
		out.LowwaterInflows = override.LowwaterInflows
	}
	return out
}
