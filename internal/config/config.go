// Package config defines the YAML evaluation configuration and its
// validation.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-yaml"

	"github.com/climagination/climeval/internal/adapter/store"
	"github.com/climagination/climeval/internal/grid"
)

// Bound is one end of a closed interval. In YAML it is either a number
// (matching the file's raw coordinate values) or a date string, converted to
// Unix seconds.
type Bound float64

// UnmarshalYAML accepts a float or an RFC 3339 / date string.
func (b *Bound) UnmarshalYAML(data []byte) error {
	s := strings.TrimSpace(string(data))
	s = strings.Trim(s, `"'`)
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		*b = Bound(f)
		return nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			*b = Bound(t.Unix())
			return nil
		}
	}
	return fmt.Errorf("invalid bound %q: not a number or date", s)
}

// Range is a closed [min, max] bound pair, written in YAML as a two-element
// list.
type Range []Bound

// Min returns the lower bound (order-normalized).
func (r Range) Min() float64 {
	if r[0] <= r[1] {
		return float64(r[0])
	}
	return float64(r[1])
}

// Max returns the upper bound (order-normalized).
func (r Range) Max() float64 {
	if r[0] <= r[1] {
		return float64(r[1])
	}
	return float64(r[0])
}

func (r Range) validate(name string) error {
	if len(r) != 2 {
		return fmt.Errorf("%s must be a [min, max] pair, got %d values", name, len(r))
	}
	return nil
}

// DatasetSpec configures a single dataset (predicted or reference).
// Immutable once constructed.
type DatasetSpec struct {
	Location  string            `yaml:"path"`
	Format    store.Format      `yaml:"format"`
	Variables []string          `yaml:"variables"`
	Rename    map[string]string `yaml:"variable_mapping"`
	Ensemble  string            `yaml:"ensemble_method"`
}

// Validate rejects malformed dataset specs at config time, so an unknown
// storage format or ensemble policy never reaches the loader.
func (s DatasetSpec) Validate() error {
	if s.Location == "" {
		return fmt.Errorf("dataset path is required")
	}
	if !s.Format.Valid() {
		return fmt.Errorf("%w: %q (use zarr, netcdf, or pt)", store.ErrUnsupportedFormat, s.Format)
	}
	if s.Ensemble != "" && !grid.ValidEnsembleMethod(s.Ensemble) {
		return fmt.Errorf("%w: %q (use mean, median, select, or keep)",
			grid.ErrInvalidEnsembleMethod, s.Ensemble)
	}
	return nil
}

// Domain restricts evaluation to a spatial/temporal bounding box. Each bound
// is optional.
type Domain struct {
	Lat  Range `yaml:"lat_range"`
	Lon  Range `yaml:"lon_range"`
	Time Range `yaml:"time_range"`
}

// IsSubset reports whether any bound is present.
func (d Domain) IsSubset() bool {
	return len(d.Lat) > 0 || len(d.Lon) > 0 || len(d.Time) > 0
}

// Metrics selects which metrics to compute, by category.
type Metrics struct {
	Marginal     []string `yaml:"marginal"`
	Spatial      []string `yaml:"spatial"`
	Temporal     []string `yaml:"temporal"`
	Multivariate []string `yaml:"multivariate"`
}

// All returns the flat list of selected metrics.
func (m Metrics) All() []string {
	out := make([]string, 0, len(m.Marginal)+len(m.Spatial)+len(m.Temporal)+len(m.Multivariate))
	out = append(out, m.Marginal...)
	out = append(out, m.Spatial...)
	out = append(out, m.Temporal...)
	return append(out, m.Multivariate...)
}

// Compute configures parallel execution.
type Compute struct {
	Parallel  bool   `yaml:"parallel"`
	Workers   int    `yaml:"n_workers"`
	ChunkSize string `yaml:"chunk_size"`
}

// EffectiveWorkers returns the worker count the compute engine should use.
func (c Compute) EffectiveWorkers() int {
	if !c.Parallel {
		return 1
	}
	return c.Workers
}

// Output configures result persistence and plot rendering.
type Output struct {
	Dir              string   `yaml:"dir"`
	SaveIntermediate bool     `yaml:"save_intermediate"`
	Formats          []string `yaml:"formats"`
	DPI              int      `yaml:"dpi"`
}

// Config is the root evaluation configuration.
type Config struct {
	ProjectName string `yaml:"project_name"`
	Description string `yaml:"description"`
	Data        struct {
		Predicted DatasetSpec `yaml:"predicted"`
		Reference DatasetSpec `yaml:"reference"`
	} `yaml:"data"`
	Domain  Domain  `yaml:"domain"`
	Metrics Metrics `yaml:"metrics"`
	Compute Compute `yaml:"compute"`
	Output  Output  `yaml:"output"`
}

// maxConfigSize caps config files at 1MB.
const maxConfigSize = 1 * 1024 * 1024

// Load reads and validates a YAML configuration file. Fields omitted from
// the file keep their defaults, so partial configs are safe.
func Load(path string) (*Config, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".yaml" && ext != ".yml" {
		return nil, fmt.Errorf("config file must have .yaml or .yml extension, got %q", ext)
	}
	info, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if info.Size() > maxConfigSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxConfigSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config YAML: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Default returns a config with the documented defaults filled in.
func Default() *Config {
	cfg := &Config{}
	cfg.Compute.Parallel = true
	cfg.Compute.Workers = 4
	cfg.Compute.ChunkSize = "auto"
	cfg.Output.Dir = "./results"
	cfg.Output.SaveIntermediate = true
	cfg.Output.Formats = []string{"png"}
	cfg.Output.DPI = 300
	return cfg
}

// Validate checks the full configuration. Config-time errors are fatal and
// abort the run before any data is touched.
func (c *Config) Validate() error {
	if c.ProjectName == "" {
		return fmt.Errorf("project_name is required")
	}
	if err := c.Data.Predicted.Validate(); err != nil {
		return fmt.Errorf("data.predicted: %w", err)
	}
	if err := c.Data.Reference.Validate(); err != nil {
		return fmt.Errorf("data.reference: %w", err)
	}
	for name, r := range map[string]Range{
		"domain.lat_range":  c.Domain.Lat,
		"domain.lon_range":  c.Domain.Lon,
		"domain.time_range": c.Domain.Time,
	} {
		if len(r) == 0 {
			continue
		}
		if err := r.validate(name); err != nil {
			return err
		}
	}
	if c.Compute.Workers < 0 {
		return fmt.Errorf("compute.n_workers must not be negative")
	}
	if c.Output.DPI <= 0 {
		return fmt.Errorf("output.dpi must be positive")
	}
	return nil
}
