// Package results accumulates named metric outcomes for one evaluation run
// and persists them: NetCDF files for array results, a YAML summary for
// scalars, and a SQLite catalog of runs.
package results

import (
	"fmt"
	"log"

	"github.com/climagination/climeval/internal/grid"
)

// Outcome is a single metric result: either a bare scalar or an array-valued
// dataset, never both.
type Outcome struct {
	Name     string
	Scalar   *float64
	Array    *grid.Dataset
	Metadata map[string]string
}

// IsScalar reports whether the outcome is a bare number.
func (o *Outcome) IsScalar() bool { return o.Scalar != nil }

// IsSpatial reports whether the outcome's value carries at least one
// recognized spatial axis.
func (o *Outcome) IsSpatial() bool {
	if o.Array == nil {
		return false
	}
	for _, name := range o.Array.VarNames() {
		da, _ := o.Array.Var(name)
		for _, d := range da.Dims {
			if grid.IsSpatialDim(d) {
				return true
			}
		}
	}
	return false
}

// Set is an insertion-ordered collection of metric outcomes owned by one
// evaluation run.
type Set struct {
	order   []string
	entries map[string]*Outcome
}

// NewSet returns an empty result set.
func NewSet() *Set {
	return &Set{entries: make(map[string]*Outcome)}
}

// Add inserts or overwrites the named entry; the last write wins and the
// first insertion position is kept. Accepted values are float64,
// *grid.DataArray, and *grid.Dataset; a zero-dimensional array is stored as
// a plain number.
func (s *Set) Add(name string, value any, metadata map[string]string) error {
	if metadata == nil {
		metadata = make(map[string]string)
	}
	o := &Outcome{Name: name, Metadata: metadata}
	switch v := value.(type) {
	case float64:
		o.Scalar = &v
	case *grid.DataArray:
		if sv, ok := v.ScalarValue(); ok {
			o.Scalar = &sv
		} else {
			ds := grid.NewDataset()
			ds.AddVar(v)
			o.Array = ds
		}
	case *grid.Dataset:
		o.Array = v
	default:
		return fmt.Errorf("add %q: unsupported value type %T", name, value)
	}
	if _, ok := s.entries[name]; !ok {
		s.order = append(s.order, name)
	}
	s.entries[name] = o
	log.Printf("Computed metric: %s", name)
	return nil
}

// Get returns the named outcome.
func (s *Set) Get(name string) (*Outcome, bool) {
	o, ok := s.entries[name]
	return o, ok
}

// Names returns entry names in insertion order.
func (s *Set) Names() []string { return append([]string(nil), s.order...) }

// Len returns the number of entries.
func (s *Set) Len() int { return len(s.order) }

// Summary returns the scalar entries only.
func (s *Set) Summary() map[string]float64 {
	out := make(map[string]float64)
	for name, o := range s.entries {
		if o.IsScalar() {
			out[name] = *o.Scalar
		}
	}
	return out
}

// SpatialResults returns entries whose value carries a spatial axis, in
// insertion order.
func (s *Set) SpatialResults() []*Outcome {
	var out []*Outcome
	for _, name := range s.order {
		if o := s.entries[name]; o.IsSpatial() {
			out = append(out, o)
		}
	}
	return out
}
