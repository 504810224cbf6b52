package grid

import (
	"fmt"
	"sort"
	"strings"
)

// Dataset is an insertion-ordered collection of data variables plus their
// coordinate variables. Coordinate variables are keyed by name; a
// one-dimensional coordinate whose name matches its dimension labels that
// axis. Two-dimensional coordinates (curvilinear grids) are carried as-is.
type Dataset struct {
	varNames   []string
	vars       map[string]*DataArray
	coordNames []string
	coords     map[string]*DataArray
}

// NewDataset returns an empty dataset.
func NewDataset() *Dataset {
	return &Dataset{
		vars:   make(map[string]*DataArray),
		coords: make(map[string]*DataArray),
	}
}

// AddVar inserts or replaces a data variable, preserving first-insertion order.
func (ds *Dataset) AddVar(da *DataArray) {
	if _, ok := ds.vars[da.Name]; !ok {
		ds.varNames = append(ds.varNames, da.Name)
	}
	ds.vars[da.Name] = da
}

// AddCoord inserts or replaces a coordinate variable.
func (ds *Dataset) AddCoord(da *DataArray) {
	if _, ok := ds.coords[da.Name]; !ok {
		ds.coordNames = append(ds.coordNames, da.Name)
	}
	ds.coords[da.Name] = da
}

// Var returns the named data variable.
func (ds *Dataset) Var(name string) (*DataArray, bool) {
	da, ok := ds.vars[name]
	return da, ok
}

// VarNames returns data variable names in insertion order.
func (ds *Dataset) VarNames() []string { return append([]string(nil), ds.varNames...) }

// Coord returns the named coordinate variable.
func (ds *Dataset) Coord(name string) (*DataArray, bool) {
	da, ok := ds.coords[name]
	return da, ok
}

// CoordNames returns coordinate variable names in insertion order.
func (ds *Dataset) CoordNames() []string { return append([]string(nil), ds.coordNames...) }

// CoordValues returns the values of a one-dimensional coordinate labeling the
// named axis, or nil if no such coordinate exists.
func (ds *Dataset) CoordValues(dim string) []float64 {
	c, ok := ds.coords[dim]
	if !ok || c.NDim() != 1 {
		return nil
	}
	return c.Values.Elements
}

// Dims returns the union of axis names and lengths across all variables.
func (ds *Dataset) Dims() map[string]int {
	out := make(map[string]int)
	for _, name := range ds.varNames {
		da := ds.vars[name]
		for i, d := range da.Dims {
			out[d] = da.Values.Shape[i]
		}
	}
	return out
}

// DimNames returns the sorted axis names across all variables.
func (ds *Dataset) DimNames() []string {
	dims := ds.Dims()
	names := make([]string, 0, len(dims))
	for d := range dims {
		names = append(names, d)
	}
	sort.Strings(names)
	return names
}

// SizesString renders axis sizes for logs, e.g. "{lat: 10, lon: 10, time: 100}".
func (ds *Dataset) SizesString() string {
	dims := ds.Dims()
	names := ds.DimNames()
	parts := make([]string, 0, len(names))
	for _, d := range names {
		parts = append(parts, fmt.Sprintf("%s: %d", d, dims[d]))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// Select restricts the dataset to the named variables, in the given order.
// A missing variable is an error, propagated rather than masked.
func (ds *Dataset) Select(names []string) (*Dataset, error) {
	out := NewDataset()
	for _, name := range names {
		da, ok := ds.vars[name]
		if !ok {
			return nil, fmt.Errorf("select %q: %w", name, ErrKeyNotFound)
		}
		out.AddVar(da)
	}
	for _, name := range ds.coordNames {
		out.AddCoord(ds.coords[name])
	}
	return out, nil
}

// RenameVars returns a dataset with data variable names substituted per the
// mapping. Names absent from the mapping are unchanged.
func (ds *Dataset) RenameVars(mapping map[string]string) *Dataset {
	out := NewDataset()
	for _, name := range ds.varNames {
		da := ds.vars[name]
		if to, ok := mapping[name]; ok {
			renamed := da.Copy()
			renamed.Name = to
			out.AddVar(renamed)
		} else {
			out.AddVar(da)
		}
	}
	for _, name := range ds.coordNames {
		out.AddCoord(ds.coords[name])
	}
	return out
}

// RenameDims returns a dataset with axis names substituted per the mapping in
// every data and coordinate variable. Coordinate variables named after a
// renamed axis are renamed with it.
func (ds *Dataset) RenameDims(mapping map[string]string) *Dataset {
	out := NewDataset()
	for _, name := range ds.varNames {
		out.AddVar(ds.vars[name].RenameDims(mapping))
	}
	for _, name := range ds.coordNames {
		c := ds.coords[name].RenameDims(mapping)
		if to, ok := mapping[name]; ok {
			c.Name = to
		}
		out.AddCoord(c)
	}
	return out
}

// ISel selects positions along the named axis in every variable carrying it.
// Variables without the axis pass through unchanged.
func (ds *Dataset) ISel(dim string, indices []int) (*Dataset, error) {
	out := NewDataset()
	for _, name := range ds.varNames {
		da := ds.vars[name]
		if !da.HasDim(dim) {
			out.AddVar(da)
			continue
		}
		sel, err := da.ISel(dim, indices)
		if err != nil {
			return nil, err
		}
		out.AddVar(sel)
	}
	for _, name := range ds.coordNames {
		c := ds.coords[name]
		if !c.HasDim(dim) {
			out.AddCoord(c)
			continue
		}
		sel, err := c.ISel(dim, indices)
		if err != nil {
			return nil, err
		}
		out.AddCoord(sel)
	}
	return out, nil
}

// SelRange restricts the named axis to coordinate values inside the closed
// interval [lo, hi] (order-normalized). Label selection outside the coordinate
// extent yields an empty axis, not an error. An axis without a 1-D coordinate
// passes through unchanged.
func (ds *Dataset) SelRange(dim string, lo, hi float64) (*Dataset, error) {
	coords := ds.CoordValues(dim)
	if coords == nil {
		return ds, nil
	}
	if lo > hi {
		lo, hi = hi, lo
	}
	indices := make([]int, 0, len(coords))
	for i, c := range coords {
		if c >= lo && c <= hi {
			indices = append(indices, i)
		}
	}
	return ds.ISel(dim, indices)
}

// Reduce collapses the named axis with fn in every variable carrying it and
// drops the axis coordinate. Variables without the axis pass through.
func (ds *Dataset) Reduce(dim string, fn func(series []float64) float64) (*Dataset, error) {
	out := NewDataset()
	for _, name := range ds.varNames {
		da := ds.vars[name]
		if !da.HasDim(dim) {
			out.AddVar(da)
			continue
		}
		red, err := da.ReduceDim(dim, fn)
		if err != nil {
			return nil, err
		}
		out.AddVar(red)
	}
	for _, name := range ds.coordNames {
		if name == dim || ds.coords[name].HasDim(dim) {
			continue
		}
		out.AddCoord(ds.coords[name])
	}
	return out, nil
}

// SelIndex takes one position along the named axis in every variable carrying
// it and drops the axis (and its coordinate).
func (ds *Dataset) SelIndex(dim string, index int) (*Dataset, error) {
	out := NewDataset()
	for _, name := range ds.varNames {
		da := ds.vars[name]
		if !da.HasDim(dim) {
			out.AddVar(da)
			continue
		}
		sel, err := da.SelIndex(dim, index)
		if err != nil {
			return nil, err
		}
		out.AddVar(sel)
	}
	for _, name := range ds.coordNames {
		if name == dim || ds.coords[name].HasDim(dim) {
			continue
		}
		out.AddCoord(ds.coords[name])
	}
	return out, nil
}
