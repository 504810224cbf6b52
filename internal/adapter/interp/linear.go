// Package interp provides separable linear regridding of labeled arrays onto
// target coordinates, axis by axis. This is not a genuine 2D surface
// interpolation: it is valid only for coordinate-aligned rectilinear grids.
package interp

import (
	"fmt"
	"math"

	"github.com/climagination/climeval/internal/grid"
)

// AxisMap precomputes, for every target point along one axis, the bracketing
// source indices and the interpolation weight.
type AxisMap struct {
	// For target point k: value = (1-w[k])*src[i0[k]] + w[k]*src[i1[k]].
	// A target outside the source extent has i0[k] == -1 and maps to NaN.
	i0, i1 []int
	w      []float64
}

// BuildAxisMap constructs the interpolation map from source onto target
// coordinates. Source coordinates must be strictly monotonic; descending
// axes are handled by index reversal.
func BuildAxisMap(src, target []float64) (*AxisMap, error) {
	if len(src) < 2 {
		return nil, fmt.Errorf("axis must have at least 2 coordinates, got %d", len(src))
	}

	// Detect orientation, rejecting non-monotonic coordinates.
	ascending := src[1] > src[0]
	for i := 1; i < len(src); i++ {
		if ascending && src[i] <= src[i-1] {
			return nil, fmt.Errorf("coordinates are not strictly monotonic at index %d", i)
		}
		if !ascending && src[i] >= src[i-1] {
			return nil, fmt.Errorf("coordinates are not strictly monotonic at index %d", i)
		}
	}

	at := func(i int) float64 {
		if ascending {
			return src[i]
		}
		return src[len(src)-1-i]
	}
	idx := func(i int) int {
		if ascending {
			return i
		}
		return len(src) - 1 - i
	}

	m := &AxisMap{
		i0: make([]int, len(target)),
		i1: make([]int, len(target)),
		w:  make([]float64, len(target)),
	}
	for k, x := range target {
		// Small tolerance so shared endpoints survive floating point noise.
		const epsilon = 1e-9
		if x < at(0)-epsilon || x > at(len(src)-1)+epsilon {
			m.i0[k] = -1
			continue
		}
		// Find the cell [at(j), at(j+1)] containing x.
		j := 0
		for j < len(src)-2 && x > at(j+1) {
			j++
		}
		x0, x1 := at(j), at(j+1)
		t := (x - x0) / (x1 - x0)
		t = math.Max(0, math.Min(1, t))
		m.i0[k] = idx(j)
		m.i1[k] = idx(j + 1)
		m.w[k] = t
	}
	return m, nil
}

// ArrayTo interpolates the named axis of da from src coordinates onto target
// coordinates. Target points outside the source extent become NaN.
func ArrayTo(da *grid.DataArray, dim string, src, target []float64) (*grid.DataArray, error) {
	if da.Len(dim) != len(src) {
		return nil, fmt.Errorf("axis %q has %d points but %d coordinates", dim, da.Len(dim), len(src))
	}
	m, err := BuildAxisMap(src, target)
	if err != nil {
		return nil, fmt.Errorf("axis %q: %w", dim, err)
	}
	// MapSeries gathers each source series; the output axis keeps its name
	// but takes the target length.
	eng := grid.Engine{Workers: 1}
	return eng.MapSeries(da, dim, dim, len(target), func(series, out []float64) {
		for k := range out {
			if m.i0[k] < 0 {
				out[k] = math.NaN()
				continue
			}
			out[k] = (1-m.w[k])*series[m.i0[k]] + m.w[k]*series[m.i1[k]]
		}
	})
}

// DatasetTo reprojects ds onto the coordinates that `like` carries for the
// given axes, one axis at a time. Axes missing a 1-D coordinate on either
// side, or already sharing identical coordinates, are left untouched.
func DatasetTo(ds, like *grid.Dataset, dims []string) (*grid.Dataset, error) {
	out := ds
	for _, dim := range dims {
		src := out.CoordValues(dim)
		target := like.CoordValues(dim)
		if src == nil || target == nil || floatsEqual(src, target) {
			continue
		}

		next := grid.NewDataset()
		for _, name := range out.VarNames() {
			da, _ := out.Var(name)
			if !da.HasDim(dim) {
				next.AddVar(da)
				continue
			}
			interped, err := ArrayTo(da, dim, src, target)
			if err != nil {
				return nil, fmt.Errorf("interpolate %q: %w", name, err)
			}
			next.AddVar(interped)
		}
		for _, name := range out.CoordNames() {
			c, _ := out.Coord(name)
			if name == dim {
				tc, _ := like.Coord(dim)
				next.AddCoord(tc.Copy())
				continue
			}
			next.AddCoord(c)
		}
		out = next
	}
	return out, nil
}

func floatsEqual(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
