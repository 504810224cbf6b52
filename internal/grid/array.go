// Package grid implements labeled N-dimensional arrays for gridded climate
// data: a DataArray couples a dense value block with named dimensions, and a
// Dataset is an ordered collection of DataArrays sharing coordinate variables.
//
// Every operation returns a new value; nothing mutates its receiver's data in
// place, so an original array can safely feed several downstream transforms.
package grid

import (
	"fmt"
	"math"
	"sort"

	"github.com/ctessum/sparse"
	"gonum.org/v1/gonum/stat"
)

// DataArray is an N-dimensional array with named dimensions.
// Values are stored in row-major (C) order.
type DataArray struct {
	Name   string
	Dims   []string
	Values *sparse.DenseArray
}

// NewDataArray creates a DataArray of the given shape filled with zeros.
// len(dims) must equal len(shape). A zero-dimensional array (no dims) holds
// exactly one element.
func NewDataArray(name string, dims []string, shape []int) (*DataArray, error) {
	if len(dims) != len(shape) {
		return nil, fmt.Errorf("dims/shape mismatch: %d names for %d axes", len(dims), len(shape))
	}
	return &DataArray{Name: name, Dims: append([]string(nil), dims...), Values: newDense(shape)}, nil
}

// newDense allocates a dense block for the given shape. sparse.ZerosDense
// takes variadic axis lengths; an empty shape yields a single element.
func newDense(shape []int) *sparse.DenseArray {
	if len(shape) == 0 {
		a := sparse.ZerosDense(1)
		a.Shape = []int{}
		return a
	}
	return sparse.ZerosDense(shape...)
}

// Shape returns the axis lengths.
func (da *DataArray) Shape() []int { return da.Values.Shape }

// NDim returns the number of axes.
func (da *DataArray) NDim() int { return len(da.Dims) }

// Size returns the total element count.
func (da *DataArray) Size() int { return len(da.Values.Elements) }

// HasDim reports whether the array carries the named axis.
func (da *DataArray) HasDim(dim string) bool { return da.axisOf(dim) >= 0 }

// Len returns the length of the named axis, or 0 if absent.
func (da *DataArray) Len(dim string) int {
	if k := da.axisOf(dim); k >= 0 {
		return da.Values.Shape[k]
	}
	return 0
}

func (da *DataArray) axisOf(dim string) int {
	for i, d := range da.Dims {
		if d == dim {
			return i
		}
	}
	return -1
}

// ScalarValue returns the single element of a zero-dimensional array.
func (da *DataArray) ScalarValue() (float64, bool) {
	if da.NDim() == 0 && len(da.Values.Elements) == 1 {
		return da.Values.Elements[0], true
	}
	return 0, false
}

// Copy returns a deep copy.
func (da *DataArray) Copy() *DataArray {
	out := &DataArray{
		Name:   da.Name,
		Dims:   append([]string(nil), da.Dims...),
		Values: newDense(da.Values.Shape),
	}
	copy(out.Values.Elements, da.Values.Elements)
	return out
}

// RenameDims returns a copy with dimension names substituted per the mapping.
// Names absent from the mapping are unchanged.
func (da *DataArray) RenameDims(mapping map[string]string) *DataArray {
	out := da.Copy()
	for i, d := range out.Dims {
		if to, ok := mapping[d]; ok {
			out.Dims[i] = to
		}
	}
	return out
}

// axisSplit decomposes the shape around axis k into [outer, n, inner] so that
// the flat index of position (o, j, i) is (o*n+j)*inner + i.
func axisSplit(shape []int, k int) (outer, n, inner int) {
	outer, inner = 1, 1
	for i := 0; i < k; i++ {
		outer *= shape[i]
	}
	n = shape[k]
	for i := k + 1; i < len(shape); i++ {
		inner *= shape[i]
	}
	return outer, n, inner
}

func dropAxis(s []string, k int) []string {
	out := make([]string, 0, len(s)-1)
	out = append(out, s[:k]...)
	return append(out, s[k+1:]...)
}

func dropAxisInt(s []int, k int) []int {
	out := make([]int, 0, len(s)-1)
	out = append(out, s[:k]...)
	return append(out, s[k+1:]...)
}

// ReduceDim collapses the named axis with fn, which receives each series
// along that axis. The axis is removed from the output.
func (da *DataArray) ReduceDim(dim string, fn func(series []float64) float64) (*DataArray, error) {
	k := da.axisOf(dim)
	if k < 0 {
		return nil, fmt.Errorf("reduce %q: %w", dim, ErrKeyNotFound)
	}
	outer, n, inner := axisSplit(da.Values.Shape, k)
	out := &DataArray{
		Name:   da.Name,
		Dims:   dropAxis(da.Dims, k),
		Values: newDense(dropAxisInt(da.Values.Shape, k)),
	}
	series := make([]float64, n)
	for o := 0; o < outer; o++ {
		for i := 0; i < inner; i++ {
			for j := 0; j < n; j++ {
				series[j] = da.Values.Elements[(o*n+j)*inner+i]
			}
			out.Values.Elements[o*inner+i] = fn(series)
		}
	}
	return out, nil
}

// Mean reduces the named axes by the NaN-skipping arithmetic mean. With no
// axes given, every axis is reduced and the result is zero-dimensional.
func (da *DataArray) Mean(dims ...string) (*DataArray, error) {
	if len(dims) == 0 {
		dims = append([]string(nil), da.Dims...)
	}
	out := da
	var err error
	for _, d := range dims {
		out, err = out.ReduceDim(d, NanMean)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Median reduces the named axis by the NaN-skipping median.
func (da *DataArray) Median(dim string) (*DataArray, error) {
	return da.ReduceDim(dim, nanMedian)
}

// ISel selects positions along the named axis, preserving the axis with the
// new length. Indices must be within range.
func (da *DataArray) ISel(dim string, indices []int) (*DataArray, error) {
	k := da.axisOf(dim)
	if k < 0 {
		return nil, fmt.Errorf("isel %q: %w", dim, ErrKeyNotFound)
	}
	outer, n, inner := axisSplit(da.Values.Shape, k)
	for _, idx := range indices {
		if idx < 0 || idx >= n {
			return nil, fmt.Errorf("isel %q: index %d out of range [0, %d)", dim, idx, n)
		}
	}
	shape := append([]int(nil), da.Values.Shape...)
	shape[k] = len(indices)
	out := &DataArray{
		Name:   da.Name,
		Dims:   append([]string(nil), da.Dims...),
		Values: newDense(shape),
	}
	m := len(indices)
	for o := 0; o < outer; o++ {
		for jj, j := range indices {
			copy(out.Values.Elements[(o*m+jj)*inner:(o*m+jj+1)*inner],
				da.Values.Elements[(o*n+j)*inner:(o*n+j)*inner+inner])
		}
	}
	return out, nil
}

// SelIndex takes a single position along the named axis and removes the axis.
func (da *DataArray) SelIndex(dim string, index int) (*DataArray, error) {
	sel, err := da.ISel(dim, []int{index})
	if err != nil {
		return nil, err
	}
	k := sel.axisOf(dim)
	sel.Dims = dropAxis(sel.Dims, k)
	sel.Values.Shape = dropAxisInt(sel.Values.Shape, k)
	return sel, nil
}

// Sub returns the elementwise difference da - other. Both arrays must share
// dimension names (in order) and shape.
func (da *DataArray) Sub(other *DataArray) (*DataArray, error) {
	if len(da.Dims) != len(other.Dims) {
		return nil, fmt.Errorf("subtract: dimension mismatch %v vs %v", da.Dims, other.Dims)
	}
	for i := range da.Dims {
		if da.Dims[i] != other.Dims[i] || da.Values.Shape[i] != other.Values.Shape[i] {
			return nil, fmt.Errorf("subtract: shape mismatch on %q: %d vs %d",
				da.Dims[i], da.Values.Shape[i], other.Values.Shape[i])
		}
	}
	out := da.Copy()
	for i, v := range other.Values.Elements {
		out.Values.Elements[i] -= v
	}
	return out, nil
}

// Quantile reduces the named axes to the given quantile levels. The output
// carries a leading "quantile" axis of len(qs).
func (da *DataArray) Quantile(qs []float64, dims []string) (*DataArray, error) {
	if len(dims) == 0 {
		dims = append([]string(nil), da.Dims...)
	}
	// Each quantile level is an independent reduction over the same axes.
	outs := make([]*DataArray, len(qs))
	for qi, q := range qs {
		red, err := da.reduceDims(dims, func(s []float64) float64 { return nanQuantile(q, s) })
		if err != nil {
			return nil, err
		}
		outs[qi] = red
	}
	base := outs[0]
	shape := append([]int{len(qs)}, base.Values.Shape...)
	out := &DataArray{
		Name:   da.Name,
		Dims:   append([]string{"quantile"}, base.Dims...),
		Values: newDense(shape),
	}
	per := len(base.Values.Elements)
	for qi, o := range outs {
		copy(out.Values.Elements[qi*per:(qi+1)*per], o.Values.Elements)
	}
	return out, nil
}

// reduceDims collapses several axes at once, handing fn the full sample set
// across those axes for every remaining position.
func (da *DataArray) reduceDims(dims []string, fn func(samples []float64) float64) (*DataArray, error) {
	keep := make([]string, 0, len(da.Dims))
	keepShape := make([]int, 0, len(da.Dims))
	reduced := make(map[string]bool, len(dims))
	for _, d := range dims {
		if !da.HasDim(d) {
			return nil, fmt.Errorf("reduce %q: %w", d, ErrKeyNotFound)
		}
		reduced[d] = true
	}
	for i, d := range da.Dims {
		if !reduced[d] {
			keep = append(keep, d)
			keepShape = append(keepShape, da.Values.Shape[i])
		}
	}
	out := &DataArray{Name: da.Name, Dims: keep, Values: newDense(keepShape)}
	nKeep := len(out.Values.Elements)
	nRed := len(da.Values.Elements) / max(nKeep, 1)
	buckets := make([][]float64, nKeep)
	for i := range buckets {
		buckets[i] = make([]float64, 0, nRed)
	}
	// Walk every element once, routing it to the bucket of its kept position.
	idx := make([]int, len(da.Dims))
	keptStride := make([]int, len(da.Dims))
	stride := 1
	for i := len(da.Dims) - 1; i >= 0; i-- {
		if !reduced[da.Dims[i]] {
			keptStride[i] = stride
			stride *= da.Values.Shape[i]
		}
	}
	for flat := range da.Values.Elements {
		kept := 0
		for i := range idx {
			if !reduced[da.Dims[i]] {
				kept += idx[i] * keptStride[i]
			}
		}
		buckets[kept] = append(buckets[kept], da.Values.Elements[flat])
		for i := len(idx) - 1; i >= 0; i-- {
			idx[i]++
			if idx[i] < da.Values.Shape[i] {
				break
			}
			idx[i] = 0
		}
	}
	for i, b := range buckets {
		out.Values.Elements[i] = fn(b)
	}
	return out, nil
}

// NanMean is the arithmetic mean ignoring NaNs. All-NaN input yields NaN.
func NanMean(s []float64) float64 {
	sum, n := 0.0, 0
	for _, v := range s {
		if !math.IsNaN(v) {
			sum += v
			n++
		}
	}
	if n == 0 {
		return math.NaN()
	}
	return sum / float64(n)
}

func nanMedian(s []float64) float64 { return nanQuantile(0.5, s) }

// nanQuantile computes the q-quantile ignoring NaNs, with linear
// interpolation between order statistics.
func nanQuantile(q float64, s []float64) float64 {
	clean := make([]float64, 0, len(s))
	for _, v := range s {
		if !math.IsNaN(v) {
			clean = append(clean, v)
		}
	}
	if len(clean) == 0 {
		return math.NaN()
	}
	sort.Float64s(clean)
	return stat.Quantile(q, stat.LinInterp, clean, nil)
}
