package grid

import (
	"fmt"
	"runtime"
	"sync"
)

// Engine fans independent per-series computations across a bounded worker
// pool. The caller never manages goroutines itself; workers come from the
// evaluation's compute settings. Workers <= 1 runs serially.
type Engine struct {
	Workers int
}

// NewEngine returns an engine with the given worker count, defaulting to the
// number of CPUs when workers <= 0.
func NewEngine(workers int) Engine {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return Engine{Workers: workers}
}

// parallelFor runs fn for every index in [0, n), fanning across the pool.
func (e Engine) parallelFor(n int, fn func(i int)) {
	workers := e.Workers
	if workers < 1 {
		workers = 1
	}
	if workers == 1 || n <= 1 {
		for i := 0; i < n; i++ {
			fn(i)
		}
		return
	}
	if workers > n {
		workers = n
	}
	idx := make(chan int, n)
	for i := 0; i < n; i++ {
		idx <- i
	}
	close(idx)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range idx {
				fn(i)
			}
		}()
	}
	wg.Wait()
}

// MapSeries applies fn to every series along dim, producing outLen values per
// series on a fresh axis named outDim (which replaces dim). Each series is
// gathered into contiguous memory before fn runs, so non-associative
// per-series computation sees fully materialized input.
func (e Engine) MapSeries(da *DataArray, dim, outDim string, outLen int, fn func(series, out []float64)) (*DataArray, error) {
	k := da.axisOf(dim)
	if k < 0 {
		return nil, fmt.Errorf("map series over %q: %w", dim, ErrKeyNotFound)
	}
	outer, n, inner := axisSplit(da.Values.Shape, k)

	shape := append([]int(nil), da.Values.Shape...)
	shape[k] = outLen
	dims := append([]string(nil), da.Dims...)
	dims[k] = outDim
	out := &DataArray{Name: da.Name, Dims: dims, Values: newDense(shape)}

	e.parallelFor(outer*inner, func(p int) {
		o, i := p/inner, p%inner
		series := make([]float64, n)
		result := make([]float64, outLen)
		for j := 0; j < n; j++ {
			series[j] = da.Values.Elements[(o*n+j)*inner+i]
		}
		fn(series, result)
		for j := 0; j < outLen; j++ {
			out.Values.Elements[(o*outLen+j)*inner+i] = result[j]
		}
	})
	return out, nil
}

// Reduce2 applies fn to paired series of a and b along dim, collapsing the
// axis to one value per position. Both arrays must share dims and shape.
func (e Engine) Reduce2(a, b *DataArray, dim string, fn func(x, y []float64) float64) (*DataArray, error) {
	if len(a.Dims) != len(b.Dims) {
		return nil, fmt.Errorf("reduce pair: dimension mismatch %v vs %v", a.Dims, b.Dims)
	}
	for i := range a.Dims {
		if a.Dims[i] != b.Dims[i] || a.Values.Shape[i] != b.Values.Shape[i] {
			return nil, fmt.Errorf("reduce pair: shape mismatch on %q: %d vs %d",
				a.Dims[i], a.Values.Shape[i], b.Values.Shape[i])
		}
	}
	k := a.axisOf(dim)
	if k < 0 {
		return nil, fmt.Errorf("reduce pair over %q: %w", dim, ErrKeyNotFound)
	}
	outer, n, inner := axisSplit(a.Values.Shape, k)

	out := &DataArray{
		Name:   a.Name,
		Dims:   dropAxis(a.Dims, k),
		Values: newDense(dropAxisInt(a.Values.Shape, k)),
	}
	e.parallelFor(outer*inner, func(p int) {
		o, i := p/inner, p%inner
		x := make([]float64, n)
		y := make([]float64, n)
		for j := 0; j < n; j++ {
			x[j] = a.Values.Elements[(o*n+j)*inner+i]
			y[j] = b.Values.Elements[(o*n+j)*inner+i]
		}
		out.Values.Elements[o*inner+i] = fn(x, y)
	})
	return out, nil
}
