package metrics

import (
	"fmt"
	"math"

	"github.com/climagination/climeval/internal/grid"
)

// TemporalAutocorrelation computes the autocorrelation function of each
// series along dim up to maxLag, producing a "lag" axis of maxLag+1 values
// with ACF(0) = 1. Each series is materialized before the computation; the
// ACF is not chunk-parallelizable along its own axis.
func TemporalAutocorrelation(eng grid.Engine, data *grid.DataArray, maxLag int, dim string) (*grid.DataArray, error) {
	if maxLag < 0 {
		return nil, fmt.Errorf("temporal autocorrelation: max lag must not be negative, got %d", maxLag)
	}
	if n := data.Len(dim); n <= maxLag {
		return nil, fmt.Errorf("temporal autocorrelation: max lag %d requires more than %d samples along %q",
			maxLag, n, dim)
	}
	out, err := eng.MapSeries(data, dim, "lag", maxLag+1, acf)
	if err != nil {
		return nil, fmt.Errorf("temporal autocorrelation: %w", err)
	}
	return out, nil
}

// acf fills out[lag] with the lag-autocorrelation of the demeaned series,
// ignoring NaN terms.
func acf(series, out []float64) {
	x := make([]float64, len(series))
	mean := grid.NanMean(series)
	for i, v := range series {
		x[i] = v - mean
	}

	c0 := 0.0
	for _, v := range x {
		if !math.IsNaN(v) {
			c0 += v * v
		}
	}

	for lag := range out {
		if lag == 0 {
			out[0] = 1.0
			continue
		}
		if c0 == 0 {
			out[lag] = math.NaN()
			continue
		}
		sum := 0.0
		for i := 0; i+lag < len(x); i++ {
			a, b := x[i], x[i+lag]
			if math.IsNaN(a) || math.IsNaN(b) {
				continue
			}
			sum += a * b
		}
		out[lag] = sum / c0
	}
}

// LagCoord returns the coordinate values for an ACF result's lag axis.
func LagCoord(maxLag int) []float64 {
	out := make([]float64, maxLag+1)
	for i := range out {
		out[i] = float64(i)
	}
	return out
}
