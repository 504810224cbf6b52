package metrics

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/climagination/climeval/internal/grid"
)

// SpatialCorrelation computes the Pearson correlation between predicted and
// reference at each spatial point over the given axis (typically time),
// yielding a spatial map of coefficients.
func SpatialCorrelation(eng grid.Engine, pred, ref *grid.DataArray, dim string) (*grid.DataArray, error) {
	out, err := eng.Reduce2(pred, ref, dim, nanCorrelation)
	if err != nil {
		return nil, fmt.Errorf("spatial correlation: %w", err)
	}
	return out, nil
}

// nanCorrelation is the Pearson correlation over pairs where both values are
// finite. Fewer than two valid pairs yields NaN.
func nanCorrelation(x, y []float64) float64 {
	xs := make([]float64, 0, len(x))
	ys := make([]float64, 0, len(y))
	for i := range x {
		if math.IsNaN(x[i]) || math.IsNaN(y[i]) {
			continue
		}
		xs = append(xs, x[i])
		ys = append(ys, y[i])
	}
	if len(xs) < 2 {
		return math.NaN()
	}
	return stat.Correlation(xs, ys, nil)
}
