// Package metrics implements the evaluation metrics computed over aligned
// predicted/reference arrays: marginal (distribution), spatial, and temporal.
package metrics

import (
	"fmt"

	"github.com/climagination/climeval/internal/grid"
)

// DefaultQuantiles are the quantile levels compared when none are configured.
var DefaultQuantiles = []float64{0.01, 0.05, 0.25, 0.5, 0.75, 0.95, 0.99}

// latDimNames and lonDimNames match the axis names recognized as spatial by
// the dimension normalizer's candidate lists.
var (
	latDimNames = map[string]bool{"lat": true, "latitude": true, "y": true, "rlat": true}
	lonDimNames = map[string]bool{"lon": true, "longitude": true, "x": true, "rlon": true}
)

// spatialDims returns the array's spatial axis names.
func spatialDims(da *grid.DataArray) []string {
	var out []string
	for _, d := range da.Dims {
		if latDimNames[d] || lonDimNames[d] {
			out = append(out, d)
		}
	}
	return out
}

// Bias computes the mean of pred - ref over the given axes. With no axes
// given, every axis is reduced; the full reduction tolerates a shape mismatch
// between the two arrays by differencing the global means instead.
func Bias(pred, ref *grid.DataArray, dims []string) (*grid.DataArray, error) {
	diff, err := pred.Sub(ref)
	if err != nil {
		if len(dims) > 0 {
			return nil, fmt.Errorf("bias: %w", err)
		}
		pm, merr := pred.Mean()
		if merr != nil {
			return nil, fmt.Errorf("bias: %w", merr)
		}
		rm, merr := ref.Mean()
		if merr != nil {
			return nil, fmt.Errorf("bias: %w", merr)
		}
		pv, _ := pm.ScalarValue()
		rv, _ := rm.ScalarValue()
		out, _ := grid.NewDataArray(pred.Name, nil, nil)
		out.Values.Elements[0] = pv - rv
		return out, nil
	}
	return diff.Mean(dims...)
}

// QuantileComparison compares predicted and reference quantiles over the
// time and spatial axes. The result carries predicted, reference, and
// difference variables along a "quantile" axis.
func QuantileComparison(pred, ref *grid.DataArray, quantiles []float64) (*grid.Dataset, error) {
	if len(quantiles) == 0 {
		quantiles = DefaultQuantiles
	}

	var reduce []string
	if pred.HasDim("time") {
		reduce = append(reduce, "time")
	}
	reduce = append(reduce, spatialDims(pred)...)

	pq, err := pred.Quantile(quantiles, reduce)
	if err != nil {
		return nil, fmt.Errorf("quantile comparison: %w", err)
	}
	rq, err := ref.Quantile(quantiles, reduce)
	if err != nil {
		return nil, fmt.Errorf("quantile comparison: %w", err)
	}
	diff, err := pq.Sub(rq)
	if err != nil {
		return nil, fmt.Errorf("quantile comparison: %w", err)
	}

	pq.Name = "predicted"
	rq.Name = "reference"
	diff.Name = "difference"

	out := grid.NewDataset()
	out.AddVar(pq)
	out.AddVar(rq)
	out.AddVar(diff)

	qc, err := grid.NewDataArray("quantile", []string{"quantile"}, []int{len(quantiles)})
	if err != nil {
		return nil, err
	}
	copy(qc.Values.Elements, quantiles)
	out.AddCoord(qc)
	return out, nil
}
