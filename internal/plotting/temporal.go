package plotting

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/climagination/climeval/internal/grid"
)

// ACFPlot renders an autocorrelation result as the spatial-mean ACF curve
// over lag.
func ACFPlot(da *grid.DataArray, title string) (*plot.Plot, error) {
	if !da.HasDim("lag") {
		return nil, fmt.Errorf("ACF plot needs a lag axis, got %v", da.Dims)
	}

	// Average the ACF over every non-lag axis.
	mean := da
	var err error
	for _, d := range da.Dims {
		if d == "lag" {
			continue
		}
		mean, err = mean.Mean(d)
		if err != nil {
			return nil, fmt.Errorf("failed to average over %q: %w", d, err)
		}
	}

	pts := make(plotter.XYs, len(mean.Values.Elements))
	for i, v := range mean.Values.Elements {
		pts[i] = plotter.XY{X: float64(i), Y: v}
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "lag"
	p.Y.Label.Text = "autocorrelation"

	line, err := plotter.NewLine(pts)
	if err != nil {
		return nil, fmt.Errorf("failed to build ACF line: %w", err)
	}
	line.Color = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	line.Width = vg.Points(1.5)
	p.Add(line)
	return p, nil
}
