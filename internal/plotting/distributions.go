package plotting

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/climagination/climeval/internal/grid"
)

// QuantilePlot renders a quantile comparison result as predicted and
// reference curves over the quantile levels.
func QuantilePlot(ds *grid.Dataset, title string) (*plot.Plot, error) {
	levels := ds.CoordValues("quantile")

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "quantile"
	p.Y.Label.Text = "value"
	p.Legend.Top = true

	series := []struct {
		name  string
		color color.RGBA
	}{
		{"predicted", color.RGBA{R: 214, G: 69, B: 65, A: 255}},
		{"reference", color.RGBA{R: 31, G: 119, B: 180, A: 255}},
	}
	for _, s := range series {
		da, ok := ds.Var(s.name)
		if !ok {
			return nil, fmt.Errorf("quantile result is missing %q", s.name)
		}
		if da.NDim() != 1 {
			return nil, fmt.Errorf("quantile variable %q is not 1-D (axes %v)", s.name, da.Dims)
		}
		pts := make(plotter.XYs, len(da.Values.Elements))
		for i, v := range da.Values.Elements {
			x := float64(i)
			if levels != nil && i < len(levels) {
				x = levels[i]
			}
			pts[i] = plotter.XY{X: x, Y: v}
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return nil, fmt.Errorf("failed to build %s line: %w", s.name, err)
		}
		line.Color = s.color
		line.Width = vg.Points(1.5)
		p.Add(line)
		p.Legend.Add(s.name, line)
	}
	return p, nil
}
