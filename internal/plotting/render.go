// Package plotting renders comparison figures for metric results: spatial
// maps, distribution comparisons, and autocorrelation curves.
package plotting

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/climagination/climeval/internal/grid"
	"github.com/climagination/climeval/internal/results"
)

// SavePNG writes the plot as a PNG at the given resolution.
func SavePNG(p *plot.Plot, path string, dpi int) error {
	c := vgimg.NewWith(
		vgimg.UseWH(8*vg.Inch, 6*vg.Inch),
		vgimg.UseDPI(dpi),
	)
	p.Draw(draw.New(c))

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create plot file: %w", err)
	}
	defer f.Close()

	png := vgimg.PngCanvas{Canvas: c}
	if _, err := png.WriteTo(f); err != nil {
		return fmt.Errorf("failed to write plot: %w", err)
	}
	return nil
}

// RenderAll renders a figure for every plottable outcome in the set: heat
// maps for 2-D spatial results, quantile comparison curves, and ACF curves.
// Only the png format is implemented; other configured formats are logged
// and skipped.
func RenderAll(set *results.Set, dir, runName string, formats []string, dpi int) error {
	renderPNG := false
	for _, f := range formats {
		if f == "png" {
			renderPNG = true
		} else {
			log.Printf("Skipping unsupported plot format %q", f)
		}
	}
	if !renderPNG {
		return nil
	}

	for _, name := range set.Names() {
		o, _ := set.Get(name)
		if o.Array == nil {
			continue
		}
		p, ok, err := plotFor(name, o)
		if err != nil {
			return fmt.Errorf("failed to plot %s: %w", name, err)
		}
		if !ok {
			continue
		}
		path := filepath.Join(dir, fmt.Sprintf("%s_%s.png", runName, name))
		if err := SavePNG(p, path, dpi); err != nil {
			return fmt.Errorf("failed to save plot for %s: %w", name, err)
		}
		log.Printf("Saved plot %s", filepath.Base(path))
	}
	return nil
}

// plotFor picks a figure type for an outcome, or reports that it has none.
func plotFor(name string, o *results.Outcome) (*plot.Plot, bool, error) {
	if strings.HasPrefix(name, "quantiles_") {
		p, err := QuantilePlot(o.Array, name)
		if err != nil {
			return nil, false, err
		}
		return p, true, nil
	}

	varNames := o.Array.VarNames()
	if len(varNames) != 1 {
		return nil, false, nil
	}
	da, _ := o.Array.Var(varNames[0])

	if da.HasDim("lag") {
		p, err := ACFPlot(da, name)
		if err != nil {
			return nil, false, err
		}
		return p, true, nil
	}
	if da.NDim() == 2 && da.HasDim(grid.DimLat) && da.HasDim(grid.DimLon) {
		p, err := SpatialMap(o.Array, varNames[0], name)
		if err != nil {
			return nil, false, err
		}
		return p, true, nil
	}
	return nil, false, nil
}
