package plotting

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"

	"github.com/climagination/climeval/internal/grid"
)

// spatialGrid adapts a 2-D lat/lon DataArray to plotter.GridXYZ.
type spatialGrid struct {
	da       *grid.DataArray
	lons     []float64
	lats     []float64
	latFirst bool
}

func (g spatialGrid) Dims() (c, r int) { return len(g.lons), len(g.lats) }

func (g spatialGrid) X(c int) float64 { return g.lons[c] }

func (g spatialGrid) Y(r int) float64 { return g.lats[r] }

func (g spatialGrid) Z(c, r int) float64 {
	if g.latFirst {
		return g.da.Values.Elements[r*len(g.lons)+c]
	}
	return g.da.Values.Elements[c*len(g.lats)+r]
}

// SpatialMap renders a 2-D lat/lon result as a heat map.
func SpatialMap(ds *grid.Dataset, varName, title string) (*plot.Plot, error) {
	da, ok := ds.Var(varName)
	if !ok {
		return nil, fmt.Errorf("variable %q not in result", varName)
	}
	if da.NDim() != 2 || !da.HasDim(grid.DimLat) || !da.HasDim(grid.DimLon) {
		return nil, fmt.Errorf("spatial map needs 2-D lat/lon data, got axes %v", da.Dims)
	}

	lats := ds.CoordValues(grid.DimLat)
	lons := ds.CoordValues(grid.DimLon)
	if lats == nil {
		lats = indexCoords(da.Len(grid.DimLat))
	}
	if lons == nil {
		lons = indexCoords(da.Len(grid.DimLon))
	}

	g := spatialGrid{da: da, lons: lons, lats: lats, latFirst: da.Dims[0] == grid.DimLat}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "longitude"
	p.Y.Label.Text = "latitude"

	pal := moreland.SmoothBlueRed().Palette(255)
	hm := plotter.NewHeatMap(g, pal)
	p.Add(hm)
	return p, nil
}

func indexCoords(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = float64(i)
	}
	return out
}
