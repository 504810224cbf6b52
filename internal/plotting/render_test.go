package plotting

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/climagination/climeval/internal/grid"
	"github.com/climagination/climeval/internal/results"
)

func mkArray(t *testing.T, name string, dims []string, shape []int, values []float64) *grid.DataArray {
	t.Helper()
	da, err := grid.NewDataArray(name, dims, shape)
	if err != nil {
		t.Fatalf("NewDataArray: %v", err)
	}
	copy(da.Values.Elements, values)
	return da
}

func quantileResult(t *testing.T) *grid.Dataset {
	t.Helper()
	ds := grid.NewDataset()
	ds.AddVar(mkArray(t, "predicted", []string{"quantile"}, []int{3}, []float64{1, 2, 3}))
	ds.AddVar(mkArray(t, "reference", []string{"quantile"}, []int{3}, []float64{1.1, 2.1, 3.1}))
	ds.AddVar(mkArray(t, "difference", []string{"quantile"}, []int{3}, []float64{-0.1, -0.1, -0.1}))
	ds.AddCoord(mkArray(t, "quantile", []string{"quantile"}, []int{3}, []float64{0.25, 0.5, 0.75}))
	return ds
}

func spatialResult(t *testing.T) *grid.Dataset {
	t.Helper()
	ds := grid.NewDataset()
	ds.AddVar(mkArray(t, "tas", []string{"lat", "lon"}, []int{2, 3},
		[]float64{-1, 0, 1, 1, 0, -1}))
	ds.AddCoord(mkArray(t, "lat", []string{"lat"}, []int{2}, []float64{45, 46}))
	ds.AddCoord(mkArray(t, "lon", []string{"lon"}, []int{3}, []float64{10, 11, 12}))
	return ds
}

func TestRenderAll(t *testing.T) {
	set := results.NewSet()
	if err := set.Add("bias_tas_global", 0.5, nil); err != nil {
		t.Fatal(err)
	}
	if err := set.Add("quantiles_tas", quantileResult(t), nil); err != nil {
		t.Fatal(err)
	}
	if err := set.Add("bias_tas", spatialResult(t), nil); err != nil {
		t.Fatal(err)
	}
	acf := grid.NewDataset()
	acf.AddVar(mkArray(t, "tas", []string{"lag", "lat"}, []int{3, 2},
		[]float64{1, 1, 0.5, 0.4, 0.2, 0.1}))
	acf.AddCoord(mkArray(t, "lag", []string{"lag"}, []int{3}, []float64{0, 1, 2}))
	if err := set.Add("temporal_autocorrelation_tas", acf, nil); err != nil {
		t.Fatal(err)
	}

	dir := t.TempDir()
	if err := RenderAll(set, dir, "run1", []string{"png"}, 100); err != nil {
		t.Fatalf("RenderAll: %v", err)
	}

	for _, name := range []string{
		"run1_quantiles_tas.png",
		"run1_bias_tas.png",
		"run1_temporal_autocorrelation_tas.png",
	} {
		info, err := os.Stat(filepath.Join(dir, name))
		if err != nil {
			t.Fatalf("expected plot %s: %v", name, err)
		}
		if info.Size() == 0 {
			t.Fatalf("plot %s is empty", name)
		}
	}
	// Scalar entry produces no figure.
	if _, err := os.Stat(filepath.Join(dir, "run1_bias_tas_global.png")); err == nil {
		t.Fatal("scalar outcome must not produce a plot")
	}
}

func TestRenderAll_UnsupportedFormatSkipped(t *testing.T) {
	set := results.NewSet()
	if err := set.Add("bias_tas", spatialResult(t), nil); err != nil {
		t.Fatal(err)
	}

	dir := t.TempDir()
	if err := RenderAll(set, dir, "run1", []string{"pdf"}, 100); err != nil {
		t.Fatalf("RenderAll: %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Fatalf("unsupported format must render nothing, got %v", entries)
	}
}

func TestSpatialMap_Validation(t *testing.T) {
	ds := grid.NewDataset()
	ds.AddVar(mkArray(t, "acf", []string{"lag"}, []int{2}, []float64{1, 0.5}))
	if _, err := SpatialMap(ds, "acf", "t"); err == nil {
		t.Fatal("expected error for non-spatial data")
	}
	if _, err := SpatialMap(ds, "missing", "t"); err == nil {
		t.Fatal("expected error for missing variable")
	}
}

func TestQuantilePlot_MissingSeries(t *testing.T) {
	ds := grid.NewDataset()
	ds.AddVar(mkArray(t, "predicted", []string{"quantile"}, []int{2}, []float64{1, 2}))
	if _, err := QuantilePlot(ds, "t"); err == nil {
		t.Fatal("expected error when reference series is absent")
	}
}

func TestACFPlot_AveragesNonLagAxes(t *testing.T) {
	da := mkArray(t, "tas", []string{"lag", "lat"}, []int{2, 2},
		[]float64{1, 1, 0.5, 0.3})
	if _, err := ACFPlot(da, "t"); err != nil {
		t.Fatalf("ACFPlot: %v", err)
	}
	da2 := mkArray(t, "tas", []string{"time"}, []int{2}, []float64{1, 2})
	if _, err := ACFPlot(da2, "t"); err == nil {
		t.Fatal("expected error without a lag axis")
	}
}
