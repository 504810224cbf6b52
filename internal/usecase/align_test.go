package usecase

import (
	"math"
	"testing"

	"github.com/climagination/climeval/internal/config"
	"github.com/climagination/climeval/internal/grid"
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

func loaded(t *testing.T, role Role, ds *grid.Dataset) *Loaded {
	t.Helper()
	return &Loaded{Data: ds, Role: role}
}

// predicted and reference on the same 2-point lat axis.
func matchingPair(t *testing.T) (*Loaded, *Loaded) {
	t.Helper()
	mk := func(v0, v1 float64) *grid.Dataset {
		ds := grid.NewDataset()
		ds.AddVar(mkArray(t, "tas", []string{"lat"}, []int{2}, []float64{v0, v1}))
		ds.AddCoord(mkArray(t, "lat", []string{"lat"}, []int{2}, []float64{45, 46}))
		return ds
	}
	return loaded(t, RolePredicted, mk(1, 2)), loaded(t, RoleReference, mk(3, 4))
}

func TestAlignDatasets_AlreadyAligned(t *testing.T) {
	pred, ref := matchingPair(t)

	got := AlignDatasets(pred, ref)
	if !got.Aligned {
		t.Fatalf("expected aligned, reason: %s", got.Reason)
	}
	da, _ := got.Ref.Data.Var("tas")
	if da.Values.Elements[0] != 3 {
		t.Fatal("already-aligned reference must pass through untouched")
	}
}

func TestAlignDatasets_RenameApplied(t *testing.T) {
	pred, ref := matchingPair(t)
	// Reference names the variable t2m; the mapping restores tas.
	da, _ := ref.Data.Var("tas")
	renamed := da.Copy()
	renamed.Name = "t2m"
	refDs := grid.NewDataset()
	refDs.AddVar(renamed)
	c, _ := ref.Data.Coord("lat")
	refDs.AddCoord(c)
	ref = &Loaded{Data: refDs, Role: RoleReference,
		Spec: config.DatasetSpec{Rename: map[string]string{"t2m": "tas"}}}

	got := AlignDatasets(pred, ref)
	if !got.Aligned {
		t.Fatalf("expected aligned, reason: %s", got.Reason)
	}
	if _, ok := got.Ref.Data.Var("tas"); !ok {
		t.Fatalf("reference variables = %v, want [tas]", got.Ref.Data.VarNames())
	}
}

func TestAlignDatasets_CommonVariablesOnly(t *testing.T) {
	pred, ref := matchingPair(t)
	extra := grid.NewDataset()
	for _, name := range pred.Data.VarNames() {
		da, _ := pred.Data.Var(name)
		extra.AddVar(da)
	}
	extra.AddVar(mkArray(t, "orog_derived", []string{"lat"}, []int{2}, []float64{0, 0}))
	c, _ := pred.Data.Coord("lat")
	extra.AddCoord(c)
	pred = &Loaded{Data: extra, Role: RolePredicted}

	got := AlignDatasets(pred, ref)
	names := got.Pred.Data.VarNames()
	if len(names) != 1 || names[0] != "tas" {
		t.Fatalf("common variables = %v, want [tas]", names)
	}
}

func TestAlignDatasets_InterpolatesReference(t *testing.T) {
	// Predicted on lat {0, 1, 2}; reference on lat {0, 2} with values 0, 20.
	predDs := grid.NewDataset()
	predDs.AddVar(mkArray(t, "tas", []string{"lat"}, []int{3}, []float64{0, 0, 0}))
	predDs.AddCoord(mkArray(t, "lat", []string{"lat"}, []int{3}, []float64{0, 1, 2}))

	refDs := grid.NewDataset()
	refDs.AddVar(mkArray(t, "tas", []string{"lat"}, []int{2}, []float64{0, 20}))
	refDs.AddCoord(mkArray(t, "lat", []string{"lat"}, []int{2}, []float64{0, 2}))

	got := AlignDatasets(loaded(t, RolePredicted, predDs), loaded(t, RoleReference, refDs))
	if !got.Aligned {
		t.Fatalf("expected aligned via interpolation, reason: %s", got.Reason)
	}
	da, _ := got.Ref.Data.Var("tas")
	if da.Len("lat") != 3 {
		t.Fatalf("reference lat length = %d, want 3", da.Len("lat"))
	}
	if math.Abs(da.Values.Elements[1]-10) > 1e-9 {
		t.Fatalf("midpoint = %v, want 10", da.Values.Elements[1])
	}
	coords := got.Ref.Data.CoordValues("lat")
	if len(coords) != 3 || coords[1] != 1 {
		t.Fatalf("reference coords = %v, want predicted coords", coords)
	}
}

func TestAlignDatasets_CurvilinearNeverErrors(t *testing.T) {
	predDs := grid.NewDataset()
	predDs.AddVar(mkArray(t, "tas", []string{"lat", "lon"}, []int{2, 2}, []float64{1, 2, 3, 4}))
	predDs.AddCoord(mkArray(t, "lat", []string{"lat"}, []int{2}, []float64{45, 46}))
	predDs.AddCoord(mkArray(t, "lon", []string{"lon"}, []int{2}, []float64{10, 11}))

	// Reference on a rotated grid: 2-D lat coordinate, different axis sizes.
	refDs := grid.NewDataset()
	refDs.AddVar(mkArray(t, "tas", []string{"lat", "lon"}, []int{3, 2},
		[]float64{1, 2, 3, 4, 5, 6}))
	refDs.AddCoord(mkArray(t, "lat", []string{"lat", "lon"}, []int{3, 2},
		[]float64{45, 45.1, 46, 46.1, 47, 47.1}))

	got := AlignDatasets(loaded(t, RolePredicted, predDs), loaded(t, RoleReference, refDs))
	if got.Aligned {
		t.Fatal("curvilinear reference must not be auto-aligned")
	}
	if got.Reason == "" {
		t.Fatal("degraded alignment must carry a reason")
	}
	// Both datasets still usable.
	if _, ok := got.Ref.Data.Var("tas"); !ok {
		t.Fatal("reference data lost during degraded alignment")
	}
}

func TestGridsMatch_LengthOnlyFallback(t *testing.T) {
	// Same axis lengths but different coordinate values: accepted, loudly.
	a := grid.NewDataset()
	a.AddVar(mkArray(t, "tas", []string{"lat"}, []int{2}, []float64{1, 2}))
	a.AddCoord(mkArray(t, "lat", []string{"lat"}, []int{2}, []float64{45, 46}))

	b := grid.NewDataset()
	b.AddVar(mkArray(t, "tas", []string{"lat"}, []int{2}, []float64{1, 2}))

	if !gridsMatch(a, b) {
		t.Fatal("equal lengths without reference coordinates should match")
	}
}

func TestAlignDatasets_UninterpolatableAxisStaysUnaligned(t *testing.T) {
	// A length mismatch on an axis without coordinate variables cannot be
	// interpolated away; the grids come back as-is, not claimed aligned.
	predDs := grid.NewDataset()
	predDs.AddVar(mkArray(t, "tas", []string{"lat"}, []int{2}, []float64{1, 2}))
	refDs := grid.NewDataset()
	refDs.AddVar(mkArray(t, "tas", []string{"lat"}, []int{3}, []float64{3, 4, 5}))

	got := AlignDatasets(loaded(t, RolePredicted, predDs), loaded(t, RoleReference, refDs))
	if got.Aligned {
		t.Fatal("mismatched lengths with no coordinates must not be reported as aligned")
	}
	if got.Reason == "" {
		t.Fatal("degraded alignment must carry a reason")
	}
	da, _ := got.Ref.Data.Var("tas")
	if da.Len("lat") != 3 {
		t.Fatalf("reference lat length = %d, want 3 (passed through untouched)", da.Len("lat"))
	}
}

func TestGridsMatch_DifferentAxes(t *testing.T) {
	a := grid.NewDataset()
	a.AddVar(mkArray(t, "tas", []string{"lat"}, []int{2}, []float64{1, 2}))
	b := grid.NewDataset()
	b.AddVar(mkArray(t, "tas", []string{"lon"}, []int{2}, []float64{1, 2}))
	if gridsMatch(a, b) {
		t.Fatal("different axis names must not match")
	}
}
