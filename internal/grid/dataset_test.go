package grid

import (
	"errors"
	"testing"
)

// helper to build a dataset with one variable over a coordinate axis.
func mkDataset(t *testing.T, varName, dim string, coords, values []float64) *Dataset {
	t.Helper()
	ds := NewDataset()
	ds.AddVar(mkArray(t, varName, []string{dim}, []int{len(values)}, values))
	if coords != nil {
		ds.AddCoord(mkArray(t, dim, []string{dim}, []int{len(coords)}, coords))
	}
	return ds
}

func TestSelect_KeepsOrderAndCoords(t *testing.T) {
	ds := NewDataset()
	ds.AddVar(mkArray(t, "tas", []string{"lat"}, []int{2}, []float64{1, 2}))
	ds.AddVar(mkArray(t, "pr", []string{"lat"}, []int{2}, []float64{3, 4}))
	ds.AddCoord(mkArray(t, "lat", []string{"lat"}, []int{2}, []float64{10, 20}))

	got, err := ds.Select([]string{"pr"})
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	names := got.VarNames()
	if len(names) != 1 || names[0] != "pr" {
		t.Fatalf("variables = %v, want [pr]", names)
	}
	if got.CoordValues("lat") == nil {
		t.Fatal("coordinate lost during Select")
	}
}

func TestSelect_MissingVariable(t *testing.T) {
	ds := mkDataset(t, "tas", "time", nil, []float64{1, 2})
	if _, err := ds.Select([]string{"pr"}); !errors.Is(err, ErrKeyNotFound) {
		t.Fatalf("expected ErrKeyNotFound, got %v", err)
	}
}

func TestSelRange_InclusiveBounds(t *testing.T) {
	ds := mkDataset(t, "tas", "lat", []float64{10, 20, 30, 40}, []float64{1, 2, 3, 4})

	got, err := ds.SelRange("lat", 20, 30)
	if err != nil {
		t.Fatalf("SelRange: %v", err)
	}
	da, _ := got.Var("tas")
	if da.Len("lat") != 2 {
		t.Fatalf("lat length = %d, want 2 (bounds inclusive)", da.Len("lat"))
	}
	if da.Values.Elements[0] != 2 || da.Values.Elements[1] != 3 {
		t.Fatalf("values = %v, want [2 3]", da.Values.Elements)
	}
	coords := got.CoordValues("lat")
	if len(coords) != 2 || coords[0] != 20 || coords[1] != 30 {
		t.Fatalf("coords = %v, want [20 30]", coords)
	}
}

func TestSelRange_ReversedBoundsNormalized(t *testing.T) {
	ds := mkDataset(t, "tas", "lat", []float64{10, 20, 30}, []float64{1, 2, 3})

	got, err := ds.SelRange("lat", 30, 10)
	if err != nil {
		t.Fatalf("SelRange: %v", err)
	}
	da, _ := got.Var("tas")
	if da.Len("lat") != 3 {
		t.Fatalf("lat length = %d, want 3 after bound normalization", da.Len("lat"))
	}
}

func TestSelRange_OutsideExtentIsEmptyNotError(t *testing.T) {
	ds := mkDataset(t, "tas", "lat", []float64{10, 20, 30}, []float64{1, 2, 3})

	got, err := ds.SelRange("lat", 100, 200)
	if err != nil {
		t.Fatalf("SelRange: %v", err)
	}
	da, _ := got.Var("tas")
	if da.Len("lat") != 0 {
		t.Fatalf("lat length = %d, want 0 for out-of-extent bounds", da.Len("lat"))
	}
}

func TestSelRange_NoCoordinatePassesThrough(t *testing.T) {
	ds := mkDataset(t, "tas", "lat", nil, []float64{1, 2, 3})

	got, err := ds.SelRange("lat", 0, 100)
	if err != nil {
		t.Fatalf("SelRange: %v", err)
	}
	da, _ := got.Var("tas")
	if da.Len("lat") != 3 {
		t.Fatalf("axis without coordinate should pass through, got length %d", da.Len("lat"))
	}
}

func TestRenameDims_RenamesCoordVariable(t *testing.T) {
	ds := mkDataset(t, "tas", "latitude", []float64{10, 20}, []float64{1, 2})

	got := ds.RenameDims(map[string]string{"latitude": "lat"})
	if got.CoordValues("lat") == nil {
		t.Fatal("coordinate variable not renamed with its axis")
	}
	if got.CoordValues("latitude") != nil {
		t.Fatal("old coordinate name still present")
	}
	da, _ := got.Var("tas")
	if da.Dims[0] != "lat" {
		t.Fatalf("variable dims = %v, want [lat]", da.Dims)
	}
}

func TestReduce_DropsAxisCoordinate(t *testing.T) {
	ds := NewDataset()
	ds.AddVar(mkArray(t, "tas", []string{"realization", "lat"}, []int{2, 2},
		[]float64{1, 2, 3, 4}))
	ds.AddCoord(mkArray(t, "realization", []string{"realization"}, []int{2}, []float64{0, 1}))
	ds.AddCoord(mkArray(t, "lat", []string{"lat"}, []int{2}, []float64{10, 20}))

	got, err := ds.Reduce("realization", NanMean)
	if err != nil {
		t.Fatalf("Reduce: %v", err)
	}
	da, _ := got.Var("tas")
	if da.HasDim("realization") {
		t.Fatalf("realization axis not reduced: %v", da.Dims)
	}
	if da.Values.Elements[0] != 2 || da.Values.Elements[1] != 3 {
		t.Fatalf("values = %v, want [2 3]", da.Values.Elements)
	}
	if got.CoordValues("realization") != nil {
		t.Fatal("reduced axis coordinate should be dropped")
	}
	if got.CoordValues("lat") == nil {
		t.Fatal("unrelated coordinate lost during Reduce")
	}
}

func TestDims_UnionAcrossVariables(t *testing.T) {
	ds := NewDataset()
	ds.AddVar(mkArray(t, "tas", []string{"time", "lat"}, []int{3, 2},
		[]float64{0, 0, 0, 0, 0, 0}))
	ds.AddVar(mkArray(t, "orog", []string{"lat"}, []int{2}, []float64{0, 0}))

	dims := ds.Dims()
	if dims["time"] != 3 || dims["lat"] != 2 {
		t.Fatalf("dims = %v, want time:3 lat:2", dims)
	}
	if s := ds.SizesString(); s != "{lat: 2, time: 3}" {
		t.Fatalf("SizesString = %q", s)
	}
}
