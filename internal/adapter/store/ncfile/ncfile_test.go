package ncfile

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/fhs/go-netcdf/netcdf"

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

// helper to create a minimal NetCDF with lat, lon coordinates and a 2x3 tas
// variable, with one cell set to the fill value.
func createTasNC(t *testing.T, path string) {
	t.Helper()
	f, err := netcdf.CreateFile(path, netcdf.CLOBBER)
	if err != nil {
		t.Fatalf("create nc: %v", err)
	}
	defer f.Close()

	latDim, _ := f.AddDim("lat", 2)
	lonDim, _ := f.AddDim("lon", 3)
	vlat, _ := f.AddVar("lat", netcdf.DOUBLE, []netcdf.Dim{latDim})
	vlon, _ := f.AddVar("lon", netcdf.DOUBLE, []netcdf.Dim{lonDim})
	vtas, _ := f.AddVar("tas", netcdf.FLOAT, []netcdf.Dim{latDim, lonDim})
	if err := vtas.Attr("_FillValue").WriteFloat32s([]float32{-9999}); err != nil {
		t.Fatalf("write fill attr: %v", err)
	}

	if err := f.EndDef(); err != nil {
		t.Fatalf("enddef: %v", err)
	}

	if err := vlat.WriteFloat64s([]float64{45.0, 46.0}); err != nil {
		t.Fatalf("write lat: %v", err)
	}
	if err := vlon.WriteFloat64s([]float64{10.0, 11.0, 12.0}); err != nil {
		t.Fatalf("write lon: %v", err)
	}
	if err := vtas.WriteFloat32s([]float32{280, 281, -9999, 283, 284, 285}); err != nil {
		t.Fatalf("write tas: %v", err)
	}
}

func TestOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tas.nc")
	createTasNC(t, path)

	ds, err := (Store{}).Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	names := ds.VarNames()
	if len(names) != 1 || names[0] != "tas" {
		t.Fatalf("variables = %v, want [tas]", names)
	}
	da, _ := ds.Var("tas")
	if da.Dims[0] != "lat" || da.Dims[1] != "lon" {
		t.Fatalf("dims = %v, want [lat lon]", da.Dims)
	}
	if da.Values.Elements[0] != 280 {
		t.Fatalf("tas[0,0] = %v, want 280", da.Values.Elements[0])
	}
	if !math.IsNaN(da.Values.Elements[2]) {
		t.Fatalf("fill value not converted to NaN: %v", da.Values.Elements[2])
	}

	lat := ds.CoordValues("lat")
	if len(lat) != 2 || lat[0] != 45 || lat[1] != 46 {
		t.Fatalf("lat coords = %v", lat)
	}
	lon := ds.CoordValues("lon")
	if len(lon) != 3 || lon[2] != 12 {
		t.Fatalf("lon coords = %v", lon)
	}
}

func TestOpen_MissingFile(t *testing.T) {
	if _, err := (Store{}).Open(filepath.Join(t.TempDir(), "nope.nc")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestWriteRoundTrip(t *testing.T) {
	ds := grid.NewDataset()
	ds.AddVar(mkArray(t, "bias_tas", []string{"lat", "lon"}, []int{2, 2},
		[]float64{0.1, -0.3, 0.5, 0.0}))
	ds.AddCoord(mkArray(t, "lat", []string{"lat"}, []int{2}, []float64{45, 46}))
	ds.AddCoord(mkArray(t, "lon", []string{"lon"}, []int{2}, []float64{10, 11}))

	path := filepath.Join(t.TempDir(), "bias.nc")
	if err := Write(path, ds); err != nil {
		t.Fatalf("Write: %v", err)
	}

	got, err := (Store{}).Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	da, ok := got.Var("bias_tas")
	if !ok {
		t.Fatalf("bias_tas missing, variables = %v", got.VarNames())
	}
	want := []float64{0.1, -0.3, 0.5, 0.0}
	for i, w := range want {
		if math.Abs(da.Values.Elements[i]-w) > 1e-12 {
			t.Fatalf("value[%d] = %v, want %v", i, da.Values.Elements[i], w)
		}
	}
	lat := got.CoordValues("lat")
	if len(lat) != 2 || lat[0] != 45 {
		t.Fatalf("lat coords = %v", lat)
	}
}

func TestWrite_SharedDimDefinedOnce(t *testing.T) {
	// Two variables over the same axis must not collide on dimension
	// definition.
	ds := grid.NewDataset()
	ds.AddVar(mkArray(t, "a", []string{"lat"}, []int{2}, []float64{1, 2}))
	ds.AddVar(mkArray(t, "b", []string{"lat"}, []int{2}, []float64{3, 4}))
	ds.AddCoord(mkArray(t, "lat", []string{"lat"}, []int{2}, []float64{45, 46}))

	path := filepath.Join(t.TempDir(), "pair.nc")
	if err := Write(path, ds); err != nil {
		t.Fatalf("Write: %v", err)
	}

	got, err := (Store{}).Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if len(got.VarNames()) != 2 {
		t.Fatalf("variables = %v, want two", got.VarNames())
	}
}

func TestIsCoordVar(t *testing.T) {
	tests := []struct {
		name string
		dims []string
		want bool
	}{
		{"lat", []string{"lat"}, true},
		{"time", []string{"time"}, true},
		{"lat", []string{"y", "x"}, true}, // curvilinear coordinate
		{"tas", []string{"lat", "lon"}, false},
		{"orog", []string{"orog"}, true}, // named after its own axis
	}
	for _, tc := range tests {
		if got := isCoordVar(tc.name, tc.dims); got != tc.want {
			t.Errorf("isCoordVar(%q, %v) = %v, want %v", tc.name, tc.dims, got, tc.want)
		}
	}
}
