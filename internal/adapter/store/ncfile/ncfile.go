// Package ncfile reads and writes labeled N-dimensional datasets as NetCDF
// files.
package ncfile

import (
	"fmt"
	"math"

	"github.com/fhs/go-netcdf/netcdf"

	"github.com/climagination/climeval/internal/grid"
)

// knownCoordNames are variable names treated as coordinates even when not
// named after one of their own axes (curvilinear lat/lon grids).
var knownCoordNames = map[string]bool{
	"lat": true, "latitude": true, "lon": true, "longitude": true,
	"time": true, "rlat": true, "rlon": true,
}

// Store is the NetCDF backend.
type Store struct{}

// Open reads every variable of the file into a dataset. Variables named
// after one of their own axes, or carrying a well-known coordinate name,
// become coordinate variables.
func (Store) Open(location string) (*grid.Dataset, error) {
	nc, err := netcdf.OpenFile(location, netcdf.NOWRITE)
	if err != nil {
		return nil, fmt.Errorf("failed to open NetCDF file: %w", err)
	}
	defer func() { _ = nc.Close() }()

	nVars, err := nc.NVars()
	if err != nil {
		return nil, fmt.Errorf("failed to count variables: %w", err)
	}

	ds := grid.NewDataset()
	for i := 0; i < nVars; i++ {
		v := nc.VarN(i)
		name, err := v.Name()
		if err != nil {
			return nil, fmt.Errorf("failed to get variable name: %w", err)
		}
		da, err := readVar(v, name)
		if err != nil {
			return nil, fmt.Errorf("failed to read %q: %w", name, err)
		}
		if isCoordVar(name, da.Dims) {
			ds.AddCoord(da)
		} else {
			ds.AddVar(da)
		}
	}
	return ds, nil
}

func isCoordVar(name string, dims []string) bool {
	for _, d := range dims {
		if d == name {
			return true
		}
	}
	return knownCoordNames[name]
}

// readVar reads a variable of any rank into a DataArray, converting fill
// values to NaN.
func readVar(v netcdf.Var, name string) (*grid.DataArray, error) {
	ncDims, err := v.Dims()
	if err != nil {
		return nil, fmt.Errorf("failed to get dimensions: %w", err)
	}

	dims := make([]string, len(ncDims))
	shape := make([]int, len(ncDims))
	total := 1
	for i, d := range ncDims {
		dims[i], err = d.Name()
		if err != nil {
			return nil, fmt.Errorf("failed to get dimension name: %w", err)
		}
		n, err := d.Len()
		if err != nil {
			return nil, fmt.Errorf("failed to get dimension length: %w", err)
		}
		shape[i] = int(n)
		total *= int(n)
	}

	flat, err := readFloat64s(v, total)
	if err != nil {
		return nil, err
	}
	if fv, ok := fillValue(v); ok {
		for i, val := range flat {
			if val == fv {
				flat[i] = math.NaN()
			}
		}
	}

	da, err := grid.NewDataArray(name, dims, shape)
	if err != nil {
		return nil, err
	}
	copy(da.Values.Elements, flat)
	return da, nil
}

// readFloat64s reads a variable's full contents as float64 regardless of its
// on-disk type.
func readFloat64s(v netcdf.Var, total int) ([]float64, error) {
	t, err := v.Type()
	if err != nil {
		return nil, fmt.Errorf("failed to get var type: %w", err)
	}
	switch t {
	case netcdf.DOUBLE:
		data := make([]float64, total)
		if err := v.ReadFloat64s(data); err != nil {
			return nil, err
		}
		return data, nil
	case netcdf.FLOAT:
		tmp := make([]float32, total)
		if err := v.ReadFloat32s(tmp); err != nil {
			return nil, err
		}
		out := make([]float64, total)
		for i, val := range tmp {
			out[i] = float64(val)
		}
		return out, nil
	case netcdf.INT:
		tmp := make([]int32, total)
		if err := v.ReadInt32s(tmp); err != nil {
			return nil, err
		}
		out := make([]float64, total)
		for i, val := range tmp {
			out[i] = float64(val)
		}
		return out, nil
	case netcdf.SHORT:
		tmp := make([]int16, total)
		if err := v.ReadInt16s(tmp); err != nil {
			return nil, err
		}
		out := make([]float64, total)
		for i, val := range tmp {
			out[i] = float64(val)
		}
		return out, nil
	case netcdf.INT64:
		tmp := make([]int64, total)
		if err := v.ReadInt64s(tmp); err != nil {
			return nil, err
		}
		out := make([]float64, total)
		for i, val := range tmp {
			out[i] = float64(val)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported var type: %v", t)
	}
}

// fillValue returns the _FillValue or missing_value attribute if present.
func fillValue(v netcdf.Var) (float64, bool) {
	for _, name := range []string{"_FillValue", "missing_value"} {
		a := v.Attr(name)
		if a == (netcdf.Attr{}) {
			continue
		}
		if n, err := a.Len(); err == nil && n > 0 {
			buf64 := make([]float64, 1)
			if err := a.ReadFloat64s(buf64); err == nil {
				return buf64[0], true
			}
			buf32 := make([]float32, 1)
			if err := a.ReadFloat32s(buf32); err == nil {
				return float64(buf32[0]), true
			}
		}
	}
	return 0, false
}

// Write persists a dataset as a NetCDF file with DOUBLE variables. Axes
// shared between variables are defined once; coordinate variables are
// written alongside data variables.
func Write(path string, ds *grid.Dataset) error {
	f, err := netcdf.CreateFile(path, netcdf.CLOBBER)
	if err != nil {
		return fmt.Errorf("failed to create NetCDF file: %w", err)
	}
	defer func() { _ = f.Close() }()

	ncDims := make(map[string]netcdf.Dim)
	addDims := func(da *grid.DataArray) error {
		for i, d := range da.Dims {
			if _, ok := ncDims[d]; ok {
				continue
			}
			dim, err := f.AddDim(d, uint64(da.Values.Shape[i]))
			if err != nil {
				return fmt.Errorf("failed to add dimension %q: %w", d, err)
			}
			ncDims[d] = dim
		}
		return nil
	}

	type pending struct {
		v  netcdf.Var
		da *grid.DataArray
	}
	var vars []pending
	addVar := func(da *grid.DataArray) error {
		if err := addDims(da); err != nil {
			return err
		}
		dimList := make([]netcdf.Dim, len(da.Dims))
		for i, d := range da.Dims {
			dimList[i] = ncDims[d]
		}
		v, err := f.AddVar(da.Name, netcdf.DOUBLE, dimList)
		if err != nil {
			return fmt.Errorf("failed to add variable %q: %w", da.Name, err)
		}
		vars = append(vars, pending{v, da})
		return nil
	}

	for _, name := range ds.CoordNames() {
		c, _ := ds.Coord(name)
		if err := addVar(c); err != nil {
			return err
		}
	}
	for _, name := range ds.VarNames() {
		da, _ := ds.Var(name)
		if err := addVar(da); err != nil {
			return err
		}
	}

	if err := f.EndDef(); err != nil {
		return fmt.Errorf("failed to end define mode: %w", err)
	}
	for _, p := range vars {
		if err := p.v.WriteFloat64s(p.da.Values.Elements); err != nil {
			return fmt.Errorf("failed to write %q: %w", p.da.Name, err)
		}
	}
	return nil
}
