// Package zarr reads Zarr v2 directory stores: one subdirectory per array,
// JSON metadata in .zarray/.zattrs, and C-order chunk files. Supported
// dtypes are little-endian floats and signed integers; supported compressors
// are none, zlib, and gzip. Blosc-compressed stores are rejected with a
// clear error rather than mis-read.
package zarr

import (
	"compress/gzip"
	"compress/zlib"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/climagination/climeval/internal/grid"
)

// arrayMeta mirrors the .zarray JSON document.
type arrayMeta struct {
	Shape      []int           `json:"shape"`
	Chunks     []int           `json:"chunks"`
	DType      string          `json:"dtype"`
	Order      string          `json:"order"`
	FillValue  json.RawMessage `json:"fill_value"`
	Compressor *struct {
		ID string `json:"id"`
	} `json:"compressor"`
	ZarrFormat int `json:"zarr_format"`
}

// arrayAttrs mirrors the .zattrs JSON document; xarray records dimension
// names under _ARRAY_DIMENSIONS.
type arrayAttrs struct {
	Dimensions []string `json:"_ARRAY_DIMENSIONS"`
}

// Store is the Zarr backend.
type Store struct{}

// Open reads every array of the store into a dataset. Arrays named after one
// of their own dimensions become coordinate variables.
func (Store) Open(location string) (*grid.Dataset, error) {
	info, err := os.Stat(location)
	if err != nil {
		return nil, fmt.Errorf("failed to stat zarr store: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("zarr store %s is not a directory", location)
	}

	entries, err := os.ReadDir(location)
	if err != nil {
		return nil, fmt.Errorf("failed to list zarr store: %w", err)
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if _, err := os.Stat(filepath.Join(location, e.Name(), ".zarray")); err == nil {
			names = append(names, e.Name())
		}
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("no zarr arrays found in %s", location)
	}
	sort.Strings(names)

	ds := grid.NewDataset()
	for _, name := range names {
		da, err := readArray(filepath.Join(location, name), name)
		if err != nil {
			return nil, fmt.Errorf("failed to read array %q: %w", name, err)
		}
		if isCoordArray(name, da.Dims) {
			ds.AddCoord(da)
		} else {
			ds.AddVar(da)
		}
	}
	return ds, nil
}

func isCoordArray(name string, dims []string) bool {
	for _, d := range dims {
		if d == name {
			return true
		}
	}
	return false
}

func readArray(dir, name string) (*grid.DataArray, error) {
	metaRaw, err := os.ReadFile(filepath.Join(dir, ".zarray"))
	if err != nil {
		return nil, fmt.Errorf("failed to read .zarray: %w", err)
	}
	var meta arrayMeta
	if err := json.Unmarshal(metaRaw, &meta); err != nil {
		return nil, fmt.Errorf("failed to parse .zarray: %w", err)
	}
	if meta.ZarrFormat != 0 && meta.ZarrFormat != 2 {
		return nil, fmt.Errorf("unsupported zarr format %d", meta.ZarrFormat)
	}
	if meta.Order != "" && meta.Order != "C" {
		return nil, fmt.Errorf("unsupported array order %q", meta.Order)
	}
	if len(meta.Chunks) != len(meta.Shape) {
		return nil, fmt.Errorf("chunk rank %d does not match shape rank %d", len(meta.Chunks), len(meta.Shape))
	}
	elemSize, convert, err := dtypeReader(meta.DType)
	if err != nil {
		return nil, err
	}
	decompress, err := compressorReader(&meta)
	if err != nil {
		return nil, err
	}

	dims := make([]string, len(meta.Shape))
	attrsRaw, err := os.ReadFile(filepath.Join(dir, ".zattrs"))
	if err == nil {
		var attrs arrayAttrs
		if err := json.Unmarshal(attrsRaw, &attrs); err == nil && len(attrs.Dimensions) == len(meta.Shape) {
			copy(dims, attrs.Dimensions)
		}
	}
	for i, d := range dims {
		if d == "" {
			dims[i] = fmt.Sprintf("dim_%d", i)
		}
	}

	da, err := grid.NewDataArray(name, dims, meta.Shape)
	if err != nil {
		return nil, err
	}

	fill := fillValueOf(meta.FillValue)

	// Chunk grid: number of chunks per axis, edge chunks padded to full size.
	nChunks := make([]int, len(meta.Shape))
	for i := range meta.Shape {
		if meta.Chunks[i] <= 0 {
			return nil, fmt.Errorf("invalid chunk size %d on axis %d", meta.Chunks[i], i)
		}
		nChunks[i] = (meta.Shape[i] + meta.Chunks[i] - 1) / meta.Chunks[i]
	}

	chunkIdx := make([]int, len(meta.Shape))
	for {
		if err := readChunk(dir, &meta, chunkIdx, da, elemSize, convert, decompress, fill); err != nil {
			return nil, err
		}
		// Advance the chunk index odometer.
		i := len(chunkIdx) - 1
		for ; i >= 0; i-- {
			chunkIdx[i]++
			if chunkIdx[i] < nChunks[i] {
				break
			}
			chunkIdx[i] = 0
		}
		if i < 0 {
			break
		}
	}
	return da, nil
}

// readChunk loads one chunk file and scatters its in-bounds elements into
// the destination array. A missing chunk file stands for fill values.
func readChunk(dir string, meta *arrayMeta, chunkIdx []int, da *grid.DataArray,
	elemSize int, convert func([]byte) float64, decompress func(io.Reader) (io.ReadCloser, error), fill float64) error {

	keyParts := make([]string, len(chunkIdx))
	for i, c := range chunkIdx {
		keyParts[i] = strconv.Itoa(c)
	}
	key := strings.Join(keyParts, ".")
	if len(chunkIdx) == 0 {
		key = "0"
	}

	chunkLen := 1
	for _, c := range meta.Chunks {
		chunkLen *= c
	}

	f, err := os.Open(filepath.Join(dir, key))
	var flat []float64
	if os.IsNotExist(err) {
		flat = make([]float64, chunkLen)
		for i := range flat {
			flat[i] = fill
		}
	} else if err != nil {
		return fmt.Errorf("failed to open chunk %s: %w", key, err)
	} else {
		defer f.Close()
		r, err := decompress(f)
		if err != nil {
			return fmt.Errorf("failed to decompress chunk %s: %w", key, err)
		}
		defer r.Close()
		raw, err := io.ReadAll(r)
		if err != nil {
			return fmt.Errorf("failed to read chunk %s: %w", key, err)
		}
		if len(raw) != chunkLen*elemSize {
			return fmt.Errorf("chunk %s holds %d bytes, expected %d", key, len(raw), chunkLen*elemSize)
		}
		flat = make([]float64, chunkLen)
		for i := range flat {
			flat[i] = convert(raw[i*elemSize : (i+1)*elemSize])
		}
	}

	// Scatter in-bounds elements (edge chunks overhang the array shape).
	rank := len(meta.Shape)
	if rank == 0 {
		da.Values.Elements[0] = flat[0]
		return nil
	}
	pos := make([]int, rank)
	for ci := 0; ci < chunkLen; ci++ {
		inBounds := true
		flatDst := 0
		rem := ci
		for ax := rank - 1; ax >= 0; ax-- {
			pos[ax] = rem % meta.Chunks[ax]
			rem /= meta.Chunks[ax]
		}
		stride := 1
		for ax := rank - 1; ax >= 0; ax-- {
			global := chunkIdx[ax]*meta.Chunks[ax] + pos[ax]
			if global >= meta.Shape[ax] {
				inBounds = false
				break
			}
			flatDst += global * stride
			stride *= meta.Shape[ax]
		}
		if inBounds {
			da.Values.Elements[flatDst] = flat[ci]
		}
	}
	return nil
}

// dtypeReader returns the element size and byte decoder for a dtype string.
func dtypeReader(dtype string) (int, func([]byte) float64, error) {
	switch dtype {
	case "<f8":
		return 8, func(b []byte) float64 {
			return math.Float64frombits(binary.LittleEndian.Uint64(b))
		}, nil
	case "<f4":
		return 4, func(b []byte) float64 {
			return float64(math.Float32frombits(binary.LittleEndian.Uint32(b)))
		}, nil
	case "<i8":
		return 8, func(b []byte) float64 {
			return float64(int64(binary.LittleEndian.Uint64(b)))
		}, nil
	case "<i4":
		return 4, func(b []byte) float64 {
			return float64(int32(binary.LittleEndian.Uint32(b)))
		}, nil
	case "<i2":
		return 2, func(b []byte) float64 {
			return float64(int16(binary.LittleEndian.Uint16(b)))
		}, nil
	default:
		return 0, nil, fmt.Errorf("unsupported dtype %q", dtype)
	}
}

func compressorReader(meta *arrayMeta) (func(io.Reader) (io.ReadCloser, error), error) {
	if meta.Compressor == nil {
		return func(r io.Reader) (io.ReadCloser, error) { return io.NopCloser(r), nil }, nil
	}
	switch meta.Compressor.ID {
	case "zlib":
		return func(r io.Reader) (io.ReadCloser, error) { return zlib.NewReader(r) }, nil
	case "gzip":
		return func(r io.Reader) (io.ReadCloser, error) { return gzip.NewReader(r) }, nil
	case "blosc":
		return nil, fmt.Errorf("blosc compression is not supported; re-encode the store with zlib or no compressor")
	default:
		return nil, fmt.Errorf("unsupported compressor %q", meta.Compressor.ID)
	}
}

// fillValueOf parses the fill_value field, which may be a number, the JSON
// strings "NaN"/"Infinity"/"-Infinity", or null.
func fillValueOf(raw json.RawMessage) float64 {
	if len(raw) == 0 || string(raw) == "null" {
		return math.NaN()
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		switch s {
		case "NaN":
			return math.NaN()
		case "Infinity":
			return math.Inf(1)
		case "-Infinity":
			return math.Inf(-1)
		}
	}
	return math.NaN()
}
