// Package store resolves a dataset's storage format to a loading backend.
package store

import (
	"errors"
	"fmt"

	"github.com/climagination/climeval/internal/adapter/store/ncfile"
	"github.com/climagination/climeval/internal/adapter/store/tensordir"
	"github.com/climagination/climeval/internal/adapter/store/zarr"
	"github.com/climagination/climeval/internal/grid"
)

var (
	// ErrUnsupportedFormat is returned for a storage format outside the
	// closed set. Reachable only through malformed configuration.
	ErrUnsupportedFormat = errors.New("unsupported storage format")

	// ErrNotSupported marks a format that is recognized but has no
	// implemented loader.
	ErrNotSupported = errors.New("loading not supported")
)

// Format is the closed set of storage formats a dataset can be read from.
type Format string

const (
	// FormatZarr is a columnar chunked array store (directory layout).
	FormatZarr Format = "zarr"
	// FormatNetCDF is a self-describing array file.
	FormatNetCDF Format = "netcdf"
	// FormatTensorDir is a directory of raw tensor files produced by an
	// external preprocessing pipeline. Recognized but not loadable.
	FormatTensorDir Format = "pt"
)

// Valid reports whether the format is a member of the closed set.
func (f Format) Valid() bool {
	switch f {
	case FormatZarr, FormatNetCDF, FormatTensorDir:
		return true
	}
	return false
}

// Loader opens a dataset from a storage location.
type Loader interface {
	Open(location string) (*grid.Dataset, error)
}

// ForFormat returns the loading backend for a format.
func ForFormat(format Format) (Loader, error) {
	switch format {
	case FormatZarr:
		return zarr.Store{}, nil
	case FormatNetCDF:
		return ncfile.Store{}, nil
	case FormatTensorDir:
		return tensordir.Store{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// Open resolves the format and opens the dataset at location.
func Open(location string, format Format) (*grid.Dataset, error) {
	loader, err := ForFormat(format)
	if err != nil {
		return nil, err
	}
	ds, err := loader.Open(location)
	if err != nil {
		if errors.Is(err, tensordir.ErrNotImplemented) {
			return nil, fmt.Errorf("%w: %v", ErrNotSupported, err)
		}
		return nil, fmt.Errorf("open %s (%s): %w", location, format, err)
	}
	return ds, nil
}
