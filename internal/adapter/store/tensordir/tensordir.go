// Package tensordir is a placeholder backend for directories of raw tensor
// files produced by an external preprocessing pipeline.
package tensordir

import (
	"errors"
	"fmt"

	"github.com/climagination/climeval/internal/grid"
)

// ErrNotImplemented marks the tensor-directory loader as an explicit
// unimplemented path.
var ErrNotImplemented = errors.New("tensor directory loading is not implemented")

// Store is the tensor-directory backend.
type Store struct{}

// Open always fails: the loader needs adapting to the preprocessing
// pipeline's output layout before it can be implemented.
func (Store) Open(location string) (*grid.Dataset, error) {
	return nil, fmt.Errorf("%w (adapt to the preprocessing output structure for %s)", ErrNotImplemented, location)
}
