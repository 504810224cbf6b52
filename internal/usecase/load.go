// Package usecase orchestrates the evaluation pipeline: load, subset, align,
// compute metrics.
package usecase

import (
	"fmt"
	"log"

	"github.com/climagination/climeval/internal/adapter/store"
	"github.com/climagination/climeval/internal/config"
	"github.com/climagination/climeval/internal/grid"
)

// Role tags a loaded dataset's position in the comparison.
type Role string

const (
	RolePredicted Role = "predicted"
	RoleReference Role = "reference"
)

// Loaded couples a materialized dataset with its originating spec and role.
// Transforms replace the whole value rather than editing in place, so an
// original Loaded can feed several downstream steps.
type Loaded struct {
	Data *grid.Dataset
	Spec config.DatasetSpec
	Role Role
}

// LoadDataset opens the dataset described by spec, restricts it to the
// requested variables, standardizes dimension names, and applies the
// ensemble policy. Load-time errors are fatal and propagate unmodified.
func LoadDataset(spec config.DatasetSpec, role Role) (*Loaded, error) {
	ds, err := store.Open(spec.Location, store.Format(spec.Format))
	if err != nil {
		return nil, err
	}

	if len(spec.Variables) > 0 {
		ds, err = ds.Select(spec.Variables)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", role, err)
		}
	}

	ds, err = grid.NormalizeDims(ds)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", role, err)
	}

	if spec.Ensemble != "" {
		ds, err = grid.ReduceEnsemble(ds, grid.RealizationDim, spec.Ensemble)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", role, err)
		}
	}

	log.Printf("Loaded %s data: %s", role, ds.SizesString())
	return &Loaded{Data: ds, Spec: spec, Role: role}, nil
}
