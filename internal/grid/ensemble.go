package grid

import (
	"fmt"
	"log"
)

// RealizationDim is the axis indexing independent stochastic model runs.
const RealizationDim = "realization"

// Ensemble reduction policies.
const (
	EnsembleMean   = "mean"
	EnsembleMedian = "median"
	EnsembleSelect = "select"
	EnsembleKeep   = "keep"
)

// ValidEnsembleMethod reports whether the policy string is known.
func ValidEnsembleMethod(method string) bool {
	switch method {
	case EnsembleMean, EnsembleMedian, EnsembleSelect, EnsembleKeep:
		return true
	}
	return false
}

// ReduceEnsemble collapses the realization axis per the given policy. A
// dataset without the axis is returned unchanged; an unknown policy is an
// ErrInvalidEnsembleMethod.
func ReduceEnsemble(ds *Dataset, dim string, method string) (*Dataset, error) {
	dims := ds.Dims()
	n, ok := dims[dim]
	if !ok {
		log.Printf("No %q dimension found", dim)
		return ds, nil
	}
	log.Printf("Found %d realizations, applying ensemble %q", n, method)

	switch method {
	case EnsembleMean:
		return ds.Reduce(dim, NanMean)
	case EnsembleMedian:
		return ds.Reduce(dim, nanMedian)
	case EnsembleSelect:
		return ds.SelIndex(dim, 0)
	case EnsembleKeep:
		return ds, nil
	default:
		return nil, fmt.Errorf("%w: %q (use mean, median, select, or keep)",
			ErrInvalidEnsembleMethod, method)
	}
}
