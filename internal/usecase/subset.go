package usecase

import (
	"fmt"
	"log"

	"github.com/climagination/climeval/internal/config"
	"github.com/climagination/climeval/internal/grid"
)

// SubsetDomain restricts a loaded dataset to the configured bounding box.
// With no bounds set, the input is returned unchanged. Selection is by
// coordinate label, inclusive of both endpoints; a range outside the data's
// extent yields an empty axis rather than an error.
func SubsetDomain(l *Loaded, domain config.Domain) (*Loaded, error) {
	if !domain.IsSubset() {
		return l, nil
	}
	log.Printf("Subsetting domain...")

	ds := l.Data
	var err error
	for _, sel := range []struct {
		dim string
		r   config.Range
	}{
		{grid.DimLat, domain.Lat},
		{grid.DimLon, domain.Lon},
		{grid.DimTime, domain.Time},
	} {
		if len(sel.r) == 0 {
			continue
		}
		ds, err = ds.SelRange(sel.dim, sel.r.Min(), sel.r.Max())
		if err != nil {
			return nil, fmt.Errorf("subset %s: %w", sel.dim, err)
		}
	}

	log.Printf("New shape: %s", ds.SizesString())
	return &Loaded{Data: ds, Spec: l.Spec, Role: l.Role}, nil
}
