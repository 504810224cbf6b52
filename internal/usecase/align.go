package usecase

import (
	"fmt"
	"log"

	"github.com/climagination/climeval/internal/adapter/interp"
	"github.com/climagination/climeval/internal/grid"
)

// Alignment is the outcome of reconciling two loaded datasets. When Aligned
// is false the grids are returned as-is and Reason explains why; metric
// computation proceeds best-effort and any resulting shape mismatch surfaces
// at the metric call site.
type Alignment struct {
	Pred    *Loaded
	Ref     *Loaded
	Aligned bool
	Reason  string
}

// AlignDatasets reconciles variable names and grid coordinates between the
// predicted and reference datasets. Predicted naming is taken as canonical;
// the reference's rename mapping is applied first, then both are restricted
// to their common variables. Alignment failure is never an error: degraded
// evaluation is preferred over a halted run.
func AlignDatasets(pred, ref *Loaded) Alignment {
	log.Printf("Aligning datasets...")

	refData := ref.Data
	if len(ref.Spec.Rename) > 0 {
		refData = refData.RenameVars(ref.Spec.Rename)
		log.Printf("Renamed variables: %v", ref.Spec.Rename)
	}

	// Common variables, in predicted order.
	refVars := make(map[string]bool)
	for _, name := range refData.VarNames() {
		refVars[name] = true
	}
	var common []string
	for _, name := range pred.Data.VarNames() {
		if refVars[name] {
			common = append(common, name)
		}
	}
	log.Printf("Common variables: %v", common)

	predData, err := pred.Data.Select(common)
	if err != nil {
		// Unreachable: common is drawn from the predicted variable set.
		predData = pred.Data
	}
	refData, err = refData.Select(common)
	if err != nil {
		refData = ref.Data
	}

	predOut := &Loaded{Data: predData, Spec: pred.Spec, Role: pred.Role}
	refOut := &Loaded{Data: refData, Spec: ref.Spec, Role: ref.Role}

	if gridsMatch(predData, refData) {
		log.Printf("Grids already aligned")
		return Alignment{Pred: predOut, Ref: refOut, Aligned: true}
	}

	// Separable interpolation needs 1-D coordinates on the reference side;
	// a curvilinear grid cannot be auto-aligned.
	for _, name := range []string{grid.DimLat, grid.DimLon, grid.DimTime} {
		if c, ok := refData.Coord(name); ok && c.NDim() > 1 {
			reason := fmt.Sprintf("coordinate %q is not 1-D", name)
			log.Printf("Cannot auto-align: %s", reason)
			log.Printf("Predicted dims: %s", predData.SizesString())
			log.Printf("Reference dims: %s", refData.SizesString())
			log.Printf("Proceeding without alignment - metrics may fail if grids don't match")
			return Alignment{Pred: predOut, Ref: refOut, Aligned: false, Reason: reason}
		}
	}

	interped, err := interp.DatasetTo(refData, predData, []string{grid.DimLat, grid.DimLon, grid.DimTime})
	if err != nil {
		log.Printf("Could not align grids: %v", err)
		log.Printf("Proceeding without alignment - metrics may fail if grids don't match")
		return Alignment{Pred: predOut, Ref: refOut, Aligned: false, Reason: err.Error()}
	}

	refOut = &Loaded{Data: interped, Spec: ref.Spec, Role: ref.Role}

	// Interpolation skips axes without a 1-D coordinate on both sides, so
	// the grids can still disagree afterwards. Only claim alignment when
	// they actually match now.
	if !gridsMatch(predData, interped) {
		reason := fmt.Sprintf("grids still differ after interpolation (predicted %s, reference %s)",
			predData.SizesString(), interped.SizesString())
		log.Printf("Cannot auto-align: %s", reason)
		log.Printf("Proceeding without alignment - metrics may fail if grids don't match")
		return Alignment{Pred: predOut, Ref: refOut, Aligned: false, Reason: reason}
	}

	log.Printf("Aligned coordinates via interpolation")
	return Alignment{Pred: predOut, Ref: refOut, Aligned: true}
}

// gridsMatch reports whether the two datasets are already co-registered:
// identical axis name sets, and every shared axis passing either an exact
// coordinate comparison or, failing that, an equal-length check. The
// length-only fallback can accept grids with genuinely different physical
// coordinates; it is kept for compatibility but logged loudly.
func gridsMatch(pred, ref *grid.Dataset) bool {
	predDims := pred.Dims()
	refDims := ref.Dims()
	if len(predDims) != len(refDims) {
		return false
	}
	for d := range predDims {
		if _, ok := refDims[d]; !ok {
			return false
		}
	}

	for d, n := range predDims {
		pc := pred.CoordValues(d)
		rc := ref.CoordValues(d)
		if pc != nil && rc != nil && coordsEqual(pc, rc) {
			continue
		}
		if refDims[d] == n {
			if pc != nil && rc != nil {
				log.Printf("Axis %q: coordinate values differ but lengths match; treating as aligned", d)
			}
			continue
		}
		return false
	}
	return true
}

func coordsEqual(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
