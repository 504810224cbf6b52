package usecase

import (
	"fmt"
	"log"

	"github.com/climagination/climeval/internal/config"
	"github.com/climagination/climeval/internal/grid"
	"github.com/climagination/climeval/internal/metrics"
	"github.com/climagination/climeval/internal/results"
)

// defaultMaxLag caps the autocorrelation function length.
const defaultMaxLag = 30

// Run executes the full evaluation pipeline for a configuration: load both
// datasets, subset to the configured domain, align, and compute every
// selected metric for every common variable. Alignment degradation is
// non-fatal; a metric that cannot be computed on unaligned grids fails for
// that metric alone and is reported, not silently absorbed.
func Run(cfg *config.Config, eng grid.Engine) (*results.Set, error) {
	log.Printf("Evaluation project: %s", cfg.ProjectName)
	if cfg.Description != "" {
		log.Printf("%s", cfg.Description)
	}

	pred, err := LoadDataset(cfg.Data.Predicted, RolePredicted)
	if err != nil {
		return nil, err
	}
	ref, err := LoadDataset(cfg.Data.Reference, RoleReference)
	if err != nil {
		return nil, err
	}

	pred, err = SubsetDomain(pred, cfg.Domain)
	if err != nil {
		return nil, err
	}
	ref, err = SubsetDomain(ref, cfg.Domain)
	if err != nil {
		return nil, err
	}

	alignment := AlignDatasets(pred, ref)
	if !alignment.Aligned {
		log.Printf("Alignment degraded (%s); continuing best-effort", alignment.Reason)
	}

	set := results.NewSet()
	common := alignment.Pred.Data.VarNames()
	if len(common) == 0 {
		log.Printf("No common variables between predicted and reference; nothing to evaluate")
		return set, nil
	}

	for _, varName := range common {
		predVar, _ := alignment.Pred.Data.Var(varName)
		refVar, _ := alignment.Ref.Data.Var(varName)

		// A metric that cannot be computed fails for that metric alone;
		// the rest of the evaluation proceeds.
		for _, m := range cfg.Metrics.Marginal {
			if err := runMarginal(set, m, varName, predVar, refVar, alignment.Pred.Data); err != nil {
				log.Printf("Metric failed: %v", err)
			}
		}
		for _, m := range cfg.Metrics.Spatial {
			if err := runSpatial(set, eng, m, varName, predVar, refVar, alignment.Pred.Data); err != nil {
				log.Printf("Metric failed: %v", err)
			}
		}
		for _, m := range cfg.Metrics.Temporal {
			if err := runTemporal(set, eng, m, varName, predVar, alignment.Pred.Data); err != nil {
				log.Printf("Metric failed: %v", err)
			}
		}
		for _, m := range cfg.Metrics.Multivariate {
			log.Printf("Skipping unknown multivariate metric %q", m)
		}
	}
	return set, nil
}

func runMarginal(set *results.Set, metric, varName string, pred, ref *grid.DataArray, coords *grid.Dataset) error {
	switch metric {
	case "bias":
		if pred.HasDim(grid.DimTime) && pred.NDim() > 1 {
			// The map form needs matching grids; the global scalar below
			// tolerates a mismatch, so a map failure does not block it.
			spatial, err := metrics.Bias(pred, ref, []string{grid.DimTime})
			if err != nil {
				log.Printf("Bias map of %s failed: %v", varName, err)
			} else {
				name := fmt.Sprintf("bias_%s", varName)
				if err := set.Add(name, withCoords(spatial, coords), metadata(varName, metric)); err != nil {
					return err
				}
			}
		}
		global, err := metrics.Bias(pred, ref, nil)
		if err != nil {
			return fmt.Errorf("global bias of %s: %w", varName, err)
		}
		return set.Add(fmt.Sprintf("bias_%s_global", varName), global, metadata(varName, metric))

	case "quantile_comparison", "quantiles":
		qc, err := metrics.QuantileComparison(pred, ref, nil)
		if err != nil {
			return fmt.Errorf("quantile comparison of %s: %w", varName, err)
		}
		return set.Add(fmt.Sprintf("quantiles_%s", varName), qc, metadata(varName, metric))

	default:
		log.Printf("Skipping unknown marginal metric %q", metric)
		return nil
	}
}

func runSpatial(set *results.Set, eng grid.Engine, metric, varName string, pred, ref *grid.DataArray, coords *grid.Dataset) error {
	switch metric {
	case "spatial_correlation":
		if !pred.HasDim(grid.DimTime) {
			log.Printf("Skipping spatial correlation of %s: no time axis", varName)
			return nil
		}
		corr, err := metrics.SpatialCorrelation(eng, pred, ref, grid.DimTime)
		if err != nil {
			return fmt.Errorf("spatial correlation of %s: %w", varName, err)
		}
		name := fmt.Sprintf("spatial_correlation_%s", varName)
		return set.Add(name, withCoords(corr, coords), metadata(varName, metric))

	default:
		log.Printf("Skipping unknown spatial metric %q", metric)
		return nil
	}
}

func runTemporal(set *results.Set, eng grid.Engine, metric, varName string, pred *grid.DataArray, coords *grid.Dataset) error {
	switch metric {
	case "temporal_autocorrelation":
		if !pred.HasDim(grid.DimTime) {
			log.Printf("Skipping temporal autocorrelation of %s: no time axis", varName)
			return nil
		}
		maxLag := defaultMaxLag
		if n := pred.Len(grid.DimTime); n <= maxLag {
			maxLag = n - 1
		}
		acf, err := metrics.TemporalAutocorrelation(eng, pred, maxLag, grid.DimTime)
		if err != nil {
			return fmt.Errorf("temporal autocorrelation of %s: %w", varName, err)
		}
		out := withCoords(acf, coords)
		lag, err := grid.NewDataArray("lag", []string{"lag"}, []int{maxLag + 1})
		if err != nil {
			return err
		}
		copy(lag.Values.Elements, metrics.LagCoord(maxLag))
		out.AddCoord(lag)
		name := fmt.Sprintf("temporal_autocorrelation_%s", varName)
		return set.Add(name, out, metadata(varName, metric))

	default:
		log.Printf("Skipping unknown temporal metric %q", metric)
		return nil
	}
}

// withCoords wraps a metric result in a dataset carrying the coordinate
// variables of the source dataset for every axis the result kept.
func withCoords(da *grid.DataArray, src *grid.Dataset) *grid.Dataset {
	out := grid.NewDataset()
	out.AddVar(da)
	for _, d := range da.Dims {
		if c, ok := src.Coord(d); ok && c.NDim() == 1 && c.Len(d) == da.Len(d) {
			out.AddCoord(c)
		}
	}
	return out
}

func metadata(varName, metric string) map[string]string {
	return map[string]string{"variable": varName, "metric": metric}
}
