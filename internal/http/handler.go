package http

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/climagination/climeval/internal/adapter/store/ncfile"
	"github.com/climagination/climeval/internal/results"
)

// Handler handles HTTP requests for evaluation results.
type Handler struct {
	catalog    *results.Catalog
	resultsDir string
}

// NewHandler creates a new HTTP handler.
func NewHandler(catalog *results.Catalog, resultsDir string) *Handler {
	return &Handler{
		catalog:    catalog,
		resultsDir: resultsDir,
	}
}

// ListRuns handles GET /v1/runs.
func (h *Handler) ListRuns(c *gin.Context) {
	runs, err := h.catalog.ListRuns()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"runs": runs,
	})
}

// GetRun handles GET /v1/runs/:id.
func (h *Handler) GetRun(c *gin.Context) {
	id := c.Param("id")

	run, err := h.catalog.Run(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("run %s not found", id)})
		return
	}

	c.JSON(http.StatusOK, run)
}

// GetRunSummary handles GET /v1/runs/:id/summary.
func (h *Handler) GetRunSummary(c *gin.Context) {
	id := c.Param("id")

	run, err := h.catalog.Run(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("run %s not found", id)})
		return
	}

	scalars, err := h.catalog.Scalars(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"run":     run,
		"metrics": scalars,
	})
}

// MetricResponse is the JSON form of a gridded metric result.
type MetricResponse struct {
	Variable string               `json:"variable"`
	Dims     []string             `json:"dims"`
	Shape    []int                `json:"shape"`
	Values   []float64            `json:"values"`
	Coords   map[string][]float64 `json:"coords,omitempty"`
}

// GetRunMetric handles GET /v1/runs/:id/metrics/:name.
// It reads the metric's NetCDF file from the run's result directory.
func (h *Handler) GetRunMetric(c *gin.Context) {
	id := c.Param("id")
	name := c.Param("name")

	run, err := h.catalog.Run(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("run %s not found", id)})
		return
	}

	path := filepath.Join(h.resultsDir, run.Project, fmt.Sprintf("%s_%s.nc", run.Name, name))
	if _, err := os.Stat(path); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("metric %s not found for run %s", name, id)})
		return
	}

	st := &ncfile.Store{}
	ds, err := st.Open(path)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	response := make([]MetricResponse, 0, len(ds.VarNames()))
	for _, varName := range ds.VarNames() {
		da, ok := ds.Var(varName)
		if !ok {
			continue
		}
		mr := MetricResponse{
			Variable: varName,
			Dims:     da.Dims,
			Shape:    da.Shape(),
			Values:   da.Values.Elements,
		}
		for _, dim := range da.Dims {
			if vals := ds.CoordValues(dim); vals != nil {
				if mr.Coords == nil {
					mr.Coords = make(map[string][]float64)
				}
				mr.Coords[dim] = vals
			}
		}
		response = append(response, mr)
	}

	c.JSON(http.StatusOK, gin.H{
		"metric":    name,
		"variables": response,
	})
}

// HealthCheck handles GET /health.
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}
