package results

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"

	"github.com/climagination/climeval/internal/adapter/store/ncfile"
)

// Save persists the result set under {outputDir}/{project}: one NetCDF file
// per array-valued entry named {runName}_{metric}.nc, and a single
// {runName}_summary.yaml for the scalars. Returns the run directory.
// Directory creation is idempotent.
func Save(s *Set, outputDir, project, runName string) (string, error) {
	dir := filepath.Join(outputDir, project)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	log.Printf("Saving results to %s", dir)

	for _, name := range s.Names() {
		o, _ := s.Get(name)
		if o.Array == nil {
			continue
		}
		path := filepath.Join(dir, fmt.Sprintf("%s_%s.nc", runName, name))
		if err := ncfile.Write(path, o.Array); err != nil {
			return "", fmt.Errorf("failed to save %s: %w", name, err)
		}
		log.Printf("Saved %s to %s", name, filepath.Base(path))
	}

	summary := s.Summary()
	if len(summary) > 0 {
		// MapSlice keeps the set's insertion order in the YAML document.
		doc := yaml.MapSlice{}
		for _, name := range s.Names() {
			if v, ok := summary[name]; ok {
				doc = append(doc, yaml.MapItem{Key: name, Value: v})
			}
		}
		data, err := yaml.Marshal(doc)
		if err != nil {
			return "", fmt.Errorf("failed to marshal summary: %w", err)
		}
		path := filepath.Join(dir, fmt.Sprintf("%s_summary.yaml", runName))
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return "", fmt.Errorf("failed to write summary: %w", err)
		}
		log.Printf("Saved summary to %s", filepath.Base(path))
	}
	return dir, nil
}
