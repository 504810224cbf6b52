package results

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

const catalogSchema = `
CREATE TABLE IF NOT EXISTS runs (
	id          TEXT PRIMARY KEY,
	project     TEXT NOT NULL,
	name        TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	created_at  TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS scalar_results (
	run_id  TEXT NOT NULL,
	metric  TEXT NOT NULL,
	value   REAL NOT NULL,
	PRIMARY KEY (run_id, metric),
	FOREIGN KEY (run_id) REFERENCES runs(id)
);
`

// Catalog indexes evaluation runs and their scalar results in SQLite, so
// persisted output can be listed and served without rescanning directories.
type Catalog struct {
	db *sql.DB
}

// RunRecord is one catalogued evaluation run.
type RunRecord struct {
	ID          string `json:"id"`
	Project     string `json:"project"`
	Name        string `json:"name"`
	Description string `json:"description"`
	CreatedAt   string `json:"created_at"`
}

// OpenCatalog opens (creating if needed) the catalog database at path.
func OpenCatalog(path string) (*Catalog, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	if _, err := db.Exec(catalogSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize catalog schema: %w", err)
	}
	return &Catalog{db: db}, nil
}

// Close releases the database handle.
func (c *Catalog) Close() error { return c.db.Close() }

// RecordRun inserts a run record.
func (c *Catalog) RecordRun(id, project, name, description string, createdAt time.Time) error {
	_, err := c.db.Exec(
		`INSERT INTO runs (id, project, name, description, created_at) VALUES (?, ?, ?, ?, ?)`,
		id, project, name, description, createdAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}
	return nil
}

// RecordScalars stores the scalar summary of a run.
func (c *Catalog) RecordScalars(runID string, s *Set) error {
	summary := s.Summary()
	for _, name := range s.Names() {
		v, ok := summary[name]
		if !ok {
			continue
		}
		_, err := c.db.Exec(
			`INSERT OR REPLACE INTO scalar_results (run_id, metric, value) VALUES (?, ?, ?)`,
			runID, name, v,
		)
		if err != nil {
			return fmt.Errorf("failed to record scalar %q: %w", name, err)
		}
	}
	return nil
}

// ListRuns returns all catalogued runs, newest first.
func (c *Catalog) ListRuns() ([]RunRecord, error) {
	rows, err := c.db.Query(
		`SELECT id, project, name, description, created_at FROM runs ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var out []RunRecord
	for rows.Next() {
		var r RunRecord
		if err := rows.Scan(&r.ID, &r.Project, &r.Name, &r.Description, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Run returns one run record by id.
func (c *Catalog) Run(id string) (RunRecord, error) {
	var r RunRecord
	err := c.db.QueryRow(
		`SELECT id, project, name, description, created_at FROM runs WHERE id = ?`, id,
	).Scan(&r.ID, &r.Project, &r.Name, &r.Description, &r.CreatedAt)
	if err != nil {
		return RunRecord{}, fmt.Errorf("failed to load run %s: %w", id, err)
	}
	return r, nil
}

// Scalars returns a run's scalar results keyed by metric name.
func (c *Catalog) Scalars(runID string) (map[string]float64, error) {
	rows, err := c.db.Query(
		`SELECT metric, value FROM scalar_results WHERE run_id = ? ORDER BY metric`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to load scalars: %w", err)
	}
	defer rows.Close()

	out := make(map[string]float64)
	for rows.Next() {
		var metric string
		var value float64
		if err := rows.Scan(&metric, &value); err != nil {
			return nil, fmt.Errorf("failed to scan scalar: %w", err)
		}
		out[metric] = value
	}
	return out, rows.Err()
}
