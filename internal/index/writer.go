// Package index persists ingestion plans to SQLite and answers
// tag-filtered document lookups over them.
package index

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/Rachit-Gandhi/ProjectNavigator/internal/ingest"
	_ "modernc.org/sqlite"
)

// Writer bulk-loads project plans into a SQLite index. One transaction
// spans the whole load; Close commits it and builds the lookup indices.
type Writer struct {
	db      *sql.DB
	tx      *sql.Tx
	stmtDoc *sql.Stmt
	mu      sync.Mutex
}

// NewWriter creates a writer and initializes the schema.
func NewWriter(dbPath string) (*Writer, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}

	// Performance tuning for bulk insert
	if _, err := db.Exec("PRAGMA synchronous = OFF"); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.Exec("PRAGMA journal_mode = MEMORY"); err != nil {
		_ = db.Close()
		return nil, err
	}

	schema := `
	CREATE TABLE IF NOT EXISTS projects (
		project_id TEXT PRIMARY KEY,
		root TEXT NOT NULL,
		description TEXT NOT NULL,
		file_count INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS documents (
		project_id TEXT NOT NULL,
		rel_path TEXT NOT NULL,
		abs_path TEXT NOT NULL,
		tags JSON NOT NULL,
		PRIMARY KEY (project_id, rel_path)
	);
	`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	w := &Writer{db: db}
	if err := w.beginTx(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return w, nil
}

func (w *Writer) beginTx() error {
	var err error
	w.tx, err = w.db.Begin()
	if err != nil {
		return err
	}
	w.stmtDoc, err = w.tx.Prepare(`
		INSERT OR REPLACE INTO documents (project_id, rel_path, abs_path, tags)
		VALUES (?, ?, ?, ?)
	`)
	return err
}

// AddPlan writes one project plan and its documents.
func (w *Writer) AddPlan(plan *ingest.ProjectPlan) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	_, err := w.tx.Exec(`
		INSERT OR REPLACE INTO projects (project_id, root, description, file_count)
		VALUES (?, ?, ?, ?)
	`, plan.ProjectID, plan.Root, plan.Description, plan.FileCount())
	if err != nil {
		return fmt.Errorf("insert project %s: %w", plan.ProjectID, err)
	}

	for _, rec := range plan.Files {
		tags, err := json.Marshal(rec.Tags.Sorted())
		if err != nil {
			return fmt.Errorf("marshal tags for %s: %w", rec.RelativePath, err)
		}
		if _, err := w.stmtDoc.Exec(plan.ProjectID, rec.RelativePath, rec.AbsolutePath, tags); err != nil {
			return fmt.Errorf("insert document %s/%s: %w", plan.ProjectID, rec.RelativePath, err)
		}
	}
	return nil
}

// Close commits the load, creates lookup indices, and closes the database.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stmtDoc != nil {
		_ = w.stmtDoc.Close()
	}
	if err := w.tx.Commit(); err != nil {
		_ = w.db.Close()
		return err
	}
	// Create indices after bulk load for speed
	if _, err := w.db.Exec(`CREATE INDEX IF NOT EXISTS idx_doc_project ON documents(project_id)`); err != nil {
		_ = w.db.Close()
		return fmt.Errorf("create index: %w", err)
	}
	return w.db.Close()
}
