package project

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // pure Go SQLite driver
)

// DefaultProject is the project ID used when none is specified.
const DefaultProject = "default"

const schema = `
CREATE TABLE IF NOT EXISTS artifacts (
	project    TEXT NOT NULL,
	path       TEXT NOT NULL,
	content    TEXT NOT NULL,
	language   TEXT NOT NULL DEFAULT 'text',
	created_by TEXT NOT NULL DEFAULT 'user',
	source     TEXT NOT NULL DEFAULT '',
	updated_at INTEGER NOT NULL,
	PRIMARY KEY (project, path)
);
CREATE INDEX IF NOT EXISTS idx_artifacts_project ON artifacts(project);
`

// Store persists project artifacts in a SQLite database. Concurrent edits to
// the same artifact are last-write-wins.
type Store struct {
	db *sql.DB
}

// OpenStore opens (or creates) the artifact database at dbPath.
func OpenStore(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open project store: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize project store schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Upsert inserts or replaces an artifact. The stored UpdatedAt is set to now.
func (s *Store) Upsert(ctx context.Context, projectID string, a Artifact) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO artifacts (project, path, content, language, created_by, source, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(project, path) DO UPDATE SET
			content = excluded.content,
			language = excluded.language,
			source = excluded.source,
			updated_at = excluded.updated_at`,
		projectID, a.Path, a.Content, a.Language, a.CreatedBy, a.Source, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to upsert artifact %s: %w", a.Path, err)
	}
	return nil
}

// Get returns the artifact at path, or ok=false when it does not exist.
func (s *Store) Get(ctx context.Context, projectID, path string) (Artifact, bool, error) {
	var a Artifact
	var updated int64
	err := s.db.QueryRowContext(ctx, `
		SELECT path, content, language, created_by, source, updated_at
		FROM artifacts WHERE project = ? AND path = ?`, projectID, path).
		Scan(&a.Path, &a.Content, &a.Language, &a.CreatedBy, &a.Source, &updated)
	if err == sql.ErrNoRows {
		return Artifact{}, false, nil
	}
	if err != nil {
		return Artifact{}, false, fmt.Errorf("failed to read artifact %s: %w", path, err)
	}
	a.UpdatedAt = time.Unix(updated, 0)
	return a, true, nil
}

// List returns all artifacts for a project ordered by path.
func (s *Store) List(ctx context.Context, projectID string) ([]Artifact, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT path, content, language, created_by, source, updated_at
		FROM artifacts WHERE project = ? ORDER BY path`, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list artifacts: %w", err)
	}
	defer rows.Close()

	var out []Artifact
	for rows.Next() {
		var a Artifact
		var updated int64
		if err := rows.Scan(&a.Path, &a.Content, &a.Language, &a.CreatedBy, &a.Source, &updated); err != nil {
			return nil, fmt.Errorf("failed to scan artifact row: %w", err)
		}
		a.UpdatedAt = time.Unix(updated, 0)
		out = append(out, a)
	}
	return out, rows.Err()
}

// Delete removes the artifact at path. Deleting a missing path is not an error.
func (s *Store) Delete(ctx context.Context, projectID, path string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM artifacts WHERE project = ? AND path = ?`, projectID, path)
	if err != nil {
		return fmt.Errorf("failed to delete artifact %s: %w", path, err)
	}
	return nil
}

// AddParsed stores artifacts extracted from an assistant message, deduplicated
// first-wins, skipping paths that already exist so parsed output never
// clobbers a file the user already has.
func (s *Store) AddParsed(ctx context.Context, projectID string, artifacts []Artifact) (int, error) {
	added := 0
	for _, a := range Dedupe(artifacts) {
		if _, exists, err := s.Get(ctx, projectID, a.Path); err != nil {
			return added, err
		} else if exists {
			continue
		}
		if err := s.Upsert(ctx, projectID, a); err != nil {
			return added, err
		}
		added++
	}
	return added, nil
}
