// Package storage persists generated website files. It is the FileStore
// collaborator of the agent loop: owner-scoped project files with
// last-writer-wins semantics per file.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// ErrProjectNotFound is returned for reads of a project with no files.
var ErrProjectNotFound = errors.New("project not found")

// Store provides database operations for website files.
type Store struct {
	db *sql.DB
}

// Open creates the database connection and initializes the schema.
// WAL mode allows concurrent readers while a tool handler writes.
func Open(ctx context.Context, dbPath string) (*Store, error) {
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite doesn't support multiple writers well.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &Store{db: db}
	if err := s.initSchema(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) initSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS website_files (
		owner      TEXT NOT NULL DEFAULT '',
		project    TEXT NOT NULL,
		name       TEXT NOT NULL,
		content    TEXT NOT NULL,
		updated_at INTEGER NOT NULL,
		PRIMARY KEY (owner, project, name)
	);
	CREATE INDEX IF NOT EXISTS idx_files_owner_project ON website_files(owner, project);
	`
	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// SaveFile writes one file of a project, overwriting any previous content.
func (s *Store) SaveFile(ctx context.Context, owner, project, name, content string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO website_files (owner, project, name, content, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(owner, project, name)
		DO UPDATE SET content = excluded.content, updated_at = excluded.updated_at`,
		owner, project, name, content, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to save %s/%s: %w", project, name, err)
	}
	return nil
}

// ReadAllFiles returns all files of a project as a name to content map.
func (s *Store) ReadAllFiles(ctx context.Context, owner, project string) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, content FROM website_files WHERE owner = ? AND project = ?`,
		owner, project)
	if err != nil {
		return nil, fmt.Errorf("failed to read files of %s: %w", project, err)
	}
	defer rows.Close()

	files := make(map[string]string)
	for rows.Next() {
		var name, content string
		if err := rows.Scan(&name, &content); err != nil {
			return nil, fmt.Errorf("failed to scan file row: %w", err)
		}
		files[name] = content
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return files, nil
}

// Exists reports whether the project has any stored files.
func (s *Store) Exists(ctx context.Context, owner, project string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM website_files WHERE owner = ? AND project = ? LIMIT 1`,
		owner, project).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check project %s: %w", project, err)
	}
	return true, nil
}

// DeleteProject removes all files of a project.
func (s *Store) DeleteProject(ctx context.Context, owner, project string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM website_files WHERE owner = ? AND project = ?`, owner, project)
	if err != nil {
		return fmt.Errorf("failed to delete project %s: %w", project, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrProjectNotFound, project)
	}
	return nil
}

// List returns the distinct project names of an owner, sorted.
func (s *Store) List(ctx context.Context, owner string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT project FROM website_files WHERE owner = ? ORDER BY project`, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var projects []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("failed to scan project row: %w", err)
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}
