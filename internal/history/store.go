package history

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"minuteminds/internal/gateway"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is the current cache schema version. Bump this when the
// schema changes; the cache is disposable so a mismatch recreates it.
const schemaVersion = 1

// Store caches transcription history in SQLite so the history listing works
// without a round-trip when the backend is unreachable.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the history cache in stateDir.
func Open(stateDir string) (*Store, error) {
	dbPath := filepath.Join(stateDir, "history.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}

	if tableExists > 0 {
		var version int
		if err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
			return fmt.Errorf("read schema version: %w", err)
		}
		if version == schemaVersion {
			return nil
		}
		// Stale cache layout: drop and rebuild.
		if _, err := s.db.ExecContext(ctx, "DROP TABLE IF EXISTS documents; DROP TABLE IF EXISTS schema_version"); err != nil {
			return fmt.Errorf("drop stale schema: %w", err)
		}
	}
	return s.createSchema(ctx)
}

func (s *Store) createSchema(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	return nil
}

// ReplaceAll swaps the cached listing for a fresh one from the backend.
func (s *Store) ReplaceAll(ctx context.Context, docs []gateway.DocumentSummary) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM documents"); err != nil {
		return fmt.Errorf("clear documents: %w", err)
	}

	fetchedAt := time.Now().UTC().Format(time.RFC3339Nano)
	for _, doc := range docs {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO documents (id, filename, created_at, transcript, summary, fetched_at)
             VALUES (?, ?, ?, ?, ?, ?)`,
			doc.ID, doc.Filename, doc.CreatedAt.UTC().Format(time.RFC3339Nano),
			doc.Transcription, doc.Summary, fetchedAt)
		if err != nil {
			return fmt.Errorf("insert document %s: %w", doc.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit documents: %w", err)
	}
	return nil
}

// List returns the cached history, newest first.
func (s *Store) List(ctx context.Context) ([]gateway.DocumentSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, filename, created_at, transcript, summary FROM documents ORDER BY created_at DESC")
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}
	defer rows.Close()

	var docs []gateway.DocumentSummary
	for rows.Next() {
		doc, err := scanDocument(rows.Scan)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}
	return docs, nil
}

// Get returns one cached document by id.
func (s *Store) Get(ctx context.Context, id string) (gateway.DocumentSummary, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, filename, created_at, transcript, summary FROM documents WHERE id = ?", id)
	doc, err := scanDocument(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return gateway.DocumentSummary{}, fmt.Errorf("document %s not cached", id)
	}
	if err != nil {
		return gateway.DocumentSummary{}, err
	}
	return doc, nil
}

// scanDocument reads one documents row. created_at is stored as RFC 3339 text.
func scanDocument(scan func(dest ...any) error) (gateway.DocumentSummary, error) {
	var doc gateway.DocumentSummary
	var createdAt string
	if err := scan(&doc.ID, &doc.Filename, &createdAt, &doc.Transcription, &doc.Summary); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return gateway.DocumentSummary{}, err
		}
		return gateway.DocumentSummary{}, fmt.Errorf("scan document: %w", err)
	}
	if createdAt != "" {
		parsed, err := time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			parsed, err = time.Parse(time.RFC3339, createdAt)
		}
		if err == nil {
			doc.CreatedAt = parsed
		}
	}
	return doc, nil
}
