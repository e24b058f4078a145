// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package contextstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/research-assistant/pkg/types"
)

// documentRowID is the primary key of the single row holding the document.
const documentRowID = 1

// SQLiteStorage keeps the document as one JSON row in a SQLite database.
// Each save runs in its own transaction, which also serializes writers
// from separate processes.
type SQLiteStorage struct {
	db   *sql.DB
	path string
}

// NewSQLiteStorage opens or creates the database at path and its schema.
func NewSQLiteStorage(path string) (*SQLiteStorage, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &SQLiteStorage{db: db, path: path}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

func (s *SQLiteStorage) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS context_document (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			body TEXT NOT NULL,
			version TEXT NOT NULL,
			last_updated TEXT NOT NULL
		)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Load reads the stored document, or returns nil when none exists.
func (s *SQLiteStorage) Load(ctx context.Context) (*types.ContextDocument, error) {
	var body string
	err := s.db.QueryRowContext(ctx,
		`SELECT body FROM context_document WHERE id = ?`, documentRowID,
	).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading context document: %w", err)
	}

	var doc types.ContextDocument
	if err := json.Unmarshal([]byte(body), &doc); err != nil {
		return nil, fmt.Errorf("decoding context document: %w", err)
	}
	return &doc, nil
}

// Save replaces the stored document inside a transaction.
func (s *SQLiteStorage) Save(ctx context.Context, doc *types.ContextDocument) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshaling context document: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO context_document (id, body, version, last_updated) VALUES (?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET body = excluded.body, version = excluded.version, last_updated = excluded.last_updated`,
		documentRowID, string(body), doc.Version, doc.LastUpdated.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("saving context document: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing context document: %w", err)
	}
	return nil
}

// Close releases the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
