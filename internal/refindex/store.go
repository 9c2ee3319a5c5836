// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package refindex persists wmt24pp reference rows in a SQLite database so
// repeat conversion runs skip re-parsing the downloaded files.
package refindex

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/esa-pipeline/pkg/types"
)

const dbFile = "references.db"

// Store manages the reference index SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the index database at indexDir/references.db,
// creating the schema when absent.
func Open(indexDir string) (*Store, error) {
	if err := os.MkdirAll(indexDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	dbPath := filepath.Join(indexDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS refs (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			lp TEXT NOT NULL,
			domain TEXT,
			document_id TEXT,
			segment_id INTEGER,
			is_bad_source INTEGER NOT NULL DEFAULT 0,
			source TEXT NOT NULL,
			target TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_refs_lp ON refs(lp)`,
		`CREATE INDEX IF NOT EXISTS idx_refs_lp_source ON refs(lp, source)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Count returns the number of indexed rows for a language pair. Callers
// use a non-zero count to skip re-indexing.
func (s *Store) Count(ctx context.Context, lp string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT count(*) FROM refs WHERE lp = ?`, lp,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting %s rows: %w", lp, err)
	}
	return n, nil
}

// Insert replaces the indexed rows for a language pair inside one
// transaction, so a failed run never leaves the pair half-indexed.
func (s *Store) Insert(ctx context.Context, lp string, rows []types.ReferenceRow) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM refs WHERE lp = ?`, lp); err != nil {
		return fmt.Errorf("clearing %s rows: %w", lp, err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO refs
		(lp, domain, document_id, segment_id, is_bad_source, source, target)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, row := range rows {
		bad := 0
		if row.IsBadSource {
			bad = 1
		}
		if _, err := stmt.ExecContext(ctx,
			lp, row.Domain, row.DocumentID, row.SegmentID, bad, row.Source, row.Target,
		); err != nil {
			return fmt.Errorf("inserting %s row: %w", lp, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing %s rows: %w", lp, err)
	}
	return nil
}

// Lookup returns the source-to-target map for a language pair, excluding
// bad sources.
func (s *Store) Lookup(ctx context.Context, lp string) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT source, target FROM refs WHERE lp = ? AND is_bad_source = 0`, lp)
	if err != nil {
		return nil, fmt.Errorf("querying %s rows: %w", lp, err)
	}
	defer rows.Close()

	refs := make(map[string]string)
	for rows.Next() {
		var source, target string
		if err := rows.Scan(&source, &target); err != nil {
			return nil, fmt.Errorf("scanning %s row: %w", lp, err)
		}
		refs[source] = target
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating %s rows: %w", lp, err)
	}
	return refs, nil
}

// Pairs returns the language pairs present in the index, sorted.
func (s *Store) Pairs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT lp FROM refs ORDER BY lp`)
	if err != nil {
		return nil, fmt.Errorf("querying pairs: %w", err)
	}
	defer rows.Close()

	var pairs []string
	for rows.Next() {
		var lp string
		if err := rows.Scan(&lp); err != nil {
			return nil, fmt.Errorf("scanning pair: %w", err)
		}
		pairs = append(pairs, lp)
	}
	return pairs, rows.Err()
}
