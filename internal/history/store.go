// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package history archives completed searches in a local SQLite database.
// Saving is opt-in per invocation; nothing here feeds back into ranking.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/metasearch/pkg/types"
)

// Record is one archived search.
type Record struct {
	ID          string
	Query       string
	Intent      string
	Mode        string
	ResultCount int
	CreatedAt   time.Time
	ResultsJSON string
}

// Store manages the search history SQLite database.
type Store struct {
	db      *sql.DB
	maxList int
}

// Open opens or creates the history database at cfg.Path, creating parent
// directories and the schema as needed.
func Open(cfg types.HistoryConfig) (*Store, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("history path not configured")
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
		return nil, fmt.Errorf("creating history directory: %w", err)
	}

	db, err := sql.Open("sqlite3", cfg.Path+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening history database: %w", err)
	}

	maxList := cfg.MaxList
	if maxList <= 0 {
		maxList = 20
	}

	s := &Store{db: db, maxList: maxList}
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
	stmt := `CREATE TABLE IF NOT EXISTS searches (
		id TEXT PRIMARY KEY,
		query TEXT NOT NULL,
		intent TEXT,
		mode TEXT,
		result_count INTEGER NOT NULL,
		created_at TEXT NOT NULL,
		results_json TEXT NOT NULL
	)`
	if _, err := s.db.Exec(stmt); err != nil {
		return fmt.Errorf("executing schema statement: %w", err)
	}
	if _, err := s.db.Exec(`CREATE INDEX IF NOT EXISTS idx_searches_created_at ON searches(created_at)`); err != nil {
		return fmt.Errorf("executing schema statement: %w", err)
	}
	return nil
}

// Save archives one completed search. The record's ID and CreatedAt are
// filled if unset.
func (s *Store) Save(ctx context.Context, rec Record) (Record, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO searches (id, query, intent, mode, result_count, created_at, results_json)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Query, rec.Intent, rec.Mode, rec.ResultCount,
		rec.CreatedAt.Format(time.RFC3339), rec.ResultsJSON)
	if err != nil {
		return Record{}, fmt.Errorf("inserting search record: %w", err)
	}
	return rec, nil
}

// SaveResponse serializes the ranked results and archives them with the
// request metadata.
func (s *Store) SaveResponse(ctx context.Context, query string, intent, mode string, results []types.MergedResult) (Record, error) {
	blob, err := json.Marshal(results)
	if err != nil {
		return Record{}, fmt.Errorf("encoding results: %w", err)
	}
	return s.Save(ctx, Record{
		Query:       query,
		Intent:      intent,
		Mode:        mode,
		ResultCount: len(results),
		ResultsJSON: string(blob),
	})
}

// List returns the most recent searches, newest first, capped at the
// configured list size.
func (s *Store) List(ctx context.Context) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, query, intent, mode, result_count, created_at, results_json
		 FROM searches ORDER BY created_at DESC, id LIMIT ?`, s.maxList)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var rec Record
		var created string
		if err := rows.Scan(&rec.ID, &rec.Query, &rec.Intent, &rec.Mode,
			&rec.ResultCount, &created, &rec.ResultsJSON); err != nil {
			return nil, fmt.Errorf("scanning history row: %w", err)
		}
		if t, err := time.Parse(time.RFC3339, created); err == nil {
			rec.CreatedAt = t
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Get loads one archived search by ID.
func (s *Store) Get(ctx context.Context, id string) (Record, error) {
	var rec Record
	var created string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, query, intent, mode, result_count, created_at, results_json
		 FROM searches WHERE id = ?`, id).
		Scan(&rec.ID, &rec.Query, &rec.Intent, &rec.Mode,
			&rec.ResultCount, &created, &rec.ResultsJSON)
	if err == sql.ErrNoRows {
		return Record{}, fmt.Errorf("no search with id %s", id)
	}
	if err != nil {
		return Record{}, fmt.Errorf("loading search record: %w", err)
	}
	if t, err := time.Parse(time.RFC3339, created); err == nil {
		rec.CreatedAt = t
	}
	return rec, nil
}
