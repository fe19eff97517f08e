// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package history keeps a local ledger of searches, the topics they
// surfaced, and retrieval outcomes in a SQLite database. The ledger powers
// offline lookup (code to UID without a network round trip) and the
// history command.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/topic-engine/pkg/types"
)

// Store manages the history SQLite database.
type Store struct {
	db *sql.DB
}

// NewStore opens or creates the history database at cfg.Path, creating the
// schema when missing.
func NewStore(cfg types.HistoryConfig) (*Store, error) {
	if cfg.Path == "" {
		return nil, types.Errorf(types.EINVALID, "history path is required")
	}
	if dir := filepath.Dir(cfg.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", cfg.Path+"?_journal_mode=WAL&_foreign_keys=on")
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
		`CREATE TABLE IF NOT EXISTS searches (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			term TEXT,
			components TEXT,
			program_years TEXT,
			page INTEGER NOT NULL,
			page_size INTEGER NOT NULL,
			total INTEGER NOT NULL,
			searched_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_searches_at ON searches(searched_at)`,
		`CREATE TABLE IF NOT EXISTS topics (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			uid TEXT NOT NULL UNIQUE,
			code TEXT,
			title TEXT,
			component TEXT,
			status TEXT,
			program_year INTEGER,
			keywords TEXT,
			first_seen TEXT NOT NULL,
			last_seen TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_topics_code ON topics(code)`,
		`CREATE TABLE IF NOT EXISTS retrievals (
			id TEXT PRIMARY KEY,
			kind TEXT NOT NULL,
			state TEXT NOT NULL,
			count INTEGER NOT NULL,
			artifact TEXT,
			cause TEXT,
			started TEXT NOT NULL,
			finished TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS retrieval_topics (
			retrieval_id TEXT NOT NULL REFERENCES retrievals(id),
			uid TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_retrieval_topics ON retrieval_topics(retrieval_id)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// FTS5 virtual table with triggers for sync.
	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='topics_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}

	if ftsExists == 0 {
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE topics_fts USING fts5(code, title, keywords, content=topics, content_rowid=rowid)`,
			`CREATE TRIGGER topics_ai AFTER INSERT ON topics BEGIN
				INSERT INTO topics_fts(rowid, code, title, keywords) VALUES (new.rowid, new.code, new.title, new.keywords);
			END`,
			`CREATE TRIGGER topics_ad AFTER DELETE ON topics BEGIN
				INSERT INTO topics_fts(topics_fts, rowid, code, title, keywords) VALUES('delete', old.rowid, old.code, old.title, old.keywords);
			END`,
			`CREATE TRIGGER topics_au AFTER UPDATE ON topics BEGIN
				INSERT INTO topics_fts(topics_fts, rowid, code, title, keywords) VALUES('delete', old.rowid, old.code, old.title, old.keywords);
				INSERT INTO topics_fts(rowid, code, title, keywords) VALUES (new.rowid, new.code, new.title, new.keywords);
			END`,
		}
		for _, stmt := range ftsStatements {
			if _, err := s.db.Exec(stmt); err != nil {
				return fmt.Errorf("creating FTS infrastructure: %w", err)
			}
		}
	}

	return nil
}

// RecordSearch logs a successful search and upserts every topic on the
// page. A topic keeps its first_seen timestamp across upserts.
func (s *Store) RecordSearch(ctx context.Context, page *types.ResultPage) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	q := page.Query
	componentsJSON, _ := json.Marshal(q.Components)
	yearsJSON, _ := json.Marshal(q.ProgramYears)
	nowStr := time.Now().UTC().Format(time.RFC3339Nano)

	_, err = tx.ExecContext(ctx,
		`INSERT INTO searches (term, components, program_years, page, page_size, total, searched_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		q.Term, string(componentsJSON), string(yearsJSON), q.Page, q.PageSize, page.Total, nowStr,
	)
	if err != nil {
		return fmt.Errorf("inserting search: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO topics (uid, code, title, component, status, program_year, keywords, first_seen, last_seen)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(uid) DO UPDATE SET
			code=excluded.code, title=excluded.title, component=excluded.component,
			status=excluded.status, program_year=excluded.program_year,
			keywords=excluded.keywords, last_seen=excluded.last_seen`)
	if err != nil {
		return fmt.Errorf("preparing topic upsert: %w", err)
	}
	defer stmt.Close()

	for _, t := range page.Topics {
		keywordsJSON, _ := json.Marshal(t.Keywords)
		_, err := stmt.ExecContext(ctx,
			t.UID, t.Code, t.Title, t.Component, t.Status, t.ProgramYear,
			string(keywordsJSON), nowStr, nowStr,
		)
		if err != nil {
			return fmt.Errorf("upserting topic %s: %w", t.UID, err)
		}
	}

	return tx.Commit()
}

// RecordRetrieval logs a finished retrieval operation and the UIDs it named.
func (s *Store) RecordRetrieval(ctx context.Context, out *types.Outcome, uids []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO retrievals (id, kind, state, count, artifact, cause, started, finished)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		out.OperationID, out.Kind, string(out.State), out.Count,
		out.ArtifactName, out.Cause,
		out.Started.UTC().Format(time.RFC3339Nano),
		out.Finished.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("inserting retrieval: %w", err)
	}

	for _, uid := range uids {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO retrieval_topics (retrieval_id, uid) VALUES (?, ?)`,
			out.OperationID, uid,
		); err != nil {
			return fmt.Errorf("inserting retrieval topic %s: %w", uid, err)
		}
	}

	return tx.Commit()
}
