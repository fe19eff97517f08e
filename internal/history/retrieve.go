// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pdiddy/topic-engine/pkg/types"
)

// SearchRecord is one logged search.
type SearchRecord struct {
	ID           int64     `json:"id" yaml:"id"`
	Term         string    `json:"term,omitempty" yaml:"term,omitempty"`
	Components   []string  `json:"components,omitempty" yaml:"components,omitempty"`
	ProgramYears []int     `json:"program_years,omitempty" yaml:"program_years,omitempty"`
	Page         int       `json:"page" yaml:"page"`
	PageSize     int       `json:"page_size" yaml:"page_size"`
	Total        int       `json:"total" yaml:"total"`
	SearchedAt   time.Time `json:"searched_at" yaml:"searched_at"`
}

// TopicRecord is a topic as last seen by a search.
type TopicRecord struct {
	UID         string    `json:"uid" yaml:"uid"`
	Code        string    `json:"code" yaml:"code"`
	Title       string    `json:"title" yaml:"title"`
	Component   string    `json:"component" yaml:"component"`
	Status      string    `json:"status" yaml:"status"`
	ProgramYear int       `json:"program_year,omitempty" yaml:"program_year,omitempty"`
	Keywords    []string  `json:"keywords,omitempty" yaml:"keywords,omitempty"`
	FirstSeen   time.Time `json:"first_seen" yaml:"first_seen"`
	LastSeen    time.Time `json:"last_seen" yaml:"last_seen"`
}

// RetrievalRecord is one logged retrieval operation.
type RetrievalRecord struct {
	ID       string               `json:"id" yaml:"id"`
	Kind     string               `json:"kind" yaml:"kind"`
	State    types.RetrievalState `json:"state" yaml:"state"`
	Count    int                  `json:"count" yaml:"count"`
	Artifact string               `json:"artifact,omitempty" yaml:"artifact,omitempty"`
	Cause    string               `json:"cause,omitempty" yaml:"cause,omitempty"`
	Started  time.Time            `json:"started" yaml:"started"`
	Finished time.Time            `json:"finished" yaml:"finished"`
	UIDs     []string             `json:"uids,omitempty" yaml:"uids,omitempty"`
}

// Summary holds ledger-wide counts.
type Summary struct {
	Searches   int `json:"searches" yaml:"searches"`
	Topics     int `json:"topics" yaml:"topics"`
	Retrievals int `json:"retrievals" yaml:"retrievals"`
	Delivered  int `json:"delivered" yaml:"delivered"`
	Failed     int `json:"failed" yaml:"failed"`
}

// RecentSearches returns the most recent searches, newest first.
func (s *Store) RecentSearches(ctx context.Context, limit int) ([]SearchRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, term, components, program_years, page, page_size, total, searched_at
		 FROM searches ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying searches: %w", err)
	}
	defer rows.Close()

	var records []SearchRecord
	for rows.Next() {
		var (
			r              SearchRecord
			componentsJSON string
			yearsJSON      string
			searchedAt     string
		)
		if err := rows.Scan(&r.ID, &r.Term, &componentsJSON, &yearsJSON,
			&r.Page, &r.PageSize, &r.Total, &searchedAt); err != nil {
			return nil, fmt.Errorf("scanning search: %w", err)
		}
		json.Unmarshal([]byte(componentsJSON), &r.Components)
		json.Unmarshal([]byte(yearsJSON), &r.ProgramYears)
		r.SearchedAt, _ = time.Parse(time.RFC3339Nano, searchedAt)
		records = append(records, r)
	}
	return records, rows.Err()
}

// Retrievals returns the most recent retrieval operations, newest first,
// each with the UIDs it named.
func (s *Store) Retrievals(ctx context.Context, limit int) ([]RetrievalRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, kind, state, count, artifact, cause, started, finished
		 FROM retrievals ORDER BY started DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying retrievals: %w", err)
	}
	defer rows.Close()

	var records []RetrievalRecord
	for rows.Next() {
		var (
			r        RetrievalRecord
			state    string
			started  string
			finished string
		)
		if err := rows.Scan(&r.ID, &r.Kind, &state, &r.Count,
			&r.Artifact, &r.Cause, &started, &finished); err != nil {
			return nil, fmt.Errorf("scanning retrieval: %w", err)
		}
		r.State = types.RetrievalState(state)
		r.Started, _ = time.Parse(time.RFC3339Nano, started)
		r.Finished, _ = time.Parse(time.RFC3339Nano, finished)
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range records {
		uidRows, err := s.db.QueryContext(ctx,
			`SELECT uid FROM retrieval_topics WHERE retrieval_id = ?`, records[i].ID)
		if err != nil {
			return nil, fmt.Errorf("querying retrieval topics: %w", err)
		}
		for uidRows.Next() {
			var uid string
			if err := uidRows.Scan(&uid); err != nil {
				uidRows.Close()
				return nil, fmt.Errorf("scanning retrieval topic: %w", err)
			}
			records[i].UIDs = append(records[i].UIDs, uid)
		}
		if err := uidRows.Err(); err != nil {
			uidRows.Close()
			return nil, err
		}
		uidRows.Close()
	}
	return records, nil
}

// FindTopics runs a full-text search over seen topics (code, title,
// keywords), ranked by relevance.
func (s *Store) FindTopics(ctx context.Context, query string, limit int) ([]TopicRecord, error) {
	if query == "" {
		return nil, types.Errorf(types.EINVALID, "search query is required")
	}
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT t.uid, t.code, t.title, t.component, t.status, t.program_year,
			t.keywords, t.first_seen, t.last_seen
		 FROM topics_fts
		 JOIN topics t ON t.rowid = topics_fts.rowid
		 WHERE topics_fts MATCH ?
		 ORDER BY topics_fts.rank
		 LIMIT ?`, query, limit)
	if err != nil {
		return nil, fmt.Errorf("querying topics: %w", err)
	}
	defer rows.Close()

	var records []TopicRecord
	for rows.Next() {
		r, err := scanTopic(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning topic: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// TopicByCode resolves a topic code to its record. Codes are unique in the
// catalog; if several UIDs ever share one, the most recently seen wins.
func (s *Store) TopicByCode(ctx context.Context, code string) (*TopicRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT uid, code, title, component, status, program_year, keywords, first_seen, last_seen
		 FROM topics WHERE code = ? ORDER BY last_seen DESC LIMIT 1`, code)

	r, err := scanTopic(row)
	if err == sql.ErrNoRows {
		return nil, types.Errorf(types.ENOTFOUND, "no topic with code %q in history", code)
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// Summary returns ledger-wide counts.
func (s *Store) Summary(ctx context.Context) (Summary, error) {
	var sum Summary
	queries := []struct {
		sql  string
		dest *int
	}{
		{`SELECT count(*) FROM searches`, &sum.Searches},
		{`SELECT count(*) FROM topics`, &sum.Topics},
		{`SELECT count(*) FROM retrievals`, &sum.Retrievals},
		{`SELECT count(*) FROM retrievals WHERE state = 'delivered'`, &sum.Delivered},
		{`SELECT count(*) FROM retrievals WHERE state = 'failed'`, &sum.Failed},
	}
	for _, q := range queries {
		if err := s.db.QueryRowContext(ctx, q.sql).Scan(q.dest); err != nil {
			return Summary{}, fmt.Errorf("counting: %w", err)
		}
	}
	return sum, nil
}

// scanner covers both sql.Row and sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanTopic(row scanner) (TopicRecord, error) {
	var (
		r            TopicRecord
		keywordsJSON string
		firstSeen    string
		lastSeen     string
	)
	err := row.Scan(&r.UID, &r.Code, &r.Title, &r.Component, &r.Status,
		&r.ProgramYear, &keywordsJSON, &firstSeen, &lastSeen)
	if err != nil {
		return TopicRecord{}, err
	}
	json.Unmarshal([]byte(keywordsJSON), &r.Keywords)
	r.FirstSeen, _ = time.Parse(time.RFC3339Nano, firstSeen)
	r.LastSeen, _ = time.Parse(time.RFC3339Nano, lastSeen)
	return r, nil
}
