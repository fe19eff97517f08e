// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package history

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"go.yaml.in/yaml/v3"
)

// Export is the full ledger in exportable form.
type Export struct {
	Summary    Summary           `json:"summary" yaml:"summary"`
	Searches   []SearchRecord    `json:"searches" yaml:"searches"`
	Topics     []TopicRecord     `json:"topics" yaml:"topics"`
	Retrievals []RetrievalRecord `json:"retrievals" yaml:"retrievals"`
}

const exportLimit = 100000

// ExportYAML writes the whole ledger to w as YAML.
func (s *Store) ExportYAML(ctx context.Context, w io.Writer) error {
	export, err := s.export(ctx)
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(export)
	if err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	_, err = w.Write(data)
	return err
}

// ExportJSON writes the whole ledger to w as indented JSON.
func (s *Store) ExportJSON(ctx context.Context, w io.Writer) error {
	export, err := s.export(ctx)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	_, err = w.Write(data)
	return err
}

func (s *Store) export(ctx context.Context) (*Export, error) {
	summary, err := s.Summary(ctx)
	if err != nil {
		return nil, fmt.Errorf("querying for export: %w", err)
	}
	searches, err := s.RecentSearches(ctx, exportLimit)
	if err != nil {
		return nil, fmt.Errorf("querying for export: %w", err)
	}
	topics, err := s.allTopics(ctx)
	if err != nil {
		return nil, fmt.Errorf("querying for export: %w", err)
	}
	retrievals, err := s.Retrievals(ctx, exportLimit)
	if err != nil {
		return nil, fmt.Errorf("querying for export: %w", err)
	}
	return &Export{
		Summary:    summary,
		Searches:   searches,
		Topics:     topics,
		Retrievals: retrievals,
	}, nil
}

func (s *Store) allTopics(ctx context.Context) ([]TopicRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT uid, code, title, component, status, program_year, keywords, first_seen, last_seen
		 FROM topics ORDER BY code`)
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
