// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"fmt"
	"os"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/topic-engine/pkg/types"
)

// SavedSearch is the on-disk representation of a query and the page it
// produced. The operator can save a search to a file and reload it later
// without re-querying the catalog.
type SavedSearch struct {
	Query   SavedQuery    `yaml:"query"`
	Config  SavedConfig   `yaml:"config"`
	Topics  []types.Topic `yaml:"topics"`
	Summary SavedSummary  `yaml:"summary"`
}

// SavedQuery stores the query parameters in a serializable form.
type SavedQuery struct {
	Term         string   `yaml:"term,omitempty"`
	Page         int      `yaml:"page"`
	PageSize     int      `yaml:"page_size"`
	Components   []string `yaml:"components,omitempty"`
	ProgramYears []int    `yaml:"program_years,omitempty"`
}

// SavedConfig stores the fetcher configuration that produced the results.
type SavedConfig struct {
	PageSize  int    `yaml:"page_size"`
	Staleness string `yaml:"staleness"`
}

// SavedSummary stores result statistics and a timestamp.
type SavedSummary struct {
	Total     int       `yaml:"total"`
	Shown     int       `yaml:"shown"`
	HasMore   bool      `yaml:"has_more"`
	Timestamp time.Time `yaml:"timestamp"`
}

// WriteSavedSearch saves the query and its result page to a YAML file.
func WriteSavedSearch(path string, cfg types.SearchConfig, page *types.ResultPage) error {
	q := page.Query
	ss := SavedSearch{
		Query: SavedQuery{
			Term:         q.Term,
			Page:         q.Page,
			PageSize:     q.PageSize,
			Components:   q.Components,
			ProgramYears: q.ProgramYears,
		},
		Config: SavedConfig{
			PageSize:  cfg.PageSize,
			Staleness: cfg.Staleness.String(),
		},
		Topics: page.Topics,
		Summary: SavedSummary{
			Total:     page.Total,
			Shown:     len(page.Topics),
			HasMore:   page.HasMore(),
			Timestamp: time.Now(),
		},
	}

	data, err := yaml.Marshal(&ss)
	if err != nil {
		return fmt.Errorf("marshaling saved search: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadSavedSearch loads a previously saved search file from disk.
func ReadSavedSearch(path string) (*SavedSearch, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading saved search: %w", err)
	}
	var ss SavedSearch
	if err := yaml.Unmarshal(data, &ss); err != nil {
		return nil, fmt.Errorf("parsing saved search: %w", err)
	}
	return &ss, nil
}

// ToQuery converts stored parameters back into a Query. Hand-edited files
// go through the same validation as fresh input.
func (p SavedQuery) ToQuery() (types.Query, error) {
	q := types.NewQuery(p.PageSize).
		WithTerm(p.Term).
		WithComponents(p.Components).
		WithProgramYears(p.ProgramYears).
		WithPage(p.Page)
	if err := q.Validate(); err != nil {
		return types.Query{}, err
	}
	return q, nil
}
