// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"testing"
)

func TestQueryMergeResetsPage(t *testing.T) {
	base := Query{Term: "laser", Page: 3, PageSize: 10}

	tests := []struct {
		name     string
		apply    func(Query) Query
		wantPage int
		wantTerm string
	}{
		{"new term resets page", func(q Query) Query { return q.WithTerm("radar") }, 0, "radar"},
		{"same term keeps page", func(q Query) Query { return q.WithTerm("laser") }, 3, "laser"},
		{"term trimmed before compare", func(q Query) Query { return q.WithTerm("  laser  ") }, 3, "laser"},
		{"new components reset page", func(q Query) Query { return q.WithComponents([]string{"NAVY"}) }, 0, "laser"},
		{"new years reset page", func(q Query) Query { return q.WithProgramYears([]int{2024}) }, 0, "laser"},
		{"page change keeps term", func(q Query) Query { return q.WithPage(7) }, 7, "laser"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.apply(base)
			if got.Page != tt.wantPage {
				t.Errorf("Page = %d, want %d", got.Page, tt.wantPage)
			}
			if got.Term != tt.wantTerm {
				t.Errorf("Term = %q, want %q", got.Term, tt.wantTerm)
			}
			if got.PageSize != base.PageSize {
				t.Errorf("PageSize changed: %d", got.PageSize)
			}
		})
	}
}

func TestQueryPageChangePreservesFilters(t *testing.T) {
	q := Query{Term: "laser", PageSize: 10}.
		WithComponents([]string{"ARMY", "NAVY"}).
		WithProgramYears([]int{2024, 2025})

	next := q.WithPage(2)
	if next.Page != 2 {
		t.Fatalf("Page = %d, want 2", next.Page)
	}
	if next.Term != "laser" {
		t.Errorf("Term = %q, want laser", next.Term)
	}
	if len(next.Components) != 2 || len(next.ProgramYears) != 2 {
		t.Errorf("filters not preserved: %v %v", next.Components, next.ProgramYears)
	}
}

func TestQuerySameFilterKeepsPage(t *testing.T) {
	q := Query{Term: "laser", PageSize: 10}.WithComponents([]string{"NAVY", "ARMY"})
	q = q.WithPage(4)

	// Same set in a different order is not a change.
	next := q.WithComponents([]string{"army", "navy"})
	if next.Page != 4 {
		t.Errorf("Page = %d, want 4 (filter unchanged)", next.Page)
	}
}

func TestQueryKey(t *testing.T) {
	a := Query{Term: "laser", Page: 1, PageSize: 10}.WithComponents([]string{"NAVY", "ARMY"})
	b := Query{Term: "laser", PageSize: 10}.WithComponents([]string{"ARMY", "NAVY"}).WithPage(1)
	if a.Key() != b.Key() {
		t.Errorf("keys differ for equal queries:\n%s\n%s", a.Key(), b.Key())
	}
	if !a.Equal(b) {
		t.Error("Equal = false for equal queries")
	}

	c := b.WithPage(2)
	if a.Key() == c.Key() {
		t.Error("keys equal for different pages")
	}
	d := b.WithTerm("radar")
	if a.Key() == d.Key() {
		t.Error("keys equal for different terms")
	}
}

func TestQueryValidate(t *testing.T) {
	tests := []struct {
		name     string
		query    Query
		wantCode string
	}{
		{"valid", Query{Term: "laser", PageSize: 10}, ""},
		{"valid filtered", Query{PageSize: 10, Components: []string{"NAVY"}}, ""},
		{"negative page", Query{Page: -1, PageSize: 10}, EINVALID},
		{"zero page size", Query{Term: "laser"}, EINVALID},
		{"unknown component", Query{PageSize: 10, Components: []string{"SPACEFORCE"}}, EINVALID},
		{"negative year", Query{PageSize: 10, ProgramYears: []int{-3}}, EINVALID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.query.Validate()
			if got := ErrorCode(err); got != tt.wantCode {
				t.Errorf("ErrorCode = %q, want %q (err: %v)", got, tt.wantCode, err)
			}
		})
	}
}

func TestQueryIsActive(t *testing.T) {
	tests := []struct {
		name  string
		query Query
		want  bool
	}{
		{"empty", Query{PageSize: 10}, false},
		{"term", Query{Term: "laser", PageSize: 10}, true},
		{"component only", Query{PageSize: 10, Components: []string{"NAVY"}}, true},
		{"year only", Query{PageSize: 10, ProgramYears: []int{2024}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.query.IsActive(); got != tt.want {
				t.Errorf("IsActive = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestQueryClampPageSize(t *testing.T) {
	if got := (Query{PageSize: 500}).ClampPageSize(100).PageSize; got != 100 {
		t.Errorf("clamped to %d, want 100", got)
	}
	if got := (Query{PageSize: 0}).ClampPageSize(100).PageSize; got != 1 {
		t.Errorf("clamped to %d, want 1", got)
	}
	if got := (Query{PageSize: 25}).ClampPageSize(100).PageSize; got != 25 {
		t.Errorf("clamped to %d, want 25", got)
	}
}

func TestNormalizeComponents(t *testing.T) {
	q := Query{PageSize: 10}.WithComponents([]string{" navy ", "ARMY", "navy", ""})
	want := []string{"ARMY", "NAVY"}
	if len(q.Components) != len(want) {
		t.Fatalf("Components = %v, want %v", q.Components, want)
	}
	for i := range want {
		if q.Components[i] != want[i] {
			t.Errorf("Components[%d] = %q, want %q", i, q.Components[i], want[i])
		}
	}
}
