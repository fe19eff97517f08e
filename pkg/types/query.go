// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Components lists the component codes the catalog accepts as filters.
var Components = []string{
	"ARMY", "CBD", "DARPA", "DHA", "MDA", "DTRA",
	"DMEA", "DLA", "NAVY", "OSD", "SOCOM", "USAF",
}

// Query describes what the user wants to see: a free-text term, a pagination
// cursor, and optional filter facets. Query is a value object; the With
// methods return updated copies and never mutate the receiver. Two Queries
// are equal iff all fields compare equal, and that equality is the result
// cache key.
type Query struct {
	// Term is the free-text search term. Empty means no active search.
	Term string `json:"term" yaml:"term"`

	// Page is the zero-based page index.
	Page int `json:"page" yaml:"page"`

	// PageSize is the number of records per page.
	PageSize int `json:"page_size" yaml:"page_size"`

	// Components filters results to the named components. Stored sorted and
	// deduplicated so equality is order-insensitive.
	Components []string `json:"components,omitempty" yaml:"components,omitempty"`

	// ProgramYears filters results to the given program years. Stored sorted
	// and deduplicated.
	ProgramYears []int `json:"program_years,omitempty" yaml:"program_years,omitempty"`
}

// NewQuery returns an empty query at page 0 with the given page size.
func NewQuery(pageSize int) Query {
	return Query{PageSize: pageSize}
}

// WithTerm returns a copy with the term replaced. A term change invalidates
// the pagination cursor, so the page resets to 0. Setting the identical term
// is not a change and preserves the page.
func (q Query) WithTerm(term string) Query {
	term = strings.TrimSpace(term)
	if term == q.Term {
		return q
	}
	q.Term = term
	q.Page = 0
	return q
}

// WithPage returns a copy positioned on the given page. Term and filters are
// preserved.
func (q Query) WithPage(page int) Query {
	q.Page = page
	return q
}

// WithComponents returns a copy with the component filter replaced. The page
// resets to 0 when the filter actually changes.
func (q Query) WithComponents(components []string) Query {
	next := normalizeStrings(components)
	if slices.Equal(next, q.Components) {
		return q
	}
	q.Components = next
	q.Page = 0
	return q
}

// WithProgramYears returns a copy with the program-year filter replaced. The
// page resets to 0 when the filter actually changes.
func (q Query) WithProgramYears(years []int) Query {
	next := normalizeInts(years)
	if slices.Equal(next, q.ProgramYears) {
		return q
	}
	q.ProgramYears = next
	q.Page = 0
	return q
}

// IsActive reports whether the query should reach the network: a non-empty
// term or at least one filter. Inactive queries resolve to EmptyResult.
func (q Query) IsActive() bool {
	return q.Term != "" || len(q.Components) > 0 || len(q.ProgramYears) > 0
}

// Equal reports field-by-field equality.
func (q Query) Equal(other Query) bool {
	return q.Term == other.Term &&
		q.Page == other.Page &&
		q.PageSize == other.PageSize &&
		slices.Equal(q.Components, other.Components) &&
		slices.Equal(q.ProgramYears, other.ProgramYears)
}

// Key returns the canonical cache key for this query. Equal queries produce
// equal keys.
func (q Query) Key() string {
	var b strings.Builder
	b.WriteString(q.Term)
	b.WriteString("|p=")
	b.WriteString(strconv.Itoa(q.Page))
	b.WriteString("|s=")
	b.WriteString(strconv.Itoa(q.PageSize))
	b.WriteString("|c=")
	b.WriteString(strings.Join(q.Components, ","))
	b.WriteString("|y=")
	for i, y := range q.ProgramYears {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(y))
	}
	return b.String()
}

// Validate rejects caller errors before any network activity: negative pages,
// non-positive page sizes, and unknown component names. Returns an EINVALID
// error or nil.
func (q Query) Validate() error {
	if q.Page < 0 {
		return Errorf(EINVALID, "page must be >= 0, got %d", q.Page)
	}
	if q.PageSize <= 0 {
		return Errorf(EINVALID, "page size must be positive, got %d", q.PageSize)
	}
	for _, c := range q.Components {
		if !slices.Contains(Components, c) {
			return Errorf(EINVALID, "unknown component %q (valid: %s)", c, strings.Join(Components, ", "))
		}
	}
	for _, y := range q.ProgramYears {
		if y < 0 {
			return Errorf(EINVALID, "program year must be >= 0, got %d", y)
		}
	}
	return nil
}

// ClampPageSize bounds the page size to [1, max], returning the adjusted
// query.
func (q Query) ClampPageSize(max int) Query {
	if q.PageSize < 1 {
		q.PageSize = 1
	}
	if max > 0 && q.PageSize > max {
		q.PageSize = max
	}
	return q
}

// String renders the query for progress output and history records.
func (q Query) String() string {
	parts := []string{fmt.Sprintf("term=%q page=%d size=%d", q.Term, q.Page, q.PageSize)}
	if len(q.Components) > 0 {
		parts = append(parts, "components="+strings.Join(q.Components, ","))
	}
	if len(q.ProgramYears) > 0 {
		ys := make([]string, len(q.ProgramYears))
		for i, y := range q.ProgramYears {
			ys[i] = strconv.Itoa(y)
		}
		parts = append(parts, "years="+strings.Join(ys, ","))
	}
	return strings.Join(parts, " ")
}

func normalizeStrings(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s != "" && !slices.Contains(out, s) {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil
	}
	slices.Sort(out)
	return out
}

func normalizeInts(in []int) []int {
	if len(in) == 0 {
		return nil
	}
	out := make([]int, 0, len(in))
	for _, v := range in {
		if !slices.Contains(out, v) {
			out = append(out, v)
		}
	}
	slices.Sort(out)
	return out
}
