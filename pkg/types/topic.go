// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the shared data structures of topic-engine: catalog
// records, queries, result pages, retrieval requests and artifacts, the coded
// error type, and configuration.
package types

// Topic is an immutable catalog record returned by search. The UID is the
// only key used for selection and retrieval; every other field is display
// metadata.
type Topic struct {
	// UID is the opaque catalog identifier used for PDF retrieval.
	UID string `json:"uid" yaml:"uid"`

	// Code is the human-facing topic code (e.g. "AF244-0001").
	Code string `json:"code" yaml:"code"`

	// Title is the topic title.
	Title string `json:"title" yaml:"title"`

	// Component is the owning component (e.g. "ARMY", "NAVY").
	Component string `json:"component" yaml:"component"`

	// Status is the topic's release status (e.g. "Open", "Pre-Release").
	Status string `json:"status" yaml:"status"`

	// SolicitationTitle names the solicitation the topic belongs to.
	SolicitationTitle string `json:"solicitation_title" yaml:"solicitation_title"`

	// ProgramYear is the program year, 0 when the catalog omits it.
	ProgramYear int `json:"program_year,omitempty" yaml:"program_year,omitempty"`

	// ReleaseNumber is the release number. The catalog serves it as either a
	// string or a number; decoding normalizes it to a string.
	ReleaseNumber string `json:"release_number,omitempty" yaml:"release_number,omitempty"`

	// TechnologyArea is the topic's technology area, empty when unset.
	TechnologyArea string `json:"technology_area,omitempty" yaml:"technology_area,omitempty"`

	// Keywords lists the topic keywords in catalog order.
	Keywords []string `json:"keywords,omitempty" yaml:"keywords,omitempty"`
}

// ResultPage is one page of search results plus pagination metadata. A page
// is created per successful fetch and replaced wholesale; it is never mutated
// in place.
type ResultPage struct {
	// Topics holds the records for the requested page, in catalog order.
	Topics []Topic `json:"topics" yaml:"topics"`

	// Total is the result count across all pages.
	Total int `json:"total" yaml:"total"`

	// Query is the query that produced this page.
	Query Query `json:"query" yaml:"query"`
}

// HasMore reports whether pages beyond this one exist.
func (p *ResultPage) HasMore() bool {
	return (p.Query.Page+1)*p.Query.PageSize < p.Total
}

// EmptyResult returns the page an inactive query resolves to: no topics, no
// total, no network involved.
func EmptyResult(q Query) *ResultPage {
	return &ResultPage{Topics: []Topic{}, Total: 0, Query: q}
}

// Question is a published Q&A entry attached to a topic.
type Question struct {
	// Number is the question's sequence number within the topic.
	Number int `json:"number" yaml:"number"`

	// Text is the question as submitted.
	Text string `json:"text" yaml:"text"`

	// Answer is the published answer, empty while unanswered.
	Answer string `json:"answer,omitempty" yaml:"answer,omitempty"`

	// Status is the question's publication status.
	Status string `json:"status,omitempty" yaml:"status,omitempty"`
}
