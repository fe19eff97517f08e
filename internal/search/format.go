// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/pdiddy/topic-engine/pkg/types"
)

// FormatTable writes a result page as a human-readable table to w.
func FormatTable(page *types.ResultPage, w io.Writer) {
	if len(page.Topics) == 0 {
		fmt.Fprintln(w, "No topics found.")
		return
	}

	fmt.Fprintf(w, "%-4s  %-14s  %-60s  %-8s  %-4s  %s\n",
		"#", "Code", "Title", "Comp", "Year", "Status")
	fmt.Fprintln(w, strings.Repeat("-", 104))

	base := page.Query.Page * page.Query.PageSize
	for i, t := range page.Topics {
		title := t.Title
		if len(title) > 60 {
			title = title[:57] + "..."
		}
		year := ""
		if t.ProgramYear > 0 {
			year = fmt.Sprintf("%d", t.ProgramYear)
		}
		fmt.Fprintf(w, "%-4d  %-14s  %-60s  %-8s  %-4s  %s\n",
			base+i+1, t.Code, title, t.Component, year, t.Status)
	}

	last := base + len(page.Topics)
	fmt.Fprintf(w, "\nshowing %d-%d of %d topics", base+1, last, page.Total)
	if page.HasMore() {
		fmt.Fprintf(w, " (more pages available)")
	}
	fmt.Fprintln(w)
}

// FormatJSON writes a result page as indented JSON to w.
func FormatJSON(page *types.ResultPage, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(page)
}

// FormatQuestions writes a topic's Q&A entries to w.
func FormatQuestions(questions []types.Question, w io.Writer) {
	if len(questions) == 0 {
		fmt.Fprintln(w, "No questions published.")
		return
	}
	for _, q := range questions {
		fmt.Fprintf(w, "Q%d: %s\n", q.Number, q.Text)
		if q.Answer != "" {
			fmt.Fprintf(w, "A%d: %s\n", q.Number, q.Answer)
		} else {
			fmt.Fprintf(w, "A%d: (unanswered)\n", q.Number)
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintf(w, "%d questions\n", len(questions))
}
