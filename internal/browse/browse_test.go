// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package browse

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pdiddy/topic-engine/internal/history"
	"github.com/pdiddy/topic-engine/internal/mock"
	"github.com/pdiddy/topic-engine/pkg/types"
)

// --- helpers ---

func testBrowseConfig(dir string) types.Config {
	return types.Config{
		Search:    types.SearchConfig{PageSize: 10, MaxPageSize: 100, Staleness: 5 * time.Minute},
		Retrieval: types.RetrievalConfig{DownloadsDir: dir},
	}
}

// runScript drives a session through the given commands and returns the
// terminal output.
func runScript(t *testing.T, svc *mock.CatalogService, dir string, script ...string) string {
	t.Helper()
	var out bytes.Buffer
	s := NewSession(testBrowseConfig(dir), svc, nil, &out)
	in := strings.NewReader(strings.Join(script, "\n") + "\n")
	if err := s.Run(context.Background(), in); err != nil {
		t.Fatalf("Run: %v", err)
	}
	return out.String()
}

// pagedSearch serves a 23-topic catalog ten to a page and records every
// query it sees.
func pagedSearch(calls *[]types.Query) func(context.Context, types.Query) (*types.ResultPage, error) {
	return func(_ context.Context, q types.Query) (*types.ResultPage, error) {
		*calls = append(*calls, q)
		const total = 23
		start := q.Page * q.PageSize
		n := q.PageSize
		if start+n > total {
			n = total - start
		}
		if n < 0 {
			n = 0
		}
		topics := make([]types.Topic, n)
		for i := range topics {
			idx := start + i + 1
			topics[i] = types.Topic{
				UID:               fmt.Sprintf("uid-%03d", idx),
				Code:              fmt.Sprintf("AF244-%04d", idx),
				Title:             fmt.Sprintf("Topic number %d", idx),
				Component:         "USAF",
				Status:            "Open",
				SolicitationTitle: "SBIR 24.4",
			}
		}
		return &types.ResultPage{Topics: topics, Total: total, Query: q}, nil
	}
}

func refuseDownloads(t *testing.T) *mock.CatalogService {
	t.Helper()
	var calls []types.Query
	return &mock.CatalogService{
		SearchFn: pagedSearch(&calls),
		DownloadManyFn: func(context.Context, types.RetrievalRequest) (*types.Artifact, error) {
			t.Fatal("unexpected DownloadMany call")
			return nil, nil
		},
		DownloadOneFn: func(context.Context, string) (*types.Artifact, error) {
			t.Fatal("unexpected DownloadOne call")
			return nil, nil
		},
	}
}

// --- tests ---

func TestSearchAndPagination(t *testing.T) {
	var calls []types.Query
	svc := &mock.CatalogService{SearchFn: pagedSearch(&calls)}

	out := runScript(t, svc, t.TempDir(),
		"term laser",
		"next",
		"next",
		"prev",
		"quit",
	)

	if !strings.Contains(out, "AF244-0001") {
		t.Fatalf("first page not rendered:\n%s", out)
	}
	if !strings.Contains(out, "showing 11-20 of 23") {
		t.Errorf("second page footer missing:\n%s", out)
	}
	if !strings.Contains(out, "showing 21-23 of 23") {
		t.Errorf("last page footer missing:\n%s", out)
	}

	wantPages := []int{0, 1, 2}
	if len(calls) < len(wantPages) {
		t.Fatalf("got %d search calls, want at least %d", len(calls), len(wantPages))
	}
	for i, want := range wantPages {
		if calls[i].Page != want {
			t.Errorf("call %d queried page %d, want %d", i, calls[i].Page, want)
		}
		if calls[i].Term != "laser" {
			t.Errorf("call %d queried term %q, want laser", i, calls[i].Term)
		}
	}
}

func TestNextStopsAtLastPage(t *testing.T) {
	var calls []types.Query
	svc := &mock.CatalogService{SearchFn: pagedSearch(&calls)}

	out := runScript(t, svc, t.TempDir(),
		"term laser",
		"next", "next", "next", "next",
		"quit",
	)

	if !strings.Contains(out, "already on the last page") {
		t.Errorf("expected last-page notice:\n%s", out)
	}
	for _, q := range calls {
		if q.Page > 2 {
			t.Errorf("fetched page %d past the end", q.Page)
		}
	}
}

func TestSelectionSurvivesPaginationAndBatch(t *testing.T) {
	var calls []types.Query
	var gotReq types.RetrievalRequest
	dir := t.TempDir()
	svc := &mock.CatalogService{
		SearchFn: pagedSearch(&calls),
		DownloadManyFn: func(_ context.Context, req types.RetrievalRequest) (*types.Artifact, error) {
			gotReq = req
			return &types.Artifact{
				Name:      "selected_pdfs.zip",
				MediaType: types.MediaZip,
				Payload:   []byte("PK archive"),
			}, nil
		},
	}

	out := runScript(t, svc, dir,
		"term laser",
		"sel 1",
		"next",
		"sel 12",
		"get",
		"status",
		"quit",
	)

	if want := []string{"uid-001", "uid-012"}; fmt.Sprint(gotReq.UIDs) != fmt.Sprint(want) {
		t.Errorf("batch requested %v, want %v", gotReq.UIDs, want)
	}
	if gotReq.Query.Term != "laser" || gotReq.Query.Page != 1 {
		t.Errorf("batch carried query %v, want laser page 1", gotReq.Query)
	}
	if _, err := os.Stat(filepath.Join(dir, "selected_pdfs.zip")); err != nil {
		t.Errorf("archive not delivered: %v", err)
	}
	if !strings.Contains(out, "delivered: selected_pdfs.zip") {
		t.Errorf("delivery notice missing:\n%s", out)
	}
	// The selection is only emptied by an explicit clear.
	if !strings.Contains(out, "selected: 2") {
		t.Errorf("selection did not survive the batch:\n%s", out)
	}
}

func TestBatchWithoutSelection(t *testing.T) {
	svc := refuseDownloads(t)

	out := runScript(t, svc, t.TempDir(),
		"term laser",
		"get",
		"quit",
	)

	if !strings.Contains(out, "nothing selected") {
		t.Errorf("expected empty-selection notice:\n%s", out)
	}
}

func TestToggleTwiceUnselects(t *testing.T) {
	svc := refuseDownloads(t)

	out := runScript(t, svc, t.TempDir(),
		"term laser",
		"sel 1",
		"sel 1",
		"status",
		"quit",
	)

	if !strings.Contains(out, "unselected AF244-0001") {
		t.Errorf("second toggle did not unselect:\n%s", out)
	}
	if !strings.Contains(out, "selected: 0") {
		t.Errorf("selection not empty after double toggle:\n%s", out)
	}
}

func TestClearSelection(t *testing.T) {
	svc := refuseDownloads(t)

	out := runScript(t, svc, t.TempDir(),
		"term laser",
		"sel 1 2 3",
		"clear",
		"get",
		"quit",
	)

	if !strings.Contains(out, "selection cleared") {
		t.Errorf("clear notice missing:\n%s", out)
	}
	if !strings.Contains(out, "nothing selected") {
		t.Errorf("batch after clear should find nothing selected:\n%s", out)
	}
}

func TestRetrieveSingle(t *testing.T) {
	var calls []types.Query
	dir := t.TempDir()
	svc := &mock.CatalogService{
		SearchFn: pagedSearch(&calls),
		DownloadOneFn: func(_ context.Context, uid string) (*types.Artifact, error) {
			if uid != "uid-002" {
				t.Errorf("downloaded %q, want uid-002", uid)
			}
			return &types.Artifact{Name: uid + ".pdf", MediaType: types.MediaPDF, Payload: []byte("%PDF-1.4")}, nil
		},
	}

	out := runScript(t, svc, dir,
		"term laser",
		"one 2",
		"quit",
	)

	if _, err := os.Stat(filepath.Join(dir, "uid-002.pdf")); err != nil {
		t.Errorf("document not delivered: %v", err)
	}
	if !strings.Contains(out, "delivered: uid-002.pdf") {
		t.Errorf("delivery notice missing:\n%s", out)
	}
}

func TestQuestions(t *testing.T) {
	var calls []types.Query
	svc := &mock.CatalogService{
		SearchFn: pagedSearch(&calls),
		QuestionsFn: func(_ context.Context, uid string) ([]types.Question, error) {
			if uid != "uid-001" {
				t.Errorf("asked questions for %q, want uid-001", uid)
			}
			return []types.Question{{Number: 1, Text: "What TRL is expected?", Answer: "TRL 4 or above."}}, nil
		},
	}

	out := runScript(t, svc, t.TempDir(),
		"term laser",
		"questions 1",
		"quit",
	)

	if !strings.Contains(out, "Q1: What TRL is expected?") {
		t.Errorf("question not shown:\n%s", out)
	}
	if !strings.Contains(out, "A1: TRL 4 or above.") {
		t.Errorf("answer not shown:\n%s", out)
	}
}

func TestSearchFailureKeepsLastPage(t *testing.T) {
	var calls int
	svc := &mock.CatalogService{
		SearchFn: func(_ context.Context, q types.Query) (*types.ResultPage, error) {
			calls++
			if q.Term == "broken" {
				return nil, types.Errorf(types.ESEARCH, "catalog unavailable")
			}
			return &types.ResultPage{
				Topics: []types.Topic{{UID: "u1", Code: "AF244-0001", Title: "Laser guidance", Component: "USAF", Status: "Open"}},
				Total:  1,
				Query:  q,
			}, nil
		},
	}

	out := runScript(t, svc, t.TempDir(),
		"term laser",
		"term broken",
		"list",
		"quit",
	)

	if !strings.Contains(out, "search failed: catalog unavailable") {
		t.Errorf("failure not reported:\n%s", out)
	}
	// The earlier page stays on screen after a failed search.
	idx := strings.LastIndex(out, "AF244-0001")
	fail := strings.Index(out, "search failed")
	if idx < fail {
		t.Errorf("previous page not shown after failure:\n%s", out)
	}
}

func TestSaveFromBrowser(t *testing.T) {
	var calls []types.Query
	dir := t.TempDir()
	path := filepath.Join(dir, "laser.yaml")
	svc := &mock.CatalogService{SearchFn: pagedSearch(&calls)}

	out := runScript(t, svc, dir,
		"term laser",
		"save "+path,
		"quit",
	)

	if !strings.Contains(out, "saved search to "+path) {
		t.Errorf("save notice missing:\n%s", out)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("saved file: %v", err)
	}
	if !strings.Contains(string(data), "term: laser") {
		t.Errorf("saved file missing query:\n%s", data)
	}
}

func TestUnknownCommand(t *testing.T) {
	svc := &mock.CatalogService{}

	out := runScript(t, svc, t.TempDir(),
		"frobnicate",
		"quit",
	)

	if !strings.Contains(out, `unknown command "frobnicate"`) {
		t.Errorf("expected unknown-command notice:\n%s", out)
	}
}

func TestHistoryRecordsBrowseActivity(t *testing.T) {
	dir := t.TempDir()
	hist, err := history.NewStore(types.HistoryConfig{Path: filepath.Join(dir, "history.db")})
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	defer hist.Close()

	var calls []types.Query
	svc := &mock.CatalogService{
		SearchFn: pagedSearch(&calls),
		DownloadManyFn: func(context.Context, types.RetrievalRequest) (*types.Artifact, error) {
			return &types.Artifact{Name: "selected_pdfs.zip", MediaType: types.MediaZip, Payload: []byte("PK")}, nil
		},
	}

	var out bytes.Buffer
	s := NewSession(testBrowseConfig(dir), svc, hist, &out)
	in := strings.NewReader("term laser\nsel 1\nget\nquit\n")
	if err := s.Run(context.Background(), in); err != nil {
		t.Fatalf("Run: %v", err)
	}

	sum, err := hist.Summary(context.Background())
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if sum.Searches != 1 {
		t.Errorf("recorded %d searches, want 1", sum.Searches)
	}
	if sum.Topics != 10 {
		t.Errorf("recorded %d topics, want 10", sum.Topics)
	}
	if sum.Delivered != 1 {
		t.Errorf("recorded %d delivered retrievals, want 1", sum.Delivered)
	}
}
