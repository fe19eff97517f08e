// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package history

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/topic-engine/pkg/types"
)

// --- test helpers ---

func testSetup(t *testing.T) *Store {
	t.Helper()
	cfg := types.HistoryConfig{Path: filepath.Join(t.TempDir(), "history", "topic-engine.db")}
	store, err := NewStore(cfg)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func laserPage(page int) *types.ResultPage {
	q := types.NewQuery(10).WithTerm("laser").WithComponents([]string{"USAF"}).WithPage(page)
	return &types.ResultPage{
		Topics: []types.Topic{
			{UID: "u1", Code: "AF244-0001", Title: "Airborne laser pod", Component: "USAF",
				Status: "Open", ProgramYear: 2024, Keywords: []string{"laser", "pod"}},
			{UID: "u2", Code: "AF244-0002", Title: "Laser terminal guidance", Component: "USAF",
				Status: "Open", ProgramYear: 2024, Keywords: []string{"laser", "guidance"}},
		},
		Total: 23,
		Query: q,
	}
}

func recordOutcome(t *testing.T, s *Store, id string, state types.RetrievalState, uids []string) {
	t.Helper()
	started := time.Now().Add(-2 * time.Second)
	out := &types.Outcome{
		OperationID:  id,
		State:        state,
		Kind:         "batch",
		Count:        len(uids),
		ArtifactName: "selected_pdfs.zip",
		Started:      started,
		Finished:     started.Add(time.Second),
	}
	if state == types.StateFailed {
		out.ArtifactName = ""
		out.Cause = "catalog returned status 502"
	}
	if err := s.RecordRetrieval(context.Background(), out, uids); err != nil {
		t.Fatal(err)
	}
}

// --- searches ---

func TestRecordSearchAndRecentSearches(t *testing.T) {
	s := testSetup(t)

	if err := s.RecordSearch(context.Background(), laserPage(0)); err != nil {
		t.Fatalf("RecordSearch() error = %v", err)
	}
	if err := s.RecordSearch(context.Background(), laserPage(1)); err != nil {
		t.Fatalf("RecordSearch() error = %v", err)
	}

	records, err := s.RecentSearches(context.Background(), 10)
	if err != nil {
		t.Fatalf("RecentSearches() error = %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("len(records) = %d, want 2", len(records))
	}
	// Newest first.
	if records[0].Page != 1 || records[1].Page != 0 {
		t.Errorf("pages = %d,%d, want 1,0", records[0].Page, records[1].Page)
	}
	if records[0].Term != "laser" || records[0].Total != 23 {
		t.Errorf("record = %+v, want term laser, total 23", records[0])
	}
	if len(records[0].Components) != 1 || records[0].Components[0] != "USAF" {
		t.Errorf("components = %v, want [USAF]", records[0].Components)
	}
	if time.Since(records[0].SearchedAt) > time.Minute {
		t.Errorf("searched_at = %v, want recent", records[0].SearchedAt)
	}
}

func TestRecordSearchUpsertsTopics(t *testing.T) {
	s := testSetup(t)
	ctx := context.Background()

	if err := s.RecordSearch(ctx, laserPage(0)); err != nil {
		t.Fatal(err)
	}
	first, err := s.TopicByCode(ctx, "AF244-0001")
	if err != nil {
		t.Fatalf("TopicByCode() error = %v", err)
	}

	// Seeing the same topic again updates last_seen but keeps first_seen.
	time.Sleep(5 * time.Millisecond)
	page := laserPage(0)
	page.Topics[0].Status = "Closed"
	if err := s.RecordSearch(ctx, page); err != nil {
		t.Fatal(err)
	}

	again, err := s.TopicByCode(ctx, "AF244-0001")
	if err != nil {
		t.Fatal(err)
	}
	if again.Status != "Closed" {
		t.Errorf("status = %q, want updated Closed", again.Status)
	}
	if !again.FirstSeen.Equal(first.FirstSeen) {
		t.Errorf("first_seen = %v, want unchanged %v", again.FirstSeen, first.FirstSeen)
	}
	if !again.LastSeen.After(first.LastSeen) {
		t.Errorf("last_seen = %v, want after %v", again.LastSeen, first.LastSeen)
	}

	sum, err := s.Summary(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if sum.Topics != 2 {
		t.Errorf("summary topics = %d, want 2 (upsert, not insert)", sum.Topics)
	}
}

func TestTopicByCodeNotFound(t *testing.T) {
	s := testSetup(t)
	_, err := s.TopicByCode(context.Background(), "XX999-9999")
	if types.ErrorCode(err) != types.ENOTFOUND {
		t.Errorf("error code = %q, want %q", types.ErrorCode(err), types.ENOTFOUND)
	}
}

// --- full-text search ---

func TestFindTopics(t *testing.T) {
	s := testSetup(t)
	ctx := context.Background()
	if err := s.RecordSearch(ctx, laserPage(0)); err != nil {
		t.Fatal(err)
	}

	records, err := s.FindTopics(ctx, "guidance", 10)
	if err != nil {
		t.Fatalf("FindTopics() error = %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("len(records) = %d, want 1", len(records))
	}
	if records[0].Code != "AF244-0002" {
		t.Errorf("code = %q, want AF244-0002", records[0].Code)
	}

	records, err = s.FindTopics(ctx, "laser", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 2 {
		t.Errorf("len(records) for laser = %d, want 2", len(records))
	}

	if _, err := s.FindTopics(ctx, "", 10); types.ErrorCode(err) != types.EINVALID {
		t.Errorf("empty query error code = %q, want %q", types.ErrorCode(err), types.EINVALID)
	}
}

func TestFindTopicsSeesUpdatedTitles(t *testing.T) {
	s := testSetup(t)
	ctx := context.Background()
	if err := s.RecordSearch(ctx, laserPage(0)); err != nil {
		t.Fatal(err)
	}

	page := laserPage(0)
	page.Topics[0].Title = "Hypersonic interceptor pod"
	if err := s.RecordSearch(ctx, page); err != nil {
		t.Fatal(err)
	}

	records, err := s.FindTopics(ctx, "hypersonic", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 || records[0].UID != "u1" {
		t.Errorf("records = %+v, want the re-titled u1", records)
	}
}

// --- retrievals ---

func TestRecordRetrievalAndList(t *testing.T) {
	s := testSetup(t)
	ctx := context.Background()

	recordOutcome(t, s, "op-1", types.StateDelivered, []string{"u1", "u2"})
	recordOutcome(t, s, "op-2", types.StateFailed, []string{"u3"})

	records, err := s.Retrievals(ctx, 10)
	if err != nil {
		t.Fatalf("Retrievals() error = %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("len(records) = %d, want 2", len(records))
	}

	byID := map[string]RetrievalRecord{}
	for _, r := range records {
		byID[r.ID] = r
	}
	delivered := byID["op-1"]
	if delivered.State != types.StateDelivered || delivered.Artifact != "selected_pdfs.zip" {
		t.Errorf("op-1 = %+v, want delivered zip", delivered)
	}
	if len(delivered.UIDs) != 2 {
		t.Errorf("op-1 uids = %v, want 2", delivered.UIDs)
	}
	failed := byID["op-2"]
	if failed.State != types.StateFailed || failed.Cause == "" {
		t.Errorf("op-2 = %+v, want failed with cause", failed)
	}

	sum, err := s.Summary(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if sum.Retrievals != 2 || sum.Delivered != 1 || sum.Failed != 1 {
		t.Errorf("summary = %+v, want 2/1/1", sum)
	}
}

// --- export ---

func TestExportRoundTrip(t *testing.T) {
	s := testSetup(t)
	ctx := context.Background()
	if err := s.RecordSearch(ctx, laserPage(0)); err != nil {
		t.Fatal(err)
	}
	recordOutcome(t, s, "op-1", types.StateDelivered, []string{"u1"})

	var yamlBuf bytes.Buffer
	if err := s.ExportYAML(ctx, &yamlBuf); err != nil {
		t.Fatalf("ExportYAML() error = %v", err)
	}
	var fromYAML Export
	if err := yaml.Unmarshal(yamlBuf.Bytes(), &fromYAML); err != nil {
		t.Fatalf("export is not valid YAML: %v", err)
	}
	if fromYAML.Summary.Searches != 1 || len(fromYAML.Topics) != 2 {
		t.Errorf("yaml export = %+v, want 1 search, 2 topics", fromYAML.Summary)
	}

	var jsonBuf bytes.Buffer
	if err := s.ExportJSON(ctx, &jsonBuf); err != nil {
		t.Fatalf("ExportJSON() error = %v", err)
	}
	var fromJSON Export
	if err := json.Unmarshal(jsonBuf.Bytes(), &fromJSON); err != nil {
		t.Fatalf("export is not valid JSON: %v", err)
	}
	if len(fromJSON.Retrievals) != 1 || fromJSON.Retrievals[0].ID != "op-1" {
		t.Errorf("json export retrievals = %+v, want op-1", fromJSON.Retrievals)
	}
	if !strings.Contains(jsonBuf.String(), "AF244-0001") {
		t.Errorf("json export missing topic code")
	}
}

// --- reopening ---

func TestStoreReopenKeepsData(t *testing.T) {
	dir := t.TempDir()
	cfg := types.HistoryConfig{Path: filepath.Join(dir, "topic-engine.db")}

	s, err := NewStore(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.RecordSearch(context.Background(), laserPage(0)); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	reopened, err := NewStore(cfg)
	if err != nil {
		t.Fatalf("reopening store: %v", err)
	}
	defer reopened.Close()

	sum, err := reopened.Summary(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if sum.Searches != 1 || sum.Topics != 2 {
		t.Errorf("summary after reopen = %+v, want 1 search, 2 topics", sum)
	}
}

func TestNewStoreRequiresPath(t *testing.T) {
	_, err := NewStore(types.HistoryConfig{})
	if types.ErrorCode(err) != types.EINVALID {
		t.Errorf("error code = %q, want %q", types.ErrorCode(err), types.EINVALID)
	}
}
