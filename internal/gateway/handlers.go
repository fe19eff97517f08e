// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package gateway

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/pdiddy/topic-engine/internal/history"
	"github.com/pdiddy/topic-engine/internal/retrieve"
	"github.com/pdiddy/topic-engine/pkg/types"
)

// searchRequest is the POST /topics/search body.
type searchRequest struct {
	Term         string   `json:"term"`
	Page         int      `json:"page"`
	PageSize     int      `json:"page_size"`
	Components   []string `json:"components"`
	ProgramYears []int    `json:"program_years"`
}

// downloadRequest is the POST /topics/download body. The query fields give
// the retrieval its search context for entry naming.
type downloadRequest struct {
	UIDs         []string `json:"uids"`
	Term         string   `json:"term"`
	Components   []string `json:"components"`
	ProgramYears []int    `json:"program_years"`
}

func (h *Handler) search(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, types.Errorf(types.EINVALID, "invalid request body: %v", err))
		return
	}

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = h.cfg.Search.PageSize
	}
	q := types.NewQuery(pageSize).
		WithTerm(req.Term).
		WithComponents(req.Components).
		WithProgramYears(req.ProgramYears).
		WithPage(req.Page).
		ClampPageSize(h.cfg.Search.MaxPageSize)
	if err := q.Validate(); err != nil {
		writeError(w, err)
		return
	}

	if !q.IsActive() {
		writeJSON(w, http.StatusOK, types.EmptyResult(q))
		return
	}

	page, err := h.svc.Search(r.Context(), q)
	if err != nil {
		writeError(w, err)
		return
	}

	// History is best-effort; a ledger problem must not fail the search.
	if h.hist != nil {
		_ = h.hist.RecordSearch(r.Context(), page)
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *Handler) download(w http.ResponseWriter, r *http.Request) {
	var req downloadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, types.Errorf(types.EINVALID, "invalid request body: %v", err))
		return
	}

	q := types.NewQuery(h.cfg.Search.PageSize).
		WithTerm(req.Term).
		WithComponents(req.Components).
		WithProgramYears(req.ProgramYears)
	if err := q.Validate(); err != nil {
		writeError(w, err)
		return
	}

	sink := &retrieve.CaptureSink{}
	coord := retrieve.NewCoordinator(h.svc, sink)
	for _, uid := range req.UIDs {
		if !coord.Selection().Contains(uid) {
			coord.Selection().Toggle(uid)
		}
	}

	out, err := coord.RetrieveBatch(r.Context(), q)
	if h.hist != nil && out != nil {
		_ = h.hist.RecordRetrieval(r.Context(), out, coord.Selection().UIDs())
	}
	if err != nil {
		writeError(w, err)
		return
	}

	art := sink.Last()
	w.Header().Set("Content-Type", art.MediaType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", art.Name))
	w.Header().Set("Content-Length", strconv.Itoa(art.Size()))
	w.WriteHeader(http.StatusOK)
	w.Write(art.Payload)
}

func (h *Handler) questions(w http.ResponseWriter, r *http.Request) {
	uid := chi.URLParam(r, "uid")
	questions, err := h.svc.Questions(r.Context(), uid)
	if err != nil {
		writeError(w, err)
		return
	}
	if questions == nil {
		questions = []types.Question{}
	}
	writeJSON(w, http.StatusOK, questions)
}

func (h *Handler) historySearches(w http.ResponseWriter, r *http.Request) {
	if h.hist == nil {
		writeError(w, types.Errorf(types.ENOTFOUND, "history is disabled"))
		return
	}
	records, err := h.hist.RecentSearches(r.Context(), queryInt(r, "limit", 20))
	if err != nil {
		writeError(w, err)
		return
	}
	if records == nil {
		records = []history.SearchRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}

func (h *Handler) historyRetrievals(w http.ResponseWriter, r *http.Request) {
	if h.hist == nil {
		writeError(w, types.Errorf(types.ENOTFOUND, "history is disabled"))
		return
	}
	records, err := h.hist.Retrievals(r.Context(), queryInt(r, "limit", 20))
	if err != nil {
		writeError(w, err)
		return
	}
	if records == nil {
		records = []history.RetrievalRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}

func (h *Handler) historySummary(w http.ResponseWriter, r *http.Request) {
	if h.hist == nil {
		writeError(w, types.Errorf(types.ENOTFOUND, "history is disabled"))
		return
	}
	sum, err := h.hist.Summary(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

// writeError maps the coded error taxonomy onto HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(types.ErrorCode(err)), map[string]string{
		"detail": types.ErrorMessage(err),
		"code":   types.ErrorCode(err),
	})
}

func statusFor(code string) int {
	switch code {
	case types.EINVALID, types.EEMPTYSEL:
		return http.StatusBadRequest
	case types.ENOTFOUND:
		return http.StatusNotFound
	case types.ESEARCH, types.ERETRIEVAL:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func queryInt(r *http.Request, key string, def int) int {
	s := r.URL.Query().Get(key)
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}
