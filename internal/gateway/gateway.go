// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package gateway exposes topic search and retrieval over HTTP for browser
// frontends. Handlers are stateless: each request carries its full query or
// UID list, and each download runs its own retrieval operation.
package gateway

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/pdiddy/topic-engine/internal/catalog"
	"github.com/pdiddy/topic-engine/internal/history"
	"github.com/pdiddy/topic-engine/pkg/types"
)

// Handler serves the gateway API.
type Handler struct {
	svc  catalog.Service
	hist *history.Store
	cfg  types.Config
}

// NewRouter builds the gateway router. hist may be nil; the history
// endpoints then report not found.
func NewRouter(svc catalog.Service, hist *history.Store, cfg types.Config) http.Handler {
	h := &Handler{svc: svc, hist: hist, cfg: cfg}

	allowed := cfg.Server.AllowedOrigins
	if len(allowed) == 0 {
		allowed = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowed,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/topics/search", h.search)
		r.Post("/topics/download", h.download)
		r.Get("/topics/{uid}/questions", h.questions)

		r.Route("/history", func(r chi.Router) {
			r.Get("/searches", h.historySearches)
			r.Get("/retrievals", h.historyRetrievals)
			r.Get("/summary", h.historySummary)
		})
	})

	return r
}
