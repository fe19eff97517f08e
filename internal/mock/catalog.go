// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package mock provides test doubles for the catalog service.
package mock

import (
	"context"

	"github.com/pdiddy/topic-engine/pkg/types"
)

// CatalogService implements catalog.Service with settable function fields.
// Calls to a nil field panic, which keeps tests honest about what they
// expect to be invoked.
type CatalogService struct {
	SearchFn       func(ctx context.Context, q types.Query) (*types.ResultPage, error)
	DownloadOneFn  func(ctx context.Context, uid string) (*types.Artifact, error)
	DownloadManyFn func(ctx context.Context, req types.RetrievalRequest) (*types.Artifact, error)
	QuestionsFn    func(ctx context.Context, uid string) ([]types.Question, error)
}

func (s *CatalogService) Search(ctx context.Context, q types.Query) (*types.ResultPage, error) {
	return s.SearchFn(ctx, q)
}

func (s *CatalogService) DownloadOne(ctx context.Context, uid string) (*types.Artifact, error) {
	return s.DownloadOneFn(ctx, uid)
}

func (s *CatalogService) DownloadMany(ctx context.Context, req types.RetrievalRequest) (*types.Artifact, error) {
	return s.DownloadManyFn(ctx, req)
}

func (s *CatalogService) Questions(ctx context.Context, uid string) ([]types.Question, error) {
	return s.QuestionsFn(ctx, uid)
}
