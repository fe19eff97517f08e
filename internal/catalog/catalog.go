// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package catalog speaks the DoD SBIR/STTR topics API: searching topic
// records, downloading topic PDFs, assembling batch archives, and listing
// published Q&A entries.
package catalog

import (
	"context"

	"github.com/pdiddy/topic-engine/pkg/types"
)

// Service is the catalog surface the fetcher and the retrieval coordinator
// consume. Implementations must be safe for concurrent use.
type Service interface {
	// Search resolves one page of topic records for the query.
	Search(ctx context.Context, q types.Query) (*types.ResultPage, error)

	// DownloadOne retrieves the PDF for a single topic UID.
	DownloadOne(ctx context.Context, uid string) (*types.Artifact, error)

	// DownloadMany retrieves every requested document and returns one
	// combined artifact: the raw PDF for a single UID, a zip archive for
	// several. Individual failures become error entries inside the archive;
	// the call fails only when every download fails.
	DownloadMany(ctx context.Context, req types.RetrievalRequest) (*types.Artifact, error)

	// Questions lists the published Q&A entries for a topic.
	Questions(ctx context.Context, uid string) ([]types.Question, error)
}
