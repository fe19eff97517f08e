// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package retrieve

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pdiddy/topic-engine/pkg/types"
)

// Sink delivers a retrieval artifact to its destination. Implementations
// return a human-readable description of where the artifact went.
type Sink interface {
	Deliver(ctx context.Context, a *types.Artifact) (string, error)
}

// DirSink writes artifacts into a directory. An existing file is never
// overwritten: a taken name gets a numeric suffix before the extension.
type DirSink struct {
	Dir string
}

// Deliver writes the artifact to a fresh file under the sink directory. The
// payload goes to a temp file first and is renamed into place, so a failed
// write never leaves a partial artifact behind.
func (s *DirSink) Deliver(ctx context.Context, a *types.Artifact) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", fmt.Errorf("creating directory %s: %w", s.Dir, err)
	}

	dest := filepath.Join(s.Dir, uniqueName(s.Dir, a.Name))

	tmp, err := os.CreateTemp(s.Dir, ".retrieve-*.tmp")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	_, writeErr := tmp.Write(a.Payload)
	closeErr := tmp.Close()
	if writeErr != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("writing artifact: %w", writeErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("closing temp file: %w", closeErr)
	}

	if err := os.Rename(tmpPath, dest); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("renaming temp file: %w", err)
	}
	return dest, nil
}

// uniqueName returns name if it is free in dir, otherwise the first
// "stem-N.ext" that is.
func uniqueName(dir, name string) string {
	if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
		return name
	}
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for i := 2; ; i++ {
		candidate := fmt.Sprintf("%s-%d%s", stem, i, ext)
		if _, err := os.Stat(filepath.Join(dir, candidate)); err != nil {
			return candidate
		}
	}
}

// WriterSink streams the artifact payload to a single writer, such as an
// HTTP response body. It delivers at most once.
type WriterSink struct {
	W io.Writer

	delivered bool
}

func (s *WriterSink) Deliver(ctx context.Context, a *types.Artifact) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if s.delivered {
		return "", fmt.Errorf("writer sink already used")
	}
	s.delivered = true
	if _, err := s.W.Write(a.Payload); err != nil {
		return "", fmt.Errorf("writing artifact: %w", err)
	}
	return a.Name, nil
}

// CaptureSink retains delivered artifacts in memory for callers that need the
// payload after delivery, such as HTTP handlers building a response.
type CaptureSink struct {
	mu        sync.Mutex
	Artifacts []*types.Artifact

	// Err, when set, is returned by Deliver instead of capturing.
	Err error
}

func (s *CaptureSink) Deliver(ctx context.Context, a *types.Artifact) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return "", s.Err
	}
	s.Artifacts = append(s.Artifacts, a)
	return "capture:" + a.Name, nil
}

// Last returns the most recently captured artifact, nil when none.
func (s *CaptureSink) Last() *types.Artifact {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.Artifacts) == 0 {
		return nil
	}
	return s.Artifacts[len(s.Artifacts)-1]
}
