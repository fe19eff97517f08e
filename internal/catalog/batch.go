// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"time"

	"go.yaml.in/yaml/v3"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/topic-engine/pkg/types"
)

// archiveName is the filename batch artifacts are delivered under.
const archiveName = "selected_pdfs.zip"

// resolvePageSize bounds the search used to map topic UIDs back to their
// display codes for archive entry names.
const resolvePageSize = 1000

// DownloadMany retrieves the requested documents and returns one combined
// artifact. A single UID yields the raw PDF; several yield a zip archive
// with one {code}.pdf entry per success, an ERROR_{code}.txt entry per
// failure, and a manifest.yaml recording the originating query and every
// entry's outcome. The batch never aborts on an individual failure; the call
// errors only when nothing at all could be downloaded.
func (c *Client) DownloadMany(ctx context.Context, req types.RetrievalRequest) (*types.Artifact, error) {
	if len(req.UIDs) == 0 {
		return nil, types.Errorf(types.EEMPTYSEL, "no documents requested")
	}

	names := c.resolveNames(ctx, req)

	if req.Single() {
		uid := req.UIDs[0]
		art, err := c.DownloadOne(ctx, uid)
		if err != nil {
			return nil, err
		}
		if code := names[uid]; code != "" {
			art.Name = code + ".pdf"
		}
		return art, nil
	}

	fmt.Fprintf(c.progress(), "downloading %d documents\n", len(req.UIDs))

	type result struct {
		artifact *types.Artifact
		err      error
	}
	results := make([]result, len(req.UIDs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.cfg.Concurrency)
	for i, uid := range req.UIDs {
		g.Go(func() error {
			art, err := c.DownloadOne(gctx, uid)
			results[i] = result{artifact: art, err: err}
			// Individual failures become archive entries, not batch errors.
			return nil
		})
	}
	g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, types.WrapErr(types.ERETRIEVAL, err, "batch download interrupted")
	}

	manifest := archiveManifest{
		Archive: archiveName,
		Created: time.Now().UTC(),
		Query:   req.Query,
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	taken := map[string]bool{}
	failures := 0

	for i, uid := range req.UIDs {
		name := names[uid]
		if name == "" {
			name = uid
		}
		res := results[i]
		if res.err != nil {
			failures++
			fmt.Fprintf(c.progress(), "failed: %s: %v\n", name, res.err)
			entry := uniqueEntryName(taken, "ERROR_"+name+".txt")
			body := fmt.Sprintf("Failed to download PDF for topic %s.\nError: %s\n", name, types.ErrorMessage(res.err))
			if err := writeZipEntry(zw, entry, []byte(body)); err != nil {
				return nil, types.WrapErr(types.ERETRIEVAL, err, "assembling archive")
			}
			manifest.Entries = append(manifest.Entries, manifestEntry{
				UID: uid, Entry: entry, Status: "failed", Cause: types.ErrorMessage(res.err),
			})
			continue
		}

		fmt.Fprintf(c.progress(), "downloaded: %s (%d bytes)\n", name, res.artifact.Size())
		entry := uniqueEntryName(taken, name+".pdf")
		if err := writeZipEntry(zw, entry, res.artifact.Payload); err != nil {
			return nil, types.WrapErr(types.ERETRIEVAL, err, "assembling archive")
		}
		manifest.Entries = append(manifest.Entries, manifestEntry{
			UID: uid, Entry: entry, Status: "ok",
			Pages: res.artifact.Pages, Bytes: res.artifact.Size(),
		})
	}

	if failures == len(req.UIDs) {
		return nil, types.Errorf(types.ERETRIEVAL, "all %d downloads failed", len(req.UIDs))
	}

	manifestBody, err := yaml.Marshal(manifest)
	if err != nil {
		return nil, types.WrapErr(types.ERETRIEVAL, err, "encoding manifest")
	}
	if err := writeZipEntry(zw, "manifest.yaml", manifestBody); err != nil {
		return nil, types.WrapErr(types.ERETRIEVAL, err, "assembling archive")
	}
	if err := zw.Close(); err != nil {
		return nil, types.WrapErr(types.ERETRIEVAL, err, "finalizing archive")
	}

	return &types.Artifact{
		Name:      archiveName,
		MediaType: types.MediaZip,
		Payload:   buf.Bytes(),
	}, nil
}

// resolveNames maps UIDs to topic codes by re-running the originating
// search, mirroring how the batch was assembled in the first place. Best
// effort: on any failure entries fall back to UID names.
func (c *Client) resolveNames(ctx context.Context, req types.RetrievalRequest) map[string]string {
	names := make(map[string]string, len(req.UIDs))
	if !req.Query.IsActive() {
		return names
	}

	q := req.Query.WithPage(0)
	q.PageSize = resolvePageSize
	page, err := c.Search(ctx, q)
	if err != nil {
		fmt.Fprintf(c.progress(), "name resolution failed, using identifiers: %v\n", err)
		return names
	}
	wanted := make(map[string]bool, len(req.UIDs))
	for _, uid := range req.UIDs {
		wanted[uid] = true
	}
	for _, t := range page.Topics {
		if wanted[t.UID] && t.Code != "" {
			names[t.UID] = t.Code
		}
	}
	return names
}

func writeZipEntry(zw *zip.Writer, name string, body []byte) error {
	w, err := zw.Create(name)
	if err != nil {
		return err
	}
	_, err = w.Write(body)
	return err
}

// uniqueEntryName disambiguates colliding archive entry names with a
// numeric suffix.
func uniqueEntryName(taken map[string]bool, name string) string {
	if !taken[name] {
		taken[name] = true
		return name
	}
	ext := ""
	base := name
	if i := lastDot(name); i > 0 {
		base, ext = name[:i], name[i:]
	}
	for n := 2; ; n++ {
		candidate := fmt.Sprintf("%s_%d%s", base, n, ext)
		if !taken[candidate] {
			taken[candidate] = true
			return candidate
		}
	}
}

func lastDot(s string) int {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == '.' {
			return i
		}
	}
	return -1
}

// archiveManifest is the manifest.yaml written into every batch archive.
type archiveManifest struct {
	Archive string          `yaml:"archive"`
	Created time.Time       `yaml:"created"`
	Query   types.Query     `yaml:"query"`
	Entries []manifestEntry `yaml:"entries"`
}

type manifestEntry struct {
	UID    string `yaml:"uid"`
	Entry  string `yaml:"entry"`
	Status string `yaml:"status"`
	Pages  int    `yaml:"pages,omitempty"`
	Bytes  int    `yaml:"bytes,omitempty"`
	Cause  string `yaml:"cause,omitempty"`
}
