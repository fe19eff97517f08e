// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package retrieve

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pdiddy/topic-engine/internal/catalog"
	"github.com/pdiddy/topic-engine/pkg/types"
)

// Coordinator drives retrieval operations against the catalog and delivers
// the resulting artifact through a sink. Each operation runs Requesting to
// a terminal state and records an Outcome; a failed operation is never
// retried automatically, the operator issues a fresh one.
type Coordinator struct {
	svc  catalog.Service
	sink Sink

	// Progress receives human-readable status lines. Defaults to discard.
	Progress io.Writer

	selection *Selection

	mu    sync.Mutex
	state types.RetrievalState
	last  *types.Outcome
}

// NewCoordinator returns a coordinator with an empty selection.
func NewCoordinator(svc catalog.Service, sink Sink) *Coordinator {
	return &Coordinator{
		svc:       svc,
		sink:      sink,
		selection: NewSelection(),
		state:     types.StateIdle,
	}
}

// Selection returns the coordinator's selection set.
func (c *Coordinator) Selection() *Selection { return c.selection }

// State returns the state of the current or most recent operation,
// StateIdle before the first one.
func (c *Coordinator) State() types.RetrievalState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// LastOutcome returns the most recent operation's outcome, nil before the
// first operation finishes.
func (c *Coordinator) LastOutcome() *types.Outcome {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last
}

// RetrieveSingle downloads one topic's document by UID and delivers it. The
// selection is not consulted and not modified.
func (c *Coordinator) RetrieveSingle(ctx context.Context, uid string) (*types.Outcome, error) {
	if uid == "" {
		return nil, types.Errorf(types.EINVALID, "topic uid is required")
	}
	out, err := c.begin("single", 1)
	if err != nil {
		return nil, err
	}

	fmt.Fprintf(c.progress(), "retrieving document %s\n", uid)
	art, err := c.svc.DownloadOne(ctx, uid)
	if err != nil {
		return c.fail(out, err)
	}
	return c.deliver(ctx, out, art)
}

// RetrieveBatch downloads every selected topic and delivers the combined
// artifact: a raw PDF for one selected topic, a zip archive for several.
// The query gives the backend the search context the selection came from.
// An empty selection fails immediately without touching the network, and
// the selection survives the operation either way.
func (c *Coordinator) RetrieveBatch(ctx context.Context, q types.Query) (*types.Outcome, error) {
	uids := c.selection.UIDs()
	if len(uids) == 0 {
		return nil, types.Errorf(types.EEMPTYSEL, "no topics selected")
	}
	out, err := c.begin("batch", len(uids))
	if err != nil {
		return nil, err
	}

	fmt.Fprintf(c.progress(), "retrieving %d selected documents\n", len(uids))
	art, err := c.svc.DownloadMany(ctx, types.RetrievalRequest{UIDs: uids, Query: q})
	if err != nil {
		return c.fail(out, err)
	}
	return c.deliver(ctx, out, art)
}

// begin transitions to Requesting and opens a fresh outcome. A second
// operation is rejected while one is in flight.
func (c *Coordinator) begin(kind string, count int) (*types.Outcome, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == types.StateRequesting {
		return nil, types.Errorf(types.EINVALID, "a retrieval is already in progress")
	}
	out := &types.Outcome{
		OperationID: uuid.NewString(),
		State:       types.StateRequesting,
		Kind:        kind,
		Count:       count,
		Started:     time.Now(),
	}
	c.state = types.StateRequesting
	c.last = out
	return out, nil
}

// deliver hands the artifact to the sink and settles the outcome. Sink
// failures surface as delivery errors; the selection stays untouched so the
// operator can retry toward a working destination.
func (c *Coordinator) deliver(ctx context.Context, out *types.Outcome, art *types.Artifact) (*types.Outcome, error) {
	dest, err := c.sink.Deliver(ctx, art)
	if err != nil {
		return c.fail(out, types.WrapErr(types.EDELIVERY, err, "delivering %s", art.Name))
	}

	c.mu.Lock()
	out.State = types.StateDelivered
	out.ArtifactName = art.Name
	out.Finished = time.Now()
	c.state = types.StateDelivered
	c.mu.Unlock()

	fmt.Fprintf(c.progress(), "delivered: %s (%d bytes) -> %s\n", art.Name, art.Size(), dest)
	return out, nil
}

// fail settles the outcome as failed and passes the error through.
func (c *Coordinator) fail(out *types.Outcome, err error) (*types.Outcome, error) {
	c.mu.Lock()
	out.State = types.StateFailed
	out.Cause = types.ErrorMessage(err)
	out.Finished = time.Now()
	c.state = types.StateFailed
	c.mu.Unlock()

	fmt.Fprintf(c.progress(), "retrieval failed: %v\n", err)
	return out, err
}

func (c *Coordinator) progress() io.Writer {
	if c.Progress == nil {
		return io.Discard
	}
	return c.Progress
}
