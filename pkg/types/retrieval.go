// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// Media types for retrieval artifacts.
const (
	MediaPDF = "application/pdf"
	MediaZip = "application/zip"
)

// RetrievalRequest names the documents to retrieve. A single request carries
// one UID; a batch carries several plus the query context that produced the
// eligible set, so the backend can re-validate eligibility.
type RetrievalRequest struct {
	// UIDs are the topic identifiers to retrieve, in selection order.
	UIDs []string `json:"uids" yaml:"uids"`

	// Query is the originating search context for batch requests.
	Query Query `json:"query" yaml:"query"`
}

// Single reports whether the request names exactly one document.
func (r RetrievalRequest) Single() bool { return len(r.UIDs) == 1 }

// Artifact is the binary result of a retrieval: one PDF, or a zip archive
// aggregating several.
type Artifact struct {
	// Name is the suggested filename for delivery (e.g. "AF244-0001.pdf").
	Name string `json:"name" yaml:"name"`

	// MediaType is the payload's media type, MediaPDF or MediaZip.
	MediaType string `json:"media_type" yaml:"media_type"`

	// Payload is the raw document bytes.
	Payload []byte `json:"-" yaml:"-"`

	// Pages is the PDF page count when inspection ran, 0 otherwise.
	Pages int `json:"pages,omitempty" yaml:"pages,omitempty"`

	// Encrypted reports whether inspection found the PDF encrypted.
	Encrypted bool `json:"encrypted,omitempty" yaml:"encrypted,omitempty"`
}

// Size returns the payload size in bytes.
func (a *Artifact) Size() int { return len(a.Payload) }

// RetrievalState is the lifecycle state of one retrieval operation.
type RetrievalState string

const (
	StateIdle       RetrievalState = "idle"
	StateRequesting RetrievalState = "requesting"
	StateDelivered  RetrievalState = "delivered"
	StateFailed     RetrievalState = "failed"
)

// Terminal reports whether the state ends the operation.
func (s RetrievalState) Terminal() bool {
	return s == StateDelivered || s == StateFailed
}

// Outcome records the terminal result of one retrieval operation. A fresh
// operation always starts a new Outcome; failed attempts are never resumed.
type Outcome struct {
	// OperationID uniquely identifies the retrieval operation.
	OperationID string `json:"operation_id" yaml:"operation_id"`

	// State is the terminal state, StateDelivered or StateFailed.
	State RetrievalState `json:"state" yaml:"state"`

	// Kind is "single" or "batch".
	Kind string `json:"kind" yaml:"kind"`

	// Count is the number of documents the operation named.
	Count int `json:"count" yaml:"count"`

	// ArtifactName is the delivered filename, empty on failure.
	ArtifactName string `json:"artifact_name,omitempty" yaml:"artifact_name,omitempty"`

	// Cause describes the failure, empty on success.
	Cause string `json:"cause,omitempty" yaml:"cause,omitempty"`

	// Started and Finished bound the operation in time.
	Started  time.Time `json:"started" yaml:"started"`
	Finished time.Time `json:"finished" yaml:"finished"`
}

// Duration returns how long the operation ran.
func (o *Outcome) Duration() time.Duration { return o.Finished.Sub(o.Started) }
