// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package retrieve coordinates document retrieval: it tracks which topics
// the operator has marked, drives the catalog download, and hands the
// resulting artifact to a delivery sink.
package retrieve

import (
	"sort"
	"sync"
)

// Selection is the set of topics marked for retrieval, keyed by UID.
// Marks survive searches and retrievals; only Clear empties the set.
type Selection struct {
	mu   sync.Mutex
	uids map[string]int
	seq  int
}

// NewSelection returns an empty selection.
func NewSelection() *Selection {
	return &Selection{uids: make(map[string]int)}
}

// Toggle flips membership for uid and reports the new state: true when the
// topic is now selected. An empty uid is ignored.
func (s *Selection) Toggle(uid string) bool {
	if uid == "" {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.uids[uid]; ok {
		delete(s.uids, uid)
		return false
	}
	s.seq++
	s.uids[uid] = s.seq
	return true
}

// Contains reports whether uid is selected.
func (s *Selection) Contains(uid string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.uids[uid]
	return ok
}

// Len returns the number of selected topics.
func (s *Selection) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.uids)
}

// Clear empties the selection.
func (s *Selection) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.uids = make(map[string]int)
	s.seq = 0
}

// UIDs returns the selected identifiers in the order they were marked.
func (s *Selection) UIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.uids))
	for uid := range s.uids {
		out = append(out, uid)
	}
	sort.Slice(out, func(i, j int) bool { return s.uids[out[i]] < s.uids[out[j]] })
	return out
}
