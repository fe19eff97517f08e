// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package session

import (
	"sync"

	"github.com/pdiddy/topic-engine/pkg/types"
)

// Store serializes state transitions and notifies subscribers after each
// one. It is safe for concurrent use; subscribers run on the dispatching
// goroutine, after the transition is committed.
type Store struct {
	mu      sync.Mutex
	state   State
	version uint64
	nextSub int
	subs    map[int]func(State)
}

// NewStore returns a store holding the initial state for cfg.
func NewStore(cfg types.SearchConfig) *Store {
	return &Store{
		state: NewState(cfg),
		subs:  make(map[int]func(State)),
	}
}

// State returns the current snapshot.
func (st *Store) State() State {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.state
}

// Version returns a counter that increments on every dispatch.
func (st *Store) Version() uint64 {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.version
}

// Dispatch reduces a into the current state and returns the new snapshot.
func (st *Store) Dispatch(a Action) State {
	st.mu.Lock()
	st.state = Reduce(st.state, a)
	st.version++
	next := st.state
	subs := make([]func(State), 0, len(st.subs))
	for _, fn := range st.subs {
		subs = append(subs, fn)
	}
	st.mu.Unlock()

	for _, fn := range subs {
		fn(next)
	}
	return next
}

// Subscribe registers fn to run after every dispatch and returns a
// function that removes the subscription.
func (st *Store) Subscribe(fn func(State)) func() {
	st.mu.Lock()
	id := st.nextSub
	st.nextSub++
	st.subs[id] = fn
	st.mu.Unlock()

	return func() {
		st.mu.Lock()
		delete(st.subs, id)
		st.mu.Unlock()
	}
}
