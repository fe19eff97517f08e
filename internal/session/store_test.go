// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package session

import (
	"sync"
	"testing"
)

func TestStoreDispatchAdvancesVersion(t *testing.T) {
	st := NewStore(testCfg())
	if st.Version() != 0 {
		t.Fatalf("initial version = %d, want 0", st.Version())
	}

	next := st.Dispatch(SetTerm{"laser"})
	if next.Query.Term != "laser" {
		t.Errorf("dispatched term = %q, want laser", next.Query.Term)
	}
	if st.Version() != 1 {
		t.Errorf("version = %d, want 1", st.Version())
	}
	if st.State().Query.Term != "laser" {
		t.Errorf("stored term = %q, want laser", st.State().Query.Term)
	}
}

func TestStoreSubscribeAndUnsubscribe(t *testing.T) {
	st := NewStore(testCfg())

	var seen []string
	unsub := st.Subscribe(func(s State) { seen = append(seen, s.Query.Term) })

	st.Dispatch(SetTerm{"laser"})
	st.Dispatch(SetTerm{"radar"})
	if len(seen) != 2 || seen[1] != "radar" {
		t.Errorf("subscriber saw %v, want [laser radar]", seen)
	}

	unsub()
	st.Dispatch(SetTerm{"sonar"})
	if len(seen) != 2 {
		t.Errorf("subscriber ran after unsubscribe: %v", seen)
	}
}

func TestStoreConcurrentDispatch(t *testing.T) {
	st := NewStore(testCfg())

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			st.Dispatch(ToggleSelection{"u1"})
			st.Dispatch(ToggleSelection{"u1"})
		}()
	}
	wg.Wait()

	if got := st.Version(); got != 100 {
		t.Errorf("version = %d, want 100", got)
	}
	if got := len(st.State().Selected); got != 0 {
		t.Errorf("selection after paired toggles = %d uids, want 0", got)
	}
}
