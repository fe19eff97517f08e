// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package session models a browse session as a state machine: a snapshot
// State, a set of Actions, and a pure Reduce function. Network effects stay
// outside; callers fetch pages and dispatch the results, so every
// transition can be exercised without a catalog or a terminal.
package session

import (
	"github.com/pdiddy/topic-engine/pkg/types"
)

// State is an immutable snapshot of a browse session. Reduce returns a new
// State; callers must not mutate the slices it carries.
type State struct {
	// Query is the current search parameters.
	Query types.Query

	// Page is the last successfully fetched result page. It survives
	// failed searches so the operator keeps something on screen.
	Page *types.ResultPage

	// Searching reports an in-flight fetch.
	Searching bool

	// SearchErr describes the last search failure, empty when the last
	// search succeeded.
	SearchErr string

	// Selected holds the marked topic UIDs in mark order.
	Selected []string

	// Retrieval is the state of the current or most recent retrieval.
	Retrieval types.RetrievalState

	// LastOutcome is the most recent retrieval outcome, nil before one runs.
	LastOutcome *types.Outcome
}

// NewState returns the initial session state.
func NewState(cfg types.SearchConfig) State {
	return State{
		Query:     types.NewQuery(cfg.PageSize),
		Retrieval: types.StateIdle,
	}
}

// IsSelected reports whether uid is marked in this snapshot.
func (s State) IsSelected(uid string) bool {
	for _, u := range s.Selected {
		if u == uid {
			return true
		}
	}
	return false
}

// Action is a request to transition the session state.
type Action interface {
	isAction()
}

// SetTerm replaces the search term. A changed term resets to the first
// page; repeating the current term changes nothing.
type SetTerm struct{ Term string }

// SetComponents replaces the component filter and resets to the first page
// when the filter actually changes.
type SetComponents struct{ Components []string }

// SetProgramYears replaces the program-year filter and resets to the first
// page when the filter actually changes.
type SetProgramYears struct{ Years []int }

// SetPage jumps to a page. Negative pages are ignored.
type SetPage struct{ Page int }

// NextPage advances one page when more results exist.
type NextPage struct{}

// PrevPage goes back one page when not already on the first.
type PrevPage struct{}

// SearchStarted marks a fetch as in flight.
type SearchStarted struct{}

// SearchSucceeded installs a fetched page. A page for a query that is no
// longer current is dropped.
type SearchSucceeded struct{ Page *types.ResultPage }

// SearchFailed records a fetch failure. The previous page stays visible.
type SearchFailed struct{ Err error }

// ToggleSelection flips one topic's mark.
type ToggleSelection struct{ UID string }

// ClearSelection unmarks everything. Nothing else clears the selection.
type ClearSelection struct{}

// RetrievalStarted marks a retrieval as in flight.
type RetrievalStarted struct{}

// RetrievalFinished records a retrieval outcome.
type RetrievalFinished struct{ Outcome *types.Outcome }

func (SetTerm) isAction()           {}
func (SetComponents) isAction()     {}
func (SetProgramYears) isAction()   {}
func (SetPage) isAction()           {}
func (NextPage) isAction()          {}
func (PrevPage) isAction()          {}
func (SearchStarted) isAction()     {}
func (SearchSucceeded) isAction()   {}
func (SearchFailed) isAction()      {}
func (ToggleSelection) isAction()   {}
func (ClearSelection) isAction()    {}
func (RetrievalStarted) isAction()  {}
func (RetrievalFinished) isAction() {}

// Reduce applies a to s and returns the next state. It never mutates s and
// has no side effects.
func Reduce(s State, a Action) State {
	switch act := a.(type) {
	case SetTerm:
		s.Query = s.Query.WithTerm(act.Term)

	case SetComponents:
		s.Query = s.Query.WithComponents(act.Components)

	case SetProgramYears:
		s.Query = s.Query.WithProgramYears(act.Years)

	case SetPage:
		if act.Page >= 0 {
			s.Query = s.Query.WithPage(act.Page)
		}

	case NextPage:
		if s.Page != nil && (s.Query.Page+1)*s.Query.PageSize < s.Page.Total {
			s.Query = s.Query.WithPage(s.Query.Page + 1)
		}

	case PrevPage:
		if s.Query.Page > 0 {
			s.Query = s.Query.WithPage(s.Query.Page - 1)
		}

	case SearchStarted:
		s.Searching = true
		s.SearchErr = ""

	case SearchSucceeded:
		if act.Page == nil || !act.Page.Query.Equal(s.Query) {
			return s
		}
		s.Searching = false
		s.SearchErr = ""
		s.Page = act.Page

	case SearchFailed:
		s.Searching = false
		s.SearchErr = types.ErrorMessage(act.Err)

	case ToggleSelection:
		s.Selected = toggleUID(s.Selected, act.UID)

	case ClearSelection:
		s.Selected = nil

	case RetrievalStarted:
		s.Retrieval = types.StateRequesting

	case RetrievalFinished:
		if act.Outcome != nil {
			s.Retrieval = act.Outcome.State
			s.LastOutcome = act.Outcome
		}
	}
	return s
}

// toggleUID returns a fresh slice with uid added at the end or removed,
// preserving the order of the others.
func toggleUID(selected []string, uid string) []string {
	if uid == "" {
		return selected
	}
	out := make([]string, 0, len(selected)+1)
	found := false
	for _, u := range selected {
		if u == uid {
			found = true
			continue
		}
		out = append(out, u)
	}
	if !found {
		out = append(out, uid)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
