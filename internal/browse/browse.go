// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package browse implements the interactive topic browser: a line-oriented
// shell over the session state machine, the result fetcher, and the
// retrieval coordinator. Commands edit the query or the selection; every
// state transition flows through the session store so the shell itself
// stays free of bookkeeping.
package browse

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/pdiddy/topic-engine/internal/catalog"
	"github.com/pdiddy/topic-engine/internal/history"
	"github.com/pdiddy/topic-engine/internal/retrieve"
	"github.com/pdiddy/topic-engine/internal/search"
	"github.com/pdiddy/topic-engine/internal/session"
	"github.com/pdiddy/topic-engine/pkg/types"
)

// Session is one interactive browse session. Construct with NewSession.
type Session struct {
	cfg     types.Config
	svc     catalog.Service
	store   *session.Store
	fetcher *search.Fetcher
	coord   *retrieve.Coordinator

	// hist is the history ledger, nil when history is disabled.
	hist *history.Store

	out io.Writer
}

// NewSession wires a browse session over the given catalog backend.
// Retrieved documents land in the configured downloads directory.
func NewSession(cfg types.Config, svc catalog.Service, hist *history.Store, out io.Writer) *Session {
	store := session.NewStore(cfg.Search)

	fetcher := search.NewFetcher(svc, cfg.Search)
	fetcher.OnUpdate = func(page *types.ResultPage) {
		// Background refreshes land in the store; a page for a query the
		// operator has moved away from is dropped by the reducer.
		store.Dispatch(session.SearchSucceeded{Page: page})
	}

	coord := retrieve.NewCoordinator(svc, &retrieve.DirSink{Dir: cfg.Retrieval.DownloadsDir})
	coord.Progress = out

	return &Session{
		cfg:     cfg,
		svc:     svc,
		store:   store,
		fetcher: fetcher,
		coord:   coord,
		hist:    hist,
		out:     out,
	}
}

// Run reads commands from in until quit or EOF.
func (s *Session) Run(ctx context.Context, in io.Reader) error {
	fmt.Fprintln(s.out, "interactive topic browser; type 'help' for commands")
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(s.out, "topics> ")
		if !scanner.Scan() {
			fmt.Fprintln(s.out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if quit := s.handle(ctx, line); quit {
			return nil
		}
	}
}

// handle executes one command line and reports whether the session should
// end.
func (s *Session) handle(ctx context.Context, line string) bool {
	fields := strings.Fields(line)
	cmd, rest := fields[0], fields[1:]

	switch cmd {
	case "quit", "exit":
		return true

	case "help", "h":
		s.help()

	case "term", "/":
		s.store.Dispatch(session.SetTerm{Term: strings.Join(rest, " ")})
		s.runSearch(ctx)

	case "comp", "component":
		s.store.Dispatch(session.SetComponents{Components: splitList(rest)})
		s.runSearch(ctx)

	case "year", "years":
		years, err := parseYears(splitList(rest))
		if err != nil {
			fmt.Fprintln(s.out, types.ErrorMessage(err))
			break
		}
		s.store.Dispatch(session.SetProgramYears{Years: years})
		s.runSearch(ctx)

	case "page":
		if len(rest) != 1 {
			fmt.Fprintln(s.out, "usage: page <n>")
			break
		}
		n, err := strconv.Atoi(rest[0])
		if err != nil || n < 0 {
			fmt.Fprintf(s.out, "bad page number %q\n", rest[0])
			break
		}
		s.store.Dispatch(session.SetPage{Page: n})
		s.runSearch(ctx)

	case "next", "n":
		before := s.store.State().Query.Page
		if st := s.store.Dispatch(session.NextPage{}); st.Query.Page == before {
			fmt.Fprintln(s.out, "already on the last page")
			break
		}
		s.runSearch(ctx)

	case "prev", "p":
		before := s.store.State().Query.Page
		if st := s.store.Dispatch(session.PrevPage{}); st.Query.Page == before {
			fmt.Fprintln(s.out, "already on the first page")
			break
		}
		s.runSearch(ctx)

	case "list", "ls":
		s.render()

	case "sel", "s", "mark":
		if len(rest) == 0 {
			fmt.Fprintln(s.out, "usage: sel <#|code> [...]")
			break
		}
		for _, arg := range rest {
			t, err := s.resolveTopic(arg)
			if err != nil {
				fmt.Fprintln(s.out, types.ErrorMessage(err))
				continue
			}
			s.toggle(t)
		}

	case "clear":
		s.store.Dispatch(session.ClearSelection{})
		s.coord.Selection().Clear()
		fmt.Fprintln(s.out, "selection cleared")

	case "get", "download":
		s.retrieveBatch(ctx)

	case "one":
		if len(rest) != 1 {
			fmt.Fprintln(s.out, "usage: one <#|code>")
			break
		}
		t, err := s.resolveTopic(rest[0])
		if err != nil {
			fmt.Fprintln(s.out, types.ErrorMessage(err))
			break
		}
		s.retrieveSingle(ctx, t)

	case "questions", "qa":
		if len(rest) != 1 {
			fmt.Fprintln(s.out, "usage: questions <#|code>")
			break
		}
		s.showQuestions(ctx, rest[0])

	case "save":
		if len(rest) != 1 {
			fmt.Fprintln(s.out, "usage: save <path>")
			break
		}
		s.savePage(rest[0])

	case "status":
		s.status()

	default:
		fmt.Fprintf(s.out, "unknown command %q; type 'help'\n", cmd)
	}
	return false
}

// runSearch fetches the page for the current query and installs the result.
func (s *Session) runSearch(ctx context.Context) {
	st := s.store.Dispatch(session.SearchStarted{})

	page, err := s.fetcher.Fetch(ctx, st.Query)
	if err != nil {
		if errors.Is(err, search.ErrSuperseded) {
			return
		}
		s.store.Dispatch(session.SearchFailed{Err: err})
		fmt.Fprintf(s.out, "search failed: %s\n", types.ErrorMessage(err))
		return
	}

	s.store.Dispatch(session.SearchSucceeded{Page: page})
	if s.hist != nil && page.Query.IsActive() {
		if err := s.hist.RecordSearch(ctx, page); err != nil {
			fmt.Fprintf(s.out, "warning: recording search: %v\n", err)
		}
	}
	s.render()
}

// render prints the current page with selection markers.
func (s *Session) render() {
	st := s.store.State()
	if st.Page == nil {
		fmt.Fprintln(s.out, "no results yet; set a search with 'term <text>'")
		return
	}
	page := st.Page
	if len(page.Topics) == 0 {
		fmt.Fprintln(s.out, "No topics found.")
		return
	}

	fmt.Fprintf(s.out, "  %-4s  %-14s  %-50s  %-8s  %s\n", "#", "Code", "Title", "Comp", "Status")
	base := page.Query.Page * page.Query.PageSize
	for i, t := range page.Topics {
		mark := " "
		if st.IsSelected(t.UID) {
			mark = "*"
		}
		title := t.Title
		if len(title) > 50 {
			title = title[:47] + "..."
		}
		fmt.Fprintf(s.out, "%s %-4d  %-14s  %-50s  %-8s  %s\n",
			mark, base+i+1, t.Code, title, t.Component, t.Status)
	}

	last := base + len(page.Topics)
	fmt.Fprintf(s.out, "showing %d-%d of %d topics, %d selected",
		base+1, last, page.Total, len(st.Selected))
	if page.HasMore() {
		fmt.Fprint(s.out, " (type 'next' for more)")
	}
	fmt.Fprintln(s.out)
}

// resolveTopic maps a display row number or topic code to a topic on the
// current page.
func (s *Session) resolveTopic(arg string) (*types.Topic, error) {
	st := s.store.State()
	if st.Page == nil || len(st.Page.Topics) == 0 {
		return nil, types.Errorf(types.EINVALID, "no results to select from")
	}
	page := st.Page

	if n, err := strconv.Atoi(arg); err == nil {
		base := page.Query.Page * page.Query.PageSize
		idx := n - 1 - base
		if idx < 0 || idx >= len(page.Topics) {
			return nil, types.Errorf(types.EINVALID, "row %d is not on this page", n)
		}
		return &page.Topics[idx], nil
	}

	for i := range page.Topics {
		if strings.EqualFold(page.Topics[i].Code, arg) {
			return &page.Topics[i], nil
		}
	}
	return nil, types.Errorf(types.EINVALID, "no topic %q on this page", arg)
}

// toggle flips a topic's mark in both the coordinator's selection and the
// session state. The two must always agree.
func (s *Session) toggle(t *types.Topic) {
	selected := s.coord.Selection().Toggle(t.UID)
	s.store.Dispatch(session.ToggleSelection{UID: t.UID})
	if selected {
		fmt.Fprintf(s.out, "selected %s\n", t.Code)
	} else {
		fmt.Fprintf(s.out, "unselected %s\n", t.Code)
	}
}

// retrieveBatch downloads every selected topic. The selection survives the
// operation; only 'clear' empties it.
func (s *Session) retrieveBatch(ctx context.Context) {
	uids := s.coord.Selection().UIDs()
	if len(uids) == 0 {
		fmt.Fprintln(s.out, "nothing selected; mark topics with 'sel <#>' first")
		return
	}

	s.store.Dispatch(session.RetrievalStarted{})
	// The coordinator reports success and failure on Progress; only the
	// outcome matters here.
	out, _ := s.coord.RetrieveBatch(ctx, s.store.State().Query)
	s.store.Dispatch(session.RetrievalFinished{Outcome: out})
	s.recordRetrieval(ctx, out, uids)
}

// retrieveSingle downloads one topic without touching the selection.
func (s *Session) retrieveSingle(ctx context.Context, t *types.Topic) {
	s.store.Dispatch(session.RetrievalStarted{})
	out, _ := s.coord.RetrieveSingle(ctx, t.UID)
	s.store.Dispatch(session.RetrievalFinished{Outcome: out})
	s.recordRetrieval(ctx, out, []string{t.UID})
}

func (s *Session) recordRetrieval(ctx context.Context, out *types.Outcome, uids []string) {
	if s.hist == nil || out == nil {
		return
	}
	if err := s.hist.RecordRetrieval(ctx, out, uids); err != nil {
		fmt.Fprintf(s.out, "warning: recording retrieval: %v\n", err)
	}
}

func (s *Session) showQuestions(ctx context.Context, arg string) {
	t, err := s.resolveTopic(arg)
	if err != nil {
		fmt.Fprintln(s.out, types.ErrorMessage(err))
		return
	}
	questions, err := s.svc.Questions(ctx, t.UID)
	if err != nil {
		fmt.Fprintf(s.out, "questions for %s: %s\n", t.Code, types.ErrorMessage(err))
		return
	}
	fmt.Fprintf(s.out, "%s: %s\n\n", t.Code, t.Title)
	search.FormatQuestions(questions, s.out)
}

func (s *Session) savePage(path string) {
	st := s.store.State()
	if st.Page == nil {
		fmt.Fprintln(s.out, "no results to save")
		return
	}
	if err := search.WriteSavedSearch(path, s.cfg.Search, st.Page); err != nil {
		fmt.Fprintf(s.out, "saving search: %v\n", err)
		return
	}
	fmt.Fprintf(s.out, "saved search to %s\n", path)
}

func (s *Session) status() {
	st := s.store.State()
	fmt.Fprintf(s.out, "query: %s\n", st.Query.String())
	if st.SearchErr != "" {
		fmt.Fprintf(s.out, "last search error: %s\n", st.SearchErr)
	}
	fmt.Fprintf(s.out, "selected: %d\n", len(st.Selected))
	fmt.Fprintf(s.out, "retrieval: %s\n", st.Retrieval)
	if out := st.LastOutcome; out != nil {
		if out.State == types.StateDelivered {
			fmt.Fprintf(s.out, "last retrieval: delivered %s in %s\n",
				out.ArtifactName, out.Duration().Round(time.Millisecond))
		} else {
			fmt.Fprintf(s.out, "last retrieval: %s (%s)\n", out.State, out.Cause)
		}
	}
}

func (s *Session) help() {
	fmt.Fprint(s.out, `commands:
  term <text>        set the search term (empty clears it)
  comp <A,B>         filter by components (e.g. ARMY,NAVY)
  year <YYYY,...>    filter by program years
  page <n>           jump to a zero-based page
  next, prev         move one page
  list               show the current page again
  sel <#|code> ...   toggle topic selection
  clear              clear the selection
  get                download all selected topics (zip when several)
  one <#|code>       download a single topic now
  questions <#|code> show a topic's published Q&A
  save <path>        save the current query and page to a YAML file
  status             show query, selection, and retrieval state
  quit               leave the browser
`)
}

// splitList splits comma- or space-separated arguments into a flat list.
func splitList(args []string) []string {
	var out []string
	for _, a := range args {
		for _, part := range strings.Split(a, ",") {
			part = strings.TrimSpace(part)
			if part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func parseYears(args []string) ([]int, error) {
	years := make([]int, 0, len(args))
	for _, a := range args {
		y, err := strconv.Atoi(a)
		if err != nil {
			return nil, types.Errorf(types.EINVALID, "bad program year %q", a)
		}
		years = append(years, y)
	}
	return years, nil
}
