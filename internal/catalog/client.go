// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/time/rate"

	"github.com/pdiddy/topic-engine/internal/httputil"
	"github.com/pdiddy/topic-engine/pkg/types"
)

// Topic release status codes the upstream search accepts. Only pre-release
// and open topics are retrievable.
const (
	statusPreRelease = 591
	statusOpen       = 592
)

// Client talks to the topics catalog over HTTP. The zero value is not
// usable; construct with NewClient.
type Client struct {
	// InspectPDF controls whether downloaded payloads are validated with a
	// PDF parser and annotated with page counts.
	InspectPDF bool

	// Progress receives human-readable status lines during batch downloads.
	// Nil discards them.
	Progress io.Writer

	cfg      types.CatalogConfig
	search   *http.Client
	download *http.Client
	limiter  *rate.Limiter
}

// NewClient builds a catalog client from configuration, applying defaults
// for unset concurrency and rate bounds.
func NewClient(cfg types.CatalogConfig) *Client {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 3
	}
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = 4
	}
	burst := int(cfg.RateLimit)
	if burst < 1 {
		burst = 1
	}
	return &Client{
		cfg:      cfg,
		search:   httputil.NewClient(cfg.ConnectTimeout, cfg.SearchTimeout),
		download: httputil.NewClient(cfg.ConnectTimeout, cfg.DownloadTimeout),
		limiter:  rate.NewLimiter(rate.Limit(cfg.RateLimit), burst),
	}
}

// Search queries the catalog for one page of topic records. Transient
// failures are retried per the configured retry count; transport errors,
// non-2xx statuses, and malformed payloads all come back as ESEARCH.
func (c *Client) Search(ctx context.Context, q types.Query) (*types.ResultPage, error) {
	param := searchParam{
		Components:              []string{},
		SolicitationCycleNames:  []string{"openTopics"},
		ReleaseNumbers:          []string{},
		TopicReleaseStatus:      []int{statusPreRelease, statusOpen},
		ModernizationPriorities: []string{},
		SortBy:                  "finalTopicCode,asc",
		TechnologyAreaIDs:       []int{},
	}
	if q.Term != "" {
		param.SearchText = &q.Term
	}
	if len(q.Components) > 0 {
		param.Components = q.Components
	}
	if len(q.ProgramYears) > 0 {
		// The upstream takes a single program year; the first (lowest) wins.
		year := q.ProgramYears[0]
		param.ProgramYear = &year
	}

	raw, err := json.Marshal(param)
	if err != nil {
		return nil, types.WrapErr(types.ESEARCH, err, "encoding search parameters")
	}

	params := url.Values{
		"searchParam": {string(raw)},
		"size":        {strconv.Itoa(q.PageSize)},
		"page":        {strconv.Itoa(q.Page)},
	}
	reqURL := c.cfg.BaseURL + "/topics/search?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, types.WrapErr(types.ESEARCH, err, "creating search request")
	}
	c.decorate(req, true)

	resp, err := httputil.DoWithRetry(ctx, c.search, req, c.cfg.Retries)
	if err != nil {
		return nil, types.WrapErr(types.ESEARCH, err, "catalog search request")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, types.Errorf(types.ESEARCH, "catalog search returned HTTP %d: %s",
			resp.StatusCode, snippet(resp.Body))
	}

	var sr searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, types.WrapErr(types.ESEARCH, err, "parsing catalog search response")
	}
	if sr.Data == nil {
		return nil, types.Errorf(types.ESEARCH, "malformed catalog search response: missing data")
	}

	topics := make([]types.Topic, 0, len(sr.Data))
	for i, rec := range sr.Data {
		t, err := rec.toTopic()
		if err != nil {
			return nil, types.WrapErr(types.ESEARCH, err, "malformed topic record at index %d", i)
		}
		topics = append(topics, t)
	}

	return &types.ResultPage{Topics: topics, Total: sr.Total, Query: q}, nil
}

// DownloadOne retrieves the PDF for one topic. Never retried: a failed
// download is reported and left to the user to re-trigger.
func (c *Client) DownloadOne(ctx context.Context, uid string) (*types.Artifact, error) {
	if uid == "" {
		return nil, types.Errorf(types.EINVALID, "empty topic identifier")
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, types.WrapErr(types.ERETRIEVAL, err, "waiting for rate limiter")
	}

	reqURL := fmt.Sprintf("%s/topics/%s/download/PDF", c.cfg.BaseURL, url.PathEscape(uid))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, types.WrapErr(types.ERETRIEVAL, err, "creating download request")
	}
	c.decorate(req, false)

	resp, err := c.download.Do(req)
	if err != nil {
		return nil, types.WrapErr(types.ERETRIEVAL, err, "downloading topic %s", uid)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, types.Errorf(types.ENOTFOUND, "topic %s has no document", uid)
	case resp.StatusCode != http.StatusOK:
		return nil, types.Errorf(types.ERETRIEVAL, "document download for %s returned HTTP %d", uid, resp.StatusCode)
	}

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, types.WrapErr(types.ERETRIEVAL, err, "reading document for %s", uid)
	}
	if len(payload) == 0 {
		return nil, types.Errorf(types.ERETRIEVAL, "empty document for %s", uid)
	}

	art := &types.Artifact{
		Name:      uid + ".pdf",
		MediaType: types.MediaPDF,
		Payload:   payload,
	}
	if c.InspectPDF {
		if info, err := Inspect(payload); err == nil {
			art.Pages = info.Pages
			art.Encrypted = info.Encrypted
		}
	}
	return art, nil
}

// Questions lists the published Q&A entries for a topic.
func (c *Client) Questions(ctx context.Context, uid string) ([]types.Question, error) {
	if uid == "" {
		return nil, types.Errorf(types.EINVALID, "empty topic identifier")
	}

	reqURL := fmt.Sprintf("%s/topics/%s/questions", c.cfg.BaseURL, url.PathEscape(uid))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, types.WrapErr(types.ESEARCH, err, "creating questions request")
	}
	c.decorate(req, true)

	resp, err := httputil.DoWithRetry(ctx, c.search, req, c.cfg.Retries)
	if err != nil {
		return nil, types.WrapErr(types.ESEARCH, err, "fetching questions for %s", uid)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, types.Errorf(types.ENOTFOUND, "topic %s not found", uid)
	case resp.StatusCode != http.StatusOK:
		return nil, types.Errorf(types.ESEARCH, "questions request for %s returned HTTP %d", uid, resp.StatusCode)
	}

	var records []questionRecord
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, types.WrapErr(types.ESEARCH, err, "parsing questions for %s", uid)
	}

	questions := make([]types.Question, 0, len(records))
	for _, rec := range records {
		questions = append(questions, rec.toQuestion())
	}
	return questions, nil
}

// decorate applies the request headers the catalog requires. It rejects
// plain library user agents, so every request presents as a browser.
func (c *Client) decorate(req *http.Request, acceptJSON bool) {
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	req.Header.Set("Referer", c.cfg.Referer)
	if acceptJSON {
		req.Header.Set("Accept", "application/json, text/plain, */*")
	}
}

func (c *Client) progress() io.Writer {
	if c.Progress != nil {
		return c.Progress
	}
	return io.Discard
}

// snippet reads a short prefix of a response body for error messages.
func snippet(r io.Reader) string {
	b, _ := io.ReadAll(io.LimitReader(r, 200))
	return strings.TrimSpace(string(b))
}

// Catalog API JSON structures.

// searchParam is the JSON document the upstream expects URL-encoded in the
// searchParam query parameter. Null and empty-list distinctions matter to
// the upstream, hence the pointer fields and always-present slices.
type searchParam struct {
	SearchText              *string  `json:"searchText"`
	Components              []string `json:"components"`
	ProgramYear             *int     `json:"programYear"`
	SolicitationCycleNames  []string `json:"solicitationCycleNames"`
	ReleaseNumbers          []string `json:"releaseNumbers"`
	TopicReleaseStatus      []int    `json:"topicReleaseStatus"`
	ModernizationPriorities []string `json:"modernizationPriorities"`
	SortBy                  string   `json:"sortBy"`
	TechnologyAreaIDs       []int    `json:"technologyAreaIds"`
	Component               *string  `json:"component"`
	Program                 *string  `json:"program"`
}

type searchResponse struct {
	Data  []topicRecord `json:"data"`
	Total int           `json:"total"`
}

type topicRecord struct {
	TopicID           string     `json:"topicId"`
	TopicCode         string     `json:"topicCode"`
	TopicTitle        string     `json:"topicTitle"`
	Component         string     `json:"component"`
	TopicStatus       string     `json:"topicStatus"`
	SolicitationTitle string     `json:"solicitationTitle"`
	ProgramYear       int        `json:"programYear"`
	ReleaseNumber     flexString `json:"releaseNumber"`
	TechnologyArea    string     `json:"technologyArea"`
	Keywords          []string   `json:"keywords"`
}

// toTopic validates the record's required fields and maps it to the domain
// type. A record missing any required field marks the whole response
// malformed.
func (r topicRecord) toTopic() (types.Topic, error) {
	for _, f := range []struct{ name, value string }{
		{"topicId", r.TopicID},
		{"topicCode", r.TopicCode},
		{"topicTitle", r.TopicTitle},
		{"component", r.Component},
		{"topicStatus", r.TopicStatus},
		{"solicitationTitle", r.SolicitationTitle},
	} {
		if f.value == "" {
			return types.Topic{}, fmt.Errorf("missing required field %s", f.name)
		}
	}
	return types.Topic{
		UID:               r.TopicID,
		Code:              r.TopicCode,
		Title:             r.TopicTitle,
		Component:         r.Component,
		Status:            r.TopicStatus,
		SolicitationTitle: r.SolicitationTitle,
		ProgramYear:       r.ProgramYear,
		ReleaseNumber:     string(r.ReleaseNumber),
		TechnologyArea:    r.TechnologyArea,
		Keywords:          r.Keywords,
	}, nil
}

type questionRecord struct {
	QuestionNo     int    `json:"questionNo"`
	Question       string `json:"question"`
	QuestionStatus string `json:"questionStatus"`
	Answers        []struct {
		Answer string `json:"answer"`
	} `json:"answers"`
}

func (r questionRecord) toQuestion() types.Question {
	q := types.Question{
		Number: r.QuestionNo,
		Text:   r.Question,
		Status: r.QuestionStatus,
	}
	var answers []string
	for _, a := range r.Answers {
		if a.Answer != "" {
			answers = append(answers, a.Answer)
		}
	}
	q.Answer = strings.Join(answers, "\n\n")
	return q
}

// flexString decodes JSON values the upstream serves inconsistently as
// either a string or a number.
type flexString string

func (s *flexString) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*s = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = flexString(v)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*s = flexString(n.String())
	return nil
}
