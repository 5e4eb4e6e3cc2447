package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"

	"prompthub/app/internal/db"
	"prompthub/app/internal/prompt"
)

func TestBrowseRouteRendersEmptyState(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, &stubPromptService{stats: &prompt.Stats{Total: 0}})

	rec := doRequest(srv, "GET", "/")

	if rec.Code != 200 {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	if ct := rec.Header().Get("Content-Type"); ct != htmlContentType {
		t.Fatalf("expected content type %q, got %q", htmlContentType, ct)
	}

	body := rec.Body.String()
	if !strings.Contains(body, "PromptHub") {
		t.Fatalf("expected site title in body, got %q", body)
	}
	if !strings.Contains(body, "No prompts found") {
		t.Fatalf("expected empty state in body, got %q", body)
	}
}

func TestBrowseRouteRendersResults(t *testing.T) {
	t.Parallel()

	service := &stubPromptService{
		searchResults: []prompt.Prompt{
			{ID: 3, Title: "Professional Email", Category: "Writing", Content: "Write a professional email.", CreatedAt: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)},
		},
		stats: &prompt.Stats{Total: 1, Categories: []string{"Writing"}, Tags: []string{"email"}},
	}
	srv := newTestServer(t, service)

	rec := doRequest(srv, "GET", "/?query=email")

	if rec.Code != 200 {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	body := rec.Body.String()
	if !strings.Contains(body, "Professional Email") {
		t.Fatalf("expected result title in body, got %q", body)
	}
	if !strings.Contains(body, "/view/3") {
		t.Fatalf("expected detail link in body, got %q", body)
	}
}

func TestBrowseRouteFailsSoftOnSearchError(t *testing.T) {
	t.Parallel()

	service := &stubPromptService{
		searchErr: eris.New("store unreachable"),
		stats:     &prompt.Stats{Total: 7},
	}
	srv := newTestServer(t, service)

	rec := doRequest(srv, "GET", "/?query=email")

	if rec.Code != 200 {
		t.Fatalf("expected fail-soft status 200, got %d", rec.Code)
	}

	body := rec.Body.String()
	if !strings.Contains(body, "No prompts found") {
		t.Fatalf("expected empty state in body, got %q", body)
	}
	if !strings.Contains(body, "temporarily unavailable") {
		t.Fatalf("expected soft notice in body, got %q", body)
	}
}

func TestPromptPageRendersMarkdown(t *testing.T) {
	t.Parallel()

	service := &stubPromptService{
		record: &prompt.Prompt{ID: 5, Title: "Code Review", Content: "# Steps\n\nReview the code.", Category: "Development"},
	}
	srv := newTestServer(t, service)

	rec := doRequest(srv, "GET", "/view/5")

	if rec.Code != 200 {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	body := rec.Body.String()
	if !strings.Contains(body, "<h1>Steps</h1>") {
		t.Fatalf("expected rendered markdown heading, got %q", body)
	}
}

func TestPromptPageReturns404ForMissingPrompt(t *testing.T) {
	t.Parallel()

	service := &stubPromptService{recordErr: prompt.ErrNotFound}
	srv := newTestServer(t, service)

	rec := doRequest(srv, "GET", "/view/99")

	if rec.Code != 404 {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != htmlContentType {
		t.Fatalf("expected content type %q, got %q", htmlContentType, ct)
	}
}

func TestListPromptsReturnsJSONWithEcho(t *testing.T) {
	t.Parallel()

	service := &stubPromptService{
		searchResults: []prompt.Prompt{
			{ID: 1, Title: "One", Tags: prompt.StringList{"a"}},
			{ID: 2, Title: "Two"},
		},
	}
	srv := newTestServer(t, service)

	rec := doRequest(srv, "GET", "/prompts?query=+email+&category=Writing&tags=a,+b+,,")

	if rec.Code != 200 {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var payload struct {
		Prompts []prompt.Prompt `json:"prompts"`
		Count   int             `json:"count"`
		Query   struct {
			Query    string   `json:"query"`
			Category string   `json:"category"`
			Tags     []string `json:"tags"`
			Limit    int      `json:"limit"`
			Offset   int      `json:"offset"`
		} `json:"query"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decoding response: %v", err)
	}

	if payload.Count != 2 || len(payload.Prompts) != 2 {
		t.Fatalf("expected two prompts with matching count, got %+v", payload)
	}
	if payload.Query.Query != "email" {
		t.Fatalf("expected trimmed query echo, got %q", payload.Query.Query)
	}
	if payload.Query.Category != "Writing" {
		t.Fatalf("expected category echo, got %q", payload.Query.Category)
	}
	if len(payload.Query.Tags) != 2 || payload.Query.Tags[0] != "a" || payload.Query.Tags[1] != "b" {
		t.Fatalf("expected parsed tags echo, got %v", payload.Query.Tags)
	}
	if payload.Query.Limit != prompt.DefaultLimit {
		t.Fatalf("expected default limit echo, got %d", payload.Query.Limit)
	}
	if payload.Query.Offset != 0 {
		t.Fatalf("expected offset 0, got %d", payload.Query.Offset)
	}

	if service.lastFilter.Limit != prompt.DefaultLimit {
		t.Fatalf("expected default limit applied to filter, got %d", service.lastFilter.Limit)
	}
}

func TestListPromptsReturns500OnStoreFailure(t *testing.T) {
	t.Parallel()

	service := &stubPromptService{searchErr: eris.New("store unreachable")}
	srv := newTestServer(t, service)

	rec := doRequest(srv, "GET", "/prompts?query=email")

	if rec.Code != 500 {
		t.Fatalf("expected status 500, got %d", rec.Code)
	}
}

func TestGetPromptReturnsRecord(t *testing.T) {
	t.Parallel()

	service := &stubPromptService{
		record: &prompt.Prompt{ID: 7, Title: "Found", Tags: prompt.StringList{"x"}},
	}
	srv := newTestServer(t, service)

	rec := doRequest(srv, "GET", "/prompts/7")

	if rec.Code != 200 {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var payload prompt.Prompt
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if payload.ID != 7 || payload.Title != "Found" {
		t.Fatalf("expected stored prompt, got %+v", payload)
	}
}

func TestGetPromptReturns404ForMissingPrompt(t *testing.T) {
	t.Parallel()

	service := &stubPromptService{recordErr: prompt.ErrNotFound}
	srv := newTestServer(t, service)

	rec := doRequest(srv, "GET", "/prompts/99")

	if rec.Code != 404 {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}
}

func TestGetPromptReturns500OnStoreFailure(t *testing.T) {
	t.Parallel()

	service := &stubPromptService{recordErr: eris.New("store unreachable")}
	srv := newTestServer(t, service)

	rec := doRequest(srv, "GET", "/prompts/99")

	if rec.Code != 500 {
		t.Fatalf("expected status 500, got %d", rec.Code)
	}
}

func TestStatsReturnsCountsAndVocabularies(t *testing.T) {
	t.Parallel()

	service := &stubPromptService{
		stats: &prompt.Stats{
			Total:      42,
			Categories: []string{"Development", "Writing"},
			Tags:       []string{"code", "email", "review"},
		},
	}
	srv := newTestServer(t, service)

	rec := doRequest(srv, "GET", "/stats")

	if rec.Code != 200 {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var payload struct {
		Total          int64    `json:"total"`
		Categories     int      `json:"categories"`
		Tags           int      `json:"tags"`
		CategoriesList []string `json:"categoriesList"`
		TagsList       []string `json:"tagsList"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decoding response: %v", err)
	}

	if payload.Total != 42 || payload.Categories != 2 || payload.Tags != 3 {
		t.Fatalf("unexpected stats payload %+v", payload)
	}
	if len(payload.CategoriesList) != 2 || payload.CategoriesList[0] != "Development" {
		t.Fatalf("unexpected categories list %v", payload.CategoriesList)
	}
	if len(payload.TagsList) != 3 {
		t.Fatalf("unexpected tags list %v", payload.TagsList)
	}
}

func TestStatsReturns500OnStoreFailure(t *testing.T) {
	t.Parallel()

	service := &stubPromptService{statsErr: eris.New("store unreachable")}
	srv := newTestServer(t, service)

	rec := doRequest(srv, "GET", "/stats")

	if rec.Code != 500 {
		t.Fatalf("expected status 500, got %d", rec.Code)
	}

	var payload struct {
		Error      string `json:"error"`
		Total      int64  `json:"total"`
		Categories int    `json:"categories"`
		Tags       int    `json:"tags"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decoding response: %v", err)
	}

	if payload.Error == "" {
		t.Fatalf("expected error message in body, got %q", rec.Body.String())
	}
	if payload.Total != 0 || payload.Categories != 0 || payload.Tags != 0 {
		t.Fatalf("expected zeroed counts on failure, got %+v", payload)
	}
}

func TestHealthRouteReportsOK(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, &stubPromptService{})

	rec := doRequest(srv, "GET", "/healthz")

	if rec.Code != 200 {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Fatalf("expected ok status in body, got %q", rec.Body.String())
	}
}

type stubPromptService struct {
	searchResults []prompt.Prompt
	searchErr     error
	record        *prompt.Prompt
	recordErr     error
	stats         *prompt.Stats
	statsErr      error

	lastFilter prompt.SearchFilter
}

func (s *stubPromptService) Search(_ context.Context, filter prompt.SearchFilter) ([]prompt.Prompt, error) {
	s.lastFilter = filter
	if s.searchErr != nil {
		return nil, s.searchErr
	}
	return s.searchResults, nil
}

func (s *stubPromptService) Get(_ context.Context, _ uint) (*prompt.Prompt, error) {
	if s.recordErr != nil {
		return nil, s.recordErr
	}
	if s.record == nil {
		return nil, prompt.ErrNotFound
	}
	return s.record, nil
}

func (s *stubPromptService) Stats(_ context.Context) (*prompt.Stats, error) {
	if s.statsErr != nil {
		return nil, s.statsErr
	}
	if s.stats == nil {
		return &prompt.Stats{}, nil
	}
	return s.stats, nil
}

func newTestServer(t *testing.T, service prompt.Service) *Server {
	t.Helper()

	path := filepath.Join(t.TempDir(), "server.db")
	gormDB, err := db.Open(db.Options{Path: path})
	if err != nil {
		t.Fatalf("db.Open returned error: %v", err)
	}
	t.Cleanup(func() {
		if closeErr := db.Close(gormDB); closeErr != nil {
			t.Fatalf("closing database failed: %v", closeErr)
		}
	})

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	srv, err := NewServer(Options{
		PromptService: service,
		Database:      gormDB,
		Logger:        logger,
		RateLimiter: RateLimiterSettings{
			Burst:             1000,
			RequestsPerSecond: 1000,
			ClientTTL:         time.Minute,
		},
	})
	if err != nil {
		t.Fatalf("NewServer returned error: %v", err)
	}

	return srv
}

func doRequest(srv *Server, method, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func TestExcerptPreservesRuneBoundaries(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("é", excerptLength+50)
	got := excerpt(long)

	if !utf8.ValidString(got) {
		t.Fatalf("expected valid UTF-8 excerpt, got %q", got)
	}
	if !strings.HasSuffix(got, "…") {
		t.Fatalf("expected truncated excerpt to end with ellipsis, got %q", got)
	}
	if n := len([]rune(got)); n > excerptLength+1 {
		t.Fatalf("expected at most %d runes, got %d", excerptLength+1, n)
	}

	short := "short content"
	if got := excerpt(short); got != short {
		t.Fatalf("expected short content unchanged, got %q", got)
	}
}
