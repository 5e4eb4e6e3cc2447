package http

import (
	"context"
	stdhttp "net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"

	"prompthub/app/internal/db"
	"prompthub/app/internal/prompt"
)

type listPromptsInput struct {
	Query    string `query:"query" doc:"Full-text match over content plus case-insensitive substring match over title"`
	Category string `query:"category" doc:"Exact, case-sensitive category filter"`
	Tags     string `query:"tags" doc:"Comma-separated tags; results must carry all of them"`
	Limit    int    `query:"limit" doc:"Page size, defaults to 50"`
	Offset   int    `query:"offset" doc:"Zero-based offset into the sorted result set"`
}

type queryEcho struct {
	Query    string   `json:"query"`
	Category string   `json:"category"`
	Tags     []string `json:"tags"`
	Limit    int      `json:"limit"`
	Offset   int      `json:"offset"`
}

type listPromptsResponse struct {
	Body struct {
		Prompts []prompt.Prompt `json:"prompts"`
		Count   int             `json:"count"`
		Query   queryEcho       `json:"query"`
	}
}

type getPromptInput struct {
	ID uint `path:"id"`
}

type getPromptResponse struct {
	Body prompt.Prompt
}

type statsResponse struct {
	Status int
	Body   struct {
		Error          string   `json:"error,omitempty"`
		Total          int64    `json:"total"`
		Categories     int      `json:"categories"`
		Tags           int      `json:"tags"`
		CategoriesList []string `json:"categoriesList,omitempty"`
		TagsList       []string `json:"tagsList,omitempty"`
	}
}

type healthResponse struct {
	Status int
	Body   struct {
		Status   string `json:"status"`
		Database string `json:"database"`
	}
}

func (s *Server) registerListPromptsRoute() {
	huma.Get(s.api, "/prompts", s.listPromptsHandler, func(op *huma.Operation) {
		op.Summary = "Search the prompt catalog"
	})
}

func (s *Server) registerGetPromptRoute() {
	huma.Get(s.api, "/prompts/{id}", s.getPromptHandler, func(op *huma.Operation) {
		op.Summary = "Fetch a single prompt"
	})
}

func (s *Server) registerStatsRoute() {
	huma.Get(s.api, "/stats", s.statsHandler, func(op *huma.Operation) {
		op.Summary = "Catalog statistics"
	})
}

func (s *Server) registerHealthRoute() {
	huma.Get(s.api, "/healthz", s.healthHandler, func(op *huma.Operation) {
		op.Summary = "Health check"
	})
}

func (s *Server) listPromptsHandler(ctx context.Context, input *listPromptsInput) (*listPromptsResponse, error) {
	filter := prompt.SearchFilter{
		Query:    strings.TrimSpace(input.Query),
		Category: strings.TrimSpace(input.Category),
		Tags:     parseTagList(input.Tags),
		Limit:    input.Limit,
		Offset:   input.Offset,
	}
	if filter.Limit <= 0 {
		filter.Limit = prompt.DefaultLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	results, err := s.prompts.Search(ctx, filter)
	if err != nil {
		s.recordError(ctx, err, "searching prompts", logrus.Fields{"query": filter.Query})
		return nil, huma.Error500InternalServerError("searching prompts failed")
	}

	if results == nil {
		results = []prompt.Prompt{}
	}

	resp := &listPromptsResponse{}
	resp.Body.Prompts = results
	resp.Body.Count = len(results)
	resp.Body.Query = queryEcho{
		Query:    filter.Query,
		Category: filter.Category,
		Tags:     filter.Tags,
		Limit:    filter.Limit,
		Offset:   filter.Offset,
	}

	return resp, nil
}

func (s *Server) getPromptHandler(ctx context.Context, input *getPromptInput) (*getPromptResponse, error) {
	record, err := s.prompts.Get(ctx, input.ID)
	if err != nil {
		if eris.Is(err, prompt.ErrNotFound) {
			return nil, huma.Error404NotFound("prompt not found")
		}
		s.recordError(ctx, err, "fetching prompt", logrus.Fields{"id": input.ID})
		return nil, huma.Error500InternalServerError("fetching prompt failed")
	}

	return &getPromptResponse{Body: *record}, nil
}

func (s *Server) statsHandler(ctx context.Context, _ *struct{}) (*statsResponse, error) {
	resp := &statsResponse{}

	stats, err := s.prompts.Stats(ctx)
	if err != nil {
		s.recordError(ctx, err, "computing catalog stats", nil)
		resp.Status = stdhttp.StatusInternalServerError
		resp.Body.Error = "computing catalog stats failed"
		return resp, nil
	}

	resp.Status = stdhttp.StatusOK
	resp.Body.Total = stats.Total
	resp.Body.Categories = len(stats.Categories)
	resp.Body.Tags = len(stats.Tags)
	resp.Body.CategoriesList = stats.Categories
	resp.Body.TagsList = stats.Tags

	return resp, nil
}

func (s *Server) healthHandler(ctx context.Context, _ *struct{}) (*healthResponse, error) {
	resp := &healthResponse{}
	resp.Body.Status = "ok"
	resp.Body.Database = "ok"

	sqlDB, err := db.SQLDB(s.db)
	if err != nil {
		s.recordError(ctx, err, "obtaining sql db", nil)
		resp.Body.Status = "degraded"
		resp.Body.Database = "error"
		resp.Status = stdhttp.StatusServiceUnavailable
	} else if pingErr := sqlDB.PingContext(ctx); pingErr != nil {
		s.recordError(ctx, pingErr, "pinging database", nil)
		resp.Body.Status = "degraded"
		resp.Body.Database = "error"
		resp.Status = stdhttp.StatusServiceUnavailable
	}

	if resp.Status == 0 {
		resp.Status = stdhttp.StatusOK
	}

	return resp, nil
}

// parseTagList splits a comma-separated tag parameter, dropping blanks. The
// returned slice is never nil so the echo serialises as an array.
func parseTagList(raw string) []string {
	tags := []string{}
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			tags = append(tags, part)
		}
	}
	return tags
}
