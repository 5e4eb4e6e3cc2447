package http

import (
	"context"
	"fmt"
	stdhttp "net/http"
	"strconv"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/getsentry/sentry-go"
	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"

	"prompthub/app/internal/http/templates"
	"prompthub/app/internal/prompt"
)

const (
	htmlContentType      = "text/html; charset=utf-8"
	excerptLength        = 200
	createdAtFormat      = "Jan 2, 2006"
	errorFallbackMessage = "We couldn't process your request right now."
	searchNoticeMessage  = "Search is temporarily unavailable. Showing an empty result list."
)

type htmlResponse struct {
	Status      int
	ContentType string `header:"Content-Type"`
	Location    string `header:"Location"`
	Body        []byte
}

type browseInput struct {
	Query    string `query:"query"`
	Category string `query:"category"`
	Tags     string `query:"tags"`
}

type promptPageInput struct {
	ID uint `path:"id"`
}

func (s *Server) registerBrowseRoute() {
	huma.Get(s.api, "/", s.browseHandler, htmlOperation("Browse the prompt catalog", stdhttp.StatusInternalServerError))
}

func (s *Server) registerPromptPageRoute() {
	huma.Get(s.api, "/view/{id}", s.promptPageHandler, htmlOperation(
		"View a prompt",
		stdhttp.StatusNotFound,
		stdhttp.StatusInternalServerError,
	))
}

func (s *Server) browseHandler(ctx context.Context, input *browseInput) (*htmlResponse, error) {
	filter := prompt.SearchFilter{
		Query:    strings.TrimSpace(input.Query),
		Category: strings.TrimSpace(input.Category),
		Tags:     parseTagList(input.Tags),
	}

	data := templates.BrowsePageData{
		Query:    filter.Query,
		Category: filter.Category,
		Tags:     strings.TrimSpace(input.Tags),
	}

	// A failed search renders the empty state with a notice instead of an
	// error page, so a backend hiccup never takes the catalog down. The
	// failure is still logged and reported above.
	results, err := s.prompts.Search(ctx, filter)
	if err != nil {
		s.recordError(ctx, err, "searching catalog for browse page", logrus.Fields{"query": filter.Query})
		data.Notice = searchNoticeMessage
	} else {
		data.Results = make([]templates.PromptCardView, 0, len(results))
		for _, record := range results {
			data.Results = append(data.Results, templates.PromptCardView{
				Title:    record.Title,
				Category: record.Category,
				Tags:     record.Tags,
				Excerpt:  excerpt(record.Content),
				Created:  record.CreatedAt.Format(createdAtFormat),
				URL:      "/view/" + strconv.FormatUint(uint64(record.ID), 10),
			})
		}
	}

	stats, err := s.prompts.Stats(ctx)
	if err != nil {
		s.recordError(ctx, err, "computing stats for browse page", nil)
	} else {
		data.Stats = &templates.StatsView{
			Total:      stats.Total,
			Categories: stats.Categories,
			Tags:       stats.Tags,
		}
	}

	body, err := renderComponent(ctx, templates.BrowsePage(data))
	if err != nil {
		s.recordError(ctx, err, "rendering browse page", nil)
		return s.renderErrorResponse(ctx, stdhttp.StatusInternalServerError, "We couldn't render the catalog.")
	}

	return newHTMLResponse(stdhttp.StatusOK, body), nil
}

func (s *Server) promptPageHandler(ctx context.Context, input *promptPageInput) (*htmlResponse, error) {
	record, err := s.prompts.Get(ctx, input.ID)
	if err != nil {
		status := stdhttp.StatusInternalServerError
		message := errorFallbackMessage

		if eris.Is(err, prompt.ErrNotFound) {
			status = stdhttp.StatusNotFound
			message = "We couldn't find that prompt. It may have been removed from the catalog."
		} else {
			s.recordError(ctx, err, "loading prompt page", logrus.Fields{"id": input.ID})
		}

		return s.renderErrorResponse(ctx, status, message)
	}

	bodyHTML, err := templates.MarkdownHTML(record.Content)
	if err != nil {
		s.recordError(ctx, err, "rendering prompt markdown", logrus.Fields{"id": input.ID})
		return s.renderErrorResponse(ctx, stdhttp.StatusInternalServerError, errorFallbackMessage)
	}

	data := templates.PromptPageData{
		Title:    record.Title,
		Category: record.Category,
		Tags:     record.Tags,
		Created:  record.CreatedAt.Format(createdAtFormat),
		BodyHTML: bodyHTML,
	}

	body, err := renderComponent(ctx, templates.PromptPage(data))
	if err != nil {
		s.recordError(ctx, err, "rendering prompt page", logrus.Fields{"id": input.ID})
		return s.renderErrorResponse(ctx, stdhttp.StatusInternalServerError, errorFallbackMessage)
	}

	return newHTMLResponse(stdhttp.StatusOK, body), nil
}

func newHTMLResponse(status int, body []byte) *htmlResponse {
	return &htmlResponse{
		Status:      status,
		ContentType: htmlContentType,
		Body:        body,
	}
}

func htmlOperation(summary string, statuses ...int) func(op *huma.Operation) {
	return func(op *huma.Operation) {
		if summary != "" {
			op.Summary = summary
		}
		if op.Responses == nil {
			op.Responses = map[string]*huma.Response{}
		}

		statusCodes := append([]int{stdhttp.StatusOK}, statuses...)
		for _, status := range statusCodes {
			code := strconv.Itoa(status)
			op.Responses[code] = &huma.Response{
				Description: stdhttp.StatusText(status),
				Content: map[string]*huma.MediaType{
					htmlContentType: {
						Schema: &huma.Schema{Type: "string"},
					},
				},
			}
		}
	}
}

func (s *Server) renderErrorResponse(ctx context.Context, status int, message string) (*htmlResponse, error) {
	label := fmt.Sprintf("%d %s", status, stdhttp.StatusText(status))
	component := templates.ErrorPage(templates.ErrorPageData{
		StatusLabel: label,
		Message:     message,
	})

	body, err := renderComponent(ctx, component)
	if err != nil {
		s.recordError(ctx, err, "rendering error page", logrus.Fields{"status": status})
		fallback := []byte(fmt.Sprintf("<html><body><h1>%s</h1><p>%s</p></body></html>", label, message))
		return newHTMLResponse(status, fallback), nil
	}

	return newHTMLResponse(status, body), nil
}

func (s *Server) recordError(ctx context.Context, err error, message string, fields logrus.Fields) {
	if err == nil {
		return
	}

	if s.logger != nil {
		entry := s.logger.WithField("error", err.Error())
		if fields != nil {
			entry = entry.WithFields(fields)
		}
		if requestID := RequestIDFromContext(ctx); requestID != "" {
			entry = entry.WithField("request_id", requestID)
		}
		entry.Error(message)
	}

	if hub := sentry.GetHubFromContext(ctx); hub != nil {
		hub.CaptureException(err)
		return
	}
	if s.sentry != nil {
		s.sentry.CaptureException(err)
	}
}

// excerpt shortens prompt content for the browse page result cards. The cut
// counts runes so multi-byte characters are never split.
func excerpt(content string) string {
	content = strings.Join(strings.Fields(content), " ")

	runes := []rune(content)
	if len(runes) <= excerptLength {
		return content
	}

	cut := string(runes[:excerptLength])
	if idx := strings.LastIndex(cut, " "); idx > 0 {
		cut = cut[:idx]
	}
	return cut + "…"
}
