package prompt

import (
	"context"

	"github.com/getsentry/sentry-go"
	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"

	"prompthub/app/internal/metrics"
)

// ErrNotFound marks a lookup for a prompt id that does not exist. It is
// distinct from a store failure so callers can tell the two apart.
var ErrNotFound = eris.New("prompt not found")

// Stats bundles the catalog-wide aggregates. The three underlying reads are
// independent round trips and are not guaranteed mutually consistent.
type Stats struct {
	Total      int64
	Categories []string
	Tags       []string
}

// Service defines higher-level catalog operations built on top of the repository.
type Service interface {
	Search(ctx context.Context, filter SearchFilter) ([]Prompt, error)
	Get(ctx context.Context, id uint) (*Prompt, error)
	Stats(ctx context.Context) (*Stats, error)
}

type service struct {
	repo      Repository
	logger    *logrus.Logger
	sentryHub *sentry.Hub
}

var _ Service = (*service)(nil)

// NewService wires the catalog service with its dependencies.
func NewService(repo Repository, logger *logrus.Logger, hub *sentry.Hub) (Service, error) {
	if repo == nil {
		return nil, eris.New("prompt repository is required")
	}

	return &service{
		repo:      repo,
		logger:    logger,
		sentryHub: hub,
	}, nil
}

// Search runs a filtered, paginated catalog read. Store failures surface as
// typed errors so callers can distinguish them from an empty result.
func (s *service) Search(ctx context.Context, filter SearchFilter) ([]Prompt, error) {
	results, err := s.repo.Search(ctx, filter)
	if err != nil {
		metrics.SearchesTotal.WithLabelValues("error").Inc()
		s.recordError(logrus.Fields{"query": filter.Query, "category": filter.Category}, err, "searching catalog")
		return nil, eris.Wrap(err, "searching catalog")
	}

	metrics.SearchesTotal.WithLabelValues("ok").Inc()
	return results, nil
}

// Get returns the prompt with the given id. A missing id yields ErrNotFound.
func (s *service) Get(ctx context.Context, id uint) (*Prompt, error) {
	record, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.recordError(logrus.Fields{"id": id}, err, "retrieving prompt")
		return nil, eris.Wrapf(err, "retrieving prompt: %d", id)
	}

	if record == nil {
		return nil, eris.Wrapf(ErrNotFound, "retrieving prompt: %d", id)
	}

	return record, nil
}

// Stats computes the total record count and the category and tag
// vocabularies. The reads are not executed as a single transaction.
func (s *service) Stats(ctx context.Context) (*Stats, error) {
	total, err := s.repo.Count(ctx)
	if err != nil {
		s.recordError(nil, err, "counting prompts")
		return nil, eris.Wrap(err, "counting prompts")
	}

	categories, err := s.repo.Categories(ctx)
	if err != nil {
		s.recordError(nil, err, "listing categories")
		return nil, eris.Wrap(err, "listing categories")
	}

	tags, err := s.repo.TagVocabulary(ctx)
	if err != nil {
		s.recordError(nil, err, "listing tag vocabulary")
		return nil, eris.Wrap(err, "listing tag vocabulary")
	}

	return &Stats{Total: total, Categories: categories, Tags: tags}, nil
}

func (s *service) recordError(fields logrus.Fields, err error, message string) {
	if err == nil {
		return
	}

	if s.logger != nil {
		entry := s.logger.WithField("error", err.Error())
		if len(fields) > 0 {
			entry = entry.WithFields(fields)
		}
		entry.Error(message)
	}

	if s.sentryHub != nil {
		s.sentryHub.CaptureException(err)
	}
}
