package prompt

import (
	"context"
	"io"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"
)

type stubRepository struct {
	searchResults []Prompt
	searchErr     error
	record        *Prompt
	recordErr     error
	count         int64
	countErr      error
	categories    []string
	categoriesErr error
	tags          []string
	tagsErr       error

	lastFilter SearchFilter
}

func (s *stubRepository) Search(_ context.Context, filter SearchFilter) ([]Prompt, error) {
	s.lastFilter = filter
	if s.searchErr != nil {
		return nil, s.searchErr
	}
	return s.searchResults, nil
}

func (s *stubRepository) GetByID(_ context.Context, _ uint) (*Prompt, error) {
	if s.recordErr != nil {
		return nil, s.recordErr
	}
	return s.record, nil
}

func (s *stubRepository) Count(_ context.Context) (int64, error) {
	if s.countErr != nil {
		return 0, s.countErr
	}
	return s.count, nil
}

func (s *stubRepository) Categories(_ context.Context) ([]string, error) {
	if s.categoriesErr != nil {
		return nil, s.categoriesErr
	}
	return s.categories, nil
}

func (s *stubRepository) TagVocabulary(_ context.Context) ([]string, error) {
	if s.tagsErr != nil {
		return nil, s.tagsErr
	}
	return s.tags, nil
}

func (s *stubRepository) BulkInsert(_ context.Context, _ []Prompt) error {
	return nil
}

func newTestService(t *testing.T, repo Repository) Service {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	svc, err := NewService(repo, logger, nil)
	if err != nil {
		t.Fatalf("NewService returned error: %v", err)
	}
	return svc
}

func TestNewServiceRequiresRepository(t *testing.T) {
	t.Parallel()

	if _, err := NewService(nil, nil, nil); err == nil {
		t.Fatal("expected error when repository is nil")
	}
}

func TestServiceSearchPassesFilterThrough(t *testing.T) {
	t.Parallel()

	repo := &stubRepository{searchResults: []Prompt{{Title: "One"}}}
	svc := newTestService(t, repo)

	filter := SearchFilter{Query: "email", Category: "Writing", Tags: []string{"a"}, Limit: 10, Offset: 5}
	results, err := svc.Search(context.Background(), filter)
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	if len(results) != 1 || results[0].Title != "One" {
		t.Fatalf("expected stub results, got %v", results)
	}
	if repo.lastFilter.Query != "email" || repo.lastFilter.Limit != 10 || repo.lastFilter.Offset != 5 {
		t.Fatalf("expected filter forwarded unchanged, got %#v", repo.lastFilter)
	}
}

func TestServiceSearchWrapsStoreFailure(t *testing.T) {
	t.Parallel()

	repo := &stubRepository{searchErr: eris.New("disk on fire")}
	svc := newTestService(t, repo)

	if _, err := svc.Search(context.Background(), SearchFilter{}); err == nil {
		t.Fatal("expected store failure to surface as an error")
	}
}

func TestServiceGetMapsMissingToErrNotFound(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, &stubRepository{})

	_, err := svc.Get(context.Background(), 42)
	if err == nil {
		t.Fatal("expected ErrNotFound for missing prompt")
	}
	if !eris.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestServiceGetDistinguishesStoreFailure(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, &stubRepository{recordErr: eris.New("connection lost")})

	_, err := svc.Get(context.Background(), 42)
	if err == nil {
		t.Fatal("expected store failure to surface as an error")
	}
	if eris.Is(err, ErrNotFound) {
		t.Fatalf("store failure must not look like not-found, got %v", err)
	}
}

func TestServiceGetReturnsRecord(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, &stubRepository{record: &Prompt{ID: 7, Title: "Found"}})

	record, err := svc.Get(context.Background(), 7)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if record.Title != "Found" {
		t.Fatalf("expected stored record, got %#v", record)
	}
}

func TestServiceStatsAggregates(t *testing.T) {
	t.Parallel()

	repo := &stubRepository{
		count:      3,
		categories: []string{"Development", "Writing"},
		tags:       []string{"code", "email"},
	}
	svc := newTestService(t, repo)

	stats, err := svc.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats returned error: %v", err)
	}
	if stats.Total != 3 {
		t.Fatalf("expected total 3, got %d", stats.Total)
	}
	if len(stats.Categories) != 2 || len(stats.Tags) != 2 {
		t.Fatalf("expected vocabularies forwarded, got %#v", stats)
	}
}

func TestServiceStatsSurfacesFirstFailure(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, &stubRepository{countErr: eris.New("timeout")})

	if _, err := svc.Stats(context.Background()); err == nil {
		t.Fatal("expected count failure to surface as an error")
	}
}
