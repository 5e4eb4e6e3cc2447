package prompt

import (
	"context"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"prompthub/app/internal/metrics"
)

// DefaultLimit is the page size applied when a search does not request one.
const DefaultLimit = 50

// SearchFilter carries the optional criteria for a catalog search. All
// supplied filters are combined with AND semantics.
type SearchFilter struct {
	Query    string
	Category string
	Tags     []string
	Limit    int
	Offset   int
}

// Repository defines persistence operations for catalog prompts.
type Repository interface {
	Search(ctx context.Context, filter SearchFilter) ([]Prompt, error)
	GetByID(ctx context.Context, id uint) (*Prompt, error)
	Count(ctx context.Context) (int64, error)
	Categories(ctx context.Context) ([]string, error)
	TagVocabulary(ctx context.Context) ([]string, error)
	BulkInsert(ctx context.Context, prompts []Prompt) error
}

// GormRepository persists prompts using a Gorm database connection.
type GormRepository struct {
	db     *gorm.DB
	logger *logrus.Logger
	fts    bool
}

// NewRepository constructs a Gorm-backed repository implementation. The text
// filter uses the FTS5 index when the SQLite build carries the module and a
// substring scan otherwise.
func NewRepository(db *gorm.DB, logger *logrus.Logger) (*GormRepository, error) {
	if db == nil {
		return nil, eris.New("gorm DB is required")
	}

	return &GormRepository{db: db, logger: logger, fts: fts5Available(db)}, nil
}

var _ Repository = (*GormRepository)(nil)

// Search returns prompts matching the filter, newest first. Filters and
// pagination compose into a single round trip to the database.
func (r *GormRepository) Search(ctx context.Context, filter SearchFilter) ([]Prompt, error) {
	defer metrics.ObserveDBOperation("search", time.Now())

	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	tx := r.db.WithContext(ctx).Model(&Prompt{})

	if query := strings.TrimSpace(filter.Query); query != "" {
		titlePattern := "%" + escapeLike(query) + "%"
		if r.fts {
			tx = tx.Where(
				`(prompts.id IN (SELECT rowid FROM prompts_fts WHERE prompts_fts MATCH ?) OR lower(title) LIKE lower(?) ESCAPE '\')`,
				ftsMatchExpression(query), titlePattern,
			)
		} else {
			condition, args := likeTextCondition(query)
			tx = tx.Where(condition, args...)
		}
	}

	if category := strings.TrimSpace(filter.Category); category != "" {
		tx = tx.Where("category = ?", category)
	}

	for _, tag := range filter.Tags {
		if tag = strings.TrimSpace(tag); tag == "" {
			continue
		}
		tx = tx.Where("EXISTS (SELECT 1 FROM json_each(prompts.tags) WHERE json_each.value = ?)", tag)
	}

	var prompts []Prompt
	if err := tx.Order("created_at DESC").Limit(limit).Offset(offset).Find(&prompts).Error; err != nil {
		r.logError(logrus.Fields{"query": filter.Query}, err, "searching prompts")
		return nil, eris.Wrap(err, "searching prompts")
	}

	return prompts, nil
}

// GetByID returns the prompt with the given id or nil when not found.
func (r *GormRepository) GetByID(ctx context.Context, id uint) (*Prompt, error) {
	defer metrics.ObserveDBOperation("get", time.Now())

	var record Prompt
	err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error
	if err != nil {
		if eris.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.logError(logrus.Fields{"id": id}, err, "fetching prompt by id")
		return nil, eris.Wrapf(err, "fetching prompt by id: %d", id)
	}

	return &record, nil
}

// Count returns the total number of prompts in the catalog, ignoring filters.
func (r *GormRepository) Count(ctx context.Context) (int64, error) {
	defer metrics.ObserveDBOperation("count", time.Now())

	var count int64
	if err := r.db.WithContext(ctx).Model(&Prompt{}).Count(&count).Error; err != nil {
		r.logError(nil, err, "counting prompts")
		return 0, eris.Wrap(err, "counting prompts")
	}

	return count, nil
}

// Categories returns the distinct category vocabulary in ascending order.
func (r *GormRepository) Categories(ctx context.Context) ([]string, error) {
	defer metrics.ObserveDBOperation("categories", time.Now())

	categories := []string{}
	err := r.db.WithContext(ctx).
		Model(&Prompt{}).
		Distinct("category").
		Where("category IS NOT NULL AND category != ''").
		Order("category ASC").
		Pluck("category", &categories).Error
	if err != nil {
		r.logError(nil, err, "listing categories")
		return nil, eris.Wrap(err, "listing categories")
	}

	return categories, nil
}

// TagVocabulary flattens the tag sets of every prompt into a deduplicated,
// ascending list of labels.
func (r *GormRepository) TagVocabulary(ctx context.Context) ([]string, error) {
	defer metrics.ObserveDBOperation("tags", time.Now())

	tags := []string{}
	err := r.db.WithContext(ctx).
		Raw(`SELECT DISTINCT json_each.value AS tag
			FROM prompts, json_each(prompts.tags)
			WHERE json_each.value IS NOT NULL AND json_each.value != ''
			ORDER BY tag ASC`).
		Scan(&tags).Error
	if err != nil {
		r.logError(nil, err, "listing tag vocabulary")
		return nil, eris.Wrap(err, "listing tag vocabulary")
	}

	return tags, nil
}

// BulkInsert stores imported prompts in batches.
func (r *GormRepository) BulkInsert(ctx context.Context, prompts []Prompt) error {
	if len(prompts) == 0 {
		return nil
	}

	defer metrics.ObserveDBOperation("bulk_insert", time.Now())

	if err := r.db.WithContext(ctx).CreateInBatches(prompts, 100).Error; err != nil {
		r.logError(logrus.Fields{"count": len(prompts)}, err, "bulk inserting prompts")
		return eris.Wrap(err, "bulk inserting prompts")
	}

	return nil
}

// ftsMatchExpression quotes each search term to keep punctuation from being
// read as FTS5 syntax and joins terms with AND so every token must match.
func ftsMatchExpression(query string) string {
	words := strings.Fields(query)
	if len(words) == 0 {
		return ""
	}

	quoted := make([]string, len(words))
	for i, w := range words {
		w = strings.ReplaceAll(w, `"`, `""`)
		quoted[i] = `"` + w + `"`
	}

	return strings.Join(quoted, " AND ")
}

// likeTextCondition builds the text filter used when FTS5 is unavailable:
// every query token must appear in the content, or the title must contain
// the query as a whole. Mirrors the FTS path's conjunctive token semantics.
func likeTextCondition(query string) (string, []any) {
	var clauses []string
	var args []any

	for _, word := range strings.Fields(query) {
		clauses = append(clauses, `lower(content) LIKE lower(?) ESCAPE '\'`)
		args = append(args, "%"+escapeLike(word)+"%")
	}

	condition := "(" + strings.Join(clauses, " AND ") + ` OR lower(title) LIKE lower(?) ESCAPE '\')`
	args = append(args, "%"+escapeLike(query)+"%")

	return condition, args
}

// escapeLike neutralises LIKE metacharacters so user text matches literally.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}

func (r *GormRepository) logError(fields logrus.Fields, err error, message string) {
	if r.logger == nil {
		return
	}

	entry := r.logger.WithField("error", err.Error())
	if len(fields) > 0 {
		entry = entry.WithFields(fields)
	}
	entry.Error(message)
}
