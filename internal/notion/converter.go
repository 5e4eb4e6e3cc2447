// Package notion converts a Notion Markdown export into catalog records.
package notion

import (
	"encoding/csv"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Record is one converted prompt, ready for import.
type Record struct {
	Title     string
	Content   string
	Category  string
	Tags      []string
	CreatedAt time.Time
}

// Summary reports the outcome of a conversion run.
type Summary struct {
	Processed int
	Skipped   int
	Errors    int
}

const minContentLength = 10

var (
	frontmatterPattern = regexp.MustCompile(`(?s)^---\s*\n(.*?)\n---\s*\n`)
	notionIDSuffix     = regexp.MustCompile(`\s+[a-f0-9]{32}$`)
	notionArtifact     = regexp.MustCompile(`\[[\w-]{32,}\]`)
	excessBlankLines   = regexp.MustCompile(`\n{3,}`)
)

// Converter walks a Notion Markdown export directory and produces records.
// The title comes from the filename, the category from the parent directory
// and the tags from the YAML frontmatter.
type Converter struct {
	root   string
	logger *logrus.Logger
}

// NewConverter constructs a converter rooted at the export directory.
func NewConverter(root string, logger *logrus.Logger) (*Converter, error) {
	if strings.TrimSpace(root) == "" {
		return nil, eris.New("export directory is required")
	}

	return &Converter{root: root, logger: logger}, nil
}

// Convert processes every Markdown file under the export root. Per-file
// failures are logged and counted rather than aborting the run.
func (c *Converter) Convert() ([]Record, Summary, error) {
	info, err := os.Stat(c.root)
	if err != nil {
		return nil, Summary{}, eris.Wrapf(err, "reading export directory: %s", c.root)
	}
	if !info.IsDir() {
		return nil, Summary{}, eris.Errorf("export path is not a directory: %s", c.root)
	}

	var records []Record
	var summary Summary

	walkErr := filepath.WalkDir(c.root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(path), ".md") {
			return nil
		}

		record, ok, fileErr := c.processFile(path)
		if fileErr != nil {
			summary.Errors++
			if c.logger != nil {
				c.logger.WithField("error", fileErr.Error()).WithField("path", path).Error("processing export file")
			}
			return nil
		}
		if !ok {
			summary.Skipped++
			return nil
		}

		records = append(records, record)
		summary.Processed++
		return nil
	})
	if walkErr != nil {
		return nil, summary, eris.Wrapf(walkErr, "walking export directory: %s", c.root)
	}

	return records, summary, nil
}

func (c *Converter) processFile(path string) (Record, bool, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Record{}, false, eris.Wrapf(err, "reading file: %s", path)
	}

	meta, body := splitFrontmatter(string(raw))
	content := cleanContent(body)

	if len(strings.TrimSpace(content)) < minContentLength {
		if c.logger != nil {
			c.logger.WithField("path", path).Warn("skipping file: content too short or empty")
		}
		return Record{}, false, nil
	}

	createdAt := time.Now()
	if info, statErr := os.Stat(path); statErr == nil {
		createdAt = info.ModTime()
	} else if c.logger != nil {
		c.logger.WithField("path", path).Warn("could not read file timestamp")
	}

	return Record{
		Title:     cleanTitle(path),
		Content:   content,
		Category:  c.categoryFor(path),
		Tags:      frontmatterTags(meta),
		CreatedAt: createdAt,
	}, true, nil
}

// splitFrontmatter separates a leading YAML frontmatter block from the body.
// Files without frontmatter pass through untouched.
func splitFrontmatter(raw string) (map[string]any, string) {
	match := frontmatterPattern.FindStringSubmatch(raw)
	if match == nil {
		return nil, raw
	}

	meta := map[string]any{}
	if err := yaml.Unmarshal([]byte(match[1]), &meta); err != nil {
		// Malformed frontmatter is treated as body text, mirroring the
		// lenient behaviour of hand-exported Notion files.
		return nil, raw
	}

	return meta, raw[len(match[0]):]
}

// frontmatterTags extracts the tag list from parsed frontmatter, accepting
// both a YAML sequence and a comma-separated string under tags or Tags.
func frontmatterTags(meta map[string]any) []string {
	if meta == nil {
		return nil
	}

	value, ok := meta["tags"]
	if !ok {
		value, ok = meta["Tags"]
	}
	if !ok {
		return nil
	}

	var tags []string
	switch v := value.(type) {
	case []any:
		for _, item := range v {
			if s, isString := item.(string); isString {
				if s = strings.TrimSpace(s); s != "" {
					tags = append(tags, s)
				}
			}
		}
	case string:
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				tags = append(tags, part)
			}
		}
	}

	return tags
}

// cleanTitle derives the prompt title from the filename, stripping the
// 32-hex Notion page id suffix.
func cleanTitle(path string) string {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return strings.TrimSpace(notionIDSuffix.ReplaceAllString(stem, ""))
}

// cleanContent collapses excess blank lines and strips bracketed Notion
// database ids from the body.
func cleanContent(content string) string {
	content = excessBlankLines.ReplaceAllString(content, "\n\n")
	content = notionArtifact.ReplaceAllString(content, "")
	return strings.TrimSpace(content)
}

// categoryFor assigns the parent directory name as the category. Files at
// the export root fall back to Uncategorized.
func (c *Converter) categoryFor(path string) string {
	parent := filepath.Dir(path)
	if filepath.Clean(parent) == filepath.Clean(c.root) {
		return "Uncategorized"
	}
	return filepath.Base(parent)
}

// WriteCSV emits the records in the bulk-import CSV layout, tags formatted
// as a PostgreSQL array literal.
func WriteCSV(w io.Writer, records []Record) error {
	writer := csv.NewWriter(w)

	if err := writer.Write([]string{"title", "content", "category", "tags", "created_at"}); err != nil {
		return eris.Wrap(err, "writing CSV header")
	}

	for _, record := range records {
		row := []string{
			record.Title,
			record.Content,
			record.Category,
			formatTagArray(record.Tags),
			record.CreatedAt.Format("2006-01-02T15:04:05Z"),
		}
		if err := writer.Write(row); err != nil {
			return eris.Wrap(err, "writing CSV row")
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return eris.Wrap(err, "flushing CSV output")
	}

	return nil
}

// formatTagArray renders tags as a PostgreSQL array literal, e.g.
// {"email","business"}.
func formatTagArray(tags []string) string {
	if len(tags) == 0 {
		return "{}"
	}

	quoted := make([]string, len(tags))
	for i, tag := range tags {
		quoted[i] = `"` + strings.ReplaceAll(tag, `"`, `""`) + `"`
	}

	return "{" + strings.Join(quoted, ",") + "}"
}
