package prompt

import (
	"context"

	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ftsStatements creates the external-content FTS5 index over prompt content
// and the triggers that keep it in sync with the prompts table. AutoMigrate
// cannot express virtual tables, so these run as raw DDL. The final rebuild
// re-indexes rows inserted by a binary that lacked the FTS5 module.
var ftsStatements = []string{
	`CREATE VIRTUAL TABLE IF NOT EXISTS prompts_fts USING fts5(
		content,
		content='prompts',
		content_rowid='id'
	)`,
	`CREATE TRIGGER IF NOT EXISTS prompts_fts_insert AFTER INSERT ON prompts BEGIN
		INSERT INTO prompts_fts(rowid, content) VALUES (new.id, new.content);
	END`,
	`CREATE TRIGGER IF NOT EXISTS prompts_fts_delete AFTER DELETE ON prompts BEGIN
		INSERT INTO prompts_fts(prompts_fts, rowid, content) VALUES ('delete', old.id, old.content);
	END`,
	`CREATE TRIGGER IF NOT EXISTS prompts_fts_update AFTER UPDATE OF content ON prompts BEGIN
		INSERT INTO prompts_fts(prompts_fts, rowid, content) VALUES ('delete', old.id, old.content);
		INSERT INTO prompts_fts(rowid, content) VALUES (new.id, new.content);
	END`,
	`INSERT INTO prompts_fts(prompts_fts) VALUES ('rebuild')`,
}

// ftsDropStatements removes the sync triggers when the linked SQLite build
// lacks the FTS5 module. A database created by an FTS-capable binary keeps
// triggers that reference prompts_fts; left in place they would fail every
// insert in this process.
var ftsDropStatements = []string{
	`DROP TRIGGER IF EXISTS prompts_fts_insert`,
	`DROP TRIGGER IF EXISTS prompts_fts_delete`,
	`DROP TRIGGER IF EXISTS prompts_fts_update`,
}

const createdAtIndexStatement = `CREATE INDEX IF NOT EXISTS idx_prompts_created_at ON prompts(created_at DESC)`

// fts5Available reports whether the linked SQLite build includes the FTS5
// module. mattn/go-sqlite3 only compiles it in under the fts5 build tag, so
// the schema and the query builder both have to cope with its absence.
func fts5Available(db *gorm.DB) bool {
	var count int64
	err := db.Raw("SELECT count(*) FROM pragma_compile_options WHERE compile_options = 'ENABLE_FTS5'").Scan(&count).Error
	return err == nil && count > 0
}

// Migrate applies the catalog schema and logs progress. The full-text index
// is only created when the SQLite build carries FTS5; without it the search
// path falls back to substring matching.
func Migrate(ctx context.Context, db *gorm.DB, logger *logrus.Logger) error {
	if db == nil {
		return eris.New("gorm DB is required")
	}

	logFields := logrus.Fields{"component": "prompt.migrate"}
	if logger != nil {
		logger.WithFields(logFields).Info("applying catalog schema")
	}

	if err := db.WithContext(ctx).AutoMigrate(&Prompt{}); err != nil {
		if logger != nil {
			logger.WithFields(logFields).WithField("error", err.Error()).Error("catalog schema migration failed")
		}
		return eris.Wrap(err, "auto migrating catalog schema")
	}

	if err := db.WithContext(ctx).Exec(createdAtIndexStatement).Error; err != nil {
		if logger != nil {
			logger.WithFields(logFields).WithField("error", err.Error()).Error("applying catalog index DDL failed")
		}
		return eris.Wrap(err, "applying catalog index DDL")
	}

	statements := ftsStatements
	if !fts5Available(db) {
		statements = ftsDropStatements
		if logger != nil {
			logger.WithFields(logFields).Warn("sqlite build lacks the fts5 module; content search uses substring matching")
		}
	}

	for _, statement := range statements {
		if err := db.WithContext(ctx).Exec(statement).Error; err != nil {
			if logger != nil {
				logger.WithFields(logFields).WithField("error", err.Error()).Error("applying search index DDL failed")
			}
			return eris.Wrap(err, "applying search index DDL")
		}
	}

	if logger != nil {
		logger.WithFields(logFields).Info("catalog schema migration complete")
	}

	return nil
}
