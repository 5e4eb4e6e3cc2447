// Command notion-import converts a Notion Markdown export into catalog
// records and bulk-loads them into the PromptHub database. It can also emit
// the records as CSV for loading into an external database.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"

	"prompthub/app/internal/config"
	appdb "prompthub/app/internal/db"
	applog "prompthub/app/internal/log"
	"prompthub/app/internal/notion"
	"prompthub/app/internal/prompt"
)

func main() {
	if err := run(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	_ = godotenv.Load()

	source := flag.String("source", "", "path to the Notion Markdown export directory")
	dbPath := flag.String("db", "", "path to the catalog database (defaults to DB_PATH)")
	csvPath := flag.String("csv", "", "optional path for a CSV export of the converted records")
	flag.Parse()

	if *source == "" && flag.NArg() > 0 {
		*source = flag.Arg(0)
	}
	if *source == "" {
		return eris.New("usage: notion-import -source <notion-export-dir> [-db path] [-csv path]")
	}

	cfg, err := config.Load()
	if err != nil {
		return eris.Wrap(err, "failure loading configuration")
	}
	if *dbPath == "" {
		*dbPath = cfg.DBPath
	}

	logger, err := applog.NewLogger(cfg.LogLevel)
	if err != nil {
		return eris.Wrap(err, "failure initialising logger")
	}

	converter, err := notion.NewConverter(*source, logger)
	if err != nil {
		return eris.Wrap(err, "creating converter")
	}

	records, summary, err := converter.Convert()
	if err != nil {
		return eris.Wrap(err, "converting export")
	}

	logger.WithFields(logrus.Fields{
		"processed": summary.Processed,
		"skipped":   summary.Skipped,
		"errors":    summary.Errors,
	}).Info("conversion complete")

	if *csvPath != "" {
		if err := writeCSVFile(*csvPath, records); err != nil {
			return err
		}
		logger.WithField("path", *csvPath).Info("csv export written")
	}

	prompts := make([]prompt.Prompt, 0, len(records))
	for _, record := range records {
		prompts = append(prompts, prompt.Prompt{
			Title:     record.Title,
			Content:   record.Content,
			Category:  record.Category,
			Tags:      prompt.StringList(record.Tags),
			CreatedAt: record.CreatedAt,
		})
	}

	dbConn, err := appdb.Open(appdb.Options{Path: *dbPath})
	if err != nil {
		return eris.Wrap(err, "opening database")
	}
	defer func() {
		if closeErr := appdb.Close(dbConn); closeErr != nil {
			logger.WithError(closeErr).Error("closing database")
		}
	}()

	if err := prompt.Migrate(ctx, dbConn, logger); err != nil {
		return eris.Wrap(err, "running migrations")
	}

	repository, err := prompt.NewRepository(dbConn, logger)
	if err != nil {
		return eris.Wrap(err, "building prompt repository")
	}

	if err := repository.BulkInsert(ctx, prompts); err != nil {
		return eris.Wrap(err, "importing prompts")
	}

	logger.WithField("imported", len(prompts)).Info("import complete")
	return nil
}

func writeCSVFile(path string, records []notion.Record) error {
	file, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "creating csv file: %s", path)
	}
	defer file.Close()

	if err := notion.WriteCSV(file, records); err != nil {
		return eris.Wrap(err, "writing csv export")
	}

	return nil
}
