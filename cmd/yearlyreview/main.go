// Yearly Review - Community Year in Review Reports
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/yearlyreview

// Package main is the entry point for yearlyreview.
//
// yearlyreview compiles a community's activity for a calendar year into a
// "year in review" document and publishes it exactly once per year.
//
// # Modes
//
// Service mode (default) runs a supervisor tree with the review scheduler and
// an ops HTTP server exposing /health and /metrics. The scheduler triggers the
// job periodically; the job decides whether the review is due.
//
// One-shot mode runs the job once and exits:
//
//	yearlyreview -once                 # default year, normal eligibility checks
//	yearlyreview -once -year 2024      # explicit year
//	yearlyreview -once -force          # skip enabled/season/published checks
//	yearlyreview -once -dry-run        # render only, print the document
//
// Rename mode rewrites the /old/ path segment of user avatar URLs in stored
// review documents after a user is renamed:
//
//	yearlyreview -rename-user old:new
//
// Show mode prints the review stored for a year by the store publisher:
//
//	yearlyreview -show 2025
//
// # Configuration
//
// Configuration is loaded via Koanf v2 (highest priority wins):
//   - Environment variables (YEARLY_REVIEW_*, DATABASE_*, PUBLISHER_*, ...)
//   - Config file (CONFIG_PATH, or config.yaml in the working directory)
//   - Built-in defaults
//
// # Build Tags
//
//	go build -tags nats ./cmd/yearlyreview   # enable the NATS publisher
//
// # Exit Codes
//
// 0 on success, skip, conflict or empty report; 1 on any returned error.
package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/tomtom215/yearlyreview/internal/config"
	"github.com/tomtom215/yearlyreview/internal/database"
	"github.com/tomtom215/yearlyreview/internal/logging"
	"github.com/tomtom215/yearlyreview/internal/models"
	"github.com/tomtom215/yearlyreview/internal/publish"
	"github.com/tomtom215/yearlyreview/internal/render"
	"github.com/tomtom215/yearlyreview/internal/review"
)

// options are the command-line flags.
type options struct {
	once       bool
	year       int
	force      bool
	dryRun     bool
	renameUser string
	show       int
}

func parseFlags(args []string, output io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet("yearlyreview", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.BoolVar(&opts.once, "once", false, "run the review job once and exit")
	fs.IntVar(&opts.year, "year", 0, "review year (default: last calendar year)")
	fs.BoolVar(&opts.force, "force", false, "bypass the enabled, season and already-published checks")
	fs.BoolVar(&opts.dryRun, "dry-run", false, "render the review without publishing it")
	fs.StringVar(&opts.renameUser, "rename-user", "", "rewrite a renamed user's avatar paths in stored reviews, as old:new")
	fs.IntVar(&opts.show, "show", 0, "print the review stored for this year and exit")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if !opts.once && (opts.year != 0 || opts.force || opts.dryRun) {
		return opts, errors.New("-year, -force and -dry-run require -once")
	}
	if opts.show != 0 && (opts.once || opts.renameUser != "") {
		return opts, errors.New("-show cannot be combined with -once or -rename-user")
	}
	return opts, nil
}

// runArgs converts flags to job arguments.
func (o options) runArgs() review.RunArgs {
	args := review.RunArgs{Force: o.force, DryRun: o.dryRun}
	if o.year != 0 {
		year := o.year
		args.ReviewYear = &year
	}
	return args
}

// parseRename splits "old:new".
func parseRename(value string) (string, string, error) {
	oldName, newName, ok := strings.Cut(value, ":")
	oldName, newName = strings.TrimSpace(oldName), strings.TrimSpace(newName)
	if !ok || oldName == "" || newName == "" {
		return "", "", fmt.Errorf("invalid -rename-user %q: want old:new", value)
	}
	return oldName, newName, nil
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		logging.Error().Err(err).Msg("yearlyreview failed")
		os.Exit(1)
	}
}

func run(argv []string) error {
	opts, err := parseFlags(argv, os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
		Output:    os.Stderr,
	})
	logger := logging.Logger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.New(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()
	logging.Info().Str("db_path", cfg.Database.Path).Msg("Database initialized")

	if opts.renameUser != "" {
		return renameUser(ctx, db, opts.renameUser)
	}
	if opts.show != 0 {
		return showReview(ctx, db, opts.show, os.Stdout)
	}

	renderer, err := render.New(&cfg.Review)
	if err != nil {
		return fmt.Errorf("failed to build renderer: %w", err)
	}

	publisher, closePublisher, err := publish.New(&cfg.Publisher, db, &logger)
	if err != nil {
		return fmt.Errorf("failed to build publisher: %w", err)
	}
	defer func() {
		if err := closePublisher(); err != nil {
			logging.Warn().Err(err).Msg("Error closing publisher")
		}
	}()

	job, err := review.NewJob(&cfg.Review, db, db, renderer, publisher, &logger)
	if err != nil {
		return fmt.Errorf("failed to build review job: %w", err)
	}

	if opts.once {
		return runOnce(ctx, job, opts, os.Stdout)
	}
	return serve(ctx, cfg, db, job, &logger)
}

func runOnce(ctx context.Context, job *review.Job, opts options, out io.Writer) error {
	res, err := job.Run(ctx, opts.runArgs())
	if err != nil {
		return err
	}
	if res.Outcome == review.OutcomeDryRun && res.Document != nil {
		printDocument(out, res.Document)
	}
	return nil
}

// documentReader loads stored reviews. Satisfied by *database.DB.
type documentReader interface {
	GetDocumentForYear(ctx context.Context, year int) (*models.ReviewDocument, error)
}

func showReview(ctx context.Context, reader documentReader, year int, out io.Writer) error {
	doc, err := reader.GetDocumentForYear(ctx, year)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("no stored review for %d", year)
	}
	if err != nil {
		return err
	}
	printDocument(out, doc)
	return nil
}

// printDocument writes the title, body and replies separated by rules.
func printDocument(out io.Writer, doc *models.ReviewDocument) {
	fmt.Fprintf(out, "# %s\n\n%s", doc.Title, doc.Body)
	for _, reply := range doc.Replies {
		fmt.Fprintf(out, "\n---\n\n%s", reply)
	}
}

func renameUser(ctx context.Context, db *database.DB, value string) error {
	oldName, newName, err := parseRename(value)
	if err != nil {
		return err
	}
	n, err := db.RenameUserInDocuments(ctx, oldName, newName)
	if err != nil {
		return err
	}
	logging.Info().Str("old", oldName).Str("new", newName).Int64("rows", n).Msg("Renamed user in stored reviews")
	return nil
}
