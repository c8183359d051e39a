package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"matinee/internal/omdb"
	"matinee/internal/reconcile"
	"matinee/internal/scan"
	"matinee/internal/syncer"
)

func newSyncCommand(ctx *commandContext) *cobra.Command {
	var dirFlag string

	cmd := &cobra.Command{
		Use:   "sync [title ...]",
		Short: "Fetch metadata and reconcile it into the catalog",
		Long: `Sync fetches metadata for the given titles, or for every video file found
under the media directory when no titles are given, and reconciles the
results into the local catalog. Titles may carry a year in parentheses,
e.g. "Inception (2010)", and IMDb ids (tt0000000) are accepted directly.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := cfg.RequireAPIKey(); err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			store, err := ctx.ensureStore()
			if err != nil {
				return err
			}
			defer ctx.close()

			queries, err := collectQueries(args, dirFlag, cfg.MediaDir)
			if err != nil {
				return err
			}
			if len(queries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Nothing to sync.")
				return nil
			}

			// One sync writes at a time; readers are unaffected.
			lock := flock.New(cfg.LockPath())
			locked, err := lock.TryLock()
			if err != nil {
				return fmt.Errorf("acquire sync lock: %w", err)
			}
			if !locked {
				return errors.New("another sync is already running")
			}
			defer func() { _ = lock.Unlock() }()

			client, err := omdb.New(cfg.APIKey, cfg.BaseURL,
				omdb.WithTimeout(time.Duration(cfg.RequestTimeout)*time.Second))
			if err != nil {
				return err
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			coordinator := syncer.New(
				syncer.OptionsFromConfig(cfg),
				client,
				reconcile.New(store, logger),
				logger,
			)
			summary := coordinator.Run(runCtx, queries)

			fmt.Fprintln(cmd.OutOrStdout(), renderSummary(summary, stdoutIsTerminal()))
			if summary.Failed > 0 {
				return fmt.Errorf("%d of %d items failed", summary.Failed, summary.Total())
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dirFlag, "dir", "", "Media directory to scan (defaults to paths.media_dir)")
	return cmd
}

func collectQueries(args []string, dirFlag, mediaDir string) ([]omdb.Query, error) {
	if len(args) > 0 {
		queries := make([]omdb.Query, 0, len(args))
		for _, arg := range args {
			query := parseTitleArg(arg)
			if query.Title == "" && query.IMDbID == "" {
				return nil, fmt.Errorf("empty title argument %q", arg)
			}
			queries = append(queries, query)
		}
		return queries, nil
	}

	dir := strings.TrimSpace(dirFlag)
	if dir == "" {
		dir = mediaDir
	}
	if _, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("media directory %s is not accessible: %w", dir, err)
	}
	return scan.Queries(dir)
}

// parseTitleArg accepts "Title", "Title (2010)", or an IMDb id like tt1375666.
func parseTitleArg(arg string) omdb.Query {
	trimmed := strings.TrimSpace(arg)
	lower := strings.ToLower(trimmed)
	if strings.HasPrefix(lower, "tt") && len(trimmed) > 2 {
		if _, err := strconv.Atoi(trimmed[2:]); err == nil {
			return omdb.Query{IMDbID: lower}
		}
	}
	if strings.HasSuffix(trimmed, ")") {
		if open := strings.LastIndex(trimmed, "("); open > 0 {
			if year, err := strconv.Atoi(strings.TrimSpace(trimmed[open+1 : len(trimmed)-1])); err == nil && year > 1800 {
				return omdb.Query{Title: strings.TrimSpace(trimmed[:open]), Year: year}
			}
		}
	}
	return omdb.Query{Title: trimmed}
}
