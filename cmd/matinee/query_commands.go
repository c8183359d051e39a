package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

func newSearchCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "search [text]",
		Short: "Search the catalog by title, genre, director, or actor",
		RunE: func(cmd *cobra.Command, args []string) error {
			service, err := ctx.libraryService()
			if err != nil {
				return err
			}
			defer ctx.close()

			entries, err := service.Search(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderEntries(entries, stdoutIsTerminal()))
			return nil
		},
	}
}

func newShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one catalog entry in full",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid entry id %q", args[0])
			}
			service, err := ctx.libraryService()
			if err != nil {
				return err
			}
			defer ctx.close()

			entry, err := service.ByID(cmd.Context(), id)
			if err != nil {
				return err
			}
			if entry == nil {
				return fmt.Errorf("no entry with id %d", id)
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderEntryDetail(entry))
			return nil
		},
	}
}

func newWatchedCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "watched <id>",
		Short: "Record a playback of the given entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid entry id %q", args[0])
			}
			store, err := ctx.ensureStore()
			if err != nil {
				return err
			}
			defer ctx.close()

			bumped, err := store.IncrementWatchCount(cmd.Context(), id)
			if err != nil {
				return err
			}
			if !bumped {
				return fmt.Errorf("no entry with id %d", id)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Recorded playback for entry %d.\n", id)
			return nil
		},
	}
}

func newHealthCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Report catalog database health",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.ensureStore()
			if err != nil {
				return err
			}
			defer ctx.close()

			health, err := store.CheckHealth(cmd.Context())
			if err != nil {
				return err
			}
			summary, err := store.Health(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Database:  %s\n", health.DBPath)
			fmt.Fprintf(out, "Readable:  %v\n", health.DatabaseReadable)
			fmt.Fprintf(out, "Integrity: %v\n", health.IntegrityCheck)
			fmt.Fprintf(out, "Entries:   %d (%d synced, %d failed, %d pending)\n",
				summary.Total, summary.Synced, summary.Failed, summary.Pending)
			return nil
		},
	}
}
