package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"matinee/internal/catalog"
	"matinee/internal/syncer"
)

func renderEntries(entries []*catalog.Entry, terminal bool) string {
	if len(entries) == 0 {
		return "No entries found."
	}
	headers := []string{"ID", "Title", "Year", "Genre", "Rating", "State"}
	rows := make([][]string, 0, len(entries))
	for _, entry := range entries {
		rows = append(rows, []string{
			strconv.FormatInt(entry.ID, 10),
			entry.Title,
			zeroBlank(entry.Year),
			entry.Genre,
			ratingString(entry.Rating),
			string(entry.SyncState),
		})
	}
	return renderRows(headers, rows, terminal)
}

func renderEntryDetail(entry *catalog.Entry) string {
	var b strings.Builder
	write := func(label, value string) {
		if value != "" {
			fmt.Fprintf(&b, "%-12s %s\n", label+":", value)
		}
	}
	write("ID", strconv.FormatInt(entry.ID, 10))
	write("Title", entry.Title)
	write("Year", zeroBlank(entry.Year))
	write("IMDb", entry.IMDbID)
	write("Genre", entry.Genre)
	write("Director", entry.Director)
	write("Actors", entry.Actors)
	write("Language", entry.Language)
	write("Country", entry.Country)
	write("Runtime", entry.Runtime)
	write("Rating", ratingString(entry.Rating))
	write("Plot", entry.Plot)
	write("Watched", strconv.Itoa(entry.WatchCount))
	write("State", string(entry.SyncState))
	if entry.SyncState == catalog.StateFailed && entry.ErrorMessage != "" {
		write("Error", entry.ErrorMessage)
	}
	if !entry.LastSyncedAt.IsZero() {
		write("Synced", entry.LastSyncedAt.Format("2006-01-02 15:04:05 MST"))
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderSummary(summary syncer.Summary, terminal bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Batch %s: %d created, %d updated, %d failed, %d skipped (%s)\n",
		summary.BatchID, summary.Created, summary.Updated, summary.Failed, summary.Skipped,
		summary.Duration.Round(time.Millisecond))

	var rows [][]string
	for _, item := range summary.Items {
		if item.State == syncer.ItemSucceeded {
			continue
		}
		detail := item.Error
		rows = append(rows, []string{string(item.State), item.Query, detail})
	}
	if len(rows) > 0 {
		b.WriteString(renderRows([]string{"Result", "Query", "Detail"}, rows, terminal))
	}
	return strings.TrimRight(b.String(), "\n")
}

func zeroBlank(value int) string {
	if value <= 0 {
		return ""
	}
	return strconv.Itoa(value)
}

func ratingString(rating float64) string {
	if rating <= 0 {
		return ""
	}
	return strconv.FormatFloat(rating, 'f', 1, 64)
}
