package reconcile

import (
	"strconv"
	"strings"

	"golang.org/x/text/cases"

	"matinee/internal/omdb"
)

var keyFolder = cases.Fold()

// KeyForRecord derives the natural external key for a fetched record. The
// IMDb id wins when present; otherwise a case-folded title plus year composite
// stands in so records without provider ids still deduplicate.
func KeyForRecord(record *omdb.RawRecord) string {
	if record == nil {
		return ""
	}
	if id := strings.ToLower(strings.TrimSpace(record.IMDbID)); id != "" {
		return id
	}
	return compositeKey(record.Title, record.Year)
}

// KeyForQuery derives the external key a query would resolve to when the
// upstream response never arrives. Used to locate an existing entry on fetch
// failure.
func KeyForQuery(query omdb.Query) string {
	if id := strings.ToLower(strings.TrimSpace(query.IMDbID)); id != "" {
		return id
	}
	return compositeKey(query.Title, query.Year)
}

func compositeKey(title string, year int) string {
	folded := keyFolder.String(strings.TrimSpace(title))
	folded = strings.Join(strings.Fields(folded), " ")
	if folded == "" {
		return ""
	}
	if year > 0 {
		return folded + "|" + strconv.Itoa(year)
	}
	return folded
}
