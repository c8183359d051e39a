package omdb

import (
	"fmt"
	"strconv"
	"strings"
)

// Query identifies the record to look up. Either IMDbID or Title must be set;
// Year optionally narrows a title search.
type Query struct {
	Title  string
	Year   int
	IMDbID string
}

// String renders the query for logs and summaries.
func (q Query) String() string {
	if id := strings.TrimSpace(q.IMDbID); id != "" {
		return id
	}
	title := strings.TrimSpace(q.Title)
	if q.Year > 0 {
		return fmt.Sprintf("%s (%d)", title, q.Year)
	}
	return title
}

// Validate rejects queries that identify nothing.
func (q Query) Validate() error {
	if strings.TrimSpace(q.IMDbID) == "" && strings.TrimSpace(q.Title) == "" {
		return fmt.Errorf("%w: query needs a title or imdb id", ErrMalformed)
	}
	return nil
}

// payload mirrors the OMDB JSON response shape. Every field arrives as a
// string; absent values carry the literal "N/A".
type payload struct {
	Title      string `json:"Title"`
	Year       string `json:"Year"`
	Genre      string `json:"Genre"`
	Director   string `json:"Director"`
	Actors     string `json:"Actors"`
	Plot       string `json:"Plot"`
	Language   string `json:"Language"`
	Country    string `json:"Country"`
	Poster     string `json:"Poster"`
	Runtime    string `json:"Runtime"`
	IMDbRating string `json:"imdbRating"`
	IMDbID     string `json:"imdbID"`
	Type       string `json:"Type"`
	Response   string `json:"Response"`
	Error      string `json:"Error"`
}

// RawRecord is the validated intermediate produced by a successful lookup.
// Optional fields are zero-valued when the upstream response omitted them.
type RawRecord struct {
	Title     string
	Year      int
	IMDbID    string
	Genre     string
	Director  string
	Actors    string
	Plot      string
	Language  string
	Country   string
	PosterURL string
	Runtime   string
	Rating    float64
}

func (p payload) normalize() (*RawRecord, error) {
	record := &RawRecord{
		Title:     scrub(p.Title),
		IMDbID:    scrub(p.IMDbID),
		Genre:     scrub(p.Genre),
		Director:  scrub(p.Director),
		Actors:    scrub(p.Actors),
		Plot:      scrub(p.Plot),
		Language:  scrub(p.Language),
		Country:   scrub(p.Country),
		PosterURL: scrub(p.Poster),
		Runtime:   scrub(p.Runtime),
	}
	if record.Title == "" {
		return nil, fmt.Errorf("%w: response missing title", ErrMalformed)
	}

	if year := scrub(p.Year); year != "" {
		// Series responses use ranges like "2010-2013"; keep the first year.
		if idx := strings.IndexAny(year, "-–"); idx > 0 {
			year = year[:idx]
		}
		parsed, err := strconv.Atoi(strings.TrimSpace(year))
		if err != nil {
			return nil, fmt.Errorf("%w: unparseable year %q", ErrMalformed, p.Year)
		}
		record.Year = parsed
	}

	if rating := scrub(p.IMDbRating); rating != "" {
		parsed, err := strconv.ParseFloat(rating, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: unparseable rating %q", ErrMalformed, p.IMDbRating)
		}
		record.Rating = parsed
	}

	return record, nil
}

// scrub trims whitespace and maps OMDB's "N/A" placeholder to an empty string.
func scrub(value string) string {
	trimmed := strings.TrimSpace(value)
	if strings.EqualFold(trimmed, "N/A") {
		return ""
	}
	return trimmed
}
