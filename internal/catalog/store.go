package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"matinee/internal/config"
)

// timeLayout is a fixed-width RFC 3339 encoding. Fixed width keeps string
// comparison inside SQL consistent with chronological order, which the
// monotonic last_synced_at guarantee relies on.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store manages catalog persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the catalog database and applies the schema.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := cfg.DatabasePath()
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, storageErr("open sqlite db", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, storageErr(fmt.Sprintf("apply pragma %q", pragma), execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, storageErr("init schema", err)
	}

	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the location of the backing database file.
func (s *Store) Path() string {
	return s.path
}

// Upsert inserts a new entry for the candidate's external key or merges the
// candidate into the existing entry. Merging keeps stored values for fields
// the candidate leaves empty, flips the entry to synced, clears any previous
// error, and advances last_synced_at monotonically. The whole merge executes
// as a single SQL statement, so concurrent upserts on the same key serialize
// inside SQLite and apply in some sequential order.
func (s *Store) Upsert(ctx context.Context, candidate Candidate) (*Entry, error) {
	key := strings.TrimSpace(candidate.ExternalKey)
	if key == "" {
		return nil, errors.New("candidate external key must not be empty")
	}
	syncedAt := candidate.LastSyncedAt
	if syncedAt.IsZero() {
		syncedAt = time.Now().UTC()
	}
	now := time.Now().UTC().Format(timeLayout)

	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO catalog_entries (
            external_key, imdb_id, title, year, genre, director, actors, plot,
            language, country, poster_url, runtime, rating, sync_state,
            error_message, created_at, updated_at, last_synced_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NULL, ?, ?, ?)
        ON CONFLICT(external_key) DO UPDATE SET
            imdb_id = COALESCE(excluded.imdb_id, imdb_id),
            title = COALESCE(excluded.title, title),
            year = COALESCE(excluded.year, year),
            genre = COALESCE(excluded.genre, genre),
            director = COALESCE(excluded.director, director),
            actors = COALESCE(excluded.actors, actors),
            plot = COALESCE(excluded.plot, plot),
            language = COALESCE(excluded.language, language),
            country = COALESCE(excluded.country, country),
            poster_url = COALESCE(excluded.poster_url, poster_url),
            runtime = COALESCE(excluded.runtime, runtime),
            rating = COALESCE(excluded.rating, rating),
            sync_state = excluded.sync_state,
            error_message = NULL,
            updated_at = excluded.updated_at,
            last_synced_at = COALESCE(MAX(last_synced_at, excluded.last_synced_at), excluded.last_synced_at)`,
		key,
		nullableString(candidate.IMDbID),
		nullableString(candidate.Title),
		nullableInt(candidate.Year),
		nullableString(candidate.Genre),
		nullableString(candidate.Director),
		nullableString(candidate.Actors),
		nullableString(candidate.Plot),
		nullableString(candidate.Language),
		nullableString(candidate.Country),
		nullableString(candidate.PosterURL),
		nullableString(candidate.Runtime),
		nullableFloat(candidate.Rating),
		StateSynced,
		now,
		now,
		syncedAt.Format(timeLayout),
	)
	if err != nil {
		return nil, storageErr("upsert entry", err)
	}

	entry, err := s.GetByKey(ctx, key)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, storageErr("upsert entry", errors.New("entry missing after upsert"))
	}
	return entry, nil
}

// MarkFailed records a failed re-fetch for an existing entry without touching
// its descriptive fields. It reports false when no entry exists for the key;
// never-found items get no tombstone.
func (s *Store) MarkFailed(ctx context.Context, externalKey, message string) (bool, error) {
	key := strings.TrimSpace(externalKey)
	if key == "" {
		return false, errors.New("external key must not be empty")
	}
	res, err := s.db.ExecContext(
		ctx,
		`UPDATE catalog_entries SET sync_state = ?, error_message = ?, updated_at = ? WHERE external_key = ?`,
		StateFailed,
		nullableString(strings.TrimSpace(message)),
		time.Now().UTC().Format(timeLayout),
		key,
	)
	if err != nil {
		return false, storageErr("mark entry failed", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, storageErr("rows affected", err)
	}
	return affected > 0, nil
}

// GetByKey fetches an entry by external key. Returns nil when absent.
func (s *Store) GetByKey(ctx context.Context, externalKey string) (*Entry, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+entryColumns+` FROM catalog_entries WHERE external_key = ?`, externalKey)
	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, storageErr("get entry by key", err)
	}
	return entry, nil
}

// FindByTitleYear returns the first entry matching a title case-insensitively,
// narrowed by year when one is given. Returns nil when nothing matches.
func (s *Store) FindByTitleYear(ctx context.Context, title string, year int) (*Entry, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT `+entryColumns+` FROM catalog_entries
         WHERE LOWER(IFNULL(title, '')) = LOWER(?) AND (? = 0 OR year = ?)
         ORDER BY id LIMIT 1`,
		strings.TrimSpace(title), year, year,
	)
	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, storageErr("find entry by title", err)
	}
	return entry, nil
}

// GetByID fetches an entry by identifier. Returns nil when absent.
func (s *Store) GetByID(ctx context.Context, id int64) (*Entry, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+entryColumns+` FROM catalog_entries WHERE id = ?`, id)
	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, storageErr("get entry by id", err)
	}
	return entry, nil
}

// List returns entries matching the filter, ordered by title.
func (s *Store) List(ctx context.Context, filter Filter) ([]*Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM catalog_entries`
	var args []any
	if len(filter.States) > 0 {
		placeholders := makePlaceholders(len(filter.States))
		query += ` WHERE sync_state IN (` + placeholders + `)`
		for _, state := range filter.States {
			args = append(args, state)
		}
	}
	query += ` ORDER BY title COLLATE NOCASE, id`
	if filter.Limit > 0 {
		query += fmt.Sprintf(` LIMIT %d`, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storageErr("list entries", err)
	}
	defer rows.Close()

	return collectEntries(rows)
}

// Search returns entries whose title, genre, director, or actors contain the
// given text, case-insensitively, ordered by title.
func (s *Store) Search(ctx context.Context, text string) ([]*Entry, error) {
	pattern := "%" + strings.ToLower(strings.TrimSpace(text)) + "%"
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+entryColumns+` FROM catalog_entries
         WHERE LOWER(IFNULL(title, '')) LIKE ?
            OR LOWER(IFNULL(genre, '')) LIKE ?
            OR LOWER(IFNULL(director, '')) LIKE ?
            OR LOWER(IFNULL(actors, '')) LIKE ?
         ORDER BY title COLLATE NOCASE, id`,
		pattern, pattern, pattern, pattern,
	)
	if err != nil {
		return nil, storageErr("search entries", err)
	}
	defer rows.Close()

	return collectEntries(rows)
}

// IncrementWatchCount bumps the playback counter for an entry. It reports
// false when the entry does not exist.
func (s *Store) IncrementWatchCount(ctx context.Context, id int64) (bool, error) {
	res, err := s.db.ExecContext(
		ctx,
		`UPDATE catalog_entries SET watch_count = watch_count + 1, updated_at = ? WHERE id = ?`,
		time.Now().UTC().Format(timeLayout),
		id,
	)
	if err != nil {
		return false, storageErr("increment watch count", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, storageErr("rows affected", err)
	}
	return affected > 0, nil
}

// Stats returns a count of entries grouped by sync state.
func (s *Store) Stats(ctx context.Context) (map[SyncState]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT sync_state, COUNT(1) FROM catalog_entries GROUP BY sync_state`)
	if err != nil {
		return nil, storageErr("catalog stats", err)
	}
	defer rows.Close()

	stats := make(map[SyncState]int)
	for rows.Next() {
		var state SyncState
		var count int
		if err := rows.Scan(&state, &count); err != nil {
			return nil, storageErr("scan stats", err)
		}
		stats[state] = count
	}
	return stats, rows.Err()
}

// Health aggregates catalog state for diagnostic output.
func (s *Store) Health(ctx context.Context) (HealthSummary, error) {
	stats, err := s.Stats(ctx)
	if err != nil {
		return HealthSummary{}, err
	}
	health := HealthSummary{}
	for state, count := range stats {
		health.Total += count
		switch state {
		case StatePending:
			health.Pending += count
		case StateSynced:
			health.Synced += count
		case StateFailed:
			health.Failed += count
		}
	}
	return health, nil
}

// CheckHealth returns diagnostic information about the catalog database.
func (s *Store) CheckHealth(ctx context.Context) (DatabaseHealth, error) {
	health := DatabaseHealth{DBPath: s.path}

	if s.path == "" {
		return health, errors.New("catalog database path is unknown")
	}

	info, err := os.Stat(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			health.DatabaseExists = false
			return health, nil
		}
		return health, fmt.Errorf("stat catalog database: %w", err)
	}
	if info.IsDir() {
		return health, fmt.Errorf("catalog database path %q is a directory", s.path)
	}
	health.DatabaseExists = true

	if s.db == nil {
		return health, errors.New("catalog database connection unavailable")
	}

	connCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := s.db.PingContext(connCtx); err != nil {
		health.Error = err.Error()
		return health, storageErr("ping catalog database", err)
	}
	health.DatabaseReadable = true

	var tableName string
	row := s.db.QueryRowContext(connCtx, "SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'catalog_entries'")
	if err := row.Scan(&tableName); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			health.TableExists = false
		} else {
			health.Error = err.Error()
			return health, storageErr("query table info", err)
		}
	} else {
		health.TableExists = true
	}

	if health.TableExists {
		row = s.db.QueryRowContext(connCtx, "SELECT COUNT(*) FROM catalog_entries")
		if err := row.Scan(&health.TotalEntries); err != nil {
			health.Error = err.Error()
			return health, storageErr("count entries", err)
		}
	}

	row = s.db.QueryRowContext(connCtx, "PRAGMA integrity_check")
	var integrityResult string
	if err := row.Scan(&integrityResult); err != nil {
		health.Error = err.Error()
		return health, storageErr("integrity check", err)
	}
	health.IntegrityCheck = strings.EqualFold(integrityResult, "ok")

	return health, nil
}

const entryColumns = "id, external_key, imdb_id, title, year, genre, director, actors, plot, language, country, poster_url, runtime, rating, watch_count, sync_state, error_message, created_at, updated_at, last_synced_at"

func collectEntries(rows *sql.Rows) ([]*Entry, error) {
	var entries []*Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, storageErr("scan entry", err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func scanEntry(scanner interface{ Scan(dest ...any) error }) (*Entry, error) {
	var (
		id           int64
		externalKey  string
		imdbID       sql.NullString
		title        sql.NullString
		year         sql.NullInt64
		genre        sql.NullString
		director     sql.NullString
		actors       sql.NullString
		plot         sql.NullString
		languageCol  sql.NullString
		country      sql.NullString
		posterURL    sql.NullString
		runtime      sql.NullString
		rating       sql.NullFloat64
		watchCount   int
		stateStr     string
		errorMessage sql.NullString
		createdRaw   sql.NullString
		updatedRaw   sql.NullString
		syncedRaw    sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&externalKey,
		&imdbID,
		&title,
		&year,
		&genre,
		&director,
		&actors,
		&plot,
		&languageCol,
		&country,
		&posterURL,
		&runtime,
		&rating,
		&watchCount,
		&stateStr,
		&errorMessage,
		&createdRaw,
		&updatedRaw,
		&syncedRaw,
	); err != nil {
		return nil, err
	}

	entry := &Entry{
		ID:           id,
		ExternalKey:  externalKey,
		IMDbID:       imdbID.String,
		Title:        title.String,
		Year:         int(year.Int64),
		Genre:        genre.String,
		Director:     director.String,
		Actors:       actors.String,
		Plot:         plot.String,
		Language:     languageCol.String,
		Country:      country.String,
		PosterURL:    posterURL.String,
		Runtime:      runtime.String,
		Rating:       rating.Float64,
		WatchCount:   watchCount,
		SyncState:    SyncState(stateStr),
		ErrorMessage: errorMessage.String,
	}

	if created, err := parseTimeString(createdRaw.String); err == nil {
		entry.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		entry.UpdatedAt = updated
	}
	if syncedRaw.Valid {
		if synced, err := parseTimeString(syncedRaw.String); err == nil {
			entry.LastSyncedAt = synced
		}
	}
	return entry, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullableInt(value int) any {
	if value <= 0 {
		return nil
	}
	return value
}

func nullableFloat(value float64) any {
	if value <= 0 {
		return nil
	}
	return value
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}

func makePlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	placeholders := make([]byte, 0, count*2)
	for i := 0; i < count; i++ {
		if i > 0 {
			placeholders = append(placeholders, ',')
		}
		placeholders = append(placeholders, '?')
	}
	return string(placeholders)
}
