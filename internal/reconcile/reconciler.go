package reconcile

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"matinee/internal/catalog"
	"matinee/internal/logging"
	"matinee/internal/omdb"
)

// Outcome reports what Apply did to the catalog.
type Outcome string

const (
	OutcomeCreated Outcome = "created"
	OutcomeUpdated Outcome = "updated"
)

// Reconciler merges raw records into the catalog store. It is the only writer
// path for catalog fields.
type Reconciler struct {
	store  *catalog.Store
	logger *slog.Logger
	now    func() time.Time
}

// New constructs a Reconciler bound to the given store.
func New(store *catalog.Store, logger *slog.Logger) *Reconciler {
	return &Reconciler{
		store:  store,
		logger: logging.NewComponentLogger(logger, "reconciler"),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the reconciler's time source. Tests use this to pin
// last_synced_at values.
func (r *Reconciler) WithClock(now func() time.Time) *Reconciler {
	if now != nil {
		r.now = now
	}
	return r
}

// Apply merges a successfully fetched record into the catalog. New keys create
// an entry; known keys merge field-by-field, where only non-empty fetched
// values replace stored ones. Last successful fetch wins for conflicting
// values; ordering across concurrent applies is whatever the store's atomic
// upsert serializes.
func (r *Reconciler) Apply(ctx context.Context, record *omdb.RawRecord) (*catalog.Entry, Outcome, error) {
	if record == nil {
		return nil, "", errors.New("record is nil")
	}
	key := KeyForRecord(record)
	if key == "" {
		return nil, "", errors.New("record resolves to an empty external key")
	}

	existing, err := r.store.GetByKey(ctx, key)
	if err != nil {
		return nil, "", err
	}

	entry, err := r.store.Upsert(ctx, catalog.Candidate{
		ExternalKey:  key,
		IMDbID:       record.IMDbID,
		Title:        record.Title,
		Year:         record.Year,
		Genre:        record.Genre,
		Director:     record.Director,
		Actors:       record.Actors,
		Plot:         record.Plot,
		Language:     record.Language,
		Country:      record.Country,
		PosterURL:    record.PosterURL,
		Runtime:      record.Runtime,
		Rating:       record.Rating,
		LastSyncedAt: r.now(),
	})
	if err != nil {
		return nil, "", err
	}

	outcome := OutcomeUpdated
	if existing == nil {
		outcome = OutcomeCreated
	}
	r.logger.Debug("reconciled record",
		logging.String(logging.FieldExternalKey, key),
		logging.Int64(logging.FieldEntryID, entry.ID),
		logging.String("outcome", string(outcome)),
	)
	return entry, outcome, nil
}

// RecordFailure marks the entry a failing query resolves to as failed,
// leaving its descriptive fields untouched. Title queries whose entry was
// keyed by IMDb id are located through a title+year lookup. When no entry
// exists the failure leaves no trace and RecordFailure reports false.
func (r *Reconciler) RecordFailure(ctx context.Context, query omdb.Query, cause error) (bool, error) {
	key := KeyForQuery(query)
	if key == "" {
		return false, errors.New("query resolves to an empty external key")
	}

	entry, err := r.store.GetByKey(ctx, key)
	if err != nil {
		return false, err
	}
	if entry == nil && strings.TrimSpace(query.IMDbID) == "" {
		entry, err = r.store.FindByTitleYear(ctx, query.Title, query.Year)
		if err != nil {
			return false, err
		}
	}
	if entry == nil {
		return false, nil
	}

	message := ""
	if cause != nil {
		message = cause.Error()
	}
	marked, err := r.store.MarkFailed(ctx, entry.ExternalKey, message)
	if err != nil {
		return false, err
	}
	if marked {
		r.logger.Debug("marked entry failed",
			logging.String(logging.FieldExternalKey, entry.ExternalKey),
			logging.Int64(logging.FieldEntryID, entry.ID),
			logging.Error(cause),
		)
	}
	return marked, nil
}
