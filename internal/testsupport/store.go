package testsupport

import (
	"context"
	"testing"
	"time"

	"matinee/internal/catalog"
	"matinee/internal/config"
)

// MustOpenStore opens a catalog.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *catalog.Store {
	t.Helper()

	store, err := catalog.Open(cfg)
	if err != nil {
		t.Fatalf("catalog.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// SeedEntry upserts a synced entry for tests and returns the stored row.
func SeedEntry(t testing.TB, store *catalog.Store, candidate catalog.Candidate) *catalog.Entry {
	t.Helper()

	if candidate.LastSyncedAt.IsZero() {
		candidate.LastSyncedAt = time.Now().UTC()
	}
	entry, err := store.Upsert(context.Background(), candidate)
	if err != nil {
		t.Fatalf("store.Upsert: %v", err)
	}
	return entry
}
