package syncer_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"matinee/internal/catalog"
	"matinee/internal/logging"
	"matinee/internal/omdb"
	"matinee/internal/reconcile"
	"matinee/internal/syncer"
	"matinee/internal/testsupport"
)

func newHarness(t *testing.T, opts ...testsupport.ConfigOption) (*catalog.Store, *reconcile.Reconciler) {
	t.Helper()
	cfg := testsupport.NewConfig(t, opts...)
	store := testsupport.MustOpenStore(t, cfg)
	return store, reconcile.New(store, logging.NewNop())
}

func testOptions() syncer.Options {
	return syncer.Options{Workers: 2, RetryLimit: 3, BackoffBase: time.Millisecond}
}

func recordFor(title string, year int, id string) *omdb.RawRecord {
	return &omdb.RawRecord{Title: title, Year: year, IMDbID: id, Rating: 7.5}
}

func TestRunEmptyBatch(t *testing.T) {
	_, reconciler := newHarness(t)
	coordinator := syncer.New(testOptions(), testsupport.NewScriptedFetcher(), reconciler, logging.NewNop())

	summary := coordinator.Run(context.Background(), nil)
	if summary.BatchID == "" {
		t.Fatal("expected batch id even for an empty batch")
	}
	if summary.Total() != 0 || summary.Created+summary.Updated+summary.Failed+summary.Skipped != 0 {
		t.Fatalf("expected empty summary, got %#v", summary)
	}
}

func TestRunCreatesAndUpdates(t *testing.T) {
	store, reconciler := newHarness(t)
	ctx := context.Background()

	if _, _, err := reconciler.Apply(ctx, recordFor("Inception", 2010, "tt1375666")); err != nil {
		t.Fatalf("seed Apply failed: %v", err)
	}

	fetcher := testsupport.NewScriptedFetcher().
		Script("tt1375666", testsupport.FetchResult{Record: recordFor("Inception", 2010, "tt1375666")}).
		Script("Primer (2004)", testsupport.FetchResult{Record: recordFor("Primer", 2004, "tt0390384")})

	coordinator := syncer.New(testOptions(), fetcher, reconciler, logging.NewNop())
	summary := coordinator.Run(ctx, []omdb.Query{
		{IMDbID: "tt1375666"},
		{Title: "Primer", Year: 2004},
	})

	if summary.Created != 1 || summary.Updated != 1 || summary.Failed != 0 || summary.Skipped != 0 {
		t.Fatalf("unexpected summary: %#v", summary)
	}

	entries, err := store.List(ctx, catalog.Filter{})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
}

func TestRunRetriesThenSucceeds(t *testing.T) {
	store, reconciler := newHarness(t)
	ctx := context.Background()

	fetcher := testsupport.NewScriptedFetcher().Script("Primer (2004)",
		testsupport.FetchResult{Err: omdb.ErrTransient},
		testsupport.FetchResult{Err: omdb.ErrRateLimited},
		testsupport.FetchResult{Record: recordFor("Primer", 2004, "tt0390384")},
	)

	coordinator := syncer.New(testOptions(), fetcher, reconciler, logging.NewNop())
	summary := coordinator.Run(ctx, []omdb.Query{{Title: "Primer", Year: 2004}})

	if summary.Created != 1 || summary.Failed != 0 {
		t.Fatalf("unexpected summary: %#v", summary)
	}
	if calls := fetcher.Calls("Primer (2004)"); calls != 3 {
		t.Fatalf("expected 3 lookups, got %d", calls)
	}
	if summary.Items[0].Attempts != 3 {
		t.Fatalf("expected 3 attempts recorded, got %d", summary.Items[0].Attempts)
	}

	entry, err := store.GetByKey(ctx, "tt0390384")
	if err != nil {
		t.Fatalf("GetByKey failed: %v", err)
	}
	if entry == nil || entry.SyncState != catalog.StateSynced {
		t.Fatalf("expected synced entry, got %#v", entry)
	}
}

func TestRunExhaustedRetriesMarksEntryFailed(t *testing.T) {
	store, reconciler := newHarness(t)
	ctx := context.Background()

	if _, _, err := reconciler.Apply(ctx, recordFor("Inception", 2010, "tt1375666")); err != nil {
		t.Fatalf("seed Apply failed: %v", err)
	}

	fetcher := testsupport.NewScriptedFetcher().
		Script("tt1375666", testsupport.FetchResult{Err: omdb.ErrTransient})

	opts := testOptions()
	opts.RetryLimit = 2
	coordinator := syncer.New(opts, fetcher, reconciler, logging.NewNop())
	summary := coordinator.Run(ctx, []omdb.Query{{IMDbID: "tt1375666"}})

	if summary.Failed != 1 {
		t.Fatalf("expected 1 failed item, got %#v", summary)
	}
	if calls := fetcher.Calls("tt1375666"); calls != 2 {
		t.Fatalf("expected retry limit to cap lookups at 2, got %d", calls)
	}

	entry, err := store.GetByKey(ctx, "tt1375666")
	if err != nil {
		t.Fatalf("GetByKey failed: %v", err)
	}
	if entry.SyncState != catalog.StateFailed {
		t.Fatalf("expected failed state, got %s", entry.SyncState)
	}
	if entry.Title != "Inception" || entry.Rating != 7.5 {
		t.Fatalf("stale entry must keep its fields: %#v", entry)
	}
}

func TestRunTerminalErrorNotRetried(t *testing.T) {
	_, reconciler := newHarness(t)
	ctx := context.Background()

	if _, _, err := reconciler.Apply(ctx, recordFor("Inception", 2010, "tt1375666")); err != nil {
		t.Fatalf("seed Apply failed: %v", err)
	}

	fetcher := testsupport.NewScriptedFetcher().
		Script("tt1375666", testsupport.FetchResult{Err: omdb.ErrMalformed})

	coordinator := syncer.New(testOptions(), fetcher, reconciler, logging.NewNop())
	summary := coordinator.Run(ctx, []omdb.Query{{IMDbID: "tt1375666"}})

	if summary.Failed != 1 {
		t.Fatalf("expected 1 failed item, got %#v", summary)
	}
	if calls := fetcher.Calls("tt1375666"); calls != 1 {
		t.Fatalf("terminal errors must not be retried, got %d lookups", calls)
	}
}

func TestRunNotFoundWithoutEntrySkips(t *testing.T) {
	store, reconciler := newHarness(t)
	ctx := context.Background()

	fetcher := testsupport.NewScriptedFetcher().
		Script("Nonexistent (2001)", testsupport.FetchResult{Err: omdb.ErrNotFound})

	coordinator := syncer.New(testOptions(), fetcher, reconciler, logging.NewNop())
	summary := coordinator.Run(ctx, []omdb.Query{{Title: "Nonexistent", Year: 2001}})

	if summary.Skipped != 1 || summary.Failed != 0 {
		t.Fatalf("expected never-found item skipped, got %#v", summary)
	}

	entries, err := store.List(ctx, catalog.Filter{})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected no tombstone entries, got %#v", entries)
	}
}

func TestRunNotFoundWithEntryFails(t *testing.T) {
	store, reconciler := newHarness(t)
	ctx := context.Background()

	if _, _, err := reconciler.Apply(ctx, recordFor("Inception", 2010, "tt1375666")); err != nil {
		t.Fatalf("seed Apply failed: %v", err)
	}

	fetcher := testsupport.NewScriptedFetcher().
		Script("tt1375666", testsupport.FetchResult{Err: omdb.ErrNotFound})

	coordinator := syncer.New(testOptions(), fetcher, reconciler, logging.NewNop())
	summary := coordinator.Run(ctx, []omdb.Query{{IMDbID: "tt1375666"}})

	if summary.Failed != 1 || summary.Skipped != 0 {
		t.Fatalf("expected removed-upstream item to fail, got %#v", summary)
	}

	entry, err := store.GetByKey(ctx, "tt1375666")
	if err != nil {
		t.Fatalf("GetByKey failed: %v", err)
	}
	if entry.SyncState != catalog.StateFailed {
		t.Fatalf("expected failed state, got %s", entry.SyncState)
	}
}

func TestRunCancelledBeforeStartSkipsEverything(t *testing.T) {
	_, reconciler := newHarness(t)

	fetcher := testsupport.NewScriptedFetcher().
		Script("Primer (2004)", testsupport.FetchResult{Record: recordFor("Primer", 2004, "tt0390384")}).
		Script("Inception (2010)", testsupport.FetchResult{Record: recordFor("Inception", 2010, "tt1375666")})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	coordinator := syncer.New(testOptions(), fetcher, reconciler, logging.NewNop())
	summary := coordinator.Run(ctx, []omdb.Query{
		{Title: "Primer", Year: 2004},
		{Title: "Inception", Year: 2010},
	})

	if summary.Skipped != 2 || summary.Created != 0 {
		t.Fatalf("expected all units skipped, got %#v", summary)
	}
	if calls := fetcher.Calls("Primer (2004)") + fetcher.Calls("Inception (2010)"); calls != 0 {
		t.Fatalf("expected no lookups after cancellation, got %d", calls)
	}
}

// gatedFetcher counts concurrent lookups to verify the worker cap.
type gatedFetcher struct {
	active  atomic.Int32
	max     atomic.Int32
	mu      sync.Mutex
	records map[string]*omdb.RawRecord
}

func (f *gatedFetcher) Lookup(_ context.Context, query omdb.Query) (*omdb.RawRecord, error) {
	current := f.active.Add(1)
	for {
		seen := f.max.Load()
		if current <= seen || f.max.CompareAndSwap(seen, current) {
			break
		}
	}
	time.Sleep(10 * time.Millisecond)
	f.active.Add(-1)

	f.mu.Lock()
	defer f.mu.Unlock()
	return f.records[query.String()], nil
}

func TestRunRespectsWorkerCap(t *testing.T) {
	_, reconciler := newHarness(t)

	fetcher := &gatedFetcher{records: make(map[string]*omdb.RawRecord)}
	var queries []omdb.Query
	for _, title := range []string{"One", "Two", "Three", "Four", "Five", "Six"} {
		query := omdb.Query{Title: title, Year: 2020}
		queries = append(queries, query)
		fetcher.records[query.String()] = recordFor(title, 2020, "")
	}

	opts := testOptions()
	opts.Workers = 2
	coordinator := syncer.New(opts, fetcher, reconciler, logging.NewNop())
	summary := coordinator.Run(context.Background(), queries)

	if summary.Created != len(queries) {
		t.Fatalf("expected %d created, got %#v", len(queries), summary)
	}
	if peak := fetcher.max.Load(); peak > 2 {
		t.Fatalf("worker cap violated: %d concurrent lookups", peak)
	}
}

func TestOptionsNormalization(t *testing.T) {
	_, reconciler := newHarness(t)

	// Degenerate options must not wedge the coordinator.
	fetcher := testsupport.NewScriptedFetcher().
		Script("Primer (2004)", testsupport.FetchResult{Record: recordFor("Primer", 2004, "tt0390384")})
	coordinator := syncer.New(syncer.Options{}, fetcher, reconciler, logging.NewNop())
	summary := coordinator.Run(context.Background(), []omdb.Query{{Title: "Primer", Year: 2004}})
	if summary.Created != 1 {
		t.Fatalf("unexpected summary: %#v", summary)
	}
}
