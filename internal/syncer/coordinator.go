package syncer

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"matinee/internal/config"
	"matinee/internal/logging"
	"matinee/internal/omdb"
	"matinee/internal/reconcile"
)

// Options tunes a Coordinator.
type Options struct {
	Workers     int
	RetryLimit  int
	BackoffBase time.Duration
}

// OptionsFromConfig maps application config onto coordinator options.
func OptionsFromConfig(cfg *config.Config) Options {
	if cfg == nil {
		return Options{Workers: 1, RetryLimit: 1, BackoffBase: time.Millisecond}
	}
	return Options{
		Workers:     cfg.MaxConcurrentWorkers,
		RetryLimit:  cfg.RetryLimit,
		BackoffBase: time.Duration(cfg.BackoffBaseMs) * time.Millisecond,
	}
}

func (o Options) normalized() Options {
	if o.Workers < 1 {
		o.Workers = 1
	}
	if o.RetryLimit < 1 {
		o.RetryLimit = 1
	}
	if o.BackoffBase <= 0 {
		o.BackoffBase = time.Millisecond
	}
	return o
}

// Coordinator orchestrates batches of fetch+reconcile units.
type Coordinator struct {
	opts       Options
	fetcher    omdb.Fetcher
	reconciler *reconcile.Reconciler
	logger     *slog.Logger
	sleep      func(ctx context.Context, d time.Duration) error
}

// New constructs a Coordinator.
func New(opts Options, fetcher omdb.Fetcher, reconciler *reconcile.Reconciler, logger *slog.Logger) *Coordinator {
	return &Coordinator{
		opts:       opts.normalized(),
		fetcher:    fetcher,
		reconciler: reconciler,
		logger:     logging.NewComponentLogger(logger, "syncer"),
		sleep:      sleepContext,
	}
}

// Run processes the batch under the configured concurrency cap and returns a
// per-batch summary. No error is returned: every per-item failure is captured
// in the summary, and cancellation only prevents unscheduled or waiting units
// from running (they are reported as skipped).
func (c *Coordinator) Run(ctx context.Context, queries []omdb.Query) Summary {
	started := time.Now()
	summary := Summary{BatchID: uuid.NewString()}
	logger := c.logger.With(logging.String(logging.FieldBatchID, summary.BatchID))

	if len(queries) == 0 {
		summary.Duration = time.Since(started)
		return summary
	}

	workers := c.opts.Workers
	if workers > len(queries) {
		workers = len(queries)
	}
	logger.Info("starting sync batch",
		logging.Int("queries", len(queries)),
		logging.Int("workers", workers),
	)

	jobs := make(chan omdb.Query)
	results := make(chan ItemResult, len(queries))

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for query := range jobs {
				results <- c.processItem(ctx, logger, query)
			}
		}()
	}

	scheduled := 0
dispatch:
	for _, query := range queries {
		if ctx.Err() != nil {
			break
		}
		select {
		case jobs <- query:
			scheduled++
		case <-ctx.Done():
			break dispatch
		}
	}
	close(jobs)
	wg.Wait()
	close(results)

	for result := range results {
		summary.add(result)
	}
	for _, query := range queries[scheduled:] {
		summary.add(ItemResult{Query: query.String(), State: ItemSkipped, Error: ctx.Err().Error()})
	}

	summary.Duration = time.Since(started)
	logger.Info("sync batch finished",
		logging.Int("created", summary.Created),
		logging.Int("updated", summary.Updated),
		logging.Int("failed", summary.Failed),
		logging.Int("skipped", summary.Skipped),
		logging.Duration("duration", summary.Duration),
	)
	return summary
}

// processItem drives one query through the retry state machine. The fetch and
// merge run on a detached context so a batch cancellation never interrupts a
// merge mid-write; cancellation is honoured between attempts instead.
func (c *Coordinator) processItem(ctx context.Context, logger *slog.Logger, query omdb.Query) ItemResult {
	run := newItemRun()
	result := ItemResult{Query: query.String()}
	unitCtx := context.WithoutCancel(ctx)

	var lastErr error
	for run.attempts < c.opts.RetryLimit {
		if ctx.Err() != nil && run.attempts > 0 {
			run.advance(ItemSkipped)
			result.State = ItemSkipped
			result.Attempts = run.attempts
			result.Error = lastErr.Error()
			return result
		}
		run.advance(ItemAttempting)

		record, err := c.fetcher.Lookup(unitCtx, query)
		if err == nil {
			entry, outcome, applyErr := c.reconciler.Apply(unitCtx, record)
			if applyErr != nil {
				lastErr = applyErr
				logger.Error("reconcile failed",
					logging.String("query", query.String()),
					logging.Error(applyErr),
				)
				break
			}
			run.advance(ItemSucceeded)
			result.State = ItemSucceeded
			result.Outcome = outcome
			result.Attempts = run.attempts
			result.EntryID = entry.ID
			return result
		}

		lastErr = err
		if !omdb.Retryable(err) || run.attempts >= c.opts.RetryLimit {
			break
		}

		run.advance(ItemRetrying)
		delay := backoffDelay(c.opts.BackoffBase, run.attempts)
		logger.Debug("retrying after failure",
			logging.String("query", query.String()),
			logging.Int(logging.FieldAttempt, run.attempts),
			logging.Duration("backoff", delay),
			logging.Error(err),
		)
		if sleepErr := c.sleep(ctx, delay); sleepErr != nil {
			run.advance(ItemSkipped)
			result.State = ItemSkipped
			result.Attempts = run.attempts
			result.Error = lastErr.Error()
			return result
		}
	}

	result.Attempts = run.attempts
	if lastErr != nil {
		result.Error = lastErr.Error()
	}

	marked, markErr := c.reconciler.RecordFailure(unitCtx, query, lastErr)
	if markErr != nil {
		logger.Error("record failure state",
			logging.String("query", query.String()),
			logging.Error(markErr),
		)
	}

	// A permanent miss with no pre-existing entry records nothing: the item
	// is skipped rather than failed.
	if !marked && markErr == nil && omdb.Terminal(lastErr) {
		run.advance(ItemSkipped)
		result.State = ItemSkipped
		return result
	}

	run.advance(ItemFailed)
	result.State = ItemFailed
	logger.Warn("item failed",
		logging.String("query", query.String()),
		logging.Int(logging.FieldAttempt, run.attempts),
		logging.Error(lastErr),
	)
	return result
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
