// Package syncer drives batches of fetch+reconcile work.
//
// A Coordinator runs each query through the fetch client and the reconciler
// under a bounded worker pool, retrying rate-limited and transient failures
// with exponential backoff up to a configured attempt limit. Each item moves
// through an explicit state machine (pending, attempting, retrying, then
// succeeded, failed, or skipped) and the batch produces a Summary with
// created/updated/failed/skipped counts. Cancelling the batch context stops
// scheduling and backoff waits; a unit already fetching or merging runs to
// completion so the store never sees a partial write.
package syncer
