// Package reconcile merges fetched metadata into the catalog store.
//
// It owns the single authoritative merge algorithm: derive the external key
// for a raw record, then insert or field-merge through the store's atomic
// upsert. Failed re-fetches flip an existing entry to the failed state without
// touching its descriptive fields, and fetches that never matched anything
// leave no trace.
package reconcile
