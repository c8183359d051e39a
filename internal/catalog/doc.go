// Package catalog persists reconciled movie metadata in SQLite and is the
// single source of truth for the local catalog.
//
// The Store manages database connections, schema initialization, atomic
// per-key upserts, read queries, and diagnostics. Entries are keyed by an
// autoincrement id for consumers and by a unique external key for
// deduplication; all catalog mutation funnels through Upsert and MarkFailed so
// concurrent reconciliations serialize inside SQLite and readers never observe
// a torn entry.
//
// Treat this package as the single source of truth for entry semantics; when
// you add new columns, update schema.sql and bump schemaVersion.
package catalog
