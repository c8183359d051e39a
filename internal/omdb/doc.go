// Package omdb looks up movie metadata from an OMDB-style HTTP API.
//
// The Client turns title or IMDb-id queries into validated RawRecord values
// and classifies every failure into one of four kinds: not found, rate
// limited, transient, or malformed. The coordinator retries the middle two;
// the others are terminal per item. Nothing in this package caches results;
// skipping already-known keys is the reconciler's job via the catalog store.
package omdb
