// Package library is the read side of the catalog, serving search and lookup
// views to consumers such as the terminal player and the HTTP API. It never
// writes catalog fields; reads are eventually consistent with in-flight
// reconciliations but never observe a torn entry.
package library
