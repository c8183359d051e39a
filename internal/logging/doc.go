// Package logging builds slog loggers for Matinee components.
//
// It supports console and JSON output with normalized timestamp and level
// attributes, exposes standardized field keys so batch, entry, and component
// identifiers stay greppable across the codebase, and offers no-op and
// component-scoped helpers for tests and constructors.
package logging
