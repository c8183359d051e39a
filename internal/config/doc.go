// Package config loads, normalizes, and validates Matinee configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// OMDB_APIKEY. The Config type centralizes every knob the CLI and API server
// need, so data directories, scraper credentials, and sync tuning are
// discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
