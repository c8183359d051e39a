// Package scan discovers media files under a directory and turns their names
// into fetch queries for the sync coordinator.
package scan
