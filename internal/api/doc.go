// Package api serves the catalog read view over HTTP for the player UI.
//
// It exposes search and entry lookup backed by the library query service plus
// a watch-count hook, and never touches the fetch client or write path
// directly.
package api
