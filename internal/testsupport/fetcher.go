package testsupport

import (
	"context"
	"fmt"
	"sync"

	"matinee/internal/omdb"
)

// FetchResult scripts one Lookup outcome for a query.
type FetchResult struct {
	Record *omdb.RawRecord
	Err    error
}

// ScriptedFetcher replays canned results per query string, in order. Once a
// query's script is exhausted the last result repeats. Unknown queries fail
// the lookup with a distinctive error so tests catch missing scripts.
type ScriptedFetcher struct {
	mu      sync.Mutex
	scripts map[string][]FetchResult
	calls   map[string]int
}

var _ omdb.Fetcher = (*ScriptedFetcher)(nil)

// NewScriptedFetcher builds an empty fetcher; add scripts with Script.
func NewScriptedFetcher() *ScriptedFetcher {
	return &ScriptedFetcher{
		scripts: make(map[string][]FetchResult),
		calls:   make(map[string]int),
	}
}

// Script appends results for the given query string.
func (f *ScriptedFetcher) Script(query string, results ...FetchResult) *ScriptedFetcher {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scripts[query] = append(f.scripts[query], results...)
	return f
}

// Lookup implements omdb.Fetcher.
func (f *ScriptedFetcher) Lookup(_ context.Context, query omdb.Query) (*omdb.RawRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	key := query.String()
	script, ok := f.scripts[key]
	if !ok || len(script) == 0 {
		return nil, fmt.Errorf("no scripted result for query %q", key)
	}
	idx := f.calls[key]
	f.calls[key]++
	if idx >= len(script) {
		idx = len(script) - 1
	}
	result := script[idx]
	return result.Record, result.Err
}

// Calls reports how many lookups ran for the query string.
func (f *ScriptedFetcher) Calls(query string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[query]
}
