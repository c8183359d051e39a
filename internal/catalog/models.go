package catalog

import (
	"strings"
	"time"
)

// SyncState tracks the outcome of the last reconciliation for an entry.
type SyncState string

const (
	StatePending SyncState = "pending"
	StateSynced  SyncState = "synced"
	StateFailed  SyncState = "failed"
)

var allStates = []SyncState{StatePending, StateSynced, StateFailed}

var stateSet = func() map[SyncState]struct{} {
	set := make(map[SyncState]struct{}, len(allStates))
	for _, state := range allStates {
		set[state] = struct{}{}
	}
	return set
}()

// AllStates returns the ordered list of known sync states.
func AllStates() []SyncState {
	cp := make([]SyncState, len(allStates))
	copy(cp, allStates)
	return cp
}

// ParseState converts a string into a known SyncState.
func ParseState(value string) (SyncState, bool) {
	normalized := SyncState(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := stateSet[normalized]
	return normalized, ok
}

// Entry represents one reconciled catalog record persisted in SQLite.
type Entry struct {
	ID           int64
	ExternalKey  string
	IMDbID       string
	Title        string
	Year         int
	Genre        string
	Director     string
	Actors       string
	Plot         string
	Language     string
	Country      string
	PosterURL    string
	Runtime      string
	Rating       float64
	WatchCount   int
	SyncState    SyncState
	ErrorMessage string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	LastSyncedAt time.Time
}

// Candidate carries the fields of a successful fetch destined for Upsert.
// Empty strings and non-positive numbers mean "no value"; the store keeps the
// previously persisted value for such fields.
type Candidate struct {
	ExternalKey  string
	IMDbID       string
	Title        string
	Year         int
	Genre        string
	Director     string
	Actors       string
	Plot         string
	Language     string
	Country      string
	PosterURL    string
	Runtime      string
	Rating       float64
	LastSyncedAt time.Time
}

// Filter narrows List results.
type Filter struct {
	States []SyncState
	Limit  int
}

// HealthSummary describes aggregated entry counts per sync state.
type HealthSummary struct {
	Total   int
	Pending int
	Synced  int
	Failed  int
}

// DatabaseHealth captures diagnostic information about the catalog database.
type DatabaseHealth struct {
	DBPath           string
	DatabaseExists   bool
	DatabaseReadable bool
	TableExists      bool
	IntegrityCheck   bool
	TotalEntries     int
	Error            string
}
