package syncer

import (
	"time"

	"matinee/internal/reconcile"
)

// ItemResult records the terminal state of a single batch unit.
type ItemResult struct {
	Query    string
	State    ItemState
	Outcome  reconcile.Outcome
	Attempts int
	EntryID  int64
	Error    string
}

// Summary aggregates the results of one coordinator batch.
type Summary struct {
	BatchID  string
	Created  int
	Updated  int
	Failed   int
	Skipped  int
	Duration time.Duration
	Items    []ItemResult
}

// Total returns the number of units the batch processed or skipped.
func (s Summary) Total() int {
	return len(s.Items)
}

func (s *Summary) add(result ItemResult) {
	s.Items = append(s.Items, result)
	switch result.State {
	case ItemSucceeded:
		if result.Outcome == reconcile.OutcomeCreated {
			s.Created++
		} else {
			s.Updated++
		}
	case ItemFailed:
		s.Failed++
	case ItemSkipped:
		s.Skipped++
	}
}
