package syncer

// ItemState tracks where a batch unit is in its retry state machine.
type ItemState string

const (
	ItemPending    ItemState = "pending"
	ItemAttempting ItemState = "attempting"
	ItemRetrying   ItemState = "retrying"
	ItemSucceeded  ItemState = "succeeded"
	ItemFailed     ItemState = "failed"
	ItemSkipped    ItemState = "skipped"
)

var itemTransitions = map[ItemState][]ItemState{
	ItemPending:    {ItemAttempting, ItemSkipped},
	ItemAttempting: {ItemSucceeded, ItemRetrying, ItemFailed, ItemSkipped},
	ItemRetrying:   {ItemAttempting, ItemSkipped},
}

// Terminal reports whether the state ends an item's processing.
func (s ItemState) Terminal() bool {
	switch s {
	case ItemSucceeded, ItemFailed, ItemSkipped:
		return true
	default:
		return false
	}
}

// CanTransition reports whether moving to the target state is legal.
func (s ItemState) CanTransition(to ItemState) bool {
	for _, allowed := range itemTransitions[s] {
		if allowed == to {
			return true
		}
	}
	return false
}

// itemRun is the per-unit mutable state the worker loop drives.
type itemRun struct {
	state    ItemState
	attempts int
}

func newItemRun() *itemRun {
	return &itemRun{state: ItemPending}
}

// advance moves the run to the next state, panicking on an illegal transition.
// Transitions are fully determined by the worker loop, so a violation is a
// programming error rather than a runtime condition.
func (r *itemRun) advance(to ItemState) {
	if !r.state.CanTransition(to) {
		panic("syncer: illegal item transition " + string(r.state) + " -> " + string(to))
	}
	r.state = to
	if to == ItemAttempting {
		r.attempts++
	}
}
