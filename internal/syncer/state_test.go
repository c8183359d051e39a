package syncer

import "testing"

func TestItemStateTerminal(t *testing.T) {
	terminal := map[ItemState]bool{
		ItemPending:    false,
		ItemAttempting: false,
		ItemRetrying:   false,
		ItemSucceeded:  true,
		ItemFailed:     true,
		ItemSkipped:    true,
	}
	for state, want := range terminal {
		if got := state.Terminal(); got != want {
			t.Fatalf("%s.Terminal(): expected %v, got %v", state, want, got)
		}
	}
}

func TestItemRunHappyPath(t *testing.T) {
	run := newItemRun()
	run.advance(ItemAttempting)
	run.advance(ItemRetrying)
	run.advance(ItemAttempting)
	run.advance(ItemSucceeded)

	if run.attempts != 2 {
		t.Fatalf("expected 2 attempts, got %d", run.attempts)
	}
	if !run.state.Terminal() {
		t.Fatalf("expected terminal state, got %s", run.state)
	}
}

func TestItemRunRejectsIllegalTransition(t *testing.T) {
	for _, tc := range []struct {
		from, to ItemState
	}{
		{ItemPending, ItemSucceeded},
		{ItemRetrying, ItemFailed},
		{ItemSucceeded, ItemAttempting},
		{ItemFailed, ItemAttempting},
	} {
		if tc.from.CanTransition(tc.to) {
			t.Fatalf("transition %s -> %s must be illegal", tc.from, tc.to)
		}
	}

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on illegal advance")
		}
	}()
	run := newItemRun()
	run.advance(ItemSucceeded)
}
