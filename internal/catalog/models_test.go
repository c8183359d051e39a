package catalog

import "testing"

func TestParseState(t *testing.T) {
	for _, tc := range []struct {
		input string
		want  SyncState
		ok    bool
	}{
		{"synced", StateSynced, true},
		{" Failed ", StateFailed, true},
		{"PENDING", StatePending, true},
		{"", "", false},
		{"bogus", "bogus", false},
	} {
		got, ok := ParseState(tc.input)
		if ok != tc.ok || (ok && got != tc.want) {
			t.Fatalf("ParseState(%q): got %q/%v, expected %q/%v", tc.input, got, ok, tc.want, tc.ok)
		}
	}
}

func TestAllStatesIsACopy(t *testing.T) {
	states := AllStates()
	if len(states) != 3 {
		t.Fatalf("expected 3 states, got %v", states)
	}
	states[0] = "mutated"
	if AllStates()[0] != StatePending {
		t.Fatal("AllStates must return a defensive copy")
	}
}
