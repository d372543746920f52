package combat

import (
	"slices"
	"testing"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to Phase
		want     bool
	}{
		{PhaseDetecting, PhaseEngaging, true},
		{PhaseDetecting, PhaseAttacking, true},
		{PhaseEngaging, PhaseAttacking, true},
		{PhaseAttacking, PhaseEngaging, true},
		{PhaseAttacking, PhaseResumingMovement, true},
		{PhaseResumingMovement, PhaseCompleted, true},
		{PhaseEngaging, PhaseCompleted, true},
		{PhaseResumingMovement, PhaseAttacking, false},
		{PhaseEngaging, PhaseDetecting, false},
		{PhaseCompleted, PhaseDetecting, false},
		{PhaseCompleted, PhaseCompleted, false},
	}
	for _, tc := range tests {
		t.Run(string(tc.from)+"->"+string(tc.to), func(t *testing.T) {
			if got := CanTransition(tc.from, tc.to); got != tc.want {
				t.Errorf("CanTransition = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestActionTransitionRefusesIllegal(t *testing.T) {
	a := &Action{ProtectorID: "u", TargetID: "p", Phase: PhaseCompleted}
	if err := a.transition(PhaseAttacking); err == nil {
		t.Error("completed is terminal")
	}
	if a.Phase != PhaseCompleted {
		t.Errorf("phase changed to %s", a.Phase)
	}
}

func TestActionTableInsertionOrder(t *testing.T) {
	tbl := newActionTable()
	tbl.put(&Action{ProtectorID: "z", TargetID: "t1"})
	tbl.put(&Action{ProtectorID: "a", TargetID: "t1"})
	tbl.put(&Action{ProtectorID: "m", TargetID: "t2"})
	if got := tbl.keys(); !slices.Equal(got, []string{"z", "a", "m"}) {
		t.Fatalf("order = %v", got)
	}

	// Replacing a protector's action moves it to the back.
	tbl.put(&Action{ProtectorID: "z", TargetID: "t2"})
	if got := tbl.keys(); !slices.Equal(got, []string{"a", "m", "z"}) {
		t.Fatalf("order after replace = %v", got)
	}
	if _, ok := tbl.lookup("z", "t1"); ok {
		t.Error("old (z, t1) key still resolves")
	}

	removed := tbl.removeTarget("t2")
	if len(removed) != 2 || tbl.len() != 1 {
		t.Errorf("removeTarget removed %d, %d left", len(removed), tbl.len())
	}
	if len(tbl.onTarget("t2")) != 0 {
		t.Error("residual actions on removed target")
	}
}
