package combat

import (
	"fmt"
	"slices"
	"time"

	"github.com/nstehr/vimy/vimy-combat/model"
)

// Phase is the lifecycle stage of one engagement.
type Phase string

const (
	PhaseDetecting        Phase = "detecting"
	PhaseEngaging         Phase = "engaging"
	PhaseAttacking        Phase = "attacking"
	PhaseResumingMovement Phase = "resuming_movement"
	PhaseCompleted        Phase = "completed"
)

// transitions lists the legal next phases. Completed is reachable from
// anywhere and leads nowhere.
var transitions = map[Phase][]Phase{
	PhaseDetecting:        {PhaseEngaging, PhaseAttacking, PhaseResumingMovement},
	PhaseEngaging:         {PhaseAttacking, PhaseResumingMovement},
	PhaseAttacking:        {PhaseEngaging, PhaseResumingMovement},
	PhaseResumingMovement: {},
	PhaseCompleted:        {},
}

// CanTransition reports whether from → to is allowed.
func CanTransition(from, to Phase) bool {
	next, ok := transitions[from]
	if !ok || from == PhaseCompleted {
		return false
	}
	if to == PhaseCompleted {
		return true
	}
	return slices.Contains(next, to)
}

// Action is one protector-versus-target engagement.
type Action struct {
	ID                  string          `json:"id"`
	ProtectorID         string          `json:"protectorId"`
	TargetID            string          `json:"targetId"`
	Phase               Phase           `json:"phase"`
	StartTime           time.Time       `json:"startTime"`
	LastAttackTime      time.Time       `json:"lastAttackTime"`
	AttackCount         int             `json:"attackCount"`
	OriginalDestination *model.Position `json:"originalDestination,omitempty"`
	DetectionTriggered  bool            `json:"detectionTriggered"`
}

func (a *Action) transition(to Phase) error {
	if a.Phase == to {
		return nil
	}
	if !CanTransition(a.Phase, to) {
		return fmt.Errorf("engagement %s/%s: illegal transition %s -> %s", a.ProtectorID, a.TargetID, a.Phase, to)
	}
	a.Phase = to
	return nil
}

// actionTable holds at most one action per protector and iterates in
// insertion order.
type actionTable struct {
	byProtector map[string]*Action
	order       []string
}

func newActionTable() *actionTable {
	return &actionTable{byProtector: make(map[string]*Action)}
}

func (t *actionTable) put(a *Action) {
	if _, ok := t.byProtector[a.ProtectorID]; ok {
		t.remove(a.ProtectorID)
	}
	t.byProtector[a.ProtectorID] = a
	t.order = append(t.order, a.ProtectorID)
}

func (t *actionTable) get(protectorID string) (*Action, bool) {
	a, ok := t.byProtector[protectorID]
	return a, ok
}

// lookup matches the (protector, target) key.
func (t *actionTable) lookup(protectorID, targetID string) (*Action, bool) {
	a, ok := t.byProtector[protectorID]
	if !ok || a.TargetID != targetID {
		return nil, false
	}
	return a, true
}

func (t *actionTable) remove(protectorID string) (*Action, bool) {
	a, ok := t.byProtector[protectorID]
	if !ok {
		return nil, false
	}
	delete(t.byProtector, protectorID)
	if i := slices.Index(t.order, protectorID); i >= 0 {
		t.order = slices.Delete(t.order, i, i+1)
	}
	return a, true
}

// removeTarget drops every action aimed at targetID and returns them.
func (t *actionTable) removeTarget(targetID string) []*Action {
	var out []*Action
	for _, pid := range slices.Clone(t.order) {
		if a := t.byProtector[pid]; a.TargetID == targetID {
			t.remove(pid)
			out = append(out, a)
		}
	}
	return out
}

// onTarget lists the non-completed actions aimed at targetID in table order.
func (t *actionTable) onTarget(targetID string) []*Action {
	var out []*Action
	for _, pid := range t.order {
		if a := t.byProtector[pid]; a.TargetID == targetID && a.Phase != PhaseCompleted {
			out = append(out, a)
		}
	}
	return out
}

// keys snapshots the iteration order so callers can mutate the table while
// walking it.
func (t *actionTable) keys() []string { return slices.Clone(t.order) }

func (t *actionTable) len() int { return len(t.order) }

func (t *actionTable) active() int {
	n := 0
	for _, a := range t.byProtector {
		if a.Phase != PhaseCompleted {
			n++
		}
	}
	return n
}

func (t *actionTable) snapshot() []Action {
	out := make([]Action, 0, len(t.order))
	for _, pid := range t.order {
		a := *t.byProtector[pid]
		if a.OriginalDestination != nil {
			d := *a.OriginalDestination
			a.OriginalDestination = &d
		}
		out = append(out, a)
	}
	return out
}
