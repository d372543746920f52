package combat

import (
	"slices"
	"testing"
	"time"

	"github.com/nstehr/vimy/vimy-combat/energy"
	"github.com/nstehr/vimy/vimy-combat/model"
)

type move struct {
	unit string
	dest model.Position
	stop bool
}

type fakeMover struct{ moves []move }

func (m *fakeMover) StartMovement(id string, dest model.Position) {
	m.moves = append(m.moves, move{unit: id, dest: dest})
}
func (m *fakeMover) StopMovement(id string) { m.moves = append(m.moves, move{unit: id, stop: true}) }

func (m *fakeMover) last(unit string) (move, bool) {
	for i := len(m.moves) - 1; i >= 0; i-- {
		if m.moves[i].unit == unit {
			return m.moves[i], true
		}
	}
	return move{}, false
}

type world struct{ targets map[string]model.Target }

func newWorld(ts ...model.Target) *world {
	w := &world{targets: map[string]model.Target{}}
	for _, t := range ts {
		w.targets[t.ID()] = t
	}
	return w
}

func (w *world) Target(id string) (model.Target, bool) {
	t, ok := w.targets[id]
	return t, ok
}

func (w *world) Targets() []model.Target {
	out := make([]model.Target, 0, len(w.targets))
	for _, t := range w.targets {
		out = append(out, t)
	}
	slices.SortFunc(out, func(a, b model.Target) int {
		if a.ID() < b.ID() {
			return -1
		}
		return 1
	})
	return out
}

type recorder struct{ notes []Notification }

func (r *recorder) Notify(n Notification) { r.notes = append(r.notes, n) }

func (r *recorder) count(kind NotificationKind) int {
	n := 0
	for _, x := range r.notes {
		if x.Kind == kind {
			n++
		}
	}
	return n
}

type harness struct {
	o      *Orchestrator
	ledger *energy.Ledger
	mover  *fakeMover
	world  *world
	notes  *recorder
}

func newHarness(t *testing.T, cfg Config, energyPool float64, targets ...model.Target) *harness {
	t.Helper()
	h := &harness{
		ledger: energy.NewLedger(energyPool),
		mover:  &fakeMover{},
		world:  newWorld(targets...),
		notes:  &recorder{},
	}
	o, err := New(cfg, Deps{Ledger: h.ledger, Mover: h.mover, Resolver: h.world, Notifier: h.notes})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	h.o = o
	return h
}

func (h *harness) unit(id string, x, y, attack float64) *model.Unit {
	u := model.NewUnit(id, model.Position{X: x, Y: y}, attack, 100)
	h.o.RegisterUnit(u)
	return u
}

func (h *harness) step(n int, dt time.Duration) {
	for i := 0; i < n; i++ {
		h.o.Update(dt)
	}
}
