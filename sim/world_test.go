package sim

import (
	"math"
	"testing"
	"time"

	"github.com/nstehr/vimy/vimy-combat/model"
)

func quietTuning() Tuning {
	tu := DefaultTuning()
	tu.SpawnInterval = 0
	return tu
}

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestWorldAddRejects(t *testing.T) {
	w := NewWorld(NewTerrain(256, 256), quietTuning(), 1)
	u := model.NewUnit("u1", model.Position{X: 10, Y: 10}, 10, 100)
	if err := w.Add(u); err != nil {
		t.Fatal(err)
	}
	if err := w.Add(u); err == nil {
		t.Error("duplicate accepted")
	}
	bad := model.NewParasite("p1", model.KindEnergyParasite, model.Position{X: math.NaN(), Y: 0})
	if err := w.Add(bad); err == nil {
		t.Error("NaN position accepted")
	}
	if w.Index().Len() != 1 {
		t.Errorf("index has %d entries, want 1", w.Index().Len())
	}
}

func TestWorldMovesUnitsAndIndex(t *testing.T) {
	w := NewWorld(NewTerrain(256, 256), quietTuning(), 1)
	u := model.NewUnit("u1", model.Position{X: 10, Y: 10}, 10, 100)
	if err := w.Add(u); err != nil {
		t.Fatal(err)
	}

	w.StartMovement("u1", model.Position{X: 100, Y: 10})
	w.Step(time.Second, func(string) bool { return true })

	if !near(u.Pos.X, 22) || !near(u.Pos.Y, 10) {
		t.Fatalf("pos = %v, want (22, 10)", u.Pos)
	}
	if got := w.Index().QueryRange(model.Position{X: 22, Y: 10}, 0.5, model.KindProtector); len(got) != 1 {
		t.Errorf("index not updated: %v", got)
	}

	w.StopMovement("u1")
	w.Step(time.Second, func(string) bool { return true })
	if !near(u.Pos.X, 22) {
		t.Errorf("stopped unit moved to %v", u.Pos)
	}
}

func TestWorldTerrainBlocksAndSlows(t *testing.T) {
	g := &Terrain{Cols: 3, Rows: 1, Grid: []TerrainType{Land, Water, Cliff}}
	w := NewWorld(g, quietTuning(), 1)

	a := model.NewUnit("a", model.Position{X: 60, Y: 5}, 10, 100)
	b := model.NewUnit("b", model.Position{X: 70, Y: 5}, 10, 100)
	for _, u := range []*model.Unit{a, b} {
		if err := w.Add(u); err != nil {
			t.Fatal(err)
		}
	}
	w.StartMovement("a", model.Position{X: 140, Y: 5})
	w.StartMovement("b", model.Position{X: 0, Y: 5})
	busy := func(string) bool { return true }

	w.Step(time.Second, busy)
	if !near(a.Pos.X, 72) {
		t.Fatalf("a at %v, want x=72", a.Pos)
	}
	if !near(b.Pos.X, 64) {
		t.Fatalf("b waded to %v, want x=64", b.Pos)
	}

	// a is now in water: 6 units per second, then the cliff edge.
	for range 20 {
		w.Step(time.Second, busy)
	}
	if a.Pos.X >= 128 {
		t.Errorf("a entered the cliff at %v", a.Pos)
	}
	if a.Dest != nil {
		t.Error("blocked unit kept its destination")
	}
}

func TestWorldPatrolOnlyWhenIdle(t *testing.T) {
	w := NewWorld(NewTerrain(512, 512), quietTuning(), 3)
	idle := model.NewUnit("idle", model.Position{X: 200, Y: 200}, 10, 100)
	busy := model.NewUnit("busy", model.Position{X: 300, Y: 300}, 10, 100)
	for _, u := range []*model.Unit{idle, busy} {
		if err := w.Add(u); err != nil {
			t.Fatal(err)
		}
	}

	start := idle.Pos
	w.Step(time.Second/60, func(id string) bool { return id == "busy" })
	if idle.Dest == nil && idle.Pos == start {
		t.Error("idle protector got no patrol order")
	} else if idle.Dest != nil && idle.Dest.DistanceTo(model.Position{X: 200, Y: 200}) > DefaultTuning().PatrolRadius {
		t.Errorf("patrol point %v outside radius", *idle.Dest)
	}
	if busy.Dest != nil {
		t.Error("busy protector got a patrol order")
	}
}

func TestWorldQueenLifecycle(t *testing.T) {
	tu := DefaultTuning()
	tu.QueenGrowTime = 2 * time.Second
	tu.SpawnInterval = time.Second
	tu.MaxBrood = 2
	w := NewWorld(NewTerrain(512, 512), tu, 5)

	q := model.NewQueen("q", "territory_0_0", model.Position{X: 256, Y: 256}, 100)
	if err := w.Add(q); err != nil {
		t.Fatal(err)
	}

	w.Step(time.Second, nil)
	if q.Phase != model.QueenGrowing {
		t.Fatalf("phase = %s after 1s", q.Phase)
	}
	w.Step(time.Second, nil)
	if q.Phase != model.QueenActive {
		t.Fatalf("phase = %s after 2s", q.Phase)
	}

	for range 10 {
		w.Step(time.Second, nil)
	}
	brood := w.Count(model.KindEnergyParasite) + w.Count(model.KindCombatParasite)
	if brood != 2 {
		t.Fatalf("brood = %d, want MaxBrood 2", brood)
	}

	// Killing one frees a slot.
	var victim model.Target
	for _, tg := range w.Targets() {
		if tg.Kind().IsParasite() {
			victim = tg
			break
		}
	}
	w.ParasiteDestroyed(victim)
	if _, ok := w.Target(victim.ID()); ok {
		t.Fatal("destroyed parasite still resolvable")
	}
	w.Step(time.Second, nil)
	brood = w.Count(model.KindEnergyParasite) + w.Count(model.KindCombatParasite)
	if brood != 2 {
		t.Errorf("brood = %d after refill, want 2", brood)
	}

	q.TakeDamage(1000)
	w.Step(time.Second, nil)
	if _, ok := w.Target("q"); ok {
		t.Error("dead queen not pruned")
	}
	if w.Killed(model.KindQueen) != 1 {
		t.Errorf("queen kills = %d", w.Killed(model.KindQueen))
	}
}

func TestWorldHiveConstruction(t *testing.T) {
	tu := quietTuning()
	tu.HiveBuildTime = 3 * time.Second
	w := NewWorld(nil, tu, 1)
	h := model.NewHive("h", "territory_0_0", model.Position{X: 20, Y: 20}, 50)
	if err := w.Add(h); err != nil {
		t.Fatal(err)
	}
	for i := range 3 {
		if h.Constructed {
			t.Fatalf("constructed after %ds", i)
		}
		w.Step(time.Second, nil)
	}
	if !h.Constructed {
		t.Error("hive not constructed after build time")
	}
}
