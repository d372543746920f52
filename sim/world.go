package sim

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
	"slices"
	"time"

	"github.com/nstehr/vimy/vimy-combat/model"
	"github.com/nstehr/vimy/vimy-combat/spatial"
)

// Tuning holds the world's movement and lifecycle rates.
type Tuning struct {
	UnitSpeed     float64 // world units per second
	ParasiteSpeed float64
	PatrolRadius  float64 // protectors and parasites roam this far from home
	QueenGrowTime time.Duration
	HiveBuildTime time.Duration
	SpawnInterval time.Duration // an active Queen lays one parasite per interval
	MaxBrood      int           // live parasites per Queen
}

func DefaultTuning() Tuning {
	return Tuning{
		UnitSpeed:     12,
		ParasiteSpeed: 6,
		PatrolRadius:  80,
		QueenGrowTime: 30 * time.Second,
		HiveBuildTime: 20 * time.Second,
		SpawnInterval: 15 * time.Second,
		MaxBrood:      6,
	}
}

// World is a headless stand-in for the unit layer: it owns every entity,
// moves them, and keeps the spatial index in step. It satisfies the combat
// Mover, Resolver and ParasiteNotifier interfaces. Like the orchestrator it
// belongs to the simulation goroutine.
type World struct {
	tuning  Tuning
	terrain *Terrain
	index   *spatial.Index
	rng     *rand.Rand

	targets map[string]model.Target
	ids     []string // sorted ids of targets
	units   map[string]*model.Unit

	home     map[string]model.Position // patrol anchor per mobile entity
	waypoint map[string]model.Position // current parasite goal
	age      map[string]time.Duration  // Queens and Hives
	brood    map[string]int            // live parasites per Queen
	parent   map[string]string         // parasite -> Queen
	spawnAcc map[string]time.Duration

	nextID int
	killed map[model.TargetKind]int
}

// NewWorld creates an empty world on the given terrain.
func NewWorld(terrain *Terrain, tuning Tuning, seed uint64) *World {
	if terrain == nil {
		terrain = NewTerrain(ChunkSize, ChunkSize)
	}
	return &World{
		tuning:   tuning,
		terrain:  terrain,
		index:    spatial.NewIndex(ChunkSize),
		rng:      rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		targets:  make(map[string]model.Target),
		units:    make(map[string]*model.Unit),
		home:     make(map[string]model.Position),
		waypoint: make(map[string]model.Position),
		age:      make(map[string]time.Duration),
		brood:    make(map[string]int),
		parent:   make(map[string]string),
		spawnAcc: make(map[string]time.Duration),
		killed:   make(map[model.TargetKind]int),
	}
}

func (w *World) Index() *spatial.Index { return w.index }
func (w *World) Terrain() *Terrain     { return w.terrain }

// Add places an entity in the world. Protectors patrol around where they
// were added.
func (w *World) Add(t model.Target) error {
	id := t.ID()
	if _, dup := w.targets[id]; dup {
		return fmt.Errorf("sim: duplicate entity %q", id)
	}
	if t.Position().HasNaN() {
		return fmt.Errorf("sim: entity %q has NaN position", id)
	}
	w.targets[id] = t
	i, _ := slices.BinarySearch(w.ids, id)
	w.ids = slices.Insert(w.ids, i, id)
	w.index.Add(id, t.Position(), t.Kind())

	switch e := t.(type) {
	case *model.Unit:
		e.Speed = w.tuning.UnitSpeed
		w.units[id] = e
		w.home[id] = e.Pos
	case *model.Parasite:
		w.home[id] = e.Pos
	}
	return nil
}

// Remove drops an entity and its bookkeeping.
func (w *World) Remove(id string) {
	if _, ok := w.targets[id]; !ok {
		return
	}
	delete(w.targets, id)
	if i, found := slices.BinarySearch(w.ids, id); found {
		w.ids = slices.Delete(w.ids, i, i+1)
	}
	w.index.Remove(id)
	delete(w.units, id)
	delete(w.home, id)
	delete(w.waypoint, id)
	delete(w.age, id)
	delete(w.spawnAcc, id)
	if q, ok := w.parent[id]; ok {
		w.brood[q]--
		delete(w.parent, id)
	}
}

// StartMovement sends a protector towards dest.
func (w *World) StartMovement(unitID string, dest model.Position) {
	u, ok := w.units[unitID]
	if !ok || dest.HasNaN() {
		return
	}
	d := dest
	u.Dest = &d
}

func (w *World) StopMovement(unitID string) {
	if u, ok := w.units[unitID]; ok {
		u.Dest = nil
	}
}

func (w *World) Target(id string) (model.Target, bool) {
	t, ok := w.targets[id]
	return t, ok
}

// Targets lists every entity in id order.
func (w *World) Targets() []model.Target {
	out := make([]model.Target, 0, len(w.ids))
	for _, id := range w.ids {
		out = append(out, w.targets[id])
	}
	return out
}

// Units returns the protectors in id order.
func (w *World) Units() []*model.Unit {
	out := make([]*model.Unit, 0, len(w.units))
	for _, id := range w.ids {
		if u, ok := w.units[id]; ok {
			out = append(out, u)
		}
	}
	return out
}

// ParasiteDestroyed removes a dead parasite and frees its Queen's brood slot.
func (w *World) ParasiteDestroyed(t model.Target) {
	w.killed[t.Kind()]++
	w.Remove(t.ID())
	slog.Debug("parasite removed", "parasite", t.ID(), "kind", t.Kind())
}

// Killed returns how many entities of kind k died.
func (w *World) Killed(k model.TargetKind) int { return w.killed[k] }

// Counts tallies live entities by kind name.
func (w *World) Counts() map[string]int {
	out := make(map[string]int)
	for _, t := range w.targets {
		out[t.Kind().String()]++
	}
	return out
}

// Count returns how many live entities of kind k exist.
func (w *World) Count(k model.TargetKind) int {
	n := 0
	for _, t := range w.targets {
		if t.Kind() == k {
			n++
		}
	}
	return n
}

// Step advances the world by dt. busy reports protectors the combat layer
// currently controls; they are never handed patrol orders.
func (w *World) Step(dt time.Duration, busy func(id string) bool) {
	if dt <= 0 {
		return
	}
	secs := dt.Seconds()

	for _, id := range slices.Clone(w.ids) {
		t, ok := w.targets[id]
		if !ok {
			continue
		}
		switch e := t.(type) {
		case *model.Unit:
			w.stepUnit(e, secs, busy != nil && busy(id))
		case *model.Parasite:
			w.stepParasite(e, secs)
		case *model.Queen:
			w.stepQueen(e, dt)
		case *model.Hive:
			w.age[id] += dt
			if !e.Constructed && w.age[id] >= w.tuning.HiveBuildTime {
				e.Constructed = true
				slog.Info("hive constructed", "hive", id, "territory", e.Territory)
			}
		}
	}
	w.prune()
}

func (w *World) stepUnit(u *model.Unit, secs float64, busy bool) {
	if !u.Alive() {
		return
	}
	if u.Dest == nil && !busy && u.Aim == "" {
		dest := w.roam(w.home[u.UnitID])
		u.Dest = &dest
	}
	if u.Dest == nil {
		return
	}
	next, ok := w.move(u.Pos, *u.Dest, u.Speed*secs)
	if !ok {
		u.Dest = nil
		return
	}
	u.Pos = next
	w.index.UpdatePosition(u.UnitID, next)
	if next == *u.Dest && !busy {
		u.Dest = nil
	}
}

func (w *World) stepParasite(p *model.Parasite, secs float64) {
	if p.Health() <= 0 {
		return
	}
	goal, ok := w.waypoint[p.ParasiteID]
	if !ok || goal == p.Pos {
		goal = w.roam(w.home[p.ParasiteID])
		w.waypoint[p.ParasiteID] = goal
	}
	next, ok := w.move(p.Pos, goal, w.tuning.ParasiteSpeed*secs)
	if !ok {
		delete(w.waypoint, p.ParasiteID)
		return
	}
	p.Pos = next
	w.index.UpdatePosition(p.ParasiteID, next)
}

func (w *World) stepQueen(q *model.Queen, dt time.Duration) {
	if q.Health() <= 0 {
		return
	}
	w.age[q.QueenID] += dt
	if q.Phase == model.QueenGrowing && w.age[q.QueenID] >= w.tuning.QueenGrowTime {
		q.Phase = model.QueenActive
		slog.Info("queen active", "queen", q.QueenID, "territory", q.Territory)
	}
	if q.Phase != model.QueenActive || w.tuning.SpawnInterval <= 0 {
		return
	}
	w.spawnAcc[q.QueenID] += dt
	for w.spawnAcc[q.QueenID] >= w.tuning.SpawnInterval {
		w.spawnAcc[q.QueenID] -= w.tuning.SpawnInterval
		if w.brood[q.QueenID] >= w.tuning.MaxBrood {
			continue
		}
		w.spawn(q)
	}
}

// spawn lays a parasite next to q. Every third one is a combat parasite.
func (w *World) spawn(q *model.Queen) {
	w.nextID++
	variant := model.KindEnergyParasite
	if w.nextID%3 == 0 {
		variant = model.KindCombatParasite
	}
	pos, ok := w.placeNear(q.Pos, 10, 30)
	if !ok {
		return
	}
	p := model.NewParasite(fmt.Sprintf("%s-brood-%d", q.QueenID, w.nextID), variant, pos)
	if err := w.Add(p); err != nil {
		slog.Warn("spawn failed", "queen", q.QueenID, "error", err)
		return
	}
	w.home[p.ParasiteID] = q.Pos
	w.parent[p.ParasiteID] = q.QueenID
	w.brood[q.QueenID]++
	slog.Debug("parasite spawned", "queen", q.QueenID, "parasite", p.ParasiteID, "kind", variant)
}

// prune removes dead Queens, Hives and protectors. Parasites leave through
// ParasiteDestroyed.
func (w *World) prune() {
	var dead []string
	for _, id := range w.ids {
		t := w.targets[id]
		if t.Kind().IsParasite() || t.Kind() == model.KindMineral {
			continue
		}
		if t.Health() <= 0 {
			dead = append(dead, id)
		}
	}
	for _, id := range dead {
		w.killed[w.targets[id].Kind()]++
		w.Remove(id)
	}
}

// move steps from toward to by at most step, scaled by terrain. It reports
// false when the next position is blocked.
func (w *World) move(from, to model.Position, step float64) (model.Position, bool) {
	step *= w.terrain.SpeedFactor(from)
	if step <= 0 {
		return from, false
	}
	next := from.Toward(to, step)
	if !w.terrain.Passable(next) {
		return from, false
	}
	return next, true
}

// roam picks a passable point within the patrol radius of anchor.
func (w *World) roam(anchor model.Position) model.Position {
	if p, ok := w.placeNear(anchor, 0, w.tuning.PatrolRadius); ok {
		return p
	}
	return anchor
}

// placeNear draws a passable point at a distance in [minR, maxR] from c.
func (w *World) placeNear(c model.Position, minR, maxR float64) (model.Position, bool) {
	for range 10 {
		p := randomAround(w.rng, c, minR, maxR)
		if w.terrain.Passable(p) && p.X >= 0 && p.Y >= 0 {
			return p, true
		}
	}
	return model.Position{}, false
}
