package sim

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/nstehr/vimy/vimy-combat/model"
	"github.com/nstehr/vimy/vimy-combat/territory"
)

// Scenario describes the starting layout. Each front is one territory with a
// Queen, her Hive, a protector squad, some parasites and mineral deposits.
type Scenario struct {
	Seed      uint64
	Fronts    int
	SquadSize int
	Parasites int // initial parasites per front
	Minerals  int // deposits per front

	UnitAttack  float64
	UnitHP      float64
	QueenHP     float64
	HiveHP      float64
	MineralSize float64

	CliffRatio float64
	WaterRatio float64
}

func DefaultScenario() Scenario {
	return Scenario{
		Seed:        1,
		Fronts:      2,
		SquadSize:   4,
		Parasites:   6,
		Minerals:    3,
		UnitAttack:  10,
		UnitHP:      100,
		QueenHP:     200,
		HiveHP:      150,
		MineralSize: 500,
		CliffRatio:  0.06,
		WaterRatio:  0.08,
	}
}

// Bounds is the size of the world the scenario needs.
func (sc Scenario) Bounds() (width, height float64) {
	return float64(max(sc.Fronts, 1)) * territory.CellSize, territory.CellSize
}

// FrontCenter is where front i's Queen sits.
func FrontCenter(i int) model.Position {
	return model.Position{X: (float64(i) + 0.5) * territory.CellSize, Y: 0.5 * territory.CellSize}
}

// Build lays out terrain, entities and territory claims.
func (sc Scenario) Build(tuning Tuning, tracker *territory.Tracker) (*World, error) {
	if sc.Fronts <= 0 {
		return nil, fmt.Errorf("sim: scenario needs at least one front")
	}
	if tracker == nil {
		return nil, fmt.Errorf("sim: nil territory tracker")
	}

	rng := rand.New(rand.NewPCG(sc.Seed, sc.Seed+1))
	terrain := NewTerrain(sc.Bounds())
	terrain.Scatter(rng, sc.CliffRatio, sc.WaterRatio)
	w := NewWorld(terrain, tuning, sc.Seed)

	for f := range sc.Fronts {
		c := FrontCenter(f)
		terrain.Carve(c, tuning.PatrolRadius*2+ChunkSize)

		tid := territory.IDAt(c)
		qid := fmt.Sprintf("queen-%d", f)
		hid := fmt.Sprintf("hive-%d", f)
		queen := model.NewQueen(qid, tid, c, sc.QueenHP)
		hive := model.NewHive(hid, tid, model.Position{X: c.X + 30, Y: c.Y}, sc.HiveHP)
		if err := w.Add(queen); err != nil {
			return nil, err
		}
		if err := w.Add(hive); err != nil {
			return nil, err
		}
		tracker.Claim(c, qid, hid)

		camp := model.Position{X: c.X - 60, Y: c.Y}
		for i := range sc.SquadSize {
			u := model.NewUnit(fmt.Sprintf("protector-%d-%d", f, i), randomAround(rng, camp, 0, 10), sc.UnitAttack, sc.UnitHP)
			if err := w.Add(u); err != nil {
				return nil, err
			}
		}
		for i := range sc.Parasites {
			variant := model.KindEnergyParasite
			if i%3 == 2 {
				variant = model.KindCombatParasite
			}
			p := model.NewParasite(fmt.Sprintf("parasite-%d-%d", f, i), variant, randomAround(rng, c, 20, 70))
			if err := w.Add(p); err != nil {
				return nil, err
			}
		}
		for i := range sc.Minerals {
			m := model.NewMineral(fmt.Sprintf("mineral-%d-%d", f, i), randomAround(rng, camp, 15, 40), sc.MineralSize)
			if err := w.Add(m); err != nil {
				return nil, err
			}
		}
	}
	return w, nil
}

// randomAround draws a point at a uniform angle and a distance in [minR, maxR].
func randomAround(rng *rand.Rand, c model.Position, minR, maxR float64) model.Position {
	a := rng.Float64() * 2 * math.Pi
	r := minR + rng.Float64()*(maxR-minR)
	return model.Position{X: c.X + r*math.Cos(a), Y: c.Y + r*math.Sin(a)}
}
