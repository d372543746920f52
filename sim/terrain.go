package sim

import (
	"math"
	"math/rand/v2"

	"github.com/nstehr/vimy/vimy-combat/model"
)

// TerrainType classifies a coarse grid zone.
type TerrainType byte

const (
	Land  TerrainType = 0 // passable ground
	Water TerrainType = 1 // passable at half speed
	Cliff TerrainType = 2 // impassable
)

// ChunkSize is the width of one terrain zone in world units.
const ChunkSize = 64.0

// Terrain is a coarse row-major grid of zones covering the world from the
// origin. Positions outside the grid read as Land.
type Terrain struct {
	Cols int
	Rows int
	Grid []TerrainType
}

// NewTerrain builds an all-land grid large enough to cover width x height.
func NewTerrain(width, height float64) *Terrain {
	cols := max(1, int(math.Ceil(width/ChunkSize)))
	rows := max(1, int(math.Ceil(height/ChunkSize)))
	return &Terrain{Cols: cols, Rows: rows, Grid: make([]TerrainType, cols*rows)}
}

// Scatter turns roughly the given fractions of zones into cliffs and water.
func (g *Terrain) Scatter(rng *rand.Rand, cliff, water float64) {
	for i := range g.Grid {
		switch r := rng.Float64(); {
		case r < cliff:
			g.Grid[i] = Cliff
		case r < cliff+water:
			g.Grid[i] = Water
		default:
			g.Grid[i] = Land
		}
	}
}

// Carve resets every zone whose centre lies within radius of center to Land.
func (g *Terrain) Carve(center model.Position, radius float64) {
	r2 := radius * radius
	for row := 0; row < g.Rows; row++ {
		for col := 0; col < g.Cols; col++ {
			if g.ZoneCenter(col, row).DistanceSq(center) <= r2 {
				g.Grid[row*g.Cols+col] = Land
			}
		}
	}
}

// At returns the terrain type at grid coordinates (col, row).
// Returns Land for out-of-bounds coordinates.
func (g *Terrain) At(col, row int) TerrainType {
	if col < 0 || col >= g.Cols || row < 0 || row >= g.Rows {
		return Land
	}
	return g.Grid[row*g.Cols+col]
}

// AtPos converts a world position to grid coordinates.
func (g *Terrain) AtPos(p model.Position) TerrainType {
	if p.HasNaN() {
		return Land
	}
	return g.At(int(math.Floor(p.X/ChunkSize)), int(math.Floor(p.Y/ChunkSize)))
}

func (g *Terrain) Passable(p model.Position) bool { return g.AtPos(p) != Cliff }

// SpeedFactor scales movement through the zone containing p.
func (g *Terrain) SpeedFactor(p model.Position) float64 {
	switch g.AtPos(p) {
	case Water:
		return 0.5
	case Cliff:
		return 0
	}
	return 1
}

// ZoneCenter returns the world position of the centre of zone (col, row).
func (g *Terrain) ZoneCenter(col, row int) model.Position {
	return model.Position{X: (float64(col) + 0.5) * ChunkSize, Y: (float64(row) + 0.5) * ChunkSize}
}

// Count returns how many zones have type t.
func (g *Terrain) Count(t TerrainType) int {
	n := 0
	for _, z := range g.Grid {
		if z == t {
			n++
		}
	}
	return n
}
