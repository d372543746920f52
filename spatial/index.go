package spatial

import (
	"log/slog"
	"math"
	"slices"

	"github.com/nstehr/vimy/vimy-combat/model"
)

// DefaultCellSize matches one terrain chunk.
const DefaultCellSize = 64.0

type cellKey struct {
	X int
	Y int
}

type entry struct {
	pos  model.Position
	kind model.TargetKind
	cell cellKey
}

// Index is a uniform grid over entity positions. Each id lives in exactly one
// cell; cells with no occupants are dropped. It is owned by the simulation
// goroutine and is not safe for concurrent use.
type Index struct {
	cellSize    float64
	invCellSize float64
	cells       map[cellKey]map[string]struct{}
	entries     map[string]entry
}

// NewIndex builds an empty index. A non-positive cellSize uses DefaultCellSize.
func NewIndex(cellSize float64) *Index {
	if cellSize <= 0 || math.IsNaN(cellSize) {
		cellSize = DefaultCellSize
	}
	return &Index{
		cellSize:    cellSize,
		invCellSize: 1 / cellSize,
		cells:       make(map[cellKey]map[string]struct{}),
		entries:     make(map[string]entry),
	}
}

// Add inserts id, or moves it if already present.
func (idx *Index) Add(id string, pos model.Position, kind model.TargetKind) {
	if id == "" {
		return
	}
	if pos.HasNaN() {
		slog.Warn("spatial add rejected: NaN position", "id", id)
		return
	}
	if old, ok := idx.entries[id]; ok {
		idx.removeFromCell(id, old.cell)
	}
	c := idx.cellOf(pos)
	idx.entries[id] = entry{pos: pos, kind: kind, cell: c}
	idx.addToCell(id, c)
}

// Remove drops id. Unknown ids are ignored.
func (idx *Index) Remove(id string) {
	e, ok := idx.entries[id]
	if !ok {
		return
	}
	idx.removeFromCell(id, e.cell)
	delete(idx.entries, id)
}

// UpdatePosition moves id. Cell sets are only touched when the entity
// crosses a cell boundary.
func (idx *Index) UpdatePosition(id string, pos model.Position) {
	e, ok := idx.entries[id]
	if !ok {
		return
	}
	if pos.HasNaN() {
		slog.Warn("spatial update rejected: NaN position", "id", id)
		return
	}
	c := idx.cellOf(pos)
	if c != e.cell {
		idx.removeFromCell(id, e.cell)
		idx.addToCell(id, c)
		e.cell = c
	}
	e.pos = pos
	idx.entries[id] = e
}

// QueryRange returns the ids within radius of center, sorted. When kinds is
// non-empty only those kinds are returned.
func (idx *Index) QueryRange(center model.Position, radius float64, kinds ...model.TargetKind) []string {
	if radius < 0 || math.IsNaN(radius) || center.HasNaN() {
		return nil
	}
	r2 := radius * radius
	var out []string
	collect := func(bucket map[string]struct{}) {
		for id := range bucket {
			e := idx.entries[id]
			if len(kinds) > 0 && !slices.Contains(kinds, e.kind) {
				continue
			}
			if e.pos.DistanceSq(center) <= r2 {
				out = append(out, id)
			}
		}
	}

	// Wide queries scan the occupied cells instead of the bounding square.
	span := 2*radius*idx.invCellSize + 2
	if span*span > float64(len(idx.cells)) {
		for _, bucket := range idx.cells {
			collect(bucket)
		}
		slices.Sort(out)
		return out
	}

	minC := idx.cellOf(model.Position{X: center.X - radius, Y: center.Y - radius})
	maxC := idx.cellOf(model.Position{X: center.X + radius, Y: center.Y + radius})
	for cy := minC.Y; cy <= maxC.Y; cy++ {
		for cx := minC.X; cx <= maxC.X; cx++ {
			collect(idx.cells[cellKey{X: cx, Y: cy}])
		}
	}
	slices.Sort(out)
	return out
}

// Position returns the indexed position of id.
func (idx *Index) Position(id string) (model.Position, bool) {
	e, ok := idx.entries[id]
	return e.pos, ok
}

func (idx *Index) Len() int       { return len(idx.entries) }
func (idx *Index) CellCount() int { return len(idx.cells) }

// Clear empties the index.
func (idx *Index) Clear() {
	clear(idx.cells)
	clear(idx.entries)
}

func (idx *Index) cellOf(p model.Position) cellKey {
	return cellKey{
		X: int(math.Floor(p.X * idx.invCellSize)),
		Y: int(math.Floor(p.Y * idx.invCellSize)),
	}
}

func (idx *Index) addToCell(id string, c cellKey) {
	bucket, ok := idx.cells[c]
	if !ok {
		bucket = make(map[string]struct{})
		idx.cells[c] = bucket
	}
	bucket[id] = struct{}{}
}

func (idx *Index) removeFromCell(id string, c cellKey) {
	bucket, ok := idx.cells[c]
	if !ok {
		return
	}
	delete(bucket, id)
	if len(bucket) == 0 {
		delete(idx.cells, c)
	}
}
