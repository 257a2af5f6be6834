// Package collision detects and resolves interpenetration among dynamic
// entities and between entities and static obstacles, once per tick. It
// reports overlap and hit events; damage and scoring belong to the callers.
package collision

import (
	"math"

	"deadlock/server/internal/entity"
	"deadlock/server/internal/geom"
)

type cellKey struct {
	X int
	Y int
}

// grid is a uniform spatial hash rebuilt from scratch every tick. Cell size
// must be at least the largest entity diameter so the 3x3 neighborhood around
// a cell always contains every possible overlap partner; config validation
// enforces that.
type grid struct {
	cellSize float64
	cells    map[cellKey][]*entity.Entity
}

func newGrid(cellSize float64) *grid {
	return &grid{
		cellSize: cellSize,
		cells:    make(map[cellKey][]*entity.Entity),
	}
}

func (g *grid) keyFor(pos geom.Vec2) cellKey {
	return cellKey{
		X: int(math.Floor(pos.X / g.cellSize)),
		Y: int(math.Floor(pos.Y / g.cellSize)),
	}
}

// rebuild re-buckets the given entities. Buckets are reused across ticks to
// keep allocation churn down; stale cells are truncated, not deleted.
func (g *grid) rebuild(entities []*entity.Entity) {
	for key, bucket := range g.cells {
		g.cells[key] = bucket[:0]
	}
	for _, e := range entities {
		key := g.keyFor(e.Pos)
		g.cells[key] = append(g.cells[key], e)
	}
}

// neighbors appends every entity bucketed in the cell containing pos or one
// of its 8 neighbors. Entities sitting exactly on a cell boundary are covered
// because the full neighborhood is always scanned.
func (g *grid) neighbors(pos geom.Vec2, out []*entity.Entity) []*entity.Entity {
	center := g.keyFor(pos)
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			key := cellKey{X: center.X + dx, Y: center.Y + dy}
			out = append(out, g.cells[key]...)
		}
	}
	return out
}
