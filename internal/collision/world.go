package collision

import (
	"math"
	"sort"

	"deadlock/server/internal/config"
	"deadlock/server/internal/entity"
	"deadlock/server/internal/geom"
)

// pushSplit is the share of the separation each entity in an overlapping pair
// absorbs. Players and zombies share the same mass, so the push is split
// evenly; obstacles are infinite-mass and handled in a separate pass.
const pushSplit = 0.5

// PairEvent records one resolved entity-entity overlap.
type PairEvent struct {
	A           entity.ID
	B           entity.ID
	Penetration float64
}

// World owns the spatial grid and the static obstacle list, and runs the
// per-tick resolution passes. All state that varies per tick (buckets, event
// lists) is rebuilt inside Resolve, so World carries no cross-tick positions.
type World struct {
	cfg       config.CollisionConfig
	width     float64
	height    float64
	obstacles []geom.Obstacle
	grid      *grid

	// Scratch buffers reused across ticks.
	candidates []*entity.Entity
	pairs      []pairKey
}

type pairKey struct {
	a entity.ID
	b entity.ID
}

// NewWorld constructs the collision world for a fixed map.
func NewWorld(cfg config.CollisionConfig, width, height float64, obstacles []geom.Obstacle) *World {
	return &World{
		cfg:       cfg,
		width:     width,
		height:    height,
		obstacles: obstacles,
		grid:      newGrid(cfg.CellSize),
	}
}

// Obstacles returns the static shapes the world resolves against.
func (w *World) Obstacles() []geom.Obstacle {
	return w.obstacles
}

// Resolve runs the full per-tick pass: rebucket, separate overlapping pairs,
// then clamp everything out of obstacles and world bounds. Obstacle clamping
// runs last so static geometry wins any conflict the pair pass reintroduced.
// It returns the recorded pair events and the number of entities the obstacle
// pass had to correct.
func (w *World) Resolve(entities []*entity.Entity) ([]PairEvent, int) {
	collidable := entities[:0:0]
	for _, e := range entities {
		if e.Alive && e.Collidable() {
			collidable = append(collidable, e)
		}
	}

	w.grid.rebuild(collidable)

	var events []PairEvent
	iterations := w.cfg.Iterations
	if iterations < 1 {
		iterations = 1
	}
	for i := 0; i < iterations; i++ {
		resolved := w.resolvePairs(collidable, i == 0, &events)
		if !resolved {
			break
		}
	}

	clamps := w.resolveObstacles(collidable)
	return events, clamps
}

// resolvePairs separates every overlapping candidate pair once, in ascending
// (smaller id, larger id) order so the outcome does not depend on map
// iteration order. It reports whether any pair needed correction. Events are
// only recorded on the first iteration; later iterations are positional
// cleanup of pushes that created new overlaps.
func (w *World) resolvePairs(collidable []*entity.Entity, record bool, events *[]PairEvent) bool {
	w.pairs = w.pairs[:0]
	seen := make(map[pairKey]struct{})

	for _, e := range collidable {
		w.candidates = w.grid.neighbors(e.Pos, w.candidates[:0])
		for _, other := range w.candidates {
			if other.ID == e.ID {
				continue
			}
			key := pairKey{a: e.ID, b: other.ID}
			if key.b < key.a {
				key.a, key.b = key.b, key.a
			}
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			w.pairs = append(w.pairs, key)
		}
	}

	sort.Slice(w.pairs, func(i, j int) bool {
		if w.pairs[i].a != w.pairs[j].a {
			return w.pairs[i].a < w.pairs[j].a
		}
		return w.pairs[i].b < w.pairs[j].b
	})

	byID := make(map[entity.ID]*entity.Entity, len(collidable))
	for _, e := range collidable {
		byID[e.ID] = e
	}

	any := false
	for _, key := range w.pairs {
		a, b := byID[key.a], byID[key.b]
		delta := b.Pos.Sub(a.Pos)
		dist := delta.Len()
		minDist := a.Radius + b.Radius
		if dist >= minDist {
			continue
		}

		var dir geom.Vec2
		if dist == 0 {
			// Identical centers leave no separation axis; derive one from the
			// id pair so the outcome is reproducible across runs.
			dir = tieBreakDirection(key.a, key.b)
		} else {
			dir = delta.Scale(1 / dist)
		}

		penetration := minDist - dist
		a.Pos = a.Pos.Sub(dir.Scale(penetration * pushSplit))
		b.Pos = b.Pos.Add(dir.Scale(penetration * (1 - pushSplit)))
		any = true

		if record {
			*events = append(*events, PairEvent{A: key.a, B: key.b, Penetration: penetration})
		}
	}
	return any
}

// resolveObstacles clamps every dynamic entity out of static geometry and the
// map bounds. Applied after pair resolution so obstacles never yield. It
// returns how many entities were moved, counting each entity at most once.
func (w *World) resolveObstacles(collidable []*entity.Entity) int {
	clamps := 0
	for _, e := range collidable {
		before := e.Pos
		for _, o := range w.obstacles {
			if pos, pushed := o.PushOut(e.Pos, e.Radius); pushed {
				e.Pos = pos
			}
		}
		e.Pos.X = geom.Clamp(e.Pos.X, e.Radius, w.width-e.Radius)
		e.Pos.Y = geom.Clamp(e.Pos.Y, e.Radius, w.height-e.Radius)
		if e.Pos != before {
			clamps++
		}
	}
	return clamps
}

// BlockedAt reports whether a circle at pos with radius r overlaps any
// obstacle or leaves the map. Navigation probes and the spawn director use
// this as their cheap placement test.
func (w *World) BlockedAt(pos geom.Vec2, r float64) bool {
	if pos.X < r || pos.Y < r || pos.X > w.width-r || pos.Y > w.height-r {
		return true
	}
	for _, o := range w.obstacles {
		if o.OverlapsCircle(pos, r) {
			return true
		}
	}
	return false
}

// tieBreakDirection maps a sorted id pair onto a unit vector. Knuth's
// multiplicative constant spreads consecutive ids across the circle.
func tieBreakDirection(a, b entity.ID) geom.Vec2 {
	angle := float64((uint64(a)*2654435761+uint64(b))%360) * math.Pi / 180
	return geom.Vec2{X: math.Cos(angle), Y: math.Sin(angle)}
}
