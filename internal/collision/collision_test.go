package collision

import (
	"math"
	"testing"

	"deadlock/server/internal/config"
	"deadlock/server/internal/entity"
	"deadlock/server/internal/geom"
)

func testWorld(t *testing.T, obstacles ...geom.Obstacle) *World {
	t.Helper()
	cfg := config.CollisionConfig{CellSize: 64, Epsilon: 1e-6, Iterations: 4}
	return NewWorld(cfg, 2048, 2048, obstacles)
}

func mustEntity(t *testing.T, id entity.ID, kind entity.Kind, x, y, radius float64) *entity.Entity {
	t.Helper()
	e, err := entity.New(id, kind, geom.Vec2{X: x, Y: y}, radius)
	if err != nil {
		t.Fatalf("entity %d: %v", id, err)
	}
	return e
}

func TestResolveSeparatesOverlappingPair(t *testing.T) {
	w := testWorld(t)
	a := mustEntity(t, 1, entity.KindZombie, 100, 100, 14)
	b := mustEntity(t, 2, entity.KindZombie, 110, 100, 14)

	events, clamps := w.Resolve([]*entity.Entity{a, b})

	if len(events) != 1 {
		t.Fatalf("expected 1 pair event, got %d", len(events))
	}
	if clamps != 0 {
		t.Fatalf("no obstacles, yet %d clamps reported", clamps)
	}
	if events[0].A != 1 || events[0].B != 2 {
		t.Fatalf("event pair = (%d, %d), want (1, 2)", events[0].A, events[0].B)
	}
	dist := geom.Distance(a.Pos, b.Pos)
	if dist < a.Radius+b.Radius-1e-6 {
		t.Fatalf("pair still overlapping after resolve: dist=%g min=%g", dist, a.Radius+b.Radius)
	}
}

func TestResolveLeavesSeparatedPairAlone(t *testing.T) {
	w := testWorld(t)
	a := mustEntity(t, 1, entity.KindPlayer, 100, 100, 14)
	b := mustEntity(t, 2, entity.KindZombie, 200, 100, 14)

	events, _ := w.Resolve([]*entity.Entity{a, b})

	if len(events) != 0 {
		t.Fatalf("expected no events, got %d", len(events))
	}
	if a.Pos.X != 100 || b.Pos.X != 200 {
		t.Fatalf("positions moved without overlap: a=%v b=%v", a.Pos, b.Pos)
	}
}

func TestResolveIdenticalCentersIsDeterministic(t *testing.T) {
	run := func() (geom.Vec2, geom.Vec2) {
		w := testWorld(t)
		a := mustEntity(t, 7, entity.KindZombie, 300, 300, 12)
		b := mustEntity(t, 9, entity.KindZombie, 300, 300, 12)
		w.Resolve([]*entity.Entity{a, b})
		return a.Pos, b.Pos
	}

	a1, b1 := run()
	a2, b2 := run()
	if a1 != a2 || b1 != b2 {
		t.Fatalf("identical-center resolution not reproducible: (%v,%v) vs (%v,%v)", a1, b1, a2, b2)
	}
	if dist := geom.Distance(a1, b1); dist < 24-1e-6 {
		t.Fatalf("identical centers not separated: dist=%g", dist)
	}
}

func TestResolveCellBoundaryPairStillFound(t *testing.T) {
	// Entities straddling a 64px grid line must still be candidate pairs.
	w := testWorld(t)
	a := mustEntity(t, 1, entity.KindZombie, 63, 100, 10)
	b := mustEntity(t, 2, entity.KindZombie, 65, 100, 10)

	events, _ := w.Resolve([]*entity.Entity{a, b})
	if len(events) != 1 {
		t.Fatalf("cross-cell overlap missed: %d events", len(events))
	}
}

func TestResolveObstacleWinsConflict(t *testing.T) {
	rect := geom.Obstacle{ID: "rect-0", Kind: geom.ObstacleRect, X: 100, Y: 100, Width: 80, Height: 80}
	w := testWorld(t, rect)

	// Pushed into the rect by a pair overlap on its right side.
	a := mustEntity(t, 1, entity.KindZombie, 186, 140, 10)
	b := mustEntity(t, 2, entity.KindZombie, 192, 140, 10)
	_, clamps := w.Resolve([]*entity.Entity{a, b})

	for _, e := range []*entity.Entity{a, b} {
		if rect.OverlapsCircle(e.Pos, e.Radius-1e-6) {
			t.Fatalf("entity %d still penetrates obstacle at %v", e.ID, e.Pos)
		}
	}
	if clamps == 0 {
		t.Fatalf("obstacle correction not counted")
	}
}

func TestResolveClampsToMapBounds(t *testing.T) {
	w := testWorld(t)
	a := mustEntity(t, 1, entity.KindPlayer, 4, 4, 14)
	_, clamps := w.Resolve([]*entity.Entity{a})
	if a.Pos.X < a.Radius || a.Pos.Y < a.Radius {
		t.Fatalf("entity left inside map edge: %v", a.Pos)
	}
	if clamps != 1 {
		t.Fatalf("bounds clamp count = %d, want 1", clamps)
	}
}

func TestBlockedAt(t *testing.T) {
	circle := geom.Obstacle{ID: "circle-0", Kind: geom.ObstacleCircle, X: 500, Y: 500, Radius: 30}
	w := testWorld(t, circle)

	if !w.BlockedAt(geom.Vec2{X: 510, Y: 500}, 10) {
		t.Fatalf("point inside obstacle not blocked")
	}
	if w.BlockedAt(geom.Vec2{X: 600, Y: 500}, 10) {
		t.Fatalf("clear point reported blocked")
	}
	if !w.BlockedAt(geom.Vec2{X: 5, Y: 500}, 10) {
		t.Fatalf("point past map edge not blocked")
	}
}

func TestSweepHitsTargetCrossedMidSegment(t *testing.T) {
	w := testWorld(t)
	target := mustEntity(t, 1, entity.KindZombie, 200, 100, 12)
	target.Health = 50

	p := mustEntity(t, 2, entity.KindProjectile, 400, 100, 3)
	p.Owner = 99
	p.PrevPos = geom.Vec2{X: 50, Y: 100}

	hits := w.SweepProjectiles([]*entity.Entity{target, p})
	if len(hits) != 1 {
		t.Fatalf("expected 1 hit, got %d", len(hits))
	}
	if hits[0].Target != target.ID {
		t.Fatalf("hit target = %d, want %d", hits[0].Target, target.ID)
	}
	if p.Alive {
		t.Fatalf("projectile still alive after hit")
	}
	if math.Abs(hits[0].At.Y-100) > 1e-9 || hits[0].At.X > 200 {
		t.Fatalf("hit point %v not on the approach side of the target", hits[0].At)
	}
}

func TestSweepStopsAtThinObstacle(t *testing.T) {
	wall := geom.Obstacle{ID: "rect-1", Kind: geom.ObstacleRect, X: 150, Y: 50, Width: 4, Height: 100}
	w := testWorld(t, wall)

	target := mustEntity(t, 1, entity.KindZombie, 300, 100, 12)
	p := mustEntity(t, 2, entity.KindProjectile, 400, 100, 3)
	p.PrevPos = geom.Vec2{X: 50, Y: 100}

	hits := w.SweepProjectiles([]*entity.Entity{target, p})
	if len(hits) != 1 {
		t.Fatalf("expected 1 hit, got %d", len(hits))
	}
	if hits[0].Obstacle != "rect-1" || hits[0].Target != 0 {
		t.Fatalf("thin obstacle did not stop the projectile: %+v", hits[0])
	}
	if target.Alive != true {
		t.Fatalf("target behind wall should be untouched")
	}
}

func TestSweepSkipsOwner(t *testing.T) {
	w := testWorld(t)
	owner := mustEntity(t, 1, entity.KindPlayer, 100, 100, 14)
	p := mustEntity(t, 2, entity.KindProjectile, 130, 100, 3)
	p.Owner = owner.ID
	p.PrevPos = geom.Vec2{X: 100, Y: 100}

	hits := w.SweepProjectiles([]*entity.Entity{owner, p})
	if len(hits) != 0 {
		t.Fatalf("projectile hit its owner: %+v", hits)
	}
}

func TestSweepTakesEarliestIntersection(t *testing.T) {
	w := testWorld(t)
	near := mustEntity(t, 1, entity.KindZombie, 150, 100, 12)
	far := mustEntity(t, 2, entity.KindZombie, 250, 100, 12)
	p := mustEntity(t, 3, entity.KindProjectile, 400, 100, 3)
	p.PrevPos = geom.Vec2{X: 50, Y: 100}

	hits := w.SweepProjectiles([]*entity.Entity{near, far, p})
	if len(hits) != 1 {
		t.Fatalf("expected 1 hit, got %d", len(hits))
	}
	if hits[0].Target != near.ID {
		t.Fatalf("hit %d, want the nearer target %d", hits[0].Target, near.ID)
	}
}
