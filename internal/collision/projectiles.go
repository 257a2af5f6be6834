package collision

import (
	"deadlock/server/internal/entity"
	"deadlock/server/internal/geom"
)

// Hit records the earliest thing a projectile struck during its tick
// displacement. Target is zero when an obstacle stopped the projectile.
type Hit struct {
	Projectile entity.ID
	Target     entity.ID
	Obstacle   string
	At         geom.Vec2
	T          float64
}

// SweepProjectiles tests each live projectile's tick displacement, treated as
// a line segment from its previous to its current position, against obstacles
// and damageable entities. Sweeping instead of point-testing keeps fast
// projectiles from tunneling through thin shapes, and equally lets them reach
// a target standing just past one when nothing blocks the path. The earliest
// intersection along the segment wins; struck projectiles are marked dead and
// removed at the tick boundary.
func (w *World) SweepProjectiles(entities []*entity.Entity) []Hit {
	var hits []Hit
	for _, p := range entities {
		if !p.Alive || p.Kind != entity.KindProjectile {
			continue
		}

		bestT := 2.0
		var best Hit

		for _, o := range w.obstacles {
			if t, ok := o.SegmentHits(p.PrevPos, p.Pos, p.Radius); ok && t < bestT {
				bestT = t
				best = Hit{Projectile: p.ID, Obstacle: o.ID, T: t}
			}
		}

		for _, target := range entities {
			if !target.Alive || !target.Damageable() || target.ID == p.Owner {
				continue
			}
			t, ok := geom.SegmentCircleHit(p.PrevPos, p.Pos, target.Pos, target.Radius+p.Radius)
			if !ok || t >= bestT {
				continue
			}
			bestT = t
			best = Hit{Projectile: p.ID, Target: target.ID, Obstacle: "", T: t}
		}

		if bestT > 1.0 {
			continue
		}
		best.At = p.PrevPos.Add(p.Pos.Sub(p.PrevPos).Scale(bestT))
		p.Alive = false
		hits = append(hits, best)
	}
	return hits
}
