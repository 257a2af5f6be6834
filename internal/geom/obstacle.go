package geom

import "math"

// ObstacleKind distinguishes the two static shapes the map generator emits.
type ObstacleKind string

const (
	ObstacleRect   ObstacleKind = "rect"
	ObstacleCircle ObstacleKind = "circle"
)

// Obstacle is a static, immovable shape. Rect obstacles are axis-aligned and
// anchored at their top-left corner; circle obstacles carry a center and
// radius. Obstacles are generated once per map and never mutated.
type Obstacle struct {
	ID     string       `json:"id"`
	Kind   ObstacleKind `json:"kind"`
	X      float64      `json:"x"`
	Y      float64      `json:"y"`
	Width  float64      `json:"width,omitempty"`
	Height float64      `json:"height,omitempty"`
	Radius float64      `json:"radius,omitempty"`
}

// Center returns the obstacle's geometric center.
func (o Obstacle) Center() Vec2 {
	if o.Kind == ObstacleCircle {
		return Vec2{o.X, o.Y}
	}
	return Vec2{o.X + o.Width/2, o.Y + o.Height/2}
}

// OverlapsCircle reports whether a circle at pos with radius r penetrates the
// obstacle.
func (o Obstacle) OverlapsCircle(pos Vec2, r float64) bool {
	if o.Kind == ObstacleCircle {
		return Distance(pos, Vec2{o.X, o.Y}) < r+o.Radius
	}
	return circleRectOverlap(pos, r, o)
}

// PushOut moves a circle at pos with radius r to the nearest non-penetrating
// position and reports whether a correction was applied. Rect obstacles use
// the closest-point clamp; a circle centered exactly inside a rect is ejected
// through the nearest face so the correction never divides by zero.
func (o Obstacle) PushOut(pos Vec2, r float64) (Vec2, bool) {
	if o.Kind == ObstacleCircle {
		center := Vec2{o.X, o.Y}
		delta := pos.Sub(center)
		dist := delta.Len()
		minDist := r + o.Radius
		if dist >= minDist {
			return pos, false
		}
		if dist == 0 {
			// Coincident centers: eject along +X, any fixed axis works
			// because the caller re-resolves on the next tick.
			return Vec2{center.X + minDist, center.Y}, true
		}
		return center.Add(delta.Scale(minDist / dist)), true
	}

	if !circleRectOverlap(pos, r, o) {
		return pos, false
	}

	closest := Vec2{
		Clamp(pos.X, o.X, o.X+o.Width),
		Clamp(pos.Y, o.Y, o.Y+o.Height),
	}
	delta := pos.Sub(closest)
	distSq := delta.LenSq()

	if distSq == 0 {
		// Center is inside the rect; exit through the nearest face.
		left := pos.X - o.X
		right := o.X + o.Width - pos.X
		top := pos.Y - o.Y
		bottom := o.Y + o.Height - pos.Y

		minDist := left
		out := Vec2{o.X - r, pos.Y}
		if right < minDist {
			minDist = right
			out = Vec2{o.X + o.Width + r, pos.Y}
		}
		if top < minDist {
			minDist = top
			out = Vec2{pos.X, o.Y - r}
		}
		if bottom < minDist {
			out = Vec2{pos.X, o.Y + o.Height + r}
		}
		return out, true
	}

	dist := math.Sqrt(distSq)
	if dist >= r {
		return pos, false
	}
	return closest.Add(delta.Scale(r / dist)), true
}

// SegmentHits reports whether the segment from a to b, swept with radius r,
// intersects the obstacle. Used for projectile sweeps so a fast projectile
// cannot cross a thin shape between two ticks.
func (o Obstacle) SegmentHits(a, b Vec2, r float64) (float64, bool) {
	if o.Kind == ObstacleCircle {
		return segmentCircleHit(a, b, Vec2{o.X, o.Y}, o.Radius+r)
	}
	// Sweeping a circle against a rect is approximated by inflating the rect
	// by r; exact corner rounding is not worth it at these entity sizes.
	inflated := Obstacle{
		Kind:   ObstacleRect,
		X:      o.X - r,
		Y:      o.Y - r,
		Width:  o.Width + 2*r,
		Height: o.Height + 2*r,
	}
	return segmentRectHit(a, b, inflated)
}

// SegmentCircleHit reports the earliest parametric t in [0,1] at which the
// segment from a to b passes within radius of center.
func SegmentCircleHit(a, b, center Vec2, radius float64) (float64, bool) {
	return segmentCircleHit(a, b, center, radius)
}

func circleRectOverlap(pos Vec2, r float64, o Obstacle) bool {
	closestX := Clamp(pos.X, o.X, o.X+o.Width)
	closestY := Clamp(pos.Y, o.Y, o.Y+o.Height)
	dx := pos.X - closestX
	dy := pos.Y - closestY
	return dx*dx+dy*dy < r*r
}

func segmentCircleHit(a, b, center Vec2, radius float64) (float64, bool) {
	d := b.Sub(a)
	f := a.Sub(center)

	aa := d.LenSq()
	if aa == 0 {
		if f.Len() <= radius {
			return 0, true
		}
		return 0, false
	}
	bb := 2 * (f.X*d.X + f.Y*d.Y)
	cc := f.LenSq() - radius*radius

	disc := bb*bb - 4*aa*cc
	if disc < 0 {
		return 0, false
	}
	sqrtDisc := math.Sqrt(disc)
	t1 := (-bb - sqrtDisc) / (2 * aa)
	t2 := (-bb + sqrtDisc) / (2 * aa)
	if t1 >= 0 && t1 <= 1 {
		return t1, true
	}
	if t2 >= 0 && t2 <= 1 {
		// Segment starts inside the circle.
		return 0, true
	}
	return 0, false
}

func segmentRectHit(a, b Vec2, o Obstacle) (float64, bool) {
	// Slab test against the rect's x/y extents.
	tMin, tMax := 0.0, 1.0
	d := b.Sub(a)

	for axis := 0; axis < 2; axis++ {
		var origin, dir, lo, hi float64
		if axis == 0 {
			origin, dir, lo, hi = a.X, d.X, o.X, o.X+o.Width
		} else {
			origin, dir, lo, hi = a.Y, d.Y, o.Y, o.Y+o.Height
		}
		if dir == 0 {
			if origin < lo || origin > hi {
				return 0, false
			}
			continue
		}
		t1 := (lo - origin) / dir
		t2 := (hi - origin) / dir
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		if t1 > tMin {
			tMin = t1
		}
		if t2 < tMax {
			tMax = t2
		}
		if tMin > tMax {
			return 0, false
		}
	}
	return tMin, true
}
