package geom

import (
	"math"
	"testing"
)

func almost(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestVecBasics(t *testing.T) {
	v := Vec2{X: 3, Y: 4}
	if v.Len() != 5 {
		t.Fatalf("len = %g, want 5", v.Len())
	}
	if v.LenSq() != 25 {
		t.Fatalf("lensq = %g, want 25", v.LenSq())
	}
	n := v.Normalized()
	if !almost(n.Len(), 1) {
		t.Fatalf("normalized len = %g", n.Len())
	}
	if (Vec2{}).Normalized() != (Vec2{}) {
		t.Fatalf("zero vector should normalize to zero")
	}
}

func TestRotated(t *testing.T) {
	v := Vec2{X: 1, Y: 0}
	r := v.Rotated(math.Pi / 2)
	if !almost(r.X, 0) || !almost(r.Y, 1) {
		t.Fatalf("rotate 90 = %v", r)
	}
	r = v.Rotated(math.Pi)
	if !almost(r.X, -1) || !almost(r.Y, 0) {
		t.Fatalf("rotate 180 = %v", r)
	}
}

func TestFinite(t *testing.T) {
	if !(Vec2{X: 1, Y: 2}).Finite() {
		t.Fatalf("finite vector reported non-finite")
	}
	if (Vec2{X: math.NaN()}).Finite() {
		t.Fatalf("NaN reported finite")
	}
	if (Vec2{Y: math.Inf(1)}).Finite() {
		t.Fatalf("Inf reported finite")
	}
}

func TestRectPushOut(t *testing.T) {
	rect := Obstacle{ID: "r", Kind: ObstacleRect, X: 100, Y: 100, Width: 50, Height: 50}

	// Overlapping from the left face.
	pos, pushed := rect.PushOut(Vec2{X: 98, Y: 125}, 10)
	if !pushed {
		t.Fatalf("expected push")
	}
	if rect.OverlapsCircle(pos, 10-1e-9) {
		t.Fatalf("still penetrating after push: %v", pos)
	}

	// Center exactly inside the rect exits through the nearest face.
	pos, pushed = rect.PushOut(Vec2{X: 105, Y: 125}, 10)
	if !pushed {
		t.Fatalf("expected push for inside center")
	}
	if pos.X > 100 {
		t.Fatalf("inside center should exit the nearest (left) face, got %v", pos)
	}

	// Clear of the rect: untouched.
	orig := Vec2{X: 50, Y: 50}
	if pos, pushed := rect.PushOut(orig, 10); pushed || pos != orig {
		t.Fatalf("clear circle moved: %v", pos)
	}
}

func TestCirclePushOut(t *testing.T) {
	circle := Obstacle{ID: "c", Kind: ObstacleCircle, X: 0, Y: 0, Radius: 20}

	pos, pushed := circle.PushOut(Vec2{X: 15, Y: 0}, 10)
	if !pushed {
		t.Fatalf("expected push")
	}
	if !almost(Distance(pos, Vec2{}), 30) {
		t.Fatalf("pushed to distance %g, want 30", Distance(pos, Vec2{}))
	}

	// Coincident centers must not divide by zero.
	pos, pushed = circle.PushOut(Vec2{}, 10)
	if !pushed || !almost(Distance(pos, Vec2{}), 30) {
		t.Fatalf("coincident push = %v pushed=%v", pos, pushed)
	}
}

func TestSegmentCircleHit(t *testing.T) {
	tPar, ok := SegmentCircleHit(Vec2{X: -100, Y: 0}, Vec2{X: 100, Y: 0}, Vec2{}, 10)
	if !ok {
		t.Fatalf("segment through circle missed")
	}
	if !almost(tPar, 0.45) {
		t.Fatalf("entry t = %g, want 0.45", tPar)
	}

	if _, ok := SegmentCircleHit(Vec2{X: -100, Y: 30}, Vec2{X: 100, Y: 30}, Vec2{}, 10); ok {
		t.Fatalf("segment past circle reported a hit")
	}

	// Starting inside reports t=0.
	tPar, ok = SegmentCircleHit(Vec2{X: 5, Y: 0}, Vec2{X: 100, Y: 0}, Vec2{}, 10)
	if !ok || tPar != 0 {
		t.Fatalf("inside start = (%g, %v)", tPar, ok)
	}
}

func TestSegmentHitsRect(t *testing.T) {
	rect := Obstacle{ID: "r", Kind: ObstacleRect, X: 0, Y: -50, Width: 4, Height: 100}

	if _, ok := rect.SegmentHits(Vec2{X: -50, Y: 0}, Vec2{X: 50, Y: 0}, 3); !ok {
		t.Fatalf("segment through thin rect missed")
	}
	if _, ok := rect.SegmentHits(Vec2{X: -50, Y: 80}, Vec2{X: 50, Y: 80}, 3); ok {
		t.Fatalf("segment above rect reported a hit")
	}
}
