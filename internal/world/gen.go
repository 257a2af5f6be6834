package world

import (
	"fmt"
	"math/rand"

	"deadlock/server/internal/config"
	"deadlock/server/internal/geom"
)

// GenerateObstacles scatters blocking rectangles and circles around the map.
// The area around the player spawn at map center stays clear, candidates that
// overlap an existing obstacle (padded by a corridor width) are rejected, and
// generation gives up after a bounded number of attempts rather than loop on
// a crowded map.
func GenerateObstacles(cfg config.WorldConfig, rng *rand.Rand) []geom.Obstacle {
	center := geom.Vec2{X: cfg.Width / 2, Y: cfg.Height / 2}
	obstacles := make([]geom.Obstacle, 0, cfg.ObstacleCount+cfg.CircleObstacleCount)

	// Corridor padding keeps every gap between obstacles wide enough for the
	// largest entities to slip through.
	const corridor = 48.0

	attempts := 0
	maxAttempts := cfg.ObstacleCount * 20
	for len(obstacles) < cfg.ObstacleCount && attempts < maxAttempts {
		attempts++

		width := cfg.ObstacleMinSize + rng.Float64()*(cfg.ObstacleMaxSize-cfg.ObstacleMinSize)
		height := cfg.ObstacleMinSize + rng.Float64()*(cfg.ObstacleMaxSize-cfg.ObstacleMinSize)

		maxX := cfg.Width - cfg.SpawnMargin - width
		maxY := cfg.Height - cfg.SpawnMargin - height
		if maxX <= cfg.SpawnMargin || maxY <= cfg.SpawnMargin {
			break
		}
		candidate := geom.Obstacle{
			ID:     fmt.Sprintf("rect-%d", len(obstacles)),
			Kind:   geom.ObstacleRect,
			X:      cfg.SpawnMargin + rng.Float64()*(maxX-cfg.SpawnMargin),
			Y:      cfg.SpawnMargin + rng.Float64()*(maxY-cfg.SpawnMargin),
			Width:  width,
			Height: height,
		}

		if candidate.OverlapsCircle(center, cfg.SpawnSafeRadius) {
			continue
		}
		if overlapsAny(candidate, obstacles, corridor) {
			continue
		}
		obstacles = append(obstacles, candidate)
	}

	attempts = 0
	maxAttempts = cfg.CircleObstacleCount * 20
	placed := 0
	for placed < cfg.CircleObstacleCount && attempts < maxAttempts {
		attempts++

		radius := cfg.CircleMinRadius + rng.Float64()*(cfg.CircleMaxRadius-cfg.CircleMinRadius)
		candidate := geom.Obstacle{
			ID:     fmt.Sprintf("circle-%d", placed),
			Kind:   geom.ObstacleCircle,
			X:      cfg.SpawnMargin + radius + rng.Float64()*(cfg.Width-2*(cfg.SpawnMargin+radius)),
			Y:      cfg.SpawnMargin + radius + rng.Float64()*(cfg.Height-2*(cfg.SpawnMargin+radius)),
			Radius: radius,
		}

		if candidate.OverlapsCircle(center, cfg.SpawnSafeRadius) {
			continue
		}
		if overlapsAny(candidate, obstacles, corridor) {
			continue
		}
		obstacles = append(obstacles, candidate)
		placed++
	}

	return obstacles
}

// overlapsAny reports whether the candidate, padded by the corridor width,
// intersects any existing obstacle. Both shapes are tested through the
// circle-overlap helper by treating rects via their padded bounding test.
func overlapsAny(candidate geom.Obstacle, obstacles []geom.Obstacle, corridor float64) bool {
	for _, o := range obstacles {
		if obstaclesOverlap(candidate, o, corridor) {
			return true
		}
	}
	return false
}

func obstaclesOverlap(a, b geom.Obstacle, pad float64) bool {
	switch {
	case a.Kind == geom.ObstacleCircle && b.Kind == geom.ObstacleCircle:
		return geom.Distance(a.Center(), b.Center()) < a.Radius+b.Radius+pad
	case a.Kind == geom.ObstacleCircle:
		return b.OverlapsCircle(a.Center(), a.Radius+pad)
	case b.Kind == geom.ObstacleCircle:
		return a.OverlapsCircle(b.Center(), b.Radius+pad)
	default:
		return a.X < b.X+b.Width+pad && b.X < a.X+a.Width+pad &&
			a.Y < b.Y+b.Height+pad && b.Y < a.Y+a.Height+pad
	}
}
