// Package director decides when to introduce new zombies, of what type, and
// where. Its decisions are a pure function of elapsed survival time and the
// seeded RNG; it never spawns entities itself, it emits SpawnRequests the
// entity factory consumes.
package director

import (
	"context"
	"math"
	"math/rand"
	"sort"

	"deadlock/server/internal/config"
	"deadlock/server/internal/entity"
	"deadlock/server/internal/geom"
	"deadlock/server/logging"
	logdir "deadlock/server/logging/director"
)

// Prober is the placement test spawn candidates run against.
type Prober interface {
	BlockedAt(pos geom.Vec2, r float64) bool
}

// SpawnRequest asks the entity factory to create one zombie.
type SpawnRequest struct {
	Archetype entity.Archetype
	Pos       geom.Vec2
}

// Director owns the spawn timer and difficulty schedule.
type Director struct {
	cfg     config.DirectorConfig
	zombies map[string]config.ZombieConfig
	prober  Prober
	rng     *rand.Rand
	pub     logging.Publisher

	timer    float64
	stageIdx int
}

// New constructs a director. The RNG must be dedicated to this subsystem so
// draws elsewhere cannot perturb spawn sequences.
func New(cfg config.DirectorConfig, zombies map[string]config.ZombieConfig, prober Prober, rng *rand.Rand, pub logging.Publisher) *Director {
	if pub == nil {
		pub = logging.NopPublisher()
	}
	return &Director{
		cfg:      cfg,
		zombies:  zombies,
		prober:   prober,
		rng:      rng,
		pub:      pub,
		timer:    cfg.SpawnIntervalInitial,
		stageIdx: -1,
	}
}

// TargetCount returns the concurrent zombie count the director aims for at
// elapsed seconds. Monotonically non-decreasing in elapsed, capped.
func (d *Director) TargetCount(elapsed float64) int {
	target := d.cfg.BaseCount + int(d.cfg.RatePerSecond*elapsed)
	if target > d.cfg.MaxCount {
		return d.cfg.MaxCount
	}
	return target
}

// Interval returns the spawn interval at elapsed seconds. It shrinks stepwise
// as the run goes on, never below the configured floor.
func (d *Director) Interval(elapsed float64) float64 {
	if d.cfg.IntervalDecreaseEvery <= 0 {
		return d.cfg.SpawnIntervalInitial
	}
	steps := math.Floor(elapsed / d.cfg.IntervalDecreaseEvery)
	interval := d.cfg.SpawnIntervalInitial - steps*d.cfg.IntervalDecreaseBy
	if interval < d.cfg.SpawnIntervalMin {
		return d.cfg.SpawnIntervalMin
	}
	return interval
}

// Update advances the spawn timer by one tick and returns a spawn request
// when the timer expired, the live count is below target, and a valid point
// was found. A nil return is the common case.
func (d *Director) Update(ctx context.Context, tick uint64, dt, elapsed float64, liveZombies int, playerPos geom.Vec2, occupied []geom.Vec2) *SpawnRequest {
	d.noteStage(ctx, tick, elapsed)

	d.timer -= dt
	if d.timer > 0 {
		return nil
	}
	d.timer = d.Interval(elapsed)

	if liveZombies >= d.TargetCount(elapsed) {
		return nil
	}

	archetype := d.drawArchetype(elapsed)
	radius := d.zombies[string(archetype)].Radius

	pos, ok := d.findSpawnPoint(playerPos, radius, occupied)
	if !ok {
		// Non-fatal: dense geometry around the player can starve the ring.
		// The reset timer retries on the next interval.
		logdir.SpawnSkipped(ctx, d.pub, tick, logdir.SpawnSkippedPayload{
			Attempts:  d.cfg.SpawnAttempts,
			Archetype: string(archetype),
			Reason:    "no valid spawn point",
		})
		return nil
	}
	return &SpawnRequest{Archetype: archetype, Pos: pos}
}

// InitialSpawns produces the opening wave placed before the first tick.
func (d *Director) InitialSpawns(ctx context.Context, playerPos geom.Vec2) []SpawnRequest {
	requests := make([]SpawnRequest, 0, d.cfg.InitialCount)
	occupied := make([]geom.Vec2, 0, d.cfg.InitialCount)
	for i := 0; i < d.cfg.InitialCount; i++ {
		archetype := d.drawArchetype(0)
		radius := d.zombies[string(archetype)].Radius
		pos, ok := d.findSpawnPoint(playerPos, radius, occupied)
		if !ok {
			logdir.SpawnSkipped(ctx, d.pub, 0, logdir.SpawnSkippedPayload{
				Attempts:  d.cfg.SpawnAttempts,
				Archetype: string(archetype),
				Reason:    "no valid spawn point",
			})
			continue
		}
		occupied = append(occupied, pos)
		requests = append(requests, SpawnRequest{Archetype: archetype, Pos: pos})
	}
	return requests
}

// findSpawnPoint draws candidates on a ring around the player and rejects any
// that intersect geometry, sit too close to the player, or crowd an occupied
// point. Attempts are bounded; a miss is reported, not retried forever.
func (d *Director) findSpawnPoint(playerPos geom.Vec2, radius float64, occupied []geom.Vec2) (geom.Vec2, bool) {
	for attempt := 0; attempt < d.cfg.SpawnAttempts; attempt++ {
		angle := d.rng.Float64() * 2 * math.Pi
		dist := d.cfg.SpawnRingMin + d.rng.Float64()*(d.cfg.SpawnRingMax-d.cfg.SpawnRingMin)
		candidate := playerPos.Add(geom.Vec2{X: math.Cos(angle), Y: math.Sin(angle)}.Scale(dist))

		if geom.Distance(candidate, playerPos) < d.cfg.MinPlayerDistance {
			continue
		}
		if d.prober.BlockedAt(candidate, radius) {
			continue
		}
		tooClose := false
		for _, p := range occupied {
			if geom.Distance(candidate, p) < d.cfg.MinSpawnSpacing {
				tooClose = true
				break
			}
		}
		if tooClose {
			continue
		}
		return candidate, true
	}
	return geom.Vec2{}, false
}

// drawArchetype samples the composition distribution in force at elapsed
// seconds. Archetype names are walked in sorted order so the draw sequence is
// a pure function of the RNG stream.
func (d *Director) drawArchetype(elapsed float64) entity.Archetype {
	weights := d.stageWeights(elapsed)

	names := make([]string, 0, len(weights))
	total := 0.0
	for name, w := range weights {
		if w <= 0 {
			continue
		}
		names = append(names, name)
		total += w
	}
	sort.Strings(names)

	if total <= 0 || len(names) == 0 {
		return entity.ArchetypeWalker
	}

	r := d.rng.Float64() * total
	for _, name := range names {
		r -= weights[name]
		if r < 0 {
			return entity.Archetype(name)
		}
	}
	return entity.Archetype(names[len(names)-1])
}

// stageWeights returns the weights of the last composition stage whose
// threshold elapsed time has crossed.
func (d *Director) stageWeights(elapsed float64) map[string]float64 {
	var weights map[string]float64
	for _, stage := range d.cfg.Composition {
		if elapsed >= stage.After {
			weights = stage.Weights
		}
	}
	return weights
}

func (d *Director) noteStage(ctx context.Context, tick uint64, elapsed float64) {
	idx := -1
	for i, stage := range d.cfg.Composition {
		if elapsed >= stage.After {
			idx = i
		}
	}
	if idx == d.stageIdx || idx < 0 {
		return
	}
	d.stageIdx = idx
	stage := d.cfg.Composition[idx]
	logdir.StageEntered(ctx, d.pub, tick, logdir.StageEnteredPayload{
		StartSeconds: stage.After,
		Weights:      stage.Weights,
	})
}
