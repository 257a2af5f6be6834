// Package nav steers zombies toward the player each tick. There is no graph
// search; obstacles are sparse, so local steering plus a stuck-detection
// escape is sufficient and much cheaper. Each zombie runs a small state
// machine: Seeking (head straight at the player), Probing (detour around
// whatever it is wedged against), and Attacking (melee when in range).
package nav

import (
	"context"
	"math"

	"deadlock/server/internal/config"
	"deadlock/server/internal/entity"
	"deadlock/server/internal/geom"
	"deadlock/server/logging"
	lognav "deadlock/server/logging/navigation"
)

// Mode names a zombie's steering state.
type Mode string

const (
	ModeSeeking   Mode = "seeking"
	ModeProbing   Mode = "probing"
	ModeAttacking Mode = "attacking"
)

// Prober is the cheap placement test probes run against. It checks static
// obstacle geometry and map bounds only, not other entities.
type Prober interface {
	BlockedAt(pos geom.Vec2, r float64) bool
}

// Damager applies melee damage. Health bookkeeping and death events live
// with the caller, not here.
type Damager interface {
	ApplyMelee(ctx context.Context, tick uint64, attacker, target *entity.Entity, amount float64)
}

// state is the per-zombie steering memory. It lives exactly as long as its
// entity; Update drops state for ids that no longer appear.
type state struct {
	mode           Mode
	stuckTicks     int
	probeHeading   geom.Vec2
	probeTicksLeft int
	cooldown       float64
	lastPos        geom.Vec2
	hasLastPos     bool
}

// Navigator owns the steering state for every live zombie.
type Navigator struct {
	cfg         config.NavConfig
	prober      Prober
	pub         logging.Publisher
	states      map[entity.ID]*state
	probeAngles []float64
}

// New constructs a navigator. Probe angles are configured in degrees and
// converted once.
func New(cfg config.NavConfig, prober Prober, pub logging.Publisher) *Navigator {
	if pub == nil {
		pub = logging.NopPublisher()
	}
	angles := make([]float64, len(cfg.ProbeAnglesDeg))
	for i, deg := range cfg.ProbeAnglesDeg {
		angles[i] = deg * math.Pi / 180
	}
	return &Navigator{
		cfg:         cfg,
		prober:      prober,
		pub:         pub,
		states:      make(map[entity.ID]*state),
		probeAngles: angles,
	}
}

// Mode returns the current steering mode for a zombie, for snapshots and
// tests. Unknown ids report Seeking.
func (n *Navigator) Mode(id entity.ID) Mode {
	if st, ok := n.states[id]; ok {
		return st.mode
	}
	return ModeSeeking
}

// Update computes every zombie's velocity for this tick and applies melee
// attacks that are in range and off cooldown. Zombies are expected in id
// order; positions reflect the previous tick's resolved state, so the
// displacement check naturally measures what survived collision resolution.
func (n *Navigator) Update(ctx context.Context, tick uint64, dt float64, zombies []*entity.Entity, player *entity.Entity, damager Damager) {
	seen := make(map[entity.ID]struct{}, len(zombies))

	for _, z := range zombies {
		if !z.Alive || z.Kind != entity.KindZombie {
			continue
		}
		seen[z.ID] = struct{}{}

		st, ok := n.states[z.ID]
		if !ok {
			st = &state{mode: ModeSeeking}
			n.states[z.ID] = st
		}
		if st.cooldown > 0 {
			st.cooldown -= dt
		}

		displacement := math.Inf(1)
		if st.hasLastPos {
			displacement = geom.Distance(z.Pos, st.lastPos)
		}
		st.lastPos = z.Pos
		st.hasLastPos = true

		if player == nil || !player.Alive {
			z.Vel = geom.Vec2{}
			continue
		}

		switch st.mode {
		case ModeProbing:
			n.stepProbing(z, st, displacement)
		case ModeAttacking:
			// Attack ticks never suppress the next tick's movement.
			st.mode = ModeSeeking
			fallthrough
		default:
			n.stepSeeking(ctx, tick, z, st, player, displacement, damager)
		}
	}

	for id := range n.states {
		if _, ok := seen[id]; !ok {
			delete(n.states, id)
		}
	}
}

func (n *Navigator) stepSeeking(ctx context.Context, tick uint64, z *entity.Entity, st *state, player *entity.Entity, displacement float64, damager Damager) {
	toPlayer := player.Pos.Sub(z.Pos)
	dist := toPlayer.Len()

	if dist <= n.cfg.AttackRange && st.cooldown <= 0 {
		st.cooldown = n.cfg.AttackCooldown
		st.mode = ModeAttacking
		st.stuckTicks = 0
		z.Vel = geom.Vec2{}
		if damager != nil {
			damager.ApplyMelee(ctx, tick, z, player, z.Damage)
		}
		return
	}

	if displacement < n.cfg.StuckEpsilon {
		st.stuckTicks++
	} else {
		st.stuckTicks = 0
	}

	desired := toPlayer.Normalized()

	if st.stuckTicks >= n.cfg.StuckTicks {
		if heading, angle, ok := n.findClearHeading(z, desired); ok {
			st.mode = ModeProbing
			st.probeHeading = heading
			st.probeTicksLeft = n.cfg.ProbeTimeoutTicks
			st.stuckTicks = 0
			z.Vel = heading.Scale(z.Speed)
			lognav.ProbeStarted(ctx, n.pub, tick, zombieRef(z), lognav.ProbeStartedPayload{
				AngleDegrees: angle * 180 / math.Pi,
				StuckTicks:   n.cfg.StuckTicks,
			})
			return
		}
		// Every direction blocked: hold this tick and retry next tick. This
		// is an expected condition in dense clusters, never an error.
		z.Vel = geom.Vec2{}
		lognav.ProbeHold(ctx, n.pub, tick, zombieRef(z))
		return
	}

	z.Vel = desired.Scale(z.Speed)
}

func (n *Navigator) stepProbing(z *entity.Entity, st *state, displacement float64) {
	st.probeTicksLeft--
	if displacement >= n.cfg.StuckEpsilon || st.probeTicksLeft <= 0 {
		st.mode = ModeSeeking
		st.stuckTicks = 0
	}
	// Keep following the probe heading this tick even when transitioning;
	// Seeking recomputes from the player position next tick.
	z.Vel = st.probeHeading.Scale(z.Speed)
}

// findClearHeading tries the configured angular offsets from the desired
// heading, in order, and returns the first whose short forward probe does not
// intersect obstacle geometry.
func (n *Navigator) findClearHeading(z *entity.Entity, desired geom.Vec2) (geom.Vec2, float64, bool) {
	for _, angle := range n.probeAngles {
		heading := desired.Rotated(angle)
		probe := z.Pos.Add(heading.Scale(n.cfg.ProbeDistance))
		if !n.prober.BlockedAt(probe, z.Radius) {
			return heading, angle, true
		}
	}
	return geom.Vec2{}, 0, false
}

func zombieRef(z *entity.Entity) logging.EntityRef {
	return logging.EntityRef{ID: z.Ref(), Kind: logging.EntityKindZombie}
}
