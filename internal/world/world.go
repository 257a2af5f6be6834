// Package world assembles the simulation: the entity set, the static map,
// and the director, navigation, collision, and combat systems, advanced in a
// fixed order once per tick.
package world

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"sync/atomic"

	"deadlock/server/internal/collision"
	"deadlock/server/internal/combat"
	"deadlock/server/internal/config"
	"deadlock/server/internal/director"
	"deadlock/server/internal/entity"
	"deadlock/server/internal/geom"
	"deadlock/server/internal/nav"
	"deadlock/server/internal/score"
	"deadlock/server/logging"
	loglifecycle "deadlock/server/logging/lifecycle"
)

// playerInput is the latest intent received from the controlling client.
// Movement and aim persist between ticks; fire and reload are edge-triggered
// and consumed by the tick that sees them.
type playerInput struct {
	move   geom.Vec2
	aim    geom.Vec2
	fire   bool
	reload bool
}

// World owns all simulation state for one run.
type World struct {
	cfg *config.Config
	pub logging.Publisher

	set       *entity.Set
	collision *collision.World
	nav       *nav.Navigator
	director  *director.Director
	combat    *combat.System
	tracker   *score.Tracker

	// tick is written by Step on the loop goroutine and read concurrently
	// by HTTP surfaces such as the health endpoint.
	tick atomic.Uint64

	playerID    entity.ID
	input       playerInput
	pickupTimer float64

	zombieRNG *rand.Rand
	pickupRNG *rand.Rand
}

// New builds a world from configuration. Every random draw flows through a
// labeled subsystem RNG derived from the root seed, so two worlds built from
// the same config produce identical maps and spawn sequences.
func New(cfg *config.Config, pub logging.Publisher) *World {
	if pub == nil {
		pub = logging.NopPublisher()
	}

	obstacles := GenerateObstacles(cfg.World, NewDeterministicRNG(cfg.World.Seed, "world.obstacles"))
	col := collision.NewWorld(cfg.Collision, cfg.World.Width, cfg.World.Height, obstacles)
	set := entity.NewSet()
	tracker := score.NewTracker()

	w := &World{
		cfg:         cfg,
		pub:         pub,
		set:         set,
		collision:   col,
		tracker:     tracker,
		pickupTimer: cfg.Pickups.Interval,
		zombieRNG:   NewDeterministicRNG(cfg.World.Seed, "zombies.stats"),
		pickupRNG:   NewDeterministicRNG(cfg.World.Seed, "pickups"),
	}
	w.nav = nav.New(cfg.Nav, col, pub)
	w.director = director.New(cfg.Director, cfg.Zombies, col, NewDeterministicRNG(cfg.World.Seed, "director"), pub)
	w.combat = combat.NewSystem(cfg.Weapons, set, tracker, NewDeterministicRNG(cfg.World.Seed, "combat.spread"), pub)
	return w
}

// Tick returns the current tick counter.
func (w *World) Tick() uint64 { return w.tick.Load() }

// Tracker exposes the score collaborator.
func (w *World) Tracker() *score.Tracker { return w.tracker }

// Obstacles returns the static map geometry.
func (w *World) Obstacles() []geom.Obstacle { return w.collision.Obstacles() }

// Entities returns the live entities in id order.
func (w *World) Entities() []*entity.Entity { return w.set.Ordered() }

// Player returns the controlled player entity, or nil before SpawnPlayer.
func (w *World) Player() *entity.Entity {
	if w.playerID == 0 {
		return nil
	}
	return w.set.Get(w.playerID)
}

// GameOver reports whether the run has ended.
func (w *World) GameOver() bool {
	p := w.Player()
	return p == nil || !p.Alive
}

// SpawnPlayer places the player at the map center, arms the default weapon,
// and seeds the opening zombie wave around them. Only one player slot exists;
// a second spawn while the first is alive is an error.
func (w *World) SpawnPlayer(ctx context.Context) (*entity.Entity, error) {
	if p := w.Player(); p != nil && p.Alive {
		return nil, fmt.Errorf("player already in the world")
	}
	w.resetRun()

	center := geom.Vec2{X: w.cfg.World.Width / 2, Y: w.cfg.World.Height / 2}
	p, err := entity.New(w.set.NextID(), entity.KindPlayer, center, w.cfg.Player.Radius)
	if err != nil {
		return nil, err
	}
	p.Health = w.cfg.Player.MaxHealth
	p.MaxHealth = w.cfg.Player.MaxHealth
	w.set.Insert(p)
	w.playerID = p.ID
	w.input = playerInput{}

	if err := w.combat.Equip(p.ID, w.defaultWeapon()); err != nil {
		return nil, err
	}

	loglifecycle.PlayerJoined(ctx, w.pub, w.tick.Load(), logging.EntityRef{ID: p.Ref(), Kind: logging.EntityKindPlayer})

	for _, req := range w.director.InitialSpawns(ctx, p.Pos) {
		w.spawnZombie(ctx, req)
	}
	return p, nil
}

// resetRun clears the previous run's entities and counters so a fresh player
// starts against the base difficulty. The map itself is never regenerated;
// runs share the seeded layout.
func (w *World) resetRun() {
	for _, e := range w.set.Ordered() {
		e.Alive = false
	}
	w.set.Prune()
	w.tracker.Reset()
	w.director = director.New(w.cfg.Director, w.cfg.Zombies, w.collision, NewDeterministicRNG(w.cfg.World.Seed, "director"), w.pub)
	w.pickupTimer = w.cfg.Pickups.Interval
	w.playerID = 0
}

// RemovePlayer drops the player at the next tick boundary, e.g. when the
// controlling client disconnects.
func (w *World) RemovePlayer(ctx context.Context, reason string) {
	p := w.Player()
	if p == nil {
		return
	}
	p.Alive = false
	loglifecycle.PlayerDisconnected(ctx, w.pub, w.tick.Load(), logging.EntityRef{ID: p.Ref(), Kind: logging.EntityKindPlayer}, reason)
}

// SetMoveIntent updates the player's persistent movement direction. The
// vector is normalized here; a zero vector stops the player.
func (w *World) SetMoveIntent(dir geom.Vec2) {
	if !dir.Finite() {
		return
	}
	w.input.move = dir.Normalized()
}

// SetAim updates the aim direction used by the next fire command.
func (w *World) SetAim(dir geom.Vec2) {
	if !dir.Finite() || dir == (geom.Vec2{}) {
		return
	}
	w.input.aim = dir.Normalized()
}

// TriggerFire requests a shot on the next tick.
func (w *World) TriggerFire() { w.input.fire = true }

// TriggerReload requests a reload on the next tick.
func (w *World) TriggerReload() { w.input.reload = true }

// EquipWeapon switches the player's weapon.
func (w *World) EquipWeapon(name string) error {
	if w.playerID == 0 {
		return fmt.Errorf("no player to equip")
	}
	return w.combat.Equip(w.playerID, name)
}

// Loadout reports the player's weapon state for snapshots.
func (w *World) Loadout() (weapon string, ammo int, reloading bool) {
	return w.combat.Loadout(w.playerID)
}

// WeaponNames lists the configured weapons in stable order.
func (w *World) WeaponNames() []string {
	names := make([]string, 0, len(w.cfg.Weapons))
	for name := range w.cfg.Weapons {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (w *World) defaultWeapon() string {
	if _, ok := w.cfg.Weapons["pistol"]; ok {
		return "pistol"
	}
	names := w.WeaponNames()
	if len(names) == 0 {
		return ""
	}
	return names[0]
}

// spawnZombie turns a director request into a live entity with stats drawn
// from its archetype's configured ranges.
func (w *World) spawnZombie(ctx context.Context, req director.SpawnRequest) *entity.Entity {
	stats, ok := w.cfg.Zombies[string(req.Archetype)]
	if !ok {
		return nil
	}
	z, err := entity.New(w.set.NextID(), entity.KindZombie, req.Pos, stats.Radius)
	if err != nil {
		return nil
	}
	z.Archetype = req.Archetype
	z.Health = stats.Health
	z.MaxHealth = stats.Health
	z.Speed = stats.SpeedMin + w.zombieRNG.Float64()*(stats.SpeedMax-stats.SpeedMin)
	z.Damage = stats.Damage
	z.Score = stats.Score
	w.set.Insert(z)

	loglifecycle.EntitySpawned(ctx, w.pub, w.tick.Load(), logging.EntityRef{ID: z.Ref(), Kind: logging.EntityKindZombie}, loglifecycle.SpawnedPayload{
		Archetype: string(req.Archetype),
		X:         req.Pos.X,
		Y:         req.Pos.Y,
	})
	return z
}

// drawPickupKind picks a variant from the configured weight table. Keys are
// walked in sorted order so the draw consumes the RNG identically across runs.
func (w *World) drawPickupKind() entity.PickupKind {
	weights := w.cfg.Pickups.Weights
	if len(weights) == 0 {
		return entity.PickupHealth
	}
	kinds := make([]string, 0, len(weights))
	total := 0.0
	for kind, weight := range weights {
		kinds = append(kinds, kind)
		total += weight
	}
	if total <= 0 {
		return entity.PickupHealth
	}
	sort.Strings(kinds)

	draw := w.pickupRNG.Float64() * total
	for _, kind := range kinds {
		draw -= weights[kind]
		if draw < 0 {
			return entity.PickupKind(kind)
		}
	}
	return entity.PickupKind(kinds[len(kinds)-1])
}

// maybeSpawnPickup drops a pickup at a free point when the pickup timer
// expires and the live cap allows it.
func (w *World) maybeSpawnPickup(ctx context.Context, dt float64) {
	if w.cfg.Pickups.Interval <= 0 {
		return
	}
	w.pickupTimer -= dt
	if w.pickupTimer > 0 {
		return
	}
	w.pickupTimer = w.cfg.Pickups.Interval

	if w.set.CountKind(entity.KindPickup) >= w.cfg.Pickups.MaxLive {
		return
	}

	// Rejection-sample a free point; a crowded map just skips the drop.
	for attempt := 0; attempt < 10; attempt++ {
		pos := geom.Vec2{
			X: w.pickupRNG.Float64() * w.cfg.World.Width,
			Y: w.pickupRNG.Float64() * w.cfg.World.Height,
		}
		if w.collision.BlockedAt(pos, w.cfg.Pickups.Radius) {
			continue
		}
		p, err := entity.New(w.set.NextID(), entity.KindPickup, pos, w.cfg.Pickups.Radius)
		if err != nil {
			return
		}
		p.Pickup = w.drawPickupKind()
		if p.Pickup == entity.PickupWeapon {
			if names := w.WeaponNames(); len(names) > 0 {
				p.Weapon = names[w.pickupRNG.Intn(len(names))]
			} else {
				p.Pickup = entity.PickupHealth
			}
		}
		p.TTL = w.cfg.Pickups.TTL
		w.set.Insert(p)

		loglifecycle.EntitySpawned(ctx, w.pub, w.tick.Load(), logging.EntityRef{ID: p.Ref(), Kind: logging.EntityKindPickup}, loglifecycle.SpawnedPayload{
			Archetype: string(p.Pickup),
			X:         pos.X,
			Y:         pos.Y,
		})
		return
	}
}
