package world

import (
	"context"

	"deadlock/server/internal/combat"
	"deadlock/server/internal/entity"
	"deadlock/server/internal/geom"
	"deadlock/server/logging"
	loglifecycle "deadlock/server/logging/lifecycle"
)

// StepStats summarizes one tick for telemetry.
type StepStats struct {
	Tick           uint64
	Entities       int
	Zombies        int
	Projectiles    int
	Pickups        int
	PairEvents     int
	ObstacleClamps int
	ProjectileHits int
	Removed        int
	Score          int
	Elapsed        float64
}

// Step advances the simulation by one fixed timestep. Stage order is fixed:
// the director decides spawns, navigation sets intents, movement integrates,
// and the collision world resolves what remains. Dead entities leave the set
// only at the end, so every stage within the tick sees the same population.
func (w *World) Step(ctx context.Context, dt float64) StepStats {
	tick := w.tick.Add(1)
	player := w.Player()
	playerAlive := player != nil && player.Alive

	if playerAlive {
		w.tracker.Advance(dt)
	}
	w.combat.Advance(dt)

	// Director.
	if playerAlive {
		occupied := w.zombiePositions()
		req := w.director.Update(ctx, tick, dt, w.tracker.Elapsed(), w.set.CountKind(entity.KindZombie), player.Pos, occupied)
		if req != nil {
			w.spawnZombie(ctx, *req)
		}
		w.maybeSpawnPickup(ctx, dt)
	}

	ordered := w.set.Ordered()

	// Navigation.
	w.nav.Update(ctx, tick, dt, ordered, player, w.combat)

	// Player intent.
	if playerAlive {
		player.Vel = w.input.move.Scale(w.cfg.Player.MoveSpeed * w.combat.SpeedMultiplier(player.ID))
		if w.input.reload {
			w.combat.Reload(player.ID)
		}
		if w.input.fire && w.input.aim != (geom.Vec2{}) {
			w.combat.Fire(player, w.input.aim)
		}
	}
	w.input.fire = false
	w.input.reload = false

	// Movement integration. Projectiles remember their previous position so
	// the collision sweep covers the whole displacement.
	for _, e := range ordered {
		if !e.Alive {
			continue
		}
		switch {
		case e.Movable():
			e.Pos = e.Pos.Add(e.Vel.Scale(dt))
		case e.Kind == entity.KindProjectile:
			e.PrevPos = e.Pos
			e.Pos = e.Pos.Add(e.Vel.Scale(dt))
		}
	}

	// Collision world.
	ordered = w.set.Ordered()
	pairEvents, obstacleClamps := w.collision.Resolve(ordered)
	hits := w.collision.SweepProjectiles(ordered)
	w.combat.ApplyHits(ctx, tick, hits)

	w.expireProjectiles(ordered, dt)
	w.consumePickups(ctx, player, ordered, dt)

	// Tick boundary: dead entities leave now, never mid-tick.
	removed := w.set.Prune()
	for _, e := range removed {
		if e.Kind == entity.KindPlayer {
			w.combat.Forget(e.ID)
		}
	}

	return StepStats{
		Tick:           tick,
		Entities:       w.set.Len(),
		Zombies:        w.set.CountKind(entity.KindZombie),
		Projectiles:    w.set.CountKind(entity.KindProjectile),
		Pickups:        w.set.CountKind(entity.KindPickup),
		PairEvents:     len(pairEvents),
		ObstacleClamps: obstacleClamps,
		ProjectileHits: len(hits),
		Removed:        len(removed),
		Score:          w.tracker.Score(),
		Elapsed:        w.tracker.Elapsed(),
	}
}

// expireProjectiles retires projectiles whose TTL ran out or that left the
// map entirely.
func (w *World) expireProjectiles(ordered []*entity.Entity, dt float64) {
	for _, e := range ordered {
		if !e.Alive || e.Kind != entity.KindProjectile {
			continue
		}
		e.TTL -= dt
		if e.TTL <= 0 {
			e.Alive = false
			continue
		}
		if e.Pos.X < -e.Radius || e.Pos.Y < -e.Radius ||
			e.Pos.X > w.cfg.World.Width+e.Radius || e.Pos.Y > w.cfg.World.Height+e.Radius {
			e.Alive = false
		}
	}
}

// consumePickups applies any pickup the player is touching and ages out the
// rest.
func (w *World) consumePickups(ctx context.Context, player *entity.Entity, ordered []*entity.Entity, dt float64) {
	for _, e := range ordered {
		if !e.Alive || e.Kind != entity.KindPickup {
			continue
		}
		e.TTL -= dt
		if e.TTL <= 0 {
			e.Alive = false
			continue
		}
		if player == nil || !player.Alive {
			continue
		}
		if geom.Distance(player.Pos, e.Pos) > player.Radius+e.Radius {
			continue
		}

		amount := 0
		pk := w.cfg.Pickups
		switch e.Pickup {
		case entity.PickupHealth:
			player.Heal(pk.HealthAmount)
			amount = int(pk.HealthAmount)
		case entity.PickupAmmo:
			w.combat.RefillAmmo(player.ID)
			w.combat.GrantBoost(player.ID, combat.BoostInfiniteAmmo, 0, pk.InfiniteAmmoDuration)
		case entity.PickupWeapon:
			if err := w.combat.Equip(player.ID, e.Weapon); err != nil {
				continue
			}
		case entity.PickupSpeed:
			w.combat.GrantBoost(player.ID, combat.BoostSpeed, pk.SpeedMultiplier, pk.SpeedDuration)
		case entity.PickupDamage:
			w.combat.GrantBoost(player.ID, combat.BoostDamage, pk.DamageMultiplier, pk.DamageDuration)
		case entity.PickupRegen:
			w.combat.GrantBoost(player.ID, combat.BoostRegen, pk.RegenPerSecond, pk.RegenDuration)
		case entity.PickupInvincibility:
			w.combat.GrantBoost(player.ID, combat.BoostInvincibility, 0, pk.InvincibilityDuration)
		case entity.PickupRapidFire:
			w.combat.GrantBoost(player.ID, combat.BoostRapidFire, pk.RapidFireMultiplier, pk.RapidFireDuration)
		}
		e.Alive = false

		loglifecycle.PickupConsumed(ctx, w.pub, w.tick.Load(), logging.EntityRef{ID: player.Ref(), Kind: logging.EntityKindPlayer}, loglifecycle.PickupConsumedPayload{
			Kind:   string(e.Pickup),
			Amount: amount,
		})
	}
}

func (w *World) zombiePositions() []geom.Vec2 {
	var positions []geom.Vec2
	for _, e := range w.set.Ordered() {
		if e.Alive && e.Kind == entity.KindZombie {
			positions = append(positions, e.Pos)
		}
	}
	return positions
}
