// Package combat owns weapons, projectile spawning, and damage application.
// It consumes the hit events the collision world reports and turns them into
// health changes, kill credit, and structured log events.
package combat

import (
	"context"
	"fmt"
	"math"
	"math/rand"

	"deadlock/server/internal/collision"
	"deadlock/server/internal/config"
	"deadlock/server/internal/entity"
	"deadlock/server/internal/geom"
	"deadlock/server/internal/score"
	"deadlock/server/logging"
	logcombat "deadlock/server/logging/combat"
	loglifecycle "deadlock/server/logging/lifecycle"
)

// loadout is the per-player weapon state. Magazine and reload behavior follow
// the classic survival-shooter loop: empty magazine forces a reload, firing
// during a reload is a no-op.
type loadout struct {
	weapon      string
	ammo        int
	cooldown    float64
	reloading   bool
	reloadTimer float64
}

// BoostKind names a timed player modifier granted by powerup pickups.
type BoostKind string

const (
	BoostSpeed         BoostKind = "speed"
	BoostDamage        BoostKind = "damage"
	BoostRegen         BoostKind = "regen"
	BoostInvincibility BoostKind = "invincibility"
	BoostRapidFire     BoostKind = "rapid_fire"
	BoostInfiniteAmmo  BoostKind = "infinite_ammo"
)

// boostState holds the remaining duration and magnitude of each active boost.
// A zero remaining time means the boost is off; magnitudes are only read
// while their timer runs.
type boostState struct {
	speedLeft    float64
	speedMult    float64
	damageLeft   float64
	damageMult   float64
	regenLeft    float64
	regenRate    float64
	invincLeft   float64
	rapidLeft    float64
	rapidMult    float64
	infiniteLeft float64
}

// System applies all damage in the simulation and spawns projectiles.
type System struct {
	weapons  map[string]config.WeaponConfig
	set      *entity.Set
	tracker  *score.Tracker
	rng      *rand.Rand
	pub      logging.Publisher
	loadouts map[entity.ID]*loadout
	boosts   map[entity.ID]*boostState
}

// NewSystem constructs the combat system. The RNG is dedicated to weapon
// spread so firing does not perturb other subsystems' draws.
func NewSystem(weapons map[string]config.WeaponConfig, set *entity.Set, tracker *score.Tracker, rng *rand.Rand, pub logging.Publisher) *System {
	if pub == nil {
		pub = logging.NopPublisher()
	}
	return &System{
		weapons:  weapons,
		set:      set,
		tracker:  tracker,
		rng:      rng,
		pub:      pub,
		loadouts: make(map[entity.ID]*loadout),
		boosts:   make(map[entity.ID]*boostState),
	}
}

// GrantBoost starts or refreshes a timed modifier on a player. Collecting the
// same powerup again restarts its clock at the new magnitude.
func (s *System) GrantBoost(player entity.ID, kind BoostKind, magnitude, duration float64) {
	if duration <= 0 {
		return
	}
	b, ok := s.boosts[player]
	if !ok {
		b = &boostState{}
		s.boosts[player] = b
	}
	switch kind {
	case BoostSpeed:
		b.speedLeft, b.speedMult = duration, magnitude
	case BoostDamage:
		b.damageLeft, b.damageMult = duration, magnitude
	case BoostRegen:
		b.regenLeft, b.regenRate = duration, magnitude
	case BoostInvincibility:
		b.invincLeft = duration
	case BoostRapidFire:
		b.rapidLeft, b.rapidMult = duration, magnitude
	case BoostInfiniteAmmo:
		b.infiniteLeft = duration
	}
}

// SpeedMultiplier reports the player's current movement factor, 1 when no
// speed boost runs.
func (s *System) SpeedMultiplier(player entity.ID) float64 {
	if b, ok := s.boosts[player]; ok && b.speedLeft > 0 && b.speedMult > 0 {
		return b.speedMult
	}
	return 1
}

// Invincible reports whether damage to the player is currently suppressed.
func (s *System) Invincible(player entity.ID) bool {
	b, ok := s.boosts[player]
	return ok && b.invincLeft > 0
}

// Equip arms a player with the named weapon, full magazine.
func (s *System) Equip(player entity.ID, weapon string) error {
	w, ok := s.weapons[weapon]
	if !ok {
		return fmt.Errorf("unknown weapon %q", weapon)
	}
	s.loadouts[player] = &loadout{weapon: weapon, ammo: w.MagazineSize}
	return nil
}

// Loadout reports the player's current weapon, remaining ammo, and whether a
// reload is in progress. Snapshots include it in the player state.
func (s *System) Loadout(player entity.ID) (weapon string, ammo int, reloading bool) {
	lo, ok := s.loadouts[player]
	if !ok {
		return "", 0, false
	}
	return lo.weapon, lo.ammo, lo.reloading
}

// Advance steps cooldown, reload, and boost timers by one tick. Health
// regeneration applies here so it ticks at the simulation rate.
func (s *System) Advance(dt float64) {
	for _, lo := range s.loadouts {
		if lo.cooldown > 0 {
			lo.cooldown -= dt
		}
		if lo.reloading {
			lo.reloadTimer -= dt
			if lo.reloadTimer <= 0 {
				lo.ammo = s.weapons[lo.weapon].MagazineSize
				lo.reloading = false
			}
		}
	}
	for id, b := range s.boosts {
		if b.regenLeft > 0 {
			if e := s.set.Get(id); e != nil && e.Alive {
				e.Heal(b.regenRate * dt)
			}
		}
		b.speedLeft -= dt
		b.damageLeft -= dt
		b.regenLeft -= dt
		b.invincLeft -= dt
		b.rapidLeft -= dt
		b.infiniteLeft -= dt
	}
}

// Reload starts a reload unless one is running or the magazine is full.
func (s *System) Reload(player entity.ID) {
	lo, ok := s.loadouts[player]
	if !ok || lo.reloading {
		return
	}
	w := s.weapons[lo.weapon]
	if lo.ammo >= w.MagazineSize {
		return
	}
	lo.reloading = true
	lo.reloadTimer = w.ReloadTime
}

// RefillAmmo tops the magazine up immediately and cancels any reload in
// progress. Ammo pickups route here.
func (s *System) RefillAmmo(player entity.ID) {
	lo, ok := s.loadouts[player]
	if !ok {
		return
	}
	lo.ammo = s.weapons[lo.weapon].MagazineSize
	lo.reloading = false
}

// Fire spawns the shooter's projectiles along aim, applying per-pellet
// spread. It reports whether a shot actually left the barrel; cooldown,
// reload, and an empty magazine all suppress it. An empty magazine starts a
// reload automatically.
func (s *System) Fire(shooter *entity.Entity, aim geom.Vec2) bool {
	lo, ok := s.loadouts[shooter.ID]
	if !ok || lo.cooldown > 0 || lo.reloading {
		return false
	}
	if lo.ammo <= 0 {
		s.Reload(shooter.ID)
		return false
	}
	dir := aim.Normalized()
	if dir == (geom.Vec2{}) {
		return false
	}

	w := s.weapons[lo.weapon]
	b := s.boosts[shooter.ID]

	cooldown := w.Cooldown
	if b != nil && b.rapidLeft > 0 && b.rapidMult > 0 {
		cooldown /= b.rapidMult
	}
	lo.cooldown = cooldown

	if b == nil || b.infiniteLeft <= 0 {
		lo.ammo--
	}

	damage := w.Damage
	if b != nil && b.damageLeft > 0 {
		damage *= b.damageMult
	}

	for i := 0; i < w.Pellets; i++ {
		spread := 0.0
		if w.SpreadDeg > 0 {
			spread = (s.rng.Float64()*2 - 1) * w.SpreadDeg * math.Pi / 180
		}
		heading := dir.Rotated(spread)
		muzzle := shooter.Pos.Add(heading.Scale(shooter.Radius + w.Radius))

		p, err := entity.New(s.set.NextID(), entity.KindProjectile, muzzle, w.Radius)
		if err != nil {
			continue
		}
		p.Owner = shooter.ID
		p.Vel = heading.Scale(w.Speed)
		p.TTL = w.TTL
		p.PrevPos = muzzle
		p.Damage = damage
		p.Blast = w.BlastRadius
		s.set.Insert(p)
	}
	return true
}

// ApplyMelee damages a target from a melee attacker. Implements the damage
// interface navigation calls when a zombie attack lands. An invincible target
// shrugs the hit off entirely.
func (s *System) ApplyMelee(ctx context.Context, tick uint64, attacker, target *entity.Entity, amount float64) {
	if s.Invincible(target.ID) {
		return
	}
	killed := target.Hurt(amount)
	logcombat.MeleeHit(ctx, s.pub, tick, ref(attacker), ref(target), logcombat.HitPayload{
		Damage:    int(amount),
		Killed:    killed,
		Remaining: int(target.Health),
		X:         target.Pos.X,
		Y:         target.Pos.Y,
	})
	if killed {
		loglifecycle.EntityDefeated(ctx, s.pub, tick, ref(target), loglifecycle.DefeatedPayload{Killer: attacker.Ref()})
	}
}

// ApplyHits consumes the projectile sweep results: obstacle hits just end the
// projectile, entity hits apply damage and credit kill points to the score.
// Explosive projectiles splash their damage around the impact point whichever
// way they stopped.
func (s *System) ApplyHits(ctx context.Context, tick uint64, hits []collision.Hit) {
	for _, hit := range hits {
		p := s.set.Get(hit.Projectile)
		if p == nil {
			continue
		}
		if hit.Obstacle != "" {
			logcombat.ProjectileBlocked(ctx, s.pub, tick, ref(p), hit.Obstacle)
			if p.Blast > 0 {
				s.explode(ctx, tick, p, hit.At, 0)
			}
			continue
		}
		target := s.set.Get(hit.Target)
		if target == nil || !target.Alive {
			continue
		}
		s.damageFromProjectile(ctx, tick, p, target, hit.At)
		if p.Blast > 0 {
			s.explode(ctx, tick, p, hit.At, target.ID)
		}
	}
}

// damageFromProjectile applies one projectile's damage to one target and
// publishes the hit, defeat, and kill-credit bookkeeping.
func (s *System) damageFromProjectile(ctx context.Context, tick uint64, p, target *entity.Entity, at geom.Vec2) {
	if s.Invincible(target.ID) {
		return
	}
	killed := target.Hurt(p.Damage)
	logcombat.ProjectileHit(ctx, s.pub, tick, ref(p), ref(target), logcombat.HitPayload{
		Damage:    int(p.Damage),
		Killed:    killed,
		Remaining: int(target.Health),
		X:         at.X,
		Y:         at.Y,
	})
	if killed {
		if target.Kind == entity.KindZombie && s.tracker != nil {
			s.tracker.AddKill(target.Score)
		}
		killer := ""
		if owner := s.set.Get(p.Owner); owner != nil {
			killer = owner.Ref()
		}
		loglifecycle.EntityDefeated(ctx, s.pub, tick, ref(target), loglifecycle.DefeatedPayload{
			Killer: killer,
			Score:  target.Score,
		})
	}
}

// explode damages every live damageable entity within the blast radius of the
// impact, skipping the projectile's owner and whatever it hit directly. The
// id-ordered walk keeps splash resolution deterministic.
func (s *System) explode(ctx context.Context, tick uint64, p *entity.Entity, at geom.Vec2, direct entity.ID) {
	for _, e := range s.set.Ordered() {
		if !e.Alive || !e.Damageable() || e.ID == p.Owner || e.ID == direct {
			continue
		}
		if geom.Distance(e.Pos, at) > p.Blast+e.Radius {
			continue
		}
		s.damageFromProjectile(ctx, tick, p, e, at)
	}
}

// Forget drops the loadout and boosts for a removed player.
func (s *System) Forget(player entity.ID) {
	delete(s.loadouts, player)
	delete(s.boosts, player)
}

func ref(e *entity.Entity) logging.EntityRef {
	return logging.EntityRef{ID: e.Ref(), Kind: logging.EntityKind(e.Kind)}
}
