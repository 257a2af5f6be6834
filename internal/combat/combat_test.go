package combat

import (
	"context"
	"math/rand"
	"testing"

	"deadlock/server/internal/collision"
	"deadlock/server/internal/config"
	"deadlock/server/internal/entity"
	"deadlock/server/internal/geom"
	"deadlock/server/internal/score"
	"deadlock/server/logging"
)

func testWeapons() map[string]config.WeaponConfig {
	return map[string]config.WeaponConfig{
		"pistol": {
			Cooldown: 0.35, Damage: 25, Speed: 900, TTL: 1.6,
			Pellets: 1, SpreadDeg: 0, Radius: 3, MagazineSize: 3, ReloadTime: 1.2,
		},
		"shotgun": {
			Cooldown: 0.9, Damage: 12, Speed: 800, TTL: 0.8,
			Pellets: 6, SpreadDeg: 12, Radius: 3, MagazineSize: 6, ReloadTime: 2.0,
		},
	}
}

func newTestSystem(t *testing.T) (*System, *entity.Set, *score.Tracker, *entity.Entity) {
	t.Helper()
	set := entity.NewSet()
	tracker := score.NewTracker()
	sys := NewSystem(testWeapons(), set, tracker, rand.New(rand.NewSource(1)), logging.NopPublisher())

	player, err := entity.New(set.NextID(), entity.KindPlayer, geom.Vec2{X: 500, Y: 500}, 14)
	if err != nil {
		t.Fatalf("player: %v", err)
	}
	player.Health = 100
	player.MaxHealth = 100
	set.Insert(player)
	if err := sys.Equip(player.ID, "pistol"); err != nil {
		t.Fatalf("equip: %v", err)
	}
	return sys, set, tracker, player
}

func TestFireSpawnsProjectile(t *testing.T) {
	sys, set, _, player := newTestSystem(t)

	if !sys.Fire(player, geom.Vec2{X: 1, Y: 0}) {
		t.Fatalf("fire refused with full magazine")
	}
	if got := set.CountKind(entity.KindProjectile); got != 1 {
		t.Fatalf("projectile count = %d, want 1", got)
	}

	var p *entity.Entity
	for _, e := range set.Ordered() {
		if e.Kind == entity.KindProjectile {
			p = e
		}
	}
	if p.Owner != player.ID {
		t.Fatalf("projectile owner = %d, want %d", p.Owner, player.ID)
	}
	if p.Vel.X <= 0 || p.Vel.Y != 0 {
		t.Fatalf("projectile velocity %v not along aim", p.Vel)
	}
	if p.Pos.X <= player.Pos.X+player.Radius {
		t.Fatalf("projectile spawned inside the shooter at %v", p.Pos)
	}
}

func TestFireRespectsCooldown(t *testing.T) {
	sys, set, _, player := newTestSystem(t)

	sys.Fire(player, geom.Vec2{X: 1})
	if sys.Fire(player, geom.Vec2{X: 1}) {
		t.Fatalf("second shot ignored the cooldown")
	}
	for i := 0; i < 30; i++ {
		sys.Advance(1.0 / 60)
	}
	if !sys.Fire(player, geom.Vec2{X: 1}) {
		t.Fatalf("shot refused after cooldown elapsed")
	}
	if got := set.CountKind(entity.KindProjectile); got != 2 {
		t.Fatalf("projectile count = %d, want 2", got)
	}
}

func TestEmptyMagazineForcesReload(t *testing.T) {
	sys, _, _, player := newTestSystem(t)

	for shot := 0; shot < 3; shot++ {
		if !sys.Fire(player, geom.Vec2{X: 1}) {
			t.Fatalf("shot %d refused", shot)
		}
		for i := 0; i < 30; i++ {
			sys.Advance(1.0 / 60)
		}
	}

	// Magazine is empty: the next trigger pull starts the reload instead.
	if sys.Fire(player, geom.Vec2{X: 1}) {
		t.Fatalf("fired with an empty magazine")
	}
	if _, _, reloading := sys.Loadout(player.ID); !reloading {
		t.Fatalf("empty magazine did not start a reload")
	}

	for i := 0; i < 80; i++ {
		sys.Advance(1.0 / 60)
	}
	if _, ammo, reloading := sys.Loadout(player.ID); reloading || ammo != 3 {
		t.Fatalf("reload did not refill: ammo=%d reloading=%v", ammo, reloading)
	}
}

func TestShotgunFiresPellets(t *testing.T) {
	sys, set, _, player := newTestSystem(t)
	if err := sys.Equip(player.ID, "shotgun"); err != nil {
		t.Fatalf("equip: %v", err)
	}

	sys.Fire(player, geom.Vec2{X: 0, Y: 1})
	if got := set.CountKind(entity.KindProjectile); got != 6 {
		t.Fatalf("pellet count = %d, want 6", got)
	}
}

func TestEquipUnknownWeapon(t *testing.T) {
	sys, _, _, player := newTestSystem(t)
	if err := sys.Equip(player.ID, "railgun"); err == nil {
		t.Fatalf("expected error for unknown weapon")
	}
}

func TestApplyHitsDamagesAndScores(t *testing.T) {
	sys, set, tracker, player := newTestSystem(t)
	ctx := context.Background()

	z, err := entity.New(set.NextID(), entity.KindZombie, geom.Vec2{X: 600, Y: 500}, 12)
	if err != nil {
		t.Fatalf("zombie: %v", err)
	}
	z.Health = 25
	z.Score = 10
	set.Insert(z)

	sys.Fire(player, geom.Vec2{X: 1})
	var proj *entity.Entity
	for _, e := range set.Ordered() {
		if e.Kind == entity.KindProjectile {
			proj = e
		}
	}

	sys.ApplyHits(ctx, 1, []collision.Hit{{Projectile: proj.ID, Target: z.ID, At: z.Pos}})

	if z.Alive {
		t.Fatalf("25 damage should kill a 25hp zombie")
	}
	if tracker.Score() != 10 {
		t.Fatalf("score = %d, want 10", tracker.Score())
	}
	if tracker.Kills() != 1 {
		t.Fatalf("kills = %d, want 1", tracker.Kills())
	}
}

func TestApplyHitsObstacleOnlyEndsProjectile(t *testing.T) {
	sys, set, tracker, player := newTestSystem(t)
	ctx := context.Background()

	sys.Fire(player, geom.Vec2{X: 1})
	var proj *entity.Entity
	for _, e := range set.Ordered() {
		if e.Kind == entity.KindProjectile {
			proj = e
		}
	}

	sys.ApplyHits(ctx, 1, []collision.Hit{{Projectile: proj.ID, Obstacle: "rect-3"}})
	if tracker.Score() != 0 {
		t.Fatalf("obstacle hit should not score")
	}
}

func TestApplyMeleeKillLogsDefeat(t *testing.T) {
	sys, set, _, player := newTestSystem(t)
	ctx := context.Background()

	z, err := entity.New(set.NextID(), entity.KindZombie, geom.Vec2{X: 510, Y: 500}, 12)
	if err != nil {
		t.Fatalf("zombie: %v", err)
	}
	z.Health = 30
	z.Damage = 150
	set.Insert(z)

	sys.ApplyMelee(ctx, 1, z, player, z.Damage)
	if player.Alive {
		t.Fatalf("150 damage should kill a 100hp player")
	}
	if player.Health != 0 {
		t.Fatalf("health clamped to %g, want 0", player.Health)
	}
}

func TestRapidFireShortensCooldown(t *testing.T) {
	sys, set, _, player := newTestSystem(t)

	sys.GrantBoost(player.ID, BoostRapidFire, 3.5, 8)
	sys.Fire(player, geom.Vec2{X: 1})

	// Pistol cooldown is 0.35s; boosted it is 0.1s, so seven frames suffice.
	for i := 0; i < 7; i++ {
		sys.Advance(1.0 / 60)
	}
	if !sys.Fire(player, geom.Vec2{X: 1}) {
		t.Fatalf("boosted follow-up shot refused")
	}
	if got := set.CountKind(entity.KindProjectile); got != 2 {
		t.Fatalf("projectile count = %d, want 2", got)
	}
}

func TestDamageBoostScalesProjectiles(t *testing.T) {
	sys, set, _, player := newTestSystem(t)

	sys.GrantBoost(player.ID, BoostDamage, 2, 10)
	sys.Fire(player, geom.Vec2{X: 1})

	for _, e := range set.Ordered() {
		if e.Kind == entity.KindProjectile && e.Damage != 50 {
			t.Fatalf("projectile damage = %g, want 50", e.Damage)
		}
	}
}

func TestInfiniteAmmoKeepsMagazineFull(t *testing.T) {
	sys, _, _, player := newTestSystem(t)

	sys.GrantBoost(player.ID, BoostInfiniteAmmo, 0, 15)
	for shot := 0; shot < 5; shot++ {
		if !sys.Fire(player, geom.Vec2{X: 1}) {
			t.Fatalf("shot %d refused", shot)
		}
		for i := 0; i < 30; i++ {
			sys.Advance(1.0 / 60)
		}
	}
	if _, ammo, _ := sys.Loadout(player.ID); ammo != 3 {
		t.Fatalf("ammo = %d, want untouched magazine of 3", ammo)
	}
}

func TestInvincibilitySuppressesDamage(t *testing.T) {
	sys, set, _, player := newTestSystem(t)
	ctx := context.Background()

	z, err := entity.New(set.NextID(), entity.KindZombie, geom.Vec2{X: 510, Y: 500}, 12)
	if err != nil {
		t.Fatalf("zombie: %v", err)
	}
	z.Health = 30
	set.Insert(z)

	sys.GrantBoost(player.ID, BoostInvincibility, 0, 5)
	sys.ApplyMelee(ctx, 1, z, player, 150)
	if player.Health != 100 {
		t.Fatalf("invincible player took damage: health = %g", player.Health)
	}

	// The boost wears off and damage lands again.
	for i := 0; i < 310; i++ {
		sys.Advance(1.0 / 60)
	}
	sys.ApplyMelee(ctx, 2, z, player, 40)
	if player.Health != 60 {
		t.Fatalf("expired boost still blocks damage: health = %g", player.Health)
	}
}

func TestRegenHealsOverTime(t *testing.T) {
	sys, _, _, player := newTestSystem(t)

	player.Health = 40
	sys.GrantBoost(player.ID, BoostRegen, 2, 20)

	// One simulated second at 2 hp/s.
	for i := 0; i < 60; i++ {
		sys.Advance(1.0 / 60)
	}
	if player.Health < 41.9 || player.Health > 42.1 {
		t.Fatalf("health after 1s regen = %g, want ~42", player.Health)
	}
}

func TestSpeedMultiplierDefaultsToOne(t *testing.T) {
	sys, _, _, player := newTestSystem(t)
	if got := sys.SpeedMultiplier(player.ID); got != 1 {
		t.Fatalf("unboosted multiplier = %g, want 1", got)
	}
	sys.GrantBoost(player.ID, BoostSpeed, 1.5, 15)
	if got := sys.SpeedMultiplier(player.ID); got != 1.5 {
		t.Fatalf("boosted multiplier = %g, want 1.5", got)
	}
}

func TestExplosiveProjectileSplashesNearbyTargets(t *testing.T) {
	sys, set, tracker, player := newTestSystem(t)
	ctx := context.Background()

	weapons := testWeapons()
	weapons["bazooka"] = config.WeaponConfig{
		Cooldown: 1.5, Damage: 60, Speed: 540, TTL: 2.5,
		Pellets: 1, SpreadDeg: 0, Radius: 6, MagazineSize: 2, ReloadTime: 3,
		BlastRadius: 96,
	}
	sys.weapons = weapons
	if err := sys.Equip(player.ID, "bazooka"); err != nil {
		t.Fatalf("equip: %v", err)
	}

	direct, err := entity.New(set.NextID(), entity.KindZombie, geom.Vec2{X: 700, Y: 500}, 12)
	if err != nil {
		t.Fatalf("zombie: %v", err)
	}
	direct.Health = 200
	set.Insert(direct)

	near, err := entity.New(set.NextID(), entity.KindZombie, geom.Vec2{X: 740, Y: 500}, 12)
	if err != nil {
		t.Fatalf("zombie: %v", err)
	}
	near.Health = 50
	near.Score = 5
	set.Insert(near)

	far, err := entity.New(set.NextID(), entity.KindZombie, geom.Vec2{X: 1200, Y: 500}, 12)
	if err != nil {
		t.Fatalf("zombie: %v", err)
	}
	far.Health = 50
	set.Insert(far)

	sys.Fire(player, geom.Vec2{X: 1})
	var proj *entity.Entity
	for _, e := range set.Ordered() {
		if e.Kind == entity.KindProjectile {
			proj = e
		}
	}

	sys.ApplyHits(ctx, 1, []collision.Hit{{Projectile: proj.ID, Target: direct.ID, At: direct.Pos}})

	if direct.Health != 140 {
		t.Fatalf("direct target health = %g, want 140", direct.Health)
	}
	if near.Alive {
		t.Fatalf("zombie inside the blast radius survived")
	}
	if !far.Alive || far.Health != 50 {
		t.Fatalf("zombie outside the blast radius was damaged: health = %g", far.Health)
	}
	if player.Health != 100 {
		t.Fatalf("shooter caught in own blast: health = %g", player.Health)
	}
	if tracker.Kills() != 1 {
		t.Fatalf("kills = %d, want 1", tracker.Kills())
	}
}

func TestObstacleHitStillExplodes(t *testing.T) {
	sys, set, _, player := newTestSystem(t)
	ctx := context.Background()

	weapons := testWeapons()
	weapons["bazooka"] = config.WeaponConfig{
		Cooldown: 1.5, Damage: 60, Speed: 540, TTL: 2.5,
		Pellets: 1, SpreadDeg: 0, Radius: 6, MagazineSize: 2, ReloadTime: 3,
		BlastRadius: 96,
	}
	sys.weapons = weapons
	if err := sys.Equip(player.ID, "bazooka"); err != nil {
		t.Fatalf("equip: %v", err)
	}

	z, err := entity.New(set.NextID(), entity.KindZombie, geom.Vec2{X: 720, Y: 500}, 12)
	if err != nil {
		t.Fatalf("zombie: %v", err)
	}
	z.Health = 50
	set.Insert(z)

	sys.Fire(player, geom.Vec2{X: 1})
	var proj *entity.Entity
	for _, e := range set.Ordered() {
		if e.Kind == entity.KindProjectile {
			proj = e
		}
	}

	impact := geom.Vec2{X: 700, Y: 500}
	sys.ApplyHits(ctx, 1, []collision.Hit{{Projectile: proj.ID, Obstacle: "rect-3", At: impact}})

	if z.Alive {
		t.Fatalf("zombie next to the wall impact survived the blast")
	}
}
