// Package entity defines the tagged-variant entity record the simulation
// core operates on. Players, zombies, projectiles, and pickups share one
// struct with a kind discriminant; systems act on whichever entities expose
// the capability they need (Movable, Damageable, Collidable).
package entity

import (
	"fmt"

	"deadlock/server/internal/geom"
)

// ID is a stable entity identifier. IDs are allocated from a monotonically
// increasing counter and never reused while any in-flight event may still
// reference them.
type ID uint64

// Kind discriminates the entity variants.
type Kind string

const (
	KindPlayer     Kind = "player"
	KindZombie     Kind = "zombie"
	KindProjectile Kind = "projectile"
	KindPickup     Kind = "pickup"
)

// Archetype names a zombie variant. The concrete stats live in configuration.
type Archetype string

const (
	ArchetypeWalker Archetype = "walker"
	ArchetypeRunner Archetype = "runner"
	ArchetypeBrute  Archetype = "brute"
)

// PickupKind names a pickup variant. Health and ammo restore resources;
// weapon pickups swap the equipped gun; the rest grant timed boosts.
type PickupKind string

const (
	PickupHealth        PickupKind = "health"
	PickupAmmo          PickupKind = "ammo"
	PickupWeapon        PickupKind = "weapon"
	PickupSpeed         PickupKind = "speed"
	PickupDamage        PickupKind = "damage"
	PickupRegen         PickupKind = "regen"
	PickupInvincibility PickupKind = "invincibility"
	PickupRapidFire     PickupKind = "rapid_fire"
)

// Entity is the authoritative simulation record for one live object.
type Entity struct {
	ID        ID        `json:"id"`
	Kind      Kind      `json:"kind"`
	Pos       geom.Vec2 `json:"pos"`
	Vel       geom.Vec2 `json:"vel"`
	Radius    float64   `json:"radius"`
	Health    float64   `json:"health,omitempty"`
	MaxHealth float64   `json:"maxHealth,omitempty"`
	Alive     bool      `json:"alive"`

	// Zombie payload.
	Archetype Archetype `json:"archetype,omitempty"`
	Speed     float64   `json:"speed,omitempty"`
	Damage    float64   `json:"-"`
	Score     int       `json:"-"`

	// Projectile payload. Blast is the explosion radius applied around the
	// impact point; zero means the projectile only damages what it hits.
	Owner   ID        `json:"owner,omitempty"`
	TTL     float64   `json:"-"`
	PrevPos geom.Vec2 `json:"-"`
	Blast   float64   `json:"-"`

	// Pickup payload. Weapon names the gun a weapon pickup grants.
	Pickup PickupKind `json:"pickup,omitempty"`
	Weapon string     `json:"weapon,omitempty"`
}

// New validates and constructs an entity. Non-finite positions and
// non-positive radii are programmer errors from a collaborator and are
// rejected here so they never reach the spatial grid.
func New(id ID, kind Kind, pos geom.Vec2, radius float64) (*Entity, error) {
	if !pos.Finite() {
		return nil, fmt.Errorf("entity %d: non-finite position (%v, %v)", id, pos.X, pos.Y)
	}
	if radius <= 0 {
		return nil, fmt.Errorf("entity %d: radius %v must be positive", id, radius)
	}
	return &Entity{ID: id, Kind: kind, Pos: pos, Radius: radius, Alive: true}, nil
}

// Movable reports whether the entity's position is advanced by its velocity
// each tick. Pickups are stationary; projectiles integrate separately so the
// sweep test sees their full tick displacement.
func (e *Entity) Movable() bool {
	return e.Kind == KindPlayer || e.Kind == KindZombie
}

// Damageable reports whether the entity participates in damage resolution.
func (e *Entity) Damageable() bool {
	return e.Kind == KindPlayer || e.Kind == KindZombie
}

// Collidable reports whether the entity is pushed apart from others during
// pair resolution. Projectiles and pickups overlap freely; they interact
// through hit and consume events instead.
func (e *Entity) Collidable() bool {
	return e.Kind == KindPlayer || e.Kind == KindZombie
}

// Hurt subtracts damage and clears the alive flag when health is exhausted.
// It reports whether this call killed the entity.
func (e *Entity) Hurt(amount float64) bool {
	if !e.Alive || !e.Damageable() {
		return false
	}
	e.Health -= amount
	if e.Health <= 0 {
		e.Health = 0
		e.Alive = false
		return true
	}
	return false
}

// Heal restores health up to MaxHealth.
func (e *Entity) Heal(amount float64) {
	if !e.Alive {
		return
	}
	e.Health += amount
	if e.MaxHealth > 0 && e.Health > e.MaxHealth {
		e.Health = e.MaxHealth
	}
}

// Ref formats the entity for log events.
func (e *Entity) Ref() string {
	return fmt.Sprintf("%s-%d", e.Kind, e.ID)
}
