// Package combat defines the structured events for damage and projectiles.
package combat

import (
	"context"

	"deadlock/server/logging"
)

const (
	EventProjectileHit     logging.EventType = "combat.projectile_hit"
	EventProjectileBlocked logging.EventType = "combat.projectile_blocked"
	EventMeleeHit          logging.EventType = "combat.melee_hit"
)

// HitPayload describes a single application of damage.
type HitPayload struct {
	Damage    int     `json:"damage"`
	Killed    bool    `json:"killed"`
	Remaining int     `json:"remaining"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
}

// ProjectileHit publishes a debug event when a projectile strikes a target.
func ProjectileHit(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, target logging.EntityRef, payload HitPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventProjectileHit,
		Tick:     tick,
		Actor:    actor,
		Targets:  []logging.EntityRef{target},
		Severity: logging.SeverityDebug,
		Category: logging.CategoryCombat,
		Payload:  payload,
	})
}

// ProjectileBlocked publishes a debug event when an obstacle stops a projectile.
func ProjectileBlocked(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, obstacleID string) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventProjectileBlocked,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityDebug,
		Category: logging.CategoryCombat,
		Payload:  map[string]string{"obstacle": obstacleID},
	})
}

// MeleeHit publishes a debug event when a zombie lands an attack.
func MeleeHit(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, target logging.EntityRef, payload HitPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventMeleeHit,
		Tick:     tick,
		Actor:    actor,
		Targets:  []logging.EntityRef{target},
		Severity: logging.SeverityDebug,
		Category: logging.CategoryCombat,
		Payload:  payload,
	})
}
