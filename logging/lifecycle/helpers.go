// Package lifecycle defines the structured events for entity spawn, death
// and player session changes.
package lifecycle

import (
	"context"

	"deadlock/server/logging"
)

const (
	EventEntitySpawned      logging.EventType = "lifecycle.entity_spawned"
	EventEntityDefeated     logging.EventType = "lifecycle.entity_defeated"
	EventPlayerJoined       logging.EventType = "lifecycle.player_joined"
	EventPlayerDisconnected logging.EventType = "lifecycle.player_disconnected"
	EventPickupConsumed     logging.EventType = "lifecycle.pickup_consumed"
)

// SpawnedPayload describes a freshly inserted entity.
type SpawnedPayload struct {
	Archetype string  `json:"archetype,omitempty"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
}

// EntitySpawned publishes a debug event for a new entity.
func EntitySpawned(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload SpawnedPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventEntitySpawned,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityDebug,
		Category: logging.CategoryLifecycle,
		Payload:  payload,
	})
}

// DefeatedPayload describes why an entity left the world.
type DefeatedPayload struct {
	Killer string `json:"killer,omitempty"`
	Score  int    `json:"score,omitempty"`
}

// EntityDefeated publishes an info event when an entity dies.
func EntityDefeated(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload DefeatedPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventEntityDefeated,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryLifecycle,
		Payload:  payload,
	})
}

// PlayerJoined publishes an info event when a client takes control of a player.
func PlayerJoined(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventPlayerJoined,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryLifecycle,
	})
}

// PlayerDisconnected publishes an info event when a client goes away.
func PlayerDisconnected(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, reason string) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventPlayerDisconnected,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryLifecycle,
		Payload:  map[string]string{"reason": reason},
	})
}

// PickupConsumedPayload names what the pickup granted.
type PickupConsumedPayload struct {
	Kind   string `json:"kind"`
	Amount int    `json:"amount"`
}

// PickupConsumed publishes a debug event when a player collects a pickup.
func PickupConsumed(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload PickupConsumedPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventPickupConsumed,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityDebug,
		Category: logging.CategoryLifecycle,
		Payload:  payload,
	})
}
