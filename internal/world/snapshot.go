package world

import (
	"deadlock/server/internal/entity"
	"deadlock/server/internal/geom"
)

// EntitySnapshot is the per-entity wire shape broadcast every tick.
type EntitySnapshot struct {
	ID        uint64  `json:"id"`
	Kind      string  `json:"kind"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Radius    float64 `json:"radius"`
	Health    float64 `json:"health,omitempty"`
	MaxHealth float64 `json:"maxHealth,omitempty"`
	Archetype string  `json:"archetype,omitempty"`
	Pickup    string  `json:"pickup,omitempty"`
	Weapon    string  `json:"weapon,omitempty"`
	Mode      string  `json:"mode,omitempty"`
}

// LoadoutSnapshot is the player's weapon state.
type LoadoutSnapshot struct {
	Weapon    string `json:"weapon"`
	Ammo      int    `json:"ammo"`
	Reloading bool   `json:"reloading"`
}

// Snapshot is the full authoritative state broadcast each tick.
type Snapshot struct {
	Tick     uint64           `json:"tick"`
	Elapsed  float64          `json:"elapsed"`
	Score    int              `json:"score"`
	Kills    int              `json:"kills"`
	GameOver bool             `json:"gameOver"`
	Loadout  *LoadoutSnapshot `json:"loadout,omitempty"`
	Entities []EntitySnapshot `json:"entities"`
}

// MapSnapshot carries the static geometry, sent once on join.
type MapSnapshot struct {
	Width     float64         `json:"width"`
	Height    float64         `json:"height"`
	Seed      string          `json:"seed"`
	Obstacles []geom.Obstacle `json:"obstacles"`
}

// Snapshot captures the current world state in id order.
func (w *World) Snapshot() Snapshot {
	ordered := w.set.Ordered()
	entities := make([]EntitySnapshot, 0, len(ordered))
	for _, e := range ordered {
		snap := EntitySnapshot{
			ID:        uint64(e.ID),
			Kind:      string(e.Kind),
			X:         e.Pos.X,
			Y:         e.Pos.Y,
			Radius:    e.Radius,
			Health:    e.Health,
			MaxHealth: e.MaxHealth,
			Archetype: string(e.Archetype),
			Pickup:    string(e.Pickup),
			Weapon:    e.Weapon,
		}
		if e.Kind == entity.KindZombie {
			snap.Mode = string(w.nav.Mode(e.ID))
		}
		entities = append(entities, snap)
	}

	snapshot := Snapshot{
		Tick:     w.tick.Load(),
		Elapsed:  w.tracker.Elapsed(),
		Score:    w.tracker.Score(),
		Kills:    w.tracker.Kills(),
		GameOver: w.GameOver(),
		Entities: entities,
	}
	if weapon, ammo, reloading := w.Loadout(); weapon != "" {
		snapshot.Loadout = &LoadoutSnapshot{Weapon: weapon, Ammo: ammo, Reloading: reloading}
	}
	return snapshot
}

// MapSnapshot returns the static map description.
func (w *World) MapSnapshot() MapSnapshot {
	return MapSnapshot{
		Width:     w.cfg.World.Width,
		Height:    w.cfg.World.Height,
		Seed:      w.cfg.World.Seed,
		Obstacles: w.Obstacles(),
	}
}
