// Package net exposes the simulation over HTTP and websockets: one
// controlling client sends intents, every connected client receives the
// authoritative state each tick.
package net

import (
	"encoding/json"

	"deadlock/server/internal/world"
)

// Version tracks the wire-protocol revision expected by clients.
const Version = 1

// Client message type identifiers.
const (
	TypeInput  = "input"
	TypeAim    = "aim"
	TypeFire   = "fire"
	TypeReload = "reload"
	TypeEquip  = "equip"
)

// Server message type identifiers.
const (
	TypeJoined = "joined"
	TypeMap    = "map"
	TypeState  = "state"
	TypeError  = "error"
)

// ClientMessage is the envelope every inbound websocket payload uses.
type ClientMessage struct {
	Type   string  `json:"type"`
	DX     float64 `json:"dx,omitempty"`
	DY     float64 `json:"dy,omitempty"`
	Weapon string  `json:"weapon,omitempty"`
}

// JoinedMessage confirms control of the player and names the protocol
// revision.
type JoinedMessage struct {
	Type        string   `json:"type"`
	Version     int      `json:"version"`
	Controlling bool     `json:"controlling"`
	Weapons     []string `json:"weapons"`
}

// MapMessage carries the static map, sent once after join.
type MapMessage struct {
	Type string            `json:"type"`
	Map  world.MapSnapshot `json:"map"`
}

// StateMessage is broadcast every tick.
type StateMessage struct {
	Type  string         `json:"type"`
	State world.Snapshot `json:"state"`
}

// ErrorMessage reports a rejected command.
type ErrorMessage struct {
	Type   string `json:"type"`
	Reason string `json:"reason"`
}

// EncodeState renders the per-tick broadcast payload.
func EncodeState(snapshot world.Snapshot) ([]byte, error) {
	return json.Marshal(StateMessage{Type: TypeState, State: snapshot})
}
